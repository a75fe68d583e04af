package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rocketscienceinc/irene-skills/internal/apperror"
	"github.com/rocketscienceinc/irene-skills/internal/config"
	"github.com/rocketscienceinc/irene-skills/internal/entity"
	"github.com/rocketscienceinc/irene-skills/internal/repository"
)

const yandexQuotaName = "yandex-weather"

var errQuotaExhausted = errors.New("daily quota exhausted")

// WeatherSource reports current conditions as a short phrase like "ясно, 5°C".
type WeatherSource interface {
	Name() string
	Current(ctx context.Context) (string, error)
}

type WeatherService interface {
	Weather(ctx context.Context, call *entity.Call) error
}

type weatherService struct {
	logger *slog.Logger

	conf    config.Weather
	sources []WeatherSource
}

func NewWeatherService(logger *slog.Logger, conf config.Weather, sources []WeatherSource) WeatherService {
	return &weatherService{
		logger:  logger,
		conf:    conf,
		sources: sources,
	}
}

// WeatherSources builds the enabled sources in fallback order: OpenWeather, Yandex, wttr.in.
func WeatherSources(conf config.Weather, client *http.Client, quota repository.QuotaRepository) []WeatherSource {
	var sources []WeatherSource

	if conf.OpenWeather.Enabled && conf.OpenWeather.Key != "" {
		sources = append(sources, &openWeatherSource{conf: conf, client: client})
	}

	if conf.Yandex.Enabled && conf.Yandex.Key != "" {
		sources = append(sources, &yandexSource{conf: conf, client: client, quota: quota, now: time.Now})
	}

	if conf.Wttr.Enabled {
		sources = append(sources, &wttrSource{conf: conf, client: client})
	}

	return sources
}

func (that *weatherService) Weather(ctx context.Context, call *entity.Call) error {
	log := that.logger.With("method", "Weather")

	if len(that.sources) == 0 {
		return call.Say(ctx, that.conf.NoSourceConfigured)
	}

	for _, source := range that.sources {
		result, err := source.Current(ctx)
		if err != nil {
			log.Warn("weather source failed", "source", source.Name(), "error", err)
			continue
		}

		return call.Say(ctx, fmt.Sprintf("Погода в %s: %s", that.conf.City, result))
	}

	return call.Say(ctx, that.conf.AllSourcesFailed)
}

type openWeatherSource struct {
	conf   config.Weather
	client *http.Client
}

type openWeatherReply struct {
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
}

func (that *openWeatherSource) Name() string { return "openweather" }

func (that *openWeatherSource) Current(ctx context.Context) (string, error) {
	ctx, cancel := withTimeout(ctx, that.conf.Timeout)
	defer cancel()

	lang := "en"
	if that.conf.Lang == "ru" {
		lang = "ru"
	}

	query := url.Values{
		"q":     {that.conf.City},
		"appid": {that.conf.OpenWeather.Key},
		"lang":  {lang},
		"units": {"metric"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, that.conf.OpenWeather.URL+"?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	var reply openWeatherReply
	if err = doJSON(that.client, req, &reply); err != nil {
		return "", err
	}

	if len(reply.Weather) == 0 {
		return "", fmt.Errorf("%w: no weather description", apperror.ErrUnexpectedReply)
	}

	return fmt.Sprintf("%s, %d°C", reply.Weather[0].Description, int(math.Round(reply.Main.Temp))), nil
}

type yandexSource struct {
	conf   config.Weather
	client *http.Client
	quota  repository.QuotaRepository
	now    func() time.Time
}

type yandexReply struct {
	Fact struct {
		Condition string  `json:"condition"`
		Temp      float64 `json:"temp"`
	} `json:"fact"`
}

func (that *yandexSource) Name() string { return "yandex" }

func (that *yandexSource) Current(ctx context.Context) (string, error) {
	now := that.now()

	used, err := that.quota.Used(ctx, yandexQuotaName, now)
	if err != nil {
		return "", fmt.Errorf("failed to read quota: %w", err)
	}

	if used >= that.conf.Yandex.DailyQuota {
		return "", errQuotaExhausted
	}

	ctx, cancel := withTimeout(ctx, that.conf.Timeout)
	defer cancel()

	query := url.Values{
		"lat":   {strconv.FormatFloat(that.conf.Yandex.Lat, 'f', -1, 64)},
		"lon":   {strconv.FormatFloat(that.conf.Yandex.Lon, 'f', -1, 64)},
		"limit": {"1"},
		"hours": {"false"},
		"extra": {"false"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, that.conf.Yandex.URL+"?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("X-Yandex-API-Key", that.conf.Yandex.Key)

	resp, err := that.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get forecast: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		if err = that.quota.Exhaust(ctx, yandexQuotaName, now, that.conf.Yandex.DailyQuota); err != nil {
			return "", fmt.Errorf("failed to exhaust quota: %w", err)
		}

		return "", fmt.Errorf("%w: status %d", errQuotaExhausted, resp.StatusCode)
	}

	if err = checkStatus(resp, http.StatusOK); err != nil {
		return "", err
	}

	if _, err = that.quota.Spend(ctx, yandexQuotaName, now); err != nil {
		return "", fmt.Errorf("failed to spend quota: %w", err)
	}

	var reply yandexReply
	if err = decodeJSON(resp.Body, &reply); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s, %d°C", reply.Fact.Condition, int(math.Round(reply.Fact.Temp))), nil
}

type wttrSource struct {
	conf   config.Weather
	client *http.Client
}

func (that *wttrSource) Name() string { return "wttr" }

func (that *wttrSource) Current(ctx context.Context) (string, error) {
	ctx, cancel := withTimeout(ctx, that.conf.Timeout)
	defer cancel()

	base := that.conf.Wttr.URL
	if base == "" {
		base = fmt.Sprintf("https://%s.wttr.in", that.conf.Lang)
	}

	endpoint := strings.TrimRight(base, "/") + "/" + url.PathEscape(that.conf.City) + "?format=3"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := that.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get wttr: %w", err)
	}
	defer resp.Body.Close()

	if err = checkStatus(resp, http.StatusOK); err != nil {
		return "", err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read wttr: %w", err)
	}

	text := strings.TrimSpace(string(body))
	if text == "" {
		return "", fmt.Errorf("%w: empty wttr reply", apperror.ErrUnexpectedReply)
	}

	return text, nil
}
