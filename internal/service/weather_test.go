package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/irene-skills/internal/config"
	"github.com/rocketscienceinc/irene-skills/internal/entity"
)

// memoryQuota counts spent calls without a day split.
type memoryQuota struct {
	mu   sync.Mutex
	used map[string]int
}

func newMemoryQuota() *memoryQuota {
	return &memoryQuota{used: make(map[string]int)}
}

func (that *memoryQuota) Used(_ context.Context, name string, _ time.Time) (int, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.used[name], nil
}

func (that *memoryQuota) Spend(_ context.Context, name string, _ time.Time) (int, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.used[name]++

	return that.used[name], nil
}

func (that *memoryQuota) Exhaust(_ context.Context, name string, _ time.Time, limit int) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.used[name] = limit

	return nil
}

// newWeatherServer answers OpenWeather, Yandex and wttr.in requests with the given statuses.
func newWeatherServer(t *testing.T, openWeatherStatus, yandexStatus int) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /owm", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("appid") != "owm-key" || r.URL.Query().Get("units") != "metric" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.WriteHeader(openWeatherStatus)
		fmt.Fprint(w, `{"weather":[{"description":"ясно"}],"main":{"temp":4.6}}`)
	})
	mux.HandleFunc("GET /yandex", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Yandex-API-Key") != "yandex-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.WriteHeader(yandexStatus)
		fmt.Fprint(w, `{"fact":{"condition":"overcast","temp":-2.4}}`)
	})
	mux.HandleFunc("GET /Moscow", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") != "3" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		fmt.Fprint(w, "Moscow: ☀️ +5°C\n")
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

func weatherConfig(serverURL string) config.Weather {
	return config.Weather{
		Enabled:            true,
		City:               "Moscow",
		Lang:               "ru",
		OpenWeather:        config.OpenWeather{Enabled: true, Key: "owm-key", URL: serverURL + "/owm"},
		Yandex:             config.Yandex{Enabled: true, Key: "yandex-key", URL: serverURL + "/yandex", DailyQuota: 40},
		Wttr:               config.Wttr{Enabled: true, URL: serverURL},
		NoSourceConfigured: "Ни один источник погоды не настроен",
		AllSourcesFailed:   "Не удалось получить погоду ни от одного источника",
	}
}

func TestWeatherService(t *testing.T) {
	ctx := context.Background()

	ask := func(t *testing.T, conf config.Weather, sources []WeatherSource) string {
		t.Helper()

		speaker := &recorder{}
		require.NoError(t, NewWeatherService(discardLogger(), conf, sources).Weather(ctx, newCall(entity.NewSession("s1"), speaker, "погода")))

		return speaker.last()
	}

	t.Run("First healthy source answers", func(t *testing.T) {
		server := newWeatherServer(t, http.StatusOK, http.StatusOK)
		conf := weatherConfig(server.URL)
		quota := newMemoryQuota()

		reply := ask(t, conf, WeatherSources(conf, server.Client(), quota))

		assert.Equal(t, "Погода в Moscow: ясно, 5°C", reply)
		assert.Zero(t, quota.used[yandexQuotaName])
	})

	t.Run("Falls back to Yandex and spends its quota", func(t *testing.T) {
		// Given: OpenWeather is failing
		server := newWeatherServer(t, http.StatusInternalServerError, http.StatusOK)
		conf := weatherConfig(server.URL)
		quota := newMemoryQuota()

		// When: the weather is asked for
		reply := ask(t, conf, WeatherSources(conf, server.Client(), quota))

		// Then: Yandex answers and one call is counted
		assert.Equal(t, "Погода в Moscow: overcast, -2°C", reply)
		assert.Equal(t, 1, quota.used[yandexQuotaName])
	})

	t.Run("Skips Yandex when the quota is spent", func(t *testing.T) {
		server := newWeatherServer(t, http.StatusInternalServerError, http.StatusOK)
		conf := weatherConfig(server.URL)
		quota := newMemoryQuota()
		quota.used[yandexQuotaName] = conf.Yandex.DailyQuota

		reply := ask(t, conf, WeatherSources(conf, server.Client(), quota))

		assert.Equal(t, "Погода в Moscow: Moscow: ☀️ +5°C", reply)
		assert.Equal(t, conf.Yandex.DailyQuota, quota.used[yandexQuotaName])
	})

	t.Run("Yandex rejection exhausts the quota", func(t *testing.T) {
		server := newWeatherServer(t, http.StatusInternalServerError, http.StatusTooManyRequests)
		conf := weatherConfig(server.URL)
		quota := newMemoryQuota()

		reply := ask(t, conf, WeatherSources(conf, server.Client(), quota))

		assert.Equal(t, "Погода в Moscow: Moscow: ☀️ +5°C", reply)
		assert.Equal(t, conf.Yandex.DailyQuota, quota.used[yandexQuotaName])
	})

	t.Run("Sources without keys are not built", func(t *testing.T) {
		conf := weatherConfig("http://127.0.0.1:1")
		conf.OpenWeather.Key = ""
		conf.Yandex.Key = ""
		conf.Wttr.Enabled = false

		sources := WeatherSources(conf, http.DefaultClient, newMemoryQuota())

		assert.Empty(t, sources)
		assert.Equal(t, conf.NoSourceConfigured, ask(t, conf, sources))
	})

	t.Run("Every source failed", func(t *testing.T) {
		server := newWeatherServer(t, http.StatusInternalServerError, http.StatusInternalServerError)
		conf := weatherConfig(server.URL)
		conf.Wttr.Enabled = false

		reply := ask(t, conf, WeatherSources(conf, server.Client(), newMemoryQuota()))

		assert.Equal(t, conf.AllSourcesFailed, reply)
	})
}
