package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/rocketscienceinc/irene-skills/internal/apperror"
	"github.com/rocketscienceinc/irene-skills/internal/config"
	"github.com/rocketscienceinc/irene-skills/internal/entity"
	"github.com/rocketscienceinc/irene-skills/internal/pkg"
)

const minHoroscopeLength = 30

type zodiacSign struct {
	key    string
	speech string
}

// zodiacForms maps nominative and genitive forms to the site key and the genitive used in speech.
var zodiacForms = map[string]zodiacSign{
	"овен": {"aries", "Овна"}, "овна": {"aries", "Овна"},
	"телец": {"taurus", "Тельца"}, "тельца": {"taurus", "Тельца"},
	"близнецы": {"gemini", "Близнецов"}, "близнецов": {"gemini", "Близнецов"},
	"рак": {"cancer", "Рака"}, "рака": {"cancer", "Рака"},
	"лев": {"leo", "Льва"}, "льва": {"leo", "Льва"},
	"дева": {"virgo", "Девы"}, "девы": {"virgo", "Девы"},
	"весы": {"libra", "Весов"}, "весов": {"libra", "Весов"},
	"скорпион": {"scorpio", "Скорпиона"}, "скорпиона": {"scorpio", "Скорпиона"},
	"стрелец": {"sagittarius", "Стрельца"}, "стрельца": {"sagittarius", "Стрельца"},
	"козерог": {"capricorn", "Козерога"}, "козерога": {"capricorn", "Козерога"},
	"водолей": {"aquarius", "Водолея"}, "водолея": {"aquarius", "Водолея"},
	"рыбы": {"pisces", "Рыб"}, "рыб": {"pisces", "Рыб"},
}

var (
	horoscopeApologies = []string{
		"Не удалось получить гороскоп. Возможно, звёзды временно недоступны.",
		"Гороскоп не отвечает. Попробуйте позже!",
	}

	horoscopeIntros = []string{
		"Звёзды подготовили для %s такой прогноз %s:",
		"Вот что говорят звёзды для %s %s:",
		"Гороскоп для %s %s:",
		"Астрологи сообщают для %s %s:",
	}
)

type HoroscopeService interface {
	Horoscope(ctx context.Context, call *entity.Call) error
}

type horoscopeService struct {
	logger *slog.Logger

	conf   config.Horoscope
	client *http.Client
	picker Picker
}

func NewHoroscopeService(logger *slog.Logger, conf config.Horoscope, client *http.Client, picker Picker) HoroscopeService {
	return &horoscopeService{
		logger: logger,
		conf:   conf,
		client: client,
		picker: picker,
	}
}

func (that *horoscopeService) Horoscope(ctx context.Context, call *entity.Call) error {
	log := that.logger.With("method", "Horoscope")

	phrase := pkg.NormalizePhrase(call.Utterance)
	tomorrow := strings.Contains(phrase, "завтра")
	sign := that.detectSign(phrase)

	text, err := that.fetch(ctx, sign.key, tomorrow)
	if err != nil {
		log.Error("failed to fetch horoscope", "sign", sign.key, "error", err)
		return call.Say(ctx, horoscopeApologies[that.picker.Intn(len(horoscopeApologies))])
	}

	if !that.conf.UseIntroPhrases {
		return call.Say(ctx, text)
	}

	period := "на сегодня"
	if tomorrow {
		period = "на завтра"
	}

	intro := fmt.Sprintf(horoscopeIntros[that.picker.Intn(len(horoscopeIntros))], sign.speech, period)

	return call.Say(ctx, intro+" "+text)
}

func (that *horoscopeService) detectSign(phrase string) zodiacSign {
	for _, word := range strings.Fields(phrase) {
		if sign, ok := zodiacForms[word]; ok {
			return sign
		}
	}

	for _, sign := range zodiacForms {
		if sign.key == that.conf.DefaultSign {
			return sign
		}
	}

	return zodiacForms["телец"]
}

func (that *horoscopeService) fetch(ctx context.Context, sign string, tomorrow bool) (string, error) {
	query := url.Values{"znak": {sign}}
	if tomorrow {
		query.Set("kn", "tomorrow")
	}

	ctx, cancel := withTimeout(ctx, that.conf.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(that.conf.BaseURL, "/")+"/?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("User-Agent", that.conf.UserAgent)

	resp, err := that.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get horoscope: %w", err)
	}
	defer resp.Body.Close()

	if err = checkStatus(resp, http.StatusOK); err != nil {
		return "", err
	}

	text, err := firstParagraph(resp.Body)
	if err != nil {
		return "", err
	}

	if utf8.RuneCountInString(text) <= minHoroscopeLength || strings.Contains(strings.ToLower(text), "подписка") {
		return "", fmt.Errorf("%w: no horoscope paragraph", apperror.ErrUnexpectedReply)
	}

	return text, nil
}

// firstParagraph returns the whitespace-collapsed text of the first <p> element.
func firstParagraph(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse page: %w", err)
	}

	var find func(*html.Node) *html.Node
	find = func(n *html.Node) *html.Node {
		if n.Type == html.ElementNode && n.Data == "p" {
			return n
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if found := find(c); found != nil {
				return found
			}
		}

		return nil
	}

	p := find(doc)
	if p == nil {
		return "", nil
	}

	var b strings.Builder

	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(p)

	return strings.Join(strings.Fields(b.String()), " "), nil
}
