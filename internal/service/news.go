package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/irene-skills/internal/config"
	"github.com/rocketscienceinc/irene-skills/internal/entity"
)

const (
	newsReplyFetching = "Сейчас подготовлю сводку новостей..."
	newsReplyEmpty    = "Свежих новостей пока нет."
	newsReplyError    = "Не удалось получить новости. Проверьте настройки и интернет."

	minHeadlineLength = 15
	dedupePrefix      = 30
	newsUserAgent     = "Irene-Universal-News/1.0"
)

var (
	sourceCounterRe = regexp.MustCompile(`\s*\(\d+\s+sources?\)$`)

	headlineIntros = []string{
		"Слушайте первую новость: %s.",
		"А вот что ещё произошло: %s.",
		"Также стало известно, что %s.",
		"Между тем, %s.",
		"Ещё одна важная новость: %s.",
		"На международной арене: %s.",
		"Интересное событие: %s.",
	}
)

// NewsSource yields headlines from one provider.
type NewsSource interface {
	Name() string
	Headlines(ctx context.Context) ([]string, error)
}

type NewsService interface {
	News(ctx context.Context, call *entity.Call) error
}

type newsService struct {
	logger *slog.Logger

	maxHeadlines int
	sources      []NewsSource
	now          func() time.Time
}

func NewNewsService(logger *slog.Logger, maxHeadlines int, sources []NewsSource, now func() time.Time) NewsService {
	if now == nil {
		now = time.Now
	}

	return &newsService{
		logger:       logger,
		maxHeadlines: maxHeadlines,
		sources:      sources,
		now:          now,
	}
}

// NewsSources builds the enabled sources in priority order: RSS, WorldNewsAPI, FreshRSS.
func NewsSources(conf config.News, client *http.Client) []NewsSource {
	sources := []NewsSource{&rssSource{url: conf.RSSURL, client: client, timeout: conf.Timeout}}

	if conf.WorldNews.Enabled && conf.WorldNews.Key != "" {
		sources = append(sources, &worldNewsSource{conf: conf.WorldNews, limit: conf.MaxHeadlines, client: client, timeout: conf.Timeout})
	}

	if conf.FreshRSS.Enabled && conf.FreshRSS.URL != "" {
		sources = append(sources, &freshRSSSource{conf: conf.FreshRSS, limit: conf.MaxHeadlines, client: client, timeout: conf.Timeout})
	}

	return sources
}

func (that *newsService) News(ctx context.Context, call *entity.Call) error {
	log := that.logger.With("method", "News")

	if err := call.Say(ctx, newsReplyFetching); err != nil {
		return err
	}

	results := make([][]string, len(that.sources))
	failed := make([]bool, len(that.sources))

	// one failing source must not cancel the others
	var group errgroup.Group
	for i, source := range that.sources {
		group.Go(func() error {
			headlines, err := source.Headlines(ctx)
			if err != nil {
				failed[i] = true
				return fmt.Errorf("news source %s failed: %w", source.Name(), err)
			}

			results[i] = headlines

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		log.Error("failed to fetch news", "failedSources", countTrue(failed), "error", err)
	}

	var all []string
	allFailed := len(that.sources) > 0
	for i := range results {
		all = append(all, results[i]...)
		allFailed = allFailed && failed[i]
	}

	headlines := DedupeHeadlines(all, that.maxHeadlines)
	if len(headlines) == 0 {
		if allFailed {
			return call.Say(ctx, newsReplyError)
		}

		return call.Say(ctx, newsReplyEmpty)
	}

	return call.Say(ctx, that.digest(headlines))
}

func (that *newsService) digest(headlines []string) string {
	now := that.now()

	parts := make([]string, 0, len(headlines)+2)
	parts = append(parts, fmt.Sprintf("Добрый день! Сводка новостей на %d %s.", now.Day(), monthGenitive[now.Month()]))

	for i, title := range headlines {
		parts = append(parts, fmt.Sprintf(headlineIntros[i%len(headlineIntros)], title))
	}

	parts = append(parts, "Вот такие новости на сегодня. Спасибо, что остаётесь с нами!")

	return strings.Join(parts, " ")
}

// DedupeHeadlines drops headlines whose first 30 lower-cased characters were already seen and caps the result at limit.
func DedupeHeadlines(headlines []string, limit int) []string {
	seen := make(map[string]struct{}, len(headlines))
	unique := make([]string, 0, min(len(headlines), limit))

	for _, title := range headlines {
		if len(unique) >= limit {
			break
		}

		key := dedupeKey(title)
		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}
		unique = append(unique, title)
	}

	return unique
}

func dedupeKey(title string) string {
	runes := []rune(strings.ToLower(title))
	if len(runes) > dedupePrefix {
		runes = runes[:dedupePrefix]
	}

	return string(runes)
}

func longEnough(title string) bool {
	return utf8.RuneCountInString(title) > minHeadlineLength
}

type rssSource struct {
	url     string
	client  *http.Client
	timeout time.Duration
}

func (that *rssSource) Name() string { return "rss" }

func (that *rssSource) Headlines(ctx context.Context) ([]string, error) {
	ctx, cancel := withTimeout(ctx, that.timeout)
	defer cancel()

	parser := gofeed.NewParser()
	parser.Client = that.client
	parser.UserAgent = newsUserAgent

	feed, err := parser.ParseURLWithContext(that.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	var headlines []string
	for _, item := range feed.Items {
		if title := strings.TrimSpace(item.Title); longEnough(title) {
			headlines = append(headlines, title)
		}
	}

	return headlines, nil
}

type worldNewsSource struct {
	conf    config.WorldNews
	limit   int
	client  *http.Client
	timeout time.Duration
}

type worldNewsReply struct {
	TopNews []struct {
		News []struct {
			Title string `json:"title"`
		} `json:"news"`
	} `json:"top_news"`
}

func (that *worldNewsSource) Name() string { return "worldnewsapi" }

func (that *worldNewsSource) Headlines(ctx context.Context) ([]string, error) {
	ctx, cancel := withTimeout(ctx, that.timeout)
	defer cancel()

	query := url.Values{
		"source-country": {"ru"},
		"language":       {"ru"},
		"api-key":        {that.conf.Key},
		"number":         {strconv.Itoa(that.limit * 2)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, that.conf.URL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("User-Agent", newsUserAgent)

	var reply worldNewsReply
	if err = doJSON(that.client, req, &reply); err != nil {
		return nil, err
	}

	var headlines []string
	for _, group := range reply.TopNews {
		if len(group.News) == 0 {
			continue
		}

		title := strings.TrimSpace(group.News[0].Title)
		if title == "" {
			continue
		}

		headlines = append(headlines, sourceCounterRe.ReplaceAllString(title, ""))
	}

	return DedupeHeadlines(headlines, that.limit), nil
}

type freshRSSSource struct {
	conf    config.FreshRSS
	limit   int
	client  *http.Client
	timeout time.Duration
}

type freshRSSReply struct {
	Items []struct {
		Title string `json:"title"`
	} `json:"items"`
}

func (that *freshRSSSource) Name() string { return "freshrss" }

func (that *freshRSSSource) Headlines(ctx context.Context) ([]string, error) {
	ctx, cancel := withTimeout(ctx, that.timeout)
	defer cancel()

	query := url.Values{
		"output": {"json"},
		"n":      {strconv.Itoa(that.limit)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, that.conf.URL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	if that.conf.Username != "" && that.conf.Password != "" {
		req.SetBasicAuth(that.conf.Username, that.conf.Password)
	}

	var reply freshRSSReply
	if err = doJSON(that.client, req, &reply); err != nil {
		return nil, err
	}

	var headlines []string
	for _, item := range reply.Items {
		if len(headlines) >= that.limit {
			break
		}

		if title := strings.TrimSpace(item.Title); longEnough(title) {
			headlines = append(headlines, title)
		}
	}

	return headlines, nil
}

func countTrue(flags []bool) int {
	count := 0
	for _, flag := range flags {
		if flag {
			count++
		}
	}

	return count
}
