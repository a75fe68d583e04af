package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/rocketscienceinc/irene-skills/internal/apperror"
	"github.com/rocketscienceinc/irene-skills/internal/config"
	"github.com/rocketscienceinc/irene-skills/internal/entity"
)

type WikiService interface {
	// Lookup speaks the intro of the Wikipedia article best matching the call arguments.
	Lookup(ctx context.Context, call *entity.Call) error
}

type wikiService struct {
	logger *slog.Logger

	conf   config.Wiki
	client *http.Client
}

func NewWikiService(logger *slog.Logger, conf config.Wiki, client *http.Client) WikiService {
	return &wikiService{
		logger: logger,
		conf:   conf,
		client: client,
	}
}

func (that *wikiService) Lookup(ctx context.Context, call *entity.Call) error {
	log := that.logger.With("method", "Lookup")

	term := strings.TrimSpace(call.Args)
	if term == "" {
		return call.Say(ctx, "Что найти в Википедии?")
	}

	ctx, cancel := withTimeout(ctx, that.conf.Timeout)
	defer cancel()

	title, found, err := that.search(ctx, term)
	if err != nil {
		log.Error("wikipedia search failed", "term", term, "error", err)
		return call.Say(ctx, "Не удалось получить данные из Википедии.")
	}

	if !found {
		return call.Say(ctx, fmt.Sprintf("В Википедии ничего не найдено по запросу «%s».", term))
	}

	extract, err := that.extract(ctx, title)
	if err != nil {
		log.Error("wikipedia extract failed", "title", title, "error", err)
		return call.Say(ctx, "Не удалось получить данные из Википедии.")
	}

	if extract == "" {
		return call.Say(ctx, fmt.Sprintf("Статья о «%s» найдена.", title))
	}

	return call.Say(ctx, TrimToSentence(extract, that.conf.MaxExtractLength))
}

func (that *wikiService) endpoint() string {
	if that.conf.BaseURL != "" {
		return strings.TrimRight(that.conf.BaseURL, "/") + "/w/api.php"
	}

	return fmt.Sprintf("https://%s.wikipedia.org/w/api.php", that.conf.Language)
}

func (that *wikiService) get(ctx context.Context, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, that.endpoint()+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("User-Agent", that.conf.UserAgent)

	return doJSON(that.client, req, out)
}

func (that *wikiService) search(ctx context.Context, term string) (string, bool, error) {
	query := url.Values{
		"action": {"opensearch"},
		"search": {term},
		"limit":  {"1"},
		"format": {"json"},
	}

	var reply []json.RawMessage
	if err := that.get(ctx, query, &reply); err != nil {
		return "", false, err
	}

	if len(reply) < 2 {
		return "", false, fmt.Errorf("%w: opensearch reply has %d parts", apperror.ErrUnexpectedReply, len(reply))
	}

	var titles []string
	if err := json.Unmarshal(reply[1], &titles); err != nil {
		return "", false, fmt.Errorf("failed to decode titles: %w", err)
	}

	if len(titles) == 0 {
		return "", false, nil
	}

	return titles[0], true, nil
}

type wikiExtractReply struct {
	Query struct {
		Pages map[string]struct {
			Extract string `json:"extract"`
		} `json:"pages"`
	} `json:"query"`
}

func (that *wikiService) extract(ctx context.Context, title string) (string, error) {
	query := url.Values{
		"action":      {"query"},
		"prop":        {"extracts"},
		"exintro":     {"1"},
		"explaintext": {"1"},
		"titles":      {title},
		"format":      {"json"},
	}

	var reply wikiExtractReply
	if err := that.get(ctx, query, &reply); err != nil {
		return "", err
	}

	for _, page := range reply.Query.Pages {
		return strings.TrimSpace(page.Extract), nil
	}

	return "", nil
}

// TrimToSentence cuts text longer than limit runes after the last '.', '!' or '?' before the limit,
// or hard at the limit when no sentence ends there.
func TrimToSentence(text string, limit int) string {
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text
	}

	head := runes[:limit]
	for i := len(head) - 1; i >= 0; i-- {
		switch head[i] {
		case '.', '!', '?':
			return string(head[:i+1])
		}
	}

	return string(head)
}
