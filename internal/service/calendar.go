package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	ics "github.com/arran4/golang-ical"
	"github.com/icholy/digest"

	"github.com/rocketscienceinc/irene-skills/internal/config"
	"github.com/rocketscienceinc/irene-skills/internal/entity"
	"github.com/rocketscienceinc/irene-skills/internal/pkg"
)

const (
	eventHour        = 12
	eventDuration    = time.Hour
	eventUIDDomain   = "irina"
	defaultEventName = "Событие"
	icsTimeLayout    = "20060102T150405"
)

var (
	monthsGenitive = map[string]time.Month{
		"января": time.January, "февраля": time.February, "марта": time.March,
		"апреля": time.April, "мая": time.May, "июня": time.June,
		"июля": time.July, "августа": time.August, "сентября": time.September,
		"октября": time.October, "ноября": time.November, "декабря": time.December,
	}

	ordinalDays = map[string]int{
		"первого": 1, "второго": 2, "третьего": 3, "четвертого": 4, "пятого": 5,
		"шестого": 6, "седьмого": 7, "восьмого": 8, "девятого": 9, "десятого": 10,
		"одиннадцатого": 11, "двенадцатого": 12, "тринадцатого": 13, "четырнадцатого": 14,
		"пятнадцатого": 15, "шестнадцатого": 16, "семнадцатого": 17, "восемнадцатого": 18,
		"девятнадцатого": 19, "двадцатого": 20, "тридцатого": 30,
	}

	ordinalTens = map[string]int{"двадцать": 20, "тридцать": 30}

	unsafeFileChars = regexp.MustCompile(`[^\w\-.]`)
)

type CalendarService interface {
	// CreateEvent books a one-hour event at noon on the spoken date.
	CreateEvent(ctx context.Context, call *entity.Call) error
}

type calendarService struct {
	logger *slog.Logger

	conf     config.Calendar
	client   *http.Client
	location *time.Location
	now      func() time.Time
}

func NewCalendarService(logger *slog.Logger, conf config.Calendar, transport http.RoundTripper, now func() time.Time) CalendarService {
	location, err := time.LoadLocation(conf.Timezone)
	if err != nil {
		logger.Warn("unknown calendar timezone, using local time", "timezone", conf.Timezone, "error", err)
		location = time.Local
	}

	if now == nil {
		now = time.Now
	}

	client := &http.Client{
		Timeout: conf.Timeout,
		Transport: &digest.Transport{
			Username:  conf.Username,
			Password:  conf.Password,
			Transport: transport,
		},
	}

	return &calendarService{
		logger:   logger,
		conf:     conf,
		client:   client,
		location: location,
		now:      now,
	}
}

func (that *calendarService) CreateEvent(ctx context.Context, call *entity.Call) error {
	log := that.logger.With("method", "CreateEvent")

	text := pkg.NormalizePhrase(call.Args)
	if text == "" {
		return call.Say(ctx, "Не указано описание события")
	}

	if that.conf.URL == "" || that.conf.Username == "" || that.conf.Password == "" {
		return call.Say(ctx, "Не настроены данные Baikal")
	}

	start, summary, ok := ParseEventDate(text, that.now().In(that.location))
	if !ok {
		return call.Say(ctx, "Скажите дату, например: двадцать седьмого декабря")
	}

	uid := pkg.GenerateEventUID(eventUIDDomain)
	body := that.buildCalendar(uid, summary, start)
	endpoint := strings.TrimRight(that.conf.URL, "/") + "/" + unsafeFileChars.ReplaceAllString(uid, "_") + ".ics"

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader([]byte(body)))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "text/calendar; charset=utf-8")

	resp, err := that.client.Do(req)
	if err != nil {
		log.Error("failed to reach calendar", "url", endpoint, "error", err)
		return call.Say(ctx, "Ошибка подключения к календарю")
	}
	defer resp.Body.Close()

	if err = checkStatus(resp, http.StatusOK, http.StatusCreated, http.StatusNoContent); err != nil {
		log.Error("calendar rejected event", "url", endpoint, "error", err)
		return call.Say(ctx, "Ошибка при создании события")
	}

	return call.Say(ctx, fmt.Sprintf("Событие «%s» создано", summary))
}

func (that *calendarService) buildCalendar(uid, summary string, start time.Time) string {
	tzid := that.location.String()

	cal := ics.NewCalendar()
	cal.SetProductId("-//Irina//Baikal//EN")

	event := cal.AddEvent(uid)
	event.SetDtStampTime(that.now().UTC())
	tzParam := &ics.KeyValues{Key: string(ics.ParameterTzid), Value: []string{tzid}}

	event.SetProperty(ics.ComponentPropertyDtStart, start.Format(icsTimeLayout), tzParam)
	event.SetProperty(ics.ComponentPropertyDtEnd, start.Add(eventDuration).Format(icsTimeLayout), tzParam)
	event.SetSummary(summary)
	event.SetProperty(ics.ComponentProperty(ics.PropertyTransp), "OPAQUE")

	return cal.Serialize()
}

// ParseEventDate finds "<day> <month>" in a normalized phrase, the day given in digits or ordinal words.
// Dates already past this year move to the next one. The summary is the text before the date.
func ParseEventDate(text string, now time.Time) (time.Time, string, bool) {
	fields := strings.Fields(text)

	monthAt := -1
	var month time.Month
	for i, field := range fields {
		if m, ok := monthsGenitive[field]; ok {
			monthAt, month = i, m
			break
		}
	}

	if monthAt <= 0 {
		return time.Time{}, "", false
	}

	before := fields[:monthAt]

	day, from, to := findDay(before)
	if day < 1 || day > 31 {
		return time.Time{}, "", false
	}

	year := now.Year()
	if month < now.Month() || (month == now.Month() && day < now.Day()) {
		year++
	}

	start := time.Date(year, month, day, eventHour, 0, 0, 0, now.Location())
	if start.Month() != month {
		return time.Time{}, "", false
	}

	rest := make([]string, 0, len(before))
	rest = append(rest, before[:from]...)
	rest = append(rest, before[to:]...)

	summary := strings.Join(rest, " ")
	if summary == "" {
		summary = defaultEventName
	}

	return start, summary, true
}

// findDay returns the day and the field span [from, to) it was spoken in.
func findDay(fields []string) (int, int, int) {
	for i, field := range fields {
		if n, err := strconv.Atoi(field); err == nil {
			return n, i, i + 1
		}
	}

	for i, field := range fields {
		if tens, ok := ordinalTens[field]; ok && i+1 < len(fields) {
			if unit, ok := ordinalDays[fields[i+1]]; ok && unit < 10 {
				return tens + unit, i, i + 2
			}
		}

		if day, ok := ordinalDays[field]; ok {
			return day, i, i + 1
		}
	}

	return 0, 0, 0
}
