package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rocketscienceinc/irene-skills/internal/config"
	"github.com/rocketscienceinc/irene-skills/internal/entity"
	"github.com/rocketscienceinc/irene-skills/internal/pkg"
)

var (
	weekdayNames = [...]string{"воскресенье", "понедельник", "вторник", "среда", "четверг", "пятница", "суббота"}

	monthGenitive = [...]string{
		"", "января", "февраля", "марта", "апреля", "мая", "июня",
		"июля", "августа", "сентября", "октября", "ноября", "декабря",
	}
)

type DateTimeService interface {
	Today(ctx context.Context, call *entity.Call) error
	DaysToNewYear(ctx context.Context, call *entity.Call) error
	// Time says the time in digits.
	Time(ctx context.Context, call *entity.Call) error
	// TimeInWords says the time in words using the configured reply template.
	TimeInWords(ctx context.Context, call *entity.Call) error
}

type dateTimeService struct {
	conf config.DateTime
	now  func() time.Time
}

func NewDateTimeService(conf config.DateTime, now func() time.Time) DateTimeService {
	if now == nil {
		now = time.Now
	}

	return &dateTimeService{
		conf: conf,
		now:  now,
	}
}

func (that *dateTimeService) Today(ctx context.Context, call *entity.Call) error {
	now := that.now()

	return call.Say(ctx, fmt.Sprintf("Сегодня %s, %d %s %d года (%s)",
		weekdayNames[now.Weekday()], now.Day(), monthGenitive[now.Month()], now.Year(), season(now.Month())))
}

func (that *dateTimeService) DaysToNewYear(ctx context.Context, call *entity.Call) error {
	now := that.now()
	newYear := time.Date(now.Year()+1, time.January, 1, 0, 0, 0, 0, now.Location())
	days := int(newYear.Sub(now).Hours() / 24)

	return call.Say(ctx, fmt.Sprintf("До Нового года осталось %d %s", days, pkg.Plural(days, "день", "дня", "дней")))
}

func (that *dateTimeService) Time(ctx context.Context, call *entity.Call) error {
	now := that.now()

	return call.Say(ctx, fmt.Sprintf("Сейчас %d:%02d", now.Hour(), now.Minute()))
}

func (that *dateTimeService) TimeInWords(ctx context.Context, call *entity.Call) error {
	now := that.now()

	return call.Say(ctx, strings.ReplaceAll(that.conf.Reply, "{time}", TimeInWords(now.Hour(), now.Minute())))
}

// TimeInWords spells "четырнадцать часов девять минут" or "… часов ровно".
func TimeInWords(hour, minute int) string {
	if minute == 0 {
		return pkg.SayNumber(hour) + " часов ровно"
	}

	return fmt.Sprintf("%s часов %s минут", pkg.SayNumber(hour), pkg.SayNumber(minute))
}

func season(month time.Month) string {
	switch month {
	case time.December, time.January, time.February:
		return "зима"
	case time.March, time.April, time.May:
		return "весна"
	case time.June, time.July, time.August:
		return "лето"
	default:
		return "осень"
	}
}
