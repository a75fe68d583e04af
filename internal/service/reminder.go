package service

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rocketscienceinc/irene-skills/internal/config"
	"github.com/rocketscienceinc/irene-skills/internal/entity"
	"github.com/rocketscienceinc/irene-skills/internal/pkg"
)

const defaultReminderText = "сделать то, о чём вы просили"

var reminderRe = regexp.MustCompile(`через\s+(\d+)\s*(секунды|секунду|секунд|сек|минуты|минуту|минут|мин)(?:\s|$)`)

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run once after d.
type AfterFunc func(d time.Duration, f func()) Timer

func systemAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type ReminderService interface {
	Remind(ctx context.Context, call *entity.Call) error
	// Close stops the timers and hands reminders that have not fired yet to the notifier,
	// so a session without a live speaker finds them in its outbox.
	Close()
}

type reminderService struct {
	logger *slog.Logger

	conf      config.Reminder
	notifier  Notifier
	afterFunc AfterFunc
	now       func() time.Time

	mu      sync.Mutex
	pending map[string]pendingReminder
}

type pendingReminder struct {
	timer    Timer
	reminder *entity.Reminder
}

func NewReminderService(logger *slog.Logger, conf config.Reminder, notifier Notifier, afterFunc AfterFunc) ReminderService {
	if afterFunc == nil {
		afterFunc = systemAfterFunc
	}

	return &reminderService{
		logger:    logger,
		conf:      conf,
		notifier:  notifier,
		afterFunc: afterFunc,
		now:       time.Now,
		pending:   make(map[string]pendingReminder),
	}
}

func (that *reminderService) Remind(ctx context.Context, call *entity.Call) error {
	log := that.logger.With("method", "Remind", "sessionID", call.Session.ID)

	amount, unit, text, ok := ParseReminder(call.Utterance)
	if !ok {
		return call.Say(ctx, "Извините, я понимаю только напоминания вида «через X минут/секунд»")
	}

	delay := time.Duration(amount) * unit

	reminder := &entity.Reminder{
		ID:        pkg.GenerateID(),
		SessionID: call.Session.ID,
		Text:      text,
		DueAt:     that.now().Add(delay),
	}

	that.schedule(reminder, delay)

	log.Debug("reminder scheduled", "id", reminder.ID, "delay", delay)

	reply := strings.NewReplacer(
		"{duration}", strconv.Itoa(amount),
		"{unit}", unitName(amount, unit),
		"{text}", text,
	).Replace(that.conf.ReplySet)

	return call.Say(ctx, reply)
}

func (that *reminderService) schedule(reminder *entity.Reminder, delay time.Duration) {
	that.mu.Lock()
	defer that.mu.Unlock()

	timer := that.afterFunc(delay, func() {
		that.mu.Lock()
		delete(that.pending, reminder.ID)
		that.mu.Unlock()

		that.deliver(reminder)
	})

	that.pending[reminder.ID] = pendingReminder{timer: timer, reminder: reminder}
}

func (that *reminderService) deliver(reminder *entity.Reminder) {
	text := strings.ReplaceAll(that.conf.ReplyRemind, "{text}", reminder.Text)
	if err := that.notifier.Notify(context.Background(), reminder.SessionID, text); err != nil {
		that.logger.Error("failed to deliver reminder", "id", reminder.ID, "error", err)
	}
}

func (that *reminderService) Close() {
	that.mu.Lock()

	unfired := make([]*entity.Reminder, 0, len(that.pending))
	for id, pending := range that.pending {
		if pending.timer.Stop() {
			unfired = append(unfired, pending.reminder)
		}

		delete(that.pending, id)
	}

	that.mu.Unlock()

	for _, reminder := range unfired {
		that.logger.Warn("delivering reminder early on shutdown", "id", reminder.ID, "dueAt", reminder.DueAt)
		that.deliver(reminder)
	}
}

// ParseReminder extracts "через N секунд|минут <text>" from an utterance; N may be spelled in words.
func ParseReminder(utterance string) (int, time.Duration, string, bool) {
	phrase := strings.Join(pkg.ReplaceNumberWords(strings.Fields(pkg.NormalizePhrase(utterance))), " ")

	loc := reminderRe.FindStringSubmatchIndex(phrase)
	if loc == nil {
		return 0, 0, "", false
	}

	amount, err := strconv.Atoi(phrase[loc[2]:loc[3]])
	if err != nil || amount <= 0 {
		return 0, 0, "", false
	}

	unit := time.Second
	if strings.HasPrefix(phrase[loc[4]:loc[5]], "мин") {
		unit = time.Minute
	}

	text := strings.TrimSpace(phrase[loc[1]:])
	if text == "" {
		text = defaultReminderText
	}

	return amount, unit, text, true
}

func unitName(amount int, unit time.Duration) string {
	if unit == time.Minute {
		return pkg.Plural(amount, "минуту", "минуты", "минут")
	}

	return pkg.Plural(amount, "секунду", "секунды", "секунд")
}
