package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/rocketscienceinc/irene-skills/internal/apperror"
	"github.com/rocketscienceinc/irene-skills/internal/entity"
)

const (
	sessionPrefix  = "tg:"
	updatesTimeout = 60

	replyUnknownCommand = "Не поняла команду."
	replyFailed         = "Что-то пошло не так, попробуйте ещё раз."
)

var errUpdatesClosed = errors.New("telegram updates channel closed")

type uDispatcher interface {
	Handle(ctx context.Context, sessionID, utterance string, speaker entity.Speaker) error
}

type uNotifier interface {
	Register(sessionID string, speaker entity.Speaker) func()
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// botAPI is the part of *tgbotapi.BotAPI the bot relies on.
type botAPI interface {
	sender
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type Bot struct {
	logger     *slog.Logger
	api        botAPI
	dispatcher uDispatcher
	notifier   uNotifier

	mu    sync.Mutex
	chats map[int64]func()
}

func New(logger *slog.Logger, api botAPI, dispatcher uDispatcher, notifier uNotifier) *Bot {
	return &Bot{
		logger:     logger,
		api:        api,
		dispatcher: dispatcher,
		notifier:   notifier,
		chats:      make(map[int64]func()),
	}
}

// Start - receives updates with long polling until ctx is done.
func (that *Bot) Start(ctx context.Context) error {
	log := that.logger.With("method", "Start")

	config := tgbotapi.NewUpdate(0)
	config.Timeout = updatesTimeout

	updates := that.api.GetUpdatesChan(config)
	defer that.api.StopReceivingUpdates()
	defer that.forgetChats()

	log.Info("Telegram bot started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return errUpdatesClosed
			}

			if update.Message == nil || strings.TrimSpace(update.Message.Text) == "" {
				continue
			}

			that.handleMessage(ctx, update.Message)
		}
	}
}

func (that *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	sessionID := SessionID(chatID)
	log := that.logger.With("method", "handleMessage", "sessionID", sessionID)

	speaker := &chatSpeaker{api: that.api, chatID: chatID}
	that.rememberChat(sessionID, chatID, speaker)

	err := that.dispatcher.Handle(ctx, sessionID, message.Text, speaker)
	switch {
	case errors.Is(err, apperror.ErrUnknownCommand):
		err = speaker.Say(ctx, replyUnknownCommand)
	case err != nil:
		log.Error("failed to handle message", "error", err)
		err = speaker.Say(ctx, replyFailed)
	}

	if err != nil {
		log.Error("failed to answer chat", "error", err)
	}
}

// rememberChat - makes the chat a permanent live speaker of its session.
func (that *Bot) rememberChat(sessionID string, chatID int64, speaker entity.Speaker) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.chats[chatID]; ok {
		return
	}

	that.chats[chatID] = that.notifier.Register(sessionID, speaker)
}

func (that *Bot) forgetChats() {
	that.mu.Lock()
	defer that.mu.Unlock()

	for chatID, unregister := range that.chats {
		unregister()
		delete(that.chats, chatID)
	}
}

// SessionID - maps a chat to its session.
func SessionID(chatID int64) string {
	return sessionPrefix + strconv.FormatInt(chatID, 10)
}

type chatSpeaker struct {
	api    sender
	chatID int64
}

func (that *chatSpeaker) Say(_ context.Context, text string) error {
	if _, err := that.api.Send(tgbotapi.NewMessage(that.chatID, text)); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}
