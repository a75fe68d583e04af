package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/irene-skills/internal/entity"
)

type outboxRepo interface {
	Push(ctx context.Context, sessionID, text string) error
	Drain(ctx context.Context, sessionID string) ([]string, error)
}

// Notifier delivers messages that outlive the request which produced them.
// Connected sessions get them at once; the rest find them in the outbox.
type Notifier struct {
	logger *slog.Logger
	outbox outboxRepo

	mu     sync.RWMutex
	nextID uint64
	live   map[string]map[uint64]entity.Speaker
}

func NewNotifier(logger *slog.Logger, outbox outboxRepo) *Notifier {
	return &Notifier{
		logger: logger,
		outbox: outbox,
		live:   make(map[string]map[uint64]entity.Speaker),
	}
}

// Register attaches a live speaker to the session until the returned func is called.
func (that *Notifier) Register(sessionID string, speaker entity.Speaker) func() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.nextID++
	id := that.nextID

	if that.live[sessionID] == nil {
		that.live[sessionID] = make(map[uint64]entity.Speaker)
	}
	that.live[sessionID][id] = speaker

	return func() {
		that.mu.Lock()
		defer that.mu.Unlock()

		delete(that.live[sessionID], id)
		if len(that.live[sessionID]) == 0 {
			delete(that.live, sessionID)
		}
	}
}

func (that *Notifier) Notify(ctx context.Context, sessionID, text string) error {
	log := that.logger.With("method", "Notify", "sessionID", sessionID)

	delivered := false
	for _, speaker := range that.speakers(sessionID) {
		if err := speaker.Say(ctx, text); err != nil {
			log.Warn("failed to deliver to live speaker", "error", err)
			continue
		}

		delivered = true
	}

	if delivered {
		return nil
	}

	if err := that.outbox.Push(ctx, sessionID, text); err != nil {
		return fmt.Errorf("failed to push to outbox: %w", err)
	}

	return nil
}

// Pending returns and forgets the messages stored for the session.
func (that *Notifier) Pending(ctx context.Context, sessionID string) ([]string, error) {
	messages, err := that.outbox.Drain(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to drain outbox: %w", err)
	}

	return messages, nil
}

func (that *Notifier) speakers(sessionID string) []entity.Speaker {
	that.mu.RLock()
	defer that.mu.RUnlock()

	speakers := make([]entity.Speaker, 0, len(that.live[sessionID]))
	for _, speaker := range that.live[sessionID] {
		speakers = append(speakers, speaker)
	}

	return speakers
}
