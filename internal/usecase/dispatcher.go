package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rocketscienceinc/irene-skills/internal/apperror"
	"github.com/rocketscienceinc/irene-skills/internal/entity"
)

// Handler serves one routed utterance.
type Handler func(ctx context.Context, call *entity.Call) error

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

type Dispatcher struct {
	logger      *slog.Logger
	sessionRepo sessionRepo

	registry      *Registry
	handlers      map[CommandKind]Handler
	stateHandlers map[entity.State]Handler

	locks *sessionLocks
	now   func() time.Time
}

// NewDispatcher builds the registry from the bindings that have a handler, so disabled skills register nothing.
func NewDispatcher(
	logger *slog.Logger,
	sessionRepo sessionRepo,
	bindings []Binding,
	handlers map[CommandKind]Handler,
	stateHandlers map[entity.State]Handler,
) (*Dispatcher, error) {
	enabled := make([]Binding, 0, len(bindings))
	for _, binding := range bindings {
		if _, ok := handlers[binding.Kind]; ok {
			enabled = append(enabled, binding)
		}
	}

	registry, err := NewRegistry(enabled)
	if err != nil {
		return nil, fmt.Errorf("failed to build registry: %w", err)
	}

	return &Dispatcher{
		logger:      logger,
		sessionRepo: sessionRepo,

		registry:      registry,
		handlers:      handlers,
		stateHandlers: stateHandlers,

		locks: newSessionLocks(),
		now:   time.Now,
	}, nil
}

// Handle routes one utterance of the session and persists the session afterwards.
func (that *Dispatcher) Handle(ctx context.Context, sessionID, utterance string, speaker entity.Speaker) error {
	log := that.logger.With("method", "Handle", "sessionID", sessionID)

	unlock := that.locks.lock(sessionID)
	defer unlock()

	session, err := that.getOrCreateSession(ctx, sessionID)
	if err != nil {
		return err
	}

	call := &entity.Call{
		Session:   session,
		Speaker:   speaker,
		Utterance: strings.TrimSpace(utterance),
	}

	handler, command := that.route(session, call)
	if handler == nil {
		log.Debug("unknown command", "utterance", utterance)
		return apperror.ErrUnknownCommand
	}

	log.Debug("routing utterance", "command", command, "state", session.State)

	if err = handler(ctx, call); err != nil {
		return fmt.Errorf("failed to handle %s: %w", command, err)
	}

	session.UpdatedAt = that.now()

	if err = that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Forget drops the session with any game in progress; the next utterance starts a fresh one.
func (that *Dispatcher) Forget(ctx context.Context, sessionID string) error {
	unlock := that.locks.lock(sessionID)
	defer unlock()

	if err := that.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to forget session: %w", err)
	}

	return nil
}

// route prefers the handler owning the session state over trigger matching.
func (that *Dispatcher) route(session *entity.Session, call *entity.Call) (Handler, string) {
	if !session.IsIdle() {
		if handler, ok := that.stateHandlers[session.State]; ok {
			call.Args = call.Utterance
			return handler, string(session.State)
		}

		session.Reset()
	}

	match, ok := that.registry.Match(call.Utterance)
	if !ok {
		return nil, CommandUnknown.String()
	}

	call.Args = match.Args

	return that.handlers[match.Kind], match.Kind.String()
}

func (that *Dispatcher) getOrCreateSession(ctx context.Context, sessionID string) (*entity.Session, error) {
	session, err := that.sessionRepo.GetByID(ctx, sessionID)
	if errors.Is(err, apperror.ErrSessionNotFound) {
		return entity.NewSession(sessionID), nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// sessionLocks serializes work per session and forgets sessions nobody waits on.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sessionLock)}
}

func (that *sessionLocks) lock(id string) func() {
	that.mu.Lock()
	l, ok := that.locks[id]
	if !ok {
		l = &sessionLock{}
		that.locks[id] = l
	}
	l.refs++
	that.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		that.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(that.locks, id)
		}
		that.mu.Unlock()
	}
}
