package entity

import (
	"context"
	"time"
)

// State selects which handler receives the session's next utterance.
type State string

const (
	StateIdle   State = "idle"
	StateCities State = "cities"
)

type Session struct {
	ID        string      `json:"id"`
	State     State       `json:"state"`
	Cities    *CitiesGame `json:"cities,omitempty"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func NewSession(id string) *Session {
	return &Session{
		ID:    id,
		State: StateIdle,
	}
}

func (that *Session) IsIdle() bool {
	return that.State == "" || that.State == StateIdle
}

// Reset returns the session to general command routing.
func (that *Session) Reset() {
	that.State = StateIdle
}

// Speaker is the host's "say text" capability.
type Speaker interface {
	Say(ctx context.Context, text string) error
}

// SpeakerFunc adapts a function to Speaker.
type SpeakerFunc func(ctx context.Context, text string) error

func (that SpeakerFunc) Say(ctx context.Context, text string) error {
	return that(ctx, text)
}

// Call is one utterance routed to a skill handler.
type Call struct {
	Session *Session
	Speaker Speaker
	// Utterance is the whole recognized phrase.
	Utterance string
	// Args is what follows the matched trigger.
	Args string
}

func (that *Call) Say(ctx context.Context, text string) error {
	return that.Speaker.Say(ctx, text)
}
