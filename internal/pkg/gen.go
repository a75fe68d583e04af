package pkg

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// GenerateSessionID - generates a new unique sessionID.
func GenerateSessionID() string {
	return uuid.NewString()
}

// GenerateID - generates a new unique ID for stored objects.
func GenerateID() string {
	return uuid.NewString()
}

// GenerateEventUID - generates a calendar event UID in the given domain.
func GenerateEventUID(domain string) string {
	return uuid.NewString() + "@" + domain
}

// Rand is a source of uniform choices safe for concurrent use.
type Rand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRand(seed int64) *Rand {
	return &Rand{rnd: rand.New(rand.NewSource(seed))} //nolint: gosec // game moves, not secrets
}

func NewTimeSeededRand() *Rand {
	return NewRand(time.Now().UnixNano())
}

func (that *Rand) Intn(n int) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.rnd.Intn(n)
}
