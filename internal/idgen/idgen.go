// Package idgen produces identifiers for user-created exam records.
package idgen

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Generator returns a fresh identifier on every call.
type Generator interface {
	NewID() string
}

// TimestampGenerator yields Unix-millisecond timestamps as decimal strings.
// Values are strictly increasing within one generator even when the clock
// stalls or steps back.
type TimestampGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

func NewTimestampGenerator() *TimestampGenerator {
	return &TimestampGenerator{now: time.Now}
}

func (g *TimestampGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms

	return strconv.FormatInt(ms, 10)
}

// UUIDGenerator yields time-ordered UUIDv7 strings.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// New returns the generator for scheme ("timestamp" or "uuid").
func New(scheme string) (Generator, error) {
	switch scheme {
	case "", "timestamp":
		return NewTimestampGenerator(), nil
	case "uuid":
		return UUIDGenerator{}, nil
	default:
		return nil, fmt.Errorf("unknown id scheme %q", scheme)
	}
}
