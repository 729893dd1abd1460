// Package bookingtest provides in-memory stand-ins for the booking stores,
// a settable clock and a recording event publisher.
package bookingtest

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/inn-reservation/internal/queue"
)

// Clock is a settable clock.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

// NewClock returns a Clock reading t.
func NewClock(t time.Time) *Clock { return &Clock{t: t} }

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// Events records published events.  When Err is set Publish records nothing
// and returns it.
type Events struct {
	mu     sync.Mutex
	events []queue.ReservationEvent
	Err    error
}

func (e *Events) Publish(_ context.Context, ev queue.ReservationEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Err != nil {
		return e.Err
	}
	e.events = append(e.events, ev)
	return nil
}

// All returns a copy of the recorded events.
func (e *Events) All() []queue.ReservationEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]queue.ReservationEvent(nil), e.events...)
}

// Types returns the recorded event types in order.
func (e *Events) Types() []string {
	var out []string
	for _, ev := range e.All() {
		out = append(out, ev.Type)
	}
	return out
}
