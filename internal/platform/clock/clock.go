// Package clock provides the time sources used by command guards and queries.
package clock

import (
	"fmt"
	"sync"
	"time"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
)

// System reads the wall clock in a fixed location.
type System struct {
	loc *time.Location
}

// NewSystem returns a wall clock in loc; nil selects UTC.
func NewSystem(loc *time.Location) *System {
	if loc == nil {
		loc = time.UTC
	}
	return &System{loc: loc}
}

// LoadSystem resolves an IANA zone name such as Europe/Warsaw.
func LoadSystem(zone string) (*System, error) {
	if zone == "" {
		return NewSystem(time.UTC), nil
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", zone, err)
	}
	return NewSystem(loc), nil
}

func (c *System) Now() time.Time { return time.Now().In(c.loc) }

func (c *System) Today() domain.Date { return domain.DateOf(c.Now()) }

func (c *System) Location() *time.Location { return c.loc }

// Fake is a manually driven clock for tests.
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

func NewFake(now time.Time) *Fake {
	return &Fake{now: now}
}

func (c *Fake) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Fake) Today() domain.Date { return domain.DateOf(c.Now()) }

func (c *Fake) Location() *time.Location { return c.Now().Location() }

// Set moves the clock to t.
func (c *Fake) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d.
func (c *Fake) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
