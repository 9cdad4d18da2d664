// Package scheduler dispatches periodic triggers against a monotonic clock.
// Time is passed in explicitly so trigger logic can be driven
// deterministically in tests.
package scheduler

import (
	"fmt"
	"time"
)

// Clock returns monotonic time elapsed since some fixed origin.
type Clock interface {
	Now() time.Duration
}

type monotonic struct{ start time.Time }

// NewMonotonic returns a clock measuring from now. time.Since uses the
// monotonic reading, so wall-clock adjustments do not affect it.
func NewMonotonic() Clock { return monotonic{start: time.Now()} }

func (m monotonic) Now() time.Duration { return time.Since(m.start) }

// ManualClock only moves when told to.
type ManualClock struct{ T time.Duration }

func (c *ManualClock) Now() time.Duration      { return c.T }
func (c *ManualClock) Advance(d time.Duration) { c.T += d }

type trigger struct {
	name   string
	period time.Duration
	next   time.Duration
	fn     func(now time.Duration)
}

// Scheduler holds named periodic triggers. It is not safe for concurrent
// use.
type Scheduler struct {
	triggers []*trigger
	now      time.Duration
}

func New() *Scheduler { return &Scheduler{} }

// Every registers fn to run every period, first due one period after the
// current scheduler time.
func (s *Scheduler) Every(name string, period time.Duration, fn func(now time.Duration)) error {
	if period <= 0 {
		return fmt.Errorf("trigger %q: period must be positive, got %v", name, period)
	}
	if s.find(name) != nil {
		return fmt.Errorf("trigger %q already registered", name)
	}
	s.triggers = append(s.triggers, &trigger{name: name, period: period, next: s.now + period, fn: fn})
	return nil
}

// SetPeriod changes a trigger's period. The next firing is one new period
// after the current scheduler time.
func (s *Scheduler) SetPeriod(name string, period time.Duration) error {
	t := s.find(name)
	if t == nil {
		return fmt.Errorf("trigger %q not registered", name)
	}
	if period <= 0 {
		return fmt.Errorf("trigger %q: period must be positive, got %v", name, period)
	}
	if t.period == period {
		return nil
	}
	t.period = period
	t.next = s.now + period
	return nil
}

// Period returns a trigger's current period, or 0 if unknown.
func (s *Scheduler) Period(name string) time.Duration {
	if t := s.find(name); t != nil {
		return t.period
	}
	return 0
}

// Advance moves the scheduler to now and fires every due trigger once, in
// registration order. Missed periods are skipped rather than replayed.
// Time never goes backwards.
func (s *Scheduler) Advance(now time.Duration) int {
	if now < s.now {
		now = s.now
	}
	s.now = now
	fired := 0
	for _, t := range s.triggers {
		if now < t.next {
			continue
		}
		t.next += t.period
		if t.next <= now {
			t.next = now + t.period
		}
		t.fn(now)
		fired++
	}
	return fired
}

// Now returns the time of the last Advance.
func (s *Scheduler) Now() time.Duration { return s.now }

func (s *Scheduler) find(name string) *trigger {
	for _, t := range s.triggers {
		if t.name == name {
			return t
		}
	}
	return nil
}
