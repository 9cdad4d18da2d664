package scheduler

import (
	"testing"
	"time"
)

const ms = time.Millisecond

func TestIndependentTriggers(t *testing.T) {
	s := New()
	var polls, blinks []time.Duration
	if err := s.Every("poll", 10*ms, func(now time.Duration) { polls = append(polls, now) }); err != nil {
		t.Fatal(err)
	}
	if err := s.Every("blink", 450*ms, func(now time.Duration) { blinks = append(blinks, now) }); err != nil {
		t.Fatal(err)
	}

	clock := &ManualClock{}
	for i := 0; i < 100; i++ {
		clock.Advance(10 * ms)
		s.Advance(clock.Now())
	}
	if len(polls) != 100 {
		t.Errorf("poll fired %d times in 1s, want 100", len(polls))
	}
	if len(blinks) != 2 || blinks[0] != 450*ms || blinks[1] != 900*ms {
		t.Errorf("blink fired at %v, want [450ms 900ms]", blinks)
	}
}

func TestAdvanceSkipsMissedPeriods(t *testing.T) {
	s := New()
	count := 0
	_ = s.Every("poll", 10*ms, func(time.Duration) { count++ })

	if n := s.Advance(95 * ms); n != 1 || count != 1 {
		t.Fatalf("fired %d (count %d) after a long stall, want exactly one", n, count)
	}
	s.Advance(100 * ms)
	if count != 1 {
		t.Fatal("fired again before one period elapsed after the stall")
	}
	s.Advance(105 * ms)
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
}

func TestSetPeriodRebases(t *testing.T) {
	s := New()
	var fired []time.Duration
	_ = s.Every("blink", 450*ms, func(now time.Duration) { fired = append(fired, now) })

	s.Advance(300 * ms)
	if err := s.SetPeriod("blink", 200*ms); err != nil {
		t.Fatal(err)
	}
	if s.Period("blink") != 200*ms {
		t.Fatalf("period = %v", s.Period("blink"))
	}
	s.Advance(450 * ms)
	if len(fired) != 0 {
		t.Fatalf("fired at old schedule: %v", fired)
	}
	s.Advance(500 * ms)
	if len(fired) != 1 || fired[0] != 500*ms {
		t.Fatalf("fired = %v, want [500ms]", fired)
	}
}

func TestRegistrationErrors(t *testing.T) {
	s := New()
	if err := s.Every("x", 0, func(time.Duration) {}); err == nil {
		t.Error("expected error for zero period")
	}
	_ = s.Every("x", ms, func(time.Duration) {})
	if err := s.Every("x", ms, func(time.Duration) {}); err == nil {
		t.Error("expected duplicate name error")
	}
	if err := s.SetPeriod("missing", ms); err == nil {
		t.Error("expected unknown trigger error")
	}
	if err := s.SetPeriod("x", -ms); err == nil {
		t.Error("expected negative period error")
	}
}

func TestTimeNeverGoesBackwards(t *testing.T) {
	s := New()
	count := 0
	_ = s.Every("poll", 10*ms, func(time.Duration) { count++ })
	s.Advance(50 * ms)
	s.Advance(20 * ms)
	if s.Now() != 50*ms {
		t.Fatalf("Now = %v, want 50ms", s.Now())
	}
	if count != 1 {
		t.Fatalf("count = %d", count)
	}
}

func TestMonotonicClock(t *testing.T) {
	c := NewMonotonic()
	a := c.Now()
	b := c.Now()
	if b < a {
		t.Fatalf("monotonic clock went backwards: %v then %v", a, b)
	}
}
