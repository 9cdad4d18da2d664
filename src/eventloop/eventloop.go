package eventloop

import (
	"context"
	"errors"
	"log"
	"time"

	"any-indicator/src/indicator"
	"any-indicator/src/messages"
	"any-indicator/src/scheduler"
)

const (
	DefaultPollInterval = 10 * time.Millisecond

	triggerPoll  = "poll"
	triggerBlink = "blink"
)

// Loop is the single-threaded coordinator. It owns the indicator; other
// goroutines only Post commands.
type Loop struct {
	ind      *indicator.Indicator
	sched    *scheduler.Scheduler
	clock    scheduler.Clock
	poll     time.Duration
	commands chan messages.Message
	pollers  []func(now time.Duration)
	notify   func(msg string)
}

type Options struct {
	PollInterval time.Duration
	Clock        scheduler.Clock
}

// New creates a loop driving ind. Zero options take the defaults.
func New(ind *indicator.Indicator, opts Options) *Loop {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Clock == nil {
		opts.Clock = scheduler.NewMonotonic()
	}
	l := &Loop{
		ind:      ind,
		sched:    scheduler.New(),
		clock:    opts.Clock,
		poll:     opts.PollInterval,
		commands: make(chan messages.Message, 16),
	}
	// Poll runs before blink when both are due.
	_ = l.sched.Every(triggerPoll, l.poll, l.onPoll)
	_ = l.sched.Every(triggerBlink, ind.BlinkPeriod(), ind.Blink)
	ind.OnBlinkPeriodChanged = func(p time.Duration) {
		if err := l.sched.SetPeriod(triggerBlink, p); err != nil {
			log.Printf("eventloop: %v", err)
		}
	}
	return l
}

// AddPoller registers fn to run on every poll tick after the indicator.
func (l *Loop) AddPoller(fn func(now time.Duration)) { l.pollers = append(l.pollers, fn) }

// SetNotifier sets how command failures are shown to the user.
func (l *Loop) SetNotifier(fn func(msg string)) { l.notify = fn }

// Post queues a command without blocking. It reports false when the queue
// is full and the command was dropped.
func (l *Loop) Post(m messages.Message) bool {
	select {
	case l.commands <- m:
		return true
	default:
		log.Printf("eventloop: queue full, dropping %s", m.Type())
		return false
	}
}

// BlinkPeriod returns the live blink trigger period.
func (l *Loop) BlinkPeriod() time.Duration { return l.sched.Period(triggerBlink) }

// Run drives the scheduler until ctx is cancelled or a RequestExit command
// is handled. State is persisted on the way out either way.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.poll)
	defer ticker.Stop()
	log.Printf("eventloop: running, poll every %v, blink every %v", l.poll, l.BlinkPeriod())

	for {
		select {
		case <-ctx.Done():
			l.ind.RequestExit()
			return ctx.Err()
		case <-ticker.C:
			l.Step()
		case m := <-l.commands:
			l.Handle(m)
			if l.ind.Exited() {
				return nil
			}
		}
	}
}

// Step advances the scheduler to the clock's current time.
func (l *Loop) Step() int { return l.sched.Advance(l.clock.Now()) }

// Handle executes one command on the loop goroutine.
func (l *Loop) Handle(m messages.Message) {
	switch m := m.(type) {
	case messages.ArmCapture:
		log.Printf("eventloop: arm capture from %s", m.Source)
		l.ind.ArmCapture()
	case messages.SetPalette:
		l.ind.SetPalette(m.Palette)
	case messages.SetBlinkSpeed:
		l.ind.SetBlinkSpeed(m.Speed)
	case messages.SetCaptureArea:
		l.ind.SetCaptureArea(m.Area)
	case messages.SetLedSize:
		l.ind.SetLedSize(m.Size)
	case messages.CopyBaseline:
		l.report("Baseline copied", l.ind.CopyBaseline())
	case messages.CopyWatchedPoint:
		l.report("Watched point copied", l.ind.CopyWatchedPoint())
	case messages.RequestExit:
		log.Printf("eventloop: exit requested (%s)", m.Reason)
		l.ind.RequestExit()
	default:
		log.Printf("eventloop: unhandled message %s", m.Type())
	}
}

func (l *Loop) onPoll(now time.Duration) {
	l.ind.Poll(now)
	for _, fn := range l.pollers {
		fn(now)
	}
}

func (l *Loop) report(ok string, err error) {
	msg := ok
	switch {
	case err == nil:
	case errors.Is(err, indicator.ErrNoBaseline):
		msg = "No baseline captured yet"
	default:
		log.Printf("eventloop: %v", err)
		msg = "Clipboard error"
	}
	if l.notify != nil {
		l.notify(msg)
	}
}
