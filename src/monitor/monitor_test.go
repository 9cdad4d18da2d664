package monitor

import (
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"any-indicator/src/model"
)

type fakePointer struct {
	pos  image.Point
	down bool
}

func (p *fakePointer) Position() image.Point { return p.pos }
func (p *fakePointer) PrimaryDown() bool     { return p.down }

type fakeSampler struct {
	img   *image.RGBA
	err   error
	calls []image.Point
}

func (s *fakeSampler) Sample(at image.Point, size int) (*image.RGBA, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.calls = append(s.calls, at)
	out := image.NewRGBA(image.Rect(0, 0, size, size))
	copy(out.Pix, s.img.Pix)
	return out, nil
}

func blackSquare(n int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, n, n))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	return img
}

const ms = time.Millisecond

func newTestMachine() (*Machine, *fakePointer, *fakeSampler) {
	p := &fakePointer{}
	s := &fakeSampler{img: blackSquare(12)}
	return New(p, s, Options{}), p, s
}

// monitoring returns a machine that committed a 12x12 black baseline at
// (100,100); the returned time is the commit time.
func monitoring(t *testing.T) (*Machine, *fakePointer, *fakeSampler, time.Duration) {
	t.Helper()
	m, p, s := newTestMachine()
	m.Arm()
	m.Tick(0)
	p.pos, p.down = image.Pt(100, 100), true
	m.Tick(10 * ms)
	commitAt := 10*ms + DefaultCaptureDelay
	if u := m.Tick(commitAt); u.Committed == nil {
		t.Fatalf("expected commit at %v, mode=%v", commitAt, m.Mode())
	}
	s.calls = nil
	return m, p, s, commitAt
}

func TestStartsIdle(t *testing.T) {
	m, _, _ := newTestMachine()
	if m.Mode() != Idle || m.Visible() || m.Baseline() != nil {
		t.Fatalf("unexpected initial state: mode=%v visible=%v", m.Mode(), m.Visible())
	}
	if u := m.Tick(time.Second); u.Compared || u.Committed != nil {
		t.Fatal("idle machine must not sample")
	}
}

func TestArmClickCommitAfterDelay(t *testing.T) {
	m, p, s := newTestMachine()
	m.Arm()
	if m.Mode() != Armed {
		t.Fatalf("mode = %v, want armed", m.Mode())
	}
	m.Tick(0)

	p.pos, p.down = image.Pt(100, 100), true
	edge := 10 * ms
	m.Tick(edge)
	if m.Mode() != Pending {
		t.Fatalf("mode = %v, want pending", m.Mode())
	}
	at, deadline, ok := m.Pending()
	if !ok || at != image.Pt(100, 100) || deadline != edge+2000*ms {
		t.Fatalf("Pending() = %v, %v, %v", at, deadline, ok)
	}

	p.down = false
	p.pos = image.Pt(400, 400)
	if u := m.Tick(edge + 1999*ms); u.Committed != nil {
		t.Fatal("committed before the delay elapsed")
	}
	if m.Mode() != Pending || m.Baseline() != nil {
		t.Fatalf("mode = %v, baseline = %v; want pending, none", m.Mode(), m.Baseline())
	}

	u := m.Tick(edge + 2000*ms)
	if u.Committed == nil {
		t.Fatal("expected commit once the delay elapsed")
	}
	if m.Mode() != Monitoring || m.Visible() {
		t.Fatalf("mode = %v visible = %v; want monitoring, hidden", m.Mode(), m.Visible())
	}
	b := m.Baseline()
	if b != u.Committed || b.Anchor != image.Pt(100, 100) || b.Side() != 12 {
		t.Fatalf("unexpected baseline %+v", b)
	}
	if len(s.calls) != 1 || s.calls[0] != image.Pt(100, 100) {
		t.Fatalf("sampler calls = %v, want one at the click point", s.calls)
	}
}

func TestHeldButtonTriggersOnce(t *testing.T) {
	m, p, _ := newTestMachine()
	m.Arm()
	m.Tick(0)

	p.pos, p.down = image.Pt(5, 5), true
	transitions := 0
	prev := m.Mode()
	for i := 1; i <= 50; i++ {
		p.pos = image.Pt(5+i, 5)
		m.Tick(time.Duration(i) * 10 * ms)
		if m.Mode() == Pending && prev != Pending {
			transitions++
		}
		prev = m.Mode()
	}
	if transitions != 1 {
		t.Fatalf("pending transitions = %d, want 1", transitions)
	}
	at, deadline, _ := m.Pending()
	if at != image.Pt(6, 5) || deadline != 10*ms+DefaultCaptureDelay {
		t.Fatalf("pending point/deadline moved while held: %v %v", at, deadline)
	}
}

func TestArmWhileButtonHeldWaitsForNextPress(t *testing.T) {
	m, p, _ := newTestMachine()
	p.down = true
	m.Arm()
	m.Tick(0)
	m.Tick(10 * ms)
	if m.Mode() != Armed {
		t.Fatalf("mode = %v, a held button must not count as a click", m.Mode())
	}
	p.down = false
	m.Tick(20 * ms)
	p.down = true
	m.Tick(30 * ms)
	if m.Mode() != Pending {
		t.Fatalf("mode = %v, want pending after a fresh press", m.Mode())
	}
}

func TestRearmAbandonsPending(t *testing.T) {
	m, p, s := newTestMachine()
	m.Arm()
	m.Tick(0)
	p.down = true
	m.Tick(10 * ms)
	if m.Mode() != Pending {
		t.Fatal("expected pending")
	}
	m.Arm()
	m.Tick(5 * time.Second)
	if m.Mode() != Armed || m.Baseline() != nil || len(s.calls) != 0 {
		t.Fatalf("abandoned capture committed: mode=%v calls=%v", m.Mode(), s.calls)
	}
}

func TestSetCaptureSizeDiscardsBaseline(t *testing.T) {
	m, _, _, _ := monitoring(t)
	m.SetCaptureSize(model.Size24.Side())
	if m.Mode() != Idle || m.Baseline() != nil || m.Visible() {
		t.Fatalf("mode=%v baseline=%v visible=%v; want idle, none, hidden", m.Mode(), m.Baseline(), m.Visible())
	}
	if m.CaptureSize() != 24 {
		t.Fatalf("capture size = %d", m.CaptureSize())
	}
}

func TestSetCaptureSizeSameValueKeepsBaseline(t *testing.T) {
	m, _, _, _ := monitoring(t)
	m.SetCaptureSize(12)
	if m.Mode() != Monitoring || m.Baseline() == nil {
		t.Fatal("re-selecting the current size must not discard the baseline")
	}
}

func TestCompareThrottle(t *testing.T) {
	m, _, s, start := monitoring(t)

	if u := m.Tick(start + 10*ms); !u.Compared {
		t.Fatal("first tick in monitoring should compare")
	}
	if u := m.Tick(start + 60*ms); u.Compared {
		t.Fatal("compare ran less than 120ms after the previous one")
	}
	if u := m.Tick(start + 129*ms); u.Compared {
		t.Fatal("compare ran 119ms after the previous one")
	}
	if len(s.calls) != 1 {
		t.Fatalf("sampler calls = %d, want 1", len(s.calls))
	}
	if u := m.Tick(start + 130*ms); !u.Compared {
		t.Fatal("compare should run 120ms after the previous one")
	}
	if len(s.calls) != 2 {
		t.Fatalf("sampler calls = %d, want 2", len(s.calls))
	}
}

func TestChangeShowsAndTracksCursor(t *testing.T) {
	m, p, s, start := monitoring(t)

	m.Tick(start + 10*ms)
	if m.Visible() {
		t.Fatal("unchanged region must keep the LED hidden")
	}

	changed := blackSquare(12)
	changed.SetRGBA(5, 5, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	s.img = changed
	p.pos = image.Pt(300, 200)

	now := start + 200*ms
	u := m.Tick(now)
	if !u.VisibilityChanged || !m.Visible() {
		t.Fatal("expected the LED to show on change")
	}
	if m.Anchor() != image.Pt(300, 200) {
		t.Fatalf("anchor = %v, want snapped to cursor", m.Anchor())
	}
	if len(s.calls) == 0 || s.calls[len(s.calls)-1] != image.Pt(100, 100) {
		t.Fatalf("compare sampled %v, want the watched point", s.calls)
	}

	// Cursor tracking is not throttled.
	p.pos = image.Pt(310, 205)
	u = m.Tick(now + 10*ms)
	if u.Compared || !u.Moved || m.Anchor() != image.Pt(310, 205) {
		t.Fatalf("update=%+v anchor=%v; want unthrottled tracking", u, m.Anchor())
	}
	if u := m.Tick(now + 20*ms); u.Moved {
		t.Fatal("reported movement without cursor movement")
	}

	// Region restored: LED hides after the next compare.
	s.img = blackSquare(12)
	u = m.Tick(now + 120*ms)
	if !u.VisibilityChanged || m.Visible() {
		t.Fatal("expected the LED to hide once the region matches again")
	}
	p.pos = image.Pt(0, 0)
	if u := m.Tick(now + 130*ms); u.Moved || m.Anchor() != image.Pt(310, 205) {
		t.Fatal("anchor must not track while hidden")
	}
}

func TestArmHidesLED(t *testing.T) {
	m, _, s, start := monitoring(t)
	changed := blackSquare(12)
	changed.Pix[0] = 9
	s.img = changed
	m.Tick(start + 10*ms)
	if !m.Visible() {
		t.Fatal("expected visible")
	}
	m.Arm()
	if m.Visible() {
		t.Fatal("arming must hide the LED")
	}
	if m.Baseline() == nil {
		t.Fatal("old baseline should survive until a new one commits")
	}
	s.calls = nil
	m.Tick(start + time.Second)
	if len(s.calls) != 0 || m.Visible() {
		t.Fatal("armed machine must not compare")
	}
}

func TestCommitRetriesOnSampleFailure(t *testing.T) {
	m, p, s := newTestMachine()
	m.Arm()
	m.Tick(0)
	p.down = true
	m.Tick(0)
	s.err = errors.New("capture unavailable")
	if u := m.Tick(3 * time.Second); u.Committed != nil || m.Mode() != Pending {
		t.Fatalf("mode = %v; failed capture must stay pending", m.Mode())
	}
	s.err = nil
	if u := m.Tick(3*time.Second + 10*ms); u.Committed == nil || m.Mode() != Monitoring {
		t.Fatal("expected commit on retry")
	}
}

func TestCompareFailureDoesNotConsumeThrottle(t *testing.T) {
	m, _, s, start := monitoring(t)
	s.err = errors.New("transient")
	if u := m.Tick(start + 10*ms); u.Compared {
		t.Fatal("failed sample reported as compared")
	}
	s.err = nil
	if u := m.Tick(start + 20*ms); !u.Compared {
		t.Fatal("expected compare right after a failed attempt")
	}
}

func TestRestore(t *testing.T) {
	m, _, _ := newTestMachine()
	if m.Restore(&model.Baseline{Image: blackSquare(24), Anchor: image.Pt(1, 2)}) {
		t.Fatal("restored a baseline of the wrong size")
	}
	if m.Mode() != Idle {
		t.Fatal("mismatched restore must stay idle")
	}
	if !m.Restore(&model.Baseline{Image: blackSquare(12), Anchor: image.Pt(1, 2)}) {
		t.Fatal("expected restore to succeed")
	}
	if m.Mode() != Monitoring || m.Baseline().Anchor != image.Pt(1, 2) {
		t.Fatalf("mode = %v", m.Mode())
	}
	if m.Restore(nil) {
		t.Fatal("nil restore should fail")
	}
}
