package route

import (
	"testing"
	"time"

	"gradhub/assistant/internal/assistant"
)

type call struct {
	state     assistant.State
	msg       *assistant.Message
	temporary bool
}

type recordingSetter struct{ calls []call }

func (r *recordingSetter) SetState(s assistant.State, m *assistant.Message) {
	r.calls = append(r.calls, call{state: s, msg: m})
}

func (r *recordingSetter) SetTemporaryState(s assistant.State, m *assistant.Message, _ time.Duration) {
	r.calls = append(r.calls, call{state: s, msg: m, temporary: true})
}

func TestFirstPathCountsAsChange(t *testing.T) {
	rec := &recordingSetter{}
	m := NewMapper(rec, nil, nil)
	if !m.OnPathChange("/calendar") {
		t.Fatal("first path should fire a reaction")
	}
	if len(rec.calls) != 1 || rec.calls[0].state != assistant.StatePointing {
		t.Fatalf("expected pointing hint for calendar, got %+v", rec.calls)
	}
}

func TestSamePathIsNoOp(t *testing.T) {
	rec := &recordingSetter{}
	m := NewMapper(rec, nil, nil)
	m.OnPathChange("/vacancies/123")
	if m.OnPathChange("/vacancies/123") {
		t.Fatal("re-render without a path change must not fire")
	}
	if len(rec.calls) != 1 {
		t.Fatalf("expected exactly one reaction, got %d", len(rec.calls))
	}
}

func TestPrefixMatching(t *testing.T) {
	rec := &recordingSetter{}
	m := NewMapper(rec, nil, nil)
	m.OnPathChange("/vacancies/42/details")
	if rec.calls[0].state != assistant.StateThinking {
		t.Fatalf("prefix rule should match nested path, got %+v", rec.calls[0])
	}
}

func TestUnmatchedPathGoesIdle(t *testing.T) {
	rec := &recordingSetter{}
	m := NewMapper(rec, nil, nil)
	m.OnPathChange("/some/unknown/screen")
	if len(rec.calls) != 1 {
		t.Fatalf("expected one reaction, got %d", len(rec.calls))
	}
	c := rec.calls[0]
	if c.state != assistant.StateIdle || c.msg != nil || c.temporary {
		t.Fatalf("unmatched path should issue plain idle, got %+v", c)
	}
}

func TestSuspendedWhileTourActive(t *testing.T) {
	rec := &recordingSetter{}
	active := true
	m := NewMapper(rec, func() bool { return active }, nil)

	if m.OnPathChange("/calendar") {
		t.Fatal("mapper must not fire during a tour")
	}
	if len(rec.calls) != 0 {
		t.Fatalf("reactions issued during tour: %+v", rec.calls)
	}

	// The path seen during the tour is still recorded.
	active = false
	if m.OnPathChange("/calendar") {
		t.Fatal("same path after tour should stay a no-op")
	}
	if !m.OnPathChange("/profile") {
		t.Fatal("new path after tour should fire")
	}
}

func TestExactRootDoesNotPrefixEverything(t *testing.T) {
	rec := &recordingSetter{}
	m := NewMapper(rec, nil, nil)
	m.OnPathChange("/unknown")
	if rec.calls[0].state == assistant.StateGreeting {
		t.Fatal("root rule is exact and must not match /unknown")
	}
}
