package tour

import (
	"context"
	"sync"
	"testing"
	"time"

	"gradhub/assistant/internal/assistant"
	"gradhub/assistant/internal/events"
	"gradhub/assistant/internal/kvstore"
	"gradhub/assistant/internal/speech"
)

type fakeSpeaker struct {
	mu    sync.Mutex
	reqs  []speech.Request
	stops int
}

func (s *fakeSpeaker) Speak(_ context.Context, req speech.Request) error {
	s.mu.Lock()
	s.reqs = append(s.reqs, req)
	s.mu.Unlock()
	return nil
}

func (s *fakeSpeaker) Stop() {
	s.mu.Lock()
	s.stops++
	s.mu.Unlock()
}

func (s *fakeSpeaker) spoken() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reqs)
}

type fakeNav struct {
	mu    sync.Mutex
	paths []string
}

func (n *fakeNav) Navigate(path string) {
	n.mu.Lock()
	n.paths = append(n.paths, path)
	n.mu.Unlock()
}

func (n *fakeNav) visited() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.paths))
	copy(out, n.paths)
	return out
}

var testSteps = []Step{
	{ID: "one", Title: "One", Text: "first step", State: assistant.StateGreeting},
	{ID: "two", Title: "Two", Text: "second step", VoiceText: "spoken second", State: assistant.StatePointing, Route: "/vacancies"},
	{ID: "three", Title: "Three", Text: "third step", State: assistant.StateThinking, Route: "/calendar"},
}

type fixture struct {
	ctrl    *assistant.Controller
	speaker *fakeSpeaker
	nav     *fakeNav
	store   kvstore.Store
	orch    *Orchestrator
}

func newFixture(t *testing.T, store kvstore.Store) *fixture {
	t.Helper()
	if store == nil {
		store = kvstore.NewMemory()
	}
	elog := events.NewLog()
	ctrl := assistant.New(store, elog, assistant.Config{})
	t.Cleanup(ctrl.Close)
	speaker := &fakeSpeaker{}
	nav := &fakeNav{}
	orch := New(ctrl, speaker, nav, store, elog, Config{StartDelay: 5 * time.Millisecond})
	return &fixture{ctrl: ctrl, speaker: speaker, nav: nav, store: store, orch: orch}
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestStartWithNoStepsIsNoOp(t *testing.T) {
	f := newFixture(t, nil)
	f.orch.Start(RoleGraduate, nil)
	if f.orch.Active() {
		t.Fatal("empty step list must not start a session")
	}
}

func TestStartShowsFirstStepAfterDelay(t *testing.T) {
	f := newFixture(t, nil)
	f.orch.Start(RoleGraduate, testSteps)
	if !f.orch.Active() {
		t.Fatal("session should be active")
	}
	waitFor(t, func() bool { return f.ctrl.Snapshot().State == assistant.StateGreeting }, "first step state")
	waitFor(t, func() bool { return f.speaker.spoken() == 1 }, "first step narration")
	if msg := f.ctrl.Snapshot().Message; msg == nil || msg.Text != "first step" {
		t.Fatalf("expected step text as message, got %+v", msg)
	}
}

func TestNextThroughAllStepsCompletesTour(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.orch.Start(RoleGraduate, testSteps)
	waitFor(t, func() bool { return f.ctrl.Snapshot().State == assistant.StateGreeting }, "first step")

	f.orch.Next(ctx) // -> step two
	f.orch.Next(ctx) // -> step three
	f.orch.Next(ctx) // -> completed

	if f.orch.Active() {
		t.Fatal("session should be inactive after the last step")
	}
	if !f.orch.IsCompleted(ctx, RoleGraduate) {
		t.Fatal("role must be marked completed")
	}
	snap := f.ctrl.Snapshot()
	if snap.State != assistant.StateCelebration {
		t.Fatalf("expected celebration close, got %q", snap.State)
	}
	if snap.Message == nil || snap.Message.Text != closingMessage {
		t.Fatalf("expected closing message, got %+v", snap.Message)
	}
	visited := f.nav.visited()
	if len(visited) != 2 || visited[0] != "/vacancies" || visited[1] != "/calendar" {
		t.Fatalf("unexpected navigation %v", visited)
	}
}

func TestVoiceTextPreferredOverText(t *testing.T) {
	f := newFixture(t, nil)
	f.orch.Start(RoleGraduate, testSteps)
	waitFor(t, func() bool { return f.speaker.spoken() == 1 }, "step one narration")
	f.orch.Next(context.Background())
	waitFor(t, func() bool { return f.speaker.spoken() == 2 }, "step two narration")

	f.speaker.mu.Lock()
	defer f.speaker.mu.Unlock()
	if f.speaker.reqs[1].Text != "spoken second" {
		t.Fatalf("expected voice text, got %q", f.speaker.reqs[1].Text)
	}
}

func TestNextBeforeStartDelayCancelsFirstReveal(t *testing.T) {
	store := kvstore.NewMemory()
	elog := events.NewLog()
	ctrl := assistant.New(store, elog, assistant.Config{})
	t.Cleanup(ctrl.Close)
	speaker := &fakeSpeaker{}
	nav := &fakeNav{}
	orch := New(ctrl, speaker, nav, store, elog, Config{StartDelay: 40 * time.Millisecond})

	orch.Start(RoleGraduate, testSteps)
	orch.Next(context.Background()) // advance inside the start window

	// Past the delay deadline only the manual advance's side effects exist:
	// one narration, one navigation, step two's state.
	time.Sleep(100 * time.Millisecond)
	if got := orch.Session().Index; got != 1 {
		t.Fatalf("expected index 1, got %d", got)
	}
	if n := speaker.spoken(); n != 1 {
		t.Fatalf("step narrated %d times; the delayed first reveal must not fire", n)
	}
	if visited := nav.visited(); len(visited) != 1 || visited[0] != "/vacancies" {
		t.Fatalf("unexpected navigation %v", visited)
	}
	if got := ctrl.Snapshot().State; got != assistant.StatePointing {
		t.Fatalf("expected step two state, got %q", got)
	}
}

func TestNextPrevOnInactiveSessionNoOp(t *testing.T) {
	f := newFixture(t, nil)
	f.orch.Next(context.Background())
	f.orch.Prev()
	if f.orch.Active() {
		t.Fatal("no session should exist")
	}
	if f.speaker.spoken() != 0 {
		t.Fatal("inactive session must not narrate")
	}
}

func TestPrevAtZeroIsNoOpAndPrevReShows(t *testing.T) {
	f := newFixture(t, nil)
	f.orch.Start(RoleGraduate, testSteps)
	waitFor(t, func() bool { return f.speaker.spoken() == 1 }, "step one")

	f.orch.Prev()
	if got := f.orch.Session().Index; got != 0 {
		t.Fatalf("prev at zero moved index to %d", got)
	}

	f.orch.Next(context.Background())
	waitFor(t, func() bool { return f.speaker.spoken() == 2 }, "step two")
	f.orch.Prev()
	waitFor(t, func() bool { return f.speaker.spoken() == 3 }, "step one re-shown")
	if got := f.ctrl.Snapshot().State; got != assistant.StateGreeting {
		t.Fatalf("expected step one state after prev, got %q", got)
	}
}

func TestSkipStopsSpeechAndMarksCompleted(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.orch.Start(RoleEmployer, testSteps)
	waitFor(t, func() bool { return f.speaker.spoken() == 1 }, "step one")

	f.orch.Skip(ctx)
	if f.orch.Active() {
		t.Fatal("session should be cleared")
	}
	if f.ctrl.Snapshot().State != assistant.StateIdle {
		t.Fatalf("expected idle after skip, got %q", f.ctrl.Snapshot().State)
	}
	if !f.orch.IsCompleted(ctx, RoleEmployer) {
		t.Fatal("skip must still mark the role completed")
	}
	f.speaker.mu.Lock()
	stops := f.speaker.stops
	f.speaker.mu.Unlock()
	if stops == 0 {
		t.Fatal("skip must stop in-flight narration")
	}
}

func TestRepeatBypassesMute(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	if !f.orch.ToggleMute(ctx) {
		t.Fatal("expected muted after toggle")
	}
	f.orch.Start(RoleGraduate, testSteps)
	waitFor(t, func() bool { return f.ctrl.Snapshot().State == assistant.StateGreeting }, "first step")
	if f.speaker.spoken() != 0 {
		t.Fatal("muted tour must not narrate")
	}

	f.orch.RepeatCurrent()
	waitFor(t, func() bool { return f.speaker.spoken() == 1 }, "explicit repeat narration")
}

func TestMutePersistsAcrossRestart(t *testing.T) {
	store := kvstore.NewMemory()
	f := newFixture(t, store)
	f.orch.ToggleMute(context.Background())

	f2 := newFixture(t, store)
	if !f2.orch.Muted() {
		t.Fatal("mute flag should survive a reload")
	}
}

func TestResetStatusAllowsTourAgain(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.orch.MarkCompleted(ctx, RoleGraduate)
	if !f.orch.IsCompleted(ctx, RoleGraduate) {
		t.Fatal("expected completed")
	}
	f.orch.ResetStatus(ctx, RoleGraduate)
	if f.orch.IsCompleted(ctx, RoleGraduate) {
		t.Fatal("expected reset")
	}
}

func TestRapidAdvancesStaySerialized(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.orch.Start(RoleGraduate, testSteps)
	waitFor(t, func() bool { return f.ctrl.Snapshot().State == assistant.StateGreeting }, "first step")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.orch.Next(ctx)
		}()
	}
	wg.Wait()

	// Two advances reach the end; the rest must observe the completed
	// session and no-op rather than corrupt the index.
	if f.orch.Active() {
		t.Fatalf("session still active at index %d", f.orch.Session().Index)
	}
	if !f.orch.IsCompleted(ctx, RoleGraduate) {
		t.Fatal("tour should be completed")
	}
}

func TestBuiltInScriptsAreOrderedAndValid(t *testing.T) {
	for _, role := range []Role{RoleGraduate, RoleEmployer} {
		steps := StepsForRole(role)
		if len(steps) == 0 {
			t.Fatalf("no steps for %s", role)
		}
		seen := map[string]bool{}
		for _, s := range steps {
			if s.ID == "" || s.Title == "" || s.Text == "" {
				t.Fatalf("incomplete step %+v for %s", s, role)
			}
			if !s.State.Valid() {
				t.Fatalf("invalid state %q in step %s", s.State, s.ID)
			}
			if seen[s.ID] {
				t.Fatalf("duplicate step id %s for %s", s.ID, role)
			}
			seen[s.ID] = true
		}
	}
	if StepsForRole(Role("other")) != nil {
		t.Fatal("unknown role should have no script")
	}
}
