// Package route reacts to navigation changes with assistant state hints.
// Exactly one reaction fires per path change; repeats of the same path are
// no-ops, and the mapper stays silent while a guided tour is running.
package route

import (
	"sync"
	"time"

	"gradhub/assistant/internal/assistant"
)

// StateSetter is the controller-side surface the mapper drives.
type StateSetter interface {
	SetState(state assistant.State, msg *assistant.Message)
	SetTemporaryState(state assistant.State, msg *assistant.Message, d time.Duration)
}

// Reaction is what landing on a screen does to the assistant.
type Reaction struct {
	State     assistant.State
	Message   string
	Temporary bool
	Duration  time.Duration
}

// Rule maps a path (exact or prefix) to a reaction. Rules are checked in
// order; the first match wins.
type Rule struct {
	Pattern string
	Prefix  bool
	React   Reaction
}

type Mapper struct {
	ctrl       StateSetter
	tourActive func() bool

	mu       sync.Mutex
	rules    []Rule
	lastPath string
	seen     bool
}

func NewMapper(ctrl StateSetter, tourActive func() bool, rules []Rule) *Mapper {
	if rules == nil {
		rules = DefaultRules()
	}
	if tourActive == nil {
		tourActive = func() bool { return false }
	}
	return &Mapper{ctrl: ctrl, tourActive: tourActive, rules: rules}
}

// DefaultRules covers the platform's screens. Unmatched paths fall through
// to a plain idle reset.
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: "/", React: Reaction{State: assistant.StateGreeting, Message: "Welcome back! Glad to see you.", Temporary: true}},
		{Pattern: "/calendar", Prefix: true, React: Reaction{State: assistant.StatePointing, Message: "Your interviews live here. Don't miss one!", Temporary: true}},
		{Pattern: "/tour", Prefix: true, React: Reaction{State: assistant.StatePointing, Message: "Want a walkthrough? Start the tour right here.", Temporary: true}},
		{Pattern: "/vacancies", Prefix: true, React: Reaction{State: assistant.StateThinking, Message: "Hmm, let's find something that fits you.", Temporary: true}},
		{Pattern: "/candidates", Prefix: true, React: Reaction{State: assistant.StateThinking, Message: "Plenty of strong profiles to browse today.", Temporary: true}},
		{Pattern: "/resume", Prefix: true, React: Reaction{State: assistant.StateGreeting, Message: "A sharp resume opens doors. Let's work on it.", Temporary: true}},
		{Pattern: "/profile", Prefix: true, React: Reaction{State: assistant.StateGreeting, Message: "Keep your profile fresh!", Temporary: true}},
	}
}

// OnPathChange handles one navigation notification. The first observed path
// counts as a change from "no previous path". Returns true when a reaction
// was issued.
func (m *Mapper) OnPathChange(path string) bool {
	m.mu.Lock()
	if m.seen && m.lastPath == path {
		m.mu.Unlock()
		return false
	}
	m.seen = true
	m.lastPath = path
	m.mu.Unlock()

	// Tour-driven state changes take precedence; the path is still
	// recorded so re-renders after the tour stay no-ops.
	if m.tourActive() {
		return false
	}

	react, ok := m.lookup(path)
	if !ok {
		m.ctrl.SetState(assistant.StateIdle, nil)
		return true
	}
	var msg *assistant.Message
	if react.Message != "" {
		msg = &assistant.Message{Text: react.Message}
	}
	if react.Temporary {
		m.ctrl.SetTemporaryState(react.State, msg, react.Duration)
	} else {
		m.ctrl.SetState(react.State, msg)
	}
	return true
}

func (m *Mapper) lookup(path string) (Reaction, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rules {
		if r.Prefix {
			if len(path) >= len(r.Pattern) && path[:len(r.Pattern)] == r.Pattern {
				return r.React, true
			}
		} else if path == r.Pattern {
			return r.React, true
		}
	}
	return Reaction{}, false
}
