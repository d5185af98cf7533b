// Package idle watches client input events and keeps the assistant's idle
// countdown fed. The countdown itself lives in the state controller; the
// monitor decides which events qualify and whether the assistant is enabled
// at all.
package idle

import (
	"sync"
)

// Kinds of client input that count as activity. Anything else is ignored.
const (
	KindPointerMove = "pointer_move"
	KindKeyDown     = "key_down"
	KindClick       = "click"
	KindScroll      = "scroll"
)

// Resetter is the controller-side hook; every qualifying event calls it.
type Resetter interface {
	ResetActivity()
}

type Monitor struct {
	mu      sync.Mutex
	enabled bool
	ctrl    Resetter
}

func NewMonitor(ctrl Resetter) *Monitor {
	return &Monitor{ctrl: ctrl, enabled: true}
}

// Activity reports one input event. Returns true if the event qualified and
// was forwarded.
func (m *Monitor) Activity(kind string) bool {
	if !qualifies(kind) {
		return false
	}
	m.mu.Lock()
	enabled := m.enabled
	m.mu.Unlock()
	if !enabled {
		return false
	}
	m.ctrl.ResetActivity()
	return true
}

// SetEnabled follows the assistant's enabled setting. While disabled the
// monitor drops all events.
func (m *Monitor) SetEnabled(enabled bool) {
	m.mu.Lock()
	m.enabled = enabled
	m.mu.Unlock()
}

func (m *Monitor) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

func qualifies(kind string) bool {
	switch kind {
	case KindPointerMove, KindKeyDown, KindClick, KindScroll:
		return true
	}
	return false
}
