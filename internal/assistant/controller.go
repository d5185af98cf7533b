package assistant

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"gradhub/assistant/internal/events"
	"gradhub/assistant/internal/kvstore"
	"gradhub/assistant/internal/sched"
)

const (
	// DefaultTemporaryDuration is used when SetTemporaryState is called
	// with a non-positive duration.
	DefaultTemporaryDuration = 3 * time.Second

	defaultGreetingPulse = 1500 * time.Millisecond

	wakePhrase  = "Oh, welcome back! I dozed off for a moment."
	sleepPhrase = ""
)

// Config tunes controller timing. Zero values fall back to defaults.
type Config struct {
	// GreetingPulse is how long the greeting flash lasts when activity
	// wakes a sleeping assistant.
	GreetingPulse time.Duration
}

// Snapshot is the externally visible controller state, pushed to clients on
// every change.
type Snapshot struct {
	State    State    `json:"state"`
	Message  *Message `json:"message,omitempty"`
	Visible  bool     `json:"visible"`
	Settings Settings `json:"settings"`
}

// Controller is the assistant's central state machine. It exclusively owns
// the current state, the transient message and the persisted settings; every
// other component reads or drives it. All timers it starts are single-slot
// sched tasks, so a new countdown always replaces the previous one and
// Close leaves nothing ticking.
type Controller struct {
	store kvstore.Store
	elog  *events.Log

	greetingPulse time.Duration

	mu       sync.Mutex
	state    State
	message  *Message
	visible  bool
	settings Settings
	closed   bool

	revert sched.Task
	idle   sched.Task

	onChange       func(Snapshot)
	onCornerChange func(Corner)
}

// New loads persisted settings (falling back to defaults on a missing or
// corrupt record) and returns a controller in the idle state. The idle
// countdown starts immediately.
func New(store kvstore.Store, elog *events.Log, cfg Config) *Controller {
	if cfg.GreetingPulse <= 0 {
		cfg.GreetingPulse = defaultGreetingPulse
	}
	c := &Controller{
		store:         store,
		elog:          elog,
		greetingPulse: cfg.GreetingPulse,
		state:         StateIdle,
		visible:       true,
		settings:      loadSettings(store),
	}
	c.mu.Lock()
	c.restartIdleLocked()
	c.mu.Unlock()
	return c
}

func loadSettings(store kvstore.Store) Settings {
	raw, ok, err := store.Get(context.Background(), kvstore.KeySettings)
	if err != nil {
		log.Printf("[assistant] load settings: %v", err)
		return DefaultSettings()
	}
	if !ok {
		return DefaultSettings()
	}
	var s Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		log.Printf("[assistant] corrupt persisted settings, using defaults: %v", err)
		return DefaultSettings()
	}
	return s
}

// SetOnChange registers the snapshot fan-out callback. Call before serving.
func (c *Controller) SetOnChange(fn func(Snapshot)) { c.onChange = fn }

// SetOnCornerChange registers the hook fired when the default corner
// setting changes (the position manager uses it to drop a drag override).
func (c *Controller) SetOnCornerChange(fn func(Corner)) { c.onCornerChange = fn }

// SetState immediately replaces the current state and message. Any pending
// auto-revert is cancelled; unless the new state is sleeping, the idle
// countdown restarts.
func (c *Controller) SetState(state State, msg *Message) {
	if !state.Valid() {
		log.Printf("[assistant] ignoring invalid state %q", state)
		return
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.revert.Cancel()
	c.applyLocked(state, msg)
	if state != StateSleeping {
		c.restartIdleLocked()
	}
	c.mu.Unlock()
	c.notify()
}

// SetTemporaryState behaves like SetState but schedules an automatic revert
// to idle (clearing the message) after d. A second call before expiry
// replaces the pending revert; temporary states never queue.
func (c *Controller) SetTemporaryState(state State, msg *Message, d time.Duration) {
	if !state.Valid() {
		log.Printf("[assistant] ignoring invalid state %q", state)
		return
	}
	if d <= 0 {
		d = DefaultTemporaryDuration
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.applyLocked(state, msg)
	if state != StateSleeping {
		c.restartIdleLocked()
	}
	c.revert.Schedule(d, c.revertToIdle)
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) revertToIdle() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.applyLocked(StateIdle, nil)
	c.restartIdleLocked()
	c.mu.Unlock()
	c.notify()
}

// Hide stops the assistant from rendering; timers keep ticking.
func (c *Controller) Hide() { c.setVisible(false) }

// Show makes the assistant render again.
func (c *Controller) Show() { c.setVisible(true) }

func (c *Controller) setVisible(v bool) {
	c.mu.Lock()
	if c.closed || c.visible == v {
		c.mu.Unlock()
		return
	}
	c.visible = v
	c.mu.Unlock()
	c.notify()
}

// UpdateSettings merges the patch into the current settings and persists the
// result. Persistence failures are logged, not surfaced: the in-memory
// settings still take effect.
func (c *Controller) UpdateSettings(ctx context.Context, patch SettingsPatch) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	prev := c.settings
	c.settings = prev.merge(patch)
	merged := c.settings

	// Enabling, disabling or retiming the idle countdown takes effect now.
	c.restartIdleLocked()
	cornerChanged := merged.Position != prev.Position
	c.mu.Unlock()

	metricSettingsUpdates.Inc()
	raw, err := json.Marshal(merged)
	if err == nil {
		err = c.store.Set(ctx, kvstore.KeySettings, raw)
	}
	if err != nil {
		log.Printf("[assistant] persist settings: %v", err)
	}
	if cornerChanged && c.onCornerChange != nil {
		c.onCornerChange(merged.Position)
	}
	c.notify()
}

// ResetActivity is called by the idle monitor on every qualifying input
// event. A sleeping assistant wakes through a short greeting pulse back to
// idle; in every case the idle countdown restarts.
func (c *Controller) ResetActivity() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	woke := false
	if c.state == StateSleeping {
		woke = true
		// The pulse rides the same revert slot every other transition owns,
		// so a later SetState or SetTemporaryState replaces it.
		c.applyLocked(StateGreeting, &Message{Text: wakePhrase})
		c.revert.Schedule(c.greetingPulse, c.revertToIdle)
	}
	c.restartIdleLocked()
	c.mu.Unlock()
	if woke {
		c.elog.Append("assistant_woke", nil)
		c.notify()
	}
}

func (c *Controller) fallAsleep() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.revert.Cancel()
	c.applyLocked(StateSleeping, nil)
	c.mu.Unlock()
	metricIdleSleeps.Inc()
	c.elog.Append("assistant_slept", nil)
	c.notify()
}

// restartIdleLocked arms (or disarms) the idle countdown. A non-positive
// timeout disables sleeping entirely.
func (c *Controller) restartIdleLocked() {
	if !c.settings.Enabled || c.settings.IdleTimeout <= 0 {
		c.idle.Cancel()
		return
	}
	c.idle.Schedule(c.settings.IdleTimeout, c.fallAsleep)
}

func (c *Controller) applyLocked(state State, msg *Message) {
	if c.state != state {
		metricStateTransitions.WithLabelValues(string(c.state), string(state)).Inc()
		c.elog.Append("state_changed", map[string]any{"from": string(c.state), "to": string(state)})
	}
	c.state = state
	c.message = msg
}

// Snapshot returns a copy of the externally visible state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{State: c.state, Visible: c.visible, Settings: c.settings}
	if c.message != nil {
		m := *c.message
		snap.Message = &m
	}
	return snap
}

// Settings returns a copy of the current settings.
func (c *Controller) Settings() Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// Close cancels every outstanding timer. The controller stops accepting
// transitions afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.revert.Cancel()
	c.idle.Cancel()
}

func (c *Controller) notify() {
	if c.onChange == nil {
		return
	}
	c.onChange(c.Snapshot())
}
