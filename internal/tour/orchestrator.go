// Package tour drives the scripted walkthrough: an ordered step sequence
// synchronizing narration, assistant state and navigation, with per-role
// completion persisted so a tour auto-starts at most once.
package tour

import (
	"context"
	"log"
	"sync"
	"time"

	"gradhub/assistant/internal/assistant"
	"gradhub/assistant/internal/events"
	"gradhub/assistant/internal/kvstore"
	"gradhub/assistant/internal/sched"
	"gradhub/assistant/internal/speech"
)

const (
	defaultStartDelay      = 500 * time.Millisecond
	closingMessage         = "That's the end of the tour. You're all set. Good luck!"
	closingMessageDuration = 6 * time.Second
)

// Navigator asks the client to change screens; the service never owns
// routing.
type Navigator interface {
	Navigate(path string)
}

// Speaker is the narration collaborator; the speech bridge satisfies it.
type Speaker interface {
	Speak(ctx context.Context, req speech.Request) error
	Stop()
}

// Session is the live walkthrough state. Index stays within
// [0, len(Steps)) while Active.
type Session struct {
	Active bool   `json:"active"`
	Steps  []Step `json:"-"`
	Index  int    `json:"index"`
	Total  int    `json:"total"`
	Role   Role   `json:"role,omitempty"`
}

// Config sets narration voice parameters and the mount delay before the
// first step shows. Zero values fall back to defaults.
type Config struct {
	StartDelay time.Duration
	Voice      string
	Emotion    string
	Lang       string
	Speed      float64
}

type Orchestrator struct {
	ctrl    *assistant.Controller
	speaker Speaker
	nav     Navigator
	store   kvstore.Store
	elog    *events.Log
	cfg     Config

	startDelay sched.Task

	mu    sync.Mutex
	sess  Session
	muted bool
}

func New(ctrl *assistant.Controller, speaker Speaker, nav Navigator, store kvstore.Store, elog *events.Log, cfg Config) *Orchestrator {
	if cfg.StartDelay <= 0 {
		cfg.StartDelay = defaultStartDelay
	}
	if cfg.Lang == "" {
		cfg.Lang = "en-US"
	}
	if cfg.Speed <= 0 {
		cfg.Speed = 1.0
	}
	o := &Orchestrator{ctrl: ctrl, speaker: speaker, nav: nav, store: store, elog: elog, cfg: cfg}
	o.muted = o.loadMuted()
	return o
}

func (o *Orchestrator) loadMuted() bool {
	raw, ok, err := o.store.Get(context.Background(), kvstore.KeyTourMuted)
	if err != nil {
		log.Printf("[tour] load mute flag: %v", err)
		return false
	}
	return ok && string(raw) == "1"
}

// Active reports whether a session is running; the route mapper uses it as
// its suspension guard.
func (o *Orchestrator) Active() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sess.Active
}

// Session returns a copy of the live session.
func (o *Orchestrator) Session() Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sess
}

// Muted reports the persisted tour-sound flag.
func (o *Orchestrator) Muted() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.muted
}

// Start begins a tour at step zero. An empty step list is a no-op. The
// first step shows after a short delay so the destination UI can mount.
func (o *Orchestrator) Start(role Role, steps []Step) {
	if len(steps) == 0 {
		log.Printf("[tour] start requested with no steps for role=%s; ignoring", role)
		return
	}
	o.mu.Lock()
	o.sess = Session{Active: true, Steps: steps, Index: 0, Total: len(steps), Role: role}
	o.mu.Unlock()

	metricTourStarted.WithLabelValues(string(role)).Inc()
	o.elog.Append("tour_started", map[string]any{"role": string(role), "steps": len(steps)})
	o.startDelay.Schedule(o.cfg.StartDelay, func() {
		o.mu.Lock()
		if !o.sess.Active {
			o.mu.Unlock()
			return
		}
		step := o.sess.Steps[o.sess.Index]
		muted := o.muted
		o.mu.Unlock()
		o.showStep(step, !muted)
	})
}

// Next advances the tour. At the last index it instead completes the tour:
// the session goes inactive, the role is marked completed and the closing
// celebration shows. The read-then-write of the index is atomic, so rapid
// repeated advances cannot apply inconsistent indices.
func (o *Orchestrator) Next(ctx context.Context) {
	o.mu.Lock()
	if !o.sess.Active {
		o.mu.Unlock()
		return
	}
	// A manual transition supersedes the pending first-step reveal.
	o.startDelay.Cancel()
	if o.sess.Index >= len(o.sess.Steps)-1 {
		role := o.sess.Role
		o.sess = Session{}
		muted := o.muted
		o.mu.Unlock()
		o.complete(ctx, role, muted)
		return
	}
	o.sess.Index++
	step := o.sess.Steps[o.sess.Index]
	muted := o.muted
	o.mu.Unlock()
	o.showStep(step, !muted)
}

// Prev re-shows the previous step; a no-op at index zero.
func (o *Orchestrator) Prev() {
	o.mu.Lock()
	if !o.sess.Active || o.sess.Index == 0 {
		o.mu.Unlock()
		return
	}
	o.startDelay.Cancel()
	o.sess.Index--
	step := o.sess.Steps[o.sess.Index]
	muted := o.muted
	o.mu.Unlock()
	o.showStep(step, !muted)
}

// Skip abandons the tour from any step: speech stops, the assistant goes
// idle, the role is still marked completed and the session clears.
func (o *Orchestrator) Skip(ctx context.Context) {
	o.mu.Lock()
	if !o.sess.Active {
		o.mu.Unlock()
		return
	}
	role := o.sess.Role
	o.sess = Session{}
	o.mu.Unlock()

	o.startDelay.Cancel()
	o.speaker.Stop()
	o.ctrl.SetState(assistant.StateIdle, nil)
	o.MarkCompleted(ctx, role)
	metricTourSkipped.WithLabelValues(string(role)).Inc()
	o.elog.Append("tour_skipped", map[string]any{"role": string(role)})
}

// RepeatCurrent re-narrates the current step only. An explicit repeat is
// always audible, bypassing the mute flag.
func (o *Orchestrator) RepeatCurrent() {
	o.mu.Lock()
	if !o.sess.Active {
		o.mu.Unlock()
		return
	}
	step := o.sess.Steps[o.sess.Index]
	o.mu.Unlock()
	o.speakStep(step)
}

// ToggleMute flips and persists the tour-sound flag; muting stops any
// in-flight narration immediately. Returns the new value.
func (o *Orchestrator) ToggleMute(ctx context.Context) bool {
	o.mu.Lock()
	o.muted = !o.muted
	muted := o.muted
	o.mu.Unlock()

	val := []byte("0")
	if muted {
		val = []byte("1")
	}
	if err := o.store.Set(ctx, kvstore.KeyTourMuted, val); err != nil {
		log.Printf("[tour] persist mute flag: %v", err)
	}
	if muted {
		o.speaker.Stop()
	}
	return muted
}

// IsCompleted reports whether the role's tour already finished once.
func (o *Orchestrator) IsCompleted(ctx context.Context, role Role) bool {
	raw, ok, err := o.store.Get(ctx, kvstore.KeyTourComplete+string(role))
	if err != nil {
		log.Printf("[tour] load completion for %s: %v", role, err)
		return false
	}
	return ok && string(raw) == "1"
}

func (o *Orchestrator) MarkCompleted(ctx context.Context, role Role) {
	if err := o.store.Set(ctx, kvstore.KeyTourComplete+string(role), []byte("1")); err != nil {
		log.Printf("[tour] persist completion for %s: %v", role, err)
	}
}

// ResetStatus clears the role's completion flag so the tour can auto-start
// again.
func (o *Orchestrator) ResetStatus(ctx context.Context, role Role) {
	if err := o.store.Delete(ctx, kvstore.KeyTourComplete+string(role)); err != nil {
		log.Printf("[tour] reset completion for %s: %v", role, err)
	}
}

// showStep issues a step's side effects: assistant state with the step text
// as a sticky message, optional navigation, then narration.
func (o *Orchestrator) showStep(step Step, audible bool) {
	metricStepsShown.Inc()
	o.elog.Append("tour_step_shown", map[string]any{"step": step.ID})
	o.ctrl.SetState(step.State, &assistant.Message{Text: step.Text})
	if step.Route != "" && o.nav != nil {
		o.nav.Navigate(step.Route)
	}
	if audible {
		o.speakStep(step)
	}
}

func (o *Orchestrator) speakStep(step Step) {
	text := step.VoiceText
	if text == "" {
		text = step.Text
	}
	o.speakText(text)
}

func (o *Orchestrator) speakText(text string) {
	req := speech.Request{
		Text:    text,
		Voice:   o.cfg.Voice,
		Emotion: o.cfg.Emotion,
		Lang:    o.cfg.Lang,
		Speed:   o.cfg.Speed,
	}
	// Narration runs in the background; Speak blocks until playback ends
	// and the next step must not wait for that.
	go func() {
		if err := o.speaker.Speak(context.Background(), req); err != nil {
			log.Printf("[tour] narration failed: %v", err)
			o.elog.Append("tour_narration_failed", map[string]any{"error": err.Error()})
		}
	}()
}

func (o *Orchestrator) complete(ctx context.Context, role Role, muted bool) {
	o.startDelay.Cancel()
	o.MarkCompleted(ctx, role)
	o.ctrl.SetTemporaryState(assistant.StateCelebration, &assistant.Message{Text: closingMessage}, closingMessageDuration)
	if !muted {
		o.speakText(closingMessage)
	}
	metricTourCompleted.WithLabelValues(string(role)).Inc()
	o.elog.Append("tour_completed", map[string]any{"role": string(role)})
}
