package assistant

import "time"

// State is the assistant's visual state. Exactly one is active at a time and
// it is the sole driver of which clip the client plays.
type State string

const (
	StateIdle        State = "idle"
	StateGreeting    State = "greeting"
	StateThinking    State = "thinking"
	StatePointing    State = "pointing"
	StateCelebration State = "celebration"
	StateSleeping    State = "sleeping"
)

func (s State) Valid() bool {
	switch s {
	case StateIdle, StateGreeting, StateThinking, StatePointing, StateCelebration, StateSleeping:
		return true
	}
	return false
}

// Corner is the default anchor when no dragged position override exists.
type Corner string

const (
	CornerBottomLeft  Corner = "bottom-left"
	CornerBottomRight Corner = "bottom-right"
)

type Size string

const (
	SizeSM Size = "sm"
	SizeMD Size = "md"
	SizeLG Size = "lg"
)

// Message is an optional speech-bubble payload attached to a state change.
// A zero Duration means the message persists until explicitly cleared.
type Message struct {
	Text     string        `json:"text"`
	Duration time.Duration `json:"duration,omitempty"`
}

// Settings are the user-configurable assistant options. They are loaded from
// the persistent store on init and written back on every mutation.
type Settings struct {
	Enabled      bool          `json:"enabled"`
	Position     Corner        `json:"position"`
	Size         Size          `json:"size"`
	SoundEnabled bool          `json:"sound_enabled"`
	ShowTips     bool          `json:"show_tips"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

func DefaultSettings() Settings {
	return Settings{
		Enabled:      true,
		Position:     CornerBottomRight,
		Size:         SizeMD,
		SoundEnabled: true,
		ShowTips:     true,
		IdleTimeout:  60 * time.Second,
	}
}

// SettingsPatch carries a partial settings update; nil fields are left as-is.
type SettingsPatch struct {
	Enabled      *bool          `json:"enabled,omitempty"`
	Position     *Corner        `json:"position,omitempty"`
	Size         *Size          `json:"size,omitempty"`
	SoundEnabled *bool          `json:"sound_enabled,omitempty"`
	ShowTips     *bool          `json:"show_tips,omitempty"`
	IdleTimeout  *time.Duration `json:"idle_timeout,omitempty"`
}

func (s Settings) merge(p SettingsPatch) Settings {
	if p.Enabled != nil {
		s.Enabled = *p.Enabled
	}
	if p.Position != nil {
		s.Position = *p.Position
	}
	if p.Size != nil {
		s.Size = *p.Size
	}
	if p.SoundEnabled != nil {
		s.SoundEnabled = *p.SoundEnabled
	}
	if p.ShowTips != nil {
		s.ShowTips = *p.ShowTips
	}
	if p.IdleTimeout != nil {
		s.IdleTimeout = *p.IdleTimeout
	}
	return s
}
