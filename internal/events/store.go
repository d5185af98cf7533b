package events

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// Event records one observable assistant lifecycle occurrence (state
// transition, sleep/wake, tour progress, speech fallback) for debugging
// and the UI activity feed.
type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// Log is an in-memory, capped append-only event log.
type Log struct {
	mu     sync.RWMutex
	events []Event
	max    int
}

const defaultMax = 500

func NewLog() *Log {
	return &Log{max: defaultMax}
}

func (l *Log) Append(typ string, payload map[string]any) Event {
	evt := Event{
		ID:        randomID(),
		Type:      typ,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, evt)
	// Cap total events to avoid unbounded growth; keep room for a single
	// truncation marker so the total stays at max.
	if n := len(l.events); n > l.max {
		keep := l.max - 1
		dropped := n - keep
		l.events = append([]Event(nil), l.events[n-keep:]...)
		l.events = append(l.events, Event{
			ID:        randomID(),
			Type:      "events_truncated",
			Timestamp: time.Now().UTC(),
			Payload:   map[string]any{"dropped": dropped, "kept": keep},
		})
	}
	return evt
}

func (l *Log) List() []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

func randomID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
