// Package health runs the service's dependency checks for the detailed
// health endpoint.
package health

import (
	"context"
	"time"

	"gradhub/assistant/internal/kvstore"
	"gradhub/assistant/internal/speech"
)

// Check is one dependency probe result.
type Check struct {
	Name      string `json:"name"`
	OK        bool   `json:"ok"`
	LatencyMS int64  `json:"latency_ms"`
	Detail    string `json:"detail,omitempty"`
}

type Checker struct {
	store  kvstore.Store
	remote *speech.Remote
}

func NewChecker(store kvstore.Store, remote *speech.Remote) *Checker {
	return &Checker{store: store, remote: remote}
}

// Run probes every dependency. Missing remote TTS credentials are reported
// but not a failure; speech degrades to the on-device path instead.
func (c *Checker) Run(ctx context.Context) []Check {
	out := make([]Check, 0, 2)

	start := time.Now()
	kv := Check{Name: "kvstore", OK: true}
	if err := c.store.Ping(ctx); err != nil {
		kv.OK = false
		kv.Detail = err.Error()
	}
	kv.LatencyMS = time.Since(start).Milliseconds()
	out = append(out, kv)

	tts := Check{Name: "speech", OK: true, Detail: "remote"}
	if !c.remote.Available() {
		tts.Detail = "local fallback (no remote credentials)"
	}
	out = append(out, tts)

	return out
}

// Healthy reports whether every check passed.
func Healthy(checks []Check) bool {
	for _, c := range checks {
		if !c.OK {
			return false
		}
	}
	return true
}
