// Package speech turns text into audible speech. The remote TTS path is
// preferred and its results are cached; when credentials are missing or a
// call fails, the on-device synthesizer takes over for that utterance.
// At most one utterance is audible at a time.
package speech

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"gradhub/assistant/internal/events"
)

const defaultVoicesWait = 3 * time.Second

// Player delivers synthesized audio to the client and returns when playback
// ends (or errors). Cancelling the context stops playback.
type Player interface {
	Play(ctx context.Context, utteranceID string, audio []byte, format string) error
}

// Bridge owns the single "currently playing" slot. A new Speak always stops
// the previous utterance first; callers cannot tell a cache hit from a
// fresh synthesis.
type Bridge struct {
	remote *Remote
	local  LocalSynthesizer
	player Player
	elog   *events.Log
	cache  *audioCache

	voicesWait time.Duration
	voicesOnce sync.Once
	voicesCh   chan struct{}

	mu     sync.Mutex
	cancel context.CancelFunc
	curID  string
	voices []Voice
}

func NewBridge(remote *Remote, local LocalSynthesizer, player Player, elog *events.Log) *Bridge {
	return &Bridge{
		remote:     remote,
		local:      local,
		player:     player,
		elog:       elog,
		cache:      newAudioCache(0),
		voicesWait: defaultVoicesWait,
	}
}

// Speak voices the request, preempting whatever was playing. It returns nil
// when playback finished or was preempted by a newer utterance, and an
// error only on a genuine playback/synthesis failure on the path that was
// actually taken. Missing credentials and remote failures are not errors;
// they route to the fallback.
func (b *Bridge) Speak(ctx context.Context, req Request) error {
	id := uuid.New().String()
	ctx, cancel := context.WithCancel(ctx)

	b.mu.Lock()
	if b.cancel != nil {
		b.cancel()
		metricPreemptions.Inc()
	}
	b.cancel = cancel
	b.curID = id
	b.mu.Unlock()
	if b.local != nil {
		b.local.Stop()
	}

	defer func() {
		b.mu.Lock()
		if b.curID == id {
			b.cancel = nil
			b.curID = ""
		}
		b.mu.Unlock()
		cancel()
	}()

	key := req.cacheKey()
	audio, hit := b.cache.Get(key)
	path := "cache"
	if !hit {
		if !b.remote.Available() {
			return b.speakLocal(ctx, req)
		}
		var err error
		audio, err = b.remote.Synthesize(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				// Preempted mid-synthesis; stale result must not play.
				return nil
			}
			log.Printf("[speech] remote synthesis failed, falling back: %v", err)
			metricSynthesisTotal.WithLabelValues("remote", "error").Inc()
			b.elog.Append("speech_fallback", map[string]any{"error": err.Error()})
			return b.speakLocal(ctx, req)
		}
		b.cache.Put(key, audio)
		path = "remote"
	}

	if err := b.player.Play(ctx, id, audio, b.remote.Format()); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		metricSynthesisTotal.WithLabelValues(path, "playback_error").Inc()
		return fmt.Errorf("playback: %w", err)
	}
	if ctx.Err() != nil {
		return nil
	}
	metricSynthesisTotal.WithLabelValues(path, "ok").Inc()
	return nil
}

func (b *Bridge) speakLocal(ctx context.Context, req Request) error {
	if b.local == nil {
		log.Printf("[speech] no local synthesizer; utterance dropped")
		metricSynthesisTotal.WithLabelValues("local", "unavailable").Inc()
		return nil
	}
	voices := b.voicesReady(ctx)
	lreq := LocalRequest{Text: req.Text, Lang: req.Lang, Rate: req.Speed}
	if v, female := pickVoice(voices, req.Lang); v.Name != "" {
		lreq.Voice = v.Name
		if female {
			lreq.Pitch = 1.1
		} else {
			lreq.Pitch = 1.0
		}
	}
	if err := b.local.Speak(ctx, lreq); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		metricSynthesisTotal.WithLabelValues("local", "error").Inc()
		return fmt.Errorf("local synthesis: %w", err)
	}
	if ctx.Err() != nil {
		return nil
	}
	metricSynthesisTotal.WithLabelValues("local", "ok").Inc()
	return nil
}

// Stop cancels the current utterance and the on-device queue, whichever
// path was active. Idempotent.
func (b *Bridge) Stop() {
	b.mu.Lock()
	cancel := b.cancel
	b.cancel = nil
	b.curID = ""
	b.mu.Unlock()
	if cancel != nil {
		cancel()
		metricPreemptions.Inc()
	}
	if b.local != nil {
		b.local.Stop()
	}
}

// voicesReady kicks off the asynchronous voice-list load on first use and
// waits for it with a hard bound: some platforms never report voices, and
// the assistant must not hang on them.
func (b *Bridge) voicesReady(ctx context.Context) []Voice {
	b.voicesOnce.Do(func() {
		b.voicesCh = make(chan struct{})
		go func() {
			defer close(b.voicesCh)
			vs, err := b.local.Voices(context.Background())
			if err != nil {
				log.Printf("[speech] voice list load: %v", err)
				return
			}
			b.mu.Lock()
			b.voices = vs
			b.mu.Unlock()
		}()
	})

	select {
	case <-b.voicesCh:
	case <-time.After(b.voicesWait):
		log.Printf("[speech] voice list not ready after %s; proceeding without", b.voicesWait)
	case <-ctx.Done():
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Voice, len(b.voices))
	copy(out, b.voices)
	return out
}
