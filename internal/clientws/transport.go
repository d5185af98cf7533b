package clientws

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"gradhub/assistant/internal/assistant"
	"gradhub/assistant/internal/position"
	"gradhub/assistant/internal/speech"
)

// Message is the JSON frame exchanged with browser clients, in both
// directions.
type Message struct {
	Type        string         `json:"type"`
	TsMs        int64          `json:"ts_ms,omitempty"`
	ClientID    string         `json:"client_id,omitempty"`
	UtteranceID string         `json:"utterance_id,omitempty"`
	Payload     map[string]any `json:"payload,omitempty"`
}

// Transport adapts the connected clients into the collaborators the core
// needs: the audio Player, the on-device LocalSynthesizer proxy and the
// tour Navigator. Playback and local synthesis happen in the browser; the
// transport sends the command and waits for the matching completion frame.
type Transport struct {
	reg *Registry

	mu      sync.Mutex
	pending map[string]chan error
	voices  []speech.Voice
	voiceCh chan struct{}
}

func NewTransport(reg *Registry) *Transport {
	return &Transport{reg: reg, pending: make(map[string]chan error)}
}

// PushState fans a controller snapshot out to every client.
func (t *Transport) PushState(snap assistant.Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	t.reg.Broadcast(ctx, Message{Type: "state", TsMs: time.Now().UnixMilli(), Payload: map[string]any{"snapshot": snap}})
}

// PushPosition streams the live position during a drag.
func (t *Transport) PushPosition(p position.Point) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	t.reg.Broadcast(ctx, Message{Type: "position", Payload: map[string]any{"x": p.X, "y": p.Y}})
}

// Navigate implements the tour's navigation request.
func (t *Transport) Navigate(path string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	t.reg.Broadcast(ctx, Message{Type: "navigate_to", Payload: map[string]any{"path": path}})
}

// Play implements speech.Player: ship the audio and block until a client
// reports playback finished or failed, or the utterance is preempted.
func (t *Transport) Play(ctx context.Context, utteranceID string, audio []byte, format string) error {
	if t.reg.Count() == 0 {
		return fmt.Errorf("no connected clients")
	}
	ch := t.register(utteranceID)
	defer t.unregister(utteranceID)

	t.reg.Broadcast(ctx, Message{
		Type:        "play_audio",
		TsMs:        time.Now().UnixMilli(),
		UtteranceID: utteranceID,
		Payload: map[string]any{
			"audio":  base64.StdEncoding.EncodeToString(audio),
			"format": format,
		},
	})

	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		t.broadcastStop()
		return ctx.Err()
	}
}

// Speak implements speech.LocalSynthesizer over the client's own speech
// engine.
func (t *Transport) Speak(ctx context.Context, req speech.LocalRequest) error {
	if t.reg.Count() == 0 {
		return fmt.Errorf("no connected clients")
	}
	id := fmt.Sprintf("local-%d", time.Now().UnixNano())
	ch := t.register(id)
	defer t.unregister(id)

	t.reg.Broadcast(ctx, Message{
		Type:        "speak_local",
		TsMs:        time.Now().UnixMilli(),
		UtteranceID: id,
		Payload: map[string]any{
			"text": req.Text, "lang": req.Lang, "voice": req.Voice,
			"rate": req.Rate, "pitch": req.Pitch,
		},
	})

	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		t.broadcastStop()
		return ctx.Err()
	}
}

// Voices asks clients for their voice list. The bridge bounds the wait, so
// blocking until a client answers (or ctx expires) is fine here.
func (t *Transport) Voices(ctx context.Context) ([]speech.Voice, error) {
	t.mu.Lock()
	if t.voices != nil {
		vs := t.voices
		t.mu.Unlock()
		return vs, nil
	}
	if t.voiceCh == nil {
		t.voiceCh = make(chan struct{})
	}
	ch := t.voiceCh
	t.mu.Unlock()

	bctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.reg.Broadcast(bctx, Message{Type: "list_voices"})
	cancel()

	select {
	case <-ch:
		t.mu.Lock()
		defer t.mu.Unlock()
		return t.voices, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stop tells every client to silence both the audio element and the local
// speech engine. Idempotent.
func (t *Transport) Stop() {
	t.broadcastStop()
}

func (t *Transport) broadcastStop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	t.reg.Broadcast(ctx, Message{Type: "stop_speech"})
}

// HandleClientMessage consumes transport-level frames (playback results and
// voice lists). Returns false for frames the dispatcher should route.
func (t *Transport) HandleClientMessage(msg Message) bool {
	switch msg.Type {
	case "playback_done":
		t.resolve(msg.UtteranceID, nil)
		return true
	case "playback_error":
		reason := ""
		if msg.Payload != nil {
			reason, _ = msg.Payload["error"].(string)
		}
		t.resolve(msg.UtteranceID, fmt.Errorf("client playback: %s", reason))
		return true
	case "voices":
		t.setVoices(parseVoices(msg.Payload))
		return true
	}
	return false
}

func (t *Transport) register(id string) chan error {
	ch := make(chan error, 1)
	t.mu.Lock()
	t.pending[id] = ch
	t.mu.Unlock()
	return ch
}

func (t *Transport) unregister(id string) {
	t.mu.Lock()
	delete(t.pending, id)
	t.mu.Unlock()
}

func (t *Transport) resolve(id string, err error) {
	t.mu.Lock()
	ch := t.pending[id]
	t.mu.Unlock()
	if ch != nil {
		select {
		case ch <- err:
		default:
		}
	}
}

func (t *Transport) setVoices(vs []speech.Voice) {
	t.mu.Lock()
	t.voices = vs
	if t.voiceCh != nil {
		close(t.voiceCh)
		t.voiceCh = nil
	}
	t.mu.Unlock()
}

func parseVoices(payload map[string]any) []speech.Voice {
	if payload == nil {
		return []speech.Voice{}
	}
	raw, _ := payload["voices"].([]any)
	out := make([]speech.Voice, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name, _ := m["name"].(string)
		lang, _ := m["lang"].(string)
		if name != "" {
			out = append(out, speech.Voice{Name: name, Lang: lang})
		}
	}
	return out
}
