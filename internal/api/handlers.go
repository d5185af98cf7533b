package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"gradhub/assistant/internal/assistant"
	"gradhub/assistant/internal/config"
	"gradhub/assistant/internal/events"
	"gradhub/assistant/internal/health"
	"gradhub/assistant/internal/idle"
	"gradhub/assistant/internal/position"
	"gradhub/assistant/internal/speech"
	"gradhub/assistant/internal/tour"
)

type Handlers struct {
	cfg       config.Config
	ctrl      *assistant.Controller
	monitor   *idle.Monitor
	positions *position.Manager
	bridge    *speech.Bridge
	tours     *tour.Orchestrator
	checker   *health.Checker
	elog      *events.Log
}

func NewHandlers(cfg config.Config, ctrl *assistant.Controller, monitor *idle.Monitor, positions *position.Manager, bridge *speech.Bridge, tours *tour.Orchestrator, checker *health.Checker, elog *events.Log) *Handlers {
	return &Handlers{
		cfg:       cfg,
		ctrl:      ctrl,
		monitor:   monitor,
		positions: positions,
		bridge:    bridge,
		tours:     tours,
		checker:   checker,
		elog:      elog,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	checks := h.checker.Run(r.Context())
	status := http.StatusOK
	if !health.Healthy(checks) {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{"ok": status == http.StatusOK, "checks": checks})
}

func (h *Handlers) HandleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.Snapshot())
}

func (h *Handlers) HandleSetState(w http.ResponseWriter, r *http.Request) {
	var body struct {
		State      assistant.State `json:"state"`
		Message    string          `json:"message,omitempty"`
		DurationMS int64           `json:"duration_ms,omitempty"`
		Temporary  bool            `json:"temporary,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if !body.State.Valid() {
		http.Error(w, "unknown state", http.StatusBadRequest)
		return
	}
	var msg *assistant.Message
	if body.Message != "" {
		msg = &assistant.Message{Text: body.Message}
	}
	if body.Temporary {
		h.ctrl.SetTemporaryState(body.State, msg, time.Duration(body.DurationMS)*time.Millisecond)
	} else {
		h.ctrl.SetState(body.State, msg)
	}
	writeJSON(w, http.StatusOK, h.ctrl.Snapshot())
}

func (h *Handlers) HandleShow(w http.ResponseWriter, r *http.Request) {
	h.ctrl.Show()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "visible": true})
}

func (h *Handlers) HandleHide(w http.ResponseWriter, r *http.Request) {
	h.ctrl.Hide()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "visible": false})
}

func (h *Handlers) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.Settings())
}

// settingsPatchBody is the wire shape of a settings update; the idle timeout
// travels as milliseconds.
type settingsPatchBody struct {
	Enabled       *bool   `json:"enabled,omitempty"`
	Position      *string `json:"position,omitempty"`
	Size          *string `json:"size,omitempty"`
	SoundEnabled  *bool   `json:"sound_enabled,omitempty"`
	ShowTips      *bool   `json:"show_tips,omitempty"`
	IdleTimeoutMS *int64  `json:"idle_timeout_ms,omitempty"`
}

func (h *Handlers) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var body settingsPatchBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	var patch assistant.SettingsPatch
	patch.Enabled = body.Enabled
	patch.SoundEnabled = body.SoundEnabled
	patch.ShowTips = body.ShowTips
	if body.Position != nil {
		c := assistant.Corner(*body.Position)
		if c != assistant.CornerBottomLeft && c != assistant.CornerBottomRight {
			http.Error(w, "unknown position", http.StatusBadRequest)
			return
		}
		patch.Position = &c
	}
	if body.Size != nil {
		s := assistant.Size(*body.Size)
		if s != assistant.SizeSM && s != assistant.SizeMD && s != assistant.SizeLG {
			http.Error(w, "unknown size", http.StatusBadRequest)
			return
		}
		patch.Size = &s
	}
	if body.IdleTimeoutMS != nil {
		d := time.Duration(*body.IdleTimeoutMS) * time.Millisecond
		patch.IdleTimeout = &d
	}

	h.ctrl.UpdateSettings(r.Context(), patch)
	writeJSON(w, http.StatusOK, h.ctrl.Settings())
}

func (h *Handlers) HandleActivity(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Kind string `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	counted := h.monitor.Activity(body.Kind)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "counted": counted})
}

func (h *Handlers) HandleGetPosition(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.positions.Override(); ok {
		writeJSON(w, http.StatusOK, map[string]any{"mode": "override", "position": p})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"mode": "corner", "corner": h.ctrl.Settings().Position})
}

func (h *Handlers) HandleResetPosition(w http.ResponseWriter, r *http.Request) {
	h.positions.ResetPosition(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handlers) HandleSpeak(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text    string  `json:"text"`
		Voice   string  `json:"voice,omitempty"`
		Emotion string  `json:"emotion,omitempty"`
		Lang    string  `json:"lang,omitempty"`
		Speed   float64 `json:"speed,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Text == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}
	req := speech.Request{
		Text:    body.Text,
		Voice:   orDefault(body.Voice, h.cfg.Speech.Voice),
		Emotion: orDefault(body.Emotion, h.cfg.Speech.Emotion),
		Lang:    orDefault(body.Lang, h.cfg.Speech.Lang),
		Speed:   body.Speed,
	}
	if req.Speed <= 0 {
		req.Speed = h.cfg.Speech.Speed
	}

	// Speak blocks until playback ends; the request only queues it.
	go func() {
		if err := h.bridge.Speak(context.Background(), req); err != nil {
			log.Printf("[api] speak: %v", err)
		}
	}()
	writeJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}

func (h *Handlers) HandleStopSpeech(w http.ResponseWriter, r *http.Request) {
	h.bridge.Stop()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handlers) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"events": h.elog.List()})
}

func (h *Handlers) HandleTourStart(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	role := tour.Role(body.Role)
	if !role.Valid() {
		http.Error(w, "unknown role", http.StatusBadRequest)
		return
	}
	h.tours.Start(role, tour.StepsForRole(role))
	writeJSON(w, http.StatusOK, h.tours.Session())
}

func (h *Handlers) HandleTourNext(w http.ResponseWriter, r *http.Request) {
	h.tours.Next(r.Context())
	writeJSON(w, http.StatusOK, h.tours.Session())
}

func (h *Handlers) HandleTourPrev(w http.ResponseWriter, r *http.Request) {
	h.tours.Prev()
	writeJSON(w, http.StatusOK, h.tours.Session())
}

func (h *Handlers) HandleTourSkip(w http.ResponseWriter, r *http.Request) {
	h.tours.Skip(r.Context())
	writeJSON(w, http.StatusOK, h.tours.Session())
}

func (h *Handlers) HandleTourRepeat(w http.ResponseWriter, r *http.Request) {
	h.tours.RepeatCurrent()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handlers) HandleTourMute(w http.ResponseWriter, r *http.Request) {
	muted := h.tours.ToggleMute(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "muted": muted})
}

func (h *Handlers) HandleTourStatus(w http.ResponseWriter, r *http.Request) {
	role := tour.Role(r.URL.Query().Get("role"))
	sess := h.tours.Session()
	resp := map[string]any{
		"active": sess.Active,
		"index":  sess.Index,
		"total":  sess.Total,
		"muted":  h.tours.Muted(),
	}
	if role.Valid() {
		resp["completed"] = h.tours.IsCompleted(r.Context(), role)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) HandleTourReset(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	role := tour.Role(body.Role)
	if !role.Valid() {
		http.Error(w, "unknown role", http.StatusBadRequest)
		return
	}
	h.tours.ResetStatus(r.Context(), role)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
