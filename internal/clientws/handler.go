package clientws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	ws "nhooyr.io/websocket"

	"gradhub/assistant/internal/assistant"
	"gradhub/assistant/internal/events"
)

// Server accepts browser client connections and feeds their frames to the
// dispatcher.
type Server struct {
	Reg  *Registry
	Ctrl *assistant.Controller
	Elog *events.Log

	// OnMessage routes inbound frames; set before serving.
	OnMessage func(clientID string, msg Message)
}

func NewServer(reg *Registry, ctrl *assistant.Controller, elog *events.Log) *Server {
	return &Server{Reg: reg, Ctrl: ctrl, Elog: elog}
}

func (s *Server) HandleClientWS(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		clientID = uuid.New().String()
	}

	c, err := ws.Accept(w, r, nil)
	if err != nil {
		log.Printf("[clientws] accept: %v", err)
		return
	}
	if s.Reg.Replace(clientID, c) {
		s.Elog.Append("client_replaced", map[string]any{"client_id": clientID})
	}
	s.Elog.Append("client_connected", map[string]any{"client_id": clientID})

	ctx := r.Context()

	// New clients immediately get the current snapshot so they render the
	// right state without waiting for the next change.
	_ = s.Reg.SendJSON(ctx, clientID, Message{
		Type:    "state",
		TsMs:    time.Now().UnixMilli(),
		Payload: map[string]any{"snapshot": s.Ctrl.Snapshot()},
	})

	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			break
		}
		if typ != ws.MessageText && typ != ws.MessageBinary {
			continue
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.Elog.Append("client_msg_invalid", map[string]any{"client_id": clientID, "error": err.Error()})
			continue
		}
		if s.OnMessage != nil {
			s.OnMessage(clientID, msg)
		}
	}
	_ = c.Close(ws.StatusNormalClosure, "done")
	s.Reg.Remove(clientID)
	s.Elog.Append("client_disconnected", map[string]any{"client_id": clientID})
}
