package clientws

import (
	"context"
	"encoding/json"
	"sync"

	ws "nhooyr.io/websocket"
)

// Registry keeps at most one connection per client id. A reconnect replaces
// and closes the previous connection.
type Registry struct {
	mu    sync.Mutex
	conns map[string]*ws.Conn
}

func NewRegistry() *Registry { return &Registry{conns: make(map[string]*ws.Conn)} }

// Replace sets the connection for a client and closes the previous one if
// present.
func (r *Registry) Replace(clientID string, c *ws.Conn) (prevClosed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.conns[clientID]; ok && old != nil {
		_ = old.Close(ws.StatusNormalClosure, "replaced")
		prevClosed = true
	}
	r.conns[clientID] = c
	return
}

func (r *Registry) Remove(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, clientID)
}

func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// SendJSON writes to one client; a nil connection is a no-op.
func (r *Registry) SendJSON(ctx context.Context, clientID string, v any) error {
	r.mu.Lock()
	c := r.conns[clientID]
	r.mu.Unlock()
	if c == nil {
		return nil
	}
	return c.Write(ctx, ws.MessageText, mustJSON(v))
}

// Broadcast writes to every connected client, best effort.
func (r *Registry) Broadcast(ctx context.Context, v any) {
	r.mu.Lock()
	conns := make([]*ws.Conn, 0, len(r.conns))
	for _, c := range r.conns {
		conns = append(conns, c)
	}
	r.mu.Unlock()

	data := mustJSON(v)
	for _, c := range conns {
		_ = c.Write(ctx, ws.MessageText, data)
	}
}

func mustJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}
