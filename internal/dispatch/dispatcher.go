// Package dispatch routes inbound client frames to the assistant
// components: activity to the idle monitor, navigation to the route mapper,
// drag gestures to the position manager and tour controls to the
// orchestrator.
package dispatch

import (
	"context"
	"time"

	"gradhub/assistant/internal/assistant"
	"gradhub/assistant/internal/clientws"
	"gradhub/assistant/internal/events"
	"gradhub/assistant/internal/idle"
	"gradhub/assistant/internal/position"
	"gradhub/assistant/internal/route"
	"gradhub/assistant/internal/tour"
)

type Dispatcher struct {
	ctrl      *assistant.Controller
	monitor   *idle.Monitor
	positions *position.Manager
	mapper    *route.Mapper
	tours     *tour.Orchestrator
	transport *clientws.Transport
	elog      *events.Log
}

func New(ctrl *assistant.Controller, monitor *idle.Monitor, positions *position.Manager, mapper *route.Mapper, tours *tour.Orchestrator, transport *clientws.Transport, elog *events.Log) *Dispatcher {
	return &Dispatcher{
		ctrl:      ctrl,
		monitor:   monitor,
		positions: positions,
		mapper:    mapper,
		tours:     tours,
		transport: transport,
		elog:      elog,
	}
}

// OnMessage processes one client frame.
func (d *Dispatcher) OnMessage(clientID string, msg clientws.Message) {
	// Playback results and voice lists belong to the transport.
	if d.transport != nil && d.transport.HandleClientMessage(msg) {
		return
	}

	switch msg.Type {
	case "activity":
		d.monitor.Activity(str(msg.Payload, "kind"))

	case "navigate":
		d.mapper.OnPathChange(str(msg.Payload, "path"))

	case "drag_start":
		d.positions.StartDrag(
			num(msg.Payload, "pointer_x"), num(msg.Payload, "pointer_y"),
			num(msg.Payload, "anchor_x"), num(msg.Payload, "anchor_y"),
			num(msg.Payload, "viewport_w"), num(msg.Payload, "viewport_h"),
			assistant.Size(str(msg.Payload, "size")),
		)

	case "drag_move":
		d.positions.Move(num(msg.Payload, "pointer_x"), num(msg.Payload, "pointer_y"))

	case "drag_end":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		res, ok := d.positions.EndDrag(ctx)
		cancel()
		if ok && res.Clicked {
			d.ctrl.SetTemporaryState(assistant.StateGreeting, &assistant.Message{Text: res.Phrase}, 0)
		}

	case "drag_cancel":
		d.positions.CancelDrag()

	case "tour_start":
		role := tour.Role(str(msg.Payload, "role"))
		if !role.Valid() {
			d.elog.Append("client_msg_invalid", map[string]any{"client_id": clientID, "type": msg.Type, "role": string(role)})
			return
		}
		d.tours.Start(role, tour.StepsForRole(role))

	case "tour_next":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		d.tours.Next(ctx)
		cancel()

	case "tour_prev":
		d.tours.Prev()

	case "tour_skip":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		d.tours.Skip(ctx)
		cancel()

	case "tour_repeat":
		d.tours.RepeatCurrent()

	case "hello":
		// Connection bookkeeping happens in clientws; nothing to route.

	default:
		d.elog.Append("client_msg_unknown", map[string]any{"client_id": clientID, "type": msg.Type})
	}
}

func str(payload map[string]any, key string) string {
	if payload == nil {
		return ""
	}
	s, _ := payload[key].(string)
	return s
}

// num reads a JSON number as int; decoded numbers arrive as float64.
func num(payload map[string]any, key string) int {
	if payload == nil {
		return 0
	}
	f, _ := payload[key].(float64)
	return int(f)
}
