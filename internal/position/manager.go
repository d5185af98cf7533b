// Package position tracks where the assistant is anchored on screen: the
// default corner from settings, or an absolute pixel position the user
// dragged it to. The dragged override is persisted; a gesture that never
// really moved is treated as a click instead.
package position

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"gradhub/assistant/internal/assistant"
	"gradhub/assistant/internal/kvstore"
)

// DefaultClickThreshold is the per-axis movement (px) below which a gesture
// counts as a click, not a drag.
const DefaultClickThreshold = 5

// Point is an absolute top-left pixel position overriding the corner anchor.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Box is the assistant's bounding box for a given size preset.
type Box struct {
	W int `json:"w"`
	H int `json:"h"`
}

func boxFor(size assistant.Size) Box {
	switch size {
	case assistant.SizeSM:
		return Box{W: 80, H: 80}
	case assistant.SizeLG:
		return Box{W: 160, H: 160}
	default:
		return Box{W: 120, H: 120}
	}
}

// DragResult is the outcome of a finished gesture.
type DragResult struct {
	// Clicked is true when total movement never exceeded the threshold on
	// either axis; Phrase then carries the click reaction.
	Clicked bool   `json:"clicked"`
	Phrase  string `json:"phrase,omitempty"`
	// Position is the final clamped position; Persisted says whether it
	// was stored as the new override.
	Position  Point `json:"position"`
	Persisted bool  `json:"persisted"`
}

// Manager runs the gesture lifecycle idle -> dragging -> idle. The same
// delta math serves mouse and touch; only the event source differs.
type Manager struct {
	store     kvstore.Store
	threshold int

	mu       sync.Mutex
	dragging bool
	originX  int // pointer position at drag start
	originY  int
	anchorX  int // assistant box top-left at drag start
	anchorY  int
	curX     int
	curY     int
	maxDX    int
	maxDY    int
	viewW    int
	viewH    int
	box      Box
	override *Point

	onLive func(Point)
}

func NewManager(store kvstore.Store, threshold int) *Manager {
	if threshold <= 0 {
		threshold = DefaultClickThreshold
	}
	m := &Manager{store: store, threshold: threshold}
	m.override = loadOverride(store)
	return m
}

func loadOverride(store kvstore.Store) *Point {
	raw, ok, err := store.Get(context.Background(), kvstore.KeyPosition)
	if err != nil {
		log.Printf("[position] load override: %v", err)
		return nil
	}
	if !ok {
		return nil
	}
	var p Point
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Printf("[position] corrupt persisted position, using default corner: %v", err)
		return nil
	}
	return &p
}

// SetOnLive registers the continuous-position push callback used during a
// drag. Call before serving.
func (m *Manager) SetOnLive(fn func(Point)) { m.onLive = fn }

// StartDrag records the pointer origin and the assistant's current anchor
// box. A drag already in progress is restarted.
func (m *Manager) StartDrag(pointerX, pointerY, anchorX, anchorY, viewW, viewH int, size assistant.Size) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dragging = true
	m.originX, m.originY = pointerX, pointerY
	m.anchorX, m.anchorY = anchorX, anchorY
	m.curX, m.curY = anchorX, anchorY
	m.maxDX, m.maxDY = 0, 0
	m.viewW, m.viewH = viewW, viewH
	m.box = boxFor(size)
}

// Move updates the live position from the new pointer location, clamping the
// candidate so the whole bounding box stays in the viewport on both axes.
// Returns false when no drag is in progress.
func (m *Manager) Move(pointerX, pointerY int) (Point, bool) {
	m.mu.Lock()
	if !m.dragging {
		m.mu.Unlock()
		return Point{}, false
	}
	dx := pointerX - m.originX
	dy := pointerY - m.originY
	if a := abs(dx); a > m.maxDX {
		m.maxDX = a
	}
	if a := abs(dy); a > m.maxDY {
		m.maxDY = a
	}
	p := m.clampLocked(Point{X: m.anchorX + dx, Y: m.anchorY + dy})
	m.curX, m.curY = p.X, p.Y
	onLive := m.onLive
	m.mu.Unlock()

	if onLive != nil {
		onLive(p)
	}
	return p, true
}

// EndDrag finishes the gesture. Micro-movement within the threshold is a
// click: the position is untouched and a random idle phrase comes back
// instead. Real movement persists the final clamped position.
func (m *Manager) EndDrag(ctx context.Context) (DragResult, bool) {
	m.mu.Lock()
	if !m.dragging {
		m.mu.Unlock()
		return DragResult{}, false
	}
	m.dragging = false
	clicked := m.maxDX <= m.threshold && m.maxDY <= m.threshold
	final := Point{X: m.curX, Y: m.curY}
	if clicked {
		m.mu.Unlock()
		return DragResult{Clicked: true, Phrase: randomPhrase()}, true
	}
	m.override = &final
	m.mu.Unlock()

	res := DragResult{Position: final}
	raw, err := json.Marshal(final)
	if err == nil {
		err = m.store.Set(ctx, kvstore.KeyPosition, raw)
	}
	if err != nil {
		log.Printf("[position] persist override: %v", err)
	} else {
		res.Persisted = true
	}
	return res, true
}

// CancelDrag abandons the gesture with no position change and no click.
func (m *Manager) CancelDrag() {
	m.mu.Lock()
	m.dragging = false
	m.mu.Unlock()
}

// ResetPosition clears the persisted override; the assistant reverts to the
// default corner from settings.
func (m *Manager) ResetPosition(ctx context.Context) {
	m.mu.Lock()
	m.override = nil
	m.mu.Unlock()
	if err := m.store.Delete(ctx, kvstore.KeyPosition); err != nil {
		log.Printf("[position] clear override: %v", err)
	}
}

// Override returns the dragged position, if any.
func (m *Manager) Override() (Point, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.override == nil {
		return Point{}, false
	}
	return *m.override, true
}

// Dragging reports whether a gesture is in progress.
func (m *Manager) Dragging() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dragging
}

func (m *Manager) clampLocked(p Point) Point {
	maxX := m.viewW - m.box.W
	maxY := m.viewH - m.box.H
	if maxX < 0 {
		maxX = 0
	}
	if maxY < 0 {
		maxY = 0
	}
	if p.X < 0 {
		p.X = 0
	} else if p.X > maxX {
		p.X = maxX
	}
	if p.Y < 0 {
		p.Y = 0
	} else if p.Y > maxY {
		p.Y = maxY
	}
	return p
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
