package position

import (
	"context"
	"testing"

	"gradhub/assistant/internal/assistant"
	"gradhub/assistant/internal/kvstore"
)

func TestMicroMovementIsClick(t *testing.T) {
	store := kvstore.NewMemory()
	m := NewManager(store, 5)
	ctx := context.Background()

	m.StartDrag(100, 100, 500, 400, 1920, 1080, assistant.SizeMD)
	m.Move(103, 101)
	res, ok := m.EndDrag(ctx)
	if !ok {
		t.Fatal("gesture not in progress")
	}
	if !res.Clicked {
		t.Fatalf("delta under threshold should be a click, got %+v", res)
	}
	if res.Phrase == "" {
		t.Fatal("click should carry a phrase")
	}
	if _, has := m.Override(); has {
		t.Fatal("click must not persist a position")
	}
	if _, found, _ := store.Get(ctx, kvstore.KeyPosition); found {
		t.Fatal("click wrote to the store")
	}
}

func TestRealDragPersistsClampedPosition(t *testing.T) {
	store := kvstore.NewMemory()
	m := NewManager(store, 5)
	ctx := context.Background()

	m.StartDrag(100, 100, 500, 400, 1920, 1080, assistant.SizeMD)
	m.Move(400, 50)
	res, ok := m.EndDrag(ctx)
	if !ok || res.Clicked {
		t.Fatalf("expected a drag, got %+v ok=%v", res, ok)
	}
	want := Point{X: 800, Y: 350}
	if res.Position != want {
		t.Fatalf("expected %+v, got %+v", want, res.Position)
	}
	if !res.Persisted {
		t.Fatal("drag end should persist")
	}
	if p, has := m.Override(); !has || p != want {
		t.Fatalf("override not recorded: %+v has=%v", p, has)
	}

	// A fresh manager on the same store sees the override.
	m2 := NewManager(store, 5)
	if p, has := m2.Override(); !has || p != want {
		t.Fatalf("override did not survive reload: %+v has=%v", p, has)
	}
}

func TestClampKeepsBoxInsideViewport(t *testing.T) {
	m := NewManager(kvstore.NewMemory(), 5)
	m.StartDrag(0, 0, 1800, 1000, 1920, 1080, assistant.SizeLG)

	// Way past the bottom-right edge.
	p, ok := m.Move(5000, 5000)
	if !ok {
		t.Fatal("move outside drag")
	}
	if p.X != 1920-160 || p.Y != 1080-160 {
		t.Fatalf("not clamped to viewport: %+v", p)
	}

	// Way past the top-left edge.
	p, _ = m.Move(-5000, -5000)
	if p.X != 0 || p.Y != 0 {
		t.Fatalf("not clamped at origin: %+v", p)
	}
}

func TestCancelDragIsNoOp(t *testing.T) {
	store := kvstore.NewMemory()
	m := NewManager(store, 5)
	ctx := context.Background()

	m.StartDrag(0, 0, 100, 100, 1920, 1080, assistant.SizeSM)
	m.Move(500, 500)
	m.CancelDrag()
	if _, ok := m.EndDrag(ctx); ok {
		t.Fatal("EndDrag after cancel should be a no-op")
	}
	if _, has := m.Override(); has {
		t.Fatal("cancelled drag persisted a position")
	}
}

func TestResetPositionClearsOverride(t *testing.T) {
	store := kvstore.NewMemory()
	m := NewManager(store, 5)
	ctx := context.Background()

	m.StartDrag(0, 0, 100, 100, 1920, 1080, assistant.SizeMD)
	m.Move(300, 300)
	if _, ok := m.EndDrag(ctx); !ok {
		t.Fatal("drag did not finish")
	}
	m.ResetPosition(ctx)
	if _, has := m.Override(); has {
		t.Fatal("override survived reset")
	}
	if _, found, _ := store.Get(ctx, kvstore.KeyPosition); found {
		t.Fatal("persisted override survived reset")
	}
}

func TestCorruptOverrideFallsBackToCorner(t *testing.T) {
	store := kvstore.NewMemory()
	_ = store.Set(context.Background(), kvstore.KeyPosition, []byte("oops"))
	m := NewManager(store, 5)
	if _, has := m.Override(); has {
		t.Fatal("corrupt blob should fall back to no override")
	}
}

func TestLiveUpdatesDuringDrag(t *testing.T) {
	m := NewManager(kvstore.NewMemory(), 5)
	var got []Point
	m.SetOnLive(func(p Point) { got = append(got, p) })

	m.StartDrag(10, 10, 200, 200, 1920, 1080, assistant.SizeMD)
	m.Move(20, 30)
	m.Move(40, 60)
	if len(got) != 2 {
		t.Fatalf("expected 2 live updates, got %d", len(got))
	}
	if got[1] != (Point{X: 230, Y: 250}) {
		t.Fatalf("unexpected live position %+v", got[1])
	}
}
