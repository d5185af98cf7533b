package kvstore

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
)

func TestMemoryRoundTrip(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}
	if err := s.Set(ctx, KeySettings, []byte(`{"size":"lg"}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := s.Get(ctx, KeySettings)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(v, []byte(`{"size":"lg"}`)) {
		t.Fatalf("unexpected value %q", v)
	}
	if err := s.Delete(ctx, KeySettings); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, KeySettings); ok {
		t.Fatal("key survived delete")
	}
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	_ = s.Set(ctx, "k", []byte("abc"))
	v, _, _ := s.Get(ctx, "k")
	v[0] = 'x'
	v2, _, _ := s.Get(ctx, "k")
	if string(v2) != "abc" {
		t.Fatalf("stored value mutated through returned slice: %q", v2)
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	if err := s.Set(ctx, KeyTourComplete+"graduate", []byte("1")); err != nil {
		t.Fatalf("set: %v", err)
	}
	// Overwrite must be last-writer-wins.
	if err := s.Set(ctx, KeyTourComplete+"graduate", []byte("0")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, ok, err := s.Get(ctx, KeyTourComplete+"graduate")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if string(v) != "0" {
		t.Fatalf("expected last write, got %q", v)
	}
	if err := s.Delete(ctx, KeyTourComplete+"graduate"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, KeyTourComplete+"graduate"); ok {
		t.Fatal("key survived delete")
	}
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	ctx := context.Background()

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Set(ctx, KeySettings, []byte(`{"size":"lg"}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	s.Close()

	s2, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	v, ok, err := s2.Get(ctx, KeySettings)
	if err != nil || !ok {
		t.Fatalf("get after reopen: ok=%v err=%v", ok, err)
	}
	if string(v) != `{"size":"lg"}` {
		t.Fatalf("unexpected value after reopen: %q", v)
	}
}
