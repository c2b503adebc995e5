package settings

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/mattjoyce/webshell/internal/storage"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "settings.db")
	db, err := storage.OpenSQLite(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db)
}

func TestStoreGetMissingReturnsEmptyObject(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	raw, err := s.Get(context.Background(), "com.example.app")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(raw) != "{}" {
		t.Fatalf("expected {}, got %s", string(raw))
	}
}

func TestStoreShallowMergeReplacesTopLevelKeys(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	ctx := context.Background()
	if _, err := s.ShallowMerge(ctx, "app", json.RawMessage(`{"a":1,"nested":{"x":1}}`)); err != nil {
		t.Fatalf("ShallowMerge #1: %v", err)
	}
	raw, err := s.ShallowMerge(ctx, "app", json.RawMessage(`{"nested":{"y":2},"b":true}`))
	if err != nil {
		t.Fatalf("ShallowMerge #2: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["a"] != float64(1) || got["b"] != true {
		t.Fatalf("unexpected merge result: %s", raw)
	}
	nested := got["nested"].(map[string]any)
	if _, ok := nested["x"]; ok {
		t.Fatalf("expected nested object to be replaced, got %s", raw)
	}
}

func TestStoreRejectsEmptyIdentifier(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	if _, err := s.Get(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty identifier")
	}
	if _, err := s.ShallowMerge(context.Background(), "", nil); err == nil {
		t.Fatal("expected error for empty identifier")
	}
}

func TestStoreBoolRoundTrip(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	ctx := context.Background()

	_, ok, err := s.Bool(ctx, "app", KeyAllowNotification)
	if err != nil || ok {
		t.Fatalf("expected unset, got ok=%v err=%v", ok, err)
	}

	if err := s.SetBool(ctx, "app", KeyAllowNotification, true); err != nil {
		t.Fatalf("SetBool: %v", err)
	}
	v, ok, err := s.Bool(ctx, "app", KeyAllowNotification)
	if err != nil || !ok || !v {
		t.Fatalf("expected true, got v=%v ok=%v err=%v", v, ok, err)
	}

	if _, err := s.ShallowMerge(ctx, "app", json.RawMessage(`{"allow_notification":"yes"}`)); err != nil {
		t.Fatalf("ShallowMerge: %v", err)
	}
	if _, _, err := s.Bool(ctx, "app", KeyAllowNotification); err == nil {
		t.Fatal("expected type error for non-boolean setting")
	}
}
