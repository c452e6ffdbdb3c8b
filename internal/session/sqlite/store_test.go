package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"quiz-client/internal/session"
)

func newTestStore(t *testing.T, path, profile string) *Store {
	t.Helper()

	store, err := NewStore(path, profile)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
		_ = os.Remove(path + "-wal")
		_ = os.Remove(path + "-shm")
		_ = os.Remove(path + "-journal")
	})
	return store
}

func TestStoreLoadEmpty(t *testing.T) {
	store := newTestStore(t, filepath.Join(t.TempDir(), "test.db"), "")

	_, err := store.Load(context.Background())
	if !errors.Is(err, session.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestStoreSaveOverwritesAndClears(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, filepath.Join(t.TempDir(), "test.db"), "lab-3")

	if err := store.Save(ctx, []byte(`{"student_id":"1"}`)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, []byte(`{"student_id":"2"}`)); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	data, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(data) != `{"student_id":"2"}` {
		t.Fatalf("payload = %s", data)
	}

	var rows int
	if err := store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&rows); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if rows != 1 {
		t.Fatalf("rows = %d, want 1", rows)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := store.Load(ctx); !errors.Is(err, session.ErrNoSession) {
		t.Fatalf("expected ErrNoSession after Clear, got %v", err)
	}
}

func TestStoreProfilesAreIsolated(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "shared.db")
	first := newTestStore(t, path, "alice")
	second := newTestStore(t, path, "bob")

	if err := first.Save(ctx, []byte(`{"student_id":"a"}`)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := second.Load(ctx); !errors.Is(err, session.ErrNoSession) {
		t.Fatalf("bob should have no session, got %v", err)
	}

	if err := second.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := first.Load(ctx); err != nil {
		t.Fatalf("alice session lost: %v", err)
	}
}

func TestStoreWorksWithManager(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, filepath.Join(t.TempDir(), "test.db"), "")
	if err := store.Save(ctx, []byte(`{broken`)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	manager := session.NewManager(store, zerolog.Nop())
	_, ok, err := manager.Restore(ctx)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if ok {
		t.Fatalf("corrupt payload restored")
	}
	if _, err := store.Load(ctx); !errors.Is(err, session.ErrNoSession) {
		t.Fatalf("corrupt payload not cleared: %v", err)
	}
}
