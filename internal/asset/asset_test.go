package asset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	store, err := NewStore(filepath.Join(dir, "staging"), filepath.Join(dir, "images"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func stagedCount(t *testing.T, store *Store) int {
	t.Helper()
	entries, err := os.ReadDir(store.stagingDir)
	if err != nil {
		t.Fatalf("reading staging dir: %v", err)
	}
	return len(entries)
}

func TestStageAndCommit(t *testing.T) {
	store := newTestStore(t)

	staged, err := store.Stage([]byte("jpeg bytes"), "image/jpeg")
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if !strings.HasSuffix(staged.Name, ".jpg") {
		t.Errorf("expected .jpg suffix, got %q", staged.Name)
	}
	if staged.Hash == "" {
		t.Error("expected non-empty content hash")
	}
	if stagedCount(t, store) != 1 {
		t.Errorf("expected 1 staged file, got %d", stagedCount(t, store))
	}

	if err := store.Commit(staged.Name); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if stagedCount(t, store) != 0 {
		t.Error("staged file not moved on commit")
	}

	data, err := store.ReadCommitted(staged.Name)
	if err != nil {
		t.Fatalf("ReadCommitted: %v", err)
	}
	if string(data) != "jpeg bytes" {
		t.Errorf("committed content mismatch: %q", data)
	}
}

func TestStageRejectsUnsupportedMIME(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Stage([]byte("gif bytes"), "image/gif")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if stagedCount(t, store) != 0 {
		t.Error("rejected upload left a staged file behind")
	}
}

func TestStagePNGExtension(t *testing.T) {
	store := newTestStore(t)

	staged, err := store.Stage([]byte("png bytes"), "image/png")
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if !strings.HasSuffix(staged.Name, ".png") {
		t.Errorf("expected .png suffix, got %q", staged.Name)
	}
}

func TestCommitConsumedReference(t *testing.T) {
	store := newTestStore(t)

	staged, _ := store.Stage([]byte("bytes"), "image/jpeg")
	if err := store.Commit(staged.Name); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	// A second commit of the same reference means ordering went wrong.
	if err := store.Commit(staged.Name); !errors.Is(err, ErrMissing) {
		t.Errorf("expected ErrMissing on re-commit, got %v", err)
	}
}

func TestDiscardIsIdempotent(t *testing.T) {
	store := newTestStore(t)

	staged, _ := store.Stage([]byte("bytes"), "image/jpeg")
	if err := store.Discard(staged.Name); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	if err := store.Discard(staged.Name); err != nil {
		t.Errorf("second Discard should be a no-op, got %v", err)
	}
	if err := store.Discard("never-staged.jpg"); err != nil {
		t.Errorf("Discard of unknown reference should be a no-op, got %v", err)
	}
}

func TestRemoveCommitted(t *testing.T) {
	store := newTestStore(t)

	staged, _ := store.Stage([]byte("bytes"), "image/jpeg")
	store.Commit(staged.Name)

	if err := store.Remove(staged.Name); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := store.ReadCommitted(staged.Name); err == nil {
		t.Error("expected removed asset to be unreadable")
	}
	if err := store.Remove(staged.Name); err != nil {
		t.Errorf("Remove of missing asset should be a no-op, got %v", err)
	}
}

func TestStagedNamesAreUnique(t *testing.T) {
	store := newTestStore(t)

	seen := map[string]bool{}
	for range 20 {
		staged, err := store.Stage([]byte("bytes"), "image/jpeg")
		if err != nil {
			t.Fatalf("Stage: %v", err)
		}
		if seen[staged.Name] {
			t.Fatalf("duplicate staged name %q", staged.Name)
		}
		seen[staged.Name] = true
	}
}

func TestHashIsStable(t *testing.T) {
	a := Hash([]byte("content"))
	b := Hash([]byte("content"))
	c := Hash([]byte("different"))
	if a != b {
		t.Error("hash of identical content differs")
	}
	if a == c {
		t.Error("hash of different content collides")
	}
}
