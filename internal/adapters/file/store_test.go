package file_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/heartaxis/internal/adapters/file"
	"github.com/aretw0/heartaxis/pkg/domain"
	"github.com/aretw0/heartaxis/pkg/ports"
)

// Ensure Store implements SessionStore
var _ ports.SessionStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	ports.RunSessionStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_Files(t *testing.T) {
	tempDir := t.TempDir()
	store := file.New(tempDir)
	ctx := context.Background()

	t.Run("SaveWritesFlatJSON", func(t *testing.T) {
		session := domain.NewSession("session-1", true, domain.DefaultSettings())
		session.Inputs = session.Inputs.With(domain.FieldSumI, domain.Number(42))

		if err := store.Save(ctx, "session-1", session); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		data, err := os.ReadFile(filepath.Join(tempDir, "session-1.json"))
		if err != nil {
			t.Fatalf("session file missing: %v", err)
		}
		if !strings.Contains(string(data), `"sumI": 42`) {
			t.Errorf("expected flat sumI entry, got %s", data)
		}
	})

	t.Run("OverwriteKeepsLatest", func(t *testing.T) {
		session := domain.NewSession("session-1", false, domain.DefaultSettings())
		if err := store.Save(ctx, "session-1", session); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		loaded, err := store.Load(ctx, "session-1")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if loaded.UseSums {
			t.Errorf("expected overwritten session to be in waves mode")
		}
	})

	t.Run("DeleteRemovesFile", func(t *testing.T) {
		path := filepath.Join(tempDir, "session-1.json")
		if err := store.Delete(ctx, "session-1"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("file should not exist after delete")
		}
		if err := store.Delete(ctx, "session-1"); err != nil {
			t.Errorf("deleting a missing session should be a no-op, got %v", err)
		}
	})

	t.Run("RejectsPathTraversal", func(t *testing.T) {
		for _, id := range []string{"", "../escape", "a/b", ".hidden"} {
			if err := store.Save(ctx, id, domain.NewSession(id, true, domain.DefaultSettings())); err == nil {
				t.Errorf("expected error for id %q", id)
			}
		}
	})

	t.Run("ListMissingDir", func(t *testing.T) {
		ids, err := file.New(filepath.Join(tempDir, "nope")).List(ctx)
		if err != nil || len(ids) != 0 {
			t.Errorf("expected empty list, got %v (%v)", ids, err)
		}
	})
}
