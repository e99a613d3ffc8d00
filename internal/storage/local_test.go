package storage_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FieldAtlas/FA-Backend/internal/errs"
	"github.com/FieldAtlas/FA-Backend/internal/storage"
)

func newLocal(t *testing.T) *storage.Local {
	t.Helper()
	ls, err := storage.NewLocal(storage.Config{Dir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	return ls
}

func TestLocal_StoreDeleteExists(t *testing.T) {
	ls := newLocal(t)
	ctx := context.Background()

	ref, err := ls.Store(ctx, strings.NewReader("jpeg bytes"), "tower-north.JPG")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(ref, ".jpg") {
		t.Errorf("expected reference to keep the extension, got %q", ref)
	}

	ok, err := ls.Exists(ctx, ref)
	if err != nil || !ok {
		t.Fatalf("Exists(%q) = %v, %v; want true", ref, ok, err)
	}

	if err := ls.Delete(ctx, ref); err != nil {
		t.Fatal(err)
	}
	ok, err = ls.Exists(ctx, ref)
	if err != nil || ok {
		t.Fatalf("Exists after delete = %v, %v; want false", ok, err)
	}

	// Deleting an already-reclaimed reference is not an error.
	if err := ls.Delete(ctx, ref); err != nil {
		t.Errorf("second delete returned %v", err)
	}
}

func TestLocal_RejectsPathEscapes(t *testing.T) {
	ls := newLocal(t)
	ctx := context.Background()

	for _, ref := range []string{"", "../outside.jpg", "a/b.jpg", ".hidden"} {
		if err := ls.Delete(ctx, ref); err == nil {
			t.Errorf("Delete(%q) accepted an invalid reference", ref)
		}
		if _, err := ls.Exists(ctx, ref); err == nil {
			t.Errorf("Exists(%q) accepted an invalid reference", ref)
		}
	}
}

func TestLocal_StripsOddExtensions(t *testing.T) {
	ls := newLocal(t)
	ref, err := ls.Store(context.Background(), strings.NewReader("x"), "weird.name.with$chars")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(ref, "$") || strings.Count(ref, ".") > 1 {
		t.Errorf("reference %q carries unsanitized extension", ref)
	}
}

// TestCleanup_BestEffort verifies that cleanup keeps going past failures and
// reports them as the non-fatal storage-cleanup kind.
func TestCleanup_BestEffort(t *testing.T) {
	dir := t.TempDir()
	ls, err := storage.NewLocal(storage.Config{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	ref, err := ls.Store(ctx, strings.NewReader("x"), "a.png")
	if err != nil {
		t.Fatal(err)
	}

	err = storage.Cleanup(ctx, ls, []string{"../bad-ref", ref, ""})
	if !errors.Is(err, errs.ErrStorageCleanup) {
		t.Fatalf("expected ErrStorageCleanup, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, ref)); !os.IsNotExist(statErr) {
		t.Error("valid reference was not cleaned up after an earlier failure")
	}

	if err := storage.Cleanup(ctx, ls, []string{ref}); err != nil {
		t.Errorf("cleanup of already-removed refs should succeed, got %v", err)
	}
}
