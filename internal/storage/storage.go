// Package storage defines the upload-storage collaborator. The data model
// never reads or writes binary content itself; it stores the opaque
// references this collaborator hands out and notifies it when rows holding a
// reference are deleted.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/FieldAtlas/FA-Backend/internal/errs"
)

// ContentStore holds uploaded binary content (pano/photo imagery, overlay
// rasters, asset-type icons).
type ContentStore interface {
	// Store writes the content and returns an opaque reference to it. hint
	// is the client-supplied filename, used only to preserve the extension.
	Store(ctx context.Context, r io.Reader, hint string) (string, error)

	// Delete removes the content behind ref. Deleting a reference that no
	// longer exists is not an error.
	Delete(ctx context.Context, ref string) error

	// Exists reports whether content is present for ref.
	Exists(ctx context.Context, ref string) (bool, error)
}

// Config holds the storage collaborator's settings.
type Config struct {
	// Dir is the directory backing the local store.
	Dir string
}

// LoadFromEnv loads storage configuration from environment variables.
//
// Environment variables:
//   - UPLOAD_DIR: directory for stored content (default: ./uploads)
func LoadFromEnv() Config {
	dir := strings.TrimSpace(os.Getenv("UPLOAD_DIR"))
	if dir == "" {
		dir = "./uploads"
	}
	return Config{Dir: dir}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.Dir == "" {
		return errors.New("storage: upload directory is required")
	}
	return nil
}

// Cleanup deletes the given content references best-effort, after the row
// deletes referencing them have already committed. Failures are logged and
// reported as a non-fatal ErrStorageCleanup; the committed row deletes stand
// and a reconciliation pass is expected to retry the orphans.
func Cleanup(ctx context.Context, cs ContentStore, refs []string) error {
	var failed []string
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if err := cs.Delete(ctx, ref); err != nil {
			log.Printf("[storage] cleanup of %q failed: %v", ref, err)
			failed = append(failed, ref)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%w: %s", errs.ErrStorageCleanup, strings.Join(failed, ", "))
	}
	return nil
}
