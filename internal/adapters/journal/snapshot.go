package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alejandrodnm/polyedge/internal/domain"
)

// SnapshotFile sobrescribe un único fichero de estado para observadores
// externos (dashboards, operadores). Es un caché, no un mecanismo de
// recuperación: los journals son la fuente de verdad.
type SnapshotFile struct {
	path string
}

// NewSnapshotFile crea el store sobre la ruta dada.
func NewSnapshotFile(path string) (*SnapshotFile, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("journal.NewSnapshotFile: %w", err)
		}
	}
	return &SnapshotFile{path: path}, nil
}

// Write escribe el snapshot de forma atómica: fichero temporal en el mismo
// directorio y rename, para que un lector nunca vea un JSON a medias.
func (s *SnapshotFile) Write(_ context.Context, snap domain.Snapshot) error {
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("journal.SnapshotFile.Write: marshal: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("journal.SnapshotFile.Write: temp: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("journal.SnapshotFile.Write: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("journal.SnapshotFile.Write: close: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("journal.SnapshotFile.Write: rename: %w", err)
	}
	return nil
}
