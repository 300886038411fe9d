// internal/storage/jsonstore.go
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
)

// JSONStore persists the snapshot as an indented JSON file. Writes are
// atomic: the snapshot goes to a temporary file first and is renamed over the
// previous one, so a crash mid-write never corrupts the stored state.
type JSONStore struct {
	path   string
	logger *slog.Logger
}

// NewJSONStore creates a JSONStore writing to path.
func NewJSONStore(path string, logger *slog.Logger) *JSONStore {
	return &JSONStore{path: path, logger: logger}
}

// Load reads the snapshot file. A missing or malformed file is not an error:
// the bank starts empty and the file is rewritten on the next save.
func (s *JSONStore) Load(ctx context.Context) (Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("snapshot file unreadable, starting empty", "path", s.path, "error", err)
		}
		return Empty(), nil
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("snapshot file malformed, starting empty", "path", s.path, "error", err)
		return Empty(), nil
	}
	if snap.ProximoNumeroConta < 1 {
		snap.ProximoNumeroConta = 1
	}
	return snap, nil
}

// Save writes the snapshot atomically.
func (s *JSONStore) Save(ctx context.Context, snap Snapshot) error {
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create snapshot temp file: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close snapshot temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace snapshot file: %w", err)
	}
	return nil
}
