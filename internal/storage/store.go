// internal/storage/store.go
package storage

import "context"

// Store durably persists and reloads the bank snapshot. The service layer
// calls Save after every committed mutation; how the snapshot is laid out on
// disk (or in a database) is entirely this layer's concern.
type Store interface {
	// Load returns the last saved snapshot. A missing or unreadable backing
	// store is a recoverable condition: implementations return Empty() and no
	// error so a fresh installation can start.
	Load(ctx context.Context) (Snapshot, error)
	// Save durably stores the snapshot, replacing the previous one.
	Save(ctx context.Context, snap Snapshot) error
}
