package interfaces

import (
	"context"
)

// Repository defines the interface for data persistence. Callers re-query
// after every mutation; implementations keep no read caches.
type Repository interface {
	Task() TaskRepository
	Asset() AssetRepository

	// ClearAll irreversibly removes every task and asset
	ClearAll(ctx context.Context) error

	Close() error
}
