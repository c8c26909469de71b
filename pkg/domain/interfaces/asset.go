package interfaces

import (
	"context"

	"github.com/secmon-lab/assetcheck/pkg/domain/model"
	"github.com/secmon-lab/assetcheck/pkg/domain/types"
)

// AssetRepository defines the interface for Asset data access. Assets are
// never deleted individually; they go away with their task.
type AssetRepository interface {
	// InsertBatch inserts assets under an existing task atomically. A code
	// colliding within the batch or with stored rows rejects the whole batch.
	InsertBatch(ctx context.Context, taskID types.TaskID, assets []*model.Asset) error

	// FindByCode is the indexed exact-match lookup used by scan resolution
	FindByCode(ctx context.Context, taskID types.TaskID, code string) (*model.Asset, error)

	// ListByTask returns every asset of the task, order unspecified
	ListByTask(ctx context.Context, taskID types.TaskID) ([]*model.Asset, error)

	// UpdateStatus sets the status only
	UpdateStatus(ctx context.Context, taskID types.TaskID, code string, status types.AssetStatus) (*model.Asset, error)

	// UpdateDetails overwrites the non-nil detail fields and the status in
	// one atomic write
	UpdateDetails(ctx context.Context, taskID types.TaskID, code string, details model.AssetDetails, status types.AssetStatus) (*model.Asset, error)
}
