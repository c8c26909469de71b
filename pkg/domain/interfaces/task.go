package interfaces

import (
	"context"

	"github.com/secmon-lab/assetcheck/pkg/domain/model"
	"github.com/secmon-lab/assetcheck/pkg/domain/types"
)

// TaskRepository defines the interface for Task data access
type TaskRepository interface {
	// Create persists a new task and its whole asset batch atomically. A
	// duplicate code in the batch fails the call with
	// model.ErrConstraintViolation and leaves no task behind.
	Create(ctx context.Context, name string, assets []*model.Asset) (*model.Task, error)

	// Get retrieves a task by ID
	Get(ctx context.Context, id types.TaskID) (*model.Task, error)

	// List returns task summaries, newest first
	List(ctx context.Context) ([]*model.TaskSummary, error)

	// Rename updates the display name only
	Rename(ctx context.Context, id types.TaskID, name string) (*model.Task, error)

	// Delete removes the task and every asset it owns atomically
	Delete(ctx context.Context, id types.TaskID) error
}
