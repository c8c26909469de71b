package model

import (
	"time"

	"github.com/secmon-lab/assetcheck/pkg/domain/types"
)

// Task is one inventory-checking campaign over an imported batch of assets
type Task struct {
	ID        types.TaskID
	Name      string
	CreatedAt time.Time
}

// TaskSummary is the list projection of a Task. AssetCount is computed by
// the store, never persisted.
type TaskSummary struct {
	ID         types.TaskID
	Name       string
	CreatedAt  time.Time
	AssetCount int
}
