package usecase

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/assetcheck/pkg/domain/model"
)

// Sentinel errors for use case layer. Each wraps its domain category so
// callers can branch on either.
var (
	// Not found errors
	ErrTaskNotFound  = goerr.Wrap(model.ErrNotFound, "task not found")
	ErrAssetNotFound = goerr.Wrap(model.ErrNotFound, "asset code not found")

	// Validation errors
	ErrNoData      = goerr.Wrap(model.ErrValidation, "no valid asset rows")
	ErrInvalidName = goerr.Wrap(model.ErrValidation, "task name is required")
	ErrEmptyCode   = goerr.Wrap(model.ErrValidation, "asset code is empty")
)

// Context keys for error values
const (
	TaskIDKey    = "task_id"
	AssetCodeKey = "asset_code"
	FileNameKey  = "file_name"
)
