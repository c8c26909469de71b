package model

import "github.com/m-mizutani/goerr/v2"

// Error taxonomy shared by every repository backend and the use cases
var (
	ErrNotFound            = goerr.New("not found")
	ErrValidation          = goerr.New("validation failure")
	ErrConstraintViolation = goerr.New("constraint violation")
	ErrStorage             = goerr.New("storage failure")
)

// Context keys for error values
const (
	TaskIDKey    = "task_id"
	AssetCodeKey = "asset_code"
	AssetNameKey = "asset_name"
	StatusKey    = "status"
)
