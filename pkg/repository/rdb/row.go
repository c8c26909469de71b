package rdb

import (
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/assetcheck/pkg/domain/model"
	"github.com/secmon-lab/assetcheck/pkg/domain/types"
)

// taskRow is the persistence model of model.Task
type taskRow struct {
	ID        int64  `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name      string `gorm:"column:name;type:text;not null"`
	CreatedAt int64  `gorm:"column:created_at;not null;index:idx_tasks_created_at"` // unix millis
}

func (taskRow) TableName() string { return "tasks" }

// assetRow is the persistence model of model.Asset. (task_id, code) is
// unique through idx_assets_task_code, which also serves FindByCode.
type assetRow struct {
	ID         int64  `gorm:"column:id;primaryKey;autoIncrement"`
	TaskID     int64  `gorm:"column:task_id;not null;uniqueIndex:idx_assets_task_code,priority:1"`
	Code       string `gorm:"column:code;type:varchar(255);not null;uniqueIndex:idx_assets_task_code,priority:2"`
	Name       string `gorm:"column:name;type:text;not null"`
	Category   string `gorm:"column:category;type:text;default:''"`
	User       string `gorm:"column:user;type:text"`
	Department string `gorm:"column:department;type:text"`
	Location   string `gorm:"column:location;type:text"`
	StartDate  string `gorm:"column:start_date;type:text"`
	Status     string `gorm:"column:status;type:varchar(32);not null;default:UNCHECKED"`
}

func (assetRow) TableName() string { return "assets" }

func toTaskModel(row *taskRow) *model.Task {
	return &model.Task{
		ID:        types.TaskID(row.ID),
		Name:      row.Name,
		CreatedAt: time.UnixMilli(row.CreatedAt).UTC(),
	}
}

func toAssetRow(taskID types.TaskID, a *model.Asset) assetRow {
	return assetRow{
		TaskID:     taskID.Int64(),
		Code:       a.Code,
		Name:       a.Name,
		Category:   a.Category,
		User:       a.User,
		Department: a.Department,
		Location:   a.Location,
		StartDate:  a.StartDate,
		Status:     a.Status.Normalize().String(),
	}
}

// toAssetModel fails with model.ErrStorage when the stored status is not a
// known status or legacy alias.
func toAssetModel(row *assetRow) (*model.Asset, error) {
	status, err := storedStatus(row.Status)
	if err != nil {
		return nil, goerr.Wrap(errors.Join(model.ErrStorage, err), "invalid stored asset status",
			goerr.V(model.TaskIDKey, row.TaskID), goerr.V(model.AssetCodeKey, row.Code), goerr.V(model.StatusKey, row.Status))
	}
	return &model.Asset{
		TaskID:     types.TaskID(row.TaskID),
		Code:       row.Code,
		Name:       row.Name,
		Category:   row.Category,
		User:       row.User,
		Department: row.Department,
		Location:   row.Location,
		StartDate:  row.StartDate,
		Status:     status,
	}, nil
}

func storedStatus(raw string) (types.AssetStatus, error) {
	if raw == "" {
		return types.AssetStatusUnchecked, nil
	}
	return types.ParseAssetStatus(raw)
}
