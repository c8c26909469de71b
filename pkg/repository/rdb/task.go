package rdb

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/assetcheck/pkg/domain/model"
	"github.com/secmon-lab/assetcheck/pkg/domain/types"
	"gorm.io/gorm"
)

const insertBatchSize = 200

type taskRepository struct {
	db *gorm.DB
}

type taskSummaryRow struct {
	ID         int64
	Name       string
	CreatedAt  int64
	AssetCount int
}

func (r *taskRepository) Create(ctx context.Context, name string, assets []*model.Asset) (*model.Task, error) {
	row := &taskRow{
		ID:        types.NewTaskID().Int64(),
		Name:      name,
		CreatedAt: time.Now().UnixMilli(),
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		return insertAssets(tx, types.TaskID(row.ID), assets)
	})
	if err != nil {
		return nil, translate(err, "failed to create task", goerr.V(model.TaskIDKey, row.ID))
	}

	return toTaskModel(row), nil
}

func (r *taskRepository) Get(ctx context.Context, id types.TaskID) (*model.Task, error) {
	var row taskRow
	if err := r.db.WithContext(ctx).Take(&row, "id = ?", id.Int64()).Error; err != nil {
		return nil, translate(err, "task not found", goerr.V(model.TaskIDKey, id))
	}
	return toTaskModel(&row), nil
}

func (r *taskRepository) List(ctx context.Context) ([]*model.TaskSummary, error) {
	var rows []taskSummaryRow
	err := r.db.WithContext(ctx).
		Table("tasks").
		Select("tasks.id AS id, tasks.name AS name, tasks.created_at AS created_at, COUNT(assets.id) AS asset_count").
		Joins("LEFT JOIN assets ON assets.task_id = tasks.id").
		Group("tasks.id, tasks.name, tasks.created_at").
		Order("tasks.created_at DESC, tasks.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, storageError(err, "failed to list tasks")
	}

	result := make([]*model.TaskSummary, len(rows))
	for i, row := range rows {
		result[i] = &model.TaskSummary{
			ID:         types.TaskID(row.ID),
			Name:       row.Name,
			CreatedAt:  time.UnixMilli(row.CreatedAt).UTC(),
			AssetCount: row.AssetCount,
		}
	}
	return result, nil
}

func (r *taskRepository) Rename(ctx context.Context, id types.TaskID, name string) (*model.Task, error) {
	var row taskRow
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Take(&row, "id = ?", id.Int64()).Error; err != nil {
			return err
		}
		row.Name = name
		return tx.Model(&row).Update("name", name).Error
	})
	if err != nil {
		return nil, translate(err, "failed to rename task", goerr.V(model.TaskIDKey, id))
	}
	return toTaskModel(&row), nil
}

func (r *taskRepository) Delete(ctx context.Context, id types.TaskID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id.Int64()).Delete(&assetRow{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id.Int64()).Delete(&taskRow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return translate(err, "failed to delete task", goerr.V(model.TaskIDKey, id))
	}
	return nil
}
