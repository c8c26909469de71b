package rdb

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/assetcheck/pkg/domain/model"
	"github.com/secmon-lab/assetcheck/pkg/domain/types"
	"gorm.io/gorm"
)

type assetRepository struct {
	db *gorm.DB
}

// insertAssets validates the batch, rejects codes repeated inside it and
// inserts it through tx. Collisions with stored rows surface from the unique
// index as gorm.ErrDuplicatedKey.
func insertAssets(tx *gorm.DB, taskID types.TaskID, assets []*model.Asset) error {
	if len(assets) == 0 {
		return nil
	}

	rows := make([]assetRow, 0, len(assets))
	seen := make(map[string]struct{}, len(assets))
	for _, a := range assets {
		normalized := a.Copy()
		normalized.Status = normalized.Status.Normalize()
		if err := normalized.Validate(); err != nil {
			return err
		}
		if _, dup := seen[a.Code]; dup {
			return goerr.Wrap(model.ErrConstraintViolation, "duplicate asset code in batch",
				goerr.V(model.AssetCodeKey, a.Code))
		}
		seen[a.Code] = struct{}{}
		rows = append(rows, toAssetRow(taskID, normalized))
	}

	return tx.CreateInBatches(rows, insertBatchSize).Error
}

func (r *assetRepository) InsertBatch(ctx context.Context, taskID types.TaskID, assets []*model.Asset) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Take(&taskRow{}, "id = ?", taskID.Int64()).Error; err != nil {
			return err
		}
		return insertAssets(tx, taskID, assets)
	})
	if err != nil {
		return translate(err, "failed to insert assets", goerr.V(model.TaskIDKey, taskID))
	}
	return nil
}

func (r *assetRepository) FindByCode(ctx context.Context, taskID types.TaskID, code string) (*model.Asset, error) {
	var row assetRow
	err := r.db.WithContext(ctx).
		Where("task_id = ? AND code = ?", taskID.Int64(), code).
		Take(&row).Error
	if err != nil {
		return nil, translate(err, "asset not found",
			goerr.V(model.TaskIDKey, taskID), goerr.V(model.AssetCodeKey, code))
	}
	return toAssetModel(&row)
}

func (r *assetRepository) ListByTask(ctx context.Context, taskID types.TaskID) ([]*model.Asset, error) {
	var rows []assetRow
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Take(&taskRow{}, "id = ?", taskID.Int64()).Error; err != nil {
			return err
		}
		return tx.Where("task_id = ?", taskID.Int64()).Find(&rows).Error
	})
	if err != nil {
		return nil, translate(err, "failed to list assets", goerr.V(model.TaskIDKey, taskID))
	}

	result := make([]*model.Asset, len(rows))
	for i := range rows {
		asset, err := toAssetModel(&rows[i])
		if err != nil {
			return nil, err
		}
		result[i] = asset
	}
	return result, nil
}

func (r *assetRepository) UpdateStatus(ctx context.Context, taskID types.TaskID, code string, status types.AssetStatus) (*model.Asset, error) {
	if !status.IsValid() {
		return nil, goerr.Wrap(model.ErrValidation, "invalid asset status",
			goerr.V(model.AssetCodeKey, code), goerr.V(model.StatusKey, status))
	}
	return r.update(ctx, taskID, code, map[string]interface{}{
		"status": status.String(),
	})
}

func (r *assetRepository) UpdateDetails(ctx context.Context, taskID types.TaskID, code string, details model.AssetDetails, status types.AssetStatus) (*model.Asset, error) {
	if !status.IsValid() {
		return nil, goerr.Wrap(model.ErrValidation, "invalid asset status",
			goerr.V(model.AssetCodeKey, code), goerr.V(model.StatusKey, status))
	}

	values := map[string]interface{}{
		"status": status.String(),
	}
	if details.User != nil {
		values["user"] = *details.User
	}
	if details.Department != nil {
		values["department"] = *details.Department
	}
	if details.Location != nil {
		values["location"] = *details.Location
	}

	return r.update(ctx, taskID, code, values)
}

// update writes values to one asset and reads it back in the same transaction
func (r *assetRepository) update(ctx context.Context, taskID types.TaskID, code string, values map[string]interface{}) (*model.Asset, error) {
	var row assetRow
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&assetRow{}).
			Where("task_id = ? AND code = ?", taskID.Int64(), code).
			Updates(values)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("task_id = ? AND code = ?", taskID.Int64(), code).Take(&row).Error
	})
	if err != nil {
		return nil, translate(err, "failed to update asset",
			goerr.V(model.TaskIDKey, taskID), goerr.V(model.AssetCodeKey, code))
	}
	return toAssetModel(&row)
}
