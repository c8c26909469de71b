package rdb_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/assetcheck/pkg/domain/model"
	"github.com/secmon-lab/assetcheck/pkg/domain/types"
)

func TestAsset_UnknownStoredStatus(t *testing.T) {
	repo := openFresh(t)
	ctx := context.Background()

	_, err := repo.Migrate(ctx)
	gt.NoError(t, err).Required()

	db := repo.DB()
	gt.NoError(t, db.Exec(`INSERT INTO tasks (id, name, created_at) VALUES (?, ?, ?)`,
		int64(2000), "broken", int64(2000)).Error).Required()
	gt.NoError(t, db.Exec(`INSERT INTO assets (task_id, code, name, category, "user", department, location, start_date, status) VALUES
		(?, ?, ?, '', '', '', '', '', ?)`,
		int64(2000), "A1", "Desk", "LOST").Error).Required()

	taskID := types.TaskID(2000)

	t.Run("find fails with a storage error", func(t *testing.T) {
		_, err := repo.Asset().FindByCode(ctx, taskID, "A1")
		gt.Error(t, err).Is(model.ErrStorage)
	})

	t.Run("list fails with a storage error", func(t *testing.T) {
		_, err := repo.Asset().ListByTask(ctx, taskID)
		gt.Error(t, err).Is(model.ErrStorage)
	})

	t.Run("status update replaces the bad value", func(t *testing.T) {
		asset, err := repo.Asset().UpdateStatus(ctx, taskID, "A1", types.AssetStatusMatched)
		gt.NoError(t, err).Required()
		gt.Value(t, asset.Status).Equal(types.AssetStatusMatched)

		found, err := repo.Asset().FindByCode(ctx, taskID, "A1")
		gt.NoError(t, err).Required()
		gt.Value(t, found.Status).Equal(types.AssetStatusMatched)
	})
}
