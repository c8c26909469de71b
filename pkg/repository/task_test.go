package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/assetcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/assetcheck/pkg/domain/model"
	"github.com/secmon-lab/assetcheck/pkg/domain/types"
)

func newAssets(codes ...string) []*model.Asset {
	assets := make([]*model.Asset, 0, len(codes))
	for _, code := range codes {
		assets = append(assets, &model.Asset{
			Code:       code,
			Name:       "Item " + code,
			Category:   "Furniture",
			User:       "alice",
			Department: "IT",
			Location:   "Room 1",
			StartDate:  "2023-04-01",
		})
	}
	return assets
}

func assetCodes(assets []*model.Asset) []string {
	seen := map[string]bool{}
	for _, a := range assets {
		seen[a.Code] = true
	}
	codes := make([]string, 0, len(seen))
	for code := range seen {
		codes = append(codes, code)
	}
	return codes
}

func runTaskRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create persists task and every asset as UNCHECKED", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		task, err := repo.Task().Create(ctx, "Q1 Audit", newAssets("A001", "A002", "A003"))
		gt.NoError(t, err).Required()
		gt.Value(t, task.Name).Equal("Q1 Audit")
		gt.Bool(t, task.ID > 0).True()
		gt.Bool(t, task.CreatedAt.IsZero()).False()

		assets, err := repo.Asset().ListByTask(ctx, task.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, assets).Length(3)
		gt.Number(t, len(assetCodes(assets))).Equal(3)
		for _, a := range assets {
			gt.Value(t, a.TaskID).Equal(task.ID)
			gt.Value(t, a.Status).Equal(types.AssetStatusUnchecked)
			gt.Value(t, a.Category).Equal("Furniture")
		}
	})

	t.Run("Create with no assets creates an empty task", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		task, err := repo.Task().Create(ctx, "Empty", nil)
		gt.NoError(t, err).Required()

		assets, err := repo.Asset().ListByTask(ctx, task.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, assets).Length(0)
	})

	t.Run("Create with duplicate codes persists nothing", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		batch := []*model.Asset{
			{Code: "A001", Name: "Desk"},
			{Code: "A001", Name: "Chair"},
		}
		_, err := repo.Task().Create(ctx, "Broken", batch)
		gt.Error(t, err).Is(model.ErrConstraintViolation)

		tasks, err := repo.Task().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, tasks).Length(0)
	})

	t.Run("Create rejects an asset without name", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		batch := []*model.Asset{
			{Code: "A001", Name: "Desk"},
			{Code: "A002"},
		}
		_, err := repo.Task().Create(ctx, "Broken", batch)
		gt.Error(t, err).Is(model.ErrValidation)

		tasks, err := repo.Task().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, tasks).Length(0)
	})

	t.Run("Get returns NotFound for unknown task", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Task().Get(context.Background(), types.TaskID(42))
		gt.Error(t, err).Is(model.ErrNotFound)
	})

	t.Run("List returns newest first with computed asset counts", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first, err := repo.Task().Create(ctx, "first", newAssets("A1", "A2"))
		gt.NoError(t, err).Required()
		second, err := repo.Task().Create(ctx, "second", newAssets("B1"))
		gt.NoError(t, err).Required()
		empty, err := repo.Task().Create(ctx, "third", nil)
		gt.NoError(t, err).Required()

		tasks, err := repo.Task().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, tasks).Length(3).Required()

		gt.Value(t, tasks[0].ID).Equal(empty.ID)
		gt.Number(t, tasks[0].AssetCount).Equal(0)
		gt.Value(t, tasks[1].ID).Equal(second.ID)
		gt.Number(t, tasks[1].AssetCount).Equal(1)
		gt.Value(t, tasks[2].ID).Equal(first.ID)
		gt.Value(t, tasks[2].Name).Equal("first")
		gt.Number(t, tasks[2].AssetCount).Equal(2)
	})

	t.Run("List counts assets added by InsertBatch", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		task, err := repo.Task().Create(ctx, "grow", newAssets("A1"))
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.Asset().InsertBatch(ctx, task.ID, newAssets("A2", "A3"))).Required()

		tasks, err := repo.Task().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, tasks).Length(1).Required()
		gt.Number(t, tasks[0].AssetCount).Equal(3)
	})

	t.Run("Rename changes name only", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		task, err := repo.Task().Create(ctx, "old", newAssets("A1"))
		gt.NoError(t, err).Required()

		renamed, err := repo.Task().Rename(ctx, task.ID, "new")
		gt.NoError(t, err).Required()
		gt.Value(t, renamed.ID).Equal(task.ID)
		gt.Value(t, renamed.Name).Equal("new")
		gt.Bool(t, renamed.CreatedAt.Equal(task.CreatedAt)).True()

		got, err := repo.Task().Get(ctx, task.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Name).Equal("new")

		assets, err := repo.Asset().ListByTask(ctx, task.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, assets).Length(1)
	})

	t.Run("Rename returns NotFound for unknown task", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Task().Rename(context.Background(), types.TaskID(42), "x")
		gt.Error(t, err).Is(model.ErrNotFound)
	})

	t.Run("Delete removes task and every asset", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		task, err := repo.Task().Create(ctx, "gone", newAssets("A1", "A2"))
		gt.NoError(t, err).Required()
		kept, err := repo.Task().Create(ctx, "kept", newAssets("A1"))
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Task().Delete(ctx, task.ID)).Required()

		_, err = repo.Task().Get(ctx, task.ID)
		gt.Error(t, err).Is(model.ErrNotFound)
		_, err = repo.Asset().ListByTask(ctx, task.ID)
		gt.Error(t, err).Is(model.ErrNotFound)
		_, err = repo.Asset().FindByCode(ctx, task.ID, "A1")
		gt.Error(t, err).Is(model.ErrNotFound)

		remaining, err := repo.Asset().ListByTask(ctx, kept.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, remaining).Length(1)
	})

	t.Run("Delete returns NotFound for unknown task", func(t *testing.T) {
		repo := newRepo(t)
		err := repo.Task().Delete(context.Background(), types.TaskID(42))
		gt.Error(t, err).Is(model.ErrNotFound)
	})

	t.Run("ClearAll wipes every task and asset", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		a, err := repo.Task().Create(ctx, "a", newAssets("A1"))
		gt.NoError(t, err).Required()
		_, err = repo.Task().Create(ctx, "b", newAssets("B1", "B2"))
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.ClearAll(ctx)).Required()

		tasks, err := repo.Task().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, tasks).Length(0)

		_, err = repo.Asset().FindByCode(ctx, a.ID, "A1")
		gt.Error(t, err).Is(model.ErrNotFound)
	})
}

func TestTaskRepository(t *testing.T) {
	runAllBackends(t, runTaskRepositoryTest)
}
