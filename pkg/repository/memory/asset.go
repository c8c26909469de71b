package memory

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/assetcheck/pkg/domain/model"
	"github.com/secmon-lab/assetcheck/pkg/domain/types"
)

type assetRepository struct {
	st *store
}

// buildBucket validates assets and returns a new code index that contains
// existing plus assets. existing is not modified.
func buildBucket(taskID types.TaskID, existing map[string]*model.Asset, assets []*model.Asset) (map[string]*model.Asset, error) {
	bucket := make(map[string]*model.Asset, len(existing)+len(assets))
	for code, a := range existing {
		bucket[code] = a
	}

	for _, a := range assets {
		created := a.Copy()
		created.TaskID = taskID
		created.Status = created.Status.Normalize()
		if err := created.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid asset in batch", goerr.V(model.TaskIDKey, taskID))
		}
		if _, dup := bucket[created.Code]; dup {
			return nil, goerr.Wrap(model.ErrConstraintViolation, "duplicate asset code",
				goerr.V(model.TaskIDKey, taskID),
				goerr.V(model.AssetCodeKey, created.Code))
		}
		bucket[created.Code] = created
	}

	return bucket, nil
}

func (r *assetRepository) InsertBatch(ctx context.Context, taskID types.TaskID, assets []*model.Asset) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, exists := r.st.tasks[taskID]; !exists {
		return goerr.Wrap(ErrNotFound, "task not found", goerr.V(model.TaskIDKey, taskID))
	}

	bucket, err := buildBucket(taskID, r.st.assets[taskID], assets)
	if err != nil {
		return err
	}
	r.st.assets[taskID] = bucket
	return nil
}

func (r *assetRepository) FindByCode(ctx context.Context, taskID types.TaskID, code string) (*model.Asset, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	a, err := r.lookup(taskID, code)
	if err != nil {
		return nil, err
	}
	return a.Copy(), nil
}

func (r *assetRepository) ListByTask(ctx context.Context, taskID types.TaskID) ([]*model.Asset, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	if _, exists := r.st.tasks[taskID]; !exists {
		return nil, goerr.Wrap(ErrNotFound, "task not found", goerr.V(model.TaskIDKey, taskID))
	}

	bucket := r.st.assets[taskID]
	result := make([]*model.Asset, 0, len(bucket))
	for _, a := range bucket {
		result = append(result, a.Copy())
	}
	return result, nil
}

func (r *assetRepository) UpdateStatus(ctx context.Context, taskID types.TaskID, code string, status types.AssetStatus) (*model.Asset, error) {
	if !status.IsValid() {
		return nil, goerr.Wrap(model.ErrValidation, "invalid asset status",
			goerr.V(model.AssetCodeKey, code), goerr.V(model.StatusKey, status))
	}

	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	a, err := r.lookup(taskID, code)
	if err != nil {
		return nil, err
	}
	a.Status = status
	return a.Copy(), nil
}

func (r *assetRepository) UpdateDetails(ctx context.Context, taskID types.TaskID, code string, details model.AssetDetails, status types.AssetStatus) (*model.Asset, error) {
	if !status.IsValid() {
		return nil, goerr.Wrap(model.ErrValidation, "invalid asset status",
			goerr.V(model.AssetCodeKey, code), goerr.V(model.StatusKey, status))
	}

	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	a, err := r.lookup(taskID, code)
	if err != nil {
		return nil, err
	}
	details.ApplyTo(a)
	a.Status = status
	return a.Copy(), nil
}

// lookup must be called with the lock held
func (r *assetRepository) lookup(taskID types.TaskID, code string) (*model.Asset, error) {
	bucket, exists := r.st.assets[taskID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "task not found", goerr.V(model.TaskIDKey, taskID))
	}
	a, exists := bucket[code]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "asset not found",
			goerr.V(model.TaskIDKey, taskID), goerr.V(model.AssetCodeKey, code))
	}
	return a, nil
}
