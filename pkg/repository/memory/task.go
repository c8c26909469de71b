package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/assetcheck/pkg/domain/model"
	"github.com/secmon-lab/assetcheck/pkg/domain/types"
)

type taskRepository struct {
	st *store
}

func (r *taskRepository) Create(ctx context.Context, name string, assets []*model.Asset) (*model.Task, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	id := types.NewTaskID()
	for {
		if _, exists := r.st.tasks[id]; !exists {
			break
		}
		id = types.NewTaskID()
	}

	// Build the whole bucket before touching shared state so a rejected
	// batch leaves nothing behind.
	bucket, err := buildBucket(id, nil, assets)
	if err != nil {
		return nil, err
	}

	created := &model.Task{
		ID:        id,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	r.st.tasks[id] = created
	r.st.assets[id] = bucket

	return copyTask(created), nil
}

func (r *taskRepository) Get(ctx context.Context, id types.TaskID) (*model.Task, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	t, exists := r.st.tasks[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "task not found", goerr.V(model.TaskIDKey, id))
	}
	return copyTask(t), nil
}

func (r *taskRepository) List(ctx context.Context) ([]*model.TaskSummary, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	result := make([]*model.TaskSummary, 0, len(r.st.tasks))
	for _, t := range r.st.tasks {
		result = append(result, &model.TaskSummary{
			ID:         t.ID,
			Name:       t.Name,
			CreatedAt:  t.CreatedAt,
			AssetCount: len(r.st.assets[t.ID]),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	return result, nil
}

func (r *taskRepository) Rename(ctx context.Context, id types.TaskID, name string) (*model.Task, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	t, exists := r.st.tasks[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "task not found", goerr.V(model.TaskIDKey, id))
	}
	t.Name = name
	return copyTask(t), nil
}

func (r *taskRepository) Delete(ctx context.Context, id types.TaskID) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, exists := r.st.tasks[id]; !exists {
		return goerr.Wrap(ErrNotFound, "task not found", goerr.V(model.TaskIDKey, id))
	}

	delete(r.st.assets, id)
	delete(r.st.tasks, id)
	return nil
}
