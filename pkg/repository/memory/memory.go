package memory

import (
	"context"
	"sync"

	"github.com/secmon-lab/assetcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/assetcheck/pkg/domain/model"
	"github.com/secmon-lab/assetcheck/pkg/domain/types"
)

// ErrNotFound is returned when a task or asset does not exist
var ErrNotFound = model.ErrNotFound

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory keeps tasks and assets in process memory. Both repositories share
// one lock so that task+asset writes are atomic.
type Memory struct {
	st    *store
	task  *taskRepository
	asset *assetRepository
}

var _ interfaces.Repository = &Memory{}

// store is the shared state. assets is keyed by task then code; the inner
// map is the (task, code) uniqueness index.
type store struct {
	mu     sync.RWMutex
	tasks  map[types.TaskID]*model.Task
	assets map[types.TaskID]map[string]*model.Asset
}

func New() *Memory {
	st := &store{
		tasks:  make(map[types.TaskID]*model.Task),
		assets: make(map[types.TaskID]map[string]*model.Asset),
	}
	return &Memory{
		st:    st,
		task:  &taskRepository{st: st},
		asset: &assetRepository{st: st},
	}
}

func (m *Memory) Task() interfaces.TaskRepository {
	return m.task
}

func (m *Memory) Asset() interfaces.AssetRepository {
	return m.asset
}

func (m *Memory) ClearAll(ctx context.Context) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()

	m.st.tasks = make(map[types.TaskID]*model.Task)
	m.st.assets = make(map[types.TaskID]map[string]*model.Asset)
	return nil
}

func (m *Memory) Close() error {
	return nil
}

func copyTask(t *model.Task) *model.Task {
	c := *t
	return &c
}
