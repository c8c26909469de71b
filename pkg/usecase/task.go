package usecase

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/assetcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/assetcheck/pkg/domain/model"
	"github.com/secmon-lab/assetcheck/pkg/domain/types"
	"github.com/secmon-lab/assetcheck/pkg/service/spreadsheet"
	"github.com/secmon-lab/assetcheck/pkg/utils/logging"
)

type TaskUseCase struct {
	repo   interfaces.Repository
	layout spreadsheet.Layout
}

func NewTaskUseCase(repo interfaces.Repository, layout spreadsheet.Layout) *TaskUseCase {
	return &TaskUseCase{
		repo:   repo,
		layout: layout,
	}
}

// ImportInput is a spreadsheet to turn into a new task
type ImportInput struct {
	Reader   io.Reader
	FileName string
	// Name overrides the task name derived from FileName
	Name string
	// Format defaults to the FileName extension
	Format spreadsheet.Format
	// Layout defaults to the use case layout
	Layout *spreadsheet.Layout
}

// ImportResult describes a completed import
type ImportResult struct {
	Task     *model.Task
	Imported int
	Dropped  int
}

// Import parses the spreadsheet, reconciles its rows and creates the task
// with all assets in one atomic write.
func (uc *TaskUseCase) Import(ctx context.Context, in ImportInput) (*ImportResult, error) {
	format := in.Format
	if format == "" {
		f, err := spreadsheet.FormatFromName(in.FileName)
		if err != nil {
			return nil, goerr.Wrap(errors.Join(model.ErrValidation, err), "cannot detect file format",
				goerr.V(FileNameKey, in.FileName))
		}
		format = f
	}

	layout := uc.layout
	if in.Layout != nil {
		layout = *in.Layout
	}

	rows, err := spreadsheet.ReadRows(in.Reader, format, layout)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read import file", goerr.V(FileNameKey, in.FileName))
	}

	return uc.ImportRows(ctx, rows, in.Name, in.FileName)
}

// ImportRows creates a task from rows that were already extracted
func (uc *TaskUseCase) ImportRows(ctx context.Context, rows []model.ImportRow, name, fileName string) (*ImportResult, error) {
	reconciled, err := Reconcile(rows, name, fileName)
	if err != nil {
		return nil, err
	}

	task, err := uc.repo.Task().Create(ctx, reconciled.TaskName, reconciled.Assets)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create task",
			goerr.V("task_name", reconciled.TaskName), goerr.V(FileNameKey, fileName))
	}

	logging.From(ctx).Info("Imported task",
		"task_id", task.ID,
		"task_name", task.Name,
		"imported", len(reconciled.Assets),
		"dropped", reconciled.Dropped,
	)

	return &ImportResult{
		Task:     task,
		Imported: len(reconciled.Assets),
		Dropped:  reconciled.Dropped,
	}, nil
}

func (uc *TaskUseCase) List(ctx context.Context) ([]*model.TaskSummary, error) {
	tasks, err := uc.repo.Task().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list tasks")
	}
	return tasks, nil
}

func (uc *TaskUseCase) Get(ctx context.Context, id types.TaskID) (*model.Task, error) {
	task, err := uc.repo.Task().Get(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, ErrTaskNotFound, "failed to get task", goerr.V(TaskIDKey, id))
	}
	return task, nil
}

func (uc *TaskUseCase) Rename(ctx context.Context, id types.TaskID, name string) (*model.Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, goerr.Wrap(ErrInvalidName, "cannot rename task to empty name", goerr.V(TaskIDKey, id))
	}

	task, err := uc.repo.Task().Rename(ctx, id, name)
	if err != nil {
		return nil, wrapNotFound(err, ErrTaskNotFound, "failed to rename task", goerr.V(TaskIDKey, id))
	}
	return task, nil
}

// Delete removes the task and every asset of it
func (uc *TaskUseCase) Delete(ctx context.Context, id types.TaskID) error {
	if err := uc.repo.Task().Delete(ctx, id); err != nil {
		return wrapNotFound(err, ErrTaskNotFound, "failed to delete task", goerr.V(TaskIDKey, id))
	}
	logging.From(ctx).Info("Deleted task", "task_id", id)
	return nil
}

// ClearAll wipes every task and asset. It cannot be undone.
func (uc *TaskUseCase) ClearAll(ctx context.Context) error {
	if err := uc.repo.ClearAll(ctx); err != nil {
		return goerr.Wrap(err, "failed to clear all data")
	}
	logging.From(ctx).Warn("Cleared all tasks and assets")
	return nil
}

// wrapNotFound replaces a store NotFound with the use case sentinel and
// wraps any other error as is.
func wrapNotFound(err error, sentinel error, msg string, values ...goerr.Option) error {
	if isNotFound(err) {
		return goerr.Wrap(sentinel, msg, values...)
	}
	return goerr.Wrap(err, msg, values...)
}

func isNotFound(err error) bool {
	return errors.Is(err, model.ErrNotFound)
}
