package usecase

import (
	"context"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/assetcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/assetcheck/pkg/domain/model"
	"github.com/secmon-lab/assetcheck/pkg/domain/types"
	"github.com/secmon-lab/assetcheck/pkg/service/spreadsheet"
	"github.com/secmon-lab/assetcheck/pkg/utils/logging"
)

type AssetUseCase struct {
	repo interfaces.Repository
}

func NewAssetUseCase(repo interfaces.Repository) *AssetUseCase {
	return &AssetUseCase{repo: repo}
}

// AssetList is the asset screen of one task. Summary counts every asset of
// the task regardless of the filter.
type AssetList struct {
	Task    *model.Task
	Assets  []*model.Asset
	Summary model.StatusSummary
}

// OpenResult is an asset opened for checking. AlreadyChecked warns that the
// asset has been checked in this pass; it never blocks a transition.
type OpenResult struct {
	Asset          *model.Asset
	AlreadyChecked bool
}

// List returns the filtered assets sorted by code
func (uc *AssetUseCase) List(ctx context.Context, taskID types.TaskID, filter model.AssetFilter) (*AssetList, error) {
	task, err := uc.repo.Task().Get(ctx, taskID)
	if err != nil {
		return nil, wrapNotFound(err, ErrTaskNotFound, "failed to get task", goerr.V(TaskIDKey, taskID))
	}

	all, err := uc.repo.Asset().ListByTask(ctx, taskID)
	if err != nil {
		return nil, wrapNotFound(err, ErrTaskNotFound, "failed to list assets", goerr.V(TaskIDKey, taskID))
	}

	filtered := model.FilterAssets(all, filter)
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Code < filtered[j].Code
	})

	return &AssetList{
		Task:    task,
		Assets:  filtered,
		Summary: model.Summarize(all),
	}, nil
}

// Open loads an asset for the check workflow
func (uc *AssetUseCase) Open(ctx context.Context, taskID types.TaskID, code string) (*OpenResult, error) {
	asset, err := uc.repo.Asset().FindByCode(ctx, taskID, code)
	if err != nil {
		return nil, uc.assetError(ctx, err, taskID, code, "failed to open asset")
	}

	result := &OpenResult{
		Asset:          asset,
		AlreadyChecked: asset.Status.IsChecked(),
	}
	if result.AlreadyChecked {
		logging.From(ctx).Warn("Asset already checked in this pass",
			"task_id", taskID,
			"code", code,
			"status", asset.Status,
		)
	}
	return result, nil
}

// Scan resolves a decoded barcode or QR payload to an asset
func (uc *AssetUseCase) Scan(ctx context.Context, taskID types.TaskID, payload string) (*OpenResult, error) {
	code := strings.TrimSpace(payload)
	if code == "" {
		return nil, goerr.Wrap(ErrEmptyCode, "scanned payload is empty", goerr.V(TaskIDKey, taskID))
	}
	return uc.Open(ctx, taskID, code)
}

// ConfirmMatch records that the asset matches the list. needReprint moves it
// to LABEL_REPRINT instead of MATCHED.
func (uc *AssetUseCase) ConfirmMatch(ctx context.Context, taskID types.TaskID, code string, needReprint bool) (*model.Asset, error) {
	return uc.apply(ctx, taskID, code, types.MatchTrigger(needReprint), model.AssetDetails{})
}

// DeclareMismatch records corrected details and moves the asset to MISMATCH
// in one write. Nil detail fields keep their stored values.
func (uc *AssetUseCase) DeclareMismatch(ctx context.Context, taskID types.TaskID, code string, details model.AssetDetails) (*model.Asset, error) {
	return uc.apply(ctx, taskID, code, types.TriggerDeclareMismatch, details.Trimmed())
}

func (uc *AssetUseCase) apply(ctx context.Context, taskID types.TaskID, code string, trigger types.CheckTrigger, details model.AssetDetails) (*model.Asset, error) {
	target, err := trigger.Target()
	if err != nil {
		return nil, goerr.Wrap(err, "invalid transition", goerr.V(AssetCodeKey, code))
	}

	var updated *model.Asset
	if trigger.OverwritesDetails() {
		updated, err = uc.repo.Asset().UpdateDetails(ctx, taskID, code, details, target)
	} else {
		updated, err = uc.repo.Asset().UpdateStatus(ctx, taskID, code, target)
	}
	if err != nil {
		return nil, uc.assetError(ctx, err, taskID, code, "failed to update asset status")
	}

	logging.From(ctx).Info("Asset checked",
		"task_id", taskID,
		"code", code,
		"trigger", trigger,
		"status", updated.Status,
	)
	return updated, nil
}

// Export returns the report of the filtered assets
func (uc *AssetUseCase) Export(ctx context.Context, taskID types.TaskID, filter model.AssetFilter) (*spreadsheet.Report, error) {
	list, err := uc.List(ctx, taskID, filter)
	if err != nil {
		return nil, err
	}

	return &spreadsheet.Report{
		Title:       list.Task.Name,
		GeneratedAt: time.Now(),
		Assets:      list.Assets,
	}, nil
}

// ExportTo renders the filtered assets to w and returns the number written
func (uc *AssetUseCase) ExportTo(ctx context.Context, w io.Writer, taskID types.TaskID, filter model.AssetFilter, format spreadsheet.Format) (int, error) {
	report, err := uc.Export(ctx, taskID, filter)
	if err != nil {
		return 0, err
	}

	if err := spreadsheet.Write(w, format, *report); err != nil {
		return 0, goerr.Wrap(err, "failed to render report",
			goerr.V(TaskIDKey, taskID), goerr.V("format", format))
	}
	return len(report.Assets), nil
}

// assetError maps a store NotFound to ErrTaskNotFound or ErrAssetNotFound
func (uc *AssetUseCase) assetError(ctx context.Context, err error, taskID types.TaskID, code, msg string) error {
	values := []goerr.Option{goerr.V(TaskIDKey, taskID), goerr.V(AssetCodeKey, code)}
	if !isNotFound(err) {
		return goerr.Wrap(err, msg, values...)
	}

	if _, taskErr := uc.repo.Task().Get(ctx, taskID); taskErr != nil && isNotFound(taskErr) {
		return goerr.Wrap(ErrTaskNotFound, msg, values...)
	}
	return goerr.Wrap(ErrAssetNotFound, msg, values...)
}
