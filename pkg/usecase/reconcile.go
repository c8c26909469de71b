package usecase

import (
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/assetcheck/pkg/domain/model"
	"github.com/secmon-lab/assetcheck/pkg/domain/types"
)

// DefaultTaskName is used when neither an explicit name nor a file name is given
const DefaultTaskName = "Untitled task"

// ReconcileResult is the outcome of turning import rows into assets
type ReconcileResult struct {
	TaskName string
	Assets   []*model.Asset
	Dropped  int
}

// Reconcile turns raw rows into UNCHECKED assets. Rows without a code or a
// name are dropped. Duplicate codes are kept so that the store rejects the
// batch instead of silently keeping one copy.
func Reconcile(rows []model.ImportRow, explicitName, sourceFileName string) (*ReconcileResult, error) {
	result := &ReconcileResult{
		TaskName: TaskNameFor(explicitName, sourceFileName),
		Assets:   make([]*model.Asset, 0, len(rows)),
	}

	for _, row := range rows {
		code := strings.TrimSpace(row.Code)
		name := strings.TrimSpace(row.Name)
		if code == "" || name == "" {
			result.Dropped++
			continue
		}

		result.Assets = append(result.Assets, &model.Asset{
			Code:       code,
			Name:       name,
			Category:   strings.TrimSpace(row.Category),
			User:       strings.TrimSpace(row.User),
			Department: strings.TrimSpace(row.Department),
			Location:   strings.TrimSpace(row.Location),
			StartDate:  strings.TrimSpace(row.StartDate),
			Status:     types.AssetStatusUnchecked,
		})
	}

	if len(result.Assets) == 0 {
		return nil, goerr.Wrap(ErrNoData, "import contains no row with both code and name",
			goerr.V("rows", len(rows)), goerr.V(FileNameKey, sourceFileName))
	}

	return result, nil
}

// TaskNameFor picks the explicit name, else the file's base name without
// extension, else DefaultTaskName.
func TaskNameFor(explicitName, sourceFileName string) string {
	if name := strings.TrimSpace(explicitName); name != "" {
		return name
	}

	// Uploaded names may carry either separator
	base := strings.TrimSpace(sourceFileName)
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	base = strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
	if base != "" {
		return base
	}

	return DefaultTaskName
}
