package firestore

import (
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/assetcheck/pkg/domain/model"
	"github.com/secmon-lab/assetcheck/pkg/domain/types"
)

// taskDoc is the Firestore persistence model of model.Task
type taskDoc struct {
	ID        int64     `firestore:"id"`
	Name      string    `firestore:"name"`
	CreatedAt time.Time `firestore:"created_at"`
}

// assetDoc is the Firestore persistence model of model.Asset
type assetDoc struct {
	TaskID     int64  `firestore:"task_id"`
	Code       string `firestore:"code"`
	Name       string `firestore:"name"`
	Category   string `firestore:"category"`
	User       string `firestore:"user"`
	Department string `firestore:"department"`
	Location   string `firestore:"location"`
	StartDate  string `firestore:"start_date"`
	Status     string `firestore:"status"`
}

func fromTaskDoc(doc *taskDoc) *model.Task {
	return &model.Task{
		ID:        types.TaskID(doc.ID),
		Name:      doc.Name,
		CreatedAt: doc.CreatedAt.UTC(),
	}
}

func toAssetDoc(taskID types.TaskID, a *model.Asset) *assetDoc {
	return &assetDoc{
		TaskID:     taskID.Int64(),
		Code:       a.Code,
		Name:       a.Name,
		Category:   a.Category,
		User:       a.User,
		Department: a.Department,
		Location:   a.Location,
		StartDate:  a.StartDate,
		Status:     a.Status.Normalize().String(),
	}
}

// fromAssetDoc fails with model.ErrStorage when the stored status is not a
// known status or legacy alias. A missing status reads as UNCHECKED.
func fromAssetDoc(doc *assetDoc) (*model.Asset, error) {
	status := types.AssetStatusUnchecked
	if doc.Status != "" {
		parsed, err := types.ParseAssetStatus(doc.Status)
		if err != nil {
			return nil, goerr.Wrap(errors.Join(model.ErrStorage, err), "invalid stored asset status",
				goerr.V(model.TaskIDKey, doc.TaskID), goerr.V(model.AssetCodeKey, doc.Code), goerr.V(model.StatusKey, doc.Status))
		}
		status = parsed
	}
	return &model.Asset{
		TaskID:     types.TaskID(doc.TaskID),
		Code:       doc.Code,
		Name:       doc.Name,
		Category:   doc.Category,
		User:       doc.User,
		Department: doc.Department,
		Location:   doc.Location,
		StartDate:  doc.StartDate,
		Status:     status,
	}, nil
}
