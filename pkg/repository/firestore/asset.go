package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/assetcheck/pkg/domain/model"
	"github.com/secmon-lab/assetcheck/pkg/domain/types"
	"google.golang.org/api/iterator"
)

type assetRepository struct {
	fs *Firestore
}

// createAssets validates the batch and queues one Create per asset on tx.
// Create fails with AlreadyExists at commit for codes already stored.
func createAssets(tx *firestore.Transaction, col *firestore.CollectionRef, taskID types.TaskID, assets []*model.Asset) error {
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

		if err := tx.Create(col.Doc(assetDocID(a.Code)), toAssetDoc(taskID, normalized)); err != nil {
			return err
		}
	}
	return nil
}

func (r *assetRepository) taskRef(taskID types.TaskID) *firestore.DocumentRef {
	return r.fs.task.ref(taskID)
}

func (r *assetRepository) InsertBatch(ctx context.Context, taskID types.TaskID, assets []*model.Asset) error {
	taskRef := r.taskRef(taskID)
	err := r.fs.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(taskRef); err != nil {
			return err
		}
		return createAssets(tx, r.fs.assets(taskRef), taskID, assets)
	})
	if err != nil {
		return translate(err, "failed to insert assets", goerr.V(model.TaskIDKey, taskID))
	}
	return nil
}

func (r *assetRepository) FindByCode(ctx context.Context, taskID types.TaskID, code string) (*model.Asset, error) {
	snap, err := r.fs.assets(r.taskRef(taskID)).Doc(assetDocID(code)).Get(ctx)
	if err != nil {
		return nil, translate(err, "asset not found",
			goerr.V(model.TaskIDKey, taskID), goerr.V(model.AssetCodeKey, code))
	}

	var doc assetDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode asset", goerr.V(model.AssetCodeKey, code))
	}
	return fromAssetDoc(&doc)
}

func (r *assetRepository) ListByTask(ctx context.Context, taskID types.TaskID) ([]*model.Asset, error) {
	taskRef := r.taskRef(taskID)
	if _, err := taskRef.Get(ctx); err != nil {
		return nil, translate(err, "task not found", goerr.V(model.TaskIDKey, taskID))
	}

	iter := r.fs.assets(taskRef).Documents(ctx)
	defer iter.Stop()

	assets := []*model.Asset{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, translate(err, "failed to iterate assets", goerr.V(model.TaskIDKey, taskID))
		}

		var doc assetDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode asset", goerr.V("doc_id", snap.Ref.ID))
		}
		asset, err := fromAssetDoc(&doc)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, nil
}

func (r *assetRepository) UpdateStatus(ctx context.Context, taskID types.TaskID, code string, status types.AssetStatus) (*model.Asset, error) {
	return r.update(ctx, taskID, code, model.AssetDetails{}, status)
}

func (r *assetRepository) UpdateDetails(ctx context.Context, taskID types.TaskID, code string, details model.AssetDetails, status types.AssetStatus) (*model.Asset, error) {
	return r.update(ctx, taskID, code, details, status)
}

func (r *assetRepository) update(ctx context.Context, taskID types.TaskID, code string, details model.AssetDetails, status types.AssetStatus) (*model.Asset, error) {
	if !status.IsValid() {
		return nil, goerr.Wrap(model.ErrValidation, "invalid asset status",
			goerr.V(model.AssetCodeKey, code), goerr.V(model.StatusKey, status))
	}

	assetRef := r.fs.assets(r.taskRef(taskID)).Doc(assetDocID(code))

	var updated *model.Asset
	err := r.fs.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(assetRef)
		if err != nil {
			return err
		}

		var doc assetDoc
		if err := snap.DataTo(&doc); err != nil {
			return goerr.Wrap(err, "failed to decode asset")
		}

		// the stored status is replaced, so a bad one does not block the update
		doc.Status = status.String()
		asset, err := fromAssetDoc(&doc)
		if err != nil {
			return err
		}
		details.ApplyTo(asset)
		updated = asset

		return tx.Set(assetRef, toAssetDoc(taskID, asset))
	})
	if err != nil {
		return nil, translate(err, "failed to update asset",
			goerr.V(model.TaskIDKey, taskID), goerr.V(model.AssetCodeKey, code))
	}
	return updated, nil
}
