package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/assetcheck/pkg/domain/model"
	"github.com/secmon-lab/assetcheck/pkg/domain/types"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/iterator"
)

type taskRepository struct {
	fs *Firestore
}

func (r *taskRepository) ref(id types.TaskID) *firestore.DocumentRef {
	return r.fs.tasks().Doc(id.String())
}

func (r *taskRepository) Create(ctx context.Context, name string, assets []*model.Asset) (*model.Task, error) {
	id := types.NewTaskID()
	doc := &taskDoc{
		ID:        id.Int64(),
		Name:      name,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	taskRef := r.ref(id)
	err := r.fs.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Create(taskRef, doc); err != nil {
			return err
		}
		return createAssets(tx, r.fs.assets(taskRef), id, assets)
	})
	if err != nil {
		return nil, translate(err, "failed to create task", goerr.V(model.TaskIDKey, id))
	}

	return fromTaskDoc(doc), nil
}

func (r *taskRepository) Get(ctx context.Context, id types.TaskID) (*model.Task, error) {
	snap, err := r.ref(id).Get(ctx)
	if err != nil {
		return nil, translate(err, "task not found", goerr.V(model.TaskIDKey, id))
	}

	var doc taskDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode task", goerr.V(model.TaskIDKey, id))
	}
	return fromTaskDoc(&doc), nil
}

func (r *taskRepository) List(ctx context.Context) ([]*model.TaskSummary, error) {
	// Needs the (created_at DESC, id DESC) composite index; see IndexConfig
	iter := r.fs.tasks().
		OrderBy("created_at", firestore.Desc).
		OrderBy("id", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var summaries []*model.TaskSummary
	var refs []*firestore.DocumentRef
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, translate(err, "failed to iterate tasks")
		}

		var doc taskDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode task", goerr.V("doc_id", snap.Ref.ID))
		}
		t := fromTaskDoc(&doc)
		summaries = append(summaries, &model.TaskSummary{ID: t.ID, Name: t.Name, CreatedAt: t.CreatedAt})
		refs = append(refs, snap.Ref)
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(countConcurrency)
	for i := range summaries {
		eg.Go(func() error {
			n, err := r.countAssets(ctx, refs[i])
			if err != nil {
				return err
			}
			summaries[i].AssetCount = n
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if summaries == nil {
		summaries = []*model.TaskSummary{}
	}
	return summaries, nil
}

func (r *taskRepository) countAssets(ctx context.Context, taskRef *firestore.DocumentRef) (int, error) {
	result, err := r.fs.assets(taskRef).NewAggregationQuery().WithCount("count").Get(ctx)
	if err != nil {
		return 0, translate(err, "failed to count assets", goerr.V("task_doc", taskRef.ID))
	}

	v, ok := result["count"].(*firestorepb.Value)
	if !ok {
		return 0, goerr.New("unexpected aggregation result", goerr.V("result", result))
	}
	return int(v.GetIntegerValue()), nil
}

func (r *taskRepository) Rename(ctx context.Context, id types.TaskID, name string) (*model.Task, error) {
	taskRef := r.ref(id)

	var doc taskDoc
	err := r.fs.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(taskRef)
		if err != nil {
			return err
		}
		if err := snap.DataTo(&doc); err != nil {
			return goerr.Wrap(err, "failed to decode task")
		}
		doc.Name = name
		return tx.Update(taskRef, []firestore.Update{{Path: "name", Value: name}})
	})
	if err != nil {
		return nil, translate(err, "failed to rename task", goerr.V(model.TaskIDKey, id))
	}
	return fromTaskDoc(&doc), nil
}

func (r *taskRepository) Delete(ctx context.Context, id types.TaskID) error {
	return r.deleteRef(ctx, r.ref(id))
}

// deleteRef removes a task document and its asset subcollection in one
// transaction. All reads happen before the first write.
func (r *taskRepository) deleteRef(ctx context.Context, taskRef *firestore.DocumentRef) error {
	err := r.fs.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(taskRef); err != nil {
			return err
		}

		assetRefs, err := tx.Documents(r.fs.assets(taskRef)).GetAll()
		if err != nil {
			return goerr.Wrap(err, "failed to read assets")
		}

		for _, snap := range assetRefs {
			if err := tx.Delete(snap.Ref); err != nil {
				return err
			}
		}
		return tx.Delete(taskRef)
	})
	if err != nil {
		return translate(err, "failed to delete task", goerr.V("task_doc", taskRef.ID))
	}
	return nil
}
