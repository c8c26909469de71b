package firestore

import (
	"context"
	"encoding/base64"
	"errors"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/assetcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/assetcheck/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrNotFound is returned when a task or asset does not exist
var ErrNotFound = model.ErrNotFound

const (
	tasksCollection  = "tasks"
	assetsCollection = "assets"

	// Maximum concurrent aggregation queries issued by TaskRepository.List
	countConcurrency = 8
)

type Firestore struct {
	client           *firestore.Client
	collectionPrefix string
	task             *taskRepository
	asset            *assetRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(errors.Join(model.ErrStorage, err), "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	f := &Firestore{client: client}
	for _, opt := range opts {
		opt(f)
	}

	f.task = &taskRepository{fs: f}
	f.asset = &assetRepository{fs: f}
	return f, nil
}

func (f *Firestore) Task() interfaces.TaskRepository {
	return f.task
}

func (f *Firestore) Asset() interfaces.AssetRepository {
	return f.asset
}

// ClearAll deletes every task, each together with its assets
func (f *Firestore) ClearAll(ctx context.Context) error {
	iter := f.tasks().Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return translate(err, "failed to iterate tasks")
		}
		if err := f.task.deleteRef(ctx, doc.Ref); err != nil {
			return err
		}
	}
	return nil
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func (f *Firestore) tasks() *firestore.CollectionRef {
	return f.client.Collection(TasksCollection(f.collectionPrefix))
}

// TasksCollection returns the name of the task collection for a prefix
func TasksCollection(prefix string) string {
	if prefix != "" {
		return prefix + "_" + tasksCollection
	}
	return tasksCollection
}

func (f *Firestore) assets(taskRef *firestore.DocumentRef) *firestore.CollectionRef {
	return taskRef.Collection(assetsCollection)
}

// assetDocID maps a code to a valid document ID. Codes may contain '/' or
// be "." which Firestore rejects, so they are base64url encoded.
func assetDocID(code string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(code))
}

// translate maps Firestore/gRPC errors onto the domain taxonomy
func translate(err error, msg string, values ...goerr.Option) error {
	switch {
	case errors.Is(err, model.ErrNotFound),
		errors.Is(err, model.ErrConstraintViolation),
		errors.Is(err, model.ErrValidation):
		return goerr.Wrap(err, msg, values...)
	case status.Code(err) == codes.NotFound:
		return goerr.Wrap(ErrNotFound, msg, values...)
	case status.Code(err) == codes.AlreadyExists:
		return goerr.Wrap(model.ErrConstraintViolation, msg, values...)
	default:
		return goerr.Wrap(errors.Join(model.ErrStorage, err), msg, values...)
	}
}
