package repository_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/assetcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/assetcheck/pkg/repository/firestore"
	"github.com/secmon-lab/assetcheck/pkg/repository/memory"
	"github.com/secmon-lab/assetcheck/pkg/repository/rdb"
)

// runAllBackends runs fn against every backend available in this environment
func runAllBackends(t *testing.T, fn func(t *testing.T, newRepo func(t *testing.T) interfaces.Repository)) {
	t.Run("Memory", func(t *testing.T) {
		fn(t, func(t *testing.T) interfaces.Repository {
			return memory.New()
		})
	})

	t.Run("SQLite", func(t *testing.T) {
		fn(t, func(t *testing.T) interfaces.Repository {
			repo, err := rdb.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "assetcheck.db"))
			gt.NoError(t, err).Required()
			t.Cleanup(func() { _ = repo.Close() })
			return repo
		})
	})

	t.Run("Postgres", func(t *testing.T) {
		dsn := os.Getenv("TEST_POSTGRES_DSN")
		if dsn == "" {
			t.Skip("TEST_POSTGRES_DSN not set")
		}
		fn(t, func(t *testing.T) interfaces.Repository {
			repo, err := rdb.OpenPostgres(context.Background(), dsn)
			gt.NoError(t, err).Required()
			gt.NoError(t, repo.ClearAll(context.Background())).Required()
			t.Cleanup(func() { _ = repo.Close() })
			return repo
		})
	})

	t.Run("Firestore", func(t *testing.T) {
		projectID := os.Getenv("FIRESTORE_PROJECT_ID")
		if projectID == "" {
			t.Skip("FIRESTORE_PROJECT_ID not set")
		}
		databaseID := os.Getenv("FIRESTORE_DATABASE_ID")
		fn(t, func(t *testing.T) interfaces.Repository {
			prefix := fmt.Sprintf("test_%d", time.Now().UnixNano())
			repo, err := firestore.New(context.Background(), projectID, databaseID,
				firestore.WithCollectionPrefix(prefix))
			gt.NoError(t, err).Required()
			t.Cleanup(func() {
				_ = repo.ClearAll(context.Background())
				_ = repo.Close()
			})
			return repo
		})
	})
}
