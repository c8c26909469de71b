package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/assetcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/assetcheck/pkg/repository/firestore"
	"github.com/secmon-lab/assetcheck/pkg/repository/memory"
	"github.com/secmon-lab/assetcheck/pkg/repository/rdb"
	"github.com/secmon-lab/assetcheck/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Repository backends
const (
	BackendMemory    = "memory"
	BackendSQLite    = "sqlite"
	BackendPostgres  = "postgres"
	BackendFirestore = "firestore"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend          string
	sqlitePath       string
	postgresDSN      string
	projectID        string
	databaseID       string
	collectionPrefix string
	sqlLog           bool
	autoMigrate      bool
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (sqlite, postgres, firestore or memory)",
			Category:    "Repository",
			Value:       BackendSQLite,
			Sources:     cli.EnvVars("ASSETCHECK_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "sqlite-path",
			Usage:       "SQLite database file",
			Category:    "Repository",
			Value:       "assetcheck.db",
			Sources:     cli.EnvVars("ASSETCHECK_SQLITE_PATH"),
			Destination: &r.sqlitePath,
		},
		&cli.StringFlag{
			Name:        "postgres-dsn",
			Usage:       "PostgreSQL DSN (required when using postgres backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("ASSETCHECK_POSTGRES_DSN"),
			Destination: &r.postgresDSN,
		},
		&cli.BoolFlag{
			Name:        "auto-migrate",
			Usage:       "Apply pending schema migrations when opening a SQL database",
			Category:    "Repository",
			Value:       true,
			Sources:     cli.EnvVars("ASSETCHECK_AUTO_MIGRATE"),
			Destination: &r.autoMigrate,
		},
		&cli.BoolFlag{
			Name:        "sql-log",
			Usage:       "Log every SQL statement at debug level",
			Category:    "Repository",
			Sources:     cli.EnvVars("ASSETCHECK_SQL_LOG"),
			Destination: &r.sqlLog,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("ASSETCHECK_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Repository",
			Sources:     cli.EnvVars("ASSETCHECK_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix of Firestore collection names",
			Category:    "Repository",
			Sources:     cli.EnvVars("ASSETCHECK_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &r.collectionPrefix,
		},
	}
}

func (r Repository) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", r.backend),
		slog.String("sqlite_path", r.sqlitePath),
		slog.Bool("postgres_dsn_set", r.postgresDSN != ""),
		slog.String("firestore_project_id", r.projectID),
		slog.String("firestore_database_id", r.databaseID),
	)
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// ProjectID returns the Firestore project ID
func (r *Repository) ProjectID() string {
	return r.projectID
}

// DatabaseID returns the Firestore database ID
func (r *Repository) DatabaseID() string {
	return r.databaseID
}

// CollectionPrefix returns the Firestore collection prefix
func (r *Repository) CollectionPrefix() string {
	return r.collectionPrefix
}

// DisableAutoMigrate keeps ConfigureRDB from applying migrations on open
func (r *Repository) DisableAutoMigrate() {
	r.autoMigrate = false
}

// Configure initializes and returns a repository based on the configured backend.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case BackendSQLite, BackendPostgres:
		return r.ConfigureRDB(ctx)

	case BackendFirestore:
		if r.projectID == "" {
			return nil, goerr.Wrap(ErrInvalidConfig, "firestore-project-id is required when using firestore backend")
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID,
			firestore.WithCollectionPrefix(r.collectionPrefix))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	case BackendMemory:
		logging.Default().Info("Using in-memory repository (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.Wrap(ErrInvalidConfig, "invalid repository backend", goerr.V(BackendKey, r.backend))
	}
}

// ConfigureRDB opens the SQL backend. It fails for non-SQL backends.
func (r *Repository) ConfigureRDB(ctx context.Context) (*rdb.RDB, error) {
	opts := []rdb.Option{
		rdb.WithAutoMigrate(r.autoMigrate),
		rdb.WithSQLLog(r.sqlLog),
	}

	switch r.backend {
	case BackendSQLite:
		if r.sqlitePath == "" {
			return nil, goerr.Wrap(ErrInvalidConfig, "sqlite-path is required when using sqlite backend")
		}
		repo, err := rdb.OpenSQLite(ctx, r.sqlitePath, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize sqlite repository")
		}
		logging.Default().Info("Using SQLite repository", "path", r.sqlitePath)
		return repo, nil

	case BackendPostgres:
		if r.postgresDSN == "" {
			return nil, goerr.Wrap(ErrInvalidConfig, "postgres-dsn is required when using postgres backend")
		}
		repo, err := rdb.OpenPostgres(ctx, r.postgresDSN, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize postgres repository")
		}
		logging.Default().Info("Using PostgreSQL repository")
		return repo, nil

	default:
		return nil, goerr.Wrap(ErrInvalidConfig, "backend is not a SQL database", goerr.V(BackendKey, r.backend))
	}
}
