package rdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/assetcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/assetcheck/pkg/domain/model"
	"github.com/secmon-lab/assetcheck/pkg/utils/logging"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrNotFound is returned when a task or asset does not exist
var ErrNotFound = model.ErrNotFound

// RDB stores tasks and assets in a relational database through gorm
type RDB struct {
	db    *gorm.DB
	task  *taskRepository
	asset *assetRepository
}

var _ interfaces.Repository = &RDB{}

type Option func(*config)

type config struct {
	autoMigrate bool
	logLevel    gormlogger.LogLevel
}

// WithAutoMigrate applies pending schema migrations when opening
func WithAutoMigrate(enabled bool) Option {
	return func(c *config) {
		c.autoMigrate = enabled
	}
}

// WithSQLLog logs every statement at debug level
func WithSQLLog(enabled bool) Option {
	return func(c *config) {
		if enabled {
			c.logLevel = gormlogger.Info
		}
	}
}

// OpenSQLite opens (creating if needed) a SQLite database file
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*RDB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	return New(ctx, sqlite.Open(dsn), opts...)
}

// OpenPostgres connects to a PostgreSQL database
func OpenPostgres(ctx context.Context, dsn string, opts ...Option) (*RDB, error) {
	return New(ctx, postgres.Open(dsn), opts...)
}

func New(ctx context.Context, dialector gorm.Dialector, opts ...Option) (*RDB, error) {
	cfg := &config{
		autoMigrate: true,
		logLevel:    gormlogger.Warn,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger: gormlogger.New(slogWriter{}, gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  cfg.logLevel,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, storageError(err, "failed to open database", goerr.V("dialect", dialector.Name()))
	}

	r := &RDB{
		db:    db,
		task:  &taskRepository{db: db},
		asset: &assetRepository{db: db},
	}

	if cfg.autoMigrate {
		if _, err := r.Migrate(ctx); err != nil {
			_ = r.Close()
			return nil, err
		}
	}

	return r, nil
}

func (r *RDB) Task() interfaces.TaskRepository {
	return r.task
}

func (r *RDB) Asset() interfaces.AssetRepository {
	return r.asset
}

func (r *RDB) ClearAll(ctx context.Context) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := all.Delete(&assetRow{}).Error; err != nil {
			return err
		}
		return all.Delete(&taskRow{}).Error
	})
	if err != nil {
		return storageError(err, "failed to clear all data")
	}
	return nil
}

func (r *RDB) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return goerr.Wrap(err, "failed to get database handle")
	}
	return sqlDB.Close()
}

// storageError marks err as a storage failure while keeping it in the chain
func storageError(err error, msg string, values ...goerr.Option) error {
	return goerr.Wrap(errors.Join(model.ErrStorage, err), msg, values...)
}

// translate maps gorm errors onto the domain taxonomy
func translate(err error, msg string, values ...goerr.Option) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return goerr.Wrap(ErrNotFound, msg, values...)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return goerr.Wrap(model.ErrConstraintViolation, msg, values...)
	case errors.Is(err, model.ErrNotFound),
		errors.Is(err, model.ErrConstraintViolation),
		errors.Is(err, model.ErrValidation):
		return goerr.Wrap(err, msg, values...)
	default:
		return storageError(err, msg, values...)
	}
}

type slogWriter struct{}

func (slogWriter) Printf(format string, args ...interface{}) {
	logging.Default().Debug(fmt.Sprintf(format, args...), "component", "gorm")
}
