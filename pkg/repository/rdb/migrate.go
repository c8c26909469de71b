package rdb

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/assetcheck/pkg/utils/logging"
	"gorm.io/gorm"
)

type schemaVersion struct {
	Version   int    `gorm:"column:version;primaryKey;autoIncrement:false"`
	Name      string `gorm:"column:name;not null"`
	AppliedAt int64  `gorm:"column:applied_at;not null"`
}

func (schemaVersion) TableName() string { return "schema_versions" }

type migration struct {
	version int
	name    string
	up      func(tx *gorm.DB) error
}

// Snapshots of the first schema. Later versions only add to it.
type taskRowV1 struct {
	ID        int64  `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name      string `gorm:"column:name;type:text;not null"`
	CreatedAt int64  `gorm:"column:created_at;not null;index:idx_tasks_created_at"`
}

func (taskRowV1) TableName() string { return "tasks" }

type assetRowV1 struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	TaskID     int64     `gorm:"column:task_id;not null;uniqueIndex:idx_assets_task_code,priority:1"`
	Task       taskRowV1 `gorm:"foreignKey:TaskID;references:ID;constraint:OnDelete:CASCADE"`
	Code       string    `gorm:"column:code;type:varchar(255);not null;uniqueIndex:idx_assets_task_code,priority:2"`
	Name       string    `gorm:"column:name;type:text;not null"`
	User       string    `gorm:"column:user;type:text"`
	Department string    `gorm:"column:department;type:text"`
	Location   string    `gorm:"column:location;type:text"`
	StartDate  string    `gorm:"column:start_date;type:text"`
	Status     string    `gorm:"column:status;type:varchar(32);not null;default:UNCHECKED"`
}

func (assetRowV1) TableName() string { return "assets" }

var migrations = []migration{
	{
		version: 1,
		name:    "create tasks and assets",
		up: func(tx *gorm.DB) error {
			return tx.Migrator().CreateTable(&taskRowV1{}, &assetRowV1{})
		},
	},
	{
		version: 2,
		name:    "add assets.category",
		up: func(tx *gorm.DB) error {
			if tx.Migrator().HasColumn(&assetRow{}, "Category") {
				return nil
			}
			return tx.Migrator().AddColumn(&assetRow{}, "Category")
		},
	},
	{
		version: 3,
		name:    "normalize legacy status names",
		up: func(tx *gorm.DB) error {
			legacy := map[string]string{
				"MISMATCHED": "MISMATCH",
				"REPRINT":    "LABEL_REPRINT",
			}
			for from, to := range legacy {
				if err := tx.Model(&assetRow{}).Where("status = ?", from).Update("status", to).Error; err != nil {
					return err
				}
			}
			return nil
		},
	},
}

// Migrate applies pending migrations in order and returns how many ran.
// Migrations only add; existing data is never dropped.
func (r *RDB) Migrate(ctx context.Context) (int, error) {
	return r.migrateTo(ctx, LatestSchemaVersion())
}

func (r *RDB) migrateTo(ctx context.Context, target int) (int, error) {
	db := r.db.WithContext(ctx)
	if err := db.AutoMigrate(&schemaVersion{}); err != nil {
		return 0, storageError(err, "failed to prepare schema_versions")
	}

	var current int
	if err := db.Model(&schemaVersion{}).Select("COALESCE(MAX(version), 0)").Scan(&current).Error; err != nil {
		return 0, storageError(err, "failed to read schema version")
	}

	applied := 0
	for _, m := range migrations {
		if m.version <= current || m.version > target {
			continue
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.up(tx); err != nil {
				return err
			}
			return tx.Create(&schemaVersion{
				Version:   m.version,
				Name:      m.name,
				AppliedAt: time.Now().UnixMilli(),
			}).Error
		})
		if err != nil {
			return applied, storageError(err, "failed to apply migration",
				goerr.V("version", m.version), goerr.V("name", m.name))
		}

		logging.From(ctx).Info("Applied schema migration", "version", m.version, "name", m.name)
		applied++
	}

	return applied, nil
}

// LatestSchemaVersion is the version Migrate brings a database to
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the latest applied migration version, 0 for an empty database
func (r *RDB) SchemaVersion(ctx context.Context) (int, error) {
	db := r.db.WithContext(ctx)
	if !db.Migrator().HasTable(&schemaVersion{}) {
		return 0, nil
	}

	var current int
	if err := db.Model(&schemaVersion{}).Select("COALESCE(MAX(version), 0)").Scan(&current).Error; err != nil {
		return 0, storageError(err, "failed to read schema version")
	}
	return current, nil
}
