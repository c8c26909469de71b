package rdb

import (
	"context"

	"gorm.io/gorm"
)

func (r *RDB) MigrateTo(ctx context.Context, target int) (int, error) {
	return r.migrateTo(ctx, target)
}

func (r *RDB) DB() *gorm.DB {
	return r.db
}
