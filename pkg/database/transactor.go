package database

import (
	"context"

	"gorm.io/gorm"
)

// Transactor 事务执行器
// 多步写操作（下单+核销优惠券、取消+恢复优惠券）必须在同一事务内完成
type Transactor interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

func (t *gormTransactor) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return t.db.WithContext(ctx).Transaction(fn)
}
