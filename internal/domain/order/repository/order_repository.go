package repository

import (
	"context"
	"time"
	"fortune_shop/internal/domain/order/model"

	"gorm.io/gorm"
)

// Filter 管理端查询条件
type Filter struct {
	Status      model.Status
	OrderNumber string
	UserID      string
}

type OrderRepository interface {
	// WithTx 返回绑定到事务的仓库
	WithTx(tx *gorm.DB) OrderRepository

	CreateBatch(ctx context.Context, orders []*model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	ListByCheckout(ctx context.Context, checkoutID string) ([]model.Order, error)
	List(ctx context.Context, f Filter, offset, limit int) ([]model.Order, int64, error)
	// Transition 条件更新：只有当前状态在 t.From 中才会写入，否则返回 ErrInvalidTransition
	Transition(ctx context.Context, id string, t model.Transition, fields map[string]interface{}) error
	FindExpiredFiles(ctx context.Context, before time.Time, limit int) ([]model.Order, error)
	// ClearResultFile 仅在文件未被替换时清空
	ClearResultFile(ctx context.Context, id, key string) (bool, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) WithTx(tx *gorm.DB) OrderRepository {
	if tx == nil {
		return r
	}
	return &orderRepository{db: tx}
}

func (r *orderRepository) CreateBatch(ctx context.Context, orders []*model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&orders).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListByCheckout(ctx context.Context, checkoutID string) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Where("checkout_id = ?", checkoutID).
		Order("person_index ASC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) List(ctx context.Context, f Filter, offset, limit int) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Order{})
	if f.Status != "" {
		db = db.Where("status = ?", string(f.Status))
	}
	if f.OrderNumber != "" {
		db = db.Where("order_number = ?", f.OrderNumber)
	}
	if f.UserID != "" {
		db = db.Where("user_id = ?", f.UserID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepository) Transition(ctx context.Context, id string, t model.Transition, fields map[string]interface{}) error {
	payment, order := t.To.Derive()
	updates := map[string]interface{}{
		"status":         string(t.To),
		"payment_status": string(payment),
		"order_status":   string(order),
	}
	for k, v := range fields {
		updates[k] = v
	}

	from := make([]string, len(t.From))
	for i, s := range t.From {
		from[i] = string(s)
	}

	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrInvalidTransition
	}
	return nil
}

func (r *orderRepository) FindExpiredFiles(ctx context.Context, before time.Time, limit int) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Where("file_uploaded_at IS NOT NULL AND file_uploaded_at < ?", before).
		Order("file_uploaded_at ASC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) ClearResultFile(ctx context.Context, id, key string) (bool, error) {
	db := r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id)
	if key != "" {
		db = db.Where("result_file_key = ?", key)
	}
	result := db.Updates(map[string]interface{}{
		"result_file_url":  nil,
		"result_file_key":  nil,
		"file_uploaded_at": nil,
	})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
