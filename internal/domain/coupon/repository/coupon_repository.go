package repository

import (
	"context"
	"errors"
	"time"
	"fortune_shop/internal/domain/coupon/model"

	"gorm.io/gorm"
)

var ErrInsufficientStock = errors.New("insufficient stock")

type CouponRepository interface {
	// WithTx 返回绑定到事务的仓库
	WithTx(tx *gorm.DB) CouponRepository

	Create(ctx context.Context, coupon *model.Coupon) error
	GetByID(ctx context.Context, id string) (*model.Coupon, error)
	List(ctx context.Context, offset, limit int) ([]model.Coupon, int64, error)
	DecreaseStock(ctx context.Context, couponID string) error
	CreateUserCoupon(ctx context.Context, userCoupon *model.UserCoupon) error
	HasUserClaimed(ctx context.Context, userID, couponID string) (bool, error)

	GetUserCoupon(ctx context.Context, id string) (*model.UserCoupon, error)
	ListUserCoupons(ctx context.Context, userID string, used *bool) ([]model.UserCoupon, error)
	MarkUsed(ctx context.Context, id, userID string, at time.Time) (bool, error)
	Restore(ctx context.Context, id string) (bool, error)
}

type couponRepository struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) CouponRepository {
	return &couponRepository{db: db}
}

func (r *couponRepository) WithTx(tx *gorm.DB) CouponRepository {
	if tx == nil {
		return r
	}
	return &couponRepository{db: tx}
}

func (r *couponRepository) Create(ctx context.Context, coupon *model.Coupon) error {
	return r.db.WithContext(ctx).Create(coupon).Error
}

func (r *couponRepository) GetByID(ctx context.Context, id string) (*model.Coupon, error) {
	var coupon model.Coupon
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&coupon).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *couponRepository) List(ctx context.Context, offset, limit int) ([]model.Coupon, int64, error) {
	var coupons []model.Coupon
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Coupon{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&coupons).Error; err != nil {
		return nil, 0, err
	}
	return coupons, total, nil
}

// DecreaseStock 乐观锁扣减库存
func (r *couponRepository) DecreaseStock(ctx context.Context, couponID string) error {
	result := r.db.WithContext(ctx).Model(&model.Coupon{}).
		Where("id = ? AND stock > 0", couponID).
		UpdateColumn("stock", gorm.Expr("stock - 1"))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (r *couponRepository) CreateUserCoupon(ctx context.Context, userCoupon *model.UserCoupon) error {
	return r.db.WithContext(ctx).Create(userCoupon).Error
}

func (r *couponRepository) HasUserClaimed(ctx context.Context, userID, couponID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.UserCoupon{}).
		Where("user_id = ? AND coupon_id = ?", userID, couponID).
		Count(&count).Error
	return count > 0, err
}

func (r *couponRepository) GetUserCoupon(ctx context.Context, id string) (*model.UserCoupon, error) {
	var uc model.UserCoupon
	if err := r.db.WithContext(ctx).Preload("Coupon").Where("id = ?", id).First(&uc).Error; err != nil {
		return nil, err
	}
	return &uc, nil
}

func (r *couponRepository) ListUserCoupons(ctx context.Context, userID string, used *bool) ([]model.UserCoupon, error) {
	var list []model.UserCoupon
	db := r.db.WithContext(ctx).Preload("Coupon").Where("user_id = ?", userID)
	if used != nil {
		db = db.Where("is_used = ?", *used)
	}
	err := db.Order("created_at DESC").Find(&list).Error
	return list, err
}

// MarkUsed 只翻转未使用的记录，返回是否命中
func (r *couponRepository) MarkUsed(ctx context.Context, id, userID string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.UserCoupon{}).
		Where("id = ? AND user_id = ? AND is_used = ?", id, userID, false).
		Updates(map[string]interface{}{"is_used": true, "used_at": at})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Restore 只翻转已使用的记录
func (r *couponRepository) Restore(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.UserCoupon{}).
		Where("id = ? AND is_used = ?", id, true).
		Updates(map[string]interface{}{"is_used": false, "used_at": nil})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
