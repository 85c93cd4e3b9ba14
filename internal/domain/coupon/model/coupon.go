package model

import (
	"time"
	baseModel "fortune_shop/pkg/model"
)

// 折扣类型
const (
	DiscountFixed   = "fixed"
	DiscountPercent = "percent"
)

// Coupon 优惠券定义
type Coupon struct {
	baseModel.BaseModel
	Code          string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name          string     `gorm:"type:varchar(100);not null" json:"name"`
	DiscountType  string     `gorm:"type:varchar(10);not null" json:"discountType"`
	DiscountValue int64      `gorm:"not null" json:"discountValue"` // fixed 为韩元，percent 为百分比
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	IsActive      bool       `gorm:"not null" json:"isActive"`
	Total         int        `gorm:"not null" json:"total"`
	Stock         int        `gorm:"not null" json:"stock"` // 剩余库存
}

// DiscountFor 计算金额 amount 可抵扣的金额，不超过 amount
func (c *Coupon) DiscountFor(amount int64) int64 {
	if amount <= 0 {
		return 0
	}

	var d int64
	switch c.DiscountType {
	case DiscountFixed:
		d = c.DiscountValue
	case DiscountPercent:
		d = amount * c.DiscountValue / 100
	}
	if d < 0 {
		return 0
	}
	if d > amount {
		return amount
	}
	return d
}

// Expired 是否已过期
func (c *Coupon) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

// UserCoupon 用户持有的优惠券
type UserCoupon struct {
	baseModel.BaseModel
	UserID   string     `gorm:"type:uuid;not null;uniqueIndex:idx_user_coupon" json:"userId"`
	CouponID string     `gorm:"type:uuid;not null;uniqueIndex:idx_user_coupon" json:"couponId"`
	Coupon   *Coupon    `gorm:"foreignKey:CouponID" json:"coupon,omitempty"`
	IsUsed   bool       `gorm:"not null;default:false" json:"isUsed"`
	UsedAt   *time.Time `json:"usedAt,omitempty"`
}
