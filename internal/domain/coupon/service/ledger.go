package service

import (
	"context"
	"errors"
	"time"
	"fortune_shop/internal/domain/coupon/repository"
	"fortune_shop/pkg/logger"
	"fortune_shop/pkg/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Ledger 下单与取消时使用，tx 为 nil 时不走事务
type Ledger interface {
	// Quote 校验用户券可用并返回 amount 上可抵扣的金额
	Quote(ctx context.Context, userID, userCouponID string, amount int64) (int64, error)
	MarkUsed(ctx context.Context, tx *gorm.DB, userID, userCouponID string) error
	Restore(ctx context.Context, tx *gorm.DB, userCouponID string) error
}

type couponLedger struct {
	repo    repository.CouponRepository
	metrics *metrics.MetricsCollector
	now     func() time.Time
}

func NewLedger(repo repository.CouponRepository, collector *metrics.MetricsCollector) Ledger {
	return &couponLedger{repo: repo, metrics: collector, now: time.Now}
}

func (l *couponLedger) Quote(ctx context.Context, userID, userCouponID string, amount int64) (int64, error) {
	uc, err := l.repo.GetUserCoupon(ctx, userCouponID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrCouponNotFound
		}
		return 0, err
	}
	if uc.UserID != userID {
		return 0, ErrCouponNotFound
	}
	if uc.IsUsed || uc.Coupon == nil || !uc.Coupon.IsActive || uc.Coupon.Expired(l.now()) {
		return 0, ErrCouponUnusable
	}
	return uc.Coupon.DiscountFor(amount), nil
}

// MarkUsed 未命中说明已被并发使用，调用方应回滚
func (l *couponLedger) MarkUsed(ctx context.Context, tx *gorm.DB, userID, userCouponID string) error {
	ok, err := l.repo.WithTx(tx).MarkUsed(ctx, userCouponID, userID, l.now())
	if err != nil {
		return err
	}
	if !ok {
		return ErrCouponUnusable
	}
	l.metrics.RecordCouponEvent("used")
	return nil
}

// Restore 已经是未使用状态时只记录日志，不阻断取消
func (l *couponLedger) Restore(ctx context.Context, tx *gorm.DB, userCouponID string) error {
	ok, err := l.repo.WithTx(tx).Restore(ctx, userCouponID)
	if err != nil {
		return err
	}
	if !ok {
		logger.Log.Warn("coupon was not in used state, nothing restored", zap.String("user_coupon_id", userCouponID))
		return nil
	}
	l.metrics.RecordCouponEvent("restored")
	return nil
}
