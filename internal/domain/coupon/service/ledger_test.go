package service

import (
	"context"
	"testing"
	"time"
	"fortune_shop/internal/domain/coupon/model"
	"fortune_shop/pkg/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userCoupon(userID string, used bool, c *model.Coupon) *model.UserCoupon {
	uc := &model.UserCoupon{UserID: userID, CouponID: c.ID, Coupon: c, IsUsed: used}
	uc.ID = "uc-1"
	return uc
}

func TestQuote(t *testing.T) {
	ctx := context.Background()

	t.Run("percent coupon", func(t *testing.T) {
		repo := new(MockCouponRepository)
		ledger := NewLedger(repo, metrics.NewMetricsCollector())
		c := activeCoupon("c-1")
		c.DiscountType = model.DiscountPercent
		c.DiscountValue = 10
		repo.On("GetUserCoupon", ctx, "uc-1").Return(userCoupon("u-1", false, c), nil)

		d, err := ledger.Quote(ctx, "u-1", "uc-1", 54300)
		require.NoError(t, err)
		assert.Equal(t, int64(5430), d)
	})

	t.Run("other user's coupon", func(t *testing.T) {
		repo := new(MockCouponRepository)
		ledger := NewLedger(repo, metrics.NewMetricsCollector())
		repo.On("GetUserCoupon", ctx, "uc-1").Return(userCoupon("u-2", false, activeCoupon("c-1")), nil)

		_, err := ledger.Quote(ctx, "u-1", "uc-1", 54300)
		assert.ErrorIs(t, err, ErrCouponNotFound)
	})

	t.Run("used coupon", func(t *testing.T) {
		repo := new(MockCouponRepository)
		ledger := NewLedger(repo, metrics.NewMetricsCollector())
		repo.On("GetUserCoupon", ctx, "uc-1").Return(userCoupon("u-1", true, activeCoupon("c-1")), nil)

		_, err := ledger.Quote(ctx, "u-1", "uc-1", 54300)
		assert.ErrorIs(t, err, ErrCouponUnusable)
	})

	t.Run("expired coupon", func(t *testing.T) {
		repo := new(MockCouponRepository)
		ledger := NewLedger(repo, metrics.NewMetricsCollector())
		c := activeCoupon("c-1")
		past := time.Now().Add(-time.Second)
		c.ExpiresAt = &past
		repo.On("GetUserCoupon", ctx, "uc-1").Return(userCoupon("u-1", false, c), nil)

		_, err := ledger.Quote(ctx, "u-1", "uc-1", 54300)
		assert.ErrorIs(t, err, ErrCouponUnusable)
	})
}

func TestMarkUsedConcurrentUse(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCouponRepository)
	ledger := NewLedger(repo, metrics.NewMetricsCollector())

	repo.On("MarkUsed", ctx, "uc-1", "u-1").Return(false, nil)

	assert.ErrorIs(t, ledger.MarkUsed(ctx, nil, "u-1", "uc-1"), ErrCouponUnusable)
}

func TestRestoreIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCouponRepository)
	ledger := NewLedger(repo, metrics.NewMetricsCollector())

	repo.On("Restore", ctx, "uc-1").Return(true, nil).Once()
	repo.On("Restore", ctx, "uc-1").Return(false, nil).Once()

	require.NoError(t, ledger.Restore(ctx, nil, "uc-1"))
	require.NoError(t, ledger.Restore(ctx, nil, "uc-1"))
	repo.AssertExpectations(t)
}
