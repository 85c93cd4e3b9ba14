package service

import (
	"context"
	"time"
	"fortune_shop/internal/domain/coupon/model"
	"fortune_shop/internal/domain/coupon/repository"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type MockCouponRepository struct {
	mock.Mock
}

func (m *MockCouponRepository) WithTx(tx *gorm.DB) repository.CouponRepository { return m }

func (m *MockCouponRepository) Create(ctx context.Context, coupon *model.Coupon) error {
	args := m.Called(ctx, coupon)
	coupon.ID = "c-new"
	return args.Error(0)
}

func (m *MockCouponRepository) GetByID(ctx context.Context, id string) (*model.Coupon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Coupon), args.Error(1)
}

func (m *MockCouponRepository) List(ctx context.Context, offset, limit int) ([]model.Coupon, int64, error) {
	args := m.Called(ctx, offset, limit)
	return args.Get(0).([]model.Coupon), args.Get(1).(int64), args.Error(2)
}

func (m *MockCouponRepository) DecreaseStock(ctx context.Context, couponID string) error {
	return m.Called(ctx, couponID).Error(0)
}

func (m *MockCouponRepository) CreateUserCoupon(ctx context.Context, uc *model.UserCoupon) error {
	return m.Called(ctx, uc).Error(0)
}

func (m *MockCouponRepository) HasUserClaimed(ctx context.Context, userID, couponID string) (bool, error) {
	args := m.Called(ctx, userID, couponID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCouponRepository) GetUserCoupon(ctx context.Context, id string) (*model.UserCoupon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserCoupon), args.Error(1)
}

func (m *MockCouponRepository) ListUserCoupons(ctx context.Context, userID string, used *bool) ([]model.UserCoupon, error) {
	args := m.Called(ctx, userID, used)
	return args.Get(0).([]model.UserCoupon), args.Error(1)
}

func (m *MockCouponRepository) MarkUsed(ctx context.Context, id, userID string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCouponRepository) Restore(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockStockGate struct {
	mock.Mock
}

func (m *MockStockGate) Init(ctx context.Context, couponID string, stock int) error {
	return m.Called(ctx, couponID, stock).Error(0)
}

func (m *MockStockGate) Claim(ctx context.Context, couponID, userID string) (ClaimResult, error) {
	args := m.Called(ctx, couponID, userID)
	return args.Get(0).(ClaimResult), args.Error(1)
}

func (m *MockStockGate) Release(ctx context.Context, couponID, userID string) error {
	return m.Called(ctx, couponID, userID).Error(0)
}

// fakeTransactor 直接执行回调，tx 为 nil
type fakeTransactor struct{}

func (fakeTransactor) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}
