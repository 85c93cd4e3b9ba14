package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
	cartModel "fortune_shop/internal/domain/cart/model"
	"fortune_shop/internal/domain/order/model"
	"fortune_shop/internal/domain/order/repository"
	productModel "fortune_shop/internal/domain/product/model"
	productService "fortune_shop/internal/domain/product/service"
	"fortune_shop/internal/pkg/uploader"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) WithTx(tx *gorm.DB) repository.OrderRepository { return m }

func (m *MockOrderRepository) CreateBatch(ctx context.Context, orders []*model.Order) error {
	args := m.Called(ctx, orders)
	for i, o := range orders {
		o.ID = fmt.Sprintf("o-%d", i+1)
	}
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByCheckout(ctx context.Context, checkoutID string) ([]model.Order, error) {
	args := m.Called(ctx, checkoutID)
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, f repository.Filter, offset, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, f, offset, limit)
	return args.Get(0).([]model.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) Transition(ctx context.Context, id string, t model.Transition, fields map[string]interface{}) error {
	return m.Called(ctx, id, t, fields).Error(0)
}

func (m *MockOrderRepository) FindExpiredFiles(ctx context.Context, before time.Time, limit int) ([]model.Order, error) {
	args := m.Called(ctx, before, limit)
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) ClearResultFile(ctx context.Context, id, key string) (bool, error) {
	args := m.Called(ctx, id, key)
	return args.Bool(0), args.Error(1)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Quote(ctx context.Context, userID, userCouponID string, amount int64) (int64, error) {
	args := m.Called(ctx, userID, userCouponID, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedger) MarkUsed(ctx context.Context, tx *gorm.DB, userID, userCouponID string) error {
	return m.Called(ctx, userID, userCouponID).Error(0)
}

func (m *MockLedger) Restore(ctx context.Context, tx *gorm.DB, userCouponID string) error {
	return m.Called(ctx, userCouponID).Error(0)
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Put(ctx context.Context, obj uploader.Object) (*uploader.StoredObject, error) {
	args := m.Called(ctx, obj)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	_, _ = io.Copy(io.Discard, obj.Body)
	return args.Get(0).(*uploader.StoredObject), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, bucket, key string) error {
	return m.Called(ctx, bucket, key).Error(0)
}

func (m *MockStorage) PresignedURL(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, bucket, key, expiry)
	return args.String(0), args.Error(1)
}

type stubProducts struct {
	products map[string]*productModel.Product
}

func (s stubProducts) Get(ctx context.Context, id string) (*productModel.Product, error) {
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("product %s: %w", id, productService.ErrProductNotFound)
}

type stubCarts struct {
	items   map[string]*cartModel.CartItem
	removed []string
}

func (s *stubCarts) GetItem(ctx context.Context, userID, itemID string) (*cartModel.CartItem, error) {
	if it, ok := s.items[itemID]; ok {
		return it, nil
	}
	return nil, fmt.Errorf("cart item %s not found", itemID)
}

func (s *stubCarts) RemoveItem(ctx context.Context, userID, itemID string) (*cartModel.Cart, error) {
	s.removed = append(s.removed, itemID)
	return &cartModel.Cart{UserID: userID}, nil
}

type seqNumbers struct {
	next int
}

func (g *seqNumbers) Next(ctx context.Context, n int) ([]string, error) {
	nums := FormatNumbers("20240301", int64(g.next+1), n)
	g.next += n
	return nums, nil
}

type memGuard struct {
	mu   sync.Mutex
	keys map[string]bool
}

func (g *memGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.keys == nil {
		g.keys = map[string]bool{}
	}
	if g.keys[key] {
		return false, nil
	}
	g.keys[key] = true
	return true, nil
}

func (g *memGuard) Release(ctx context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.keys, key)
	return nil
}

type recordingNotifier struct {
	confirmed []string
	ready     []string
}

func (n *recordingNotifier) PaymentConfirmed(o *model.Order) { n.confirmed = append(n.confirmed, o.OrderNumber) }
func (n *recordingNotifier) ResultReady(o *model.Order)      { n.ready = append(n.ready, o.OrderNumber) }

type fakeTransactor struct{}

func (fakeTransactor) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}
