package service

import (
	"context"
	"testing"
	"fortune_shop/internal/domain/product/model"
	"fortune_shop/pkg/cache"
	baseModel "fortune_shop/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *model.Product) error {
	args := m.Called(ctx, product)
	product.ID = "p-new"
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) ListActive(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) ListAll(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product *model.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func TestListActiveUsesCacheUntilWrite(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	svc := NewProductService(repo, cache.NewMemoryCache())

	products := []model.Product{{BaseModel: baseModel.BaseModel{ID: "p-1"}, Name: "신년운세", BasePrice: 29800, AdditionalPrice: 24500, IsActive: true}}
	repo.On("ListActive", ctx).Return(products, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*model.Product")).Return(nil)

	_, err := svc.ListActive(ctx)
	require.NoError(t, err)
	got, err := svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "신년운세", got[0].Name)
	repo.AssertNumberOfCalls(t, "ListActive", 1)

	_, err = svc.Create(ctx, ProductInput{Code: "saju", Name: "사주", BasePrice: 39000})
	require.NoError(t, err)

	_, err = svc.ListActive(ctx)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "ListActive", 2)
}

func TestCreateRejectsInvalidPrice(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewProductService(repo, cache.NewMemoryCache())

	_, err := svc.Create(context.Background(), ProductInput{Code: "x", Name: "x", BasePrice: 0})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = svc.Create(context.Background(), ProductInput{Code: "x", Name: "x", BasePrice: 100, AdditionalPrice: -1})
	assert.ErrorIs(t, err, ErrInvalidPrice)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetNotFound(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	svc := NewProductService(repo, cache.NewMemoryCache())

	repo.On("GetByID", ctx, "missing").Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestPriceFor(t *testing.T) {
	p := model.Product{BasePrice: 29800, AdditionalPrice: 24500}
	assert.Equal(t, int64(29800), p.PriceFor(0))
	assert.Equal(t, int64(24500), p.PriceFor(1))
	assert.Equal(t, int64(24500), p.PriceFor(3))
}
