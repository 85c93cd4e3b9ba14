package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"fortune_shop/internal/domain/product/model"
	"fortune_shop/internal/domain/product/repository"
	"fortune_shop/pkg/cache"
	"fortune_shop/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidPrice    = errors.New("prices must not be negative and base price must be positive")
)

const (
	activeProductsKey = "product:active"
	productKeyPrefix  = "product:"
	ProductCacheTTL   = 10 * time.Minute
)

// ProductInput 创建/更新商品参数
type ProductInput struct {
	Code            string `json:"code" binding:"required"`
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description"`
	BasePrice       int64  `json:"basePrice" binding:"required"`
	AdditionalPrice int64  `json:"additionalPrice"`
	IsActive        *bool  `json:"isActive"`
}

func (in ProductInput) validate() error {
	if in.BasePrice <= 0 || in.AdditionalPrice < 0 {
		return ErrInvalidPrice
	}
	return nil
}

type ProductService interface {
	Create(ctx context.Context, in ProductInput) (*model.Product, error)
	Update(ctx context.Context, id string, in ProductInput) (*model.Product, error)
	Get(ctx context.Context, id string) (*model.Product, error)
	ListActive(ctx context.Context) ([]model.Product, error)
	ListAll(ctx context.Context) ([]model.Product, error)
}

// productService 商品列表读多写少，走 cache-aside
type productService struct {
	repo  repository.ProductRepository
	cache cache.CacheService
}

func NewProductService(repo repository.ProductRepository, cache cache.CacheService) ProductService {
	return &productService{repo: repo, cache: cache}
}

func (s *productService) Create(ctx context.Context, in ProductInput) (*model.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	product := &model.Product{
		Code:            in.Code,
		Name:            in.Name,
		Description:     in.Description,
		BasePrice:       in.BasePrice,
		AdditionalPrice: in.AdditionalPrice,
		IsActive:        in.IsActive == nil || *in.IsActive,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.invalidate(ctx, product.ID)
	return product, nil
}

func (s *productService) Update(ctx context.Context, id string, in ProductInput) (*model.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	product.Code = in.Code
	product.Name = in.Name
	product.Description = in.Description
	product.BasePrice = in.BasePrice
	product.AdditionalPrice = in.AdditionalPrice
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.invalidate(ctx, product.ID)
	return product, nil
}

// Get 下单时也经过这里，价格以数据库为准，所以单个商品缓存很短
func (s *productService) Get(ctx context.Context, id string) (*model.Product, error) {
	key := productKeyPrefix + id
	var cached model.Product
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if err := s.cache.Set(ctx, key, product, ProductCacheTTL); err != nil {
		logger.Log.Warn("write product cache failed", zap.String("key", key), zap.Error(err))
	}
	return product, nil
}

func (s *productService) ListActive(ctx context.Context) ([]model.Product, error) {
	var cached []model.Product
	err := s.cache.Get(ctx, activeProductsKey, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		logger.Log.Warn("read product cache failed", zap.Error(err))
	}

	products, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, activeProductsKey, products, ProductCacheTTL); err != nil {
		logger.Log.Warn("write product cache failed", zap.Error(err))
	}
	return products, nil
}

func (s *productService) ListAll(ctx context.Context) ([]model.Product, error) {
	return s.repo.ListAll(ctx)
}

func (s *productService) invalidate(ctx context.Context, id string) {
	for _, key := range []string{activeProductsKey, productKeyPrefix + id} {
		if err := s.cache.Delete(ctx, key); err != nil {
			logger.Log.Warn("invalidate product cache failed", zap.String("key", key), zap.Error(err))
		}
	}
}
