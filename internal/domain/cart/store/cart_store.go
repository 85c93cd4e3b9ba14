package store

import (
	"context"
	"errors"
	"time"
	"fortune_shop/internal/domain/cart/model"
	"fortune_shop/pkg/cache"
)

// CartTTL 最后一次修改后保留 7 天
const CartTTL = 7 * 24 * time.Hour

// CartStore 购物车持久化
type CartStore interface {
	Load(ctx context.Context, userID string) (*model.Cart, error)
	Save(ctx context.Context, cart *model.Cart) error
	Clear(ctx context.Context, userID string) error
}

type cacheCartStore struct {
	cache cache.CacheService
}

// NewCartStore 基于 CacheService（Redis）的实现
func NewCartStore(c cache.CacheService) CartStore {
	return &cacheCartStore{cache: c}
}

func key(userID string) string {
	return "cart:" + userID
}

// Load 不存在时返回空购物车
func (s *cacheCartStore) Load(ctx context.Context, userID string) (*model.Cart, error) {
	var cart model.Cart
	err := s.cache.Get(ctx, key(userID), &cart)
	if errors.Is(err, cache.ErrCacheMiss) {
		return &model.Cart{UserID: userID, Items: []model.CartItem{}}, nil
	}
	if err != nil {
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []model.CartItem{}
	}
	return &cart, nil
}

func (s *cacheCartStore) Save(ctx context.Context, cart *model.Cart) error {
	return s.cache.Set(ctx, key(cart.UserID), cart, CartTTL)
}

func (s *cacheCartStore) Clear(ctx context.Context, userID string) error {
	return s.cache.Delete(ctx, key(userID))
}
