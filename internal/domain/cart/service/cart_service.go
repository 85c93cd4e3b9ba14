package service

import (
	"context"
	"errors"
	"time"
	"fortune_shop/internal/domain/cart/model"
	"fortune_shop/internal/domain/cart/store"
	orderModel "fortune_shop/internal/domain/order/model"
	productModel "fortune_shop/internal/domain/product/model"
	productService "fortune_shop/internal/domain/product/service"

	"github.com/google/uuid"
)

// MaxPersonsPerItem 一次最多为几人购买
const MaxPersonsPerItem = 10

var (
	ErrItemNotFound       = errors.New("cart item not found")
	ErrProductUnavailable = errors.New("product is not available")
	ErrInvalidPersons     = errors.New("persons must contain between 1 and 10 entries")
)

// ProductGetter 由商品服务实现
type ProductGetter interface {
	Get(ctx context.Context, id string) (*productModel.Product, error)
}

// AddItemInput 加入购物车
type AddItemInput struct {
	ProductID string              `json:"productId" binding:"required,uuid"`
	Option    string              `json:"option" binding:"max=100"`
	Persons   []orderModel.Person `json:"persons" binding:"required,dive"`
}

type CartService interface {
	Get(ctx context.Context, userID string) (*model.Cart, error)
	AddItem(ctx context.Context, userID string, in AddItemInput) (*model.Cart, error)
	GetItem(ctx context.Context, userID, itemID string) (*model.CartItem, error)
	RemoveItem(ctx context.Context, userID, itemID string) (*model.Cart, error)
	Clear(ctx context.Context, userID string) error
}

// cartService 每次读取都从存储加载，每次修改都立即写回
type cartService struct {
	store    store.CartStore
	products ProductGetter
	now      func() time.Time
}

func NewCartService(s store.CartStore, products ProductGetter) CartService {
	return &cartService{store: s, products: products, now: time.Now}
}

func (s *cartService) Get(ctx context.Context, userID string) (*model.Cart, error) {
	return s.store.Load(ctx, userID)
}

func (s *cartService) AddItem(ctx context.Context, userID string, in AddItemInput) (*model.Cart, error) {
	if len(in.Persons) == 0 || len(in.Persons) > MaxPersonsPerItem {
		return nil, ErrInvalidPersons
	}
	product, err := s.products.Get(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, productService.ErrProductNotFound) {
			return nil, ErrProductUnavailable
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, ErrProductUnavailable
	}

	cart, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	cart.Items = append(cart.Items, model.CartItem{
		ID:          uuid.New().String(),
		ProductID:   product.ID,
		ProductName: product.Name,
		Option:      in.Option,
		Persons:     in.Persons,
		UnitPrice:   product.BasePrice,
		ExtraPrice:  product.AdditionalPrice,
		AddedAt:     now,
	})
	cart.UpdatedAt = now

	if err := s.store.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *cartService) GetItem(ctx context.Context, userID, itemID string) (*model.CartItem, error) {
	cart, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	item, ok := cart.Find(itemID)
	if !ok {
		return nil, ErrItemNotFound
	}
	return &item, nil
}

func (s *cartService) RemoveItem(ctx context.Context, userID, itemID string) (*model.Cart, error) {
	cart, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !cart.Remove(itemID) {
		return nil, ErrItemNotFound
	}
	cart.UpdatedAt = s.now()

	if err := s.store.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *cartService) Clear(ctx context.Context, userID string) error {
	return s.store.Clear(ctx, userID)
}
