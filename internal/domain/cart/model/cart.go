package model

import (
	"time"
	orderModel "fortune_shop/internal/domain/order/model"
)

// CartItem 购物车中的一次购买，persons 为被分析人列表
type CartItem struct {
	ID          string              `json:"id"`
	ProductID   string              `json:"productId"`
	ProductName string              `json:"productName"`
	Option      string              `json:"option,omitempty"`
	Persons     []orderModel.Person `json:"persons"`
	UnitPrice   int64               `json:"unitPrice"`       // 第一人
	ExtraPrice  int64               `json:"additionalPrice"` // 其余每人
	AddedAt     time.Time           `json:"addedAt"`
}

// Subtotal 展示用小计，结算时以数据库价格为准
func (i CartItem) Subtotal() int64 {
	if len(i.Persons) == 0 {
		return 0
	}
	return i.UnitPrice + int64(len(i.Persons)-1)*i.ExtraPrice
}

// Cart 用户购物车
type Cart struct {
	UserID    string     `json:"userId"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Total 所有条目小计之和
func (c *Cart) Total() int64 {
	var sum int64
	for _, item := range c.Items {
		sum += item.Subtotal()
	}
	return sum
}

// Find 按条目 ID 查找
func (c *Cart) Find(itemID string) (CartItem, bool) {
	for _, item := range c.Items {
		if item.ID == itemID {
			return item, true
		}
	}
	return CartItem{}, false
}

// Remove 删除条目，返回是否存在
func (c *Cart) Remove(itemID string) bool {
	for i, item := range c.Items {
		if item.ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}
