package service

import (
	productModel "fortune_shop/internal/domain/product/model"
)

// Quote 一次结算的价格明细
type Quote struct {
	Prices    []int64 `json:"prices"`
	Discounts []int64 `json:"discounts"`
	Total     int64   `json:"totalPrice"`
	Discount  int64   `json:"discountAmount"`
	Final     int64   `json:"finalAmount"`
}

// PriceLines 第一人按基础价，其余按追加价
func PriceLines(p *productModel.Product, persons int) []int64 {
	prices := make([]int64, persons)
	for i := range prices {
		prices[i] = p.PriceFor(i)
	}
	return prices
}

// BuildQuote 折扣只落在第一条，且不超过第一条的价格
func BuildQuote(prices []int64, discount int64) Quote {
	q := Quote{
		Prices:    prices,
		Discounts: make([]int64, len(prices)),
	}
	for _, p := range prices {
		q.Total += p
	}
	if len(prices) > 0 && discount > 0 {
		if discount > prices[0] {
			discount = prices[0]
		}
		q.Discounts[0] = discount
		q.Discount = discount
	}
	q.Final = q.Total - q.Discount
	return q
}
