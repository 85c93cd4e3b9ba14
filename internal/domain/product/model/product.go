package model

import (
	baseModel "fortune_shop/pkg/model"
)

// Product 分析报告商品，价格单位为韩元
type Product struct {
	baseModel.BaseModel
	Code            string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name            string `gorm:"type:varchar(100);not null" json:"name"`
	Description     string `gorm:"type:text" json:"description"`
	BasePrice       int64  `gorm:"not null" json:"basePrice"`
	AdditionalPrice int64  `gorm:"not null;default:0" json:"additionalPrice"` // 每增加一人
	IsActive        bool   `gorm:"not null" json:"isActive"`
}

// PriceFor 第 index 个人（从 0 开始）的价格
func (p *Product) PriceFor(index int) int64 {
	if index == 0 {
		return p.BasePrice
	}
	return p.AdditionalPrice
}
