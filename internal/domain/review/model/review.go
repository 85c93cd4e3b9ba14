package model

import (
	"time"
	baseModel "fortune_shop/pkg/model"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review 订单评价，一个订单只能评价一次
type Review struct {
	baseModel.BaseModel
	OrderID     string     `gorm:"type:uuid;uniqueIndex;not null" json:"orderId"`
	UserID      string     `gorm:"type:uuid;index;not null" json:"userId"`
	ProductName string     `gorm:"size:100" json:"productName"`
	AuthorName  string     `gorm:"size:50" json:"authorName"` // 已脱敏
	Rating      int        `gorm:"not null" json:"rating"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	ImageURL    *string    `json:"imageUrl"`
	ImageKey    *string    `json:"-"`
	IsApproved  bool       `gorm:"not null;index" json:"isApproved"`
	AdminReply  *string    `gorm:"type:text" json:"adminReply"`
	RepliedAt   *time.Time `json:"repliedAt"`
}

// RatingSummary 已公开评价的统计
type RatingSummary struct {
	Count   int64   `json:"count"`
	Average float64 `json:"average"`
}
