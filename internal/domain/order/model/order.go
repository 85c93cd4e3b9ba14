package model

import (
	"time"
	baseModel "fortune_shop/pkg/model"
)

// 历法
const (
	CalendarSolar = "solar"
	CalendarLunar = "lunar"
)

// Person 被分析人的出生信息
type Person struct {
	Name      string `json:"name" binding:"required,max=50"`
	Gender    string `json:"gender" binding:"required,oneof=male female"`
	BirthDate string `json:"birthDate" binding:"required,datetime=2006-01-02"`
	BirthTime string `json:"birthTime" binding:"omitempty,datetime=15:04"` // 不知道出生时间可以为空
	Calendar  string `json:"calendar" binding:"required,oneof=solar lunar"`
}

// Contact 下单人联系方式
type Contact struct {
	Name  string `json:"name" binding:"required,max=50"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone" binding:"required,max=20"`
}

// Order 一个被分析人对应一条订单，不做物理删除
type Order struct {
	baseModel.BaseModel
	OrderNumber string `gorm:"type:varchar(20);uniqueIndex;not null" json:"orderNumber"`
	CheckoutID  string `gorm:"type:uuid;index;not null" json:"checkoutId"` // 同一次结算的多条订单共享
	UserID      string `gorm:"type:uuid;index;not null" json:"userId"`
	ProductID   string `gorm:"type:uuid;not null" json:"productId"`
	ProductName string `gorm:"type:varchar(100);not null" json:"productName"`
	Option      string `gorm:"type:varchar(100)" json:"option"`
	PersonIndex int    `gorm:"not null;default:0" json:"personIndex"`

	Price          int64 `gorm:"not null" json:"price"`
	DiscountAmount int64 `gorm:"not null;default:0" json:"discountAmount"`
	FinalAmount    int64 `gorm:"not null" json:"finalAmount"`

	CustomerName  string `gorm:"type:varchar(50);not null" json:"customerName"`
	CustomerEmail string `gorm:"type:varchar(255);not null" json:"customerEmail"`
	CustomerPhone string `gorm:"type:varchar(20);not null" json:"customerPhone"`

	BirthName    string `gorm:"type:varchar(50);not null" json:"birthName"`
	Gender       string `gorm:"type:varchar(10);not null" json:"gender"`
	BirthDate    string `gorm:"type:varchar(10);not null" json:"birthDate"`
	BirthTime    string `gorm:"type:varchar(5)" json:"birthTime"`
	CalendarType string `gorm:"type:varchar(10);not null" json:"calendarType"`

	DepositorName string `gorm:"type:varchar(50)" json:"depositorName"`

	Status        Status        `gorm:"type:varchar(20);index;not null" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null" json:"paymentStatus"`
	OrderStatus   OrderStatus   `gorm:"type:varchar(20);not null" json:"orderStatus"`

	CouponID *string `gorm:"type:uuid" json:"couponId,omitempty"` // user_coupons.id

	ResultFileURL  *string    `json:"resultFileUrl,omitempty"`
	ResultFileKey  *string    `json:"-"`
	FileUploadedAt *time.Time `gorm:"index" json:"fileUploadedAt,omitempty"`

	CancelReason string     `gorm:"type:varchar(500)" json:"cancelReason,omitempty"`
	ConfirmedAt  *time.Time `json:"confirmedAt,omitempty"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	CancelledAt  *time.Time `json:"cancelledAt,omitempty"`
}

// SetStatus 同时写入派生字段
func (o *Order) SetStatus(s Status) {
	o.Status = s
	o.PaymentStatus, o.OrderStatus = s.Derive()
}

// HasResultFile 结果文件仍然可下载
func (o *Order) HasResultFile() bool {
	return o.ResultFileKey != nil && *o.ResultFileKey != ""
}

// FileExpiresAt 结果文件到期时间
func (o *Order) FileExpiresAt(retention time.Duration) *time.Time {
	if o.FileUploadedAt == nil {
		return nil
	}
	t := o.FileUploadedAt.Add(retention)
	return &t
}

// IsOwnedBy 订单是否属于该用户
func (o *Order) IsOwnedBy(userID string) bool {
	return o.UserID == userID
}
