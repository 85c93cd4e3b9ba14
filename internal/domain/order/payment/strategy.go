package payment

import (
	"time"
	"fortune_shop/internal/domain/order/model"
)

// Instructions 返回给买家的付款说明
type Instructions struct {
	Method       string    `json:"method"`
	BankName     string    `json:"bankName"`
	AccountNo    string    `json:"accountNumber"`
	Holder       string    `json:"accountHolder"`
	Amount       int64     `json:"amount"`
	Depositor    string    `json:"depositorName"`
	OrderNumbers []string  `json:"orderNumbers"`
	DueAt        time.Time `json:"dueAt"`
}

// PaymentStrategy 付款方式，目前只有无卡转账
type PaymentStrategy interface {
	Method() string
	// Instruct 为同一次结算中待付款的订单生成付款说明
	Instruct(orders []model.Order) (*Instructions, error)
}
