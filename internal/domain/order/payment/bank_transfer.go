package payment

import (
	"errors"
	"time"
	"fortune_shop/internal/domain/order/model"
	"fortune_shop/internal/pkg/config"
)

var ErrNothingToPay = errors.New("no pending order to pay")

// BankTransferStrategy 무통장입금，由管理员人工确认入金
type BankTransferStrategy struct {
	cfg config.BankConfig
}

func NewBankTransferStrategy(cfg config.BankConfig) *BankTransferStrategy {
	if cfg.DepositHours <= 0 {
		cfg.DepositHours = 72
	}
	return &BankTransferStrategy{cfg: cfg}
}

func (s *BankTransferStrategy) Method() string {
	return "bank_transfer"
}

// Instruct 只汇总仍为 pending 的订单，期限从最早一条的下单时间起算
func (s *BankTransferStrategy) Instruct(orders []model.Order) (*Instructions, error) {
	ins := &Instructions{
		Method:    s.Method(),
		BankName:  s.cfg.BankName,
		AccountNo: s.cfg.AccountNumber,
		Holder:    s.cfg.AccountHolder,
	}

	var earliest time.Time
	for _, o := range orders {
		if o.Status != model.StatusPending {
			continue
		}
		ins.Amount += o.FinalAmount
		ins.OrderNumbers = append(ins.OrderNumbers, o.OrderNumber)
		if ins.Depositor == "" {
			ins.Depositor = o.DepositorName
		}
		if earliest.IsZero() || o.CreatedAt.Before(earliest) {
			earliest = o.CreatedAt
		}
	}
	if len(ins.OrderNumbers) == 0 {
		return nil, ErrNothingToPay
	}

	ins.DueAt = earliest.Add(time.Duration(s.cfg.DepositHours) * time.Hour)
	return ins, nil
}
