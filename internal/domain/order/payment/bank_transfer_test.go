package payment

import (
	"testing"
	"time"
	"fortune_shop/internal/domain/order/model"
	"fortune_shop/internal/pkg/config"
	baseModel "fortune_shop/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func order(number string, status model.Status, final int64, created time.Time) model.Order {
	o := model.Order{
		BaseModel:     baseModel.BaseModel{CreatedAt: created},
		OrderNumber:   number,
		FinalAmount:   final,
		DepositorName: "홍길동",
	}
	o.SetStatus(status)
	return o
}

func TestInstructSumsPendingOrders(t *testing.T) {
	created := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	s := NewBankTransferStrategy(config.BankConfig{BankName: "국민은행", AccountNumber: "123-45-6789", AccountHolder: "포춘", DepositHours: 24})

	ins, err := s.Instruct([]model.Order{
		order("20261019-0001", model.StatusPending, 24800, created),
		order("20261019-0002", model.StatusPending, 24500, created.Add(time.Second)),
		order("20261019-0003", model.StatusCancelled, 24500, created),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(49300), ins.Amount)
	assert.Equal(t, []string{"20261019-0001", "20261019-0002"}, ins.OrderNumbers)
	assert.Equal(t, "홍길동", ins.Depositor)
	assert.Equal(t, created.Add(24*time.Hour), ins.DueAt)
	assert.Equal(t, "bank_transfer", ins.Method)
}

func TestInstructNothingPending(t *testing.T) {
	s := NewBankTransferStrategy(config.BankConfig{})

	_, err := s.Instruct([]model.Order{order("20261019-0001", model.StatusConfirmed, 1000, time.Now())})

	assert.ErrorIs(t, err, ErrNothingToPay)
}
