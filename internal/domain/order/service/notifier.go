package service

import (
	"context"
	"time"
	"fortune_shop/internal/domain/order/model"
	"fortune_shop/internal/pkg/mailer"
	"fortune_shop/internal/pkg/worker"
	"fortune_shop/pkg/logger"

	"go.uber.org/zap"
)

// Notifier 订单通知，失败只记日志
type Notifier interface {
	PaymentConfirmed(order *model.Order)
	ResultReady(order *model.Order)
}

type mailNotifier struct {
	mailer    mailer.Mailer
	pool      *worker.WorkerPool
	retention time.Duration
}

// NewMailNotifier 通过 worker pool 异步发送邮件
func NewMailNotifier(m mailer.Mailer, pool *worker.WorkerPool, retention time.Duration) Notifier {
	return &mailNotifier{mailer: m, pool: pool, retention: retention}
}

func (n *mailNotifier) PaymentConfirmed(order *model.Order) {
	msg, err := mailer.PaymentConfirmed(order.CustomerEmail, n.data(order))
	n.enqueue("mail.payment_confirmed", order, msg, err)
}

func (n *mailNotifier) ResultReady(order *model.Order) {
	msg, err := mailer.ResultReady(order.CustomerEmail, n.data(order))
	n.enqueue("mail.result_ready", order, msg, err)
}

func (n *mailNotifier) data(order *model.Order) mailer.OrderMailData {
	return mailer.OrderMailData{
		CustomerName:  order.CustomerName,
		OrderNumber:   order.OrderNumber,
		HasFile:       order.HasResultFile(),
		RetentionDays: int(n.retention / (24 * time.Hour)),
	}
}

func (n *mailNotifier) enqueue(name string, order *model.Order, msg mailer.Message, err error) {
	if err != nil {
		logger.Log.Error("render mail failed", zap.String("order_number", order.OrderNumber), zap.Error(err))
		return
	}
	n.pool.AddTask(worker.Task{
		Name: name,
		Run: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			return n.mailer.Send(ctx, msg)
		},
	})
}
