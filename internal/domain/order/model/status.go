package model

import "errors"

// ErrInvalidTransition 当前状态不允许该操作（含重复提交）
var ErrInvalidTransition = errors.New("invalid order status transition")

// Status 订单唯一的权威状态
type Status string

const (
	StatusPending    Status = "pending"    // 待入金
	StatusConfirmed  Status = "confirmed"  // 已确认入金
	StatusProcessing Status = "processing" // 分析中
	StatusCompleted  Status = "completed"
	StatusCancelling Status = "cancelling" // 申请取消
	StatusCancelled  Status = "cancelled"
)

// PaymentStatus / OrderStatus 对外展示的两个字段，只能由 Derive 生成
type (
	PaymentStatus string
	OrderStatus   string
)

// Derive 由 Status 推导 payment_status 与 order_status
func (s Status) Derive() (PaymentStatus, OrderStatus) {
	switch s {
	case StatusProcessing:
		return PaymentStatus(StatusConfirmed), OrderStatus(StatusProcessing)
	default:
		return PaymentStatus(s), OrderStatus(s)
	}
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusCompleted, StatusCancelling, StatusCancelled:
		return true
	}
	return false
}

// Action 状态迁移动作
type Action string

const (
	ActionConfirmPayment      Action = "confirm_payment"
	ActionStartProcessing     Action = "start_processing"
	ActionUploadResult        Action = "upload_result"
	ActionCompleteWithoutFile Action = "complete_without_file"
	ActionCancel              Action = "cancel"
	ActionRequestCancel       Action = "request_cancel"
	ActionApproveCancel       Action = "approve_cancel"
)

// Transition 一条迁移规则
type Transition struct {
	From []Status
	To   Status
}

var transitions = map[Action]Transition{
	ActionConfirmPayment:      {From: []Status{StatusPending}, To: StatusConfirmed},
	ActionStartProcessing:     {From: []Status{StatusConfirmed}, To: StatusProcessing},
	ActionUploadResult:        {From: []Status{StatusProcessing}, To: StatusCompleted},
	ActionCompleteWithoutFile: {From: []Status{StatusProcessing}, To: StatusCompleted},
	ActionCancel:              {From: []Status{StatusPending, StatusConfirmed}, To: StatusCancelled},
	ActionRequestCancel:       {From: []Status{StatusPending, StatusConfirmed}, To: StatusCancelling},
	ActionApproveCancel:       {From: []Status{StatusCancelling}, To: StatusCancelled},
}

// TransitionFor 查询动作对应的迁移规则
func TransitionFor(a Action) (Transition, bool) {
	t, ok := transitions[a]
	return t, ok
}

// Next 校验当前状态下动作是否合法并返回目标状态
func Next(current Status, a Action) (Status, error) {
	t, ok := transitions[a]
	if !ok {
		return "", ErrInvalidTransition
	}
	if !t.Allows(current) {
		return "", ErrInvalidTransition
	}
	return t.To, nil
}

func (t Transition) Allows(s Status) bool {
	for _, f := range t.From {
		if f == s {
			return true
		}
	}
	return false
}

// RestoresCoupon 进入取消状态时需要归还优惠券
func (t Transition) RestoresCoupon() bool {
	return t.To == StatusCancelled
}
