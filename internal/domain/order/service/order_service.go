package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
	cartModel "fortune_shop/internal/domain/cart/model"
	couponService "fortune_shop/internal/domain/coupon/service"
	"fortune_shop/internal/domain/order/model"
	"fortune_shop/internal/domain/order/payment"
	"fortune_shop/internal/domain/order/repository"
	productModel "fortune_shop/internal/domain/product/model"
	productService "fortune_shop/internal/domain/product/service"
	"fortune_shop/internal/pkg/uploader"
	"fortune_shop/pkg/database"
	"fortune_shop/pkg/logger"
	"fortune_shop/pkg/metrics"
	"fortune_shop/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	MaxPersons      = 10
	downloadURLTTL  = 10 * time.Minute
	submitGuardTTL  = 10 * time.Minute
	resultKeyPrefix = "results"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidTransition  = model.ErrInvalidTransition
	ErrProductUnavailable = errors.New("product is not available")
	ErrInvalidPersons     = errors.New("persons must contain between 1 and 10 entries")
	ErrNoResultFile       = errors.New("order has no result file")
	ErrResultFileExpired  = errors.New("result file has expired")
	ErrDuplicateCheckout  = errors.New("checkout already submitted")
	ErrStorage            = errors.New("object storage unavailable")
)

// ProductGetter 由商品服务实现
type ProductGetter interface {
	Get(ctx context.Context, id string) (*productModel.Product, error)
}

// CartAccessor 由购物车服务实现
type CartAccessor interface {
	GetItem(ctx context.Context, userID, itemID string) (*cartModel.CartItem, error)
	RemoveItem(ctx context.Context, userID, itemID string) (*cartModel.Cart, error)
}

// CheckoutInput 结算参数；带 cartItemId 时商品与被分析人取自购物车
type CheckoutInput struct {
	CartItemID    string         `json:"cartItemId"`
	ProductID     string         `json:"productId" binding:"omitempty,uuid"`
	Option        string         `json:"option" binding:"max=100"`
	Persons       []model.Person `json:"persons" binding:"omitempty,dive"`
	Contact       model.Contact  `json:"contact" binding:"required"`
	DepositorName string         `json:"depositorName" binding:"required,max=50"`
	UserCouponID  string         `json:"userCouponId" binding:"omitempty,uuid"`
	SubmitKey     string         `json:"-"` // Idempotency-Key 请求头
}

// CheckoutResult 结算结果
type CheckoutResult struct {
	CheckoutID string                `json:"checkoutId"`
	Orders     []*model.Order        `json:"orders"`
	Quote      Quote                 `json:"quote"`
	Payment    *payment.Instructions `json:"payment"`
}

// ResultFile 已通过校验的结果文件
type ResultFile struct {
	Body        io.Reader
	Size        int64
	ContentType string
	Filename    string
}

type OrderService interface {
	Checkout(ctx context.Context, userID string, in CheckoutInput) (*CheckoutResult, error)
	ListMine(ctx context.Context, userID string, p *utils.Pagination) ([]model.Order, int64, error)
	GetMine(ctx context.Context, userID, id string) (*model.Order, error)
	Cancel(ctx context.Context, userID, id, reason string) (*model.Order, error)
	RequestCancel(ctx context.Context, userID, id, reason string) (*model.Order, error)
	PaymentInstructions(ctx context.Context, userID, id string) (*payment.Instructions, error)
	ResultDownloadURL(ctx context.Context, userID, id string, asAdmin bool) (string, error)

	AdminList(ctx context.Context, f repository.Filter, p *utils.Pagination) ([]model.Order, int64, error)
	AdminGet(ctx context.Context, id string) (*model.Order, error)
	ConfirmPayment(ctx context.Context, id string) (*model.Order, error)
	StartProcessing(ctx context.Context, id string) (*model.Order, error)
	UploadResult(ctx context.Context, id string, file ResultFile) (*model.Order, error)
	CompleteWithoutFile(ctx context.Context, id string) (*model.Order, error)
	ApproveCancel(ctx context.Context, id string) (*model.Order, error)
}

// Deps 订单服务依赖
type Deps struct {
	Repo       repository.OrderRepository
	Products   ProductGetter
	Carts      CartAccessor
	Ledger     couponService.Ledger
	Numbers    NumberGenerator
	Guard      SubmitGuard
	Transactor database.Transactor
	Storage    uploader.ObjectStorage
	Bucket     string
	Retention  time.Duration
	Payment    payment.PaymentStrategy
	Notifier   Notifier
	Metrics    *metrics.MetricsCollector
}

type orderService struct {
	Deps
	now func() time.Time
}

func NewOrderService(d Deps) OrderService {
	return &orderService{Deps: d, now: time.Now}
}

// Checkout 每个被分析人一条订单，所有插入与优惠券核销在同一事务
func (s *orderService) Checkout(ctx context.Context, userID string, in CheckoutInput) (res *CheckoutResult, err error) {
	if in.SubmitKey != "" && s.Guard != nil {
		key := fmt.Sprintf("order:submit:%s:%s", userID, in.SubmitKey)
		ok, gerr := s.Guard.Acquire(ctx, key, submitGuardTTL)
		if gerr != nil {
			return nil, gerr
		}
		if !ok {
			return nil, ErrDuplicateCheckout
		}
		defer func() {
			// 失败时释放，允许用户重试
			if err != nil {
				if rerr := s.Guard.Release(context.WithoutCancel(ctx), key); rerr != nil {
					logger.Log.Warn("release submit guard failed", zap.String("key", key), zap.Error(rerr))
				}
			}
		}()
	}

	if err := s.resolveCartItem(ctx, userID, &in); err != nil {
		return nil, err
	}
	if len(in.Persons) == 0 || len(in.Persons) > MaxPersons {
		return nil, ErrInvalidPersons
	}

	product, err := s.Products.Get(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, productService.ErrProductNotFound) {
			return nil, ErrProductUnavailable
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, ErrProductUnavailable
	}

	prices := PriceLines(product, len(in.Persons))
	var discount int64
	if in.UserCouponID != "" {
		var total int64
		for _, p := range prices {
			total += p
		}
		if discount, err = s.Ledger.Quote(ctx, userID, in.UserCouponID, total); err != nil {
			return nil, err
		}
	}
	quote := BuildQuote(prices, discount)

	numbers, err := s.Numbers.Next(ctx, len(in.Persons))
	if err != nil {
		return nil, err
	}

	checkoutID := uuid.New().String()
	orders := make([]*model.Order, len(in.Persons))
	for i, person := range in.Persons {
		o := &model.Order{
			OrderNumber:    numbers[i],
			CheckoutID:     checkoutID,
			UserID:         userID,
			ProductID:      product.ID,
			ProductName:    product.Name,
			Option:         in.Option,
			PersonIndex:    i,
			Price:          quote.Prices[i],
			DiscountAmount: quote.Discounts[i],
			FinalAmount:    quote.Prices[i] - quote.Discounts[i],
			CustomerName:   in.Contact.Name,
			CustomerEmail:  in.Contact.Email,
			CustomerPhone:  in.Contact.Phone,
			BirthName:      person.Name,
			Gender:         person.Gender,
			BirthDate:      person.BirthDate,
			BirthTime:      person.BirthTime,
			CalendarType:   person.Calendar,
			DepositorName:  in.DepositorName,
		}
		o.SetStatus(model.StatusPending)
		// 优惠券只挂在第一条，取消时恰好归还一次
		if i == 0 && in.UserCouponID != "" {
			couponID := in.UserCouponID
			o.CouponID = &couponID
		}
		orders[i] = o
	}

	err = s.Transactor.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.Repo.WithTx(tx).CreateBatch(ctx, orders); err != nil {
			return fmt.Errorf("insert orders: %w", err)
		}
		if in.UserCouponID != "" {
			return s.Ledger.MarkUsed(ctx, tx, userID, in.UserCouponID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Metrics.RecordOrdersCreated(len(orders))

	if in.CartItemID != "" && s.Carts != nil {
		if _, err := s.Carts.RemoveItem(ctx, userID, in.CartItemID); err != nil {
			logger.Log.Warn("remove checked out cart item failed", zap.String("item_id", in.CartItemID), zap.Error(err))
		}
	}

	plain := make([]model.Order, len(orders))
	for i, o := range orders {
		plain[i] = *o
	}
	instructions, err := s.Payment.Instruct(plain)
	if err != nil {
		return nil, err
	}

	logger.Log.Info("checkout completed",
		zap.String("checkout_id", checkoutID), zap.String("user_id", userID),
		zap.Int("orders", len(orders)), zap.Int64("final_amount", quote.Final))
	return &CheckoutResult{CheckoutID: checkoutID, Orders: orders, Quote: quote, Payment: instructions}, nil
}

func (s *orderService) resolveCartItem(ctx context.Context, userID string, in *CheckoutInput) error {
	if in.CartItemID == "" || s.Carts == nil {
		return nil
	}
	item, err := s.Carts.GetItem(ctx, userID, in.CartItemID)
	if err != nil {
		return err
	}
	in.ProductID = item.ProductID
	in.Option = item.Option
	in.Persons = item.Persons
	return nil
}

func (s *orderService) ListMine(ctx context.Context, userID string, p *utils.Pagination) ([]model.Order, int64, error) {
	offset, limit := p.GetPageOffset()
	return s.Repo.List(ctx, repository.Filter{UserID: userID}, offset, limit)
}

func (s *orderService) load(ctx context.Context, id string) (*model.Order, error) {
	o, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

// GetMine 不属于该用户的订单按不存在处理
func (s *orderService) GetMine(ctx context.Context, userID, id string) (*model.Order, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.IsOwnedBy(userID) {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (s *orderService) AdminGet(ctx context.Context, id string) (*model.Order, error) {
	return s.load(ctx, id)
}

func (s *orderService) AdminList(ctx context.Context, f repository.Filter, p *utils.Pagination) ([]model.Order, int64, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, fmt.Errorf("unknown status %q", f.Status)
	}
	offset, limit := p.GetPageOffset()
	return s.Repo.List(ctx, f, offset, limit)
}

// transition 先按内存状态快速失败，再由条件更新兜底并发
func (s *orderService) transition(ctx context.Context, o *model.Order, action model.Action, fields map[string]interface{}) error {
	tr, ok := model.TransitionFor(action)
	if !ok {
		return ErrInvalidTransition
	}
	if !tr.Allows(o.Status) {
		s.Metrics.RecordOrderTransition(string(tr.To), false)
		return ErrInvalidTransition
	}

	err := s.Transactor.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.Repo.WithTx(tx).Transition(ctx, o.ID, tr, fields); err != nil {
			return err
		}
		if tr.RestoresCoupon() && o.CouponID != nil {
			if err := s.Ledger.Restore(ctx, tx, *o.CouponID); err != nil {
				return fmt.Errorf("restore coupon: %w", err)
			}
		}
		return nil
	})
	s.Metrics.RecordOrderTransition(string(tr.To), err == nil)
	if err != nil {
		logger.Log.Warn("order transition failed",
			zap.String("order_id", o.ID), zap.String("action", string(action)),
			zap.String("from", string(o.Status)), zap.Error(err))
		return err
	}

	o.SetStatus(tr.To)
	return nil
}

func (s *orderService) ConfirmPayment(ctx context.Context, id string) (*model.Order, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := s.transition(ctx, o, model.ActionConfirmPayment, map[string]interface{}{"confirmed_at": now}); err != nil {
		return nil, err
	}
	o.ConfirmedAt = &now
	s.Notifier.PaymentConfirmed(o)
	return o, nil
}

func (s *orderService) StartProcessing(ctx context.Context, id string) (*model.Order, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, o, model.ActionStartProcessing, nil); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *orderService) CompleteWithoutFile(ctx context.Context, id string) (*model.Order, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := s.transition(ctx, o, model.ActionCompleteWithoutFile, map[string]interface{}{"completed_at": now}); err != nil {
		return nil, err
	}
	o.CompletedAt = &now
	s.Notifier.ResultReady(o)
	return o, nil
}

// UploadResult 先上传再改状态；状态更新失败时删除已上传的对象
func (s *orderService) UploadResult(ctx context.Context, id string, file ResultFile) (*model.Order, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	// 不在 processing 时不上传，避免产生孤儿文件
	if tr, _ := model.TransitionFor(model.ActionUploadResult); !tr.Allows(o.Status) {
		return nil, ErrInvalidTransition
	}

	now := s.now()
	stored, err := s.Storage.Put(ctx, uploader.Object{
		Bucket:      s.Bucket,
		Key:         uploader.GenerateKey(resultKeyPrefix, file.Filename, now),
		Body:        file.Body,
		Size:        file.Size,
		ContentType: file.ContentType,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	fields := map[string]interface{}{
		"result_file_url":  stored.URL,
		"result_file_key":  stored.Key,
		"file_uploaded_at": now,
		"completed_at":     now,
	}
	if err := s.transition(ctx, o, model.ActionUploadResult, fields); err != nil {
		if derr := s.Storage.Delete(context.WithoutCancel(ctx), stored.Bucket, stored.Key); derr != nil {
			logger.Log.Error("delete orphan result file failed",
				zap.String("order_id", o.ID), zap.String("key", stored.Key), zap.Error(derr))
		}
		return nil, err
	}

	o.ResultFileURL = &stored.URL
	o.ResultFileKey = &stored.Key
	o.FileUploadedAt = &now
	o.CompletedAt = &now
	s.Notifier.ResultReady(o)
	return o, nil
}

func (s *orderService) Cancel(ctx context.Context, userID, id, reason string) (*model.Order, error) {
	o, err := s.GetMine(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	fields := map[string]interface{}{"cancelled_at": now, "cancel_reason": reason}
	if err := s.transition(ctx, o, model.ActionCancel, fields); err != nil {
		return nil, err
	}
	o.CancelledAt = &now
	o.CancelReason = reason
	return o, nil
}

func (s *orderService) RequestCancel(ctx context.Context, userID, id, reason string) (*model.Order, error) {
	o, err := s.GetMine(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, o, model.ActionRequestCancel, map[string]interface{}{"cancel_reason": reason}); err != nil {
		return nil, err
	}
	o.CancelReason = reason
	return o, nil
}

func (s *orderService) ApproveCancel(ctx context.Context, id string) (*model.Order, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := s.transition(ctx, o, model.ActionApproveCancel, map[string]interface{}{"cancelled_at": now}); err != nil {
		return nil, err
	}
	o.CancelledAt = &now
	return o, nil
}

// PaymentInstructions 汇总同一次结算中仍待付款的订单
func (s *orderService) PaymentInstructions(ctx context.Context, userID, id string) (*payment.Instructions, error) {
	o, err := s.GetMine(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	siblings, err := s.Repo.ListByCheckout(ctx, o.CheckoutID)
	if err != nil {
		return nil, err
	}
	if len(siblings) == 0 {
		siblings = []model.Order{*o}
	}
	ins, err := s.Payment.Instruct(siblings)
	if errors.Is(err, payment.ErrNothingToPay) {
		return nil, ErrInvalidTransition
	}
	return ins, err
}

// ResultDownloadURL 生成短时效下载链接，过期文件不可下载
func (s *orderService) ResultDownloadURL(ctx context.Context, userID, id string, asAdmin bool) (string, error) {
	var (
		o   *model.Order
		err error
	)
	if asAdmin {
		o, err = s.load(ctx, id)
	} else {
		o, err = s.GetMine(ctx, userID, id)
	}
	if err != nil {
		return "", err
	}

	if !o.HasResultFile() {
		if o.Status == model.StatusCompleted && o.FileUploadedAt == nil && o.CompletedAt != nil &&
			s.now().Sub(*o.CompletedAt) >= s.Retention {
			return "", ErrResultFileExpired
		}
		return "", ErrNoResultFile
	}
	if exp := o.FileExpiresAt(s.Retention); exp != nil && !s.now().Before(*exp) {
		return "", ErrResultFileExpired
	}

	url, err := s.Storage.PresignedURL(ctx, s.Bucket, *o.ResultFileKey, downloadURLTTL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return url, nil
}
