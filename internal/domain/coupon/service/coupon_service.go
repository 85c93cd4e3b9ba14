package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"fortune_shop/internal/domain/coupon/model"
	"fortune_shop/internal/domain/coupon/repository"
	"fortune_shop/internal/pkg/worker"
	"fortune_shop/pkg/database"
	"fortune_shop/pkg/logger"
	"fortune_shop/pkg/metrics"
	"fortune_shop/pkg/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrCouponNotFound   = errors.New("coupon not found")
	ErrCouponOutOfStock = errors.New("coupon out of stock")
	ErrCouponClaimed    = errors.New("coupon already claimed")
	ErrCouponUnusable   = errors.New("coupon is used, expired or inactive")
	ErrCouponInvalid    = errors.New("invalid coupon definition")
	ErrBusy             = errors.New("coupon service busy, try again later")
	ErrCouponExists     = errors.New("coupon code already exists")
)

const releaseTimeout = 5 * time.Second

// CreateCouponInput 创建优惠券参数
type CreateCouponInput struct {
	Code          string     `json:"code" binding:"required,max=50"`
	Name          string     `json:"name" binding:"required,max=100"`
	DiscountType  string     `json:"discountType" binding:"required,oneof=fixed percent"`
	DiscountValue int64      `json:"discountValue" binding:"required,min=1"`
	ExpiresAt     *time.Time `json:"expiresAt"`
	Total         int        `json:"total" binding:"required,min=1"`
}

type CouponService interface {
	Ledger
	CreateCoupon(ctx context.Context, in CreateCouponInput) (*model.Coupon, error)
	ListCoupons(ctx context.Context, p *utils.Pagination) ([]model.Coupon, int64, error)
	ClaimCoupon(ctx context.Context, userID, couponID string) error
	SendCouponToUser(ctx context.Context, userID, couponID string) error
	ListMyCoupons(ctx context.Context, userID string, used *bool) ([]model.UserCoupon, error)
}

type couponService struct {
	Ledger
	repo       repository.CouponRepository
	gate       StockGate
	tx         database.Transactor
	workerPool *worker.WorkerPool
	metrics    *metrics.MetricsCollector
	soldOutMap sync.Map // 本地缓存：记录已售罄的 CouponID
	now        func() time.Time
}

func NewCouponService(repo repository.CouponRepository, gate StockGate, tx database.Transactor,
	pool *worker.WorkerPool, collector *metrics.MetricsCollector) CouponService {
	return &couponService{
		Ledger:     NewLedger(repo, collector),
		repo:       repo,
		gate:       gate,
		tx:         tx,
		workerPool: pool,
		metrics:    collector,
		now:        time.Now,
	}
}

func (s *couponService) CreateCoupon(ctx context.Context, in CreateCouponInput) (*model.Coupon, error) {
	if in.DiscountType == model.DiscountPercent && in.DiscountValue > 100 {
		return nil, ErrCouponInvalid
	}

	coupon := &model.Coupon{
		Code:          strings.ToUpper(strings.TrimSpace(in.Code)),
		Name:          in.Name,
		DiscountType:  in.DiscountType,
		DiscountValue: in.DiscountValue,
		ExpiresAt:     in.ExpiresAt,
		IsActive:      true,
		Total:         in.Total,
		Stock:         in.Total,
	}
	if err := s.repo.Create(ctx, coupon); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCouponExists
		}
		return nil, fmt.Errorf("create coupon: %w", err)
	}

	// 预热库存
	if err := s.gate.Init(ctx, coupon.ID, coupon.Total); err != nil {
		return nil, fmt.Errorf("warm coupon stock: %w", err)
	}
	return coupon, nil
}

func (s *couponService) ListCoupons(ctx context.Context, p *utils.Pagination) ([]model.Coupon, int64, error) {
	offset, limit := p.GetPageOffset()
	return s.repo.List(ctx, offset, limit)
}

// ClaimCoupon Redis 预扣成功后异步落库
func (s *couponService) ClaimCoupon(ctx context.Context, userID, couponID string) error {
	if _, ok := s.soldOutMap.Load(couponID); ok {
		return ErrCouponOutOfStock
	}

	coupon, err := s.repo.GetByID(ctx, couponID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCouponNotFound
		}
		return err
	}
	if !coupon.IsActive || coupon.Expired(s.now()) {
		return ErrCouponUnusable
	}

	result, err := s.gate.Claim(ctx, couponID, userID)
	if err == nil && result == ClaimNotWarmed {
		// 重启后 Redis 丢了库存，用数据库剩余库存补上再试一次
		if err := s.gate.Init(ctx, couponID, coupon.Stock); err != nil {
			return err
		}
		result, err = s.gate.Claim(ctx, couponID, userID)
	}
	if err != nil {
		return err
	}
	switch result {
	case ClaimAlreadyClaimed:
		return ErrCouponClaimed
	case ClaimSoldOut:
		s.soldOutMap.Store(couponID, true)
		s.metrics.RecordCouponEvent("sold_out")
		return ErrCouponOutOfStock
	case ClaimNotWarmed:
		logger.Log.Warn("coupon stock missing after warm-up", zap.String("coupon_id", couponID))
		return ErrBusy
	}

	ok := s.workerPool.AddTask(worker.Task{
		Name: "coupon.persist",
		Run: func(ctx context.Context) error {
			return s.persistClaim(ctx, userID, couponID)
		},
		OnDropped: func(err error) {
			// 落库彻底失败，退回 Redis 预扣
			ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
			defer cancel()
			s.release(ctx, couponID, userID)
			s.metrics.RecordCouponEvent("persist_failed")
		},
	})
	if !ok {
		s.release(ctx, couponID, userID)
		return ErrBusy
	}
	s.metrics.RecordCouponEvent("claimed")
	return nil
}

func (s *couponService) release(ctx context.Context, couponID, userID string) {
	if err := s.gate.Release(ctx, couponID, userID); err != nil {
		logger.Log.Error("release coupon stock failed",
			zap.String("coupon_id", couponID), zap.String("user_id", userID), zap.Error(err))
	}
}

// persistClaim 扣库存与写用户券在同一事务，重试时按已领取跳过
func (s *couponService) persistClaim(ctx context.Context, userID, couponID string) error {
	return s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		claimed, err := repo.HasUserClaimed(ctx, userID, couponID)
		if err != nil {
			return err
		}
		if claimed {
			return nil
		}
		if err := repo.DecreaseStock(ctx, couponID); err != nil {
			return err
		}
		return repo.CreateUserCoupon(ctx, &model.UserCoupon{UserID: userID, CouponID: couponID})
	})
}

// SendCouponToUser 管理员发券，同样受每人一张限制
func (s *couponService) SendCouponToUser(ctx context.Context, userID, couponID string) error {
	return s.ClaimCoupon(ctx, userID, couponID)
}

func (s *couponService) ListMyCoupons(ctx context.Context, userID string, used *bool) ([]model.UserCoupon, error) {
	return s.repo.ListUserCoupons(ctx, userID, used)
}
