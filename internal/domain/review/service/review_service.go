package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
	orderModel "fortune_shop/internal/domain/order/model"
	"fortune_shop/internal/domain/review/model"
	"fortune_shop/internal/domain/review/repository"
	"fortune_shop/internal/pkg/uploader"
	"fortune_shop/pkg/logger"
	"fortune_shop/pkg/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const imageKeyPrefix = "reviews"

var (
	ErrReviewNotFound   = errors.New("review not found")
	ErrReviewExists     = errors.New("order already reviewed")
	ErrReviewNotAllowed = errors.New("only the owner of a completed order can review it")
	ErrStorage          = errors.New("object storage unavailable")
)

// OrderGetter 由订单仓库实现
type OrderGetter interface {
	GetByID(ctx context.Context, id string) (*orderModel.Order, error)
}

// CreateReviewInput 发表评价
type CreateReviewInput struct {
	OrderID string `json:"orderId" form:"orderId" binding:"required,uuid"`
	Rating  int    `json:"rating" form:"rating" binding:"required,min=1,max=5"`
	Content string `json:"content" form:"content" binding:"required,max=2000"`
}

// ReplyInput 管理员回复
type ReplyInput struct {
	Reply string `json:"reply" binding:"required,max=2000"`
}

// Image 已校验的评价图片
type Image struct {
	Body        io.Reader
	Size        int64
	ContentType string
	Filename    string
}

// PublicList 公开评价列表附带评分统计
type PublicList struct {
	utils.PageResult
	Summary *model.RatingSummary `json:"summary"`
}

type ReviewService interface {
	Create(ctx context.Context, userID string, in CreateReviewInput, image *Image) (*model.Review, error)
	ListApproved(ctx context.Context, p *utils.Pagination) (*PublicList, error)
	ListMine(ctx context.Context, userID string, p *utils.Pagination) ([]model.Review, int64, error)
	AdminList(ctx context.Context, approved *bool, p *utils.Pagination) ([]model.Review, int64, error)
	SetApproval(ctx context.Context, id string, approved bool) (*model.Review, error)
	Reply(ctx context.Context, id, reply string) (*model.Review, error)
	Delete(ctx context.Context, id, userID string, asAdmin bool) error
}

type reviewService struct {
	repo    repository.ReviewRepository
	orders  OrderGetter
	storage uploader.ObjectStorage
	bucket  string
	now     func() time.Time
}

func NewReviewService(repo repository.ReviewRepository, orders OrderGetter, storage uploader.ObjectStorage, bucket string) ReviewService {
	return &reviewService{repo: repo, orders: orders, storage: storage, bucket: bucket, now: time.Now}
}

func (s *reviewService) Create(ctx context.Context, userID string, in CreateReviewInput, image *Image) (*model.Review, error) {
	if in.Rating < model.MinRating || in.Rating > model.MaxRating {
		return nil, fmt.Errorf("rating must be between %d and %d", model.MinRating, model.MaxRating)
	}

	order, err := s.orders.GetByID(ctx, in.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotAllowed
		}
		return nil, err
	}
	if !order.IsOwnedBy(userID) || order.Status != orderModel.StatusCompleted {
		return nil, ErrReviewNotAllowed
	}

	exists, err := s.repo.ExistsForOrder(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrReviewExists
	}

	review := &model.Review{
		OrderID:     order.ID,
		UserID:      userID,
		ProductName: order.ProductName,
		AuthorName:  utils.MaskName(order.CustomerName),
		Rating:      in.Rating,
		Content:     in.Content,
		IsApproved:  true,
	}

	if image != nil {
		stored, err := s.storage.Put(ctx, uploader.Object{
			Bucket:      s.bucket,
			Key:         uploader.GenerateKey(imageKeyPrefix, image.Filename, s.now()),
			Body:        image.Body,
			Size:        image.Size,
			ContentType: image.ContentType,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		review.ImageURL = &stored.URL
		review.ImageKey = &stored.Key
	}

	if err := s.repo.Create(ctx, review); err != nil {
		if review.ImageKey != nil {
			if derr := s.storage.Delete(context.WithoutCancel(ctx), s.bucket, *review.ImageKey); derr != nil {
				logger.Log.Error("delete orphan review image failed", zap.String("key", *review.ImageKey), zap.Error(derr))
			}
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrReviewExists
		}
		return nil, err
	}
	return review, nil
}

func (s *reviewService) ListApproved(ctx context.Context, p *utils.Pagination) (*PublicList, error) {
	approved := true
	offset, limit := p.GetPageOffset()
	list, total, err := s.repo.List(ctx, repository.Filter{Approved: &approved}, offset, limit)
	if err != nil {
		return nil, err
	}
	summary, err := s.repo.Summary(ctx)
	if err != nil {
		return nil, err
	}
	return &PublicList{PageResult: utils.NewPageResult(list, total, *p), Summary: summary}, nil
}

func (s *reviewService) ListMine(ctx context.Context, userID string, p *utils.Pagination) ([]model.Review, int64, error) {
	offset, limit := p.GetPageOffset()
	return s.repo.List(ctx, repository.Filter{UserID: userID}, offset, limit)
}

func (s *reviewService) AdminList(ctx context.Context, approved *bool, p *utils.Pagination) ([]model.Review, int64, error) {
	offset, limit := p.GetPageOffset()
	return s.repo.List(ctx, repository.Filter{Approved: approved}, offset, limit)
}

func (s *reviewService) SetApproval(ctx context.Context, id string, approved bool) (*model.Review, error) {
	if err := s.repo.Update(ctx, id, map[string]interface{}{"is_approved": approved}); err != nil {
		return nil, s.mapErr(err)
	}
	return s.get(ctx, id)
}

func (s *reviewService) Reply(ctx context.Context, id, reply string) (*model.Review, error) {
	fields := map[string]interface{}{"admin_reply": reply, "replied_at": s.now()}
	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, s.mapErr(err)
	}
	return s.get(ctx, id)
}

// Delete 作者本人或管理员可删除
func (s *reviewService) Delete(ctx context.Context, id, userID string, asAdmin bool) error {
	review, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if !asAdmin && review.UserID != userID {
		return ErrReviewNotFound
	}
	return s.mapErr(s.repo.Delete(ctx, id))
}

func (s *reviewService) get(ctx context.Context, id string) (*model.Review, error) {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapErr(err)
	}
	return review, nil
}

func (s *reviewService) mapErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrReviewNotFound
	}
	return err
}
