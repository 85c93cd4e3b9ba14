package repository

import (
	"context"
	"fortune_shop/internal/domain/review/model"

	"gorm.io/gorm"
)

// Filter 列表条件，Approved 为 nil 表示不过滤
type Filter struct {
	Approved *bool
	UserID   string
}

type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	GetByID(ctx context.Context, id string) (*model.Review, error)
	// ExistsForOrder 包含已删除的评价
	ExistsForOrder(ctx context.Context, orderID string) (bool, error)
	List(ctx context.Context, f Filter, offset, limit int) ([]model.Review, int64, error)
	Summary(ctx context.Context) (*model.RatingSummary, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *reviewRepository) GetByID(ctx context.Context, id string) (*model.Review, error) {
	var review model.Review
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) ExistsForOrder(ctx context.Context, orderID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&model.Review{}).Where("order_id = ?", orderID).Count(&count).Error
	return count > 0, err
}

func (r *reviewRepository) List(ctx context.Context, f Filter, offset, limit int) ([]model.Review, int64, error) {
	var reviews []model.Review
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Review{})
	if f.Approved != nil {
		query = query.Where("is_approved = ?", *f.Approved)
	}
	if f.UserID != "" {
		query = query.Where("user_id = ?", f.UserID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&reviews).Error; err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *reviewRepository) Summary(ctx context.Context) (*model.RatingSummary, error) {
	var s model.RatingSummary
	err := r.db.WithContext(ctx).Model(&model.Review{}).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS average").
		Where("is_approved = ?", true).
		Scan(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *reviewRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&model.Review{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete 软删除
func (r *reviewRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Review{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
