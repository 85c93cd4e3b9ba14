package repository

import (
	"context"
	"fortune_shop/internal/domain/qna/model"

	"gorm.io/gorm"
)

// Filter Answered 为 nil 表示不过滤
type Filter struct {
	Answered *bool
}

type QnARepository interface {
	Create(ctx context.Context, q *model.QnA) error
	// GetByID 不返回已删除的记录
	GetByID(ctx context.Context, id string) (*model.QnA, error)
	List(ctx context.Context, f Filter, offset, limit int) ([]model.QnA, int64, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
}

type qnaRepository struct {
	db *gorm.DB
}

func NewQnARepository(db *gorm.DB) QnARepository {
	return &qnaRepository{db: db}
}

func (r *qnaRepository) Create(ctx context.Context, q *model.QnA) error {
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *qnaRepository) GetByID(ctx context.Context, id string) (*model.QnA, error) {
	var q model.QnA
	if err := r.db.WithContext(ctx).Where("id = ? AND is_deleted = ?", id, false).First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *qnaRepository) List(ctx context.Context, f Filter, offset, limit int) ([]model.QnA, int64, error) {
	var list []model.QnA
	var total int64

	query := r.db.WithContext(ctx).Model(&model.QnA{}).Where("is_deleted = ?", false)
	if f.Answered != nil {
		query = query.Where("is_answered = ?", *f.Answered)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *qnaRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&model.QnA{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
