package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	orderModel "fortune_shop/internal/domain/order/model"
	"fortune_shop/internal/domain/review/model"
	"fortune_shop/internal/domain/review/repository"
	"fortune_shop/internal/pkg/uploader"
	"fortune_shop/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, review *model.Review) error {
	args := m.Called(ctx, review)
	review.ID = "r-1"
	return args.Error(0)
}

func (m *MockReviewRepository) GetByID(ctx context.Context, id string) (*model.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Review), args.Error(1)
}

func (m *MockReviewRepository) ExistsForOrder(ctx context.Context, orderID string) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReviewRepository) List(ctx context.Context, f repository.Filter, offset, limit int) ([]model.Review, int64, error) {
	args := m.Called(ctx, f, offset, limit)
	return args.Get(0).([]model.Review), args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewRepository) Summary(ctx context.Context) (*model.RatingSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).(*model.RatingSummary), args.Error(1)
}

func (m *MockReviewRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return m.Called(ctx, id, fields).Error(0)
}

func (m *MockReviewRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type stubOrders map[string]*orderModel.Order

func (s stubOrders) GetByID(ctx context.Context, id string) (*orderModel.Order, error) {
	if o, ok := s[id]; ok {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Put(ctx context.Context, obj uploader.Object) (*uploader.StoredObject, error) {
	args := m.Called(ctx, obj)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*uploader.StoredObject), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, bucket, key string) error {
	return m.Called(ctx, bucket, key).Error(0)
}

func (m *MockStorage) PresignedURL(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, bucket, key, expiry)
	return args.String(0), args.Error(1)
}

func completedOrder(id, userID string, status orderModel.Status) *orderModel.Order {
	o := &orderModel.Order{UserID: userID, ProductName: "2024 신년운세", CustomerName: "홍길동"}
	o.ID = id
	o.SetStatus(status)
	return o
}

func newService(repo *MockReviewRepository, storage *MockStorage) ReviewService {
	orders := stubOrders{
		"o-done":    completedOrder("o-done", "u-1", orderModel.StatusCompleted),
		"o-pending": completedOrder("o-pending", "u-1", orderModel.StatusPending),
	}
	return NewReviewService(repo, orders, storage, "reviews")
}

func TestCreateReview(t *testing.T) {
	ctx := context.Background()
	in := CreateReviewInput{OrderID: "o-done", Rating: 5, Content: "정확했어요"}

	t.Run("completed order", func(t *testing.T) {
		repo := new(MockReviewRepository)
		repo.On("ExistsForOrder", ctx, "o-done").Return(false, nil)
		repo.On("Create", ctx, mock.Anything).Return(nil)

		r, err := newService(repo, new(MockStorage)).Create(ctx, "u-1", in, nil)
		require.NoError(t, err)
		assert.True(t, r.IsApproved)
		assert.Equal(t, "홍*동", r.AuthorName)
		assert.Equal(t, "2024 신년운세", r.ProductName)
	})

	t.Run("not completed", func(t *testing.T) {
		repo := new(MockReviewRepository)
		bad := in
		bad.OrderID = "o-pending"
		_, err := newService(repo, new(MockStorage)).Create(ctx, "u-1", bad, nil)
		assert.ErrorIs(t, err, ErrReviewNotAllowed)
	})

	t.Run("other user", func(t *testing.T) {
		_, err := newService(new(MockReviewRepository), new(MockStorage)).Create(ctx, "u-2", in, nil)
		assert.ErrorIs(t, err, ErrReviewNotAllowed)
	})

	t.Run("already reviewed", func(t *testing.T) {
		repo := new(MockReviewRepository)
		repo.On("ExistsForOrder", ctx, "o-done").Return(true, nil)
		_, err := newService(repo, new(MockStorage)).Create(ctx, "u-1", in, nil)
		assert.ErrorIs(t, err, ErrReviewExists)
	})

	t.Run("insert failure removes image", func(t *testing.T) {
		repo := new(MockReviewRepository)
		storage := new(MockStorage)
		repo.On("ExistsForOrder", ctx, "o-done").Return(false, nil)
		storage.On("Put", ctx, mock.Anything).Return(&uploader.StoredObject{Bucket: "reviews", Key: "reviews/a.png", URL: "http://x/reviews/a.png"}, nil)
		repo.On("Create", ctx, mock.Anything).Return(errors.New("db down"))
		storage.On("Delete", mock.Anything, "reviews", "reviews/a.png").Return(nil).Once()

		img := &Image{Body: strings.NewReader("png"), Size: 3, ContentType: "image/png", Filename: "a.png"}
		_, err := newService(repo, storage).Create(ctx, "u-1", in, img)
		require.Error(t, err)
		storage.AssertExpectations(t)
	})
}

func TestListApprovedIncludesSummary(t *testing.T) {
	ctx := context.Background()
	repo := new(MockReviewRepository)
	approved := true
	repo.On("List", ctx, repository.Filter{Approved: &approved}, 0, 10).Return([]model.Review{{Rating: 5}, {Rating: 4}}, int64(2), nil)
	repo.On("Summary", ctx).Return(&model.RatingSummary{Count: 2, Average: 4.5}, nil)

	res, err := newService(repo, new(MockStorage)).ListApproved(ctx, &utils.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)
	assert.Equal(t, 4.5, res.Summary.Average)
}

func TestDeleteReview(t *testing.T) {
	ctx := context.Background()
	review := &model.Review{UserID: "u-1"}
	review.ID = "r-1"

	t.Run("owner", func(t *testing.T) {
		repo := new(MockReviewRepository)
		repo.On("GetByID", ctx, "r-1").Return(review, nil)
		repo.On("Delete", ctx, "r-1").Return(nil)
		assert.NoError(t, newService(repo, new(MockStorage)).Delete(ctx, "r-1", "u-1", false))
	})

	t.Run("stranger", func(t *testing.T) {
		repo := new(MockReviewRepository)
		repo.On("GetByID", ctx, "r-1").Return(review, nil)
		err := newService(repo, new(MockStorage)).Delete(ctx, "r-1", "u-2", false)
		assert.ErrorIs(t, err, ErrReviewNotFound)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("admin", func(t *testing.T) {
		repo := new(MockReviewRepository)
		repo.On("GetByID", ctx, "r-1").Return(review, nil)
		repo.On("Delete", ctx, "r-1").Return(nil)
		assert.NoError(t, newService(repo, new(MockStorage)).Delete(ctx, "r-1", "admin", true))
	})
}

func TestReplyMissingReview(t *testing.T) {
	ctx := context.Background()
	repo := new(MockReviewRepository)
	repo.On("Update", ctx, "r-9", mock.Anything).Return(gorm.ErrRecordNotFound)

	_, err := newService(repo, new(MockStorage)).Reply(ctx, "r-9", "감사합니다")
	assert.ErrorIs(t, err, ErrReviewNotFound)
}
