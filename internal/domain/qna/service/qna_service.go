package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"fortune_shop/internal/domain/qna/model"
	"fortune_shop/internal/domain/qna/repository"
	"fortune_shop/pkg/logger"
	"fortune_shop/pkg/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const privateTitle = "비밀글입니다"

var (
	ErrQnANotFound      = errors.New("question not found")
	ErrPasswordRequired = errors.New("guest questions require a password")
	ErrPasswordWrong    = errors.New("password does not match")
	ErrForbidden        = errors.New("not allowed to access this question")
	ErrAlreadyAnswered  = errors.New("answered questions cannot be edited")
)

// Viewer 当前访问者，游客时 UserID 为空
type Viewer struct {
	UserID string
	Email  string
	Admin  bool
}

// CreateInput 提问；会员不需要密码
type CreateInput struct {
	AuthorName  string `json:"authorName" binding:"max=50"`
	AuthorEmail string `json:"authorEmail" binding:"omitempty,email"`
	Password    string `json:"password" binding:"omitempty,min=4,max=64"`
	Title       string `json:"title" binding:"required,max=200"`
	Question    string `json:"question" binding:"required,max=5000"`
	IsPublic    *bool  `json:"isPublic"`
}

// UpdateInput 修改提问
type UpdateInput struct {
	Title    string `json:"title" binding:"omitempty,max=200"`
	Question string `json:"question" binding:"omitempty,max=5000"`
	IsPublic *bool  `json:"isPublic"`
}

// View 对外展示的问答；无权查看的私密问题只保留标题占位
type View struct {
	ID          string     `json:"id"`
	AuthorName  string     `json:"authorName"`
	AuthorEmail string     `json:"authorEmail,omitempty"`
	Title       string     `json:"title"`
	Question    string     `json:"question,omitempty"`
	Answer      *string    `json:"answer,omitempty"`
	IsPublic    bool       `json:"isPublic"`
	IsAnswered  bool       `json:"isAnswered"`
	IsGuest     bool       `json:"isGuest"`
	Masked      bool       `json:"masked"`
	AnsweredAt  *time.Time `json:"answeredAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type QnAService interface {
	Create(ctx context.Context, v Viewer, in CreateInput) (*View, error)
	List(ctx context.Context, v Viewer, answered *bool, p *utils.Pagination) ([]View, int64, error)
	Get(ctx context.Context, v Viewer, id, password string) (*View, error)
	Update(ctx context.Context, v Viewer, id, password string, in UpdateInput) (*View, error)
	Delete(ctx context.Context, v Viewer, id, password string) error
	Answer(ctx context.Context, id, answer string) (*View, error)
}

type qnaService struct {
	repo repository.QnARepository
	now  func() time.Time
}

func NewQnAService(repo repository.QnARepository) QnAService {
	return &qnaService{repo: repo, now: time.Now}
}

func (s *qnaService) Create(ctx context.Context, v Viewer, in CreateInput) (*View, error) {
	q := &model.QnA{
		AuthorName:  in.AuthorName,
		AuthorEmail: in.AuthorEmail,
		Title:       in.Title,
		Question:    in.Question,
		IsPublic:    true,
	}
	if in.IsPublic != nil {
		q.IsPublic = *in.IsPublic
	}

	if v.UserID != "" {
		uid := v.UserID
		q.UserID = &uid
		if q.AuthorEmail == "" {
			q.AuthorEmail = v.Email
		}
		if q.AuthorName == "" {
			q.AuthorName = strings.SplitN(q.AuthorEmail, "@", 2)[0]
		}
	} else {
		if in.Password == "" {
			return nil, ErrPasswordRequired
		}
		hash, err := utils.HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		q.PasswordHash = hash
	}
	if q.AuthorName == "" {
		return nil, errors.New("author name is required")
	}

	if err := s.repo.Create(ctx, q); err != nil {
		return nil, err
	}
	return toView(q, true), nil
}

// List 公开问题完整展示，私密问题只对本人和管理员展示
func (s *qnaService) List(ctx context.Context, v Viewer, answered *bool, p *utils.Pagination) ([]View, int64, error) {
	offset, limit := p.GetPageOffset()
	list, total, err := s.repo.List(ctx, repository.Filter{Answered: answered}, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	views := make([]View, len(list))
	for i := range list {
		q := &list[i]
		views[i] = *toView(q, q.IsPublic || v.Admin || q.OwnedBy(v.UserID))
	}
	return views, total, nil
}

func (s *qnaService) Get(ctx context.Context, v Viewer, id, password string) (*View, error) {
	q, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !q.IsPublic {
		if err := s.authorize(q, v, password); err != nil {
			return nil, err
		}
	}
	return toView(q, true), nil
}

func (s *qnaService) Update(ctx context.Context, v Viewer, id, password string, in UpdateInput) (*View, error) {
	q, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(q, v, password); err != nil {
		return nil, err
	}
	if q.IsAnswered {
		return nil, ErrAlreadyAnswered
	}

	fields := map[string]interface{}{}
	if in.Title != "" {
		fields["title"] = in.Title
		q.Title = in.Title
	}
	if in.Question != "" {
		fields["question"] = in.Question
		q.Question = in.Question
	}
	if in.IsPublic != nil {
		fields["is_public"] = *in.IsPublic
		q.IsPublic = *in.IsPublic
	}
	if len(fields) == 0 {
		return toView(q, true), nil
	}
	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, mapErr(err)
	}
	return toView(q, true), nil
}

// Delete 软删除
func (s *qnaService) Delete(ctx context.Context, v Viewer, id, password string) error {
	q, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(q, v, password); err != nil {
		return err
	}
	return mapErr(s.repo.Update(ctx, id, map[string]interface{}{"is_deleted": true}))
}

func (s *qnaService) Answer(ctx context.Context, id, answer string) (*View, error) {
	q, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	fields := map[string]interface{}{"answer": answer, "is_answered": true, "answered_at": now}
	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, mapErr(err)
	}
	q.Answer = &answer
	q.IsAnswered = true
	q.AnsweredAt = &now
	return toView(q, true), nil
}

// authorize 管理员、会员本人或游客密码正确
func (s *qnaService) authorize(q *model.QnA, v Viewer, password string) error {
	if v.Admin || q.OwnedBy(v.UserID) {
		return nil
	}
	if !q.IsGuest() {
		return ErrForbidden
	}
	if password == "" {
		return ErrPasswordRequired
	}
	ok, err := utils.VerifyPassword(password, q.PasswordHash)
	if err != nil {
		logger.Log.Error("verify guest password failed", zap.String("qna_id", q.ID), zap.Error(err))
		return ErrPasswordWrong
	}
	if !ok {
		return ErrPasswordWrong
	}
	return nil
}

func (s *qnaService) load(ctx context.Context, id string) (*model.QnA, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapErr(err)
	}
	return q, nil
}

func mapErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrQnANotFound
	}
	return err
}

func toView(q *model.QnA, visible bool) *View {
	v := &View{
		ID:         q.ID,
		AuthorName: utils.MaskName(q.AuthorName),
		IsPublic:   q.IsPublic,
		IsAnswered: q.IsAnswered,
		IsGuest:    q.IsGuest(),
		AnsweredAt: q.AnsweredAt,
		CreatedAt:  q.CreatedAt,
	}
	if !visible {
		v.Title = privateTitle
		v.Masked = true
		return v
	}
	v.Title = q.Title
	v.Question = q.Question
	v.Answer = q.Answer
	if q.AuthorEmail != "" {
		v.AuthorEmail = utils.MaskEmail(q.AuthorEmail)
	}
	return v
}
