package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"fortune_shop/internal/domain/user/model"
	"fortune_shop/internal/domain/user/repository"
	"fortune_shop/pkg/utils"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrProfileInvalid = errors.New("oauth profile has no user id or email")
)

// OAuthProfile 第三方登录返回的用户信息，直接信任提供方
type OAuthProfile struct {
	Provider       string
	ProviderUserID string
	Email          string
	Name           string
}

// LoginResult 登录结果
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      *model.User `json:"user"`
}

// UserService 用户服务接口
type UserService interface {
	LoginWithOAuth(ctx context.Context, profile OAuthProfile) (*LoginResult, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUsers(ctx context.Context, p *utils.Pagination) ([]model.User, int64, error)
}

// userService 实现
type userService struct {
	repo        repository.UserRepository
	adminEmails map[string]struct{}
	now         func() time.Time
}

// NewUserService 创建用户服务，adminEmails 中的邮箱登录即为管理员
func NewUserService(repo repository.UserRepository, adminEmails []string) UserService {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		admins[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return &userService{repo: repo, adminEmails: admins, now: time.Now}
}

// LoginWithOAuth 按 (provider, provider_user_id) 查找或创建用户并签发 token
func (s *userService) LoginWithOAuth(ctx context.Context, profile OAuthProfile) (*LoginResult, error) {
	if profile.ProviderUserID == "" || profile.Email == "" {
		return nil, ErrProfileInvalid
	}

	now := s.now()
	user, err := s.repo.GetByProvider(ctx, profile.Provider, profile.ProviderUserID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = &model.User{
			Email:          profile.Email,
			Name:           profile.Name,
			Provider:       profile.Provider,
			ProviderUserID: profile.ProviderUserID,
			Role:           s.roleFor(profile.Email),
			LastLoginAt:    &now,
		}
		if err := s.repo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
	case err != nil:
		return nil, err
	default:
		user.Email = profile.Email
		if profile.Name != "" {
			user.Name = profile.Name
		}
		user.Role = s.roleFor(profile.Email)
		user.LastLoginAt = &now
		if err := s.repo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
	}

	token, expiresAt, err := utils.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// roleFor 管理员名单每次登录重新判定，移出名单后自动降级
func (s *userService) roleFor(email string) int {
	if _, ok := s.adminEmails[strings.ToLower(email)]; ok {
		return model.RoleAdmin
	}
	return model.RoleUser
}

// GetUser 获取单个用户
func (s *userService) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// GetUsers 获取用户列表（分页）
func (s *userService) GetUsers(ctx context.Context, p *utils.Pagination) ([]model.User, int64, error) {
	offset, limit := p.GetPageOffset()
	return s.repo.GetList(ctx, offset, limit)
}
