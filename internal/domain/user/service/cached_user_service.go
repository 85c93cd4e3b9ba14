package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"fortune_shop/internal/domain/user/model"
	"fortune_shop/pkg/cache"
	"fortune_shop/pkg/logger"
	"fortune_shop/pkg/utils"

	"go.uber.org/zap"
)

// 缓存键常量
const (
	UserCacheKeyPrefix = "user:"
	UserCacheTTL       = time.Hour * 2
)

// CachedUserService 带缓存的用户服务，只缓存按 ID 查询
type CachedUserService struct {
	UserService
	cache cache.CacheService
}

// NewCachedUserService 创建带缓存的用户服务
func NewCachedUserService(inner UserService, cache cache.CacheService) UserService {
	return &CachedUserService{UserService: inner, cache: cache}
}

func (s *CachedUserService) getUserCacheKey(id string) string {
	return fmt.Sprintf("%s%s", UserCacheKeyPrefix, id)
}

// LoginWithOAuth 登录会更新角色与登录时间，顺带清缓存
func (s *CachedUserService) LoginWithOAuth(ctx context.Context, profile OAuthProfile) (*LoginResult, error) {
	res, err := s.UserService.LoginWithOAuth(ctx, profile)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Delete(ctx, s.getUserCacheKey(res.User.ID)); err != nil {
		logger.Log.Warn("invalidate user cache failed", zap.String("user_id", res.User.ID), zap.Error(err))
	}
	return res, nil
}

// GetUser 获取单个用户（带缓存）
func (s *CachedUserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	key := s.getUserCacheKey(id)

	var user model.User
	err := s.cache.Get(ctx, key, &user)
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		logger.Log.Warn("read user cache failed", zap.String("key", key), zap.Error(err))
	}

	u, err := s.UserService.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, u, UserCacheTTL); err != nil {
		logger.Log.Warn("write user cache failed", zap.String("key", key), zap.Error(err))
	}
	return u, nil
}

// GetUsers 管理端列表不走缓存
func (s *CachedUserService) GetUsers(ctx context.Context, p *utils.Pagination) ([]model.User, int64, error) {
	return s.UserService.GetUsers(ctx, p)
}
