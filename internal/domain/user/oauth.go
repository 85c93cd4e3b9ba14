package user

import (
	"net/http"
	"strings"
	"fortune_shop/internal/pkg/config"
	"fortune_shop/pkg/logger"

	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"github.com/markbates/goth/providers/kakao"
	"go.uber.org/zap"
)

// setupOAuth 配置 gothic 的 session 存储与已启用的登录方式
func setupOAuth(cfg config.Config) int {
	secret := cfg.OAuth.SessionSecret
	if secret == "" {
		secret = cfg.JWT.Secret
	}

	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   600, // 只用于登录流程中的 state
		HttpOnly: true,
		Secure:   strings.HasPrefix(cfg.Server.BaseURL, "https://"),
		SameSite: http.SameSiteLaxMode,
	}
	gothic.Store = store

	callback := func(provider string) string {
		return strings.TrimRight(cfg.Server.BaseURL, "/") + "/auth/" + provider + "/callback"
	}

	var providers []goth.Provider
	if cfg.OAuth.KakaoClientID != "" {
		providers = append(providers, kakao.New(cfg.OAuth.KakaoClientID, cfg.OAuth.KakaoClientSecret, callback("kakao")))
	}
	if cfg.OAuth.GoogleClientID != "" && cfg.OAuth.GoogleClientSecret != "" {
		providers = append(providers, google.New(cfg.OAuth.GoogleClientID, cfg.OAuth.GoogleClientSecret, callback("google"), "email", "profile"))
	}

	if len(providers) == 0 {
		logger.Log.Warn("no oauth provider configured, login is disabled")
		return 0
	}
	goth.UseProviders(providers...)
	for _, p := range providers {
		logger.Log.Info("oauth provider enabled", zap.String("provider", p.Name()))
	}
	return len(providers)
}
