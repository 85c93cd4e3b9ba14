// @title Fortune Shop API
// @version 1.0
// @description 운세 리포트 쇼핑몰 API
// @BasePath /
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
	"fortune_shop/internal/pkg/config"
	"fortune_shop/internal/pkg/mailer"
	"fortune_shop/internal/pkg/middleware"
	"fortune_shop/internal/pkg/registry"
	"fortune_shop/internal/pkg/uploader"
	"fortune_shop/pkg/cache"
	"fortune_shop/pkg/database"
	"fortune_shop/pkg/logger"
	"fortune_shop/pkg/metrics"

	// 各领域模块在 init 中注册
	_ "fortune_shop/internal/domain/cart"
	_ "fortune_shop/internal/domain/common"
	_ "fortune_shop/internal/domain/coupon"
	_ "fortune_shop/internal/domain/order"
	_ "fortune_shop/internal/domain/product"
	_ "fortune_shop/internal/domain/qna"
	_ "fortune_shop/internal/domain/review"
	_ "fortune_shop/internal/domain/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	config.LoadConfig()
	cfg := config.GlobalConfig

	if err := logger.InitLogger(cfg.App.Debug); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.InitDatabase()
	if err != nil {
		logger.Log.Fatal("database unavailable", zap.Error(err))
	}
	rdb, err := database.InitRedis()
	if err != nil {
		logger.Log.Fatal("redis unavailable", zap.Error(err))
	}
	storage, err := uploader.NewObjectStorage(cfg.Storage)
	if err != nil {
		logger.Log.Fatal("object storage unavailable", zap.Error(err))
	}
	mail, err := mailer.NewMailer(cfg.Mail)
	if err != nil {
		logger.Log.Fatal("mailer unavailable", zap.Error(err))
	}

	gin.SetMode(cfg.Server.Mode)
	collector := metrics.NewMetricsCollector()

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.TraceMiddleware(),
		middleware.LoggerMiddleware(),
		middleware.CORSMiddleware(cfg.Server.AllowOrigins),
		middleware.MetricsMiddleware(collector),
		// 每个 IP 每秒 20 个请求，突发 40
		middleware.RateLimitMiddleware(middleware.NewIPRateLimiter(rate.Limit(20), 40)),
	)
	// 结果文件最大 30MB，表单内存上限略大于该值
	r.MaxMultipartMemory = 32 << 20

	moduleCtx := &registry.ModuleContext{
		DB:         db,
		Redis:      rdb,
		Router:     r,
		Cache:      cache.NewRedisCache(rdb, cfg.Redis.Prefix),
		Storage:    storage,
		Mailer:     mail,
		Metrics:    collector,
		Transactor: database.NewTransactor(db),
	}
	if err := registry.InitModules(moduleCtx); err != nil {
		logger.Log.Fatal("init modules failed", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		// 上传 30MB 文件需要更长的写超时
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
	}

	// 后台任务
	stop := make(chan struct{})
	var jobs sync.WaitGroup
	for _, job := range moduleCtx.Jobs {
		jobs.Add(1)
		go func(j registry.BackgroundJob) {
			defer jobs.Done()
			j.Run(stop)
		}(job)
	}

	go func() {
		logger.Log.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("server shutdown failed", zap.Error(err))
	}
	close(stop)
	jobs.Wait()

	// 等待 worker pool 发完剩余邮件与券持久化任务
	if err := moduleCtx.Shutdown(ctx); err != nil {
		logger.Log.Error("module shutdown failed", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = rdb.Close()
	logger.Log.Info("server stopped")
}
