package registry

import (
	"context"
	"fmt"
	"sort"
	"fortune_shop/internal/pkg/mailer"
	"fortune_shop/internal/pkg/uploader"
	"fortune_shop/pkg/cache"
	"fortune_shop/pkg/database"
	"fortune_shop/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ModuleContext 模块初始化所需的上下文
type ModuleContext struct {
	DB         *gorm.DB
	Redis      *redis.Client
	Router     *gin.Engine
	Cache      cache.CacheService
	Storage    uploader.ObjectStorage
	Mailer     mailer.Mailer
	Metrics    *metrics.MetricsCollector
	Transactor database.Transactor

	// Jobs 模块注册的后台任务，由 main 统一启动
	Jobs []BackgroundJob
	// ShutdownHooks 优雅退出时按注册的逆序执行
	ShutdownHooks []func(ctx context.Context) error
}

// BackgroundJob 后台定时任务
type BackgroundJob interface {
	Name() string
	Run(stop <-chan struct{})
}

// AddJob 注册后台任务
func (c *ModuleContext) AddJob(job BackgroundJob) {
	c.Jobs = append(c.Jobs, job)
}

// OnShutdown 注册退出钩子（如停止 worker pool）
func (c *ModuleContext) OnShutdown(fn func(ctx context.Context) error) {
	c.ShutdownHooks = append(c.ShutdownHooks, fn)
}

// Shutdown 逆序执行退出钩子，返回第一个错误
func (c *ModuleContext) Shutdown(ctx context.Context) error {
	var first error
	for i := len(c.ShutdownHooks) - 1; i >= 0; i-- {
		if err := c.ShutdownHooks[i](ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Module 模块接口
type Module interface {
	// Name 返回模块名称
	Name() string

	// Init 初始化模块（依赖注入、路由注册等）
	Init(ctx *ModuleContext) error

	// Priority 返回初始化优先级（数字越小越先初始化）
	Priority() int
}

// moduleRegistry 全局模块注册表
var moduleRegistry = make(map[string]Module)

// Register 注册模块，重名直接 panic（只会发生在 init 阶段）
func Register(module Module) {
	if _, exists := moduleRegistry[module.Name()]; exists {
		panic(fmt.Sprintf("module %s registered twice", module.Name()))
	}
	moduleRegistry[module.Name()] = module
}

// GetModules 获取所有已注册的模块
func GetModules() map[string]Module {
	return moduleRegistry
}

// sortedModules 按优先级排序，同优先级按名称，保证顺序稳定
func sortedModules(registry map[string]Module) []Module {
	modules := make([]Module, 0, len(registry))
	for _, m := range registry {
		modules = append(modules, m)
	}
	sort.Slice(modules, func(i, j int) bool {
		if modules[i].Priority() != modules[j].Priority() {
			return modules[i].Priority() < modules[j].Priority()
		}
		return modules[i].Name() < modules[j].Name()
	})
	return modules
}

// InitModules 按优先级初始化所有模块
func InitModules(ctx *ModuleContext) error {
	for _, module := range sortedModules(moduleRegistry) {
		if err := module.Init(ctx); err != nil {
			return fmt.Errorf("init module %s: %w", module.Name(), err)
		}
	}
	return nil
}
