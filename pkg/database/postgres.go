package database

import (
	"database/sql"
	"fmt"
	"time"
	"fortune_shop/internal/pkg/config"
	"fortune_shop/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// InitDatabase 初始化数据库连接
// 表结构由 cmd/migrate 维护，这里不做 AutoMigrate
func InitDatabase() (*gorm.DB, error) {
	cfg := config.GlobalConfig.Database

	logLevel := gormLogger.Warn
	if config.GlobalConfig.App.Debug {
		logLevel = gormLogger.Info
	}

	gormConfig := &gorm.Config{
		Logger:                                   gormLogger.Default.LogMode(logLevel),
		PrepareStmt:                              true,
		DisableForeignKeyConstraintWhenMigrating: true,
		// 唯一约束冲突转换为 gorm.ErrDuplicatedKey
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get underlying sql.DB: %w", err)
	}

	configureConnectionPool(sqlDB, cfg)
	return db, nil
}

// configureConnectionPool 配置数据库连接池
func configureConnectionPool(sqlDB *sql.DB, cfg config.DatabaseConfig) {
	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 20
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	// 空闲连接取最大连接数的 10%
	sqlDB.SetMaxIdleConns(maxOpen/10 + 1)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	logger.Log.Info("database connection pool configured", zap.Int("max_open", maxOpen))
}
