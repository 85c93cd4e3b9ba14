package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	App      AppConfig      `mapstructure:"app"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Mail     MailConfig     `mapstructure:"mail"`
	Bank     BankConfig     `mapstructure:"bank"`
	OAuth    OAuthConfig    `mapstructure:"oauth"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
}

type ServerConfig struct {
	Port         string   `mapstructure:"port"`
	Mode         string   `mapstructure:"mode"`
	BaseURL      string   `mapstructure:"base_url"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	DBName       string `mapstructure:"dbname"`
	Port         string `mapstructure:"port"`
	SSLMode      string `mapstructure:"sslmode"`
	TimeZone     string `mapstructure:"timezone"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

// DSN gorm postgres 连接串
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.Host, c.User, c.Password, c.DBName, c.Port, c.SSLMode, c.TimeZone)
}

// URL golang-migrate 使用的 URL 形式
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Expire int64  `mapstructure:"expire"` // 小时
}

type AppConfig struct {
	Env         string   `mapstructure:"env"`
	Debug       bool     `mapstructure:"debug"`
	AdminEmails []string `mapstructure:"admin_emails"`
}

// StorageConfig 对象存储，provider 取 minio 或 oss
type StorageConfig struct {
	Provider        string `mapstructure:"provider"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	PublicBaseURL   string `mapstructure:"public_base_url"`
	ResultBucket    string `mapstructure:"result_bucket"`
	ReviewBucket    string `mapstructure:"review_bucket"`
}

type MailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// BankConfig 银行转账收款账户
type BankConfig struct {
	BankName      string `mapstructure:"bank_name"`
	AccountNumber string `mapstructure:"account_number"`
	AccountHolder string `mapstructure:"account_holder"`
	DepositHours  int    `mapstructure:"deposit_hours"` // 入金期限（小时）
}

type OAuthConfig struct {
	SessionSecret      string `mapstructure:"session_secret"`
	KakaoClientID      string `mapstructure:"kakao_client_id"`
	KakaoClientSecret  string `mapstructure:"kakao_client_secret"`
	GoogleClientID     string `mapstructure:"google_client_id"`
	GoogleClientSecret string `mapstructure:"google_client_secret"`
}

type JobsConfig struct {
	CronSecret      string        `mapstructure:"cron_secret"`
	FileRetention   time.Duration `mapstructure:"file_retention"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"` // 0 表示只走 HTTP 触发
}

var GlobalConfig Config

// Validate 验证配置
func (c *Config) Validate() error {
	if c.JWT.Secret == "" || c.JWT.Secret == "your_super_secret_key" {
		return errors.New("please set a secure JWT secret")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("JWT secret should be at least 32 characters")
	}

	if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
		return errors.New("database configuration is incomplete")
	}

	if c.Redis.Addr == "" {
		return errors.New("redis address is required")
	}

	switch c.Storage.Provider {
	case "minio", "oss":
	default:
		return fmt.Errorf("unsupported storage provider %q", c.Storage.Provider)
	}
	if c.Storage.ResultBucket == "" || c.Storage.ReviewBucket == "" {
		return errors.New("storage buckets are required")
	}

	if c.Jobs.FileRetention <= 0 {
		return errors.New("jobs.file_retention must be positive")
	}
	return nil
}

// setDefaults 默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "Asia/Seoul")
	v.SetDefault("database.port", "5432")
	v.SetDefault("jwt.expire", 24)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "fortune-shop:")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.debug", true)
	v.SetDefault("storage.provider", "minio")
	v.SetDefault("storage.result_bucket", "order-results")
	v.SetDefault("storage.review_bucket", "reviews")
	v.SetDefault("mail.port", 587)
	v.SetDefault("bank.deposit_hours", 72)
	v.SetDefault("jobs.file_retention", 30*24*time.Hour)
	v.SetDefault("jobs.cleanup_interval", 0)
}

var secretKeys = []string{
	"jwt.secret",
	"database.host",
	"database.user",
	"database.password",
	"database.dbname",
	"redis.password",
	"storage.endpoint",
	"storage.access_key_id",
	"storage.access_key_secret",
	"mail.host",
	"mail.username",
	"mail.password",
	"oauth.session_secret",
	"oauth.kakao_client_id",
	"oauth.kakao_client_secret",
	"oauth.google_client_id",
	"oauth.google_client_secret",
	"jobs.cron_secret",
}

// Load 读取配置文件与环境变量
// 环境变量规则：server.port -> SERVER_PORT
func Load() (*Config, error) {
	// .env 只在本地开发时存在
	_ = godotenv.Load()

	env := os.Getenv("APP_ENV")
	configName := "config"
	if env != "" && env != "dev" {
		configName = "config." + env
	}

	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	// 没有默认值的敏感项需要显式绑定，否则 Unmarshal 读不到环境变量
	for _, key := range secretKeys {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		log.Printf("Warning: config file %s not found, using defaults and env vars", configName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// LoadConfig 加载配置到 GlobalConfig，失败直接退出
func LoadConfig() {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Configuration failed: %v", err)
	}
	GlobalConfig = *cfg
	log.Printf("Configuration loaded and validated successfully. Environment: %s", GlobalConfig.App.Env)
}
