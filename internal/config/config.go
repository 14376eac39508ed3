package config

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	// 令牌由外部的身份服务签发，这里只负责校验
	JWT struct {
		Secret string `env:"SECRET,required"`
		Issuer string `env:"ISSUER"`
	} `envPrefix:"JWT_"`
	CORS struct {
		AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	} `envPrefix:"CORS_"`
	Workload struct {
		HoursPerDay     float64 `env:"HOURS_PER_DAY" envDefault:"7"`
		MaxWeekOffset   int     `env:"MAX_WEEK_OFFSET" envDefault:"52"`
		BaselinePath    string  `env:"BASELINE_PATH"` // 为空时使用内置的演示基线
		QueueOrder      string  `env:"QUEUE_ORDER" envDefault:"legacy"`
		Timezone        string  `env:"TIMEZONE" envDefault:"Local"`
		CacheExpiration int     `env:"CACHE_EXPIRATION" envDefault:"300"` // 5 分钟
	} `envPrefix:"WORKLOAD_"`
	Seed struct {
		WorkOrderCount int `env:"WORK_ORDER_COUNT" envDefault:"40"`
	} `envPrefix:"SEED_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
		PrefetchCount  int    `env:"PREFETCH_COUNT" envDefault:"4"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host                string `env:"HOST" envDefault:"localhost"`
		Port                int    `env:"PORT" envDefault:"6379"`
		Password            string `env:"PASSWORD"`
		ConnectTimeout      int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		OperationExpiration int    `env:"OPERATION_EXPIRATION" envDefault:"10"`
	} `envPrefix:"REDIS_"`
}

var ErrInvalidQueueOrder = errors.New("WORKLOAD_QUEUE_ORDER 只能是 legacy 或 ranked")

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok && len(aggErr.Errors) > 0 {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	switch cfg.Workload.QueueOrder {
	case "legacy", "ranked":
	default:
		return nil, ErrInvalidQueueOrder
	}

	return cfg, nil
}

// SlogLevel 把 LOG_LEVEL 转换成 slog 的级别，无法识别时按 info 处理
func (cfg *Config) SlogLevel() slog.Level {
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Location 返回排程使用的时区，"今天" 以这个时区为准
func (cfg *Config) Location() (*time.Location, error) {
	return time.LoadLocation(cfg.Workload.Timezone)
}
