package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/WeBuildTech-AI/maintenance/backend/internal/cache"
	"github.com/WeBuildTech-AI/maintenance/backend/internal/config"
	"github.com/WeBuildTech-AI/maintenance/backend/internal/events"
	"github.com/WeBuildTech-AI/maintenance/backend/internal/repository"
	"github.com/WeBuildTech-AI/maintenance/backend/internal/seed"
	"github.com/WeBuildTech-AI/maintenance/backend/internal/worker"
	"github.com/WeBuildTech-AI/maintenance/backend/internal/workload"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	/**********************************************
	 * 读取配置文件
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("无法读取配置文件", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	/**********************************************
	 * 连接数据库
	 **********************************************/
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	pingCtx, pingCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer pingCancel()
	if err := dbpool.PingContext(pingCtx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	/**********************************************
	 * 创建排程器和缓存
	 **********************************************/
	baseline, err := seed.LoadBaseline(cfg.Workload.BaselinePath)
	if err != nil {
		logger.Error("无法加载基线数据", "path", cfg.Workload.BaselinePath, "error", err)
		return
	}
	order, err := workload.QueueOrderByName(cfg.Workload.QueueOrder)
	if err != nil {
		logger.Error("无法创建排程器", "error", err)
		return
	}
	planner, err := workload.New(workload.Options{
		HoursPerDay: cfg.Workload.HoursPerDay,
		Baseline:    baseline,
		QueueOrder:  order,
	})
	if err != nil {
		logger.Error("无法创建排程器", "error", err)
		return
	}

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("无法加载时区", "timezone", cfg.Workload.Timezone, "error", err)
		return
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password:    cfg.Redis.Password,
		DB:          0,
		DialTimeout: time.Duration(cfg.Redis.ConnectTimeout) * time.Second,
	})
	defer rdb.Close()

	prewarmer := worker.NewPrewarmer(repo, planner, cache.NewWorkloadCache(cfg, rdb), loc)

	/**********************************************
	 * 连接 RabbitMQ
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("无法连接到 RabbitMQ", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	// 创建通道
	ch, err := conn.Channel()
	if err != nil {
		logger.Error("无法创建通道", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	// 一次只取少量消息，避免重启时积压的事件同时触发大量重算
	if err := ch.Qos(cfg.RabbitMQ.PrefetchCount, 0, false); err != nil {
		logger.Error("无法设置预取数量", slog.String("error", err.Error()))
		return
	}

	q, err := events.DeclareQueue(ch)
	if err != nil {
		logger.Error("无法声明队列", slog.String("error", err.Error()))
		return
	}

	// 监听 CTRL+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// 消费消息
	msgs, err := ch.Consume(
		q.Name, // 队列
		"",     // 消费者标识，由 RabbitMQ 自动分配
		false,  // 手动确认
		false,  // 非独占
		false,  // RabbitMQ 不支持 noLocal
		false,  // 等待 RabbitMQ 响应
		nil,
	)
	if err != nil {
		logger.Error("无法消费消息", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 用于关闭 goroutine 的上下文
	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Warn("消息通道已关闭")
					return
				}

				err := prewarmer.Handle(ctx, msg.Body)
				if err == nil {
					_ = msg.Ack(false)
					continue
				}

				var malformed *worker.MalformedEventError
				if errors.As(err, &malformed) {
					logger.Error("丢弃无法解析的消息", slog.String("body", string(msg.Body)), slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				logger.Error("预热缓存失败", slog.String("error", err.Error()))
				_ = msg.Nack(false, true) // 将消息重新入队
			}
		}
	}()

	// 启动时先预热一次，redis 里可能没有任何缓存
	if err := prewarmer.Prewarm(ctx); err != nil {
		logger.Warn("启动时预热缓存失败", slog.String("error", err.Error()))
	}

	// 等待 CTRL+C 信号
	logger.Info("等待消息...（按 CTRL+C 退出）")
	<-sigChan

	// 优雅退出
	logger.Info("正在关闭 worker...")
	cancel()
	wg.Wait() // 等待所有 goroutine 完成
	logger.Info("worker 已成功关闭")
}
