package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/WeBuildTech-AI/maintenance/backend/internal/config"
	"github.com/WeBuildTech-AI/maintenance/backend/internal/domain"
	"github.com/WeBuildTech-AI/maintenance/backend/internal/repository"
	"github.com/WeBuildTech-AI/maintenance/backend/internal/seed"
	"github.com/WeBuildTech-AI/maintenance/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var technicianCount int
	var csvPath string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机工单, 2: 从 CSV 导入工单)")
	flag.IntVar(&n, "n", 0, "要插入的工单数量，为 0 时使用 SEED_WORK_ORDER_COUNT")
	flag.IntVar(&technicianCount, "technicians", 5, "随机生成的技术员数量")
	flag.StringVar(&csvPath, "csv", "./internal/seed/data/work_orders.csv", "要导入的 CSV 文件")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n == 0 {
			n = cfg.Seed.WorkOrderCount
		}
		if n <= 0 || technicianCount < 0 {
			slog.Error("请输入合法的工单数量和技术员数量")
			return
		}

		// 随机技术员之外，也给基线技术员指派一些工单，让他们的行有实际负载
		technicians := make([]domain.Assignee, 0, technicianCount)
		for i := 0; i < technicianCount; i++ {
			technicians = append(technicians, utils.GenerateRandomTechnician())
		}
		baseline, err := seed.LoadBaseline(cfg.Workload.BaselinePath)
		if err != nil {
			slog.Error("无法加载基线数据", slog.String("error", err.Error()))
			return
		}
		for _, tech := range baseline.Technicians {
			technicians = append(technicians, domain.Assignee{Name: tech.Name, Team: tech.Team, Avatar: tech.Avatar})
		}

		cnt := 0
		for i := 0; i < n; i++ {
			wo := utils.GenerateRandomWorkOrder(technicians)
			if err := repo.CreateWorkOrder(wo); err != nil {
				slog.Error("无法插入工单", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入工单成功", slog.Int("count", cnt))
	case 2:
		if _, err := seed.SeedFromCSV(repo, csvPath); err != nil {
			slog.Error("导入工单失败", slog.String("path", csvPath), slog.String("error", err.Error()))
		}
	default:
		slog.Error("指定的操作非法")
	}
}
