// Package main 是财务回填批处理入口
//
// 扫描历史终态订单，补齐缺失的骑手收入与结算状态字段，
// 可重复执行，已补齐的订单不会被二次修改。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/dumeirei/courier-backend/internal/common/config"
	"github.com/dumeirei/courier-backend/internal/common/database"
	"github.com/dumeirei/courier-backend/internal/common/logger"
	"github.com/dumeirei/courier-backend/internal/repository"
	financeService "github.com/dumeirei/courier-backend/internal/service/finance"
)

func main() {
	var (
		configPath = flag.String("config", "", "配置文件路径")
		batch      = flag.Int("batch", 0, "每批订单数，默认读取配置")
		logEvery   = flag.Int("log-every", 0, "进度日志间隔，默认读取配置")
		cursor     = flag.Int64("cursor", 0, "起始订单 ID 游标")
		dryRun     = flag.Bool("dry-run", false, "只计算不落库")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.GetLogger()

	db, err := database.Init(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if sqlDB, _ := db.DB(); sqlDB != nil {
			sqlDB.Close()
		}
	}()

	svc := financeService.NewBackfillService(
		repository.NewOrderRepository(db),
		repository.NewTransactionRepository(db),
		repository.NewRiderCommissionRepository(db),
		log,
	)

	opts := financeService.BackfillOptions{
		BatchSize:   cfg.Finance.BackfillBatchSize,
		LogEvery:    cfg.Finance.BackfillLogEvery,
		DryRun:      *dryRun,
		StartCursor: *cursor,
	}
	if *batch > 0 {
		opts.BatchSize = *batch
	}
	if *logEvery > 0 {
		opts.LogEvery = *logEvery
	}

	// Ctrl-C 中断时结束当前批并输出已累计的统计
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("财务回填开始",
		zap.Int("batch", opts.BatchSize),
		zap.Bool("dry_run", opts.DryRun),
		zap.Int64("cursor", opts.StartCursor),
	)

	report, err := svc.Run(ctx, opts)
	if err != nil && ctx.Err() == nil {
		log.Fatal("财务回填失败", zap.Error(err))
	}

	log.Info("财务回填结束",
		zap.Int("scanned", report.Scanned),
		zap.Int("earning_updated", report.EarningUpdated),
		zap.Int("status_updated", report.StatusUpdated),
		zap.Int("skipped", report.Skipped),
		zap.Int("errors", report.Errors),
		zap.Int64("last_cursor", report.LastCursor),
	)
	if ctx.Err() != nil {
		log.Warn("回填被信号中断，可用 -cursor 续跑", zap.Int64("cursor", report.LastCursor))
	}
}
