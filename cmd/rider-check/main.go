// Package main 是骑手对账诊断工具
//
// 对单个骑手输出指定窗口内的结算汇总，以及 Redis 中的 COD 代收
// 累计余额，用于排查报表口径与线上余额不一致的问题。
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/dumeirei/courier-backend/internal/common/cache"
	"github.com/dumeirei/courier-backend/internal/common/config"
	"github.com/dumeirei/courier-backend/internal/common/database"
	"github.com/dumeirei/courier-backend/internal/common/logger"
	"github.com/dumeirei/courier-backend/internal/repository"
	financeService "github.com/dumeirei/courier-backend/internal/service/finance"
	orderService "github.com/dumeirei/courier-backend/internal/service/order"
)

func main() {
	var (
		configPath = flag.String("config", "", "配置文件路径")
		riderID    = flag.Int64("rider", 0, "骑手 ID（必填）")
		quickRange = flag.String("range", "30d", "快捷范围 today/7d/15d/30d")
		from       = flag.String("from", "", "起始日期 YYYY-MM-DD")
		to         = flag.String("to", "", "截止日期 YYYY-MM-DD")
	)
	flag.Parse()

	if *riderID <= 0 {
		fmt.Println("用法: rider-check -rider <id> [-range 30d]")
		os.Exit(2)
	}

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

	redisClient, err := cache.Init(&cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	svc := financeService.NewRiderSettlementService(
		repository.NewOrderRepository(db),
		repository.NewTransactionRepository(db),
		repository.NewRiderCommissionRepository(db),
		repository.NewRiderRepository(db),
		cfg.Finance.Location(),
		log,
	)
	balance := orderService.NewRiderBalance(redisClient)

	ctx := context.Background()

	req := &financeService.RiderSettlementRequest{
		RiderID:  *riderID,
		Page:     1,
		PageSize: 1,
	}
	req.QuickRange = *quickRange
	req.From = *from
	req.To = *to

	resp, err := svc.GetRiderSettlements(ctx, req)
	if err != nil {
		log.Fatal("骑手结算查询失败", zap.Int64("rider_id", *riderID), zap.Error(err))
	}

	codBalance, err := balance.Get(ctx, *riderID)
	if err != nil {
		log.Warn("读取 COD 累计余额失败", zap.Int64("rider_id", *riderID), zap.Error(err))
	}

	out, _ := json.MarshalIndent(map[string]interface{}{
		"summary":           resp.Summary,
		"window_orders":     resp.Total,
		"redis_cod_balance": codBalance,
	}, "", "  ")
	fmt.Println(string(out))
}
