// Package main 是应用程序入口
package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/courier-backend/internal/common/config"
	"github.com/dumeirei/courier-backend/internal/common/jwt"
	"github.com/dumeirei/courier-backend/internal/common/metrics"
	commonMiddleware "github.com/dumeirei/courier-backend/internal/common/middleware"
	adminHandler "github.com/dumeirei/courier-backend/internal/handler/admin"
	financeHandler "github.com/dumeirei/courier-backend/internal/handler/finance"
	orderHandler "github.com/dumeirei/courier-backend/internal/handler/order"
	"github.com/dumeirei/courier-backend/internal/middleware"
	"github.com/dumeirei/courier-backend/internal/repository"
	adminService "github.com/dumeirei/courier-backend/internal/service/admin"
	financeService "github.com/dumeirei/courier-backend/internal/service/finance"
	orderService "github.com/dumeirei/courier-backend/internal/service/order"
)

// setupRouter 设置路由
func setupRouter(
	r *gin.Engine,
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	redisClient *redis.Client,
) {
	// 创建 JWT 管理器
	jwtManager := jwt.NewManager(&jwt.Config{
		Secret:            cfg.JWT.Secret,
		AccessExpireTime:  cfg.JWT.AccessTokenDuration(),
		RefreshExpireTime: cfg.JWT.RefreshTokenDuration(),
		Issuer:            cfg.JWT.Issuer,
	})

	// 初始化仓储
	orderRepo := repository.NewOrderRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	commissionRepo := repository.NewCommissionConfigRepository(db)
	riderConfigRepo := repository.NewRiderCommissionRepository(db)
	shipperRepo := repository.NewShipperRepository(db)
	riderRepo := repository.NewRiderRepository(db)
	periodRepo := repository.NewFinancePeriodRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	opLogRepo := repository.NewOperationLogRepository(db)

	// 报表日界时区
	loc := cfg.Finance.Location()

	// 初始化服务
	riderBalance := orderService.NewRiderBalance(redisClient)
	transactionWriter := financeService.NewTransactionWriter(
		transactionRepo, commissionRepo, riderConfigRepo, riderBalance, logger)
	periodSvc := financeService.NewPeriodService(db, periodRepo, loc, logger)
	summarySvc := financeService.NewSummaryService(orderRepo, transactionRepo, periodSvc, loc, logger)
	ledgerSvc := financeService.NewLedgerService(orderRepo, transactionRepo, periodSvc, loc, logger)
	settlementSvc := financeService.NewRiderSettlementService(
		orderRepo, transactionRepo, riderConfigRepo, riderRepo, loc, logger)
	exportSvc := financeService.NewExportService(ledgerSvc)
	statusSvc := orderService.NewStatusService(
		db, orderRepo, shipperRepo, commissionRepo, transactionWriter, logger)
	authSvc := adminService.NewAdminAuthService(adminRepo, jwtManager, logger)

	// 初始化处理器
	financeH := financeHandler.NewHandler(summarySvc, ledgerSvc, settlementSvc, periodSvc, exportSvc)
	orderH := orderHandler.NewHandler(statusSvc)
	authH := adminHandler.NewAuthHandler(authSvc)
	opLogger := commonMiddleware.NewOperationLogger(opLogRepo)

	// 全局中间件
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RealIP())
	r.Use(middleware.CORS(nil))
	r.Use(middleware.AccessLog(logger))
	if cfg.Tracing.Enabled {
		r.Use(commonMiddleware.Tracing(&commonMiddleware.TracingConfig{
			ServiceName: cfg.Server.Name,
			SkipPaths:   []string{"/health", "/ping", "/ready", cfg.Metrics.Path},
		}))
	}
	if cfg.Metrics.Enabled {
		m := metrics.Init("")
		r.Use(m.Middleware())
		r.GET(cfg.Metrics.Path, metrics.Handler())
	}
	if cfg.RateLimit.Enabled {
		r.Use(middleware.RateLimit(&middleware.RateLimitConfig{
			RedisClient: redisClient,
			KeyPrefix:   "ratelimit:",
			Limit:       cfg.RateLimit.RequestsPerSecond,
			Window:      time.Second,
		}))
	}

	// 健康检查（不需要认证）
	r.GET("/health", healthHandler)
	r.GET("/ping", pingHandler)
	r.GET("/ready", readyHandler(db, redisClient))

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 管理后台 API
	admin := r.Group("/api/v1/admin")
	{
		// 登录（公开）
		authH.RegisterPublicRoutes(admin)

		// 需要管理员认证
		adminAuth := admin.Group("")
		adminAuth.Use(middleware.AdminAuth(jwtManager))
		adminAuth.Use(opLogger.Log())
		{
			authH.RegisterRoutes(adminAuth)
			orderH.RegisterRoutes(adminAuth)
			financeH.RegisterRoutes(adminAuth, middleware.ExportRateLimit(redisClient, 10))
		}
	}

	// 404 处理
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": "接口不存在",
		})
	})
}
