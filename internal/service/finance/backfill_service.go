package finance

import (
	"context"

	"go.uber.org/zap"

	"github.com/dumeirei/courier-backend/internal/common/metrics"
	"github.com/dumeirei/courier-backend/internal/models"
	"github.com/dumeirei/courier-backend/internal/repository"
)

// BackfillService 历史订单财务字段回填
// 批处理所有已分配骑手的终态订单，把回退链算出的骑手收入与结算状态
// 固化到订单冗余字段上，让后续读路径直接命中第一级回退。
// 可重复执行：已持有正收入的订单不会被覆盖，二次执行是空操作
type BackfillService struct {
	orderRepo       *repository.OrderRepository
	transactionRepo *repository.TransactionRepository
	riderConfigRepo *repository.RiderCommissionRepository
	logger          *zap.Logger
}

// NewBackfillService 创建回填服务
func NewBackfillService(
	orderRepo *repository.OrderRepository,
	transactionRepo *repository.TransactionRepository,
	riderConfigRepo *repository.RiderCommissionRepository,
	logger *zap.Logger,
) *BackfillService {
	return &BackfillService{
		orderRepo:       orderRepo,
		transactionRepo: transactionRepo,
		riderConfigRepo: riderConfigRepo,
		logger:          logger,
	}
}

// BackfillOptions 回填参数
type BackfillOptions struct {
	BatchSize   int  // 每批订单数，默认 200
	LogEvery    int  // 进度日志间隔（订单数），默认 500
	DryRun      bool // 只计算不落库
	StartCursor int64
}

// BackfillReport 回填结果统计
type BackfillReport struct {
	Scanned         int   `json:"scanned"`
	EarningUpdated  int   `json:"earning_updated"`
	StatusUpdated   int   `json:"status_updated"`
	Skipped         int   `json:"skipped"`
	Errors          int   `json:"errors"`
	LastCursor      int64 `json:"last_cursor"`
}

// Run 执行回填
// 按主键游标分批扫描，逐单独立提交；单个订单出错记日志后继续，
// 不会让整个批处理中断
func (s *BackfillService) Run(ctx context.Context, opts BackfillOptions) (*BackfillReport, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 200
	}
	if opts.LogEvery <= 0 {
		opts.LogEvery = 500
	}

	report := &BackfillReport{LastCursor: opts.StartCursor}
	cursor := opts.StartCursor

	for {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}

		orders, err := s.orderRepo.ListTerminalAssignedAfter(ctx, cursor, opts.BatchSize)
		if err != nil {
			return report, err
		}
		if len(orders) == 0 {
			break
		}

		for _, order := range orders {
			cursor = order.ID
			report.LastCursor = cursor
			report.Scanned++

			if err := s.processOrder(ctx, order, opts.DryRun, report); err != nil {
				report.Errors++
				s.logger.Warn("回填单个订单失败，跳过",
					zap.Int64("order_id", order.ID),
					zap.Error(err),
				)
			}

			if report.Scanned%opts.LogEvery == 0 {
				s.logger.Info("回填进度",
					zap.Int("scanned", report.Scanned),
					zap.Int("earning_updated", report.EarningUpdated),
					zap.Int("status_updated", report.StatusUpdated),
					zap.Int64("cursor", cursor),
				)
			}
		}
	}

	s.logger.Info("回填完成",
		zap.Int("scanned", report.Scanned),
		zap.Int("earning_updated", report.EarningUpdated),
		zap.Int("status_updated", report.StatusUpdated),
		zap.Int("skipped", report.Skipped),
		zap.Int("errors", report.Errors),
	)
	return report, nil
}

// processOrder 回填单个订单
func (s *BackfillService) processOrder(ctx context.Context, order *models.Order, dryRun bool, report *BackfillReport) error {
	fields := map[string]interface{}{}

	// 骑手收入：只修复 0/缺失，正值视为权威数据绝不覆盖
	if order.RiderEarning <= 0 {
		tx, err := s.transactionRepo.GetByOrderID(ctx, order.ID)
		if err != nil && !repository.IsNotFound(err) {
			return err
		}

		var riderConfig *models.RiderCommissionConfig
		if order.AssignedRiderID != nil {
			riderConfig, err = s.riderConfigRepo.GetByRiderID(ctx, *order.AssignedRiderID)
			if err != nil && !repository.IsNotFound(err) {
				return err
			}
		}

		earning := EffectiveRiderEarning(order, tx, riderConfig, true)
		if earning > 0 && earning != order.RiderEarning {
			fields["rider_earning"] = earning
			report.EarningUpdated++
		}

		// 结算状态缺失时一并补齐，流水有记录的以流水为准，否则默认未结算
		if order.RiderSettlementStatus == nil {
			fields["rider_settlement_status"] = EffectiveSettlementStatus(order, tx)
			report.StatusUpdated++
		}
	} else if order.RiderSettlementStatus == nil {
		tx, err := s.transactionRepo.GetByOrderID(ctx, order.ID)
		if err != nil && !repository.IsNotFound(err) {
			return err
		}
		fields["rider_settlement_status"] = EffectiveSettlementStatus(order, tx)
		report.StatusUpdated++
	}

	if len(fields) == 0 {
		report.Skipped++
		return nil
	}
	if dryRun {
		return nil
	}

	if err := s.orderRepo.UpdateFields(ctx, order.ID, fields); err != nil {
		return err
	}
	metrics.RecordBackfillRepair(len(fields))
	return nil
}
