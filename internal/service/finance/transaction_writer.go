package finance

import (
	"context"

	"go.uber.org/zap"

	"github.com/dumeirei/courier-backend/internal/common/metrics"
	"github.com/dumeirei/courier-backend/internal/models"
	"github.com/dumeirei/courier-backend/internal/repository"
)

// riderBalanceAccumulator 骑手货款余额累加接口
// 由 Redis 实现，签收后把回收的货款记入骑手的待上缴余额
type riderBalanceAccumulator interface {
	Accumulate(ctx context.Context, riderID int64, amount float64) error
}

// TransactionWriter 订单终态流水写入器
// 订单每次进入 DELIVERED/RETURNED/FAILED 时触发一次，按订单号覆盖写流水。
// 流水写入相对订单状态变更是尽力而为的：这里发生的任何错误只记日志，
// 绝不反过来让订单状态更新失败
type TransactionWriter struct {
	transactionRepo *repository.TransactionRepository
	commissionRepo  *repository.CommissionConfigRepository
	riderConfigRepo *repository.RiderCommissionRepository
	riderBalance    riderBalanceAccumulator
	logger          *zap.Logger
}

// NewTransactionWriter 创建流水写入器
func NewTransactionWriter(
	transactionRepo *repository.TransactionRepository,
	commissionRepo *repository.CommissionConfigRepository,
	riderConfigRepo *repository.RiderCommissionRepository,
	riderBalance riderBalanceAccumulator,
	logger *zap.Logger,
) *TransactionWriter {
	return &TransactionWriter{
		transactionRepo: transactionRepo,
		commissionRepo:  commissionRepo,
		riderConfigRepo: riderConfigRepo,
		riderBalance:    riderBalance,
		logger:          logger,
	}
}

// OnTerminalStatus 订单进入终态时触发
// 非终态直接跳过；计算与写入失败都会被吞掉并记录告警
func (w *TransactionWriter) OnTerminalStatus(ctx context.Context, order *models.Order) {
	if order == nil || !order.IsTerminal() {
		return
	}

	tx := w.buildTransaction(ctx, order)
	if err := w.transactionRepo.Upsert(ctx, tx); err != nil {
		w.logger.Error("财务流水写入失败",
			zap.Int64("order_id", order.ID),
			zap.String("status", order.Status),
			zap.Error(err),
		)
		return
	}
	metrics.RecordTransactionWrite(order.Status)

	// 签收后把回收货款累加到骑手余额，失败不影响流水
	if order.Status == models.OrderStatusDelivered && w.riderBalance != nil && order.AssignedRiderID != nil {
		if cod := order.CollectedCOD(); cod > 0 {
			if err := w.riderBalance.Accumulate(ctx, *order.AssignedRiderID, cod); err != nil {
				w.logger.Warn("骑手余额累加失败",
					zap.Int64("order_id", order.ID),
					zap.Int64("rider_id", *order.AssignedRiderID),
					zap.Error(err),
				)
			}
		}
	}
}

// buildTransaction 根据订单当前状态计算流水各项金额
func (w *TransactionWriter) buildTransaction(ctx context.Context, order *models.Order) *models.FinancialTransaction {
	// 历史数据里可能残留负的实收金额，落账前压到 0，
	// 否则签收压制会反向把骑手佣金压成负数
	cod := order.CollectedCOD()
	if cod < 0 {
		cod = 0
	}

	// 公司佣金：按商家配置对实收货款计算，并压到 [0, cod]
	var companyCommission float64
	if cod > 0 {
		config, err := w.commissionRepo.GetByShipperID(ctx, order.ShipperID)
		if err != nil {
			w.logger.Warn("商家佣金配置缺失，公司佣金按 0 计",
				zap.Int64("order_id", order.ID),
				zap.Int64("shipper_id", order.ShipperID),
				zap.Error(err),
			)
		} else {
			companyCommission = ResolveCommissionAmount(config.Type, config.Value, cod)
		}
		if companyCommission > cod {
			companyCommission = cod
		}
	}

	// 骑手佣金：签收单以实收货款为基数并压到 [0, cod]；
	// 退回/失败没有实收，以原报价为基数且不做压制
	var riderCommission float64
	if order.AssignedRiderID != nil {
		riderConfig, err := w.riderConfigRepo.GetByRiderID(ctx, *order.AssignedRiderID)
		if err != nil {
			w.logger.Warn("骑手佣金配置缺失，骑手佣金按 0 计",
				zap.Int64("order_id", order.ID),
				zap.Int64("rider_id", *order.AssignedRiderID),
				zap.Error(err),
			)
		} else {
			base := cod
			if order.Status != models.OrderStatusDelivered {
				base = order.CODAmount
			}
			riderCommission = ResolveRiderCommission(riderConfig, order.Status, base)
			if order.Status == models.OrderStatusDelivered && riderCommission > cod {
				riderCommission = cod
			}
		}
	}

	return &models.FinancialTransaction{
		OrderID:           order.ID,
		ShipperID:         order.ShipperID,
		RiderID:           order.AssignedRiderID,
		TotalCODCollected: cod,
		ShipperShare:      cod - companyCommission,
		CompanyCommission: companyCommission,
		RiderCommission:   riderCommission,
		SettlementStatus:  models.SettlementStatusUnpaid,
	}
}
