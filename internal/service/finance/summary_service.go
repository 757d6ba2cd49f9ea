package finance

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dumeirei/courier-backend/internal/common/errors"
	"github.com/dumeirei/courier-backend/internal/models"
	"github.com/dumeirei/courier-backend/internal/repository"
)

// SummaryService 公司财务汇总服务
// 汇总只使用已落账的流水金额（§回退链的第二级映射），不走现算回退，
// 这让汇总口径与流水完全一致，代价是遗留零佣金订单在这里不显示现算值
type SummaryService struct {
	orderRepo       *repository.OrderRepository
	transactionRepo *repository.TransactionRepository
	periodService   *PeriodService
	loc             *time.Location
	logger          *zap.Logger
}

// NewSummaryService 创建财务汇总服务
func NewSummaryService(
	orderRepo *repository.OrderRepository,
	transactionRepo *repository.TransactionRepository,
	periodService *PeriodService,
	loc *time.Location,
	logger *zap.Logger,
) *SummaryService {
	return &SummaryService{
		orderRepo:       orderRepo,
		transactionRepo: transactionRepo,
		periodService:   periodService,
		loc:             loc,
		logger:          logger,
	}
}

// SummaryRequest 公司汇总查询参数
type SummaryRequest struct {
	RangeQuery
	ShipperID *int64 `form:"shipper_id"`
	RiderID   *int64 `form:"rider_id"`
}

// GetCompanySummary 获取公司财务汇总
// 未显式传日期时默认使用当前 OPEN 账期作为窗口
func (s *SummaryService) GetCompanySummary(ctx context.Context, req *SummaryRequest) (*models.CompanySummary, error) {
	window := ResolveWindow(req.RangeQuery, time.Now(), s.loc)
	if window.IsZero() {
		period, err := s.periodService.GetOpenPeriod(ctx)
		if err != nil {
			return nil, errors.ErrDatabaseError.WithError(err)
		}
		window = PeriodWindow(period.PeriodStart, s.loc)
	}

	orders, err := s.orderRepo.ListTerminal(ctx, &repository.TerminalOrderFilter{
		ShipperID: req.ShipperID,
		RiderID:   req.RiderID,
	})
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	inWindow := make([]*models.Order, 0, len(orders))
	orderIDs := make([]int64, 0, len(orders))
	for _, order := range orders {
		if !window.Contains(EffectiveDate(order)) {
			continue
		}
		inWindow = append(inWindow, order)
		orderIDs = append(orderIDs, order.ID)
	}

	transactions, err := s.transactionRepo.MapByOrderIDs(ctx, orderIDs)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	summary := &models.CompanySummary{}
	for _, order := range inWindow {
		summary.TotalOrders++
		switch order.Status {
		case models.OrderStatusDelivered:
			summary.DeliveredCount++
		case models.OrderStatusReturned:
			summary.ReturnedCount++
		case models.OrderStatusFailed:
			summary.FailedCount++
		}

		tx := transactions[order.ID]

		cod := order.CollectedCOD()
		if tx != nil {
			cod = tx.TotalCODCollected
		}
		summary.TotalCODCollected += cod
		summary.TotalServiceCharges += order.ServiceCharges

		// 汇总口径：骑手支出取流水上已记录的佣金
		var riderPaid float64
		if tx != nil {
			riderPaid = tx.RiderCommission
			summary.TotalCompanyCommission += tx.CompanyCommission
			summary.TotalShipperShare += tx.ShipperShare
		}
		summary.TotalRiderServiceCharges += riderPaid

		if tx != nil && NormalizeSettlementStatus(tx.SettlementStatus) == models.RiderSettlementPaid {
			summary.PaidRiderServiceCharges += riderPaid
		} else {
			summary.UnpaidRiderServiceCharges += riderPaid
		}
	}

	summary.NetCompanyIncome = summary.TotalServiceCharges - summary.TotalRiderServiceCharges
	return summary, nil
}
