package finance

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/dumeirei/courier-backend/internal/common/errors"
	"github.com/dumeirei/courier-backend/internal/common/utils"
	"github.com/dumeirei/courier-backend/internal/models"
	"github.com/dumeirei/courier-backend/internal/repository"
)

// LedgerService 公司总账服务
// 每行一单，骑手支出走回退链的前两级（冗余字段 -> 流水），不做现算；
// 骑手佣金无论是否已结算都计为公司成本
type LedgerService struct {
	orderRepo       *repository.OrderRepository
	transactionRepo *repository.TransactionRepository
	periodService   *PeriodService
	loc             *time.Location
	logger          *zap.Logger
}

// NewLedgerService 创建公司总账服务
func NewLedgerService(
	orderRepo *repository.OrderRepository,
	transactionRepo *repository.TransactionRepository,
	periodService *PeriodService,
	loc *time.Location,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		orderRepo:       orderRepo,
		transactionRepo: transactionRepo,
		periodService:   periodService,
		loc:             loc,
		logger:          logger,
	}
}

// LedgerRequest 公司总账查询参数
type LedgerRequest struct {
	RangeQuery
	ShipperID  *int64 `form:"shipper_id"`
	RiderID    *int64 `form:"rider_id"`
	Status     string `form:"status"`
	Settlement string `form:"settlement"` // PAID/UNPAID
	Search     string `form:"search"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

// LedgerResponse 公司总账响应
type LedgerResponse struct {
	Summary  models.LedgerSummary `json:"summary"`
	Items    []models.LedgerRow   `json:"items"`
	Total    int64                `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
}

// GetCompanyLedger 获取公司总账（按有效日期倒序，分页）
// 汇总是窗口级的，对全部命中行计算，与分页无关
func (s *LedgerService) GetCompanyLedger(ctx context.Context, req *LedgerRequest) (*LedgerResponse, error) {
	rows, err := s.CollectRows(ctx, req)
	if err != nil {
		return nil, err
	}

	summary := models.LedgerSummary{}
	for i := range rows {
		summary.TotalOrders++
		summary.TotalCOD += rows[i].CODEffective
		summary.TotalServiceCharges += rows[i].ServiceCharges
		summary.TotalRiderPaid += rows[i].RiderPaid
		summary.RiderPayoutPaid += rows[i].RiderPayoutPaid
		summary.RiderPayoutUnpaid += rows[i].RiderPayoutUnpaid
		summary.TotalCompanyProfit += rows[i].CompanyProfit
	}

	pagination := utils.Pagination{Page: req.Page, PageSize: req.PageSize}
	pagination.Normalize()
	start := pagination.GetOffset()
	if start > len(rows) {
		start = len(rows)
	}
	end := start + pagination.GetLimit()
	if end > len(rows) {
		end = len(rows)
	}

	return &LedgerResponse{
		Summary:  summary,
		Items:    rows[start:end],
		Total:    int64(len(rows)),
		Page:     pagination.Page,
		PageSize: pagination.PageSize,
	}, nil
}

// CollectRows 收集窗口内的全部总账行（导出和分页共用）
func (s *LedgerService) CollectRows(ctx context.Context, req *LedgerRequest) ([]models.LedgerRow, error) {
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
		Status:    req.Status,
		Search:    req.Search,
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

	rows := make([]models.LedgerRow, 0, len(inWindow))
	for _, order := range inWindow {
		tx := transactions[order.ID]
		row := s.buildRow(order, tx)

		if req.Settlement != "" && row.SettlementStatus != req.Settlement {
			continue
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].EffectiveDate.After(rows[j].EffectiveDate)
	})
	return rows, nil
}

// buildRow 由订单和流水构造总账行
func (s *LedgerService) buildRow(order *models.Order, tx *models.FinancialTransaction) models.LedgerRow {
	cod := order.CollectedCOD()
	if tx != nil {
		cod = tx.TotalCODCollected
	}

	riderPaid := EffectiveRiderEarning(order, tx, nil, false)
	settlement := EffectiveSettlementStatus(order, tx)

	row := models.LedgerRow{
		OrderID:          order.ID,
		BookingNo:        order.BookingNo,
		TrackingNo:       order.TrackingNo,
		Status:           order.Status,
		EffectiveDate:    EffectiveDate(order),
		CODEffective:     cod,
		ServiceCharges:   order.ServiceCharges,
		RiderPaid:        riderPaid,
		SettlementStatus: settlement,
		CompanyProfit:    order.ServiceCharges - riderPaid,
	}
	if tx != nil {
		row.CompanyCommission = tx.CompanyCommission
	}
	if order.Shipper != nil {
		row.ShipperName = order.Shipper.Name
	}
	if order.Rider != nil {
		row.RiderName = order.Rider.Name
	}

	if settlement == models.RiderSettlementPaid {
		row.RiderPayoutPaid = riderPaid
	} else {
		row.RiderPayoutUnpaid = riderPaid
	}
	return row
}
