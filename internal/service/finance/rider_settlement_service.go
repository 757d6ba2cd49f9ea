package finance

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dumeirei/courier-backend/internal/common/errors"
	"github.com/dumeirei/courier-backend/internal/common/metrics"
	"github.com/dumeirei/courier-backend/internal/common/utils"
	"github.com/dumeirei/courier-backend/internal/models"
	"github.com/dumeirei/courier-backend/internal/repository"
)

// RiderSettlementService 骑手结算服务
// 管理端视图，启用回退链的完整三级取值（含按规则现算），
// 保证早于佣金规则创建的历史订单也能展示正确的应得金额
type RiderSettlementService struct {
	orderRepo       *repository.OrderRepository
	transactionRepo *repository.TransactionRepository
	riderConfigRepo *repository.RiderCommissionRepository
	riderRepo       *repository.RiderRepository
	loc             *time.Location
	logger          *zap.Logger
}

// NewRiderSettlementService 创建骑手结算服务
func NewRiderSettlementService(
	orderRepo *repository.OrderRepository,
	transactionRepo *repository.TransactionRepository,
	riderConfigRepo *repository.RiderCommissionRepository,
	riderRepo *repository.RiderRepository,
	loc *time.Location,
	logger *zap.Logger,
) *RiderSettlementService {
	return &RiderSettlementService{
		orderRepo:       orderRepo,
		transactionRepo: transactionRepo,
		riderConfigRepo: riderConfigRepo,
		riderRepo:       riderRepo,
		loc:             loc,
		logger:          logger,
	}
}

// RiderSettlementRequest 骑手结算查询参数
type RiderSettlementRequest struct {
	RangeQuery
	RiderID    int64  `form:"rider_id" binding:"required"`
	Status     string `form:"status"`
	Settlement string `form:"settlement"` // PAID/UNPAID
	Search     string `form:"search"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

// RiderSettlementResponse 骑手结算响应
type RiderSettlementResponse struct {
	Summary  models.RiderSettlementSummary `json:"summary"`
	Items    []models.RiderSettlementItem  `json:"items"`
	Total    int64                         `json:"total"`
	Page     int                           `json:"page"`
	PageSize int                           `json:"page_size"`
}

// GetRiderSettlements 获取骑手结算明细与窗口汇总
func (s *RiderSettlementService) GetRiderSettlements(ctx context.Context, req *RiderSettlementRequest) (*RiderSettlementResponse, error) {
	rider, err := s.riderRepo.GetByID(ctx, req.RiderID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrRiderNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	window := ResolveWindow(req.RangeQuery, time.Now(), s.loc)

	orders, err := s.orderRepo.ListTerminal(ctx, &repository.TerminalOrderFilter{
		RiderID: &req.RiderID,
		Status:  req.Status,
		Search:  req.Search,
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

	// 现算回退需要骑手的佣金配置，配置缺失按 0 处理
	riderConfig, err := s.riderConfigRepo.GetByRiderID(ctx, req.RiderID)
	if err != nil && !repository.IsNotFound(err) {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	summary := models.RiderSettlementSummary{
		RiderID:   rider.ID,
		RiderName: rider.Name,
	}
	items := make([]models.RiderSettlementItem, 0, len(inWindow))
	for _, order := range inWindow {
		tx := transactions[order.ID]

		earning := EffectiveRiderEarning(order, tx, riderConfig, true)
		settlement := EffectiveSettlementStatus(order, tx)
		item := models.RiderSettlementItem{
			OrderID:          order.ID,
			BookingNo:        order.BookingNo,
			TrackingNo:       order.TrackingNo,
			Status:           order.Status,
			EffectiveDate:    EffectiveDate(order),
			CODCollected:     order.CollectedCOD(),
			ServiceCharges:   order.ServiceCharges,
			RiderEarning:     earning,
			SettlementStatus: settlement,
		}
		if order.Shipper != nil {
			item.ShipperName = order.Shipper.Name
		}

		if req.Settlement != "" && settlement != req.Settlement {
			continue
		}
		items = append(items, item)

		summary.TotalOrders++
		switch order.Status {
		case models.OrderStatusDelivered:
			summary.DeliveredCount++
		case models.OrderStatusReturned:
			summary.ReturnedCount++
		case models.OrderStatusFailed:
			summary.FailedCount++
		}
		summary.TotalCODCollected += item.CODCollected
		summary.TotalServiceCharges += item.ServiceCharges
		summary.TotalRiderEarning += earning
		if settlement == models.RiderSettlementPaid {
			summary.PaidRiderEarning += earning
		} else {
			summary.UnpaidBalance += earning
		}
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].EffectiveDate.After(items[j].EffectiveDate)
	})

	pagination := utils.Pagination{Page: req.Page, PageSize: req.PageSize}
	pagination.Normalize()
	start := pagination.GetOffset()
	if start > len(items) {
		start = len(items)
	}
	end := start + pagination.GetLimit()
	if end > len(items) {
		end = len(items)
	}

	return &RiderSettlementResponse{
		Summary:  summary,
		Items:    items[start:end],
		Total:    int64(len(items)),
		Page:     pagination.Page,
		PageSize: pagination.PageSize,
	}, nil
}

// SetRiderSettlementByOrder 人工切换某订单的骑手结算状态
// 入参兼容遗留值（PENDING/SETTLED），落库前统一归一化；
// 转入 PAID 时流水记录结算时间与操作人，同时回写订单上的冗余状态字段
func (s *RiderSettlementService) SetRiderSettlementByOrder(ctx context.Context, orderID int64, status string, operatorID int64) error {
	normalized := NormalizeSettlementStatus(strings.ToUpper(strings.TrimSpace(status)))
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case models.SettlementStatusPaid, models.SettlementStatusUnpaid,
		models.SettlementStatusPending, models.SettlementStatusSettled:
	default:
		return errors.ErrInvalidSettlement
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if repository.IsNotFound(err) {
			return errors.ErrOrderNotFound
		}
		return errors.ErrDatabaseError.WithError(err)
	}
	if !order.IsTerminal() {
		return errors.ErrOrderNotTerminal
	}

	if err := s.transactionRepo.UpdateSettlement(ctx, orderID, normalized, &operatorID); err != nil {
		if repository.IsNotFound(err) {
			return errors.ErrTransactionNotFound
		}
		return errors.ErrDatabaseError.WithError(err)
	}

	// 订单冗余字段与流水保持一致，读路径的第一级回退才可信
	if err := s.orderRepo.UpdateFields(ctx, orderID, map[string]interface{}{
		"rider_settlement_status": normalized,
	}); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}

	metrics.RecordSettlementUpdate(normalized)
	s.logger.Info("骑手结算状态已更新",
		zap.Int64("order_id", orderID),
		zap.String("status", normalized),
		zap.Int64("operator_id", operatorID),
	)
	return nil
}
