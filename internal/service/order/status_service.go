package order

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/courier-backend/internal/common/errors"
	"github.com/dumeirei/courier-backend/internal/common/utils"
	"github.com/dumeirei/courier-backend/internal/models"
	"github.com/dumeirei/courier-backend/internal/repository"
	financeService "github.com/dumeirei/courier-backend/internal/service/finance"
)

// terminalStatusHook 终态流转钩子
// 由财务引擎实现，写流水是尽力而为的，钩子不返回错误
type terminalStatusHook interface {
	OnTerminalStatus(ctx context.Context, order *models.Order)
}

// StatusService 订单状态服务
// 状态流转成功是第一位的，财务落账失败只记日志，永远不会让状态更新失败
type StatusService struct {
	db             *gorm.DB
	orderRepo      *repository.OrderRepository
	shipperRepo    *repository.ShipperRepository
	commissionRepo *repository.CommissionConfigRepository
	financeHook    terminalStatusHook
	logger         *zap.Logger
}

// NewStatusService 创建订单状态服务
func NewStatusService(
	db *gorm.DB,
	orderRepo *repository.OrderRepository,
	shipperRepo *repository.ShipperRepository,
	commissionRepo *repository.CommissionConfigRepository,
	financeHook terminalStatusHook,
	logger *zap.Logger,
) *StatusService {
	return &StatusService{
		db:             db,
		orderRepo:      orderRepo,
		shipperRepo:    shipperRepo,
		commissionRepo: commissionRepo,
		financeHook:    financeHook,
		logger:         logger,
	}
}

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	ShipperID        int64    `json:"shipper_id" binding:"required"`
	PaymentType      string   `json:"payment_type" binding:"required,oneof=COD ADVANCE"`
	CODAmount        float64  `json:"cod_amount" binding:"gte=0"`
	WeightKg         float64  `json:"weight_kg" binding:"gt=0"`
	ConsigneeName    string   `json:"consignee_name" binding:"required"`
	ConsigneePhone   string   `json:"consignee_phone" binding:"required"`
	ConsigneeAddress string   `json:"consignee_address" binding:"required"`
	ConsigneeCity    string   `json:"consignee_city"`
	Remark           *string  `json:"remark"`
}

// CreateOrder 创建订单
// 服务费在下单时就按商家的重量分段定死；重量落不进任何分段直接拒单
func (s *StatusService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*models.Order, error) {
	if _, err := s.shipperRepo.GetByID(ctx, req.ShipperID); err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrShipperNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	config, err := s.commissionRepo.GetByShipperID(ctx, req.ShipperID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrConfigurationMissing
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	serviceCharges, err := financeService.ResolveServiceCharge(config, req.WeightKg)
	if err != nil {
		return nil, errors.ErrNoMatchingBracket
	}

	order := &models.Order{
		BookingNo:        utils.GenerateOrderNo("BK"),
		TrackingNo:       utils.GenerateOrderNo("TK"),
		ShipperID:        req.ShipperID,
		Status:           models.OrderStatusPending,
		PaymentType:      req.PaymentType,
		CODAmount:        req.CODAmount,
		WeightKg:         req.WeightKg,
		ServiceCharges:   serviceCharges,
		ConsigneeName:    req.ConsigneeName,
		ConsigneePhone:   req.ConsigneePhone,
		ConsigneeAddress: req.ConsigneeAddress,
		ConsigneeCity:    req.ConsigneeCity,
		Remark:           req.Remark,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return order, nil
}

// UpdateStatusRequest 状态流转请求
type UpdateStatusRequest struct {
	Status          string   `json:"status" binding:"required"`
	AmountCollected *float64 `json:"amount_collected" binding:"omitempty,gte=0"`
	RiderID         *int64   `json:"rider_id"`
}

// allowedTransitions 允许的状态流转
// 终态之间允许互转，人工纠错（误点签收改退回等）依赖这一点
var allowedTransitions = map[string][]string{
	models.OrderStatusPending:        {models.OrderStatusAssigned, models.OrderStatusCancelled},
	models.OrderStatusAssigned:       {models.OrderStatusOutForDelivery, models.OrderStatusCancelled},
	models.OrderStatusOutForDelivery: {models.OrderStatusDelivered, models.OrderStatusReturned, models.OrderStatusFailed},
	models.OrderStatusDelivered:      {models.OrderStatusReturned, models.OrderStatusFailed},
	models.OrderStatusReturned:       {models.OrderStatusDelivered, models.OrderStatusFailed},
	models.OrderStatusFailed:         {models.OrderStatusDelivered, models.OrderStatusReturned, models.OrderStatusOutForDelivery},
}

// UpdateStatus 订单状态流转
// 进入终态时触发财务流水写入（写入失败不影响状态更新）
func (s *StatusService) UpdateStatus(ctx context.Context, orderID int64, req *UpdateStatusRequest) (*models.Order, error) {
	// 实收金额为负会顺着流水计算污染报表，直接拒绝
	if req.AmountCollected != nil && *req.AmountCollected < 0 {
		return nil, errors.ErrInvalidParams.WithMessage("实收金额不能为负数")
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrOrderNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	if order.Status == req.Status {
		// 重复提交同一状态按幂等处理
		return order, nil
	}
	if !transitionAllowed(order.Status, req.Status) {
		return nil, errors.ErrInvalidStatusTransition
	}

	if req.RiderID != nil {
		order.AssignedRiderID = req.RiderID
	}
	if req.Status == models.OrderStatusReturned {
		// 退件改按固定退件费计费
		if config, cfgErr := s.commissionRepo.GetByShipperID(ctx, order.ShipperID); cfgErr == nil && config.ReturnCharge > 0 {
			order.ServiceCharges = config.ReturnCharge
		}
	} else if order.Status == models.OrderStatusReturned {
		// 从退件纠错回其他状态时恢复按重量分段计的服务费
		if config, cfgErr := s.commissionRepo.GetByShipperID(ctx, order.ShipperID); cfgErr == nil {
			if charge, chargeErr := financeService.ResolveServiceCharge(config, order.WeightKg); chargeErr == nil {
				order.ServiceCharges = charge
			}
		}
	}
	if req.Status == models.OrderStatusDelivered {
		now := time.Now()
		order.DeliveredAt = &now
		if req.AmountCollected != nil {
			order.AmountCollected = req.AmountCollected
		}
	}
	order.Status = req.Status

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	// 财务落账：尽力而为，绝不反向影响状态更新
	if order.IsTerminal() && s.financeHook != nil {
		s.financeHook.OnTerminalStatus(ctx, order)
	}

	return order, nil
}

// transitionAllowed 判断状态流转是否允许
func transitionAllowed(from, to string) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
