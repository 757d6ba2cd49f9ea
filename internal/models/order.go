// Package models 定义数据模型
package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderStatus 订单状态
const (
	OrderStatusPending        = "PENDING"          // 待分配
	OrderStatusAssigned       = "ASSIGNED"         // 已分配骑手
	OrderStatusOutForDelivery = "OUT_FOR_DELIVERY" // 派送中
	OrderStatusDelivered      = "DELIVERED"        // 已签收
	OrderStatusReturned       = "RETURNED"         // 已退回
	OrderStatusFailed         = "FAILED"           // 派送失败
	OrderStatusCancelled      = "CANCELLED"        // 已取消
)

// PaymentType 支付方式
const (
	PaymentTypeCOD     = "COD"     // 货到付款
	PaymentTypeAdvance = "ADVANCE" // 预付
)

// RiderSettlementStatus 骑手结算状态（订单上的冗余字段）
const (
	RiderSettlementPaid   = "PAID"   // 已结算
	RiderSettlementUnpaid = "UNPAID" // 未结算
)

// Order 快递订单模型
// 财务引擎只读写与财务相关的字段，订单的创建与状态流转由订单子系统维护
type Order struct {
	ID                    int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	BookingNo             string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"booking_no"`
	TrackingNo            string         `gorm:"type:varchar(64);index" json:"tracking_no"`
	ShipperID             int64          `gorm:"index;not null" json:"shipper_id"`
	AssignedRiderID       *int64         `gorm:"index" json:"assigned_rider_id,omitempty"`
	Status                string         `gorm:"type:varchar(20);index;not null;default:'PENDING'" json:"status"`
	PaymentType           string         `gorm:"type:varchar(10);not null;default:'COD'" json:"payment_type"`
	CODAmount             float64        `gorm:"type:decimal(12,2);not null;default:0" json:"cod_amount"`
	AmountCollected       *float64       `gorm:"type:decimal(12,2)" json:"amount_collected,omitempty"`
	WeightKg              float64        `gorm:"type:decimal(8,3);not null;default:0" json:"weight_kg"`
	ServiceCharges        float64        `gorm:"type:decimal(12,2);not null;default:0" json:"service_charges"`
	RiderEarning          float64        `gorm:"type:decimal(12,2);not null;default:0" json:"rider_earning"`
	RiderSettlementStatus *string        `gorm:"type:varchar(10)" json:"rider_settlement_status,omitempty"`
	ConsigneeName         string         `gorm:"type:varchar(100)" json:"consignee_name"`
	ConsigneePhone        string         `gorm:"type:varchar(20)" json:"consignee_phone"`
	ConsigneeAddress      string         `gorm:"type:varchar(255)" json:"consignee_address"`
	ConsigneeCity         string         `gorm:"type:varchar(50);index" json:"consignee_city"`
	Remark                *string        `gorm:"type:varchar(255)" json:"remark,omitempty"`
	DeliveredAt           *time.Time     `json:"delivered_at,omitempty"`
	CreatedAt             time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`

	// 关联
	Shipper     *Shipper              `gorm:"foreignKey:ShipperID" json:"shipper,omitempty"`
	Rider       *Rider                `gorm:"foreignKey:AssignedRiderID" json:"rider,omitempty"`
	Transaction *FinancialTransaction `gorm:"foreignKey:OrderID" json:"transaction,omitempty"`
}

// TableName 表名
func (Order) TableName() string {
	return "orders"
}

// IsTerminal 是否为终态（财务相关的最终状态）
func (o *Order) IsTerminal() bool {
	return IsTerminalStatus(o.Status)
}

// IsTerminalStatus 判断状态是否为终态
func IsTerminalStatus(status string) bool {
	switch status {
	case OrderStatusDelivered, OrderStatusReturned, OrderStatusFailed:
		return true
	}
	return false
}

// CollectedCOD 实际回收的货款
// 已签收的 COD 订单取实收金额，实收金额缺失时回退到报价金额；其余情况为 0
func (o *Order) CollectedCOD() float64 {
	if o.Status != OrderStatusDelivered || o.PaymentType != PaymentTypeCOD {
		return 0
	}
	if o.AmountCollected != nil {
		return *o.AmountCollected
	}
	return o.CODAmount
}
