package finance

import (
	"math"
	"time"

	"github.com/dumeirei/courier-backend/internal/models"
)

// 有效骑手收入与有效结算状态的回退链
// 同一套取值逻辑被所有报表和历史回填共用，任何调用方都不允许自行重排优先级：
//   收入：订单冗余字段 -> 流水记录 -> （仅交互视图）按佣金规则现算
//   状态：订单冗余字段 -> 流水状态归一化 -> UNPAID

// EffectiveRiderEarning 计算展示用的骑手收入
// allowRecompute 控制是否启用第三级现算回退，只有交互/管理视图和历史回填开启
func EffectiveRiderEarning(order *models.Order, tx *models.FinancialTransaction, riderConfig *models.RiderCommissionConfig, allowRecompute bool) float64 {
	if order == nil {
		return 0
	}

	if v := sanitizeAmount(order.RiderEarning); v > 0 {
		return v
	}

	if tx != nil {
		if v := sanitizeAmount(tx.RiderCommission); v > 0 {
			return v
		}
	}

	if !allowRecompute || riderConfig == nil {
		return 0
	}

	// 已签收订单以实收金额为基数，退回/失败订单没有实收，以原报价为基数
	base := order.CODAmount
	if order.Status == models.OrderStatusDelivered {
		if order.AmountCollected != nil {
			base = *order.AmountCollected
		}
	}

	earning := sanitizeAmount(ResolveRiderCommission(riderConfig, order.Status, base))

	// 已签收订单的收入不允许超过实际回收的货款
	if order.Status == models.OrderStatusDelivered && earning > base {
		earning = base
	}
	return earning
}

// EffectiveSettlementStatus 计算展示用的结算状态，结果只会是 PAID 或 UNPAID
func EffectiveSettlementStatus(order *models.Order, tx *models.FinancialTransaction) string {
	if order != nil && order.RiderSettlementStatus != nil {
		switch *order.RiderSettlementStatus {
		case models.RiderSettlementPaid:
			return models.RiderSettlementPaid
		case models.RiderSettlementUnpaid:
			return models.RiderSettlementUnpaid
		}
	}

	if tx != nil {
		return NormalizeSettlementStatus(tx.SettlementStatus)
	}
	return models.RiderSettlementUnpaid
}

// NormalizeSettlementStatus 归一化流水结算状态（含遗留值）
func NormalizeSettlementStatus(status string) string {
	switch status {
	case models.SettlementStatusPaid, models.SettlementStatusSettled:
		return models.RiderSettlementPaid
	}
	return models.RiderSettlementUnpaid
}

// EffectiveDate 订单在所有财务报表中统一使用的业务日期
// 已签收订单取签收时间（缺失时退回更新时间、创建时间），其余终态取最后更新时间
func EffectiveDate(order *models.Order) time.Time {
	if order.Status == models.OrderStatusDelivered && order.DeliveredAt != nil {
		return *order.DeliveredAt
	}
	if !order.UpdatedAt.IsZero() {
		return order.UpdatedAt
	}
	return order.CreatedAt
}

// DayStart 当地时区的当日零点
func DayStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DayEnd 当地时区的当日最后一纳秒
func DayEnd(t time.Time, loc *time.Location) time.Time {
	return DayStart(t, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// sanitizeAmount 非法金额（NaN/Inf/负数）一律按 0 处理
func sanitizeAmount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
