// Package finance 提供财务对账引擎
// 佣金规则解析、订单流水落账、回退链取值、财务报表聚合与账期管理都在这个包内
package finance

import (
	"sort"
	"strings"

	"github.com/dumeirei/courier-backend/internal/common/errors"
	"github.com/dumeirei/courier-backend/internal/models"
)

// ResolveServiceCharge 按重量分段解析商家服务费
// 分段为左闭右开区间，命中唯一一段；重量落在所有分段之外返回 ErrNoMatchingBracket，
// 下单场景由调用方直接拒绝，报表场景按 0 处理并记录告警
func ResolveServiceCharge(config *models.CommissionConfig, weightKg float64) (float64, error) {
	if config == nil || len(config.Brackets) == 0 {
		return 0, errors.ErrConfigurationMissing
	}

	brackets := make([]models.WeightBracket, len(config.Brackets))
	copy(brackets, config.Brackets)
	sort.Slice(brackets, func(i, j int) bool {
		return brackets[i].MinKg < brackets[j].MinKg
	})

	for i := range brackets {
		if brackets[i].Contains(weightKg) {
			return brackets[i].Charge, nil
		}
	}
	return 0, errors.ErrNoMatchingBracket
}

// ResolveCommissionAmount 按类型计算佣金金额
// PERCENTAGE 按 base 的百分比计算，FLAT 取固定值；结果不小于 0
func ResolveCommissionAmount(commissionType string, value, base float64) float64 {
	var amount float64
	switch strings.ToUpper(strings.TrimSpace(commissionType)) {
	case models.CommissionTypePercentage:
		amount = base * value / 100
	case models.CommissionTypeFlat:
		amount = value
	default:
		amount = 0
	}
	if amount < 0 {
		return 0
	}
	return amount
}

// ResolveRiderCommission 解析骑手佣金
// 优先匹配与订单终态一致的状态规则，其次使用配置的基础类型/数值，都没有则为 0
func ResolveRiderCommission(config *models.RiderCommissionConfig, orderStatus string, codBase float64) float64 {
	if config == nil {
		return 0
	}

	status := strings.ToUpper(strings.TrimSpace(orderStatus))
	for i := range config.Rules {
		if strings.ToUpper(strings.TrimSpace(config.Rules[i].Status)) == status {
			return ResolveCommissionAmount(config.Rules[i].Type, config.Rules[i].Value, codBase)
		}
	}

	if config.Type != "" {
		return ResolveCommissionAmount(config.Type, config.Value, codBase)
	}
	return 0
}

// ValidateBrackets 校验重量分段配置
// 按 MinKg 排序后不允许区间重叠；无上限分段最多一个且必须在最后
func ValidateBrackets(brackets []models.WeightBracket) error {
	if len(brackets) == 0 {
		return errors.ErrInvalidBrackets.WithMessage("至少需要一个重量分段")
	}

	sorted := make([]models.WeightBracket, len(brackets))
	copy(sorted, brackets)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MinKg < sorted[j].MinKg
	})

	for i := range sorted {
		if sorted[i].MaxKg != nil && *sorted[i].MaxKg <= sorted[i].MinKg {
			return errors.ErrInvalidBrackets.WithMessage("分段上限必须大于下限")
		}
		if i == len(sorted)-1 {
			continue
		}
		if sorted[i].MaxKg == nil {
			return errors.ErrInvalidBrackets.WithMessage("无上限分段只能是最后一段")
		}
		if sorted[i+1].MinKg < *sorted[i].MaxKg {
			return errors.ErrInvalidBrackets.WithMessage("重量分段不允许重叠")
		}
	}
	return nil
}
