package models

import "time"

// CommissionType 佣金/收费计算方式
const (
	CommissionTypeFlat       = "FLAT"       // 固定金额
	CommissionTypePercentage = "PERCENTAGE" // 按比例
)

// CommissionConfig 商家收费配置（每个商家一条）
// 服务费按重量分段计费，退件时使用固定退件费
type CommissionConfig struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ShipperID    int64     `gorm:"uniqueIndex;not null" json:"shipper_id"`
	Type         string    `gorm:"type:varchar(20);not null;default:'FLAT'" json:"type"`
	Value        float64   `gorm:"type:decimal(12,2);not null;default:0" json:"value"`
	ReturnCharge float64   `gorm:"type:decimal(12,2);not null;default:0" json:"return_charge"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	Shipper  *Shipper        `gorm:"foreignKey:ShipperID" json:"shipper,omitempty"`
	Brackets []WeightBracket `gorm:"foreignKey:ConfigID" json:"brackets,omitempty"`
}

// TableName 表名
func (CommissionConfig) TableName() string {
	return "commission_configs"
}

// WeightBracket 重量分段
// 区间为左闭右开 [MinKg, MaxKg)，MaxKg 为空表示无上限（只允许出现在最后一段）
type WeightBracket struct {
	ID       int64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ConfigID int64    `gorm:"index;not null" json:"config_id"`
	MinKg    float64  `gorm:"type:decimal(8,3);not null;default:0" json:"min_kg"`
	MaxKg    *float64 `gorm:"type:decimal(8,3)" json:"max_kg,omitempty"`
	Charge   float64  `gorm:"type:decimal(12,2);not null" json:"charge"`
}

// TableName 表名
func (WeightBracket) TableName() string {
	return "weight_brackets"
}

// Contains 判断重量是否落在该分段内
func (b *WeightBracket) Contains(weightKg float64) bool {
	if weightKg < b.MinKg {
		return false
	}
	return b.MaxKg == nil || weightKg < *b.MaxKg
}

// RiderCommissionConfig 骑手佣金配置（每个骑手一条）
// 基础 Type/Value 之外可以按订单终态配置覆盖规则
type RiderCommissionConfig struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	RiderID   int64     `gorm:"uniqueIndex;not null" json:"rider_id"`
	Type      string    `gorm:"type:varchar(20)" json:"type"`
	Value     float64   `gorm:"type:decimal(12,2);not null;default:0" json:"value"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	Rider *Rider                `gorm:"foreignKey:RiderID" json:"rider,omitempty"`
	Rules []RiderCommissionRule `gorm:"foreignKey:ConfigID" json:"rules,omitempty"`
}

// TableName 表名
func (RiderCommissionConfig) TableName() string {
	return "rider_commission_configs"
}

// RiderCommissionRule 骑手佣金状态规则
// Status 取订单终态（DELIVERED/RETURNED/FAILED/OUT_FOR_DELIVERY）
type RiderCommissionRule struct {
	ID       int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	ConfigID int64   `gorm:"index;not null" json:"config_id"`
	Status   string  `gorm:"type:varchar(20);not null" json:"status"`
	Type     string  `gorm:"type:varchar(20);not null" json:"type"`
	Value    float64 `gorm:"type:decimal(12,2);not null" json:"value"`
}

// TableName 表名
func (RiderCommissionRule) TableName() string {
	return "rider_commission_rules"
}
