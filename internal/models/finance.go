package models

import "time"

// SettlementStatus 交易结算状态
// PENDING/SETTLED 为历史遗留值，对外展示时统一归一化为 UNPAID/PAID
const (
	SettlementStatusUnpaid  = "UNPAID"
	SettlementStatusPaid    = "PAID"
	SettlementStatusPending = "PENDING" // 遗留值，等价于 UNPAID
	SettlementStatusSettled = "SETTLED" // 遗留值，等价于 PAID
)

// FinancePeriodStatus 财务账期状态
const (
	FinancePeriodOpen   = "OPEN"   // 当前账期
	FinancePeriodClosed = "CLOSED" // 已关账
)

// FinancialTransaction 订单财务流水（每个订单最多一条，按订单号覆盖写）
type FinancialTransaction struct {
	ID                int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID           int64      `gorm:"uniqueIndex;not null" json:"order_id"`
	ShipperID         int64      `gorm:"index;not null" json:"shipper_id"`
	RiderID           *int64     `gorm:"index" json:"rider_id,omitempty"`
	TotalCODCollected float64    `gorm:"type:decimal(12,2);not null;default:0" json:"total_cod_collected"`
	ShipperShare      float64    `gorm:"type:decimal(12,2);not null;default:0" json:"shipper_share"`
	CompanyCommission float64    `gorm:"type:decimal(12,2);not null;default:0" json:"company_commission"`
	RiderCommission   float64    `gorm:"type:decimal(12,2);not null;default:0" json:"rider_commission"`
	SettlementStatus  string     `gorm:"type:varchar(10);not null;default:'UNPAID'" json:"settlement_status"`
	PaidAt            *time.Time `json:"paid_at,omitempty"`
	PaidBy            *int64     `json:"paid_by,omitempty"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	Order   *Order   `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	Shipper *Shipper `gorm:"foreignKey:ShipperID" json:"shipper,omitempty"`
	Rider   *Rider   `gorm:"foreignKey:RiderID" json:"rider,omitempty"`
}

// TableName 表名
func (FinancialTransaction) TableName() string {
	return "financial_transactions"
}

// FinancePeriod 财务账期
// 任意时刻最多只有一个 OPEN 账期，关账时原子地开启下一个账期
type FinancePeriod struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	PeriodStart time.Time  `gorm:"not null" json:"period_start"`
	PeriodEnd   *time.Time `json:"period_end,omitempty"`
	// 部分唯一索引保证任意时刻最多一行 OPEN，并发惰性创建时输家的插入会失败
	Status      string     `gorm:"type:varchar(10);not null;default:'OPEN';index:uniq_finance_period_open,unique,where:status = 'OPEN'" json:"status"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	ClosedBy    *int64     `json:"closed_by,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (FinancePeriod) TableName() string {
	return "finance_periods"
}

// CompanySummary 公司财务汇总
type CompanySummary struct {
	TotalOrders               int     `json:"total_orders"`
	DeliveredCount            int     `json:"delivered_count"`
	ReturnedCount             int     `json:"returned_count"`
	FailedCount               int     `json:"failed_count"`
	TotalCODCollected         float64 `json:"total_cod_collected"`
	TotalServiceCharges       float64 `json:"total_service_charges"`
	TotalCompanyCommission    float64 `json:"total_company_commission"`
	TotalShipperShare         float64 `json:"total_shipper_share"`
	TotalRiderServiceCharges  float64 `json:"total_rider_service_charges"`
	PaidRiderServiceCharges   float64 `json:"paid_rider_service_charges"`
	UnpaidRiderServiceCharges float64 `json:"unpaid_rider_service_charges"`
	NetCompanyIncome          float64 `json:"net_company_income"`
}

// LedgerRow 公司总账单行
type LedgerRow struct {
	OrderID          int64     `json:"order_id"`
	BookingNo        string    `json:"booking_no"`
	TrackingNo       string    `json:"tracking_no"`
	ShipperName      string    `json:"shipper_name"`
	RiderName        string    `json:"rider_name"`
	Status           string    `json:"status"`
	EffectiveDate    time.Time `json:"effective_date"`
	CODEffective     float64   `json:"cod_effective"`
	ServiceCharges   float64   `json:"service_charges"`
	CompanyCommission float64  `json:"company_commission"`
	RiderPaid        float64   `json:"rider_paid"`
	RiderPayoutPaid  float64   `json:"rider_payout_paid"`
	RiderPayoutUnpaid float64  `json:"rider_payout_unpaid"`
	SettlementStatus string    `json:"settlement_status"`
	CompanyProfit    float64   `json:"company_profit"`
}

// LedgerSummary 公司总账汇总
type LedgerSummary struct {
	TotalOrders        int     `json:"total_orders"`
	TotalCOD           float64 `json:"total_cod"`
	TotalServiceCharges float64 `json:"total_service_charges"`
	TotalRiderPaid     float64 `json:"total_rider_paid"`
	RiderPayoutPaid    float64 `json:"rider_payout_paid"`
	RiderPayoutUnpaid  float64 `json:"rider_payout_unpaid"`
	TotalCompanyProfit float64 `json:"total_company_profit"`
}

// RiderSettlementItem 骑手结算明细行
type RiderSettlementItem struct {
	OrderID          int64     `json:"order_id"`
	BookingNo        string    `json:"booking_no"`
	TrackingNo       string    `json:"tracking_no"`
	ShipperName      string    `json:"shipper_name"`
	Status           string    `json:"status"`
	EffectiveDate    time.Time `json:"effective_date"`
	CODCollected     float64   `json:"cod_collected"`
	ServiceCharges   float64   `json:"service_charges"`
	RiderEarning     float64   `json:"rider_earning"`
	SettlementStatus string    `json:"settlement_status"`
}

// RiderSettlementSummary 骑手结算汇总
type RiderSettlementSummary struct {
	RiderID           int64   `json:"rider_id"`
	RiderName         string  `json:"rider_name"`
	TotalOrders       int     `json:"total_orders"`
	DeliveredCount    int     `json:"delivered_count"`
	ReturnedCount     int     `json:"returned_count"`
	FailedCount       int     `json:"failed_count"`
	TotalCODCollected float64 `json:"total_cod_collected"`
	TotalServiceCharges float64 `json:"total_service_charges"`
	TotalRiderEarning float64 `json:"total_rider_earning"`
	PaidRiderEarning  float64 `json:"paid_rider_earning"`
	UnpaidBalance     float64 `json:"unpaid_balance"`
}
