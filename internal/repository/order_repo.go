// Package repository 提供数据访问层
package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dumeirei/courier-backend/internal/models"
)

// OrderRepository 订单仓储
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// TerminalOrderFilter 终态订单查询条件
// 日期窗口在服务层按有效日期过滤，这里只做字段级过滤
type TerminalOrderFilter struct {
	ShipperID *int64
	RiderID   *int64
	Status    string // 为空表示全部终态
	Search    string // 按运单号/跟踪号模糊匹配
}

// Create 创建订单
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// GetByID 根据 ID 获取订单
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetByIDWithRelations 根据 ID 获取订单（包含商家、骑手、流水）
func (r *OrderRepository) GetByIDWithRelations(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Shipper").
		Preload("Rider").
		Preload("Transaction").
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetByBookingNo 根据运单号获取订单
func (r *OrderRepository) GetByBookingNo(ctx context.Context, bookingNo string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("booking_no = ?", bookingNo).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Update 保存订单
func (r *OrderRepository) Update(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

// UpdateFields 更新订单指定字段
func (r *OrderRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(fields).Error
}

// GetForUpdate 获取订单（加行锁，需在事务内调用）
func (r *OrderRepository) GetForUpdate(ctx context.Context, tx *gorm.DB, id int64) (*models.Order, error) {
	var order models.Order
	err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// terminalStatuses 财务相关终态
var terminalStatuses = []string{
	models.OrderStatusDelivered,
	models.OrderStatusReturned,
	models.OrderStatusFailed,
}

// ListTerminal 获取终态订单（含商家、骑手关联）
// 调用方负责按有效日期过滤和分页，订单数按日期窗口预期是有界的
func (r *OrderRepository) ListTerminal(ctx context.Context, filter *TerminalOrderFilter) ([]*models.Order, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})

	// 状态过滤只在终态集合内收窄，非终态状态查不出任何行
	query = query.Where("status IN ?", terminalStatuses)
	if filter != nil {
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
		if filter.ShipperID != nil && *filter.ShipperID > 0 {
			query = query.Where("shipper_id = ?", *filter.ShipperID)
		}
		if filter.RiderID != nil && *filter.RiderID > 0 {
			query = query.Where("assigned_rider_id = ?", *filter.RiderID)
		}
		if filter.Search != "" {
			pattern := "%" + filter.Search + "%"
			query = query.Where("booking_no LIKE ? OR tracking_no LIKE ?", pattern, pattern)
		}
	}

	var orders []*models.Order
	err := query.Preload("Shipper").Preload("Rider").
		Order("id ASC").
		Find(&orders).Error
	return orders, err
}

// ListTerminalAssignedAfter 按主键游标获取已分配骑手的终态订单（回填批处理用）
func (r *OrderRepository) ListTerminalAssignedAfter(ctx context.Context, cursor int64, limit int) ([]*models.Order, error) {
	var orders []*models.Order
	err := r.db.WithContext(ctx).
		Where("id > ?", cursor).
		Where("status IN ?", terminalStatuses).
		Where("assigned_rider_id IS NOT NULL").
		Order("id ASC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

// CountByStatus 统计各状态订单数
func (r *OrderRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make(map[string]int64, len(rows))
	for _, v := range rows {
		result[v.Status] = v.Count
	}
	return result, nil
}
