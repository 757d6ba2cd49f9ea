package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dumeirei/courier-backend/internal/models"
)

// TransactionRepository 订单财务流水仓储
type TransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository 创建流水仓储
func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Upsert 按订单号覆盖写入流水
// 订单状态在人工纠错时可能反复进入终态，流水始终反映订单当前状态而不是历史
func (r *TransactionRepository) Upsert(ctx context.Context, tx *models.FinancialTransaction) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"shipper_id", "rider_id", "total_cod_collected",
			"shipper_share", "company_commission", "rider_commission", "updated_at",
		}),
	}).Create(tx).Error
}

// GetByOrderID 根据订单 ID 获取流水
func (r *TransactionRepository) GetByOrderID(ctx context.Context, orderID int64) (*models.FinancialTransaction, error) {
	var transaction models.FinancialTransaction
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&transaction).Error
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

// MapByOrderIDs 批量获取流水，按订单 ID 索引
func (r *TransactionRepository) MapByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64]*models.FinancialTransaction, error) {
	result := make(map[int64]*models.FinancialTransaction, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}

	var transactions []*models.FinancialTransaction
	err := r.db.WithContext(ctx).Where("order_id IN ?", orderIDs).Find(&transactions).Error
	if err != nil {
		return nil, err
	}
	for _, tx := range transactions {
		result[tx.OrderID] = tx
	}
	return result, nil
}

// UpdateSettlement 更新流水的结算状态
// 转入已结算时写入结算时间和操作人，转回未结算时清空
func (r *TransactionRepository) UpdateSettlement(ctx context.Context, orderID int64, status string, paidBy *int64) error {
	fields := map[string]interface{}{
		"settlement_status": status,
	}
	if status == models.SettlementStatusPaid {
		now := time.Now()
		fields["paid_at"] = &now
		fields["paid_by"] = paidBy
	} else {
		fields["paid_at"] = nil
		fields["paid_by"] = nil
	}

	result := r.db.WithContext(ctx).Model(&models.FinancialTransaction{}).
		Where("order_id = ?", orderID).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ExistsForOrder 订单是否已有流水
func (r *TransactionRepository) ExistsForOrder(ctx context.Context, orderID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.FinancialTransaction{}).
		Where("order_id = ?", orderID).
		Count(&count).Error
	return count > 0, err
}

// IsNotFound 判断是否为记录不存在错误
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
