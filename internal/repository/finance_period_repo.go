package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dumeirei/courier-backend/internal/models"
)

// FinancePeriodRepository 财务账期仓储
type FinancePeriodRepository struct {
	db *gorm.DB
}

// NewFinancePeriodRepository 创建财务账期仓储
func NewFinancePeriodRepository(db *gorm.DB) *FinancePeriodRepository {
	return &FinancePeriodRepository{db: db}
}

// GetOpen 获取当前 OPEN 账期
func (r *FinancePeriodRepository) GetOpen(ctx context.Context) (*models.FinancePeriod, error) {
	var period models.FinancePeriod
	err := r.db.WithContext(ctx).
		Where("status = ?", models.FinancePeriodOpen).
		Order("period_start DESC").
		First(&period).Error
	if err != nil {
		return nil, err
	}
	return &period, nil
}

// GetOpenForUpdate 获取当前 OPEN 账期（加行锁，需在事务内调用）
func (r *FinancePeriodRepository) GetOpenForUpdate(ctx context.Context, tx *gorm.DB) (*models.FinancePeriod, error) {
	var period models.FinancePeriod
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("status = ?", models.FinancePeriodOpen).
		Order("period_start DESC").
		First(&period).Error
	if err != nil {
		return nil, err
	}
	return &period, nil
}

// Create 创建账期
func (r *FinancePeriodRepository) Create(ctx context.Context, period *models.FinancePeriod) error {
	return r.db.WithContext(ctx).Create(period).Error
}

// GetByID 根据 ID 获取账期
func (r *FinancePeriodRepository) GetByID(ctx context.Context, id int64) (*models.FinancePeriod, error) {
	var period models.FinancePeriod
	err := r.db.WithContext(ctx).First(&period, id).Error
	if err != nil {
		return nil, err
	}
	return &period, nil
}

// List 获取账期列表（新到旧）
func (r *FinancePeriodRepository) List(ctx context.Context, offset, limit int) ([]*models.FinancePeriod, int64, error) {
	var periods []*models.FinancePeriod
	var total int64

	query := r.db.WithContext(ctx).Model(&models.FinancePeriod{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("period_start DESC").Offset(offset).Limit(limit).Find(&periods).Error
	if err != nil {
		return nil, 0, err
	}
	return periods, total, nil
}
