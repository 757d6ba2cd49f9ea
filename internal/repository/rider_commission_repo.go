package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/courier-backend/internal/models"
)

// RiderCommissionRepository 骑手佣金配置仓储
type RiderCommissionRepository struct {
	db *gorm.DB
}

// NewRiderCommissionRepository 创建骑手佣金配置仓储
func NewRiderCommissionRepository(db *gorm.DB) *RiderCommissionRepository {
	return &RiderCommissionRepository{db: db}
}

// GetByRiderID 根据骑手 ID 获取佣金配置（包含状态规则）
func (r *RiderCommissionRepository) GetByRiderID(ctx context.Context, riderID int64) (*models.RiderCommissionConfig, error) {
	var config models.RiderCommissionConfig
	err := r.db.WithContext(ctx).
		Preload("Rules").
		Where("rider_id = ?", riderID).
		First(&config).Error
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// MapByRiderIDs 批量获取佣金配置，按骑手 ID 索引
func (r *RiderCommissionRepository) MapByRiderIDs(ctx context.Context, riderIDs []int64) (map[int64]*models.RiderCommissionConfig, error) {
	result := make(map[int64]*models.RiderCommissionConfig, len(riderIDs))
	if len(riderIDs) == 0 {
		return result, nil
	}

	var configs []*models.RiderCommissionConfig
	err := r.db.WithContext(ctx).
		Preload("Rules").
		Where("rider_id IN ?", riderIDs).
		Find(&configs).Error
	if err != nil {
		return nil, err
	}
	for _, config := range configs {
		result[config.RiderID] = config
	}
	return result, nil
}

// Create 创建骑手佣金配置
func (r *RiderCommissionRepository) Create(ctx context.Context, config *models.RiderCommissionConfig) error {
	return r.db.WithContext(ctx).Create(config).Error
}

// Update 保存骑手佣金配置
func (r *RiderCommissionRepository) Update(ctx context.Context, config *models.RiderCommissionConfig) error {
	return r.db.WithContext(ctx).Save(config).Error
}
