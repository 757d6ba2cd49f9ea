package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/courier-backend/internal/models"
)

// CommissionConfigRepository 商家收费配置仓储
type CommissionConfigRepository struct {
	db *gorm.DB
}

// NewCommissionConfigRepository 创建商家收费配置仓储
func NewCommissionConfigRepository(db *gorm.DB) *CommissionConfigRepository {
	return &CommissionConfigRepository{db: db}
}

// GetByShipperID 根据商家 ID 获取收费配置（包含重量分段）
func (r *CommissionConfigRepository) GetByShipperID(ctx context.Context, shipperID int64) (*models.CommissionConfig, error) {
	var config models.CommissionConfig
	err := r.db.WithContext(ctx).
		Preload("Brackets", func(db *gorm.DB) *gorm.DB {
			return db.Order("min_kg ASC")
		}).
		Where("shipper_id = ?", shipperID).
		First(&config).Error
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// Create 创建收费配置（含分段）
func (r *CommissionConfigRepository) Create(ctx context.Context, config *models.CommissionConfig) error {
	return r.db.WithContext(ctx).Create(config).Error
}

// Update 保存收费配置
func (r *CommissionConfigRepository) Update(ctx context.Context, config *models.CommissionConfig) error {
	return r.db.WithContext(ctx).Save(config).Error
}

// ReplaceBrackets 重建商家的重量分段
func (r *CommissionConfigRepository) ReplaceBrackets(ctx context.Context, configID int64, brackets []models.WeightBracket) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("config_id = ?", configID).Delete(&models.WeightBracket{}).Error; err != nil {
			return err
		}
		for i := range brackets {
			brackets[i].ID = 0
			brackets[i].ConfigID = configID
		}
		if len(brackets) == 0 {
			return nil
		}
		return tx.Create(&brackets).Error
	})
}
