package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/courier-backend/internal/models"
)

// ShipperRepository 商家仓储
type ShipperRepository struct {
	db *gorm.DB
}

// NewShipperRepository 创建商家仓储
func NewShipperRepository(db *gorm.DB) *ShipperRepository {
	return &ShipperRepository{db: db}
}

// Create 创建商家
func (r *ShipperRepository) Create(ctx context.Context, shipper *models.Shipper) error {
	return r.db.WithContext(ctx).Create(shipper).Error
}

// GetByID 根据 ID 获取商家
func (r *ShipperRepository) GetByID(ctx context.Context, id int64) (*models.Shipper, error) {
	var shipper models.Shipper
	err := r.db.WithContext(ctx).First(&shipper, id).Error
	if err != nil {
		return nil, err
	}
	return &shipper, nil
}

// List 获取商家列表
func (r *ShipperRepository) List(ctx context.Context, offset, limit int, keyword string) ([]*models.Shipper, int64, error) {
	var shippers []*models.Shipper
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Shipper{})
	if keyword != "" {
		pattern := "%" + keyword + "%"
		query = query.Where("name LIKE ? OR phone LIKE ?", pattern, pattern)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&shippers).Error
	if err != nil {
		return nil, 0, err
	}
	return shippers, total, nil
}
