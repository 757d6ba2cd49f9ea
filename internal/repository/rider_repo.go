package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/courier-backend/internal/models"
)

// RiderRepository 骑手仓储
type RiderRepository struct {
	db *gorm.DB
}

// NewRiderRepository 创建骑手仓储
func NewRiderRepository(db *gorm.DB) *RiderRepository {
	return &RiderRepository{db: db}
}

// Create 创建骑手
func (r *RiderRepository) Create(ctx context.Context, rider *models.Rider) error {
	return r.db.WithContext(ctx).Create(rider).Error
}

// GetByID 根据 ID 获取骑手
func (r *RiderRepository) GetByID(ctx context.Context, id int64) (*models.Rider, error) {
	var rider models.Rider
	err := r.db.WithContext(ctx).First(&rider, id).Error
	if err != nil {
		return nil, err
	}
	return &rider, nil
}

// List 获取骑手列表
func (r *RiderRepository) List(ctx context.Context, offset, limit int, keyword string) ([]*models.Rider, int64, error) {
	var riders []*models.Rider
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Rider{})
	if keyword != "" {
		pattern := "%" + keyword + "%"
		query = query.Where("name LIKE ? OR phone LIKE ?", pattern, pattern)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&riders).Error
	if err != nil {
		return nil, 0, err
	}
	return riders, total, nil
}
