package models

import (
	"time"

	"gorm.io/gorm"
)

// 账号状态
const (
	AccountStatusActive   = 1 // 正常
	AccountStatusDisabled = 0 // 禁用
)

// Shipper 商家（发件方）
type Shipper struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string         `gorm:"type:varchar(100);not null" json:"name"`
	Phone     string         `gorm:"type:varchar(20);uniqueIndex;not null" json:"phone"`
	Email     *string        `gorm:"type:varchar(100)" json:"email,omitempty"`
	Address   string         `gorm:"type:varchar(255)" json:"address"`
	City      string         `gorm:"type:varchar(50)" json:"city"`
	Status    int8           `gorm:"type:smallint;not null;default:1" json:"status"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 表名
func (Shipper) TableName() string {
	return "shippers"
}

// Rider 骑手（派送员）
type Rider struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string         `gorm:"type:varchar(100);not null" json:"name"`
	Phone     string         `gorm:"type:varchar(20);uniqueIndex;not null" json:"phone"`
	City      string         `gorm:"type:varchar(50)" json:"city"`
	Status    int8           `gorm:"type:smallint;not null;default:1" json:"status"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 表名
func (Rider) TableName() string {
	return "riders"
}

// Admin 后台管理员
type Admin struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username    string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Password    string     `gorm:"type:varchar(255);not null" json:"-"`
	Name        string     `gorm:"type:varchar(100)" json:"name"`
	Role        string     `gorm:"type:varchar(20);not null;default:'operator'" json:"role"`
	Status      int8       `gorm:"type:smallint;not null;default:1" json:"status"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (Admin) TableName() string {
	return "admins"
}

// AdminRole 管理员角色
const (
	AdminRoleSuper    = "super"    // 超级管理员
	AdminRoleFinance  = "finance"  // 财务
	AdminRoleOperator = "operator" // 运营
)
