// Package admin 提供管理员相关服务
package admin

import (
	"context"

	"go.uber.org/zap"

	"github.com/dumeirei/courier-backend/internal/common/crypto"
	"github.com/dumeirei/courier-backend/internal/common/errors"
	"github.com/dumeirei/courier-backend/internal/common/jwt"
	"github.com/dumeirei/courier-backend/internal/models"
	"github.com/dumeirei/courier-backend/internal/repository"
)

// AdminAuthService 管理员认证服务
type AdminAuthService struct {
	adminRepo  *repository.AdminRepository
	jwtManager *jwt.Manager
	logger     *zap.Logger
}

// NewAdminAuthService 创建管理员认证服务
func NewAdminAuthService(adminRepo *repository.AdminRepository, jwtManager *jwt.Manager, logger *zap.Logger) *AdminAuthService {
	return &AdminAuthService{
		adminRepo:  adminRepo,
		jwtManager: jwtManager,
		logger:     logger,
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminInfo 管理员信息（不含敏感字段）
type AdminInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Admin *AdminInfo     `json:"admin"`
	Token *jwt.TokenPair `json:"token"`
}

// Login 管理员登录
func (s *AdminAuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	admin, err := s.adminRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrPasswordError
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	if admin.Status != models.AccountStatusActive {
		return nil, errors.ErrAccountDisabled
	}
	if !crypto.VerifyPassword(req.Password, admin.Password) {
		return nil, errors.ErrPasswordError
	}

	tokenPair, err := s.jwtManager.GenerateTokenPair(admin.ID, jwt.UserTypeAdmin, admin.Role)
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}

	// 登录时间更新失败不阻塞登录
	if err := s.adminRepo.UpdateLastLogin(ctx, admin.ID); err != nil {
		s.logger.Warn("更新登录时间失败", zap.Int64("admin_id", admin.ID), zap.Error(err))
	}

	return &LoginResponse{
		Admin: toAdminInfo(admin),
		Token: tokenPair,
	}, nil
}

// GetAdminInfo 获取管理员信息
func (s *AdminAuthService) GetAdminInfo(ctx context.Context, adminID int64) (*AdminInfo, error) {
	admin, err := s.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrNotFound.WithMessage("管理员不存在")
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return toAdminInfo(admin), nil
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// ChangePassword 修改密码
func (s *AdminAuthService) ChangePassword(ctx context.Context, adminID int64, req *ChangePasswordRequest) error {
	admin, err := s.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	if !crypto.VerifyPassword(req.OldPassword, admin.Password) {
		return errors.ErrPasswordError.WithMessage("原密码错误")
	}

	hash, err := crypto.HashPassword(req.NewPassword)
	if err != nil {
		return errors.ErrInternalError.WithError(err)
	}
	return s.adminRepo.UpdatePassword(ctx, adminID, hash)
}

// toAdminInfo 转换为对外的管理员信息
func toAdminInfo(admin *models.Admin) *AdminInfo {
	return &AdminInfo{
		ID:       admin.ID,
		Username: admin.Username,
		Name:     admin.Name,
		Role:     admin.Role,
	}
}
