// Package admin 提供管理端 HTTP Handler
package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/courier-backend/internal/common/handler"
	"github.com/dumeirei/courier-backend/internal/common/response"
	adminService "github.com/dumeirei/courier-backend/internal/service/admin"
)

// AuthHandler 管理员认证处理器
type AuthHandler struct {
	authService *adminService.AdminAuthService
}

// NewAuthHandler 创建管理员认证处理器
func NewAuthHandler(authSvc *adminService.AdminAuthService) *AuthHandler {
	return &AuthHandler{authService: authSvc}
}

// Login 管理员登录
// @Summary 管理员登录
// @Tags 管理员
// @Accept json
// @Produce json
// @Param request body adminService.LoginRequest true "请求参数"
// @Success 200 {object} response.Response{data=adminService.LoginResponse}
// @Router /api/v1/admin/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req adminService.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	handler.MustSucceed(c, err, result)
}

// GetProfile 获取当前管理员信息
// @Summary 当前管理员信息
// @Tags 管理员
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=adminService.AdminInfo}
// @Router /api/v1/admin/auth/profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	adminID, ok := handler.RequireAdminID(c)
	if !ok {
		return
	}

	info, err := h.authService.GetAdminInfo(c.Request.Context(), adminID)
	handler.MustSucceed(c, err, info)
}

// ChangePassword 修改密码
// @Summary 修改密码
// @Tags 管理员
// @Accept json
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response
// @Router /api/v1/admin/auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	adminID, ok := handler.RequireAdminID(c)
	if !ok {
		return
	}

	var req adminService.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	err := h.authService.ChangePassword(c.Request.Context(), adminID, &req)
	handler.MustSucceedWithMessage(c, err, "密码已修改", nil)
}

// RegisterPublicRoutes 注册无需认证的路由
func (h *AuthHandler) RegisterPublicRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", h.Login)
	}
}

// RegisterRoutes 注册需要认证的路由
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.GET("/profile", h.GetProfile)
		auth.PUT("/password", h.ChangePassword)
	}
}
