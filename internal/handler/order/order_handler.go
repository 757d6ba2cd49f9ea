// Package order 提供订单相关的 HTTP Handler
package order

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/courier-backend/internal/common/handler"
	"github.com/dumeirei/courier-backend/internal/common/response"
	orderService "github.com/dumeirei/courier-backend/internal/service/order"
)

// Handler 订单处理器
type Handler struct {
	statusService *orderService.StatusService
}

// NewHandler 创建订单处理器
func NewHandler(statusSvc *orderService.StatusService) *Handler {
	return &Handler{
		statusService: statusSvc,
	}
}

// CreateOrder 创建订单
// @Summary 创建订单
// @Tags 订单
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body orderService.CreateOrderRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.Order}
// @Router /api/v1/admin/orders [post]
func (h *Handler) CreateOrder(c *gin.Context) {
	if _, ok := handler.RequireAdminID(c); !ok {
		return
	}

	var req orderService.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	order, err := h.statusService.CreateOrder(c.Request.Context(), &req)
	handler.MustSucceed(c, err, order)
}

// UpdateOrderStatus 订单状态流转
// @Summary 订单状态流转
// @Tags 订单
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "订单ID"
// @Param request body orderService.UpdateStatusRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.Order}
// @Router /api/v1/admin/orders/{id}/status [put]
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	_, orderID, ok := handler.RequireAdminAndParseID(c, "订单")
	if !ok {
		return
	}

	var req orderService.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	order, err := h.statusService.UpdateStatus(c.Request.Context(), orderID, &req)
	handler.MustSucceed(c, err, order)
}

// RegisterRoutes 注册订单路由（管理端）
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	orders := r.Group("/orders")
	{
		orders.POST("", h.CreateOrder)
		orders.PUT("/:id/status", h.UpdateOrderStatus)
	}
}
