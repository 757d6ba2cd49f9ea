// Package finance 提供财务相关的 HTTP Handler
package finance

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/courier-backend/internal/common/handler"
	"github.com/dumeirei/courier-backend/internal/common/response"
	financeService "github.com/dumeirei/courier-backend/internal/service/finance"
)

// Handler 财务处理器
type Handler struct {
	summaryService    *financeService.SummaryService
	ledgerService     *financeService.LedgerService
	settlementService *financeService.RiderSettlementService
	periodService     *financeService.PeriodService
	exportService     *financeService.ExportService
}

// NewHandler 创建财务处理器
func NewHandler(
	summarySvc *financeService.SummaryService,
	ledgerSvc *financeService.LedgerService,
	settlementSvc *financeService.RiderSettlementService,
	periodSvc *financeService.PeriodService,
	exportSvc *financeService.ExportService,
) *Handler {
	return &Handler{
		summaryService:    summarySvc,
		ledgerService:     ledgerSvc,
		settlementService: settlementSvc,
		periodService:     periodSvc,
		exportService:     exportSvc,
	}
}

// GetCompanySummary 获取公司财务汇总
// @Summary 公司财务汇总
// @Tags 财务
// @Produce json
// @Security Bearer
// @Param range query string false "快捷范围 today/7d/15d/30d"
// @Param from query string false "起始日期 YYYY-MM-DD"
// @Param to query string false "截止日期 YYYY-MM-DD"
// @Param shipper_id query int false "商家ID"
// @Param rider_id query int false "骑手ID"
// @Success 200 {object} response.Response{data=models.CompanySummary}
// @Router /api/v1/admin/finance/summary [get]
func (h *Handler) GetCompanySummary(c *gin.Context) {
	if _, ok := handler.RequireAdminID(c); !ok {
		return
	}

	var req financeService.SummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	summary, err := h.summaryService.GetCompanySummary(c.Request.Context(), &req)
	handler.MustSucceed(c, err, summary)
}

// GetCompanyLedger 获取公司总账
// @Summary 公司总账
// @Tags 财务
// @Produce json
// @Security Bearer
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=financeService.LedgerResponse}
// @Router /api/v1/admin/finance/ledger [get]
func (h *Handler) GetCompanyLedger(c *gin.Context) {
	if _, ok := handler.RequireAdminID(c); !ok {
		return
	}

	var req financeService.LedgerRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	ledger, err := h.ledgerService.GetCompanyLedger(c.Request.Context(), &req)
	handler.MustSucceed(c, err, ledger)
}

// ExportCompanyLedger 导出公司总账
// @Summary 导出公司总账
// @Tags 财务
// @Produce application/octet-stream
// @Security Bearer
// @Param format query string false "导出格式 csv/xlsx"
// @Router /api/v1/admin/finance/ledger/export [get]
func (h *Handler) ExportCompanyLedger(c *gin.Context) {
	if _, ok := handler.RequireAdminID(c); !ok {
		return
	}

	var req financeService.LedgerRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	format := c.DefaultQuery("format", "csv")
	filename := fmt.Sprintf("ledger_%s", time.Now().Format("20060102_150405"))

	var data []byte
	var err error
	var contentType string
	switch format {
	case "xlsx":
		data, err = h.exportService.ExportLedgerXLSX(c.Request.Context(), &req)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		filename += ".xlsx"
	default:
		data, err = h.exportService.ExportLedgerCSV(c.Request.Context(), &req)
		contentType = "text/csv"
		filename += ".csv"
	}
	if handler.HandleError(c, err) {
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(200, contentType, data)
}

// GetRiderSettlements 获取骑手结算视图
// @Summary 骑手结算
// @Tags 财务
// @Produce json
// @Security Bearer
// @Param rider_id query int true "骑手ID"
// @Success 200 {object} response.Response{data=financeService.RiderSettlementResponse}
// @Router /api/v1/admin/finance/rider-settlements [get]
func (h *Handler) GetRiderSettlements(c *gin.Context) {
	if _, ok := handler.RequireAdminID(c); !ok {
		return
	}

	var req financeService.RiderSettlementRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	result, err := h.settlementService.GetRiderSettlements(c.Request.Context(), &req)
	handler.MustSucceed(c, err, result)
}

// SetRiderSettlementRequest 设置结算状态请求
type SetRiderSettlementRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetRiderSettlement 设置某订单的骑手结算状态
// @Summary 设置骑手结算状态
// @Tags 财务
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "订单ID"
// @Param request body SetRiderSettlementRequest true "请求参数"
// @Success 200 {object} response.Response
// @Router /api/v1/admin/finance/settlements/orders/{id} [put]
func (h *Handler) SetRiderSettlement(c *gin.Context) {
	adminID, orderID, ok := handler.RequireAdminAndParseID(c, "订单")
	if !ok {
		return
	}

	var req SetRiderSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	err := h.settlementService.SetRiderSettlementByOrder(c.Request.Context(), orderID, req.Status, adminID)
	handler.MustSucceed(c, err, nil)
}

// GetOpenPeriod 获取当前财务账期
// @Summary 当前财务账期
// @Tags 财务
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=models.FinancePeriod}
// @Router /api/v1/admin/finance/periods/open [get]
func (h *Handler) GetOpenPeriod(c *gin.Context) {
	if _, ok := handler.RequireAdminID(c); !ok {
		return
	}

	period, err := h.periodService.GetOpenPeriod(c.Request.Context())
	handler.MustSucceed(c, err, period)
}

// CloseFinanceMonth 关闭当前财务月
// @Summary 关闭财务月
// @Tags 财务
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=financeService.ClosePeriodResult}
// @Router /api/v1/admin/finance/periods/close [post]
func (h *Handler) CloseFinanceMonth(c *gin.Context) {
	adminID, ok := handler.RequireAdminID(c)
	if !ok {
		return
	}

	result, err := h.periodService.CloseCurrentFinanceMonth(c.Request.Context(), adminID)
	handler.MustSucceed(c, err, result)
}

// RegisterRoutes 注册财务路由（管理端）
// exportLimit 为导出接口附加的限流中间件
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, exportLimit ...gin.HandlerFunc) {
	finance := r.Group("/finance")
	{
		finance.GET("/summary", h.GetCompanySummary)
		finance.GET("/ledger", h.GetCompanyLedger)
		finance.GET("/ledger/export", append(exportLimit, h.ExportCompanyLedger)...)
		finance.GET("/rider-settlements", h.GetRiderSettlements)
		finance.PUT("/settlements/orders/:id", h.SetRiderSettlement)
		finance.GET("/periods/open", h.GetOpenPeriod)
		finance.POST("/periods/close", h.CloseFinanceMonth)
	}
}
