package finance

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/dumeirei/courier-backend/internal/common/errors"
	"github.com/dumeirei/courier-backend/internal/models"
)

// ExportService 总账导出服务
type ExportService struct {
	ledgerService *LedgerService
}

// NewExportService 创建导出服务
func NewExportService(ledgerService *LedgerService) *ExportService {
	return &ExportService{ledgerService: ledgerService}
}

// ledgerHeader 导出列头
var ledgerHeader = []string{
	"运单号", "跟踪号", "商家", "骑手", "状态", "业务日期",
	"回收货款", "服务费", "公司佣金", "骑手佣金", "已结佣金", "未结佣金", "结算状态", "公司利润",
}

// ExportLedgerCSV 导出总账为 CSV
func (s *ExportService) ExportLedgerCSV(ctx context.Context, req *LedgerRequest) ([]byte, error) {
	rows, err := s.ledgerService.CollectRows(ctx, req)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(ledgerHeader); err != nil {
		return nil, errors.ErrExportFailed.WithError(err)
	}
	for i := range rows {
		if err := writer.Write(ledgerRecord(&rows[i])); err != nil {
			return nil, errors.ErrExportFailed.WithError(err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, errors.ErrExportFailed.WithError(err)
	}
	return buf.Bytes(), nil
}

// ExportLedgerXLSX 导出总账为 Excel
func (s *ExportService) ExportLedgerXLSX(ctx context.Context, req *LedgerRequest) ([]byte, error) {
	rows, err := s.ledgerService.CollectRows(ctx, req)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "公司总账"
	f.SetSheetName(f.GetSheetName(0), sheet)

	for col, title := range ledgerHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, errors.ErrExportFailed.WithError(err)
		}
	}
	for i := range rows {
		record := ledgerRecord(&rows[i])
		for col, value := range record {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, errors.ErrExportFailed.WithError(err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, errors.ErrExportFailed.WithError(err)
	}
	return buf.Bytes(), nil
}

// ledgerRecord 总账行转导出记录
func ledgerRecord(row *models.LedgerRow) []string {
	return []string{
		row.BookingNo,
		row.TrackingNo,
		row.ShipperName,
		row.RiderName,
		row.Status,
		row.EffectiveDate.Format("2006-01-02"),
		formatAmount(row.CODEffective),
		formatAmount(row.ServiceCharges),
		formatAmount(row.CompanyCommission),
		formatAmount(row.RiderPaid),
		formatAmount(row.RiderPayoutPaid),
		formatAmount(row.RiderPayoutUnpaid),
		row.SettlementStatus,
		formatAmount(row.CompanyProfit),
	}
}

// formatAmount 金额保留两位小数
func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
