package finance

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportService_ExportLedgerCSV(t *testing.T) {
	s := setupTestReportServices(t)
	seedReportOrders(t, s)
	exporter := NewExportService(s.ledger)

	data, err := exporter.ExportLedgerCSV(context.Background(), &LedgerRequest{
		RangeQuery: RangeQuery{QuickRange: QuickRange30Days},
	})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)

	// 表头 + 四笔终态订单
	require.Len(t, records, 5)
	assert.Equal(t, ledgerHeader, records[0])

	var totalCOD, totalProfit float64
	for _, record := range records[1:] {
		require.Len(t, record, len(ledgerHeader))
		cod, err := strconv.ParseFloat(record[6], 64)
		require.NoError(t, err)
		profit, err := strconv.ParseFloat(record[13], 64)
		require.NoError(t, err)
		totalCOD += cod
		totalProfit += profit
	}
	assert.Equal(t, float64(280), totalCOD)
	assert.Equal(t, float64(2), totalProfit)
}

func TestExportService_ExportLedgerCSV_EmptyWindow(t *testing.T) {
	s := setupTestReportServices(t)
	exporter := NewExportService(s.ledger)

	data, err := exporter.ExportLedgerCSV(context.Background(), &LedgerRequest{
		RangeQuery: RangeQuery{From: "2000-01-01", To: "2000-01-31"},
	})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, ledgerHeader, records[0])
}

func TestExportService_ExportLedgerXLSX(t *testing.T) {
	s := setupTestReportServices(t)
	seedReportOrders(t, s)
	exporter := NewExportService(s.ledger)

	data, err := exporter.ExportLedgerXLSX(context.Background(), &LedgerRequest{
		RangeQuery: RangeQuery{QuickRange: QuickRange30Days},
	})
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("公司总账")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, ledgerHeader, rows[0])

	// 结算状态列只出现归一化后的取值
	for _, row := range rows[1:] {
		assert.Contains(t, []string{"PAID", "UNPAID"}, row[12])
	}
}
