package finance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/courier-backend/internal/models"
	"github.com/dumeirei/courier-backend/internal/repository"
)

type testBackfillService struct {
	*BackfillService
	db   *gorm.DB
	data *financeTestData
}

func setupTestBackfillService(t *testing.T) *testBackfillService {
	t.Helper()

	db := setupFinanceTestDB(t)
	data := createFinanceTestData(t, db)
	svc := NewBackfillService(
		repository.NewOrderRepository(db),
		repository.NewTransactionRepository(db),
		repository.NewRiderCommissionRepository(db),
		zap.NewNop(),
	)
	return &testBackfillService{BackfillService: svc, db: db, data: data}
}

func (s *testBackfillService) reload(t *testing.T, id int64) *models.Order {
	t.Helper()
	var order models.Order
	require.NoError(t, s.db.First(&order, id).Error)
	return &order
}

func TestBackfillService_FillsMissingFields(t *testing.T) {
	s := setupTestBackfillService(t)
	ctx := context.Background()

	// 没有流水的历史退回单：收入按规则现算，状态默认未结算
	returned := createTerminalOrder(t, s.db, s.data, models.OrderStatusReturned, 50, nil)

	// 有流水的签收单：收入取流水佣金，状态取流水结算状态
	delivered := createTerminalOrder(t, s.db, s.data, models.OrderStatusDelivered, 100, float64Ptr(100))
	require.NoError(t, s.db.Create(&models.FinancialTransaction{
		OrderID:           delivered.ID,
		ShipperID:         s.data.shipper.ID,
		RiderID:           &s.data.rider.ID,
		TotalCODCollected: 100,
		RiderCommission:   12,
		SettlementStatus:  models.SettlementStatusSettled,
	}).Error)

	report, err := s.Run(ctx, BackfillOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 2, report.EarningUpdated)
	assert.Equal(t, 2, report.StatusUpdated)
	assert.Zero(t, report.Errors)
	assert.Equal(t, delivered.ID, report.LastCursor)

	got := s.reload(t, returned.ID)
	assert.Equal(t, float64(5), got.RiderEarning)
	require.NotNil(t, got.RiderSettlementStatus)
	assert.Equal(t, models.RiderSettlementUnpaid, *got.RiderSettlementStatus)

	got = s.reload(t, delivered.ID)
	assert.Equal(t, float64(12), got.RiderEarning)
	require.NotNil(t, got.RiderSettlementStatus)
	assert.Equal(t, models.RiderSettlementPaid, *got.RiderSettlementStatus)
}

func TestBackfillService_DoesNotOverwritePositiveEarning(t *testing.T) {
	s := setupTestBackfillService(t)
	ctx := context.Background()

	order := createTerminalOrder(t, s.db, s.data, models.OrderStatusDelivered, 100, float64Ptr(100))
	paid := models.RiderSettlementPaid
	require.NoError(t, s.db.Model(order).UpdateColumns(map[string]interface{}{
		"rider_earning":           33,
		"rider_settlement_status": paid,
	}).Error)

	report, err := s.Run(ctx, BackfillOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Scanned)
	assert.Zero(t, report.EarningUpdated)
	assert.Zero(t, report.StatusUpdated)
	assert.Equal(t, 1, report.Skipped)

	got := s.reload(t, order.ID)
	assert.Equal(t, float64(33), got.RiderEarning)
}

func TestBackfillService_StatusOnlyRepair(t *testing.T) {
	s := setupTestBackfillService(t)
	ctx := context.Background()

	// 收入已有权威正值但结算状态缺失，只补状态
	order := createTerminalOrder(t, s.db, s.data, models.OrderStatusDelivered, 100, float64Ptr(100))
	require.NoError(t, s.db.Model(order).UpdateColumn("rider_earning", 20).Error)

	report, err := s.Run(ctx, BackfillOptions{})
	require.NoError(t, err)
	assert.Zero(t, report.EarningUpdated)
	assert.Equal(t, 1, report.StatusUpdated)

	got := s.reload(t, order.ID)
	assert.Equal(t, float64(20), got.RiderEarning)
	require.NotNil(t, got.RiderSettlementStatus)
	assert.Equal(t, models.RiderSettlementUnpaid, *got.RiderSettlementStatus)
}

func TestBackfillService_RerunIsNoop(t *testing.T) {
	s := setupTestBackfillService(t)
	ctx := context.Background()

	createTerminalOrder(t, s.db, s.data, models.OrderStatusReturned, 50, nil)
	createTerminalOrder(t, s.db, s.data, models.OrderStatusDelivered, 100, float64Ptr(100))

	first, err := s.Run(ctx, BackfillOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, first.EarningUpdated)

	second, err := s.Run(ctx, BackfillOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, second.Scanned)
	assert.Zero(t, second.EarningUpdated)
	assert.Zero(t, second.StatusUpdated)
	assert.Equal(t, 2, second.Skipped)
}

func TestBackfillService_DryRun(t *testing.T) {
	s := setupTestBackfillService(t)
	ctx := context.Background()

	order := createTerminalOrder(t, s.db, s.data, models.OrderStatusReturned, 50, nil)

	report, err := s.Run(ctx, BackfillOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 1, report.EarningUpdated)

	// 试运行只统计不落库
	got := s.reload(t, order.ID)
	assert.Zero(t, got.RiderEarning)
	assert.Nil(t, got.RiderSettlementStatus)
}

func TestBackfillService_CursorAndBatching(t *testing.T) {
	s := setupTestBackfillService(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 5; i++ {
		order := createTerminalOrder(t, s.db, s.data, models.OrderStatusReturned, 50, nil)
		ids = append(ids, order.ID)
	}

	// 从第二单之后续跑，前两单不再被扫描
	report, err := s.Run(ctx, BackfillOptions{BatchSize: 2, StartCursor: ids[1]})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, ids[4], report.LastCursor)

	got := s.reload(t, ids[0])
	assert.Zero(t, got.RiderEarning)
	got = s.reload(t, ids[2])
	assert.Equal(t, float64(5), got.RiderEarning)
}

func TestBackfillService_ContextCancelled(t *testing.T) {
	s := setupTestBackfillService(t)

	createTerminalOrder(t, s.db, s.data, models.OrderStatusReturned, 50, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := s.Run(ctx, BackfillOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, report.Scanned)
}
