package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dumeirei/courier-backend/internal/common/errors"
	"github.com/dumeirei/courier-backend/internal/models"
	"github.com/dumeirei/courier-backend/internal/repository"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Shipper{},
		&models.Rider{},
		&models.Order{},
		&models.CommissionConfig{},
		&models.WeightBracket{},
		&models.RiderCommissionConfig{},
		&models.RiderCommissionRule{},
		&models.FinancialTransaction{},
	))
	return db
}

// recordingHook 记录终态钩子调用
type recordingHook struct {
	orders []*models.Order
}

func (h *recordingHook) OnTerminalStatus(_ context.Context, order *models.Order) {
	h.orders = append(h.orders, order)
}

type testStatusService struct {
	*StatusService
	db      *gorm.DB
	shipper *models.Shipper
	hook    *recordingHook
}

func setupTestStatusService(t *testing.T) *testStatusService {
	t.Helper()

	db := setupTestDB(t)

	shipper := &models.Shipper{Name: "测试商家", Phone: "13800000001", City: "上海"}
	require.NoError(t, db.Create(shipper).Error)
	require.NoError(t, db.Create(&models.CommissionConfig{
		ShipperID:    shipper.ID,
		Type:         models.CommissionTypePercentage,
		Value:        10,
		ReturnCharge: 6,
		Brackets: []models.WeightBracket{
			{MinKg: 0, MaxKg: maxKg(5), Charge: 10},
			{MinKg: 5, MaxKg: maxKg(10), Charge: 18},
		},
	}).Error)

	hook := &recordingHook{}
	svc := NewStatusService(
		db,
		repository.NewOrderRepository(db),
		repository.NewShipperRepository(db),
		repository.NewCommissionConfigRepository(db),
		hook,
		zap.NewNop(),
	)
	return &testStatusService{StatusService: svc, db: db, shipper: shipper, hook: hook}
}

func maxKg(v float64) *float64 {
	return &v
}

func validCreateRequest(shipperID int64) *CreateOrderRequest {
	return &CreateOrderRequest{
		ShipperID:        shipperID,
		PaymentType:      models.PaymentTypeCOD,
		CODAmount:        200,
		WeightKg:         2,
		ConsigneeName:    "张三",
		ConsigneePhone:   "13700000001",
		ConsigneeAddress: "测试路 1 号",
		ConsigneeCity:    "上海",
	}
}

func TestStatusService_CreateOrder(t *testing.T) {
	s := setupTestStatusService(t)
	ctx := context.Background()

	order, err := s.CreateOrder(ctx, validCreateRequest(s.shipper.ID))
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, float64(10), order.ServiceCharges)
	assert.NotEmpty(t, order.BookingNo)
	assert.NotEmpty(t, order.TrackingNo)
	assert.True(t, order.ID > 0)

	t.Run("重量命中高分段", func(t *testing.T) {
		req := validCreateRequest(s.shipper.ID)
		req.WeightKg = 7
		heavy, err := s.CreateOrder(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, float64(18), heavy.ServiceCharges)
	})
}

func TestStatusService_CreateOrder_FailClosed(t *testing.T) {
	s := setupTestStatusService(t)
	ctx := context.Background()

	t.Run("商家不存在", func(t *testing.T) {
		req := validCreateRequest(9999)
		_, err := s.CreateOrder(ctx, req)
		assert.ErrorIs(t, err, errors.ErrShipperNotFound)
	})

	t.Run("商家无计费配置", func(t *testing.T) {
		bare := &models.Shipper{Name: "无配置商家", Phone: "13800000002"}
		require.NoError(t, s.db.Create(bare).Error)

		_, err := s.CreateOrder(ctx, validCreateRequest(bare.ID))
		assert.ErrorIs(t, err, errors.ErrConfigurationMissing)
	})

	t.Run("重量落不进任何分段", func(t *testing.T) {
		req := validCreateRequest(s.shipper.ID)
		req.WeightKg = 50
		_, err := s.CreateOrder(ctx, req)
		assert.ErrorIs(t, err, errors.ErrNoMatchingBracket)

		// 拒单，不落库
		var count int64
		require.NoError(t, s.db.Model(&models.Order{}).Count(&count).Error)
		assert.Zero(t, count)
	})
}

func TestStatusService_UpdateStatus_HappyPath(t *testing.T) {
	s := setupTestStatusService(t)
	ctx := context.Background()

	order, err := s.CreateOrder(ctx, validCreateRequest(s.shipper.ID))
	require.NoError(t, err)

	rider := &models.Rider{Name: "测试骑手", Phone: "13900000001"}
	require.NoError(t, s.db.Create(rider).Error)

	order, err = s.UpdateStatus(ctx, order.ID, &UpdateStatusRequest{
		Status:  models.OrderStatusAssigned,
		RiderID: &rider.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, order.AssignedRiderID)
	assert.Equal(t, rider.ID, *order.AssignedRiderID)
	assert.Empty(t, s.hook.orders)

	order, err = s.UpdateStatus(ctx, order.ID, &UpdateStatusRequest{Status: models.OrderStatusOutForDelivery})
	require.NoError(t, err)
	assert.Empty(t, s.hook.orders)

	collected := 180.0
	order, err = s.UpdateStatus(ctx, order.ID, &UpdateStatusRequest{
		Status:          models.OrderStatusDelivered,
		AmountCollected: &collected,
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusDelivered, order.Status)
	require.NotNil(t, order.DeliveredAt)
	require.NotNil(t, order.AmountCollected)
	assert.Equal(t, float64(180), *order.AmountCollected)

	// 进入终态触发一次财务落账
	require.Len(t, s.hook.orders, 1)
	assert.Equal(t, order.ID, s.hook.orders[0].ID)
}

func TestStatusService_UpdateStatus_ReturnedUsesReturnCharge(t *testing.T) {
	s := setupTestStatusService(t)
	ctx := context.Background()

	order, err := s.CreateOrder(ctx, validCreateRequest(s.shipper.ID))
	require.NoError(t, err)
	_, err = s.UpdateStatus(ctx, order.ID, &UpdateStatusRequest{Status: models.OrderStatusAssigned})
	require.NoError(t, err)
	_, err = s.UpdateStatus(ctx, order.ID, &UpdateStatusRequest{Status: models.OrderStatusOutForDelivery})
	require.NoError(t, err)

	order, err = s.UpdateStatus(ctx, order.ID, &UpdateStatusRequest{Status: models.OrderStatusReturned})
	require.NoError(t, err)

	// 退件改按固定退件费计费
	assert.Equal(t, float64(6), order.ServiceCharges)
	require.Len(t, s.hook.orders, 1)
}

func TestStatusService_UpdateStatus_CorrectionOutOfReturnedRestoresCharge(t *testing.T) {
	s := setupTestStatusService(t)
	ctx := context.Background()

	order, err := s.CreateOrder(ctx, validCreateRequest(s.shipper.ID))
	require.NoError(t, err)
	bracketCharge := order.ServiceCharges

	for _, status := range []string{
		models.OrderStatusAssigned,
		models.OrderStatusOutForDelivery,
		models.OrderStatusReturned,
	} {
		order, err = s.UpdateStatus(ctx, order.ID, &UpdateStatusRequest{Status: status})
		require.NoError(t, err)
	}
	assert.Equal(t, float64(6), order.ServiceCharges)

	// 误点退回改签收：恢复按重量分段计的服务费
	collected := 180.0
	order, err = s.UpdateStatus(ctx, order.ID, &UpdateStatusRequest{
		Status:          models.OrderStatusDelivered,
		AmountCollected: &collected,
	})
	require.NoError(t, err)
	assert.Equal(t, bracketCharge, order.ServiceCharges)
}

func TestStatusService_UpdateStatus_TerminalCorrection(t *testing.T) {
	s := setupTestStatusService(t)
	ctx := context.Background()

	order, err := s.CreateOrder(ctx, validCreateRequest(s.shipper.ID))
	require.NoError(t, err)
	for _, status := range []string{
		models.OrderStatusAssigned,
		models.OrderStatusOutForDelivery,
		models.OrderStatusDelivered,
	} {
		_, err = s.UpdateStatus(ctx, order.ID, &UpdateStatusRequest{Status: status})
		require.NoError(t, err)
	}

	// 误点签收改退回：终态之间允许互转，每次都重新落账
	order, err = s.UpdateStatus(ctx, order.ID, &UpdateStatusRequest{Status: models.OrderStatusReturned})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusReturned, order.Status)
	assert.Len(t, s.hook.orders, 2)

	// 失败单允许重新派送
	order, err = s.UpdateStatus(ctx, order.ID, &UpdateStatusRequest{Status: models.OrderStatusFailed})
	require.NoError(t, err)
	order, err = s.UpdateStatus(ctx, order.ID, &UpdateStatusRequest{Status: models.OrderStatusOutForDelivery})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusOutForDelivery, order.Status)
}

func TestStatusService_UpdateStatus_Rejections(t *testing.T) {
	s := setupTestStatusService(t)
	ctx := context.Background()

	order, err := s.CreateOrder(ctx, validCreateRequest(s.shipper.ID))
	require.NoError(t, err)

	t.Run("跳步流转被拒", func(t *testing.T) {
		_, err := s.UpdateStatus(ctx, order.ID, &UpdateStatusRequest{Status: models.OrderStatusDelivered})
		assert.ErrorIs(t, err, errors.ErrInvalidStatusTransition)
	})

	t.Run("未知状态被拒", func(t *testing.T) {
		_, err := s.UpdateStatus(ctx, order.ID, &UpdateStatusRequest{Status: "TELEPORTED"})
		assert.ErrorIs(t, err, errors.ErrInvalidStatusTransition)
	})

	t.Run("负实收金额被拒", func(t *testing.T) {
		bad := -50.0
		_, err := s.UpdateStatus(ctx, order.ID, &UpdateStatusRequest{
			Status:          models.OrderStatusDelivered,
			AmountCollected: &bad,
		})
		assert.ErrorIs(t, err, errors.ErrInvalidParams)
	})

	t.Run("订单不存在", func(t *testing.T) {
		_, err := s.UpdateStatus(ctx, 9999, &UpdateStatusRequest{Status: models.OrderStatusAssigned})
		assert.ErrorIs(t, err, errors.ErrOrderNotFound)
	})

	t.Run("重复提交同一状态幂等", func(t *testing.T) {
		got, err := s.UpdateStatus(ctx, order.ID, &UpdateStatusRequest{Status: models.OrderStatusPending})
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusPending, got.Status)
		assert.Empty(t, s.hook.orders)
	})
}
