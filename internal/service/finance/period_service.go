package finance

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dumeirei/courier-backend/internal/common/errors"
	"github.com/dumeirei/courier-backend/internal/common/metrics"
	"github.com/dumeirei/courier-backend/internal/models"
	"github.com/dumeirei/courier-backend/internal/repository"
)

// PeriodService 财务账期管理
// 两态状态机（OPEN/CLOSED），不变量是任意时刻最多一个 OPEN 账期；
// 关账是一个事务内的读-改-建，双方并发关账时输家直接观察到已关账的结果
type PeriodService struct {
	db         *gorm.DB
	periodRepo *repository.FinancePeriodRepository
	loc        *time.Location
	logger     *zap.Logger
}

// NewPeriodService 创建账期服务
func NewPeriodService(db *gorm.DB, periodRepo *repository.FinancePeriodRepository, loc *time.Location, logger *zap.Logger) *PeriodService {
	return &PeriodService{
		db:         db,
		periodRepo: periodRepo,
		loc:        loc,
		logger:     logger,
	}
}

// GetOpenPeriod 获取当前 OPEN 账期
// 不存在时惰性创建，起始日为本月一号
func (s *PeriodService) GetOpenPeriod(ctx context.Context) (*models.FinancePeriod, error) {
	period, err := s.periodRepo.GetOpen(ctx)
	if err == nil {
		return period, nil
	}
	if !repository.IsNotFound(err) {
		return nil, err
	}

	now := time.Now().In(s.loc)
	period = &models.FinancePeriod{
		PeriodStart: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc),
		Status:      models.FinancePeriodOpen,
	}
	if err := s.periodRepo.Create(ctx, period); err != nil {
		// 并发惰性创建时输家改读已有账期
		if existing, getErr := s.periodRepo.GetOpen(ctx); getErr == nil {
			return existing, nil
		}
		return nil, err
	}
	s.logger.Info("已创建初始财务账期",
		zap.Time("period_start", period.PeriodStart),
	)
	return period, nil
}

// ClosePeriodResult 关账结果
type ClosePeriodResult struct {
	ClosedPeriod *models.FinancePeriod `json:"closed_period"`
	NewPeriod    *models.FinancePeriod `json:"new_period"`
}

// CloseCurrentFinanceMonth 关闭当前财务月
// 当前 OPEN 账期记上截止时间并置为 CLOSED，同一事务内开启下一个账期，
// 新账期从被关账期截止日的次日开始
func (s *PeriodService) CloseCurrentFinanceMonth(ctx context.Context, operatorID int64) (*ClosePeriodResult, error) {
	// 确保至少存在一个账期可关
	if _, err := s.GetOpenPeriod(ctx); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	var result ClosePeriodResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.FinancePeriod
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("status = ?", models.FinancePeriodOpen).
			Order("period_start DESC").
			First(&current).Error
		if err != nil {
			return err
		}

		now := time.Now().In(s.loc)
		periodEnd := DayEnd(now, s.loc)
		// 同日重复关账时新账期从明天才开始，截止时间托底到起始日当天，
		// 避免出现截止早于起始的倒挂账期
		if periodEnd.Before(current.PeriodStart) {
			periodEnd = DayEnd(current.PeriodStart, s.loc)
		}
		closedAt := now
		current.PeriodEnd = &periodEnd
		current.Status = models.FinancePeriodClosed
		current.ClosedAt = &closedAt
		current.ClosedBy = &operatorID
		if err := tx.Save(&current).Error; err != nil {
			return err
		}

		next := models.FinancePeriod{
			PeriodStart: DayStart(periodEnd.AddDate(0, 0, 1), s.loc),
			Status:      models.FinancePeriodOpen,
		}
		if err := tx.Create(&next).Error; err != nil {
			return err
		}

		result.ClosedPeriod = &current
		result.NewPeriod = &next
		return nil
	})
	if err != nil {
		// 并发关账的输家在锁释放后读不到 OPEN 账期，
		// 按约定返回已关账的结果而不是报错
		if repository.IsNotFound(err) {
			return s.observeClosedResult(ctx)
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	metrics.RecordPeriodClose()
	s.logger.Info("财务月已关账",
		zap.Int64("closed_period_id", result.ClosedPeriod.ID),
		zap.Int64("new_period_id", result.NewPeriod.ID),
		zap.Int64("operator_id", operatorID),
	)
	return &result, nil
}

// observeClosedResult 并发关账输家读取赢家留下的结果
func (s *PeriodService) observeClosedResult(ctx context.Context) (*ClosePeriodResult, error) {
	open, err := s.periodRepo.GetOpen(ctx)
	if err != nil {
		return nil, errors.ErrPeriodCloseConflict.WithError(err)
	}

	var closed models.FinancePeriod
	err = s.db.WithContext(ctx).
		Where("status = ?", models.FinancePeriodClosed).
		Order("period_start DESC").
		First(&closed).Error
	if err != nil {
		return nil, errors.ErrPeriodCloseConflict.WithError(err)
	}
	return &ClosePeriodResult{ClosedPeriod: &closed, NewPeriod: open}, nil
}
