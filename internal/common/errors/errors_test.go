// Package errors 错误码和错误处理单元测试
package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==================== AppError 基础测试 ====================

func TestNew(t *testing.T) {
	err := New(1001, "参数错误")
	require.NotNil(t, err)
	assert.Equal(t, 1001, err.Code)
	assert.Equal(t, "参数错误", err.Message)
	assert.Nil(t, err.Err)
}

func TestWrap(t *testing.T) {
	originalErr := stderrors.New("database connection failed")
	err := Wrap(1004, "数据库错误", originalErr)

	require.NotNil(t, err)
	assert.Equal(t, 1004, err.Code)
	assert.Equal(t, "数据库错误", err.Message)
	assert.Equal(t, originalErr, err.Err)
}

// ==================== AppError 方法测试 ====================

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		want     string
	}{
		{
			name:     "Error without underlying error",
			appError: New(1001, "参数错误"),
			want:     "[1001] 参数错误",
		},
		{
			name:     "Error with underlying error",
			appError: Wrap(1004, "数据库错误", stderrors.New("connection timeout")),
			want:     "[1004] 数据库错误: connection timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.appError.Error()
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	originalErr := stderrors.New("original error")
	err := Wrap(1000, "wrapped error", originalErr)

	unwrapped := err.Unwrap()
	assert.Equal(t, originalErr, unwrapped)
}

func TestAppError_WithMessage(t *testing.T) {
	original := New(1001, "原始消息")
	modified := original.WithMessage("修改后的消息")

	assert.Equal(t, 1001, modified.Code)
	assert.Equal(t, "修改后的消息", modified.Message)
	assert.Nil(t, modified.Err)

	// 验证原始错误未被修改
	assert.Equal(t, "原始消息", original.Message)
}

func TestAppError_WithError(t *testing.T) {
	original := New(1001, "参数错误")
	underlyingErr := stderrors.New("validation failed")
	modified := original.WithError(underlyingErr)

	assert.Equal(t, 1001, modified.Code)
	assert.Equal(t, "参数错误", modified.Message)
	assert.Equal(t, underlyingErr, modified.Err)

	// 验证原始错误未被修改
	assert.Nil(t, original.Err)
}

func TestAppError_Is(t *testing.T) {
	// 同一错误码的副本仍然匹配 errors.Is
	withDetail := ErrOrderNotFound.WithError(stderrors.New("record not found"))
	assert.True(t, stderrors.Is(withDetail, ErrOrderNotFound))
	assert.True(t, stderrors.Is(ErrOrderNotFound.WithMessage("自定义消息"), ErrOrderNotFound))

	// 不同错误码不匹配
	assert.False(t, stderrors.Is(ErrOrderNotFound, ErrRiderNotFound))

	// 与非 AppError 的目标不匹配
	assert.False(t, stderrors.Is(ErrOrderNotFound, stderrors.New("订单不存在")))
}

func TestIsAppError(t *testing.T) {
	assert.True(t, IsAppError(ErrInvalidParams))
	assert.False(t, IsAppError(stderrors.New("plain error")))
}

func TestGetAppError(t *testing.T) {
	appErr := GetAppError(ErrInvalidParams)
	assert.Equal(t, ErrInvalidParams.Code, appErr.Code)

	wrapped := GetAppError(stderrors.New("plain error"))
	assert.Equal(t, ErrUnknown.Code, wrapped.Code)
	assert.NotNil(t, wrapped.Err)
}

// ==================== 错误码常量测试 ====================

func TestCommonErrors(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code int
	}{
		{"ErrUnknown", ErrUnknown, 1000},
		{"ErrInvalidParams", ErrInvalidParams, 1001},
		{"ErrNotFound", ErrNotFound, 1002},
		{"ErrAlreadyExists", ErrAlreadyExists, 1003},
		{"ErrDatabaseError", ErrDatabaseError, 1004},
		{"ErrCacheError", ErrCacheError, 1005},
		{"ErrInternalError", ErrInternalError, 1006},
		{"ErrRateLimitExceed", ErrRateLimitExceed, 1007},
		{"ErrOperationFailed", ErrOperationFailed, 1008},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestAuthErrors(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code int
	}{
		{"ErrUnauthorized", ErrUnauthorized, 2000},
		{"ErrTokenExpired", ErrTokenExpired, 2001},
		{"ErrTokenInvalid", ErrTokenInvalid, 2002},
		{"ErrPermissionDenied", ErrPermissionDenied, 2003},
		{"ErrAccountDisabled", ErrAccountDisabled, 2004},
		{"ErrPasswordError", ErrPasswordError, 2005},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestOrderErrors(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code int
	}{
		{"ErrOrderNotFound", ErrOrderNotFound, 3000},
		{"ErrOrderStatusError", ErrOrderStatusError, 3001},
		{"ErrOrderNotTerminal", ErrOrderNotTerminal, 3002},
		{"ErrShipperNotFound", ErrShipperNotFound, 3003},
		{"ErrRiderNotFound", ErrRiderNotFound, 3004},
		{"ErrRiderNotAssigned", ErrRiderNotAssigned, 3005},
		{"ErrInvalidStatusTransition", ErrInvalidStatusTransition, 3006},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestFinanceErrors(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code int
	}{
		{"ErrConfigurationMissing", ErrConfigurationMissing, 4000},
		{"ErrNoMatchingBracket", ErrNoMatchingBracket, 4001},
		{"ErrInvalidRange", ErrInvalidRange, 4002},
		{"ErrTransactionNotFound", ErrTransactionNotFound, 4003},
		{"ErrInvalidSettlement", ErrInvalidSettlement, 4004},
		{"ErrPeriodCloseConflict", ErrPeriodCloseConflict, 4005},
		{"ErrPeriodNotFound", ErrPeriodNotFound, 4006},
		{"ErrExportFailed", ErrExportFailed, 4007},
		{"ErrInvalidBrackets", ErrInvalidBrackets, 4008},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}
