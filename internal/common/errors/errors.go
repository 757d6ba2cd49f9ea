// Package errors 定义业务错误码和错误处理
package errors

import (
	"fmt"
)

// AppError 应用错误
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 实现 errors.Unwrap
func (e *AppError) Unwrap() error {
	return e.Err
}

// New 创建新的应用错误
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装错误
func Wrap(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithMessage 修改错误消息
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: message,
		Err:     e.Err,
	}
}

// WithError 添加原始错误
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// Is 支持 errors.Is 按错误码比较
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Code == t.Code
	}
	return false
}

// 通用错误码 (1000-1999)
var (
	ErrUnknown         = New(1000, "未知错误")
	ErrInvalidParams   = New(1001, "参数错误")
	ErrNotFound        = New(1002, "资源不存在")
	ErrAlreadyExists   = New(1003, "资源已存在")
	ErrDatabaseError   = New(1004, "数据库错误")
	ErrCacheError      = New(1005, "缓存错误")
	ErrInternalError   = New(1006, "内部错误")
	ErrRateLimitExceed = New(1007, "请求过于频繁")
	ErrOperationFailed = New(1008, "操作失败")
)

// 认证错误码 (2000-2999)
var (
	ErrUnauthorized     = New(2000, "未登录")
	ErrTokenExpired     = New(2001, "登录已过期")
	ErrTokenInvalid     = New(2002, "无效的令牌")
	ErrPermissionDenied = New(2003, "权限不足")
	ErrAccountDisabled  = New(2004, "账号已禁用")
	ErrPasswordError    = New(2005, "密码错误")
)

// 订单/主数据错误码 (3000-3999)
var (
	ErrOrderNotFound          = New(3000, "订单不存在")
	ErrOrderStatusError       = New(3001, "订单状态异常")
	ErrOrderNotTerminal       = New(3002, "订单未进入终态")
	ErrShipperNotFound        = New(3003, "商家不存在")
	ErrRiderNotFound          = New(3004, "骑手不存在")
	ErrRiderNotAssigned       = New(3005, "订单未分配骑手")
	ErrInvalidStatusTransition = New(3006, "非法的状态流转")
)

// 财务错误码 (4000-4999)
var (
	ErrConfigurationMissing  = New(4000, "佣金配置不存在")
	ErrNoMatchingBracket     = New(4001, "重量超出所有计费分段")
	ErrInvalidRange          = New(4002, "无效的日期范围")
	ErrTransactionNotFound   = New(4003, "财务流水不存在")
	ErrInvalidSettlement     = New(4004, "无效的结算状态")
	ErrPeriodCloseConflict   = New(4005, "账期已被并发关闭")
	ErrPeriodNotFound        = New(4006, "财务账期不存在")
	ErrExportFailed          = New(4007, "报表导出失败")
	ErrInvalidBrackets       = New(4008, "重量分段配置不合法")
)

// IsAppError 判断是否为应用错误
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetAppError 获取应用错误
func GetAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrUnknown.WithError(err)
}
