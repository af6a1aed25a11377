package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 错误分类，边界层据此映射HTTP状态码
type Kind int

const (
	KindAuthRequired Kind = iota + 1
	KindForbidden
	KindNotFound
	KindInvalidParam
	KindValidation
	KindConflict
	KindDependency
)

// Error 携带分类信息的业务错误
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New 创建指定分类的错误
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap 包装底层错误并附加分类
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// AuthRequired 调用方身份缺失
func AuthRequired(message string) *Error {
	return New(KindAuthRequired, message)
}

// Forbidden 所有权校验失败
func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

// NotFound 实体不存在
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// InvalidParam 路径或查询参数格式错误
func InvalidParam(message string) *Error {
	return New(KindInvalidParam, message)
}

// Validation 请求体字段校验失败
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// Conflict 与现有数据冲突
func Conflict(message string) *Error {
	return New(KindConflict, message)
}

// Dependency 底层依赖(数据库/存储)错误。对客户端只暴露通用信息，
// 原始错误只进日志，不回传。
func Dependency(err error) *Error {
	return Wrap(KindDependency, "internal server error", err)
}

// KindOf 提取错误分类，非*Error一律视为依赖错误
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindDependency
}

// ClientMessage 返回可以安全暴露给客户端的错误信息
func ClientMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Kind == KindDependency {
			return "internal server error"
		}
		return e.Message
	}
	return "internal server error"
}

// HTTPStatus 错误分类到HTTP状态码的映射
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindAuthRequired:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidParam, KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
