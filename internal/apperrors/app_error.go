package apperrors

import (
	"errors"
	"net/http"
)

// Kind 错误分类
type Kind string

const (
	KindInvalidURL             Kind = "InvalidURL"
	KindInvalidValidity        Kind = "InvalidValidity"
	KindInvalidShortcodeFormat Kind = "InvalidShortcodeFormat"
	KindShortcodeCollision     Kind = "ShortcodeCollision"
	KindShortcodeNotFound      Kind = "ShortcodeNotFound"
	KindShortcodeExpired       Kind = "ShortcodeExpired"
	KindInternal               Kind = "InternalError"
)

// i18n 消息 ID
const (
	MsgInvalidURL             = "error.invalid_url"
	MsgInvalidValidity        = "error.invalid_validity"
	MsgInvalidShortcodeFormat = "error.invalid_shortcode_format"
	MsgShortcodeCollision     = "error.shortcode_collision"
	MsgShortcodeNotFound      = "error.shortcode_not_found"
	MsgShortcodeExpired       = "error.shortcode_expired"
	MsgInternal               = "error.internal"
)

// AppError 自定义错误类型
//
// Code 为 HTTP 状态码，Message 为未本地化时的默认文案。
type AppError struct {
	Code      int
	Kind      Kind
	MessageID string
	Message   string
	Cause     error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is 同一分类的 AppError 视为相等，便于 errors.Is 判断
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// WithCause 附带底层错误，返回新的 AppError
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

func newAppError(code int, kind Kind, messageID, message string) *AppError {
	return &AppError{
		Code:      code,
		Kind:      kind,
		MessageID: messageID,
		Message:   message,
	}
}

// InvalidURL 目标地址不合法
func InvalidURL() *AppError {
	return newAppError(http.StatusBadRequest, KindInvalidURL, MsgInvalidURL, "Invalid URL")
}

// InvalidValidity 有效期不是正整数
func InvalidValidity() *AppError {
	return newAppError(http.StatusBadRequest, KindInvalidValidity, MsgInvalidValidity,
		"Validity must be a positive integer (minutes)")
}

// InvalidShortcodeFormat 自定义短码格式错误
func InvalidShortcodeFormat() *AppError {
	return newAppError(http.StatusBadRequest, KindInvalidShortcodeFormat, MsgInvalidShortcodeFormat,
		"Shortcode must be alphanumeric, 3-20 chars")
}

// ShortcodeCollision 自定义短码已被占用
func ShortcodeCollision() *AppError {
	return newAppError(http.StatusConflict, KindShortcodeCollision, MsgShortcodeCollision, "Shortcode already exists")
}

// ShortcodeNotFound 短码不存在
func ShortcodeNotFound() *AppError {
	return newAppError(http.StatusNotFound, KindShortcodeNotFound, MsgShortcodeNotFound, "Shortcode not found")
}

// ShortcodeExpired 短码已过期
func ShortcodeExpired() *AppError {
	return newAppError(http.StatusGone, KindShortcodeExpired, MsgShortcodeExpired, "Shortcode expired")
}

// SystemError 系统内部错误，不向调用方暴露细节
func SystemError(cause error) *AppError {
	return newAppError(http.StatusInternalServerError, KindInternal, MsgInternal, "Internal server error").
		WithCause(cause)
}

// From 提取 AppError，非 AppError 一律视为内部错误
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return SystemError(err)
}
