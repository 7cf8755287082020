package pkg

import (
	"errors"
	"fmt"
)

// 错误分类：handler 按分类映射 HTTP 状态码
var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("not found")
	ErrPermission      = errors.New("permission denied")
	ErrExternalService = errors.New("external service error")
)

// AppError 携带分类和给调用方看的消息
type AppError struct {
	Kind error
	Msg  string
}

func (e *AppError) Error() string {
	return e.Msg
}

func (e *AppError) Is(target error) bool {
	return e.Kind == target
}

func (e *AppError) Unwrap() error {
	return e.Kind
}

func Validation(format string, args ...any) error {
	return &AppError{Kind: ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &AppError{Kind: ErrNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Permission(format string, args ...any) error {
	return &AppError{Kind: ErrPermission, Msg: fmt.Sprintf(format, args...)}
}

func External(format string, args ...any) error {
	return &AppError{Kind: ErrExternalService, Msg: fmt.Sprintf(format, args...)}
}

// Message 取出可以直接返回给客户端的消息；非 AppError 返回 fallback
func Message(err error, fallback string) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Msg
	}
	return fallback
}
