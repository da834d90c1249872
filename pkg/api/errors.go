package api

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/kasuganosora/sqlgeo/pkg/ewkt"
)

// Error 错误类型（带堆栈）
type Error struct {
	Code    ErrorCode
	Message string
	Stack   []string // 调用堆栈
	Cause   error    // 原始错误
}

// ErrorCode 错误码
type ErrorCode string

const (
	ErrCodeSyntax          ErrorCode = "SYNTAX_ERROR"
	ErrCodeInvalidGeometry ErrorCode = "INVALID_GEOMETRY"
	ErrCodeLimit           ErrorCode = "LIMIT_EXCEEDED"
	ErrCodeQuery           ErrorCode = "QUERY_FAILED"
	ErrCodeInvalidParam    ErrorCode = "INVALID_PARAM"
	ErrCodeConfig          ErrorCode = "CONFIG"
	ErrCodeClosed          ErrorCode = "CLOSED"
	ErrCodeInternal        ErrorCode = "INTERNAL"
)

// Error 接口实现
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回原始错误
func (e *Error) Unwrap() error {
	return e.Cause
}

// StackTrace 返回调用堆栈
func (e *Error) StackTrace() []string {
	return e.Stack
}

// NewError 创建错误
func NewError(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Stack:   captureStackTrace(),
		Cause:   cause,
	}
}

// WrapError 包装错误，已是 *Error 时沿用原堆栈
func WrapError(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return &Error{
			Code:    code,
			Message: message,
			Stack:   apiErr.Stack,
			Cause:   err,
		}
	}

	return &Error{
		Code:    code,
		Message: message,
		Stack:   captureStackTrace(),
		Cause:   err,
	}
}

// FromParseError 把 EWKT 解析错误映射为 API 错误码
// 词法和语法错误都归为 SYNTAX_ERROR；其它错误原样包装为 INTERNAL
func FromParseError(err error, message string) *Error {
	if err == nil {
		return nil
	}
	code := ErrCodeInternal
	switch ewkt.KindOf(err) {
	case ewkt.KindLexical, ewkt.KindSyntax:
		code = ErrCodeSyntax
	case ewkt.KindValidation:
		code = ErrCodeInvalidGeometry
	case ewkt.KindLimit:
		code = ErrCodeLimit
	}
	return WrapError(err, code, message)
}

// captureStackTrace 捕获调用堆栈
func captureStackTrace() []string {
	pc := make([]uintptr, 32)
	n := runtime.Callers(3, pc) // 跳过 Callers、captureStackTrace 和构造函数

	if n == 0 {
		return []string{}
	}

	frames := runtime.CallersFrames(pc[:n])
	stack := make([]string, 0, n)

	for {
		frame, more := frames.Next()

		fn := frame.Function
		file := frame.File
		if idx := strings.LastIndex(file, "/"); idx != -1 {
			file = file[idx+1:]
		}
		if idx := strings.LastIndex(fn, "/"); idx != -1 {
			fn = fn[idx+1:]
		}
		stack = append(stack, fmt.Sprintf("  at %s (%s:%d)", fn, file, frame.Line))

		if !more {
			break
		}
	}

	return stack
}

// IsErrorCode 检查错误链中最外层 *Error 的错误码
func IsErrorCode(err error, code ErrorCode) bool {
	return GetErrorCode(err) == code && code != ""
}

// GetErrorCode 获取错误链中最外层 *Error 的错误码
func GetErrorCode(err error) ErrorCode {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}
