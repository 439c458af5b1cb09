package errs

import (
	"errors"
	"fmt"
)

// Kind 业务错误分类（用于向上层/HTTP 层传递明确的失败语义）。
type Kind string

const (
	KindNotFound     Kind = "not_found"     // 订单/车辆/司机/任务不存在
	KindConflict     Kind = "conflict"      // 资源不可用或版本号冲突（乐观锁）
	KindInvalidState Kind = "invalid_state" // 当前状态下不允许该操作
	KindValidation   Kind = "validation"    // 入参非法（负数金额、未知枚举等）
)

// Error 携带 Kind 的业务错误。通过 errors.As 取出后按 Kind 分流。
type Error struct {
	Kind Kind
	Msg  string
	Err  error // 可选：底层错误
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New 创建业务错误。
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf 创建带格式化消息的业务错误。
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap 包装底层错误并标注 Kind。
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf 取出错误的 Kind；非业务错误返回空串。
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsNotFound(err error) bool     { return KindOf(err) == KindNotFound }
func IsConflict(err error) bool     { return KindOf(err) == KindConflict }
func IsInvalidState(err error) bool { return KindOf(err) == KindInvalidState }
func IsValidation(err error) bool   { return KindOf(err) == KindValidation }
