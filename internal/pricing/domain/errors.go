package domain

import (
	"errors"
	"fmt"
)

// ErrorKind 定价领域错误分类
type ErrorKind string

const (
	KindInvalidTenor       ErrorKind = "InvalidTenor"
	KindUnsupportedSymbol  ErrorKind = "UnsupportedSymbol"
	KindMalformedPayload   ErrorKind = "MalformedPayload"
	KindUnknownField       ErrorKind = "UnknownField"
	KindInconsistentRow    ErrorKind = "InconsistentRow"
	KindNoMarketData       ErrorKind = "NoMarketData"
	KindInvalidOptionType  ErrorKind = "InvalidOptionType"
	KindInvalidStrike      ErrorKind = "InvalidStrike"
	KindSymbolNotFound     ErrorKind = "SymbolNotFound"
	KindTenorNotFound      ErrorKind = "TenorNotFound"
	KindInvalidSmile       ErrorKind = "InvalidSmile"
	KindNumericDomainError ErrorKind = "NumericDomainError"
)

// 哨兵错误，配合 errors.Is 按分类匹配
var (
	ErrInvalidTenor       = &Error{Kind: KindInvalidTenor}
	ErrUnsupportedSymbol  = &Error{Kind: KindUnsupportedSymbol}
	ErrMalformedPayload   = &Error{Kind: KindMalformedPayload}
	ErrUnknownField       = &Error{Kind: KindUnknownField}
	ErrInconsistentRow    = &Error{Kind: KindInconsistentRow}
	ErrNoMarketData       = &Error{Kind: KindNoMarketData}
	ErrInvalidOptionType  = &Error{Kind: KindInvalidOptionType}
	ErrInvalidStrike      = &Error{Kind: KindInvalidStrike}
	ErrSymbolNotFound     = &Error{Kind: KindSymbolNotFound}
	ErrTenorNotFound      = &Error{Kind: KindTenorNotFound}
	ErrInvalidSmile       = &Error{Kind: KindInvalidSmile}
	ErrNumericDomainError = &Error{Kind: KindNumericDomainError}
)

// Error 带分类的领域错误
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func wrapError(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	switch {
	case e.Msg == "" && e.Err == nil:
		return string(e.Kind)
	case e.Err == nil:
		return e.Msg
	case e.Msg == "":
		return e.Err.Error()
	default:
		return e.Msg + ": " + e.Err.Error()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is 仅比较错误分类
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf 提取错误分类，非领域错误返回空串
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
