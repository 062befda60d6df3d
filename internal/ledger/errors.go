package ledger

import (
	"errors"
	"fmt"
)

// Code classifies a ledger failure. Every exported operation fails with one of these.
type Code string

const (
	CodeAlreadyExists       Code = "ALREADY_EXISTS"
	CodeNotFound            Code = "NOT_FOUND"
	CodeInvalidAmount       Code = "INVALID_AMOUNT"
	CodeInvalidArgument     Code = "INVALID_ARGUMENT"
	CodeInsufficientBalance Code = "INSUFFICIENT_BALANCE"
	CodeNotMatured          Code = "NOT_MATURED"
	CodeUnauthorized        Code = "UNAUTHORIZED"
	CodeInactiveStrategy    Code = "INACTIVE_STRATEGY"
	CodeArithmeticOverflow  Code = "ARITHMETIC_OVERFLOW"
	CodeInconsistentState   Code = "INCONSISTENT_STATE"
)

// Error is a classified ledger failure.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is matches any *Error carrying the same code, so errors.Is(err, ErrNotFound) works
// regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || t == nil || e == nil {
		return false
	}
	return e.Code == t.Code
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf returns the code of the first *Error in err's chain, or "" when err is not classified.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e.Code
	}
	return ""
}

var (
	ErrAlreadyExists       = New(CodeAlreadyExists, "already exists")
	ErrNotFound            = New(CodeNotFound, "not found")
	ErrInvalidAmount       = New(CodeInvalidAmount, "invalid amount")
	ErrInvalidArgument     = New(CodeInvalidArgument, "invalid argument")
	ErrInsufficientBalance = New(CodeInsufficientBalance, "insufficient balance")
	ErrNotMatured          = New(CodeNotMatured, "not matured")
	ErrUnauthorized        = New(CodeUnauthorized, "unauthorized")
	ErrInactiveStrategy    = New(CodeInactiveStrategy, "strategy is inactive")
	ErrArithmeticOverflow  = New(CodeArithmeticOverflow, "arithmetic overflow")
	ErrInconsistentState   = New(CodeInconsistentState, "inconsistent state")

	// ErrInsufficientVaultBalance means the pool vault holds less than the principal it owes.
	// This can only happen when the conservation invariant is already broken.
	ErrInsufficientVaultBalance = New(CodeInconsistentState, "insufficient vault balance")
)
