package service

import (
	"errors"
	"fmt"
)

const (
	ErrCodeDatabase = "DATABASE_ERROR"
)

var (
	ErrAlreadySettled         = errors.New("TRANSACTION_ALREADY_SETTLED")
	ErrInsufficientSettlement = errors.New("SETTLEMENT_BALANCE_GUARD_FAILED")
)

type Error struct {
	Code  string
	Cause error
}

func NewServiceError(code string, cause error) error {
	return Error{Code: code, Cause: cause}
}

func (e Error) Error() string {
	return e.Cause.Error()
}

func (e Error) Unwrap() error {
	return e.Cause
}

// BalanceError is an insufficient-funds rejection carrying enough detail for
// the caller to self-correct.
type BalanceError struct {
	CurrentBalance int64
	Required       int64
}

func (e BalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: have %d, need %d", e.CurrentBalance, e.Required)
}
