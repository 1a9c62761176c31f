package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidFormat              = errors.New("invalid signal format")
	ErrExpired                    = errors.New("signal expired")
	ErrSentimentSourceUnavailable = errors.New("sentiment source unavailable")
	ErrDirectionBlocked           = errors.New("direction blocked by sentiment")
	ErrMaxOperationsReached       = errors.New("max open operations reached")
	ErrIntervalNotReached         = errors.New("symbol cooldown interval not reached")
	ErrInsufficientBalance        = errors.New("insufficient balance")
	ErrAlreadyClosed              = errors.New("operation already closed")
	ErrLinkingWindowExpired       = errors.New("affiliate linking window expired")
	ErrLinkAlreadyExists          = errors.New("user already has an active or pending affiliate link")
	ErrLinkNotPending             = errors.New("affiliate link is not pending")
	ErrLinkNotActive              = errors.New("affiliate link is not active")
	ErrLinkRequestExpired         = errors.New("affiliate link request expired")
	ErrCommissionNotPending       = errors.New("commission is not pending")
	ErrPriceUnavailable           = errors.New("price unavailable")
	ErrSelfLink                   = errors.New("affiliate cannot link to itself")
	ErrInvalidRate                = errors.New("commission rate must be in [0, 1)")
	ErrNotFound                   = errors.New("not found")
)

// Reason codes reported per user in batch summaries.
const (
	ReasonMaxOperationsReached = "MaxOperationsReached"
	ReasonIntervalNotReached   = "IntervalNotReached"
	ReasonInsufficientBalance  = "InsufficientBalance"
	ReasonAlreadyClosed        = "AlreadyClosed"
	ReasonError                = "error"
)

// EligibilityError describes why a user may not open a new operation.
type EligibilityError struct {
	Code             string
	MinutesRemaining int64
	Required         decimal.Decimal
	Available        decimal.Decimal
	cause            error
}

func NewEligibilityError(code string) *EligibilityError {
	e := &EligibilityError{Code: code}
	switch code {
	case ReasonMaxOperationsReached:
		e.cause = ErrMaxOperationsReached
	case ReasonIntervalNotReached:
		e.cause = ErrIntervalNotReached
	case ReasonInsufficientBalance:
		e.cause = ErrInsufficientBalance
	}
	return e
}

func (e *EligibilityError) Error() string {
	switch e.Code {
	case ReasonIntervalNotReached:
		return fmt.Sprintf("%s: %d minutes remaining", e.cause, e.MinutesRemaining)
	case ReasonInsufficientBalance:
		return fmt.Sprintf("%s: required %s, available %s", e.cause, e.Required.String(), e.Available.String())
	}
	if e.cause == nil {
		return e.Code
	}
	return e.cause.Error()
}

func (e *EligibilityError) Unwrap() error {
	return e.cause
}
