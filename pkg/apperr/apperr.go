// Package apperr defines the error taxonomy shared by services and
// controllers. Services return these; pkg/resp renders them with a stable
// code, never a stack trace.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeUnauthenticated     = "AUTHENTICATION_ERROR"
	CodeForbidden           = "AUTHORIZATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeDataUnavailable     = "DATA_UNAVAILABLE"
	CodeSubscriptionLimited = "SUBSCRIPTION_LIMIT_EXCEEDED"
)

type Error struct {
	Code      string
	Status    int
	Message   string
	Retryable bool

	// Subscription errors carry upsell context instead of a bare denial.
	Tier            string
	UpgradeRequired bool
	UpgradeURL      string

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// As extracts an *Error from any error chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Status: http.StatusBadRequest, Message: msg}
}

func Unauthenticated(msg string) *Error {
	return &Error{Code: CodeUnauthenticated, Status: http.StatusUnauthorized, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Code: CodeForbidden, Status: http.StatusForbidden, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Status: http.StatusNotFound, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Status: http.StatusConflict, Message: msg}
}

// DataUnavailable marks storage failures as retryable 503s. Callers must be
// able to distinguish "no orders yet" from "could not compute".
func DataUnavailable(cause error) *Error {
	return &Error{
		Code:      CodeDataUnavailable,
		Status:    http.StatusServiceUnavailable,
		Message:   "data store unavailable",
		Retryable: true,
		cause:     cause,
	}
}

func SubscriptionLimited(tier, upgradeURL string) *Error {
	return &Error{
		Code:            CodeSubscriptionLimited,
		Status:          http.StatusForbidden,
		Message:         "request exceeds subscription tier limits",
		Tier:            tier,
		UpgradeRequired: true,
		UpgradeURL:      upgradeURL,
	}
}
