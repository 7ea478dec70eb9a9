package domain

import (
	"errors"
	"fmt"
)

// Error codes reported to clients next to the human message.
const (
	CodeMissingFields       = "MissingFields"
	CodeInvalidDate         = "InvalidDate"
	CodeInvalidDateRange    = "InvalidDateRange"
	CodeTermsNotAccepted    = "TermsNotAccepted"
	CodeMissingPaymentInfo  = "MissingPaymentInfo"
	CodeInvalidCardNumber   = "InvalidCardNumber"
	CodeInvalidExpiry       = "InvalidExpiry"
	CodeInvalidCVV          = "InvalidCVV"
	CodeInvalidTotal        = "InvalidTotal"
	CodeInvalidInsurance    = "InvalidInsurance"
	CodeInvalidDrivers      = "InvalidAdditionalDrivers"
	CodeInvalidStatus       = "InvalidStatus"
	CodeInvalidID           = "InvalidID"
	CodeInvalidPayload      = "InvalidPayload"
	CodeCarNotFound         = "CarNotFound"
	CodeBookingNotFound     = "BookingNotFound"
	CodeNotFoundOrForbidden = "NotFoundOrForbidden"
	CodeSelfBookingDenied   = "SelfBookingDenied"
	CodeAlreadyCompleted    = "AlreadyCompleted"
	CodeForbiddenHostOnly   = "ForbiddenHostOnly"
	CodeForbiddenNotParty   = "ForbiddenNotParty"
	CodeUnauthorized        = "Unauthorized"
	CodeInvalidCredentials  = "InvalidCredentials"
	CodeStorageFailure      = "StorageFailure"
)

type NotFoundError struct {
	Code     string
	Resource string
	Msg      string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Code  string
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

// ConflictError is a request that is well formed but contradicts current state.
type ConflictError struct {
	Code     string
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// PermissionError means the caller is known but plays the wrong role for the action.
type PermissionError struct {
	Code string
	Msg  string
}

func (e PermissionError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "forbidden"
}

// AuthError means the caller could not be identified.
type AuthError struct {
	Code string
	Msg  string
	Err  error
}

func (e AuthError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "authentication failed"
}

func (e AuthError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsPermission(err error) bool {
	var target PermissionError
	return errors.As(err, &target)
}

func IsAuth(err error) bool {
	var target AuthError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}

// CodeOf extracts the client-facing code from any domain error.
func CodeOf(err error) string {
	var (
		v  ValidationError
		nf NotFoundError
		c  ConflictError
		p  PermissionError
		a  AuthError
	)
	switch {
	case errors.As(err, &v):
		return v.Code
	case errors.As(err, &nf):
		return nf.Code
	case errors.As(err, &c):
		return c.Code
	case errors.As(err, &p):
		return p.Code
	case errors.As(err, &a):
		return a.Code
	case IsInternal(err):
		return CodeStorageFailure
	}
	return ""
}
