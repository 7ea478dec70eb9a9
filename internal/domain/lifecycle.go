package domain

import (
	"slices"
	"strings"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
)

// PaymentStatus is the settlement state of the payment attached to a booking.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

// PartyRole is the relation of a user to one booking.
type PartyRole int

const (
	RoleNone PartyRole = iota
	RoleTenant
	RoleHost
)

func (r PartyRole) String() string {
	switch r {
	case RoleTenant:
		return "tenant"
	case RoleHost:
		return "host"
	default:
		return "none"
	}
}

// RoleOf resolves the caller's role on a booking. Host wins if ids collide.
func RoleOf(userID, tenantID, hostID int64) PartyRole {
	switch {
	case userID <= 0:
		return RoleNone
	case userID == hostID:
		return RoleHost
	case userID == tenantID:
		return RoleTenant
	default:
		return RoleNone
	}
}

// ParseBookingStatus accepts only the statuses a client may request.
func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch st := BookingStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case BookingConfirmed, BookingCancelled, BookingCompleted:
		return st, true
	default:
		return "", false
	}
}

type transitionRule struct {
	from    []BookingStatus
	allowed []PartyRole
	denied  PermissionError
}

var transitions = map[BookingStatus]transitionRule{
	BookingConfirmed: {
		from:    []BookingStatus{BookingPending},
		allowed: []PartyRole{RoleHost},
		denied:  PermissionError{Code: CodeForbiddenHostOnly, Msg: "Only the host can update this booking status"},
	},
	BookingCompleted: {
		from:    []BookingStatus{BookingConfirmed},
		allowed: []PartyRole{RoleHost},
		denied:  PermissionError{Code: CodeForbiddenHostOnly, Msg: "Only the host can update this booking status"},
	},
	BookingCancelled: {
		from:    []BookingStatus{BookingPending, BookingConfirmed},
		allowed: []PartyRole{RoleHost, RoleTenant},
		denied:  PermissionError{Code: CodeForbiddenNotParty, Msg: "Only the host or tenant can cancel this booking"},
	},
}

// Transition is the single source of truth for the booking state machine.
// Permission is checked before the graph so a stranger learns nothing about the current state.
func Transition(current, requested BookingStatus, role PartyRole) (BookingStatus, error) {
	rule, ok := transitions[requested]
	if !ok {
		return current, ValidationError{Code: CodeInvalidStatus, Field: "status", Msg: "Invalid status"}
	}
	if !slices.Contains(rule.allowed, role) {
		return current, rule.denied
	}
	if !slices.Contains(rule.from, current) {
		return current, ValidationError{
			Code:  CodeInvalidStatus,
			Field: "status",
			Msg:   "Cannot change booking status from " + string(current) + " to " + string(requested),
		}
	}
	return requested, nil
}

// Cancel is the explicit cancel operation: any party may cancel unless the booking is completed.
// Cancelling an already cancelled booking returns CANCELLED again.
func Cancel(current BookingStatus, role PartyRole) (BookingStatus, error) {
	if role == RoleNone {
		return current, NotFoundError{
			Code: CodeNotFoundOrForbidden,
			Msg:  "Booking not found or you do not have permission to cancel it",
		}
	}
	if current == BookingCompleted {
		return current, ConflictError{Code: CodeAlreadyCompleted, Resource: "booking", Msg: "Cannot cancel a completed booking"}
	}
	return BookingCancelled, nil
}

// PaymentEffect is the payment status written together with a booking entering next.
func PaymentEffect(next BookingStatus) (PaymentStatus, bool) {
	switch next {
	case BookingConfirmed:
		return PaymentCompleted, true
	case BookingCancelled:
		return PaymentRefunded, true
	default:
		return "", false
	}
}
