package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	intdb "carrental/internal/db"
	"carrental/internal/domain"
	"carrental/internal/domain/models"
	"carrental/internal/repositories"
	"carrental/internal/utils"

	"github.com/google/uuid"
)

// BookingService coordinates bookings with their payment and saved card. Every write runs in
// one transaction on DB; nothing is retried.
type BookingService struct {
	DB         *sql.DB
	CardSecret []byte
	RequestID  string
	Now        func() time.Time
}

func (s BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// newTransactionRef returns an opaque payment reference, unique per call.
func newTransactionRef(now time.Time) string {
	random := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("TXN-%d-%s", now.UnixMilli(), random)
}

// asStorageFailure keeps domain errors as they are and turns anything else into InternalError.
func asStorageFailure(msg string, err error) error {
	if err == nil {
		return nil
	}
	if domain.CodeOf(err) != "" {
		return err
	}
	return domain.InternalError{Msg: msg, Err: err}
}

// CreateBooking validates the request, resolves the car's host and then writes the booking,
// its PENDING payment and, when asked, the saved card in a single transaction.
func (s BookingService) CreateBooking(ctx context.Context, tenantID int64, in models.CreateBookingInput) (models.CreateBookingResult, error) {
	v, err := ValidateCreateBooking(in)
	if err != nil {
		return models.CreateBookingResult{}, err
	}

	hostID, err := repositories.CarRepository{DB: s.DB}.ResolveHost(ctx, v.carID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.CreateBookingResult{}, domain.NotFoundError{Code: domain.CodeCarNotFound, Resource: "car", Msg: "Car not found"}
		}
		return models.CreateBookingResult{}, domain.InternalError{Msg: "Failed to create booking", Err: err}
	}
	if hostID == tenantID {
		return models.CreateBookingResult{}, domain.ConflictError{
			Code:     domain.CodeSelfBookingDenied,
			Resource: "booking",
			Msg:      "You cannot book your own car",
		}
	}

	// TODO: reject overlapping CONFIRMED/PENDING ranges on the same car before inserting.
	now := s.now()
	var bookingID int64
	err = intdb.WithinTx(ctx, s.DB, func(tx *sql.Tx) error {
		id, err := repositories.BookingRepository{DB: tx}.Insert(ctx, models.Booking{
			PickupAt:          v.pickupAt,
			PickupTime:        v.pickupTime,
			ReturnAt:          v.returnAt,
			ReturnTime:        v.returnTime,
			TotalPrice:        v.total,
			InsuranceOption:   v.insurance,
			AdditionalDrivers: v.additionalDrivers,
			SpecialRequests:   v.specialRequests,
			AgreeToTerms:      true,
			Status:            domain.BookingPending,
			CarID:             v.carID,
			TenantID:          tenantID,
			HostID:            hostID,
		})
		if err != nil {
			return err
		}

		if _, err := (repositories.PaymentRepository{DB: tx}).Insert(ctx, models.Payment{
			BookingID:     id,
			Amount:        v.total,
			Status:        domain.PaymentPending,
			PaymentMethod: models.PaymentMethodCreditCard,
			TransactionID: newTransactionRef(now),
		}); err != nil {
			return err
		}

		if v.saveCard {
			if _, err := (repositories.CardRepository{DB: tx}).InsertIfAbsent(ctx, models.SavedCard{
				UserID:         tenantID,
				Fingerprint:    CardFingerprint(s.CardSecret, v.cardNumber),
				CardName:       v.cardName,
				ExpiryDate:     v.expiry,
				LastFourDigits: utils.LastN(v.cardNumber, 4),
			}); err != nil {
				return err
			}
		}

		bookingID = id
		return nil
	})
	if err != nil {
		txFailures.WithLabelValues("create").Inc()
		utils.LogError(s.RequestID, "bookings", "create", err)
		return models.CreateBookingResult{}, domain.InternalError{Msg: "Failed to create booking", Err: err}
	}

	bookingsCreated.Inc()
	utils.LogEvent(s.RequestID, "bookings", "create", fmt.Sprintf("booking=%d car=%d tenant=%d total=%s", bookingID, v.carID, tenantID, utils.FormatMoney(v.total)))
	return models.CreateBookingResult{BookingID: bookingID, Status: domain.BookingPending}, nil
}

// UpdateStatus applies a requested transition under a row lock and moves the payment with it.
func (s BookingService) UpdateStatus(ctx context.Context, userID, bookingID int64, status string) (models.StatusChangeResult, error) {
	requested, ok := domain.ParseBookingStatus(status)
	if !ok {
		return models.StatusChangeResult{}, domain.ValidationError{Code: domain.CodeInvalidStatus, Field: "status", Msg: "Invalid status"}
	}

	var next domain.BookingStatus
	err := intdb.WithinTx(ctx, s.DB, func(tx *sql.Tx) error {
		b, err := repositories.BookingRepository{DB: tx}.GetForUpdate(ctx, bookingID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.NotFoundError{Code: domain.CodeBookingNotFound, Resource: "booking", Msg: "Booking not found"}
			}
			return err
		}

		next, err = domain.Transition(b.Status, requested, domain.RoleOf(userID, b.TenantID, b.HostID))
		if err != nil {
			return err
		}
		return s.writeStatus(ctx, tx, bookingID, next)
	})
	if err != nil {
		if !domain.IsValidation(err) && !domain.IsPermission(err) && !domain.IsNotFound(err) {
			txFailures.WithLabelValues("update_status").Inc()
			utils.LogError(s.RequestID, "bookings", "update_status", err)
		}
		return models.StatusChangeResult{}, asStorageFailure("Failed to update booking status", err)
	}

	transitions.WithLabelValues(string(next)).Inc()
	utils.LogEvent(s.RequestID, "bookings", "update_status", fmt.Sprintf("booking=%d status=%s user=%d", bookingID, next, userID))
	return models.StatusChangeResult{BookingID: bookingID, Status: next}, nil
}

// Cancel is the explicit cancel path. Strangers and missing bookings look the same to the caller.
func (s BookingService) Cancel(ctx context.Context, userID, bookingID int64) (models.StatusChangeResult, error) {
	changed := false
	err := intdb.WithinTx(ctx, s.DB, func(tx *sql.Tx) error {
		b, err := repositories.BookingRepository{DB: tx}.GetForUpdate(ctx, bookingID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.NotFoundError{
					Code: domain.CodeNotFoundOrForbidden,
					Msg:  "Booking not found or you do not have permission to cancel it",
				}
			}
			return err
		}

		next, err := domain.Cancel(b.Status, domain.RoleOf(userID, b.TenantID, b.HostID))
		if err != nil {
			return err
		}
		if b.Status == next {
			return nil
		}
		changed = true
		return s.writeStatus(ctx, tx, bookingID, next)
	})
	if err != nil {
		if !domain.IsNotFound(err) && !domain.IsConflict(err) {
			txFailures.WithLabelValues("cancel").Inc()
			utils.LogError(s.RequestID, "bookings", "cancel", err)
		}
		return models.StatusChangeResult{}, asStorageFailure("Failed to cancel booking", err)
	}

	if changed {
		transitions.WithLabelValues(string(domain.BookingCancelled)).Inc()
		utils.LogEvent(s.RequestID, "bookings", "cancel", fmt.Sprintf("booking=%d user=%d", bookingID, userID))
	}
	return models.StatusChangeResult{BookingID: bookingID, Status: domain.BookingCancelled}, nil
}

func (s BookingService) writeStatus(ctx context.Context, tx *sql.Tx, bookingID int64, next domain.BookingStatus) error {
	if err := (repositories.BookingRepository{DB: tx}).UpdateStatus(ctx, bookingID, next); err != nil {
		return err
	}
	if ps, ok := domain.PaymentEffect(next); ok {
		return repositories.PaymentRepository{DB: tx}.UpdateStatusByBooking(ctx, bookingID, ps)
	}
	return nil
}

// ListForUser returns every booking where the user is tenant or host, newest first.
func (s BookingService) ListForUser(ctx context.Context, userID int64) ([]models.BookingListItem, error) {
	items, err := repositories.BookingRepository{DB: s.DB}.ListForUser(ctx, userID)
	if err != nil {
		return nil, domain.InternalError{Msg: "Failed to fetch bookings", Err: err}
	}
	return items, nil
}

// GetForUser returns one booking with its payment when the user is a party to it.
func (s BookingService) GetForUser(ctx context.Context, userID, bookingID int64) (models.BookingDetail, error) {
	d, err := repositories.BookingRepository{DB: s.DB}.GetDetailForUser(ctx, bookingID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.BookingDetail{}, domain.NotFoundError{
				Code: domain.CodeNotFoundOrForbidden,
				Msg:  "Booking not found or you do not have permission to view it",
			}
		}
		return models.BookingDetail{}, domain.InternalError{Msg: "Failed to fetch booking", Err: err}
	}

	p, err := repositories.PaymentRepository{DB: s.DB}.GetByBookingID(ctx, bookingID)
	if err != nil {
		return models.BookingDetail{}, domain.InternalError{Msg: "Failed to fetch booking", Err: err}
	}
	d.Payment = p
	return d, nil
}

// HostSummary aggregates the bookings the user hosts.
func (s BookingService) HostSummary(ctx context.Context, hostID int64) (models.HostSummary, error) {
	sum, err := repositories.BookingRepository{DB: s.DB}.HostSummary(ctx, hostID)
	if err != nil {
		return models.HostSummary{}, domain.InternalError{Msg: "Failed to fetch host summary", Err: err}
	}
	return sum, nil
}

// ListCards returns the masked cards the user saved while booking.
func (s BookingService) ListCards(ctx context.Context, userID int64) ([]models.SavedCard, error) {
	cards, err := repositories.CardRepository{DB: s.DB}.ListByUser(ctx, userID)
	if err != nil {
		return nil, domain.InternalError{Msg: "Failed to fetch saved cards", Err: err}
	}
	return cards, nil
}
