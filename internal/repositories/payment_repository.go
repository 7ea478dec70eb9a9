package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	intdb "carrental/internal/db"
	"carrental/internal/domain"
	"carrental/internal/domain/models"
)

// PaymentRepository is the payment ledger. DB may be a *sql.DB or a *sql.Tx.
type PaymentRepository struct {
	DB intdb.DBTX
}

// Insert writes the payment row for a booking and returns its id.
func (r PaymentRepository) Insert(ctx context.Context, p models.Payment) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO payments (amount, status, booking_id, payment_method, transaction_id)
		VALUES (?, ?, ?, ?, ?)`,
		p.Amount,
		string(p.Status),
		p.BookingID,
		p.PaymentMethod,
		p.TransactionID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert payment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert payment id: %w", err)
	}
	return id, nil
}

// GetByBookingID returns nil without error when the booking has no payment row.
func (r PaymentRepository) GetByBookingID(ctx context.Context, bookingID int64) (*models.Payment, error) {
	var p models.Payment
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, booking_id, amount, status, payment_method, COALESCE(transaction_id, ''), created_at, updated_at
		FROM payments
		WHERE booking_id = ?
		LIMIT 1`, bookingID,
	).Scan(
		&p.ID,
		&p.BookingID,
		&p.Amount,
		&p.Status,
		&p.PaymentMethod,
		&p.TransactionID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return &p, nil
}

// UpdateStatusByBooking moves the booking's payment to status. Every booking owns exactly one
// payment, so touching zero rows is an error.
func (r PaymentRepository) UpdateStatusByBooking(ctx context.Context, bookingID int64, status domain.PaymentStatus) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE payments SET status = ?, updated_at = NOW() WHERE booking_id = ?`, string(status), bookingID)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update payment status: no payment for booking %d", bookingID)
	}
	return nil
}
