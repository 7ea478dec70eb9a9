package repositories

import (
	"context"
	"database/sql"
	"fmt"

	intdb "carrental/internal/db"
	"carrental/internal/domain"
	"carrental/internal/domain/models"

	"github.com/shopspring/decimal"
)

const bookingColumns = `
	b.id, b.pickup_at, b.pickup_time, b.return_at, b.return_time,
	b.total_price, b.insurance_option, b.additional_drivers, COALESCE(b.special_requests, ''),
	b.agree_to_terms, b.status, b.car_id, b.tenant_id, b.host_id, b.created_at, b.updated_at`

// BookingRepository is the booking ledger. DB may be a *sql.DB or a *sql.Tx.
type BookingRepository struct {
	DB intdb.DBTX
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner, b *models.Booking, extra ...any) error {
	dest := []any{
		&b.ID,
		&b.PickupAt,
		&b.PickupTime,
		&b.ReturnAt,
		&b.ReturnTime,
		&b.TotalPrice,
		&b.InsuranceOption,
		&b.AdditionalDrivers,
		&b.SpecialRequests,
		&b.AgreeToTerms,
		&b.Status,
		&b.CarID,
		&b.TenantID,
		&b.HostID,
		&b.CreatedAt,
		&b.UpdatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

// Insert writes a new booking row and returns its id.
func (r BookingRepository) Insert(ctx context.Context, b models.Booking) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO bookings
			(pickup_at, pickup_time, return_at, return_time, total_price, insurance_option,
			 additional_drivers, special_requests, agree_to_terms, status, car_id, tenant_id, host_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.PickupAt,
		b.PickupTime,
		b.ReturnAt,
		b.ReturnTime,
		b.TotalPrice,
		b.InsuranceOption,
		b.AdditionalDrivers,
		intdb.NullIfEmpty(b.SpecialRequests),
		b.AgreeToTerms,
		string(b.Status),
		b.CarID,
		b.TenantID,
		b.HostID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert booking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert booking id: %w", err)
	}
	return id, nil
}

// GetForUpdate reads the booking and holds its row lock until the surrounding transaction ends.
// A missing booking is sql.ErrNoRows.
func (r BookingRepository) GetForUpdate(ctx context.Context, id int64) (models.Booking, error) {
	var b models.Booking
	row := r.DB.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings b WHERE b.id = ? LIMIT 1 FOR UPDATE`, id)
	if err := scanBooking(row, &b); err != nil {
		return models.Booking{}, err
	}
	return b, nil
}

// UpdateStatus sets the booking status. A missing row is reported as sql.ErrNoRows.
func (r BookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE bookings SET status = ?, updated_at = NOW() WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListForUser returns bookings where userID is tenant or host, newest first.
func (r BookingRepository) ListForUser(ctx context.Context, userID int64) ([]models.BookingListItem, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+bookingColumns+`,
		       c.make, c.model, c.year, COALESCE(c.image_url, '')
		FROM bookings b
		JOIN cars c ON b.car_id = c.id
		WHERE b.tenant_id = ? OR b.host_id = ?
		ORDER BY b.created_at DESC, b.id DESC`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	out := []models.BookingListItem{}
	for rows.Next() {
		var item models.BookingListItem
		if err := scanBooking(rows, &item.Booking,
			&item.Car.Make, &item.Car.Model, &item.Car.Year, &item.Car.ImageURL,
		); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return out, nil
}

// GetDetailForUser returns the booking only when userID is one of its parties. Anything else,
// including a missing booking, is sql.ErrNoRows. Payment is left nil for the caller to attach.
func (r BookingRepository) GetDetailForUser(ctx context.Context, id, userID int64) (models.BookingDetail, error) {
	var d models.BookingDetail
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+bookingColumns+`,
		       c.make, c.model, c.year, COALESCE(c.image_url, ''),
		       COALESCE(host.first_name, ''), COALESCE(host.last_name, ''),
		       COALESCE(tenant.first_name, ''), COALESCE(tenant.last_name, '')
		FROM bookings b
		JOIN cars c ON b.car_id = c.id
		JOIN users host ON b.host_id = host.id
		JOIN users tenant ON b.tenant_id = tenant.id
		WHERE b.id = ? AND (b.tenant_id = ? OR b.host_id = ?)
		LIMIT 1`, id, userID, userID)
	if err := scanBooking(row, &d.Booking,
		&d.Car.Make, &d.Car.Model, &d.Car.Year, &d.Car.ImageURL,
		&d.HostFirstName, &d.HostLastName,
		&d.TenantFirstName, &d.TenantLastName,
	); err != nil {
		return models.BookingDetail{}, err
	}
	return d, nil
}

// HostSummary counts a host's bookings per status and sums settled payments.
func (r BookingRepository) HostSummary(ctx context.Context, hostID int64) (models.HostSummary, error) {
	out := models.HostSummary{
		HostID:           hostID,
		Counts:           map[domain.BookingStatus]int{},
		CompletedRevenue: decimal.Zero,
	}

	rows, err := r.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM bookings WHERE host_id = ? GROUP BY status`, hostID)
	if err != nil {
		return out, fmt.Errorf("count bookings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status domain.BookingStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return out, fmt.Errorf("scan booking count: %w", err)
		}
		out.Counts[status] = n
		out.TotalBookings += n
	}
	if err := rows.Err(); err != nil {
		return out, fmt.Errorf("count bookings: %w", err)
	}

	if err := r.DB.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(p.amount), 0)
		FROM payments p
		JOIN bookings b ON b.id = p.booking_id
		WHERE b.host_id = ? AND p.status = ?`, hostID, string(domain.PaymentCompleted),
	).Scan(&out.CompletedRevenue); err != nil {
		return out, fmt.Errorf("sum revenue: %w", err)
	}
	return out, nil
}
