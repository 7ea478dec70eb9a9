package repositories

import (
	"context"

	intdb "carrental/internal/db"
)

// CarRepository is the read side of the listings subsystem that bookings depend on.
type CarRepository struct {
	DB intdb.DBTX
}

// ResolveHost returns the host of a live (not soft-deleted) car, or sql.ErrNoRows.
func (r CarRepository) ResolveHost(ctx context.Context, carID int64) (int64, error) {
	var hostID int64
	err := r.DB.QueryRowContext(ctx,
		`SELECT host_id FROM cars WHERE id = ? AND deleted_at IS NULL LIMIT 1`, carID,
	).Scan(&hostID)
	if err != nil {
		return 0, err
	}
	return hostID, nil
}
