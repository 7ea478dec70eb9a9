package repositories

import (
	"context"
	"errors"
	"fmt"

	intdb "carrental/internal/db"
	"carrental/internal/domain/models"

	"github.com/go-sql-driver/mysql"
)

const mysqlErrDuplicateEntry = 1062

// CardRepository is the saved-card store. DB may be a *sql.DB or a *sql.Tx.
type CardRepository struct {
	DB intdb.DBTX
}

// Exists reports whether the user already saved a card with this fingerprint.
func (r CardRepository) Exists(ctx context.Context, userID int64, fingerprint string) (bool, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_cards WHERE user_id = ? AND card_fingerprint = ?`,
		userID, fingerprint,
	).Scan(&n); err != nil {
		return false, fmt.Errorf("check saved card: %w", err)
	}
	return n > 0, nil
}

// InsertIfAbsent saves the card unless (user, fingerprint) exists. A concurrent insert that
// loses the unique-key race is treated as already saved; InnoDB only rolls back the statement.
func (r CardRepository) InsertIfAbsent(ctx context.Context, c models.SavedCard) (bool, error) {
	exists, err := r.Exists(ctx, c.UserID, c.Fingerprint)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO user_cards (user_id, card_fingerprint, card_name, expiry_date, last_four_digits)
		VALUES (?, ?, ?, ?, ?)`,
		c.UserID,
		c.Fingerprint,
		c.CardName,
		c.ExpiryDate,
		c.LastFourDigits,
	)
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == mysqlErrDuplicateEntry {
			return false, nil
		}
		return false, fmt.Errorf("insert saved card: %w", err)
	}
	return true, nil
}

// ListByUser returns the user's saved cards, newest first.
func (r CardRepository) ListByUser(ctx context.Context, userID int64) ([]models.SavedCard, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, card_name, expiry_date, last_four_digits, created_at
		FROM user_cards
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list saved cards: %w", err)
	}
	defer rows.Close()

	out := []models.SavedCard{}
	for rows.Next() {
		var c models.SavedCard
		if err := rows.Scan(&c.ID, &c.UserID, &c.CardName, &c.ExpiryDate, &c.LastFourDigits, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan saved card: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
