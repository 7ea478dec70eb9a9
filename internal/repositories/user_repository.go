package repositories

import (
	"context"
	"strings"

	intdb "carrental/internal/db"
	"carrental/internal/domain/models"
)

// UserRepository is the identity lookup owned by user management.
type UserRepository struct {
	DB intdb.DBTX
}

// GetCredentialsByEmail returns sql.ErrNoRows for unknown emails.
func (r UserRepository) GetCredentialsByEmail(ctx context.Context, email string) (models.UserCredentials, error) {
	var u models.UserCredentials
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, email, COALESCE(first_name, ''), COALESCE(last_name, ''), COALESCE(password_hash, '')
		FROM users
		WHERE email = ?
		LIMIT 1`, strings.ToLower(strings.TrimSpace(email)),
	).Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash)
	if err != nil {
		return models.UserCredentials{}, err
	}
	return u, nil
}
