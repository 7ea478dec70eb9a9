package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"carrental/internal/domain"
	"carrental/internal/domain/models"
	"carrental/internal/repositories"
	"carrental/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies the HS256 bearer tokens carried by API clients.
type TokenService struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func (t TokenService) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

// Issue signs a token whose subject is the user id.
func (t TokenService) Issue(userID int64, email string) (string, time.Time, error) {
	ttl := t.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := t.now()
	exp := now.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := token.SignedString(t.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies a token and returns who it was issued to.
func (t TokenService) Parse(raw string) (domain.RequestContext, error) {
	var claims tokenClaims
	keyFunc := func(*jwt.Token) (any, error) { return t.Secret, nil }
	_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), &claims, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return domain.RequestContext{}, domain.AuthError{Code: domain.CodeUnauthorized, Msg: "Invalid or expired token", Err: err}
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return domain.RequestContext{}, domain.AuthError{Code: domain.CodeUnauthorized, Msg: "Invalid or expired token", Err: err}
	}
	return domain.RequestContext{UserID: domain.ID(id), Email: claims.Email}, nil
}

// AuthService checks credentials and hands out tokens.
type AuthService struct {
	DB        *sql.DB
	Tokens    TokenService
	RequestID string
}

// LoginResult is what a successful login returns to the client.
type LoginResult struct {
	Token     string                 `json:"token"`
	ExpiresAt time.Time              `json:"expiresAt"`
	User      models.UserCredentials `json:"user"`
}

func (s AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return LoginResult{}, domain.ValidationError{Code: domain.CodeMissingFields, Field: "email", Msg: "Email and password are required"}
	}

	bad := domain.AuthError{Code: domain.CodeInvalidCredentials, Msg: "Invalid email or password"}
	user, err := repositories.UserRepository{DB: s.DB}.GetCredentialsByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LoginResult{}, bad
		}
		return LoginResult{}, domain.InternalError{Msg: "Failed to log in", Err: err}
	}
	if user.PasswordHash == "" {
		return LoginResult{}, bad
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return LoginResult{}, bad
	}

	token, exp, err := s.Tokens.Issue(user.ID, user.Email)
	if err != nil {
		return LoginResult{}, domain.InternalError{Msg: "Failed to log in", Err: err}
	}
	utils.LogEvent(s.RequestID, "auth", "login", fmt.Sprintf("user=%d", user.ID))
	return LoginResult{Token: token, ExpiresAt: exp, User: user}, nil
}
