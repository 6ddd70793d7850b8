package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx shared by *pgxpool.Conn, *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrUsernameTaken is returned when a write violates the registered-username index.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrEmailRegistered is returned when a write violates the registered-email index.
	ErrEmailRegistered = errors.New("email already registered")
	// ErrAlreadyVerified is returned when the verified flag was already set.
	ErrAlreadyVerified = errors.New("user already verified")
)

const (
	uniqueViolation = "23505"

	usernameIndex = "users_username_registered_key"
	emailIndex    = "users_email_registered_key"
)

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case emailIndex:
			return ErrEmailRegistered
		case usernameIndex:
			return ErrUsernameTaken
		}
	}
	return err
}
