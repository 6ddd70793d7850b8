package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/findteam/identity-service/internal/domain"
)

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.ExistingUser, error)
	Create(ctx context.Context, user *domain.User) (int64, error)
	ClaimAnonymous(ctx context.Context, id int64, user *domain.User) (int64, error)
	GetCredentialsByUsername(ctx context.Context, username string) (*domain.Credentials, error)
	GetCredentialsByEmail(ctx context.Context, email string) (*domain.Credentials, error)
	IsVerified(ctx context.Context, id int64) (bool, error)
	MarkVerified(ctx context.Context, id int64) error
	GetProfile(ctx context.Context, id int64) (*domain.Profile, error)
}

type userRepository struct {
	db Querier
}

// NewUserRepository returns a Postgres-backed implementation bound to db.
func NewUserRepository(db Querier) UserRepository {
	return &userRepository{db: db}
}

// FindByUsernameOrEmail returns the most relevant row for a registration attempt:
// registered rows first, then rows whose email matches. email must be lower case.
func (r *userRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.ExistingUser, error) {
	const query = `
        SELECT id, COALESCE(username, ''), email, registered
        FROM users
        WHERE lower(username) = lower($1) OR lower(email) = $2
        ORDER BY registered DESC, (lower(email) = $2) DESC, id
        LIMIT 1`

	var user domain.ExistingUser
	if err := r.db.QueryRow(ctx, query, username, email).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Registered,
	); err != nil {
		return nil, fmt.Errorf("find user by username or email: %w", translate(err))
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	const query = `
        INSERT INTO users (username, password, email, position, registered, verified)
        VALUES ($1, $2, $3, $4, TRUE, FALSE)
        RETURNING id`

	var id int64
	if err := r.db.QueryRow(ctx, query,
		user.Username,
		user.PasswordHash,
		user.Email,
		positionArg(user.Position),
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("create user: %w", translate(err))
	}
	return id, nil
}

// ClaimAnonymous turns the anonymous row id into a registered account in place. It returns
// ErrNotFound when the row is gone or was registered in the meantime.
func (r *userRepository) ClaimAnonymous(ctx context.Context, id int64, user *domain.User) (int64, error) {
	const query = `
        UPDATE users
        SET username = $1, password = $2, position = $3, email = lower(email), registered = TRUE
        WHERE id = $4 AND registered = FALSE
        RETURNING id`

	var claimed int64
	if err := r.db.QueryRow(ctx, query,
		user.Username,
		user.PasswordHash,
		positionArg(user.Position),
		id,
	).Scan(&claimed); err != nil {
		return 0, fmt.Errorf("claim anonymous user %d: %w", id, translate(err))
	}
	return claimed, nil
}

func (r *userRepository) GetCredentialsByUsername(ctx context.Context, username string) (*domain.Credentials, error) {
	const query = `
        SELECT id, COALESCE(password, ''), registered, verified
        FROM users
        WHERE lower(username) = lower($1)
        ORDER BY registered DESC, id
        LIMIT 1`
	return r.getCredentials(ctx, query, username)
}

func (r *userRepository) GetCredentialsByEmail(ctx context.Context, email string) (*domain.Credentials, error) {
	const query = `
        SELECT id, COALESCE(password, ''), registered, verified
        FROM users
        WHERE lower(email) = lower($1)
        ORDER BY registered DESC, id
        LIMIT 1`
	return r.getCredentials(ctx, query, email)
}

func (r *userRepository) getCredentials(ctx context.Context, query, identifier string) (*domain.Credentials, error) {
	var creds domain.Credentials
	if err := r.db.QueryRow(ctx, query, identifier).Scan(
		&creds.ID,
		&creds.PasswordHash,
		&creds.Registered,
		&creds.Verified,
	); err != nil {
		return nil, fmt.Errorf("get credentials: %w", translate(err))
	}
	return &creds, nil
}

func (r *userRepository) IsVerified(ctx context.Context, id int64) (bool, error) {
	const query = `SELECT verified FROM users WHERE id = $1`

	var verified bool
	if err := r.db.QueryRow(ctx, query, id).Scan(&verified); err != nil {
		return false, fmt.Errorf("check user %d verified: %w", id, translate(err))
	}
	return verified, nil
}

// MarkVerified flips the verified flag. Only one caller can win the transition; the
// others get ErrAlreadyVerified.
func (r *userRepository) MarkVerified(ctx context.Context, id int64) error {
	const query = `UPDATE users SET verified = TRUE WHERE id = $1 AND verified = FALSE`

	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("verify user %d: %w", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("verify user %d: %w", id, ErrAlreadyVerified)
	}
	return nil
}

func (r *userRepository) GetProfile(ctx context.Context, id int64) (*domain.Profile, error) {
	const query = `
        SELECT id, COALESCE(username, ''), email, position, verified, created_at
        FROM users
        WHERE id = $1 AND registered = TRUE`

	var (
		profile   domain.Profile
		position  *string
		createdAt *time.Time
	)
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&profile.ID,
		&profile.Username,
		&profile.Email,
		&position,
		&profile.Verified,
		&createdAt,
	); err != nil {
		return nil, fmt.Errorf("get profile %d: %w", id, translate(err))
	}
	if position != nil {
		p := domain.Position(*position)
		profile.Position = &p
	}
	if createdAt != nil {
		profile.CreatedAt = *createdAt
	}
	return &profile, nil
}

func positionArg(p *domain.Position) *string {
	if p == nil {
		return nil
	}
	s := string(*p)
	return &s
}
