package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/findteam/identity-service/internal/domain"
)

// VerificationCodeRepository manages verification code persistence.
type VerificationCodeRepository interface {
	Create(ctx context.Context, userID int64, code string) error
	Find(ctx context.Context, code string) (*domain.VerificationCode, error)
}

type verificationCodeRepository struct {
	db Querier
}

// NewVerificationCodeRepository constructs repository.
func NewVerificationCodeRepository(db Querier) VerificationCodeRepository {
	return &verificationCodeRepository{db: db}
}

func (r *verificationCodeRepository) Create(ctx context.Context, userID int64, code string) error {
	const query = `
        INSERT INTO verification_codes (user_id, code)
        VALUES ($1, $2)`
	if _, err := r.db.Exec(ctx, query, userID, code); err != nil {
		return fmt.Errorf("create verification code for user %d: %w", userID, err)
	}
	return nil
}

// Find returns the owner and issue time of code. A NULL created_at comes back as the zero
// time, which callers treat as expired.
func (r *verificationCodeRepository) Find(ctx context.Context, code string) (*domain.VerificationCode, error) {
	const query = `
        SELECT user_id, created_at
        FROM verification_codes
        WHERE code = $1`

	var (
		vc        = domain.VerificationCode{Code: code}
		createdAt *time.Time
	)
	if err := r.db.QueryRow(ctx, query, code).Scan(&vc.UserID, &createdAt); err != nil {
		return nil, fmt.Errorf("find verification code: %w", translate(err))
	}
	if createdAt != nil {
		vc.CreatedAt = *createdAt
	}
	return &vc, nil
}
