package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/findteam/identity-service/internal/domain"
	"github.com/findteam/identity-service/internal/mail"
	"github.com/findteam/identity-service/internal/repository"
	apperrors "github.com/findteam/identity-service/pkg/util"
)

// PasswordHasher hashes and compares passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(plain, hashed string) bool
}

// TokenIssuer signs access tokens for a user id.
type TokenIssuer interface {
	Sign(userID int64) (domain.Token, error)
}

// CodeGenerator returns a fresh verification code.
type CodeGenerator func() (string, error)

// AuthService runs the account lifecycle: registration, login and email verification.
type AuthService struct {
	store   repository.Store
	hasher  PasswordHasher
	tokens  TokenIssuer
	mailer  mail.Sender
	newCode CodeGenerator
	window  time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	Store              repository.Store
	Hasher             PasswordHasher
	Tokens             TokenIssuer
	Mailer             mail.Sender
	NewCode            CodeGenerator
	VerificationWindow time.Duration
	Logger             *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		store:   deps.Store,
		hasher:  deps.Hasher,
		tokens:  deps.Tokens,
		mailer:  deps.Mailer,
		newCode: deps.NewCode,
		window:  deps.VerificationWindow,
		logger:  logger,
		now:     time.Now,
	}
}

// RegisterInput carries an already validated registration request.
type RegisterInput struct {
	Username string
	Password string
	Email    string
	Position *domain.Position
}

// LoginInput identifies the user by username or, when that is empty, by email.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// Register creates an account, or claims the anonymous row with the same email, then
// issues a verification code and mails it. Every step runs in one transaction, so a mail
// failure leaves no account behind.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) error {
	email := strings.ToLower(in.Email)

	// Hashed before the transaction opens so it holds no locks during bcrypt.
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return s.internal("register", err)
	}

	session, err := s.store.Acquire(ctx)
	if err != nil {
		return s.internal("register", err)
	}
	defer session.Release()

	err = session.WithTx(ctx, func(ctx context.Context, tx repository.Session) error {
		existing, err := tx.Users().FindByUsernameOrEmail(ctx, in.Username, email)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		var claimID int64
		if existing != nil {
			if existing.Registered {
				if strings.EqualFold(existing.Email, email) {
					return apperrors.ErrEmailAlreadyRegistered
				}
				return apperrors.ErrUsernameAlreadyTaken
			}
			if strings.EqualFold(existing.Email, email) {
				claimID = existing.ID
			}
		}

		user := &domain.User{
			Username:     in.Username,
			PasswordHash: hash,
			Email:        email,
			Position:     in.Position,
		}

		var userID int64
		if claimID != 0 {
			userID, err = tx.Users().ClaimAnonymous(ctx, claimID, user)
			if errors.Is(err, repository.ErrNotFound) {
				// Registered by a concurrent request between lookup and claim.
				return apperrors.ErrEmailAlreadyRegistered
			}
		} else {
			userID, err = tx.Users().Create(ctx, user)
		}
		if err != nil {
			return err
		}
		if userID == 0 {
			return errors.New("user write returned no id")
		}

		code, err := s.newCode()
		if err != nil {
			return err
		}
		if err := tx.Codes().Create(ctx, userID, code); err != nil {
			return err
		}
		return s.mailer.SendVerification(ctx, email, in.Username, code)
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrEmailRegistered):
		err = apperrors.ErrEmailAlreadyRegistered
	case errors.Is(err, repository.ErrUsernameTaken):
		err = apperrors.ErrUsernameAlreadyTaken
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		s.logger.Debug("registration rejected", zap.String("code", domainErr.Code))
		return domainErr
	}
	return s.internal("register", err)
}

// Login checks the credentials and returns a signed token for a verified user.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*domain.AuthResult, error) {
	if in.Username == "" && in.Email == "" {
		return nil, apperrors.ErrMissingCredentials
	}

	session, err := s.store.Acquire(ctx)
	if err != nil {
		return nil, s.internal("login", err)
	}
	defer session.Release()

	var creds *domain.Credentials
	if in.Username != "" {
		creds, err = session.Users().GetCredentialsByUsername(ctx, in.Username)
	} else {
		creds, err = session.Users().GetCredentialsByEmail(ctx, strings.ToLower(in.Email))
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, s.internal("login", err)
	}

	// With a row present the hash is always compared, whatever its registered flag.
	ok := false
	if creds != nil {
		matches := s.hasher.Compare(in.Password, creds.PasswordHash)
		ok = matches && creds.Registered
	}
	if !ok {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !creds.Verified {
		return nil, apperrors.ErrUserNotVerified
	}

	token, err := s.tokens.Sign(creds.ID)
	if err != nil {
		return nil, s.internal("login", err, zap.Int64("user_id", creds.ID))
	}
	return &domain.AuthResult{Code: domain.SuccessLogin, Token: token}, nil
}

// Verify consumes a verification code, marks its user verified and signs them in.
func (s *AuthService) Verify(ctx context.Context, code string) (*domain.AuthResult, error) {
	session, err := s.store.Acquire(ctx)
	if err != nil {
		return nil, s.internal("verify", err)
	}
	defer session.Release()

	vc, err := session.Codes().Find(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.ErrInvalidVerificationCode
	}
	if err != nil {
		return nil, s.internal("verify", err)
	}
	if vc.Expired(s.now(), s.window) {
		s.logger.Debug("verification code expired", zap.Int64("user_id", vc.UserID))
		return nil, apperrors.ErrVerificationCodeExpired
	}

	verified, err := session.Users().IsVerified(ctx, vc.UserID)
	if err != nil {
		// A code pointing at a missing user is an integrity violation, not a client error.
		return nil, s.internal("verify", err, zap.Int64("user_id", vc.UserID))
	}
	if verified {
		return nil, apperrors.ErrUserAlreadyVerified
	}

	err = session.Users().MarkVerified(ctx, vc.UserID)
	if errors.Is(err, repository.ErrAlreadyVerified) {
		return nil, apperrors.ErrUserAlreadyVerified
	}
	if err != nil {
		return nil, s.internal("verify", err, zap.Int64("user_id", vc.UserID))
	}

	token, err := s.tokens.Sign(vc.UserID)
	if err != nil {
		return nil, s.internal("verify", err, zap.Int64("user_id", vc.UserID))
	}
	return &domain.AuthResult{Code: domain.SuccessVerification, Token: token}, nil
}

// Profile returns the public view of a registered user.
func (s *AuthService) Profile(ctx context.Context, userID int64) (*domain.Profile, error) {
	session, err := s.store.Acquire(ctx)
	if err != nil {
		return nil, s.internal("profile", err)
	}
	defer session.Release()

	profile, err := session.Users().GetProfile(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("user", map[string]any{"id": userID})
	}
	if err != nil {
		return nil, s.internal("profile", err, zap.Int64("user_id", userID))
	}
	return profile, nil
}

func (s *AuthService) internal(op string, err error, fields ...zap.Field) error {
	s.logger.Error("auth workflow failed", append([]zap.Field{zap.String("op", op), zap.Error(err)}, fields...)...)
	return apperrors.NewInternalError(err)
}
