package dto

import (
	"net/mail"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/findteam/identity-service/internal/domain"
	apperrors "github.com/findteam/identity-service/pkg/util"
)

var alphanumeric = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Username          string           `json:"username"`
	Password          string           `json:"password"`
	Email             string           `json:"email"`
	Position          *domain.Position `json:"position"`
	ReCaptchaResponse string           `json:"reCaptchaResponse"`
}

// LoginRequest payload for login. Either username or email identifies the user.
type LoginRequest struct {
	Username          string `json:"username"`
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReCaptchaResponse string `json:"reCaptchaResponse"`
}

// VerifyRequest payload for email verification.
type VerifyRequest struct {
	Code              string `json:"code"`
	ReCaptchaResponse string `json:"reCaptchaResponse"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewAuthResponse converts a signed token into its wire form.
func NewAuthResponse(token domain.Token) AuthResponse {
	return AuthResponse{Token: token.Value, ExpiresAt: token.ExpiresAt}
}

// Validate checks field constraints before the request reaches the workflow.
func (r RegisterRequest) Validate() error {
	fields := map[string]any{}
	if msg := checkUsername(r.Username); msg != "" {
		fields["username"] = msg
	}
	if msg := checkPassword(r.Password); msg != "" {
		fields["password"] = msg
	}
	if msg := checkEmail(r.Email); msg != "" {
		fields["email"] = msg
	}
	if r.Position != nil && !r.Position.Valid() {
		fields["position"] = "must be one of the known positions"
	}
	return validationResult(fields)
}

// Validate checks field constraints. Missing identifiers are left to the workflow, which
// answers with MISSING_CREDENTIALS.
func (r LoginRequest) Validate() error {
	fields := map[string]any{}
	if r.Username != "" {
		if msg := checkUsername(r.Username); msg != "" {
			fields["username"] = msg
		}
	}
	if r.Email != "" {
		if msg := checkEmail(r.Email); msg != "" {
			fields["email"] = msg
		}
	}
	if msg := checkPassword(r.Password); msg != "" {
		fields["password"] = msg
	}
	return validationResult(fields)
}

// Validate checks the code shape.
func (r VerifyRequest) Validate() error {
	fields := map[string]any{}
	if n := len(r.Code); n < 10 || n > 100 || !alphanumeric.MatchString(r.Code) {
		fields["code"] = "must be 10-100 alphanumeric characters"
	}
	return validationResult(fields)
}

func checkUsername(username string) string {
	if n := len(username); n < 3 || n > 30 || !alphanumeric.MatchString(username) {
		return "must be 3-30 alphanumeric characters"
	}
	return ""
}

func checkPassword(password string) string {
	if n := utf8.RuneCountInString(password); n < 8 || n > 128 {
		return "must be 8-128 characters"
	}
	return ""
}

func checkEmail(email string) string {
	if len(email) > 128 {
		return "must be at most 128 characters"
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "must be a valid email address"
	}
	return ""
}

func validationResult(fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return apperrors.NewValidationError("invalid request payload", fields)
}
