package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned to API callers.
const (
	CodeSomethingWentWrong      = "SOMETHING_WENT_WRONG"
	CodeValidationError         = "VALIDATION_ERROR"
	CodeInvalidCaptcha          = "INVALID_CAPTCHA"
	CodeUnauthorized            = "UNAUTHORIZED"
	CodeNotFound                = "NOT_FOUND"
	CodeMissingCredentials      = "MISSING_CREDENTIALS"
	CodeInvalidCredentials      = "INVALID_CREDENTIALS"
	CodeUserNotVerified         = "USER_NOT_VERIFIED"
	CodeUsernameAlreadyTaken    = "USERNAME_ALREADY_TAKEN"
	CodeEmailAlreadyRegistered  = "EMAIL_ALREADY_REGISTERED"
	CodeInvalidVerificationCode = "INVALID_VERIFICATION_CODE"
	CodeVerificationCodeExpired = "VERIFICATION_CODE_EXPIRED"
	CodeUserAlreadyVerified     = "USER_ALREADY_VERIFIED"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches another DomainError by code so callers can use errors.Is with the sentinels below.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

var (
	ErrMissingCredentials      = NewDomainError(CodeMissingCredentials, "username or email is required", http.StatusUnauthorized, nil)
	ErrInvalidCredentials      = NewDomainError(CodeInvalidCredentials, "invalid credentials", http.StatusForbidden, nil)
	ErrUserNotVerified         = NewDomainError(CodeUserNotVerified, "user is not verified", http.StatusForbidden, nil)
	ErrUsernameAlreadyTaken    = NewDomainError(CodeUsernameAlreadyTaken, "username is already taken", http.StatusForbidden, nil)
	ErrEmailAlreadyRegistered  = NewDomainError(CodeEmailAlreadyRegistered, "email is already registered", http.StatusForbidden, nil)
	ErrInvalidVerificationCode = NewDomainError(CodeInvalidVerificationCode, "invalid verification code", http.StatusForbidden, nil)
	ErrVerificationCodeExpired = NewDomainError(CodeVerificationCodeExpired, "verification code expired", http.StatusForbidden, nil)
	ErrUserAlreadyVerified     = NewDomainError(CodeUserAlreadyVerified, "user is already verified", http.StatusBadRequest, nil)
	ErrInvalidCaptcha          = NewDomainError(CodeInvalidCaptcha, "invalid captcha", http.StatusTooManyRequests, nil)
)

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationError, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

// NewInternalError hides err behind the generic catch-all code.
func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeSomethingWentWrong,
		Message:    "something went wrong",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return NewInternalError(err).(*DomainError)
}

func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}

// CodeForStatus picks the closest API code for a bare HTTP status.
func CodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeValidationError
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusTooManyRequests:
		return CodeInvalidCaptcha
	default:
		return CodeSomethingWentWrong
	}
}
