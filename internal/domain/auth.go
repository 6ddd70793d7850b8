package domain

import "time"

// Success codes returned alongside payloads.
const (
	SuccessRegister     = "REGISTER_SUCCESS"
	SuccessLogin        = "LOGIN_SUCCESS"
	SuccessVerification = "VERIFICATION_SUCCESS"
	SuccessProfile      = "PROFILE_DATA_RECEIVED"
	SuccessProject      = "PROJECT_CREATED"
	Success             = "SUCCESS"
)

// Token is a signed access token handed to the client.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// AuthResult is the successful outcome of login and verify.
type AuthResult struct {
	Code  string
	Token Token
}
