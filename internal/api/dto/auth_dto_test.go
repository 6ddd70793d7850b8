package dto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/findteam/identity-service/internal/domain"
	apperrors "github.com/findteam/identity-service/pkg/util"
)

func TestRegisterRequestValidate(t *testing.T) {
	valid := RegisterRequest{Username: "alice", Password: "password123", Email: "a@x.com"}
	require.NoError(t, valid.Validate())

	position := domain.PositionPM
	withPosition := valid
	withPosition.Position = &position
	require.NoError(t, withPosition.Validate())

	bad := domain.Position("ceo")
	cases := map[string]struct {
		mutate func(*RegisterRequest)
		field  string
	}{
		"short username":    {func(r *RegisterRequest) { r.Username = "al" }, "username"},
		"long username":     {func(r *RegisterRequest) { r.Username = strings.Repeat("a", 31) }, "username"},
		"symbol username":   {func(r *RegisterRequest) { r.Username = "alice_1" }, "username"},
		"short password":    {func(r *RegisterRequest) { r.Password = "1234567" }, "password"},
		"long password":     {func(r *RegisterRequest) { r.Password = strings.Repeat("p", 129) }, "password"},
		"bad email":         {func(r *RegisterRequest) { r.Email = "not-an-email" }, "email"},
		"display-name form": {func(r *RegisterRequest) { r.Email = "Alice <a@x.com>" }, "email"},
		"long email":        {func(r *RegisterRequest) { r.Email = strings.Repeat("a", 120) + "@x.com.xx" }, "email"},
		"unknown position":  {func(r *RegisterRequest) { r.Position = &bad }, "position"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)

			err := req.Validate()

			require.Error(t, err)
			de := apperrors.ToDomainError(err)
			assert.Equal(t, apperrors.CodeValidationError, de.Code)
			assert.Contains(t, de.Details, tc.field)
		})
	}
}

func TestLoginRequestValidate(t *testing.T) {
	assert.NoError(t, LoginRequest{Username: "alice", Password: "password123"}.Validate())
	assert.NoError(t, LoginRequest{Email: "a@x.com", Password: "password123"}.Validate())
	assert.NoError(t, LoginRequest{Password: "password123"}.Validate(), "missing identifiers are the workflow's call")
	assert.Error(t, LoginRequest{Username: "alice", Password: "short"}.Validate())
	assert.Error(t, LoginRequest{Email: "nope", Password: "password123"}.Validate())
}

func TestVerifyRequestValidate(t *testing.T) {
	assert.NoError(t, VerifyRequest{Code: strings.Repeat("ab12", 16)}.Validate())
	assert.Error(t, VerifyRequest{Code: "short"}.Validate())
	assert.Error(t, VerifyRequest{Code: "bad-code-with-dashes"}.Validate())
	assert.Error(t, VerifyRequest{Code: strings.Repeat("a", 101)}.Validate())
}
