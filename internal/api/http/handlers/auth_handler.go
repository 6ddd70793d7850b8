package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/findteam/identity-service/internal/api/dto"
	"github.com/findteam/identity-service/internal/auth"
	"github.com/findteam/identity-service/internal/domain"
	"github.com/findteam/identity-service/internal/service"
	apperrors "github.com/findteam/identity-service/pkg/util"
)

// AuthWorkflow is the account lifecycle the handlers drive.
type AuthWorkflow interface {
	Register(ctx context.Context, in service.RegisterInput) error
	Login(ctx context.Context, in service.LoginInput) (*domain.AuthResult, error)
	Verify(ctx context.Context, code string) (*domain.AuthResult, error)
	Profile(ctx context.Context, userID int64) (*domain.Profile, error)
}

// AuthHandler exposes registration, login, verification and profile endpoints.
type AuthHandler struct {
	auth AuthWorkflow
}

// NewAuthHandler constructs handler.
func NewAuthHandler(workflow AuthWorkflow) *AuthHandler {
	return &AuthHandler{auth: workflow}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := req.Validate(); err != nil {
		return err
	}

	if err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Position: req.Position,
	}); err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"code": domain.SuccessRegister})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := req.Validate(); err != nil {
		return err
	}

	res, err := h.auth.Login(c.UserContext(), service.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"code": res.Code, "data": dto.NewAuthResponse(res.Token)})
}

// Verify handles POST /api/auth/verify.
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	var req dto.VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := req.Validate(); err != nil {
		return err
	}

	res, err := h.auth.Verify(c.UserContext(), req.Code)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"code": res.Code, "data": dto.NewAuthResponse(res.Token)})
}

// Profile handles GET /api/profile for the authenticated user.
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	profile, err := h.auth.Profile(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"code": domain.SuccessProfile, "data": profile})
}
