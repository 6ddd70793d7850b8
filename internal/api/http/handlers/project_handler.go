package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/findteam/identity-service/internal/api/dto"
	"github.com/findteam/identity-service/internal/auth"
	"github.com/findteam/identity-service/internal/domain"
	apperrors "github.com/findteam/identity-service/pkg/util"
)

// ProjectWorkflow publishes and reads projects.
type ProjectWorkflow interface {
	Create(ctx context.Context, in domain.NewProject) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Project, error)
	List(ctx context.Context, page, limit int, fromID int64) ([]domain.Project, error)
}

// ProjectHandler exposes the project endpoints.
type ProjectHandler struct {
	projects ProjectWorkflow
}

// NewProjectHandler constructs handler.
func NewProjectHandler(workflow ProjectWorkflow) *ProjectHandler {
	return &ProjectHandler{projects: workflow}
}

// Create handles POST /api/projects for the authenticated user.
func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := req.Validate(); err != nil {
		return err
	}

	id, err := h.projects.Create(c.UserContext(), req.ToDomain(userID))
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"code": domain.SuccessProject,
		"data": dto.CreateProjectResponse{ID: id},
	})
}

// List handles GET /api/projects.
func (h *ProjectHandler) List(c *fiber.Ctx) error {
	var query dto.ListProjectsQuery
	if err := c.QueryParser(&query); err != nil {
		return apperrors.NewValidationError("invalid query", nil)
	}
	if err := query.Validate(); err != nil {
		return err
	}

	projects, err := h.projects.List(c.UserContext(), *query.Page, *query.Limit, query.FromID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"code": domain.Success, "data": projects})
}

// Get handles GET /api/projects/:id.
func (h *ProjectHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return apperrors.NewValidationError("invalid project id", map[string]any{"id": "must be a positive integer"})
	}

	project, err := h.projects.Get(c.UserContext(), int64(id))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"code": domain.Success, "data": project})
}
