package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/findteam/identity-service/internal/domain"
	"github.com/findteam/identity-service/internal/repository"
	apperrors "github.com/findteam/identity-service/pkg/util"
)

// ProjectService publishes and lists team projects.
type ProjectService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewProjectService builds the service.
func NewProjectService(store repository.Store, logger *zap.Logger) *ProjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectService{store: store, logger: logger}
}

// Create stores the project and every needed position in one transaction. A failed
// position insert leaves no project behind.
func (s *ProjectService) Create(ctx context.Context, in domain.NewProject) (int64, error) {
	session, err := s.store.Acquire(ctx)
	if err != nil {
		return 0, s.internal("create project", err)
	}
	defer session.Release()

	var projectID int64
	err = session.WithTx(ctx, func(ctx context.Context, tx repository.Session) error {
		id, err := tx.Projects().Create(ctx, in.OwnerID, in.Name, in.Description)
		if err != nil {
			return err
		}
		if id == 0 {
			return errors.New("project insert returned no id")
		}
		for _, position := range in.Positions {
			if err := tx.Projects().AddPosition(ctx, id, position); err != nil {
				return err
			}
		}
		projectID = id
		return nil
	})
	if err != nil {
		return 0, s.internal("create project", err, zap.Int64("owner_id", in.OwnerID))
	}

	s.logger.Info("project created",
		zap.Int64("project_id", projectID),
		zap.Int64("owner_id", in.OwnerID),
		zap.Int("positions", len(in.Positions)),
	)
	return projectID, nil
}

// Get returns a project with its author name and needed positions.
func (s *ProjectService) Get(ctx context.Context, id int64) (*domain.Project, error) {
	session, err := s.store.Acquire(ctx)
	if err != nil {
		return nil, s.internal("get project", err)
	}
	defer session.Release()

	project, err := session.Projects().GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("project", map[string]any{"id": id})
	}
	if err != nil {
		return nil, s.internal("get project", err, zap.Int64("project_id", id))
	}

	positions, err := session.Projects().ListPositions(ctx, id)
	if err != nil {
		return nil, s.internal("get project", err, zap.Int64("project_id", id))
	}
	project.Positions = positions
	return project, nil
}

// List returns one page of projects, newest first. A non-zero fromID hides projects
// created after the first page was read.
func (s *ProjectService) List(ctx context.Context, page, limit int, fromID int64) ([]domain.Project, error) {
	session, err := s.store.Acquire(ctx)
	if err != nil {
		return nil, s.internal("list projects", err)
	}
	defer session.Release()

	projects, err := session.Projects().List(ctx, repository.ProjectFilter{
		Offset: page * limit,
		Limit:  limit,
		FromID: fromID,
	})
	if err != nil {
		return nil, s.internal("list projects", err)
	}
	return projects, nil
}

func (s *ProjectService) internal(op string, err error, fields ...zap.Field) error {
	s.logger.Error("project workflow failed", append([]zap.Field{zap.String("op", op), zap.Error(err)}, fields...)...)
	return apperrors.NewInternalError(err)
}
