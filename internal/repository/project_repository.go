package repository

import (
	"context"
	"fmt"

	"github.com/findteam/identity-service/internal/domain"
)

// ProjectFilter pages through projects, newest first.
type ProjectFilter struct {
	Offset int
	Limit  int
	// FromID pins the listing to projects at or below this id so later inserts do not shift
	// pages. Zero disables it.
	FromID int64
}

// ProjectRepository manages projects and their needed positions.
type ProjectRepository interface {
	Create(ctx context.Context, ownerID int64, name, description string) (int64, error)
	AddPosition(ctx context.Context, projectID int64, position domain.NeededPosition) error
	GetByID(ctx context.Context, id int64) (*domain.Project, error)
	ListPositions(ctx context.Context, projectID int64) ([]domain.NeededPosition, error)
	List(ctx context.Context, filter ProjectFilter) ([]domain.Project, error)
}

type projectRepository struct {
	db Querier
}

// NewProjectRepository constructs repository.
func NewProjectRepository(db Querier) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, ownerID int64, name, description string) (int64, error) {
	const query = `
        INSERT INTO projects (owner_id, name, description)
        VALUES ($1, $2, $3)
        RETURNING id`

	var id int64
	if err := r.db.QueryRow(ctx, query, ownerID, name, description).Scan(&id); err != nil {
		return 0, fmt.Errorf("create project: %w", translate(err))
	}
	return id, nil
}

func (r *projectRepository) AddPosition(ctx context.Context, projectID int64, position domain.NeededPosition) error {
	const query = `
        INSERT INTO project_needed_positions (project_id, user_position, count)
        VALUES ($1, $2, $3)`

	if _, err := r.db.Exec(ctx, query, projectID, string(position.Position), position.Count); err != nil {
		return fmt.Errorf("add position %s to project %d: %w", position.Position, projectID, err)
	}
	return nil
}

func (r *projectRepository) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	const query = `
        SELECT p.id, p.owner_id, COALESCE(u.username, ''), p.name, p.description, p.created_at
        FROM projects p
        JOIN users u ON u.id = p.owner_id
        WHERE p.id = $1`

	var project domain.Project
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&project.ID,
		&project.OwnerID,
		&project.AuthorName,
		&project.Name,
		&project.Description,
		&project.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("get project %d: %w", id, translate(err))
	}
	return &project, nil
}

func (r *projectRepository) ListPositions(ctx context.Context, projectID int64) ([]domain.NeededPosition, error) {
	const query = `
        SELECT user_position, count
        FROM project_needed_positions
        WHERE project_id = $1
        ORDER BY user_position`

	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list positions of project %d: %w", projectID, err)
	}
	defer rows.Close()

	positions := []domain.NeededPosition{}
	for rows.Next() {
		var (
			position string
			count    int32
		)
		if err := rows.Scan(&position, &count); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		positions = append(positions, domain.NeededPosition{Position: domain.Position(position), Count: int(count)})
	}
	return positions, rows.Err()
}

func (r *projectRepository) List(ctx context.Context, filter ProjectFilter) ([]domain.Project, error) {
	query := `SELECT p.id, p.owner_id, COALESCE(u.username, ''), p.name, p.description, p.created_at
             FROM projects p
             JOIN users u ON u.id = p.owner_id`
	args := []any{filter.Offset, filter.Limit}
	if filter.FromID > 0 {
		args = append(args, filter.FromID)
		query += fmt.Sprintf(" WHERE p.id <= $%d", len(args))
	}
	query += " ORDER BY p.created_at DESC, p.id DESC OFFSET $1 LIMIT $2"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []domain.Project{}
	for rows.Next() {
		var project domain.Project
		if err := rows.Scan(
			&project.ID,
			&project.OwnerID,
			&project.AuthorName,
			&project.Name,
			&project.Description,
			&project.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}
