package dto

import (
	"fmt"
	"unicode/utf8"

	"github.com/findteam/identity-service/internal/domain"
)

// MaxPageLimit caps how many projects one page returns.
const MaxPageLimit = 20

// CreateProjectRequest payload for publishing a project.
type CreateProjectRequest struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Positions   []domain.NeededPosition `json:"positions"`
}

// ListProjectsQuery selects one page of projects. Page and Limit are required.
type ListProjectsQuery struct {
	Page   *int  `query:"page"`
	Limit  *int  `query:"limit"`
	FromID int64 `query:"fromId"`
}

// CreateProjectResponse carries the id of the new project.
type CreateProjectResponse struct {
	ID int64 `json:"id"`
}

// Validate checks field constraints and rejects a position listed twice.
func (r CreateProjectRequest) Validate() error {
	fields := map[string]any{}
	if n := utf8.RuneCountInString(r.Name); n < 10 || n > 255 {
		fields["name"] = "must be 10-255 characters"
	}
	if n := utf8.RuneCountInString(r.Description); n < 30 || n > 2047 {
		fields["description"] = "must be 30-2047 characters"
	}
	if len(r.Positions) > len(domain.Positions) {
		fields["positions"] = fmt.Sprintf("must list at most %d positions", len(domain.Positions))
	}

	seen := make(map[domain.Position]struct{}, len(r.Positions))
	for i, p := range r.Positions {
		key := fmt.Sprintf("positions[%d]", i)
		switch {
		case !p.Position.Valid():
			fields[key] = "must be one of the known positions"
		case p.Count < 1 || p.Count > domain.MaxPositionCount:
			fields[key] = fmt.Sprintf("count must be 1-%d", domain.MaxPositionCount)
		}
		if _, dup := seen[p.Position]; dup {
			fields["positions"] = "positions must be unique"
		}
		seen[p.Position] = struct{}{}
	}
	return validationResult(fields)
}

// ToDomain converts the request into the service input.
func (r CreateProjectRequest) ToDomain(ownerID int64) domain.NewProject {
	return domain.NewProject{
		OwnerID:     ownerID,
		Name:        r.Name,
		Description: r.Description,
		Positions:   r.Positions,
	}
}

// Validate checks paging bounds.
func (q ListProjectsQuery) Validate() error {
	fields := map[string]any{}
	if q.Page == nil || *q.Page < 0 {
		fields["page"] = "is required and must be at least 0"
	}
	if q.Limit == nil || *q.Limit < 1 || *q.Limit > MaxPageLimit {
		fields["limit"] = fmt.Sprintf("is required and must be 1-%d", MaxPageLimit)
	}
	if q.FromID < 0 {
		fields["fromId"] = "must be positive"
	}
	return validationResult(fields)
}
