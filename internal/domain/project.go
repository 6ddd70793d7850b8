package domain

import "time"

// MaxPositionCount caps how many people a project can ask for in one position.
const MaxPositionCount = 20

// NeededPosition is a role a project is recruiting for.
type NeededPosition struct {
	Position Position `json:"position"`
	Count    int      `json:"count"`
}

// Project is a team project published by a registered user.
type Project struct {
	ID          int64            `json:"id"`
	OwnerID     int64            `json:"owner_id"`
	AuthorName  string           `json:"authorname"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	CreatedAt   time.Time        `json:"created_at"`
	Positions   []NeededPosition `json:"positions,omitempty"`
}

// NewProject is the input for creating a project.
type NewProject struct {
	OwnerID     int64
	Name        string
	Description string
	Positions   []NeededPosition
}
