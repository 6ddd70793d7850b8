package domain

import "time"

// Position is the team role a user declares at registration.
type Position string

const (
	PositionFrontend  Position = "frontend"
	PositionBackend   Position = "backend"
	PositionFullstack Position = "fullstack"
	PositionDesigner  Position = "designer"
	PositionPM        Position = "PM"
	PositionPO        Position = "PO"
	PositionOther     Position = "other"
)

// Positions lists every accepted Position.
var Positions = []Position{
	PositionFrontend,
	PositionBackend,
	PositionFullstack,
	PositionDesigner,
	PositionPM,
	PositionPO,
	PositionOther,
}

// Valid reports whether p is one of the known positions.
func (p Position) Valid() bool {
	for _, known := range Positions {
		if p == known {
			return true
		}
	}
	return false
}

// User is one account row. Anonymous rows have Registered=false and are claimed by a
// registration with the same email.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Email        string
	Position     *Position
	Registered   bool
	Verified     bool
	CreatedAt    time.Time
}

// ExistingUser is the slice of a user row consulted by the registration collision check.
type ExistingUser struct {
	ID         int64
	Username   string
	Email      string
	Registered bool
}

// Credentials is what login needs to authenticate a user.
type Credentials struct {
	ID           int64
	PasswordHash string
	Registered   bool
	Verified     bool
}

// Profile is the public view of the authenticated user.
type Profile struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Position  *Position `json:"position,omitempty"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}
