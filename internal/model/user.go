package model

import "time"

// Role is a closed set. Anything we can't classify is RoleUnknown; dispatch
// matches exhaustively and never falls through on an unmatched string.
type Role string

const (
	RoleFieldWorker Role = "field_worker"
	RoleContractor  Role = "contractor"
	RoleUnknown     Role = "unknown"
)

// ParseRole maps a stored role string onto the closed Role set.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleFieldWorker:
		return RoleFieldWorker
	case RoleContractor:
		return RoleContractor
	default:
		return RoleUnknown
	}
}

// User is the resolved context for one sender. Resolved once per message,
// never mutated by the intake core.
type User struct {
	ID           int64     `json:"id"`
	Channel      string    `json:"channel"`
	ExternalID   string    `json:"external_id"` // channel-scoped sender id
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	DepartmentID *int64    `json:"department_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
