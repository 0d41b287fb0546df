package profile

import (
	"context"
	"errors"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/darasahq/darasa/core"
)

// Roles, by decreasing privilege.
const (
	RoleOwner   = "owner"
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleLearner = "learner"

	DefaultRole = RoleLearner
)

var (
	AllRoles = []string{RoleOwner, RoleAdmin, RoleManager, RoleLearner}

	rolePriorities = map[string]int{
		RoleOwner:   40,
		RoleAdmin:   30,
		RoleManager: 20,
		RoleLearner: 10,
	}

	Roles = []Role{
		{Name: "Learner", Value: RoleLearner},
		{Name: "Manager", Value: RoleManager},
		{Name: "Admin", Value: RoleAdmin},
		{Name: "Owner", Value: RoleOwner},
	}

	// errors
	ErrNotFound = errors.New("profile not found")
	// ErrUnknownColumn indicates the backing table is missing one of the optional
	// profile columns (schema still being migrated); callers may retry a reduced write.
	ErrUnknownColumn = errors.New("unknown profile column")
)

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func RolePriority(role string) int {
	return rolePriorities[role]
}

func ValidRole(role string) bool {
	_, ok := rolePriorities[role]
	return ok
}

// NormalizeRole cleans a raw role value, falling back to DefaultRole for
// anything that is not one of the recognized roles.
func NormalizeRole(role string) string {
	role = core.CleanString(role, true /* lower */)
	if !ValidRole(role) {
		return DefaultRole
	}
	return role
}

// Profile holds the application-level attributes of an identity.
type Profile struct {
	ID           string      `db:"id" json:"id"`
	Role         string      `db:"role" json:"role"`
	FullName     null.String `db:"full_name" json:"full_name,omitempty"`
	FirstName    null.String `db:"first_name" json:"first_name,omitempty"`
	LastName     null.String `db:"last_name" json:"last_name,omitempty"`
	MobileNumber null.String `db:"mobile_number" json:"mobile_number,omitempty"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"` // UTC
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"` // UTC
}

func (p Profile) IsAdmin() bool {
	return p.Role == RoleOwner || p.Role == RoleAdmin
}

// Core returns a copy reduced to the always-present columns; used as the
// fallback write when optional columns are missing from the schema.
func (p Profile) Core() Profile {
	return Profile{
		ID:        p.ID,
		Role:      p.Role,
		FullName:  p.FullName,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

type Repository interface {
	GetProfileByID(ctx context.Context, id string) (Profile, error)
	// UpsertProfile writes all profile fields keyed by ID;
	// returns ErrUnknownColumn when the schema is missing an optional column.
	UpsertProfile(ctx context.Context, p Profile) error
	// UpsertProfileCore writes only the always-present fields (id, role, full_name).
	UpsertProfileCore(ctx context.Context, p Profile) error
}
