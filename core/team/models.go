package team

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("team not found")
	// ErrAlreadyMember indicates the (team, user) pair already exists;
	// callers treat it as success.
	ErrAlreadyMember = errors.New("user is already a member of this team")
)

type Team struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"` // UTC
}

type Membership struct {
	TeamID    string    `db:"team_id" json:"team_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"` // UTC
}

type Repository interface {
	CreateTeam(ctx context.Context, t Team) (Team, error)
	GetTeamByName(ctx context.Context, name string) (Team, error)
	TeamExists(ctx context.Context, id string) (bool, error)
	// AddMember inserts a (team, user) membership;
	// returns ErrAlreadyMember on a duplicate pair.
	AddMember(ctx context.Context, teamID, userID string) error
}
