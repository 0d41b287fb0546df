package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core/team"
)

type teamRepository struct {
	db *sqlx.DB
}

var _ team.Repository = (*teamRepository)(nil)

func NewTeamRepository(db *sqlx.DB) *teamRepository {
	return &teamRepository{db: db}
}

func (repo *teamRepository) CreateTeam(ctx context.Context, t team.Team) (team.Team, error) {
	const q = `INSERT INTO teams (id, name, created_at) VALUES (:id, :name, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, t); err != nil {
		return team.Team{}, errors.Wrap(err, "inserting team")
	}
	return t, nil
}

func (repo *teamRepository) GetTeamByName(ctx context.Context, name string) (team.Team, error) {
	var t team.Team
	if err := repo.db.GetContext(ctx, &t, `SELECT * FROM teams WHERE name = $1`, name); err != nil {
		if err == sql.ErrNoRows {
			return team.Team{}, team.ErrNotFound
		}
		return team.Team{}, errors.Wrap(err, "selecting team by name")
	}
	return t, nil
}

func (repo *teamRepository) TeamExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	const q = `SELECT EXISTS (SELECT 1 FROM teams WHERE id = $1)`
	if err := repo.db.GetContext(ctx, &exists, q, id); err != nil {
		return false, errors.Wrap(err, "checking team existence")
	}
	return exists, nil
}

func (repo *teamRepository) AddMember(ctx context.Context, teamID, userID string) error {
	const q = `INSERT INTO team_members (team_id, user_id, created_at) VALUES ($1, $2, $3)`
	if _, err := repo.db.ExecContext(ctx, q, teamID, userID, time.Now().UTC()); err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return team.ErrAlreadyMember
		}
		return errors.Wrap(err, "inserting membership")
	}
	return nil
}
