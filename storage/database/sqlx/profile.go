package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core/profile"
)

const undefinedColumn = pq.ErrorCode("42703")

type profileRepository struct {
	db *sqlx.DB
}

var _ profile.Repository = (*profileRepository)(nil)

func NewProfileRepository(db *sqlx.DB) *profileRepository {
	return &profileRepository{db: db}
}

func (repo *profileRepository) GetProfileByID(ctx context.Context, id string) (profile.Profile, error) {
	var p profile.Profile
	if err := repo.db.GetContext(ctx, &p, `SELECT * FROM profiles WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return profile.Profile{}, profile.ErrNotFound
		}
		return profile.Profile{}, errors.Wrap(err, "selecting profile by ID")
	}
	return p, nil
}

func (repo *profileRepository) UpsertProfile(ctx context.Context, p profile.Profile) error {
	const q = `
	INSERT INTO profiles (id, role, full_name, first_name, last_name, mobile_number, created_at, updated_at)
	VALUES (:id, :role, :full_name, :first_name, :last_name, :mobile_number, :created_at, :updated_at)
	ON CONFLICT (id) DO UPDATE
	SET role = EXCLUDED.role, full_name = EXCLUDED.full_name, first_name = EXCLUDED.first_name,
	    last_name = EXCLUDED.last_name, mobile_number = EXCLUDED.mobile_number, updated_at = EXCLUDED.updated_at`

	return repo.upsert(ctx, q, p)
}

func (repo *profileRepository) UpsertProfileCore(ctx context.Context, p profile.Profile) error {
	const q = `
	INSERT INTO profiles (id, role, full_name, created_at, updated_at)
	VALUES (:id, :role, :full_name, :created_at, :updated_at)
	ON CONFLICT (id) DO UPDATE
	SET role = EXCLUDED.role, full_name = EXCLUDED.full_name, updated_at = EXCLUDED.updated_at`

	return repo.upsert(ctx, q, p)
}

func (repo *profileRepository) upsert(ctx context.Context, q string, p profile.Profile) error {
	if _, err := repo.db.NamedExecContext(ctx, q, p); err != nil {
		// tolerate schemas still missing optional columns (incremental migrations)
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == undefinedColumn {
			return profile.ErrUnknownColumn
		}
		return errors.Wrap(err, "upserting profile")
	}
	return nil
}
