package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core/identity"
)

const uniqueViolation = pq.ErrorCode("23505")

type identityRepository struct {
	db *sqlx.DB
}

var _ identity.Repository = (*identityRepository)(nil)

func NewIdentityRepository(db *sqlx.DB) *identityRepository {
	return &identityRepository{db: db}
}

func (repo *identityRepository) CreateIdentity(ctx context.Context, idn identity.Identity) (identity.Identity, error) {
	const q = `
	INSERT INTO identities (id, email, password_hash, confirmed, is_active, created_at, updated_at, last_login)
	VALUES (:id, :email, :password_hash, :confirmed, :is_active, :created_at, :updated_at, :last_login)`

	if _, err := repo.db.NamedExecContext(ctx, q, idn); err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return identity.Identity{}, identity.ErrEmailExists
		}
		return identity.Identity{}, errors.Wrap(err, "inserting identity")
	}
	return idn, nil
}

func (repo *identityRepository) GetIdentityByID(ctx context.Context, id string) (identity.Identity, error) {
	var idn identity.Identity
	if err := repo.db.GetContext(ctx, &idn, `SELECT * FROM identities WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return identity.Identity{}, identity.ErrNotFound
		}
		return identity.Identity{}, errors.Wrap(err, "selecting identity by ID")
	}
	return idn, nil
}

func (repo *identityRepository) GetIdentityByEmail(ctx context.Context, email string) (identity.Identity, error) {
	var idn identity.Identity
	if err := repo.db.GetContext(ctx, &idn, `SELECT * FROM identities WHERE email = $1`, email); err != nil {
		if err == sql.ErrNoRows {
			return identity.Identity{}, identity.ErrNotFound
		}
		return identity.Identity{}, errors.Wrap(err, "selecting identity by email")
	}
	return idn, nil
}

func (repo *identityRepository) UpdateIdentity(ctx context.Context, idn identity.Identity) (identity.Identity, error) {
	const q = `
	UPDATE identities
	SET email = :email, password_hash = :password_hash, confirmed = :confirmed,
	    is_active = :is_active, updated_at = :updated_at, last_login = :last_login
	WHERE id = :id`

	res, err := repo.db.NamedExecContext(ctx, q, idn)
	if err != nil {
		return identity.Identity{}, errors.Wrap(err, "updating identity")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return identity.Identity{}, identity.ErrNotFound
	}
	return idn, nil
}
