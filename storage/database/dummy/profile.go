package dummydb

import (
	"context"

	"github.com/darasahq/darasa/core/profile"
)

type profileRepository struct {
	db *profileTable

	// MissingColumns simulates a schema still missing the optional profile
	// columns: full upserts fail with profile.ErrUnknownColumn.
	MissingColumns bool
}

var _ profile.Repository = (*profileRepository)(nil) // interface compliance check

func NewProfileRepository(db *DB) *profileRepository {
	return &profileRepository{db: db.profile}
}

func (repo *profileRepository) GetProfileByID(_ context.Context, id string) (profile.Profile, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if p, ok := repo.db.table[id]; ok {
		return *p, nil
	}
	return profile.Profile{}, profile.ErrNotFound
}

func (repo *profileRepository) UpsertProfile(_ context.Context, p profile.Profile) error {
	if repo.MissingColumns {
		return profile.ErrUnknownColumn
	}
	return repo.upsert(p)
}

func (repo *profileRepository) UpsertProfileCore(_ context.Context, p profile.Profile) error {
	return repo.upsert(p.Core())
}

func (repo *profileRepository) upsert(p profile.Profile) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if orig, ok := repo.db.table[p.ID]; ok {
		p.CreatedAt = orig.CreatedAt
	}
	repo.db.table[p.ID] = &p
	return nil
}
