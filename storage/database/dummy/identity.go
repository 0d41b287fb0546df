package dummydb

import (
	"context"

	"github.com/darasahq/darasa/core/identity"
)

type identityRepository struct {
	db *identityTable
}

var _ identity.Repository = (*identityRepository)(nil) // interface compliance check

func NewIdentityRepository(db *DB) *identityRepository {
	return &identityRepository{db: db.identity}
}

func (repo *identityRepository) CreateIdentity(_ context.Context, idn identity.Identity) (identity.Identity, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.table {
		if existing.Email == idn.Email {
			return identity.Identity{}, identity.ErrEmailExists
		}
	}
	repo.db.table[idn.ID] = &idn
	return idn, nil
}

func (repo *identityRepository) GetIdentityByID(_ context.Context, id string) (identity.Identity, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if idn, ok := repo.db.table[id]; ok {
		return *idn, nil
	}
	return identity.Identity{}, identity.ErrNotFound
}

func (repo *identityRepository) GetIdentityByEmail(_ context.Context, email string) (identity.Identity, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, idn := range repo.db.table {
		if idn.Email == email {
			return *idn, nil
		}
	}
	return identity.Identity{}, identity.ErrNotFound
}

func (repo *identityRepository) UpdateIdentity(_ context.Context, idn identity.Identity) (identity.Identity, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[idn.ID]; !ok {
		return identity.Identity{}, identity.ErrNotFound
	}
	repo.db.table[idn.ID] = &idn
	return idn, nil
}
