package dummydb

import (
	"context"

	"github.com/darasahq/darasa/core/team"
)

type teamRepository struct {
	db *teamTable
}

var _ team.Repository = (*teamRepository)(nil) // interface compliance check

func NewTeamRepository(db *DB) *teamRepository {
	return &teamRepository{db: db.team}
}

func (repo *teamRepository) CreateTeam(_ context.Context, t team.Team) (team.Team, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[t.ID] = &t
	return t, nil
}

func (repo *teamRepository) GetTeamByName(_ context.Context, name string) (team.Team, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, t := range repo.db.table {
		if t.Name == name {
			return *t, nil
		}
	}
	return team.Team{}, team.ErrNotFound
}

func (repo *teamRepository) TeamExists(_ context.Context, id string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	_, ok := repo.db.table[id]
	return ok, nil
}

func (repo *teamRepository) AddMember(_ context.Context, teamID, userID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	members, ok := repo.db.members[teamID]
	if !ok {
		members = make(map[string]bool)
		repo.db.members[teamID] = members
	}
	if members[userID] {
		return team.ErrAlreadyMember
	}
	members[userID] = true
	return nil
}
