// Package dummydb provides in-memory repositories for local development and tests.
package dummydb

import (
	"sync"

	"github.com/darasahq/darasa/core/identity"
	"github.com/darasahq/darasa/core/profile"
	"github.com/darasahq/darasa/core/team"
)

type (
	identityTable struct {
		sync.RWMutex
		table map[string]*identity.Identity
	}

	profileTable struct {
		sync.RWMutex
		table map[string]*profile.Profile
	}

	teamTable struct {
		sync.RWMutex
		table   map[string]*team.Team
		members map[string]map[string]bool // team_id -> user_id set
	}

	DB struct {
		identity *identityTable
		profile  *profileTable
		team     *teamTable
	}
)

func Open() (*DB, error) {
	db := &DB{
		identity: &identityTable{table: make(map[string]*identity.Identity)},
		profile:  &profileTable{table: make(map[string]*profile.Profile)},
		team:     &teamTable{table: make(map[string]*team.Team), members: make(map[string]map[string]bool)},
	}
	return db, nil
}
