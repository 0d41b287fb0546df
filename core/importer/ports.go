package importer

import (
	"context"
	"time"

	"github.com/darasahq/darasa/core/identity"
	"github.com/darasahq/darasa/core/profile"
	"github.com/darasahq/darasa/core/team"
)

type (
	// IdentityProvider provisions login-capable identities.
	IdentityProvider interface {
		// Create provisions a new, unconfirmed identity.
		Create(ctx context.Context, email string) (identity.Identity, error)
		// Invite provisions a new identity and sends it an invitation email.
		Invite(ctx context.Context, email string) (identity.Identity, error)
	}

	// ProfileStore reads and writes application-level profiles keyed by identity ID.
	ProfileStore interface {
		GetProfileByID(ctx context.Context, id string) (profile.Profile, error)
		// UpsertProfile may return profile.ErrUnknownColumn when the schema is
		// missing an optional column; callers fall back to UpsertProfileCore.
		UpsertProfile(ctx context.Context, p profile.Profile) error
		UpsertProfileCore(ctx context.Context, p profile.Profile) error
	}

	// TeamStore resolves teams and attaches members.
	TeamStore interface {
		GetTeamByName(ctx context.Context, name string) (team.Team, error)
		TeamExists(ctx context.Context, id string) (bool, error)
		// AddMember returns team.ErrAlreadyMember on a duplicate (team, user) pair.
		AddMember(ctx context.Context, teamID, userID string) error
	}

	// Metrics records import outcomes.
	Metrics interface {
		RowSucceeded()
		RowFailed()
		BatchProcessed(total int, elapsed time.Duration)
	}

	// NopMetrics discards all measurements.
	NopMetrics struct{}
)

func (NopMetrics) RowSucceeded()                     {}
func (NopMetrics) RowFailed()                        {}
func (NopMetrics) BatchProcessed(int, time.Duration) {}
