package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/identity"
	"github.com/darasahq/darasa/core/profile"
)

// createOwner updates or creates a confirmed owner account.
func (cli *commandLine) createOwner(email, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)
	now := time.Now().UTC()

	idn := identity.Identity{
		ID:        uuid.New().String(),
		Email:     email,
		Confirmed: true,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := idn.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "setting password")
	}

	idn, err := cli.identityRepo.CreateIdentity(ctx, idn)
	if err != nil {
		if errors.Cause(err) != identity.ErrEmailExists {
			return errors.Wrap(err, "creating identity")
		}
		// promote the existing account
		if idn, err = cli.identityRepo.GetIdentityByEmail(ctx, email); err != nil {
			return errors.Wrap(err, "finding identity by email")
		}
		if err = idn.SetPassword(pwd); err != nil {
			return errors.Wrap(err, "setting password")
		}
		idn.Confirmed = true
		idn.IsActive = true
		idn.UpdatedAt = now
		if idn, err = cli.identityRepo.UpdateIdentity(ctx, idn); err != nil {
			return errors.Wrap(err, "updating identity")
		}
	}

	p := profile.Profile{
		ID:        idn.ID,
		Role:      profile.RoleOwner,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return errors.Wrap(cli.profileRepo.UpsertProfileCore(ctx, p), "writing owner profile")
}
