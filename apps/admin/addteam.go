package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/team"
)

func (cli *commandLine) addTeam(name string) error {
	ctx := context.Background()
	name = core.CleanString(name)

	if t, err := cli.teamRepo.GetTeamByName(ctx, name); err == nil {
		fmt.Printf("team %q already exists (id %s)\n", t.Name, t.ID)
		return nil
	} else if errors.Cause(err) != team.ErrNotFound {
		return errors.Wrap(err, "finding team by name")
	}

	t, err := cli.teamRepo.CreateTeam(ctx, team.Team{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return errors.Wrap(err, "creating team")
	}
	fmt.Printf("team %q created (id %s)\n", t.Name, t.ID)
	return nil
}
