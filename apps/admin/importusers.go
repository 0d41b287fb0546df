package main

import (
	"context"
	"fmt"
	"io/ioutil"

	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core/importer"
)

// importUsers runs a bulk import from a CSV file. When asEmail is given, the
// batch is authorized as that account before any row is processed.
func (cli *commandLine) importUsers(file, mode, match, asEmail string) error {
	ctx := context.Background()

	data, err := ioutil.ReadFile(file)
	if err != nil {
		return errors.Wrapf(err, "reading %s", file)
	}

	if asEmail != "" {
		idn, err := cli.identityRepo.GetIdentityByEmail(ctx, asEmail)
		if err != nil {
			return errors.Wrap(err, "finding identity by email")
		}
		if err = cli.importSvc.Authorize(ctx, idn.ID); err != nil {
			return errors.Wrap(err, "authorizing import")
		}
	}

	report, err := cli.importSvc.Run(ctx, &importer.Request{
		CSV:       string(data),
		Mode:      importer.Mode(mode),
		TeamMatch: importer.TeamMatch(match),
	})
	if err != nil {
		return errors.Wrap(err, "running import")
	}

	fmt.Printf("%d total, %d succeeded, %d failed\n",
		report.Summary.Total, report.Summary.Succeeded, report.Summary.Failed)
	for _, res := range report.Results {
		if res.Status == importer.StatusError {
			fmt.Printf("  %s: %s\n", res.Email, res.Message)
		}
	}
	return nil
}
