package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/darasahq/darasa/core/identity"
	"github.com/darasahq/darasa/core/importer"
	"github.com/darasahq/darasa/core/profile"
	"github.com/darasahq/darasa/core/team"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db           *sqlx.DB
	identityRepo identity.Repository
	profileRepo  profile.Repository
	teamRepo     team.Repository
	importSvc    importer.ServiceInterface
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate - apply pending database migrations")
	fmt.Println("  createowner -email EMAIL - create an owner account. The password will be prompted next.")
	fmt.Println("  addteam -name NAME - create a team")
	fmt.Println("  importusers -file FILE [-mode invite|create] [-team-match name|id] [-as EMAIL] - run a bulk user import")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createOwnerCmd := flag.NewFlagSet("createowner", flag.ExitOnError)
	createOwnerEmail := createOwnerCmd.String("email", "", "The owner's email. The password will be prompted next.")

	addTeamCmd := flag.NewFlagSet("addteam", flag.ExitOnError)
	addTeamName := addTeamCmd.String("name", "", "The team name.")

	importCmd := flag.NewFlagSet("importusers", flag.ExitOnError)
	importFile := importCmd.String("file", "", "Path to the CSV file to import.")
	importMode := importCmd.String("mode", string(importer.ModeInvite), "Provisioning mode: invite or create.")
	importMatch := importCmd.String("team-match", string(importer.MatchName), "Team resolution field: name or id.")
	importAs := importCmd.String("as", "", "Email of the owner or admin to run the import as (optional).")

	switch args[1] {
	case "migrate":
		return cli.migrate()
	case "createowner":
		if err := createOwnerCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *createOwnerEmail == "" {
			createOwnerCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			createOwnerCmd.Usage()
			return errHelp
		}
		return cli.createOwner(*createOwnerEmail, string(pwd))
	case "addteam":
		if err := addTeamCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addTeamName == "" {
			addTeamCmd.Usage()
			return errHelp
		}
		return cli.addTeam(*addTeamName)
	case "importusers":
		if err := importCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importFile == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importUsers(*importFile, *importMode, *importMatch, *importAs)
	default:
		cli.printUsage()
		return errHelp
	}
}
