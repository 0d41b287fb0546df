package main

import (
	"log"
	"os"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/identity"
	"github.com/darasahq/darasa/core/importer"
	emailsvc "github.com/darasahq/darasa/services/email"
	logsvc "github.com/darasahq/darasa/services/logger"
	"github.com/darasahq/darasa/storage/database"
	sqlxrepos "github.com/darasahq/darasa/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.NewConfig()
	errAndDie(err)

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	appLogger := logsvc.NewRollbarLogger(logger, conf)
	appLogger.Enable(!conf.Debug)

	validate, translator := core.NewValidator()
	identity.RegisterValidators(validate, translator)

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, appLogger)
	}

	identityRepo := sqlxrepos.NewIdentityRepository(db)
	profileRepo := sqlxrepos.NewProfileRepository(db)
	teamRepo := sqlxrepos.NewTeamRepository(db)

	identitySvc := identity.NewService(conf, identityRepo, mailSvc, validate, appLogger)

	// start CLI
	cli := commandLine{
		db:           db,
		identityRepo: identityRepo,
		profileRepo:  profileRepo,
		teamRepo:     teamRepo,
		importSvc:    importer.NewService(conf, identitySvc, profileRepo, teamRepo, appLogger, nil),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
