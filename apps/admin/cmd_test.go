package main

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/identity"
	"github.com/darasahq/darasa/core/importer"
	"github.com/darasahq/darasa/core/profile"
	"github.com/darasahq/darasa/core/team"
	dummydb "github.com/darasahq/darasa/storage/database/dummy"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type nopMailSvc struct{}

func (nopMailSvc) SendMessages(...*core.EmailMessage) {}

func setup(t *testing.T) *commandLine {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	identityRepo := dummydb.NewIdentityRepository(db)
	profileRepo := dummydb.NewProfileRepository(db)
	teamRepo := dummydb.NewTeamRepository(db)

	conf := &core.Config{
		AppName:         "Darasa",
		SecretKey:       []byte("secret"),
		FrontendBaseURL: "http://localhost:3000",
		Server:          core.ServerConfig{ImportMaxRows: 100},
	}
	validate, translator := core.NewValidator()
	identity.RegisterValidators(validate, translator)
	identitySvc := identity.NewService(conf, identityRepo, nopMailSvc{}, validate, nopLogger{})

	return &commandLine{
		identityRepo: identityRepo,
		profileRepo:  profileRepo,
		teamRepo:     teamRepo,
		importSvc:    importer.NewService(conf, identitySvc, profileRepo, teamRepo, nopLogger{}, nil),
	}
}

type cliTest struct {
	name    string
	args    []string // without program name
	pwd     string
	wantErr error
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	var called bool
	migrateFunc = func(db *sqlx.DB) error {
		called = true
		return nil
	}

	if err := cli.run([]string{"admin", "migrate"}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}
	if !called {
		t.Error("migrate was not invoked")
	}
}

func Test_commandLine_createOwner(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"createowner"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"createowner", "-email", "o@test.cd"}, wantErr: errHelp},
		{name: "create", args: []string{"createowner", "-email", "O@Test.CD"}, pwd: "S3cret!pwd"},
		{name: "recreate updates password", args: []string{"createowner", "-email", "o@test.cd"}, pwd: "N3w!secret"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(tt.pwd), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			ctx := context.Background()
			idn, err := cli.identityRepo.GetIdentityByEmail(ctx, "o@test.cd")
			if err != nil {
				t.Fatalf("GetIdentityByEmail() failed: %v", err)
			}
			if err = idn.CheckPassword(tt.pwd); err != nil {
				t.Error("failed to set the prompted password")
			}
			p, err := cli.profileRepo.GetProfileByID(ctx, idn.ID)
			if err != nil {
				t.Fatalf("GetProfileByID() failed: %v", err)
			}
			if p.Role != profile.RoleOwner {
				t.Errorf("role = %v, want %v", p.Role, profile.RoleOwner)
			}
		})
	}
}

func Test_commandLine_addTeam(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no args", args: []string{"addteam"}, wantErr: errHelp},
		{name: "create", args: []string{"addteam", "-name", "Sales"}},
		{name: "idempotent", args: []string{"addteam", "-name", "Sales"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if _, err := cli.teamRepo.GetTeamByName(context.Background(), "Sales"); err == team.ErrNotFound {
				t.Error("team was not created")
			}
		})
	}
}

func Test_commandLine_importUsers(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	// seed an owner to run the import as
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("S3cret!pwd"), nil }
	if err := cli.run([]string{"admin", "createowner", "-email", "o@test.cd"}); err != nil {
		t.Fatalf("createowner failed: %v", err)
	}

	dir := t.TempDir()
	file := filepath.Join(dir, "users.csv")
	csv := "email,first_name,role\na@test.cd,Awe,manager\nb@test.cd,,\n"
	if err := ioutil.WriteFile(file, []byte(csv), os.FileMode(0o644)); err != nil {
		t.Fatalf("writing csv: %v", err)
	}

	tests := []cliTest{
		{name: "no file", args: []string{"importusers"}, wantErr: errHelp},
		{name: "import", args: []string{"importusers", "-file", file, "-mode", "create", "-as", "o@test.cd"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			idn, err := cli.identityRepo.GetIdentityByEmail(ctx, "a@test.cd")
			if err != nil {
				t.Fatalf("GetIdentityByEmail() failed: %v", err)
			}
			p, err := cli.profileRepo.GetProfileByID(ctx, idn.ID)
			if err != nil {
				t.Fatalf("GetProfileByID() failed: %v", err)
			}
			if p.Role != profile.RoleManager {
				t.Errorf("role = %v, want %v", p.Role, profile.RoleManager)
			}
		})
	}
}
