package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/identity"
	"github.com/darasahq/darasa/core/importer"
	"github.com/darasahq/darasa/core/profile"
	"github.com/darasahq/darasa/core/team"
	emailsvc "github.com/darasahq/darasa/services/email"
	dummydb "github.com/darasahq/darasa/storage/database/dummy"
)

var (
	errUnauthorizedResp = httpErr{Error: "Unauthorized"}
	errForbiddenResp    = httpErr{Error: "Forbidden"}
)

type testLogger struct{}

func (testLogger) Enable(bool)                  {}
func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Fatal(string, ...interface{}) {}

type testEnv struct {
	conf         *core.Config
	server       *Server
	identityRepo identity.Repository
	profileRepo  profile.Repository
	teamRepo     team.Repository
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	conf := &core.Config{
		Env:             "TEST",
		TestMode:        true,
		AppName:         "Darasa",
		SecretKey:       []byte("secret"),
		FrontendBaseURL: "http://localhost:3000",
		Server: core.ServerConfig{
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
			InviteTimeoutDelta:        3 * 24 * time.Hour,
			ImportTimeout:             time.Minute,
			ImportMaxRows:             100,
		},
	}

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	identityRepo := dummydb.NewIdentityRepository(db)
	profileRepo := dummydb.NewProfileRepository(db)
	teamRepo := dummydb.NewTeamRepository(db)

	validate, translator := core.NewValidator()
	identity.RegisterValidators(validate, translator)

	logger := testLogger{}
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	emailsvc.ClearSentMessages()

	identitySvc := identity.NewService(conf, identityRepo, mailSvc, validate, logger)
	importSvc := importer.NewService(conf, identitySvc, profileRepo, teamRepo, logger, nil)

	server := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logger,
		IdentitySvc:    identitySvc,
		ImportSvc:      importSvc,
		ProfileRepo:    profileRepo,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})

	return &testEnv{
		conf:         conf,
		server:       server,
		identityRepo: identityRepo,
		profileRepo:  profileRepo,
		teamRepo:     teamRepo,
	}
}

func (env *testEnv) createAccount(t *testing.T, email, pwd, role string) identity.Identity {
	t.Helper()

	now := time.Now().UTC()
	idn := identity.Identity{
		ID:        uuid.New().String(),
		Email:     email,
		Confirmed: true,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := idn.SetPassword(pwd); err != nil {
			t.Fatalf("createAccount() failed: %v", err)
		}
	}
	idn, err := env.identityRepo.CreateIdentity(context.Background(), idn)
	if err != nil {
		t.Fatalf("createAccount() failed: %v", err)
	}

	p := profile.Profile{ID: idn.ID, Role: role, CreatedAt: now, UpdatedAt: now}
	if err = env.profileRepo.UpsertProfileCore(context.Background(), p); err != nil {
		t.Fatalf("createAccount() failed: %v", err)
	}
	return idn
}

func (env *testEnv) createTeam(t *testing.T, name string) team.Team {
	t.Helper()

	tm, err := env.teamRepo.CreateTeam(context.Background(), team.Team{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("createTeam() failed: %v", err)
	}
	return tm
}

func (env *testEnv) getToken(t *testing.T, idn identity.Identity) string {
	t.Helper()

	p, err := env.profileRepo.GetProfileByID(context.Background(), idn.ID)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	token, err := GenerateToken(env.conf, GetIdentityClaims(env.conf, idn, p))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
