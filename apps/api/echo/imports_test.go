package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/darasahq/darasa/core/importer"
	"github.com/darasahq/darasa/core/profile"
)

func Test_importApi_importUsers_authz(t *testing.T) {
	env := setup(t)

	admin := env.createAccount(t, "admin@test.cd", "", profile.RoleAdmin)
	learner := env.createAccount(t, "learner@test.cd", "", profile.RoleLearner)

	body := marchallObj(t, importer.Request{
		Rows: []map[string]interface{}{{"email": "new@test.cd"}},
	})
	emptyBody := marchallObj(t, importer.Request{})

	tests := []httpTest{
		{
			name:     "no token",
			body:     body,
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errUnauthorizedResp),
		},
		{
			name:     "learner forbidden",
			body:     body,
			token:    env.getToken(t, learner),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbiddenResp),
		},
		{
			name:     "no rows",
			body:     emptyBody,
			token:    env.getToken(t, admin),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "No rows provided"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/users/import", tt.token, tt.body)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_importApi_importUsers(t *testing.T) {
	env := setup(t)

	owner := env.createAccount(t, "owner@test.cd", "", profile.RoleOwner)
	token := env.getToken(t, owner)
	env.createTeam(t, "Sales")

	body := marchallObj(t, importer.Request{
		Rows: []map[string]interface{}{
			{"email": "a@test.cd", "first_name": "Awe", "last_name": "Mbenza", "role": "manager", "team_name": "Sales"},
			{"email": "b@test.cd", "team_name": "Ghosts"},
			{"first_name": "NoEmail"},
		},
	})

	req, rec := newAuthRequest(http.MethodPost, "/v1/users/import", token, body)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
	}

	var report importer.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decoding report: %v", err)
	}

	assert.Equal(t, 3, report.Summary.Total)
	assert.Equal(t, 2, report.Summary.Succeeded)
	assert.Equal(t, 1, report.Summary.Failed)

	assert.Equal(t, "a@test.cd", report.Results[0].Email)
	assert.Equal(t, importer.StatusOK, report.Results[0].Status)
	assert.Equal(t, "invited", report.Results[0].Message)
	assert.True(t, report.Results[0].TeamAssigned)

	assert.Equal(t, importer.StatusOK, report.Results[1].Status)
	assert.False(t, report.Results[1].TeamAssigned)

	assert.Equal(t, importer.StatusError, report.Results[2].Status)
	assert.Equal(t, "Missing email", report.Results[2].Message)

	// the provisioned profile carries the row's role
	ctx := context.Background()
	idn, err := env.identityRepo.GetIdentityByEmail(ctx, "a@test.cd")
	if err != nil {
		t.Fatalf("GetIdentityByEmail() failed: %v", err)
	}
	p, err := env.profileRepo.GetProfileByID(ctx, idn.ID)
	if err != nil {
		t.Fatalf("GetProfileByID() failed: %v", err)
	}
	assert.Equal(t, profile.RoleManager, p.Role)
	assert.Equal(t, "Awe Mbenza", p.FullName.String)

	// re-running the same batch: identities already exist, rows fail but the
	// batch still returns 200 with per-row errors
	req, rec = newAuthRequest(http.MethodPost, "/v1/users/import", token, body)
	env.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decoding report: %v", err)
	}
	assert.Equal(t, 3, report.Summary.Failed)
}

func Test_importApi_importUsers_createMode(t *testing.T) {
	env := setup(t)

	owner := env.createAccount(t, "owner@test.cd", "", profile.RoleOwner)
	token := env.getToken(t, owner)

	body := marchallObj(t, importer.Request{
		Mode: importer.ModeCreate,
		Rows: []map[string]interface{}{{"email": "a@test.cd"}},
	})
	req, rec := newAuthRequest(http.MethodPost, "/v1/users/import", token, body)
	env.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var report importer.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decoding report: %v", err)
	}
	assert.Equal(t, "created", report.Results[0].Message)

	idn, err := env.identityRepo.GetIdentityByEmail(context.Background(), "a@test.cd")
	if err != nil {
		t.Fatalf("GetIdentityByEmail() failed: %v", err)
	}
	assert.False(t, idn.Confirmed)
}

func Test_importApi_importUsers_csvBody(t *testing.T) {
	env := setup(t)

	owner := env.createAccount(t, "owner@test.cd", "", profile.RoleOwner)
	token := env.getToken(t, owner)

	body := marchallObj(t, importer.Request{
		CSV: "email,role\na@test.cd,admin\nb@test.cd,\n",
	})
	req, rec := newAuthRequest(http.MethodPost, "/v1/users/import", token, body)
	env.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var report importer.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decoding report: %v", err)
	}
	assert.Equal(t, 2, report.Summary.Succeeded)
}
