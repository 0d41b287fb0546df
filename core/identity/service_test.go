package identity

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/darasahq/darasa/core"
)

type fakeRepo struct {
	table map[string]Identity
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{table: make(map[string]Identity)}
}

func (r *fakeRepo) CreateIdentity(_ context.Context, idn Identity) (Identity, error) {
	for _, existing := range r.table {
		if existing.Email == idn.Email {
			return Identity{}, ErrEmailExists
		}
	}
	r.table[idn.ID] = idn
	return idn, nil
}

func (r *fakeRepo) GetIdentityByID(_ context.Context, id string) (Identity, error) {
	if idn, ok := r.table[id]; ok {
		return idn, nil
	}
	return Identity{}, ErrNotFound
}

func (r *fakeRepo) GetIdentityByEmail(_ context.Context, email string) (Identity, error) {
	for _, idn := range r.table {
		if idn.Email == email {
			return idn, nil
		}
	}
	return Identity{}, ErrNotFound
}

func (r *fakeRepo) UpdateIdentity(_ context.Context, idn Identity) (Identity, error) {
	if _, ok := r.table[idn.ID]; !ok {
		return Identity{}, ErrNotFound
	}
	r.table[idn.ID] = idn
	return idn, nil
}

type fakeMailSvc struct {
	sent []*core.EmailMessage
}

func (f *fakeMailSvc) SendMessages(messages ...*core.EmailMessage) {
	f.sent = append(f.sent, messages...)
}

func testService(t *testing.T) (*Service, *fakeRepo, *fakeMailSvc) {
	t.Helper()
	conf := &core.Config{
		AppName:         "Darasa",
		SecretKey:       []byte("secret"),
		FrontendBaseURL: "http://localhost:3000",
		Server:          core.ServerConfig{InviteTimeoutDelta: 3 * 24 * time.Hour},
	}
	validate, translator := core.NewValidator()
	RegisterValidators(validate, translator)

	repo := newFakeRepo()
	mailSvc := &fakeMailSvc{}
	return NewService(conf, repo, mailSvc, validate, nil), repo, mailSvc
}

func TestService_Create(t *testing.T) {
	svc, _, mailSvc := testService(t)
	ctx := context.Background()

	idn, err := svc.Create(ctx, "  T@Test.CD ")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	assert.NotEmpty(t, idn.ID)
	assert.Equal(t, "t@test.cd", idn.Email)
	assert.True(t, idn.IsActive)
	assert.False(t, idn.Confirmed)
	assert.Empty(t, idn.PasswordHash)
	assert.Empty(t, mailSvc.sent)

	// duplicate email (same address, different case)
	if _, err = svc.Create(ctx, "t@TEST.cd"); err != ErrEmailExists {
		t.Errorf("Create() error = %v, wantErr %v", err, ErrEmailExists)
	}
}

func TestService_Invite(t *testing.T) {
	svc, _, mailSvc := testService(t)

	idn, err := svc.Invite(context.Background(), "t@test.cd")
	if err != nil {
		t.Fatalf("Invite() failed: %v", err)
	}

	if len(mailSvc.sent) != 1 {
		t.Fatalf("expected 1 invitation email, got %d", len(mailSvc.sent))
	}
	msg := mailSvc.sent[0]
	assert.Equal(t, "t@test.cd", msg.To[0].Address)
	assert.Contains(t, msg.BodyStr, "/invite/"+EncodeUID(idn)+"/")
}

func TestService_AcceptInvitation(t *testing.T) {
	svc, repo, mailSvc := testService(t)
	ctx := context.Background()

	idn, err := svc.Invite(ctx, "t@test.cd")
	if err != nil {
		t.Fatalf("Invite() failed: %v", err)
	}

	// pull the uid/token pair out of the emailed link
	link := mailSvc.sent[0].BodyStr
	start := strings.Index(link, "/invite/") + len("/invite/")
	end := strings.IndexAny(link[start:], " \n")
	parts := strings.SplitN(link[start:start+end], "/", 2)
	uid, token := parts[0], parts[1]

	tests := []struct {
		name    string
		data    AcceptInvite
		wantErr error
		errType interface{}
	}{
		{
			name:    "missing fields",
			data:    AcceptInvite{},
			errType: validator.ValidationErrors{},
		},
		{
			name: "password confirmation mismatch",
			data: AcceptInvite{
				UID: uid, Token: token,
				Password: "S3cret!pwd", PasswordConfirm: "Other!pwd1",
			},
			errType: validator.ValidationErrors{},
		},
		{
			name: "weak password",
			data: AcceptInvite{
				UID: uid, Token: token,
				Password: "password", PasswordConfirm: "password",
			},
			errType: validator.ValidationErrors{},
		},
		{
			name: "password similar to email",
			data: AcceptInvite{
				UID: uid, Token: token,
				Password: "t@test.cd1!A", PasswordConfirm: "t@test.cd1!A",
			},
			errType: &core.ValidationError{},
		},
		{
			name: "bad uid",
			data: AcceptInvite{
				UID: "nope", Token: token,
				Password: "S3cret!pwd", PasswordConfirm: "S3cret!pwd",
			},
			wantErr: errInviteFailed,
		},
		{
			name: "bad token",
			data: AcceptInvite{
				UID: uid, Token: "HE4TS-sigsig-sig",
				Password: "S3cret!pwd", PasswordConfirm: "S3cret!pwd",
			},
			wantErr: errInviteFailed,
		},
		{
			name: "happy path",
			data: AcceptInvite{
				UID: uid, Token: token,
				Password: "S3cret!pwd", PasswordConfirm: "S3cret!pwd",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AcceptInvitation(ctx, tt.data)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			if tt.errType != nil {
				assert.IsType(t, tt.errType, err)
				return
			}
			if err != nil {
				t.Fatalf("AcceptInvitation() failed: %v", err)
			}
		})
	}

	accepted := repo.table[idn.ID]
	assert.True(t, accepted.Confirmed)
	assert.NoError(t, accepted.CheckPassword("S3cret!pwd"))

	// the accepted token is single-use: the password change invalidated it
	_, err = svc.AcceptInvitation(ctx, AcceptInvite{
		UID: uid, Token: token,
		Password: "An0ther!pwd", PasswordConfirm: "An0ther!pwd",
	})
	assert.Equal(t, errInviteFailed, err)
}

func TestService_Authenticate(t *testing.T) {
	svc, repo, _ := testService(t)
	ctx := context.Background()

	idn, err := svc.Create(ctx, "t@test.cd")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	_ = idn.SetPassword("S3cret!pwd")
	if _, err = repo.UpdateIdentity(ctx, idn); err != nil {
		t.Fatalf("UpdateIdentity() failed: %v", err)
	}

	if _, err = svc.Authenticate(ctx, "t@test.cd", "wrong"); err != ErrNotFound {
		t.Errorf("Authenticate() error = %v, wantErr %v", err, ErrNotFound)
	}
	if _, err = svc.Authenticate(ctx, "unknown@test.cd", "S3cret!pwd"); err != ErrNotFound {
		t.Errorf("Authenticate() error = %v, wantErr %v", err, ErrNotFound)
	}

	authed, err := svc.Authenticate(ctx, " T@test.CD ", "S3cret!pwd")
	if err != nil {
		t.Fatalf("Authenticate() failed: %v", err)
	}
	assert.False(t, authed.LastLogin.IsZero())
}
