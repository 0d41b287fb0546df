package identity

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/darasahq/darasa/core"
)

var (
	// errors
	ErrNotFound    = errors.New("identity not found")
	ErrEmailExists = errors.New("an identity with this email already exists")
)

// Identity is a login-capable user record owned by the auth layer.
// Application-level attributes live in profile.Profile, keyed by ID.
type Identity struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash []byte    `db:"password_hash" json:"-"`
	Confirmed    bool      `db:"confirmed" json:"confirmed"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"` // UTC
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"` // UTC
	LastLogin    time.Time `db:"last_login" json:"last_login"` // UTC
}

func (idn *Identity) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	idn.PasswordHash = hash
	return nil
}

func (idn *Identity) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(idn.PasswordHash, []byte(pwd))
}

// AcceptInvite carries the invite-acceptance payload: the UID/token pair from
// the invitation email plus the chosen password.
type AcceptInvite struct {
	UID             string `json:"uid,omitempty" validate:"required"`
	Token           string `json:"token,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

type Repository interface {
	// CreateIdentity persists a new identity; returns ErrEmailExists on a duplicate email.
	CreateIdentity(ctx context.Context, idn Identity) (Identity, error)
	GetIdentityByID(ctx context.Context, id string) (Identity, error)
	GetIdentityByEmail(ctx context.Context, email string) (Identity, error)
	UpdateIdentity(ctx context.Context, idn Identity) (Identity, error)
}

func cleanEmail(email string) string {
	return core.CleanString(email, true /* lower */)
}
