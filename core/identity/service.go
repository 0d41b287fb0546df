package identity

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core"
)

var errInviteFailed = core.NewValidationError(errors.New("invalid or expired invitation"))

type (
	// ServiceInterface is the identity provider surface consumed by the rest of the app.
	ServiceInterface interface {
		Create(ctx context.Context, email string) (Identity, error)
		Invite(ctx context.Context, email string) (Identity, error)
		AcceptInvitation(ctx context.Context, data AcceptInvite) (Identity, error)
		Authenticate(ctx context.Context, email, pwd string) (Identity, error)
		GetByID(ctx context.Context, id string) (Identity, error)
	}

	Service struct {
		conf     *core.Config
		repo     Repository
		mailSvc  core.EmailService
		validate *validator.Validate
		logger   core.Logger
		tokenGen tokenGenerator
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(
	conf *core.Config,
	repo Repository,
	mailSvc core.EmailService,
	validate *validator.Validate,
	logger core.Logger,
) *Service {
	return &Service{
		conf:     conf,
		repo:     repo,
		mailSvc:  mailSvc,
		validate: validate,
		logger:   logger,
		tokenGen: tokenGenerator{
			secretKey: conf.SecretKey,
			timeout:   conf.Server.InviteTimeoutDelta,
		},
	}
}

// Create provisions a new, unconfirmed identity with no credentials.
// The identity cannot log in until it accepts an invitation.
func (svc *Service) Create(ctx context.Context, email string) (Identity, error) {
	now := time.Now().UTC()
	idn := Identity{
		ID:        uuid.New().String(),
		Email:     cleanEmail(email),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateIdentity(ctx, idn)
}

// Invite provisions a new identity and emails it an invitation link carrying
// a signed set-password token. The email send is asynchronous and best-effort.
func (svc *Service) Invite(ctx context.Context, email string) (Identity, error) {
	idn, err := svc.Create(ctx, email)
	if err != nil {
		return Identity{}, err
	}

	token, err := svc.tokenGen.MakeToken(idn)
	if err != nil {
		return Identity{}, errors.Wrap(err, "generating invite token")
	}
	svc.sendInvitationEmail(idn, token)
	return idn, nil
}

func (svc *Service) sendInvitationEmail(idn Identity, token string) {
	url := fmt.Sprintf("%s/invite/%s/%s", svc.conf.FrontendBaseURL, EncodeUID(idn), token)
	msg := &core.EmailMessage{
		To:      []mail.Address{{Address: idn.Email}},
		Subject: "You have been invited to " + svc.conf.AppName,
		BodyStr: "Hello,\n\n" +
			"An account has been created for you on " + svc.conf.AppName + ".\n" +
			"Follow the link below to choose a password and activate it:\n\n" +
			url + "\n\n" +
			"If you were not expecting this invitation, you can safely ignore this email.",
	}
	svc.mailSvc.SendMessages(msg)
}

// AcceptInvitation verifies the UID/token pair from an invitation email, applies
// the password policy and activates the identity with the chosen password.
func (svc *Service) AcceptInvitation(ctx context.Context, data AcceptInvite) (Identity, error) {
	if err := svc.validate.Struct(data); err != nil {
		return Identity{}, err
	}

	id, err := DecodeUID(data.UID)
	if err != nil {
		return Identity{}, errInviteFailed
	}
	idn, err := svc.repo.GetIdentityByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Identity{}, errInviteFailed
		}
		return Identity{}, errors.Wrap(err, "finding identity by ID")
	}
	if err = svc.tokenGen.VerifyToken(idn, data.Token); err != nil {
		return Identity{}, errInviteFailed
	}
	if err = checkPasswordSimilarity(data.Password, idn.Email); err != nil {
		return Identity{}, err
	}

	if err = idn.SetPassword(data.Password); err != nil {
		return Identity{}, errors.Wrap(err, "setting password")
	}
	idn.Confirmed = true
	idn.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateIdentity(ctx, idn)
}

// Authenticate checks the given credentials and records the login time.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (Identity, error) {
	idn, err := svc.repo.GetIdentityByEmail(ctx, cleanEmail(email))
	if err != nil {
		return Identity{}, err
	}
	if err = idn.CheckPassword(pwd); err != nil {
		return Identity{}, ErrNotFound
	}

	idn.LastLogin = time.Now().UTC()
	idn.UpdatedAt = idn.LastLogin
	return svc.repo.UpdateIdentity(ctx, idn)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Identity, error) {
	return svc.repo.GetIdentityByID(ctx, id)
}
