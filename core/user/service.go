package user

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/revisehub/revisehub/core"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id int64) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		GetUserByResetToken(ctx context.Context, token string) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	Service interface {
		Register(ctx context.Context, nu NewUser) (User, error)
		Authenticate(ctx context.Context, email, pwd string) (User, error)
		GetByID(ctx context.Context, id int64) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		// RequestPasswordReset stores a fresh single-use token on the account
		// and emails the reset link. The link is also returned so debug
		// builds can surface it to the client.
		RequestPasswordReset(ctx context.Context, email string) (string, error)
		ResetPassword(ctx context.Context, rp ResetUserPassword) error
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) Service {
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

func (svc *service) checkUniqueness(ctx context.Context, email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, exclUsers...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Register(ctx context.Context, nu NewUser) (User, error) {
	if err := svc.checkUniqueness(ctx, nu.Email); err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	usr := User{
		Name:      nu.Name,
		Email:     nu.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *service) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return User{}, err
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrNotFound
	}
	return usr, nil
}

func (svc *service) GetByID(ctx context.Context, id int64) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	token, err := MakeResetToken()
	if err != nil {
		return "", err
	}
	usr.ResetToken = null.StringFrom(token)
	usr.ResetTokenExpires = null.TimeFrom(NowFunc().UTC().Add(svc.conf.PasswordResetTimeout))
	usr.UpdatedAt = time.Now().UTC()
	if usr, err = svc.repo.UpdateUser(ctx, usr); err != nil {
		return "", errors.Wrap(err, "storing reset token")
	}

	link := svc.resetLink(token)
	svc.sendPasswordResetMail(usr, link)
	return link, nil
}

func (svc *service) ResetPassword(ctx context.Context, rp ResetUserPassword) error {
	usr, err := svc.repo.GetUserByResetToken(ctx, rp.Token)
	if err != nil {
		if err == ErrNotFound {
			return ErrInvalidToken
		}
		return err
	}
	if err = checkResetToken(usr, rp.Token); err != nil {
		return err
	}

	if err = usr.SetPassword(rp.Password); err != nil {
		return err
	}
	usr.ResetToken = null.String{}
	usr.ResetTokenExpires = null.Time{}
	usr.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateUser(ctx, usr)
	return errors.Wrap(err, "updating password")
}

func (svc *service) resetLink(token string) string {
	return fmt.Sprintf("%s/reset-password?token=%s", svc.conf.FrontendBaseURL, token)
}

func (svc *service) sendPasswordResetMail(usr User, link string) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      fmt.Sprintf("%s Password Reset", svc.conf.AppName),
		TemplateName: "password-reset",
		TemplateData: struct {
			ResetLink      string
			TimeoutMinutes int
		}{
			ResetLink:      link,
			TimeoutMinutes: int(svc.conf.PasswordResetTimeout.Minutes()),
		},
	})
}
