package application

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-task-tracker/internal/domain/entity"
	"github.com/oksasatya/go-task-tracker/internal/domain/repository"
	"github.com/oksasatya/go-task-tracker/pkg/helpers"
	"github.com/oksasatya/go-task-tracker/pkg/mailer"
	mailtpl "github.com/oksasatya/go-task-tracker/pkg/mailer/templates"
)

const minPasswordLen = 6

// TokenIssuer issues signed session tokens.
type TokenIssuer interface {
	Issue(userID string) (token string, expiresAt time.Time, err error)
}

// Session is what a successful register, login or reset hands back to the client.
type Session struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	User      entity.PublicUser `json:"user"`
}

type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

type ForgotPasswordInput struct {
	Email string
	// BaseURL is the public origin the reset link points at, without trailing slash.
	BaseURL   string
	IP        string
	UserAgent string
}

type AuthService struct {
	Creds    *CredentialStore
	Tokens   TokenIssuer
	Resets   *helpers.ResetTokenGenerator
	Mail     mailer.Sender
	Denylist repository.SessionDenylist // nil disables revocation
	Logger   logrus.FieldLogger

	AppName string
	// StrictForgotAck answers forgot-password with the generic acknowledgement
	// even when mail dispatch fails. The reset token is rolled back either way.
	StrictForgotAck bool

	Now func() time.Time
}

func NewAuthService(creds *CredentialStore, tokens TokenIssuer, resets *helpers.ResetTokenGenerator, mail mailer.Sender, logger logrus.FieldLogger) *AuthService {
	return &AuthService{
		Creds:   creds,
		Tokens:  tokens,
		Resets:  resets,
		Mail:    mail,
		Logger:  logger,
		AppName: "Smart Task Manager",
		Now:     time.Now,
	}
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) issue(u *entity.User) (Session, error) {
	token, exp, err := s.Tokens.Issue(u.ID)
	if err != nil {
		helpers.LogError(s.Logger, "issue session token failed", err, logrus.Fields{"user_id": u.ID})
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: exp, User: u.Public()}, nil
}

// Register creates the account and logs the user in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (Session, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)

	details := map[string]string{}
	if name == "" {
		details["name"] = "is required"
	}
	if email == "" {
		details["email"] = "is required"
	}
	if len(in.Password) < minPasswordLen {
		details["password"] = "must be at least 6 characters long"
	}
	if in.Password != in.ConfirmPassword {
		details["confirmPassword"] = "must match password"
	}
	if len(details) > 0 {
		return Session{}, invalid("invalid payload", details)
	}

	if _, err := s.Creds.FindByEmail(ctx, email); err == nil {
		return Session{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return Session{}, err
	}

	u, err := s.Creds.Create(ctx, name, email, in.Password)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return Session{}, ErrEmailTaken
	}
	if err != nil {
		return Session{}, err
	}
	helpers.LogInfo(s.Logger, "user registered", logrus.Fields{"user_id": u.ID})
	return s.issue(u)
}

// Login never tells an unknown email apart from a wrong password.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Session{}, invalid("please provide an email and password", nil)
	}

	u, err := s.Creds.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		u = nil
	case err != nil:
		return Session{}, err
	}
	if !s.Creds.Verify(u, password) {
		return Session{}, ErrInvalidCredentials
	}
	return s.issue(u)
}

// ForgotPassword returns nil for unknown emails. For known ones it stores a fresh
// reset token and mails the link; when the mail cannot be sent the token is
// cleared again before returning.
func (s *AuthService) ForgotPassword(ctx context.Context, in ForgotPasswordInput) error {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return invalid("please provide an email", map[string]string{"email": "is required"})
	}

	u, err := s.Creds.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.Logger.Debug("forgot password for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	tok, err := s.Resets.Generate()
	if err != nil {
		return err
	}
	if err := s.Creds.StoreResetToken(ctx, u.ID, tok.Hash, tok.ExpiresAt); err != nil {
		return err
	}

	msg, err := s.resetMessage(u, in, tok)
	if err == nil {
		err = s.Mail.Send(ctx, msg)
	}
	if err == nil {
		helpers.LogInfo(s.Logger, "password reset email dispatched", logrus.Fields{"user_id": u.ID})
		return nil
	}

	helpers.LogError(s.Logger, "password reset email failed, rolling back token", err, logrus.Fields{"user_id": u.ID})
	// the request context may already be done; the rollback must still land
	rbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if rbErr := s.Creds.DropResetToken(rbCtx, u.ID, tok.Hash); rbErr != nil {
		helpers.LogError(s.Logger, "reset token rollback failed", rbErr, logrus.Fields{"user_id": u.ID})
		return errors.Join(ErrMailDispatch, rbErr)
	}
	if s.StrictForgotAck {
		return nil
	}
	return ErrMailDispatch
}

func (s *AuthService) resetMessage(u *entity.User, in ForgotPasswordInput, tok helpers.ResetToken) (mailer.Message, error) {
	resetURL := strings.TrimRight(in.BaseURL, "/") + "/reset-password.html?token=" + url.QueryEscape(tok.Plain)
	now := s.now()
	data := mailtpl.NewResetPasswordData(s.AppName, u.Name, u.Email, resetURL,
		mailtpl.WithExpiresAt(now, tok.ExpiresAt),
		mailtpl.WithIP(in.IP),
		mailtpl.WithUserAgent(in.UserAgent),
		mailtpl.WithTime(now),
	)
	return mailer.EmailJob{To: u.Email, Template: mailtpl.ResetPassword, Data: data}.Message()
}

// ResetPassword consumes a reset token and logs the user in with the new password.
// Unknown, expired and already used tokens all yield ErrInvalidOrExpiredToken.
func (s *AuthService) ResetPassword(ctx context.Context, token, password, confirmPassword string) (Session, error) {
	if password == "" || confirmPassword == "" || password != confirmPassword {
		return Session{}, invalid("passwords must match and be valid", nil)
	}
	if len(password) < minPasswordLen {
		return Session{}, invalid("passwords must match and be valid",
			map[string]string{"password": "must be at least 6 characters long"})
	}
	if token == "" {
		return Session{}, ErrInvalidOrExpiredToken
	}

	now := s.now()
	hash := helpers.HashResetToken(token)
	u, err := s.Creds.FindByResetTokenHash(ctx, hash, now)
	if errors.Is(err, repository.ErrNotFound) {
		return Session{}, ErrInvalidOrExpiredToken
	}
	if err != nil {
		return Session{}, err
	}
	if !u.ResetTokenValid(hash, now) {
		return Session{}, ErrInvalidOrExpiredToken
	}

	err = s.Creds.ConsumeResetToken(ctx, u.ID, hash, password, now)
	if errors.Is(err, repository.ErrNotFound) {
		return Session{}, ErrInvalidOrExpiredToken
	}
	if err != nil {
		return Session{}, err
	}
	u.ClearResetToken()
	helpers.LogInfo(s.Logger, "password reset completed", logrus.Fields{"user_id": u.ID})
	return s.issue(u)
}

// Logout revokes the session token id until its natural expiry. Without a
// denylist it is a no-op and the token stays valid until it expires.
func (s *AuthService) Logout(ctx context.Context, userID, jti string, expiresAt time.Time) error {
	if s.Denylist == nil || jti == "" {
		return nil
	}
	return s.Denylist.Revoke(ctx, jti, userID, expiresAt)
}

// Me returns the public profile of the session's user.
func (s *AuthService) Me(ctx context.Context, userID string) (entity.PublicUser, error) {
	u, err := s.Creds.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return entity.PublicUser{}, ErrUnauthorized
	}
	if err != nil {
		return entity.PublicUser{}, err
	}
	return u.Public(), nil
}
