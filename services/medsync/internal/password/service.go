// Package password resets a forgotten password with a mailed code.
package password

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"medsync/packages/response"
	"medsync/services/medsync/internal/code"
	"medsync/services/medsync/internal/session"
	"medsync/services/medsync/internal/user"

	"github.com/sirupsen/logrus"
)

// Mailer delivers reset codes. *email.Mailer satisfies it.
type Mailer interface {
	SendResetPasswordCode(to, code string, expireMinutes int) error
}

// SessionRevoker ends every session of one account.
type SessionRevoker interface {
	DestroyUser(ctx context.Context, userID string) (int, error)
}

type PasswordService struct {
	repo     *user.UserRepository
	mailer   Mailer
	sessions SessionRevoker
	otpTTL   time.Duration
	now      func() time.Time
}

func NewPasswordService(repo *user.UserRepository, mailer Mailer, sessions SessionRevoker, otpTTL time.Duration) *PasswordService {
	if otpTTL <= 0 {
		otpTTL = code.CodeExpire
	}
	return &PasswordService{
		repo:     repo,
		mailer:   mailer,
		sessions: sessions,
		otpTTL:   otpTTL,
		now:      time.Now,
	}
}

func sessionKey() string {
	return code.CodeTypeResetPassword.SessionKey()
}

// Pending returns the reset waiting in s, if any.
func Pending(s *session.Session) (*PendingReset, bool) {
	var p PendingReset
	ok, err := s.GetObject(sessionKey(), &p)
	if err != nil || !ok {
		return nil, false
	}
	return &p, true
}

// Forgot mails a code when email belongs to an active account. Every
// syntactically valid address gets the same answer and a pending entry,
// so the response does not reveal which addresses are registered.
func (s *PasswordService) Forgot(ctx context.Context, sess *session.Session, form ForgotForm) *response.BusinessError {
	email := strings.ToLower(strings.TrimSpace(form.Email))
	if !user.ValidEmail(email) {
		return response.Invalid("Email address is not valid.")
	}

	pending := PendingReset{Email: email, Issued: code.Issue(s.now())}

	account, err := s.repo.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, user.ErrNotFound):
	case err != nil:
		return response.NewBusinessError(
			response.WithErrorCode(response.Persistence),
			response.WithErrorMessage("Password reset is unavailable right now."),
			response.WithError(err),
		)
	case account.IsActive:
		pending.UserID = account.ID
	}

	if err := sess.SetObject(sessionKey(), pending); err != nil {
		return response.NewBusinessError(
			response.WithErrorCode(response.Fail),
			response.WithErrorMessage("Could not start the password reset."),
			response.WithError(err),
		)
	}

	if pending.UserID == 0 {
		logrus.WithField("email", email).Info("password reset requested for unknown or inactive account")
		return nil
	}

	if err := s.mailer.SendResetPasswordCode(email, pending.Code, code.ExpireMinutes(s.otpTTL)); err != nil {
		logrus.WithError(err).WithField("user_id", pending.UserID).Error("reset code not delivered")
	}
	return nil
}

// Reset sets a new password once the code checks out, then ends every
// session of the account.
func (s *PasswordService) Reset(ctx context.Context, sess *session.Session, form ResetForm) *response.BusinessError {
	pending, ok := Pending(sess)
	if !ok {
		return response.NewBusinessError(
			response.WithErrorCode(response.SessionExpired),
			response.WithErrorMessage("Your reset request has expired. Please start again."),
		)
	}

	err := pending.Check(form.OTP, s.now(), s.otpTTL)
	if errors.Is(err, code.ErrExpired) {
		sess.Delete(sessionKey())
		return response.NewBusinessError(
			response.WithErrorCode(response.OtpExpired),
			response.WithErrorMessage("The reset code has expired. Please request a new one."),
		)
	}
	if err != nil || pending.UserID == 0 {
		return response.Invalid("The reset code is incorrect.")
	}

	if form.Password != form.ConfirmPassword {
		return response.Invalid("Passwords do not match.")
	}
	if bizErr := user.ValidatePassword(form.Password); bizErr != nil {
		return bizErr
	}

	hash, err := user.HashPassword(form.Password)
	if err != nil {
		return response.NewBusinessError(
			response.WithErrorCode(response.Fail),
			response.WithErrorMessage("Could not process the password."),
			response.WithError(err),
		)
	}
	if err := s.repo.UpdatePassword(ctx, pending.UserID, hash); err != nil {
		return response.NewBusinessError(
			response.WithErrorCode(response.Persistence),
			response.WithErrorMessage("Could not update the password. Please try again."),
			response.WithError(err),
		)
	}
	sess.Delete(sessionKey())

	if _, err := s.sessions.DestroyUser(ctx, strconv.Itoa(pending.UserID)); err != nil {
		logrus.WithError(err).WithField("user_id", pending.UserID).Error("end sessions after password reset")
	}
	logrus.WithField("user_id", pending.UserID).Info("password reset")
	return nil
}
