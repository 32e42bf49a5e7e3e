package register

import (
	"context"
	"errors"
	"mime/multipart"
	"time"

	"medsync/packages/response"
	"medsync/services/medsync/internal/code"
	userModel "medsync/services/medsync/internal/model/user"
	"medsync/services/medsync/internal/session"
	"medsync/services/medsync/internal/storage"
	"medsync/services/medsync/internal/user"

	"github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

// Mailer delivers the registration mails. *email.Mailer satisfies it.
type Mailer interface {
	SendVerificationCode(to, name, code string, expireMinutes int) error
	SendWelcome(to, name, username, displayID, loginURL string) error
}

type RegisterService struct {
	repo        *user.UserRepository
	provisioner *user.Provisioner
	mailer      Mailer
	pictures    storage.Store
	otpTTL      time.Duration
	loginURL    string
	now         func() time.Time
}

type Option func(*RegisterService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *RegisterService) {
		s.now = now
	}
}

// WithPictureStore enables profile picture uploads.
func WithPictureStore(store storage.Store) Option {
	return func(s *RegisterService) {
		s.pictures = store
	}
}

// WithOTPExpire overrides code.CodeExpire.
func WithOTPExpire(ttl time.Duration) Option {
	return func(s *RegisterService) {
		s.otpTTL = ttl
	}
}

// WithLoginURL sets the link placed in the welcome mail.
func WithLoginURL(url string) Option {
	return func(s *RegisterService) {
		s.loginURL = url
	}
}

func NewRegisterService(repo *user.UserRepository, provisioner *user.Provisioner, mailer Mailer, opts ...Option) *RegisterService {
	s := &RegisterService{
		repo:        repo,
		provisioner: provisioner,
		mailer:      mailer,
		otpTTL:      code.CodeExpire,
		loginURL:    "/login",
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Pending returns the registration waiting in s, if any.
func Pending(s *session.Session) (*PendingRegistration, bool) {
	var p PendingRegistration
	ok, err := s.GetObject(code.CodeTypeRegister.SessionKey(), &p)
	if err != nil {
		logrus.WithError(err).Warn("discarding unreadable pending registration")
		clearPending(s)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return &p, true
}

func clearPending(s *session.Session) {
	s.Delete(code.CodeTypeRegister.SessionKey())
}

func storePending(s *session.Session, p *PendingRegistration) *response.BusinessError {
	if err := s.SetObject(code.CodeTypeRegister.SessionKey(), p); err != nil {
		return response.NewBusinessError(
			response.WithErrorCode(response.Fail),
			response.WithErrorMessage("Could not start the registration. Please try again."),
			response.WithError(err),
		)
	}
	return nil
}

// Start validates the form, rejects taken usernames and emails, and mails
// a code. The validated data is parked in the session until Verify.
func (s *RegisterService) Start(ctx context.Context, sess *session.Session, form StartForm, picture *multipart.FileHeader) *response.BusinessError {
	now := s.now()

	profile, bizErr := user.ValidateProfile(form.ProfileForm, now)
	if bizErr != nil {
		return bizErr
	}

	if bizErr := s.checkAvailable(ctx, profile); bizErr != nil {
		return bizErr
	}

	hash, err := user.HashPassword(profile.Password)
	if err != nil {
		return response.NewBusinessError(
			response.WithErrorCode(response.Fail),
			response.WithErrorMessage("Could not process the password."),
			response.WithError(err),
		)
	}

	pending := &PendingRegistration{
		Name:         profile.Name,
		Username:     profile.Username,
		Email:        profile.Email,
		Phone:        profile.Phone,
		PasswordHash: hash,
		DateOfBirth:  profile.DateOfBirth.Format(dateLayout),
		Gender:       string(profile.Gender),
		Role:         string(userModel.RoleUser),
		Issued:       code.Issue(now),
	}

	if picture != nil && s.pictures != nil {
		key, bizErr := s.savePicture(ctx, picture, now)
		if bizErr != nil {
			return bizErr
		}
		pending.ProfilePicture = key
	}

	if bizErr := storePending(sess, pending); bizErr != nil {
		return bizErr
	}

	if err := s.sendCode(pending); err != nil {
		clearPending(sess)
		s.dropPicture(ctx, pending.ProfilePicture)
		return err
	}

	logrus.WithFields(logrus.Fields{
		"username": pending.Username,
		"email":    pending.Email,
	}).Info("registration pending verification")
	return nil
}

func (s *RegisterService) checkAvailable(ctx context.Context, p user.Profile) *response.BusinessError {
	taken, err := s.repo.UsernameExists(ctx, p.Username)
	if err != nil {
		return lookupError(err)
	}
	if taken {
		return response.NewBusinessError(
			response.WithErrorCode(response.Conflict),
			response.WithErrorMessage("Username is already taken."),
		)
	}

	taken, err = s.repo.EmailExists(ctx, p.Email)
	if err != nil {
		return lookupError(err)
	}
	if taken {
		return response.NewBusinessError(
			response.WithErrorCode(response.Conflict),
			response.WithErrorMessage("Email is already registered."),
		)
	}
	return nil
}

func (s *RegisterService) savePicture(ctx context.Context, fh *multipart.FileHeader, now time.Time) (string, *response.BusinessError) {
	key, err := storage.SaveProfilePicture(ctx, s.pictures, fh, now)
	switch {
	case err == nil:
		return key, nil
	case errors.Is(err, storage.ErrTooLarge):
		return "", response.Invalid("Profile picture must be at most 2 MB.")
	case errors.Is(err, storage.ErrUnsupportedType):
		return "", response.Invalid("Profile picture must be a JPEG, PNG, GIF or WebP image.")
	default:
		return "", response.NewBusinessError(
			response.WithErrorCode(response.Persistence),
			response.WithErrorMessage("Could not store the profile picture."),
			response.WithError(err),
		)
	}
}

func (s *RegisterService) dropPicture(ctx context.Context, key string) {
	if key == "" || s.pictures == nil {
		return
	}
	if err := s.pictures.Delete(ctx, key); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("remove orphaned profile picture")
	}
}

func (s *RegisterService) sendCode(p *PendingRegistration) *response.BusinessError {
	err := s.mailer.SendVerificationCode(p.Email, p.Name, p.Code, code.ExpireMinutes(s.otpTTL))
	if err != nil {
		return response.NewBusinessError(
			response.WithErrorCode(response.MailDelivery),
			response.WithErrorMessage("We could not send the verification email. Please try again."),
			response.WithError(err),
		)
	}
	return nil
}

// Resend replaces the pending code with a fresh one and mails it. The
// previous code stops working immediately.
func (s *RegisterService) Resend(ctx context.Context, sess *session.Session) *response.BusinessError {
	pending, ok := Pending(sess)
	if !ok {
		return sessionExpired()
	}

	pending.Issued = code.Issue(s.now())
	if bizErr := storePending(sess, pending); bizErr != nil {
		return bizErr
	}
	return s.sendCode(pending)
}

// Verify checks otp against the pending registration and, on a match
// within the validity window, creates the account.
func (s *RegisterService) Verify(ctx context.Context, sess *session.Session, otp string) (*Result, *response.BusinessError) {
	pending, ok := Pending(sess)
	if !ok {
		return nil, sessionExpired()
	}

	switch err := pending.Check(otp, s.now(), s.otpTTL); {
	case errors.Is(err, code.ErrMismatch):
		return nil, response.Invalid("The verification code is incorrect.")
	case errors.Is(err, code.ErrExpired):
		clearPending(sess)
		s.dropPicture(ctx, pending.ProfilePicture)
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.OtpExpired),
			response.WithErrorMessage("The verification code has expired. Please register again."),
		)
	}

	account, err := pending.toUser()
	if err != nil {
		clearPending(sess)
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.Fail),
			response.WithErrorMessage("Registration data is damaged. Please register again."),
			response.WithError(err),
		)
	}

	if bizErr := s.provisioner.Provision(ctx, account); bizErr != nil {
		if bizErr.Code == response.Conflict {
			clearPending(sess)
			s.dropPicture(ctx, pending.ProfilePicture)
		}
		return nil, bizErr
	}
	clearPending(sess)

	logrus.WithFields(logrus.Fields{
		"user_id":         account.ID,
		"username":        account.Username,
		"display_user_id": account.DisplayUserID,
	}).Info("registration completed")

	if err := s.mailer.SendWelcome(account.Email, account.Name, account.Username, account.DisplayUserID, s.loginURL); err != nil {
		logrus.WithError(err).WithField("user_id", account.ID).Warn("welcome mail not delivered")
	}

	return &Result{
		UserID:    account.ID,
		Username:  account.Username,
		DisplayID: account.DisplayUserID,
	}, nil
}

func (p *PendingRegistration) toUser() (*userModel.User, error) {
	dob, err := time.Parse(dateLayout, p.DateOfBirth)
	if err != nil {
		return nil, err
	}
	u := &userModel.User{
		Name:         p.Name,
		Username:     p.Username,
		Email:        p.Email,
		Phone:        p.Phone,
		PasswordHash: p.PasswordHash,
		Role:         userModel.Role(p.Role),
		DateOfBirth:  dob,
		Gender:       userModel.Gender(p.Gender),
		IsActive:     true,
	}
	if p.ProfilePicture != "" {
		pic := p.ProfilePicture
		u.ProfilePicture = &pic
	}
	return u, nil
}

func sessionExpired() *response.BusinessError {
	return response.NewBusinessError(
		response.WithErrorCode(response.SessionExpired),
		response.WithErrorMessage("Your registration session has expired. Please start again."),
	)
}

func lookupError(err error) *response.BusinessError {
	return response.NewBusinessError(
		response.WithErrorCode(response.Persistence),
		response.WithErrorMessage("Registration is unavailable right now."),
		response.WithError(err),
	)
}
