package login

import (
	"context"
	"errors"
	"strings"

	"medsync/packages/response"
	userModel "medsync/services/medsync/internal/model/user"
	"medsync/services/medsync/internal/user"

	"github.com/sirupsen/logrus"
)

// dummyHash keeps unknown-account logins as slow as wrong passwords.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z7Pb1bU2Fyw6oE8yYqR6Zu0m"

type LoginService struct {
	repo *user.UserRepository
}

func NewLoginService(repo *user.UserRepository) *LoginService {
	return &LoginService{repo: repo}
}

// Login checks the credentials of an active account, matching form.Login
// against username and email.
func (s *LoginService) Login(ctx context.Context, form LoginForm) (*userModel.User, *response.BusinessError) {
	login := strings.TrimSpace(form.Login)
	if login == "" || form.Password == "" {
		return nil, response.Invalid("Enter your username or email and your password.")
	}

	account, err := s.repo.GetByLogin(ctx, login)
	if errors.Is(err, user.ErrNotFound) {
		user.CheckPassword(dummyHash, form.Password)
		return nil, badCredentials()
	}
	if err != nil {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.Persistence),
			response.WithErrorMessage("Sign-in is unavailable right now."),
			response.WithError(err),
		)
	}

	if !user.CheckPassword(account.PasswordHash, form.Password) {
		logrus.WithField("user_id", account.ID).Info("login rejected: wrong password")
		return nil, badCredentials()
	}
	if !account.IsActive {
		logrus.WithField("user_id", account.ID).Info("login rejected: account inactive")
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.Forbidden),
			response.WithErrorMessage("This account has been deactivated. Contact an administrator."),
		)
	}

	return account, nil
}

func badCredentials() *response.BusinessError {
	return response.NewBusinessError(
		response.WithErrorCode(response.Unauthorized),
		response.WithErrorMessage("Invalid username/email or password."),
	)
}
