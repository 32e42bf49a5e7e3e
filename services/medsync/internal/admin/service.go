package admin

import (
	"context"
	"errors"
	"strings"
	"time"

	"medsync/packages/response"
	"medsync/services/medsync/internal/guard"
	userModel "medsync/services/medsync/internal/model/user"
	"medsync/services/medsync/internal/user"

	"github.com/sirupsen/logrus"
)

const pageSize = 20

// SessionRevoker ends every session of one account. *session.Manager
// satisfies it.
type SessionRevoker interface {
	DestroyUser(ctx context.Context, userID string) (int, error)
}

type AdminService struct {
	repo        *user.UserRepository
	provisioner *user.Provisioner
	sessions    SessionRevoker
	actions     actions
	now         func() time.Time
}

func NewAdminService(repo *user.UserRepository, provisioner *user.Provisioner, sessions SessionRevoker) *AdminService {
	s := &AdminService{
		repo:        repo,
		provisioner: provisioner,
		sessions:    sessions,
		actions:     actions{},
		now:         time.Now,
	}
	s.actions.register(ActionActivate, activateAction{svc: s})
	s.actions.register(ActionDeactivate, deactivateAction{svc: s})
	return s
}

func (s *AdminService) List(ctx context.Context, q ListQuery) (*ListResult, *response.BusinessError) {
	if q.Page < 1 {
		q.Page = 1
	}
	users, total, err := s.repo.List(ctx, strings.TrimSpace(q.Keyword), q.Page, pageSize)
	if err != nil {
		return nil, persistenceError(err)
	}
	return &ListResult{Users: users, Total: total, Page: q.Page, PageSize: pageSize}, nil
}

// Create adds an account of any role without email verification.
func (s *AdminService) Create(ctx context.Context, form CreateForm) (*userModel.User, *response.BusinessError) {
	role := userModel.Role(strings.ToLower(strings.TrimSpace(form.Role)))
	if !role.Valid() {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.InvalidRole),
			response.WithErrorMessage("Role must be admin, doctor, staff or user."),
		)
	}

	profile, bizErr := user.ValidateProfile(form.ProfileForm, s.now())
	if bizErr != nil {
		return nil, bizErr
	}

	hash, err := user.HashPassword(profile.Password)
	if err != nil {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.Fail),
			response.WithErrorMessage("Could not process the password."),
			response.WithError(err),
		)
	}

	account := user.NewFromProfile(profile, hash, role)
	if bizErr := s.provisioner.Provision(ctx, account); bizErr != nil {
		return nil, bizErr
	}

	logrus.WithFields(logrus.Fields{
		"user_id":         account.ID,
		"role":            account.Role,
		"display_user_id": account.DisplayUserID,
	}).Info("account created by admin")
	return account, nil
}

// Do runs a registered action against req.UserID on behalf of actor.
func (s *AdminService) Do(ctx context.Context, actor guard.Identity, req ActionRequest) (string, *response.BusinessError) {
	action, ok := s.actions[req.Action]
	if !ok {
		return "", response.Invalid("Unknown action.")
	}
	if req.UserID == actor.UserID {
		return "", response.NewBusinessError(
			response.WithErrorCode(response.Forbidden),
			response.WithErrorMessage("You cannot change your own account."),
		)
	}

	target, err := s.repo.GetByID(ctx, req.UserID)
	if errors.Is(err, user.ErrNotFound) {
		return "", response.NewBusinessError(
			response.WithErrorCode(response.NotFound),
			response.WithErrorMessage("Account not found."),
		)
	}
	if err != nil {
		return "", persistenceError(err)
	}

	msg, bizErr := action.Apply(ctx, target)
	if bizErr != nil {
		return "", bizErr
	}
	logrus.WithFields(logrus.Fields{
		"actor":  actor.UserID,
		"target": target.ID,
		"action": req.Action,
	}).Info("admin action applied")
	return msg, nil
}

func persistenceError(err error) *response.BusinessError {
	return response.NewBusinessError(
		response.WithErrorCode(response.Persistence),
		response.WithErrorMessage("The account store is unavailable right now."),
		response.WithError(err),
	)
}
