package admin

import (
	"context"
	"strconv"

	"medsync/packages/response"
	userModel "medsync/services/medsync/internal/model/user"

	"github.com/sirupsen/logrus"
)

type ActionName string

const (
	ActionActivate   ActionName = "activate"
	ActionDeactivate ActionName = "deactivate"
)

// Action changes one account and reports what it did.
type Action interface {
	Apply(ctx context.Context, target *userModel.User) (string, *response.BusinessError)
}

// actions is filled once by NewAdminService and read-only afterwards.
type actions map[ActionName]Action

func (a actions) register(name ActionName, action Action) {
	a[name] = action
}

type activateAction struct {
	svc *AdminService
}

func (a activateAction) Apply(ctx context.Context, target *userModel.User) (string, *response.BusinessError) {
	if target.IsActive {
		return target.Username + " is already active.", nil
	}
	if err := a.svc.repo.SetActive(ctx, target.ID, true); err != nil {
		return "", persistenceError(err)
	}
	return target.Username + " has been activated.", nil
}

type deactivateAction struct {
	svc *AdminService
}

// Apply also ends every session the account holds.
func (a deactivateAction) Apply(ctx context.Context, target *userModel.User) (string, *response.BusinessError) {
	if !target.IsActive {
		return target.Username + " is already inactive.", nil
	}
	if err := a.svc.repo.SetActive(ctx, target.ID, false); err != nil {
		return "", persistenceError(err)
	}

	n, err := a.svc.sessions.DestroyUser(ctx, strconv.Itoa(target.ID))
	if err != nil {
		logrus.WithError(err).WithField("user_id", target.ID).Error("end sessions of deactivated account")
	} else if n > 0 {
		logrus.WithFields(logrus.Fields{"user_id": target.ID, "sessions": n}).Info("ended sessions of deactivated account")
	}
	return target.Username + " has been deactivated.", nil
}
