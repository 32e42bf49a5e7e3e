package user

import (
	"context"
	"errors"
	"fmt"

	"medsync/packages/response"
	userModel "medsync/services/medsync/internal/model/user"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Allocator hands out display IDs.
type Allocator interface {
	Allocate(ctx context.Context, role string) (string, error)
}

// Provisioner turns an account candidate into a row with a display ID.
type Provisioner struct {
	repo  *UserRepository
	alloc Allocator
}

func NewProvisioner(repo *UserRepository, alloc Allocator) *Provisioner {
	return &Provisioner{repo: repo, alloc: alloc}
}

// PlaceholderDisplayID is unique until the allocator output replaces it.
func PlaceholderDisplayID() string {
	return "TMP-" + uuid.NewString()
}

// Provision inserts u under a placeholder display ID, allocates the real
// one and writes it back. If allocation or the write fails, the row is
// deleted again; the counter keeps its gap.
func (p *Provisioner) Provision(ctx context.Context, u *userModel.User) *response.BusinessError {
	if !u.Role.Valid() {
		return response.NewBusinessError(
			response.WithErrorCode(response.InvalidRole),
			response.WithErrorMessage("Unknown role."),
		)
	}

	u.DisplayUserID = PlaceholderDisplayID()
	if err := p.repo.Create(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return response.NewBusinessError(
				response.WithErrorCode(response.Conflict),
				response.WithErrorMessage("Username or email is already registered."),
				response.WithError(err),
			)
		}
		return persistenceError(err)
	}

	displayID, err := p.alloc.Allocate(ctx, string(u.Role))
	if err == nil {
		err = p.repo.SetDisplayID(ctx, u.ID, displayID)
	}
	if err != nil {
		entry := logrus.WithError(err).WithFields(logrus.Fields{
			"user_id":  u.ID,
			"username": u.Username,
			"role":     u.Role,
		})
		if delErr := p.repo.Delete(ctx, u.ID); delErr != nil {
			entry.WithField("delete_error", delErr).Error("display id assignment failed, orphaned row left behind")
		} else {
			entry.Error("display id assignment failed, account rolled back")
		}
		return persistenceError(err)
	}

	u.DisplayUserID = displayID
	return nil
}

// HashPassword bcrypts password at the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NewFromProfile builds an active account from a validated profile.
func NewFromProfile(p Profile, passwordHash string, role userModel.Role) *userModel.User {
	return &userModel.User{
		Name:         p.Name,
		Username:     p.Username,
		Email:        p.Email,
		Phone:        p.Phone,
		PasswordHash: passwordHash,
		Role:         role,
		DateOfBirth:  p.DateOfBirth,
		Gender:       p.Gender,
		IsActive:     true,
	}
}

func persistenceError(err error) *response.BusinessError {
	return response.NewBusinessError(
		response.WithErrorCode(response.Persistence),
		response.WithErrorMessage("We could not save your account. Please try again."),
		response.WithError(err),
	)
}
