package testutils

import (
	"fmt"
	"time"

	"medsync/services/medsync/internal/model/user"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the plaintext behind fixture password hashes.
const DefaultPassword = "Passw0rd"

// CreateTestUser inserts a user with a unique username, email and display ID.
func CreateTestUser(db *gorm.DB, opts ...UserOption) *user.User {
	uniqueID := uuid.New().String()[:8]

	passwordHash, _ := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)

	testUser := &user.User{
		DisplayUserID: "TMP-" + uniqueID,
		Name:          "Test User",
		Username:      "user_" + uniqueID,
		Email:         fmt.Sprintf("test_%s@example.com", uniqueID),
		PasswordHash:  string(passwordHash),
		Role:          user.RoleUser,
		DateOfBirth:   time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Gender:        user.GenderOther,
		IsActive:      true,
	}

	for _, opt := range opts {
		opt(testUser)
	}

	active := testUser.IsActive
	if err := db.Create(testUser).Error; err != nil {
		panic(fmt.Sprintf("create test user: %v", err))
	}
	// is_active has a column default, so false has to be written explicitly.
	if !active {
		db.Model(testUser).Update("is_active", false)
		testUser.IsActive = false
	}

	return testUser
}

type UserOption func(*user.User)

func WithUsername(username string) UserOption {
	return func(u *user.User) {
		u.Username = username
	}
}

func WithEmail(email string) UserOption {
	return func(u *user.User) {
		u.Email = email
	}
}

func WithName(name string) UserOption {
	return func(u *user.User) {
		u.Name = name
	}
}

func WithRole(role user.Role) UserOption {
	return func(u *user.User) {
		u.Role = role
	}
}

func WithDisplayID(id string) UserOption {
	return func(u *user.User) {
		u.DisplayUserID = id
	}
}

// WithPassword hashes password at bcrypt.MinCost.
func WithPassword(password string) UserOption {
	return func(u *user.User) {
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		u.PasswordHash = string(hash)
	}
}

func WithInactive() UserOption {
	return func(u *user.User) {
		u.IsActive = false
	}
}
