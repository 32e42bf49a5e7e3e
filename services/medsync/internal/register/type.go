package register

import (
	"medsync/services/medsync/internal/code"
	"medsync/services/medsync/internal/user"
)

// StartForm is the multipart registration form; the optional
// profile_picture file is read separately.
type StartForm struct {
	user.ProfileForm
}

// VerifyForm carries the mailed code.
type VerifyForm struct {
	OTP string `form:"otp" json:"otp" example:"482913"`
}

// PendingRegistration is the validated form waiting for its code. It lives
// in the session only.
type PendingRegistration struct {
	Name           string `json:"name"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	PasswordHash   string `json:"password_hash"`
	DateOfBirth    string `json:"date_of_birth"`
	Gender         string `json:"gender"`
	Role           string `json:"role"`
	ProfilePicture string `json:"profile_picture,omitempty"`
	code.Issued
}

// Result is what a completed registration reports back.
type Result struct {
	UserID    int    `json:"user_id"`
	Username  string `json:"username"`
	DisplayID string `json:"display_user_id" example:"U0001"`
}
