package password

import "medsync/services/medsync/internal/code"

type ForgotForm struct {
	Email string `form:"email" json:"email" example:"alice@example.com"`
}

type ResetForm struct {
	OTP             string `form:"otp" json:"otp" example:"482913"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// PendingReset is kept in the session between the two forms. UserID is
// zero for addresses that do not belong to an active account.
type PendingReset struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
	code.Issued
}
