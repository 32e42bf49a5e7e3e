package me

// UserInfoResponse is the signed-in account.
type UserInfoResponse struct {
	UserID    int    `json:"user_id" example:"1"`
	DisplayID string `json:"display_user_id" example:"U0001"`
	Username  string `json:"username" example:"alice"`
	Name      string `json:"name" example:"Alice Liddell"`
	Role      string `json:"role" example:"user"`
}
