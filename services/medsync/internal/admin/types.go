package admin

import (
	userModel "medsync/services/medsync/internal/model/user"
	"medsync/services/medsync/internal/user"
)

// CreateForm is the admin account form: a profile plus the role.
type CreateForm struct {
	user.ProfileForm
	Role string `form:"role"`
}

// ActionRequest is posted by the account table buttons.
type ActionRequest struct {
	Action ActionName `json:"action" binding:"required" example:"deactivate" enums:"activate,deactivate"`
	UserID int        `json:"user_id" binding:"required" example:"7"`
}

// ListQuery filters the account table.
type ListQuery struct {
	Keyword string `form:"q"`
	Page    int    `form:"page"`
}

type ListResult struct {
	Users    []userModel.User
	Total    int64
	Page     int
	PageSize int
}
