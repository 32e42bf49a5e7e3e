package me

import (
	"medsync/packages/response"
	"medsync/services/medsync/internal/dto"
	"medsync/services/medsync/internal/guard"

	"github.com/gin-gonic/gin"
)

type MeHandler struct{}

// GetCurrentUser returns the signed-in account
// @Summary      Current user
// @Description  Identity stored in the session by sign-in
// @Tags         auth
// @Produce      json
// @Success      200  {object}  dto.Response{data=UserInfoResponse}
// @Failure      401  {object}  dto.Response
// @Router       /api/me [get]
func (h *MeHandler) GetCurrentUser(c *gin.Context) {
	id, ok := guard.IdentityFromContext(c)
	if !ok {
		dto.ErrorResponse(c, response.NewBusinessError(
			response.WithErrorCode(response.Unauthorized),
			response.WithErrorMessage("Not signed in."),
		))
		return
	}

	dto.SuccessResponse(c, "", UserInfoResponse{
		UserID:    id.UserID,
		DisplayID: id.DisplayID,
		Username:  id.Username,
		Name:      id.Name,
		Role:      string(id.Role),
	})
}
