package admin

import (
	"fmt"
	"net/http"

	"medsync/packages/response"
	"medsync/services/medsync/internal/dto"
	"medsync/services/medsync/internal/guard"
	userModel "medsync/services/medsync/internal/model/user"
	"medsync/services/medsync/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AdminHandler struct {
	service *AdminService
}

func (h *AdminHandler) list(c *gin.Context) {
	var q ListQuery
	_ = c.ShouldBindQuery(&q)

	result, bizErr := h.service.List(c.Request.Context(), q)
	if bizErr != nil {
		logrus.WithError(bizErr.Err).Error("list accounts")
		web.Flash(c, "error", bizErr.Msg)
		result = &ListResult{Page: 1, PageSize: pageSize}
	}

	web.Render(c, http.StatusOK, "admin_users.html", gin.H{
		"Title":   "Accounts",
		"Users":   result.Users,
		"Total":   result.Total,
		"Page":    result.Page,
		"HasNext": int64(result.Page*result.PageSize) < result.Total,
		"Keyword": q.Keyword,
		"Roles":   userModel.Roles,
		"Genders": userModel.Genders,
	})
}

// create godoc
// @Summary      Create an account
// @Description  Creates an account of any role directly, without email verification
// @Tags         admin
// @Accept       x-www-form-urlencoded
// @Produce      html
// @Param        role        formData  string  true  "admin, doctor, staff or user"
// @Param        name        formData  string  true  "Full name"
// @Param        username    formData  string  true  "Username"
// @Param        email       formData  string  true  "Email"
// @Param        csrf_token  formData  string  true  "CSRF token"
// @Success      303
// @Router       /admin/users [post]
func (h *AdminHandler) create(c *gin.Context) {
	var form CreateForm
	if err := c.ShouldBind(&form); err != nil {
		web.Fail(c, "/admin/users", response.NewBusinessError(
			response.WithErrorCode(response.ParseError),
			response.WithErrorMessage("Please check the form and try again."),
			response.WithError(err),
		))
		return
	}

	account, bizErr := h.service.Create(c.Request.Context(), form)
	if bizErr != nil {
		web.Fail(c, "/admin/users", bizErr)
		return
	}

	web.Flash(c, "success", fmt.Sprintf("Created %s with ID %s.", account.Username, account.DisplayUserID))
	web.Redirect(c, "/admin/users")
}

// action godoc
// @Summary      Apply an account action
// @Description  Runs a registered action (activate, deactivate) against one account
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        X-CSRF-Token  header  string         true  "CSRF token"
// @Param        request       body    ActionRequest  true  "Action"
// @Success      200  {object}  dto.Response
// @Failure      400  {object}  dto.Response
// @Failure      403  {object}  dto.Response
// @Failure      404  {object}  dto.Response
// @Router       /admin/users/action [post]
func (h *AdminHandler) action(c *gin.Context) {
	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ErrorResponse(c, response.NewBusinessError(
			response.WithErrorCode(response.ParseError),
			response.WithErrorMessage("Invalid request."),
		))
		return
	}

	actor, _ := guard.IdentityFromContext(c)
	msg, bizErr := h.service.Do(c.Request.Context(), actor, req)
	if bizErr != nil {
		if bizErr.Err != nil {
			logrus.WithError(bizErr.Err).WithField("action", req.Action).Error("admin action failed")
		}
		dto.ErrorResponse(c, bizErr)
		return
	}

	dto.SuccessResponse(c, msg, nil)
}
