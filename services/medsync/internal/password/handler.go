package password

import (
	"net/http"

	"medsync/packages/response"
	"medsync/services/medsync/internal/session"
	"medsync/services/medsync/internal/web"

	"github.com/gin-gonic/gin"
)

type PasswordHandler struct {
	service  *PasswordService
	sessions *session.Manager
}

func (h *PasswordHandler) forgotForm(c *gin.Context) {
	web.Render(c, http.StatusOK, "forgot.html", gin.H{"Title": "Forgot password"})
}

// forgot godoc
// @Summary      Request a reset code
// @Description  Answers the same for every address; only active accounts get a code
// @Tags         password
// @Accept       x-www-form-urlencoded
// @Produce      html
// @Param        email       formData  string  true  "Account email"
// @Param        csrf_token  formData  string  true  "CSRF token"
// @Success      303
// @Router       /password/forgot [post]
func (h *PasswordHandler) forgot(c *gin.Context) {
	var form ForgotForm
	_ = c.ShouldBind(&form)

	if bizErr := h.service.Forgot(c.Request.Context(), session.FromContext(c), form); bizErr != nil {
		web.Fail(c, "/password/forgot", bizErr)
		return
	}
	web.Flash(c, "info", "If that address belongs to an active account, a reset code is on its way.")
	web.Redirect(c, "/password/reset")
}

func (h *PasswordHandler) resetForm(c *gin.Context) {
	if _, ok := Pending(session.FromContext(c)); !ok {
		web.Flash(c, "error", "Request a reset code first.")
		web.Redirect(c, "/password/forgot")
		return
	}
	web.Render(c, http.StatusOK, "reset.html", gin.H{"Title": "Reset password"})
}

// reset godoc
// @Summary      Set a new password
// @Tags         password
// @Accept       x-www-form-urlencoded
// @Produce      html
// @Param        otp               formData  string  true  "6-digit code"
// @Param        password          formData  string  true  "New password"
// @Param        confirm_password  formData  string  true  "New password again"
// @Param        csrf_token        formData  string  true  "CSRF token"
// @Success      303
// @Router       /password/reset [post]
func (h *PasswordHandler) reset(c *gin.Context) {
	var form ResetForm
	_ = c.ShouldBind(&form)

	bizErr := h.service.Reset(c.Request.Context(), session.FromContext(c), form)
	switch {
	case bizErr == nil:
		h.sessions.Destroy(c)
		web.Flash(c, "success", "Your password has been updated. Please sign in.")
		web.Redirect(c, "/login")
	case bizErr.Code == response.SessionExpired || bizErr.Code == response.OtpExpired:
		web.Fail(c, "/password/forgot", bizErr)
	default:
		web.Fail(c, "/password/reset", bizErr)
	}
}
