package login

import (
	"net/http"
	"time"

	"medsync/services/medsync/internal/dto"
	"medsync/services/medsync/internal/guard"
	"medsync/services/medsync/internal/session"
	"medsync/services/medsync/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type LoginHandler struct {
	service  *LoginService
	sessions *session.Manager
	now      func() time.Time
}

func (h *LoginHandler) form(c *gin.Context) {
	if id, ok := guard.Current(session.FromContext(c)); ok {
		web.Redirect(c, guard.HomePath(id.Role))
		return
	}

	data := gin.H{"Title": "Sign in", "Login": ""}
	if reason := guard.Reason(c.Query("reason")); reason != guard.ReasonNone {
		data["Notice"] = guard.Message(reason)
	}
	web.Render(c, http.StatusOK, "login.html", data)
}

// handle godoc
// @Summary      Sign in
// @Description  Checks the credentials, starts a fresh session and redirects to the role dashboard
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      html
// @Param        login       formData  string  true  "Username or email"
// @Param        password    formData  string  true  "Password"
// @Param        csrf_token  formData  string  true  "CSRF token"
// @Success      303
// @Router       /login [post]
func (h *LoginHandler) handle(c *gin.Context) {
	var form LoginForm
	_ = c.ShouldBind(&form)

	account, bizErr := h.service.Login(c.Request.Context(), form)
	if bizErr != nil {
		if bizErr.Err != nil {
			logrus.WithError(bizErr.Err).Error("login lookup failed")
		}
		web.Flash(c, "error", bizErr.Msg)
		web.Render(c, dto.StatusFor(bizErr.Code), "login.html", gin.H{
			"Title": "Sign in",
			"Login": form.Login,
		})
		return
	}

	h.sessions.Destroy(c)
	guard.SignIn(session.FromContext(c), guard.Identity{
		UserID:    account.ID,
		DisplayID: account.DisplayUserID,
		Username:  account.Username,
		Name:      account.Name,
		Role:      account.Role,
	}, c.Request.UserAgent(), h.now())

	logrus.WithFields(logrus.Fields{
		"user_id": account.ID,
		"role":    account.Role,
		"ip":      c.ClientIP(),
	}).Info("user signed in")

	web.Redirect(c, guard.HomePath(account.Role))
}
