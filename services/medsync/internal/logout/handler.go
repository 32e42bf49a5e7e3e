package logout

import (
	"medsync/services/medsync/internal/guard"
	"medsync/services/medsync/internal/session"
	"medsync/services/medsync/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type LogoutHandler struct {
	sessions *session.Manager
}

// Logout ends the session
// @Summary      Sign out
// @Description  Drops the session and redirects to the sign-in page
// @Tags         auth
// @Produce      html
// @Param        csrf_token  formData  string  true  "CSRF token"
// @Success      303
// @Router       /logout [post]
func (h *LogoutHandler) Logout(c *gin.Context) {
	if id, ok := guard.Current(session.FromContext(c)); ok {
		logrus.WithField("user_id", id.UserID).Info("user signed out")
	}
	h.sessions.Destroy(c)
	web.Flash(c, "success", "You have been signed out.")
	web.Redirect(c, "/login")
}
