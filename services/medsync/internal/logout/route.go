package logout

import (
	"medsync/services/medsync/internal/session"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, sessions *session.Manager) {
	handler := &LogoutHandler{sessions: sessions}

	r.POST("/logout", handler.Logout)
}
