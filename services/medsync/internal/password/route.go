package password

import (
	"medsync/services/medsync/internal/session"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, service *PasswordService, sessions *session.Manager) {
	h := &PasswordHandler{service: service, sessions: sessions}

	r.GET("/password/forgot", h.forgotForm)
	r.POST("/password/forgot", h.forgot)
	r.GET("/password/reset", h.resetForm)
	r.POST("/password/reset", h.reset)
}
