package login

import (
	"time"

	"medsync/services/medsync/internal/session"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, service *LoginService, sessions *session.Manager, now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	h := &LoginHandler{
		service:  service,
		sessions: sessions,
		now:      now,
	}
	r.GET("/login", h.form)
	r.POST("/login", h.handle)
}
