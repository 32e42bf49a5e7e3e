package register

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, service *RegisterService) {
	h := &RegisterHandler{
		service: service,
	}
	r.GET("/register", h.form)
	r.POST("/register", h.start)
	r.GET("/register/verify", h.verifyForm)
	r.POST("/register/verify", h.verify)
	r.POST("/register/resend", h.resend)
}
