package admin

import (
	"medsync/services/medsync/internal/guard"
	"medsync/services/medsync/internal/model/user"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, service *AdminService, g *guard.Guard) {
	h := &AdminHandler{service: service}

	users := r.Group("/admin/users", g.Require(user.RoleAdmin))
	users.GET("", h.list)
	users.POST("", h.create)
	users.POST("/action", h.action)
}
