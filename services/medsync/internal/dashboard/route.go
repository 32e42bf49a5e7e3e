package dashboard

import (
	"medsync/services/medsync/internal/guard"
	"medsync/services/medsync/internal/model/user"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, g *guard.Guard) {
	h := &DashboardHandler{}

	r.GET("/", g.Require(), h.home)
	for _, role := range user.Roles {
		r.GET(guard.HomePath(role), g.Require(role), h.show)
	}
}
