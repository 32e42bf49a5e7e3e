// Package dashboard serves the landing page of each role.
package dashboard

import (
	"net/http"

	"medsync/services/medsync/internal/guard"
	"medsync/services/medsync/internal/model/user"
	"medsync/services/medsync/internal/web"

	"github.com/gin-gonic/gin"
)

var headings = map[user.Role]string{
	user.RoleAdmin:  "Administration",
	user.RoleDoctor: "Doctor workspace",
	user.RoleStaff:  "Staff workspace",
	user.RoleUser:   "Patient portal",
}

type DashboardHandler struct{}

func (h *DashboardHandler) show(c *gin.Context) {
	id, _ := guard.IdentityFromContext(c)
	web.Render(c, http.StatusOK, "dashboard.html", gin.H{
		"Title":   headings[id.Role],
		"Heading": headings[id.Role],
	})
}

// home sends the visitor to their own dashboard.
func (h *DashboardHandler) home(c *gin.Context) {
	id, _ := guard.IdentityFromContext(c)
	web.Redirect(c, guard.HomePath(id.Role))
}
