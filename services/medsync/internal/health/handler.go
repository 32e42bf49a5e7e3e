package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	checker *Checker
}

// Healthz reports dependency status
// @Summary      Health check
// @Description  Pings the database and Redis
// @Tags         health
// @Produce      json
// @Success      200  {object}  Report
// @Failure      503  {object}  Report
// @Router       /healthz [get]
func (h *HealthHandler) Healthz(c *gin.Context) {
	report := h.checker.Run(c.Request.Context())
	status := http.StatusOK
	if !report.Healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}

func RegisterRoutes(r *gin.RouterGroup, checker *Checker) {
	h := &HealthHandler{checker: checker}
	r.GET("/healthz", h.Healthz)
}
