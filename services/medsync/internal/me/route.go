package me

import (
	"medsync/services/medsync/internal/guard"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, g *guard.Guard) {
	handler := &MeHandler{}

	r.GET("/me", g.Require(), handler.GetCurrentUser)
}
