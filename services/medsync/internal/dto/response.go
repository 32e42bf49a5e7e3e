package dto

import (
	"net/http"

	res "medsync/packages/response"

	"github.com/gin-gonic/gin"
)

// Response is the JSON envelope of every AJAX endpoint.
type Response struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"User activated."`
	Code    int    `json:"code,omitempty" example:"0"`
	Data    any    `json:"data,omitempty"`
}

func SuccessResponse(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, res.SuccessResponse(message, data))
}

func ErrorResponse(c *gin.Context, err *res.BusinessError) {
	c.JSON(StatusFor(err.Code), res.ErrorResponse(err.Code, err.Msg))
}

// StatusFor maps a business code onto an HTTP status.
func StatusFor(code res.ResponseCode) int {
	switch code {
	case res.ParseError, res.InvalidParameter, res.InvalidRole:
		return http.StatusBadRequest
	case res.Conflict:
		return http.StatusConflict
	case res.Unauthorized, res.SessionExpired:
		return http.StatusUnauthorized
	case res.Forbidden:
		return http.StatusForbidden
	case res.NotFound:
		return http.StatusNotFound
	case res.OtpExpired:
		return http.StatusGone
	case res.MailDelivery:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
