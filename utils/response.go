package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StandardResponse is the apply API's success envelope.
type StandardResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the apply API's error envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
	Code    int    `json:"code"`
}

// SuccessResponse sends a successful response
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, StandardResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func respondError(c *gin.Context, statusCode int, message string, err error) {
	errorMsg := ""
	if err != nil {
		errorMsg = err.Error()
	}

	c.JSON(statusCode, ErrorResponse{
		Success: false,
		Message: message,
		Error:   errorMsg,
		Code:    statusCode,
	})
}

// BadRequestError sends a 400 error response
func BadRequestError(c *gin.Context, message string, err error) {
	respondError(c, http.StatusBadRequest, message, err)
}

// UnauthorizedError sends a 401 error response
func UnauthorizedError(c *gin.Context, message string) {
	respondError(c, http.StatusUnauthorized, message, nil)
}

// NotFoundError sends a 404 error response
func NotFoundError(c *gin.Context, message string) {
	respondError(c, http.StatusNotFound, message, nil)
}

// ValidationError sends a 400 for a request that parsed but failed the
// apply-request checks.
func ValidationError(c *gin.Context, err error) {
	BadRequestError(c, "Validation failed", err)
}
