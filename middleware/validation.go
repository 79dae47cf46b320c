package middleware

import (
	"net/http"
	"strings"

	"autoapply/utils"

	"github.com/gin-gonic/gin"
)

// MaxRequestSize caps the request body. Batch apply payloads carry full
// applicant profiles, so the cap is generous but bounded.
func MaxRequestSize(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// ValidateJSON rejects mutating requests whose body is not declared JSON.
// The apply endpoints only speak JSON; catching the mismatch here keeps the
// controllers' bind errors meaningful.
func ValidateJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodDelete, http.MethodOptions:
			c.Next()
			return
		}

		contentType := c.GetHeader("Content-Type")
		if !strings.Contains(contentType, "application/json") {
			utils.BadRequestError(c, "Content-Type must be application/json", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

// SanitizeInput normalizes query parameters before they reach handlers.
// Attempt lookups take IDs from the query string; null bytes in those would
// otherwise reach the Postgres driver.
func SanitizeInput() gin.HandlerFunc {
	return func(c *gin.Context) {
		queryParams := c.Request.URL.Query()
		for key, values := range queryParams {
			for i, value := range values {
				queryParams[key][i] = sanitizeString(value)
			}
		}
		c.Request.URL.RawQuery = queryParams.Encode()

		c.Next()
	}
}

// sanitizeString strips null bytes, trims whitespace and bounds the length.
func sanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	input = strings.TrimSpace(input)
	if len(input) > 10000 {
		input = input[:10000]
	}
	return input
}
