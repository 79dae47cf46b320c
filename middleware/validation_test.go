package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMaxRequestSizeTruncatesBody(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(MaxRequestSize(1024))
	router.POST("/apply", func(c *gin.Context) {
		body, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "too large"})
			return
		}
		c.JSON(200, gin.H{"size": len(body)})
	})

	w1 := httptest.NewRecorder()
	req1, _ := http.NewRequest("POST", "/apply", bytes.NewBufferString(strings.Repeat("a", 500)))
	router.ServeHTTP(w1, req1)
	assert.Equal(t, http.StatusOK, w1.Code)

	// Beyond the cap MaxBytesReader errors the read.
	w2 := httptest.NewRecorder()
	req2, _ := http.NewRequest("POST", "/apply", bytes.NewBufferString(strings.Repeat("a", 2000)))
	router.ServeHTTP(w2, req2)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w2.Code)
}

func TestValidateJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(ValidateJSON())
	router.POST("/apply", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "ok"})
	})
	router.GET("/apply", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "ok"})
	})
	router.OPTIONS("/apply", func(c *gin.Context) {
		c.Status(204)
	})

	w1 := httptest.NewRecorder()
	req1, _ := http.NewRequest("POST", "/apply", bytes.NewBufferString("{}"))
	req1.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w1, req1)
	assert.Equal(t, http.StatusOK, w1.Code)

	// Charset suffix still counts as JSON.
	w2 := httptest.NewRecorder()
	req2, _ := http.NewRequest("POST", "/apply", bytes.NewBufferString("{}"))
	req2.Header.Set("Content-Type", "application/json; charset=utf-8")
	router.ServeHTTP(w2, req2)
	assert.Equal(t, http.StatusOK, w2.Code)

	w3 := httptest.NewRecorder()
	req3, _ := http.NewRequest("POST", "/apply", bytes.NewBufferString("{}"))
	router.ServeHTTP(w3, req3)
	assert.Equal(t, http.StatusBadRequest, w3.Code)
	assert.Contains(t, w3.Body.String(), "Content-Type must be application/json")

	// Reads and preflights skip the check.
	w4 := httptest.NewRecorder()
	req4, _ := http.NewRequest("GET", "/apply", nil)
	router.ServeHTTP(w4, req4)
	assert.Equal(t, http.StatusOK, w4.Code)

	w5 := httptest.NewRecorder()
	req5, _ := http.NewRequest("OPTIONS", "/apply", nil)
	router.ServeHTTP(w5, req5)
	assert.Equal(t, http.StatusNoContent, w5.Code)
}

func TestSanitizeInput(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(SanitizeInput())
	router.GET("/attempts", func(c *gin.Context) {
		c.JSON(200, gin.H{"id": c.Query("id")})
	})

	w1 := httptest.NewRecorder()
	req1, _ := http.NewRequest("GET", "/attempts?id=att%00123", nil)
	router.ServeHTTP(w1, req1)
	assert.Equal(t, http.StatusOK, w1.Code)
	assert.Contains(t, w1.Body.String(), "att123")

	w2 := httptest.NewRecorder()
	req2, _ := http.NewRequest("GET", "/attempts?id=%20%20att-9%20%20", nil)
	router.ServeHTTP(w2, req2)
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Contains(t, w2.Body.String(), `"att-9"`)
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "att123", sanitizeString("att\x00123"))
	assert.Equal(t, "att-9", sanitizeString("  att-9  "))
	assert.Equal(t, 10000, len(sanitizeString(strings.Repeat("a", 11000))))
	assert.Equal(t, "att123", sanitizeString("  att\x00123  "))
}
