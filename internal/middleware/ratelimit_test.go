package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_RejectsAfterBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(0.001, 2)

	router := gin.New()
	router.Use(rl.Middleware())
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/x", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	// a different client has its own bucket
	req := httptest.NewRequest("GET", "/x", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 2, rl.Visitors())
}

func TestRateLimiter_Sweep(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.limiter("a")
	rl.limiter("b")
	rl.visitors["a"].lastSeen = time.Now().Add(-time.Hour)

	rl.sweep(time.Minute)

	assert.Equal(t, 1, rl.Visitors())
	_, ok := rl.visitors["b"]
	assert.True(t, ok)
}

func TestBasicAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	serve := func(user, pass string, setAuth bool, u, p string) int {
		router := gin.New()
		router.GET("/metrics", BasicAuth(user, pass), func(c *gin.Context) { c.Status(http.StatusOK) })
		req := httptest.NewRequest("GET", "/metrics", nil)
		if setAuth {
			req.SetBasicAuth(u, p)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, serve("prom", "secret", true, "prom", "secret"))
	assert.Equal(t, http.StatusUnauthorized, serve("prom", "secret", true, "prom", "wrong"))
	assert.Equal(t, http.StatusUnauthorized, serve("prom", "secret", false, "", ""))
	assert.Equal(t, http.StatusUnauthorized, serve("", "", true, "", ""))
}
