package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/buinguyet/kobizo-code-challenge/internal/config"
	"github.com/buinguyet/kobizo-code-challenge/internal/middleware"
)

func setupRateLimitedRoute(cfg config.RateLimitConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RateLimit(cfg))
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	return router
}

func TestRateLimitExceeded(t *testing.T) {
	router := setupRateLimitedRoute(config.RateLimitConfig{
		Enabled:         true,
		RequestsPerMin:  60,
		BurstSize:       3,
		CleanupInterval: time.Minute,
	})

	var lastCode int
	limited := false
	for i := 0; i < 10; i++ {
		req, _ := http.NewRequest("GET", "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		lastCode = w.Code
		if w.Code == http.StatusTooManyRequests {
			limited = true
		}
	}

	if !limited {
		t.Error("Expected at least one request past the burst to be limited")
	}
	if lastCode != http.StatusTooManyRequests {
		t.Errorf("Expected final request to be limited, got %d", lastCode)
	}
}

func TestRateLimitPerClient(t *testing.T) {
	router := setupRateLimitedRoute(config.RateLimitConfig{
		Enabled:         true,
		RequestsPerMin:  60,
		BurstSize:       1,
		CleanupInterval: time.Minute,
	})

	// Exhaust the first client's burst.
	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest("GET", "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	req, _ := http.NewRequest("GET", "/ping", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected a fresh client to pass, got %d", w.Code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	router := setupRateLimitedRoute(config.RateLimitConfig{Enabled: false})

	for i := 0; i < 50; i++ {
		req, _ := http.NewRequest("GET", "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("Request %d: expected status %d, got %d", i, http.StatusOK, w.Code)
		}
	}
}
