package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/notedrop/backend/internal/config"
)

func TestAllowedOrigins(t *testing.T) {
	dev := &config.Config{Environment: "development", FrontendURL: "http://localhost:5173"}
	if got := AllowedOrigins(dev); len(got) != 2 {
		t.Errorf("expected dev origins without duplicates, got %v", got)
	}

	prod := &config.Config{Environment: "production", FrontendURL: "https://notedrop.example"}
	got := AllowedOrigins(prod)
	if len(got) != 1 || got[0] != "https://notedrop.example" {
		t.Errorf("expected only the frontend in production, got %v", got)
	}

	if got := AllowedOrigins(&config.Config{Environment: "production"}); len(got) != 0 {
		t.Errorf("expected no origins, got %v", got)
	}
}

func upgradeRequest(origin string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	return req
}

func TestWebSocketCORSCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name   string
		env    string
		origin string
		want   int
	}{
		{"dev any localhost port", "development", "http://localhost:3000", http.StatusOK},
		{"dev foreign origin", "development", "https://evil.example", http.StatusForbidden},
		{"missing origin", "development", "", http.StatusBadRequest},
		{"prod frontend", "production", "https://notedrop.example", http.StatusOK},
		{"prod localhost", "production", "http://localhost:5173", http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &config.Config{Environment: tc.env, FrontendURL: "https://notedrop.example"}
			router := gin.New()
			router.GET("/ws", WebSocketCORSCheck(cfg), func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, upgradeRequest(tc.origin))
			if w.Code != tc.want {
				t.Errorf("expected %d, got %d", tc.want, w.Code)
			}
		})
	}
}

func TestPlainRequestsSkipOriginCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Environment: "production"}
	router := gin.New()
	router.GET("/ws", WebSocketCORSCheck(cfg), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	if w.Code != http.StatusOK {
		t.Errorf("non-upgrade request should pass, got %d", w.Code)
	}
}
