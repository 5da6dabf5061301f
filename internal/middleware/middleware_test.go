package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(LoggerMiddleware())
	r.GET("/open", func(c *gin.Context) {
		c.String(http.StatusOK, RequestID(c))
	})
	r.GET("/admin", AdminAuthMiddleware(secret), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("admin"))
	})
	return r
}

func sign(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestLoggerMiddleware_RequestID(t *testing.T) {
	r := newEngine("s")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/open", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestAdminAuthMiddleware(t *testing.T) {
	const secret = "top-secret"
	r := newEngine(secret)

	tests := map[string]struct {
		header string
		code   int
	}{
		"missing":   {header: "", code: http.StatusUnauthorized},
		"not-bear":  {header: "Basic abc", code: http.StatusUnauthorized},
		"garbage":   {header: "Bearer abc", code: http.StatusUnauthorized},
		"wrong-key": {header: "Bearer " + sign(t, "other", jwt.MapClaims{"is_admin": true}), code: http.StatusUnauthorized},
		"not-admin": {header: "Bearer " + sign(t, secret, jwt.MapClaims{"is_admin": false}), code: http.StatusUnauthorized},
		"expired": {header: "Bearer " + sign(t, secret, jwt.MapClaims{
			"is_admin": true,
			"exp":      time.Now().Add(-time.Hour).Unix(),
		}), code: http.StatusUnauthorized},
		"admin": {header: "Bearer " + sign(t, secret, jwt.MapClaims{"is_admin": true, "sub": "ops"}), code: http.StatusOK},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.code, w.Code)
			if tt.code == http.StatusOK {
				assert.Equal(t, "ops", w.Body.String())
			}
		})
	}
}

func TestAdminAuthMiddleware_EmptySecret(t *testing.T) {
	r := newEngine("")

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+sign(t, "default_jwt_secret", jwt.MapClaims{"is_admin": true}))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
