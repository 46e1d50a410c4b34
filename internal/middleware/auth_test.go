package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backend/internal/models"
	"backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

func newProtectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(AuthMiddleware(zap.NewNop()))
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": c.MustGet("email")})
	})
	return router
}

func signToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	claims := &models.Claims{
		Email: "jeevan@bluego.ai",
		Role:  "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(service.GetJWTSecret())
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func TestAuthMiddleware(t *testing.T) {
	router := newProtectedRouter()

	tests := []struct {
		name       string
		authHeader string
		wantCode   int
	}{
		{name: "missing header", authHeader: "", wantCode: http.StatusUnauthorized},
		{name: "not bearer", authHeader: "Basic abc", wantCode: http.StatusUnauthorized},
		{name: "garbage token", authHeader: "Bearer not.a.jwt", wantCode: http.StatusUnauthorized},
		{name: "expired token", authHeader: "Bearer " + signToken(t, time.Now().Add(-time.Hour)), wantCode: http.StatusUnauthorized},
		{name: "valid token", authHeader: "Bearer " + signToken(t, time.Now().Add(time.Hour)), wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d, body: %s", w.Code, tt.wantCode, w.Body.String())
			}
		})
	}
}
