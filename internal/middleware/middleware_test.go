package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SeakMengs/AutoTermo/internal/auth"
	"github.com/SeakMengs/AutoTermo/internal/config"
	"github.com/SeakMengs/AutoTermo/internal/constant"
	ratelimiter "github.com/SeakMengs/AutoTermo/internal/rate_limiter"
	"github.com/SeakMengs/AutoTermo/internal/util"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "middleware-secret"

func newRouter(limit int) (*gin.Engine, *auth.JWT) {
	gin.SetMode(gin.TestMode)
	logger := util.NewNopLogger()
	jwtService := auth.NewJwt(config.AuthConfig{JWT_SECRET: secret}, logger)
	limiter := ratelimiter.NewRateLimiter(config.RateLimiterConfig{
		RequestsPerTimeFrame: limit,
		TimeFrame:            time.Minute,
		Enabled:              limit > 0,
	}, logger)
	mw := NewMiddleware(jwtService, limiter, logger)

	r := gin.New()
	r.Use(mw.RateLimiterMiddleware)
	r.GET("/open", func(ctx *gin.Context) { ctx.Status(http.StatusNoContent) })
	r.GET("/private", mw.AuthMiddleware, func(ctx *gin.Context) {
		user := ctx.MustGet(CONTEXT_USER_KEY).(auth.JWTPayload)
		ctx.String(http.StatusOK, user.ID)
	})
	r.GET("/managers", mw.AuthMiddleware, mw.RequireRoles(constant.UserRoleAdmin, constant.UserRoleProfessor), func(ctx *gin.Context) {
		ctx.Status(http.StatusNoContent)
	})
	r.GET("/unguarded-role", mw.RequireRoles(constant.UserRoleAdmin), func(ctx *gin.Context) {
		ctx.Status(http.StatusNoContent)
	})

	return r, jwtService
}

func get(r *gin.Engine, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func token(t *testing.T, j *auth.JWT, role constant.UserRole) string {
	t.Helper()
	tok, err := j.GenerateAccessToken(auth.JWTPayload{ID: "u-1", Role: role}, time.Minute)
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestAuthMiddleware(t *testing.T) {
	r, j := newRouter(0)

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user": map[string]any{"id": "u-1", "role": "student"},
		"type": "refresh",
		"exp":  time.Now().Add(time.Minute).Unix(),
	})
	refreshToken, err := refresh.SignedString([]byte(secret))
	require.NoError(t, err)

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user": map[string]any{"id": "u-1", "role": "student"},
		"type": constant.JWT_TYPE_ACCESS,
		"exp":  time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("another-secret"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{name: "no header", header: "", code: http.StatusUnauthorized},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", code: http.StatusUnauthorized},
		{name: "refresh token", header: "Bearer " + refreshToken, code: http.StatusUnauthorized},
		{name: "foreign signature", header: "Bearer " + foreign, code: http.StatusUnauthorized},
		{name: "access token", header: token(t, j, constant.UserRoleStudent), code: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, "/private", tt.header)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
			if tt.code == http.StatusOK {
				assert.Equal(t, "u-1", w.Body.String())
			}
		})
	}
}

func TestRequireRoles(t *testing.T) {
	r, j := newRouter(0)

	assert.Equal(t, http.StatusForbidden, get(r, "/managers", token(t, j, constant.UserRoleStudent)).Code)
	assert.Equal(t, http.StatusNoContent, get(r, "/managers", token(t, j, constant.UserRoleProfessor)).Code)
	assert.Equal(t, http.StatusNoContent, get(r, "/managers", token(t, j, constant.UserRoleAdmin)).Code)

	// Without AuthMiddleware there is no user to check
	assert.Equal(t, http.StatusUnauthorized, get(r, "/unguarded-role", "").Code)
}

func TestRateLimiterMiddleware(t *testing.T) {
	r, _ := newRouter(2)

	assert.Equal(t, http.StatusNoContent, get(r, "/open", "").Code)
	assert.Equal(t, http.StatusNoContent, get(r, "/open", "").Code)

	w := get(r, "/open", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}
