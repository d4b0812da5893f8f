package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bettstax/backend/internal/infrastructure/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupRoleRouter(guard gin.HandlerFunc, claims *auth.Claims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(JWTClaimsKey, claims)
		}
		c.Next()
	})
	router.GET("/protected", guard, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func roleClaims(role string) *auth.Claims {
	return &auth.Claims{
		TenantID: "11111111-1111-1111-1111-111111111111",
		UserID:   "22222222-2222-2222-2222-222222222222",
		Email:    "officer@betts.sl",
		Role:     role,
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		guard    gin.HandlerFunc
		claims   *auth.Claims
		expected int
	}{
		{
			name:     "matching role passes",
			guard:    RequireRole(RoleAdmin),
			claims:   roleClaims(RoleAdmin),
			expected: http.StatusOK,
		},
		{
			name:     "any of several roles passes",
			guard:    RequireRole(RoleAssociate, RoleAdmin),
			claims:   roleClaims(RoleAssociate),
			expected: http.StatusOK,
		},
		{
			name:     "wrong role rejected",
			guard:    RequireRole(RoleAdmin),
			claims:   roleClaims(RoleClient),
			expected: http.StatusForbidden,
		},
		{
			name:     "missing claims rejected",
			guard:    RequireRole(RoleAdmin),
			claims:   nil,
			expected: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRoleRouter(tt.guard, tt.claims)
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/protected", nil)
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.expected, w.Code)
		})
	}
}

func TestRequireStaff(t *testing.T) {
	for role, expected := range map[string]int{
		RoleAssociate: http.StatusOK,
		RoleAdmin:     http.StatusOK,
		RoleClient:    http.StatusForbidden,
	} {
		t.Run(role, func(t *testing.T) {
			router := setupRoleRouter(RequireStaff(), roleClaims(role))
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/protected", nil)
			router.ServeHTTP(w, req)
			assert.Equal(t, expected, w.Code)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	router := setupRoleRouter(RequireAdmin(), roleClaims(RoleAssociate))
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRoleOnDeniedCallback(t *testing.T) {
	var denied []string
	guard := RequireRoleWithConfig(RoleConfig{
		OnDenied: func(c *gin.Context, requiredRoles []string) {
			denied = requiredRoles
			c.AbortWithStatus(http.StatusTeapot)
		},
	}, RoleAdmin)

	router := setupRoleRouter(guard, roleClaims(RoleClient))
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, []string{RoleAdmin}, denied)
}
