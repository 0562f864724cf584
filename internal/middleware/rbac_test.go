package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/raghad-alharthi/student-management-api/internal/models"
)

func performRBAC(t *testing.T, claims *models.JWTClaims, paramID string, allowed ...string) int {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if paramID != "" {
		c.Params = gin.Params{{Key: "id", Value: paramID}}
	}
	if claims != nil {
		c.Set(ContextUserKey, claims)
	}

	RBAC(allowed...)(c)
	if !c.IsAborted() {
		c.Status(http.StatusOK)
	}
	return w.Code
}

func TestRBACAllowsMatchingRole(t *testing.T) {
	code := performRBAC(t, &models.JWTClaims{UserID: "u1", Role: models.RoleAdmin}, "", "ADMIN")
	require.Equal(t, http.StatusOK, code)
}

func TestRBACRejectsOtherRole(t *testing.T) {
	code := performRBAC(t, &models.JWTClaims{UserID: "u1", Role: models.RoleStudent}, "", "ADMIN", "TEACHER")
	require.Equal(t, http.StatusForbidden, code)
}

func TestRBACRejectsMissingClaims(t *testing.T) {
	code := performRBAC(t, nil, "", "ADMIN")
	require.Equal(t, http.StatusUnauthorized, code)
}

func TestRBACSelfAccess(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleStudent}
	require.Equal(t, http.StatusOK, performRBAC(t, claims, "u1", "ADMIN", "SELF"))
	require.Equal(t, http.StatusForbidden, performRBAC(t, claims, "u2", "ADMIN", "SELF"))
}
