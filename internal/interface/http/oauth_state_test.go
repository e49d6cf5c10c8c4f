package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestOAuthStateCookie_RoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/login", nil)
	setOAuthStateCookie(c, "state-abc", "verifier_xyz")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, pkceCookie, cookies[0].Name)
	require.Equal(t, pkceCookiePath, cookies[0].Path)
	require.True(t, cookies[0].HttpOnly)

	c2, _ := gin.CreateTestContext(httptest.NewRecorder())
	c2.Request = httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback", nil)
	c2.Request.AddCookie(cookies[0])
	got, ok := readOAuthStateCookie(c2)
	require.True(t, ok)
	require.Equal(t, "verifier_xyz", got.verifier)
	require.True(t, got.accepts("state-abc"))
	require.False(t, got.accepts("state-abd"))
	require.False(t, got.accepts(""))
}

func TestOAuthStateCookie_RejectsMalformed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, value := range []string{"nodot", ".verifier", "state.", "a.b.c"} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback", nil)
		c.Request.AddCookie(&http.Cookie{Name: pkceCookie, Value: value})
		_, ok := readOAuthStateCookie(c)
		require.False(t, ok, value)
	}
}
