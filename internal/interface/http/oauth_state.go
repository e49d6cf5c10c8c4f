package http

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// The login redirect parks "<state>.<verifier>" in a short-lived cookie
// scoped to the Google routes. Both halves are base64url, so '.' never
// appears inside either.
const (
	pkceCookie     = "seoulfit_pkce"
	pkceCookiePath = "/api/v1/auth/google"
	pkceCookieTTL  = 5 * time.Minute
)

type pendingLogin struct {
	state    string
	verifier string
}

func (p pendingLogin) accepts(state string) bool {
	if state == "" || p.state == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(p.state), []byte(state)) == 1
}

func writePKCECookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(pkceCookie, value, maxAge, pkceCookiePath, "", c.Request.TLS != nil, true)
}

func setOAuthStateCookie(c *gin.Context, state, verifier string) {
	writePKCECookie(c, state+"."+verifier, int(pkceCookieTTL/time.Second))
}

func clearOAuthStateCookie(c *gin.Context) {
	writePKCECookie(c, "", -1)
}

func readOAuthStateCookie(c *gin.Context) (pendingLogin, bool) {
	raw, err := c.Cookie(pkceCookie)
	if err != nil {
		return pendingLogin{}, false
	}
	state, verifier, ok := strings.Cut(raw, ".")
	if !ok || state == "" || verifier == "" || strings.Contains(verifier, ".") {
		return pendingLogin{}, false
	}
	return pendingLogin{state: state, verifier: verifier}, true
}
