package http

import (
	"github.com/gin-gonic/gin"

	"github.com/seoulfit/seoulfit-api/internal/domain/auth"
)

const (
	authClaimsKey = "auth_claims"
	ownerKey      = "owner"

	clientIDHeader = "X-Client-ID"
)

func setClaims(c *gin.Context, claims auth.Claims) {
	c.Set(authClaimsKey, claims)
}

func getClaims(c *gin.Context) (auth.Claims, bool) {
	value, ok := c.Get(authClaimsKey)
	if !ok {
		return auth.Claims{}, false
	}
	claims, ok := value.(auth.Claims)
	return claims, ok
}

// userOwner and anonymousOwner build the keys under which per-owner state
// (history, preferences, tracker sessions, inbox) is stored.
func userOwner(userID int64) string {
	return auth.OwnerKey(userID)
}

func anonymousOwner(clientID string) string {
	return "anon:" + clientID
}

func setOwner(c *gin.Context, owner string) {
	c.Set(ownerKey, owner)
}

func getOwner(c *gin.Context) string {
	return c.GetString(ownerKey)
}
