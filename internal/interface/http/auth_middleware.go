package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/seoulfit/seoulfit-api/internal/domain/auth"
	apperrors "github.com/seoulfit/seoulfit-api/pkg/errors"
)

const maxClientIDLen = 128

func authMiddleware(svc auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, apperrors.CodeUnauthorized, "missing authorization header", nil))
			return
		}
		claims, httpErr := validateBearer(c, svc, header)
		if httpErr != nil {
			abortWithError(c, httpErr)
			return
		}
		setClaims(c, claims)
		setOwner(c, userOwner(claims.UserID))
		c.Next()
	}
}

// ownerMiddleware resolves who per-owner state belongs to. A bearer token
// wins; otherwise the anonymous client id header is used.
func ownerMiddleware(svc auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); header != "" {
			claims, httpErr := validateBearer(c, svc, header)
			if httpErr != nil {
				abortWithError(c, httpErr)
				return
			}
			setClaims(c, claims)
			setOwner(c, userOwner(claims.UserID))
			c.Next()
			return
		}
		clientID := strings.TrimSpace(c.GetHeader(clientIDHeader))
		if !validClientID(clientID) {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "owner_required", "sign in or send an "+clientIDHeader+" header", nil))
			return
		}
		setOwner(c, anonymousOwner(clientID))
		c.Next()
	}
}

func validateBearer(c *gin.Context, svc auth.Service, header string) (auth.Claims, *HTTPError) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return auth.Claims{}, NewHTTPError(http.StatusUnauthorized, apperrors.CodeUnauthorized, "invalid authorization header", nil)
	}
	claims, err := svc.ValidateToken(c.Request.Context(), strings.TrimSpace(parts[1]))
	if err != nil {
		if !apperrors.IsCode(err, auth.CodeInvalidToken) {
			return auth.Claims{}, NewHTTPError(http.StatusInternalServerError, "auth_failed", errMessage(err), err)
		}
		return auth.Claims{}, NewHTTPError(http.StatusUnauthorized, auth.CodeInvalidToken, errMessage(err), err)
	}
	return claims, nil
}

func validClientID(id string) bool {
	if id == "" || len(id) > maxClientIDLen {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}
