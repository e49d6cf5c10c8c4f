package http

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/seoulfit/seoulfit-api/internal/domain/auth"
	apperrors "github.com/seoulfit/seoulfit-api/pkg/errors"
)

func (h *Handler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.authSvc.Register(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err, "register_failed"))
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err, "login_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Refresh(c *gin.Context) {
	var req auth.RefreshRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		abortWithError(c, fromDomainError(err, "refresh_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CheckAvailability answers ?email=&nickname= availability lookups.
func (h *Handler) CheckAvailability(c *gin.Context) {
	var req auth.CheckRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	resp, err := h.authSvc.Check(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err, "check_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Me(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, apperrors.CodeUnauthorized, "missing token", nil))
		return
	}
	user, err := h.authSvc.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithError(c, fromDomainError(err, "profile_failed"))
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) UpdateMe(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, apperrors.CodeUnauthorized, "missing token", nil))
		return
	}
	var req auth.ProfileUpdate
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.authSvc.UpdateProfile(c.Request.Context(), claims.UserID, req)
	if err != nil {
		abortWithError(c, fromDomainError(err, "profile_failed"))
		return
	}
	c.JSON(http.StatusOK, user)
}

// Logout revokes the stored Google grant and ends the tracker session.
func (h *Handler) Logout(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, apperrors.CodeUnauthorized, "missing token", nil))
		return
	}
	if err := h.authSvc.Logout(c.Request.Context(), claims.UserID); err != nil {
		abortWithError(c, fromDomainError(err, "logout_failed"))
		return
	}
	h.tracker.Dispose(userOwner(claims.UserID))
	c.Status(http.StatusNoContent)
}

// GoogleLogin starts the PKCE flow and redirects to Google.
func (h *Handler) GoogleLogin(c *gin.Context) {
	state, verifier, err := auth.NewOAuthState()
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "oauth_state_failed", "failed to start login", err))
		return
	}
	target, err := h.authSvc.GoogleAuthURL(c.Request.Context(), state, verifier)
	if err != nil {
		abortWithError(c, fromDomainError(err, "oauth_failed"))
		return
	}
	setOAuthStateCookie(c, state, verifier)
	c.Redirect(http.StatusFound, target)
}

// GoogleCallback finishes the PKCE flow. With a post-login URL configured
// the tokens are handed to the web app in the URL fragment; otherwise they
// are returned as JSON.
func (h *Handler) GoogleCallback(c *gin.Context) {
	if reason := c.Query("error"); reason != "" {
		clearOAuthStateCookie(c)
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "oauth_denied", reason, nil))
		return
	}
	stored, ok := readOAuthStateCookie(c)
	clearOAuthStateCookie(c)
	if !ok || !stored.accepts(c.Query("state")) {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_state", "oauth state mismatch", nil))
		return
	}
	resp, err := h.authSvc.GoogleCallback(c.Request.Context(), c.Query("code"), stored.verifier)
	if err != nil {
		abortWithError(c, fromDomainError(err, "oauth_failed"))
		return
	}
	if h.postLoginURL == "" {
		c.JSON(http.StatusOK, resp)
		return
	}
	fragment := url.Values{}
	fragment.Set("token", resp.Token)
	fragment.Set("refreshToken", resp.RefreshToken)
	c.Redirect(http.StatusFound, h.postLoginURL+"#"+fragment.Encode())
}
