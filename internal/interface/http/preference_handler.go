package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/seoulfit/seoulfit-api/internal/domain/preference"
)

func (h *Handler) GetPreferences(c *gin.Context) {
	prefs, err := h.preferenceSvc.Get(c.Request.Context(), getOwner(c))
	if err != nil {
		abortWithError(c, fromDomainError(err, "preferences_failed"))
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// TogglePreference flips one category or push.
func (h *Handler) TogglePreference(c *gin.Context) {
	var req preference.ToggleRequest
	if !bindJSON(c, &req) {
		return
	}
	prefs, err := h.preferenceSvc.Toggle(c.Request.Context(), getOwner(c), req.Key)
	if err != nil {
		abortWithError(c, fromDomainError(err, "preferences_failed"))
		return
	}
	c.JSON(http.StatusOK, prefs)
}
