package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/seoulfit/seoulfit-api/internal/domain/location"
)

// UpdateLocation feeds a position report into the caller's tracker session.
func (h *Handler) UpdateLocation(c *gin.Context) {
	var req location.Update
	if !bindJSON(c, &req) {
		return
	}
	state, err := h.tracker.Update(c.Request.Context(), getOwner(c), req)
	if err != nil {
		abortWithError(c, fromDomainError(err, "location_failed"))
		return
	}
	status := http.StatusOK
	if state.Pending {
		status = http.StatusAccepted
	}
	c.JSON(status, state)
}

// GetLocation returns the tracker's current view, including the last
// loaded nearby snapshot.
func (h *Handler) GetLocation(c *gin.Context) {
	state, ok := h.tracker.State(getOwner(c))
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "not_found", "no location session", nil))
		return
	}
	c.JSON(http.StatusOK, state)
}

// DisposeLocation tears the caller's tracker session down.
func (h *Handler) DisposeLocation(c *gin.Context) {
	h.tracker.Dispose(getOwner(c))
	c.Status(http.StatusNoContent)
}
