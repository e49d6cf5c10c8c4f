package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/seoulfit/seoulfit-api/internal/domain/history"
)

// ListHistory returns the history entries relevant to ?q= (all when blank).
func (h *Handler) ListHistory(c *gin.Context) {
	entries, err := h.historySvc.Relevant(c.Request.Context(), getOwner(c), c.Query("q"))
	if err != nil {
		abortWithError(c, fromDomainError(err, "history_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": entries})
}

func (h *Handler) AddHistory(c *gin.Context) {
	var req history.AddRequest
	if !bindJSON(c, &req) {
		return
	}
	entries, err := h.historySvc.Add(c.Request.Context(), getOwner(c), req)
	if err != nil {
		abortWithError(c, fromDomainError(err, "history_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": entries})
}

func (h *Handler) RemoveHistory(c *gin.Context) {
	entries, err := h.historySvc.Remove(c.Request.Context(), getOwner(c), c.Param("id"))
	if err != nil {
		abortWithError(c, fromDomainError(err, "history_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": entries})
}

func (h *Handler) ClearHistory(c *gin.Context) {
	if err := h.historySvc.Clear(c.Request.Context(), getOwner(c)); err != nil {
		abortWithError(c, fromDomainError(err, "history_failed"))
		return
	}
	c.Status(http.StatusNoContent)
}
