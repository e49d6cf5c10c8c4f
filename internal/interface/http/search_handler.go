package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/seoulfit/seoulfit-api/internal/domain/search"
)

const maxSearchLimit = 50

// Search runs the ranking pipeline for ?q=&limit=.
func (h *Handler) Search(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 0, 1, maxSearchLimit)
	if !ok {
		return
	}
	resp, err := h.searchSvc.Search(c.Request.Context(), search.Request{Query: c.Query("q"), Limit: limit})
	if err != nil {
		abortWithError(c, fromDomainError(err, "search_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ReloadSearchIndex rebuilds the index from its source.
func (h *Handler) ReloadSearchIndex(c *gin.Context) {
	count, err := h.searchSvc.Reload(c.Request.Context())
	if err != nil {
		abortWithError(c, fromDomainError(err, "reload_failed"))
		return
	}
	h.logger.Info("search index reloaded", "items", count)
	c.JSON(http.StatusOK, gin.H{"indexed": count})
}
