package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListNotifications(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 20, 1, 100)
	if !ok {
		return
	}
	items, err := h.triggerSvc.List(c.Request.Context(), getOwner(c), limit)
	if err != nil {
		abortWithError(c, fromDomainError(err, "notifications_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) UnreadNotifications(c *gin.Context) {
	count, err := h.triggerSvc.UnreadCount(c.Request.Context(), getOwner(c))
	if err != nil {
		abortWithError(c, fromDomainError(err, "notifications_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	n, err := h.triggerSvc.MarkRead(c.Request.Context(), getOwner(c), c.Param("id"))
	if err != nil {
		abortWithError(c, fromDomainError(err, "notifications_failed"))
		return
	}
	c.JSON(http.StatusOK, n)
}
