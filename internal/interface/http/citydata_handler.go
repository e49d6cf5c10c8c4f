package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CityStatus returns weather and congestion for the hotspot nearest ?lat=&lng=.
func (h *Handler) CityStatus(c *gin.Context) {
	p, ok := queryPoint(c)
	if !ok {
		return
	}
	status, err := h.cityDataSvc.Status(c.Request.Context(), p)
	if err != nil {
		abortWithError(c, fromDomainError(err, "citydata_failed"))
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *Handler) CityPOIs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.cityDataSvc.POIs()})
}
