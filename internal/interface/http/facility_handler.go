package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/seoulfit/seoulfit-api/internal/domain/facility"
	"github.com/seoulfit/seoulfit-api/internal/domain/search"
)

type clusterRequest struct {
	Facilities []facility.Facility `json:"facilities"`
}

// ClusterFacilities groups a posted facility list by coincident position.
func (h *Handler) ClusterFacilities(c *gin.Context) {
	var req clusterRequest
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.facilitySvc.Cluster(req.Facilities))
}

// NearbyFacilities fans out to the category sources around ?lat=&lng=.
func (h *Handler) NearbyFacilities(c *gin.Context) {
	center, ok := queryPoint(c)
	if !ok {
		return
	}
	q := facility.NearbyQuery{Center: center}
	if raw := strings.TrimSpace(c.Query("radius")); raw != "" {
		radius, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "radius must be a number of kilometres", err))
			return
		}
		q.RadiusKm = radius
	}
	for _, part := range strings.Split(c.Query("categories"), ",") {
		if part = strings.TrimSpace(part); part != "" {
			q.Categories = append(q.Categories, search.Category(part))
		}
	}
	snapshot, err := h.facilitySvc.Nearby(c.Request.Context(), q)
	if err != nil {
		abortWithError(c, fromDomainError(err, "facility_failed"))
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
