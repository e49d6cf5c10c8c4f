package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/seoulfit/seoulfit-api/internal/domain/auth"
	"github.com/seoulfit/seoulfit-api/internal/domain/citydata"
	"github.com/seoulfit/seoulfit-api/internal/domain/facility"
	"github.com/seoulfit/seoulfit-api/internal/domain/history"
	"github.com/seoulfit/seoulfit-api/internal/domain/location"
	"github.com/seoulfit/seoulfit-api/internal/domain/preference"
	"github.com/seoulfit/seoulfit-api/internal/domain/search"
	"github.com/seoulfit/seoulfit-api/internal/domain/trigger"
	"github.com/seoulfit/seoulfit-api/internal/infra/config"
	"github.com/seoulfit/seoulfit-api/internal/spatial"
)

// LocationTracker is the slice of the location tracker the transport uses.
type LocationTracker interface {
	Update(ctx context.Context, owner string, u location.Update) (location.State, error)
	State(owner string) (location.State, bool)
	Dispose(owner string) bool
}

// Handler wires the HTTP transport to domain services.
type Handler struct {
	searchSvc     search.Service
	historySvc    history.Service
	facilitySvc   facility.Service
	tracker       LocationTracker
	cityDataSvc   citydata.Service
	preferenceSvc preference.Service
	triggerSvc    trigger.Service
	authSvc       auth.Service
	postLoginURL  string
	logger        *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(
	cfg *config.Config,
	searchSvc search.Service,
	historySvc history.Service,
	facilitySvc facility.Service,
	tracker LocationTracker,
	cityDataSvc citydata.Service,
	preferenceSvc preference.Service,
	triggerSvc trigger.Service,
	authSvc auth.Service,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		searchSvc:     searchSvc,
		historySvc:    historySvc,
		facilitySvc:   facilitySvc,
		tracker:       tracker,
		cityDataSvc:   cityDataSvc,
		preferenceSvc: preferenceSvc,
		triggerSvc:    triggerSvc,
		authSvc:       authSvc,
		postLoginURL:  cfg.Auth.Google.PostLoginRedirectURL,
		logger:        logger.With("component", "http.handler"),
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return false
	}
	return true
}

// queryPoint reads the required lat/lng query parameters.
func queryPoint(c *gin.Context) (spatial.Point, bool) {
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(c.Query("lat")), 64)
	lng, errLng := strconv.ParseFloat(strings.TrimSpace(c.Query("lng")), 64)
	p := spatial.Point{Lat: lat, Lng: lng}
	if errLat != nil || errLng != nil || !p.Valid() {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "lat and lng must be valid coordinates", nil))
		return spatial.Point{}, false
	}
	return p, true
}

// queryInt reads an optional integer query parameter within [lo, hi].
func queryInt(c *gin.Context, name string, fallback, lo, hi int) (int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", name+" must be an integer between "+strconv.Itoa(lo)+" and "+strconv.Itoa(hi), err))
		return 0, false
	}
	return v, true
}
