package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/seoulfit/seoulfit-api/internal/domain/auth"
	"github.com/seoulfit/seoulfit-api/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, authSvc auth.Service, logger *slog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	httpLogger := logger.With("component", "http")

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(httpLogger),
		errorHandlingMiddleware(httpLogger),
	)

	router.GET("/healthz", handler.Health)

	api := router.Group("/api/v1")
	api.Use(rateLimitMiddleware(cfg.HTTP.RateLimit, httpLogger))
	{
		api.GET("/search", handler.Search)
		api.POST("/search/reload", authMiddleware(authSvc), handler.ReloadSearchIndex)

		api.POST("/facilities/cluster", handler.ClusterFacilities)
		api.GET("/facilities/nearby", handler.NearbyFacilities)

		api.GET("/citydata", handler.CityStatus)
		api.GET("/citydata/pois", handler.CityPOIs)

		authGroup := api.Group("/auth")
		authGroup.POST("/register", handler.Register)
		authGroup.POST("/login", handler.Login)
		authGroup.POST("/refresh", handler.Refresh)
		authGroup.GET("/check", handler.CheckAvailability)
		authGroup.GET("/google/login", handler.GoogleLogin)
		authGroup.GET("/google/callback", handler.GoogleCallback)

		me := authGroup.Group("", authMiddleware(authSvc))
		me.GET("/me", handler.Me)
		me.PUT("/me", handler.UpdateMe)
		me.POST("/logout", handler.Logout)

		owned := api.Group("", ownerMiddleware(authSvc))
		owned.GET("/history", handler.ListHistory)
		owned.POST("/history", handler.AddHistory)
		owned.DELETE("/history", handler.ClearHistory)
		owned.DELETE("/history/:id", handler.RemoveHistory)

		owned.GET("/location", handler.GetLocation)
		owned.POST("/location", handler.UpdateLocation)
		owned.DELETE("/location", handler.DisposeLocation)

		owned.GET("/preferences", handler.GetPreferences)
		owned.POST("/preferences/toggle", handler.TogglePreference)

		owned.GET("/notifications", handler.ListNotifications)
		owned.GET("/notifications/unread-count", handler.UnreadNotifications)
		owned.POST("/notifications/:id/read", handler.MarkNotificationRead)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withCORS(withRetry(router, cfg.HTTP.Retry, httpLogger), cfg.HTTP.CORS),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
