package server

import (
	"net/http"
	"time"

	"github.com/bcmimarlik/site/internal/metrics"
	"github.com/bcmimarlik/site/internal/module"
	"github.com/bcmimarlik/site/internal/render"
	"github.com/bcmimarlik/site/internal/service"
	"github.com/bcmimarlik/site/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// Deps are the services behind the HTTP API.
type Deps struct {
	Content      *service.ContentService
	Analysis     *service.AnalysisService
	Appointments *service.AppointmentService
	Auth         Authenticator
	Sessions     *session.Registry
	Renderer     *render.Renderer
}

var startTime = time.Now()

// NewRouter builds the HTTP handler of the site.
func NewRouter(d Deps) http.Handler {
	router := gin.New()
	router.Use(gin.Recovery(), RequestTimeInterceptor())

	contentHandler := NewContentHandler(d.Content, d.Renderer)
	analysisHandler := NewAnalysisHandler(d.Analysis)
	appointmentHandler := NewAppointmentHandler(d.Appointments)
	adminHandler := NewAdminHandler(d.Auth, d.Sessions, d.Renderer)

	router.GET("/", contentHandler.Page)
	router.StaticFS("/static", render.Static())
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "uptime": time.Since(startTime).String()})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	api := router.Group("/api")

	// Public routes
	contentHandler.RegisterPublicRoutes(api)
	analysisHandler.RegisterPublicRoutes(api)
	appointmentHandler.RegisterPublicRoutes(api)
	adminHandler.RegisterPublicRoutes(api)

	// Protected routes
	protected := api.Group("")
	protected.Use(module.AuthTokenMiddleware(d.Auth))
	{
		contentHandler.RegisterRoutes(protected)
		adminHandler.RegisterRoutes(protected)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		// cross-origin admin calls carry the Bearer header; the cookie is same-site only
		AllowCredentials: false,
	})

	return c.Handler(router)
}
