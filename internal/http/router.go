package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/devevent/internal/http/handlers"
	"github.com/geocoder89/devevent/internal/http/middlewares"
	"github.com/geocoder89/devevent/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const serviceName = "devevent-api"

type RouterDeps struct {
	Env            string
	CORSOrigins    []string
	MaxUploadBytes int64

	// LocalMediaDir is served at LocalMediaURL when images are stored on disk.
	LocalMediaDir string
	LocalMediaURL string

	Log      *slog.Logger
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	Tokens interface {
		middlewares.TokenVerifier
		handlers.TokenIssuer
	}
	Credentials handlers.CredentialChecker
	Events      handlers.EventsService
	Bookings    handlers.BookingsService
	Checks      map[string]handlers.ReadinessCheck

	// LoginLimit attempts per LoginWindow per client IP.
	LoginLimit  int
	LoginWindow time.Duration
}

func NewRouter(d RouterDeps) *gin.Engine {
	if d.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.LoginLimit <= 0 {
		d.LoginLimit = 5
	}
	if d.LoginWindow <= 0 {
		d.LoginWindow = time.Minute
	}

	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders(d.LocalMediaURL))
	r.Use(middlewares.CORSMiddleware(d.CORSOrigins))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.AdminGate(d.Tokens, d.Prom))

	// ops
	h := handlers.NewHealthHandler(d.Checks)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	if d.LocalMediaDir != "" && d.LocalMediaURL != "" {
		r.Static(d.LocalMediaURL, d.LocalMediaDir)
	}

	eventsHandler := handlers.NewEventsHandler(d.Events, d.Log, d.MaxUploadBytes)
	bookingsHandler := handlers.NewBookingsHandler(d.Bookings, d.Log)
	adminHandler := handlers.NewAdminHandler(d.Tokens, d.Credentials, d.Events, d.Log, d.Prom, d.Env == "prod")

	// public
	r.GET("/events", eventsHandler.ListEvents)
	r.GET("/events/:slug", eventsHandler.GetEvent)
	r.POST("/bookings",
		middlewares.MaxBodyBytes(64<<10),
		middlewares.RequireJSON(),
		bookingsHandler.CreateBooking,
	)

	// event writes: token first, then the body; the service checks again
	form := []gin.HandlerFunc{
		eventsHandler.RequireAdmin,
		middlewares.MaxBodyBytes(d.MaxUploadBytes + 1<<20),
		middlewares.RequireMultipart(),
	}
	r.POST("/events", append(form, eventsHandler.CreateEvent)...)
	r.PUT("/events/:slug", append(form, eventsHandler.UpdateEvent)...)
	r.DELETE("/events/:slug", eventsHandler.RequireAdmin, eventsHandler.DeleteEvent)

	// admin
	limiter := middlewares.NewRateLimiter(d.LoginLimit, d.LoginWindow)
	admin := r.Group("/admin")
	{
		admin.GET("/login", adminHandler.LoginPage)
		admin.POST("/login",
			limiter.RateLimiterMiddleware(middlewares.KeyByIP, func(*gin.Context) { d.Prom.IncLogin("rate_limited") }),
			middlewares.MaxBodyBytes(16<<10),
			middlewares.RequireJSON(),
			adminHandler.Login,
		)
		admin.POST("/logout", adminHandler.Logout)
		admin.GET("/dashboard", adminHandler.Dashboard)
		admin.GET("/events/new", adminHandler.NewEventForm)
		admin.GET("/events/:slug/edit", adminHandler.EditEventForm)
	}

	r.NoRoute(func(c *gin.Context) {
		handlers.RespondError(c, http.StatusNotFound, "not_found", "Route not found", nil)
	})

	return r
}
