package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/servipro/marketplace-api/internal/handler"
	authhandler "github.com/servipro/marketplace-api/internal/handler/auth"
	bookinghandler "github.com/servipro/marketplace-api/internal/handler/booking"
	cataloghandler "github.com/servipro/marketplace-api/internal/handler/catalog"
	messagehandler "github.com/servipro/marketplace-api/internal/handler/message"
	reviewhandler "github.com/servipro/marketplace-api/internal/handler/review"
	userhandler "github.com/servipro/marketplace-api/internal/handler/user"
	"github.com/servipro/marketplace-api/internal/middleware"
	"github.com/servipro/marketplace-api/pkg/logger"
)

// Package-level so repeated router construction in one process reuses the
// same collectors instead of tripping duplicate registration.
var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})
	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by method and route",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"method", "route"})
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Health  *handler.Health
	Auth    *authhandler.Handler
	User    *userhandler.Handler
	Catalog *cataloghandler.Handler
	Booking *bookinghandler.Handler
	Message *messagehandler.Handler
	Review  *reviewhandler.Handler
}

// Config tunes the middleware chain.
type Config struct {
	Mode            string        `yaml:"mode"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	RateLimitPerSec float64       `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
}

// New assembles the gin engine: middleware chain, metrics endpoint, public
// and authenticated route groups under /api/v1.
func New(cfg Config, log *logger.Logger, authMW *middleware.AuthMiddleware, h Handlers) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.RateLimitPerSec == 0 {
		cfg.RateLimitPerSec = 50
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 100
	}

	r := gin.New()
	r.Use(
		middleware.Recovery(log),
		middleware.RequestIDMiddleware(),
		middleware.RequestLogger(log),
		middleware.CORS(),
		middleware.Timeout(cfg.RequestTimeout),
		middleware.NewRateLimiter(cfg.RateLimitPerSec, cfg.RateLimitBurst).Middleware(),
		requestMetrics(),
	)

	h.Health.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")

	public := v1.Group("")
	{
		h.Auth.RegisterRoutes(public.Group("/auth"))
		h.User.RegisterPublicRoutes(public)
		h.Catalog.RegisterPublicRoutes(public)
		h.Review.RegisterPublicRoutes(public)
	}

	protected := v1.Group("")
	protected.Use(authMW.Authenticate())
	{
		h.User.RegisterRoutes(protected)
		h.Catalog.RegisterRoutes(protected)
		h.Booking.RegisterRoutes(protected)
		h.Message.RegisterRoutes(protected)
		h.Review.RegisterRoutes(protected)
	}

	return r
}

func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpLatency.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
