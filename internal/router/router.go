package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medisched/scheduler-api/internal/handler"
	appointmenthandler "github.com/medisched/scheduler-api/internal/handler/appointment"
	authhandler "github.com/medisched/scheduler-api/internal/handler/auth"
	doctorhandler "github.com/medisched/scheduler-api/internal/handler/doctor"
	filehandler "github.com/medisched/scheduler-api/internal/handler/file"
	notificationhandler "github.com/medisched/scheduler-api/internal/handler/notification"
	patienthandler "github.com/medisched/scheduler-api/internal/handler/patient"
	"github.com/medisched/scheduler-api/internal/middleware"
)

type Config struct {
	RateLimitRPS   float64
	RateLimitBurst int
	CORS           middleware.CORSConfig
	MetricsPrefix  string
}

type Router struct {
	engine        *gin.Engine
	auth          *middleware.AuthMiddleware
	healthH       *handler.HealthHandler
	authH         *authhandler.Handler
	doctorH       *doctorhandler.Handler
	patientH      *patienthandler.Handler
	appointmentH  *appointmenthandler.Handler
	notificationH *notificationhandler.Handler
	fileH         *filehandler.Handler
	metrics       *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

func New(
	auth *middleware.AuthMiddleware,
	healthH *handler.HealthHandler,
	authH *authhandler.Handler,
	doctorH *doctorhandler.Handler,
	patientH *patienthandler.Handler,
	appointmentH *appointmenthandler.Handler,
	notificationH *notificationhandler.Handler,
	fileH *filehandler.Handler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	r := &Router{
		engine:        engine,
		auth:          auth,
		healthH:       healthH,
		authH:         authH,
		doctorH:       doctorH,
		patientH:      patientH,
		appointmentH:  appointmentH,
		notificationH: notificationH,
		fileH:         fileH,
		metrics:       initRouterMetrics(config.MetricsPrefix),
	}

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		r.metricsMiddleware(),
	)
	engine.Use(middleware.CORS(config.CORS))

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RPS:   config.RateLimitRPS,
		Burst: config.RateLimitBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	r.setupHealthCheck(api)
	r.setupPublicRoutes(api)

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	r.setupProtectedRoutes(protected)
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	r.healthH.RegisterRoutes(rg)
	rg.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (r *Router) setupPublicRoutes(rg *gin.RouterGroup) {
	r.authH.RegisterRoutes(rg)

	// Patient portal routes carry no session; callers are scoped by the
	// patient ID in the path. MarkRead accepts either a signed-in doctor
	// or a patient_id query parameter, so auth is optional there.
	portal := rg.Group("")
	portal.Use(r.auth.Optional())
	r.patientH.RegisterPublicRoutes(portal)
	r.notificationH.RegisterSharedRoutes(portal)
}

func (r *Router) setupProtectedRoutes(rg *gin.RouterGroup) {
	r.doctorH.RegisterRoutes(rg)
	r.patientH.RegisterRoutes(rg)
	r.appointmentH.RegisterRoutes(rg)
	r.notificationH.RegisterRoutes(rg)
	r.fileH.RegisterRoutes(rg)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string) *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}
