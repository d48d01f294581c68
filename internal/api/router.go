package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/morozkin/Point2Image/docs"
	"github.com/morozkin/Point2Image/internal/api/handler"
	"github.com/morozkin/Point2Image/internal/api/middleware"
	"github.com/morozkin/Point2Image/internal/core/ports"
	"github.com/morozkin/Point2Image/internal/infrastructure/http/handlers"
)

// Dependencies are the collaborators the HTTP surface is built on.
type Dependencies struct {
	Tracking  ports.TrackingService
	Locations handler.LocationSink
	Streamer  handler.StateStreamer
	Loop      handlers.LoopProbe
	// Redis is nil when the seen store is in memory.
	Redis *redis.Client
	// JWTSecret enables bearer auth on /v1 when non-empty.
	JWTSecret string
	// Registry defaults to the global Prometheus registry.
	Registry *prometheus.Registry
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(metricsConfig(deps.Registry)))

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Loop, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness: is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness: are dependencies up?
	e.GET("/metrics", metricsHandler(deps.Registry))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- v1 ---
	trackingHandler := handler.NewTrackingHandler(deps.Tracking, deps.Streamer)
	locationHandler := handler.NewLocationHandler(deps.Locations)

	v1 := e.Group("/v1")
	walker := []echo.MiddlewareFunc{}
	device := []echo.MiddlewareFunc{}
	if deps.JWTSecret != "" {
		v1.Use(middleware.Auth(deps.JWTSecret))
		walker = append(walker, middleware.RequireRole(middleware.RoleWalker))
		device = append(device, middleware.RequireRole(middleware.RoleDevice))
	} else {
		deps.Log.Warn().Msg("JWT_SECRET is empty, /v1 is unauthenticated")
	}

	tracking := v1.Group("/tracking", walker...)
	tracking.GET("", trackingHandler.Get)
	tracking.POST("/start", trackingHandler.Start)
	tracking.POST("/stop", trackingHandler.Stop)
	tracking.GET("/stream", trackingHandler.Stream)

	locations := v1.Group("/locations", device...)
	locations.POST("", locationHandler.PostFix)
	locations.POST("/batch", locationHandler.PostBatch)
	locations.POST("/errors", locationHandler.PostError)

	v1.GET("/authorization", locationHandler.GetAuthorization, device...)
	v1.PUT("/authorization", locationHandler.PutAuthorization, device...)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

func metricsConfig(reg *prometheus.Registry) echoprometheus.MiddlewareConfig {
	cfg := echoprometheus.MiddlewareConfig{Subsystem: "point2image"}
	if reg != nil {
		cfg.Registerer = reg
	}
	return cfg
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}
