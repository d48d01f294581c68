// @title           Point2Image API
// @version         1.0
// @description     Turns a walk into a feed of geotagged Flickr photos.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/morozkin/Point2Image/internal/api"
	"github.com/morozkin/Point2Image/internal/api/stream"
	"github.com/morozkin/Point2Image/internal/core/domain"
	"github.com/morozkin/Point2Image/internal/core/ports"
	"github.com/morozkin/Point2Image/internal/core/service"
	"github.com/morozkin/Point2Image/internal/core/session"
	"github.com/morozkin/Point2Image/internal/infrastructure/config"
	"github.com/morozkin/Point2Image/internal/infrastructure/db/memory"
	"github.com/morozkin/Point2Image/internal/infrastructure/db/redis"
	"github.com/morozkin/Point2Image/internal/infrastructure/flickr"
	"github.com/morozkin/Point2Image/internal/infrastructure/location"
	"github.com/morozkin/Point2Image/internal/infrastructure/queue"
	"github.com/morozkin/Point2Image/internal/pkg/units"
	"github.com/morozkin/Point2Image/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// newRegistry returns the registry HTTP metrics are recorded on. nil selects
// the global Prometheus registry.
var newRegistry = func() *prometheus.Registry { return nil }

func main() {
	cfg, err := config.Load(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.IsDevelopment()})

	var rdb *goredis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redis.Connect(context.Background(), redis.Config{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			PingTimeout: cfg.Redis.PingTimeout,
		})
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis connection failed")
		}
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if err := Run(context.Background(), *cfg, rdb, signals, nil); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
}

// ListenFunc serves e on addr until it is shut down.
type ListenFunc func(e *echo.Echo, addr string) error

var defaultListen ListenFunc = func(e *echo.Echo, addr string) error {
	return e.Start(addr)
}

// App is the wired service graph.
type App struct {
	Echo     *echo.Echo
	Loop     *queue.MainLoop
	Manager  *location.Manager
	Tracking *service.TrackingService
	Hub      *stream.Hub
}

// Build wires every component from cfg. rdb may be nil.
func Build(cfg config.Config, rdb *goredis.Client, log zerolog.Logger) *App {
	var device location.Device
	initial := domain.AuthorizationNotDetermined
	switch cfg.Location.Source {
	case config.SourcePush:
		device = location.NewPushDevice(cfg.Location.AutoGrant)
	default:
		device = location.NewSimulator(location.SimulatorConfig{
			Interval:   cfg.Simulator.Interval,
			StepMeters: cfg.Simulator.StepMeters,
			StartLat:   cfg.Simulator.StartLat,
			StartLng:   cfg.Simulator.StartLng,
			Seed:       cfg.Simulator.Seed,
		}, log.With().Str("component", "simulator").Logger())
		if cfg.Location.AutoGrant {
			initial = domain.AuthorizationAuthorized
		}
	}
	manager := location.NewManager(device, initial, cfg.Location.BufferSize, log.With().Str("component", "location").Logger())

	var seen ports.SeenStore = memory.NewSeenStore()
	if rdb != nil {
		seen = redis.NewSeenStore(rdb, cfg.Redis.SeenTTL)
	}

	if cfg.Flickr.APIKey == "" {
		log.Warn().Msg("FLICKR_API_KEY is empty, photo searches will fail")
	}
	photos := flickr.NewClient(cfg.Flickr.BaseURL, cfg.Flickr.APIKey, cfg.Flickr.Timeout, log.With().Str("component", "flickr").Logger())

	loop := queue.NewMainLoop(0, log.With().Str("component", "main_loop").Logger())
	hub := stream.NewHub(log.With().Str("component", "stream").Logger())

	tracking := service.NewTrackingService(
		loop,
		manager,
		session.NewFactory(manager, log.With().Str("component", "session").Logger()),
		photos,
		seen,
		units.NewDistanceFormatter("en"),
		log.With().Str("component", "tracking").Logger(),
		hub,
	)

	e := api.NewRouter(api.Dependencies{
		Tracking:  tracking,
		Locations: manager,
		Streamer:  hub,
		Loop:      loop,
		Redis:     rdb,
		JWTSecret: cfg.JWTSecret,
		Registry:  newRegistry(),
		Log:       log.With().Str("component", "http").Logger(),
	})

	return &App{Echo: e, Loop: loop, Manager: manager, Tracking: tracking, Hub: hub}
}

// Run starts the service and blocks until a signal arrives, ctx is done or
// the listener fails, then shuts everything down.
func Run(ctx context.Context, cfg config.Config, rdb *goredis.Client, signals <-chan os.Signal, listen ListenFunc) error {
	log := logger.Get()
	app := Build(cfg, rdb, log)

	if listen == nil {
		listen = defaultListen
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.Loop.Start(runCtx)
	trackingDone := make(chan struct{})
	go func() {
		defer close(trackingDone)
		app.Tracking.Run(runCtx)
	}()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("source", cfg.Location.Source).Msg("starting server")
		errCh <- listen(app.Echo, ":"+cfg.Port)
	}()

	var runErr error
	select {
	case sig := <-signals:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case <-ctx.Done():
		log.Info().Msg("context cancelled, shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	app.Hub.CloseAll()
	if err := app.Echo.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}

	cancel()
	<-trackingDone

	if rdb != nil {
		_ = rdb.Close()
	}
	return runErr
}
