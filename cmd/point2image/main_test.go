package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/morozkin/Point2Image/internal/api/stream"
	"github.com/morozkin/Point2Image/internal/core/domain"
	"github.com/morozkin/Point2Image/internal/infrastructure/config"
	"github.com/morozkin/Point2Image/pkg/logger"
)

var errListen = errors.New("listen failed")

func TestMain(m *testing.M) {
	// Every Build registers HTTP metrics; keep them off the global registry.
	newRegistry = prometheus.NewRegistry
	os.Exit(m.Run())
}

func testConfig(t *testing.T, flickrURL string) config.Config {
	t.Helper()
	t.Cleanup(logger.Reset)
	logger.Init(logger.Options{Level: "error"})

	return config.Config{
		Port: "0",
		Env:  "test",
		Location: config.LocationConfig{
			Source:     config.SourcePush,
			BufferSize: 10,
		},
		Flickr: config.FlickrConfig{APIKey: "key", BaseURL: flickrURL},
	}
}

func blockingListen(release <-chan struct{}) ListenFunc {
	return func(*echo.Echo, string) error {
		<-release
		return nil
	}
}

func TestRunHandlesSignal(t *testing.T) {
	cfg := testConfig(t, "")
	signals := make(chan os.Signal, 1)
	release := make(chan struct{})
	defer close(release)

	go func() {
		time.Sleep(10 * time.Millisecond)
		signals <- syscall.SIGINT
	}()

	if err := Run(context.Background(), cfg, nil, signals, blockingListen(release)); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
}

func TestRunContextCancel(t *testing.T) {
	cfg := testConfig(t, "")
	release := make(chan struct{})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Run(ctx, cfg, nil, make(chan os.Signal), blockingListen(release)); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
}

func TestRunListenError(t *testing.T) {
	cfg := testConfig(t, "")

	err := Run(context.Background(), cfg, nil, make(chan os.Signal), func(*echo.Echo, string) error {
		return errListen
	})
	if !errors.Is(err, errListen) {
		t.Fatalf("expected listen error, got %v", err)
	}
}

func TestRunClosesRedis(t *testing.T) {
	cfg := testConfig(t, "")
	srv := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	release := make(chan struct{})
	defer close(release)

	if err := Run(ctx, cfg, rdb, make(chan os.Signal), blockingListen(release)); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if err := rdb.Ping(context.Background()).Err(); !errors.Is(err, goredis.ErrClosed) {
		t.Fatalf("expected closed client, got %v", err)
	}
}

// A walker starts tracking, the device grants access and posts a fix, and the
// feed shows the first photo near it.
func TestBuild_WalkFeedEndToEnd(t *testing.T) {
	flickrSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"photos":{"page":1,"pages":1,"total":1,"photo":[
			{"id":"42","secret":"s","server":"7","latitude":"52.5","longitude":"13.4"}]},"stat":"ok"}`))
	}))
	defer flickrSrv.Close()

	cfg := testConfig(t, flickrSrv.URL)
	srv := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	defer rdb.Close()

	app := Build(cfg, rdb, logger.Get())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	app.Loop.Start(ctx)
	go app.Tracking.Run(ctx)

	call := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		app.Echo.ServeHTTP(rec, req)
		return rec
	}
	eventually := func(what string, cond func() bool) {
		t.Helper()
		deadline := time.Now().Add(2 * time.Second)
		for !cond() {
			if time.Now().After(deadline) {
				t.Fatalf("timeout waiting for %s", what)
			}
			time.Sleep(5 * time.Millisecond)
		}
	}
	state := func() stream.StateView {
		var v stream.StateView
		_ = json.Unmarshal(call(http.MethodGet, "/v1/tracking", "").Body.Bytes(), &v)
		return v
	}

	if rec := call(http.MethodPost, "/v1/tracking/start", ""); rec.Code != http.StatusOK {
		t.Fatalf("start: expected 200, got %d", rec.Code)
	}
	if rec := call(http.MethodPut, "/v1/authorization", `{"status":"authorized"}`); rec.Code != http.StatusOK {
		t.Fatalf("authorize: expected 200, got %d", rec.Code)
	}
	eventually("location updates", app.Manager.Updating)

	if rec := call(http.MethodPost, "/v1/locations", `{"latitude":52.5,"longitude":13.4}`); rec.Code != http.StatusAccepted {
		t.Fatalf("fix: expected 202, got %d", rec.Code)
	}
	eventually("first photo", func() bool { return len(state().Images) == 1 })

	v := state()
	if v.Kind != domain.StateTimeline || !v.IsRecording || v.Distance != "0 m" {
		t.Fatalf("unexpected state: %+v", v)
	}
	if v.Images[0].URL != "https://live.staticflickr.com/7/42_s_c.jpg" || v.Images[0].Caption != "52.5, 13.4" {
		t.Fatalf("unexpected image: %+v", v.Images[0])
	}

	if rec := call(http.MethodPost, "/v1/tracking/stop", ""); rec.Code != http.StatusOK {
		t.Fatalf("stop: expected 200, got %d", rec.Code)
	}
	eventually("updates released", func() bool { return !app.Manager.Updating() })
	if v := state(); v.IsRecording || len(v.Images) != 1 {
		t.Fatalf("stop must keep the feed: %+v", v)
	}

	if rec := call(http.MethodPut, "/v1/authorization", `{"status":"denied"}`); rec.Code != http.StatusOK {
		t.Fatalf("deny: expected 200, got %d", rec.Code)
	}
	eventually("no location access", func() bool { return state().Kind == domain.StateNoLocationAccess })
}
