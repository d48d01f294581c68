package location

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/morozkin/Point2Image/internal/core/domain"
)

// metersPerDegree is the length of one degree of latitude.
const metersPerDegree = 111_195.0

// SimulatorConfig controls the simulated walk.
type SimulatorConfig struct {
	Interval   time.Duration
	StepMeters float64
	StartLat   float64
	StartLng   float64
	Seed       int64
}

// Simulator is a Device that walks a random path from a start point,
// emitting one fix per tick. Authorization requests are granted.
type Simulator struct {
	cfg SimulatorConfig
	log zerolog.Logger
	now func() time.Time

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	rng     *rand.Rand
	lat     float64
	lng     float64
	heading float64
}

func NewSimulator(cfg SimulatorConfig, log zerolog.Logger) *Simulator {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.StepMeters <= 0 {
		cfg.StepMeters = 60
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	return &Simulator{
		cfg:     cfg,
		log:     log,
		now:     time.Now,
		rng:     rng,
		lat:     cfg.StartLat,
		lng:     cfg.StartLng,
		heading: rng.Float64() * 2 * math.Pi,
	}
}

// StartUpdating begins the walk. The walk resumes from the last position.
func (s *Simulator) StartUpdating(sink Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.walk(ctx, sink, s.done)
}

// StopUpdating halts the walk and waits for the walker goroutine to exit.
func (s *Simulator) StopUpdating() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Simulator) RequestAuthorization(sink Sink) {
	sink.SetAuthorization(domain.AuthorizationAuthorized)
}

func (s *Simulator) walk(ctx context.Context, sink Sink, done chan struct{}) {
	defer close(done)

	s.log.Debug().Dur("interval", s.cfg.Interval).Msg("simulated walk started")
	defer s.log.Debug().Msg("simulated walk stopped")

	sink.Publish(domain.FixUpdate(s.position()))

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sink.Publish(domain.FixUpdate(s.step()))
		}
	}
}

func (s *Simulator) position() domain.LocationFix {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.LocationFix{Latitude: s.lat, Longitude: s.lng, Timestamp: s.now()}
}

// step advances one stride, turning by up to ±30° so the path wanders.
func (s *Simulator) step() domain.LocationFix {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.heading += (s.rng.Float64() - 0.5) * math.Pi / 3
	dLat := s.cfg.StepMeters * math.Cos(s.heading) / metersPerDegree
	dLng := s.cfg.StepMeters * math.Sin(s.heading) / (metersPerDegree * math.Max(math.Cos(s.lat*math.Pi/180), 1e-6))

	s.lat = math.Max(-90, math.Min(90, s.lat+dLat))
	s.lng = math.Remainder(s.lng+dLng, 360)

	return domain.LocationFix{Latitude: s.lat, Longitude: s.lng, Timestamp: s.now()}
}
