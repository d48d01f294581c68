// Package session turns the raw location update stream into a throttled,
// distance-accumulating stream of session snapshots.
package session

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/morozkin/Point2Image/internal/core/domain"
	"github.com/morozkin/Point2Image/internal/core/ports"
	"github.com/morozkin/Point2Image/internal/pkg/metrics"
)

// MinStepMeters is the distance below which a fix is considered the same
// place as the last accepted one.
const MinStepMeters = 50.0

// Factory creates one aggregator per tracking session.
type Factory struct {
	manager ports.LocationManager
	log     zerolog.Logger

	minStep float64
}

// NewFactory returns a ports.SessionStreamFactory backed by manager.
func NewFactory(manager ports.LocationManager, log zerolog.Logger) *Factory {
	return &Factory{manager: manager, log: log, minStep: MinStepMeters}
}

// NewStream starts a session and returns its snapshot stream. The stream is
// closed when ctx is cancelled, when permission is revoked, or when the
// update source goes away. It is never restarted.
func (f *Factory) NewStream(ctx context.Context) <-chan domain.SessionSnapshot {
	out := make(chan domain.SessionSnapshot)

	if f.manager.CurrentAuthorization() != domain.AuthorizationAuthorized {
		metrics.SessionsEndedTotal.WithLabelValues("unauthorized").Inc()
		close(out)
		return out
	}

	s := &aggregator{
		manager: f.manager,
		log:     f.log,
		minStep: f.minStep,
		out:     out,
		done:    make(chan struct{}),
	}
	fixes, errs := s.start()
	go s.watchErrors(ctx, errs)
	go s.run(ctx, fixes)

	return out
}

const (
	stateInitialized int32 = iota
	stateRunning
	stateFinished
)

type aggregator struct {
	manager ports.LocationManager
	log     zerolog.Logger
	minStep float64
	out     chan domain.SessionSnapshot

	// done is closed by finish.
	done        chan struct{}
	state       atomic.Int32
	unsubscribe []func()
}

// start opens two subscriptions: one feeds fixes to run, the other is drained
// by watchErrors so a revocation is seen even while run waits on the consumer.
func (s *aggregator) start() (fixes, errs <-chan domain.LocationUpdate) {
	s.state.Store(stateRunning)
	fixes, unsubFixes := s.manager.LiveUpdates()
	errs, unsubErrs := s.manager.LiveUpdates()
	s.unsubscribe = []func(){unsubFixes, unsubErrs}
	s.manager.StartUpdates()
	return fixes, errs
}

// finish releases the subscriptions and the start-updates request. Only the
// first caller past the running state does the work.
func (s *aggregator) finish(reason string) {
	if !s.state.CompareAndSwap(stateRunning, stateFinished) {
		return
	}
	close(s.done)
	s.manager.StopUpdates()
	for _, unsubscribe := range s.unsubscribe {
		unsubscribe()
	}
	metrics.SessionsEndedTotal.WithLabelValues(reason).Inc()
	s.log.Debug().Str("reason", reason).Msg("location session finished")
}

func (s *aggregator) watchErrors(ctx context.Context, errs <-chan domain.LocationUpdate) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case update, ok := <-errs:
			if !ok {
				return
			}
			if update.Err == nil {
				continue
			}
			if update.IsPermissionRevoked() {
				s.finish("permission_revoked")
				return
			}
			s.log.Debug().Err(update.Err).Msg("non-terminal location error ignored")
		}
	}
}

func (s *aggregator) run(ctx context.Context, fixes <-chan domain.LocationUpdate) {
	defer close(s.out)

	var (
		snapshot domain.SessionSnapshot
		last     *domain.LocationFix
	)

	for {
		select {
		case <-ctx.Done():
			s.finish("cancelled")
			return

		case <-s.done:
			return

		case update, ok := <-fixes:
			if !ok {
				s.finish("source_closed")
				return
			}
			if update.Fix == nil {
				continue
			}

			fix := *update.Fix
			if last != nil && last.DistanceTo(fix) < s.minStep {
				metrics.LocationFixesTotal.WithLabelValues("dropped").Inc()
				continue
			}
			metrics.LocationFixesTotal.WithLabelValues("accepted").Inc()

			last = &fix
			snapshot = snapshot.Append(fix)

			if s.state.Load() == stateFinished {
				return
			}
			select {
			case s.out <- snapshot:
				metrics.SnapshotsEmittedTotal.Inc()
			case <-s.done:
				return
			case <-ctx.Done():
				s.finish("cancelled")
				return
			}
		}
	}
}
