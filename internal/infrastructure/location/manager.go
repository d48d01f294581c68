// Package location provides the in-process location capability: it brokers
// authorization status and raw location updates between a Device and the
// tracking sessions that consume them.
package location

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/morozkin/Point2Image/internal/core/domain"
	"github.com/morozkin/Point2Image/internal/pkg/metrics"
)

const (
	// DefaultBufferSize is the per-subscriber live update queue capacity.
	DefaultBufferSize = 10

	authBufferSize = 4
)

// Sink receives what a Device observes.
type Sink interface {
	Publish(update domain.LocationUpdate)
	SetAuthorization(status domain.AuthorizationStatus)
}

// Device is the hardware (or simulated) location source.
type Device interface {
	StartUpdating(sink Sink)
	StopUpdating()
	// RequestAuthorization prompts for permission. The outcome, if any, is
	// reported later through sink.SetAuthorization.
	RequestAuthorization(sink Sink)
}

// Manager implements ports.LocationManager on top of a Device.
type Manager struct {
	device     Device
	bufferSize int
	log        zerolog.Logger

	requests atomic.Int64

	mu         sync.Mutex
	status     domain.AuthorizationStatus
	authSubs   map[chan domain.AuthorizationStatus]struct{}
	updateSubs map[chan domain.LocationUpdate]struct{}
}

// NewManager creates a Manager with the given initial authorization status.
// If bufferSize <= 0, DefaultBufferSize is used.
func NewManager(device Device, initial domain.AuthorizationStatus, bufferSize int, log zerolog.Logger) *Manager {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Manager{
		device:     device,
		bufferSize: bufferSize,
		log:        log,
		status:     initial,
		authSubs:   make(map[chan domain.AuthorizationStatus]struct{}),
		updateSubs: make(map[chan domain.LocationUpdate]struct{}),
	}
}

// CurrentAuthorization returns the latest known status.
func (m *Manager) CurrentAuthorization() domain.AuthorizationStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// AuthorizationChanges subscribes to status changes. The current status is
// delivered immediately.
func (m *Manager) AuthorizationChanges() (<-chan domain.AuthorizationStatus, func()) {
	ch := make(chan domain.AuthorizationStatus, authBufferSize)

	m.mu.Lock()
	ch <- m.status
	m.authSubs[ch] = struct{}{}
	m.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.authSubs, ch)
			m.mu.Unlock()
		})
	}
}

// RequestAuthorization resolves immediately unless the status is not yet
// determined, in which case it prompts the device and waits for an answer.
func (m *Manager) RequestAuthorization(ctx context.Context) (domain.AuthorizationStatus, error) {
	changes, unsubscribe := m.AuthorizationChanges()
	defer unsubscribe()

	switch status := <-changes; status {
	case domain.AuthorizationAuthorized, domain.AuthorizationDenied:
		return status, nil
	}

	m.log.Debug().Msg("requesting location authorization")
	m.device.RequestAuthorization(m)

	for {
		select {
		case <-ctx.Done():
			return domain.AuthorizationNotDetermined, ctx.Err()
		case status := <-changes:
			if status != domain.AuthorizationNotDetermined {
				return status, nil
			}
		}
	}
}

// SetAuthorization records a new status and broadcasts it if it changed.
func (m *Manager) SetAuthorization(status domain.AuthorizationStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if status == m.status {
		return
	}
	m.log.Info().Str("from", string(m.status)).Str("to", string(status)).Msg("authorization status changed")
	m.status = status

	for ch := range m.authSubs {
		pushLatest(ch, status)
	}
}

// StartUpdates registers one request for live updates. The device starts on
// the first outstanding request.
func (m *Manager) StartUpdates() {
	n := m.requests.Add(1)
	metrics.LocationUpdateRequests.Set(float64(n))
	if n != 1 {
		return
	}
	m.log.Debug().Msg("start updating location")
	m.device.StartUpdating(m)
}

// StopUpdates withdraws one request. The device stops when none remain. The
// counter never drops below zero.
func (m *Manager) StopUpdates() {
	for {
		cur := m.requests.Load()
		if cur <= 0 {
			return
		}
		if !m.requests.CompareAndSwap(cur, cur-1) {
			continue
		}
		metrics.LocationUpdateRequests.Set(float64(cur - 1))
		if cur == 1 {
			m.log.Debug().Msg("stop updating location")
			m.device.StopUpdating()
		}
		return
	}
}

// Updating reports whether at least one start request is outstanding.
func (m *Manager) Updating() bool {
	return m.requests.Load() > 0
}

// LiveUpdates subscribes to raw updates. Each subscriber has its own queue of
// bufferSize updates; when full, the oldest queued update is discarded.
func (m *Manager) LiveUpdates() (<-chan domain.LocationUpdate, func()) {
	ch := make(chan domain.LocationUpdate, m.bufferSize)

	m.mu.Lock()
	m.updateSubs[ch] = struct{}{}
	m.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.updateSubs, ch)
			m.mu.Unlock()
		})
	}
}

// Publish fans an update out to all live subscribers.
func (m *Manager) Publish(update domain.LocationUpdate) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for ch := range m.updateSubs {
		if pushLatest(ch, update) {
			metrics.LocationUpdatesDropped.Inc()
		}
	}
}

// PublishFix is a convenience for Publish(domain.FixUpdate(fix)).
func (m *Manager) PublishFix(fix domain.LocationFix) {
	m.Publish(domain.FixUpdate(fix))
}

// ReportError classifies a device error. Only permission revocation reaches
// subscribers; anything else is logged and dropped.
func (m *Manager) ReportError(err error) {
	if errors.Is(err, domain.ErrPermissionRevoked) {
		metrics.LocationErrorsTotal.WithLabelValues("permission_revoked").Inc()
		m.log.Error().Err(err).Msg("location permission revoked")
		m.Publish(domain.ErrorUpdate(err))
		return
	}
	metrics.LocationErrorsTotal.WithLabelValues("other").Inc()
	m.log.Error().Err(err).Msg("location device error")
}

// pushLatest sends v on ch, evicting the oldest element when ch is full. It
// reports whether an element was evicted. Callers serialize sends per channel.
func pushLatest[T any](ch chan T, v T) bool {
	select {
	case ch <- v:
		return false
	default:
	}

	evicted := false
	select {
	case <-ch:
		evicted = true
	default:
	}

	select {
	case ch <- v:
	default:
	}
	return evicted
}
