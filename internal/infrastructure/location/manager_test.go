package location

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/morozkin/Point2Image/internal/core/domain"
)

type stubDevice struct {
	mu       sync.Mutex
	starts   int
	stops    int
	prompts  int
	onPrompt func(Sink)
}

func (d *stubDevice) StartUpdating(Sink) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.starts++
}

func (d *stubDevice) StopUpdating() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stops++
}

func (d *stubDevice) RequestAuthorization(sink Sink) {
	d.mu.Lock()
	d.prompts++
	fn := d.onPrompt
	d.mu.Unlock()
	if fn != nil {
		fn(sink)
	}
}

func (d *stubDevice) counts() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.starts, d.stops
}

func newTestManager(status domain.AuthorizationStatus) (*Manager, *stubDevice) {
	dev := &stubDevice{}
	return NewManager(dev, status, 0, zerolog.Nop()), dev
}

func TestManager_StartStopUpdates_RefCounted(t *testing.T) {
	m, dev := newTestManager(domain.AuthorizationAuthorized)

	m.StartUpdates()
	m.StartUpdates()
	if starts, _ := dev.counts(); starts != 1 {
		t.Fatalf("device must start once, got %d", starts)
	}

	m.StopUpdates()
	if _, stops := dev.counts(); stops != 0 {
		t.Fatalf("device stopped while a request is outstanding")
	}
	m.StopUpdates()
	if _, stops := dev.counts(); stops != 1 {
		t.Fatalf("device must stop after last request, got %d", stops)
	}

	// Extra stops are floored at zero.
	m.StopUpdates()
	m.StopUpdates()
	if _, stops := dev.counts(); stops != 1 {
		t.Fatalf("extra stops reached the device: %d", stops)
	}
	if m.Updating() {
		t.Fatal("expected no outstanding requests")
	}

	m.StartUpdates()
	if starts, _ := dev.counts(); starts != 2 {
		t.Fatalf("device must restart after floor, got %d", starts)
	}
}

func TestManager_StartStopUpdates_Concurrent(t *testing.T) {
	m, dev := newTestManager(domain.AuthorizationAuthorized)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.StartUpdates()
			m.StopUpdates()
		}()
	}
	wg.Wait()

	if m.Updating() {
		t.Fatal("reference count leaked")
	}
	starts, stops := dev.counts()
	if starts != stops {
		t.Fatalf("unbalanced device calls: %d starts, %d stops", starts, stops)
	}
}

func TestManager_LiveUpdates_DropsOldestWhenFull(t *testing.T) {
	m, _ := newTestManager(domain.AuthorizationAuthorized)
	updates, cancel := m.LiveUpdates()
	defer cancel()

	for i := 0; i < DefaultBufferSize+5; i++ {
		m.PublishFix(domain.LocationFix{Latitude: float64(i)})
	}

	if len(updates) != DefaultBufferSize {
		t.Fatalf("expected %d buffered, got %d", DefaultBufferSize, len(updates))
	}
	first := <-updates
	if first.Fix.Latitude != 5 {
		t.Fatalf("expected oldest five dropped, first is %v", first.Fix.Latitude)
	}
}

func TestManager_LiveUpdates_FanOutAndUnsubscribe(t *testing.T) {
	m, _ := newTestManager(domain.AuthorizationAuthorized)
	a, cancelA := m.LiveUpdates()
	b, cancelB := m.LiveUpdates()
	defer cancelB()

	m.PublishFix(domain.LocationFix{Latitude: 1})
	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("expected both subscribers to receive, got %d/%d", len(a), len(b))
	}

	cancelA()
	cancelA() // idempotent
	m.PublishFix(domain.LocationFix{Latitude: 2})
	if len(a) != 1 {
		t.Fatalf("unsubscribed channel still receives")
	}
	if len(b) != 2 {
		t.Fatalf("remaining subscriber missed update")
	}
}

func TestManager_AuthorizationChanges_CurrentFirstThenDistinct(t *testing.T) {
	m, _ := newTestManager(domain.AuthorizationNotDetermined)
	changes, cancel := m.AuthorizationChanges()
	defer cancel()

	if got := <-changes; got != domain.AuthorizationNotDetermined {
		t.Fatalf("expected current value first, got %s", got)
	}

	m.SetAuthorization(domain.AuthorizationNotDetermined) // duplicate
	m.SetAuthorization(domain.AuthorizationAuthorized)
	m.SetAuthorization(domain.AuthorizationAuthorized) // duplicate
	m.SetAuthorization(domain.AuthorizationDenied)

	want := []domain.AuthorizationStatus{domain.AuthorizationAuthorized, domain.AuthorizationDenied}
	for _, w := range want {
		select {
		case got := <-changes:
			if got != w {
				t.Fatalf("expected %s, got %s", w, got)
			}
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for %s", w)
		}
	}
	if len(changes) != 0 {
		t.Fatalf("duplicates were broadcast")
	}
	if m.CurrentAuthorization() != domain.AuthorizationDenied {
		t.Fatalf("unexpected current status %s", m.CurrentAuthorization())
	}
}

func TestManager_RequestAuthorization_ResolvesImmediately(t *testing.T) {
	for _, status := range []domain.AuthorizationStatus{domain.AuthorizationAuthorized, domain.AuthorizationDenied} {
		m, dev := newTestManager(status)
		got, err := m.RequestAuthorization(context.Background())
		if err != nil || got != status {
			t.Fatalf("expected %s, got %s (%v)", status, got, err)
		}
		if dev.prompts != 0 {
			t.Fatalf("determined status must not prompt")
		}
	}
}

func TestManager_RequestAuthorization_WaitsForDecision(t *testing.T) {
	m, dev := newTestManager(domain.AuthorizationNotDetermined)
	dev.onPrompt = func(sink Sink) {
		go func() {
			time.Sleep(10 * time.Millisecond)
			sink.SetAuthorization(domain.AuthorizationAuthorized)
		}()
	}

	got, err := m.RequestAuthorization(context.Background())
	if err != nil || got != domain.AuthorizationAuthorized {
		t.Fatalf("expected authorized, got %s (%v)", got, err)
	}
}

func TestManager_RequestAuthorization_Cancelled(t *testing.T) {
	m, _ := newTestManager(domain.AuthorizationNotDetermined)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	got, err := m.RequestAuthorization(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if got != domain.AuthorizationNotDetermined {
		t.Fatalf("expected not determined, got %s", got)
	}
}

func TestManager_ReportError_OnlyRevocationReachesSubscribers(t *testing.T) {
	m, _ := newTestManager(domain.AuthorizationAuthorized)
	updates, cancel := m.LiveUpdates()
	defer cancel()

	m.ReportError(domain.ErrLocationUnknown)
	m.ReportError(errors.New("gps glitch"))
	if len(updates) != 0 {
		t.Fatalf("non-terminal errors must be dropped")
	}

	m.ReportError(fmt.Errorf("device: %w", domain.ErrPermissionRevoked))
	u := <-updates
	if !u.IsPermissionRevoked() {
		t.Fatalf("expected permission revoked update, got %+v", u)
	}
}
