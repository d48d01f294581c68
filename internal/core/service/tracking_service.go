package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/morozkin/Point2Image/internal/core/domain"
	"github.com/morozkin/Point2Image/internal/core/ports"
	"github.com/morozkin/Point2Image/internal/pkg/metrics"
)

// trackingTask is one background consumption of a session stream.
type trackingTask struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// TrackingService is the walk-feed state machine. Every field below main is
// owned by the main execution context and only touched inside main.Do.
//
// Authorization changes: Denied cancels any task and shows NoLocationAccess.
// Authorized and NotDetermined reset the state to Empty, except while a task
// is waiting on the permission prompt or a session is recording; those are
// left alone so a pending Start is not lost to the initial status replay.
type TrackingService struct {
	main      ports.Executor
	auth      ports.AuthorizationManager
	sessions  ports.SessionStreamFactory
	photos    ports.PhotoSearcher
	seen      ports.SeenStore
	distance  ports.DistanceFormatter
	observers []ports.StateObserver
	log       zerolog.Logger

	// baseCtx parents every tracking task; cancelled on Run exit.
	baseCtx    context.Context
	baseCancel context.CancelFunc

	state    domain.TrackingState
	task     *trackingTask
	lastDone <-chan struct{}
}

// NewTrackingService builds the orchestrator. The initial state reflects the
// current authorization: denied maps to NoLocationAccess, anything else to Empty.
func NewTrackingService(
	main ports.Executor,
	auth ports.AuthorizationManager,
	sessions ports.SessionStreamFactory,
	photos ports.PhotoSearcher,
	seen ports.SeenStore,
	distance ports.DistanceFormatter,
	log zerolog.Logger,
	observers ...ports.StateObserver,
) *TrackingService {
	baseCtx, baseCancel := context.WithCancel(context.Background())

	s := &TrackingService{
		main:       main,
		auth:       auth,
		sessions:   sessions,
		photos:     photos,
		seen:       seen,
		distance:   distance,
		observers:  observers,
		log:        log,
		baseCtx:    baseCtx,
		baseCancel: baseCancel,
		state:      domain.EmptyState(),
	}
	if auth.CurrentAuthorization() == domain.AuthorizationDenied {
		s.state = domain.NoLocationAccessState()
	}
	return s
}

// Run reacts to authorization changes until ctx is cancelled, then cancels
// any active tracking task.
func (s *TrackingService) Run(ctx context.Context) {
	defer s.baseCancel()

	changes, unsubscribe := s.auth.AuthorizationChanges()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case status, ok := <-changes:
			if !ok {
				return
			}
			if err := s.main.Do(ctx, func() { s.onAuthorizationChange(status) }); err != nil {
				return
			}
		}
	}
}

// State returns the current tracking state.
func (s *TrackingService) State(ctx context.Context) (domain.TrackingState, error) {
	var state domain.TrackingState
	if err := s.main.Do(ctx, func() { state = s.state }); err != nil {
		return domain.TrackingState{}, err
	}
	return state, nil
}

// Start begins a tracking session. It is a no-op when location access is
// denied or a session is already starting or recording.
func (s *TrackingService) Start(ctx context.Context) error {
	return s.main.Do(ctx, func() {
		if !s.state.RecordingAvailable() || s.state.Recording() || s.task != nil {
			return
		}

		taskCtx, cancel := context.WithCancel(s.baseCtx)
		t := &trackingTask{
			id:     uuid.NewString(),
			ctx:    taskCtx,
			cancel: cancel,
			done:   make(chan struct{}),
		}
		prev := s.lastDone
		s.task = t
		s.lastDone = t.done

		s.log.Info().Str("session_id", t.id).Msg("tracking requested")
		go s.track(t, prev)
	})
}

// Stop ends the recording session, keeping distance and images.
func (s *TrackingService) Stop(ctx context.Context) error {
	return s.main.Do(ctx, func() {
		if !s.state.Recording() {
			return
		}
		if s.task != nil {
			s.log.Info().Str("session_id", s.task.id).Msg("tracking stopped")
			s.task.cancel()
			s.task = nil
		}
		s.setState(s.state.WithRecording(false))
	})
}

// onAuthorizationChange runs on the main context.
func (s *TrackingService) onAuthorizationChange(status domain.AuthorizationStatus) {
	s.log.Debug().Str("status", string(status)).Msg("authorization changed")

	switch status {
	case domain.AuthorizationDenied:
		s.cancelTask()
		s.setState(domain.NoLocationAccessState())
	default:
		// A pending start may still be waiting for the prompt to resolve.
		if s.task == nil && !s.state.Recording() {
			s.setState(domain.EmptyState())
		}
	}
}

func (s *TrackingService) cancelTask() {
	if s.task == nil {
		return
	}
	s.log.Info().Str("session_id", s.task.id).Msg("tracking cancelled")
	s.task.cancel()
	s.task = nil
}

func (s *TrackingService) setState(state domain.TrackingState) {
	s.state = state
	for _, o := range s.observers {
		o.Publish(state)
	}
}

// current reports whether t is still the live task. Main context only.
func (s *TrackingService) current(t *trackingTask) bool {
	return s.task == t && t.ctx.Err() == nil
}

// track is the background consumption task for one session.
func (s *TrackingService) track(t *trackingTask, prev <-chan struct{}) {
	defer close(t.done)
	defer t.cancel()

	log := s.log.With().Str("session_id", t.id).Logger()

	// The previous task must have fully released its stream first.
	if prev != nil {
		select {
		case <-prev:
		case <-t.ctx.Done():
			return
		}
	}

	if err := s.seen.Reset(t.ctx, t.id); err != nil {
		log.Warn().Err(err).Msg("failed to reset displayed photo set")
	}

	status, err := s.auth.RequestAuthorization(t.ctx)
	if err != nil || status != domain.AuthorizationAuthorized {
		log.Info().Str("status", string(status)).Err(err).Msg("tracking not authorized")
		_ = s.main.Do(s.baseCtx, func() {
			if s.task == t {
				s.task = nil
			}
		})
		return
	}

	started := false
	if err := s.main.Do(t.ctx, func() {
		if !s.current(t) {
			return
		}
		started = true
		s.setState(domain.TimelineState(s.distance.Format(0), nil, true))
	}); err != nil || !started {
		return
	}
	metrics.SessionsStartedTotal.Inc()
	log.Info().Msg("tracking started")

	for snapshot := range s.sessions.NewStream(t.ctx) {
		s.consume(t, log, snapshot)
	}

	if t.ctx.Err() != nil {
		return
	}

	_ = s.main.Do(s.baseCtx, func() {
		if !s.current(t) {
			return
		}
		s.task = nil
		s.setState(s.state.WithRecording(false))
		log.Info().Msg("location session ended")
	})
}

// consume handles one snapshot: one photo search, at most one accepted photo.
func (s *TrackingService) consume(t *trackingTask, log zerolog.Logger, snapshot domain.SessionSnapshot) {
	fix, ok := snapshot.Last()
	if !ok {
		return
	}

	candidates, err := s.photos.Search(t.ctx, fix.Latitude, fix.Longitude)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Warn().Err(err).
				Float64("lat", fix.Latitude).
				Float64("lng", fix.Longitude).
				Msg("photo search failed")
		}
		metrics.PhotosProcessedTotal.WithLabelValues("search_failed").Inc()
		return
	}

	photo, found, err := s.firstUnseen(t, candidates)
	if err != nil {
		log.Warn().Err(err).Msg("displayed photo set unavailable")
		metrics.PhotosProcessedTotal.WithLabelValues("seen_store_failed").Inc()
		return
	}
	if !found {
		metrics.PhotosProcessedTotal.WithLabelValues("no_new").Inc()
		return
	}

	image := domain.NewCaptionedImage(photo)
	distance := s.distance.Format(snapshot.Distance)

	_ = s.main.Do(t.ctx, func() {
		if !s.current(t) {
			return
		}
		var existing []domain.CaptionedImage
		if s.state.Kind == domain.StateTimeline {
			existing = s.state.Images
		}
		images := make([]domain.CaptionedImage, 0, len(existing)+1)
		images = append(images, image)
		images = append(images, existing...)
		s.setState(domain.TimelineState(distance, images, true))
	})

	metrics.PhotosProcessedTotal.WithLabelValues("accepted").Inc()
	log.Debug().Str("photo_id", photo.ID).Str("distance", distance).Msg("photo accepted")
}

// firstUnseen picks the first candidate, in response order, not yet displayed
// in this session and marks it as displayed.
func (s *TrackingService) firstUnseen(t *trackingTask, candidates []domain.PhotoCandidate) (domain.PhotoCandidate, bool, error) {
	for _, c := range candidates {
		seen, err := s.seen.Contains(t.ctx, t.id, c.ID)
		if err != nil {
			return domain.PhotoCandidate{}, false, err
		}
		if seen {
			continue
		}
		if err := s.seen.Add(t.ctx, t.id, c.ID); err != nil {
			return domain.PhotoCandidate{}, false, err
		}
		return c, true, nil
	}
	return domain.PhotoCandidate{}, false, nil
}
