package queue

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/morozkin/Point2Image/internal/core/domain"
)

const defaultBuffer = 64

// MainLoop is the single execution context that owns tracking state. Jobs
// run one at a time, in submission order, on one worker goroutine.
type MainLoop struct {
	jobs    chan func()
	stopped chan struct{}
	once    sync.Once
	started atomic.Bool
	log     zerolog.Logger
}

// NewMainLoop creates a MainLoop whose queue holds up to buffer pending jobs.
// If buffer <= 0, defaultBuffer is used.
func NewMainLoop(buffer int, log zerolog.Logger) *MainLoop {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &MainLoop{
		jobs:    make(chan func(), buffer),
		stopped: make(chan struct{}),
		log:     log,
	}
}

// Start launches the worker goroutine. It stops when ctx is cancelled; jobs
// still queued at that point are discarded.
func (l *MainLoop) Start(ctx context.Context) {
	if !l.started.CompareAndSwap(false, true) {
		return
	}
	go l.run(ctx)
}

// Running reports whether the loop has started and not yet stopped.
func (l *MainLoop) Running() bool {
	if !l.started.Load() {
		return false
	}
	select {
	case <-l.stopped:
		return false
	default:
		return true
	}
}

// Do runs fn on the main loop and waits for it to finish. fn must not call Do.
func (l *MainLoop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	job := func() {
		defer close(done)
		fn()
	}

	select {
	case l.jobs <- job:
	case <-l.stopped:
		return domain.ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-l.stopped:
		// The job may have completed right as the loop stopped.
		select {
		case <-done:
			return nil
		default:
			return domain.ErrLoopStopped
		}
	}
}

func (l *MainLoop) run(ctx context.Context) {
	defer l.once.Do(func() { close(l.stopped) })

	for {
		select {
		case <-ctx.Done():
			l.log.Debug().Msg("main loop stopped")
			return
		case job := <-l.jobs:
			l.execute(job)
		}
	}
}

// execute shields the loop from a panicking job.
func (l *MainLoop) execute(job func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error().Interface("panic", r).Msg("main loop job panicked")
		}
	}()
	job()
}
