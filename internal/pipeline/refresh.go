// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/pdiddy/research-agent/internal/handoff"
	"github.com/pdiddy/research-agent/internal/logging"
	"github.com/pdiddy/research-agent/pkg/types"
)

// DefaultRefreshInterval is the pause between background fetches.
const DefaultRefreshInterval = 10 * time.Second

// ErrRefresherRunning is returned by Start on a loop that is already running.
var ErrRefresherRunning = errors.New("refresher already running")

// SettingsLoader supplies the current topic and batch size.
type SettingsLoader interface {
	Load() (types.Settings, error)
}

// PaperCache stores each fetched batch.
type PaperCache interface {
	CachePapers(ctx context.Context, topic string, docs []types.Document) error
}

// Refresher fetches papers for the configured topic on a fixed interval and
// keeps the latest batch. A failed tick is logged and the loop carries on.
type Refresher struct {
	orch     *Orchestrator
	settings SettingsLoader
	cache    PaperCache
	channel  *handoff.Channel
	interval time.Duration
	log      *slog.Logger

	mu        sync.Mutex
	running   bool
	stopCh    chan struct{}
	done      chan struct{}
	current   types.Settings
	fetchedAt time.Time
	failures  int
}

// RefresherOption configures a Refresher.
type RefresherOption func(*Refresher)

// WithInterval sets the pause between ticks.
func WithInterval(d time.Duration) RefresherOption {
	return func(r *Refresher) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithPaperCache stores every fetched batch in c.
func WithPaperCache(c PaperCache) RefresherOption {
	return func(r *Refresher) { r.cache = c }
}

// NewRefresher returns a stopped Refresher.
func NewRefresher(orch *Orchestrator, settings SettingsLoader, log *slog.Logger, opts ...RefresherOption) *Refresher {
	log = logging.OrDiscard(log).With("component", "refresher")
	r := &Refresher{
		orch:     orch,
		settings: settings,
		channel:  handoff.New(log),
		interval: DefaultRefreshInterval,
		log:      log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start launches the loop. The first fetch happens immediately, then one
// every interval until Stop is called or ctx is cancelled.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.activeLocked() {
		return ErrRefresherRunning
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.done = make(chan struct{})

	go r.run(ctx, r.stopCh, r.done)
	r.log.Info("refresher started", "interval", r.interval)
	return nil
}

// Stop halts the loop and waits for an in-flight tick to return. Stopping a
// loop that is not running is a no-op.
func (r *Refresher) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	close(r.stopCh)
	done := r.done
	r.mu.Unlock()

	<-done
	r.log.Info("refresher stopped")
}

// Running reports whether the loop is active.
func (r *Refresher) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeLocked()
}

// activeLocked reports whether a started loop has not yet exited. A loop
// ended by its parent context counts as inactive. Callers hold r.mu.
func (r *Refresher) activeLocked() bool {
	if !r.running {
		return false
	}
	select {
	case <-r.done:
		return false
	default:
		return true
	}
}

func (r *Refresher) run(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	// The tick context ends on Stop as well as on parent cancellation so an
	// in-flight fetch does not hold up shutdown.
	tickCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-stop:
			cancel()
		case <-tickCtx.Done():
		}
	}()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-tickCtx.Done():
			return
		case <-timer.C:
			if err := r.tick(tickCtx); err != nil && tickCtx.Err() == nil {
				r.log.Error("refresh failed", "error", err)
			}
			timer.Reset(r.interval)
		}
	}
}

// tick runs one fetch cycle.
func (r *Refresher) tick(ctx context.Context) error {
	s, err := r.settings.Load()
	if err != nil {
		r.countFailure()
		return err
	}
	docs, err := r.orch.Papers(ctx, s.Topic, s.MaxResults)
	if err != nil {
		r.countFailure()
		return err
	}

	r.mu.Lock()
	r.channel.Publish(handoff.TopicPapers, docs)
	r.current = s
	r.fetchedAt = time.Now()
	r.mu.Unlock()
	r.log.Info("fetched papers", "topic", s.Topic, "count", len(docs))

	if r.cache != nil {
		if err := r.cache.CachePapers(ctx, s.Topic, docs); err != nil {
			r.log.Warn("caching papers", "topic", s.Topic, "error", err)
		}
	}
	return nil
}

func (r *Refresher) countFailure() {
	r.mu.Lock()
	r.failures++
	r.mu.Unlock()
}

// Latest returns the most recent batch and the settings it was fetched
// with. The boolean is false before the first successful tick.
func (r *Refresher) Latest() ([]types.Document, types.Settings, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	docs, ok := handoff.ConsumeAs[[]types.Document](r.channel, handoff.TopicPapers)
	if !ok {
		return nil, types.Settings{}, false
	}
	return docs, r.current, true
}

// Status summarises the loop for diagnostics.
type Status struct {
	Running   bool           `json:"running"`
	Interval  string         `json:"interval"`
	Settings  types.Settings `json:"settings"`
	FetchedAt time.Time      `json:"fetched_at"`
	Failures  int            `json:"failures"`
	Topics    []string       `json:"topics"`
}

// Status reports the loop state.
func (r *Refresher) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Status{
		Running:   r.activeLocked(),
		Interval:  r.interval.String(),
		Settings:  r.current,
		FetchedAt: r.fetchedAt,
		Failures:  r.failures,
		Topics:    r.channel.Topics(),
	}
}
