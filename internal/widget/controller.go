package widget

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"pingboard/internal/models"
	"pingboard/internal/poller"
	"pingboard/internal/render"
	"pingboard/internal/status"
)

// DefaultInterval is the auto-refresh period used when none is configured.
const DefaultInterval = 10 * time.Second

// Fetcher retrieves one ping dataset per call.
type Fetcher interface {
	Fetch(ctx context.Context) (models.Dataset, error)
	Endpoint() string
}

// View is the visual surface the controller drives. Implementations must be
// safe for concurrent use.
type View interface {
	SetEndpoint(url string)
	SetRows(table render.Table)
	SetStatus(label, class string)
	SetLastFetch(text string)
}

// Options tunes a Controller. Zero values select the defaults.
type Options struct {
	Interval time.Duration
	// AutoRefresh starts the timer after the initial fetch in Run.
	AutoRefresh bool
	Scheduler   Scheduler
	Logger      *slog.Logger
	Now         func() time.Time
}

// State is a point-in-time copy of the widget state.
type State struct {
	Label                 string
	Class                 string
	LastSuccessfulFetchAt time.Time
	LastRenderedAt        time.Time
	AutoRefreshEnabled    bool
}

// Controller owns fetch scheduling, fetch status and table rendering for one
// widget instance.
type Controller struct {
	fetcher   Fetcher
	renderer  *render.Renderer
	tracker   *status.Tracker
	view      View
	scheduler Scheduler
	interval  time.Duration
	autoStart bool
	logger    *slog.Logger
	now       func() time.Time

	seq atomic.Uint64

	// paint serialises state updates with the view writes that publish them,
	// so the display always matches the most recent completion.
	paint          sync.Mutex
	lastRenderedAt time.Time

	mu          sync.Mutex
	baseCtx     context.Context
	stopTimer   func()
	autoRefresh bool
	closed      bool
	inflight    sync.WaitGroup
}

// New wires a controller. The view receives every state change.
func New(fetcher Fetcher, renderer *render.Renderer, view View, opts Options) *Controller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Scheduler == nil {
		opts.Scheduler = TickerScheduler{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Controller{
		fetcher:   fetcher,
		renderer:  renderer,
		tracker:   status.NewTracker(),
		view:      view,
		scheduler: opts.Scheduler,
		interval:  opts.Interval,
		autoStart: opts.AutoRefresh,
		logger:    opts.Logger.With("endpoint", fetcher.Endpoint()),
		now:       opts.Now,
		baseCtx:   context.Background(),
	}
}

// Run publishes the endpoint, issues one fetch, starts the timer when
// auto-refresh is enabled, and blocks until ctx is done. On return the timer
// is stopped and in-flight fetches have finished.
func (c *Controller) Run(ctx context.Context) {
	c.mu.Lock()
	c.baseCtx = ctx
	c.mu.Unlock()

	c.view.SetEndpoint(c.fetcher.Endpoint())

	c.launch()
	if c.autoStart {
		c.Start()
	}

	<-ctx.Done()
	c.Stop()
	c.wait()
}

// FetchAndRender performs one fetch cycle and publishes the outcome. It never
// panics on fetch failures and may run concurrently with itself; whichever
// call completes last determines what is displayed.
func (c *Controller) FetchAndRender(ctx context.Context) {
	seq := c.seq.Add(1)

	c.paint.Lock()
	c.tracker.MarkFetching()
	c.publishStatus()
	c.paint.Unlock()

	data, err := c.fetcher.Fetch(ctx)

	c.paint.Lock()
	defer c.paint.Unlock()

	if err != nil {
		msg := poller.Message(err)
		c.tracker.MarkError(msg)
		c.publishStatus()
		c.publishLastFetch()
		c.logger.Warn("fetch failed", "seq", seq, "error", msg)
		return
	}

	table := c.renderer.Draw(data)
	c.lastRenderedAt = table.DrawnAt
	c.view.SetRows(table)
	c.tracker.MarkOK(c.now())
	c.publishStatus()
	c.publishLastFetch()
	c.logger.Debug("fetch ok", "seq", seq, "rows", len(table.Rows))
}

// Refresh triggers a fetch without touching the timer.
func (c *Controller) Refresh() {
	c.launch()
}

// Start (re)starts the auto-refresh timer. Any existing timer is stopped
// first so at most one is ever live.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	if c.closed {
		return
	}
	c.stopTimer = c.scheduler.Every(c.interval, c.launch)
	c.autoRefresh = true
	c.logger.Debug("auto-refresh started", "interval", c.interval)
}

// Stop cancels the auto-refresh timer. Stopping an idle controller is a no-op.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopLocked() {
		c.logger.Debug("auto-refresh stopped")
	}
}

// SetAutoRefresh mirrors the auto-refresh toggle.
func (c *Controller) SetAutoRefresh(enabled bool) {
	if enabled {
		c.Start()
		return
	}
	c.Stop()
}

// TimerActive reports whether the auto-refresh timer is running.
func (c *Controller) TimerActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopTimer != nil
}

// State returns the current widget state.
func (c *Controller) State() State {
	snap := c.tracker.Snapshot()

	c.paint.Lock()
	rendered := c.lastRenderedAt
	c.paint.Unlock()

	c.mu.Lock()
	auto := c.autoRefresh
	c.mu.Unlock()

	return State{
		Label:                 snap.Label,
		Class:                 snap.Class,
		LastSuccessfulFetchAt: snap.LastSuccessfulFetchAt,
		LastRenderedAt:        rendered,
		AutoRefreshEnabled:    auto,
	}
}

func (c *Controller) stopLocked() bool {
	c.autoRefresh = false
	if c.stopTimer == nil {
		return false
	}
	c.stopTimer()
	c.stopTimer = nil
	return true
}

// launch runs FetchAndRender in the background unless the controller is
// shutting down.
func (c *Controller) launch() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	ctx := c.baseCtx
	c.inflight.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.inflight.Done()
		c.FetchAndRender(ctx)
	}()
}

func (c *Controller) wait() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.inflight.Wait()
}

func (c *Controller) publishStatus() {
	snap := c.tracker.Snapshot()
	c.view.SetStatus(snap.Label, snap.Class)
}

func (c *Controller) publishLastFetch() {
	snap := c.tracker.Snapshot()
	if !snap.HasSucceeded() {
		c.view.SetLastFetch(render.Placeholder)
		return
	}
	c.view.SetLastFetch(c.renderer.Locale().Format(snap.LastSuccessfulFetchAt))
}
