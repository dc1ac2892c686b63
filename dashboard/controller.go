// Package dashboard owns the loaded journey aggregates and answers every
// read the dashboard makes against them.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"journeylens/api/journey"
	"journeylens/api/models"
	"journeylens/api/source"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// AttributionLoader prepares the revenue rule for one load.
type AttributionLoader interface {
	LoadAttributor(ctx context.Context, raw []models.RawJourney) (journey.Attributor, error)
}

// StaticAttribution uses the same Attributor for every load.
type StaticAttribution struct {
	Attributor journey.Attributor
}

func (s StaticAttribution) LoadAttributor(context.Context, []models.RawJourney) (journey.Attributor, error) {
	return s.Attributor, nil
}

// NotReadyError is returned by reads while no aggregate set is available.
type NotReadyError struct {
	Status  Status
	Message string
}

func (e *NotReadyError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("journeys %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("journeys %s", e.Status)
}

var ErrJourneyNotFound = errors.New("journey not found")

// DefaultLoadTimeout bounds one shared load, whoever started it.
const DefaultLoadTimeout = 30 * time.Second

// Snapshot is the load state as shown to the user.
type Snapshot struct {
	Status    Status    `json:"status"`
	Error     string    `json:"error,omitempty"`
	Retryable bool      `json:"retryable,omitempty"`
	Count     int       `json:"count"`
	LoadedAt  time.Time `json:"loadedAt,omitempty"`
}

type Controller struct {
	source      source.Source
	attribution AttributionLoader
	logger      *zap.Logger
	now         func() time.Time
	loadTimeout time.Duration

	loads singleflight.Group

	mu         sync.RWMutex
	status     Status
	errMsg     string
	retryable  bool
	aggregates []models.JourneyAggregate
	index      map[string]int
	loadedAt   time.Time
}

func NewController(src source.Source, attribution AttributionLoader, logger *zap.Logger) *Controller {
	if attribution == nil {
		attribution = StaticAttribution{Attributor: journey.NewRandomAttributor(nil)}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		source:      src,
		attribution: attribution,
		logger:      logger,
		now:         time.Now,
		loadTimeout: DefaultLoadTimeout,
		status:      StatusIdle,
	}
}

// SetLoadTimeout changes the bound on a shared load. Non-positive values
// restore DefaultLoadTimeout.
func (c *Controller) SetLoadTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultLoadTimeout
	}
	c.loadTimeout = d
}

// Load fetches and aggregates a fresh journey set, replacing the current one.
// Concurrent calls share a single upstream fetch. On failure the set is
// discarded and the error message is kept verbatim for display.
//
// The shared fetch is not tied to any one caller: it runs until it finishes
// or the load timeout passes. A caller whose ctx ends first gets ctx.Err()
// back while the fetch carries on for the others.
func (c *Controller) Load(ctx context.Context) error {
	flightCtx := context.WithoutCancel(ctx)
	timeout := c.loadTimeout
	ch := c.loads.DoChan("load", func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(flightCtx, timeout)
		defer cancel()
		return nil, c.load(loadCtx)
	})

	select {
	case res := <-ch:
		if res.Shared {
			c.logger.Debug("joined in-flight journey load")
		}
		return res.Err
	case <-ctx.Done():
		c.logger.Debug("stopped waiting for journey load", zap.Error(ctx.Err()))
		return fmt.Errorf("waiting for journey load: %w", ctx.Err())
	}
}

func (c *Controller) load(ctx context.Context) error {
	c.mu.Lock()
	c.status = StatusLoading
	c.errMsg = ""
	c.retryable = false
	c.mu.Unlock()

	started := c.now()
	raw, err := c.source.FetchJourneys(ctx)
	if err != nil {
		return c.fail(err)
	}

	attributor, err := c.attribution.LoadAttributor(ctx, raw)
	if err != nil {
		return c.fail(fmt.Errorf("failed to load revenue attribution: %w", err))
	}

	set := journey.NewAggregator(attributor).Aggregate(raw)
	index := make(map[string]int, len(set))
	duplicates := 0
	for i, a := range set {
		// The first aggregate with a session ID is the one detail views open.
		if _, ok := index[a.SessionID]; ok {
			duplicates++
			continue
		}
		index[a.SessionID] = i
	}
	if duplicates > 0 {
		c.logger.Warn("journeys with repeated session IDs", zap.Int("duplicates", duplicates))
	}

	c.mu.Lock()
	c.status = StatusReady
	c.aggregates = set
	c.index = index
	c.loadedAt = c.now()
	c.mu.Unlock()

	c.logger.Info("journeys loaded",
		zap.Int("count", len(set)),
		zap.Duration("took", c.now().Sub(started)))
	return nil
}

func (c *Controller) fail(err error) error {
	c.mu.Lock()
	c.status = StatusFailed
	c.errMsg = err.Error()
	c.retryable = source.IsRetryable(err)
	c.aggregates = nil
	c.index = nil
	c.mu.Unlock()

	c.logger.Warn("journey load failed", zap.Error(err))
	return err
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		Status:    c.status,
		Error:     c.errMsg,
		Retryable: c.retryable,
		Count:     len(c.aggregates),
		LoadedAt:  c.loadedAt,
	}
}

// ready must be called with c.mu held.
func (c *Controller) ready() error {
	if c.status != StatusReady {
		return &NotReadyError{Status: c.status, Message: c.errMsg}
	}
	return nil
}

// Window runs the collection view over the loaded set.
func (c *Controller) Window(q journey.Query) (journey.Window, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.ready(); err != nil {
		return journey.Window{}, err
	}
	return journey.View(c.aggregates, q), nil
}

func (c *Controller) Summary() (journey.Summary, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.ready(); err != nil {
		return journey.Summary{}, err
	}
	return journey.Summarize(c.aggregates), nil
}

// Apply reduces state by action and returns the new state with its window.
// Opening a detail view fills in the journey's touchpoint count.
func (c *Controller) Apply(state journey.ViewState, action journey.Action) (journey.ViewState, journey.Window, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.ready(); err != nil {
		return state, journey.Window{}, err
	}

	switch action.Type {
	case journey.ActionOpenDetail:
		i, ok := c.index[action.SessionID]
		if !ok {
			return state, journey.Window{}, fmt.Errorf("session %q: %w", action.SessionID, ErrJourneyNotFound)
		}
		action.TouchpointCount = c.aggregates[i].TouchpointCount
	case journey.ActionCloseDetail:
	default:
		if state.Detail != nil {
			detail, err := c.syncDetail(*state.Detail)
			if err != nil && action.Type == journey.ActionRevealMore {
				return state, journey.Window{}, err
			}
			if err == nil {
				state.Detail = &detail
			}
		}
	}

	next, err := journey.Reduce(state, action)
	if err != nil {
		return state, journey.Window{}, err
	}

	window := journey.View(c.aggregates, next.Query())
	next.Page = window.Page
	return next, window, nil
}

// syncDetail replaces the counts a client sent for an open detail with the
// loaded journey's. c.mu must be held.
func (c *Controller) syncDetail(d journey.DetailState) (journey.DetailState, error) {
	i, ok := c.index[d.SessionID]
	if !ok {
		return d, fmt.Errorf("session %q: %w", d.SessionID, ErrJourneyNotFound)
	}
	var disclosure journey.Disclosure
	disclosure.Restore(&c.aggregates[i], d.VisibleCount)
	d.TouchpointCount = c.aggregates[i].TouchpointCount
	d.VisibleCount = disclosure.VisibleCount()
	return d, nil
}

// Disclose returns the disclosure window for one journey. visible is the
// count the caller already shows (0 opens at the initial window); reveal
// grows it by one chunk.
func (c *Controller) Disclose(sessionID string, visible int, reveal bool) (journey.DisclosureView, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.ready(); err != nil {
		return journey.DisclosureView{}, err
	}

	i, ok := c.index[sessionID]
	if !ok {
		return journey.DisclosureView{}, fmt.Errorf("session %q: %w", sessionID, ErrJourneyNotFound)
	}

	var d journey.Disclosure
	d.Restore(&c.aggregates[i], visible)
	if reveal {
		d.RevealMore()
	}
	return d.Snapshot(), nil
}
