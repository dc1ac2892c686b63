package particles

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultFrameInterval approximates a 60 Hz display refresh.
const DefaultFrameInterval = time.Second / 60

// FrameFunc is called after each frame is drawn. Returning an error ends the
// loop with that error.
type FrameFunc func(seq uint64) error

// Loop drives a Field: one step and draw per tick, on a single goroutine.
// Resize requests from other goroutines are queued and applied between
// frames, latest wins.
type Loop struct {
	field    *Field
	surface  Surface
	host     Size
	interval time.Duration
	onFrame  FrameFunc
	logger   *zap.Logger

	mu      sync.Mutex
	pending *Size
	wake    chan struct{}
}

type LoopConfig struct {
	Host     Size
	Interval time.Duration
	OnFrame  FrameFunc
	Logger   *zap.Logger
}

func NewLoop(field *Field, surface Surface, cfg LoopConfig) *Loop {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultFrameInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Loop{
		field:    field,
		surface:  surface,
		host:     cfg.Host,
		interval: cfg.Interval,
		onFrame:  cfg.OnFrame,
		logger:   cfg.Logger,
		wake:     make(chan struct{}, 1),
	}
}

// Resize queues a host size change. It never blocks.
func (l *Loop) Resize(s Size) {
	l.mu.Lock()
	l.pending = &s
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) takePending() (Size, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pending == nil {
		return Size{}, false
	}
	s := *l.pending
	l.pending = nil
	return s, true
}

// Run initialises the field and renders frames until ctx is cancelled or
// the frame callback fails. A missing surface or an empty host means there
// is nothing to render; Run then returns nil straight away.
func (l *Loop) Run(ctx context.Context) error {
	if l.field == nil || l.surface == nil {
		l.logger.Debug("particle field has no surface, not rendering")
		return nil
	}
	if err := l.field.Init(l.host); err != nil {
		l.logger.Debug("particle field not started", zap.Error(err))
		return nil
	}
	defer l.field.Stop()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	var seq uint64
	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("particle loop stopped", zap.Uint64("frames", seq))
			return nil
		case <-l.wake:
			if s, ok := l.takePending(); ok {
				l.field.Resize(s)
			}
		case <-ticker.C:
			l.field.Tick(l.surface)
			seq++
			if l.onFrame != nil {
				if err := l.onFrame(seq); err != nil {
					return err
				}
			}
		}
	}
}
