// Package wait polls UI snapshots for a selector, optionally scrolling a
// container between attempts.
package wait

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tas33n/DroidWright/internal/model"
	"github.com/tas33n/DroidWright/internal/platform"
	"github.com/tas33n/DroidWright/internal/selector"
)

// ErrInvalidOptions is returned for negative scroll budgets.
var ErrInvalidOptions = errors.New("invalid wait options")

// Config holds the engine's timing parameters.
type Config struct {
	PollInterval   time.Duration `mapstructure:"poll_interval"`   // Re-snapshot interval in plain wait mode
	Settle         time.Duration `mapstructure:"settle"`          // Pause after each scroll gesture
	ScrollDuration time.Duration `mapstructure:"scroll_duration"` // Duration of each scroll swipe
}

// DefaultConfig returns the timings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		PollInterval:   300 * time.Millisecond,
		Settle:         500 * time.Millisecond,
		ScrollDuration: 400 * time.Millisecond,
	}
}

// Options describes one wait.
type Options struct {
	// Timeout bounds plain polling. Zero or negative means a single check.
	Timeout time.Duration
	// MaxScrolls switches to scroll-search mode when positive: at most this
	// many scroll gestures are issued, regardless of Timeout.
	MaxScrolls int
	// Container restricts scroll gestures to the first element it matches.
	// The zero selector scrolls the full screen.
	Container selector.Selector
}

// ScreenSizer reports the screen size used for full-screen scrolls.
type ScreenSizer interface {
	ScreenSize(ctx context.Context) (model.Size, error)
}

// Engine implements wait-for and scroll-search over a snapshot source.
// It depends only on snapshot and gesture capabilities.
type Engine struct {
	snapshots platform.Snapshotter
	gestures  platform.Gesturer
	screen    ScreenSizer
	cfg       Config
	log       zerolog.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock and sleep function.
func WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(e *Engine) {
		e.now = now
		e.sleep = sleep
	}
}

// New creates an engine.
func New(snapshots platform.Snapshotter, gestures platform.Gesturer, screen ScreenSizer, cfg Config, log zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		snapshots: snapshots,
		gestures:  gestures,
		screen:    screen,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
		sleep:     Sleep,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Sleep pauses for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// WaitFor reports whether sel matches within the given budget. Not finding
// the element is a normal false result; errors are reserved for invalid
// input, device failures and cancellation.
func (e *Engine) WaitFor(ctx context.Context, sel selector.Selector, opts Options) (bool, error) {
	if sel.IsZero() {
		return false, selector.ErrEmptySelector
	}
	if opts.MaxScrolls < 0 {
		return false, fmt.Errorf("%w: max scrolls %d", ErrInvalidOptions, opts.MaxScrolls)
	}

	snap, err := e.snapshots.Snapshot(ctx)
	if err != nil {
		return false, fmt.Errorf("snapshot: %w", err)
	}
	if found, _ := selector.Exists(sel, snap); found {
		return true, nil
	}
	if opts.Timeout <= 0 {
		return false, nil
	}
	if opts.MaxScrolls > 0 {
		return e.scrollSearch(ctx, sel, opts, snap)
	}
	return e.poll(ctx, sel, opts.Timeout)
}

func (e *Engine) poll(ctx context.Context, sel selector.Selector, timeout time.Duration) (bool, error) {
	deadline := e.now().Add(timeout)
	var lastErr error
	for {
		remaining := deadline.Sub(e.now())
		if remaining <= 0 {
			break
		}
		if err := e.sleep(ctx, min(e.cfg.PollInterval, remaining)); err != nil {
			return false, err
		}
		snap, err := e.snapshots.Snapshot(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			e.log.Debug().Err(err).Msg("snapshot failed while polling")
			lastErr = err
			continue
		}
		lastErr = nil
		if found, _ := selector.Exists(sel, snap); found {
			return true, nil
		}
	}
	if lastErr != nil {
		return false, fmt.Errorf("timed out after %s (last error: %w)", timeout, lastErr)
	}
	return false, nil
}

func (e *Engine) scrollSearch(ctx context.Context, sel selector.Selector, opts Options, snap *model.Snapshot) (bool, error) {
	var screen model.Size
	for attempt := 1; attempt <= opts.MaxScrolls; attempt++ {
		area, ok := e.containerArea(opts.Container, snap)
		if !ok {
			if screen == (model.Size{}) {
				s, err := e.screen.ScreenSize(ctx)
				if err != nil {
					return false, fmt.Errorf("screen size: %w", err)
				}
				screen = s
			}
			area = model.RectFromSize(screen)
		}
		// The gesture invalidates snap; drop it before anything else reads it.
		snap = nil

		from, to := ScrollPoints(area)
		if err := e.gestures.Swipe(ctx, from, to, e.cfg.ScrollDuration); err != nil {
			return false, fmt.Errorf("scroll %d: %w", attempt, err)
		}
		if err := e.sleep(ctx, e.cfg.Settle); err != nil {
			return false, err
		}

		next, err := e.snapshots.Snapshot(ctx)
		if err != nil {
			return false, fmt.Errorf("snapshot after scroll %d: %w", attempt, err)
		}
		snap = next
		if found, _ := selector.Exists(sel, snap); found {
			e.log.Debug().Str("selector", sel.String()).Int("scrolls", attempt).Msg("found after scrolling")
			return true, nil
		}
	}
	e.log.Debug().Str("selector", sel.String()).Int("scrolls", opts.MaxScrolls).Msg("scroll budget exhausted")
	return false, nil
}

// containerArea resolves the scroll container in the current snapshot.
func (e *Engine) containerArea(container selector.Selector, snap *model.Snapshot) (model.Rect, bool) {
	if container.IsZero() {
		return model.Rect{}, false
	}
	h, found, _ := selector.FindFirst(container, snap)
	if !found || h.Bounds().Empty() {
		e.log.Debug().Str("container", container.String()).Msg("scroll container not found, using full screen")
		return model.Rect{}, false
	}
	return h.Bounds(), true
}

// ScrollPoints returns a vertical swipe from 80% to 20% of the area's
// height along its horizontal centre, which scrolls content forward.
func ScrollPoints(area model.Rect) (from, to model.Point) {
	x := area.Left() + area.Width()/2
	from = model.Point{X: x, Y: area.Top() + area.Height()*8/10}
	to = model.Point{X: x, Y: area.Top() + area.Height()*2/10}
	return from, to
}
