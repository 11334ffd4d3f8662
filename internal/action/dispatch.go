package action

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tas33n/DroidWright/internal/model"
	"github.com/tas33n/DroidWright/internal/platform"
	"github.com/tas33n/DroidWright/internal/selector"
	"github.com/tas33n/DroidWright/internal/wait"
)

// Config holds dispatcher timings. Settle delays are applied after a
// successful gesture so the UI can react before the next step.
type Config struct {
	TapSettle       time.Duration `mapstructure:"tap_settle"`
	SwipeSettle     time.Duration `mapstructure:"swipe_settle"`
	LongTapDuration time.Duration `mapstructure:"long_tap_duration"`
	SwipeDuration   time.Duration `mapstructure:"swipe_duration"`
	SleepDuration   time.Duration `mapstructure:"sleep_duration"`
}

// DefaultConfig returns the timings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		TapSettle:       time.Second,
		SwipeSettle:     2 * time.Second,
		LongTapDuration: 800 * time.Millisecond,
		SwipeDuration:   400 * time.Millisecond,
		SleepDuration:   500 * time.Millisecond,
	}
}

// Waiter is the wait engine as seen by the dispatcher.
type Waiter interface {
	WaitFor(ctx context.Context, sel selector.Selector, opts wait.Options) (bool, error)
}

// Outcome is what a successfully executed action produced.
type Outcome struct {
	Skipped bool         // Unknown action, nothing was done
	Point   *model.Point // Where a tap or long tap landed
	Found   *bool        // Result of a wait
}

// Dispatcher executes actions against one device.
type Dispatcher struct {
	snapshots platform.Snapshotter
	gestures  platform.Gesturer
	device    platform.Device
	waiter    Waiter
	cfg       Config
	log       zerolog.Logger
	sleep     func(ctx context.Context, d time.Duration) error
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithSleep replaces the function used for settle delays and Sleep actions.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(d *Dispatcher) { d.sleep = fn }
}

// NewDispatcher creates a dispatcher over p's capabilities.
func NewDispatcher(p *platform.Provider, waiter Waiter, cfg Config, log zerolog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		snapshots: p.Snapshotter,
		gestures:  p.Gesturer,
		device:    p.Device,
		waiter:    waiter,
		cfg:       cfg,
		log:       log,
		sleep:     wait.Sleep,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Execute runs one action. Selectors are resolved against a snapshot taken
// immediately before acting. Unknown actions are logged and skipped with a
// nil error. Every other failure is a *StepError.
func (d *Dispatcher) Execute(ctx context.Context, a Action) (Outcome, error) {
	out, settle, err := d.perform(ctx, a)
	if err != nil {
		if se, ok := err.(*StepError); ok {
			return out, se
		}
		return out, &StepError{Kind: a.Kind(), Err: err}
	}
	if settle > 0 {
		if err := d.sleep(ctx, settle); err != nil {
			return out, &StepError{Kind: a.Kind(), Err: err}
		}
	}
	return out, nil
}

func (d *Dispatcher) perform(ctx context.Context, a Action) (Outcome, time.Duration, error) {
	switch v := a.(type) {
	case Unknown:
		d.log.Warn().Str("action", v.Name).Msg("skipping unrecognized action")
		return Outcome{Skipped: true}, 0, nil

	case Invalid:
		return Outcome{}, 0, invalid(v.Name, "%s", v.Reason)

	case Tap:
		p, err := d.resolveTarget(ctx, KindTap, v.Target)
		if err != nil {
			return Outcome{}, 0, err
		}
		if err := d.gestures.Tap(ctx, p); err != nil {
			return Outcome{}, 0, err
		}
		return Outcome{Point: &p}, d.cfg.TapSettle, nil

	case LongTap:
		if v.Duration < 0 {
			return Outcome{}, 0, invalid(KindLongTap, "negative duration %s", v.Duration)
		}
		p, err := d.resolveTarget(ctx, KindLongTap, v.Target)
		if err != nil {
			return Outcome{}, 0, err
		}
		if err := d.gestures.LongTap(ctx, p, orDefault(v.Duration, d.cfg.LongTapDuration)); err != nil {
			return Outcome{}, 0, err
		}
		return Outcome{Point: &p}, d.cfg.TapSettle, nil

	case SetText:
		if v.Selector.IsZero() {
			return Outcome{}, 0, invalid(KindSetText, "selector is required")
		}
		p, err := d.resolve(ctx, v.Selector)
		if err != nil {
			return Outcome{}, 0, err
		}
		if err := d.gestures.Tap(ctx, p); err != nil {
			return Outcome{}, 0, fmt.Errorf("focus: %w", err)
		}
		if err := d.gestures.InputText(ctx, v.Text); err != nil {
			return Outcome{}, 0, err
		}
		return Outcome{Point: &p}, d.cfg.TapSettle, nil

	case Swipe:
		if v.Duration < 0 {
			return Outcome{}, 0, invalid(KindSwipe, "negative duration %s", v.Duration)
		}
		size, err := d.device.ScreenSize(ctx)
		if err != nil {
			return Outcome{}, 0, fmt.Errorf("screen size: %w", err)
		}
		for _, p := range []model.Point{v.From, v.To} {
			if !model.RectFromSize(size).Contains(p) {
				return Outcome{}, 0, invalid(KindSwipe, "point %s outside screen %dx%d", p, size.Width, size.Height)
			}
		}
		if err := d.gestures.Swipe(ctx, v.From, v.To, orDefault(v.Duration, d.cfg.SwipeDuration)); err != nil {
			return Outcome{}, 0, err
		}
		return Outcome{}, d.cfg.SwipeSettle, nil

	case Scroll:
		if v.Direction != "" && v.Direction != DirectionDown && v.Direction != DirectionUp {
			return Outcome{}, 0, invalid(KindScroll, "direction %q is not up or down", v.Direction)
		}
		area, err := d.scrollArea(ctx, v.Container)
		if err != nil {
			return Outcome{}, 0, err
		}
		from, to := wait.ScrollPoints(area)
		if v.Direction == DirectionUp {
			from, to = to, from
		}
		if err := d.gestures.Swipe(ctx, from, to, d.cfg.SwipeDuration); err != nil {
			return Outcome{}, 0, err
		}
		return Outcome{}, d.cfg.SwipeSettle, nil

	case WaitFor:
		switch {
		case v.Selector.IsZero():
			return Outcome{}, 0, invalid(KindWaitFor, "selector is required")
		case v.Timeout < 0:
			return Outcome{}, 0, invalid(KindWaitFor, "negative timeout %s", v.Timeout)
		case v.MaxScrolls < 0:
			return Outcome{}, 0, invalid(KindWaitFor, "negative maxScrolls %d", v.MaxScrolls)
		case d.waiter == nil:
			return Outcome{}, 0, fmt.Errorf("no wait engine configured")
		}
		found, err := d.waiter.WaitFor(ctx, v.Selector, wait.Options{Timeout: v.Timeout, MaxScrolls: v.MaxScrolls, Container: v.Container})
		if err != nil {
			return Outcome{}, 0, err
		}
		return Outcome{Found: &found}, 0, nil

	case PressKey:
		if v.Key <= 0 {
			return Outcome{}, 0, invalid(KindPressKey, "invalid keycode %d", v.Key)
		}
		if err := d.device.PressKey(ctx, v.Key); err != nil {
			return Outcome{}, 0, err
		}
		return Outcome{}, 0, nil

	case Sleep:
		if v.Duration < 0 {
			return Outcome{}, 0, invalid(KindSleep, "negative duration %s", v.Duration)
		}
		if err := d.sleep(ctx, orDefault(v.Duration, d.cfg.SleepDuration)); err != nil {
			return Outcome{}, 0, err
		}
		return Outcome{}, 0, nil

	case Log:
		d.log.Info().Msg(v.Message)
		return Outcome{}, 0, nil
	}
	return Outcome{}, 0, fmt.Errorf("unsupported action type %T", a)
}

// resolveTarget returns the point a tap-like action should land on.
func (d *Dispatcher) resolveTarget(ctx context.Context, kind Kind, t Target) (model.Point, error) {
	if !t.Selector.IsZero() {
		return d.resolve(ctx, t.Selector)
	}
	if t.Point == nil {
		return model.Point{}, invalid(kind, "needs a selector or x/y coordinates")
	}
	size, err := d.device.ScreenSize(ctx)
	if err != nil {
		return model.Point{}, fmt.Errorf("screen size: %w", err)
	}
	if !model.RectFromSize(size).Contains(*t.Point) {
		return model.Point{}, invalid(kind, "point %s outside screen %dx%d", *t.Point, size.Width, size.Height)
	}
	return *t.Point, nil
}

// resolve finds sel in a fresh snapshot and returns its tap point.
func (d *Dispatcher) resolve(ctx context.Context, sel selector.Selector) (model.Point, error) {
	snap, err := d.snapshots.Snapshot(ctx)
	if err != nil {
		return model.Point{}, fmt.Errorf("snapshot: %w", err)
	}
	h, found, err := selector.FindFirst(sel, snap)
	if err != nil {
		return model.Point{}, err
	}
	if !found {
		return model.Point{}, fmt.Errorf("%w: %s", ErrNotFound, sel)
	}
	return h.TapPoint(), nil
}

func (d *Dispatcher) scrollArea(ctx context.Context, container selector.Selector) (model.Rect, error) {
	if !container.IsZero() {
		snap, err := d.snapshots.Snapshot(ctx)
		if err != nil {
			return model.Rect{}, fmt.Errorf("snapshot: %w", err)
		}
		if h, found, _ := selector.FindFirst(container, snap); found && !h.Bounds().Empty() {
			return h.Bounds(), nil
		}
		d.log.Debug().Str("container", container.String()).Msg("scroll container not found, using full screen")
	}
	size, err := d.device.ScreenSize(ctx)
	if err != nil {
		return model.Rect{}, fmt.Errorf("screen size: %w", err)
	}
	return model.RectFromSize(size), nil
}

func orDefault(d, def time.Duration) time.Duration {
	if d == 0 {
		return def
	}
	return d
}
