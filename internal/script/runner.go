package script

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tas33n/DroidWright/internal/action"
	"github.com/tas33n/DroidWright/internal/netfetch"
	"github.com/tas33n/DroidWright/internal/planner"
	"github.com/tas33n/DroidWright/internal/platform"
	"github.com/tas33n/DroidWright/internal/storage"
	"github.com/tas33n/DroidWright/internal/wait"
)

// Deps are the collaborators a run is wired to. Only Provider is required;
// the matching Context group fails with ErrNoStorage, ErrNoNetwork or
// ErrNoPlanner when its dependency is missing.
type Deps struct {
	Provider *platform.Provider
	Store    storage.Store
	Fetcher  netfetch.Fetcher
	Planner  planner.Source
	Device   string            // Label used in logs, usually the serial
	Params   map[string]string // Script parameters, read with Context.Param
}

// Config holds run settings.
type Config struct {
	Timeout  time.Duration // Whole-run ceiling; 0 disables it
	Wait     wait.Config
	Dispatch action.Config
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Timeout:  10 * time.Minute,
		Wait:     wait.DefaultConfig(),
		Dispatch: action.DefaultConfig(),
	}
}

// Record describes one finished run.
type Record struct {
	ID      string `yaml:"run_id"           json:"run_id"`
	Script  string `yaml:"script"           json:"script"`
	Device  string `yaml:"device,omitempty" json:"device,omitempty"`
	Result  `yaml:",inline"`
	Started time.Time `yaml:"started"          json:"started"`
	Elapsed string    `yaml:"elapsed"          json:"elapsed"`
}

// Named is implemented by scripts that report their own name.
type Named interface {
	Name() string
}

// Runner executes scripts against one device session. Runs on the same
// Runner must not overlap.
type Runner struct {
	deps  Deps
	cfg   Config
	log   zerolog.Logger
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Option customizes a Runner.
type Option func(*Runner)

// WithClock replaces the wall clock and sleep function used by runs.
func WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(r *Runner) {
		r.now = now
		r.sleep = sleep
	}
}

// NewRunner creates a runner.
func NewRunner(deps Deps, cfg Config, log zerolog.Logger, opts ...Option) *Runner {
	r := &Runner{deps: deps, cfg: cfg, log: log, now: time.Now, sleep: wait.Sleep}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run executes s to completion. Panics and failures are turned into an
// error result with a short note; the run's deadline is applied here.
func (r *Runner) Run(ctx context.Context, s Script) Record {
	rec := Record{ID: uuid.NewString(), Script: scriptName(s), Device: r.deps.Device, Started: r.now()}
	log := r.log.With().Str("run_id", rec.ID).Str("device", rec.Device).Str("script", rec.Script).Logger()

	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	log.Info().Msg("run started")
	res := r.invoke(r.newContext(ctx, rec.ID, log), s, log)

	switch {
	case res.Failed() && errors.Is(ctx.Err(), context.DeadlineExceeded):
		res = Notef("run timed out after %s", r.cfg.Timeout)
	case res.Failed() && errors.Is(ctx.Err(), context.Canceled):
		res = Notef("run cancelled")
	case res.Status != StatusOK && res.Status != StatusError:
		res = Notef("script returned invalid status %q", res.Status)
	}
	rec.Result = res
	elapsed := r.now().Sub(rec.Started)
	rec.Elapsed = elapsed.Round(time.Millisecond).String()

	ev := log.Info()
	if res.Failed() {
		ev = log.Warn()
	}
	ev.Str("status", string(res.Status)).Str("note", res.Note).Dur("duration", elapsed).Msg("run finished")
	return rec
}

func (r *Runner) invoke(c *Context, s Script, log zerolog.Logger) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic", p).Str("stack", string(debug.Stack())).Msg("script panicked")
			res = Notef("script crashed: %v", p)
		}
	}()
	return s.Run(c)
}

func (r *Runner) newContext(ctx context.Context, runID string, log zerolog.Logger) *Context {
	p := r.deps.Provider
	engine := wait.New(p.Snapshotter, p.Gesturer, p.Device, r.cfg.Wait,
		log.With().Str("comp", "engine").Logger(), wait.WithClock(r.now, r.sleep))

	dispatchLog := log.With().Str("comp", "dispatch").Logger()
	direct := r.cfg.Dispatch
	direct.TapSettle, direct.SwipeSettle = 0, 0

	return newContext(&session{
		ctx:     ctx,
		p:       p,
		engine:  engine,
		direct:  action.NewDispatcher(p, engine, direct, dispatchLog, action.WithSleep(r.sleep)),
		planned: action.NewDispatcher(p, engine, r.cfg.Dispatch, dispatchLog, action.WithSleep(r.sleep)),
		sleep:   r.sleep,
		now:     r.now,
		params:  r.deps.Params,
		store:   r.deps.Store,
		fetcher: r.deps.Fetcher,
		planner: r.deps.Planner,
		log:     log.With().Str("comp", "script").Logger(),
	}, runID)
}

func scriptName(s Script) string {
	if n, ok := s.(Named); ok {
		return n.Name()
	}
	return "script"
}
