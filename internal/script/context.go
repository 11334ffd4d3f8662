package script

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tas33n/DroidWright/internal/action"
	"github.com/tas33n/DroidWright/internal/model"
	"github.com/tas33n/DroidWright/internal/netfetch"
	"github.com/tas33n/DroidWright/internal/planner"
	"github.com/tas33n/DroidWright/internal/platform"
	"github.com/tas33n/DroidWright/internal/selector"
	"github.com/tas33n/DroidWright/internal/storage"
	"github.com/tas33n/DroidWright/internal/wait"
)

var (
	ErrNoStorage = errors.New("storage is not configured")
	ErrNoNetwork = errors.New("network access is not configured")
	ErrNoPlanner = errors.New("no planner configured")
)

// S is a selector literal, e.g. S{"text": "Login", "clickable": "true"}.
type S map[string]string

// Script is an automation entry point.
type Script interface {
	Run(c *Context) Result
}

// Func adapts a function to Script.
type Func func(c *Context) Result

// Run implements Script.
func (f Func) Run(c *Context) Result { return f(c) }

// Context is handed to a script for the duration of one run. Every
// operation blocks until done and honours the run's deadline. Not-found
// is reported as false, never as an error.
type Context struct {
	App     *App
	Device  *Device
	UI      *UI
	Storage *Storage
	Network *Network
	Agent   *Agent

	ctx    context.Context
	runID  string
	params map[string]string
	now    func() time.Time
	log    zerolog.Logger
}

// session is the per-run state shared by the capability groups.
type session struct {
	ctx     context.Context
	p       *platform.Provider
	engine  *wait.Engine
	direct  *action.Dispatcher // no settle delays; scripts sleep explicitly
	planned *action.Dispatcher // configured settle delays, for action lists
	sleep   func(ctx context.Context, d time.Duration) error
	now     func() time.Time
	params  map[string]string
	store   storage.Store
	fetcher netfetch.Fetcher
	planner planner.Source
	log     zerolog.Logger
}

func newContext(s *session, runID string) *Context {
	return &Context{
		App:     &App{s: s},
		Device:  &Device{s: s},
		UI:      &UI{s: s},
		Storage: &Storage{s: s},
		Network: &Network{s: s},
		Agent:   &Agent{s: s},
		ctx:     s.ctx,
		runID:   runID,
		params:  s.params,
		now:     s.now,
		log:     s.log,
	}
}

// Context returns the run's context, for calling other packages.
func (c *Context) Context() context.Context { return c.ctx }

// RunID returns the identifier of the current run.
func (c *Context) RunID() string { return c.runID }

// Param returns the run parameter named key, or def when it is unset.
func (c *Context) Param(key, def string) string {
	if v, ok := c.params[key]; ok && v != "" {
		return v
	}
	return def
}

// Now returns the current time on the run's clock.
func (c *Context) Now() time.Time { return c.now() }

// Log writes a message to the run's log.
func (c *Context) Log(msg string) { c.log.Info().Msg(msg) }

// Logf writes a formatted message to the run's log.
func (c *Context) Logf(format string, args ...any) { c.log.Info().Msgf(format, args...) }

// App controls applications.
type App struct{ s *session }

// Launch starts pkg. It reports false when the package could not be started.
func (a *App) Launch(pkg string) (bool, error) {
	if pkg == "" {
		return false, fmt.Errorf("%w: empty package name", action.ErrInvalidParams)
	}
	return a.s.p.Apps.Launch(a.s.ctx, pkg)
}

// PackageName returns the package in the foreground.
func (a *App) PackageName() (string, error) {
	return a.s.p.Apps.CurrentPackage(a.s.ctx)
}

// Device exposes device-level controls.
type Device struct{ s *session }

// Sleep pauses the script.
func (d *Device) Sleep(dur time.Duration) error {
	if dur < 0 {
		return fmt.Errorf("%w: negative sleep %s", action.ErrInvalidParams, dur)
	}
	return d.s.sleep(d.s.ctx, dur)
}

// ScreenSize returns the screen size in pixels.
func (d *Device) ScreenSize() (model.Size, error) {
	return d.s.p.Device.ScreenSize(d.s.ctx)
}

// Press presses a key given by name ("back", "home", "enter", "recent")
// or keycode.
func (d *Device) Press(key string) error {
	k, err := platform.ParseKey(key)
	if err != nil {
		return fmt.Errorf("%w: %v", action.ErrInvalidParams, err)
	}
	return d.s.p.Device.PressKey(d.s.ctx, k)
}

// Screenshot returns the screen as PNG bytes.
func (d *Device) Screenshot() ([]byte, error) {
	return d.s.p.Device.Screenshot(d.s.ctx)
}

// UI inspects and drives the on-screen hierarchy. Each call works on a
// fresh snapshot.
type UI struct{ s *session }

// Snapshot captures the current hierarchy.
func (u *UI) Snapshot() (*model.Snapshot, error) {
	return u.s.p.Snapshotter.Snapshot(u.s.ctx)
}

// Exists reports whether sel matches anything on screen.
func (u *UI) Exists(sel S) (bool, error) {
	_, found, err := u.Find(sel)
	return found, err
}

// Find returns the first element matching sel. The handle is only valid
// for reading; act on elements through selectors.
func (u *UI) Find(sel S) (model.Handle, bool, error) {
	s, err := selector.New(sel)
	if err != nil {
		return model.Handle{}, false, err
	}
	snap, err := u.Snapshot()
	if err != nil {
		return model.Handle{}, false, err
	}
	return selector.FindFirst(s, snap)
}

// FindAll returns every element matching sel in traversal order.
func (u *UI) FindAll(sel S) ([]model.Handle, error) {
	s, err := selector.New(sel)
	if err != nil {
		return nil, err
	}
	snap, err := u.Snapshot()
	if err != nil {
		return nil, err
	}
	return selector.FindAll(s, snap)
}

// Tap taps the centre of the first element matching sel. It reports false
// when nothing matches.
func (u *UI) Tap(sel S) (bool, error) {
	s, err := selector.New(sel)
	if err != nil {
		return false, err
	}
	return u.exec(action.Tap{Target: action.Target{Selector: s}})
}

// TapAt taps a screen coordinate.
func (u *UI) TapAt(x, y int) error {
	_, err := u.exec(action.Tap{Target: action.Target{Point: &model.Point{X: x, Y: y}}})
	return err
}

// LongTap presses the first element matching sel for d, or the default
// long-press duration when d is zero.
func (u *UI) LongTap(sel S, d time.Duration) (bool, error) {
	s, err := selector.New(sel)
	if err != nil {
		return false, err
	}
	return u.exec(action.LongTap{Target: action.Target{Selector: s}, Duration: d})
}

// SetText focuses the first element matching sel and types text.
func (u *UI) SetText(sel S, text string) (bool, error) {
	s, err := selector.New(sel)
	if err != nil {
		return false, err
	}
	return u.exec(action.SetText{Selector: s, Text: text})
}

// Swipe drags from (x1,y1) to (x2,y2) over d.
func (u *UI) Swipe(x1, y1, x2, y2 int, d time.Duration) error {
	_, err := u.exec(action.Swipe{From: model.Point{X: x1, Y: y1}, To: model.Point{X: x2, Y: y2}, Duration: d})
	return err
}

// Scroll scrolls the container matching sel, or the whole screen when sel
// is empty, in the given direction.
func (u *UI) Scroll(container S, dir action.Direction) error {
	var s selector.Selector
	if len(container) > 0 {
		var err error
		if s, err = selector.New(container); err != nil {
			return err
		}
	}
	_, err := u.exec(action.Scroll{Container: s, Direction: dir})
	return err
}

// WaitOption configures WaitFor.
type WaitOption func(*waitSettings)

type waitSettings struct {
	maxScrolls int
	container  S
}

// WithScrolls switches WaitFor to scroll-search with at most n scrolls.
func WithScrolls(n int) WaitOption {
	return func(w *waitSettings) { w.maxScrolls = n }
}

// InContainer restricts scroll gestures to the element matching sel.
func InContainer(sel S) WaitOption {
	return func(w *waitSettings) { w.container = sel }
}

// WaitFor waits until sel appears. Without WithScrolls it polls until
// timeout; with it, it scrolls up to n times and stops early on a match.
func (u *UI) WaitFor(sel S, timeout time.Duration, opts ...WaitOption) (bool, error) {
	var ws waitSettings
	for _, o := range opts {
		o(&ws)
	}
	s, err := selector.New(sel)
	if err != nil {
		return false, err
	}
	wo := wait.Options{Timeout: timeout, MaxScrolls: ws.maxScrolls}
	if len(ws.container) > 0 {
		if wo.Container, err = selector.New(ws.container); err != nil {
			return false, fmt.Errorf("container: %w", err)
		}
	}
	return u.s.engine.WaitFor(u.s.ctx, s, wo)
}

// Do runs an action list with the configured settle delays.
func (u *UI) Do(actions []action.Action, policy action.Policy) action.Report {
	return u.s.planned.Run(u.s.ctx, actions, policy)
}

func (u *UI) exec(a action.Action) (bool, error) {
	_, err := u.s.direct.Execute(u.s.ctx, a)
	if errors.Is(err, action.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Storage is the script's persistent key-value store.
type Storage struct{ s *session }

// Get returns the value stored under key and whether it exists.
func (st *Storage) Get(key string) (string, bool, error) {
	if st.s.store == nil {
		return "", false, ErrNoStorage
	}
	return st.s.store.Get(st.s.ctx, key)
}

// Put stores value under key, replacing any previous value.
func (st *Storage) Put(key, value string) error {
	if st.s.store == nil {
		return ErrNoStorage
	}
	return st.s.store.Put(st.s.ctx, key, value)
}

// Network makes HTTP requests.
type Network struct{ s *session }

// Fetch performs a request. Non-2xx statuses are returned as responses.
func (n *Network) Fetch(url string, opts netfetch.Options) (*netfetch.Response, error) {
	if n.s.fetcher == nil {
		return nil, ErrNoNetwork
	}
	return n.s.fetcher.Fetch(n.s.ctx, url, opts)
}

// Agent asks the configured planner for actions.
type Agent struct{ s *session }

// Plan returns the planner's actions for task without running them.
func (a *Agent) Plan(task string) ([]action.Action, error) {
	if a.s.planner == nil {
		return nil, ErrNoPlanner
	}
	a.s.log.Info().Str("task", task).Msg("planning")
	return a.s.planner.Plan(a.s.ctx, task)
}

// Do plans task and runs the resulting actions.
func (a *Agent) Do(task string, policy action.Policy) (action.Report, error) {
	actions, err := a.Plan(task)
	if err != nil {
		return action.Report{}, err
	}
	a.s.log.Info().Int("actions", len(actions)).Msg("plan received")
	return a.s.planned.Run(a.s.ctx, actions, policy), nil
}
