package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/tas33n/DroidWright/internal/action"
	"github.com/tas33n/DroidWright/internal/logging"
	"github.com/tas33n/DroidWright/internal/netfetch"
	"github.com/tas33n/DroidWright/internal/planner"
	"github.com/tas33n/DroidWright/internal/platform"
	"github.com/tas33n/DroidWright/internal/storage"
	"github.com/tas33n/DroidWright/internal/wait"
)

// newProvider opens a device backend. Tests replace it with a fake device.
var newProvider = platform.NewProvider

// session is one device with the engine and dispatcher wired over it.
type session struct {
	serial     string
	provider   *platform.Provider
	engine     *wait.Engine
	dispatcher *action.Dispatcher
}

// newSession connects to the device with the given serial, or the
// configured one when serial is empty.
func newSession(serial string) (*session, error) {
	if serial == "" {
		serial = appConfig.ADB.Serial
	}
	p, err := newProvider(platform.Options{
		Serial:  serial,
		ADBPath: appConfig.ADB.Path,
		Log:     logging.Component(appLog, "adb"),
	})
	if err != nil {
		return nil, err
	}
	log := appLog.With().Str("device", serial).Logger()
	engine := wait.New(p.Snapshotter, p.Gesturer, p.Device, appConfig.Wait, logging.Component(log, "engine"))
	return &session{
		serial:     serial,
		provider:   p,
		engine:     engine,
		dispatcher: action.NewDispatcher(p, engine, appConfig.Dispatch, logging.Component(log, "dispatch")),
	}, nil
}

// run executes actions and prints the report. A failed step fails the
// command after the report is printed.
func (s *session) run(ctx context.Context, actions []action.Action, policy action.Policy) error {
	rep := s.dispatcher.Run(ctx, actions, policy)
	if err := printResult(rep); err != nil {
		return err
	}
	return reportError(rep)
}

// reportError converts a failed report into the command's error.
func reportError(rep action.Report) error {
	if rep.OK {
		return nil
	}
	if rep.Error != "" {
		return errors.New(rep.Error)
	}
	failed := 0
	for _, r := range rep.Results {
		if r.Status == action.StatusError {
			failed++
		}
	}
	return fmt.Errorf("%d of %d steps failed", failed, rep.Steps)
}

// openStore opens the configured script database.
func openStore(ctx context.Context) (*storage.SQLite, error) {
	return storage.Open(ctx, appConfig.Storage.Path)
}

func newFetcher() *netfetch.HTTP {
	return netfetch.New(appConfig.Network, logging.Component(appLog, "net"))
}

// newPlanner builds the configured planner. A Gemini planner without an API
// key yields a nil source so commands that never plan still run.
func newPlanner(ctx context.Context) (planner.Source, error) {
	log := logging.Component(appLog, "planner")
	pc := appConfig.Planner
	switch pc.Provider {
	case "http":
		var headers map[string]string
		if pc.APIKey != "" {
			headers = map[string]string{"Authorization": "Bearer " + pc.APIKey}
		}
		return planner.NewHTTP(newFetcher(), pc.URL, headers, log), nil
	default:
		src, err := planner.NewGemini(ctx, pc.GeminiConfig, log)
		if errors.Is(err, planner.ErrMissingAPIKey) {
			log.Debug().Msg("no planner API key configured")
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("planner: %w", err)
		}
		return src, nil
	}
}
