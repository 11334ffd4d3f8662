package cmd

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tas33n/DroidWright/internal/logging"
	"github.com/tas33n/DroidWright/internal/script"
	"github.com/tas33n/DroidWright/internal/scripts"
	"github.com/tas33n/DroidWright/internal/storage"
)

var runCmd = &cobra.Command{
	Use:   "run <script>",
	Short: "Run a built-in automation script",
	Long: `Run a built-in script to completion and print its run record.

Parameters are passed as repeated --param key=value flags. With --devices the
script runs on several devices at once, one independent session per device.

Examples:
  droidwright run form-fill --param name="Jane Doe"
  droidwright run like-posts --devices emulator-5554,emulator-5556`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

// runOptions customize every script runner. Tests inject a clock.
var runOptions []script.Option

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringArrayP("param", "p", nil, "Script parameter as key=value (repeatable)")
	runCmd.Flags().StringSlice("devices", nil, "Run on each of these serials concurrently")
	runCmd.Flags().Bool("ephemeral", false, "Keep script storage in memory and discard it after the run")
}

func runRun(cmd *cobra.Command, args []string) error {
	sc, ok := scripts.Lookup(args[0])
	if !ok {
		var names []string
		for _, s := range scripts.All() {
			names = append(names, s.Name())
		}
		return fmt.Errorf("unknown script %q (available: %s)", args[0], strings.Join(names, ", "))
	}
	pairs, _ := cmd.Flags().GetStringArray("param")
	params, err := parseParams(pairs)
	if err != nil {
		return err
	}
	serials, _ := cmd.Flags().GetStringSlice("devices")
	if len(serials) == 0 {
		serials = []string{""}
	}

	ctx := cmd.Context()
	var store storage.Store
	if ephemeral, _ := cmd.Flags().GetBool("ephemeral"); ephemeral {
		mem := storage.NewMemory()
		defer func() {
			appLog.Debug().Strs("keys", mem.Keys()).Msg("discarding ephemeral storage")
		}()
		store = mem
	} else {
		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close() //nolint:errcheck
		store = db.Namespace(sc.Name())
	}
	src, err := newPlanner(ctx)
	if err != nil {
		return err
	}
	fetcher := newFetcher()

	var (
		mu      sync.Mutex
		records []script.Record
	)
	// Sessions are independent: a device that cannot be reached yields a
	// failed record and leaves the other runs alone.
	var g errgroup.Group
	for _, serial := range serials {
		g.Go(func() error {
			var rec script.Record
			s, err := newSession(serial)
			if err != nil {
				rec = connectFailure(sc.Name(), serial, err)
			} else {
				deps := script.Deps{
					Provider: s.provider,
					Store:    store,
					Fetcher:  fetcher,
					Planner:  src,
					Device:   s.serial,
					Params:   params,
				}
				rec = script.NewRunner(deps, appConfig.Runner(), logging.Component(appLog, "script"), runOptions...).Run(ctx, sc)
			}
			mu.Lock()
			records = append(records, rec)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(records, func(i, j int) bool { return records[i].Device < records[j].Device })
	if err := printResult(records); err != nil {
		return err
	}
	failed := 0
	for _, rec := range records {
		if rec.Failed() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d runs failed", failed, len(records))
	}
	return nil
}

// connectFailure records a run that never started because its device
// session could not be opened.
func connectFailure(name, serial string, err error) script.Record {
	if serial == "" {
		serial = appConfig.ADB.Serial
	}
	appLog.Error().Err(err).Str("device", serial).Str("script", name).Msg("device session failed")
	return script.Record{
		ID:      uuid.NewString(),
		Script:  name,
		Device:  serial,
		Result:  script.Notef("connect: %v", err),
		Started: time.Now(),
		Elapsed: "0s",
	}
}
