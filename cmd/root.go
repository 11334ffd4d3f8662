package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tas33n/DroidWright/internal/config"
	"github.com/tas33n/DroidWright/internal/logging"
	"github.com/tas33n/DroidWright/internal/output"
	"github.com/tas33n/DroidWright/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "droidwright",
	Short: "Automate Android apps through their UI hierarchy",
	Long: `DroidWright drives an Android device over adb: it finds elements with
attribute selectors, waits and scrolls until they appear, and executes taps,
swipes and text input. Built-in scripts, planner-generated action lists and an
MCP server for agents all run on the same engine.`,
	SilenceUsage: true,
}

// Set by the root command before any subcommand runs.
var (
	appConfig config.Config
	appLog    = zerolog.Nop()
	logCloser io.Closer
)

// Execute runs the root command. It cancels in-flight device work on
// SIGINT or SIGTERM.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if logCloser != nil {
		logCloser.Close() //nolint:errcheck
	}
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	flags := rootCmd.PersistentFlags()
	flags.String("format", "yaml", "Output format: yaml, json")
	flags.Bool("pretty", false, "Pretty-print JSON output")
	flags.String("config", "", "Config file (default: ./droidwright.yaml, then ~/.config/droidwright/)")
	flags.StringP("serial", "s", "", "Device serial (default: the only attached device)")
	flags.String("adb", "", "Path to the adb binary")
	flags.String("log-level", "", "Log level: trace, debug, info, warn, error")
	flags.String("log-format", "", "Log format: console, json")
	rootCmd.PersistentPreRunE = setup
}

// setup applies output flags and loads configuration. Flags override the
// config file, which overrides the environment-free defaults.
func setup(cmd *cobra.Command, args []string) error {
	// Use the root persistent flag directly to avoid conflicts with
	// subcommand local flags (e.g. screenshot --format png/jpg).
	formatStr, _ := rootCmd.PersistentFlags().GetString("format")
	format, err := output.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	output.OutputFormat = format
	output.PrettyOutput, _ = rootCmd.PersistentFlags().GetBool("pretty")

	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	v := viper.New()
	path, _ := rootCmd.PersistentFlags().GetString("config")
	if err := config.ReadFile(v, path); err != nil {
		return err
	}
	for key, flag := range map[string]string{
		"adb.serial": "serial",
		"adb.path":   "adb",
		"log.level":  "log-level",
		"log.format": "log-format",
	} {
		if f := rootCmd.PersistentFlags().Lookup(flag); f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	log, closer, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	appConfig, appLog, logCloser = cfg, log, closer
	return nil
}
