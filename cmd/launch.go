package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// LaunchResult is the output of the launch command.
type LaunchResult struct {
	Package  string `yaml:"package"  json:"package"`
	Launched bool   `yaml:"launched" json:"launched"`
}

var launchCmd = &cobra.Command{
	Use:   "launch <package>",
	Short: "Start an app by package name",
	Long:  "Start an app's launcher activity, e.g. droidwright launch com.android.settings",
	Args:  cobra.ExactArgs(1),
	RunE:  runLaunch,
}

func init() {
	rootCmd.AddCommand(launchCmd)
}

func runLaunch(cmd *cobra.Command, args []string) error {
	s, err := newSession("")
	if err != nil {
		return err
	}
	if s.provider.Apps == nil {
		return errors.New("app control not available on this device")
	}
	ok, err := s.provider.Apps.Launch(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if err := printResult(LaunchResult{Package: args[0], Launched: ok}); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s could not be launched", args[0])
	}
	return nil
}
