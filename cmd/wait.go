package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tas33n/DroidWright/internal/action"
)

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for an element to appear",
	Long: `Poll the screen until an element matches the selector or the timeout
elapses. With --max-scrolls the container (or the whole screen) is scrolled
between checks instead of polling. A timeout of 0 checks once.

Not finding the element is reported as found: false, not as an error.

Example:
  droidwright wait --text "Settings" --timeout 10s --max-scrolls 5`,
	RunE: runWait,
}

func init() {
	rootCmd.AddCommand(waitCmd)
	addSelectorFlags(waitCmd)
	waitCmd.Flags().Duration("timeout", 10*time.Second, "Max time to wait (0 = check once)")
	waitCmd.Flags().Int("max-scrolls", 0, "Scroll up to this many times to reveal the element")
	waitCmd.Flags().String("container", "", "Selector of the container to scroll (default: full screen)")
}

func runWait(cmd *cobra.Command, args []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	maxScrolls, _ := cmd.Flags().GetInt("max-scrolls")
	containerRaw, _ := cmd.Flags().GetString("container")

	sel, err := requireSelector(cmd)
	if err != nil {
		return err
	}
	container, err := parseSelectorValue(containerRaw)
	if err != nil {
		return err
	}

	s, err := newSession("")
	if err != nil {
		return err
	}
	return s.run(cmd.Context(), []action.Action{action.WaitFor{
		Selector:   sel,
		Timeout:    timeout,
		MaxScrolls: maxScrolls,
		Container:  container,
	}}, action.Policy{StopOnError: true})
}
