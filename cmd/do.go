package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tas33n/DroidWright/internal/action"
)

var doCmd = &cobra.Command{
	Use:   "do [file]",
	Short: "Execute a list of actions",
	Long: `Execute an action list from a file, or from stdin when no file is given.

The list is JSON or YAML. Each entry carries an "action" tag and the fields of
that action. Unknown tags are skipped; by default execution stops on the
first failing step.

Example:
  droidwright do <<'EOF'
  - action: ui.waitFor
    selector: { text: Login }
    timeout: 5000
  - action: ui.setText
    selector: { id: username }
    text: jane
  - action: ui.tap
    selector: { text: Login, clickable: true }
  - action: device.press
    key: back
  EOF`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDo,
}

func init() {
	rootCmd.AddCommand(doCmd)
	doCmd.Flags().Bool("stop-on-error", true, "Stop execution on first error")
}

func runDo(cmd *cobra.Command, args []string) error {
	stopOnError, _ := cmd.Flags().GetBool("stop-on-error")

	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	data, err := readInput(path)
	if err != nil {
		return err
	}
	actions, err := action.ParseSequence(data)
	if err != nil {
		return fmt.Errorf("failed to parse actions: %w", err)
	}

	s, err := newSession("")
	if err != nil {
		return err
	}
	return s.run(cmd.Context(), actions, action.Policy{StopOnError: stopOnError})
}
