package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tas33n/DroidWright/internal/action"
)

var scrollCmd = &cobra.Command{
	Use:   "scroll",
	Short: "Scroll a container or the whole screen by one page",
	Long:  "Scroll the first element matching the selector, or the full screen when no selector is given.",
	RunE:  runScroll,
}

func init() {
	rootCmd.AddCommand(scrollCmd)
	addSelectorFlags(scrollCmd)
	scrollCmd.Flags().String("direction", "down", "Scroll direction: down, up")
}

func runScroll(cmd *cobra.Command, args []string) error {
	direction, _ := cmd.Flags().GetString("direction")
	container, err := selectorFromFlags(cmd)
	if err != nil {
		return err
	}
	s, err := newSession("")
	if err != nil {
		return err
	}
	return s.run(cmd.Context(), []action.Action{action.Scroll{
		Container: container,
		Direction: action.Direction(direction),
	}}, action.Policy{StopOnError: true})
}
