package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/tas33n/DroidWright/internal/action"
	"github.com/tas33n/DroidWright/internal/model"
)

var tapCmd = &cobra.Command{
	Use:   "tap",
	Short: "Tap an element or a screen point",
	Long: `Tap the centre of the first element matching a selector, or absolute
screen coordinates with --x and --y. --hold turns the tap into a long press.

Examples:
  droidwright tap --text Login
  droidwright tap --x 540 --y 1200 --hold 1s`,
	RunE: runTap,
}

func init() {
	rootCmd.AddCommand(tapCmd)
	addSelectorFlags(tapCmd)
	tapCmd.Flags().Int("x", 0, "Tap at X screen coordinate")
	tapCmd.Flags().Int("y", 0, "Tap at Y screen coordinate")
	tapCmd.Flags().Duration("hold", 0, "Press and hold for this long (long tap)")
}

func runTap(cmd *cobra.Command, args []string) error {
	target, err := targetFromFlags(cmd)
	if err != nil {
		return err
	}
	var a action.Action = action.Tap{Target: target}
	if cmd.Flags().Changed("hold") {
		hold, _ := cmd.Flags().GetDuration("hold")
		a = action.LongTap{Target: target, Duration: hold}
	}

	s, err := newSession("")
	if err != nil {
		return err
	}
	return s.run(cmd.Context(), []action.Action{a}, action.Policy{StopOnError: true})
}

// targetFromFlags reads a selector or an --x/--y point.
func targetFromFlags(cmd *cobra.Command) (action.Target, error) {
	sel, err := selectorFromFlags(cmd)
	if err != nil {
		return action.Target{}, err
	}
	if !sel.IsZero() {
		return action.Target{Selector: sel}, nil
	}
	if !cmd.Flags().Changed("x") || !cmd.Flags().Changed("y") {
		return action.Target{}, errors.New("specify a selector (--selector, --text, --desc, --id, --class) or both --x and --y")
	}
	x, _ := cmd.Flags().GetInt("x")
	y, _ := cmd.Flags().GetInt("y")
	return action.Target{Point: &model.Point{X: x, Y: y}}, nil
}
