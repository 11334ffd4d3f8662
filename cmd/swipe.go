package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tas33n/DroidWright/internal/action"
	"github.com/tas33n/DroidWright/internal/model"
)

var swipeCmd = &cobra.Command{
	Use:   "swipe <x1> <y1> <x2> <y2>",
	Short: "Swipe between two screen points",
	Args:  cobra.ExactArgs(4),
	RunE:  runSwipe,
}

func init() {
	rootCmd.AddCommand(swipeCmd)
	swipeCmd.Flags().Duration("duration", 0, "Gesture duration (default: dispatch.swipe_duration)")
}

func runSwipe(cmd *cobra.Command, args []string) error {
	duration, _ := cmd.Flags().GetDuration("duration")
	coords, err := parseInts(args)
	if err != nil {
		return err
	}

	s, err := newSession("")
	if err != nil {
		return err
	}
	return s.run(cmd.Context(), []action.Action{action.Swipe{
		From:     model.Point{X: coords[0], Y: coords[1]},
		To:       model.Point{X: coords[2], Y: coords[3]},
		Duration: duration,
	}}, action.Policy{StopOnError: true})
}
