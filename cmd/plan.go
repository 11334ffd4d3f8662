package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tas33n/DroidWright/internal/action"
	"github.com/tas33n/DroidWright/internal/script"
	"github.com/tas33n/DroidWright/internal/server"
)

var planCmd = &cobra.Command{
	Use:   "plan <task>",
	Short: "Ask the planner for actions and run them",
	Long: `Send a task to the configured planner (Gemini or an HTTP plan server),
then execute the action list it returns. Use --dry-run to only print the plan.

Example:
  droidwright plan "open settings and turn on dark mode" --dry-run`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().Bool("dry-run", false, "Print the planned actions without running them")
	planCmd.Flags().Bool("stop-on-error", true, "Stop execution on first error")
}

func runPlan(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	stopOnError, _ := cmd.Flags().GetBool("stop-on-error")
	task := strings.TrimSpace(strings.Join(args, " "))
	if task == "" {
		return errors.New("task must not be empty")
	}

	ctx := cmd.Context()
	src, err := newPlanner(ctx)
	if err != nil {
		return err
	}
	if src == nil {
		return fmt.Errorf("%w: set planner.api_key or GEMINI_API_KEY", script.ErrNoPlanner)
	}
	actions, err := src.Plan(ctx, task)
	if err != nil {
		return fmt.Errorf("plan: %w", err)
	}

	res := server.PlanResult{Task: task, Actions: make([]map[string]any, 0, len(actions))}
	for _, a := range actions {
		res.Actions = append(res.Actions, action.Encode(a))
	}
	if dryRun {
		return printResult(res)
	}

	s, err := newSession("")
	if err != nil {
		return err
	}
	rep := s.dispatcher.Run(ctx, actions, action.Policy{StopOnError: stopOnError})
	res.Report = &rep
	if err := printResult(res); err != nil {
		return err
	}
	return reportError(rep)
}
