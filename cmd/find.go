package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tas33n/DroidWright/internal/selector"
	"github.com/tas33n/DroidWright/internal/server"
)

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Find elements matching a selector",
	Long: `Search the current screen for elements matching every given attribute.
Matches are listed in document order with their bounds and tap point.

Example:
  droidwright find --class android.widget.Button --selector '{enabled: true}'`,
	RunE: runFind,
}

var existsCmd = &cobra.Command{
	Use:   "exists",
	Short: "Check whether an element matching a selector is on screen",
	Long:  "Check the current screen once. Exits 0 with found: false when nothing matches.",
	RunE:  runExists,
}

func init() {
	rootCmd.AddCommand(findCmd)
	addSelectorFlags(findCmd)
	findCmd.Flags().Int("limit", 10, "Max matching elements to return (0 = all)")

	rootCmd.AddCommand(existsCmd)
	addSelectorFlags(existsCmd)
}

func runFind(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	sel, err := requireSelector(cmd)
	if err != nil {
		return err
	}
	s, err := newSession("")
	if err != nil {
		return err
	}
	snap, err := s.provider.Snapshotter.Snapshot(cmd.Context())
	if err != nil {
		return err
	}
	handles, err := selector.FindAll(sel, snap)
	if err != nil {
		return err
	}

	res := server.FindResult{Found: len(handles) > 0, Count: len(handles)}
	for i, h := range handles {
		if limit > 0 && i >= limit {
			break
		}
		res.Matches = append(res.Matches, server.NewMatch(h))
	}
	return printResult(res)
}

func runExists(cmd *cobra.Command, args []string) error {
	sel, err := requireSelector(cmd)
	if err != nil {
		return err
	}
	s, err := newSession("")
	if err != nil {
		return err
	}
	snap, err := s.provider.Snapshotter.Snapshot(cmd.Context())
	if err != nil {
		return err
	}
	h, found, err := selector.FindFirst(sel, snap)
	if err != nil {
		return err
	}
	res := server.FindResult{Found: found}
	if found {
		res.Count = 1
		res.Matches = []server.Match{server.NewMatch(h)}
	}
	return printResult(res)
}
