package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tas33n/DroidWright/internal/model"
	"github.com/tas33n/DroidWright/internal/output"
	"github.com/tas33n/DroidWright/internal/platform"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the on-screen UI hierarchy",
	Long:  "Capture the device's UI hierarchy with uiautomator and print it as YAML or JSON.",
	RunE:  runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().Bool("flat", false, "Flatten the tree into a list with path breadcrumbs")
	dumpCmd.Flags().Bool("prune", false, "Drop layout-only wrappers with no text, id or interaction")
	dumpCmd.Flags().String("bbox", "", "Only include elements intersecting bounds [x1,y1][x2,y2]")
}

func runDump(cmd *cobra.Command, args []string) error {
	flat, _ := cmd.Flags().GetBool("flat")
	prune, _ := cmd.Flags().GetBool("prune")
	bbox, _ := cmd.Flags().GetString("bbox")

	var area model.Rect
	if bbox != "" {
		r, err := platform.ParseBounds(bbox)
		if err != nil {
			return err
		}
		area = r
	}

	s, err := newSession("")
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	snap, err := s.provider.Snapshotter.Snapshot(ctx)
	if err != nil {
		return err
	}

	elements := snap.Roots
	if bbox != "" {
		elements = model.FilterByBounds(elements, area)
	}
	if prune {
		elements = model.PruneLayout(elements)
	}
	var pkg string
	if s.provider.Apps != nil {
		if p, err := s.provider.Apps.CurrentPackage(ctx); err == nil {
			pkg = p
		}
	}

	if flat {
		return printResult(output.DumpFlatResult{
			Device:   s.serial,
			Package:  pkg,
			TS:       snap.TakenAt.UnixMilli(),
			Hash:     snap.Hash(),
			Elements: model.FlattenElements(elements),
		})
	}
	return printResult(output.DumpResult{
		Device:   s.serial,
		Package:  pkg,
		TS:       snap.TakenAt.UnixMilli(),
		Hash:     snap.Hash(),
		Elements: elements,
	})
}
