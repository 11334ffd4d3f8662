package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tas33n/DroidWright/internal/model"
	"github.com/tas33n/DroidWright/internal/output"
	"github.com/tas33n/DroidWright/internal/wait"
)

// WatchEvent is one line of watch output.
type WatchEvent struct {
	Type    string   `json:"type"` // snapshot, changed, error, done
	TS      int64    `json:"ts"`
	Hash    string   `json:"hash,omitempty"`
	Count   int      `json:"count,omitempty"`
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
	Error   string   `json:"error,omitempty"`
	Events  int      `json:"events,omitempty"`
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch for UI changes and stream them as JSONL",
	Long: `Poll the UI hierarchy and emit an event whenever the screen changes, with
the labels of elements that appeared and disappeared.

No output is emitted while the screen is stable. Output is always JSONL
regardless of the --format flag. Use Ctrl+C, --duration or --polls to stop.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().Duration("interval", time.Second, "Polling interval")
	watchCmd.Flags().Duration("duration", 0, "Max time to watch (0 = until interrupted)")
	watchCmd.Flags().Int("polls", 0, "Stop after this many polls (0 = unlimited)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	interval, _ := cmd.Flags().GetDuration("interval")
	duration, _ := cmd.Flags().GetDuration("duration")
	polls, _ := cmd.Flags().GetInt("polls")

	s, err := newSession("")
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	enc := json.NewEncoder(output.Writer)
	enc.SetEscapeHTML(false)

	start := time.Now()
	snap, err := s.provider.Snapshotter.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("initial snapshot failed: %w", err)
	}
	prevHash := snap.Hash()
	prevFlat := model.FlattenElements(snap.Roots)
	if err := enc.Encode(WatchEvent{Type: "snapshot", TS: time.Now().UnixMilli(), Hash: prevHash, Count: len(prevFlat)}); err != nil {
		return err
	}

	events := 0
	for n := 0; polls <= 0 || n < polls; n++ {
		if duration > 0 && time.Since(start) >= duration {
			break
		}
		if err := wait.Sleep(ctx, interval); err != nil {
			break
		}

		snap, err := s.provider.Snapshotter.Snapshot(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			enc.Encode(WatchEvent{Type: "error", TS: time.Now().UnixMilli(), Error: err.Error()}) //nolint:errcheck
			continue
		}
		hash := snap.Hash()
		if hash == prevHash {
			continue
		}
		flat := model.FlattenElements(snap.Roots)
		added, removed := diffLabels(prevFlat, flat)
		if err := enc.Encode(WatchEvent{
			Type:    "changed",
			TS:      time.Now().UnixMilli(),
			Hash:    hash,
			Count:   len(flat),
			Added:   added,
			Removed: removed,
		}); err != nil {
			return err
		}
		events++
		prevHash, prevFlat = hash, flat
	}

	return enc.Encode(WatchEvent{Type: "done", TS: time.Now().UnixMilli(), Events: events})
}

// elementLabel names an element by its most specific identifying text.
func elementLabel(el model.FlatElement) string {
	switch {
	case el.Text != "":
		return el.Role + ":" + el.Text
	case el.Description != "":
		return el.Role + ":" + el.Description
	case el.ResourceID != "":
		return el.Role + "#" + el.ResourceID
	}
	return ""
}

// diffLabels returns the labels present only in curr and only in prev.
// Repeated labels are compared by count. Unlabelled elements are ignored.
func diffLabels(prev, curr []model.FlatElement) (added, removed []string) {
	counts := map[string]int{}
	for _, el := range prev {
		if l := elementLabel(el); l != "" {
			counts[l]--
		}
	}
	for _, el := range curr {
		if l := elementLabel(el); l != "" {
			counts[l]++
		}
	}
	for _, el := range curr {
		l := elementLabel(el)
		if counts[l] > 0 {
			added = append(added, l)
			counts[l]--
		}
	}
	for _, el := range prev {
		l := elementLabel(el)
		if counts[l] < 0 {
			removed = append(removed, l)
			counts[l]++
		}
	}
	return added, removed
}
