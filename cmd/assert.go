package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tas33n/DroidWright/internal/selector"
	"github.com/tas33n/DroidWright/internal/server"
	"github.com/tas33n/DroidWright/internal/wait"
)

// AssertResult is the output of an assert command.
type AssertResult struct {
	Pass    bool          `yaml:"pass"              json:"pass"`
	Error   string        `yaml:"error,omitempty"   json:"error,omitempty"`
	Element *server.Match `yaml:"element,omitempty" json:"element,omitempty"`
}

var assertCmd = &cobra.Command{
	Use:   "assert",
	Short: "Assert a UI condition is met",
	Long: `Check that an element matching the selector exists with the expected state,
or with --gone that none does.

Exits 0 when the assertion passes and 1 when it fails. With --timeout the
screen is polled until the assertion passes or the timeout elapses.

Example:
  droidwright assert --id dark_mode_switch --checked --timeout 3s`,
	RunE: runAssert,
}

func init() {
	rootCmd.AddCommand(assertCmd)
	addSelectorFlags(assertCmd)

	// State assertions, added to the selector
	assertCmd.Flags().Bool("checked", false, "Assert the element is checked")
	assertCmd.Flags().Bool("unchecked", false, "Assert the element is not checked")
	assertCmd.Flags().Bool("enabled", false, "Assert the element is enabled")
	assertCmd.Flags().Bool("disabled", false, "Assert the element is disabled")
	assertCmd.Flags().Bool("is-focused", false, "Assert the element has input focus")
	assertCmd.Flags().Bool("is-selected", false, "Assert the element is selected")
	assertCmd.Flags().Bool("gone", false, "Assert no element matches")

	assertCmd.Flags().Duration("timeout", 0, "Max time to poll (0 = single check)")
}

// assertStates maps state flags to the selector attribute they add.
var assertStates = []struct {
	flag, attr, value string
}{
	{"checked", "checked", "true"},
	{"unchecked", "checked", "false"},
	{"enabled", "enabled", "true"},
	{"disabled", "enabled", "false"},
	{"is-focused", "focused", "true"},
	{"is-selected", "selected", "true"},
}

func runAssert(cmd *cobra.Command, args []string) error {
	gone, _ := cmd.Flags().GetBool("gone")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	base, err := requireSelector(cmd)
	if err != nil {
		return err
	}
	attrs := base.Map()
	for _, st := range assertStates {
		if on, _ := cmd.Flags().GetBool(st.flag); on {
			if prev, dup := attrs[st.attr]; dup && prev != st.value {
				return fmt.Errorf("--%s contradicts another state flag", st.flag)
			}
			attrs[st.attr] = st.value
		}
	}
	sel, err := selector.New(attrs)
	if err != nil {
		return err
	}

	s, err := newSession("")
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	deadline := time.Now().Add(timeout)
	for {
		res, err := checkAssert(cmd, s, sel, base, gone)
		if err != nil {
			return err
		}
		if res.Pass {
			return printResult(res)
		}
		if timeout <= 0 || time.Now().After(deadline) {
			_ = printResult(res)
			return fmt.Errorf("assert failed: %s", res.Error)
		}
		if err := wait.Sleep(ctx, appConfig.Wait.PollInterval); err != nil {
			return err
		}
	}
}

// checkAssert performs a single check. base is the selector without state
// attributes, used to explain a failure.
func checkAssert(cmd *cobra.Command, s *session, sel, base selector.Selector, gone bool) (AssertResult, error) {
	snap, err := s.provider.Snapshotter.Snapshot(cmd.Context())
	if err != nil {
		return AssertResult{}, err
	}
	h, found, err := selector.FindFirst(sel, snap)
	if err != nil {
		return AssertResult{}, err
	}
	switch {
	case gone && !found:
		return AssertResult{Pass: true}, nil
	case gone:
		m := server.NewMatch(h)
		return AssertResult{Error: fmt.Sprintf("expected no element matching %s", sel), Element: &m}, nil
	case found:
		m := server.NewMatch(h)
		return AssertResult{Pass: true, Element: &m}, nil
	}

	res := AssertResult{Error: fmt.Sprintf("no element matches %s", sel)}
	if !sel.Equal(base) {
		if h, ok, _ := selector.FindFirst(base, snap); ok {
			m := server.NewMatch(h)
			res.Element = &m
			res.Error = fmt.Sprintf("element matching %s is not in the expected state", base)
		}
	}
	return res, nil
}
