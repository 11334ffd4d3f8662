package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/tas33n/DroidWright/internal/action"
	"github.com/tas33n/DroidWright/internal/platform"
)

var typeCmd = &cobra.Command{
	Use:   "type [text]",
	Short: "Type text into an input field",
	Long: `Tap the input field matching the selector to focus it, then type text.
Text can be passed as a positional argument or via --value.

Example:
  droidwright type --id username "jane@example.com"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runType,
}

var pressCmd = &cobra.Command{
	Use:   "press <key>",
	Short: "Press a hardware or navigation key",
	Long:  "Press a key by name (back, home, enter, menu, recent, tab, delete, power, volume_up, volume_down, search) or by numeric keycode.",
	Args:  cobra.ExactArgs(1),
	RunE:  runPress,
}

func init() {
	rootCmd.AddCommand(typeCmd)
	addSelectorFlags(typeCmd)
	typeCmd.Flags().String("value", "", "Text to type (alternative to positional arg)")

	rootCmd.AddCommand(pressCmd)
}

func runType(cmd *cobra.Command, args []string) error {
	value, _ := cmd.Flags().GetString("value")
	// Positional arg overrides --value
	if len(args) > 0 {
		value = args[0]
	}
	if value == "" {
		return errors.New("text to type is required")
	}
	sel, err := requireSelector(cmd)
	if err != nil {
		return err
	}

	s, err := newSession("")
	if err != nil {
		return err
	}
	return s.run(cmd.Context(), []action.Action{action.SetText{Selector: sel, Text: value}}, action.Policy{StopOnError: true})
}

func runPress(cmd *cobra.Command, args []string) error {
	key, err := platform.ParseKey(args[0])
	if err != nil {
		return err
	}
	s, err := newSession("")
	if err != nil {
		return err
	}
	return s.run(cmd.Context(), []action.Action{action.PressKey{Key: key}}, action.Policy{StopOnError: true})
}
