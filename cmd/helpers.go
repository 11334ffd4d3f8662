package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tas33n/DroidWright/internal/output"
	"github.com/tas33n/DroidWright/internal/selector"
)

// stdin is read by commands that accept "-" or no file. Tests replace it.
var stdin io.Reader = os.Stdin

// selectorFlagNames maps shorthand flags to selector attributes.
var selectorFlagNames = map[string]string{
	"text":  "text",
	"desc":  "desc",
	"id":    "id",
	"class": "class",
}

// addSelectorFlags adds --selector and the shorthand attribute flags.
func addSelectorFlags(cmd *cobra.Command) {
	cmd.Flags().String("selector", "", "Selector as a JSON or YAML map, e.g. '{\"text\":\"Login\",\"clickable\":true}'")
	cmd.Flags().String("text", "", "Match element text exactly")
	cmd.Flags().String("desc", "", "Match content description exactly")
	cmd.Flags().String("id", "", "Match resource id (full or short form)")
	cmd.Flags().String("class", "", "Match widget class, e.g. android.widget.Button")
}

// selectorFromFlags combines --selector with the shorthand flags, which take
// precedence. It returns the zero selector when no flag is set.
func selectorFromFlags(cmd *cobra.Command) (selector.Selector, error) {
	attrs := map[string]any{}
	if raw, _ := cmd.Flags().GetString("selector"); raw != "" {
		if err := yaml.Unmarshal([]byte(raw), &attrs); err != nil {
			return selector.Selector{}, fmt.Errorf("--selector: %w", err)
		}
	}
	for flag, attr := range selectorFlagNames {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
			attrs[attr] = f.Value.String()
		}
	}
	if len(attrs) == 0 {
		return selector.Selector{}, nil
	}
	return selector.Parse(attrs)
}

// requireSelector is selectorFromFlags for commands that cannot run
// without one.
func requireSelector(cmd *cobra.Command) (selector.Selector, error) {
	sel, err := selectorFromFlags(cmd)
	if err != nil {
		return sel, err
	}
	if sel.IsZero() {
		return sel, fmt.Errorf("a selector is required: use --selector, --text, --desc, --id or --class")
	}
	return sel, nil
}

// parseSelectorValue parses a JSON or YAML selector map. An empty string is
// the zero selector.
func parseSelectorValue(raw string) (selector.Selector, error) {
	if strings.TrimSpace(raw) == "" {
		return selector.Selector{}, nil
	}
	var attrs map[string]any
	if err := yaml.Unmarshal([]byte(raw), &attrs); err != nil {
		return selector.Selector{}, err
	}
	return selector.Parse(attrs)
}

// parseParams turns repeated key=value flags into a map.
func parseParams(pairs []string) (map[string]string, error) {
	params := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid --param %q: expected key=value", p)
		}
		params[strings.TrimSpace(k)] = v
	}
	return params, nil
}

// readInput reads a file, or stdin when path is empty or "-".
func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// parseInts converts positional integer arguments.
func parseInts(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %q is not an integer", i+1, a)
		}
		out[i] = n
	}
	return out, nil
}

func printResult(v any) error {
	return output.Print(v)
}
