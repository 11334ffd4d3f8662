package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tas33n/DroidWright/internal/model"
)

// Format represents the output format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// OutputFormat is the current output format, set by the root command's --format flag.
var OutputFormat Format = FormatYAML

// PrettyOutput enables pretty-printing for JSON output.
var PrettyOutput bool

// Writer receives everything printed. Tests replace it.
var Writer io.Writer = os.Stdout

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatYAML, FormatJSON:
		return Format(s), nil
	}
	return "", fmt.Errorf("unsupported output format: %s (use yaml or json)", s)
}

// DumpResult is the top-level output of the `dump` command.
type DumpResult struct {
	Device   string          `yaml:"device,omitempty"  json:"device,omitempty"`
	Package  string          `yaml:"package,omitempty" json:"package,omitempty"`
	TS       int64           `yaml:"ts"                json:"ts"`
	Hash     string          `yaml:"hash,omitempty"    json:"hash,omitempty"`
	Elements []model.Element `yaml:"elements"          json:"elements"`
}

// DumpFlatResult is the top-level output when --flat is used.
type DumpFlatResult struct {
	Device   string              `yaml:"device,omitempty"  json:"device,omitempty"`
	Package  string              `yaml:"package,omitempty" json:"package,omitempty"`
	TS       int64               `yaml:"ts"                json:"ts"`
	Hash     string              `yaml:"hash,omitempty"    json:"hash,omitempty"`
	Elements []model.FlatElement `yaml:"elements"          json:"elements"`
}

// Print serializes v to Writer in the current output format.
func Print(v interface{}) error {
	switch OutputFormat {
	case FormatJSON:
		if PrettyOutput {
			return PrintPrettyJSON(v)
		}
		return PrintJSON(v)
	case FormatYAML:
		return PrintYAML(v)
	default:
		return fmt.Errorf("unsupported output format: %s", OutputFormat)
	}
}

// PrintJSON serializes v to Writer as compact single-line JSON.
func PrintJSON(v interface{}) error {
	enc := json.NewEncoder(Writer)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// PrintPrettyJSON serializes v to Writer as indented JSON.
func PrintPrettyJSON(v interface{}) error {
	enc := json.NewEncoder(Writer)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// PrintYAML serializes v to Writer as YAML.
func PrintYAML(v interface{}) error {
	enc := yaml.NewEncoder(Writer)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	return enc.Close()
}
