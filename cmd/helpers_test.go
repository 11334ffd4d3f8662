package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestParseParams(t *testing.T) {
	got, err := parseParams([]string{"name=Jane Doe", " count =3", "empty=", "url=https://x.test/?a=b"})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"name": "Jane Doe", "count": "3", "empty": "", "url": "https://x.test/?a=b"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("param %q: got %q, want %q", k, got[k], v)
		}
	}

	for _, bad := range []string{"novalue", "=x"} {
		if _, err := parseParams([]string{bad}); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func newSelectorCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "x"}
	addSelectorFlags(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatal(err)
	}
	return cmd
}

func TestSelectorFromFlags(t *testing.T) {
	cmd := newSelectorCmd(t, "--selector", `{"text":"Old","clickable":true}`, "--text", "Login")
	sel, err := selectorFromFlags(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := sel.Get("text"); v != "Login" {
		t.Errorf("shorthand flag should win over --selector, got text=%q", v)
	}
	if v, _ := sel.Get("clickable"); v != "true" {
		t.Errorf("clickable = %q", v)
	}

	// YAML flow maps are accepted too
	cmd = newSelectorCmd(t, "--selector", "{resource-id: submit, enabled: 1}")
	sel, err = selectorFromFlags(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := sel.Get("id"); v != "submit" {
		t.Errorf("id = %q", v)
	}
	if v, _ := sel.Get("enabled"); v != "true" {
		t.Errorf("enabled = %q", v)
	}
}

func TestSelectorFromFlags_Empty(t *testing.T) {
	sel, err := selectorFromFlags(newSelectorCmd(t))
	if err != nil {
		t.Fatal(err)
	}
	if !sel.IsZero() {
		t.Errorf("expected zero selector, got %s", sel)
	}
	if _, err := requireSelector(newSelectorCmd(t)); err == nil {
		t.Error("requireSelector should fail without flags")
	}
}

func TestSelectorFromFlags_Errors(t *testing.T) {
	for _, raw := range []string{`{"color":"red"}`, `[1,2]`, `{"clickable":"maybe"}`} {
		if _, err := selectorFromFlags(newSelectorCmd(t, "--selector", raw)); err == nil {
			t.Errorf("expected error for %s", raw)
		}
	}
}

func TestParseSelectorValue(t *testing.T) {
	sel, err := parseSelectorValue("")
	if err != nil || !sel.IsZero() {
		t.Errorf("empty value: %v %v", sel, err)
	}
	sel, err = parseSelectorValue(`{"scrollable":"true"}`)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := sel.Get("scrollable"); v != "true" {
		t.Errorf("scrollable = %q", v)
	}
}

func TestParseInts(t *testing.T) {
	got, err := parseInts([]string{"1", "-2", "30"})
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != 1 || got[1] != -2 || got[2] != 30 {
		t.Errorf("got %v", got)
	}
	if _, err := parseInts([]string{"1", "x"}); err == nil || !strings.Contains(err.Error(), "argument 2") {
		t.Errorf("expected argument error, got %v", err)
	}
}

func TestReadInput(t *testing.T) {
	orig := stdin
	defer func() { stdin = orig }()
	stdin = strings.NewReader("from stdin")

	for _, path := range []string{"", "-"} {
		stdin = strings.NewReader("from stdin")
		data, err := readInput(path)
		if err != nil || string(data) != "from stdin" {
			t.Errorf("readInput(%q) = %q, %v", path, data, err)
		}
	}

	file := filepath.Join(t.TempDir(), "steps.yaml")
	if err := os.WriteFile(file, []byte("from file"), 0o644); err != nil {
		t.Fatal(err)
	}
	data, err := readInput(file)
	if err != nil || string(data) != "from file" {
		t.Errorf("readInput(file) = %q, %v", data, err)
	}
	if _, err := readInput(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for a missing file")
	}
}
