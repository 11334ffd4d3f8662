// Package planner turns a natural-language task into an action sequence
// using an external source such as a language model.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tas33n/DroidWright/internal/action"
)

// ErrNoPlan is returned when a source's reply contains no action list.
var ErrNoPlan = errors.New("no action list in planner reply")

// Source produces actions for a task. Its output is untrusted: callers run
// it through the dispatcher, which validates every step.
type Source interface {
	Plan(ctx context.Context, task string) ([]action.Action, error)
}

// SystemPrompt instructs a model to answer with an action list in the
// dispatcher's wire format.
const SystemPrompt = `You are an expert Android automation assistant.
Generate a JSON array of actions to complete the task. Reply with the array only.

Available actions:
  {"action":"ui.tap","selector":{...}} or {"action":"ui.tap","x":N,"y":N}
  {"action":"ui.longTap","selector":{...},"duration":MS}
  {"action":"ui.setText","selector":{...},"text":"..."}
  {"action":"ui.scroll","selector":{...},"direction":"down"|"up"}
  {"action":"ui.swipe","x1":N,"y1":N,"x2":N,"y2":N,"duration":MS}
  {"action":"ui.waitFor","selector":{...},"timeout":MS,"maxScrolls":N,"container":{...}}
  {"action":"device.press","key":"back"|"home"|"enter"|"recent"}
  {"action":"device.sleep","ms":MS}
  {"action":"log","message":"..."}

Selectors match UI elements exactly on any of: text, desc, id, class, package,
clickable, scrollable, checked, enabled, selected. Example: {"desc":"Like"}.`

// Prompt combines the system prompt and a task into one message, for
// sources that take a single prompt string.
func Prompt(task string) string {
	return SystemPrompt + "\n\nTask: " + task
}

// ParsePlan extracts and decodes the action list from a model reply, which
// may wrap the JSON in prose or a code fence. Bracketed prose before the list
// is skipped: the first JSON array that decodes as an action sequence wins.
func ParsePlan(text string) ([]action.Action, error) {
	candidates := jsonArrays(text)
	if len(candidates) == 0 {
		return nil, noPlan(text)
	}
	var firstErr error
	for _, raw := range candidates {
		actions, err := action.ParseSequence([]byte(raw))
		if err == nil {
			return actions, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, fmt.Errorf("decode plan: %w", firstErr)
}

// ExtractJSONArray returns the first balanced top-level array in text that
// is valid JSON, ignoring brackets inside strings.
func ExtractJSONArray(text string) (string, error) {
	candidates := jsonArrays(text)
	if len(candidates) == 0 {
		return "", noPlan(text)
	}
	return candidates[0], nil
}

func noPlan(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: empty reply", ErrNoPlan)
	}
	return ErrNoPlan
}

// jsonArrays lists every valid JSON array in text, outermost first. A
// bracketed span that is not JSON is skipped one byte at a time so arrays
// nested inside it are still found.
func jsonArrays(text string) []string {
	var out []string
	for i := 0; i < len(text); {
		start := strings.IndexByte(text[i:], '[')
		if start < 0 {
			break
		}
		start += i
		end := closingBracket(text, start)
		if end > 0 && json.Valid([]byte(text[start:end+1])) {
			out = append(out, text[start:end+1])
			i = end + 1
			continue
		}
		i = start + 1
	}
	return out
}

// closingBracket returns the index of the ']' balancing the '[' at start,
// or -1 when the array is not closed.
func closingBracket(text string, start int) int {
	depth := 0
	inStr := false
	esc := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if esc {
			esc = false
			continue
		}
		switch ch {
		case '\\':
			if inStr {
				esc = true
			}
		case '"':
			inStr = !inStr
		case '[':
			if !inStr {
				depth++
			}
		case ']':
			if !inStr {
				depth--
				if depth == 0 {
					return i
				}
			}
		}
	}
	return -1
}
