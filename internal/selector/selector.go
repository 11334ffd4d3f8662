// Package selector implements declarative attribute matching against UI
// snapshots.
package selector

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tas33n/DroidWright/internal/model"
)

var (
	// ErrEmptySelector is returned when a selector has no attributes.
	ErrEmptySelector = errors.New("selector has no attributes")
	// ErrUnknownAttribute is returned for attribute names the matcher
	// does not know how to compare.
	ErrUnknownAttribute = errors.New("unknown selector attribute")
)

type attrKind int

const (
	kindString attrKind = iota
	kindID
	kindBool
)

type attribute struct {
	kind attrKind
	str  func(model.Element) string
	flag func(model.Element) bool
}

// attributes maps canonical attribute names to element accessors.
var attributes = map[string]attribute{
	"text":          {kind: kindString, str: func(e model.Element) string { return e.Text }},
	"desc":          {kind: kindString, str: func(e model.Element) string { return e.Description }},
	"id":            {kind: kindID, str: func(e model.Element) string { return e.ResourceID }},
	"class":         {kind: kindString, str: func(e model.Element) string { return e.Class }},
	"package":       {kind: kindString, str: func(e model.Element) string { return e.Package }},
	"clickable":     {kind: kindBool, flag: func(e model.Element) bool { return e.Clickable }},
	"longClickable": {kind: kindBool, flag: func(e model.Element) bool { return e.LongClickable }},
	"scrollable":    {kind: kindBool, flag: func(e model.Element) bool { return e.Scrollable }},
	"enabled":       {kind: kindBool, flag: func(e model.Element) bool { return e.Enabled }},
	"checkable":     {kind: kindBool, flag: func(e model.Element) bool { return e.Checkable }},
	"checked":       {kind: kindBool, flag: func(e model.Element) bool { return e.Checked }},
	"focusable":     {kind: kindBool, flag: func(e model.Element) bool { return e.Focusable }},
	"focused":       {kind: kindBool, flag: func(e model.Element) bool { return e.Focused }},
	"selected":      {kind: kindBool, flag: func(e model.Element) bool { return e.Selected }},
	"password":      {kind: kindBool, flag: func(e model.Element) bool { return e.Password }},
}

// aliases maps alternate spellings (uiautomator attribute names and common
// planner output) to canonical names.
var aliases = map[string]string{
	"contentDesc":    "desc",
	"content-desc":   "desc",
	"description":    "desc",
	"resourceId":     "id",
	"resource-id":    "id",
	"className":      "class",
	"pkg":            "package",
	"long-clickable": "longClickable",
}

// Selector is an immutable set of attribute constraints, all of which must
// hold for an element to match. The zero value is invalid.
type Selector struct {
	attrs map[string]string
}

// New builds a selector from attribute-name → expected-value pairs.
// Boolean attributes are canonicalized so "true", "TRUE" and "1" compare
// equal.
func New(attrs map[string]string) (Selector, error) {
	if len(attrs) == 0 {
		return Selector{}, ErrEmptySelector
	}
	canon := make(map[string]string, len(attrs))
	for name, value := range attrs {
		key := canonicalName(name)
		attr, ok := attributes[key]
		if !ok {
			return Selector{}, fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
		}
		if attr.kind == kindBool {
			b, err := parseBool(value)
			if err != nil {
				return Selector{}, fmt.Errorf("attribute %q: %w", name, err)
			}
			value = strconv.FormatBool(b)
		}
		canon[key] = value
	}
	return Selector{attrs: canon}, nil
}

// MustNew is like New but panics on error. Intended for literals.
func MustNew(attrs map[string]string) Selector {
	s, err := New(attrs)
	if err != nil {
		panic(err)
	}
	return s
}

// Parse builds a selector from loosely typed data, as produced by decoding
// JSON or YAML. Values may be strings, booleans, or numbers.
func Parse(raw map[string]any) (Selector, error) {
	attrs := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			attrs[k] = val
		case bool:
			attrs[k] = strconv.FormatBool(val)
		case json.Number:
			attrs[k] = val.String()
		case int, int64, float64:
			attrs[k] = fmt.Sprintf("%v", val)
		default:
			return Selector{}, fmt.Errorf("attribute %q: unsupported value type %T", k, v)
		}
	}
	return New(attrs)
}

// IsZero reports whether s is the invalid zero selector.
func (s Selector) IsZero() bool {
	return len(s.attrs) == 0
}

// Get returns the expected value for a canonical attribute name.
func (s Selector) Get(name string) (string, bool) {
	v, ok := s.attrs[canonicalName(name)]
	return v, ok
}

// Map returns a copy of the selector's constraints keyed by canonical name.
func (s Selector) Map() map[string]string {
	m := make(map[string]string, len(s.attrs))
	for k, v := range s.attrs {
		m[k] = v
	}
	return m
}

// Equal reports whether two selectors carry the same constraints.
func (s Selector) Equal(o Selector) bool {
	if len(s.attrs) != len(o.attrs) {
		return false
	}
	for k, v := range s.attrs {
		if ov, ok := o.attrs[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// String renders the selector with keys in sorted order, e.g.
// {clickable=true text="Login"}.
func (s Selector) String() string {
	keys := make([]string, 0, len(s.attrs))
	for k := range s.attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if attributes[k].kind == kindBool {
			parts = append(parts, k+"="+s.attrs[k])
		} else {
			parts = append(parts, fmt.Sprintf("%s=%q", k, s.attrs[k]))
		}
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// MarshalJSON encodes the selector in its wire shape, a flat object of
// string values.
func (s Selector) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.attrs)
}

// UnmarshalJSON decodes and validates a wire-shape selector.
func (s *Selector) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalYAML encodes the selector as a flat mapping.
func (s Selector) MarshalYAML() (interface{}, error) {
	return s.attrs, nil
}

func canonicalName(name string) string {
	if c, ok := aliases[name]; ok {
		return c
	}
	return name
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", v)
}
