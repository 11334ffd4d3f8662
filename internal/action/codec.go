package action

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tas33n/DroidWright/internal/model"
	"github.com/tas33n/DroidWright/internal/platform"
	"github.com/tas33n/DroidWright/internal/selector"
)

// ErrNotSequence is returned when a payload is not a list of objects each
// carrying a string "action" tag.
var ErrNotSequence = errors.New("payload is not an action sequence")

// ParseSequence decodes an externally supplied action list. JSON arrays are
// decoded as JSON; anything else is tried as YAML. Entries with unknown
// tags become Unknown and entries with ill-typed parameters become Invalid,
// so one bad entry never hides the rest of the sequence.
func ParseSequence(data []byte) ([]Action, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrNotSequence)
	}

	var doc any
	if trimmed[0] == '[' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotSequence, err)
		}
	} else if err := yaml.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSequence, err)
	}

	items, ok := doc.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a list, got %T", ErrNotSequence, doc)
	}
	out := make([]Action, 0, len(items))
	for i, item := range items {
		raw, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: entry %d is %T, not an object", ErrNotSequence, i+1, item)
		}
		if _, ok := raw["action"].(string); !ok {
			return nil, fmt.Errorf("%w: entry %d has no string \"action\" tag", ErrNotSequence, i+1)
		}
		out = append(out, Decode(raw))
	}
	return out, nil
}

// Decode converts one wire-shape entry into its variant. raw must carry a
// string "action" tag; a missing tag yields an Unknown with an empty name.
func Decode(raw map[string]any) Action {
	name, _ := raw["action"].(string)
	kind := Kind(name)
	if !kind.Known() {
		return Unknown{Name: name, Raw: raw}
	}
	p := params{raw: raw}
	a := p.decode(kind)
	if p.err != nil {
		return Invalid{Name: kind, Reason: p.err.Error(), Raw: raw}
	}
	return a
}

// params accumulates the first shape error while reading fields.
type params struct {
	raw map[string]any
	err error
}

func (p *params) decode(kind Kind) Action {
	switch kind {
	case KindTap:
		return Tap{Target: p.target()}
	case KindLongTap:
		return LongTap{Target: p.target(), Duration: p.millis("duration")}
	case KindSetText:
		return SetText{Selector: p.requiredSelector("selector"), Text: p.requiredString("text")}
	case KindSwipe:
		return Swipe{
			From:     model.Point{X: p.requiredInt("x1"), Y: p.requiredInt("y1")},
			To:       model.Point{X: p.requiredInt("x2"), Y: p.requiredInt("y2")},
			Duration: p.millis("duration"),
		}
	case KindScroll:
		s := Scroll{Container: p.optionalSelector("selector"), Direction: Direction(p.optionalString("direction"))}
		if s.Direction != "" && s.Direction != DirectionDown && s.Direction != DirectionUp {
			p.fail(fmt.Errorf("direction: %q is not up or down", s.Direction))
		}
		return s
	case KindWaitFor:
		w := WaitFor{
			Selector:   p.requiredSelector("selector"),
			Timeout:    p.millis("timeout"),
			Container:  p.optionalSelector("container"),
			MaxScrolls: p.optionalInt("maxScrolls"),
		}
		return w
	case KindPressKey:
		return PressKey{Key: p.key("key")}
	case KindSleep:
		return Sleep{Duration: p.millis("ms")}
	case KindLog:
		return Log{Message: p.optionalString("message")}
	}
	return Unknown{Name: string(kind), Raw: p.raw}
}

func (p *params) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

func (p *params) target() Target {
	var t Target
	t.Selector = p.optionalSelector("selector")
	_, hasX := p.raw["x"]
	_, hasY := p.raw["y"]
	if hasX || hasY {
		t.Point = &model.Point{X: p.requiredInt("x"), Y: p.requiredInt("y")}
	}
	if t.IsZero() {
		p.fail(errors.New("needs a selector or x/y coordinates"))
	}
	return t
}

func (p *params) optionalSelector(key string) selector.Selector {
	v, ok := p.raw[key]
	if !ok || v == nil {
		return selector.Selector{}
	}
	return p.selectorValue(key, v)
}

func (p *params) requiredSelector(key string) selector.Selector {
	v, ok := p.raw[key]
	if !ok || v == nil {
		p.fail(fmt.Errorf("%s: required", key))
		return selector.Selector{}
	}
	return p.selectorValue(key, v)
}

func (p *params) selectorValue(key string, v any) selector.Selector {
	var (
		s   selector.Selector
		err error
	)
	switch m := v.(type) {
	case map[string]any:
		s, err = selector.Parse(m)
	case map[string]string:
		s, err = selector.New(m)
	default:
		err = fmt.Errorf("expected an object, got %T", v)
	}
	if err != nil {
		p.fail(fmt.Errorf("%s: %w", key, err))
	}
	return s
}

func (p *params) optionalString(key string) string {
	v, ok := p.raw[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		p.fail(fmt.Errorf("%s: expected a string, got %T", key, v))
	}
	return s
}

func (p *params) requiredString(key string) string {
	if _, ok := p.raw[key]; !ok {
		p.fail(fmt.Errorf("%s: required", key))
		return ""
	}
	return p.optionalString(key)
}

func (p *params) number(key string) (float64, bool) {
	v, ok := p.raw[key]
	if !ok || v == nil {
		return 0, false
	}
	f, err := toFloat(v)
	if err != nil {
		p.fail(fmt.Errorf("%s: %w", key, err))
		return 0, false
	}
	return f, true
}

// Largest magnitudes accepted for integer fields and millisecond
// durations; beyond them the float conversion is not defined.
const (
	maxIntParam = math.MaxInt32
	maxMillis   = float64(math.MaxInt64/int64(time.Millisecond)) - 1
)

func (p *params) optionalInt(key string) int {
	f, _ := p.number(key)
	return p.toInt(key, f)
}

func (p *params) requiredInt(key string) int {
	f, ok := p.number(key)
	if !ok {
		p.fail(fmt.Errorf("%s: required", key))
	}
	return p.toInt(key, f)
}

func (p *params) toInt(key string, f float64) int {
	if math.Abs(f) > maxIntParam {
		p.fail(fmt.Errorf("%s: %v is out of range", key, f))
		return 0
	}
	return int(math.Round(f))
}

func (p *params) millis(key string) time.Duration {
	f, _ := p.number(key)
	if math.Abs(f) > maxMillis {
		p.fail(fmt.Errorf("%s: %v ms is out of range", key, f))
		return 0
	}
	return time.Duration(math.Round(f * float64(time.Millisecond)))
}

func (p *params) key(key string) platform.Key {
	v, ok := p.raw[key]
	if !ok {
		p.fail(fmt.Errorf("%s: required", key))
		return 0
	}
	var name string
	switch k := v.(type) {
	case string:
		name = k
	default:
		f, err := toFloat(v)
		if err != nil {
			p.fail(fmt.Errorf("%s: expected a name or keycode, got %T", key, v))
			return 0
		}
		name = fmt.Sprintf("%d", int(f))
	}
	k, err := platform.ParseKey(name)
	if err != nil {
		p.fail(fmt.Errorf("%s: %w", key, err))
	}
	return k
}

// toFloat accepts the numeric types produced by encoding/json (with
// UseNumber) and yaml.v3, rejecting NaN and infinities.
func toFloat(v any) (float64, error) {
	var f float64
	switch n := v.(type) {
	case json.Number:
		var err error
		if f, err = n.Float64(); err != nil {
			return 0, fmt.Errorf("invalid number %q", n)
		}
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	case float64:
		f = n
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("number %v is not finite", f)
	}
	return f, nil
}

// Encode returns the wire shape of a. Zero-valued optional fields are
// omitted, so Decode(Encode(a)) yields a again.
func Encode(a Action) map[string]any {
	m := map[string]any{"action": string(a.Kind())}
	switch v := a.(type) {
	case Tap:
		encodeTarget(m, v.Target)
	case LongTap:
		encodeTarget(m, v.Target)
		putMillis(m, "duration", v.Duration)
	case SetText:
		putSelector(m, "selector", v.Selector)
		m["text"] = v.Text
	case Swipe:
		m["x1"], m["y1"] = v.From.X, v.From.Y
		m["x2"], m["y2"] = v.To.X, v.To.Y
		putMillis(m, "duration", v.Duration)
	case Scroll:
		putSelector(m, "selector", v.Container)
		if v.Direction != "" {
			m["direction"] = string(v.Direction)
		}
	case WaitFor:
		putSelector(m, "selector", v.Selector)
		putMillis(m, "timeout", v.Timeout)
		if v.MaxScrolls != 0 {
			m["maxScrolls"] = v.MaxScrolls
		}
		putSelector(m, "container", v.Container)
	case PressKey:
		m["key"] = v.Key.String()
	case Sleep:
		putMillis(m, "ms", v.Duration)
	case Log:
		if v.Message != "" {
			m["message"] = v.Message
		}
	case Unknown:
		m = copyRaw(v.Raw)
		m["action"] = v.Name
	case Invalid:
		m = copyRaw(v.Raw)
		m["action"] = string(v.Name)
	}
	return m
}

// Marshal encodes a as a JSON object.
func Marshal(a Action) ([]byte, error) {
	return json.Marshal(Encode(a))
}

// MarshalSequence encodes actions as a JSON array.
func MarshalSequence(actions []Action) ([]byte, error) {
	out := make([]map[string]any, len(actions))
	for i, a := range actions {
		out[i] = Encode(a)
	}
	return json.Marshal(out)
}

func encodeTarget(m map[string]any, t Target) {
	putSelector(m, "selector", t.Selector)
	if t.Point != nil {
		m["x"], m["y"] = t.Point.X, t.Point.Y
	}
}

func putSelector(m map[string]any, key string, s selector.Selector) {
	if !s.IsZero() {
		m[key] = s.Map()
	}
}

// putMillis writes d in milliseconds, as a fraction when d is not a whole
// number of them.
func putMillis(m map[string]any, key string, d time.Duration) {
	switch {
	case d == 0:
	case d%time.Millisecond == 0:
		m[key] = d.Milliseconds()
	default:
		m[key] = float64(d) / float64(time.Millisecond)
	}
}

func copyRaw(raw map[string]any) map[string]any {
	m := make(map[string]any, len(raw)+1)
	for k, v := range raw {
		m[k] = v
	}
	return m
}
