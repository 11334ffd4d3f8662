// Package action defines the closed set of UI actions that can be executed
// against a device, their wire encoding, and the dispatcher that runs them.
package action

import (
	"time"

	"github.com/tas33n/DroidWright/internal/model"
	"github.com/tas33n/DroidWright/internal/platform"
	"github.com/tas33n/DroidWright/internal/selector"
)

// Kind is an action's wire tag.
type Kind string

const (
	KindTap      Kind = "ui.tap"
	KindLongTap  Kind = "ui.longTap"
	KindSetText  Kind = "ui.setText"
	KindSwipe    Kind = "ui.swipe"
	KindScroll   Kind = "ui.scroll"
	KindWaitFor  Kind = "ui.waitFor"
	KindPressKey Kind = "device.press"
	KindSleep    Kind = "device.sleep"
	KindLog      Kind = "log"
)

// Kinds lists every recognized kind in the order they are documented.
var Kinds = []Kind{KindTap, KindLongTap, KindSetText, KindSwipe, KindScroll, KindWaitFor, KindPressKey, KindSleep, KindLog}

// Known reports whether k is a recognized kind.
func (k Kind) Known() bool {
	for _, kk := range Kinds {
		if k == kk {
			return true
		}
	}
	return false
}

// Action is one of the variant types in this package. The set is closed:
// only types declared here implement it.
type Action interface {
	Kind() Kind
	isAction()
}

// Target addresses an element by selector or a raw screen point. Exactly
// one of the two should be set; the selector wins if both are.
type Target struct {
	Selector selector.Selector
	Point    *model.Point
}

// IsZero reports whether neither a selector nor a point is set.
func (t Target) IsZero() bool { return t.Selector.IsZero() && t.Point == nil }

// Tap taps an element's centre or a point.
type Tap struct {
	Target
}

// LongTap presses and holds. Zero Duration means the dispatcher's default.
type LongTap struct {
	Target
	Duration time.Duration
}

// SetText focuses the matched element and types Text into it.
type SetText struct {
	Selector selector.Selector
	Text     string
}

// Swipe drags from one point to another. Zero Duration means the default.
type Swipe struct {
	From, To model.Point
	Duration time.Duration
}

// Direction is a scroll direction.
type Direction string

const (
	DirectionDown Direction = "down"
	DirectionUp   Direction = "up"
)

// Scroll moves a container's content by one page. A zero Container scrolls
// the whole screen; an empty Direction means down.
type Scroll struct {
	Container selector.Selector
	Direction Direction
}

// WaitFor waits for an element, optionally scrolling Container to reveal it.
type WaitFor struct {
	Selector   selector.Selector
	Timeout    time.Duration
	MaxScrolls int
	Container  selector.Selector
}

// PressKey presses a hardware or navigation key.
type PressKey struct {
	Key platform.Key
}

// Sleep pauses. Zero Duration means the dispatcher's default.
type Sleep struct {
	Duration time.Duration
}

// Log writes Message to the run's diagnostics.
type Log struct {
	Message string
}

// Unknown carries an entry whose tag is not a recognized kind. It is
// skipped at dispatch rather than rejected.
type Unknown struct {
	Name string
	Raw  map[string]any
}

// Invalid carries an entry with a recognized tag whose parameters have the
// wrong shape. Dispatching it fails with ErrInvalidParams.
type Invalid struct {
	Name   Kind
	Reason string
	Raw    map[string]any
}

func (Tap) Kind() Kind       { return KindTap }
func (LongTap) Kind() Kind   { return KindLongTap }
func (SetText) Kind() Kind   { return KindSetText }
func (Swipe) Kind() Kind     { return KindSwipe }
func (Scroll) Kind() Kind    { return KindScroll }
func (WaitFor) Kind() Kind   { return KindWaitFor }
func (PressKey) Kind() Kind  { return KindPressKey }
func (Sleep) Kind() Kind     { return KindSleep }
func (Log) Kind() Kind       { return KindLog }
func (u Unknown) Kind() Kind { return Kind(u.Name) }
func (i Invalid) Kind() Kind { return i.Name }

func (Tap) isAction()      {}
func (LongTap) isAction()  {}
func (SetText) isAction()  {}
func (Swipe) isAction()    {}
func (Scroll) isAction()   {}
func (WaitFor) isAction()  {}
func (PressKey) isAction() {}
func (Sleep) isAction()    {}
func (Log) isAction()      {}
func (Unknown) isAction()  {}
func (Invalid) isAction()  {}
