package model

import "fmt"

// Element represents a node in the on-screen UI hierarchy.
type Element struct {
	Text          string    `yaml:"text,omitempty"     json:"text,omitempty"`  // Visible text
	Description   string    `yaml:"desc,omitempty"     json:"desc,omitempty"`  // Content description
	ResourceID    string    `yaml:"id,omitempty"       json:"id,omitempty"`    // Fully qualified resource id
	Class         string    `yaml:"class,omitempty"    json:"class,omitempty"` // Widget class name
	Package       string    `yaml:"pkg,omitempty"      json:"pkg,omitempty"`   // Owning package
	Bounds        Rect      `yaml:"b"                  json:"b"`               // Screen bounds
	Clickable     bool      `yaml:"click,omitempty"    json:"click,omitempty"`
	LongClickable bool      `yaml:"lclick,omitempty"   json:"lclick,omitempty"`
	Scrollable    bool      `yaml:"scroll,omitempty"   json:"scroll,omitempty"`
	Enabled       bool      `yaml:"enabled,omitempty"  json:"enabled,omitempty"`
	Checkable     bool      `yaml:"chkable,omitempty"  json:"chkable,omitempty"`
	Checked       bool      `yaml:"checked,omitempty"  json:"checked,omitempty"`
	Focusable     bool      `yaml:"fcsable,omitempty"  json:"fcsable,omitempty"`
	Focused       bool      `yaml:"focused,omitempty"  json:"focused,omitempty"`
	Selected      bool      `yaml:"selected,omitempty" json:"selected,omitempty"`
	Password      bool      `yaml:"pwd,omitempty"      json:"pwd,omitempty"`
	Children      []Element `yaml:"c,omitempty"        json:"c,omitempty"`
}

// Point is a screen coordinate in pixels.
type Point struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Size is the screen size in pixels.
type Size struct {
	Width  int `yaml:"width"  json:"width"`
	Height int `yaml:"height" json:"height"`
}

// Rect is an axis-aligned rectangle given by its left/top and right/bottom
// edges, the way uiautomator reports bounds.
type Rect [4]int

// RectFromSize returns the full-screen rectangle for a screen of size s.
func RectFromSize(s Size) Rect {
	return Rect{0, 0, s.Width, s.Height}
}

func (r Rect) Left() int   { return r[0] }
func (r Rect) Top() int    { return r[1] }
func (r Rect) Right() int  { return r[2] }
func (r Rect) Bottom() int { return r[3] }
func (r Rect) Width() int  { return r[2] - r[0] }
func (r Rect) Height() int { return r[3] - r[1] }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

// Center returns the midpoint of the rectangle, used as the tap point.
func (r Rect) Center() Point {
	return Point{X: r[0] + r.Width()/2, Y: r[1] + r.Height()/2}
}

// Contains reports whether p lies inside the rectangle (right/bottom exclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r[0] && p.X < r[2] && p.Y >= r[1] && p.Y < r[3]
}

func (r Rect) String() string {
	return fmt.Sprintf("[%d,%d][%d,%d]", r[0], r[1], r[2], r[3])
}
