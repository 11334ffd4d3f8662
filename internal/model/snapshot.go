package model

import (
	"crypto/sha256"
	"fmt"
	"sync/atomic"
	"time"
)

var snapshotSeq atomic.Uint64

// Snapshot is a single capture of the on-screen UI tree. It must not be
// modified after creation; take a new snapshot after any UI-mutating action.
type Snapshot struct {
	ID      uint64    `yaml:"id"       json:"id"`
	TakenAt time.Time `yaml:"taken_at" json:"taken_at"`
	Roots   []Element `yaml:"elements" json:"elements"`
}

// NewSnapshot wraps roots in a snapshot with a fresh, process-unique ID.
func NewSnapshot(roots []Element, takenAt time.Time) *Snapshot {
	return &Snapshot{
		ID:      snapshotSeq.Add(1),
		TakenAt: takenAt,
		Roots:   roots,
	}
}

// Handle references one element inside one snapshot. Handles carry a copy
// of the element's attributes (without children) so they can be inspected
// freely; actions re-resolve their selector instead of reusing a handle.
type Handle struct {
	index int
	depth int
	el    Element
}

// Index is the element's position in depth-first pre-order.
func (h Handle) Index() int { return h.index }

// Depth is the element's distance from a root (roots have depth 0).
func (h Handle) Depth() int { return h.depth }

// Element returns the element's attributes. Children are not included.
func (h Handle) Element() Element { return h.el }

// Bounds returns the element's screen rectangle.
func (h Handle) Bounds() Rect { return h.el.Bounds }

// TapPoint is where a tap on this element lands.
func (h Handle) TapPoint() Point { return h.el.Bounds.Center() }

// Walk visits every element in depth-first pre-order, stopping early when
// fn returns false.
func (s *Snapshot) Walk(fn func(Handle) bool) {
	if s == nil {
		return
	}
	idx := 0
	var visit func(els []Element, depth int) bool
	visit = func(els []Element, depth int) bool {
		for i := range els {
			leaf := els[i]
			leaf.Children = nil
			if !fn(Handle{index: idx, depth: depth, el: leaf}) {
				return false
			}
			idx++
			if !visit(els[i].Children, depth+1) {
				return false
			}
		}
		return true
	}
	visit(s.Roots, 0)
}

// Len returns the total number of elements in the snapshot.
func (s *Snapshot) Len() int {
	n := 0
	s.Walk(func(Handle) bool {
		n++
		return true
	})
	return n
}

// Hash computes a content hash over the whole tree. Two snapshots of an
// unchanged screen hash equal, which lets callers detect that a scroll had
// no visible effect.
func (s *Snapshot) Hash() string {
	h := sha256.New()
	s.Walk(func(hd Handle) bool {
		el := hd.el
		fmt.Fprintf(h, "%d|%s|%s|%s|%s|%v|%t|%t\n",
			hd.depth, el.Class, el.Text, el.Description, el.ResourceID, el.Bounds, el.Checked, el.Selected)
		return true
	})
	return fmt.Sprintf("%x", h.Sum(nil))[:16]
}
