package selector

import (
	"strconv"
	"strings"

	"github.com/tas33n/DroidWright/internal/model"
)

// Matches reports whether el satisfies every constraint in s. The zero
// selector matches nothing.
func (s Selector) Matches(el model.Element) bool {
	if s.IsZero() {
		return false
	}
	for name, want := range s.attrs {
		attr := attributes[name]
		switch attr.kind {
		case kindBool:
			if strconv.FormatBool(attr.flag(el)) != want {
				return false
			}
		case kindID:
			if !idMatches(attr.str(el), want) {
				return false
			}
		default:
			if attr.str(el) != want {
				return false
			}
		}
	}
	return true
}

// idMatches accepts either the fully qualified resource id or its entry
// name, so "row_feed_button_like" matches
// "com.instagram.android:id/row_feed_button_like".
func idMatches(have, want string) bool {
	if have == want {
		return true
	}
	return !strings.Contains(want, ":id/") && strings.HasSuffix(have, ":id/"+want)
}

// FindAll returns handles for every element in snap matching s, in
// depth-first pre-order. An invalid selector returns ErrEmptySelector.
func FindAll(s Selector, snap *model.Snapshot) ([]model.Handle, error) {
	if s.IsZero() {
		return nil, ErrEmptySelector
	}
	var out []model.Handle
	snap.Walk(func(h model.Handle) bool {
		if s.Matches(h.Element()) {
			out = append(out, h)
		}
		return true
	})
	return out, nil
}

// FindFirst returns the first match in traversal order. found is false
// when nothing matches; that is not an error.
func FindFirst(s Selector, snap *model.Snapshot) (h model.Handle, found bool, err error) {
	if s.IsZero() {
		return model.Handle{}, false, ErrEmptySelector
	}
	snap.Walk(func(hd model.Handle) bool {
		if s.Matches(hd.Element()) {
			h, found = hd, true
			return false
		}
		return true
	})
	return h, found, nil
}

// Exists reports whether anything in snap matches s.
func Exists(s Selector, snap *model.Snapshot) (bool, error) {
	_, found, err := FindFirst(s, snap)
	return found, err
}
