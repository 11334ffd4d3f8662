package platform

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tas33n/DroidWright/internal/model"
)

// Key is a hardware or navigation key, identified by its Android keycode.
type Key int

const (
	KeyHome       Key = 3
	KeyBack       Key = 4
	KeyVolumeUp   Key = 24
	KeyVolumeDown Key = 25
	KeyPower      Key = 26
	KeyTab        Key = 61
	KeyEnter      Key = 66
	KeyDelete     Key = 67
	KeyMenu       Key = 82
	KeySearch     Key = 84
	KeyAppSwitch  Key = 187
)

var keyNames = map[string]Key{
	"home":        KeyHome,
	"back":        KeyBack,
	"volume_up":   KeyVolumeUp,
	"volume_down": KeyVolumeDown,
	"power":       KeyPower,
	"tab":         KeyTab,
	"enter":       KeyEnter,
	"delete":      KeyDelete,
	"backspace":   KeyDelete,
	"menu":        KeyMenu,
	"search":      KeySearch,
	"recent":      KeyAppSwitch,
	"app_switch":  KeyAppSwitch,
}

var keyLabels = map[Key]string{
	KeyHome:       "home",
	KeyBack:       "back",
	KeyVolumeUp:   "volume_up",
	KeyVolumeDown: "volume_down",
	KeyPower:      "power",
	KeyTab:        "tab",
	KeyEnter:      "enter",
	KeyDelete:     "delete",
	KeyMenu:       "menu",
	KeySearch:     "search",
	KeyAppSwitch:  "recent",
}

// String returns the key's name, or its numeric keycode when it has none.
// The result always round-trips through ParseKey.
func (k Key) String() string {
	if n, ok := keyLabels[k]; ok {
		return n
	}
	return strconv.Itoa(int(k))
}

// ParseKey converts a key name ("back", "Home", "KEYCODE_ENTER") or a
// numeric keycode to a Key.
func ParseKey(s string) (Key, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.TrimPrefix(name, "keycode_")
	name = strings.ReplaceAll(name, "-", "_")
	if k, ok := keyNames[name]; ok {
		return k, nil
	}
	if n, err := strconv.Atoi(name); err == nil && n > 0 {
		return Key(n), nil
	}
	return 0, fmt.Errorf("unknown key: %q (expected home, back, enter, menu, recent, power, volume_up, volume_down, search, tab, delete, or a keycode)", s)
}

var uiBoundsRe = regexp.MustCompile(`^\[(-?\d+),(-?\d+)\]\[(-?\d+),(-?\d+)\]$`)

// ParseBounds parses either uiautomator's "[x1,y1][x2,y2]" form or a plain
// "x1,y1,x2,y2" list into a Rect.
func ParseBounds(s string) (model.Rect, error) {
	s = strings.TrimSpace(s)
	var parts []string
	if m := uiBoundsRe.FindStringSubmatch(s); m != nil {
		parts = m[1:]
	} else {
		parts = strings.Split(s, ",")
	}
	if len(parts) != 4 {
		return model.Rect{}, fmt.Errorf("invalid bounds %q: expected [x1,y1][x2,y2] or x1,y1,x2,y2", s)
	}
	var r model.Rect
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return model.Rect{}, fmt.Errorf("invalid bounds %q: %w", s, err)
		}
		r[i] = v
	}
	return r, nil
}
