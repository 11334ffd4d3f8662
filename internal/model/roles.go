package model

import "strings"

// RoleMap maps Android widget class names to compact role codes.
var RoleMap = map[string]string{
	"android.widget.Button":                     "btn",
	"android.widget.ImageButton":                "btn",
	"android.widget.TextView":                   "txt",
	"android.widget.ImageView":                  "img",
	"android.widget.EditText":                   "input",
	"android.widget.AutoCompleteTextView":       "input",
	"android.widget.CheckBox":                   "chk",
	"android.widget.Switch":                     "toggle",
	"android.widget.ToggleButton":               "toggle",
	"android.widget.RadioButton":                "radio",
	"android.widget.ListView":                   "list",
	"android.widget.GridView":                   "list",
	"androidx.recyclerview.widget.RecyclerView": "list",
	"android.widget.ScrollView":                 "scroll",
	"android.widget.HorizontalScrollView":       "scroll",
	"android.widget.FrameLayout":                "group",
	"android.widget.LinearLayout":               "group",
	"android.widget.RelativeLayout":             "group",
	"android.view.ViewGroup":                    "group",
	"android.widget.TabWidget":                  "tab",
	"android.webkit.WebView":                    "web",
}

// MapRole converts a widget class name to a compact code. Unlisted classes
// fall back to a suffix heuristic before "other".
func MapRole(class string) string {
	if short, ok := RoleMap[class]; ok {
		return short
	}
	switch {
	case strings.HasSuffix(class, "Button"):
		return "btn"
	case strings.HasSuffix(class, "EditText"):
		return "input"
	case strings.HasSuffix(class, "RecyclerView"), strings.HasSuffix(class, "ListView"):
		return "list"
	case strings.HasSuffix(class, "Layout"):
		return "group"
	}
	return "other"
}
