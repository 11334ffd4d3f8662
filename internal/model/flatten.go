package model

// FlatElement is an element with a path breadcrumb instead of children.
type FlatElement struct {
	Index       int    `yaml:"i"               json:"i"`
	Role        string `yaml:"r"               json:"r"`
	Text        string `yaml:"text,omitempty"  json:"text,omitempty"`
	Description string `yaml:"desc,omitempty"  json:"desc,omitempty"`
	ResourceID  string `yaml:"id,omitempty"    json:"id,omitempty"`
	Bounds      Rect   `yaml:"b"               json:"b"`
	Clickable   bool   `yaml:"click,omitempty" json:"click,omitempty"`
	Path        string `yaml:"p,omitempty"     json:"p,omitempty"`
}

// FlattenElements converts a tree of elements into a flat list in
// depth-first pre-order. Each element gets a path string showing its
// location in the tree using compact role codes joined with " > ".
func FlattenElements(elements []Element) []FlatElement {
	var result []FlatElement
	for _, el := range elements {
		flattenRecursive(el, "", &result)
	}
	return result
}

func flattenRecursive(el Element, parentPath string, result *[]FlatElement) {
	role := MapRole(el.Class)
	currentPath := role
	if parentPath != "" {
		currentPath = parentPath + " > " + role
	}

	*result = append(*result, FlatElement{
		Index:       len(*result),
		Role:        role,
		Text:        el.Text,
		Description: el.Description,
		ResourceID:  el.ResourceID,
		Bounds:      el.Bounds,
		Clickable:   el.Clickable,
		Path:        currentPath,
	})

	for _, child := range el.Children {
		flattenRecursive(child, currentPath, result)
	}
}
