package model

// isLayoutOnly returns true if the element carries nothing a script could
// select or act on: no text, description, or id, and not interactive.
func isLayoutOnly(el Element) bool {
	return el.Text == "" && el.Description == "" && el.ResourceID == "" &&
		!el.Clickable && !el.LongClickable && !el.Scrollable && !el.Checkable
}

// PruneLayout removes layout-only nodes from a tree, promoting their
// children to the parent. Android hierarchies are dominated by anonymous
// FrameLayout/LinearLayout wrappers, so this keeps dumps readable.
func PruneLayout(elements []Element) []Element {
	var result []Element
	for _, el := range elements {
		prunedChildren := PruneLayout(el.Children)

		if isLayoutOnly(el) {
			result = append(result, prunedChildren...)
		} else {
			pruned := el
			pruned.Children = prunedChildren
			result = append(result, pruned)
		}
	}
	return result
}

// FilterByBounds keeps elements that intersect r, together with any
// ancestors needed to reach them.
func FilterByBounds(elements []Element, r Rect) []Element {
	var result []Element
	for _, el := range elements {
		children := FilterByBounds(el.Children, r)
		if boundsIntersect(el.Bounds, r) || len(children) > 0 {
			filtered := el
			filtered.Children = children
			result = append(result, filtered)
		}
	}
	return result
}

func boundsIntersect(a, b Rect) bool {
	return a[0] < b[2] && a[2] > b[0] && a[1] < b[3] && a[3] > b[1]
}
