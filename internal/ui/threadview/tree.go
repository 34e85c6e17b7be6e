package threadview

import "github.com/fragmede/threadprep/internal/thread"

// CollapseState tracks collapsed comment IDs.
type CollapseState map[string]bool

// VisibleComments turns pre-order rows into the displayed list, hiding
// the descendants of collapsed rows. ChildCount is the number of
// descendants a row has, whether or not they are shown.
func VisibleComments(rows []thread.Row, cs CollapseState) []FlatComment {
	var result []FlatComment
	hideBelow := -1
	for i, r := range rows {
		if hideBelow >= 0 {
			if r.Depth > hideBelow {
				continue
			}
			hideBelow = -1
		}
		fc := FlatComment{
			Row:         r,
			IsCollapsed: cs[r.ID],
			ChildCount:  descendants(rows, i),
		}
		result = append(result, fc)
		if fc.IsCollapsed {
			hideBelow = r.Depth
		}
	}
	return result
}

// descendants counts the rows after i that sit deeper than rows[i]. In
// pre-order these are exactly its subtree.
func descendants(rows []thread.Row, i int) int {
	n := 0
	for j := i + 1; j < len(rows) && rows[j].Depth > rows[i].Depth; j++ {
		n++
	}
	return n
}

// FindParentIndex returns the index of the parent comment in the flat list.
func FindParentIndex(comments []FlatComment, currentIdx int) int {
	if currentIdx < 0 || currentIdx >= len(comments) {
		return -1
	}
	parentID := comments[currentIdx].Row.ParentID
	if parentID == "" {
		return -1
	}
	for i := currentIdx - 1; i >= 0; i-- {
		if comments[i].Row.ID == parentID {
			return i
		}
	}
	return -1
}

// FindNextSiblingIndex returns the index of the next comment at the same depth.
func FindNextSiblingIndex(comments []FlatComment, currentIdx int) int {
	if currentIdx < 0 || currentIdx >= len(comments) {
		return -1
	}
	depth := comments[currentIdx].Row.Depth
	for i := currentIdx + 1; i < len(comments); i++ {
		if comments[i].Row.Depth < depth {
			return -1 // Went up in tree, no more siblings.
		}
		if comments[i].Row.Depth == depth {
			return i
		}
	}
	return -1
}
