// seehuhn.de/go/fea - a compiler for the Adobe OpenType Feature File language
// Copyright (C) 2024  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package syntax

import (
	"fmt"
	"sort"
)

// Edit replaces the source range Range with the text covered by
// Replacement. Ranges are given in the coordinate system of the tree being
// edited (spec.md §4.3).
type Edit struct {
	Range       Range
	Replacement *Node
}

// ApplyEdits builds a new tree by applying a batch of non-overlapping edits
// to base. Unaffected children are shared (not copied) with the original
// tree; only nodes on the path to an edit are rebuilt. Edits are applied in
// reverse source order, so that earlier edits never need their ranges
// adjusted for the size change caused by a later one (spec.md §4.3).
//
// If any two edits overlap it returns an error and no tree.
func ApplyEdits(base *Node, edits []Edit) (*Node, error) {
	sorted := append([]Edit(nil), edits...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Range.Start < sorted[j].Range.Start })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Range.Start < sorted[i-1].Range.End {
			return nil, fmt.Errorf("syntax: overlapping edits %v and %v", sorted[i-1].Range, sorted[i].Range)
		}
	}

	// Apply in reverse order, rebuilding the tree after each one: this
	// keeps every edit's Range valid in the coordinate system of the tree
	// it is being applied to, since edits to the right of it have not yet
	// shifted anything.
	tree := base
	for i := len(sorted) - 1; i >= 0; i-- {
		tree = applyOne(tree, 0, sorted[i])
	}
	return tree, nil
}

// applyOne replaces the subtree covering edit.Range, where base begins at
// absolute offset baseStart.
func applyOne(n *Node, baseStart int, edit Edit) *Node {
	nRange := Range{Start: baseStart, End: baseStart + n.Len()}
	if nRange == edit.Range {
		return edit.Replacement
	}

	var newChildren []Element
	pos := baseStart
	for _, c := range n.children {
		cRange := Range{Start: pos, End: pos + c.Len()}
		switch {
		case cRange == edit.Range:
			newChildren = append(newChildren, edit.Replacement)
		case cRange.Contains(edit.Range):
			if child, ok := c.(*Node); ok {
				newChildren = append(newChildren, applyOne(child, pos, edit))
			} else {
				// An edit strictly inside a leaf token's range cannot be
				// applied without re-lexing; callers should only ever pass
				// edits whose range boundaries fall on node/token
				// boundaries produced by a previous parse.
				newChildren = append(newChildren, c)
			}
		default:
			newChildren = append(newChildren, c)
		}
		pos += c.Len()
	}
	return NewNode(n.kind, newChildren)
}
