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

import "seehuhn.de/go/fea/token"

// frame is one level of a Cursor's descent stack.
type frame struct {
	node  *Node
	index int // index of the child at or about to be visited
	start int // absolute byte offset where node.Children()[0] begins
}

// Cursor supports depth-first traversal of a tree, reporting the absolute
// source position of the element it is currently on by summing up the
// lengths of everything visited so far (spec.md §4.3).
type Cursor struct {
	root  *Node
	stack []frame
	pos   int
	cur   Element
}

// NewCursor creates a cursor positioned on root itself; the first Advance
// moves it to root's first child.
func NewCursor(root *Node) *Cursor {
	c := &Cursor{root: root, cur: root}
	return c
}

// Pos returns the absolute byte offset of the cursor's current element.
func (c *Cursor) Pos() int { return c.pos }

// Current returns the element the cursor is on.
func (c *Cursor) Current() Element { return c.cur }

// Descend moves the cursor to the first child of the current node. It is a
// no-op (returns false) if the current element is a Token (a leaf has no
// children).
func (c *Cursor) Descend() bool {
	n, ok := c.cur.(*Node)
	if !ok || len(n.children) == 0 {
		return false
	}
	c.stack = append(c.stack, frame{node: n, index: 0, start: c.pos})
	c.cur = n.children[0]
	return true
}

// Ascend moves the cursor back up to the parent of the current subtree,
// positioning it back at the parent node itself.
func (c *Cursor) Ascend() bool {
	if len(c.stack) == 0 {
		return false
	}
	top := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	c.pos = top.start
	c.cur = top.node
	return true
}

// StepOver advances to the next sibling of the current element, without
// visiting its children. Returns false if there is no next sibling (the
// cursor stays on the current element).
func (c *Cursor) StepOver() bool {
	if len(c.stack) == 0 {
		return false
	}
	top := &c.stack[len(c.stack)-1]
	if top.index+1 >= len(top.node.children) {
		return false
	}
	c.pos += c.cur.Len()
	top.index++
	c.cur = top.node.children[top.index]
	return true
}

// Advance performs one step of a standard depth-first walk: descend into
// children if possible, otherwise step to the next sibling, otherwise
// ascend and step over repeatedly until a sibling is found or the walk
// ends. Returns false once the whole tree has been visited.
func (c *Cursor) Advance() bool {
	if c.Descend() {
		return true
	}
	for {
		if c.StepOver() {
			return true
		}
		if !c.Ascend() {
			return false
		}
	}
}

// Range returns the absolute range covered by the current element.
func (c *Cursor) Range() Range {
	return Range{Start: c.pos, End: c.pos + c.cur.Len()}
}

// Walk visits every element of the tree in document order, calling visit
// with the element's absolute range. Returning false from visit stops the
// walk early.
func Walk(root *Node, visit func(e Element, rng Range) bool) {
	c := NewCursor(root)
	if !visit(c.Current(), c.Range()) {
		return
	}
	for c.Advance() {
		if !visit(c.Current(), c.Range()) {
			return
		}
	}
}

// FindToken returns the first token of the given kind found anywhere in the
// subtree rooted at n, in document order, along with its absolute position
// assuming n itself starts at base.
func FindToken(n *Node, base int, kind token.Kind) (Token, int, bool) {
	var found Token
	var foundPos int
	ok := false
	Walk(n, func(e Element, rng Range) bool {
		if tok, isTok := e.(Token); isTok && tok.Kind() == kind {
			found = tok
			foundPos = base + rng.Start
			ok = true
			return false
		}
		return true
	})
	return found, foundPos, ok
}
