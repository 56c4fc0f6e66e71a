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

// Package syntax implements the lossless concrete syntax tree described by
// spec.md §3/§4.3: a Node is a composite (Kind, children...), a Token is a
// leaf (Kind, text); concatenating the text of every leaf token in document
// order reproduces the original source exactly, including whitespace and
// comments.
//
// Nodes are immutable once built and share children slices, so that
// ApplyEdits can build a new tree by copying unaffected subtrees rather than
// deep-copying the whole document (spec.md §4.3, §9 "shared-ownership
// CSTs"). Dispatch on tree shape is always by switching on Kind, never by
// type assertion on an interface hierarchy (spec.md §9 "tagged unions over
// trait objects").
package syntax

import "seehuhn.de/go/fea/token"

// Element is implemented by both Token and *Node: anything that can appear
// as a child of a Node.
type Element interface {
	Kind() token.Kind
	Len() int // length in bytes of the source text this element covers
}

// Token is a leaf of the tree. Text carries the literal source substring,
// so that Token never needs a separate length field.
type Token struct {
	kind token.Kind
	Text string
}

// NewToken builds a leaf token.
func NewToken(kind token.Kind, text string) Token {
	return Token{kind: kind, Text: text}
}

// Kind implements Element.
func (t Token) Kind() token.Kind { return t.kind }

// Len implements Element.
func (t Token) Len() int { return len(t.Text) }

// Node is a composite tree element: a Kind tag plus an ordered, reference-
// counted list of children. Children are shared (not deep-copied) between
// trees produced by ApplyEdits, so identity of a *Node below the edited
// range is preserved across edits.
type Node struct {
	kind     token.Kind
	children []Element
	textLen  int
}

// NewNode builds a composite node from already-built children. The caller
// must not mutate children afterwards: Node treats the slice as owned and
// may share it with other trees.
func NewNode(kind token.Kind, children []Element) *Node {
	n := &Node{kind: kind, children: children}
	for _, c := range children {
		n.textLen += c.Len()
	}
	return n
}

// Kind implements Element.
func (n *Node) Kind() token.Kind { return n.kind }

// Len implements Element.
func (n *Node) Len() int { return n.textLen }

// Children returns the node's direct children, in document order.
func (n *Node) Children() []Element { return n.children }

// Text reconstructs the exact source text covered by n, by concatenating
// every leaf token's Text in document order. This is the basis of the
// lossless-parse invariant (spec.md §8, invariant 1).
func (n *Node) Text() string {
	var buf []byte
	appendText(&buf, n)
	return string(buf)
}

func appendText(buf *[]byte, e Element) {
	switch v := e.(type) {
	case Token:
		*buf = append(*buf, v.Text...)
	case *Node:
		for _, c := range v.children {
			appendText(buf, c)
		}
	}
}

// FirstChildOfKind returns the first direct child with the given kind, or
// nil/false if there is none.
func (n *Node) FirstChildOfKind(k token.Kind) (Element, bool) {
	for _, c := range n.children {
		if c.Kind() == k {
			return c, true
		}
	}
	return nil, false
}

// ChildrenOfKind returns all direct children with the given kind, in
// document order.
func (n *Node) ChildrenOfKind(k token.Kind) []Element {
	var out []Element
	for _, c := range n.children {
		if c.Kind() == k {
			out = append(out, c)
		}
	}
	return out
}

// NonTrivia returns the direct children that are not whitespace or comments.
func (n *Node) NonTrivia() []Element {
	var out []Element
	for _, c := range n.children {
		if c.Kind().IsTrivia() {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Tree is the top-level handle to a parsed document: the root Node plus the
// SourceMap that resolves byte offsets back to files (spec.md §3).
type Tree struct {
	Root *Node
	Map  *SourceMap
}
