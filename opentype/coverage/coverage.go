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

// Package coverage represents an OpenType Coverage table: the ordered set
// of glyphs a GSUB/GPOS subtable applies to, together with each glyph's
// "coverage index" used to look up the corresponding rule data.
package coverage

import (
	"sort"

	"seehuhn.de/go/fea/glyph"
)

// Table maps each covered glyph to its coverage index (0-based position in
// the table's sorted glyph order). Layout builders build one of these per
// emitted subtable, keyed on whatever glyph set the rule touched.
type Table map[glyph.ID]int

// Glyphs returns the covered glyphs, sorted by glyph ID (equivalently, by
// coverage index).
func (t Table) Glyphs() []glyph.ID {
	out := make([]glyph.ID, 0, len(t))
	for g := range t {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// New builds a coverage Table from a set of glyphs, assigning indices in
// ascending glyph-ID order (the only order OpenType Coverage format 1/2
// allow).
func New(glyphs Set) Table {
	ids := make([]glyph.ID, 0, len(glyphs))
	for g := range glyphs {
		ids = append(ids, g)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	t := make(Table, len(ids))
	for i, g := range ids {
		t[g] = i
	}
	return t
}

// Set is an unordered set of glyphs, the natural accumulator type while a
// layout builder is still collecting rule input before a Table is finalized
// (spec.md §2 "Layout builders ... accrete rules throughout lowering").
type Set map[glyph.ID]bool

// NewSet builds a Set from a list of glyphs.
func NewSet(glyphs ...glyph.ID) Set {
	s := make(Set, len(glyphs))
	for _, g := range glyphs {
		s[g] = true
	}
	return s
}

// Add inserts g into the set.
func (s Set) Add(g glyph.ID) { s[g] = true }

// Union returns the union of s with others, as a new Set.
func (s Set) Union(others ...Set) Set {
	out := make(Set, len(s))
	for g := range s {
		out[g] = true
	}
	for _, o := range others {
		for g := range o {
			out[g] = true
		}
	}
	return out
}
