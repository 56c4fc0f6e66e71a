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

package compile

import (
	"strconv"
	"strings"

	"seehuhn.de/go/fea/ast"
	"seehuhn.de/go/fea/glyph"
	"seehuhn.de/go/fea/opentype/anchor"
	"seehuhn.de/go/fea/opentype/gtab"
	"seehuhn.de/go/fea/token"
)

// resolveAtom resolves one GlyphAtom to the glyph ids it denotes.
func (c *Context) resolveAtom(a ast.GlyphAtom) []glyph.ID {
	switch a.Kind() {
	case token.GlyphClassRefNode:
		if cls, ok := c.glyphClassDefs[a.ClassName()]; ok {
			return append([]glyph.ID(nil), cls...)
		}
		return nil
	case token.GlyphRangeNode:
		return c.resolveRange(a.Name(), a.RangeEnd())
	default: // token.GlyphNameNode
		if id, ok := c.glyphs.ByName(a.Name()); ok {
			return []glyph.ID{id}
		}
		return nil
	}
}

// resolveRange expands a `firstGlyph - lastGlyph` named range by walking
// the shared alphanumeric suffix, matching the `fea` convention that named
// ranges share every character except a trailing run of digits (spec.md
// §3 invariant 7 "ranges resolve fully").
func (c *Context) resolveRange(first, last string) []glyph.ID {
	fPrefix, fNum, fOK := splitTrailingDigits(first)
	lPrefix, lNum, lOK := splitTrailingDigits(last)
	if !fOK || !lOK || fPrefix != lPrefix || len(fNum) != len(lNum) {
		return nil
	}
	lo, _ := strconv.Atoi(fNum)
	hi, _ := strconv.Atoi(lNum)
	if hi < lo {
		return nil
	}
	var out []glyph.ID
	width := len(fNum)
	for n := lo; n <= hi; n++ {
		name := fPrefix + padNumber(n, width)
		if id, ok := c.glyphs.ByName(name); ok {
			out = append(out, id)
		}
	}
	return out
}

func splitTrailingDigits(s string) (prefix, digits string, ok bool) {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	if i == len(s) {
		return "", "", false
	}
	return s[:i], s[i:], true
}

func padNumber(n, width int) string {
	s := strconv.Itoa(n)
	for len(s) < width {
		s = "0" + s
	}
	return s
}

// resolveGlyphClass resolves a GlyphClassValue to its constituent glyph
// ids, in source order (duplicates and ordering are preserved; callers
// that need a canonical form call glyph.Class.SortAndDedupe themselves).
func (c *Context) resolveGlyphClass(v ast.GlyphClassValue) glyph.Class {
	if v.IsZero() {
		return nil
	}
	var out glyph.Class
	for _, atom := range v.Elements() {
		out = append(out, c.resolveAtom(atom)...)
	}
	return out
}

// resolveAnchor resolves an ast.Anchor to its opentype/anchor.Table value.
func (c *Context) resolveAnchor(a ast.Anchor) anchor.Table {
	if a.IsNull() {
		return anchor.Null
	}
	if a.IsRef() {
		if def, ok := c.anchorDefs[a.RefName()]; ok {
			return def.anchor
		}
		return anchor.Null
	}
	x, y, ok := a.XY()
	if !ok {
		return anchor.Null
	}
	return anchor.New(int16(x), int16(y))
}

// resolveValueRecord resolves an ast.ValueRecord to its gtab.ValueRecord
// value. A bare single number is an xAdvance-only record (the common
// horizontal-kerning shorthand); four numbers give placement and advance
// in both directions (spec.md §4.6).
func (c *Context) resolveValueRecord(v ast.ValueRecord) gtab.ValueRecord {
	if v.IsNull() {
		return gtab.ValueRecord{}
	}
	if v.IsRef() {
		if vr, ok := c.valueRecordDefs[v.RefName()]; ok {
			return vr
		}
		return gtab.ValueRecord{}
	}
	nums := v.Numbers()
	vals := make([]int, len(nums))
	for i, s := range nums {
		n, _ := strconv.Atoi(s)
		vals[i] = n
	}
	switch len(vals) {
	case 1:
		return gtab.ValueRecord{XAdvance: int16(vals[0]), HasXAdvance: true}
	case 4:
		return gtab.ValueRecord{
			XPlacement: int16(vals[0]), HasXPlacement: true,
			YPlacement: int16(vals[1]), HasYPlacement: true,
			XAdvance: int16(vals[2]), HasXAdvance: true,
			YAdvance: int16(vals[3]), HasYAdvance: true,
		}
	default:
		return gtab.ValueRecord{}
	}
}

// classKey builds the canonical interning key for a glyph class (spec.md
// §9 "interning for flag-compressed ids").
func classKey(cls glyph.Class) string {
	return cls.SortAndDedupe().Key()
}

// tokensToWords joins a lookupflag statement's bareword flags with single
// spaces, for matching against the named-flag table.
func tokensToWords(words []string) string { return strings.Join(words, " ") }
