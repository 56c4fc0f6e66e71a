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

package glyph

// Map is the bidirectional mapping between external glyph identities
// (names, for a name-keyed font, or CID numbers, for a CID-keyed font) and
// glyph.ID that a compile session is given by its caller. It is supplied
// once per session and never mutated during compilation: resolving a rule's
// glyph references is the only thing that consults it (spec.md §2
// GlyphMap).
type Map interface {
	// ByName resolves a bare glyph name to its ID. ok is false if no glyph
	// has that name.
	ByName(name string) (id ID, ok bool)

	// ByCID resolves a CID-keyed font's numeric glyph identity to its ID.
	// ok is false if the font is not CID-keyed, or no glyph has that CID.
	ByCID(cid int) (id ID, ok bool)

	// Name returns the glyph name for id, or "" if the font is CID-keyed
	// or the glyph has no name.
	Name(id ID) string

	// NumGlyphs returns the number of glyphs covered by the map.
	NumGlyphs() int
}

// NameMap is a simple, in-memory Map for a name-keyed font, built from a
// caller-supplied glyph order. It is the straightforward reference
// implementation; production callers wrapping an already-loaded font's own
// name table typically implement Map directly instead of copying into one
// of these.
type NameMap struct {
	order  []string
	byName map[string]ID
}

// NewNameMap builds a NameMap from glyph names in GID order. names[0] is
// conventionally ".notdef".
func NewNameMap(names []string) *NameMap {
	byName := make(map[string]ID, len(names))
	for i, n := range names {
		if n == "" {
			continue
		}
		if _, dup := byName[n]; !dup {
			byName[n] = ID(i)
		}
	}
	return &NameMap{order: names, byName: byName}
}

// ByName implements Map.
func (m *NameMap) ByName(name string) (ID, bool) {
	id, ok := m.byName[name]
	return id, ok
}

// ByCID implements Map: a NameMap is never CID-keyed.
func (m *NameMap) ByCID(cid int) (ID, bool) { return 0, false }

// Name implements Map.
func (m *NameMap) Name(id ID) string {
	if int(id) < 0 || int(id) >= len(m.order) {
		return ""
	}
	return m.order[id]
}

// NumGlyphs implements Map.
func (m *NameMap) NumGlyphs() int { return len(m.order) }

// CIDMap is a simple, in-memory Map for a CID-keyed font: glyph i
// (0-indexed) corresponds to CID cids[i].
type CIDMap struct {
	cids  []int
	byCID map[int]ID
}

// NewCIDMap builds a CIDMap from a GID-indexed slice of CIDs.
func NewCIDMap(cids []int) *CIDMap {
	byCID := make(map[int]ID, len(cids))
	for i, c := range cids {
		if _, dup := byCID[c]; !dup {
			byCID[c] = ID(i)
		}
	}
	return &CIDMap{cids: cids, byCID: byCID}
}

// ByName implements Map: a CIDMap has no glyph names.
func (m *CIDMap) ByName(name string) (ID, bool) { return 0, false }

// ByCID implements Map.
func (m *CIDMap) ByCID(cid int) (ID, bool) {
	id, ok := m.byCID[cid]
	return id, ok
}

// Name implements Map: a CIDMap has no glyph names.
func (m *CIDMap) Name(id ID) string { return "" }

// NumGlyphs implements Map.
func (m *CIDMap) NumGlyphs() int { return len(m.cids) }
