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

// Package gtab holds the in-memory shape of GSUB/GPOS lookups and
// subtables produced by lowering a feature file, along with the layout
// builders that accumulate rule data into them (spec.md §2, §4.5). Unlike
// a binary font library's gtab package, this one never reads or writes an
// actual "GSUB"/"GPOS" table: producing wire bytes is an external
// collaborator's job (spec.md §1 Non-goals), so Subtable here is a plain
// closed union of record types with no apply/encode methods.
package gtab

// LookupID identifies a lookup within an AllLookups registry. It is
// assigned sequentially as lookups are appended (spec.md §2 AllLookups),
// never reused, and stable for the lifetime of one compile session.
type LookupID uint16

// LookupList is an ordered collection of lookups, the in-memory analogue of
// an OpenType "Lookup List Table".
type LookupList []*LookupTable

// LookupTable is one lowered lookup: its metadata plus the ordered
// subtables produced by its layout builder(s). A lookup accumulates
// subtables across `subtable;` breaks within the same rule block — each
// break starts a fresh accumulator state in the active builder, flushed as
// one more entry in Subtables (spec.md §4.5 "subtable boundary").
type LookupTable struct {
	Meta      *LookupMetaInfo
	Subtables []Subtable

	// Name is the user-assigned label for a named lookup block, or "" for
	// an anonymous (inline, feature-body) lookup.
	Name string
}

// LookupMetaInfo carries the lookup-wide metadata that is not specific to
// any one subtable.
type LookupMetaInfo struct {
	// LookupType identifies the rule kind (1-8 for both GSUB and GPOS,
	// numbered independently per spec.md §2 "type selects one of the
	// GSUB/GPOS rule kinds").
	LookupType uint16

	LookupFlags LookupFlags

	// MarkFilteringSet indexes into the owning GDEF table's MarkGlyphSets,
	// and is only meaningful when LookupFlags&UseMarkFilteringSet != 0.
	MarkFilteringSet uint16
}

// LookupFlags holds the bits that modify how a lookup's rules are matched
// against a glyph sequence (spec.md §2's lookup flags; semantics unchanged
// from the OpenType LookupFlag bitfield).
type LookupFlags uint16

// Bit values for LookupFlags, matching the OpenType "LookupFlag" bitfield.
const (
	RightToLeft         LookupFlags = 0x0001
	IgnoreBaseGlyphs    LookupFlags = 0x0002
	IgnoreLigatures     LookupFlags = 0x0004
	IgnoreMarks         LookupFlags = 0x0008
	UseMarkFilteringSet LookupFlags = 0x0010
	MarkAttachTypeMask  LookupFlags = 0xFF00
)

// MarkAttachType extracts the mark-attachment class from the high byte of
// the flags (0 means "no MarkAttachmentType filter").
func (f LookupFlags) MarkAttachType() uint16 {
	return uint16(f&MarkAttachTypeMask) >> 8
}

// Subtable is the closed union of lowered GSUB/GPOS subtable shapes. Every
// concrete type in this package (Gsub1_1, ..., Gpos6_1, SeqContext1, ...,
// ChainedSeqContext3) implements it; dispatch is always a type switch over
// these concrete types, never an interface method call (spec.md §9
// "tagged unions over trait objects" — mirrors the teacher's Subtable
// being a closed set of concrete record types).
type Subtable interface {
	// isSubtable is unexported so that Subtable can only ever be
	// implemented by types in this package.
	isSubtable()
}

// AllLookups is the append-only registry of lowered lookups for one compile
// session (spec.md §2 AllLookups). LookupIDs are assigned in append order
// and never reused or reordered.
type AllLookups struct {
	list   LookupList
	byName map[string]LookupID

	// current is the LookupID of the rule block presently being lowered,
	// or -1 if none is open. It lets a chaining-context rule reference
	// "the lookup currently being defined" the way an inline `lookup { ...
	// }` reference inside its own body would.
	current int
}

// NewAllLookups creates an empty registry.
func NewAllLookups() *AllLookups {
	return &AllLookups{byName: make(map[string]LookupID), current: -1}
}

// Append adds a new lookup to the registry and returns its assigned ID.
func (a *AllLookups) Append(lt *LookupTable) LookupID {
	id := LookupID(len(a.list))
	a.list = append(a.list, lt)
	if lt.Name != "" {
		a.byName[lt.Name] = id
	}
	return id
}

// ByName resolves a named lookup block to its ID.
func (a *AllLookups) ByName(name string) (LookupID, bool) {
	id, ok := a.byName[name]
	return id, ok
}

// Get returns the lookup with the given ID.
func (a *AllLookups) Get(id LookupID) *LookupTable {
	if int(id) < 0 || int(id) >= len(a.list) {
		return nil
	}
	return a.list[id]
}

// Len returns the number of registered lookups.
func (a *AllLookups) Len() int { return len(a.list) }

// List returns the registry's lookups in assignment order. The slice is
// owned by the caller; callers must not mutate it.
func (a *AllLookups) List() LookupList { return a.list }

// SetCurrent records which lookup a rule block currently open is lowering
// into, or clears it when id is -1.
func (a *AllLookups) SetCurrent(id LookupID) { a.current = int(id) }

// ClearCurrent clears the "currently open" lookup.
func (a *AllLookups) ClearCurrent() { a.current = -1 }

// Current returns the LookupID of the rule block presently being lowered,
// and whether one is open.
func (a *AllLookups) Current() (LookupID, bool) {
	if a.current < 0 {
		return 0, false
	}
	return LookupID(a.current), true
}
