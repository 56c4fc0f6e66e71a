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

// Package compile implements the validation and lowering passes (spec.md
// §4.4, §4.5): the Validator walks a parsed, include-expanded tree and
// checks it against a glyph inventory, and Context drives a second walk
// that resolves glyphs, classes, anchors and value records and appends
// rules to the layout builders in opentype/gtab, finally assembling a
// Compilation.
package compile

import (
	"golang.org/x/text/language"

	"seehuhn.de/go/fea/diag"
	"seehuhn.de/go/fea/glyph"
	"seehuhn.de/go/fea/opentype/anchor"
	"seehuhn.de/go/fea/opentype/base"
	"seehuhn.de/go/fea/opentype/gdef"
	"seehuhn.de/go/fea/opentype/gtab"
	"seehuhn.de/go/fea/opentype/head"
	"seehuhn.de/go/fea/opentype/hhea"
	"seehuhn.de/go/fea/opentype/name"
	"seehuhn.de/go/fea/opentype/os2"
	"seehuhn.de/go/fea/opentype/stat"
	"seehuhn.de/go/fea/opentype/vhea"
	"seehuhn.de/go/fea/opentype/vmtx"
	"seehuhn.de/go/fea/syntax"
	"seehuhn.de/go/fea/token"
)

// FeatureKey identifies a (feature, script, language) slot holding an
// ordered list of lookups (spec.md §3 "Feature key").
type FeatureKey struct {
	Feature  string
	Script   string
	Language string
}

// langSys is a (script, language) pair, the unit languagesystem statements
// and script/language statements inside a feature operate on.
type langSys struct {
	Script, Language string
}

// dfltLangSys is the `DFLT dflt` pair every feature defaults to when no
// languagesystem statements are declared (spec.md §4.5.1).
var dfltLangSys = langSys{Script: "DFLT", Language: "dflt"}

// Compilation is the final output of a compile session (spec.md §3).
type Compilation struct {
	Features map[FeatureKey][]gtab.LookupID
	Lookups  *gtab.AllLookups

	GDEF *gdef.Table
	BASE *base.Info
	Head *head.Info
	Hhea *hhea.Info
	Name *name.Info
	OS2  *os2.Info
	Stat *stat.Info
	Vhea *vhea.Info
	Vmtx *vmtx.Info

	Warnings []diag.Diagnostic
}

// markClassInfo is a named markClass's accumulated members.
type markClassInfo struct {
	used    bool
	members []markClassMember
}

type markClassMember struct {
	glyphs glyph.ID
	anchor anchor.Table
}

// anchorDefEntry records a named anchorDef's resolved value.
type anchorDefEntry struct {
	anchor anchor.Table
}

// Context drives the lowering walk (spec.md §4.5). A Context is owned
// exclusively by one compile session and is never shared (spec.md §5).
type Context struct {
	glyphs glyph.Map
	bag    *diag.Bag
	file   syntax.FileID

	defaultLangSystems []langSys

	glyphClassDefs  map[string]glyph.Class
	markClasses     map[string]*markClassInfo
	anchorDefs      map[string]anchorDefEntry
	valueRecordDefs map[string]gtab.ValueRecord

	curFeature     string
	curLangSystems []langSys
	curScript      string

	curLookupFlags     gtab.LookupFlags
	curMarkFilterSetID uint16

	markAttachClassID map[string]uint16
	nextAttachClass   uint16
	markFilterSets    map[string]uint16
	nextFilterSet     uint16

	features map[FeatureKey][]gtab.LookupID
	lookups  *gtab.AllLookups

	// active anonymous/named lookup being accumulated.
	cur *openLookup

	// glyph -> name of the last mark class a markClass statement put the
	// glyph in, over the whole file (it is not reset per lookup). A glyph
	// that moves to a second class gets a warning and is added to both
	// classes; no error is reported.
	markClassByGlyph map[glyph.ID]string

	gdefGlyphClass map[glyph.ID]uint16
	gdefMarkClass  map[glyph.ID]uint16
	explicitGDEF   *gdef.Table

	tables Compilation

	// root is the top-level CST node Lower was called with, used by
	// rangeOf to compute a diagnostic's byte offset by walking down from
	// the root and summing preceding siblings' Len() (syntax.Node carries
	// no absolute offset of its own).
	root *syntax.Node

	// pendingLookupName is the name a lookup block supplies for whichever
	// lookup its first rule opens; consumed by the next ensureLookup call.
	pendingLookupName string
}

// openLookup is the lookup currently accumulating subtables, whether
// anonymous (inside a feature body) or named (`lookup <name> { ... }`).
type openLookup struct {
	id      gtab.LookupID
	name    string
	kind    token.Kind // the rule-shape Kind that opened this lookup
	flags   gtab.LookupFlags
	markSet uint16

	table     *gtab.LookupTable
	builder   any // one of the gtab *XxxBuilder types, chosen by kind
	classPair bool

	// firstClassIDs/secondClassIDs intern canonical glyph-class keys to
	// per-lookup class numbers for a GPOS class-pair rule (spec.md §4.5.2);
	// the two positions number their classes independently.
	firstClassIDs  map[string]uint16
	secondClassIDs map[string]uint16
}

// NewContext creates a lowering context for one compile session.
func NewContext(glyphs glyph.Map, file syntax.FileID, bag *diag.Bag) *Context {
	return &Context{
		glyphs:            glyphs,
		bag:               bag,
		file:              file,
		glyphClassDefs:    make(map[string]glyph.Class),
		markClasses:       make(map[string]*markClassInfo),
		anchorDefs:        make(map[string]anchorDefEntry),
		valueRecordDefs:   make(map[string]gtab.ValueRecord),
		markAttachClassID: make(map[string]uint16),
		markFilterSets:    make(map[string]uint16),
		features:          make(map[FeatureKey][]gtab.LookupID),
		lookups:           gtab.NewAllLookups(),
		markClassByGlyph:  make(map[glyph.ID]string),
		gdefGlyphClass:    make(map[glyph.ID]uint16),
		gdefMarkClass:     make(map[glyph.ID]uint16),
	}
}

// markAttachClassFor interns a canonical glyph class to a 1-based mark
// attachment class id, assigning lazily at first use (spec.md §4.5,
// §9 "interning for flag-compressed ids").
func (c *Context) markAttachClassFor(key string) uint16 {
	if id, ok := c.markAttachClassID[key]; ok {
		return id
	}
	c.nextAttachClass++
	c.markAttachClassID[key] = c.nextAttachClass
	return c.nextAttachClass
}

// markFilterSetFor interns a canonical glyph class to a 1-based
// mark-filtering-set id.
func (c *Context) markFilterSetFor(key string) uint16 {
	if id, ok := c.markFilterSets[key]; ok {
		return id
	}
	c.nextFilterSet++
	c.markFilterSets[key] = c.nextFilterSet
	return c.nextFilterSet
}

// scriptTag normalizes a script/language tag for use as a BCP-47-adjacent
// language.Tag where ordering or comparison benefits from it (spec.md §2's
// note that opentype/gtab/lookup.go already depends on
// golang.org/x/text/language for this purpose). Malformed tags degrade to
// language.Und rather than erroring: feature-file script/language tags are
// not themselves BCP-47. Nothing in the package calls it at present.
func scriptTag(tag string) language.Tag {
	t, err := language.Parse(tag)
	if err != nil {
		return language.Und
	}
	return t
}

// finish assembles the accumulated feature/lookup state and the GDEF table
// into tables, ready for Result. An explicit GDEF block is used as is. The
// inferred branch builds a GDEF from gdefGlyphClass/gdefMarkClass, but only
// an explicit GDEF block fills those maps, so no GDEF is derived from how
// the rules use glyphs or from markClass statements.
func (c *Context) finish() {
	c.tables.Features = c.features
	c.tables.Lookups = c.lookups

	if c.explicitGDEF != nil {
		c.tables.GDEF = c.explicitGDEF
	} else if len(c.gdefGlyphClass) > 0 || len(c.gdefMarkClass) > 0 {
		glyphClass := make(map[glyph.ID]uint16, len(c.gdefGlyphClass))
		for g, v := range c.gdefGlyphClass {
			glyphClass[g] = v
		}
		inferred := gdef.NewInferred(glyphClass)
		if len(c.gdefMarkClass) > 0 {
			markAttach := make(map[glyph.ID]uint16, len(c.gdefMarkClass))
			for g, v := range c.gdefMarkClass {
				markAttach[g] = v
			}
			inferred.MarkAttachClass = markAttach
		}
		if len(c.markFilterSets) > 0 {
			sets := make([]glyph.Class, c.nextFilterSet+1)
			for key, id := range c.markFilterSets {
				sets[id] = classFromKey(key)
			}
			inferred.MarkGlyphSets = sets
		}
		c.tables.GDEF = inferred
	}
}

// Result returns the Compilation assembled by Lower. It must be called
// after Lower returns.
func (c *Context) Result() *Compilation { return &c.tables }

// classFromKey reconstructs a glyph.Class from the canonical string key
// produced by glyph.Class.Key(), used only to recover a mark filtering
// set's membership for GDEF.MarkGlyphSets when no table GDEF block listed
// it explicitly.
func classFromKey(key string) glyph.Class {
	if key == "" {
		return nil
	}
	parts := splitKey(key)
	out := make(glyph.Class, 0, len(parts))
	for _, p := range parts {
		var id uint32
		for _, r := range p {
			id = id*10 + uint32(r-'0')
		}
		out = append(out, glyph.ID(id))
	}
	return out
}

func splitKey(key string) []string {
	var out []string
	start := 0
	for i := 0; i < len(key); i++ {
		if key[i] == ',' {
			out = append(out, key[start:i])
			start = i + 1
		}
	}
	out = append(out, key[start:])
	return out
}
