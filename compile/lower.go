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
	"seehuhn.de/go/fea/ast"
	"seehuhn.de/go/fea/diag"
	"seehuhn.de/go/fea/glyph"
	"seehuhn.de/go/fea/opentype/anchor"
	"seehuhn.de/go/fea/opentype/gdef"
	"seehuhn.de/go/fea/opentype/gtab"
	"seehuhn.de/go/fea/syntax"
	"seehuhn.de/go/fea/token"
)

// Lower walks a parsed, include-expanded tree and lowers every statement
// into the lookup registry and table Infos gathered in Compilation
// (spec.md §4.5). Lower assumes Validate has already run and reported no
// errors against the same tree; calling it on an invalid tree may produce
// a garbage Compilation rather than panicking, since lowering has no
// independent error-recovery strategy of its own.
func (c *Context) Lower(f ast.File) {
	c.root = f.N
	for _, item := range f.TopLevelItems() {
		c.lowerTopLevel(item)
	}
	c.closeLookup()
	c.finish()
}

func (c *Context) lowerTopLevel(item syntax.Element) {
	n, ok := item.(*syntax.Node)
	if !ok {
		return
	}
	switch n.Kind() {
	case token.LanguageSystemNode:
		ls := ast.LanguageSystem{N: n}
		c.addDefaultLangSystem(ls.Script(), ls.Language())
	case token.GlyphClassDefNode:
		d := ast.GlyphClassDef{N: n}
		c.glyphClassDefs[d.Name()] = c.resolveGlyphClass(d.Value())
	case token.MarkClassNode:
		c.lowerMarkClass(ast.MarkClass{N: n})
	case token.AnchorDefNode:
		c.lowerAnchorDef(ast.AnchorDef{N: n})
	case token.ValueRecordDefNode:
		d := ast.ValueRecordDef{N: n}
		c.valueRecordDefs[d.Name()] = c.resolveValueRecord(d.Record())
	case token.FeatureNode:
		c.lowerFeature(ast.FeatureBlock{N: n})
	case token.LookupBlockNode:
		c.lowerNamedLookup(ast.LookupBlock{N: n})
	case token.TableNode:
		c.lowerTable(ast.Table{N: n})
	case token.AnonBlockNode, token.IncludeNode:
		// anon blocks carry raw bytes for an external table assembler to
		// splice in verbatim (spec.md §1 Non-goals: binary assembly is out
		// of scope); includes are already expanded by the time Lower runs.
	}
}

func (c *Context) addDefaultLangSystem(script, language string) {
	ls := langSys{Script: script, Language: language}
	for _, existing := range c.defaultLangSystems {
		if existing == ls {
			return
		}
	}
	c.defaultLangSystems = append(c.defaultLangSystems, ls)
}

func (c *Context) lowerMarkClass(mc ast.MarkClass) {
	name := mc.ClassName()
	info := c.markClasses[name]
	if info == nil {
		info = &markClassInfo{}
		c.markClasses[name] = info
	}
	info.used = true
	anc := c.resolveAnchor(mc.Anchor())
	for _, g := range c.resolveGlyphClass(mc.Glyphs()) {
		if prev, ok := c.markClassByGlyph[g]; ok && prev != name {
			c.warnf(mc.N, "glyph %q reassigned from mark class %q to %q", c.glyphs.Name(g), prev, name)
		}
		info.members = append(info.members, markClassMember{glyphs: g, anchor: anc})
		c.markClassByGlyph[g] = name
	}
}

func (c *Context) lowerAnchorDef(d ast.AnchorDef) {
	x, y, ok := d.XY()
	if !ok {
		return
	}
	c.anchorDefs[d.Name()] = anchorDefEntry{anchor: anchor.New(int16(x), int16(y))}
}

// errorf/warnf report a diagnostic anchored to n's position in the logical
// (include-expanded) source, tagged with the Context's nominal file id.
func (c *Context) errorf(n *syntax.Node, format string, args ...any) {
	c.bag.Errorf(diag.Semantic, c.file, c.rangeOf(n), format, args...)
}

func (c *Context) warnf(n *syntax.Node, format string, args ...any) {
	c.bag.Warnf(diag.Semantic, c.file, c.rangeOf(n), format, args...)
}

func (c *Context) rangeOf(n *syntax.Node) syntax.Range {
	if c.root == nil {
		return syntax.Range{}
	}
	if start, ok := findOffset(c.root, n, 0); ok {
		return syntax.Range{Start: start, End: start + n.Len()}
	}
	return syntax.Range{}
}

func findOffset(n *syntax.Node, target *syntax.Node, acc int) (int, bool) {
	if n == target {
		return acc, true
	}
	pos := acc
	for _, ch := range n.Children() {
		if cn, ok := ch.(*syntax.Node); ok {
			if off, found := findOffset(cn, target, pos); found {
				return off, true
			}
		}
		pos += ch.Len()
	}
	return 0, false
}

// --- feature and lookup-block state machine ----------------------------

func (c *Context) lowerFeature(fb ast.FeatureBlock) {
	c.curFeature = fb.Tag()
	c.curScript = "DFLT"
	c.curLangSystems = c.allDefaultLangSystems()
	c.curLookupFlags = 0
	c.curMarkFilterSetID = 0

	for _, item := range fb.Statements() {
		c.lowerFeatureStatement(item)
	}

	c.closeLookup()
	c.curFeature = ""
}

// allDefaultLangSystems returns every declared languagesystem, or a single
// DFLT/dflt entry if none were declared at all (spec.md §4.5.1 rule 1: a
// feature body with no script/language statement applies to every declared
// language system, not just the default script's).
func (c *Context) allDefaultLangSystems() []langSys {
	if len(c.defaultLangSystems) == 0 {
		return []langSys{dfltLangSys}
	}
	return append([]langSys(nil), c.defaultLangSystems...)
}

func (c *Context) lowerFeatureStatement(item syntax.Element) {
	n, ok := item.(*syntax.Node)
	if !ok {
		return
	}
	switch n.Kind() {
	case token.ScriptStmtNode:
		c.closeLookup()
		s := ast.ScriptStmt{N: n}
		c.curScript = s.Tag()
		c.curLangSystems = []langSys{{Script: c.curScript, Language: "dflt"}}
		c.curLookupFlags = 0
		c.curMarkFilterSetID = 0
	case token.LanguageStmtNode:
		c.closeLookup()
		s := ast.LanguageStmt{N: n}
		lang := langSys{Script: c.curScript, Language: s.Tag()}
		if !s.ExcludeDflt() {
			c.inheritDefaultLanguage(lang)
		}
		c.curLangSystems = []langSys{lang}
		c.curLookupFlags = 0
		c.curMarkFilterSetID = 0
	case token.LookupflagStmtNode:
		c.closeLookup()
		c.lowerLookupflag(ast.LookupflagStmt{N: n})
	case token.SubtableStmtNode:
		c.breakSubtable()
	case token.LookupRefNode:
		ref := ast.LookupRef{N: n}
		c.closeLookup()
		if id, ok := c.lookups.ByName(ref.Name()); ok {
			c.registerFeatureUse(id)
		} else {
			c.errorf(n, "reference to undefined lookup %q", ref.Name())
		}
	case token.LookupBlockNode:
		c.closeLookup()
		id := c.lowerNamedLookup(ast.LookupBlock{N: n})
		c.registerFeatureUse(id)
	case token.GlyphClassDefNode:
		d := ast.GlyphClassDef{N: n}
		c.glyphClassDefs[d.Name()] = c.resolveGlyphClass(d.Value())
	case token.MarkClassNode:
		c.lowerMarkClass(ast.MarkClass{N: n})
	case token.AnchorDefNode:
		c.lowerAnchorDef(ast.AnchorDef{N: n})
	case token.ValueRecordDefNode:
		d := ast.ValueRecordDef{N: n}
		c.valueRecordDefs[d.Name()] = c.resolveValueRecord(d.Record())
	case token.TableEntryNode:
		// `parameters`/`featureNames { ... }`/`sizemenuname ...`/
		// `cvParameters { ... }` feature-body statements: these feed a
		// FeatureParams sub-table an external assembler attaches to the
		// feature record, which this package has no field to hold
		// (spec.md §1 Non-goals: binary assembly is out of scope). The
		// Validator checks their shape only inside a `size` feature.
	default:
		c.lowerRule(n)
	}
}

// lowerNamedLookup lowers a `lookup <name> { ... } <name>;` block, whether
// it appears at the top level or nested inside a feature body, and returns
// its assigned LookupID. A lookup block's rules are expected to share one
// rule shape; the block's Name is attached to whichever lookup its first
// rule opens.
func (c *Context) lowerNamedLookup(lb ast.LookupBlock) gtab.LookupID {
	savedCur, savedFlags, savedMarkSet := c.cur, c.curLookupFlags, c.curMarkFilterSetID
	c.cur = nil
	c.lookups.ClearCurrent()
	c.pendingLookupName = lb.Name()

	for _, item := range lb.Statements() {
		c.lowerFeatureStatement(item)
	}
	c.closeLookup()

	id, _ := c.lookups.ByName(lb.Name())
	c.pendingLookupName = ""
	c.cur, c.curLookupFlags, c.curMarkFilterSetID = savedCur, savedFlags, savedMarkSet
	return id
}

func (c *Context) lowerLookupflag(s ast.LookupflagStmt) {
	toks := s.Tokens()
	if len(toks) == 1 && toks[0].Kind() == token.Number {
		n := 0
		for _, r := range toks[0].Text {
			if r < '0' || r > '9' {
				n = 0
				break
			}
			n = n*10 + int(r-'0')
		}
		c.curLookupFlags = gtab.LookupFlags(n)
		return
	}

	var flags gtab.LookupFlags
	for i := 0; i < len(toks); i++ {
		switch toks[i].Kind() {
		case token.KwRightToLeft:
			flags |= gtab.RightToLeft
		case token.KwIgnoreBaseGlyphs:
			flags |= gtab.IgnoreBaseGlyphs
		case token.KwIgnoreLigatures:
			flags |= gtab.IgnoreLigatures
		case token.KwIgnoreMarks:
			flags |= gtab.IgnoreMarks
		case token.KwMarkAttachmentType:
			// followed by a @name naming the attachment class, looked up
			// among `@name = ...` glyph class definitions only (a markClass
			// name is not resolved here); the class number is interned the
			// same way a mark-attachment builder interns mark classes
			// (spec.md §9).
			if i+1 < len(toks) {
				cls := c.glyphClassDefs[toks[i+1].Text]
				id := c.markAttachClassFor(classKey(cls))
				flags |= gtab.LookupFlags(id) << 8
				i++
			}
		case token.KwUseMarkFilteringSet:
			flags |= gtab.UseMarkFilteringSet
			if i+1 < len(toks) {
				cls := c.glyphClassDefs[toks[i+1].Text]
				c.curMarkFilterSetID = c.markFilterSetFor(classKey(cls))
				i++
			}
		}
	}
	c.curLookupFlags = flags
}

// breakSubtable flushes the open lookup's current builder into a new
// Subtables entry and starts a fresh builder of the same kind, so that
// rules after the break land in a new subtable within the same lookup
// (spec.md §4.5 "subtable boundary").
func (c *Context) breakSubtable() {
	if c.cur == nil {
		return
	}
	if b, ok := c.cur.builder.(subtableBuilder); ok {
		c.cur.table.Subtables = append(c.cur.table.Subtables, b.Build())
	}
	c.cur.builder = newBuilderFor(c.cur.kind, c.cur.classPair)
}

type subtableBuilder interface {
	Build() gtab.Subtable
}

// closeLookup flushes and finalizes whatever lookup is currently open.
func (c *Context) closeLookup() {
	if c.cur == nil {
		return
	}
	if b, ok := c.cur.builder.(subtableBuilder); ok {
		c.cur.table.Subtables = append(c.cur.table.Subtables, b.Build())
	}
	c.cur = nil
	c.lookups.ClearCurrent()
}

// ensureLookup returns the currently open lookup if it matches kind (and,
// for pair-positioning rules, classPair mode); otherwise it closes
// whatever was open and starts a fresh one (spec.md §4.5 "rule-shape
// changes start a new lookup").
func (c *Context) ensureLookup(kind token.Kind, classPair bool) *openLookup {
	if c.cur != nil && c.cur.kind == kind && c.cur.classPair == classPair {
		return c.cur
	}
	c.closeLookup()

	name := c.pendingLookupName
	c.pendingLookupName = ""

	lt := &gtab.LookupTable{
		Meta: &gtab.LookupMetaInfo{
			LookupType:       lookupTypeFor(kind),
			LookupFlags:      c.curLookupFlags,
			MarkFilteringSet: c.curMarkFilterSetID,
		},
		Name: name,
	}
	id := c.lookups.Append(lt)
	c.lookups.SetCurrent(id)

	c.cur = &openLookup{
		id:        id,
		name:      name,
		kind:      kind,
		flags:     c.curLookupFlags,
		markSet:   c.curMarkFilterSetID,
		table:     lt,
		builder:   newBuilderFor(kind, classPair),
		classPair: classPair,
	}

	if c.curFeature != "" {
		c.registerFeatureUse(id)
	}
	return c.cur
}

func (c *Context) registerFeatureUse(id gtab.LookupID) {
	if c.curFeature == "" {
		return
	}
	for _, ls := range c.curLangSystems {
		key := FeatureKey{Feature: c.curFeature, Script: ls.Script, Language: ls.Language}
		list := c.features[key]
		for _, existing := range list {
			if existing == id {
				goto next
			}
		}
		c.features[key] = append(list, id)
	next:
	}
}

// inheritDefaultLanguage copies the lookups already registered against the
// script's dflt language system into lang's own list, once, at the point a
// `language <tag>;` statement (without exclude_dflt) is encountered (spec.md
// §4.5.1 rule 3). Lookups opened after this point inside the language's
// block register only against lang, not against the script's dflt entry.
func (c *Context) inheritDefaultLanguage(lang langSys) {
	if c.curFeature == "" {
		return
	}
	dfltKey := FeatureKey{Feature: c.curFeature, Script: lang.Script, Language: "dflt"}
	key := FeatureKey{Feature: c.curFeature, Script: lang.Script, Language: lang.Language}
	c.features[key] = append(append([]gtab.LookupID(nil), c.features[key]...), c.features[dfltKey]...)
}

func lookupTypeFor(kind token.Kind) uint16 {
	switch kind {
	case token.GsubType1Node, token.GposType1Node:
		return 1
	case token.GsubType2Node, token.GposType2Node:
		return 2
	case token.GsubType3Node, token.GposType3Node:
		return 3
	case token.GsubType4Node, token.GposType4Node:
		return 4
	case token.GsubType5Node, token.GposType5Node:
		return 5
	case token.GsubType6Node, token.GposType6Node:
		return 6
	case token.GsubType8Node, token.GposType8Node:
		return 8
	default:
		return 0
	}
}

func newBuilderFor(kind token.Kind, classPair bool) any {
	switch kind {
	case token.GsubType1Node:
		return gtab.NewSingleSubBuilder()
	case token.GsubType2Node:
		return gtab.NewMultipleSubBuilder()
	case token.GsubType3Node:
		return gtab.NewAlternateSubBuilder()
	case token.GsubType4Node:
		return gtab.NewLigatureSubBuilder()
	case token.GsubType5Node, token.GsubIgnoreNode:
		return gtab.NewContextBuilder()
	case token.GsubType6Node, token.GposType8Node, token.GposIgnoreNode:
		return gtab.NewChainBuilder()
	case token.GposType1Node:
		return gtab.NewSinglePosBuilder()
	case token.GposType2Node:
		if classPair {
			return gtab.NewClassPairPosBuilder()
		}
		return gtab.NewPairPosBuilder()
	case token.GposType3Node:
		return gtab.NewCursivePosBuilder()
	case token.GposType4Node:
		return gtab.NewMarkToBaseBuilder()
	case token.GposType5Node:
		return gtab.NewMarkToLigBuilder()
	case token.GposType6Node:
		return gtab.NewMarkToMarkBuilder()
	default:
		return nil
	}
}

// glyphIDsOf resolves every glyph named by v, in source order.
func (c *Context) glyphIDsOf(v ast.GlyphClassValue) []glyph.ID {
	return []glyph.ID(c.resolveGlyphClass(v))
}

// isClassLike reports whether v was written as a bracketed list of more
// than one glyph, or as a single named-class reference — the shapes that
// make a GPOS pair rule a class-pair rather than a specific-pair rule
// (spec.md §4.5 "rule-shape changes start a new lookup").
func isClassLike(v ast.GlyphClassValue) bool {
	elems := v.Elements()
	if len(elems) != 1 {
		return len(elems) > 1
	}
	return elems[0].Kind() == token.GlyphClassRefNode
}
