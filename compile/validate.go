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
	"seehuhn.de/go/fea/diag"
	"seehuhn.de/go/fea/glyph"
	"seehuhn.de/go/fea/syntax"
	"seehuhn.de/go/fea/token"
)

// Validator walks a parsed, include-expanded tree once and reports
// diagnostics for anything a later Lower pass should not have to guard
// against itself (spec.md §4.4). It never halts on an error: a Diagnostic
// is appended and the walk continues, matching how a feature compiler
// tries to surface every problem in a file in one pass rather than
// stopping at the first one.
type Validator struct {
	glyphs glyph.Map
	bag    *diag.Bag
	file   syntax.FileID
	root   *syntax.Node

	glyphClassDefs map[string]glyph.Class
	markClassUsed  map[string]bool // despite the name, tracks "defined", not "referenced"
	anchorDefs     map[string]bool
	valueRecordDef map[string]bool
	lookupNames    map[string]bool

	defaultLangSystems []langSys
	seenNonDfltScript  bool
}

// NewValidator creates a Validator for one compile session.
func NewValidator(glyphs glyph.Map, file syntax.FileID, bag *diag.Bag) *Validator {
	return &Validator{
		glyphs:         glyphs,
		bag:            bag,
		file:           file,
		glyphClassDefs: make(map[string]glyph.Class),
		markClassUsed:  make(map[string]bool),
		anchorDefs:     make(map[string]bool),
		valueRecordDef: make(map[string]bool),
		lookupNames:    make(map[string]bool),
	}
}

func (v *Validator) errorf(n *syntax.Node, format string, args ...any) {
	v.bag.Errorf(diag.Semantic, v.file, v.rangeOf(n), format, args...)
}

func (v *Validator) warnf(n *syntax.Node, format string, args ...any) {
	v.bag.Warnf(diag.Semantic, v.file, v.rangeOf(n), format, args...)
}

func (v *Validator) rangeOf(n *syntax.Node) syntax.Range {
	if v.root == nil {
		return syntax.Range{}
	}
	if start, ok := findOffset(v.root, n, 0); ok {
		return syntax.Range{Start: start, End: start + n.Len()}
	}
	return syntax.Range{}
}

// Validate walks f and reports every diagnostic it finds into the Bag
// given to NewValidator.
func (v *Validator) Validate(f ast.File) {
	v.root = f.N
	for _, item := range f.TopLevelItems() {
		v.checkTopLevel(item)
	}
}

func (v *Validator) checkTopLevel(item syntax.Element) {
	n, ok := item.(*syntax.Node)
	if !ok {
		return
	}
	switch n.Kind() {
	case token.LanguageSystemNode:
		v.checkLanguageSystem(ast.LanguageSystem{N: n})
	case token.GlyphClassDefNode:
		d := ast.GlyphClassDef{N: n}
		v.checkGlyphClassValue(d.Value())
		v.glyphClassDefs[d.Name()] = v.resolveForCheck(d.Value())
	case token.MarkClassNode:
		v.checkMarkClass(ast.MarkClass{N: n})
	case token.AnchorDefNode:
		d := ast.AnchorDef{N: n}
		v.anchorDefs[d.Name()] = true
	case token.ValueRecordDefNode:
		d := ast.ValueRecordDef{N: n}
		v.valueRecordDef[d.Name()] = true
	case token.FeatureNode:
		v.checkFeature(ast.FeatureBlock{N: n})
	case token.LookupBlockNode:
		v.checkLookupBlock(ast.LookupBlock{N: n})
	case token.TableNode:
		v.checkTable(ast.Table{N: n})
	}
}

// checkLanguageSystem enforces spec.md §4.4's languagesystem ordering
// rule: `DFLT dflt`, where present, must be the first entry, all DFLT
// entries come before any non-DFLT script, and duplicates warn.
func (v *Validator) checkLanguageSystem(ls ast.LanguageSystem) {
	script, lang := ls.Script(), ls.Language()
	for _, existing := range v.defaultLangSystems {
		if existing.Script == script && existing.Language == lang {
			v.warnf(ls.N, "duplicate languagesystem %s %s", script, lang)
			return
		}
	}
	if script != "DFLT" {
		v.seenNonDfltScript = true
	} else if v.seenNonDfltScript {
		v.errorf(ls.N, "languagesystem DFLT %s must precede non-DFLT scripts", lang)
	}
	if script == "DFLT" && lang == "dflt" && len(v.defaultLangSystems) > 0 {
		v.errorf(ls.N, "languagesystem DFLT dflt must be the first languagesystem")
	}
	v.defaultLangSystems = append(v.defaultLangSystems, langSys{Script: script, Language: lang})
}

func (v *Validator) checkMarkClass(mc ast.MarkClass) {
	name := mc.ClassName()
	v.markClassUsed[name] = true // tracks "defined", despite the field name; see struct doc
	v.checkGlyphClassValue(mc.Glyphs())
	if mc.Anchor().IsRef() {
		if !v.anchorDefs[mc.Anchor().RefName()] {
			v.errorf(mc.N, "reference to undefined anchorDef %q", mc.Anchor().RefName())
		}
	}
}

// checkLookupBlock validates a standalone `lookup <name> { ... } <name>;`
// block's statements and records its name for later LookupRef checks.
func (v *Validator) checkLookupBlock(lb ast.LookupBlock) {
	v.lookupNames[lb.Name()] = true
	for _, item := range lb.Statements() {
		v.checkFeatureStatement(item, "")
	}
}

// checkFeature validates a `feature <tag> { ... } <tag>;` block. `size` is
// the only feature tag with tag-specific rules; `aalt`, `ss01`..`ss20` and
// `cv01`..`cv99` blocks get the same checks as any other feature.
func (v *Validator) checkFeature(fb ast.FeatureBlock) {
	tag := fb.Tag()
	var parametersCount int
	var sizeMenuNameCount int
	var subfamilyZero bool
	var sawOther bool

	for _, item := range fb.Statements() {
		n, ok := item.(*syntax.Node)
		if ok && n.Kind() == token.TableEntryNode {
			toks := ast.TableEntry{N: n}.Tokens()
			if len(toks) == 0 {
				continue
			}
			switch toks[0].Text {
			case "parameters":
				parametersCount++
				if len(toks) >= 3 {
					if sub, err := strconv.ParseFloat(toks[2].Text, 64); err == nil && sub == 0 {
						subfamilyZero = true
					}
				}
				continue
			case "sizemenuname":
				sizeMenuNameCount++
				continue
			case "featureNames", "cvParameters":
				continue
			}
		}
		sawOther = v.checkFeatureStatement(item, tag) || sawOther
	}

	switch {
	case tag == "size":
		if parametersCount != 1 {
			v.errorf(fb.N, "feature 'size' must contain exactly one parameters statement, found %d", parametersCount)
		}
		if sawOther {
			v.errorf(fb.N, "feature 'size' permits only a parameters statement and sizemenuname statements")
		}
		if subfamilyZero && sizeMenuNameCount > 0 {
			v.errorf(fb.N, "feature 'size' has a zero subfamily id but declares sizemenuname entries")
		}
	}
}

// checkFeatureStatement validates one statement inside a feature or
// lookup block body, reporting true if the statement is a rule/lookup
// reference/lookupflag/script/language statement rather than one of the
// feature-parameter TableEntryNode shapes the caller already special-cased.
func (v *Validator) checkFeatureStatement(item syntax.Element, tag string) bool {
	n, ok := item.(*syntax.Node)
	if !ok {
		return false
	}
	switch n.Kind() {
	case token.ScriptStmtNode, token.LanguageStmtNode, token.SubtableStmtNode:
		return true
	case token.LookupflagStmtNode:
		v.checkLookupflag(ast.LookupflagStmt{N: n})
		return true
	case token.LookupRefNode:
		ref := ast.LookupRef{N: n}
		if !v.lookupNames[ref.Name()] {
			v.errorf(n, "reference to undefined lookup %q", ref.Name())
		}
		return true
	case token.LookupBlockNode:
		v.checkLookupBlock(ast.LookupBlock{N: n})
		return true
	case token.GlyphClassDefNode:
		d := ast.GlyphClassDef{N: n}
		v.checkGlyphClassValue(d.Value())
		v.glyphClassDefs[d.Name()] = v.resolveForCheck(d.Value())
		return false
	case token.MarkClassNode:
		v.checkMarkClass(ast.MarkClass{N: n})
		return false
	case token.AnchorDefNode:
		d := ast.AnchorDef{N: n}
		v.anchorDefs[d.Name()] = true
		return false
	case token.ValueRecordDefNode:
		d := ast.ValueRecordDef{N: n}
		v.valueRecordDef[d.Name()] = true
		return false
	case token.TableEntryNode:
		// a feature-parameter statement the caller didn't already
		// special-case (e.g. inside a lookup block, where `parameters`
		// cannot legally appear but is left to pass through harmlessly).
		return true
	default:
		v.checkRule(ast.Rule{N: n})
		return true
	}
}

// checkLookupflag validates a `lookupflag ...;` statement: a bare numeric
// literal is exclusive of the named-flag form; named single-word flags
// are each mutually exclusive and may appear at most once;
// MarkAttachmentType/UseMarkFilteringSet must each be followed by a glyph
// class reference (spec.md §4.4).
func (v *Validator) checkLookupflag(s ast.LookupflagStmt) {
	toks := s.Tokens()
	if len(toks) == 0 {
		return
	}
	if toks[0].Kind() == token.Number {
		if len(toks) > 1 {
			v.errorf(s.N, "lookupflag: a numeric value excludes any named flags")
		}
		return
	}

	seen := make(map[token.Kind]bool)
	for i := 0; i < len(toks); i++ {
		k := toks[i].Kind()
		switch k {
		case token.KwRightToLeft, token.KwIgnoreBaseGlyphs,
			token.KwIgnoreLigatures, token.KwIgnoreMarks:
			if seen[k] {
				v.errorf(s.N, "lookupflag: %q appears more than once", toks[i].Text)
			}
			seen[k] = true
		case token.KwMarkAttachmentType, token.KwUseMarkFilteringSet:
			if seen[k] {
				v.errorf(s.N, "lookupflag: %q appears more than once", toks[i].Text)
			}
			seen[k] = true
			if i+1 >= len(toks) || toks[i+1].Kind() != token.GlyphClassName {
				v.errorf(s.N, "lookupflag: %q must be followed by a glyph class", toks[i].Text)
			} else {
				if _, ok := v.glyphClassDefs[toks[i+1].Text]; !ok {
					v.errorf(s.N, "lookupflag: reference to undefined glyph class %q", toks[i+1].Text)
				}
				i++
			}
		case token.Number:
			v.errorf(s.N, "lookupflag: a numeric value excludes any named flags")
		}
	}
}

// checkRule validates the GSUB/GPOS shape cardinality and mark-attachment
// constraints spec.md §4.4 lists: single-sub target/replacement classes
// must have equal cardinality, multiple-sub needs >= 2 replacements,
// ligature-sub needs >= 2 targets, and mark-to-X rules need defined mark
// classes and, for mark-to-base/mark-to-mark, a non-null anchor on a
// named class.
func (v *Validator) checkRule(r ast.Rule) {
	for _, pos := range r.Positions() {
		v.checkGlyphClassValue(pos.Value)
	}
	for _, val := range r.Replacement() {
		v.checkGlyphClassValue(val)
	}

	switch r.Kind() {
	case token.GsubType1Node:
		positions := r.Positions()
		replacement := r.Replacement()
		if len(positions) == 1 && len(replacement) == 1 {
			target := v.resolveForCheck(positions[0].Value)
			repl := v.resolveForCheck(replacement[0])
			if len(target) > 1 && len(repl) > 1 && len(target) != len(repl) {
				v.errorf(r.N, "single substitution: target and replacement classes have different sizes (%d vs %d)", len(target), len(repl))
			}
		}
	case token.GsubType2Node:
		if len(r.Replacement()) < 2 {
			v.errorf(r.N, "multiple substitution must name at least 2 replacement glyphs")
		}
	case token.GsubType4Node:
		if len(r.Positions()) < 2 {
			v.errorf(r.N, "ligature substitution must name at least 2 target glyphs")
		}
	case token.GposType4Node, token.GposType6Node:
		v.checkMarkToBaseOrMark(r)
	case token.GposType5Node:
		v.checkMarkToLigature(r)
	}
}

func (v *Validator) checkMarkToBaseOrMark(r ast.Rule) {
	for _, ma := range r.MarkAnchors() {
		if !v.markClassUsed[ma.ClassName] {
			v.errorf(r.N, "reference to undefined mark class %q", ma.ClassName)
		}
		if ma.Anchor.IsNull() {
			v.errorf(r.N, "mark attachment anchor must not be <anchor NULL>")
		}
	}
	if len(r.MarkAnchors()) == 0 {
		v.errorf(r.N, "mark attachment rule has no anchor/mark-class pairs")
	}
}

func (v *Validator) checkMarkToLigature(r ast.Rule) {
	for _, ma := range r.MarkAnchors() {
		if !v.markClassUsed[ma.ClassName] {
			v.errorf(r.N, "reference to undefined mark class %q", ma.ClassName)
		}
	}
}

// checkTable validates table-specific ranges spec.md §4.4 calls out for
// OS/2, STAT, and name, and hands GDEF blocks to checkGDEFTable (the other
// table blocks carry no constraints beyond "glyph exists", already covered
// by checkGlyphAtom).
func (v *Validator) checkTable(t ast.Table) {
	switch t.Tag() {
	case "OS/2":
		v.checkOS2Table(t)
	case "STAT":
		v.checkStatTable(t)
	case "name":
		v.checkNameTable(t)
	case "GDEF":
		v.checkGDEFTable(t)
	}
}

func (v *Validator) checkOS2Table(t ast.Table) {
	for _, e := range t.Entries() {
		toks := e.Tokens()
		if len(toks) < 2 {
			continue
		}
		switch toks[0].Text {
		case "Panose":
			for i := 1; i < len(toks) && i <= 10; i++ {
				if n, err := strconv.Atoi(toks[i].Text); err != nil || n < 0 || n > 127 {
					v.errorf(e.N, "Panose value %s out of range 0..127", toks[i].Text)
				}
			}
		case "UnicodeRange":
			for _, tok := range toks[1:] {
				if n, err := strconv.Atoi(tok.Text); err != nil || n < 0 || n > 127 {
					v.errorf(e.N, "UnicodeRange bit %s out of range 0..127", tok.Text)
				}
			}
		case "CodePageRange":
			for _, tok := range toks[1:] {
				if _, err := strconv.Atoi(tok.Text); err != nil {
					v.errorf(e.N, "CodePageRange value %q is not a number", tok.Text)
				}
			}
		case "winAscent", "winDescent":
			if n, err := strconv.Atoi(toks[1].Text); err != nil || n < 0 {
				v.errorf(e.N, "%s must be positive", toks[0].Text)
			}
		}
	}
}

func (v *Validator) checkStatTable(t ast.Table) {
	elidedCount := 0
	for _, e := range t.Entries() {
		toks := e.Tokens()
		if len(toks) == 0 {
			continue
		}
		switch toks[0].Text {
		case "ElidedFallbackNameID", "ElidedFallbackName":
			elidedCount++
		case "AxisValue":
			v.checkAxisValue(e)
		}
	}
	if elidedCount != 1 {
		v.errorf(t.N, "STAT table must declare exactly one elided-fallback name, found %d", elidedCount)
	}
}

// checkAxisValue enforces "exactly one location statement of format b or
// c, or one-or-more of format a": a single `location` with a value+linked
// pair or a nominal/min/max triple must be the block's only location
// statement, while a single-value `location` may repeat (each
// contributing one axis to a format-4 combination).
func (v *Validator) checkAxisValue(e ast.TableEntry) {
	toks := e.Tokens()
	var locationValueCounts []int
	i := 0
	for i < len(toks) {
		if toks[i].Text != "location" {
			i++
			continue
		}
		i++
		if i < len(toks) {
			i++ // skip the axis tag
		}
		n := 0
		for i < len(toks) && toks[i].Kind() != token.Semi {
			if _, err := strconv.ParseFloat(toks[i].Text, 64); err == nil {
				n++
			}
			i++
		}
		locationValueCounts = append(locationValueCounts, n)
	}
	if len(locationValueCounts) == 0 {
		v.errorf(e.N, "AxisValue block has no location statement")
		return
	}
	if len(locationValueCounts) > 1 {
		for _, n := range locationValueCounts {
			if n != 1 {
				v.errorf(e.N, "AxisValue combination entries must each give a single value")
			}
		}
		return
	}
	if n := locationValueCounts[0]; n != 1 && n != 2 && n != 3 {
		v.errorf(e.N, "AxisValue location must give 1, 2, or 3 numbers, found %d", n)
	}
}

func (v *Validator) checkNameTable(t ast.Table) {
	for _, e := range t.Entries() {
		toks := e.Tokens()
		if len(toks) < 2 || toks[0].Text != "nameid" {
			continue
		}
		rest := toks[2:]
		if len(rest) != 4 {
			continue // bare `nameid <id> "string";`, no explicit platform
		}
		platform, err := strconv.Atoi(rest[0].Text)
		if err != nil || (platform != 1 && platform != 3) {
			v.errorf(e.N, "name table platform id must be 1 or 3, found %s", rest[0].Text)
			continue
		}
		v.checkNameEscapes(e.N, rest[3].Text, platform)
	}
}

// checkNameEscapes checks that every `\XXXX`/`\XX` escape in a quoted
// name-table string has the digit count its platform requires: 4 hex
// digits for platform 3 (UTF-16BE code units), 2 for platform 1
// (Macintosh single-byte).
func (v *Validator) checkNameEscapes(n *syntax.Node, quoted string, platform int) {
	want := 2
	if platform == 3 {
		want = 4
	}
	s := unquote(quoted)
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			continue
		}
		j := i + 1
		for j < len(s) && j < i+1+want && isHexDigit(s[j]) {
			j++
		}
		got := j - i - 1
		if got != want {
			v.errorf(n, "name string escape \\%s has %d hex digits, platform %d requires %d", s[i+1:j], got, platform, want)
		}
		i = j - 1
	}
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// checkGDEFTable checks that every glyph named by GlyphClassDef and
// MarkAttachClass entries exists, the same existence rule the rest of
// the file's glyph references get.
func (v *Validator) checkGDEFTable(t ast.Table) {
	for _, e := range t.Entries() {
		toks := e.Tokens()
		if len(toks) == 0 {
			continue
		}
		switch toks[0].Text {
		case "GlyphClassDef", "MarkAttachClass":
			for _, tok := range toks[1:] {
				switch tok.Kind() {
				case token.LBracket, token.RBracket, token.Comma, token.Number:
					continue
				case token.GlyphClassName:
					if _, ok := v.glyphClassDefs[tok.Text]; !ok {
						v.errorf(e.N, "reference to undefined glyph class %q", tok.Text)
					}
				default:
					if _, ok := v.glyphs.ByName(tok.Text); !ok {
						v.errorf(e.N, "glyph %q does not exist", tok.Text)
					}
				}
			}
		case "LigatureCaretByPos":
			if len(toks) >= 2 {
				if _, ok := v.glyphs.ByName(toks[1].Text); !ok {
					v.errorf(e.N, "glyph %q does not exist", toks[1].Text)
				}
			}
		}
	}
}

// checkGlyphClassValue checks that every glyph name/CID/range/class
// reference in v resolves against the glyph map (spec.md §4.4's "glyph
// names and CIDs referenced in rules... exist in GlyphMap").
func (v *Validator) checkGlyphClassValue(val ast.GlyphClassValue) {
	for _, atom := range val.Elements() {
		v.checkGlyphAtom(atom)
	}
}

func (v *Validator) checkGlyphAtom(a ast.GlyphAtom) {
	switch a.Kind() {
	case token.GlyphClassRefNode:
		if _, ok := v.glyphClassDefs[a.ClassName()]; !ok {
			v.errorf(a.N, "reference to undefined glyph class %q", a.ClassName())
		}
	case token.GlyphRangeNode:
		first, last := a.Name(), a.RangeEnd()
		if isCIDLiteral(first) && isCIDLiteral(last) {
			lo, _ := strconv.Atoi(strings.TrimPrefix(first, "cid"))
			hi, _ := strconv.Atoi(strings.TrimPrefix(last, "cid"))
			if hi < lo {
				v.errorf(a.N, "CID range %s-%s is not in ascending numeric order", first, last)
			}
			return
		}
		fPrefix, fNum, fOK := splitTrailingDigits(first)
		lPrefix, lNum, lOK := splitTrailingDigits(last)
		if !fOK || !lOK || fPrefix != lPrefix || len(fNum) != len(lNum) {
			v.errorf(a.N, "glyph range %s-%s: endpoints must share a prefix and an equal-width trailing number", first, last)
			return
		}
		lo, _ := strconv.Atoi(fNum)
		hi, _ := strconv.Atoi(lNum)
		if hi < lo {
			v.errorf(a.N, "glyph range %s-%s is not in ascending numeric order", first, last)
			return
		}
		width := len(fNum)
		for n := lo; n <= hi; n++ {
			name := fPrefix + padNumber(n, width)
			if _, ok := v.glyphs.ByName(name); !ok {
				v.errorf(a.N, "glyph range %s-%s: glyph %q does not exist", first, last, name)
				return
			}
		}
	default: // token.GlyphNameNode
		name := a.Name()
		if isCIDLiteral(name) {
			cid, _ := strconv.Atoi(strings.TrimPrefix(name, "cid"))
			if _, ok := v.glyphs.ByCID(cid); !ok {
				v.errorf(a.N, "CID %s does not exist", name)
			}
			return
		}
		if _, ok := v.glyphs.ByName(name); !ok {
			v.errorf(a.N, "glyph %q does not exist", name)
		}
	}
}

func isCIDLiteral(name string) bool {
	return strings.HasPrefix(name, "cid") && len(name) > 3
}

// resolveForCheck mirrors Context.resolveGlyphClass closely enough to
// keep glyphClassDefs populated for later validity checks (e.g. a
// GlyphClassDef referencing another one that was already validated);
// invalid atoms contribute no glyphs, matching "errors never halt
// validation" (spec.md §4.4).
func (v *Validator) resolveForCheck(val ast.GlyphClassValue) glyph.Class {
	var out glyph.Class
	for _, atom := range val.Elements() {
		switch atom.Kind() {
		case token.GlyphClassRefNode:
			out = append(out, v.glyphClassDefs[atom.ClassName()]...)
		case token.GlyphRangeNode:
			fPrefix, fNum, fOK := splitTrailingDigits(atom.Name())
			lPrefix, lNum, lOK := splitTrailingDigits(atom.RangeEnd())
			if !fOK || !lOK || fPrefix != lPrefix || len(fNum) != len(lNum) {
				continue
			}
			lo, _ := strconv.Atoi(fNum)
			hi, _ := strconv.Atoi(lNum)
			for n := lo; n <= hi; n++ {
				if id, ok := v.glyphs.ByName(fPrefix + padNumber(n, len(fNum))); ok {
					out = append(out, id)
				}
			}
		default:
			if id, ok := v.glyphs.ByName(atom.Name()); ok {
				out = append(out, id)
			}
		}
	}
	return out
}
