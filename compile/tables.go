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
	"seehuhn.de/go/fea/opentype/base"
	"seehuhn.de/go/fea/opentype/classdef"
	"seehuhn.de/go/fea/opentype/gdef"
	"seehuhn.de/go/fea/opentype/head"
	"seehuhn.de/go/fea/opentype/hhea"
	"seehuhn.de/go/fea/opentype/name"
	"seehuhn.de/go/fea/opentype/os2"
	"seehuhn.de/go/fea/opentype/stat"
	"seehuhn.de/go/fea/opentype/vhea"
	"seehuhn.de/go/fea/opentype/vmtx"
	"seehuhn.de/go/fea/syntax"
	"seehuhn.de/go/fea/token"
	"seehuhn.de/go/postscript/funit"
)

// lowerTable dispatches a `table <tag> { ... } <tag>;` block by tag to the
// matching opentype/* Info builder (SPEC_FULL §3).
func (c *Context) lowerTable(t ast.Table) {
	switch t.Tag() {
	case "head":
		c.lowerHeadTable(t)
	case "hhea":
		c.lowerHheaTable(t)
	case "vhea":
		c.lowerVheaTable(t)
	case "vmtx":
		c.lowerVmtxTable(t)
	case "name":
		c.lowerNameTable(t)
	case "OS/2":
		c.lowerOS2Table(t)
	case "GDEF":
		c.lowerGDEFTable(t)
	case "BASE":
		c.lowerBASETable(t)
	case "STAT":
		c.lowerStatTable(t)
	}
}

func (c *Context) lowerHeadTable(t ast.Table) {
	info := c.tables.Head
	if info == nil {
		info = &head.Info{}
		c.tables.Head = info
	}
	for _, e := range t.Entries() {
		toks := e.Tokens()
		if len(toks) < 2 || toks[0].Text != "FontRevision" {
			continue
		}
		if v, err := strconv.ParseFloat(toks[1].Text, 64); err == nil {
			info.FontRevision = v
		}
	}
}

func (c *Context) lowerHheaTable(t ast.Table) {
	info := c.tables.Hhea
	if info == nil {
		info = &hhea.Info{}
		c.tables.Hhea = info
	}
	for _, e := range t.Entries() {
		toks := e.Tokens()
		if len(toks) < 2 {
			continue
		}
		v := parseFunit(toks[1].Text)
		switch toks[0].Text {
		case "CaretOffset":
			info.CaretOffset = v
		case "Ascender":
			info.Ascender = v
		case "Descender":
			info.Descender = v
		case "LineGap":
			info.LineGap = v
		}
	}
}

func (c *Context) lowerVheaTable(t ast.Table) {
	info := c.tables.Vhea
	if info == nil {
		info = &vhea.Info{}
		c.tables.Vhea = info
	}
	for _, e := range t.Entries() {
		toks := e.Tokens()
		if len(toks) < 2 {
			continue
		}
		v := parseFunit(toks[1].Text)
		switch toks[0].Text {
		case "VertTypoAscender":
			info.VertTypoAscender = v
		case "VertTypoDescender":
			info.VertTypoDescender = v
		case "VertTypoLineGap":
			info.VertTypoLineGap = v
		}
	}
}

func (c *Context) lowerVmtxTable(t ast.Table) {
	info := c.tables.Vmtx
	if info == nil {
		info = vmtx.NewInfo()
		c.tables.Vmtx = info
	}
	for _, e := range t.Entries() {
		toks := e.Tokens()
		if len(toks) < 3 {
			continue
		}
		id, ok := c.glyphs.ByName(toks[1].Text)
		if !ok {
			continue
		}
		v := parseFunit(toks[2].Text)
		switch toks[0].Text {
		case "VertOriginY":
			info.OriginY[id] = v
		case "VertAdvanceY":
			info.AdvanceY[id] = v
		}
	}
}

// lowerNameTable lowers `nameid <id> [<platform> <encoding> <language>]
// "string";` entries. A bare `nameid <id> "string";` entry (no
// platform/encoding/language) is recorded once for the Windows Unicode BMP
// default slot and once for the Macintosh Roman default slot, matching
// common feature-compiler behavior of emitting both a Windows and a
// Macintosh record for a plain string literal.
func (c *Context) lowerNameTable(t ast.Table) {
	info := c.tables.Name
	if info == nil {
		info = &name.Info{}
		c.tables.Name = info
	}
	for _, e := range t.Entries() {
		toks := e.Tokens()
		if len(toks) < 2 || toks[0].Text != "nameid" {
			continue
		}
		nameID, err := strconv.ParseUint(toks[1].Text, 10, 16)
		if err != nil {
			continue
		}
		rest := toks[2:]
		if len(rest) == 1 {
			value := unquote(rest[0].Text)
			info.Add(uint16(nameID), name.DefaultSpec, value)
			info.Add(uint16(nameID), name.DefaultMacSpec, value)
			continue
		}
		if len(rest) == 4 {
			platform, _ := strconv.ParseUint(rest[0].Text, 10, 16)
			encoding, _ := strconv.ParseUint(rest[1].Text, 10, 16)
			language, _ := strconv.ParseUint(rest[2].Text, 10, 16)
			value := unquote(rest[3].Text)
			info.Add(uint16(nameID), name.Spec{
				PlatformID: uint16(platform), EncodingID: uint16(encoding), LanguageID: uint16(language),
			}, value)
		}
	}
}

func unquote(s string) string {
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	return s
}

var os2WeightNames = map[string]os2.Weight{
	"Thin": os2.WeightThin, "ExtraLight": os2.WeightExtraLight,
	"Light": os2.WeightLight, "Normal": os2.WeightNormal,
	"Medium": os2.WeightMedium, "SemiBold": os2.WeightSemiBold,
	"Bold": os2.WeightBold, "ExtraBold": os2.WeightExtraBold,
	"Black": os2.WeightBlack,
}

func (c *Context) lowerOS2Table(t ast.Table) {
	info := c.tables.OS2
	if info == nil {
		info = &os2.Info{}
		c.tables.OS2 = info
	}
	for _, e := range t.Entries() {
		toks := e.Tokens()
		if len(toks) == 0 {
			continue
		}
		field := toks[0].Text
		args := toks[1:]
		switch field {
		case "FSType":
			if v, ok := parseUintTok(args, 0); ok {
				switch v {
				case 2:
					info.PermUse = os2.PermRestricted
				case 4:
					info.PermUse = os2.PermView
				case 8:
					info.PermUse = os2.PermEdit
				default:
					info.PermUse = os2.PermInstall
				}
			}
		case "WeightClass":
			if w, ok := os2WeightNames[textOf(args)]; ok {
				info.WeightClass = w
			} else if v, ok := parseUintTok(args, 0); ok {
				info.WeightClass = os2.Weight(v)
			}
		case "WidthClass":
			if v, ok := parseUintTok(args, 0); ok {
				info.WidthClass = os2.Width(v)
			}
		case "Vendor":
			info.Vendor = unquote(textOf(args))
		case "TypoAscender":
			info.Ascent = parseFunitTok(args)
		case "TypoDescender":
			info.Descent = parseFunitTok(args)
		case "winAscent":
			info.WinAscent = parseFunitTok(args)
		case "winDescent":
			info.WinDescent = parseFunitTok(args)
		case "TypoLineGap":
			info.LineGap = parseFunitTok(args)
		case "CapHeight":
			info.CapHeight = parseFunitTok(args)
		case "XHeight":
			info.XHeight = parseFunitTok(args)
		case "LowerOpSize", "UpperOpSize":
			// size-menu parameters, not OS/2 fields in AFDKO; no-op here.
		case "Panose":
			for i := 0; i < len(args) && i < 10; i++ {
				if v, err := strconv.ParseUint(args[i].Text, 10, 8); err == nil {
					info.Panose[i] = byte(v)
				}
			}
		case "UnicodeRange":
			for _, a := range args {
				if v, err := strconv.Atoi(a.Text); err == nil {
					info.UnicodeRange.Set(os2.UnicodeRangeBit(v))
				}
			}
		case "CodePageRange":
			for _, a := range args {
				if v, err := strconv.Atoi(a.Text); err == nil {
					info.CodePageRange.Set(os2.CodePage(v))
				}
			}
		}
	}
}

func textOf(toks []syntax.Token) string {
	var b strings.Builder
	for i, t := range toks {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(t.Text)
	}
	return b.String()
}

func parseUintTok(toks []syntax.Token, i int) (uint64, bool) {
	if i >= len(toks) {
		return 0, false
	}
	v, err := strconv.ParseUint(toks[i].Text, 10, 64)
	return v, err == nil
}

func parseFunitTok(toks []syntax.Token) funit.Int16 {
	if len(toks) == 0 {
		return 0
	}
	return parseFunit(toks[0].Text)
}

// lowerGDEFTable lowers a `table GDEF { ... } GDEF;` block: GlyphClassDef's
// four comma-separated glyph classes, MarkAttachClass assignments, and
// LigatureCaretByPos caret positions (LigatureCaretByIndex requires
// contour-point data this package has no access to and is left to an
// assembler that has the glyph outlines).
func (c *Context) lowerGDEFTable(t ast.Table) {
	info := &gdef.Table{
		GlyphClass:      make(classdef.Table),
		MarkAttachClass: make(classdef.Table),
		LigatureCarets:  make(map[glyph.ID][]int16),
	}
	for _, e := range t.Entries() {
		toks := e.Tokens()
		if len(toks) == 0 {
			continue
		}
		switch toks[0].Text {
		case "GlyphClassDef":
			classes := splitOnComma(toks[1:])
			for i, cls := range classes {
				gdefClass := uint16(i + 1)
				for _, g := range c.resolveTokenGlyphClass(cls) {
					info.GlyphClass[g] = gdefClass
					c.gdefGlyphClass[g] = gdefClass
				}
			}
		case "MarkAttachClass":
			if len(toks) < 3 {
				continue
			}
			cls, err := strconv.ParseUint(toks[len(toks)-1].Text, 10, 16)
			if err != nil {
				continue
			}
			for _, g := range c.resolveTokenGlyphClass(toks[1 : len(toks)-1]) {
				info.MarkAttachClass[g] = uint16(cls)
				c.gdefMarkClass[g] = uint16(cls)
			}
		case "LigatureCaretByPos":
			if len(toks) < 3 {
				continue
			}
			g, ok := c.glyphs.ByName(toks[1].Text)
			if !ok {
				continue
			}
			for _, tok := range toks[2:] {
				if v, err := strconv.ParseInt(tok.Text, 10, 16); err == nil {
					info.LigatureCarets[g] = append(info.LigatureCarets[g], int16(v))
				}
			}
		}
	}
	c.explicitGDEF = info
}

// resolveTokenGlyphClass resolves a bracketed-or-bare glyph class spelled
// out as flat tokens (as found in a table-block entry, where the grammar
// doesn't build a GlyphClassValue node), skipping bracket punctuation.
func (c *Context) resolveTokenGlyphClass(toks []syntax.Token) []glyph.ID {
	var out []glyph.ID
	for _, t := range toks {
		switch t.Kind() {
		case token.LBracket, token.RBracket, token.Comma:
			continue
		case token.GlyphClassName:
			if cls, ok := c.glyphClassDefs[t.Text]; ok {
				out = append(out, cls...)
			}
		default:
			if id, ok := c.glyphs.ByName(t.Text); ok {
				out = append(out, id)
			}
		}
	}
	return out
}

func splitOnComma(toks []syntax.Token) [][]syntax.Token {
	var out [][]syntax.Token
	var cur []syntax.Token
	for _, t := range toks {
		if t.Kind() == token.Comma {
			out = append(out, cur)
			cur = nil
			continue
		}
		cur = append(cur, t)
	}
	out = append(out, cur)
	return out
}

// lowerBASETable lowers HorizAxis.BaseTagList/BaseScriptList and their
// Vert counterparts.
func (c *Context) lowerBASETable(t ast.Table) {
	info := &base.Info{}
	for _, e := range t.Entries() {
		toks := e.Tokens()
		if len(toks) == 0 {
			continue
		}
		switch toks[0].Text {
		case "HorizAxis.BaseTagList":
			info.Horiz.BaseTagList = parseTagList(toks[1:])
		case "HorizAxis.BaseScriptList":
			info.Horiz.Scripts = append(info.Horiz.Scripts, parseBaseScriptRecords(toks[1:], len(info.Horiz.BaseTagList))...)
		case "VertAxis.BaseTagList":
			info.Vert.BaseTagList = parseTagList(toks[1:])
		case "VertAxis.BaseScriptList":
			info.Vert.Scripts = append(info.Vert.Scripts, parseBaseScriptRecords(toks[1:], len(info.Vert.BaseTagList))...)
		}
	}
	c.tables.BASE = info
}

func parseTagList(toks []syntax.Token) []base.Tag {
	var out []base.Tag
	for _, t := range toks {
		if t.Kind() == token.Comma {
			continue
		}
		out = append(out, tagOf(t.Text))
	}
	return out
}

func tagOf(s string) base.Tag {
	var t base.Tag
	copy(t[:], s+"    ")
	return t
}

// parseBaseScriptRecords parses one or more `<script tag> <default tag>
// <value>,...` groups, comma-separated, each contributing numValues
// baseline coordinates.
func parseBaseScriptRecords(toks []syntax.Token, numValues int) []base.ScriptRecord {
	groups := splitOnComma(toks)
	var out []base.ScriptRecord
	for _, g := range groups {
		if len(g) < 2 {
			continue
		}
		rec := base.ScriptRecord{
			Script:          tagOf(g[0].Text),
			DefaultBaseline: tagOf(g[1].Text),
		}
		for _, v := range g[2:] {
			if n, err := strconv.ParseInt(v.Text, 10, 16); err == nil {
				rec.Values = append(rec.Values, int16(n))
			}
		}
		out = append(out, rec)
	}
	return out
}

// lowerStatTable lowers ElidedFallbackNameID/ElidedFallbackName,
// DesignAxis, and AxisValue entries. AxisValue's format is inferred from
// which of value/nominal-min-max/linked/combination fields are present,
// mirroring how a feature compiler infers the AxisValueTable format from
// the statement shape rather than requiring an explicit format number.
func (c *Context) lowerStatTable(t ast.Table) {
	info := &stat.Info{}
	for _, e := range t.Entries() {
		toks := e.Tokens()
		if len(toks) == 0 {
			continue
		}
		switch toks[0].Text {
		case "ElidedFallbackNameID":
			if v, ok := parseUintTok(toks, 1); ok {
				info.ElidedFallbackName = stat.FallbackName{HasID: true, ID: uint16(v)}
			}
		case "ElidedFallbackName":
			info.ElidedFallbackName = stat.FallbackName{Specs: parseNameSpecs(toks[1:])}
		case "DesignAxis":
			if len(toks) < 3 {
				continue
			}
			ordering, _ := strconv.ParseUint(toks[2].Text, 10, 16)
			info.DesignAxes = append(info.DesignAxes, stat.AxisRecord{
				Tag:      statTagOf(toks[1].Text),
				Ordering: uint16(ordering),
				Name:     parseNameSpecs(toks[3:]),
			})
		case "AxisValue":
			info.AxisValues = append(info.AxisValues, parseAxisValue(toks[1:]))
		}
	}
	c.tables.Stat = info
}

func statTagOf(s string) stat.Tag {
	var t stat.Tag
	copy(t[:], s+"    ")
	return t
}

// parseNameSpecs parses one or more `name [<platform> <encoding>
// <language>] "string";`-shaped entries found inside a braced sub-block
// (the braces themselves are skipped).
func parseNameSpecs(toks []syntax.Token) []stat.NameSpec {
	var out []stat.NameSpec
	i := 0
	for i < len(toks) {
		if toks[i].Kind() == token.LBrace || toks[i].Kind() == token.RBrace || toks[i].Kind() == token.Semi {
			i++
			continue
		}
		if toks[i].Text != "name" {
			i++
			continue
		}
		i++
		var spec stat.NameSpec
		nums := []uint16{}
		for i < len(toks) && toks[i].Kind() == token.Number {
			n, _ := strconv.ParseUint(toks[i].Text, 10, 16)
			nums = append(nums, uint16(n))
			i++
		}
		if len(nums) >= 3 {
			spec.PlatformID, spec.EncodingID, spec.LanguageID = nums[0], nums[1], nums[2]
		}
		if i < len(toks) && toks[i].Kind() == token.String {
			spec.Value = unquote(toks[i].Text)
			i++
		}
		out = append(out, spec)
	}
	return out
}

// parseAxisValue parses one AxisValue block's body. A block with a single
// `location <tag> ...;` statement is format 1 (one value), 2 (a
// nominal/min/max triple) or 3 (a value+linked pair), chosen by how many
// numbers follow the tag; a block with more than one `location`
// statement is format 4, a combination of single-value axis positions.
func parseAxisValue(toks []syntax.Token) stat.AxisValueRecord {
	var rec stat.AxisValueRecord
	var locations []stat.AxisLocation

	i := 0
	for i < len(toks) {
		tok := toks[i]
		switch tok.Kind() {
		case token.LBrace, token.RBrace, token.Semi:
			i++
			continue
		}
		switch tok.Text {
		case "name":
			j := i
			specs := parseNameSpecs(toks[i:])
			rec.Name = append(rec.Name, specs...)
			// advance past this one name statement only
			i = j + 1
			for i < len(toks) && toks[i].Kind() != token.Semi {
				i++
			}
			i++
			continue
		case "flag":
			for i++; i < len(toks) && toks[i].Kind() != token.Semi; i++ {
				switch toks[i].Text {
				case "OlderSiblingFontAttribute":
					rec.Flags |= stat.FlagOlderSiblingFontAttribute
				case "ElidableAxisValueName":
					rec.Flags |= stat.FlagElidableAxisValueName
				}
			}
		case "location":
			i++
			var loc stat.AxisLocation
			if i < len(toks) {
				loc.Tag = statTagOf(toks[i].Text)
				i++
			}
			var nums []float64
			for i < len(toks) && toks[i].Kind() != token.Semi {
				if v, err := strconv.ParseFloat(toks[i].Text, 64); err == nil {
					nums = append(nums, v)
				}
				i++
			}
			switch len(nums) {
			case 2:
				loc.Value, loc.Linked = nums[0], nums[1]
				loc.Format = 3
			case 3:
				loc.Nominal, loc.Min, loc.Max = nums[0], nums[1], nums[2]
				loc.Format = 2
			default:
				if len(nums) > 0 {
					loc.Value = nums[0]
				}
				loc.Format = 1
			}
			locations = append(locations, loc)
		default:
			i++
		}
	}

	switch len(locations) {
	case 0:
		// malformed input; leave Location zero-valued.
	case 1:
		rec.Location = locations[0]
	default:
		combo := make([]stat.AxisPosition, len(locations))
		for i, loc := range locations {
			combo[i] = stat.AxisPosition{Tag: loc.Tag, Value: loc.Value}
		}
		rec.Location = stat.AxisLocation{Format: 4, Combination: combo}
	}
	return rec
}

func parseFunit(s string) funit.Int16 {
	v, _ := strconv.ParseInt(s, 10, 16)
	return funit.Int16(v)
}
