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

// Package token enumerates every terminal and composite kind that can occur
// in a feature-file concrete syntax tree.
//
// Kind is a single flat enum (not a family of small interfaces), matching
// the teacher's preference for tagged dispatch over virtual methods (see
// seehuhn.de/go/sfnt's gtab.Subtable implementations, or gtab.Type).
package token

import "fmt"

// Kind identifies the syntactic role of a token or a composite tree node.
// It is the CST's only discriminator: the same enum space names leaves
// (keywords, punctuation, literals) and composite nodes (FeatureNode,
// GsubType1Node, ...), so that a Node and a Token can share one parent
// interface purely by carrying a Kind.
type Kind uint16

//go:generate stringer -type=Kind

const (
	// Bad is used for lexer errors and unrecognized bytes.
	Bad Kind = iota
	EOF

	// trivia
	Whitespace
	Comment

	// literals and identifier-likes
	Ident        // generic bare word, reclassified by the parser via EatRemap
	Tag          // up to 4 ASCII chars, e.g. script/language/feature tags
	GlyphName    // bare glyph name, e.g. "a.sc"
	GlyphClassName // @name
	Cid          // \123
	Number       // decimal integer
	Float        // 12.5
	String       // "quoted string"

	// punctuation
	LBrace
	RBrace
	LBracket
	RBracket
	LParen
	RParen
	Semi
	Comma
	Equals
	LAngle
	RAngle
	Hyphen
	Quote
	Slash
	At

	// keywords
	KwTable
	KwFeature
	KwLookup
	KwLookupflag
	KwLanguagesystem
	KwLanguage
	KwScript
	KwSubtable
	KwInclude
	KwAnchorDef
	KwAnchor
	KwMarkClass
	KwValueRecordDef
	KwPosition
	KwPos
	KwSubstitute
	KwSub
	KwIgnore
	KwBy
	KwFrom
	KwExcludeDflt
	KwIncludeDflt
	KwRequired
	KwUseExtension
	KwEnumerate
	KwEnum
	KwReversesub
	KwRsub
	KwContourpoint
	KwDevice
	KwNull
	KwNULL
	KwParameters
	KwSizemenuname
	KwFeatureNames
	KwCvParameters
	KwCvUILabel
	KwCvToolTip
	KwCvSampleText
	KwCvParamLabel
	KwCvCharacter
	KwMarkAttachmentType
	KwUseMarkFilteringSet
	KwRightToLeft
	KwIgnoreBaseGlyphs
	KwIgnoreLigatures
	KwIgnoreMarks
	KwMark
	KwBase
	KwLigComponent
	KwAnon

	// composite node kinds
	Root
	LanguageSystemNode
	IncludeNode
	GlyphClassDefNode
	MarkClassNode
	AnchorDefNode
	ValueRecordDefNode
	FeatureNode
	LookupBlockNode
	LookupRefNode
	TableNode
	AnonBlockNode
	ScriptStmtNode
	LanguageStmtNode
	SubtableStmtNode
	LookupflagStmtNode

	GsubType1Node
	GsubType2Node
	GsubType3Node
	GsubType4Node
	GsubType5Node
	GsubType6Node
	GsubType8Node
	GsubIgnoreNode

	GposType1Node
	GposType2Node
	GposType3Node
	GposType4Node
	GposType5Node
	GposType6Node
	GposType8Node
	GposIgnoreNode

	GlyphNameNode
	GlyphRangeNode
	GlyphClassLiteralNode
	GlyphClassRefNode
	AnchorNode
	AnchorRefNode
	ValueRecordNode
	ValueRecordRefNode
	TableEntryNode

	kindCount
)

var kindNames = map[Kind]string{
	Bad: "Bad", EOF: "EOF",
	Whitespace: "Whitespace", Comment: "Comment",
	Ident: "Ident", Tag: "Tag", GlyphName: "GlyphName",
	GlyphClassName: "GlyphClassName", Cid: "Cid", Number: "Number",
	Float: "Float", String: "String",
	LBrace: "{", RBrace: "}", LBracket: "[", RBracket: "]",
	LParen: "(", RParen: ")", Semi: ";", Comma: ",", Equals: "=",
	LAngle: "<", RAngle: ">", Hyphen: "-", Quote: "'", Slash: "/", At: "@",
	KwTable: "table", KwFeature: "feature", KwLookup: "lookup",
	KwLookupflag:     "lookupflag",
	KwLanguagesystem: "languagesystem", KwLanguage: "language",
	KwScript: "script", KwSubtable: "subtable", KwInclude: "include",
	KwAnchorDef: "anchorDef", KwAnchor: "anchor", KwMarkClass: "markClass",
	KwValueRecordDef: "valueRecordDef", KwPosition: "position", KwPos: "pos",
	KwSubstitute: "substitute", KwSub: "sub", KwIgnore: "ignore",
	KwBy: "by", KwFrom: "from", KwExcludeDflt: "exclude_dflt",
	KwIncludeDflt: "include_dflt", KwRequired: "required",
	KwUseExtension: "useExtension", KwEnumerate: "enumerate", KwEnum: "enum",
	KwReversesub: "reversesub", KwRsub: "rsub",
	KwContourpoint: "contourpoint", KwDevice: "device", KwNull: "null",
	KwNULL: "NULL", KwParameters: "parameters",
	KwSizemenuname: "sizemenuname", KwFeatureNames: "featureNames",
	KwCvParameters: "cvParameters", KwCvUILabel: "cvUILabel",
	KwCvToolTip: "cvToolTip", KwCvSampleText: "cvSampleText",
	KwCvParamLabel: "cvParamLabel", KwCvCharacter: "cvCharacter",
	KwMarkAttachmentType: "MarkAttachmentType",
	KwUseMarkFilteringSet:  "UseMarkFilteringSet",
	KwRightToLeft:          "RightToLeft",
	KwIgnoreBaseGlyphs:     "IgnoreBaseGlyphs",
	KwIgnoreLigatures:      "IgnoreLigatures",
	KwIgnoreMarks:          "IgnoreMarks",
	KwMark:                 "mark",
	KwBase:                 "base",
	KwLigComponent:         "ligComponent",
	KwAnon:                 "anon",
	Root:                   "Root",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", uint16(k))
}

// IsTrivia reports whether a token of this kind is whitespace or a comment:
// present in the tree, but skipped by every grammar production (spec.md
// §4.1's "trivia").
func (k Kind) IsTrivia() bool {
	return k == Whitespace || k == Comment
}

// Keywords maps the reserved words of the language to their Kind. Words not
// in this table lex as Ident and are reclassified by the parser as needed
// (e.g. a bare Ident becomes a Tag via EatRemap).
var Keywords = map[string]Kind{
	"table":               KwTable,
	"feature":             KwFeature,
	"lookup":              KwLookup,
	"lookupflag":          KwLookupflag,
	"languagesystem":      KwLanguagesystem,
	"language":            KwLanguage,
	"script":              KwScript,
	"subtable":            KwSubtable,
	"include":             KwInclude,
	"anchorDef":           KwAnchorDef,
	"anchor":              KwAnchor,
	"markClass":           KwMarkClass,
	"valueRecordDef":      KwValueRecordDef,
	"position":            KwPosition,
	"pos":                 KwPos,
	"substitute":          KwSubstitute,
	"sub":                 KwSub,
	"ignore":              KwIgnore,
	"by":                  KwBy,
	"from":                KwFrom,
	"exclude_dflt":        KwExcludeDflt,
	"include_dflt":        KwIncludeDflt,
	"required":            KwRequired,
	"useExtension":        KwUseExtension,
	"enumerate":           KwEnumerate,
	"enum":                KwEnum,
	"reversesub":          KwReversesub,
	"rsub":                KwRsub,
	"contourpoint":        KwContourpoint,
	"device":              KwDevice,
	"NULL":                KwNULL,
	"parameters":          KwParameters,
	"sizemenuname":        KwSizemenuname,
	"featureNames":        KwFeatureNames,
	"cvParameters":        KwCvParameters,
	"cvUILabel":           KwCvUILabel,
	"cvToolTip":           KwCvToolTip,
	"cvSampleText":        KwCvSampleText,
	"cvParamLabel":        KwCvParamLabel,
	"cvCharacter":         KwCvCharacter,
	"MarkAttachmentType":  KwMarkAttachmentType,
	"UseMarkFilteringSet": KwUseMarkFilteringSet,
	"RightToLeft":         KwRightToLeft,
	"IgnoreBaseGlyphs":    KwIgnoreBaseGlyphs,
	"IgnoreLigatures":     KwIgnoreLigatures,
	"IgnoreMarks":         KwIgnoreMarks,
	"mark":                KwMark,
	"base":                KwBase,
	"ligComponent":        KwLigComponent,
	"anon":                KwAnon,
}

// Set is a small set of Kinds, used by Eat(set) and recovery sets.
type Set map[Kind]bool

// NewSet builds a Set from a list of kinds.
func NewSet(kinds ...Kind) Set {
	s := make(Set, len(kinds))
	for _, k := range kinds {
		s[k] = true
	}
	return s
}

// Union returns the union of the receiver with other sets.
func (s Set) Union(others ...Set) Set {
	out := make(Set, len(s))
	for k := range s {
		out[k] = true
	}
	for _, o := range others {
		for k := range o {
			out[k] = true
		}
	}
	return out
}
