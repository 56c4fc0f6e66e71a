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

// Package fea wires the parser, validator and lowering passes together
// into the two calls a host application actually needs: ParseRootFile to
// get a tree, and Compile to turn that tree plus a glyph inventory into a
// Compilation (spec.md §6). It has no filesystem dependency of its own,
// taking a parser.FileReader instead, so a host embedding this package
// inside a larger font build can keep its own idea of "the filesystem"
// (an in-memory archive, a virtual project tree, an os.ReadFile wrapper).
package fea

import (
	"path/filepath"

	"seehuhn.de/go/fea/ast"
	"seehuhn.de/go/fea/compile"
	"seehuhn.de/go/fea/diag"
	"seehuhn.de/go/fea/glyph"
	"seehuhn.de/go/fea/parser"
	"seehuhn.de/go/fea/syntax"
)

// ParseRootFile parses rootPath, recursively resolving `include` directives
// relative to rootPath's own directory, and returns the combined,
// include-expanded tree together with the SourceMap needed to trace any
// offset in it back to the file and line it came from. err is a hard
// error (missing file, include cycle, or a lexer failure bad enough that
// no token stream exists to recover from) rather than a Diagnostic; a
// Diagnostic-reportable problem (an unexpected token, say) instead ends up
// in bag with parsing still completing (spec.md §7).
func ParseRootFile(rootPath string, read parser.FileReader) (*syntax.Tree, *diag.Bag, error) {
	dir := filepath.Dir(rootPath)
	base := filepath.Base(rootPath)
	sl := parser.NewSourceList(base, dir, read)
	return sl.Parse(base)
}

// Compile validates tree against glyphs and, provided validation raised no
// errors, lowers it into a Compilation (spec.md §4.4, §4.5, §7: "lowering
// is skipped if validation produced errors, but warnings don't skip it").
// Every diagnostic in the returned Bag has its Range remapped from the
// tree's logical, includes-spliced offsets back to an offset local to the
// file named by its own File field, via tree.Map — Validator and Context
// themselves only ever see the single pseudo-file tree.Root belongs to,
// since splitting a single statement's tokens across files mid-walk would
// otherwise force every lowering/validation helper to re-derive a FileID
// per token instead of per diagnostic. A returned Compilation's Warnings
// holds the Bag's non-error diagnostics, already remapped.
func Compile(tree *syntax.Tree, glyphs glyph.Map) (*compile.Compilation, *diag.Bag) {
	bag := &diag.Bag{}
	f := ast.NewFile(tree.Root)
	const logical = syntax.FileID(0)

	v := compile.NewValidator(glyphs, logical, bag)
	v.Validate(f)

	var result *compile.Compilation
	if !bag.HasErrors() {
		c := compile.NewContext(glyphs, logical, bag)
		c.Lower(f)
		result = c.Result()
	}

	remapDiagnostics(bag, tree.Map)
	if result != nil {
		for _, d := range bag.All() {
			if !d.IsError() {
				result.Warnings = append(result.Warnings, d)
			}
		}
	}
	return result, bag
}

// remapDiagnostics rewrites each diagnostic's File/Range in place from a
// logical offset to the (file, local offset) pair tree.Map resolves it to.
// diag.Bag.All returns its backing slice rather than a copy, so indexing
// into it mutates the Bag itself.
func remapDiagnostics(bag *diag.Bag, sm *syntax.SourceMap) {
	items := bag.All()
	for i, d := range items {
		file, local, ok := sm.Resolve(d.Range.Start)
		if !ok {
			continue
		}
		items[i].File = file
		items[i].Range = syntax.Range{Start: local, End: local + d.Range.Len()}
	}
}
