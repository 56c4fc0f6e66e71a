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

package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"seehuhn.de/go/fea/diag"
	"seehuhn.de/go/fea/syntax"
	"seehuhn.de/go/fea/token"
)

// FileReader loads the raw bytes of a feature-file path. Callers typically
// pass a function backed by os.ReadFile; tests pass an in-memory map. This
// keeps the parser itself free of any filesystem dependency (spec.md §6).
type FileReader func(path string) (string, error)

// IncludeError is a hard error from ParseSourceList: a missing file or an
// include cycle. Unlike diag.Diagnostic, it aborts parsing entirely, since
// there is no sensible tree to keep building once an include target cannot
// be loaded (spec.md §7, "Hard errors from the parse entry point").
type IncludeError struct {
	Path    string
	Message string
}

func (e *IncludeError) Error() string {
	return fmt.Sprintf("include error for %q: %s", e.Path, e.Message)
}

// SourceList resolves a root file plus every file it transitively includes
// into a single logical source, recording a syntax.SourceMap that can map
// any logical offset back to its originating file and local offset
// (spec.md §3).
type SourceList struct {
	read    FileReader
	baseDir string
	Map     *syntax.SourceMap

	onStack map[string]bool // absolute paths currently being parsed, for cycle detection
}

// NewSourceList creates a SourceList rooted at rootPath, resolving relative
// include paths against baseDir (the root file's own directory, per
// spec.md §4.2's include-path resolution rule).
func NewSourceList(rootPath, baseDir string, read FileReader) *SourceList {
	return &SourceList{
		read:    read,
		baseDir: baseDir,
		Map:     syntax.NewSourceMap(rootPath),
		onStack: make(map[string]bool),
	}
}

// Parse reads the root file, parses it (recursively resolving and splicing
// `include` directives), and returns the combined tree together with a
// diagnostic bag covering every file visited.
func (sl *SourceList) Parse(rootPath string) (*syntax.Tree, *diag.Bag, error) {
	bag := &diag.Bag{}
	abs := filepath.Clean(filepath.Join(sl.baseDir, rootPath))
	root, err := sl.parseFile(abs, syntax.FileID(0), bag)
	if err != nil {
		return nil, bag, err
	}
	return &syntax.Tree{Root: root, Map: sl.Map}, bag, nil
}

// parseFile parses a single file, given its fully resolved path (the root,
// or one pulled in by `include`), recursively expanding its own
// IncludeNode children in place, and records its logical byte span in the
// SourceMap.
func (sl *SourceList) parseFile(abs string, file syntax.FileID, bag *diag.Bag) (*syntax.Node, error) {
	if sl.onStack[abs] {
		return nil, &IncludeError{Path: abs, Message: "include cycle detected"}
	}
	sl.onStack[abs] = true
	defer delete(sl.onStack, abs)

	src, err := sl.read(abs)
	if err != nil {
		return nil, &IncludeError{Path: abs, Message: err.Error()}
	}

	logicalStart := sl.Map.Total()
	sl.Map.AddSpan(file, syntax.Range{Start: logicalStart, End: logicalStart + len(src)})

	builder := syntax.NewBuilder()
	p, err := New(src, file, bag, builder)
	if err != nil {
		return nil, err
	}
	p.ParseFile()
	tree := builder.Finish()

	return sl.expandIncludes(tree, filepath.Dir(abs), bag)
}

// expandIncludes walks tree looking for IncludeNode children, replacing
// each with the parsed contents of the file it names, spliced in place so
// that the resulting tree's leaf text still concatenates to the full
// logical source (spec.md invariant: "concatenating all leaf token text
// reproduces the source exactly" — now true of the *logical*, includes-
// spliced source rather than just the root file).
func (sl *SourceList) expandIncludes(n *syntax.Node, dir string, bag *diag.Bag) (*syntax.Node, error) {
	children := n.Children()
	changed := false
	newChildren := make([]syntax.Element, 0, len(children))
	for _, c := range children {
		if node, ok := c.(*syntax.Node); ok {
			if node.Kind() == token.IncludeNode {
				incPath, ok := includeTarget(node)
				if !ok {
					newChildren = append(newChildren, c)
					continue
				}
				incAbs := filepath.Clean(filepath.Join(dir, incPath))
				newFile := sl.Map.AddFile(incAbs)
				included, err := sl.parseFile(incAbs, newFile, bag)
				if err != nil {
					return nil, err
				}
				newChildren = append(newChildren, included)
				changed = true
				continue
			}
			expanded, err := sl.expandIncludes(node, dir, bag)
			if err != nil {
				return nil, err
			}
			if expanded != node {
				changed = true
			}
			newChildren = append(newChildren, expanded)
			continue
		}
		newChildren = append(newChildren, c)
	}
	if !changed {
		return n, nil
	}
	return syntax.NewNode(n.Kind(), newChildren), nil
}

// includeTarget reconstructs the bare, unquoted path argument of
// `include(path);` by concatenating every non-trivia token between the
// parentheses: fea include paths are written without quotes and may
// contain '/', '.', and '-', each of which the lexer emits as its own
// token, so there is no single literal to read off directly.
func includeTarget(n *syntax.Node) (string, bool) {
	var b strings.Builder
	inParens := false
	for _, c := range n.Children() {
		switch c.Kind() {
		case token.LParen:
			inParens = true
			continue
		case token.RParen:
			inParens = false
			continue
		}
		if !inParens || c.Kind().IsTrivia() {
			continue
		}
		if tok, ok := c.(syntax.Token); ok {
			b.WriteString(tok.Text)
		}
	}
	path := b.String()
	return path, path != ""
}
