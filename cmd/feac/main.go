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

// Command feac is an informative, non-normative CLI around the fea package
// (spec.md §6 "CLI surface (informative)"): `compile <glyphs> <fea> [-o out]`
// runs the full validate-then-lower pipeline against a glyph inventory,
// `debug <fea> [-p tables] [-v]` parses a file and dumps its tree without
// requiring one. Handing the resulting Compilation to a binary OpenType
// serializer is explicitly out of scope for this package (spec.md §1
// Non-goals), so `compile`'s `-o` output is a plain-text summary rather
// than a font file.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"seehuhn.de/go/fea/ast"
	"seehuhn.de/go/fea/compile"
	"seehuhn.de/go/fea/diag"
	"seehuhn.de/go/fea/fea"
	"seehuhn.de/go/fea/glyph"
	"seehuhn.de/go/fea/syntax"
	"seehuhn.de/go/fea/token"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "compile":
		err = runCompile(os.Args[2:])
	case "debug":
		err = runDebug(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s compile <glyphs> <fea> [-o <out>]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "       %s debug <fea> [-p <tables>] [-v]\n", os.Args[0])
}

// osReadFile adapts os.ReadFile to parser.FileReader.
func osReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	return string(data), err
}

func runCompile(args []string) error {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	outFlag := fs.String("o", "", "write a summary of the compiled result here instead of stdout")
	fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("compile needs a glyph list and a .fea file")
	}
	glyphsPath, feaPath := fs.Arg(0), fs.Arg(1)

	glyphs, err := loadGlyphMap(glyphsPath)
	if err != nil {
		return fmt.Errorf("reading glyph list %s: %w", glyphsPath, err)
	}

	tree, bag, err := fea.ParseRootFile(feaPath, osReadFile)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", feaPath, err)
	}

	result, compileBag := fea.Compile(tree, glyphs)
	printDiagnostics(bag, tree.Map)
	printDiagnostics(compileBag, tree.Map)

	hasErrors := bag.HasErrors() || compileBag.HasErrors()
	if hasErrors {
		return fmt.Errorf("compilation of %s failed", feaPath)
	}

	summary := summarize(result)
	if *outFlag == "" {
		fmt.Print(summary)
		return nil
	}
	return os.WriteFile(*outFlag, []byte(summary), 0o644)
}

func runDebug(args []string) error {
	fs := flag.NewFlagSet("debug", flag.ExitOnError)
	tablesFlag := fs.String("p", "", "comma-separated table tags to print (default: all)")
	verbose := fs.Bool("v", false, "print every node, not just top-level items")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("debug needs a .fea file")
	}
	feaPath := fs.Arg(0)

	tree, bag, err := fea.ParseRootFile(feaPath, osReadFile)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", feaPath, err)
	}
	printDiagnostics(bag, tree.Map)

	var wantTables map[string]bool
	if *tablesFlag != "" {
		wantTables = make(map[string]bool)
		for _, tag := range strings.Split(*tablesFlag, ",") {
			wantTables[strings.TrimSpace(tag)] = true
		}
	}

	dumpTree(tree.Root, 0, wantTables, *verbose)
	return nil
}

// loadGlyphMap reads a plain-text glyph inventory: one glyph name per
// non-empty, non-comment line, or, if every line instead parses as a bare
// integer, a CID-keyed font's CID list in glyph-index order. Building a
// glyph.Map from an actual font file is an external collaborator's job
// (spec.md §1 Non-goals), so this stand-in keeps the CLI runnable without
// one.
func loadGlyphMap(path string) (glyph.Map, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	var lines []string
	allNumeric := true
	scanner := bufio.NewScanner(fd)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
		if _, err := strconv.Atoi(line); err != nil {
			allNumeric = false
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if allNumeric && len(lines) > 0 {
		cids := make([]int, len(lines))
		for i, l := range lines {
			cids[i], _ = strconv.Atoi(l)
		}
		return glyph.NewCIDMap(cids), nil
	}
	return glyph.NewNameMap(lines), nil
}

func printDiagnostics(bag *diag.Bag, sm *syntax.SourceMap) {
	for _, d := range bag.All() {
		path := "<unknown>"
		if int(d.File) >= 0 && int(d.File) < len(sm.Paths) {
			path = sm.Paths[d.File]
		}
		text, err := osReadFile(path)
		var rendered string
		if err == nil {
			rendered = diag.Format(d, path, text)
		} else {
			rendered = fmt.Sprintf("%s: %s: %s", path, d.Severity, d.Message)
		}
		if d.IsError() {
			pterm.Error.Println(rendered)
		} else {
			pterm.Warning.Println(rendered)
		}
	}
}

// summarize renders a plain-text overview of a Compilation: handing the
// populated tables off to a binary OpenType serializer is an external
// collaborator's job (spec.md §1 Non-goals), so this is the CLI's whole
// notion of "output" for a successful compile.
func summarize(c *compile.Compilation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "features: %d\n", len(c.Features))
	fmt.Fprintf(&b, "lookups: %d\n", c.Lookups.Len())
	for _, t := range []struct {
		name    string
		present bool
	}{
		{"GDEF", c.GDEF != nil},
		{"BASE", c.BASE != nil},
		{"head", c.Head != nil},
		{"hhea", c.Hhea != nil},
		{"name", c.Name != nil},
		{"OS/2", c.OS2 != nil},
		{"STAT", c.Stat != nil},
		{"vhea", c.Vhea != nil},
		{"vmtx", c.Vmtx != nil},
	} {
		if t.present {
			fmt.Fprintf(&b, "table: %s\n", t.name)
		}
	}
	for _, w := range c.Warnings {
		fmt.Fprintf(&b, "warning: %s\n", w.Message)
	}
	return b.String()
}

func dumpTree(n *syntax.Node, depth int, wantTables map[string]bool, verbose bool) {
	indent := strings.Repeat("  ", depth)
	if depth <= 1 || verbose {
		fmt.Printf("%s%s\n", indent, n.Kind())
	}
	for _, c := range n.Children() {
		if child, ok := c.(*syntax.Node); ok {
			if wantTables != nil && depth == 0 {
				tag := tableTag(child)
				if tag != "" && !wantTables[tag] {
					continue
				}
			}
			dumpTree(child, depth+1, wantTables, verbose)
			continue
		}
		tok := c.(syntax.Token)
		if verbose && !tok.Kind().IsTrivia() {
			fmt.Printf("%s  %s %q\n", indent, tok.Kind(), tok.Text)
		}
	}
}

func tableTag(n *syntax.Node) string {
	if n.Kind() != token.TableNode {
		return ""
	}
	return ast.Table{N: n}.Tag()
}
