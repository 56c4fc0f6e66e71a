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

// Package diag collects the diagnostics produced while parsing, validating
// and lowering feature-file source (spec.md §3, §7). A Diagnostic is a
// plain value, following the teacher's header.ErrMissing/parser.*Error
// idiom of errors-as-values rather than wrapped strings — but diagnostics
// accumulate into a slice instead of being returned as the first error
// encountered, since compilation never aborts on the first problem
// (spec.md §7: "All non-hard errors are accumulated").
package diag

import (
	"fmt"
	"strings"

	"seehuhn.de/go/fea/syntax"
)

// Severity classifies a Diagnostic.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Kind classifies a Diagnostic by the taxonomy in spec.md §7. It is purely
// informational (used by tooling to filter/group output); Severity alone
// drives success/failure determination.
type Kind int

const (
	Syntax Kind = iota
	Reference
	Structural
	Semantic
)

func (k Kind) String() string {
	switch k {
	case Syntax:
		return "syntax"
	case Reference:
		return "reference"
	case Structural:
		return "structural"
	case Semantic:
		return "semantic"
	default:
		return "diagnostic"
	}
}

// Diagnostic is one reported problem, anchored to a range in a specific
// source file (spec.md §3).
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	File     syntax.FileID
	Range    syntax.Range // local to File, not the logical concatenated source
	Message  string
}

// IsError reports whether the diagnostic should cause the overall
// compilation to be considered a failure (spec.md §7).
func (d Diagnostic) IsError() bool { return d.Severity == Error }

// Bag accumulates diagnostics during a single parse/validate/lower pass.
// It is never shared between compile sessions (spec.md §5).
type Bag struct {
	items []Diagnostic
}

// Add appends a diagnostic.
func (b *Bag) Add(d Diagnostic) { b.items = append(b.items, d) }

// Errorf appends an error-severity diagnostic of the given kind.
func (b *Bag) Errorf(kind Kind, file syntax.FileID, rng syntax.Range, format string, args ...any) {
	b.Add(Diagnostic{Severity: Error, Kind: kind, File: file, Range: rng, Message: fmt.Sprintf(format, args...)})
}

// Warnf appends a warning-severity diagnostic of the given kind.
func (b *Bag) Warnf(kind Kind, file syntax.FileID, rng syntax.Range, format string, args ...any) {
	b.Add(Diagnostic{Severity: Warning, Kind: kind, File: file, Range: rng, Message: fmt.Sprintf(format, args...)})
}

// All returns every diagnostic collected so far, in the order they were
// added.
func (b *Bag) All() []Diagnostic { return b.items }

// HasErrors reports whether any accumulated diagnostic has Error severity.
// Lowering is skipped when this is true after validation (spec.md §7:
// "lowering is skipped if validation produced errors, but warnings don't
// skip it").
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.IsError() {
			return true
		}
	}
	return false
}

// Format renders a diagnostic the way a terminal-facing tool should: file
// path, 1-based line/column, the offending source line, and an underline
// caret span (spec.md §7).
func Format(d Diagnostic, path string, fileText string) string {
	line, col := syntax.LineCol(fileText, d.Range.Start)
	var b strings.Builder
	fmt.Fprintf(&b, "%s:%d:%d: %s: %s\n", path, line, col, d.Severity, d.Message)

	lineStart := strings.LastIndexByte(fileText[:d.Range.Start], '\n') + 1
	lineEnd := len(fileText)
	if idx := strings.IndexByte(fileText[d.Range.Start:], '\n'); idx >= 0 {
		lineEnd = d.Range.Start + idx
	}
	srcLine := fileText[lineStart:lineEnd]
	b.WriteString(srcLine)
	b.WriteByte('\n')

	width := d.Range.Len()
	if width <= 0 {
		width = 1
	}
	if d.Range.Start+width > lineEnd {
		width = lineEnd - d.Range.Start
		if width <= 0 {
			width = 1
		}
	}
	b.WriteString(strings.Repeat(" ", col-1))
	b.WriteString(strings.Repeat("^", width))
	return b.String()
}
