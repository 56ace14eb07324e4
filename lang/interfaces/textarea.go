// Mgmt
// Copyright (C) James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
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
//
// Additional permission under GNU GPL version 3 section 7
//
// If you modify this program, or any covered work, by linking or combining it
// with embedded mcl code and modules (and that the embedded mcl code and
// modules which link with this program, contain a copy of their source code in
// the authoritative form) containing parts covered by the terms of any other
// license, the licensors of this program grant you additional permission to
// convey the resulting work. Furthermore, the licensors of this program grant
// the original author, James Shubin, additional permission to update this
// additional permission if he deems it necessary to achieve the goals of this
// additional permission.

package interfaces

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Source is the text of a program along with the name it was loaded from. It
// turns byte offset spans into line and column coordinates for display. The
// core itself never renders diagnostics, but it can describe where they are.
type Source struct {
	// Path is the name of the file that this code came from. It is only used
	// for display, and it may be empty.
	Path string

	// Body is the full source text.
	Body []byte
}

// Filename returns the printable filename that we'd like to display.
func (obj *Source) Filename() string {
	if obj == nil || obj.Path == "" {
		return "<unknown>"
	}
	return obj.Path
}

// Position returns the zero-based line and column of a byte offset. Columns
// count characters, not bytes. Offsets past the end of the source are clamped
// to the end.
func (obj *Source) Position(offset int) (int, int) {
	if obj == nil {
		return 0, offset
	}
	if offset > len(obj.Body) {
		offset = len(obj.Body)
	}
	if offset < 0 {
		offset = 0
	}
	line, col := 0, 0
	for i := 0; i < offset; {
		r, size := utf8.DecodeRune(obj.Body[i:offset])
		i += size
		if r == '\n' {
			line++
			col = 0
			continue
		}
		col++
	}
	return line, col
}

// Offset is the inverse of Position. It returns the byte offset of a zero-based
// line and column, or the end of the source if the coordinates are past it.
func (obj *Source) Offset(line, col int) int {
	if obj == nil {
		return 0
	}
	l, offset := 0, 0
	for offset < len(obj.Body) && l < line {
		if obj.Body[offset] == '\n' {
			l++
		}
		offset++
	}
	for c := 0; c < col && offset < len(obj.Body) && obj.Body[offset] != '\n'; c++ {
		_, size := utf8.DecodeRune(obj.Body[offset:])
		offset += size
	}
	return offset
}

// Byline gives a succinct representation of a span, but is useful only in
// debugging. In order to generate pretty error messages, see HighlightText.
func (obj *Source) Byline(span Span) string {
	startLine, startColumn := obj.Position(span.Start)
	endLine, endColumn := obj.Position(span.End)
	// We convert to 1-based for user display.
	return fmt.Sprintf("%s @ %d:%d-%d:%d", obj.Filename(), startLine+1, startColumn+1, endLine+1, endColumn+1)
}

// HighlightText generates a generic description that just visually indicates
// part of the line described by a span. If the span covers multiple lines,
// only the first and last are shown. If it can't generate a valid snippet,
// then it returns the empty string.
func (obj *Source) HighlightText(span Span) string {
	if obj == nil || len(obj.Body) == 0 {
		return ""
	}
	lines := strings.Split(string(obj.Body), "\n")
	startLine, startColumn := obj.Position(span.Start)
	endLine, endColumn := obj.Position(span.End)
	if startLine >= len(lines) || endLine >= len(lines) {
		return ""
	}

	result := &strings.Builder{}
	result.WriteString(obj.Byline(span))
	result.WriteString("\n\n")

	width := endColumn - startColumn
	if width < 1 {
		width = 1
	}

	if startLine == endLine {
		result.WriteString(lines[startLine] + "\n")
		result.WriteString(strings.Repeat(" ", startColumn))
		result.WriteString(strings.Repeat("^", width))
		result.WriteString("\n")
		return result.String()
	}

	result.WriteString(lines[startLine] + "\n")
	result.WriteString(strings.Repeat(" ", startColumn))
	result.WriteString("^ from here ...\n")

	result.WriteString(lines[endLine] + "\n")
	if endColumn > 0 {
		result.WriteString(strings.Repeat(" ", endColumn-1)) // the space before the caret
	}
	result.WriteString("^ ... to here\n")

	return result.String()
}
