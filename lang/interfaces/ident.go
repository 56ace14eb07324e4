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

// Ident is the name of a binding. It is comparable and hashable, so that it can
// be used directly as a map key and as the stable identity of a binding.
type Ident string

// String returns the name of the identifier.
func (obj Ident) String() string { return string(obj) }

// Span is a half open range of byte offsets into the program source. The zero
// value is an empty span at the start of the source.
type Span struct {
	Start int
	End   int
}

// NewSpan builds a span and makes sure that the end is never before the start.
func NewSpan(start, end int) Span {
	if end < start {
		end = start
	}
	return Span{Start: start, End: end}
}

// Len returns the number of bytes covered by the span.
func (obj Span) Len() int { return obj.End - obj.Start }

// Merge returns the smallest span covering both of the inputs.
func (obj Span) Merge(other Span) Span {
	s := obj
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}
