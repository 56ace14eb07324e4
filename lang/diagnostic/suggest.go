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

package diagnostic

import (
	"fmt"
	"iter"

	"github.com/purpleidea/remap/lang/interfaces"
)

// DefaultKeywords returns the language keywords which are offered as
// suggestions alongside the visible bindings. A new slice is returned each
// time so that callers can't change what others see.
func DefaultKeywords() []interfaces.Ident {
	return []interfaces.Ident{
		interfaces.NullKeyword,
		interfaces.TrueKeyword,
		interfaces.FalseKeyword,
	}
}

// Distance returns the Levenshtein edit distance between two strings. It counts
// runes, not bytes, so that a multi byte character is a single edit.
func Distance(a, b string) int {
	s1, s2 := []rune(a), []rune(b)
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	// two rows of the matrix are enough
	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(s2)]
}

// Suggest returns the candidate closest to the name by edit distance. When more
// than one candidate is equally close, the earliest one wins. It returns false
// if there are no candidates at all.
func Suggest(name string, candidates iter.Seq[interfaces.Ident]) (interfaces.Ident, bool) {
	var best interfaces.Ident
	found := false
	score := 0
	if candidates == nil {
		return best, false
	}
	for candidate := range candidates {
		d := Distance(name, candidate.String())
		if !found || d < score { // strict, so ties keep the earlier one
			best, score, found = candidate, d, true
		}
	}
	return best, found
}

// Undefined is the error for a reference to a binding that does not exist. It
// is shared by every kind of reference, which differ only by code and noun.
type Undefined struct {
	code int
	noun string

	Ident interfaces.Ident
	Span  interfaces.Span

	// Idents are the identifiers that were visible when the reference
	// failed, in scope order.
	Idents []interfaces.Ident

	// Keywords are added to the end of the suggestion candidates.
	Keywords []interfaces.Ident
}

// NewUndefined builds the error. The candidate sequence is read right away, so
// later changes to the environment it came from do not affect the error.
func NewUndefined(code int, noun string, ident interfaces.Ident, span interfaces.Span, idents iter.Seq[interfaces.Ident], keywords []interfaces.Ident) *Undefined {
	return &Undefined{
		code:     code,
		noun:     noun,
		Ident:    ident,
		Span:     span,
		Idents:   collect(idents),
		Keywords: append([]interfaces.Ident{}, keywords...),
	}
}

// NewUndefinedVariable is the common case of NewUndefined for a local variable.
func NewUndefinedVariable(ident interfaces.Ident, span interfaces.Span, idents iter.Seq[interfaces.Ident], keywords []interfaces.Ident) *Undefined {
	return NewUndefined(CodeUndefinedVariable, "variable", ident, span, idents, keywords)
}

// Error returns the summary of the error.
func (obj *Undefined) Error() string {
	return fmt.Sprintf("call to undefined %s: %s", obj.noun, obj.Ident)
}

// Code returns the error code.
func (obj *Undefined) Code() int { return obj.code }

// Candidates returns the full list of names that a suggestion is picked from.
// These are the visible identifiers followed by the keywords.
func (obj *Undefined) Candidates() []interfaces.Ident {
	out := append([]interfaces.Ident{}, obj.Idents...)
	return append(out, obj.Keywords...)
}

// Suggestion returns the closest candidate, if there is one.
func (obj *Undefined) Suggestion() (interfaces.Ident, bool) {
	return Suggest(obj.Ident.String(), func(yield func(interfaces.Ident) bool) {
		for _, x := range obj.Candidates() {
			if !yield(x) {
				return
			}
		}
	})
}

// Labels returns the primary label, and a hint if a suggestion can be made.
func (obj *Undefined) Labels() []Label {
	labels := []Label{NewPrimary("undefined "+obj.noun, obj.Span)}
	if guess, ok := obj.Suggestion(); ok {
		labels = append(labels, NewContext(fmt.Sprintf("did you mean %q?", guess.String()), obj.Span))
	}
	return labels
}

// Predicate is the error for a conditional whose predicate might not produce a
// boolean.
type Predicate struct {
	// Got is the printed type of the predicate.
	Got  string
	Span interfaces.Span
}

// Error returns the summary of the error.
func (obj *Predicate) Error() string {
	return fmt.Sprintf("predicate must resolve to a boolean, got: %s", obj.Got)
}

// Code returns the error code.
func (obj *Predicate) Code() int { return CodePredicate }

// Labels returns the primary label.
func (obj *Predicate) Labels() []Label {
	return []Label{
		NewPrimary("this predicate must resolve to a boolean", obj.Span),
		NewContext("received: "+obj.Got, obj.Span),
	}
}
