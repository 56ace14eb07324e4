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

// Package diagnostic contains the compile time error reporting of the language.
// A diagnostic carries a numeric code and a set of labelled spans, and leaves
// the rendering of those to the caller. The only rendering done here is the
// single line form that is returned by Error, which is handy for logging.
package diagnostic

import (
	"fmt"
	"iter"
	"strings"

	"github.com/purpleidea/remap/lang/interfaces"
	"github.com/purpleidea/remap/util"
	"github.com/purpleidea/remap/util/errwrap"
)

const (
	// CodePredicate is used when the predicate of a conditional is not
	// statically known to be a boolean.
	CodePredicate = 102

	// CodeUndefinedVariable is used when a variable is referenced but no
	// binding for it is in scope.
	CodeUndefinedVariable = 701

	// CodeUndefinedAmbient is used when an ambient binding is referenced
	// but the host does not provide it.
	CodeUndefinedAmbient = 702
)

// Label is a message attached to a span of the source.
type Label struct {
	Message string
	Span    interfaces.Span

	// Primary is true for the label which marks where the error is. Other
	// labels only add context.
	Primary bool
}

// NewPrimary returns a primary label.
func NewPrimary(message string, span interfaces.Span) Label {
	return Label{Message: message, Span: span, Primary: true}
}

// NewContext returns a context label.
func NewContext(message string, span interfaces.Span) Label {
	return Label{Message: message, Span: span}
}

// String returns the label message.
func (obj Label) String() string { return obj.Message }

// Diagnostic is the interface of every compile time error. Labels always
// returns exactly one primary label, followed by any context labels.
type Diagnostic interface {
	error

	// Code returns the stable numeric code of this kind of error.
	Code() int

	// Labels returns the spans that should be highlighted.
	Labels() []Label
}

// Describe renders a diagnostic as a block of text, with a highlighted snippet
// for every label. It is a convenience for command line tools, the language
// itself never needs it.
func Describe(d Diagnostic, source *interfaces.Source) string {
	result := &strings.Builder{}
	fmt.Fprintf(result, "error[E%d]: %s\n", d.Code(), d.Error())
	for _, label := range d.Labels() {
		if label.Primary {
			result.WriteString(util.Indent(source.HighlightText(label.Span), "  "))
		}
		fmt.Fprintf(result, "  = %s\n", label.Message)
	}
	return result.String()
}

// List is an ordered collection of diagnostics. The binder uses it to keep
// going after an error so that every problem is reported at once.
type List struct {
	diagnostics []Diagnostic
}

// Add appends a diagnostic to the list. A nil diagnostic is ignored.
func (obj *List) Add(d Diagnostic) {
	if d == nil {
		return
	}
	obj.diagnostics = append(obj.diagnostics, d)
}

// Len returns the number of diagnostics collected.
func (obj *List) Len() int { return len(obj.diagnostics) }

// All returns the diagnostics in the order they were added.
func (obj *List) All() []Diagnostic {
	return append([]Diagnostic{}, obj.diagnostics...)
}

// Err folds the list into a single error, or nil if it is empty.
func (obj *List) Err() error {
	var reterr error
	for _, d := range obj.diagnostics {
		reterr = errwrap.Append(reterr, d)
	}
	return reterr
}

// collect turns a sequence of identifiers into a list, so that it can be
// walked more than once and kept after the environment changes.
func collect(seq iter.Seq[interfaces.Ident]) []interfaces.Ident {
	out := []interfaces.Ident{}
	if seq == nil {
		return out
	}
	for ident := range seq {
		out = append(out, ident)
	}
	return out
}
