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

// Package ast contains the expression nodes of the language. The set of nodes
// is closed: the Expr interface can only be implemented inside this package,
// and every backend dispatches over Kind with a switch that must handle each
// one of them. Nodes are immutable once they are built.
package ast

import (
	"fmt"

	"github.com/purpleidea/remap/lang/interfaces"
	"github.com/purpleidea/remap/lang/state"
	"github.com/purpleidea/remap/lang/types"
)

// Kind is the tag of an expression node.
type Kind int

const (
	// KindLiteral is a constant value.
	KindLiteral Kind = iota

	// KindVariable is a reference to a local variable.
	KindVariable

	// KindAmbient is a reference to a binding provided by the host.
	KindAmbient

	// KindAssignment stores the result of an expression in a variable.
	KindAssignment

	// KindBlock is a list of expressions in their own scope.
	KindBlock

	// KindIf is a conditional.
	KindIf
)

// Kinds returns every node kind. Each backend has a test which walks this list
// to make sure that no kind was forgotten.
func Kinds() []Kind {
	return []Kind{
		KindLiteral,
		KindVariable,
		KindAmbient,
		KindAssignment,
		KindBlock,
		KindIf,
	}
}

// String returns the name of the node kind.
func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindVariable:
		return "variable"
	case KindAmbient:
		return "ambient"
	case KindAssignment:
		return "assignment"
	case KindBlock:
		return "block"
	case KindIf:
		return "if"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Expr is an expression node. It is sealed: only the types in this package can
// implement it.
type Expr interface {
	fmt.Stringer

	// Kind returns the tag which backends switch on.
	Kind() Kind

	// Span returns the location of the node in the source.
	Span() interfaces.Span

	sealed()
}

// node is embedded in each expression to provide the common fields.
type node struct {
	span interfaces.Span
}

// Span returns the location of the node in the source.
func (obj *node) Span() interfaces.Span { return obj.span }

func (obj *node) sealed() {}

// TypeDef returns the static type of an expression, given the environments it
// was built in. It never looks at runtime state.
func TypeDef(expr Expr, local *state.LocalEnv, external *state.ExternalEnv) types.TypeDef {
	switch e := expr.(type) {
	case *Literal:
		return types.TypeDefOf(e.value)

	case *Variable:
		if e.noop {
			return types.Null()
		}
		if local != nil {
			if b, exists := local.Variable(e.ident); exists {
				return b.TypeDef
			}
		}
		return e.typeDef // the scope that declared it has closed

	case *Ambient:
		if b, exists := external.Variable(e.ident); exists {
			return b.TypeDef
		}
		return e.typeDef

	case *Assignment:
		return TypeDef(e.expr, local, external)

	case *Block:
		return e.typeDef

	case *If:
		alternative := types.Null()
		if e.alternative != nil {
			alternative = TypeDef(e.alternative, local, external)
		}
		typ := TypeDef(e.consequent, local, external).Merge(alternative)
		if TypeDef(e.predicate, local, external).IsFallible() {
			typ = typ.Fallible()
		}
		return typ
	}

	panic(fmt.Sprintf("unhandled node: %T", expr)) // the set is closed
}

// Walk calls the function on the expression and then on each of its children,
// depth first. It stops at the first error.
func Walk(expr Expr, fn func(Expr) error) error {
	if err := fn(expr); err != nil {
		return err
	}
	for _, child := range Children(expr) {
		if err := Walk(child, fn); err != nil {
			return err
		}
	}
	return nil
}

// Children returns the direct children of the expression, in evaluation order.
func Children(expr Expr) []Expr {
	switch e := expr.(type) {
	case *Literal, *Variable, *Ambient:
		return []Expr{}

	case *Assignment:
		return []Expr{e.expr}

	case *Block:
		return append([]Expr{}, e.exprs...)

	case *If:
		children := []Expr{e.predicate, e.consequent}
		if e.alternative != nil {
			children = append(children, e.alternative)
		}
		return children
	}

	panic(fmt.Sprintf("unhandled node: %T", expr))
}
