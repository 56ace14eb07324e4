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

package ast

import (
	"fmt"
	"strings"

	"github.com/purpleidea/remap/lang/diagnostic"
	"github.com/purpleidea/remap/lang/interfaces"
	"github.com/purpleidea/remap/lang/state"
	"github.com/purpleidea/remap/lang/types"
)

var (
	_ Expr = (*Literal)(nil)
	_ Expr = (*Variable)(nil)
	_ Expr = (*Ambient)(nil)
	_ Expr = (*Assignment)(nil)
	_ Expr = (*Block)(nil)
	_ Expr = (*If)(nil)
)

// Literal is a constant value.
type Literal struct {
	node

	value types.Value
}

// NewLiteral builds a literal. The node keeps its own copy of the value.
func NewLiteral(span interfaces.Span, value types.Value) *Literal {
	if value == nil {
		value = types.NewNull()
	}
	return &Literal{
		node:  node{span: span},
		value: value.Copy(),
	}
}

// Kind returns the tag of this node.
func (obj *Literal) Kind() Kind { return KindLiteral }

// String returns a short representation of this expression.
func (obj *Literal) String() string { return obj.value.String() }

// Value returns a copy of the constant.
func (obj *Literal) Value() types.Value { return obj.value.Copy() }

// Variable is a reference to a variable in the local environment.
type Variable struct {
	node

	ident   interfaces.Ident
	value   types.Value // snapshot of the known value at construction, or nil
	typeDef types.TypeDef
	noop    bool
}

// NewVariable builds a reference to a variable. The variable must already be
// declared in the local environment. If it isn't, then no node is built, and
// the error is a diagnostic which suggests the closest visible identifier or
// keyword.
func NewVariable(span interfaces.Span, ident interfaces.Ident, local *state.LocalEnv, keywords []interfaces.Ident) (*Variable, error) {
	binding, exists := local.Variable(ident)
	if !exists {
		return nil, diagnostic.NewUndefinedVariable(ident, span, local.VariableIdents(), keywords)
	}

	var value types.Value
	if binding.Value != nil {
		value = binding.Value.Copy()
	}
	return &Variable{
		node:    node{span: span},
		ident:   ident,
		value:   value,
		typeDef: binding.TypeDef,
	}, nil
}

// NewNoopVariable builds a placeholder which stands in for a reference that
// failed to build. It lets the caller keep going and find more errors. It has
// no binding, and it is always null.
func NewNoopVariable(span interfaces.Span, ident interfaces.Ident) *Variable {
	return &Variable{
		node:    node{span: span},
		ident:   ident,
		typeDef: types.Null(),
		noop:    true,
	}
}

// Kind returns the tag of this node.
func (obj *Variable) Kind() Kind { return KindVariable }

// String returns a short representation of this expression.
func (obj *Variable) String() string { return obj.ident.String() }

// Ident returns the name of the variable.
func (obj *Variable) Ident() interfaces.Ident { return obj.ident }

// IsNoop returns true if this is an error recovery placeholder.
func (obj *Variable) IsNoop() bool { return obj.noop }

// Value returns a copy of the value that was known when the node was built.
func (obj *Variable) Value() (types.Value, bool) {
	if obj.value == nil {
		return nil, false
	}
	return obj.value.Copy(), true
}

// Ambient is a reference to a binding in the external environment.
type Ambient struct {
	node

	ident   interfaces.Ident
	typeDef types.TypeDef
}

// NewAmbient builds a reference to an ambient binding. It fails the same way
// that NewVariable does, but with its own diagnostic code.
func NewAmbient(span interfaces.Span, ident interfaces.Ident, external *state.ExternalEnv, keywords []interfaces.Ident) (*Ambient, error) {
	binding, exists := external.Variable(ident)
	if !exists {
		return nil, diagnostic.NewUndefined(diagnostic.CodeUndefinedAmbient, "ambient binding", ident, span, external.VariableIdents(), keywords)
	}
	return &Ambient{
		node:    node{span: span},
		ident:   ident,
		typeDef: binding.TypeDef,
	}, nil
}

// Kind returns the tag of this node.
func (obj *Ambient) Kind() Kind { return KindAmbient }

// String returns a short representation of this expression.
func (obj *Ambient) String() string { return interfaces.AmbientPrefix + obj.ident.String() }

// Ident returns the name of the ambient binding.
func (obj *Ambient) Ident() interfaces.Ident { return obj.ident }

// Assignment stores the result of an expression in a variable, and returns it.
type Assignment struct {
	node

	ident interfaces.Ident
	expr  Expr
}

// NewAssignment builds an assignment and records it in the local environment.
// The variable takes the type of the expression. If the variable is already
// visible, the binding is replaced in the scope which owns it, otherwise it is
// declared in the innermost scope. The value is only known statically when the
// expression is a literal.
func NewAssignment(span interfaces.Span, ident interfaces.Ident, expr Expr, local *state.LocalEnv, external *state.ExternalEnv) *Assignment {
	binding := state.NewBinding(ident, TypeDef(expr, local, external))
	if lit, ok := expr.(*Literal); ok {
		binding.Value = lit.Value()
	}
	local.UpdateVariable(binding)

	return &Assignment{
		node:  node{span: span},
		ident: ident,
		expr:  expr,
	}
}

// Kind returns the tag of this node.
func (obj *Assignment) Kind() Kind { return KindAssignment }

// String returns a short representation of this expression.
func (obj *Assignment) String() string {
	return fmt.Sprintf("%s = %s", obj.ident, obj.expr)
}

// Ident returns the name of the assigned variable.
func (obj *Assignment) Ident() interfaces.Ident { return obj.ident }

// Expr returns the expression whose value is assigned.
func (obj *Assignment) Expr() Expr { return obj.expr }

// Block is a list of expressions. It evaluates to the last one, or null if it
// is empty.
type Block struct {
	node

	exprs   []Expr
	typeDef types.TypeDef
}

// NewBlock builds a block. The caller opens a scope before building the
// children and closes it after this returns, so the type is taken now, while
// the children's bindings are still visible.
func NewBlock(span interfaces.Span, exprs []Expr, local *state.LocalEnv, external *state.ExternalEnv) *Block {
	typ := types.Null()
	fallible := false
	for _, x := range exprs {
		typ = TypeDef(x, local, external)
		fallible = fallible || typ.IsFallible()
	}

	return &Block{
		node:    node{span: span},
		exprs:   append([]Expr{}, exprs...),
		typeDef: typ.WithFallibility(fallible),
	}
}

// Kind returns the tag of this node.
func (obj *Block) Kind() Kind { return KindBlock }

// String returns a short representation of this expression.
func (obj *Block) String() string {
	s := []string{}
	for _, x := range obj.exprs {
		s = append(s, x.String())
	}
	return fmt.Sprintf("{ %s }", strings.Join(s, "; "))
}

// Exprs returns the expressions in the block.
func (obj *Block) Exprs() []Expr { return append([]Expr{}, obj.exprs...) }

// If is a conditional. The consequent is taken only if the predicate is the
// boolean true, anything else takes the alternative. A missing alternative is
// null.
type If struct {
	node

	predicate   Expr
	consequent  Expr
	alternative Expr // may be nil
}

// NewIf builds a conditional. The predicate must be statically known to be a
// boolean.
func NewIf(span interfaces.Span, predicate, consequent, alternative Expr, local *state.LocalEnv, external *state.ExternalEnv) (*If, error) {
	if typ := TypeDef(predicate, local, external); !typ.IsBoolean() {
		return nil, &diagnostic.Predicate{
			Got:  typ.String(),
			Span: predicate.Span(),
		}
	}
	return &If{
		node:        node{span: span},
		predicate:   predicate,
		consequent:  consequent,
		alternative: alternative,
	}, nil
}

// Kind returns the tag of this node.
func (obj *If) Kind() Kind { return KindIf }

// String returns a short representation of this expression.
func (obj *If) String() string {
	if obj.alternative == nil {
		return fmt.Sprintf("if %s { %s }", obj.predicate, obj.consequent)
	}
	return fmt.Sprintf("if %s { %s } else { %s }", obj.predicate, obj.consequent, obj.alternative)
}

// Predicate returns the condition.
func (obj *If) Predicate() Expr { return obj.predicate }

// Consequent returns the expression taken when the predicate is true.
func (obj *If) Consequent() Expr { return obj.consequent }

// Alternative returns the expression taken otherwise, or nil.
func (obj *If) Alternative() Expr { return obj.alternative }
