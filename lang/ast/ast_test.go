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

//go:build !root

package ast

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/purpleidea/remap/lang/diagnostic"
	"github.com/purpleidea/remap/lang/interfaces"
	"github.com/purpleidea/remap/lang/state"
	"github.com/purpleidea/remap/lang/types"

	"github.com/kylelemons/godebug/pretty"
)

// declare returns a local environment with the given infallible bindings.
func declare(bindings ...*state.Binding) *state.LocalEnv {
	local := state.NewLocalEnv()
	for _, b := range bindings {
		local.DeclareVariable(b)
	}
	return local
}

func TestVariableDeclared0(t *testing.T) {
	bindings := []*state.Binding{
		state.NewBinding("count", types.Integer()),
		state.NewBinding("name", types.String().Fallible()),
		state.NewBinding("tags", types.Array()),
		state.NewBinding("mixed", types.Integer().Merge(types.String())),
	}
	local := declare(bindings...)

	for index, b := range bindings {
		t.Run(fmt.Sprintf("test #%d (%s)", index, b.Ident), func(t *testing.T) {
			expr, err := NewVariable(interfaces.NewSpan(0, 1), b.Ident, local, diagnostic.DefaultKeywords())
			if err != nil {
				t.Errorf("test #%d: could not build: %+v", index, err)
				return
			}
			typ := TypeDef(expr, local, nil)
			if err := typ.Cmp(b.TypeDef); err != nil {
				t.Errorf("test #%d: type differs: %+v", index, err)
			}
			if _, exists := expr.Value(); exists {
				t.Errorf("test #%d: no value was declared", index)
			}
		})
	}
}

func TestVariableUndefined0(t *testing.T) {
	local := declare(
		state.NewBinding("count", types.Integer()),
		state.NewBinding("countery", types.Integer()),
	)
	local.PushScope()
	local.DeclareVariable(state.NewBinding("foo", types.String()))

	span := interfaces.NewSpan(3, 8)
	expr, err := NewVariable(span, "coutn", local, diagnostic.DefaultKeywords())
	if expr != nil {
		t.Errorf("no node should be built")
	}
	var undefined *diagnostic.Undefined
	if !errors.As(err, &undefined) {
		t.Errorf("expected an undefined error, got: %v", err)
		return
	}
	if undefined.Code() != diagnostic.CodeUndefinedVariable {
		t.Errorf("unexpected code: %d", undefined.Code())
	}
	if undefined.Span != span {
		t.Errorf("unexpected span: %+v", undefined.Span)
	}
	expect := []interfaces.Ident{"count", "countery", "foo"}
	if diff := pretty.Compare(expect, undefined.Idents); diff != "" {
		t.Errorf("candidates differ: (-want +got)\n%s", diff)
	}
	if guess, ok := undefined.Suggestion(); !ok || guess != "count" {
		t.Errorf("expected count, got: %s", guess)
	}
}

func TestVariableSnapshot0(t *testing.T) {
	b := state.NewBinding("x", types.Integer())
	b.Value = types.NewInt(5)
	local := declare(b)

	expr, err := NewVariable(interfaces.Span{}, "x", local, nil)
	if err != nil {
		t.Errorf("could not build: %+v", err)
		return
	}
	b.Value.(*types.IntValue).V = 6 // the node took a copy

	v, exists := expr.Value()
	if !exists || v.Int() != 5 {
		t.Errorf("expected a snapshot of 5, got: %v", v)
	}
}

func TestNoopVariable0(t *testing.T) {
	local := declare(state.NewBinding("x", types.Integer()))
	expr := NewNoopVariable(interfaces.Span{}, "x")
	if !expr.IsNoop() {
		t.Errorf("expected a noop")
	}
	typ := TypeDef(expr, local, nil)
	if !typ.IsNull() || typ.IsFallible() {
		t.Errorf("expected null, cannot fail, got: %s", typ)
	}
	if typ.String() != "null, cannot fail" {
		t.Errorf("unexpected type string: %s", typ)
	}
}

func TestScenario0(t *testing.T) {
	local := declare(state.NewBinding("x", types.Integer()))
	expr, err := NewVariable(interfaces.Span{}, "x", local, diagnostic.DefaultKeywords())
	if err != nil {
		t.Errorf("could not build: %+v", err)
		return
	}
	if s := TypeDef(expr, local, nil).String(); s != "integer, cannot fail" {
		t.Errorf("unexpected type: %s", s)
	}
}

func TestVariableVanished0(t *testing.T) {
	local := state.NewLocalEnv()
	local.PushScope()
	local.DeclareVariable(state.NewBinding("inner", types.Boolean()))
	expr, err := NewVariable(interfaces.Span{}, "inner", local, nil)
	if err != nil {
		t.Errorf("could not build: %+v", err)
		return
	}
	if err := local.PopScope(); err != nil {
		t.Errorf("could not pop: %+v", err)
	}
	// the scope is gone, so the type recorded at construction is used
	if typ := TypeDef(expr, local, nil); !typ.IsBoolean() {
		t.Errorf("expected boolean, got: %s", typ)
	}
}

func TestAmbient0(t *testing.T) {
	external, err := state.NewExternalEnv(state.NewBinding("hostname", types.String()))
	if err != nil {
		t.Errorf("could not build env: %+v", err)
		return
	}
	expr, err := NewAmbient(interfaces.Span{}, "hostname", external, nil)
	if err != nil {
		t.Errorf("could not build: %+v", err)
		return
	}
	if s := expr.String(); s != "%hostname" {
		t.Errorf("unexpected string: %s", s)
	}
	if typ := TypeDef(expr, nil, external); !typ.IsExact(types.KindString) {
		t.Errorf("unexpected type: %s", typ)
	}

	_, err = NewAmbient(interfaces.Span{}, "hostnme", external, diagnostic.DefaultKeywords())
	var undefined *diagnostic.Undefined
	if !errors.As(err, &undefined) || undefined.Code() != diagnostic.CodeUndefinedAmbient {
		t.Errorf("expected an undefined ambient error, got: %v", err)
		return
	}
	if guess, ok := undefined.Suggestion(); !ok || guess != "hostname" {
		t.Errorf("expected hostname, got: %s", guess)
	}
}

func TestAssignment0(t *testing.T) {
	local := state.NewLocalEnv()
	lit := NewLiteral(interfaces.Span{}, types.NewStr("hello"))
	expr := NewAssignment(interfaces.Span{}, "greeting", lit, local, nil)

	b, exists := local.Variable("greeting")
	if !exists {
		t.Errorf("assignment did not declare the variable")
		return
	}
	if !b.TypeDef.IsExact(types.KindString) || b.Value == nil || b.Value.Str() != "hello" {
		t.Errorf("unexpected binding: %s", b)
	}
	if s := expr.String(); s != `greeting = "hello"` {
		t.Errorf("unexpected string: %s", s)
	}
	// the value field must not hide the methods every node has
	var e Expr = expr
	if e.Kind() != KindAssignment {
		t.Errorf("unexpected kind: %s", e.Kind())
	}
	if children := Children(e); len(children) != 1 || children[0] != Expr(lit) {
		t.Errorf("unexpected children: %v", children)
	}
	if td := TypeDef(e, local, nil); !td.IsExact(types.KindString) {
		t.Errorf("unexpected type: %s", td)
	}

	// reassigning from a variable loses the static value but keeps the type
	ref, err := NewVariable(interfaces.Span{}, "greeting", local, nil)
	if err != nil {
		t.Errorf("could not build: %+v", err)
		return
	}
	NewAssignment(interfaces.Span{}, "copy", ref, local, nil)
	b, _ = local.Variable("copy")
	if b.Value != nil || !b.TypeDef.IsExact(types.KindString) {
		t.Errorf("unexpected binding: %s", b)
	}
}

func TestBlock0(t *testing.T) {
	local := state.NewLocalEnv()
	empty := NewBlock(interfaces.Span{}, nil, local, nil)
	if typ := TypeDef(empty, local, nil); !typ.IsNull() {
		t.Errorf("empty block should be null, got: %s", typ)
	}

	local.PushScope()
	local.DeclareVariable(state.NewBinding("f", types.Float().Fallible()))
	ref, err := NewVariable(interfaces.Span{}, "f", local, nil)
	if err != nil {
		t.Errorf("could not build: %+v", err)
		return
	}
	block := NewBlock(interfaces.Span{}, []Expr{ref, NewLiteral(interfaces.Span{}, types.NewInt(1))}, local, nil)
	if err := local.PopScope(); err != nil {
		t.Errorf("could not pop: %+v", err)
	}

	if s := TypeDef(block, local, nil).String(); s != "integer, can fail" {
		t.Errorf("unexpected type: %s", s)
	}
	if s := block.String(); s != "{ f; 1 }" {
		t.Errorf("unexpected string: %s", s)
	}
}

func TestIf0(t *testing.T) {
	local := declare(
		state.NewBinding("ok", types.Boolean()),
		state.NewBinding("n", types.Integer()),
	)
	ok, _ := NewVariable(interfaces.Span{}, "ok", local, nil)
	n, _ := NewVariable(interfaces.NewSpan(10, 11), "n", local, nil)
	one := NewLiteral(interfaces.Span{}, types.NewInt(1))
	str := NewLiteral(interfaces.Span{}, types.NewStr("x"))

	expr, err := NewIf(interfaces.Span{}, ok, one, str, local, nil)
	if err != nil {
		t.Errorf("could not build: %+v", err)
		return
	}
	if s := TypeDef(expr, local, nil).String(); s != "integer or string, cannot fail" {
		t.Errorf("unexpected type: %s", s)
	}

	expr, err = NewIf(interfaces.Span{}, ok, one, nil, local, nil)
	if err != nil {
		t.Errorf("could not build: %+v", err)
		return
	}
	if s := TypeDef(expr, local, nil).String(); s != "null or integer, cannot fail" {
		t.Errorf("unexpected type: %s", s)
	}

	_, err = NewIf(interfaces.Span{}, n, one, nil, local, nil)
	var predicate *diagnostic.Predicate
	if !errors.As(err, &predicate) {
		t.Errorf("expected a predicate error, got: %v", err)
		return
	}
	if predicate.Code() != diagnostic.CodePredicate || predicate.Span != interfaces.NewSpan(10, 11) {
		t.Errorf("unexpected error: %+v", predicate)
	}
}

func TestKinds0(t *testing.T) {
	seen := make(map[Kind]struct{})
	for _, k := range Kinds() {
		if _, exists := seen[k]; exists {
			t.Errorf("duplicate kind: %s", k)
		}
		seen[k] = struct{}{}
		if strings.HasPrefix(k.String(), "kind(") {
			t.Errorf("kind %d has no name", int(k))
		}
	}
}

func TestWalk0(t *testing.T) {
	local := declare(state.NewBinding("ok", types.Boolean()))
	ok, _ := NewVariable(interfaces.Span{}, "ok", local, nil)
	assign := NewAssignment(interfaces.Span{}, "y", NewLiteral(interfaces.Span{}, types.NewInt(2)), local, nil)
	cond, err := NewIf(interfaces.Span{}, ok, assign, nil, local, nil)
	if err != nil {
		t.Errorf("could not build: %+v", err)
		return
	}
	block := NewBlock(interfaces.Span{}, []Expr{cond, NewNoopVariable(interfaces.Span{}, "z")}, local, nil)

	kinds := []string{}
	if err := Walk(block, func(expr Expr) error {
		kinds = append(kinds, expr.Kind().String())
		return nil
	}); err != nil {
		t.Errorf("walk failed: %+v", err)
	}
	expect := []string{"block", "if", "variable", "assignment", "literal", "variable"}
	if diff := pretty.Compare(expect, kinds); diff != "" {
		t.Errorf("walk order differs: (-want +got)\n%s", diff)
	}

	stop := fmt.Errorf("stop")
	count := 0
	err = Walk(block, func(expr Expr) error {
		count++
		if expr.Kind() == KindIf {
			return stop
		}
		return nil
	})
	if err != stop || count != 2 {
		t.Errorf("walk did not stop early: %v after %d", err, count)
	}
}
