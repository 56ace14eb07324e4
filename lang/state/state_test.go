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

package state

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/purpleidea/remap/lang/interfaces"
	"github.com/purpleidea/remap/lang/types"

	"github.com/kylelemons/godebug/pretty"
)

func idents(names ...string) []interfaces.Ident {
	out := []interfaces.Ident{}
	for _, x := range names {
		out = append(out, interfaces.Ident(x))
	}
	return out
}

func TestLocalEnvIdents0(t *testing.T) {
	type test struct { // an individual test
		name   string
		build  func(*LocalEnv)
		expect []interfaces.Ident
	}
	testCases := []test{}

	{
		testCases = append(testCases, test{
			name:   "empty",
			build:  func(env *LocalEnv) {},
			expect: idents(),
		})
	}
	{
		testCases = append(testCases, test{
			name: "declaration order",
			build: func(env *LocalEnv) {
				env.DeclareVariable(NewBinding("count", types.Integer()))
				env.DeclareVariable(NewBinding("amount", types.Float()))
				env.DeclareVariable(NewBinding("name", types.String()))
			},
			expect: idents("count", "amount", "name"),
		})
	}
	{
		testCases = append(testCases, test{
			name: "outer scope first",
			build: func(env *LocalEnv) {
				env.DeclareVariable(NewBinding("a", types.Integer()))
				env.PushScope()
				env.DeclareVariable(NewBinding("b", types.Integer()))
				env.DeclareVariable(NewBinding("c", types.Integer()))
			},
			expect: idents("a", "b", "c"),
		})
	}
	{
		testCases = append(testCases, test{
			name: "shadowed once",
			build: func(env *LocalEnv) {
				env.DeclareVariable(NewBinding("a", types.Integer()))
				env.DeclareVariable(NewBinding("b", types.Integer()))
				env.PushScope()
				env.DeclareVariable(NewBinding("c", types.Integer()))
				env.DeclareVariable(NewBinding("a", types.String()))
			},
			expect: idents("a", "b", "c"),
		})
	}
	{
		testCases = append(testCases, test{
			name: "popped scope is gone",
			build: func(env *LocalEnv) {
				env.DeclareVariable(NewBinding("a", types.Integer()))
				env.PushScope()
				env.DeclareVariable(NewBinding("b", types.Integer()))
				if err := env.PopScope(); err != nil {
					panic(err)
				}
				env.DeclareVariable(NewBinding("c", types.Integer()))
			},
			expect: idents("a", "c"),
		})
	}
	{
		testCases = append(testCases, test{
			name: "redeclared keeps position",
			build: func(env *LocalEnv) {
				env.DeclareVariable(NewBinding("a", types.Integer()))
				env.DeclareVariable(NewBinding("b", types.Integer()))
				env.DeclareVariable(NewBinding("a", types.String()))
			},
			expect: idents("a", "b"),
		})
	}

	for index, tc := range testCases { // run all the tests
		t.Run(fmt.Sprintf("test #%d (%s)", index, tc.name), func(t *testing.T) {
			env := NewLocalEnv()
			tc.build(env)
			out := slices.Collect(env.VariableIdents())
			if diff := pretty.Compare(tc.expect, out); diff != "" {
				t.Errorf("test #%d: ident order differs: (-want +got)\n%s", index, diff)
			}
			// the sequence is restartable
			again := slices.Collect(env.VariableIdents())
			if diff := pretty.Compare(out, again); diff != "" {
				t.Errorf("test #%d: second iteration differs: (-want +got)\n%s", index, diff)
			}
		})
	}
}

func TestLocalEnvShadow0(t *testing.T) {
	env := NewLocalEnv()
	if prev := env.DeclareVariable(NewBinding("x", types.Integer())); prev != nil {
		t.Errorf("unexpected previous binding: %s", prev)
	}
	env.PushScope()
	prev := env.DeclareVariable(NewBinding("x", types.String()))
	if prev == nil || prev.TypeDef.Kind() != types.KindInteger {
		t.Errorf("expected the outer binding back, got: %v", prev)
	}
	b, exists := env.Variable("x")
	if !exists || b.TypeDef.Kind() != types.KindString {
		t.Errorf("innermost binding should win, got: %v", b)
	}
	if err := env.PopScope(); err != nil {
		t.Errorf("pop failed: %+v", err)
	}
	b, exists = env.Variable("x")
	if !exists || b.TypeDef.Kind() != types.KindInteger {
		t.Errorf("outer binding should be visible again, got: %v", b)
	}
}

func TestLocalEnvUpdate0(t *testing.T) {
	env := NewLocalEnv()
	env.DeclareVariable(NewBinding("x", types.Integer()))
	env.PushScope()
	env.UpdateVariable(NewBinding("x", types.String()))
	env.UpdateVariable(NewBinding("y", types.Boolean()))
	if err := env.PopScope(); err != nil {
		t.Errorf("pop failed: %+v", err)
	}

	// x was owned by the root scope, so the update survives the pop
	if b, exists := env.Variable("x"); !exists || b.TypeDef.Kind() != types.KindString {
		t.Errorf("update of x was lost: %v", b)
	}
	// y was new, so it was declared in the popped scope
	if _, exists := env.Variable("y"); exists {
		t.Errorf("y should not be visible")
	}
}

func TestLocalEnvPopRoot0(t *testing.T) {
	env := NewLocalEnv()
	if err := env.PopScope(); !errors.Is(err, interfaces.ErrScopeUnderflow) {
		t.Errorf("expected scope underflow, got: %v", err)
	}
	if d := env.Depth(); d != 1 {
		t.Errorf("expected depth 1, got: %d", d)
	}
}

func TestLocalEnvCopy0(t *testing.T) {
	env := NewLocalEnv()
	b := NewBinding("x", types.Integer())
	b.Value = types.NewInt(5)
	env.DeclareVariable(b)

	cp := env.Copy()
	cp.DeclareVariable(NewBinding("y", types.Integer()))
	b.Value.(*types.IntValue).V = 42 // not seen by the copy

	if _, exists := env.Variable("y"); exists {
		t.Errorf("copy leaked into the original")
	}
	x, _ := cp.Variable("x")
	if x.Value.Int() != 5 {
		t.Errorf("expected the copy to keep 5, got: %s", x.Value)
	}
}

func TestExternalEnv0(t *testing.T) {
	env, err := NewExternalEnv(
		NewBinding("host", types.String()),
		NewBinding("port", types.Integer()),
	)
	if err != nil {
		t.Errorf("could not build env: %+v", err)
		return
	}
	if b, exists := env.Variable("port"); !exists || !b.TypeDef.IsExact(types.KindInteger) {
		t.Errorf("missing port binding: %v", b)
	}
	if _, exists := env.Variable("nope"); exists {
		t.Errorf("unexpected binding")
	}
	out := slices.Collect(env.VariableIdents())
	if diff := pretty.Compare(idents("host", "port"), out); diff != "" {
		t.Errorf("ident order differs: (-want +got)\n%s", diff)
	}

	var empty *ExternalEnv
	if _, exists := empty.Variable("host"); exists {
		t.Errorf("nil env should be empty")
	}
	if out := slices.Collect(empty.VariableIdents()); len(out) != 0 {
		t.Errorf("nil env should have no idents, got: %v", out)
	}
}

func TestExternalEnvDuplicate0(t *testing.T) {
	_, err := NewExternalEnv(
		NewBinding("host", types.String()),
		NewBinding("host", types.Integer()),
	)
	if !errors.Is(err, interfaces.ErrDuplicateBinding) {
		t.Errorf("expected a duplicate binding error, got: %v", err)
	}
}
