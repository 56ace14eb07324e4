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

package interpret

import (
	"errors"
	"fmt"
	"testing"

	"github.com/purpleidea/remap/lang/ast"
	"github.com/purpleidea/remap/lang/ast/asttest"
	"github.com/purpleidea/remap/lang/backend"
	"github.com/purpleidea/remap/lang/diagnostic"
	"github.com/purpleidea/remap/lang/interfaces"
	"github.com/purpleidea/remap/lang/runtime"
	"github.com/purpleidea/remap/lang/state"
	"github.com/purpleidea/remap/lang/types"
)

func TestResolveVariable0(t *testing.T) {
	type test struct { // an individual test
		name   string
		state  map[string]interface{}
		expect types.Value
	}
	testCases := []test{}

	{
		testCases = append(testCases, test{
			name:   "populated",
			state:  map[string]interface{}{"x": 5},
			expect: types.NewInt(5),
		})
	}
	{
		testCases = append(testCases, test{
			name:   "declared but not populated",
			state:  map[string]interface{}{},
			expect: types.NewNull(),
		})
	}
	{
		testCases = append(testCases, test{
			name:   "other variables only",
			state:  map[string]interface{}{"y": "hello"},
			expect: types.NewNull(),
		})
	}

	for index, tc := range testCases { // run all the tests
		t.Run(fmt.Sprintf("test #%d (%s)", index, tc.name), func(t *testing.T) {
			local := state.NewLocalEnv()
			local.DeclareVariable(state.NewBinding("x", types.Integer()))
			expr, err := ast.NewVariable(interfaces.Span{}, "x", local, diagnostic.DefaultKeywords())
			if err != nil {
				t.Errorf("test #%d: could not build: %+v", index, err)
				return
			}
			st, err := runtime.NewStateFromMap(tc.state)
			if err != nil {
				t.Errorf("test #%d: could not build state: %+v", index, err)
				return
			}
			v, err := Resolve(expr, runtime.NewContext(st))
			if err != nil {
				t.Errorf("test #%d: resolve errored: %+v", index, err)
				return
			}
			if err := v.Cmp(tc.expect); err != nil {
				t.Errorf("test #%d: expected %s, got %s", index, tc.expect, v)
			}
		})
	}
}

func TestResolveNoop0(t *testing.T) {
	expr := ast.NewNoopVariable(interfaces.Span{}, "x")
	ctx := runtime.NewContext(nil)
	ctx.State().SetVariable("x", types.NewInt(5))
	v, err := Resolve(expr, ctx)
	if err != nil {
		t.Errorf("resolve errored: %+v", err)
		return
	}
	if v.Kind() != types.KindNull {
		t.Errorf("noop should always be null, got: %s", v)
	}
}

func TestResolveCopy0(t *testing.T) {
	local := state.NewLocalEnv()
	local.DeclareVariable(state.NewBinding("l", types.Array()))
	expr, _ := ast.NewVariable(interfaces.Span{}, "l", local, nil)
	ctx := runtime.NewContext(nil)
	ctx.State().SetVariable("l", types.NewList(types.NewInt(1)))

	v, _ := Resolve(expr, ctx)
	v.(*types.ListValue).V[0] = types.NewInt(2) // must not reach the state

	again, _ := Resolve(expr, ctx)
	if s := again.String(); s != "[1]" {
		t.Errorf("resolved value aliases the state: %s", s)
	}
}

func TestResolvePredicateNull0(t *testing.T) {
	local := state.NewLocalEnv()
	local.DeclareVariable(state.NewBinding("ok", types.Boolean()))
	ok, _ := ast.NewVariable(interfaces.Span{}, "ok", local, nil)
	expr, err := ast.NewIf(interfaces.Span{}, ok,
		ast.NewLiteral(interfaces.Span{}, types.NewInt(1)),
		ast.NewLiteral(interfaces.Span{}, types.NewInt(2)),
		local, nil,
	)
	if err != nil {
		t.Errorf("could not build: %+v", err)
		return
	}
	// ok is declared but missing, so it resolves to null, which is false
	v, err := Resolve(expr, runtime.NewContext(nil))
	if err != nil || v.Int() != 2 {
		t.Errorf("expected the alternative, got: %v (%v)", v, err)
	}
}

func TestResolveAllKinds0(t *testing.T) {
	samples, _, _ := asttest.Samples()
	for _, k := range ast.Kinds() {
		v, err := Resolve(samples[k], runtime.NewContext(nil))
		if errors.Is(err, interfaces.ErrUnsupportedNode) {
			t.Errorf("kind %s is not handled", k)
			continue
		}
		if err != nil {
			t.Errorf("kind %s errored: %+v", k, err)
		}
		if v == nil {
			t.Errorf("kind %s returned nil", k)
		}
	}
}

func TestResolveProgram0(t *testing.T) {
	for _, tc := range asttest.Cases() {
		if tc.Name != "program" {
			continue
		}
		expect := []string{"null", "5", "1", "null"}
		for i, ctx := range tc.Contexts() {
			v, err := Resolve(tc.Expr, ctx)
			if err != nil {
				t.Errorf("context #%d errored: %+v", i, err)
				continue
			}
			if s := v.String(); s != expect[i] {
				t.Errorf("context #%d: expected %s, got %s", i, expect[i], s)
			}
		}
	}
}

func TestRegistered0(t *testing.T) {
	s, err := backend.Lookup(Name)
	if err != nil {
		t.Errorf("not registered: %+v", err)
		return
	}
	samples, local, external := asttest.Samples()
	exec, err := s.Compile(samples[ast.KindLiteral], local, external)
	if err != nil {
		t.Errorf("compile failed: %+v", err)
		return
	}
	v, err := exec.Run(runtime.NewContext(nil))
	if err != nil || v.Int() != 3 {
		t.Errorf("unexpected result: %v (%v)", v, err)
	}
}
