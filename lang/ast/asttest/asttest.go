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

// Package asttest provides expression trees for the tests of the backends. It
// has one sample per node kind, and a few whole programs whose behaviour every
// backend must agree on.
package asttest

import (
	"fmt"

	"github.com/purpleidea/remap/lang/ast"
	"github.com/purpleidea/remap/lang/diagnostic"
	"github.com/purpleidea/remap/lang/interfaces"
	"github.com/purpleidea/remap/lang/runtime"
	"github.com/purpleidea/remap/lang/state"
	"github.com/purpleidea/remap/lang/types"
)

// Case is a program along with the environments it was built in, and the
// states to run it against.
type Case struct {
	Name     string
	Expr     ast.Expr
	Local    *state.LocalEnv
	External *state.ExternalEnv

	// Contexts returns fresh contexts to run the program against. Each of
	// them is run separately.
	Contexts func() []*runtime.Context
}

// Env returns the environments used by the samples. The local one declares the
// integer x and the boolean ok, neither of which has a static value, and the
// external one provides the string host.
func Env() (*state.LocalEnv, *state.ExternalEnv) {
	local := state.NewLocalEnv()
	local.DeclareVariable(state.NewBinding("x", types.Integer()))
	local.DeclareVariable(state.NewBinding("ok", types.Boolean()))
	external, err := state.NewExternalEnv(state.NewBinding("host", types.String()))
	if err != nil {
		panic(err) // static input
	}
	return local, external
}

// Contexts returns the usual spread of states: empty, partly populated and
// fully populated.
func Contexts() []*runtime.Context {
	empty := runtime.NewContext(nil)

	partial := runtime.NewContext(nil)
	partial.State().SetVariable("x", types.NewInt(5))

	full := runtime.NewContext(nil)
	full.State().SetVariable("x", types.NewInt(7))
	full.State().SetVariable("ok", types.NewBool(true))
	full.SetAmbient("host", types.NewStr("example.com"))

	wrong := runtime.NewContext(nil) // a null where a boolean is expected
	wrong.State().SetVariable("ok", types.NewNull())

	return []*runtime.Context{empty, partial, full, wrong}
}

func must[T any](x T, err error) T {
	if err != nil {
		panic(err)
	}
	return x
}

// Samples returns one expression of each kind, built in the environments from
// Env.
func Samples() (map[ast.Kind]ast.Expr, *state.LocalEnv, *state.ExternalEnv) {
	local, external := Env()
	span := interfaces.Span{}
	kw := diagnostic.DefaultKeywords()

	samples := make(map[ast.Kind]ast.Expr)
	samples[ast.KindLiteral] = ast.NewLiteral(span, types.NewInt(3))
	samples[ast.KindVariable] = must(ast.NewVariable(span, "x", local, kw))
	samples[ast.KindAmbient] = must(ast.NewAmbient(span, "host", external, kw))
	samples[ast.KindIf] = must(ast.NewIf(span,
		must(ast.NewVariable(span, "ok", local, kw)),
		ast.NewLiteral(span, types.NewStr("yes")),
		ast.NewLiteral(span, types.NewStr("no")),
		local, external,
	))
	samples[ast.KindAssignment] = ast.NewAssignment(span, "y", ast.NewLiteral(span, types.NewFloat(1.5)), local, external)
	samples[ast.KindBlock] = ast.NewBlock(span, []ast.Expr{
		samples[ast.KindAssignment],
		must(ast.NewVariable(span, "y", local, kw)),
	}, local, external)

	for _, k := range ast.Kinds() {
		if _, exists := samples[k]; !exists {
			panic(fmt.Sprintf("no sample for kind %s", k))
		}
	}
	return samples, local, external
}

// Cases returns whole programs to compare the backends with.
func Cases() []*Case {
	span := interfaces.Span{}
	kw := diagnostic.DefaultKeywords()
	cases := []*Case{}

	samples, local, external := Samples()
	for _, k := range ast.Kinds() {
		cases = append(cases, &Case{
			Name:     "sample " + k.String(),
			Expr:     samples[k],
			Local:    local,
			External: external,
			Contexts: Contexts,
		})
	}

	{
		local, external := Env()
		x := must(ast.NewVariable(span, "x", local, kw))
		cases = append(cases, &Case{
			Name:     "two reads of x",
			Expr:     ast.NewBlock(span, []ast.Expr{x, x}, local, external),
			Local:    local,
			External: external,
			Contexts: Contexts,
		})
	}
	{
		local, external := Env()
		cases = append(cases, &Case{
			Name:     "noop",
			Expr:     ast.NewNoopVariable(span, "x"),
			Local:    local,
			External: external,
			Contexts: Contexts,
		})
	}
	{
		local, external := Env()
		cases = append(cases, &Case{
			Name:     "empty block",
			Expr:     ast.NewBlock(span, nil, local, external),
			Local:    local,
			External: external,
			Contexts: Contexts,
		})
	}
	{
		// x = x; { z = %host; z }; if ok { x = 1 }; x
		local, external := Env()
		first := ast.NewAssignment(span, "x", must(ast.NewVariable(span, "x", local, kw)), local, external)
		local.PushScope()
		inner := ast.NewAssignment(span, "z", must(ast.NewAmbient(span, "host", external, kw)), local, external)
		block := ast.NewBlock(span, []ast.Expr{inner, must(ast.NewVariable(span, "z", local, kw))}, local, external)
		if err := local.PopScope(); err != nil {
			panic(err)
		}
		cond := must(ast.NewIf(span,
			must(ast.NewVariable(span, "ok", local, kw)),
			ast.NewAssignment(span, "x", ast.NewLiteral(span, types.NewInt(1)), local, external),
			nil,
			local, external,
		))
		last := must(ast.NewVariable(span, "x", local, kw))
		cases = append(cases, &Case{
			Name:     "program",
			Expr:     ast.NewBlock(span, []ast.Expr{first, block, cond, last}, local, external),
			Local:    local,
			External: external,
			Contexts: Contexts,
		})
	}
	{
		// if ok { if ok { "a" } else { "b" } } else { [x, "c"] literal }
		local, external := Env()
		ok := must(ast.NewVariable(span, "ok", local, kw))
		nested := must(ast.NewIf(span, ok,
			must(ast.NewIf(span, ok,
				ast.NewLiteral(span, types.NewStr("a")),
				ast.NewLiteral(span, types.NewStr("b")),
				local, external,
			)),
			ast.NewLiteral(span, types.NewList(types.NewInt(1), types.NewStr("c"))),
			local, external,
		))
		cases = append(cases, &Case{
			Name:     "nested if",
			Expr:     nested,
			Local:    local,
			External: external,
			Contexts: Contexts,
		})
	}

	return cases
}
