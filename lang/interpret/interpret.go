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

// Package interpret contains the tree walking evaluator. It is the reference
// execution strategy: the other backends must agree with it on every program.
package interpret

import (
	"fmt"

	"github.com/purpleidea/remap/lang/ast"
	"github.com/purpleidea/remap/lang/backend"
	"github.com/purpleidea/remap/lang/interfaces"
	"github.com/purpleidea/remap/lang/runtime"
	"github.com/purpleidea/remap/lang/state"
	"github.com/purpleidea/remap/lang/types"
)

// Name is the name this strategy is registered under.
const Name = "interpret"

func init() {
	backend.Register(Name, func() backend.Strategy { return &Interpreter{} })
}

// Resolve evaluates the expression against the context. A reference to a
// variable or ambient binding that has no value is null, and never an error.
func Resolve(expr ast.Expr, ctx *runtime.Context) (types.Value, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return e.Value(), nil

	case *ast.Variable:
		if e.IsNoop() {
			return types.NewNull(), nil
		}
		if v, exists := ctx.State().Variable(e.Ident()); exists {
			return v, nil
		}
		return types.NewNull(), nil // declared, but not populated

	case *ast.Ambient:
		if v, exists := ctx.Ambient(e.Ident()); exists {
			return v, nil
		}
		return types.NewNull(), nil

	case *ast.Assignment:
		v, err := Resolve(e.Expr(), ctx)
		if err != nil {
			return nil, err
		}
		ctx.State().SetVariable(e.Ident(), v)
		return v, nil

	case *ast.Block:
		var result types.Value = types.NewNull()
		for _, x := range e.Exprs() {
			v, err := Resolve(x, ctx)
			if err != nil {
				return nil, err
			}
			result = v
		}
		return result, nil

	case *ast.If:
		p, err := Resolve(e.Predicate(), ctx)
		if err != nil {
			return nil, err
		}
		if types.IsTruthy(p) {
			return Resolve(e.Consequent(), ctx)
		}
		if e.Alternative() == nil {
			return types.NewNull(), nil
		}
		return Resolve(e.Alternative(), ctx)
	}

	return nil, fmt.Errorf("%w: %T", interfaces.ErrUnsupportedNode, expr)
}

// Interpreter is the strategy which runs the expression tree directly. There is
// nothing stateful here, and compiling is only a matter of keeping the tree.
type Interpreter struct {
	// Debug represents if we're running in debug mode or not.
	Debug bool

	// Logf is a logger which should be used.
	Logf func(format string, v ...interface{})
}

// Name returns the name of this strategy.
func (obj *Interpreter) Name() string { return Name }

// Init stores the logger and debug flag.
func (obj *Interpreter) Init(data *backend.Data) error {
	obj.Debug = data.Debug
	obj.Logf = data.Logf
	return nil
}

// Compile returns an executable which walks the tree on each run.
func (obj *Interpreter) Compile(expr ast.Expr, local *state.LocalEnv, external *state.ExternalEnv) (backend.Executable, error) {
	if expr == nil {
		return nil, fmt.Errorf("nil expression")
	}
	if obj.Debug && obj.Logf != nil {
		obj.Logf("tree: %s", expr)
	}
	return &executable{expr: expr}, nil
}

type executable struct {
	expr ast.Expr
}

// Run evaluates the tree.
func (obj *executable) Run(ctx *runtime.Context) (types.Value, error) {
	return Resolve(obj.expr, ctx)
}
