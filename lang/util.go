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

package lang

import (
	"fmt"

	"github.com/purpleidea/remap/lang/ast"
	"github.com/purpleidea/remap/lang/backend"
	"github.com/purpleidea/remap/lang/native"
	"github.com/purpleidea/remap/lang/runtime"
	"github.com/purpleidea/remap/lang/state"
	"github.com/purpleidea/remap/lang/types"
	"github.com/purpleidea/remap/lang/vm"
	"github.com/purpleidea/remap/util/errwrap"
)

// Equivalent compiles the expression with each of the named backends, runs
// each one against its own fresh context, and checks that they all return the
// same value and leave the same state behind. The first backend is the one
// the others are compared to. If no names are given, every registered backend
// is used.
func Equivalent(expr ast.Expr, local *state.LocalEnv, external *state.ExternalEnv, newContext func() *runtime.Context, names ...string) error {
	if len(names) == 0 {
		names = backend.Names()
	}

	var first string
	var want types.Value
	var wantState types.Value
	for _, name := range names {
		strategy, err := backend.Lookup(name)
		if err != nil {
			return err
		}
		if err := strategy.Init(&backend.Data{}); err != nil {
			return err
		}
		exec, err := strategy.Compile(expr, local, external)
		if err != nil {
			return errwrap.Wrapf(err, "backend %s could not compile", name)
		}
		ctx := newContext()
		v, err := exec.Run(ctx)
		if err != nil {
			return errwrap.Wrapf(err, "backend %s could not run", name)
		}
		st := ctx.State().Object()

		if want == nil {
			first, want, wantState = name, v, st
			continue
		}
		if err := want.Cmp(v); err != nil {
			return fmt.Errorf("backend %s returned %s, but %s returned %s", name, v, first, want)
		}
		if err := wantState.Cmp(st); err != nil {
			return fmt.Errorf("backend %s left state %s, but %s left %s", name, st, first, wantState)
		}
	}
	return nil
}

// Listing returns the compiled form of the bound program for backends which
// have one. It is for humans, and the format can change.
func (obj *Lang) Listing(name string) (string, error) {
	if obj.program == nil {
		return "", fmt.Errorf("program is not bound")
	}
	switch name {
	case vm.Name:
		program, err := vm.Compile(obj.program.Expr, obj.program.Local, obj.program.External)
		if err != nil {
			return "", err
		}
		return vm.Disassemble(program), nil

	case native.Name:
		module, err := native.Generate(obj.program.Expr)
		if err != nil {
			return "", err
		}
		return module.String(), nil
	}
	return "", fmt.Errorf("backend %s has no listing", name)
}
