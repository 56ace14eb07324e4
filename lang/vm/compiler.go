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

package vm

import (
	"fmt"

	"github.com/purpleidea/remap/lang/ast"
	"github.com/purpleidea/remap/lang/interfaces"
	"github.com/purpleidea/remap/lang/state"
	"github.com/purpleidea/remap/lang/types"
	"github.com/purpleidea/remap/util/errwrap"
)

// Compile builds a whole program out of the expression. The program returns the
// value of the expression.
func Compile(expr ast.Expr, local *state.LocalEnv, external *state.ExternalEnv) (*Program, error) {
	program := NewProgram()
	if err := Emit(program, expr, local, external); err != nil {
		return nil, err
	}
	program.WriteOpcode(OpReturn)
	return program, nil
}

// Emit appends the code for the expression to the program. When the code runs,
// it leaves exactly one value on the stack.
func Emit(program *Program, expr ast.Expr, local *state.LocalEnv, external *state.ExternalEnv) error {
	switch e := expr.(type) {
	case *ast.Literal:
		return emitConstant(program, e.Value())

	case *ast.Variable:
		if e.IsNoop() {
			return emitConstant(program, types.NewNull())
		}
		program.WriteOpcode(OpGetVariable)
		return program.WritePrimitive(program.Target(Internal(e.Ident())))

	case *ast.Ambient:
		program.WriteOpcode(OpGetAmbient)
		return program.WritePrimitive(program.Target(External(e.Ident())))

	case *ast.Assignment:
		if err := Emit(program, e.Expr(), local, external); err != nil {
			return err
		}
		program.WriteOpcode(OpSetVariable)
		return program.WritePrimitive(program.Target(Internal(e.Ident())))

	case *ast.Block:
		exprs := e.Exprs()
		if len(exprs) == 0 {
			return emitConstant(program, types.NewNull())
		}
		for i, x := range exprs {
			if i > 0 {
				program.WriteOpcode(OpPop) // only the last value is kept
			}
			if err := Emit(program, x, local, external); err != nil {
				return errwrap.Wrapf(err, "block expression %d", i)
			}
		}
		return nil

	case *ast.If:
		if err := Emit(program, e.Predicate(), local, external); err != nil {
			return errwrap.Wrapf(err, "predicate")
		}
		skip := program.EmitJump(OpJumpIfFalse)
		if err := Emit(program, e.Consequent(), local, external); err != nil {
			return errwrap.Wrapf(err, "consequent")
		}
		end := program.EmitJump(OpJump)
		if err := program.PatchJump(skip); err != nil {
			return err
		}
		if e.Alternative() == nil {
			if err := emitConstant(program, types.NewNull()); err != nil {
				return err
			}
		} else if err := Emit(program, e.Alternative(), local, external); err != nil {
			return errwrap.Wrapf(err, "alternative")
		}
		return program.PatchJump(end)
	}

	return fmt.Errorf("%w: %T", interfaces.ErrUnsupportedNode, expr)
}

func emitConstant(program *Program, v types.Value) error {
	program.WriteOpcode(OpConstant)
	return program.WritePrimitive(program.AddConstant(v))
}
