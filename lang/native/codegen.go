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

package native

import (
	"fmt"

	"github.com/purpleidea/remap/lang/ast"
	"github.com/purpleidea/remap/lang/interfaces"
	"github.com/purpleidea/remap/lang/types"
	"github.com/purpleidea/remap/lang/vm"
	"github.com/purpleidea/remap/util/errwrap"
)

// EntryFunction is the name of the function that a compiled unit starts in.
const EntryFunction = "remap_main"

const (
	// HelperConstant copies a constant into the result slot.
	HelperConstant = "remap_expression_constant_impl"

	// HelperVariable copies the value of a local variable into the result
	// slot, or null if it has no value.
	HelperVariable = "remap_expression_variable_impl"

	// HelperAmbient copies the value of an ambient binding into the result
	// slot, or null if it has no value.
	HelperAmbient = "remap_expression_ambient_impl"

	// HelperAssign stores the result slot in a local variable.
	HelperAssign = "remap_expression_assign_impl"

	// HelperInterpret runs an expression with the interpreter and puts its
	// value in the result slot. It is used for every kind of node which has
	// no lowering of its own.
	HelperInterpret = "remap_expression_interpret_impl"
)

// Context is the state of the code generator while it lowers one unit.
type Context struct {
	Module   *Module
	Function *Function
	Builder  *Builder

	cells map[vm.Variable]*Cell
}

// NewContext returns a code generator for a new module with an empty entry
// function.
func NewContext(name string) *Context {
	module := NewModule(name)
	fn := module.AddFunction(EntryFunction)
	builder := &Builder{}
	builder.PositionAtEnd(fn.Blocks[0])
	return &Context{
		Module:   module,
		Function: fn,
		Builder:  builder,
		cells:    make(map[vm.Variable]*Cell),
	}
}

// Cell returns the storage cell of the target. It is created the first time it
// is asked for, and the same cell is returned after that.
func (obj *Context) Cell(target vm.Variable) Operand {
	cell, exists := obj.cells[target]
	if !exists {
		cell = &Cell{
			Index:  len(obj.Module.Cells),
			Target: target,
		}
		obj.Module.Cells = append(obj.Module.Cells, cell)
		obj.cells[target] = cell
	}
	return Operand{Kind: OperandCell, Index: cell.Index}
}

// Lowered returns true if the kind of node has a lowering of its own. Every
// other kind is run by the interpreter.
func Lowered(kind ast.Kind) bool {
	switch kind {
	case ast.KindLiteral, ast.KindVariable, ast.KindAmbient, ast.KindAssignment, ast.KindBlock:
		return true
	case ast.KindIf:
		return false
	}
	return false
}

// Emit appends the code for the expression at the position of the builder. The
// value of the expression ends up in the result slot.
func (obj *Context) Emit(expr ast.Expr) error {
	if !Lowered(expr.Kind()) {
		_, err := obj.Builder.BuildCall(HelperInterpret, obj.Module.AddFallback(expr), Result())
		return err
	}

	switch e := expr.(type) {
	case *ast.Literal:
		_, err := obj.Builder.BuildCall(HelperConstant, obj.Module.AddConstant(e.Value()), Result())
		return err

	case *ast.Variable:
		if e.IsNoop() {
			_, err := obj.Builder.BuildCall(HelperConstant, obj.Module.AddConstant(types.NewNull()), Result())
			return err
		}
		return obj.emitLoad("variable_begin", HelperVariable, vm.Internal(e.Ident()))

	case *ast.Ambient:
		return obj.emitLoad("ambient_begin", HelperAmbient, vm.External(e.Ident()))

	case *ast.Assignment:
		if err := obj.Emit(e.Expr()); err != nil {
			return err
		}
		_, err := obj.Builder.BuildCall(HelperAssign, obj.Cell(vm.Internal(e.Ident())), Result())
		return err

	case *ast.Block:
		exprs := e.Exprs()
		if len(exprs) == 0 {
			_, err := obj.Builder.BuildCall(HelperConstant, obj.Module.AddConstant(types.NewNull()), Result())
			return err
		}
		for i, x := range exprs {
			if err := obj.Emit(x); err != nil {
				return errwrap.Wrapf(err, "block expression %d", i)
			}
		}
		return nil
	}

	return fmt.Errorf("%w: %T", interfaces.ErrUnsupportedNode, expr)
}

// emitLoad opens a new block, branches into it, and calls the helper with the
// cell of the target.
func (obj *Context) emitLoad(name, helper string, target vm.Variable) error {
	block := obj.Function.AppendBasicBlock(name)
	if err := obj.Builder.BuildBr(block); err != nil {
		return err
	}
	obj.Builder.PositionAtEnd(block)
	_, err := obj.Builder.BuildCall(helper, obj.Cell(target), Result())
	return err
}

// Finish terminates the function. No more code can be emitted after this.
func (obj *Context) Finish() error {
	return obj.Builder.BuildRet()
}
