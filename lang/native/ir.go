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
	"strings"

	"github.com/purpleidea/remap/lang/ast"
	"github.com/purpleidea/remap/lang/types"
	"github.com/purpleidea/remap/lang/vm"
)

// OperandKind says which table of the module an operand indexes into.
type OperandKind int

const (
	// OperandResult is the result slot of the function. It has no index.
	OperandResult OperandKind = iota

	// OperandCell is a storage cell.
	OperandCell

	// OperandConstant is an entry in the constant table.
	OperandConstant

	// OperandFallback is an expression that is handed to the interpreter.
	OperandFallback
)

// Operand is an argument of a call.
type Operand struct {
	Kind  OperandKind
	Index int
}

// Result is the operand for the result slot.
func Result() Operand { return Operand{Kind: OperandResult} }

// String returns the printed form of the operand.
func (obj Operand) String() string {
	switch obj.Kind {
	case OperandResult:
		return "%result"
	case OperandCell:
		return fmt.Sprintf("@cell.%d", obj.Index)
	case OperandConstant:
		return fmt.Sprintf("@const.%d", obj.Index)
	case OperandFallback:
		return fmt.Sprintf("@expr.%d", obj.Index)
	}
	return fmt.Sprintf("?%d", obj.Index)
}

// Call is a call of a runtime helper. The callee is a symbol which is bound to
// a helper by the linker.
type Call struct {
	Callee string
	Args   []Operand
}

// String returns the printed form of the call.
func (obj *Call) String() string {
	args := []string{}
	for _, x := range obj.Args {
		args = append(args, x.String())
	}
	return fmt.Sprintf("call %s(%s)", obj.Callee, strings.Join(args, ", "))
}

// BasicBlock is a straight list of calls which ends with a branch to another
// block or a return.
type BasicBlock struct {
	Name  string
	Calls []*Call

	next       *BasicBlock // branch target, when terminated by a branch
	terminated bool
}

// Terminated returns true once the block has a branch or a return.
func (obj *BasicBlock) Terminated() bool { return obj.terminated }

// Function is a list of basic blocks. The first one is the entry.
type Function struct {
	Name   string
	Blocks []*BasicBlock
}

// AppendBasicBlock adds a new empty block to the end of the function. Names are
// made unique by adding a number, the way most code generators do.
func (obj *Function) AppendBasicBlock(name string) *BasicBlock {
	count := 0
	for _, b := range obj.Blocks {
		if b.Name == name || strings.HasPrefix(b.Name, name+".") {
			count++
		}
	}
	if count > 0 {
		name = fmt.Sprintf("%s.%d", name, count)
	}
	block := &BasicBlock{Name: name}
	obj.Blocks = append(obj.Blocks, block)
	return block
}

// Cell is a storage cell which names the variable or ambient binding that a
// helper reads or writes.
type Cell struct {
	Index  int
	Target vm.Variable
}

// Module is a compilation unit. It holds the functions and the tables that
// their operands refer to.
type Module struct {
	Name      string
	Functions []*Function
	Cells     []*Cell
	Constants []types.Value
	Fallbacks []ast.Expr
}

// NewModule returns an empty module.
func NewModule(name string) *Module {
	return &Module{
		Name:      name,
		Functions: []*Function{},
		Cells:     []*Cell{},
		Constants: []types.Value{},
		Fallbacks: []ast.Expr{},
	}
}

// AddFunction adds a new function with an entry block.
func (obj *Module) AddFunction(name string) *Function {
	fn := &Function{Name: name}
	fn.AppendBasicBlock("entry")
	obj.Functions = append(obj.Functions, fn)
	return fn
}

// Function returns the function with the given name.
func (obj *Module) Function(name string) (*Function, bool) {
	for _, fn := range obj.Functions {
		if fn.Name == name {
			return fn, true
		}
	}
	return nil, false
}

// AddConstant stores a copy of the value and returns its operand.
func (obj *Module) AddConstant(v types.Value) Operand {
	obj.Constants = append(obj.Constants, v.Copy())
	return Operand{Kind: OperandConstant, Index: len(obj.Constants) - 1}
}

// AddFallback stores an expression for the interpreter and returns its operand.
func (obj *Module) AddFallback(expr ast.Expr) Operand {
	obj.Fallbacks = append(obj.Fallbacks, expr)
	return Operand{Kind: OperandFallback, Index: len(obj.Fallbacks) - 1}
}

// String prints the whole module.
func (obj *Module) String() string {
	result := &strings.Builder{}
	fmt.Fprintf(result, "; module %s\n", obj.Name)
	for _, c := range obj.Cells {
		fmt.Fprintf(result, "@cell.%d = cell %s\n", c.Index, c.Target)
	}
	for i, v := range obj.Constants {
		fmt.Fprintf(result, "@const.%d = %s\n", i, v)
	}
	for i, x := range obj.Fallbacks {
		fmt.Fprintf(result, "@expr.%d = %s\n", i, x)
	}
	for _, fn := range obj.Functions {
		fmt.Fprintf(result, "\nfunc %s() {\n", fn.Name)
		for _, b := range fn.Blocks {
			fmt.Fprintf(result, "%s:\n", b.Name)
			for _, c := range b.Calls {
				fmt.Fprintf(result, "  %s\n", c)
			}
			switch {
			case b.next != nil:
				fmt.Fprintf(result, "  br %s\n", b.next.Name)
			case b.terminated:
				result.WriteString("  ret\n")
			}
		}
		result.WriteString("}\n")
	}
	return result.String()
}

// Builder appends instructions at the end of a block.
type Builder struct {
	block *BasicBlock
}

// PositionAtEnd makes the builder append to the block.
func (obj *Builder) PositionAtEnd(block *BasicBlock) { obj.block = block }

// InsertBlock returns the block that the builder appends to.
func (obj *Builder) InsertBlock() *BasicBlock { return obj.block }

// BuildCall appends a call to the current block.
func (obj *Builder) BuildCall(callee string, args ...Operand) (*Call, error) {
	if err := obj.check(); err != nil {
		return nil, err
	}
	call := &Call{
		Callee: callee,
		Args:   append([]Operand{}, args...),
	}
	obj.block.Calls = append(obj.block.Calls, call)
	return call, nil
}

// BuildBr ends the current block with a branch to the destination.
func (obj *Builder) BuildBr(dest *BasicBlock) error {
	if err := obj.check(); err != nil {
		return err
	}
	obj.block.next = dest
	obj.block.terminated = true
	return nil
}

// BuildRet ends the current block with a return.
func (obj *Builder) BuildRet() error {
	if err := obj.check(); err != nil {
		return err
	}
	obj.block.terminated = true
	return nil
}

func (obj *Builder) check() error {
	if obj.block == nil {
		return fmt.Errorf("builder is not positioned")
	}
	if obj.block.terminated {
		return fmt.Errorf("block %s is already terminated", obj.block.Name)
	}
	return nil
}
