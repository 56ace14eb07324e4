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

	"github.com/purpleidea/remap/lang/interpret"
	"github.com/purpleidea/remap/lang/runtime"
	"github.com/purpleidea/remap/lang/types"
	"github.com/purpleidea/remap/util/errwrap"
)

// Frame is the state of one run of a linked function.
type Frame struct {
	Context *runtime.Context
	Result  types.Value

	module *Module
}

// Helper is a runtime support routine which a call can be bound to. The
// operands have already been checked by the linker.
type Helper func(frame *Frame, args []Operand) error

// Helpers returns the runtime support routines by symbol name.
func Helpers() map[string]Helper {
	return map[string]Helper{
		HelperConstant:  constantImpl,
		HelperVariable:  variableImpl,
		HelperAmbient:   ambientImpl,
		HelperAssign:    assignImpl,
		HelperInterpret: interpretImpl,
	}
}

// signatures lists the operand kinds that each helper takes.
var signatures = map[string][]OperandKind{
	HelperConstant:  {OperandConstant, OperandResult},
	HelperVariable:  {OperandCell, OperandResult},
	HelperAmbient:   {OperandCell, OperandResult},
	HelperAssign:    {OperandCell, OperandResult},
	HelperInterpret: {OperandFallback, OperandResult},
}

func constantImpl(frame *Frame, args []Operand) error {
	frame.Result = frame.module.Constants[args[0].Index].Copy()
	return nil
}

func variableImpl(frame *Frame, args []Operand) error {
	cell := frame.module.Cells[args[0].Index]
	v, exists := frame.Context.State().Variable(cell.Target.Ident)
	if !exists {
		v = types.NewNull() // declared, but not populated
	}
	frame.Result = v
	return nil
}

func ambientImpl(frame *Frame, args []Operand) error {
	cell := frame.module.Cells[args[0].Index]
	v, exists := frame.Context.Ambient(cell.Target.Ident)
	if !exists {
		v = types.NewNull()
	}
	frame.Result = v
	return nil
}

func assignImpl(frame *Frame, args []Operand) error {
	cell := frame.module.Cells[args[0].Index]
	frame.Context.State().SetVariable(cell.Target.Ident, frame.Result)
	return nil
}

func interpretImpl(frame *Frame, args []Operand) error {
	v, err := interpret.Resolve(frame.module.Fallbacks[args[0].Index], frame.Context)
	if err != nil {
		return err
	}
	frame.Result = v
	return nil
}

// instruction is a call after linking.
type instruction struct {
	helper Helper
	args   []Operand
}

// linkedBlock is a basic block after linking.
type linkedBlock struct {
	instructions []instruction
	next         int // index of the branch target, or -1 to return
}

// Executable is a linked function, ready to run.
type Executable struct {
	module *Module
	blocks []linkedBlock
}

// Link resolves every call in the named function against the helper table and
// checks every operand. The result can be run many times at once.
func Link(module *Module, name string, helpers map[string]Helper) (*Executable, error) {
	fn, exists := module.Function(name)
	if !exists {
		return nil, fmt.Errorf("undefined function: %s", name)
	}
	if len(fn.Blocks) == 0 {
		return nil, fmt.Errorf("function %s has no blocks", name)
	}

	index := make(map[*BasicBlock]int)
	for i, b := range fn.Blocks {
		index[b] = i
	}

	blocks := []linkedBlock{}
	for _, b := range fn.Blocks {
		if !b.Terminated() {
			return nil, fmt.Errorf("block %s is not terminated", b.Name)
		}
		lb := linkedBlock{next: -1}
		if b.next != nil {
			i, exists := index[b.next]
			if !exists {
				return nil, fmt.Errorf("block %s branches out of the function", b.Name)
			}
			lb.next = i
		}
		for _, c := range b.Calls {
			helper, exists := helpers[c.Callee]
			if !exists {
				return nil, fmt.Errorf("undefined symbol: %s", c.Callee)
			}
			if err := checkArgs(module, c); err != nil {
				return nil, errwrap.Wrapf(err, "block %s", b.Name)
			}
			lb.instructions = append(lb.instructions, instruction{
				helper: helper,
				args:   c.Args,
			})
		}
		blocks = append(blocks, lb)
	}

	return &Executable{
		module: module,
		blocks: blocks,
	}, nil
}

func checkArgs(module *Module, c *Call) error {
	sig, exists := signatures[c.Callee]
	if !exists {
		return nil // a helper we don't know the shape of
	}
	if len(sig) != len(c.Args) {
		return fmt.Errorf("%s takes %d arguments, got %d", c.Callee, len(sig), len(c.Args))
	}
	for i, arg := range c.Args {
		if arg.Kind != sig[i] {
			return fmt.Errorf("%s: argument %d has the wrong kind", c.Callee, i)
		}
		size := 0
		switch arg.Kind {
		case OperandResult:
			continue
		case OperandCell:
			size = len(module.Cells)
		case OperandConstant:
			size = len(module.Constants)
		case OperandFallback:
			size = len(module.Fallbacks)
		}
		if arg.Index < 0 || arg.Index >= size {
			return fmt.Errorf("%s: argument %d is out of range", c.Callee, i)
		}
	}
	return nil
}

// Run executes the function from its entry block and returns the value that is
// left in the result slot.
func (obj *Executable) Run(ctx *runtime.Context) (types.Value, error) {
	frame := &Frame{
		Context: ctx,
		Result:  types.NewNull(),
		module:  obj.module,
	}
	steps := 0
	for i := 0; i >= 0; i = obj.blocks[i].next {
		if steps++; steps > len(obj.blocks) {
			return nil, fmt.Errorf("loop detected at block %d", i) // nothing we build can loop
		}
		for _, x := range obj.blocks[i].instructions {
			if err := x.helper(frame, x.args); err != nil {
				return nil, err
			}
		}
	}
	return frame.Result, nil
}
