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

	"github.com/purpleidea/remap/lang/interfaces"
	"github.com/purpleidea/remap/lang/runtime"
	"github.com/purpleidea/remap/lang/types"
)

// Machine runs programs. It has no state of its own between runs, so one
// machine can run many programs at once, as long as each run has its own
// context.
type Machine struct {
	// Debug represents if we're running in debug mode or not.
	Debug bool

	// Logf is a logger which should be used.
	Logf func(format string, v ...interface{})
}

// malformed builds the error for a broken program. It can only happen if the
// compiler has a bug, or if the program was built by hand.
func malformed(pc int, format string, v ...interface{}) error {
	return fmt.Errorf("%w: at %d: %s", interfaces.ErrMalformedProgram, pc, fmt.Sprintf(format, v...))
}

// Run executes the program against the context and returns the value it
// returned.
func (obj *Machine) Run(ctx *runtime.Context, program *Program) (types.Value, error) {
	stack := []types.Value{}
	pop := func() (types.Value, bool) {
		if len(stack) == 0 {
			return nil, false
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, true
	}

	pc := 0
	for pc < program.Len() {
		at := pc
		op := Opcode(program.instructions[pc])
		pc++

		operand := 0
		if op.HasOperand() {
			n, ok := program.primitive(pc)
			if !ok {
				return nil, malformed(at, "truncated operand for %s", op)
			}
			operand = n
			pc += PrimitiveSize
		}
		if obj.Debug && obj.Logf != nil {
			obj.Logf("%04d %s %d (stack: %d)", at, op, operand, len(stack))
		}

		switch op {
		case OpReturn:
			v, ok := pop()
			if !ok {
				return nil, malformed(at, "return with an empty stack")
			}
			return v, nil

		case OpConstant:
			v, ok := program.Constant(operand)
			if !ok {
				return nil, malformed(at, "no constant %d", operand)
			}
			stack = append(stack, v)

		case OpGetVariable, OpSetVariable, OpGetAmbient:
			if operand >= len(program.targets) {
				return nil, malformed(at, "no target in slot %d", operand)
			}
			target := program.targets[operand]
			if target.External != (op == OpGetAmbient) {
				return nil, malformed(at, "%s used with target %s", op, target)
			}

			if op == OpSetVariable {
				if len(stack) == 0 {
					return nil, malformed(at, "set with an empty stack")
				}
				ctx.State().SetVariable(target.Ident, stack[len(stack)-1])
				continue
			}

			var v types.Value
			var exists bool
			if op == OpGetAmbient {
				v, exists = ctx.Ambient(target.Ident)
			} else {
				v, exists = ctx.State().Variable(target.Ident)
			}
			if !exists {
				v = types.NewNull() // declared, but not populated
			}
			stack = append(stack, v)

		case OpPop:
			if _, ok := pop(); !ok {
				return nil, malformed(at, "pop with an empty stack")
			}

		case OpJump, OpJumpIfFalse:
			if operand > program.Len() {
				return nil, malformed(at, "jump past the end to %d", operand)
			}
			if op == OpJumpIfFalse {
				v, ok := pop()
				if !ok {
					return nil, malformed(at, "branch with an empty stack")
				}
				if types.IsTruthy(v) {
					continue
				}
			}
			pc = operand

		default:
			return nil, malformed(at, "unknown opcode %s", op)
		}
	}

	return nil, malformed(pc, "program ended without a return")
}
