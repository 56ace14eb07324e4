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
)

// Opcode is a single instruction of the virtual machine. Some opcodes are
// followed by an operand, which is always a fixed width primitive.
type Opcode byte

const (
	// OpReturn pops the top of the stack and ends the program with it.
	OpReturn Opcode = iota

	// OpConstant pushes a copy of the constant whose index follows.
	OpConstant

	// OpGetVariable pushes the value of the internal target whose slot
	// follows, or null if it has no value.
	OpGetVariable

	// OpSetVariable stores the top of the stack in the internal target
	// whose slot follows. The value stays on the stack.
	OpSetVariable

	// OpGetAmbient pushes the value of the external target whose slot
	// follows, or null if it has no value.
	OpGetAmbient

	// OpPop discards the top of the stack.
	OpPop

	// OpJump continues at the absolute offset which follows.
	OpJump

	// OpJumpIfFalse pops the top of the stack, and continues at the
	// absolute offset which follows unless the value was the boolean true.
	OpJumpIfFalse
)

var opcodeNames = map[Opcode]string{
	OpReturn:      "OpReturn",
	OpConstant:    "OpConstant",
	OpGetVariable: "OpGetVariable",
	OpSetVariable: "OpSetVariable",
	OpGetAmbient:  "OpGetAmbient",
	OpPop:         "OpPop",
	OpJump:        "OpJump",
	OpJumpIfFalse: "OpJumpIfFalse",
}

// String returns the name of the opcode.
func (op Opcode) String() string {
	if s, exists := opcodeNames[op]; exists {
		return s
	}
	return fmt.Sprintf("Op(%d)", byte(op))
}

// HasOperand returns true if the opcode is followed by a primitive.
func (op Opcode) HasOperand() bool {
	switch op {
	case OpConstant, OpGetVariable, OpSetVariable, OpGetAmbient, OpJump, OpJumpIfFalse:
		return true
	}
	return false
}
