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
	"encoding/binary"
	"fmt"
	"math"

	"github.com/purpleidea/remap/lang/interfaces"
	"github.com/purpleidea/remap/lang/types"
)

// PrimitiveSize is the width in bytes of every operand.
const PrimitiveSize = 4

// Variable is the identity of a target in the target table. Internal targets
// are local variables, and external ones are ambient bindings, so the same name
// can have one slot of each.
type Variable struct {
	External bool
	Ident    interfaces.Ident
}

// Internal returns the target identity of a local variable.
func Internal(ident interfaces.Ident) Variable { return Variable{Ident: ident} }

// External returns the target identity of an ambient binding.
func External(ident interfaces.Ident) Variable { return Variable{External: true, Ident: ident} }

// String returns a short representation of the target.
func (obj Variable) String() string {
	if obj.External {
		return interfaces.AmbientPrefix + obj.Ident.String()
	}
	return obj.Ident.String()
}

// Program is the output of the compiler. It is a stream of instructions, the
// constants they refer to, and the table of targets. A program is built once
// and can then be run many times at once, since running it never changes it.
type Program struct {
	instructions []byte
	constants    []types.Value

	targets []Variable       // slot -> target
	index   map[Variable]int // target -> slot
}

// NewProgram returns an empty program.
func NewProgram() *Program {
	return &Program{
		instructions: []byte{},
		constants:    []types.Value{},
		targets:      []Variable{},
		index:        make(map[Variable]int),
	}
}

// Len returns the length of the instruction stream. This is also the offset at
// which the next instruction will be written.
func (obj *Program) Len() int { return len(obj.instructions) }

// WriteOpcode appends an opcode.
func (obj *Program) WriteOpcode(op Opcode) {
	obj.instructions = append(obj.instructions, byte(op))
}

// WritePrimitive appends a fixed width big endian operand.
func (obj *Program) WritePrimitive(n int) error {
	if n < 0 || int64(n) > math.MaxUint32 {
		return fmt.Errorf("primitive out of range: %d", n)
	}
	obj.instructions = binary.BigEndian.AppendUint32(obj.instructions, uint32(n))
	return nil
}

// Target returns the slot of the target, allocating the next free one if the
// target has never been seen. Slots are never renumbered.
func (obj *Program) Target(v Variable) int {
	if slot, exists := obj.index[v]; exists {
		return slot
	}
	slot := len(obj.targets)
	obj.targets = append(obj.targets, v)
	obj.index[v] = slot
	return slot
}

// Targets returns the target table, indexed by slot.
func (obj *Program) Targets() []Variable {
	return append([]Variable{}, obj.targets...)
}

// AddConstant stores a copy of the value in the constant pool and returns its
// index.
func (obj *Program) AddConstant(v types.Value) int {
	obj.constants = append(obj.constants, v.Copy())
	return len(obj.constants) - 1
}

// Constant returns a copy of the constant at the index.
func (obj *Program) Constant(index int) (types.Value, bool) {
	if index < 0 || index >= len(obj.constants) {
		return nil, false
	}
	return obj.constants[index].Copy(), true
}

// EmitJump writes a jump opcode with a placeholder destination, and returns the
// offset of the placeholder so that it can be patched later.
func (obj *Program) EmitJump(op Opcode) int {
	obj.WriteOpcode(op)
	at := obj.Len()
	obj.instructions = append(obj.instructions, 0xff, 0xff, 0xff, 0xff)
	return at
}

// PatchJump points the jump placeholder at the offset to the current end of the
// instruction stream.
func (obj *Program) PatchJump(at int) error {
	if at < 1 || at+PrimitiveSize > obj.Len() {
		return fmt.Errorf("no jump to patch at %d", at)
	}
	if op := Opcode(obj.instructions[at-1]); op != OpJump && op != OpJumpIfFalse {
		return fmt.Errorf("no jump to patch at %d, found %s", at, op)
	}
	binary.BigEndian.PutUint32(obj.instructions[at:], uint32(obj.Len()))
	return nil
}

// Instructions returns a copy of the instruction stream.
func (obj *Program) Instructions() []byte {
	return append([]byte{}, obj.instructions...)
}

// primitive reads the operand at the offset.
func (obj *Program) primitive(at int) (int, bool) {
	if at < 0 || at+PrimitiveSize > len(obj.instructions) {
		return 0, false
	}
	return int(binary.BigEndian.Uint32(obj.instructions[at:])), true
}
