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
	"strings"
)

// Disassemble returns a listing of the program, one instruction per line,
// followed by the target table.
func Disassemble(program *Program) string {
	result := &strings.Builder{}
	pc := 0
	for pc < program.Len() {
		op := Opcode(program.instructions[pc])
		fmt.Fprintf(result, "%04d %s", pc, op)
		pc++
		if op.HasOperand() {
			operand, ok := program.primitive(pc)
			if !ok {
				result.WriteString(" <truncated>\n")
				break
			}
			pc += PrimitiveSize
			fmt.Fprintf(result, " %d", operand)
			switch op {
			case OpConstant:
				if v, ok := program.Constant(operand); ok {
					fmt.Fprintf(result, " (%s)", v)
				}
			case OpGetVariable, OpSetVariable, OpGetAmbient:
				if operand < len(program.targets) {
					fmt.Fprintf(result, " (%s)", program.targets[operand])
				}
			}
		}
		result.WriteString("\n")
	}

	result.WriteString("targets:\n")
	for slot, v := range program.targets {
		fmt.Fprintf(result, "%4d %s\n", slot, v)
	}
	return result.String()
}
