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

// Package vm contains the bytecode compiler and the virtual machine which runs
// its output. Every reference to a variable or ambient binding is compiled into
// a slot of the target table of the program. A slot is assigned the first time
// a target is seen and never changes after that, so that every instruction in
// the program can refer to it by number.
package vm

import (
	"github.com/purpleidea/remap/lang/ast"
	"github.com/purpleidea/remap/lang/backend"
	"github.com/purpleidea/remap/lang/runtime"
	"github.com/purpleidea/remap/lang/state"
	"github.com/purpleidea/remap/lang/types"
)

// Name is the name this strategy is registered under.
const Name = "vm"

func init() {
	backend.Register(Name, func() backend.Strategy { return &Strategy{} })
}

// Strategy compiles expressions into bytecode.
type Strategy struct {
	// Debug represents if we're running in debug mode or not.
	Debug bool

	// Logf is a logger which should be used.
	Logf func(format string, v ...interface{})
}

// Name returns the name of this strategy.
func (obj *Strategy) Name() string { return Name }

// Init stores the logger and debug flag.
func (obj *Strategy) Init(data *backend.Data) error {
	obj.Debug = data.Debug
	obj.Logf = data.Logf
	return nil
}

// Compile turns the expression into a program.
func (obj *Strategy) Compile(expr ast.Expr, local *state.LocalEnv, external *state.ExternalEnv) (backend.Executable, error) {
	program, err := Compile(expr, local, external)
	if err != nil {
		return nil, err
	}
	if obj.Debug && obj.Logf != nil {
		obj.Logf("compiled %d bytes, %d targets", program.Len(), len(program.targets))
	}
	return &Executable{
		Program: program,
		machine: &Machine{
			Debug: obj.Debug,
			Logf:  obj.Logf,
		},
	}, nil
}

// Executable is a compiled program along with the machine that runs it.
type Executable struct {
	Program *Program

	machine *Machine
}

// Run executes the program.
func (obj *Executable) Run(ctx *runtime.Context) (types.Value, error) {
	return obj.machine.Run(ctx, obj.Program)
}
