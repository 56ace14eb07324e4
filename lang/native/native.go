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

// Package native contains the ahead of time backend. An expression is lowered
// into a module of basic blocks whose instructions are calls of small runtime
// helpers, and the module is then linked into a function that runs without
// looking at the tree again. The helpers do the exact same thing as the
// interpreter and the virtual machine, and any kind of node that has no
// lowering is handed to the interpreter.
package native

import (
	"github.com/purpleidea/remap/lang/ast"
	"github.com/purpleidea/remap/lang/backend"
	"github.com/purpleidea/remap/lang/state"
	"github.com/purpleidea/remap/util/errwrap"
)

// Name is the name this strategy is registered under.
const Name = "native"

func init() {
	if !Supported() {
		return
	}
	backend.Register(Name, func() backend.Strategy { return &Strategy{} })
}

// Supported returns true if this build can generate native code. It is false
// when built with the remap_nonative tag.
func Supported() bool { return supported }

// Strategy compiles expressions ahead of time.
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

// Compile lowers the expression into a module and links it.
func (obj *Strategy) Compile(expr ast.Expr, local *state.LocalEnv, external *state.ExternalEnv) (backend.Executable, error) {
	module, err := Generate(expr)
	if err != nil {
		return nil, err
	}
	if obj.Debug && obj.Logf != nil {
		obj.Logf("module:\n%s", module)
	}
	return Link(module, EntryFunction, Helpers())
}

// Generate lowers the expression into a new module.
func Generate(expr ast.Expr) (*Module, error) {
	ctx := NewContext("remap")
	if err := ctx.Emit(expr); err != nil {
		return nil, errwrap.Wrapf(err, "could not lower %s", expr.Kind())
	}
	if err := ctx.Finish(); err != nil {
		return nil, err
	}
	return ctx.Module, nil
}
