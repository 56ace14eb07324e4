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

// Package backend provides the registry of execution strategies. A strategy
// turns an expression tree into something that can be run many times. Every
// strategy must produce the same values for the same program and state.
package backend

import (
	"fmt"
	"sort"

	"github.com/purpleidea/remap/lang/ast"
	"github.com/purpleidea/remap/lang/runtime"
	"github.com/purpleidea/remap/lang/state"
	"github.com/purpleidea/remap/lang/types"
	"github.com/purpleidea/remap/util"
)

// ErrNotFound is returned when looking up a strategy that isn't registered.
const ErrNotFound = util.Error("backend not found")

// Executable is a compiled program. It is read only, so a single executable
// may be run by many goroutines at once, as long as each has its own context.
type Executable interface {
	// Run executes the program against the context and returns the value
	// of the last expression.
	Run(ctx *runtime.Context) (types.Value, error)
}

// Data is the set of things a strategy receives before it compiles anything.
type Data struct {
	// Debug represents if we're running in debug mode or not.
	Debug bool

	// Logf is a logger which should be used.
	Logf func(format string, v ...interface{})
}

// Strategy is a way of executing programs.
type Strategy interface {
	// Name returns the name that the strategy was registered under.
	Name() string

	// Init passes in the logger and debug flag. It must be called once
	// before Compile.
	Init(*Data) error

	// Compile turns an expression into an executable. The environments
	// must be the ones the expression was built with.
	Compile(expr ast.Expr, local *state.LocalEnv, external *state.ExternalEnv) (Executable, error)
}

// registeredStrategies holds the constructors of every known strategy.
var registeredStrategies = make(map[string]func() Strategy) // must initialize

// Register takes a strategy constructor and adds it to the list of available
// strategies. This is usually called in the init() method of the package which
// implements it. It panics if the name is already taken.
func Register(name string, fn func() Strategy) {
	if _, exists := registeredStrategies[name]; exists {
		panic(fmt.Sprintf("a backend named %s is already registered", name))
	}
	registeredStrategies[name] = fn
}

// Lookup returns a new instance of the named strategy.
func Lookup(name string) (Strategy, error) {
	fn, exists := registeredStrategies[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return fn(), nil
}

// Names returns the sorted list of registered strategies.
func Names() []string {
	names := []string{}
	for name := range registeredStrategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
