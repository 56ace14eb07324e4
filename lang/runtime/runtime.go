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

// Package runtime holds the live state that a compiled program runs against.
// Every value that goes into or comes out of it is copied, so that a caller can
// never alias the storage that a later run might write to.
package runtime

import (
	"fmt"
	"sort"

	"github.com/purpleidea/remap/lang/interfaces"
	"github.com/purpleidea/remap/lang/types"
)

// State holds the current value of each variable that has been populated.
type State struct {
	variables map[interfaces.Ident]types.Value
}

// NewState returns an empty state.
func NewState() *State {
	return &State{
		variables: make(map[interfaces.Ident]types.Value),
	}
}

// NewStateFromMap builds a state from plain values, usually decoded from a
// file. Each value is converted into the language value system.
func NewStateFromMap(m map[string]interface{}) (*State, error) {
	obj := NewState()
	for k, x := range m {
		v, err := types.ValueOfGolang(x)
		if err != nil {
			return nil, fmt.Errorf("variable %s: %w", k, err)
		}
		obj.variables[interfaces.Ident(k)] = v
	}
	return obj, nil
}

// Variable returns a copy of the current value of the variable.
func (obj *State) Variable(ident interfaces.Ident) (types.Value, bool) {
	v, exists := obj.variables[ident]
	if !exists {
		return nil, false
	}
	return v.Copy(), true
}

// SetVariable stores a copy of the value.
func (obj *State) SetVariable(ident interfaces.Ident, value types.Value) {
	obj.variables[ident] = value.Copy()
}

// Idents returns the sorted list of populated variables.
func (obj *State) Idents() []interfaces.Ident {
	out := []interfaces.Ident{}
	for k := range obj.variables {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Copy returns a deep copy of the state.
func (obj *State) Copy() *State {
	s := NewState()
	for k, v := range obj.variables {
		s.variables[k] = v.Copy()
	}
	return s
}

// Object returns the whole state as an object value. This is what a run
// reports back to the caller.
func (obj *State) Object() *types.MapValue {
	m := types.NewMap()
	for k, v := range obj.variables {
		m.Set(k.String(), v)
	}
	return m
}

// Context is everything a single run can see. A context must never be shared
// between two runs that happen at the same time.
type Context struct {
	state   *State
	ambient map[interfaces.Ident]types.Value
}

// NewContext builds a context around the given state. A nil state is replaced
// with an empty one.
func NewContext(state *State) *Context {
	if state == nil {
		state = NewState()
	}
	return &Context{
		state:   state,
		ambient: make(map[interfaces.Ident]types.Value),
	}
}

// State returns the live state of this run.
func (obj *Context) State() *State { return obj.state }

// SetAmbient provides the value of an ambient binding. A copy is stored.
func (obj *Context) SetAmbient(ident interfaces.Ident, value types.Value) {
	obj.ambient[ident] = value.Copy()
}

// Ambient returns a copy of the value of an ambient binding.
func (obj *Context) Ambient(ident interfaces.Ident) (types.Value, bool) {
	v, exists := obj.ambient[ident]
	if !exists {
		return nil, false
	}
	return v.Copy(), true
}
