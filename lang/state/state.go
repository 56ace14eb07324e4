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

// Package state contains the compile time environments of the language. The
// local environment tracks the bindings declared by the program itself, scope
// by scope, while the external environment holds the ambient bindings that the
// host makes visible from outside of the compilation unit. Both are plain data
// and neither ever looks at runtime values.
package state

import (
	"fmt"
	"iter"

	"github.com/purpleidea/remap/lang/interfaces"
	"github.com/purpleidea/remap/lang/types"
)

// Binding is a declared identifier with its recorded type descriptor and, when
// it is statically known, its value. A binding is never mutated once declared.
// Reassignment replaces it with a fresh one.
type Binding struct {
	Ident   interfaces.Ident
	TypeDef types.TypeDef

	// Value is the statically known value of the binding, or nil if the
	// value is only known at runtime.
	Value types.Value
}

// NewBinding builds a binding without a known value.
func NewBinding(ident interfaces.Ident, typeDef types.TypeDef) *Binding {
	return &Binding{
		Ident:   ident,
		TypeDef: typeDef,
	}
}

// Copy returns a copy of the binding, including a copy of its known value.
func (obj *Binding) Copy() *Binding {
	b := &Binding{
		Ident:   obj.Ident,
		TypeDef: obj.TypeDef,
	}
	if obj.Value != nil {
		b.Value = obj.Value.Copy()
	}
	return b
}

// String returns a short representation of this binding.
func (obj *Binding) String() string {
	if obj.Value != nil {
		return fmt.Sprintf("%s: %s = %s", obj.Ident, obj.TypeDef, obj.Value)
	}
	return fmt.Sprintf("%s: %s", obj.Ident, obj.TypeDef)
}

// scope is a single level of the local environment. The order list remembers
// the declaration order so that enumeration is deterministic.
type scope struct {
	bindings map[interfaces.Ident]*Binding
	order    []interfaces.Ident
}

func newScope() *scope {
	return &scope{
		bindings: make(map[interfaces.Ident]*Binding),
		order:    []interfaces.Ident{},
	}
}

// set stores the binding and returns whatever it replaced in this scope.
func (obj *scope) set(binding *Binding) *Binding {
	prev, exists := obj.bindings[binding.Ident]
	if !exists {
		obj.order = append(obj.order, binding.Ident)
	}
	obj.bindings[binding.Ident] = binding
	return prev
}

func (obj *scope) copy() *scope {
	s := newScope()
	for _, ident := range obj.order {
		s.bindings[ident] = obj.bindings[ident].Copy()
		s.order = append(s.order, ident)
	}
	return s
}

// LocalEnv maps identifiers to bindings for the current chain of lexical
// scopes. Inner scopes shadow outer ones. It is built up while a program is
// being compiled, and a fresh one is used for every program.
type LocalEnv struct {
	scopes []*scope // the root is at index zero, innermost is last
}

// NewLocalEnv returns an environment with only the root scope in it.
func NewLocalEnv() *LocalEnv {
	return &LocalEnv{
		scopes: []*scope{newScope()},
	}
}

// PushScope opens a new innermost scope.
func (obj *LocalEnv) PushScope() {
	obj.scopes = append(obj.scopes, newScope())
}

// PopScope closes the innermost scope and drops every binding declared in it.
// The root scope can't be popped.
func (obj *LocalEnv) PopScope() error {
	if len(obj.scopes) <= 1 {
		return interfaces.ErrScopeUnderflow
	}
	obj.scopes[len(obj.scopes)-1] = nil
	obj.scopes = obj.scopes[:len(obj.scopes)-1]
	return nil
}

// Depth returns the number of open scopes, including the root.
func (obj *LocalEnv) Depth() int { return len(obj.scopes) }

// lookup returns the binding and the index of the scope which owns it.
func (obj *LocalEnv) lookup(ident interfaces.Ident) (*Binding, int) {
	for i := len(obj.scopes) - 1; i >= 0; i-- { // innermost first
		if b, exists := obj.scopes[i].bindings[ident]; exists {
			return b, i
		}
	}
	return nil, -1
}

// Variable returns the binding for the identifier if it is declared in any of
// the enclosing scopes. The innermost declaration wins.
func (obj *LocalEnv) Variable(ident interfaces.Ident) (*Binding, bool) {
	b, _ := obj.lookup(ident)
	return b, b != nil
}

// VariableIdents returns the sequence of every visible identifier. The order
// is the outermost scope first and declaration order within a scope, and a
// shadowed name is only listed once, at its earliest position. The sequence
// can be iterated as many times as needed, and each run sees the environment
// as it is at that moment.
func (obj *LocalEnv) VariableIdents() iter.Seq[interfaces.Ident] {
	return func(yield func(interfaces.Ident) bool) {
		seen := make(map[interfaces.Ident]struct{})
		for _, s := range obj.scopes {
			for _, ident := range s.order {
				if _, exists := seen[ident]; exists {
					continue
				}
				seen[ident] = struct{}{}
				if !yield(ident) {
					return
				}
			}
		}
	}
}

// DeclareVariable inserts the binding into the innermost scope. It returns the
// binding that was visible under that name before the call, or nil, so that a
// caller can detect shadowing.
func (obj *LocalEnv) DeclareVariable(binding *Binding) *Binding {
	prev, _ := obj.lookup(binding.Ident)
	obj.scopes[len(obj.scopes)-1].set(binding)
	return prev
}

// UpdateVariable replaces the binding in whichever scope currently owns the
// name. If the name isn't declared anywhere, it is declared in the innermost
// scope. It returns the previous binding, or nil.
func (obj *LocalEnv) UpdateVariable(binding *Binding) *Binding {
	prev, i := obj.lookup(binding.Ident)
	if i < 0 {
		i = len(obj.scopes) - 1
	}
	obj.scopes[i].set(binding)
	return prev
}

// Copy returns a deep snapshot of the environment. Later changes to either one
// are not seen by the other.
func (obj *LocalEnv) Copy() *LocalEnv {
	scopes := []*scope{}
	for _, s := range obj.scopes {
		scopes = append(scopes, s.copy())
	}
	return &LocalEnv{scopes: scopes}
}

// ExternalEnv holds the ambient bindings that are visible from outside of the
// compilation unit. It is read only once it has been built.
type ExternalEnv struct {
	bindings map[interfaces.Ident]*Binding
	order    []interfaces.Ident
}

// NewExternalEnv builds the ambient environment. Each name may only be given
// once, since there is no scoping to resolve a conflict with.
func NewExternalEnv(bindings ...*Binding) (*ExternalEnv, error) {
	obj := &ExternalEnv{
		bindings: make(map[interfaces.Ident]*Binding),
		order:    []interfaces.Ident{},
	}
	for _, b := range bindings {
		if b == nil {
			return nil, fmt.Errorf("nil binding")
		}
		if _, exists := obj.bindings[b.Ident]; exists {
			return nil, fmt.Errorf("%w: %s", interfaces.ErrDuplicateBinding, b.Ident)
		}
		obj.bindings[b.Ident] = b.Copy()
		obj.order = append(obj.order, b.Ident)
	}
	return obj, nil
}

// Variable returns the ambient binding for the identifier if it exists. A nil
// environment has no bindings.
func (obj *ExternalEnv) Variable(ident interfaces.Ident) (*Binding, bool) {
	if obj == nil {
		return nil, false
	}
	b, exists := obj.bindings[ident]
	return b, exists
}

// VariableIdents returns the sequence of ambient identifiers in the order they
// were given.
func (obj *ExternalEnv) VariableIdents() iter.Seq[interfaces.Ident] {
	return func(yield func(interfaces.Ident) bool) {
		if obj == nil {
			return
		}
		for _, ident := range obj.order {
			if !yield(ident) {
				return
			}
		}
	}
}
