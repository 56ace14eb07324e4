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

// Package types provides the value and type descriptor system of the remap
// language. Values are always handed out as copies, and every expression has a
// static TypeDef that records which kinds of value it can produce and whether
// it can fail at runtime.
package types

import (
	"fmt"
	"strings"

	"github.com/purpleidea/remap/util"
)

// ErrUnknownKind is returned when a kind name cannot be parsed.
const ErrUnknownKind = util.Error("unknown kind")

// The Kind represents the base type of each value. A Kind is a bit set, so that
// a TypeDef can describe an expression which produces more than one kind.
type Kind uint16

// Each Kind represents a type in the language type system.
const (
	KindNull Kind = 1 << iota
	KindBoolean
	KindInteger
	KindFloat
	KindString
	KindArray
	KindObject

	// KindAny is the union of every kind.
	KindAny = KindNull | KindBoolean | KindInteger | KindFloat | KindString | KindArray | KindObject
)

// kindNames is in bit order, which is also the display order.
var kindNames = []struct {
	kind Kind
	name string
}{
	{KindNull, "null"},
	{KindBoolean, "boolean"},
	{KindInteger, "integer"},
	{KindFloat, "float"},
	{KindString, "string"},
	{KindArray, "array"},
	{KindObject, "object"},
}

// ParseKind returns the kind with the given name. The name "any" is accepted as
// the union of every kind.
func ParseKind(name string) (Kind, error) {
	if name == "any" {
		return KindAny, nil
	}
	for _, x := range kindNames {
		if x.name == name {
			return x.kind, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownKind, name)
}

// String returns the human readable form of the kind set, such as "integer" or
// "integer or string".
func (k Kind) String() string {
	if k == KindAny {
		return "any"
	}
	if k == 0 {
		return "never"
	}
	names := []string{}
	for _, x := range kindNames {
		if k&x.kind != 0 {
			names = append(names, x.name)
		}
	}
	return strings.Join(names, " or ")
}

// Contains returns true if every kind in other is also part of this set.
func (k Kind) Contains(other Kind) bool {
	return k&other == other
}

// TypeDef is the static type descriptor of an expression. It carries the set of
// kinds the expression can resolve to, and whether it can fail at runtime. The
// zero value is an infallible expression that can never produce a value, which
// is only useful as the identity element of Merge.
type TypeDef struct {
	kind     Kind
	fallible bool
}

// NewTypeDef returns an infallible type descriptor for the given kind set.
func NewTypeDef(kind Kind) TypeDef {
	return TypeDef{kind: kind}
}

// Null returns the descriptor of an expression which always resolves to null.
func Null() TypeDef { return NewTypeDef(KindNull) }

// Boolean returns the descriptor of a boolean expression.
func Boolean() TypeDef { return NewTypeDef(KindBoolean) }

// Integer returns the descriptor of an integer expression.
func Integer() TypeDef { return NewTypeDef(KindInteger) }

// Float returns the descriptor of a float expression.
func Float() TypeDef { return NewTypeDef(KindFloat) }

// String returns the descriptor of a string expression.
func String() TypeDef { return NewTypeDef(KindString) }

// Array returns the descriptor of an array expression.
func Array() TypeDef { return NewTypeDef(KindArray) }

// Object returns the descriptor of an object expression.
func Object() TypeDef { return NewTypeDef(KindObject) }

// Any returns the descriptor of an expression that can resolve to anything.
func Any() TypeDef { return NewTypeDef(KindAny) }

// Kind returns the set of kinds this descriptor can resolve to.
func (obj TypeDef) Kind() Kind { return obj.kind }

// IsFallible returns true if the expression can fail at runtime.
func (obj TypeDef) IsFallible() bool { return obj.fallible }

// Fallible returns a copy of this descriptor that is marked fallible.
func (obj TypeDef) Fallible() TypeDef {
	return TypeDef{kind: obj.kind, fallible: true}
}

// Infallible returns a copy of this descriptor that is marked infallible.
func (obj TypeDef) Infallible() TypeDef {
	return TypeDef{kind: obj.kind, fallible: false}
}

// WithFallibility returns a copy of this descriptor with the given fallibility.
func (obj TypeDef) WithFallibility(fallible bool) TypeDef {
	return TypeDef{kind: obj.kind, fallible: fallible}
}

// Merge combines two descriptors, for example the two branches of a condition.
// The result can resolve to any kind of either input, and it is fallible if
// either of them is.
func (obj TypeDef) Merge(other TypeDef) TypeDef {
	return TypeDef{
		kind:     obj.kind | other.kind,
		fallible: obj.fallible || other.fallible,
	}
}

// IsExact returns true if this descriptor resolves to exactly the given kind
// set and nothing else.
func (obj TypeDef) IsExact(kind Kind) bool {
	return obj.kind == kind
}

// IsNull returns true if this descriptor can only ever resolve to null.
func (obj TypeDef) IsNull() bool { return obj.IsExact(KindNull) }

// IsBoolean returns true if this descriptor can only ever resolve to a boolean.
func (obj TypeDef) IsBoolean() bool { return obj.IsExact(KindBoolean) }

// Cmp returns an error if the two descriptors differ.
func (obj TypeDef) Cmp(other TypeDef) error {
	if obj.kind != other.kind {
		return fmt.Errorf("kind %s differs from %s", obj.kind, other.kind)
	}
	if obj.fallible != other.fallible {
		return fmt.Errorf("fallibility differs")
	}
	return nil
}

// String returns a short representation such as "integer, cannot fail".
func (obj TypeDef) String() string {
	if obj.fallible {
		return fmt.Sprintf("%s, can fail", obj.kind)
	}
	return fmt.Sprintf("%s, cannot fail", obj.kind)
}

// TypeDefOf returns the infallible descriptor of a known value.
func TypeDefOf(v Value) TypeDef {
	if v == nil {
		return Null()
	}
	return NewTypeDef(v.Kind())
}
