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

package types

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/purpleidea/remap/util/errwrap"
)

// Value represents an interface to get values out of each type. It is similar
// to the reflection interfaces used in the golang standard library. Values
// stored in shared places must only ever be handed out through Copy, so that a
// reader never aliases storage that a writer might later replace.
type Value interface {
	fmt.Stringer // String() string (for display purposes)
	Kind() Kind
	Cmp(Value) error // error if the two values aren't the same
	Copy() Value     // returns a deep copy of this value
	Value() interface{}
	Bool() bool
	Str() string
	Int() int64
	Float() float64
	List() []Value
	Map() map[string]Value
}

// ValueOfGolang is a helper that takes a golang value, and produces the
// internal representation. It accepts the shapes produced by the yaml and json
// decoders, which makes it useful for loading state files and writing tests.
func ValueOfGolang(i interface{}) (Value, error) {
	if i == nil {
		return NewNull(), nil
	}
	return ValueOf(reflect.ValueOf(i))
}

// ValueOf takes a reflect.Value and returns an equivalent Value.
func ValueOf(v reflect.Value) (Value, error) {
	value := v
	for value.Kind() == reflect.Ptr || value.Kind() == reflect.Interface {
		if value.IsNil() {
			return NewNull(), nil
		}
		value = value.Elem() // un-nest one pointer or interface
	}

	switch value.Kind() { // match on destination field kind
	case reflect.Invalid:
		return NewNull(), nil

	case reflect.Bool:
		return &BoolValue{V: value.Bool()}, nil

	case reflect.String:
		return &StrValue{V: value.String()}, nil

	case reflect.Int, reflect.Int64, reflect.Int32, reflect.Int16, reflect.Int8:
		return &IntValue{V: value.Int()}, nil

	case reflect.Uint, reflect.Uint64, reflect.Uint32, reflect.Uint16, reflect.Uint8:
		u := value.Uint()
		if u > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d overflows", u)
		}
		return &IntValue{V: int64(u)}, nil

	case reflect.Float64, reflect.Float32:
		return &FloatValue{V: value.Float()}, nil

	case reflect.Array, reflect.Slice:
		values := []Value{}
		for i := 0; i < value.Len(); i++ {
			x, err := ValueOf(value.Index(i)) // recurse
			if err != nil {
				return nil, errwrap.Wrapf(err, "index %d", i)
			}
			values = append(values, x)
		}
		return &ListValue{V: values}, nil

	case reflect.Map:
		m := make(map[string]Value)
		for _, mk := range value.MapKeys() {
			key := mk
			for key.Kind() == reflect.Interface {
				key = key.Elem()
			}
			if key.Kind() != reflect.String {
				return nil, fmt.Errorf("object keys must be strings, got: %s", key.Kind())
			}
			x, err := ValueOf(value.MapIndex(mk)) // recurse
			if err != nil {
				return nil, errwrap.Wrapf(err, "key %s", key.String())
			}
			m[key.String()] = x
		}
		return &MapValue{V: m}, nil

	default:
		return nil, fmt.Errorf("unable to represent value of %+v", v)
	}
}

// base implements the missing methods that all types need.
type base struct{}

// Bool represents the value of this type as a bool if it is one. If this is not
// a bool, then this panics.
func (obj *base) Bool() bool {
	panic("not a bool")
}

// Str represents the value of this type as a string if it is one. If this is
// not a string, then this panics.
func (obj *base) Str() string {
	panic("not a string")
}

// Int represents the value of this type as an integer if it is one. If this is
// not an integer, then this panics.
func (obj *base) Int() int64 {
	panic("not an integer")
}

// Float represents the value of this type as a float if it is one. If this is
// not a float, then this panics.
func (obj *base) Float() float64 {
	panic("not a float")
}

// List represents the value of this type as a list if it is one. If this is not
// a list, then this panics.
func (obj *base) List() []Value {
	panic("not an array")
}

// Map represents the value of this type as an object if it is one. If this is
// not an object, then this panics.
func (obj *base) Map() map[string]Value {
	panic("not an object")
}

// cmpKind is the common prologue of every Cmp implementation.
func cmpKind(obj, val Value) error {
	if obj == nil || val == nil {
		return fmt.Errorf("cannot cmp to nil")
	}
	if obj.Kind() != val.Kind() {
		return fmt.Errorf("cannot cmp kind %s to %s", obj.Kind(), val.Kind())
	}
	return nil
}

// NullValue represents the absence of a value. It is what a declared but not
// yet populated variable resolves to.
type NullValue struct {
	base
}

// NewNull creates a new null value.
func NewNull() *NullValue { return &NullValue{} }

// String returns a visual representation of this value.
func (obj *NullValue) String() string { return "null" }

// Kind returns the kind of this value.
func (obj *NullValue) Kind() Kind { return KindNull }

// Cmp returns an error if this value isn't the same as the arg passed in.
func (obj *NullValue) Cmp(val Value) error {
	return cmpKind(obj, val)
}

// Copy returns a copy of this value.
func (obj *NullValue) Copy() Value { return &NullValue{} }

// Value returns the raw value of this type.
func (obj *NullValue) Value() interface{} { return nil }

// BoolValue represents a boolean value.
type BoolValue struct {
	base
	V bool
}

// NewBool creates a new boolean value.
func NewBool(b bool) *BoolValue { return &BoolValue{V: b} }

// String returns a visual representation of this value.
func (obj *BoolValue) String() string {
	return strconv.FormatBool(obj.V) // true or false
}

// Kind returns the kind of this value.
func (obj *BoolValue) Kind() Kind { return KindBoolean }

// Cmp returns an error if this value isn't the same as the arg passed in.
func (obj *BoolValue) Cmp(val Value) error {
	if err := cmpKind(obj, val); err != nil {
		return err
	}
	if obj.V != val.(*BoolValue).V {
		return fmt.Errorf("values are different")
	}
	return nil
}

// Copy returns a copy of this value.
func (obj *BoolValue) Copy() Value {
	return &BoolValue{V: obj.V}
}

// Value returns the raw value of this type.
func (obj *BoolValue) Value() interface{} {
	return obj.V
}

// Bool represents the value of this type as a bool if it is one. If this is not
// a bool, then this panics.
func (obj *BoolValue) Bool() bool {
	return obj.V
}

// StrValue represents a string value.
type StrValue struct {
	base
	V string
}

// NewStr creates a new string value.
func NewStr(s string) *StrValue { return &StrValue{V: s} }

// String returns a visual representation of this value.
func (obj *StrValue) String() string {
	return strconv.Quote(obj.V) // wraps in quotes, turns tabs into \t etc...
}

// Kind returns the kind of this value.
func (obj *StrValue) Kind() Kind { return KindString }

// Cmp returns an error if this value isn't the same as the arg passed in.
func (obj *StrValue) Cmp(val Value) error {
	if err := cmpKind(obj, val); err != nil {
		return err
	}
	if obj.V != val.(*StrValue).V {
		return fmt.Errorf("values are different")
	}
	return nil
}

// Copy returns a copy of this value.
func (obj *StrValue) Copy() Value {
	return &StrValue{V: obj.V}
}

// Value returns the raw value of this type.
func (obj *StrValue) Value() interface{} {
	return obj.V
}

// Str represents the value of this type as a string if it is one. If this is
// not a string, then this panics.
func (obj *StrValue) Str() string {
	return obj.V
}

// IntValue represents an integer value.
type IntValue struct {
	base
	V int64
}

// NewInt creates a new integer value.
func NewInt(i int64) *IntValue { return &IntValue{V: i} }

// String returns a visual representation of this value.
func (obj *IntValue) String() string {
	return strconv.FormatInt(obj.V, 10)
}

// Kind returns the kind of this value.
func (obj *IntValue) Kind() Kind { return KindInteger }

// Cmp returns an error if this value isn't the same as the arg passed in.
func (obj *IntValue) Cmp(val Value) error {
	if err := cmpKind(obj, val); err != nil {
		return err
	}
	if obj.V != val.(*IntValue).V {
		return fmt.Errorf("values are different")
	}
	return nil
}

// Copy returns a copy of this value.
func (obj *IntValue) Copy() Value {
	return &IntValue{V: obj.V}
}

// Value returns the raw value of this type.
func (obj *IntValue) Value() interface{} {
	return obj.V
}

// Int represents the value of this type as an integer if it is one. If this is
// not an integer, then this panics.
func (obj *IntValue) Int() int64 {
	return obj.V
}

// FloatValue represents a floating point value.
type FloatValue struct {
	base
	V float64
}

// NewFloat creates a new float value.
func NewFloat(f float64) *FloatValue { return &FloatValue{V: f} }

// String returns a visual representation of this value.
func (obj *FloatValue) String() string {
	// we want to show floats as floats, even if they're whole numbers
	s := strconv.FormatFloat(obj.V, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") { // not NaN or Inf either
		s += ".0"
	}
	return s
}

// Kind returns the kind of this value.
func (obj *FloatValue) Kind() Kind { return KindFloat }

// Cmp returns an error if this value isn't the same as the arg passed in.
func (obj *FloatValue) Cmp(val Value) error {
	if err := cmpKind(obj, val); err != nil {
		return err
	}
	// compare the bits so that the same NaN cmps as equal to itself
	if math.Float64bits(obj.V) != math.Float64bits(val.(*FloatValue).V) {
		return fmt.Errorf("values are different")
	}
	return nil
}

// Copy returns a copy of this value.
func (obj *FloatValue) Copy() Value {
	return &FloatValue{V: obj.V}
}

// Value returns the raw value of this type.
func (obj *FloatValue) Value() interface{} {
	return obj.V
}

// Float represents the value of this type as a float if it is one. If this is
// not a float, then this panics.
func (obj *FloatValue) Float() float64 {
	return obj.V
}

// ListValue represents an array value. Elements may be of mixed kinds.
type ListValue struct {
	base
	V []Value
}

// NewList creates a new array value from the given elements.
func NewList(values ...Value) *ListValue {
	return &ListValue{V: append([]Value{}, values...)}
}

// String returns a visual representation of this value.
func (obj *ListValue) String() string {
	var s []string
	for _, x := range obj.V {
		s = append(s, x.String())
	}
	return fmt.Sprintf("[%s]", strings.Join(s, ", "))
}

// Kind returns the kind of this value.
func (obj *ListValue) Kind() Kind { return KindArray }

// Cmp returns an error if this value isn't the same as the arg passed in.
func (obj *ListValue) Cmp(val Value) error {
	if err := cmpKind(obj, val); err != nil {
		return err
	}

	cmp := val.(*ListValue)

	if len(obj.V) != len(cmp.V) {
		return fmt.Errorf("values have different lengths")
	}

	for i := range obj.V {
		if err := obj.V[i].Cmp(cmp.V[i]); err != nil {
			return errwrap.Wrapf(err, "index %d did not cmp", i)
		}
	}

	return nil
}

// Copy returns a copy of this value.
func (obj *ListValue) Copy() Value {
	v := []Value{}
	for _, x := range obj.V {
		v = append(v, x.Copy())
	}
	return &ListValue{V: v}
}

// Value returns the raw value of this type.
func (obj *ListValue) Value() interface{} {
	l := []interface{}{}
	for _, x := range obj.V {
		l = append(l, x.Value()) // recurse
	}
	return l
}

// List represents the value of this type as a list if it is one. If this is not
// a list, then this panics.
func (obj *ListValue) List() []Value {
	return obj.V
}

// MapValue represents an object value with string keys.
type MapValue struct {
	base
	V map[string]Value
}

// NewMap creates a new empty object value.
func NewMap() *MapValue {
	return &MapValue{V: make(map[string]Value)}
}

// keys returns the keys of this object in sorted order.
func (obj *MapValue) keys() []string {
	keys := []string{}
	for k := range obj.V {
		keys = append(keys, k)
	}
	sort.Strings(keys) // deterministic order
	return keys
}

// String returns a visual representation of this value.
func (obj *MapValue) String() string {
	var s []string
	for _, k := range obj.keys() {
		s = append(s, fmt.Sprintf("%s: %s", strconv.Quote(k), obj.V[k].String()))
	}
	return fmt.Sprintf("{%s}", strings.Join(s, ", "))
}

// Kind returns the kind of this value.
func (obj *MapValue) Kind() Kind { return KindObject }

// Cmp returns an error if this value isn't the same as the arg passed in.
func (obj *MapValue) Cmp(val Value) error {
	if err := cmpKind(obj, val); err != nil {
		return err
	}

	cmp := val.(*MapValue)

	if len(obj.V) != len(cmp.V) {
		return fmt.Errorf("values have different lengths")
	}

	for k := range obj.V {
		v, exists := cmp.V[k]
		if !exists {
			return fmt.Errorf("key %s does not exist", k)
		}

		if err := obj.V[k].Cmp(v); err != nil {
			return errwrap.Wrapf(err, "key %s did not cmp", k)
		}
	}

	return nil
}

// Copy returns a copy of this value.
func (obj *MapValue) Copy() Value {
	m := make(map[string]Value, len(obj.V))
	for k, v := range obj.V {
		m[k] = v.Copy()
	}
	return &MapValue{V: m}
}

// Value returns the raw value of this type.
func (obj *MapValue) Value() interface{} {
	m := make(map[string]interface{}, len(obj.V))
	for k, v := range obj.V {
		m[k] = v.Value() // recurse
	}
	return m
}

// Map represents the value of this type as an object if it is one. If this is
// not an object, then this panics.
func (obj *MapValue) Map() map[string]Value {
	return obj.V
}

// Set stores a copy of the value under the given key.
func (obj *MapValue) Set(k string, v Value) {
	if obj.V == nil {
		obj.V = make(map[string]Value)
	}
	obj.V[k] = v.Copy()
}

// Lookup searches the object for a key. On success it returns a copy.
func (obj *MapValue) Lookup(k string) (Value, bool) {
	v, exists := obj.V[k]
	if !exists {
		return nil, false
	}
	return v.Copy(), true
}

// IsTruthy returns true only for the boolean value true. This is the predicate
// rule used by every execution strategy, so that a null from a variable that
// was never populated takes the same branch everywhere.
func IsTruthy(v Value) bool {
	b, ok := v.(*BoolValue)
	return ok && b.V
}
