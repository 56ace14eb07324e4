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

//go:build !root

package types

import (
	"fmt"
	"testing"
)

func TestKindString0(t *testing.T) {
	type test struct { // an individual test
		name string
		kind Kind
		str  string
	}
	testCases := []test{}

	{
		testCases = append(testCases, test{
			name: "single",
			kind: KindInteger,
			str:  "integer",
		})
	}
	{
		testCases = append(testCases, test{
			name: "pair",
			kind: KindInteger | KindString,
			str:  "integer or string",
		})
	}
	{
		testCases = append(testCases, test{
			name: "any",
			kind: KindAny,
			str:  "any",
		})
	}
	{
		testCases = append(testCases, test{
			name: "never",
			kind: 0,
			str:  "never",
		})
	}

	for index, tc := range testCases { // run all the tests
		t.Run(fmt.Sprintf("test #%d (%s)", index, tc.name), func(t *testing.T) {
			if s := tc.kind.String(); s != tc.str {
				t.Errorf("test #%d: expected %q, got %q", index, tc.str, s)
			}
		})
	}
}

func TestParseKind0(t *testing.T) {
	for _, x := range []string{"null", "boolean", "integer", "float", "string", "array", "object", "any"} {
		kind, err := ParseKind(x)
		if err != nil {
			t.Errorf("kind %s did not parse: %+v", x, err)
			continue
		}
		if s := kind.String(); s != x {
			t.Errorf("kind %s printed as %s", x, s)
		}
	}
	if _, err := ParseKind("bool"); err == nil {
		t.Errorf("expected unknown kind to fail")
	}
}

func TestTypeDefMerge0(t *testing.T) {
	td := Integer().Merge(Null())
	if !td.Kind().Contains(KindInteger) || !td.Kind().Contains(KindNull) {
		t.Errorf("merged kinds are missing: %s", td)
	}
	if td.IsFallible() {
		t.Errorf("merge of infallible types must be infallible")
	}
	if !Integer().Merge(String().Fallible()).IsFallible() {
		t.Errorf("merge with a fallible type must be fallible")
	}
	// the zero value is the identity of merge
	if err := (TypeDef{}).Merge(Float()).Cmp(Float()); err != nil {
		t.Errorf("zero value is not the merge identity: %+v", err)
	}
}

func TestTypeDefString0(t *testing.T) {
	if s := Integer().String(); s != "integer, cannot fail" {
		t.Errorf("unexpected string: %s", s)
	}
	if s := Integer().Merge(Null()).Fallible().String(); s != "null or integer, can fail" {
		t.Errorf("unexpected string: %s", s)
	}
}

func TestTypeDefCmp0(t *testing.T) {
	if err := Integer().Cmp(Integer()); err != nil {
		t.Errorf("expected equal: %+v", err)
	}
	if err := Integer().Cmp(Integer().Fallible()); err == nil {
		t.Errorf("expected fallibility difference")
	}
	if err := Integer().Cmp(Float()); err == nil {
		t.Errorf("expected kind difference")
	}
	if !Boolean().IsBoolean() || Boolean().Merge(Null()).IsBoolean() {
		t.Errorf("unexpected IsBoolean result")
	}
	if !Null().Infallible().IsNull() {
		t.Errorf("expected null")
	}
}

func TestTypeDefOf0(t *testing.T) {
	if err := TypeDefOf(NewInt(5)).Cmp(Integer()); err != nil {
		t.Errorf("unexpected type: %+v", err)
	}
	if err := TypeDefOf(nil).Cmp(Null()); err != nil {
		t.Errorf("unexpected type: %+v", err)
	}
}
