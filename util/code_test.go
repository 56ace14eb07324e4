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

package util

import (
	"testing"
)

func TestCode1(t *testing.T) {
	c1 := Code(
		`
	program:
	  - assign:
	      name: x
	      value:
	        literal: 5
	  - var: x
	`)
	c2 :=
		`program:
  - assign:
      name: x
      value:
        literal: 5
  - var: x
`
	if c1 != c2 {
		t.Errorf("code samples differ")
	}
}

func TestCode2(t *testing.T) {
	type test struct { // an individual test
		name   string
		in     string
		expect string
	}
	testCases := []test{}

	testCases = append(testCases, test{"empty", "", ""})
	testCases = append(testCases, test{"no indent", "a\nb", "a\nb"})
	testCases = append(testCases, test{"leading line", "\n\t\ta\n\t\tb", "a\nb"})
	testCases = append(testCases, test{"smallest wins", "\n\t\ta\n\tb\n\t\t\tc", "\ta\nb\n\t\tc"})
	testCases = append(testCases, test{"blank lines", "\n\ta\n\n\t\t\n\tb\n\t", "a\n\n\nb\n"})
	testCases = append(testCases, test{"spaces kept", "\n\ta:\n\t  b: 1", "a:\n  b: 1"})

	for index, tc := range testCases { // run all the tests
		t.Run(tc.name, func(t *testing.T) {
			if out := Code(tc.in); out != tc.expect {
				t.Errorf("test #%d: expected %q, got %q", index, tc.expect, out)
			}
		})
	}
}
