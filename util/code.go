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

package util

import (
	"strings"
)

// Code takes a program written inline as a backtick enclosed `heredoc` and
// removes the tab indentation that all of its non-empty lines share. A leading
// empty line is dropped, so the heredoc can start on the line after the quote.
// Tabs are the only indentation removed, which leaves yaml nesting intact.
func Code(code string) string {
	lines := strings.Split(code, "\n")
	if len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}

	strip := -1 // tabs shared by every non-empty line
	for _, x := range lines {
		if strings.TrimLeft(x, "\t") == "" {
			continue // blank lines don't count
		}
		n := len(x) - len(strings.TrimLeft(x, "\t"))
		if strip == -1 || n < strip {
			strip = n
		}
	}
	if strip <= 0 {
		return strings.Join(lines, "\n")
	}

	prefix := strings.Repeat("\t", strip)
	for i, x := range lines {
		if strings.TrimLeft(x, "\t") == "" {
			lines[i] = ""
			continue
		}
		lines[i] = strings.TrimPrefix(x, prefix)
	}
	return strings.Join(lines, "\n")
}
