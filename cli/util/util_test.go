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

	"github.com/spf13/afero"
)

func TestLoadState0(t *testing.T) {
	fs := afero.NewMemMapFs()
	code := "x: 5\nhost: example.com\nnested:\n  a: [1, 2]\nempty: null\n"
	if err := afero.WriteFile(fs, "/state.yaml", []byte(code), 0644); err != nil {
		t.Errorf("could not write: %+v", err)
		return
	}
	st, err := LoadState(fs, "/state.yaml")
	if err != nil {
		t.Errorf("could not load: %+v", err)
		return
	}
	if s := st.Object().String(); s != `{"empty": null, "host": "example.com", "nested": {"a": [1, 2]}, "x": 5}` {
		t.Errorf("unexpected state: %s", s)
	}
}

func TestLoadAmbient0(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/ambient.yaml", []byte("host: example.com\n"), 0644)
	ambient, err := LoadAmbient(fs, "/ambient.yaml")
	if err != nil {
		t.Errorf("could not load: %+v", err)
		return
	}
	if v, exists := ambient["host"]; !exists || v.Str() != "example.com" {
		t.Errorf("unexpected ambient: %v", ambient)
	}

	if m, err := LoadValues(fs, ""); err != nil || len(m) != 0 {
		t.Errorf("an empty path should give an empty map")
	}
	if _, err := LoadValues(fs, "/missing.yaml"); err == nil {
		t.Errorf("expected an error")
	}
	afero.WriteFile(fs, "/bad.yaml", []byte("- a list\n"), 0644)
	if _, err := LoadValues(fs, "/bad.yaml"); err == nil {
		t.Errorf("expected an error for a list")
	}
}
