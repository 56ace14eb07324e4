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

package backend

import (
	"errors"
	"testing"

	"github.com/purpleidea/remap/lang/ast"
	"github.com/purpleidea/remap/lang/runtime"
	"github.com/purpleidea/remap/lang/state"
	"github.com/purpleidea/remap/lang/types"
)

type constant struct{}

func (obj *constant) Name() string { return "test_constant" }

func (obj *constant) Init(data *Data) error { return nil }

func (obj *constant) Compile(expr ast.Expr, local *state.LocalEnv, external *state.ExternalEnv) (Executable, error) {
	return obj, nil
}

func (obj *constant) Run(ctx *runtime.Context) (types.Value, error) {
	return types.NewInt(42), nil
}

func TestRegister0(t *testing.T) {
	Register("test_constant", func() Strategy { return &constant{} })
	defer delete(registeredStrategies, "test_constant")

	s, err := Lookup("test_constant")
	if err != nil {
		t.Errorf("lookup failed: %+v", err)
		return
	}
	if s.Name() != "test_constant" {
		t.Errorf("unexpected name: %s", s.Name())
	}
	found := false
	for _, name := range Names() {
		found = found || name == "test_constant"
	}
	if !found {
		t.Errorf("name is not listed: %v", Names())
	}

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("duplicate register did not panic")
		}
	}()
	Register("test_constant", func() Strategy { return &constant{} })
}

func TestLookupMissing0(t *testing.T) {
	if _, err := Lookup("does_not_exist"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not found, got: %v", err)
	}
}
