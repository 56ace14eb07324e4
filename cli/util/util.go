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

// Package util has some CLI related utility code.
package util

import (
	"fmt"

	"github.com/purpleidea/remap/lang/interfaces"
	"github.com/purpleidea/remap/lang/runtime"
	"github.com/purpleidea/remap/lang/types"
	"github.com/purpleidea/remap/util/errwrap"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

// Error is a constant error type that implements error.
type Error string

// Error fulfills the error interface of this type.
func (e Error) Error() string { return string(e) }

const (
	// MissingInput means no program file was named.
	MissingInput = Error("missing input file")
)

// CliParseError returns a consistent error if we have a CLI parsing issue.
func CliParseError(err error) error {
	return errwrap.Wrapf(err, "cli parse error")
}

// Flags are some constant flags which are used throughout the program.
type Flags struct {
	Debug   bool // add additional log messages
	Verbose bool // add extra log message output

	Logf func(format string, v ...interface{})
}

// Data is a struct of values that we usually pass to the main CLI function.
type Data struct {
	Program string
	Version string
	Copying string
	Tagline string
	Flags   Flags
	Args    []string // os.Args usually
}

// LoadValues reads a yaml mapping of names to plain values. An empty path
// returns an empty map.
func LoadValues(fs afero.Fs, path string) (map[string]interface{}, error) {
	m := make(map[string]interface{})
	if path == "" {
		return m, nil
	}
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errwrap.Wrapf(err, "could not read %s", path)
	}
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, errwrap.Wrapf(err, "could not parse %s", path)
	}
	return m, nil
}

// LoadState reads a state file into a runtime state.
func LoadState(fs afero.Fs, path string) (*runtime.State, error) {
	m, err := LoadValues(fs, path)
	if err != nil {
		return nil, err
	}
	return runtime.NewStateFromMap(m)
}

// LoadAmbient reads an ambient file into values that are keyed by their name.
func LoadAmbient(fs afero.Fs, path string) (map[interfaces.Ident]types.Value, error) {
	m, err := LoadValues(fs, path)
	if err != nil {
		return nil, err
	}
	ambient := make(map[interfaces.Ident]types.Value)
	for k, x := range m {
		v, err := types.ValueOfGolang(x)
		if err != nil {
			return nil, fmt.Errorf("ambient %s: %w", k, err)
		}
		ambient[interfaces.Ident(k)] = v
	}
	return ambient, nil
}
