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

// Package cli handles all of the core command line parsing. It's the first
// entry point after the real main function, and it imports and calls out to
// the language packages.
package cli

import (
	"context"
	"fmt"
	"os"

	cliUtil "github.com/purpleidea/remap/cli/util"
	"github.com/purpleidea/remap/util/errwrap"

	"github.com/alexflint/go-arg"
)

// subcommand is what each of the parsed subcommand structs can do.
type subcommand interface {
	Run(ctx context.Context, data *cliUtil.Data) (bool, error)
}

// CLI is the entry point for using remap normally from the CLI.
func CLI(ctx context.Context, data *cliUtil.Data) error {
	if data == nil {
		return fmt.Errorf("this CLI was not run correctly")
	}
	if data.Program == "" || data.Version == "" {
		return fmt.Errorf("program was not compiled correctly")
	}
	if len(data.Args) == 0 {
		return fmt.Errorf("missing argv[0]")
	}
	if data.Flags.Logf == nil {
		data.Flags.Logf = func(format string, v ...interface{}) {}
	}

	args := &Args{
		version:     data.Version,
		description: data.Tagline,
	}
	parser, err := arg.NewParser(arg.Config{Program: data.Program}, args)
	if err != nil {
		return errwrap.Wrapf(err, "cli config error") // programming error
	}

	switch err := parser.Parse(data.Args[1:]); err {
	case nil:
	case arg.ErrHelp:
		parser.WriteHelp(os.Stdout)
		return nil
	case arg.ErrVersion:
		fmt.Printf("%s\n", data.Version)
		return nil
	default:
		return cliUtil.CliParseError(err) // consistent errors
	}

	if args.License {
		fmt.Printf("%s", data.Copying)
		return nil
	}
	data.Flags.Debug = data.Flags.Debug || args.Debug

	if ok, err := args.Run(ctx, data); err != nil || ok {
		return err
	}
	parser.WriteHelp(os.Stdout) // no subcommand was given
	return nil
}

// Args is the top-most parsing structure. Exactly one of the subcommands is
// set after a successful parse, or none if only flags were given.
type Args struct {
	License bool `arg:"--license" help:"display the license and exit"`

	Debug bool `arg:"--debug,env:REMAP_DEBUG" help:"add additional log messages"`

	RunCmd    *RunArgs    `arg:"subcommand:run" help:"run a program against some state"`
	CheckCmd  *CheckArgs  `arg:"subcommand:check" help:"check a program and print its diagnostics"`
	DisasmCmd *DisasmArgs `arg:"subcommand:disasm" help:"print the compiled form of a program"`

	version     string `arg:"-"`
	description string `arg:"-"`
}

// Version is used by the parser for --version.
func (obj *Args) Version() string { return obj.version }

// Description is printed by the parser at the top of the help.
func (obj *Args) Description() string { return obj.description }

// Run executes whichever subcommand was selected. It returns false if none
// was, so that the caller can print the usage instead.
func (obj *Args) Run(ctx context.Context, data *cliUtil.Data) (bool, error) {
	var cmd subcommand
	switch {
	case obj.RunCmd != nil:
		cmd = obj.RunCmd
	case obj.CheckCmd != nil:
		cmd = obj.CheckCmd
	case obj.DisasmCmd != nil:
		cmd = obj.DisasmCmd
	default:
		return false, nil // nobody activated
	}
	return cmd.Run(ctx, data)
}
