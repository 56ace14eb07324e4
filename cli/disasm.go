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

package cli

import (
	"context"
	"fmt"
	"os"

	cliUtil "github.com/purpleidea/remap/cli/util"
	"github.com/purpleidea/remap/lang"
	"github.com/purpleidea/remap/lang/interpret"
	"github.com/purpleidea/remap/lang/vm"

	"github.com/spf13/afero"
)

// DisasmArgs is the CLI parsing structure and type of the parsed result. This
// particular one contains all the flags for the `disasm` subcommand.
type DisasmArgs struct {
	// Input is the path of the program file.
	Input string `arg:"positional,required"`

	Backend string `arg:"--backend,env:REMAP_BACKEND" default:"vm" help:"which compiled form to print (vm or native)"`
}

// Run executes the `disasm` subcommand. The program is only bound with the
// interpreter, and the listing is then built for the named backend.
func (obj *DisasmArgs) Run(ctx context.Context, data *cliUtil.Data) (bool, error) {
	name := obj.Backend
	if name == "" {
		name = vm.Name
	}
	l := &lang.Lang{
		Fs:      afero.NewOsFs(),
		Input:   obj.Input,
		Backend: interpret.Name, // cheapest to compile
		Debug:   data.Flags.Debug,
		Logf: func(format string, v ...interface{}) {
			data.Flags.Logf("lang: "+format, v...)
		},
	}
	if err := l.Init(); err != nil {
		printDiagnostics(l)
		return false, err
	}
	defer l.Close()

	out, err := l.Listing(name)
	if err != nil {
		return false, err
	}
	fmt.Fprint(os.Stdout, out)
	return true, nil
}
