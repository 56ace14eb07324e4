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
	"github.com/purpleidea/remap/lang/diagnostic"
	"github.com/purpleidea/remap/util/recwatch"

	"github.com/spf13/afero"
)

// CheckArgs is the CLI parsing structure and type of the parsed result. This
// particular one contains all the flags for the `check` subcommand.
type CheckArgs struct {
	// Input is the path of the program file.
	Input string `arg:"positional,required"`

	Watch bool `arg:"--watch" help:"check again each time the file changes"`
}

// Run executes the `check` subcommand. It binds the program and prints every
// diagnostic it finds. With --watch it keeps going until the context closes.
func (obj *CheckArgs) Run(ctx context.Context, data *cliUtil.Data) (bool, error) {
	Logf := func(format string, v ...interface{}) {
		data.Flags.Logf("check: "+format, v...)
	}

	err := obj.check(data)
	if !obj.Watch {
		return true, err
	}
	if err != nil {
		Logf("%+v", err)
	}

	watcher := &recwatch.RecWatcher{
		Path:  obj.Input,
		Debug: data.Flags.Debug,
		Logf: func(format string, v ...interface{}) {
			data.Flags.Logf("recwatch: "+format, v...)
		},
	}
	if err := watcher.Init(); err != nil {
		return false, err
	}
	defer watcher.Close()

	for {
		select {
		case event, ok := <-watcher.Events():
			if !ok {
				return true, nil
			}
			if event.Error != nil {
				return false, event.Error
			}
			if data.Flags.Debug {
				Logf("event: %s", event.Body)
			}
			if err := obj.check(data); err != nil {
				Logf("%+v", err)
			}

		case <-ctx.Done():
			return true, nil
		}
	}
}

// check runs one pass over the file.
func (obj *CheckArgs) check(data *cliUtil.Data) error {
	l := &lang.Lang{
		Fs:      afero.NewOsFs(),
		Input:   obj.Input,
		Backend: lang.DefaultBackend,
		Debug:   data.Flags.Debug,
		Logf: func(format string, v ...interface{}) {
			data.Flags.Logf("lang: "+format, v...)
		},
	}
	err := l.Init()
	if l.Program() == nil {
		return err // it never got as far as binding
	}
	printDiagnostics(l)
	if err == nil {
		defer l.Close()
		fmt.Fprintf(os.Stdout, "%s: ok, %s\n", obj.Input, l.Program().TypeDef)
		return nil
	}
	l.Close()
	return fmt.Errorf("%s: %d error(s) found", obj.Input, len(l.Diagnostics()))
}

// printDiagnostics writes a report for each diagnostic of the program.
func printDiagnostics(l *lang.Lang) {
	program := l.Program()
	if program == nil {
		return
	}
	for _, d := range l.Diagnostics() {
		fmt.Fprintln(os.Stdout, diagnostic.Describe(d, program.Source))
	}
}
