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
	"strings"
	"time"

	cliUtil "github.com/purpleidea/remap/cli/util"
	"github.com/purpleidea/remap/lang"
	"github.com/purpleidea/remap/lang/runtime"
	"github.com/purpleidea/remap/lang/types"
	"github.com/purpleidea/remap/prometheus"
	"github.com/purpleidea/remap/util/errwrap"

	"github.com/spf13/afero"
)

// RunArgs is the CLI parsing structure and type of the parsed result. This
// particular one contains all the flags for the `run` subcommand.
type RunArgs struct {
	// Input is the path of the program file.
	Input string `arg:"positional,required"`

	State   string `arg:"--state" help:"yaml file with the initial state"`
	Ambient string `arg:"--ambient" help:"yaml file with the ambient bindings"`

	Backend string `arg:"--backend,env:REMAP_BACKEND" help:"execution strategy to use (interpret, vm or native)"`

	Prometheus       bool   `arg:"--prometheus" help:"start a prometheus instance"`
	PrometheusListen string `arg:"--prometheus-listen" help:"specify prometheus instance binding"`
}

// Run executes the correct subcommand. It errors if there's ever an error. It
// returns true if we did activate one of the subcommands. It returns false if
// we did not. This particular Run is the run for the main `run` subcommand. It
// runs the program once, and prints the result and the final state.
func (obj *RunArgs) Run(ctx context.Context, data *cliUtil.Data) (bool, error) {
	Logf := func(format string, v ...interface{}) {
		data.Flags.Logf("main: "+format, v...)
	}
	start := cliUtil.Hello(data.Program, data.Version, data.Flags) // say hello!
	defer func() { Logf("goodbye! (%s)", time.Since(start)) }()

	fs := afero.NewOsFs()
	st, err := cliUtil.LoadState(fs, obj.State)
	if err != nil {
		return false, errwrap.Wrapf(err, "could not load state")
	}
	ambient, err := cliUtil.LoadAmbient(fs, obj.Ambient)
	if err != nil {
		return false, errwrap.Wrapf(err, "could not load ambient")
	}

	var metrics *prometheus.Prometheus
	if obj.Prometheus {
		metrics = &prometheus.Prometheus{
			Listen: obj.PrometheusListen,
			Logf: func(format string, v ...interface{}) {
				data.Flags.Logf("prometheus: "+format, v...)
			},
		}
		if err := metrics.Init(); err != nil {
			return false, errwrap.Wrapf(err, "can't initialize prometheus instance")
		}
		Logf("prometheus: starting instance on %s", metrics.Listen)
		if err := metrics.Start(); err != nil {
			return false, errwrap.Wrapf(err, "can't start prometheus instance")
		}
		defer func() {
			if err := metrics.Stop(); err != nil {
				Logf("prometheus: stop: %+v", err)
			}
		}()
	}

	l := &lang.Lang{
		Fs:      fs,
		Input:   obj.Input,
		Backend: obj.Backend,
		Debug:   data.Flags.Debug,
		Logf: func(format string, v ...interface{}) {
			data.Flags.Logf("lang: "+format, v...)
		},
		Metrics: metrics,
	}
	if err := l.Init(); err != nil {
		printDiagnostics(l)
		return false, err
	}
	defer l.Close()

	value, final, err := l.Run(st, ambient)
	if err != nil {
		return false, err
	}
	fmt.Fprint(os.Stdout, Report(value, final))
	return true, nil
}

// Report formats the result of a run for display. The state is printed one
// variable per line, sorted by name.
func Report(value types.Value, final *runtime.State) string {
	result := &strings.Builder{}
	fmt.Fprintf(result, "result: %s\n", value)
	fmt.Fprintf(result, "state:\n")
	for _, ident := range final.Idents() {
		v, _ := final.Variable(ident)
		fmt.Fprintf(result, "  %s: %s\n", ident, v)
	}
	return result.String()
}
