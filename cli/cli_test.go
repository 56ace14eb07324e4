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

package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cliUtil "github.com/purpleidea/remap/cli/util"
	"github.com/purpleidea/remap/lang/runtime"
	"github.com/purpleidea/remap/lang/types"
)

func testData(t *testing.T, args ...string) *cliUtil.Data {
	return &cliUtil.Data{
		Program: "remap",
		Version: "0.0.1",
		Copying: "license\n",
		Flags: cliUtil.Flags{
			Debug: testing.Verbose(),
			Logf: func(format string, v ...interface{}) {
				t.Logf("cli: "+format, v...)
			},
		},
		Args: append([]string{"remap"}, args...),
	}
}

func writeFile(t *testing.T, dir, name, data string) string {
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(data), 0644); err != nil {
		t.Fatalf("could not write %s: %+v", p, err)
	}
	return p
}

func TestCLI0(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.yaml", "declare: [{name: x, type: integer}]\nprogram:\n  - var: x\n")
	bad := writeFile(t, dir, "bad.yaml", "declare: [{name: count, type: integer}]\nprogram:\n  - var: coutn\n")
	st := writeFile(t, dir, "state.yaml", "x: 5\n")

	type test struct { // an individual test
		name string
		args []string
		fail bool
	}
	testCases := []test{}

	testCases = append(testCases, test{"no args", []string{}, false})
	testCases = append(testCases, test{"help", []string{"--help"}, false})
	testCases = append(testCases, test{"version", []string{"--version"}, false})
	testCases = append(testCases, test{"license", []string{"--license"}, false})
	testCases = append(testCases, test{"bad flag", []string{"--nope"}, true})
	testCases = append(testCases, test{"run", []string{"run", good, "--state", st}, false})
	testCases = append(testCases, test{"run interpret", []string{"run", good, "--backend", "interpret"}, false})
	testCases = append(testCases, test{"run unknown backend", []string{"run", good, "--backend", "nope"}, true})
	testCases = append(testCases, test{"run missing state", []string{"run", good, "--state", filepath.Join(dir, "missing.yaml")}, true})
	testCases = append(testCases, test{"run bad", []string{"run", bad}, true})
	testCases = append(testCases, test{"check good", []string{"check", good}, false})
	testCases = append(testCases, test{"check bad", []string{"check", bad}, true})
	testCases = append(testCases, test{"check missing", []string{"check", filepath.Join(dir, "missing.yaml")}, true})
	testCases = append(testCases, test{"disasm", []string{"disasm", good}, false})
	testCases = append(testCases, test{"disasm interpret", []string{"disasm", good, "--backend", "interpret"}, true})

	for index, tc := range testCases { // run all the tests
		t.Run(tc.name, func(t *testing.T) {
			err := CLI(context.Background(), testData(t, tc.args...))
			if !tc.fail && err != nil {
				t.Errorf("test #%d: unexpected error: %+v", index, err)
			}
			if tc.fail && err == nil {
				t.Errorf("test #%d: expected an error", index)
			}
		})
	}
}

func TestCheckWatch0(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.yaml", "program:\n  - literal: 1\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // the first pass still runs, then the watch ends
	if err := CLI(ctx, testData(t, "check", "--watch", good)); err != nil {
		t.Errorf("unexpected error: %+v", err)
	}
}

func TestSanity0(t *testing.T) {
	if err := CLI(context.Background(), nil); err == nil {
		t.Errorf("expected an error")
	}
	data := testData(t)
	data.Version = ""
	if err := CLI(context.Background(), data); err == nil || !strings.Contains(err.Error(), "compiled") {
		t.Errorf("expected a build error, got: %v", err)
	}
}

func TestReport0(t *testing.T) {
	final, err := runtime.NewStateFromMap(map[string]interface{}{
		"zeta":  true,
		"alpha": 5,
		"mid":   "hello",
	})
	if err != nil {
		t.Errorf("could not build state: %+v", err)
		return
	}
	expected := "result: 7\n" +
		"state:\n" +
		"  alpha: 5\n" +
		"  mid: \"hello\"\n" +
		"  zeta: true\n"
	if s := Report(types.NewInt(7), final); s != expected {
		t.Errorf("unexpected report:\n%s\nexpected:\n%s", s, expected)
	}
}
