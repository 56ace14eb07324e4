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

// Package lang is the top level of the remap language. It loads a program,
// binds it, compiles it once with the selected backend, and then runs it as
// many times as the caller likes.
package lang

import (
	"fmt"
	"sync"
	"time"

	"github.com/purpleidea/remap/lang/backend"
	"github.com/purpleidea/remap/lang/diagnostic"
	"github.com/purpleidea/remap/lang/interfaces"
	"github.com/purpleidea/remap/lang/runtime"
	"github.com/purpleidea/remap/lang/types"
	"github.com/purpleidea/remap/lang/yamlprog"
	"github.com/purpleidea/remap/prometheus"
	"github.com/purpleidea/remap/util"
	"github.com/purpleidea/remap/util/errwrap"

	// register the backends
	_ "github.com/purpleidea/remap/lang/interpret"
	_ "github.com/purpleidea/remap/lang/native"
	_ "github.com/purpleidea/remap/lang/vm"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// DefaultBackend is the backend used when none is named.
const DefaultBackend = "vm"

// ErrNotInitialized is returned when Run or Close are called before Init.
const ErrNotInitialized = util.Error("lang is not initialized")

// Lang is the main language object.
type Lang struct {
	Fs afero.Fs // filesystem where the input exists

	// Input is the path of the program file to run.
	Input string

	// Backend is the name of the execution strategy. If it is empty, then
	// DefaultBackend is used.
	Backend string

	// Keywords are offered as suggestions for undefined references. If it
	// is nil, then the default keywords are used.
	Keywords []interfaces.Ident

	Debug bool
	Logf  func(format string, v ...interface{})

	// Metrics is where the counters are sent, and it may be nil.
	Metrics *prometheus.Prometheus

	uid         string
	program     *yamlprog.Program
	exec        backend.Executable
	diagnostics []diagnostic.Diagnostic

	mutex *sync.Mutex // guards exec
	wg    *sync.WaitGroup
}

// Init loads, binds and compiles the program. If the program has errors in it,
// they are available from Diagnostics afterwards.
func (obj *Lang) Init() error {
	obj.mutex = &sync.Mutex{}
	obj.wg = &sync.WaitGroup{}
	obj.uid = uuid.New().String()
	if obj.Logf == nil {
		obj.Logf = func(format string, v ...interface{}) {}
	}
	if obj.Backend == "" {
		obj.Backend = DefaultBackend
	}
	if obj.Keywords == nil {
		obj.Keywords = diagnostic.DefaultKeywords()
	}
	if obj.Debug {
		obj.Logf("unit: %s", obj.uid)
		obj.Logf("input: %s", obj.Input)
	}

	strategy, err := backend.Lookup(obj.Backend)
	if err != nil {
		return errwrap.Wrapf(err, "available backends: %v", backend.Names())
	}
	name := strategy.Name()
	if err := strategy.Init(&backend.Data{
		Debug: obj.Debug,
		Logf: func(format string, v ...interface{}) {
			obj.Logf(name+": "+format, v...)
		},
	}); err != nil {
		return errwrap.Wrapf(err, "could not init backend %s", name)
	}

	b, err := afero.ReadFile(obj.Fs, obj.Input)
	if err != nil {
		return errwrap.Wrapf(err, "could not read input")
	}
	source := &interfaces.Source{
		Path: obj.Input,
		Body: b,
	}

	obj.Logf("binding...")
	binder := &yamlprog.Binder{
		Keywords: obj.Keywords,
		Debug:    obj.Debug,
		Logf: func(format string, v ...interface{}) {
			obj.Logf("bind: "+format, v...)
		},
	}
	program, err := binder.Bind(source)
	if program != nil {
		obj.program = program
		obj.diagnostics = program.Diagnostics
		for _, d := range program.Diagnostics {
			if obj.Metrics != nil {
				obj.Metrics.UpdateDiagnosticsTotal(d.Code())
			}
		}
	}
	if err != nil {
		if obj.Metrics != nil {
			obj.Metrics.UpdateCompileTotal(obj.Backend, true)
		}
		return errwrap.Wrapf(err, "could not bind program")
	}
	if obj.Debug {
		obj.Logf("program: %s", program.Expr)
		obj.Logf("type: %s", program.TypeDef)
	}

	obj.Logf("compiling with %s...", strategy.Name())
	exec, err := strategy.Compile(program.Expr, program.Local, program.External)
	if obj.Metrics != nil {
		obj.Metrics.UpdateCompileTotal(obj.Backend, err != nil)
	}
	if err != nil {
		return errwrap.Wrapf(err, "could not compile program")
	}
	obj.exec = exec

	return nil
}

// UID returns the unique id of this compilation unit.
func (obj *Lang) UID() string { return obj.uid }

// Program returns the bound program, or nil if it could not be bound.
func (obj *Lang) Program() *yamlprog.Program { return obj.program }

// Diagnostics returns the errors that were found in the program.
func (obj *Lang) Diagnostics() []diagnostic.Diagnostic {
	return append([]diagnostic.Diagnostic{}, obj.diagnostics...)
}

// Run executes the compiled program once. The state is copied first, so the
// caller's one is never changed, and the final state is returned along with
// the value. It is safe to call Run from many goroutines at once.
func (obj *Lang) Run(state *runtime.State, ambient map[interfaces.Ident]types.Value) (types.Value, *runtime.State, error) {
	if obj.mutex == nil {
		return nil, nil, ErrNotInitialized
	}
	obj.mutex.Lock()
	exec := obj.exec
	if exec != nil {
		obj.wg.Add(1)
	}
	obj.mutex.Unlock()
	if exec == nil {
		return nil, nil, fmt.Errorf("program is not compiled")
	}
	defer obj.wg.Done()

	if state == nil {
		state = runtime.NewState()
	}
	ctx := runtime.NewContext(state.Copy())
	for k, v := range ambient {
		ctx.SetAmbient(k, v)
	}

	start := time.Now()
	value, err := exec.Run(ctx)
	if obj.Metrics != nil {
		obj.Metrics.UpdateRunTotal(obj.Backend, err != nil, time.Since(start))
	}
	if err != nil {
		return nil, nil, errwrap.Wrapf(err, "run of %s failed", obj.uid)
	}
	return value, ctx.State(), nil
}

// Close waits for any runs in progress and releases the program. It must be
// called when finished after any successful Init ran.
func (obj *Lang) Close() error {
	if obj.mutex == nil {
		return ErrNotInitialized
	}
	obj.mutex.Lock()
	obj.exec = nil // no new runs can start
	obj.mutex.Unlock()
	obj.wg.Wait()
	return nil
}
