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

// Package yamlprog provides the facilities for loading a program from a yaml
// file. It stands in for a real parser: each expression is written as a small
// yaml mapping, and the binder turns those into expression nodes with spans
// that point back into the file.
package yamlprog

import (
	"fmt"

	"github.com/purpleidea/remap/lang/ast"
	"github.com/purpleidea/remap/lang/diagnostic"
	"github.com/purpleidea/remap/lang/interfaces"
	"github.com/purpleidea/remap/lang/state"
	"github.com/purpleidea/remap/lang/types"
	"github.com/purpleidea/remap/util"
	"github.com/purpleidea/remap/util/errwrap"

	"gopkg.in/yaml.v3"
)

// Binding is the data structure of a declared binding.
type Binding struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Fallible bool   `yaml:"fallible"`
}

// Config is the data structure of a program file.
type Config struct {
	// Ambient lists the bindings that the host provides.
	Ambient []Binding `yaml:"ambient"`

	// Declare lists the variables that are declared before the program
	// runs. They have a type, but no value until something sets them.
	Declare []Binding `yaml:"declare"`

	// Program is the list of expressions, kept as a node for positions.
	Program yaml.Node `yaml:"program"`

	Comment string `yaml:"comment"`
}

// Parse parses a data stream into the config structure.
func (obj *Config) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, obj); err != nil {
		return err
	}
	if obj.Program.Kind != 0 && obj.Program.Kind != yaml.SequenceNode {
		return fmt.Errorf("program config: program must be a list")
	}
	return nil
}

// Program is the result of binding a file.
type Program struct {
	Source   *interfaces.Source
	Expr     ast.Expr
	Local    *state.LocalEnv
	External *state.ExternalEnv

	// TypeDef is the type of the program, taken while it was being bound.
	TypeDef types.TypeDef

	// Diagnostics are the errors that were found. If there are any, the
	// program runs, but it is not the program that was written.
	Diagnostics []diagnostic.Diagnostic
}

// Binder turns a program file into expression nodes.
type Binder struct {
	// Keywords are offered as suggestions for undefined references.
	Keywords []interfaces.Ident

	// Debug represents if we're running in debug mode or not.
	Debug bool

	// Logf is a logger which should be used.
	Logf func(format string, v ...interface{})

	source      *interfaces.Source
	local       *state.LocalEnv
	external    *state.ExternalEnv
	diagnostics *diagnostic.List
}

func (obj *Binder) logf(format string, v ...interface{}) {
	if obj.Debug && obj.Logf != nil {
		obj.Logf(format, v...)
	}
}

// TypeDefOf turns a declared binding into its type.
func TypeDefOf(b Binding) (types.TypeDef, error) {
	kind, err := types.ParseKind(b.Type)
	if err != nil {
		return types.TypeDef{}, errwrap.Wrapf(err, "binding %s", b.Name)
	}
	return types.NewTypeDef(kind).WithFallibility(b.Fallible), nil
}

// External builds the ambient environment from the config.
func (obj *Config) External() (*state.ExternalEnv, error) {
	bindings := []*state.Binding{}
	for _, x := range obj.Ambient {
		typ, err := TypeDefOf(x)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, state.NewBinding(interfaces.Ident(x.Name), typ))
	}
	return state.NewExternalEnv(bindings...)
}

// Bind parses the source and builds the program. Structural problems in the
// file are returned as an error right away. References to undefined bindings
// are collected as diagnostics and replaced by placeholders, so that every one
// of them is found in a single pass. If any were found, the program is returned
// along with an error that holds all of them.
func (obj *Binder) Bind(source *interfaces.Source) (*Program, error) {
	config := &Config{}
	if err := config.Parse(source.Body); err != nil {
		return nil, errwrap.Wrapf(err, "could not parse %s", source.Filename())
	}

	external, err := config.External()
	if err != nil {
		return nil, err
	}
	obj.source = source
	obj.external = external
	obj.local = state.NewLocalEnv()
	obj.diagnostics = &diagnostic.List{}

	for _, x := range config.Declare {
		typ, err := TypeDefOf(x)
		if err != nil {
			return nil, err
		}
		if prev := obj.local.DeclareVariable(state.NewBinding(interfaces.Ident(x.Name), typ)); prev != nil {
			return nil, fmt.Errorf("variable %s is declared twice", x.Name)
		}
	}

	exprs := []ast.Expr{}
	span := interfaces.NewSpan(0, len(source.Body))
	if config.Program.Kind == yaml.SequenceNode {
		span = obj.span(&config.Program)
		for _, n := range config.Program.Content {
			expr, err := obj.bind(n)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, expr)
		}
	}
	// the top level shares the root scope, so no scope is pushed here
	block := ast.NewBlock(span, exprs, obj.local, obj.external)

	program := &Program{
		Source:      source,
		Expr:        block,
		Local:       obj.local,
		External:    obj.external,
		TypeDef:     ast.TypeDef(block, obj.local, obj.external),
		Diagnostics: obj.diagnostics.All(),
	}
	obj.logf("bound %d expressions with %d diagnostics", len(exprs), obj.diagnostics.Len())
	return program, obj.diagnostics.Err()
}

// fail builds the error for a structural problem at a node.
func (obj *Binder) fail(n *yaml.Node, format string, v ...interface{}) error {
	return fmt.Errorf("%s: %s", obj.source.Byline(obj.span(n)), fmt.Sprintf(format, v...))
}

// bind turns a single expression node into an expression.
func (obj *Binder) bind(n *yaml.Node) (ast.Expr, error) {
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return nil, obj.fail(n, "an expression must be a mapping with a single key")
	}
	key, value := n.Content[0], n.Content[1]
	span := obj.span(n)

	switch key.Value {
	case "literal":
		var x interface{}
		if err := value.Decode(&x); err != nil {
			return nil, obj.fail(value, "bad literal: %v", err)
		}
		v, err := types.ValueOfGolang(x)
		if err != nil {
			return nil, obj.fail(value, "bad literal: %v", err)
		}
		return ast.NewLiteral(span, v), nil

	case "var":
		ident, err := obj.ident(value)
		if err != nil {
			return nil, err
		}
		expr, err := ast.NewVariable(obj.span(value), ident, obj.local, obj.Keywords)
		if err != nil {
			return obj.placeholder(err, obj.span(value), ident)
		}
		return expr, nil

	case "ambient":
		ident, err := obj.ident(value)
		if err != nil {
			return nil, err
		}
		expr, err := ast.NewAmbient(obj.span(value), ident, obj.external, obj.Keywords)
		if err != nil {
			return obj.placeholder(err, obj.span(value), ident)
		}
		return expr, nil

	case "assign":
		fields, err := obj.fields(value, "name", "value")
		if err != nil {
			return nil, err
		}
		if fields["name"] == nil || fields["value"] == nil {
			return nil, obj.fail(value, "assign needs a name and a value")
		}
		ident, err := obj.ident(fields["name"])
		if err != nil {
			return nil, err
		}
		expr, err := obj.bind(fields["value"])
		if err != nil {
			return nil, err
		}
		return ast.NewAssignment(span, ident, expr, obj.local, obj.external), nil

	case "block":
		if value.Kind != yaml.SequenceNode {
			return nil, obj.fail(value, "block must be a list")
		}
		obj.local.PushScope()
		exprs := []ast.Expr{}
		for _, x := range value.Content {
			expr, err := obj.bind(x)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, expr)
		}
		block := ast.NewBlock(span, exprs, obj.local, obj.external)
		if err := obj.local.PopScope(); err != nil {
			return nil, err
		}
		return block, nil

	case "if":
		fields, err := obj.fields(value, "predicate", "then", "else")
		if err != nil {
			return nil, err
		}
		if fields["predicate"] == nil || fields["then"] == nil {
			return nil, obj.fail(value, "if needs a predicate and a then")
		}
		predicate, err := obj.bind(fields["predicate"])
		if err != nil {
			return nil, err
		}
		consequent, err := obj.bind(fields["then"])
		if err != nil {
			return nil, err
		}
		var alternative ast.Expr
		if fields["else"] != nil {
			if alternative, err = obj.bind(fields["else"]); err != nil {
				return nil, err
			}
		}
		expr, err := ast.NewIf(span, predicate, consequent, alternative, obj.local, obj.external)
		if err != nil {
			d, ok := err.(diagnostic.Diagnostic)
			if !ok {
				return nil, err
			}
			obj.diagnostics.Add(d)
			return ast.NewLiteral(span, types.NewNull()), nil // keep going
		}
		return expr, nil
	}

	return nil, obj.fail(key, "unknown expression: %s", key.Value)
}

// placeholder records a diagnostic and returns the node that stands in for the
// reference which failed.
func (obj *Binder) placeholder(err error, span interfaces.Span, ident interfaces.Ident) (ast.Expr, error) {
	d, ok := err.(diagnostic.Diagnostic)
	if !ok {
		return nil, err
	}
	obj.logf("undefined reference to %s at %s", ident, obj.source.Byline(span))
	obj.diagnostics.Add(d)
	return ast.NewNoopVariable(span, ident), nil
}

// ident reads a scalar identifier.
func (obj *Binder) ident(n *yaml.Node) (interfaces.Ident, error) {
	if n.Kind != yaml.ScalarNode || n.Value == "" {
		return "", obj.fail(n, "expected an identifier")
	}
	return interfaces.Ident(n.Value), nil
}

// fields reads a mapping which may only have the allowed keys.
func (obj *Binder) fields(n *yaml.Node, allowed ...string) (map[string]*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, obj.fail(n, "expected a mapping")
	}
	m := make(map[string]*yaml.Node)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := n.Content[i].Value
		if !util.StrInList(k, allowed) {
			return nil, obj.fail(n.Content[i], "unexpected key: %s", k)
		}
		m[k] = n.Content[i+1]
	}
	return m, nil
}

// span returns the byte range covered by a node and everything inside it.
func (obj *Binder) span(n *yaml.Node) interfaces.Span {
	start := obj.source.Offset(n.Line-1, n.Column-1)
	end := start + len(n.Value)
	for _, x := range n.Content {
		s := obj.span(x)
		end = max(end, s.End)
	}
	return interfaces.NewSpan(start, end)
}
