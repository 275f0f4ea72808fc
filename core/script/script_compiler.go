/*
 * Copyright 2021. Go-Sharding Author All Rights Reserved.
 *
 *  Licensed under the Apache License, Version 2.0 (the "License");
 *  you may not use this file except in compliance with the License.
 *  You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing, software
 *  distributed under the License is distributed on an "AS IS" BASIS,
 *  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *  See the License for the specific language governing permissions and
 *  limitations under the License.
 *
 *  File author: Anders Xiao
 */

package script

import (
	"fmt"

	"github.com/d5/tengo/v2"
)

const resultVar = "_r"

type Variable struct {
	Name  string
	Value interface{}
}

func (v *Variable) String() string {
	return fmt.Sprintf("%s=%v", v.Name, v.Value)
}

func NewVariable(name string, value interface{}) *Variable {
	return &Variable{Name: name, Value: value}
}

type Compiler interface {
	// Var declares a variable, only declared variables can be set when the script is executed.
	Var(name string, value interface{}) error
	Compile() (CompiledScript, error)
}

type scriptCompiler struct {
	script *tengo.Script
	raw    string
}

func (s *scriptCompiler) Compile() (CompiledScript, error) {
	c, err := s.script.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile script '%s' fault: %s", s.raw, err)
	}
	return &tengoScript{
		raw:      s.raw,
		compiled: c,
	}, nil
}

func (s *scriptCompiler) Var(name string, value interface{}) error {
	v, err := toScriptValue(value)
	if err != nil {
		return err
	}
	if err := s.script.Add(name, v); err != nil {
		return fmt.Errorf("add variable '%s' to compile fault, %s", name, err)
	}
	return nil
}

// NewCompiler accepts tengo expressions plus the inline shortcuts 'a..b' and single quoted strings.
func NewCompiler(script string) (Compiler, error) {
	content := fmt.Sprintf("%s := %s", resultVar, normalizeScript(script))
	s := tengo.NewScript([]byte(content))
	if err := s.Add(rangeFunctionName, rangeFunction); err != nil {
		return nil, err
	}
	return &scriptCompiler{
		raw:    script,
		script: s,
	}, nil
}

// CompileScript compiles a script which can use the given variable names.
func CompileScript(script string, variableNames ...string) (CompiledScript, error) {
	c, err := NewCompiler(script)
	if err != nil {
		return nil, err
	}
	for _, name := range variableNames {
		if err := c.Var(name, nil); err != nil {
			return nil, err
		}
	}
	return c.Compile()
}
