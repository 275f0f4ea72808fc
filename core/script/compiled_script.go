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
	"strconv"

	"github.com/d5/tengo/v2"
	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/core/comparison"
)

// CompiledScript is safe for concurrent use, every execution runs on a clone of the compiled program.
type CompiledScript interface {
	Execute(variables ...*Variable) ([]string, error)
	Raw() string
}

type tengoScript struct {
	raw      string
	compiled *tengo.Compiled
}

func (script *tengoScript) Raw() string {
	return script.raw
}

func (script *tengoScript) Execute(variables ...*Variable) ([]string, error) {
	c := script.compiled.Clone()
	for _, v := range variables {
		value, err := toScriptValue(v.Value)
		if err != nil {
			return nil, err
		}
		if err = c.Set(v.Name, value); err != nil {
			return nil, fmt.Errorf("set variable '%s' fault: %s", v.Name, err)
		}
	}
	if err := c.Run(); err != nil {
		return nil, err
	}
	v := c.Get(resultVar)
	list, ok := toStringList(v.Value())
	if !ok {
		return nil, invalidReturnTypeError(script.raw, v)
	}
	return list, nil
}

func toScriptValue(value interface{}) (interface{}, error) {
	switch v := comparison.Normalize(value).(type) {
	case nil, int64, float64, string, bool:
		return v, nil
	case uint64:
		return float64(v), nil
	}
	return nil, fmt.Errorf("unsupported script variable type: %T", value)
}

func toStringList(value interface{}) ([]string, bool) {
	switch v := value.(type) {
	case []interface{}:
		list := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := toStringList(item)
			if !ok {
				return nil, false
			}
			list = append(list, s...)
		}
		return list, true
	case string:
		return []string{v}, true
	case int64:
		return []string{strconv.FormatInt(v, 10)}, true
	case float64:
		return []string{strconv.FormatFloat(v, 'f', -1, 64)}, true
	case rune:
		return []string{string(v)}, true
	}
	return nil, false
}

func invalidReturnTypeError(raw string, v *tengo.Variable) error {
	return fmt.Errorf("script return invalid type, excepted number, string or an array of them%sscript: %s%sreturn type: %s",
		core.LineSeparator, raw, core.LineSeparator, v.ValueType())
}
