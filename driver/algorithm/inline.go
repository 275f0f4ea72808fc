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

package algorithm

import (
	"fmt"
	"strings"

	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/core/script"
)

const (
	TypeInline        = "INLINE"
	TypeComplexInline = "COMPLEX_INLINE"
	TypeHintInline    = "HINT_INLINE"
	hintVariableName  = "value"
)

// Inline evaluates a groovy like inline expression, e.g. t_order_${order_id % 2}.
// Range values are not supported, the standard strategy falls back to every target.
type Inline struct {
	expression script.InlineExpression
	variables  []string
}

func NewInline(props core.Properties) (interface{}, error) {
	b, err := newInlineBuilder(props)
	if err != nil {
		return nil, err
	}
	expr, columns, err := b.Build()
	if err != nil {
		return nil, err
	}
	return &Inline{expression: expr, variables: columns}, nil
}

func (i *Inline) GetType() string {
	return TypeInline
}

func (i *Inline) DoPreciseSharding(_ []string, value *core.PreciseShardingValue) (string, error) {
	name, ok := i.findVariable(value.Column)
	if !ok {
		return "", fmt.Errorf("column '%s' is not used by inline expression '%s'", value.Column, i.expression.RawExpression())
	}
	return i.expression.FlatScalar(script.NewVariable(name, value.Value))
}

func (i *Inline) findVariable(column string) (string, bool) {
	for _, v := range i.variables {
		if strings.EqualFold(v, column) {
			return v, true
		}
	}
	return "", false
}

// ComplexInline evaluates the expression for every combination of the sharding column values.
type ComplexInline struct {
	expression script.InlineExpression
	columns    []string
}

func NewComplexInline(props core.Properties) (interface{}, error) {
	b, err := newInlineBuilder(props)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(b.ShardingColumns) == "" {
		return nil, fmt.Errorf("configuration property '%s' missed for complex inline algorithm", ShardingColumnsPropertyName)
	}
	expr, columns, err := b.Build()
	if err != nil {
		return nil, err
	}
	return &ComplexInline{expression: expr, columns: columns}, nil
}

func (c *ComplexInline) GetType() string {
	return TypeComplexInline
}

// DoComplexSharding returns every target unless all the sharding columns have precise values.
func (c *ComplexInline) DoComplexSharding(availableTargets []string, value *core.ComplexKeysShardingValue) ([]string, error) {
	lists := make([][]interface{}, 0, len(c.columns))
	for _, col := range c.columns {
		values, ok := findColumnValues(value.ColumnValues, col)
		if !ok {
			return availableTargets, nil
		}
		lists = append(lists, values)
	}

	var targets []string
	for _, row := range core.Permute(lists) {
		vars := make([]*script.Variable, len(row))
		for idx, v := range row {
			vars[idx] = script.NewVariable(c.columns[idx], v)
		}
		target, err := c.expression.FlatScalar(vars...)
		if err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}
	return core.DistinctStrings(targets), nil
}

func findColumnValues(values map[string][]interface{}, column string) ([]interface{}, bool) {
	for key, v := range values {
		if strings.EqualFold(key, column) {
			return v, true
		}
	}
	return nil, false
}

// HintInline evaluates the expression with the variable 'value' for every hint value.
type HintInline struct {
	expression script.InlineExpression
}

func NewHintInline(props core.Properties) (interface{}, error) {
	b, err := newInlineBuilder(props)
	if err != nil {
		return nil, err
	}
	b.Expression = core.IfBlank(b.Expression, "${value}")
	expr, _, err := b.Build(hintVariableName)
	if err != nil {
		return nil, err
	}
	return &HintInline{expression: expr}, nil
}

func (h *HintInline) GetType() string {
	return TypeHintInline
}

func (h *HintInline) DoHintSharding(_ []string, value *core.HintShardingValue) ([]string, error) {
	targets := make([]string, 0, len(value.Values))
	for _, v := range value.Values {
		target, err := h.expression.FlatScalar(script.NewVariable(hintVariableName, v))
		if err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}
	return core.DistinctStrings(targets), nil
}
