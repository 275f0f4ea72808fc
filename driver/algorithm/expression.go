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

	"github.com/Knetic/govaluate"
	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/core/comparison"
)

const TypeExpression = "EXPRESSION"

// Expression evaluates an arithmetic expression over the sharding column (or 'value'), e.g. "user_id % 4".
// A numeric result selects the target by its trailing number, a string result must be a target name.
type Expression struct {
	raw        string
	expression *govaluate.EvaluableExpression
}

func NewExpression(props core.Properties) (interface{}, error) {
	raw, ok := props.GetString(ExpressionPropertyName)
	if !ok {
		return nil, fmt.Errorf("configuration property '%s' missed for %s algorithm", ExpressionPropertyName, TypeExpression)
	}
	expr, err := govaluate.NewEvaluableExpression(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid expression '%s' for %s algorithm: %s", raw, TypeExpression, err)
	}
	if len(expr.Vars()) == 0 {
		return nil, fmt.Errorf("expression '%s' of %s algorithm does not use any variable", raw, TypeExpression)
	}
	return &Expression{raw: raw, expression: expr}, nil
}

func (e *Expression) GetType() string {
	return TypeExpression
}

func (e *Expression) DoPreciseSharding(availableTargets []string, value *core.PreciseShardingValue) (string, error) {
	v := comparison.Normalize(value.Value)
	params := map[string]interface{}{"value": v}
	for _, name := range e.expression.Vars() {
		if strings.EqualFold(name, value.Column) {
			params[name] = v
		}
	}
	result, err := e.expression.Evaluate(params)
	if err != nil {
		return "", fmt.Errorf("evaluate expression '%s' fault: %s", e.raw, err)
	}

	if s, ok := result.(string); ok {
		for _, t := range availableTargets {
			if strings.EqualFold(t, s) {
				return t, nil
			}
		}
		return "", fmt.Errorf("expression '%s' returned '%s' which is not an available target", e.raw, s)
	}
	n, ok := comparison.ToInt64(result)
	if !ok {
		return "", fmt.Errorf("expression '%s' must return an integer or a target name, got %v", e.raw, result)
	}
	if t, ok := findTargetBySuffix(availableTargets, n); ok {
		return t, nil
	}
	return "", fmt.Errorf("no target ends with '%d' in %v", n, availableTargets)
}
