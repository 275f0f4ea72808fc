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
	"errors"
	"fmt"

	"github.com/endink/sharding-rewrite/core"
)

var _ InlineExpression = &inlineExpr{}

// InlineExpression expands expressions like "ds_${0..1}.t_order_${[0, 1]}" or "t_order_${order_id % 4}".
// Comma separated items are flattened in order, duplicated results are removed.
type InlineExpression interface {
	Flat(variables ...*Variable) ([]string, error)
	FlatScalar(variables ...*Variable) (string, error)
	RawExpression() string
	VariableNames() []string
}

type inlineExpr struct {
	expression string
	groups     []*inlineSegmentGroup
	varsNames  []string
}

func NewInlineExpression(expression string, variableNames ...string) (InlineExpression, error) {
	groups, err := splitSegments(expression, variableNames...)
	if err != nil {
		return nil, err
	}
	return &inlineExpr{
		expression: expression,
		groups:     groups,
		varsNames:  variableNames,
	}, nil
}

func (i *inlineExpr) RawExpression() string {
	return i.expression
}

func (i *inlineExpr) VariableNames() []string {
	return i.varsNames
}

// FlatScalar requires the expression to produce exactly one value.
func (i *inlineExpr) FlatScalar(variables ...*Variable) (string, error) {
	list, err := i.Flat(variables...)
	if err != nil {
		return "", err
	}
	if len(list) != 1 {
		return "", i.wrapExecuteError(fmt.Errorf("one value expected, but got %d", len(list)), variables...)
	}
	return list[0], nil
}

func (i *inlineExpr) Flat(variables ...*Variable) ([]string, error) {
	lists := make([][]string, 0, len(i.groups))
	for _, g := range i.groups {
		values, err := g.flat(variables...)
		if err != nil {
			return nil, i.wrapExecuteError(err, variables...)
		}
		lists = append(lists, values)
	}
	return core.DistinctStrings(lists...), nil
}

func (i *inlineExpr) wrapExecuteError(e error, vars ...*Variable) error {
	sb := core.NewStringBuilder()
	sb.WriteLine("inline sharding fault.")
	sb.WriteLine("Script: ", i.expression)
	sb.Write("Variables: ")
	if len(vars) > 0 {
		items := make([]interface{}, len(vars))
		for idx, v := range vars {
			items[idx] = v
		}
		sb.WriteJoin(", ", items...)
	} else {
		sb.Write("<none>")
	}
	sb.WriteLine()
	sb.WriteLine("Error:")
	sb.Write(e.Error())

	return errors.New(sb.String())
}
