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

package rewriting

import (
	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/explain"
	"github.com/endink/sharding-rewrite/routing"
)

// GenerateContext is the input of token generation, nothing in it is modified by generators.
type GenerateContext struct {
	Statement *explain.StatementContext
	Route     *routing.RouteContext
	Rule      *core.ShardingRule
	Metadata  *explain.Metadata
}

func (c *GenerateContext) isQuery() bool {
	return c.Statement.Kind == explain.StatementSelect
}

// isSelect reports a query that carries its select clauses.
func (c *GenerateContext) isSelect() bool {
	return c.isQuery() && c.Statement.Select != nil
}

func (c *GenerateContext) isMultiUnit() bool {
	return c.Route != nil && len(c.Route.Units) > 1
}

// Generator emits the tokens of one kind, Generate is only called when Applies returns true.
type Generator interface {
	Name() string
	Applies(ctx *GenerateContext) bool
	Generate(ctx *GenerateContext) ([]*SQLToken, error)
}

// Generators is an ordered generator list, it is built once and never changed.
type Generators []Generator

// DefaultGenerators returns every generator of this package in their fixed order.
func DefaultGenerators() Generators {
	return Generators{
		&aggregationDistinctGenerator{},
		&distinctProjectionPrefixGenerator{},
		&constraintGenerator{},
		&cursorGenerator{},
		&indexGenerator{},
		&tableGenerator{},
		&inPredicateGenerator{},
		&inValuesGenerator{},
		&insertValuesGenerator{},
		&orderByGenerator{},
		&projectionsGenerator{},
		&removeGenerator{},
		&rowCountGenerator{},
		&offsetGenerator{},
	}
}

func (g Generators) Names() []string {
	names := make([]string, len(g))
	for i, item := range g {
		names[i] = item.Name()
	}
	return names
}

// Generate runs the generators in order and returns the concatenated tokens.
func (g Generators) Generate(ctx *GenerateContext) ([]*SQLToken, error) {
	if ctx == nil || ctx.Statement == nil || ctx.Route == nil {
		return nil, core.NewRenderError("statement and route context are required to generate tokens")
	}
	var tokens []*SQLToken
	for _, item := range g {
		if !item.Applies(ctx) {
			continue
		}
		list, err := item.Generate(ctx)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, list...)
	}
	return tokens, nil
}

// placeholders returns the parameter indexes of the placeholder values.
func placeholders(values []*explain.ValueSegment) []int {
	var list []int
	for _, v := range values {
		if v != nil && v.Placeholder {
			list = append(list, v.ParamIndex)
		}
	}
	return list
}
