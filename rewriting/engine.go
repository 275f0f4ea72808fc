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
	"sort"

	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/explain"
	"github.com/endink/sharding-rewrite/logging"
	"github.com/endink/sharding-rewrite/routing"
)

var logger = logging.GetLogger("rewriting")

// UnitSQL is the rewritten statement of one route unit.
type UnitSQL struct {
	Unit       *routing.RouteUnit `json:"unit"`
	SQL        string             `json:"sql"`
	Parameters []interface{}      `json:"parameters,omitempty"`
}

// RewriteResult holds one rewritten statement per route unit, in route order.
type RewriteResult struct {
	Tokens []*SQLToken `json:"tokens"`
	Units  []*UnitSQL  `json:"units"`
}

// Engine generates tokens and applies them once per route unit, it is safe for concurrent use.
type Engine struct {
	generators Generators
}

func NewEngine(generators ...Generator) *Engine {
	if len(generators) == 0 {
		generators = DefaultGenerators()
	}
	return &Engine{generators: generators}
}

func (e *Engine) Generators() Generators {
	return e.generators
}

// Rewrite generates the tokens of the statement and rewrites it for every route unit.
func (e *Engine) Rewrite(ctx *GenerateContext) (*RewriteResult, error) {
	tokens, err := e.generators.Generate(ctx)
	if err != nil {
		return nil, err
	}
	revised, err := paginationParameters(ctx)
	if err != nil {
		return nil, err
	}
	return Apply(ctx.Statement, ctx.Route, ctx.Rule, tokens, revised)
}

// Apply splices the tokens into the sql of the statement for every unit of the route.
// revised replaces parameter values by index, parameters of removed placeholders are dropped.
func Apply(stmt *explain.StatementContext, route *routing.RouteContext, rule *core.ShardingRule, tokens []*SQLToken, revised map[int]interface{}) (*RewriteResult, error) {
	sql := []rune(stmt.SQL)
	if err := ValidateTokens(len(sql), tokens); err != nil {
		return nil, err
	}
	ordered := applyOrder(tokens)
	rc := &RenderContext{Route: route, Rule: rule}
	result := &RewriteResult{Tokens: tokens, Units: make([]*UnitSQL, 0, len(route.Units))}
	for _, unit := range route.Units {
		text, removed, err := splice(sql, ordered, unit, rc)
		if err != nil {
			return nil, err
		}
		result.Units = append(result.Units, &UnitSQL{
			Unit:       unit,
			SQL:        text,
			Parameters: unitParameters(stmt.Parameters, removed, revised),
		})
	}
	logger.Debugf("rewrite %s with %d tokens for %d units", stmt.Kind, len(tokens), len(result.Units))
	return result, nil
}

func splice(sql []rune, ordered []*SQLToken, unit *routing.RouteUnit, rc *RenderContext) (string, map[int]bool, error) {
	buf := make([]rune, len(sql))
	copy(buf, sql)
	removed := make(map[int]bool)
	for _, t := range ordered {
		text, params, err := Render(t, unit, rc)
		if err != nil {
			return "", nil, err
		}
		for _, p := range params {
			removed[p] = true
		}
		tail := buf[t.Stop+1:]
		next := make([]rune, 0, t.Start+len(text)+len(tail))
		next = append(next, buf[:t.Start]...)
		next = append(next, []rune(text)...)
		next = append(next, tail...)
		buf = next
	}
	return string(buf), removed, nil
}

func unitParameters(parameters []interface{}, removed map[int]bool, revised map[int]interface{}) []interface{} {
	if len(parameters) == 0 {
		return nil
	}
	list := make([]interface{}, 0, len(parameters))
	for i, p := range parameters {
		if removed[i] {
			continue
		}
		if v, ok := revised[i]; ok {
			p = v
		}
		list = append(list, p)
	}
	return list
}

// applyOrder sorts tokens by descending start, a replacement goes before an insertion at the same start
// and insertions at the same start keep their generated order in the output.
func applyOrder(tokens []*SQLToken) []*SQLToken {
	type indexed struct {
		token *SQLToken
		index int
	}
	list := make([]indexed, len(tokens))
	for i, t := range tokens {
		list[i] = indexed{token: t, index: i}
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.token.Start != b.token.Start {
			return a.token.Start > b.token.Start
		}
		if a.token.IsInsertion() != b.token.IsInsertion() {
			return !a.token.IsInsertion()
		}
		return a.index > b.index
	})
	ordered := make([]*SQLToken, len(list))
	for i, item := range list {
		ordered[i] = item.token
	}
	return ordered
}

// ValidateTokens checks that spans are inside the sql and pairwise disjoint,
// insertions may share a start but must not fall inside a replaced span.
func ValidateTokens(length int, tokens []*SQLToken) error {
	var replaced []*SQLToken
	for _, t := range tokens {
		if t == nil || t.Payload == nil || t.Payload.tokenKind() != t.Kind {
			return core.NewRenderError("malformed token %v", t)
		}
		if t.IsInsertion() {
			if t.Stop != t.Start-1 || t.Start < 0 || t.Start > length {
				return core.NewRenderError("insertion %s is out of the sql bounds", t)
			}
			continue
		}
		if t.Start < 0 || t.Stop >= length {
			return core.NewRenderError("token %s is out of the sql bounds", t)
		}
		replaced = append(replaced, t)
	}
	sort.Slice(replaced, func(i, j int) bool {
		return replaced[i].Start < replaced[j].Start
	})
	for i := 1; i < len(replaced); i++ {
		if replaced[i].Start <= replaced[i-1].Stop {
			return core.NewRenderError("token %s overlaps %s", replaced[i], replaced[i-1])
		}
	}
	for _, t := range tokens {
		if !t.IsInsertion() {
			continue
		}
		for _, r := range replaced {
			if t.Start > r.Start && t.Start <= r.Stop {
				return core.NewRenderError("insertion %s falls inside %s", t, r)
			}
		}
	}
	return nil
}
