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
	"strings"

	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/explain"
)

type aggregationDistinctGenerator struct{}

func (g *aggregationDistinctGenerator) Name() string {
	return TokenAggregationDistinct.String()
}

func (g *aggregationDistinctGenerator) Applies(ctx *GenerateContext) bool {
	return ctx.isSelect() && ctx.Statement.Select.Projections.HasAggregationDistinct()
}

// Generate replaces every distinct aggregation by its inner expression, the rows are aggregated after merging.
func (g *aggregationDistinctGenerator) Generate(ctx *GenerateContext) ([]*SQLToken, error) {
	projections := ctx.Statement.Select.Projections.AggregationDistinct
	tokens := make([]*SQLToken, 0, len(projections))
	for _, p := range projections {
		if strings.TrimSpace(p.InnerExpression) == "" {
			return nil, core.NewUnsupportedStatementError("distinct aggregation at %s has no inner expression", p.Segment)
		}
		for _, v := range p.Placeholders {
			if v == nil || p.Inner == nil || !p.Inner.Contains(v.Segment) {
				return nil, core.NewUnsupportedStatementError("distinct aggregation '%s' with parameters outside of its inner expression can not be rewritten",
					ctx.Statement.Text(p.Segment))
			}
		}
		tokens = append(tokens, newToken(p.Segment, &AggregationDistinctPayload{
			InnerExpression: p.InnerExpression,
			Alias:           p.Alias,
		}))
	}
	return tokens, nil
}

type distinctProjectionPrefixGenerator struct{}

func (g *distinctProjectionPrefixGenerator) Name() string {
	return TokenDistinctProjectionPrefix.String()
}

func (g *distinctProjectionPrefixGenerator) Applies(ctx *GenerateContext) bool {
	return ctx.isSelect() &&
		ctx.Statement.Select.Projections.HasAggregationDistinct() &&
		!ctx.Statement.Select.Projections.Distinct
}

func (g *distinctProjectionPrefixGenerator) Generate(ctx *GenerateContext) ([]*SQLToken, error) {
	start := ctx.Statement.Select.Projections.Start
	return []*SQLToken{newToken(insertAfter(start-1), &DistinctProjectionPrefixPayload{})}, nil
}

type projectionsGenerator struct{}

func (g *projectionsGenerator) Name() string {
	return TokenProjections.String()
}

func (g *projectionsGenerator) Applies(ctx *GenerateContext) bool {
	if !ctx.isSelect() || ctx.Statement.Select.Projections == nil {
		return false
	}
	return len(derivedEntries(ctx.Statement.Select.Projections)) > 0
}

// Generate appends the derived projections after the last projection.
func (g *projectionsGenerator) Generate(ctx *GenerateContext) ([]*SQLToken, error) {
	projections := ctx.Statement.Select.Projections
	for _, item := range derivedEntries(projections) {
		if strings.TrimSpace(item.Alias) == "" {
			return nil, core.NewUnsupportedStatementError("derived projection '%s' has no alias", item.Expression)
		}
	}
	return []*SQLToken{newToken(insertAfter(projections.Stop), &ProjectionsPayload{Items: derivedEntries(projections)})}, nil
}

func derivedEntries(projections *explain.ProjectionsContext) []*DerivedEntry {
	var items []*DerivedEntry
	for _, a := range projections.Aggregations {
		for _, d := range a.Derived {
			items = append(items, &DerivedEntry{Expression: d.Expression, Alias: d.Alias})
		}
	}
	for _, d := range projections.Derived {
		items = append(items, &DerivedEntry{Expression: d.Expression, Alias: d.Alias, Owner: d.Owner, Column: d.Column})
	}
	return items
}

type orderByGenerator struct{}

func (g *orderByGenerator) Name() string {
	return TokenOrderBy.String()
}

func (g *orderByGenerator) Applies(ctx *GenerateContext) bool {
	if !ctx.isSelect() {
		return false
	}
	orderBy := ctx.Statement.Select.OrderBy
	return orderBy != nil && orderBy.Generated && len(orderBy.Items) > 0
}

// Generate inserts the synthesized ORDER BY after the last clause it must follow.
func (g *orderByGenerator) Generate(ctx *GenerateContext) ([]*SQLToken, error) {
	stmt := ctx.Statement
	sel := stmt.Select
	var stop int
	switch {
	case sel.Window != nil:
		stop = sel.Window.Stop
	case sel.Having != nil:
		stop = sel.Having.Stop
	case sel.GroupBy != nil:
		stop = sel.GroupBy.Stop
	case stmt.Where != nil:
		stop = stmt.Where.Stop
	case sel.From != nil:
		stop = sel.From.Stop
	case sel.Projections != nil:
		stop = sel.Projections.Stop
	default:
		return nil, core.NewUnsupportedStatementError("no insert position for the generated ORDER BY in: %s", stmt.SQL)
	}
	return []*SQLToken{newToken(insertAfter(stop), &OrderByPayload{Items: sel.OrderBy.Items})}, nil
}

type removeGenerator struct{}

func (g *removeGenerator) Name() string {
	return TokenRemove.String()
}

func (g *removeGenerator) Applies(ctx *GenerateContext) bool {
	return len(ctx.Statement.RemoveSegments) > 0 || redundantGroupBy(ctx) != nil
}

func (g *removeGenerator) Generate(ctx *GenerateContext) ([]*SQLToken, error) {
	segments := make([]explain.Segment, 0, len(ctx.Statement.RemoveSegments)+1)
	for _, s := range ctx.Statement.RemoveSegments {
		if s != nil {
			segments = append(segments, *s)
		}
	}
	if groupBy := redundantGroupBy(ctx); groupBy != nil && !containsSegment(segments, groupBy.Segment) {
		segments = append(segments, groupBy.Segment)
	}
	tokens := make([]*SQLToken, 0, len(segments))
	for _, s := range segments {
		tokens = append(tokens, newToken(s, &RemovePayload{}))
	}
	return tokens, nil
}

// redundantGroupBy returns the GROUP BY added only for a distinct aggregation.
func redundantGroupBy(ctx *GenerateContext) *explain.GroupByContext {
	if !ctx.isSelect() || !ctx.Statement.Select.Projections.HasAggregationDistinct() {
		return nil
	}
	if g := ctx.Statement.Select.GroupBy; g != nil && g.Redundant {
		return g
	}
	return nil
}

func containsSegment(list []explain.Segment, s explain.Segment) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
