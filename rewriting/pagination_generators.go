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
	"math"

	"github.com/endink/sharding-rewrite/explain"
)

// pagination returns the pagination of a select routed to more than one unit.
func pagination(ctx *GenerateContext) *explain.Pagination {
	if !ctx.isSelect() || !ctx.isMultiUnit() {
		return nil
	}
	return ctx.Statement.Select.Pagination
}

// isMaxRowCount reports whether every row of each shard is needed for merging:
// grouped or aggregated rows whose GROUP BY differs from ORDER BY can not be limited per shard.
func isMaxRowCount(sel *explain.SelectContext) bool {
	groupBy := sel.GroupByItems()
	if len(groupBy) == 0 && !sel.Projections.HasAggregation() {
		return false
	}
	return !(len(groupBy) > 0 && explain.SameItems(groupBy, sel.OrderByItems()))
}

// revisedRowCount is the row count every shard must return so that the merged result can be paginated.
func revisedRowCount(sel *explain.SelectContext, parameters []interface{}) (int64, error) {
	if isMaxRowCount(sel) {
		return math.MaxInt32, nil
	}
	p := sel.Pagination
	count, err := p.RowCountValue(parameters)
	if err != nil {
		return 0, err
	}
	if p.Style != "" && p.Style != explain.LimitStyleLimit {
		return count, nil
	}
	offset, err := p.OffsetValue(parameters)
	if err != nil {
		return 0, err
	}
	return offset + count, nil
}

type rowCountGenerator struct{}

func (g *rowCountGenerator) Name() string {
	return TokenRowCount.String()
}

func (g *rowCountGenerator) Applies(ctx *GenerateContext) bool {
	p := pagination(ctx)
	return p.HasLimit() && !p.RowCount.Placeholder
}

func (g *rowCountGenerator) Generate(ctx *GenerateContext) ([]*SQLToken, error) {
	sel := ctx.Statement.Select
	value, err := revisedRowCount(sel, ctx.Statement.Parameters)
	if err != nil {
		return nil, err
	}
	return []*SQLToken{newToken(sel.Pagination.RowCount.Segment, &RowCountPayload{Value: value})}, nil
}

type offsetGenerator struct{}

func (g *offsetGenerator) Name() string {
	return TokenOffset.String()
}

func (g *offsetGenerator) Applies(ctx *GenerateContext) bool {
	p := pagination(ctx)
	return p.HasOffset() && !p.Offset.Placeholder
}

// Generate resets the offset, every shard returns its rows from the first one.
func (g *offsetGenerator) Generate(ctx *GenerateContext) ([]*SQLToken, error) {
	return []*SQLToken{newToken(ctx.Statement.Select.Pagination.Offset.Segment, &OffsetPayload{Value: 0})}, nil
}

// paginationParameters returns the revised values of pagination placeholders, keyed by parameter index.
func paginationParameters(ctx *GenerateContext) (map[int]interface{}, error) {
	p := pagination(ctx)
	if p == nil {
		return nil, nil
	}
	revised := make(map[int]interface{})
	if p.HasOffset() && p.Offset.Placeholder {
		revised[p.Offset.ParamIndex] = int64(0)
	}
	if p.HasLimit() && p.RowCount.Placeholder {
		value, err := revisedRowCount(ctx.Statement.Select, ctx.Statement.Parameters)
		if err != nil {
			return nil, err
		}
		revised[p.RowCount.ParamIndex] = value
	}
	return revised, nil
}
