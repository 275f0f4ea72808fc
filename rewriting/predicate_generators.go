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

type inPredicateGenerator struct{}

func (g *inPredicateGenerator) Name() string {
	return TokenInPredicate.String()
}

func (g *inPredicateGenerator) Applies(ctx *GenerateContext) bool {
	return ctx.isQuery() && ctx.Statement.Where != nil
}

// Generate rewrites 'col IN (...)' joined to the WHERE root by AND on a standard sharding column,
// each unit keeps the values routed to it.
func (g *inPredicateGenerator) Generate(ctx *GenerateContext) ([]*SQLToken, error) {
	stmt := ctx.Statement
	var tokens []*SQLToken
	for _, e := range stmt.Where.Conjuncts() {
		if e.Kind != explain.ExprIn || e.Not || e.Column == nil || len(e.Values) == 0 {
			continue
		}
		table, ok := standardShardingTable(ctx, e.Column)
		if !ok {
			continue
		}
		entries := make([]*ValueEntry, 0, len(e.Values))
		for _, v := range e.Values {
			if v == nil {
				return nil, core.NewUnsupportedStatementError("IN list of '%s' contains a non value item", e.Column)
			}
			value, err := v.Resolve(stmt.Parameters)
			if err != nil {
				return nil, err
			}
			entry := &ValueEntry{Text: stmt.Text(v.Segment), Parameters: placeholders([]*explain.ValueSegment{v})}
			if value != nil {
				if entry.DataNodes, err = routing.RouteValue(table, e.Column.Name, value, stmt.Hint); err != nil {
					return nil, err
				}
			}
			entries = append(entries, entry)
		}
		last := e.Values[len(e.Values)-1]
		tokens = append(tokens, newToken(e.Segment, &InPredicatePayload{
			Column:     core.TrimAndLower(e.Column.Name),
			LogicTable: table.LogicTable,
			Prefix:     stmt.Text(explain.NewSegment(e.Start, e.Values[0].Start-1)),
			Suffix:     stmt.Text(explain.NewSegment(last.Stop+1, e.Stop)),
			Values:     entries,
		}))
	}
	return tokens, nil
}

// standardShardingTable returns the sharding table of the column when a standard strategy shards on it.
func standardShardingTable(ctx *GenerateContext, column *explain.ColumnSegment) (*core.ShardingTable, bool) {
	var names []string
	if column.Owner != "" {
		name, ok := ctx.Statement.FindTable(column.Owner)
		if !ok {
			return nil, false
		}
		names = []string{name}
	} else {
		names = ctx.Rule.FindTablesByShardingColumn(column.Name, ctx.Statement.TableNames())
	}
	for _, name := range names {
		table, ok := ctx.Rule.FindShardingTable(name)
		if !ok {
			continue
		}
		if isStandardOn(table.DatabaseStrategy, column.Name) || isStandardOn(table.TableStrategy, column.Name) {
			return table, true
		}
	}
	return nil, false
}

func isStandardOn(strategy core.ShardingStrategy, column string) bool {
	s, ok := strategy.(*core.StandardShardingStrategy)
	return ok && s.Column == core.TrimAndLower(column)
}

type inValuesGenerator struct{}

func (g *inValuesGenerator) Name() string {
	return TokenInValues.String()
}

func (g *inValuesGenerator) Applies(ctx *GenerateContext) bool {
	return ctx.isQuery() && routing.FindRowIn(ctx.Statement, ctx.Rule) != nil
}

// Generate tags every row of the row value IN list with the data nodes routing computed for it.
func (g *inValuesGenerator) Generate(ctx *GenerateContext) ([]*SQLToken, error) {
	e := routing.FindRowIn(ctx.Statement, ctx.Rule)
	nodes := ctx.Route.OriginalDataNodes
	if e.List == nil || len(e.Rows) == 0 || len(nodes) != len(e.Rows) {
		return nil, nil
	}
	return []*SQLToken{newToken(*e.List, &InValuesPayload{Rows: rowEntries(ctx.Statement, e.Rows, nodes)})}, nil
}

type insertValuesGenerator struct{}

func (g *insertValuesGenerator) Name() string {
	return TokenInsertValues.String()
}

func (g *insertValuesGenerator) Applies(ctx *GenerateContext) bool {
	stmt := ctx.Statement
	return stmt.Kind == explain.StatementInsert && stmt.Insert != nil && len(stmt.Insert.Rows) > 0
}

// Generate covers every VALUES row, rows are tagged with their data nodes when routing resolved them.
func (g *insertValuesGenerator) Generate(ctx *GenerateContext) ([]*SQLToken, error) {
	rows := ctx.Statement.Insert.Rows
	nodes := ctx.Route.OriginalDataNodes
	if len(nodes) != len(rows) {
		nodes = nil
	}
	s := explain.NewSegment(rows[0].Start, rows[len(rows)-1].Stop)
	return []*SQLToken{newToken(s, &InsertValuesPayload{Rows: rowEntries(ctx.Statement, rows, nodes)})}, nil
}

func rowEntries(stmt *explain.StatementContext, rows []*explain.RowSegment, nodes [][]*core.DataNode) []*ValueEntry {
	entries := make([]*ValueEntry, len(rows))
	for i, r := range rows {
		entries[i] = &ValueEntry{Text: stmt.Text(r.Segment), Parameters: placeholders(r.Values)}
		if nodes != nil {
			entries[i].DataNodes = nodes[i]
		}
	}
	return entries
}
