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
	"testing"

	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/explain"
	"github.com/endink/sharding-rewrite/routing"
	"github.com/endink/sharding-rewrite/testkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateContext(t *testing.T, stmt *explain.StatementContext) *GenerateContext {
	t.Helper()
	rule := testkit.OrderRule(t)
	route, err := routing.NewEngine().Route(stmt, rule, nil)
	require.NoError(t, err)
	return &GenerateContext{Statement: stmt, Route: route, Rule: rule}
}

func tokensOf(tokens []*SQLToken, kind TokenKind) []*SQLToken {
	var list []*SQLToken
	for _, t := range tokens {
		if t.Kind == kind {
			list = append(list, t)
		}
	}
	return list
}

func TestDefaultGeneratorsOrder(t *testing.T) {
	assert.Equal(t, []string{
		"AggregationDistinct", "DistinctProjectionPrefix", "Constraint", "Cursor", "Index", "Table",
		"InPredicate", "InValues", "InsertValues", "OrderBy", "Projections", "Remove", "RowCount", "Offset",
	}, DefaultGenerators().Names())
}

func TestInPredicateOnShardingColumn(t *testing.T) {
	sql := "SELECT * FROM t_order WHERE user_id IN (1,2,3,4,5)"
	b := testkit.NewStatement(t, explain.StatementSelect, sql).Tables("t_order")
	pred := b.Pred("user_id IN (1,2,3,4,5)")
	ctx := generateContext(t, b.Where(pred).Build())
	require.Nil(t, ctx.Statement.Select)

	g := &inPredicateGenerator{}
	require.True(t, g.Applies(ctx))
	tokens, err := g.Generate(ctx)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, pred.Segment, tokens[0].Segment)
	payload := tokens[0].Payload.(*InPredicatePayload)
	assert.Equal(t, "user_id", payload.Column)
	assert.Equal(t, "user_id IN (", payload.Prefix)
	assert.Equal(t, ")", payload.Suffix)
	assert.Len(t, payload.Values, 5)
	testkit.AssertDataNodes(t, []string{"ds_1.t_order_0", "ds_1.t_order_1"}, payload.Values[0].DataNodes)
}

func TestInPredicateOnOtherColumn(t *testing.T) {
	sql := "SELECT * FROM t_order WHERE status IN (1,2,3,4,5)"
	b := testkit.NewStatement(t, explain.StatementSelect, sql).Tables("t_order")
	ctx := generateContext(t, b.Where(b.Pred("status IN (1,2,3,4,5)")).Build())

	tokens, err := (&inPredicateGenerator{}).Generate(ctx)
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestInPredicateSkipped(t *testing.T) {
	cases := []struct {
		name string
		sql  string
		pred func(b *testkit.StatementBuilder) *explain.Expr
	}{
		{"empty list", "SELECT * FROM t_order WHERE user_id IN ()", func(b *testkit.StatementBuilder) *explain.Expr {
			return b.Pred("user_id IN ()")
		}},
		{"not in", "SELECT * FROM t_order WHERE user_id NOT IN (1, 2)", func(b *testkit.StatementBuilder) *explain.Expr {
			return b.Pred("user_id NOT IN (1, 2)")
		}},
		{"under or", "SELECT * FROM t_order WHERE user_id IN (1, 2) OR status = 1", func(b *testkit.StatementBuilder) *explain.Expr {
			return b.Or(b.Pred("user_id IN (1, 2)"), b.Pred("status = 1"))
		}},
		{"complex strategy", "SELECT * FROM t_complex WHERE order_id IN (1, 2)", nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := testkit.NewStatement(t, explain.StatementSelect, c.sql)
			if c.pred == nil {
				b.Tables("t_complex")
				b.Where(b.Pred("order_id IN (1, 2)"))
			} else {
				b.Tables("t_order")
				b.Where(c.pred(b))
			}
			tokens, err := (&inPredicateGenerator{}).Generate(generateContext(t, b.Build()))
			require.NoError(t, err)
			assert.Empty(t, tokens)
		})
	}

	stmt := testkit.NewStatement(t, explain.StatementSelect, "SELECT * FROM t_order").Tables("t_order").Build()
	assert.False(t, (&inPredicateGenerator{}).Applies(generateContext(t, stmt)))
}

func TestInPredicateOnlyForQueries(t *testing.T) {
	for _, kind := range []explain.StatementKind{explain.StatementUpdate, explain.StatementDelete} {
		sql := "DELETE FROM t_order WHERE user_id IN (1, 2)"
		if kind == explain.StatementUpdate {
			sql = "UPDATE t_order SET status = 1 WHERE user_id IN (1, 2)"
		}
		b := testkit.NewStatement(t, kind, sql).Tables("t_order")
		ctx := generateContext(t, b.Where(b.Pred("user_id IN (1, 2)")).Build())
		assert.False(t, (&inPredicateGenerator{}).Applies(ctx), string(kind))
	}
}

func TestInValues(t *testing.T) {
	sql := "SELECT * FROM t_order WHERE (user_id, order_id) IN ((1, 2), (2, 3))"
	b := testkit.NewStatement(t, explain.StatementSelect, sql).Tables("t_order")
	stmt := b.Where(b.Pred("(user_id, order_id) IN ((1, 2), (2, 3))")).Build()
	ctx := generateContext(t, stmt)

	g := &inValuesGenerator{}
	require.True(t, g.Applies(ctx))
	tokens, err := g.Generate(ctx)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "((1, 2), (2, 3))", stmt.Text(tokens[0].Segment))
	rows := tokens[0].Payload.(*InValuesPayload).Rows
	require.Len(t, rows, 2)
	testkit.AssertDataNodes(t, []string{"ds_1.t_order_0"}, rows[0].DataNodes)
	testkit.AssertDataNodes(t, []string{"ds_0.t_order_1"}, rows[1].DataNodes)

	ctx.Route = &routing.RouteContext{Units: ctx.Route.Units}
	tokens, err = g.Generate(ctx)
	require.NoError(t, err)
	assert.Empty(t, tokens, "rows without data nodes are not rewritten")
}

func TestInsertValuesRoundTrip(t *testing.T) {
	sql := "INSERT INTO t_order (user_id, order_id) VALUES (1, 2), (2, 3), (1, 3), (2, 2)"
	stmt := testkit.NewStatement(t, explain.StatementInsert, sql).
		Tables("t_order").
		Insert([]string{"user_id", "order_id"}, "(1, 2)", "(2, 3)", "(1, 3)", "(2, 2)").
		Build()
	ctx := generateContext(t, stmt)

	tokens, err := (&insertValuesGenerator{}).Generate(ctx)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "(1, 2), (2, 3), (1, 3), (2, 2)", stmt.Text(tokens[0].Segment))

	rows := tokens[0].Payload.(*InsertValuesPayload).Rows
	require.Len(t, rows, len(stmt.Insert.Rows))
	for i, r := range rows {
		assert.Equal(t, stmt.Text(stmt.Insert.Rows[i].Segment), r.Text)
		assert.Equal(t, ctx.Route.OriginalDataNodes[i], r.DataNodes)
	}
}

func TestTableTokens(t *testing.T) {
	rule := testkit.OrderRule(t)
	sql := "SELECT * FROM t_order JOIN t_config ON t_order.status = t_config.status"
	stmt := testkit.NewStatement(t, explain.StatementSelect, sql).Tables("t_order", "t_config").Build()
	route := &routing.RouteContext{Units: []*routing.RouteUnit{
		routing.NewRouteUnit("ds_0",
			routing.RouteMapper{LogicName: "t_order", ActualName: "t_order_0"},
			routing.RouteMapper{LogicName: "t_config", ActualName: "t_config"}),
	}}
	ctx := &GenerateContext{Statement: stmt, Route: route, Rule: rule}

	g := &tableGenerator{}
	require.True(t, g.Applies(ctx))
	tokens, err := g.Generate(ctx)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "t_order", stmt.Text(tokens[0].Segment))

	stmt = testkit.NewStatement(t, explain.StatementSelect, "SELECT * FROM t_user").Tables("t_user").Build()
	ctx = generateContext(t, stmt)
	assert.False(t, ctx.Route.ContainsTableSharding())
	assert.False(t, g.Applies(ctx))

	stmt = testkit.NewStatement(t, explain.StatementSelect, "SELECT * FROM t_config").Tables("t_config").Build()
	tokens, err = g.Generate(generateContext(t, stmt))
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func paginationStatement(t *testing.T, sql string, sameOrder bool, parameters ...interface{}) *explain.StatementContext {
	b := testkit.NewStatement(t, explain.StatementSelect, sql, parameters...).Tables("t_order")
	orderItem := &explain.OrderByItem{Kind: explain.OrderByColumn, Text: "user_id"}
	if !sameOrder {
		orderItem = &explain.OrderByItem{Kind: explain.OrderByColumn, Text: "order_id", Direction: explain.OrderDesc}
	}
	pagination := &explain.Pagination{Style: explain.LimitStyleLimit}
	if len(parameters) > 0 {
		pagination.Offset = &explain.PaginationValue{Segment: b.Seg("?", 0), Placeholder: true, ParamIndex: 0}
		pagination.RowCount = &explain.PaginationValue{Segment: b.Seg("?", 1), Placeholder: true, ParamIndex: 1}
	} else {
		pagination.Offset = &explain.PaginationValue{Segment: b.Seg("12"), Value: 12}
		pagination.RowCount = &explain.PaginationValue{Segment: b.Seg("8"), Value: 8}
	}
	return b.Select(&explain.SelectContext{
		Projections: &explain.ProjectionsContext{
			Segment:      b.Seg("user_id, COUNT(*)"),
			Aggregations: []*explain.AggregationProjection{{Segment: b.Seg("COUNT(*)"), Type: explain.AggregationCount, Expression: "COUNT(*)"}},
		},
		GroupBy:    &explain.GroupByContext{Segment: b.Seg("GROUP BY user_id"), Items: []*explain.OrderByItem{{Kind: explain.OrderByColumn, Text: "user_id"}}},
		OrderBy:    &explain.OrderByContext{Segment: b.Seg("ORDER BY"), Items: []*explain.OrderByItem{orderItem}},
		Pagination: pagination,
	}).Build()
}

func TestRowCountAndOffset(t *testing.T) {
	sql := "SELECT user_id, COUNT(*) FROM t_order GROUP BY user_id ORDER BY user_id LIMIT 12, 8"
	ctx := generateContext(t, paginationStatement(t, sql, true))
	require.True(t, ctx.isMultiUnit())

	tokens, err := DefaultGenerators().Generate(ctx)
	require.NoError(t, err)
	rowCount := tokensOf(tokens, TokenRowCount)
	require.Len(t, rowCount, 1)
	assert.EqualValues(t, 20, rowCount[0].Payload.(*RowCountPayload).Value)
	assert.Equal(t, "8", ctx.Statement.Text(rowCount[0].Segment))
	offset := tokensOf(tokens, TokenOffset)
	require.Len(t, offset, 1)
	assert.Equal(t, "12", ctx.Statement.Text(offset[0].Segment))

	sql = "SELECT user_id, COUNT(*) FROM t_order GROUP BY user_id ORDER BY order_id DESC LIMIT 12, 8"
	ctx = generateContext(t, paginationStatement(t, sql, false))
	tokens, err = (&rowCountGenerator{}).Generate(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, math.MaxInt32, tokens[0].Payload.(*RowCountPayload).Value)
}

func TestRowCountSingleUnit(t *testing.T) {
	sql := "SELECT user_id, COUNT(*) FROM t_order WHERE user_id = 1 AND order_id = 1 GROUP BY user_id ORDER BY user_id LIMIT 12, 8"
	stmt := paginationStatement(t, sql, true)
	b := testkit.NewStatement(t, explain.StatementSelect, sql)
	stmt.Where = b.And(b.Pred("user_id = 1"), b.Pred("order_id = 1"))
	ctx := generateContext(t, stmt)
	require.True(t, ctx.Route.IsSingleRouting())

	assert.False(t, (&rowCountGenerator{}).Applies(ctx))
	assert.False(t, (&offsetGenerator{}).Applies(ctx))
}

func TestRevisedRowCount(t *testing.T) {
	plain := func(offset int64, count int64) *explain.SelectContext {
		return &explain.SelectContext{Pagination: &explain.Pagination{
			Offset:   &explain.PaginationValue{Value: offset},
			RowCount: &explain.PaginationValue{Value: count},
		}}
	}
	n, err := revisedRowCount(plain(12, 8), nil)
	require.NoError(t, err)
	assert.EqualValues(t, 20, n)

	top := plain(12, 20)
	top.Pagination.Style = explain.LimitStyleTop
	n, _ = revisedRowCount(top, nil)
	assert.EqualValues(t, 20, n)

	aggregated := plain(0, 10)
	aggregated.Projections = &explain.ProjectionsContext{Aggregations: []*explain.AggregationProjection{{Type: explain.AggregationMax}}}
	n, _ = revisedRowCount(aggregated, nil)
	assert.EqualValues(t, math.MaxInt32, n)
}

func TestAggregationDistinctWithParameters(t *testing.T) {
	sql := "SELECT SUM(DISTINCT order_id + ?) FROM t_order"
	b := testkit.NewStatement(t, explain.StatementSelect, sql, 1).Tables("t_order")
	inner := b.Seg("order_id")
	stmt := b.Select(&explain.SelectContext{Projections: &explain.ProjectionsContext{
		Segment: b.Seg("SUM(DISTINCT order_id + ?)"),
		AggregationDistinct: []*explain.AggregationDistinctProjection{
			{
				Segment:         b.Seg("SUM(DISTINCT order_id + ?)"),
				Type:            explain.AggregationSum,
				InnerExpression: "order_id",
				Inner:           &inner,
				Placeholders:    []*explain.ValueSegment{b.Value("?")},
			},
		},
	}}).Build()

	_, err := DefaultGenerators().Generate(generateContext(t, stmt))
	assert.True(t, core.IsUnsupportedStatementError(err))
}

func TestAggregationDistinctParametersInside(t *testing.T) {
	cases := []struct {
		name       string
		sql        string
		projection string
		inner      string
		parameters []interface{}
	}{
		{"placeholder in inner expression", "SELECT COUNT(DISTINCT order_id + ?) FROM t_order", "COUNT(DISTINCT order_id + ?)", "order_id + ?", []interface{}{1}},
		{"question mark in literal", "SELECT COUNT(DISTINCT CONCAT(status, '?')) FROM t_order", "COUNT(DISTINCT CONCAT(status, '?'))", "CONCAT(status, '?')", nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := testkit.NewStatement(t, explain.StatementSelect, c.sql, c.parameters...).Tables("t_order")
			inner := b.Seg(c.inner)
			projection := &explain.AggregationDistinctProjection{
				Segment:         b.Seg(c.projection),
				Type:            explain.AggregationCount,
				InnerExpression: c.inner,
				Inner:           &inner,
			}
			if len(c.parameters) > 0 {
				projection.Placeholders = []*explain.ValueSegment{b.Value("?")}
			}
			stmt := b.Select(&explain.SelectContext{Projections: &explain.ProjectionsContext{
				Segment:             b.Seg(c.projection),
				AggregationDistinct: []*explain.AggregationDistinctProjection{projection},
			}}).Build()

			tokens, err := (&aggregationDistinctGenerator{}).Generate(generateContext(t, stmt))
			require.NoError(t, err)
			require.Len(t, tokens, 1)
			assert.Equal(t, c.inner, tokens[0].Payload.(*AggregationDistinctPayload).InnerExpression)
		})
	}
}

func TestIndexTokens(t *testing.T) {
	sql := "DROP INDEX idx_status, idx_other"
	b := testkit.NewStatement(t, explain.StatementDropIndex, sql)
	stmt := b.Modify(func(s *explain.StatementContext) {
		s.Indexes = []*explain.IndexSegment{
			{Segment: b.Seg("idx_status"), Name: explain.IdentifierValue{Value: "idx_status"}},
			{Segment: b.Seg("idx_other"), Name: explain.IdentifierValue{Value: "idx_other"}},
		}
	}).Build()
	metadata := explain.NewMetadata("logic_db")
	metadata.AddIndex("logic_db", "idx_status", "t_order")
	metadata.AddIndex("logic_db", "idx_other", "t_other")

	tokens, err := (&indexGenerator{}).Generate(&GenerateContext{Statement: stmt, Rule: testkit.OrderRule(t), Metadata: metadata, Route: &routing.RouteContext{}})
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	payload := tokens[0].Payload.(*IndexPayload)
	assert.Equal(t, "logic_db", payload.Schema)
	assert.Equal(t, "t_order", payload.LogicTable)
}

func TestGenerateIdempotent(t *testing.T) {
	sql := "SELECT user_id, COUNT(*) FROM t_order GROUP BY user_id ORDER BY user_id LIMIT 12, 8"
	ctx := generateContext(t, paginationStatement(t, sql, true))

	first, err := DefaultGenerators().Generate(ctx)
	require.NoError(t, err)
	second, err := DefaultGenerators().Generate(ctx)
	require.NoError(t, err)
	testkit.MustMatch(t, first, second, "tokens generated twice differ")
}

func TestGenerateRequiresRoute(t *testing.T) {
	stmt := testkit.NewStatement(t, explain.StatementSelect, "SELECT 1").Build()
	_, err := DefaultGenerators().Generate(&GenerateContext{Statement: stmt})
	assert.True(t, core.IsRenderError(err))
}
