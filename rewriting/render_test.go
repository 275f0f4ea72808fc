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
	"testing"

	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/explain"
	"github.com/endink/sharding-rewrite/routing"
	"github.com/endink/sharding-rewrite/testkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderUnit(ds string, table string) *routing.RouteUnit {
	return routing.NewRouteUnit(ds, routing.RouteMapper{LogicName: "t_order", ActualName: table})
}

func TestRenderAggregationDistinct(t *testing.T) {
	unit := orderUnit("ds_0", "t_order_0")

	token := newToken(explain.NewSegment(7, 40), &AggregationDistinctPayload{InnerExpression: "TEST_DISTINCT_INNER_EXPRESSION"})
	text, removed, err := Render(token, unit, nil)
	require.NoError(t, err)
	assert.Equal(t, "TEST_DISTINCT_INNER_EXPRESSION", text)
	assert.Empty(t, removed)

	token = newToken(explain.NewSegment(7, 40), &AggregationDistinctPayload{
		InnerExpression: "TEST_DISTINCT_INNER_EXPRESSION",
		Alias:           "AVG_DERIVED_COUNT_0",
	})
	text, _, err = Render(token, unit, nil)
	require.NoError(t, err)
	assert.Equal(t, "TEST_DISTINCT_INNER_EXPRESSION AS AVG_DERIVED_COUNT_0", text)
}

func TestRenderFixedTexts(t *testing.T) {
	unit := orderUnit("ds_0", "t_order_0")
	cases := []struct {
		name     string
		payload  TokenPayload
		expected string
	}{
		{"distinct prefix", &DistinctProjectionPrefixPayload{}, "DISTINCT "},
		{"remove", &RemovePayload{}, ""},
		{"row count", &RowCountPayload{Value: 20}, "20"},
		{"offset", &OffsetPayload{}, "0"},
		{"order by", &OrderByPayload{Items: []*explain.OrderByItem{
			{Kind: explain.OrderByColumn, Text: "user_id"},
			{Kind: explain.OrderByExpression, Text: "COUNT(*)", Direction: explain.OrderDesc},
			{Kind: explain.OrderByIndex, Index: 2},
		}}, " ORDER BY user_id ASC, COUNT(*) DESC, 2 ASC"},
		{"table", &TablePayload{Name: explain.IdentifierValue{Value: "t_order", Quote: explain.QuoteBackTick}, LogicTable: "t_order"}, "`t_order_0`"},
		{"constraint", &ConstraintPayload{Name: explain.IdentifierValue{Value: "pk_order"}, LogicTable: "t_order"}, "pk_order_t_order_0"},
		{"index", &IndexPayload{Name: explain.IdentifierValue{Value: "idx_status"}, LogicTable: "t_order"}, "idx_status_t_order_0"},
		{"cursor", &CursorPayload{Name: explain.IdentifierValue{Value: "c1"}}, "c1_t_order_0"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			text, _, err := Render(newToken(explain.NewSegment(0, 1), c.payload), unit, nil)
			require.NoError(t, err)
			assert.Equal(t, c.expected, text)
		})
	}
}

func TestRenderProjections(t *testing.T) {
	payload := &ProjectionsPayload{Items: []*DerivedEntry{
		{Expression: "COUNT(price)", Alias: "AVG_DERIVED_COUNT_0"},
		{Expression: "t_order.user_id", Alias: "ORDER_BY_DERIVED_0", Owner: "t_order", Column: "user_id"},
		{Expression: "o.status", Alias: "ORDER_BY_DERIVED_1", Owner: "o", Column: "status"},
	}}
	text, _, err := Render(newToken(insertAfter(10), payload), orderUnit("ds_1", "t_order_1"), nil)
	require.NoError(t, err)
	assert.Equal(t, ", COUNT(price) AS AVG_DERIVED_COUNT_0, t_order_1.user_id AS ORDER_BY_DERIVED_0, o.status AS ORDER_BY_DERIVED_1", text)
}

func TestRenderFilteredValues(t *testing.T) {
	payload := &InPredicatePayload{
		Column: "order_id",
		Prefix: "order_id IN (",
		Suffix: ")",
		Values: []*ValueEntry{
			{Text: "?", Parameters: []int{0}, DataNodes: []*core.DataNode{core.NewDataNode("ds_0", "t_order_1")}},
			{Text: "2", DataNodes: []*core.DataNode{core.NewDataNode("ds_0", "t_order_0")}},
			{Text: "?", Parameters: []int{1}, DataNodes: []*core.DataNode{core.NewDataNode("ds_0", "t_order_1")}},
			{Text: "NULL"},
		},
	}
	token := newToken(explain.NewSegment(0, 10), payload)

	text, removed, err := Render(token, orderUnit("ds_0", "t_order_1"), nil)
	require.NoError(t, err)
	assert.Equal(t, "order_id IN (?, ?, NULL)", text)
	assert.Empty(t, removed)

	text, removed, err = Render(token, orderUnit("ds_0", "t_order_0"), nil)
	require.NoError(t, err)
	assert.Equal(t, "order_id IN (2, NULL)", text)
	assert.Equal(t, []int{0, 1}, removed)

	payload.Values = payload.Values[:3]
	text, removed, err = Render(token, orderUnit("ds_1", "t_order_0"), nil)
	require.NoError(t, err)
	assert.Equal(t, "order_id IN (?, 2, ?)", text, "nothing routed to the unit keeps the list")
	assert.Empty(t, removed)
}

func TestRenderInsertValues(t *testing.T) {
	payload := &InsertValuesPayload{Rows: []*ValueEntry{
		{Text: "(?, ?)", Parameters: []int{0, 1}, DataNodes: []*core.DataNode{core.NewDataNode("ds_0", "t_order_0")}},
		{Text: "(?, ?)", Parameters: []int{2, 3}, DataNodes: []*core.DataNode{core.NewDataNode("ds_1", "t_order_1")}},
	}}
	token := newToken(explain.NewSegment(0, 14), payload)

	text, removed, err := Render(token, orderUnit("ds_1", "t_order_1"), nil)
	require.NoError(t, err)
	assert.Equal(t, "(?, ?)", text)
	assert.Equal(t, []int{0, 1}, removed)

	_, _, err = Render(token, orderUnit("ds_1", "t_order_0"), nil)
	assert.True(t, core.IsRenderError(err))
}

func TestRenderBindingTable(t *testing.T) {
	rc := &RenderContext{Rule: testkit.OrderRule(t)}
	token := newToken(explain.NewSegment(0, 11), &TablePayload{Name: explain.IdentifierValue{Value: "t_order_item"}, LogicTable: "t_order_item"})

	text, _, err := Render(token, orderUnit("ds_1", "t_order_1"), rc)
	require.NoError(t, err)
	assert.Equal(t, "t_order_item_1", text)

	unit := routing.NewRouteUnit("ds_1", routing.RouteMapper{LogicName: "t_account", ActualName: "t_account_1"})
	_, _, err = Render(token, unit, rc)
	assert.True(t, core.IsRenderError(err))

	_, _, err = Render(newToken(explain.NewSegment(0, 1), &CursorPayload{Name: explain.IdentifierValue{Value: "c"}}), routing.NewRouteUnit("ds_0"), rc)
	assert.True(t, core.IsRenderError(err))
}

func TestRenderMismatchedPayload(t *testing.T) {
	token := &SQLToken{Segment: explain.NewSegment(0, 1), Kind: TokenTable, Payload: &RemovePayload{}}
	_, _, err := Render(token, orderUnit("ds_0", "t_order_0"), nil)
	assert.True(t, core.IsRenderError(err))
}

func TestTokenKindString(t *testing.T) {
	assert.Equal(t, "InPredicate", TokenInPredicate.String())
	assert.Equal(t, "TokenKind(99)", TokenKind(99).String())
	assert.Equal(t, "Table[3, 9]", newToken(explain.NewSegment(3, 9), &TablePayload{}).String())
}
