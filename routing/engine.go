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

package routing

import (
	"strings"
	"time"

	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/explain"
	"github.com/endink/sharding-rewrite/logging"
)

var logger = logging.GetLogger("routing")

// Engine computes route contexts, it keeps no per statement state and is safe for concurrent use.
type Engine struct {
	maxConditions int
	fullRouteLog  *logging.ThrottledLogger
}

type EngineOption func(e *Engine)

func WithMaxConditions(max int) EngineOption {
	return func(e *Engine) {
		e.maxConditions = max
	}
}

func WithLogger(log logging.StandardLogger) EngineOption {
	return func(e *Engine) {
		e.fullRouteLog = logging.NewThrottledLogger("full route", log, time.Minute)
	}
}

func NewEngine(options ...EngineOption) *Engine {
	e := &Engine{
		maxConditions: DefaultMaxConditions,
	}
	for _, option := range options {
		option(e)
	}
	if e.fullRouteLog == nil {
		e.fullRouteLog = logging.NewThrottledLogger("full route", logger, time.Minute)
	}
	return e
}

type tableGroup struct {
	primary *core.ShardingTable
	members []*core.ShardingTable
}

// unitRoute is the route of one table group inside one data source.
type unitRoute struct {
	dataSource string
	mappers    []RouteMapper
}

// Route computes the route context of the statement, metadata is only needed by index statements without table.
func (e *Engine) Route(stmt *explain.StatementContext, rule *core.ShardingRule, metadata *explain.Metadata) (*RouteContext, error) {
	if stmt == nil || rule == nil {
		return nil, core.NewRoutingError("statement and sharding rule are required for routing")
	}
	names := stmt.TableNames()
	if stmt.Kind.IsIndexDDL() {
		for _, index := range stmt.Indexes {
			if _, table, ok := ResolveIndexTable(stmt, index, metadata); ok && !core.ContainsIgnoreCase(names, table) {
				names = append(names, table)
			}
		}
	}

	var sharding, broadcast, single []string
	for _, n := range names {
		switch {
		case rule.IsShardingTable(n):
			sharding = append(sharding, n)
		case rule.IsBroadcastTable(n):
			broadcast = append(broadcast, n)
		default:
			single = append(single, n)
		}
	}

	if len(sharding) == 0 {
		return e.routeUnsharded(stmt, rule, broadcast, single), nil
	}
	if len(single) > 0 {
		return nil, core.NewRoutingError("sharding tables %v can not be used together with single tables %v", sharding, single)
	}

	conditions, err := ExtractConditions(stmt, rule, sharding, e.maxConditions)
	if err != nil {
		return nil, err
	}
	if conditions.IsUnconstrained() && stmt.Kind.IsDML() && stmt.Kind != explain.StatementInsert {
		e.fullRouteLog.Warnf("statement on %v is routed to all data nodes: %s", sharding, stmt.SQL)
	}

	groups := groupTables(rule, sharding)
	routes := make([][]*unitRoute, len(groups))
	var rowNodes [][]*core.DataNode
	for i, g := range groups {
		r, each, err := routeGroup(rule, g, conditions, stmt.Hint)
		if err != nil {
			return nil, err
		}
		routes[i] = r
		if i == 0 && stmt.Kind == explain.StatementInsert {
			rowNodes = each
		}
	}

	units, err := combine(routes, sharding)
	if err != nil {
		return nil, err
	}
	for _, u := range units {
		for _, b := range broadcast {
			u.TableMappers = append(u.TableMappers, RouteMapper{LogicName: b, ActualName: b})
		}
	}

	ctx := &RouteContext{Units: units, OriginalDataNodes: rowNodes}
	if stmt.Kind.IsQuery() {
		if ctx.OriginalDataNodes, err = rowInDataNodes(stmt, rule, sharding); err != nil {
			return nil, err
		}
	}
	logger.Debugf("route %s: %d units", stmt.Kind, len(ctx.Units))
	return ctx, nil
}

// routeUnsharded routes statements without sharding tables.
// Single tables live in the default data source, a query on broadcast tables needs one data source only.
func (e *Engine) routeUnsharded(stmt *explain.StatementContext, rule *core.ShardingRule, broadcast []string, single []string) *RouteContext {
	mappers := make([]RouteMapper, 0, len(broadcast)+len(single))
	for _, t := range append(append([]string{}, single...), broadcast...) {
		mappers = append(mappers, RouteMapper{LogicName: t, ActualName: t})
	}
	if len(single) > 0 || len(broadcast) == 0 || stmt.Kind.IsQuery() {
		return &RouteContext{Units: []*RouteUnit{NewRouteUnit(rule.DefaultDataSource, mappers...)}}
	}
	units := make([]*RouteUnit, 0, len(rule.DataSources))
	for _, ds := range rule.DataSources {
		m := make([]RouteMapper, len(mappers))
		copy(m, mappers)
		units = append(units, NewRouteUnit(ds, m...))
	}
	return &RouteContext{Units: units}
}

// groupTables puts binding tables of one group together, the first referenced member is the primary.
func groupTables(rule *core.ShardingRule, names []string) []*tableGroup {
	var groups []*tableGroup
	for _, n := range names {
		t, _ := rule.FindShardingTable(n)
		joined := false
		for _, g := range groups {
			if rule.IsAllBindingTables([]string{g.primary.LogicTable, t.LogicTable}) {
				g.members = append(g.members, t)
				joined = true
				break
			}
		}
		if !joined {
			groups = append(groups, &tableGroup{primary: t})
		}
	}
	return groups
}

// routeGroup routes the primary table, the members reuse its route through the binding relation.
func routeGroup(rule *core.ShardingRule, g *tableGroup, conditions *ShardingConditions, hint *explain.HintContext) ([]*unitRoute, [][]*core.DataNode, error) {
	nodes, each, err := routeConditions(rule, g.primary, conditions, hint)
	if err != nil {
		return nil, nil, err
	}
	routes := make([]*unitRoute, 0, len(nodes))
	for _, n := range nodes {
		r := &unitRoute{
			dataSource: n.DataSource,
			mappers:    []RouteMapper{{LogicName: g.primary.LogicTable, ActualName: n.Table}},
		}
		for _, m := range g.members {
			actual, ok := rule.FindBindingActualTable(n.DataSource, m.LogicTable, g.primary.LogicTable, n.Table)
			if !ok {
				return nil, nil, core.NewRoutingError("can not find actual table of binding table '%s' for '%s'", m.LogicTable, n)
			}
			r.mappers = append(r.mappers, RouteMapper{LogicName: m.LogicTable, ActualName: actual})
		}
		routes = append(routes, r)
	}
	return routes, each, nil
}

// combine builds route units, routes of different groups are joined per data source as a cartesian product.
func combine(routes [][]*unitRoute, tables []string) ([]*RouteUnit, error) {
	if len(routes) == 1 {
		units := make([]*RouteUnit, 0, len(routes[0]))
		for _, r := range routes[0] {
			units = append(units, NewRouteUnit(r.dataSource, r.mappers...))
		}
		return units, nil
	}

	for _, r := range routes {
		if len(r) == 0 {
			return nil, nil
		}
	}

	var dataSources []string
	for _, r := range routes[0] {
		if !core.ContainsIgnoreCase(dataSources, r.dataSource) {
			dataSources = append(dataSources, r.dataSource)
		}
	}

	var units []*RouteUnit
	for _, ds := range dataSources {
		lists := make([][]interface{}, 0, len(routes))
		for _, group := range routes {
			var list []interface{}
			for _, r := range group {
				if strings.EqualFold(r.dataSource, ds) {
					list = append(list, r)
				}
			}
			if len(list) == 0 {
				lists = nil
				break
			}
			lists = append(lists, list)
		}
		for _, combination := range core.Permute(lists) {
			unit := NewRouteUnit(ds)
			for _, item := range combination {
				unit.TableMappers = append(unit.TableMappers, item.(*unitRoute).mappers...)
			}
			units = append(units, unit)
		}
	}
	if len(units) == 0 {
		return nil, core.NewRoutingError("can not find data source intersection for logic tables %v", tables)
	}
	return units, nil
}

// rowInDataNodes routes every row of the first row value IN predicate on its own.
func rowInDataNodes(stmt *explain.StatementContext, rule *core.ShardingRule, sharding []string) ([][]*core.DataNode, error) {
	expr := FindRowIn(stmt, rule)
	if expr == nil {
		return nil, nil
	}
	x := &conditionExtractor{stmt: stmt, rule: rule, tables: sharding, limit: DefaultMaxConditions}
	groups := groupTables(rule, sharding)
	result := make([][]*core.DataNode, 0, len(expr.Rows))
	for _, row := range expr.Rows {
		single := &explain.Expr{Segment: expr.Segment, Kind: explain.ExprRowIn, Columns: expr.Columns, Rows: []*explain.RowSegment{row}}
		conditions, err := x.rowIn(single)
		if err != nil {
			return nil, err
		}
		nodes, _, err := routeConditions(rule, groups[0].primary, &ShardingConditions{Conditions: conditions}, stmt.Hint)
		if err != nil {
			return nil, err
		}
		result = append(result, nodes)
	}
	return result, nil
}

// FindRowIn returns the first row value IN predicate joined to the WHERE root by AND that constrains a sharding column.
func FindRowIn(stmt *explain.StatementContext, rule *core.ShardingRule) *explain.Expr {
	for _, e := range stmt.Where.Conjuncts() {
		if e.Kind != explain.ExprRowIn || e.Not || len(e.Rows) == 0 {
			continue
		}
		for _, c := range e.Columns {
			table, ok := stmt.FindTable(c.Owner)
			if !ok {
				continue
			}
			if t, found := rule.FindShardingTable(table); found && t.HasShardingColumn(c.Name) {
				return e
			}
		}
	}
	return nil
}

// ResolveIndexTable finds the schema and the table of an index: explicit owner, then metadata, then the default schema.
func ResolveIndexTable(stmt *explain.StatementContext, index *explain.IndexSegment, metadata *explain.Metadata) (string, string, bool) {
	schema := stmt.Schema
	if index.Owner != nil {
		schema = index.Owner.Identifier.Value
	} else if s, ok := metadata.FindIndexSchema(index.Name.Value); ok {
		schema = s
	} else if metadata != nil && schema == "" {
		schema = metadata.DefaultSchema
	}
	schema = core.TrimAndLower(schema)
	if len(stmt.Tables) > 0 {
		return schema, stmt.Tables[0].LogicName(), true
	}
	table, ok := metadata.FindIndexTable(schema, index.Name.Value)
	return schema, table, ok
}
