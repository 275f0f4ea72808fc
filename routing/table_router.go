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
	"github.com/emirpasic/gods/sets/linkedhashset"
	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/explain"
)

// RouteTable computes the data nodes of a table for the values of one condition.
// Targets are kept in the order strategies return them.
func RouteTable(table *core.ShardingTable, values []core.ShardingValue, hint *explain.HintContext) ([]*core.DataNode, error) {
	dataSources, err := table.DatabaseStrategy.Shard(table.GetDataSources(), values, hint.DatabaseShardingValues(table.LogicTable))
	if err != nil {
		return nil, err
	}
	var nodes []*core.DataNode
	for _, ds := range dataSources {
		tables, err := table.TableStrategy.Shard(table.GetActualTables(ds), values, hint.TableShardingValues(table.LogicTable))
		if err != nil {
			return nil, err
		}
		for _, t := range tables {
			if table.ContainsDataNode(ds, t) {
				nodes = append(nodes, core.NewDataNode(ds, t))
			}
		}
	}
	return nodes, nil
}

// RouteValue routes a single value of one column, the other sharding columns stay unconstrained.
func RouteValue(table *core.ShardingTable, column string, value interface{}, hint *explain.HintContext) ([]*core.DataNode, error) {
	values := []core.ShardingValue{&core.ShardingScalarValue{
		Table:  table.LogicTable,
		Column: core.TrimAndLower(column),
		Values: []interface{}{explain.NormalizeValue(value)},
	}}
	return RouteTable(table, values, hint)
}

// tableValues collects the values which apply to the table, values of binding tables on the same column are shared.
func tableValues(rule *core.ShardingRule, table *core.ShardingTable, condition *ShardingCondition) ([]core.ShardingValue, bool) {
	c := newShardingCondition()
	for _, v := range condition.Values() {
		sameTable := core.TrimAndLower(v.GetTable()) == table.LogicTable
		if !sameTable && !rule.IsAllBindingTables([]string{table.LogicTable, v.GetTable()}) {
			continue
		}
		if !table.HasShardingColumn(v.GetColumn()) {
			continue
		}
		if !c.add(rebind(v, table.LogicTable)) {
			return nil, false
		}
	}
	return c.Values(), true
}

func rebind(value core.ShardingValue, table string) core.ShardingValue {
	switch v := value.(type) {
	case *core.ShardingScalarValue:
		return &core.ShardingScalarValue{Table: table, Column: v.Column, Values: v.Values}
	case *core.ShardingRangeValue:
		return &core.ShardingRangeValue{Table: table, Column: v.Column, Value: v.Value}
	}
	return value
}

// routeConditions routes the table for every condition and unions the nodes in first seen order.
// The nodes of each condition are returned too, aligned with the conditions.
func routeConditions(rule *core.ShardingRule, table *core.ShardingTable, conditions *ShardingConditions, hint *explain.HintContext) ([]*core.DataNode, [][]*core.DataNode, error) {
	union := linkedhashset.New()
	index := make(map[string]*core.DataNode)
	each := make([][]*core.DataNode, len(conditions.Conditions))
	for i, c := range conditions.Conditions {
		values, possible := tableValues(rule, table, c)
		if !possible {
			continue
		}
		nodes, err := RouteTable(table, values, hint)
		if err != nil {
			return nil, nil, err
		}
		each[i] = nodes
		for _, n := range nodes {
			key := n.Key()
			if _, ok := index[key]; !ok {
				index[key] = n
				union.Add(key)
			}
		}
	}
	result := make([]*core.DataNode, 0, union.Size())
	for _, k := range union.Values() {
		result = append(result, index[k.(string)])
	}
	return result, each, nil
}
