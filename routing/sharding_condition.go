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
	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/core/comparison"
)

type columnKey struct {
	table  string
	column string
}

// ShardingCondition is a conjunction of sharding values, one value per table column (an AndCondition).
// RowIndex is the INSERT row the condition was built from, -1 otherwise.
type ShardingCondition struct {
	RowIndex int
	keys     []columnKey
	values   map[columnKey]core.ShardingValue
}

func newShardingCondition() *ShardingCondition {
	return &ShardingCondition{
		RowIndex: -1,
		values:   make(map[columnKey]core.ShardingValue),
	}
}

func (c *ShardingCondition) clone() *ShardingCondition {
	n := &ShardingCondition{
		RowIndex: c.RowIndex,
		keys:     make([]columnKey, len(c.keys)),
		values:   make(map[columnKey]core.ShardingValue, len(c.values)),
	}
	copy(n.keys, c.keys)
	for k, v := range c.values {
		n.values[k] = v
	}
	return n
}

// add intersects the value with the existing value of the same column, false means the condition is always false.
func (c *ShardingCondition) add(value core.ShardingValue) bool {
	if s, ok := value.(*core.ShardingScalarValue); ok && len(s.Values) == 0 {
		return false
	}
	key := columnKey{table: core.TrimAndLower(value.GetTable()), column: core.TrimAndLower(value.GetColumn())}
	existing, ok := c.values[key]
	if !ok {
		c.keys = append(c.keys, key)
		c.values[key] = value
		return true
	}
	merged, possible := intersectValues(existing, value)
	if !possible {
		return false
	}
	c.values[key] = merged
	return true
}

func (c *ShardingCondition) merge(other *ShardingCondition) bool {
	if other.RowIndex >= 0 {
		c.RowIndex = other.RowIndex
	}
	for _, k := range other.keys {
		if !c.add(other.values[k]) {
			return false
		}
	}
	return true
}

// Values returns the values in the order they were added.
func (c *ShardingCondition) Values() []core.ShardingValue {
	list := make([]core.ShardingValue, 0, len(c.keys))
	for _, k := range c.keys {
		list = append(list, c.values[k])
	}
	return list
}

// ValuesOf returns the values of the logic table.
func (c *ShardingCondition) ValuesOf(logicTable string) []core.ShardingValue {
	t := core.TrimAndLower(logicTable)
	var list []core.ShardingValue
	for _, k := range c.keys {
		if k.table == t {
			list = append(list, c.values[k])
		}
	}
	return list
}

// IsEmpty reports a condition which constrains nothing, it routes to every data node.
func (c *ShardingCondition) IsEmpty() bool {
	return len(c.keys) == 0
}

func (c *ShardingCondition) String() string {
	sb := core.NewStringBuilder()
	for i, v := range c.Values() {
		if i > 0 {
			sb.Write(" and ")
		}
		sb.Write(v.String())
	}
	return sb.String()
}

// ShardingConditions is the disjunction of sharding conditions (an OrCondition).
// No condition at all means every condition was always false.
type ShardingConditions struct {
	Conditions []*ShardingCondition
}

func unconstrained() *ShardingConditions {
	return &ShardingConditions{Conditions: []*ShardingCondition{newShardingCondition()}}
}

// IsAlwaysFalse reports conditions that can not match any data node.
func (s *ShardingConditions) IsAlwaysFalse() bool {
	return len(s.Conditions) == 0
}

// IsUnconstrained reports conditions that route to every data node.
func (s *ShardingConditions) IsUnconstrained() bool {
	for _, c := range s.Conditions {
		if c.IsEmpty() {
			return true
		}
	}
	return false
}

func intersectValues(a core.ShardingValue, b core.ShardingValue) (core.ShardingValue, bool) {
	switch av := a.(type) {
	case *core.ShardingScalarValue:
		switch bv := b.(type) {
		case *core.ShardingScalarValue:
			return filterScalar(av, func(v interface{}) bool {
				return containsValue(bv.Values, v)
			})
		case *core.ShardingRangeValue:
			return filterScalar(av, func(v interface{}) bool {
				in, err := bv.Value.Contains(v)
				return err != nil || in
			})
		}
	case *core.ShardingRangeValue:
		switch bv := b.(type) {
		case *core.ShardingScalarValue:
			return intersectValues(bv, av)
		case *core.ShardingRangeValue:
			r, err := av.Value.Intersect(bv.Value)
			if err != nil {
				return av, true
			}
			if r == nil {
				return nil, false
			}
			return &core.ShardingRangeValue{Table: av.Table, Column: av.Column, Value: r}, true
		}
	}
	return a, true
}

func filterScalar(value *core.ShardingScalarValue, keep func(v interface{}) bool) (core.ShardingValue, bool) {
	list := make([]interface{}, 0, len(value.Values))
	for _, v := range value.Values {
		if keep(v) {
			list = append(list, v)
		}
	}
	if len(list) == 0 {
		return nil, false
	}
	return &core.ShardingScalarValue{Table: value.Table, Column: value.Column, Values: list}, true
}

func containsValue(values []interface{}, value interface{}) bool {
	for _, v := range values {
		if comparison.Equals(v, value) {
			return true
		}
	}
	return false
}
