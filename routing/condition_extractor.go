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
	"github.com/endink/sharding-rewrite/explain"
)

// DefaultMaxConditions caps the disjunctive normal form of predicates, bigger forms are routed unconstrained.
const DefaultMaxConditions = 1024

type conditionExtractor struct {
	stmt     *explain.StatementContext
	rule     *core.ShardingRule
	tables   []string
	limit    int
	overflow bool
}

// ExtractConditions converts the predicates of the statement to sharding conditions over the given sharding tables.
func ExtractConditions(stmt *explain.StatementContext, rule *core.ShardingRule, shardingTables []string, limit int) (*ShardingConditions, error) {
	if limit <= 0 {
		limit = DefaultMaxConditions
	}
	x := &conditionExtractor{stmt: stmt, rule: rule, tables: shardingTables, limit: limit}
	if stmt.Kind == explain.StatementInsert {
		return x.insertConditions()
	}
	if stmt.Kind.IsDDL() || stmt.Kind.IsCursorHeld() {
		return unconstrained(), nil
	}

	conjunctions := []*ShardingCondition{newShardingCondition()}
	for _, p := range stmt.Predicates() {
		list, err := x.dnf(p)
		if err != nil {
			return nil, err
		}
		conjunctions = x.and(conjunctions, list)
		if x.overflow {
			return unconstrained(), nil
		}
	}
	return &ShardingConditions{Conditions: conjunctions}, nil
}

func (x *conditionExtractor) dnf(e *explain.Expr) ([]*ShardingCondition, error) {
	if e == nil || x.overflow {
		return always(), nil
	}
	switch e.Kind {
	case explain.ExprAnd:
		left, err := x.dnf(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := x.dnf(e.Right)
		if err != nil {
			return nil, err
		}
		return x.and(left, right), nil
	case explain.ExprOr:
		left, err := x.dnf(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := x.dnf(e.Right)
		if err != nil {
			return nil, err
		}
		if len(left)+len(right) > x.limit {
			x.overflow = true
			return always(), nil
		}
		return append(left, right...), nil
	case explain.ExprRowIn:
		return x.rowIn(e)
	case explain.ExprCompare, explain.ExprIn, explain.ExprBetween:
		values, err := x.leafValues(e)
		if err != nil || len(values) == 0 {
			return always(), err
		}
		c := newShardingCondition()
		for _, v := range values {
			if !c.add(v) {
				return nil, nil
			}
		}
		return []*ShardingCondition{c}, nil
	}
	// NOT and unknown predicates can not narrow the route.
	return always(), nil
}

func always() []*ShardingCondition {
	return []*ShardingCondition{newShardingCondition()}
}

func (x *conditionExtractor) and(left []*ShardingCondition, right []*ShardingCondition) []*ShardingCondition {
	if len(left)*len(right) > x.limit {
		x.overflow = true
		return always()
	}
	result := make([]*ShardingCondition, 0, len(left)*len(right))
	for _, l := range left {
		for _, r := range right {
			c := l.clone()
			if c.merge(r) {
				result = append(result, c)
			}
		}
	}
	return result
}

func (x *conditionExtractor) leafValues(e *explain.Expr) ([]core.ShardingValue, error) {
	if e.Column == nil || e.Not {
		return nil, nil
	}
	tables := x.columnTables(e.Column)
	if len(tables) == 0 {
		return nil, nil
	}
	column := core.TrimAndLower(e.Column.Name)

	var build func(table string) core.ShardingValue
	switch e.Kind {
	case explain.ExprCompare:
		if e.Value == nil || (!e.Value.Placeholder && e.Value.Literal == nil) {
			return nil, nil
		}
		v, err := e.Value.Resolve(x.stmt.Parameters)
		if err != nil {
			return nil, err
		}
		var lower, upper interface{}
		switch e.Operator {
		case explain.OpEQ:
			build = func(table string) core.ShardingValue {
				return &core.ShardingScalarValue{Table: table, Column: column, Values: []interface{}{v}}
			}
		case explain.OpGT, explain.OpGE:
			lower = v
		case explain.OpLT, explain.OpLE:
			upper = v
		default:
			return nil, nil
		}
		if build == nil {
			r, err := core.NewRange(lower, upper)
			if err != nil {
				return nil, nil
			}
			build = rangeBuilder(column, r)
		}
	case explain.ExprIn:
		if len(e.Values) == 0 {
			return nil, nil
		}
		list := make([]interface{}, 0, len(e.Values))
		for _, value := range e.Values {
			v, err := value.Resolve(x.stmt.Parameters)
			if err != nil {
				return nil, err
			}
			if v != nil {
				list = append(list, v)
			}
		}
		build = func(table string) core.ShardingValue {
			return &core.ShardingScalarValue{Table: table, Column: column, Values: list}
		}
	case explain.ExprBetween:
		if e.Low == nil || e.High == nil {
			return nil, nil
		}
		low, err := e.Low.Resolve(x.stmt.Parameters)
		if err != nil {
			return nil, err
		}
		high, err := e.High.Resolve(x.stmt.Parameters)
		if err != nil {
			return nil, err
		}
		r, err := core.NewRange(low, high)
		if err == core.ErrRangeInvalidBound {
			// BETWEEN with a lower bound greater than the upper bound matches nothing.
			build = func(table string) core.ShardingValue {
				return &core.ShardingScalarValue{Table: table, Column: column}
			}
		} else if err != nil {
			return nil, nil
		} else {
			build = rangeBuilder(column, r)
		}
	default:
		return nil, nil
	}

	values := make([]core.ShardingValue, len(tables))
	for i, t := range tables {
		values[i] = build(t)
	}
	return values, nil
}

func rangeBuilder(column string, r core.Range) func(table string) core.ShardingValue {
	return func(table string) core.ShardingValue {
		return &core.ShardingRangeValue{Table: table, Column: column, Value: r}
	}
}

// rowIn builds one condition per row of '(a, b) IN ((1, 2), (3, 4))'.
func (x *conditionExtractor) rowIn(e *explain.Expr) ([]*ShardingCondition, error) {
	if e.Not || len(e.Rows) == 0 {
		return always(), nil
	}
	if len(e.Rows) > x.limit {
		x.overflow = true
		return always(), nil
	}
	result := make([]*ShardingCondition, 0, len(e.Rows))
	for _, row := range e.Rows {
		c := newShardingCondition()
		possible := true
		for i, col := range e.Columns {
			if i >= len(row.Values) {
				break
			}
			tables := x.columnTables(col)
			if len(tables) == 0 {
				continue
			}
			v, err := row.Values[i].Resolve(x.stmt.Parameters)
			if err != nil {
				return nil, err
			}
			for _, t := range tables {
				possible = possible && c.add(&core.ShardingScalarValue{Table: t, Column: core.TrimAndLower(col.Name), Values: []interface{}{v}})
			}
		}
		if possible {
			result = append(result, c)
		}
	}
	return result, nil
}

// columnTables returns the sharding tables the column constrains.
func (x *conditionExtractor) columnTables(column *explain.ColumnSegment) []string {
	if column.Owner == "" {
		return x.rule.FindTablesByShardingColumn(column.Name, x.tables)
	}
	table, ok := x.stmt.FindTable(column.Owner)
	if !ok || !core.ContainsIgnoreCase(x.tables, table) {
		return nil
	}
	if t, found := x.rule.FindShardingTable(table); found && t.HasShardingColumn(column.Name) {
		return []string{t.LogicTable}
	}
	return nil
}

// insertConditions builds one condition per VALUES row, every sharding column must be present.
func (x *conditionExtractor) insertConditions() (*ShardingConditions, error) {
	if len(x.tables) == 0 {
		return unconstrained(), nil
	}
	table, _ := x.rule.FindShardingTable(x.tables[0])
	insert := x.stmt.Insert
	if insert == nil || len(insert.Rows) == 0 {
		return nil, core.NewRoutingError("insert statement of table '%s' has no values", table.LogicTable)
	}
	columns := table.GetShardingColumns()
	result := &ShardingConditions{Conditions: make([]*ShardingCondition, 0, len(insert.Rows))}
	for i, row := range insert.Rows {
		c := newShardingCondition()
		c.RowIndex = i
		for _, column := range columns {
			index := insert.ColumnIndex(column)
			if index < 0 || index >= len(row.Values) {
				return nil, core.NewRoutingError("insert statement of table '%s' must specify the value of sharding column '%s'", table.LogicTable, column)
			}
			v, err := row.Values[index].Resolve(x.stmt.Parameters)
			if err != nil {
				return nil, err
			}
			if v == nil {
				return nil, core.NewRoutingError("sharding column '%s' of table '%s' can not be null, row: %d", column, table.LogicTable, i)
			}
			c.add(&core.ShardingScalarValue{Table: table.LogicTable, Column: column, Values: []interface{}{v}})
		}
		result.Conditions = append(result.Conditions, c)
	}
	return result, nil
}
