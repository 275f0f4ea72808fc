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

package explain

import (
	"github.com/emirpasic/gods/sets/linkedhashset"
	"github.com/endink/sharding-rewrite/core"
)

// SelectContext holds the clause segments of a query, absent clauses are nil.
type SelectContext struct {
	Projections *ProjectionsContext `json:"projections"`
	From        *Segment            `json:"from,omitempty"`
	GroupBy     *GroupByContext     `json:"groupBy,omitempty"`
	Having      *Segment            `json:"having,omitempty"`
	Window      *Segment            `json:"window,omitempty"`
	OrderBy     *OrderByContext     `json:"orderBy,omitempty"`
	Pagination  *Pagination         `json:"pagination,omitempty"`
}

func (s *SelectContext) GroupByItems() []*OrderByItem {
	if s == nil || s.GroupBy == nil {
		return nil
	}
	return s.GroupBy.Items
}

func (s *SelectContext) OrderByItems() []*OrderByItem {
	if s == nil || s.OrderBy == nil {
		return nil
	}
	return s.OrderBy.Items
}

// InsertContext holds the column list and the VALUES rows of an INSERT.
type InsertContext struct {
	Columns []string      `json:"columns"`
	Rows    []*RowSegment `json:"rows"`
}

// ColumnIndex returns the position of the column in the insert column list, -1 if absent.
func (i *InsertContext) ColumnIndex(column string) int {
	c := core.TrimAndLower(column)
	for n, name := range i.Columns {
		if core.TrimAndLower(name) == c {
			return n
		}
	}
	return -1
}

// HintContext carries sharding values supplied outside of the sql, keyed by logic table.
type HintContext struct {
	DatabaseValues map[string][]interface{} `json:"databaseValues,omitempty"`
	TableValues    map[string][]interface{} `json:"tableValues,omitempty"`
}

func (h *HintContext) DatabaseShardingValues(logicTable string) []interface{} {
	if h == nil {
		return nil
	}
	return h.DatabaseValues[core.TrimAndLower(logicTable)]
}

func (h *HintContext) TableShardingValues(logicTable string) []interface{} {
	if h == nil {
		return nil
	}
	return h.TableValues[core.TrimAndLower(logicTable)]
}

// StatementContext is the eagerly populated result of parsing and binding one statement.
type StatementContext struct {
	Kind           StatementKind        `json:"kind"`
	SQL            string               `json:"sql"`
	Parameters     []interface{}        `json:"parameters,omitempty"`
	Schema         string               `json:"schema,omitempty"`
	Tables         []*TableSegment      `json:"tables"`
	Where          *Expr                `json:"where,omitempty"`
	JoinConditions []*Expr              `json:"joinConditions,omitempty"`
	Select         *SelectContext       `json:"select,omitempty"`
	Insert         *InsertContext       `json:"insert,omitempty"`
	Constraints    []*ConstraintSegment `json:"constraints,omitempty"`
	Indexes        []*IndexSegment      `json:"indexes,omitempty"`
	Cursor         *CursorSegment       `json:"cursor,omitempty"`
	// CursorTables are the logic tables of the query the cursor was declared with.
	CursorTables   []string             `json:"cursorTables,omitempty"`
	RemoveSegments []*Segment           `json:"removeSegments,omitempty"`
	Hint           *HintContext         `json:"hint,omitempty"`
}

// TableNames returns the distinct lower case logic table names in order of appearance.
func (s *StatementContext) TableNames() []string {
	set := linkedhashset.New()
	for _, t := range s.Tables {
		set.Add(t.LogicName())
	}
	if s.Kind.IsCursorHeld() {
		for _, t := range s.CursorTables {
			set.Add(core.TrimAndLower(t))
		}
	}
	names := make([]string, 0, set.Size())
	for _, v := range set.Values() {
		names = append(names, v.(string))
	}
	return names
}

// FindTable resolves a column owner (table name or alias) to a logic table name.
// Without owner the table is resolved only if the statement references exactly one table.
func (s *StatementContext) FindTable(owner string) (string, bool) {
	if owner == "" {
		names := s.TableNames()
		if len(names) == 1 {
			return names[0], true
		}
		return "", false
	}
	o := core.TrimAndLower(owner)
	for _, t := range s.Tables {
		if t.Alias != "" && core.TrimAndLower(t.Alias) == o {
			return t.LogicName(), true
		}
	}
	for _, t := range s.Tables {
		if t.LogicName() == o {
			return t.LogicName(), true
		}
	}
	return "", false
}

func (s *StatementContext) IsCursorHeld() bool {
	return s.Kind.IsCursorHeld()
}

func (s *StatementContext) Projections() *ProjectionsContext {
	if s.Select == nil {
		return nil
	}
	return s.Select.Projections
}

func (s *StatementContext) Pagination() *Pagination {
	if s.Select == nil {
		return nil
	}
	return s.Select.Pagination
}

// Predicates returns the WHERE expression and the join conditions.
func (s *StatementContext) Predicates() []*Expr {
	var list []*Expr
	if s.Where != nil {
		list = append(list, s.Where)
	}
	for _, j := range s.JoinConditions {
		if j != nil {
			list = append(list, j)
		}
	}
	return list
}

// Text returns the sql text of the segment.
func (s *StatementContext) Text(seg Segment) string {
	return Text(s.SQL, seg)
}
