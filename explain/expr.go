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

type ExprKind string

const (
	ExprAnd     ExprKind = "AND"
	ExprOr      ExprKind = "OR"
	ExprNot     ExprKind = "NOT"
	ExprCompare ExprKind = "COMPARE"
	ExprIn      ExprKind = "IN"
	ExprBetween ExprKind = "BETWEEN"
	ExprRowIn   ExprKind = "ROW_IN"
	ExprOther   ExprKind = "OTHER"
)

const (
	OpEQ = "="
	OpNE = "!="
	OpLT = "<"
	OpLE = "<="
	OpGT = ">"
	OpGE = ">="
)

// Expr is a predicate node.
//
// AND / OR use Left and Right, NOT uses Operand.
// COMPARE uses Column, Operator and Value (Value is nil when the right side is not a value, e.g. a column).
// IN uses Column and Values, BETWEEN uses Column, Low and High, Not marks NOT IN / NOT BETWEEN.
// ROW_IN is '(a, b) IN ((1, 2), (3, 4))' and uses Columns, Rows and List (the span of the row list).
// OTHER is any predicate which can not constrain sharding columns.
type Expr struct {
	Segment
	Kind     ExprKind         `json:"kind"`
	Left     *Expr            `json:"left,omitempty"`
	Right    *Expr            `json:"right,omitempty"`
	Operand  *Expr            `json:"operand,omitempty"`
	Operator string           `json:"operator,omitempty"`
	Not      bool             `json:"not,omitempty"`
	Column   *ColumnSegment   `json:"column,omitempty"`
	Value    *ValueSegment    `json:"value,omitempty"`
	Values   []*ValueSegment  `json:"values,omitempty"`
	Low      *ValueSegment    `json:"low,omitempty"`
	High     *ValueSegment    `json:"high,omitempty"`
	Columns  []*ColumnSegment `json:"columns,omitempty"`
	Rows     []*RowSegment    `json:"rows,omitempty"`
	List     *Segment         `json:"list,omitempty"`
}

func And(s Segment, left *Expr, right *Expr) *Expr {
	return &Expr{Segment: s, Kind: ExprAnd, Left: left, Right: right}
}

func Or(s Segment, left *Expr, right *Expr) *Expr {
	return &Expr{Segment: s, Kind: ExprOr, Left: left, Right: right}
}

func Not(s Segment, operand *Expr) *Expr {
	return &Expr{Segment: s, Kind: ExprNot, Operand: operand}
}

func Compare(s Segment, column *ColumnSegment, operator string, value *ValueSegment) *Expr {
	return &Expr{Segment: s, Kind: ExprCompare, Column: column, Operator: operator, Value: value}
}

func In(s Segment, column *ColumnSegment, values ...*ValueSegment) *Expr {
	return &Expr{Segment: s, Kind: ExprIn, Column: column, Values: values}
}

func Between(s Segment, column *ColumnSegment, low *ValueSegment, high *ValueSegment) *Expr {
	return &Expr{Segment: s, Kind: ExprBetween, Column: column, Low: low, High: high}
}

func RowIn(s Segment, list Segment, columns []*ColumnSegment, rows ...*RowSegment) *Expr {
	return &Expr{Segment: s, Kind: ExprRowIn, Columns: columns, Rows: rows, List: &list}
}

func Other(s Segment) *Expr {
	return &Expr{Segment: s, Kind: ExprOther}
}

// Walk visits the expression tree depth first, the visitor returns false to skip children.
func (e *Expr) Walk(visitor func(e *Expr) bool) {
	if e == nil || !visitor(e) {
		return
	}
	e.Left.Walk(visitor)
	e.Right.Walk(visitor)
	e.Operand.Walk(visitor)
}

// Conjuncts returns the leaves reachable from the root through AND only.
func (e *Expr) Conjuncts() []*Expr {
	if e == nil {
		return nil
	}
	if e.Kind == ExprAnd {
		return append(e.Left.Conjuncts(), e.Right.Conjuncts()...)
	}
	return []*Expr{e}
}
