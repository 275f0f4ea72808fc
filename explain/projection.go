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
	"strconv"
	"strings"
)

type AggregationType string

const (
	AggregationCount AggregationType = "COUNT"
	AggregationSum   AggregationType = "SUM"
	AggregationAvg   AggregationType = "AVG"
	AggregationMax   AggregationType = "MAX"
	AggregationMin   AggregationType = "MIN"
)

// AggregationProjection is an aggregation function in the select list.
// AVG carries the derived COUNT and SUM projections added for merging.
type AggregationProjection struct {
	Segment
	Type       AggregationType          `json:"type"`
	Expression string                   `json:"expression"`
	Alias      string                   `json:"alias,omitempty"`
	Derived    []*AggregationProjection `json:"derived,omitempty"`
}

// AggregationDistinctProjection is an aggregation over DISTINCT values, e.g. COUNT(DISTINCT order_id).
// InnerExpression is the distinct expression, the span covers the whole aggregation.
// Inner is the span of InnerExpression and Placeholders are the parameters bound anywhere in the aggregation.
type AggregationDistinctProjection struct {
	Segment
	Type            AggregationType `json:"type"`
	InnerExpression string          `json:"innerExpression"`
	Alias           string          `json:"alias,omitempty"`
	Inner           *Segment        `json:"inner,omitempty"`
	Placeholders    []*ValueSegment `json:"placeholders,omitempty"`
}

// DerivedProjection is a column added by the binder, e.g. ORDER BY columns missing from the select list.
// Owner is set when the expression is a column qualified by a table name.
type DerivedProjection struct {
	Expression string `json:"expression"`
	Alias      string `json:"alias"`
	Owner      string `json:"owner,omitempty"`
	Column     string `json:"column,omitempty"`
}

// ProjectionsContext describes the select list, the span covers every projection.
type ProjectionsContext struct {
	Segment
	Distinct            bool                             `json:"distinct,omitempty"`
	Aggregations        []*AggregationProjection         `json:"aggregations,omitempty"`
	AggregationDistinct []*AggregationDistinctProjection `json:"aggregationDistinct,omitempty"`
	Derived             []*DerivedProjection             `json:"derived,omitempty"`
}

func (p *ProjectionsContext) HasAggregationDistinct() bool {
	return p != nil && len(p.AggregationDistinct) > 0
}

func (p *ProjectionsContext) HasDerived() bool {
	return p != nil && len(p.Derived) > 0
}

func (p *ProjectionsContext) HasAggregation() bool {
	return p != nil && (len(p.Aggregations) > 0 || len(p.AggregationDistinct) > 0)
}

type OrderDirection string

const (
	OrderAsc  OrderDirection = "ASC"
	OrderDesc OrderDirection = "DESC"
)

type OrderByItemKind string

const (
	OrderByColumn     OrderByItemKind = "COLUMN"
	OrderByExpression OrderByItemKind = "EXPRESSION"
	OrderByIndex      OrderByItemKind = "INDEX"
)

// OrderByItem is an item of GROUP BY or ORDER BY, Text holds the column or expression text, Index the ordinal.
type OrderByItem struct {
	Kind      OrderByItemKind `json:"kind"`
	Text      string          `json:"text,omitempty"`
	Index     int             `json:"index,omitempty"`
	Direction OrderDirection  `json:"direction,omitempty"`
}

func (i *OrderByItem) key() string {
	if i.Kind == OrderByIndex {
		return "#" + strconv.Itoa(i.Index) + " " + string(i.direction())
	}
	return strings.ToLower(strings.TrimSpace(i.Text)) + " " + string(i.direction())
}

func (i *OrderByItem) direction() OrderDirection {
	if i.Direction == "" {
		return OrderAsc
	}
	return i.Direction
}

type GroupByContext struct {
	Segment
	Items []*OrderByItem `json:"items"`
	// Redundant marks a GROUP BY added only to implement DISTINCT aggregation.
	Redundant bool `json:"redundant,omitempty"`
}

type OrderByContext struct {
	Segment
	Items []*OrderByItem `json:"items"`
	// Generated marks an ORDER BY synthesized from GROUP BY or DISTINCT, it is not in the sql text.
	Generated bool `json:"generated,omitempty"`
}

// SameItems reports whether two item lists are identical, the direction included.
func SameItems(a []*OrderByItem, b []*OrderByItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].key() != b[i].key() {
			return false
		}
	}
	return true
}
