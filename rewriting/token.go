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
	"fmt"

	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/explain"
)

type TokenKind int

const (
	TokenAggregationDistinct TokenKind = iota
	TokenDistinctProjectionPrefix
	TokenConstraint
	TokenCursor
	TokenIndex
	TokenTable
	TokenInPredicate
	TokenInValues
	TokenInsertValues
	TokenOrderBy
	TokenProjections
	TokenRemove
	TokenRowCount
	TokenOffset
)

var tokenKindNames = map[TokenKind]string{
	TokenAggregationDistinct:      "AggregationDistinct",
	TokenDistinctProjectionPrefix: "DistinctProjectionPrefix",
	TokenConstraint:               "Constraint",
	TokenCursor:                   "Cursor",
	TokenIndex:                    "Index",
	TokenTable:                    "Table",
	TokenInPredicate:              "InPredicate",
	TokenInValues:                 "InValues",
	TokenInsertValues:             "InsertValues",
	TokenOrderBy:                  "OrderBy",
	TokenProjections:              "Projections",
	TokenRemove:                   "Remove",
	TokenRowCount:                 "RowCount",
	TokenOffset:                   "Offset",
}

func (k TokenKind) String() string {
	if n, ok := tokenKindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// SQLToken is an edit of the original sql: the rune span [Start, Stop] is replaced by the rendered text.
// An insertion has Stop == Start-1 and consumes nothing.
type SQLToken struct {
	explain.Segment
	Kind    TokenKind    `json:"kind"`
	Payload TokenPayload `json:"payload"`
}

func (t *SQLToken) IsInsertion() bool {
	return t.IsEmpty()
}

func (t *SQLToken) String() string {
	return fmt.Sprintf("%s%s", t.Kind, t.Segment)
}

// TokenPayload is the kind specific data of a token, only the payloads of this package implement it.
type TokenPayload interface {
	tokenKind() TokenKind
}

func newToken(s explain.Segment, payload TokenPayload) *SQLToken {
	return &SQLToken{Segment: s, Kind: payload.tokenKind(), Payload: payload}
}

// insertAfter returns the insertion point right after the index.
func insertAfter(index int) explain.Segment {
	return explain.NewSegment(index+1, index)
}

type AggregationDistinctPayload struct {
	InnerExpression string `json:"innerExpression"`
	Alias           string `json:"alias,omitempty"`
}

type DistinctProjectionPrefixPayload struct{}

type ConstraintPayload struct {
	Name       explain.IdentifierValue `json:"name"`
	LogicTable string                  `json:"logicTable"`
}

type CursorPayload struct {
	Name explain.IdentifierValue `json:"name"`
}

type IndexPayload struct {
	Name       explain.IdentifierValue `json:"name"`
	Schema     string                  `json:"schema"`
	LogicTable string                  `json:"logicTable"`
}

type TablePayload struct {
	Name       explain.IdentifierValue `json:"name"`
	LogicTable string                  `json:"logicTable"`
}

// ValueEntry is an item of a rewritten list, DataNodes is empty when the item belongs to every route unit.
type ValueEntry struct {
	Text       string           `json:"text"`
	Parameters []int            `json:"parameters,omitempty"`
	DataNodes  []*core.DataNode `json:"dataNodes,omitempty"`
}

type InPredicatePayload struct {
	Column     string        `json:"column"`
	LogicTable string        `json:"logicTable"`
	Prefix     string        `json:"prefix"`
	Suffix     string        `json:"suffix"`
	Values     []*ValueEntry `json:"values"`
}

type InValuesPayload struct {
	Rows []*ValueEntry `json:"rows"`
}

type InsertValuesPayload struct {
	Rows []*ValueEntry `json:"rows"`
}

type OrderByPayload struct {
	Items []*explain.OrderByItem `json:"items"`
}

// DerivedEntry is a projection appended to the select list, Owner is replaced by the actual table when it is a logic table.
type DerivedEntry struct {
	Expression string `json:"expression"`
	Alias      string `json:"alias"`
	Owner      string `json:"owner,omitempty"`
	Column     string `json:"column,omitempty"`
}

type ProjectionsPayload struct {
	Items []*DerivedEntry `json:"items"`
}

type RemovePayload struct{}

type RowCountPayload struct {
	Value int64 `json:"value"`
}

type OffsetPayload struct {
	Value int64 `json:"value"`
}

func (*AggregationDistinctPayload) tokenKind() TokenKind      { return TokenAggregationDistinct }
func (*DistinctProjectionPrefixPayload) tokenKind() TokenKind { return TokenDistinctProjectionPrefix }
func (*ConstraintPayload) tokenKind() TokenKind               { return TokenConstraint }
func (*CursorPayload) tokenKind() TokenKind                   { return TokenCursor }
func (*IndexPayload) tokenKind() TokenKind                    { return TokenIndex }
func (*TablePayload) tokenKind() TokenKind                    { return TokenTable }
func (*InPredicatePayload) tokenKind() TokenKind              { return TokenInPredicate }
func (*InValuesPayload) tokenKind() TokenKind                 { return TokenInValues }
func (*InsertValuesPayload) tokenKind() TokenKind             { return TokenInsertValues }
func (*OrderByPayload) tokenKind() TokenKind                  { return TokenOrderBy }
func (*ProjectionsPayload) tokenKind() TokenKind              { return TokenProjections }
func (*RemovePayload) tokenKind() TokenKind                   { return TokenRemove }
func (*RowCountPayload) tokenKind() TokenKind                 { return TokenRowCount }
func (*OffsetPayload) tokenKind() TokenKind                   { return TokenOffset }
