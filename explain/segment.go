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
	"fmt"
	"math"

	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/core/comparison"
)

// Segment is an inclusive rune span of the original sql text.
// An insertion point is expressed as Stop == Start-1.
type Segment struct {
	Start int `json:"start"`
	Stop  int `json:"stop"`
}

func NewSegment(start int, stop int) Segment {
	return Segment{Start: start, Stop: stop}
}

func (s Segment) Len() int {
	return s.Stop - s.Start + 1
}

func (s Segment) IsEmpty() bool {
	return s.Stop < s.Start
}

func (s Segment) Contains(other Segment) bool {
	return s.Start <= other.Start && other.Stop <= s.Stop
}

func (s Segment) String() string {
	return fmt.Sprintf("[%d, %d]", s.Start, s.Stop)
}

// Locate finds the nth (from 0) occurrence of fragment in sql, the result is measured in runes.
func Locate(sql string, fragment string, nth ...int) (Segment, bool) {
	n := 0
	if len(nth) > 0 {
		n = nth[0]
	}
	runes := []rune(sql)
	target := []rune(fragment)
	if len(target) == 0 {
		return Segment{}, false
	}
	for i := 0; i+len(target) <= len(runes); i++ {
		if string(runes[i:i+len(target)]) == fragment {
			if n == 0 {
				return NewSegment(i, i+len(target)-1), true
			}
			n--
		}
	}
	return Segment{}, false
}

// Text returns the sql text covered by the segment.
func Text(sql string, s Segment) string {
	runes := []rune(sql)
	if s.IsEmpty() || s.Start < 0 || s.Stop >= len(runes) {
		return ""
	}
	return string(runes[s.Start : s.Stop+1])
}

type QuoteCharacter string

const (
	QuoteNone        QuoteCharacter = ""
	QuoteBackTick    QuoteCharacter = "`"
	QuoteDoubleQuote QuoteCharacter = "\""
	QuoteBracket     QuoteCharacter = "["
)

func (q QuoteCharacter) Wrap(value string) string {
	switch q {
	case QuoteBackTick, QuoteDoubleQuote:
		return string(q) + value + string(q)
	case QuoteBracket:
		return "[" + value + "]"
	}
	return value
}

type IdentifierValue struct {
	Value string         `json:"value"`
	Quote QuoteCharacter `json:"quote,omitempty"`
}

func (v IdentifierValue) String() string {
	return v.Quote.Wrap(v.Value)
}

type OwnerSegment struct {
	Segment
	Identifier IdentifierValue `json:"identifier"`
}

// TableSegment is a simple table reference, the span covers the table name only.
type TableSegment struct {
	Segment
	Owner *OwnerSegment   `json:"owner,omitempty"`
	Name  IdentifierValue `json:"name"`
	Alias string          `json:"alias,omitempty"`
}

func (t *TableSegment) LogicName() string {
	return core.TrimAndLower(t.Name.Value)
}

// ColumnSegment is a column reference, Owner is either a table name or an alias.
type ColumnSegment struct {
	Segment
	Owner string `json:"owner,omitempty"`
	Name  string `json:"name"`
}

func (c *ColumnSegment) String() string {
	if c.Owner != "" {
		return c.Owner + "." + c.Name
	}
	return c.Name
}

// ValueSegment is a literal, or a placeholder when Placeholder is true.
type ValueSegment struct {
	Segment
	Literal     interface{} `json:"literal,omitempty"`
	Placeholder bool        `json:"placeholder,omitempty"`
	ParamIndex  int         `json:"paramIndex,omitempty"`
}

func NewLiteral(s Segment, value interface{}) *ValueSegment {
	return &ValueSegment{Segment: s, Literal: value}
}

func NewPlaceholder(s Segment, paramIndex int) *ValueSegment {
	return &ValueSegment{Segment: s, Placeholder: true, ParamIndex: paramIndex}
}

// Resolve returns the value of the segment, placeholders are read from parameters.
func (v *ValueSegment) Resolve(parameters []interface{}) (interface{}, error) {
	if !v.Placeholder {
		return NormalizeValue(v.Literal), nil
	}
	if v.ParamIndex < 0 || v.ParamIndex >= len(parameters) {
		return nil, core.NewRoutingError("parameter index %d is out of range, %d parameters supplied", v.ParamIndex, len(parameters))
	}
	return NormalizeValue(parameters[v.ParamIndex]), nil
}

// NormalizeValue folds integral floats (numbers decoded from json) to int64.
func NormalizeValue(value interface{}) interface{} {
	v := comparison.Normalize(value)
	if f, ok := v.(float64); ok && f == math.Trunc(f) && math.Abs(f) < math.MaxInt64 {
		return int64(f)
	}
	return v
}

// RowSegment is a parenthesized value row, such as one row of INSERT VALUES.
type RowSegment struct {
	Segment
	Values []*ValueSegment `json:"values"`
}

type ConstraintSegment struct {
	Segment
	Name IdentifierValue `json:"name"`
}

type IndexSegment struct {
	Segment
	Owner *OwnerSegment   `json:"owner,omitempty"`
	Name  IdentifierValue `json:"name"`
}

type CursorSegment struct {
	Segment
	Name IdentifierValue `json:"name"`
}
