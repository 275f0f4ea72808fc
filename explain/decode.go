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
	"encoding/json"
	"io"
	"io/ioutil"

	"github.com/endink/sharding-rewrite/core"
	"github.com/pingcap/errors"
)

// ReadStatementContext decodes a json statement context and validates its segments.
func ReadStatementContext(reader io.Reader) (*StatementContext, error) {
	data, err := ioutil.ReadAll(reader)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return ParseStatementContext(data)
}

func ParseStatementContext(data []byte) (*StatementContext, error) {
	stmt := &StatementContext{}
	if err := json.Unmarshal(data, stmt); err != nil {
		return nil, errors.Annotate(err, "decode statement context fault")
	}
	if err := stmt.Validate(); err != nil {
		return nil, err
	}
	return stmt, nil
}

// Validate checks that every segment lies inside the sql text and every placeholder has a parameter.
func (s *StatementContext) Validate() error {
	if !s.Kind.IsValid() {
		return core.NewUnsupportedStatementError("unsupported statement kind '%s'", s.Kind)
	}
	v := &validator{size: len([]rune(s.SQL)), params: len(s.Parameters)}
	for _, t := range s.Tables {
		v.segment("table", t.Segment)
	}
	for _, e := range s.Predicates() {
		v.expr(e)
	}
	if sel := s.Select; sel != nil {
		if p := sel.Projections; p != nil {
			v.insertion("projections", p.Segment)
			for _, a := range p.AggregationDistinct {
				v.segment("aggregation distinct", a.Segment)
			}
		}
		v.optional("from", sel.From)
		v.optional("having", sel.Having)
		v.optional("window", sel.Window)
		if sel.GroupBy != nil {
			v.segment("group by", sel.GroupBy.Segment)
		}
		if p := sel.Pagination; p != nil {
			v.pagination("offset", p.Offset)
			v.pagination("row count", p.RowCount)
		}
	}
	if s.Insert != nil {
		for _, r := range s.Insert.Rows {
			v.row(r)
		}
	}
	for _, c := range s.Constraints {
		v.segment("constraint", c.Segment)
	}
	for _, i := range s.Indexes {
		v.segment("index", i.Segment)
	}
	if s.Cursor != nil {
		v.segment("cursor", s.Cursor.Segment)
	}
	for _, r := range s.RemoveSegments {
		v.optional("remove", r)
	}
	return v.err
}

type validator struct {
	size   int
	params int
	err    error
}

func (v *validator) fail(format string, args ...interface{}) {
	if v.err == nil {
		v.err = core.NewUnsupportedStatementError(format, args...)
	}
}

func (v *validator) segment(name string, s Segment) {
	if s.Start < 0 || s.Stop >= v.size || s.IsEmpty() {
		v.fail("%s segment %s is out of sql text (length %d)", name, s, v.size)
	}
}

// insertion allows a zero width segment.
func (v *validator) insertion(name string, s Segment) {
	if s.Start < 0 || s.Stop >= v.size || s.Stop < s.Start-1 {
		v.fail("%s segment %s is out of sql text (length %d)", name, s, v.size)
	}
}

func (v *validator) optional(name string, s *Segment) {
	if s != nil {
		v.segment(name, *s)
	}
}

func (v *validator) value(s *ValueSegment) {
	if s == nil {
		return
	}
	v.segment("value", s.Segment)
	if s.Placeholder && (s.ParamIndex < 0 || s.ParamIndex >= v.params) {
		v.fail("placeholder %s refers parameter %d, %d parameters supplied", s.Segment, s.ParamIndex, v.params)
	}
}

func (v *validator) row(r *RowSegment) {
	v.segment("row", r.Segment)
	for _, value := range r.Values {
		v.value(value)
	}
}

func (v *validator) pagination(name string, p *PaginationValue) {
	if p == nil {
		return
	}
	v.segment(name, p.Segment)
	if p.Placeholder && (p.ParamIndex < 0 || p.ParamIndex >= v.params) {
		v.fail("%s placeholder refers parameter %d, %d parameters supplied", name, p.ParamIndex, v.params)
	}
}

func (v *validator) expr(e *Expr) {
	e.Walk(func(n *Expr) bool {
		v.segment("expression", n.Segment)
		v.value(n.Value)
		v.value(n.Low)
		v.value(n.High)
		for _, value := range n.Values {
			v.value(value)
		}
		for _, r := range n.Rows {
			v.row(r)
		}
		return v.err == nil
	})
}
