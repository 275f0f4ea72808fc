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
	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/core/comparison"
)

const noneCount = int64(-1)

type LimitStyle string

const (
	LimitStyleLimit  LimitStyle = "LIMIT"
	LimitStyleTop    LimitStyle = "TOP"
	LimitStyleRowNum LimitStyle = "ROWNUM"
)

// PaginationValue is the literal or placeholder of OFFSET / row count.
type PaginationValue struct {
	Segment
	Value       int64 `json:"value,omitempty"`
	Placeholder bool  `json:"placeholder,omitempty"`
	ParamIndex  int   `json:"paramIndex,omitempty"`
}

func (v *PaginationValue) Resolve(parameters []interface{}) (int64, error) {
	if !v.Placeholder {
		return v.Value, nil
	}
	if v.ParamIndex < 0 || v.ParamIndex >= len(parameters) {
		return 0, core.NewRoutingError("pagination parameter index %d is out of range, %d parameters supplied", v.ParamIndex, len(parameters))
	}
	n, ok := comparison.ToInt64(parameters[v.ParamIndex])
	if !ok {
		return 0, core.NewRoutingError("pagination parameter %d must be an integer, got %v", v.ParamIndex, parameters[v.ParamIndex])
	}
	return n, nil
}

type Pagination struct {
	Style    LimitStyle       `json:"style,omitempty"`
	Offset   *PaginationValue `json:"offset,omitempty"`
	RowCount *PaginationValue `json:"rowCount,omitempty"`
}

func (p *Pagination) HasOffset() bool {
	return p != nil && p.Offset != nil
}

func (p *Pagination) HasLimit() bool {
	return p != nil && p.RowCount != nil
}

// OffsetValue returns 0 without offset.
func (p *Pagination) OffsetValue(parameters []interface{}) (int64, error) {
	if !p.HasOffset() {
		return 0, nil
	}
	return p.Offset.Resolve(parameters)
}

// RowCountValue returns -1 without limit.
func (p *Pagination) RowCountValue(parameters []interface{}) (int64, error) {
	if !p.HasLimit() {
		return noneCount, nil
	}
	return p.RowCount.Resolve(parameters)
}
