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

package core

import (
	"fmt"
	"strings"
)

// ShardingValue is a constraint extracted from predicates for one column of one logic table.
type ShardingValue interface {
	fmt.Stringer
	GetTable() string
	GetColumn() string
}

// ShardingScalarValue comes from '=' and 'IN'. An empty Values list can not match any shard.
type ShardingScalarValue struct {
	Table  string
	Column string
	Values []interface{}
}

// ShardingRangeValue comes from 'BETWEEN' and comparison operators.
type ShardingRangeValue struct {
	Table  string
	Column string
	Value  Range
}

func (s *ShardingScalarValue) GetTable() string {
	return s.Table
}

func (s *ShardingScalarValue) GetColumn() string {
	return s.Column
}

func (s *ShardingScalarValue) String() string {
	items := make([]string, len(s.Values))
	for i, v := range s.Values {
		items[i] = fmt.Sprint(v)
	}
	return fmt.Sprintf("%s.%s in (%s)", s.Table, s.Column, strings.Join(items, ", "))
}

func (s *ShardingRangeValue) GetTable() string {
	return s.Table
}

func (s *ShardingRangeValue) GetColumn() string {
	return s.Column
}

func (s *ShardingRangeValue) String() string {
	return fmt.Sprintf("%s.%s in [%s]", s.Table, s.Column, s.Value)
}

// PreciseShardingValue is handed to precise algorithms, one value at a time.
type PreciseShardingValue struct {
	LogicTable string
	Column     string
	Value      interface{}
}

type RangeShardingValue struct {
	LogicTable string
	Column     string
	Value      Range
}

// ComplexKeysShardingValue carries every sharding column of a complex strategy.
type ComplexKeysShardingValue struct {
	LogicTable   string
	ColumnValues map[string][]interface{}
	ColumnRanges map[string]Range
}

type HintShardingValue struct {
	LogicTable string
	Values     []interface{}
}

func FindShardingValue(values []ShardingValue, column string) ShardingValue {
	for _, v := range values {
		if strings.EqualFold(v.GetColumn(), column) {
			return v
		}
	}
	return nil
}
