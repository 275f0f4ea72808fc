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
	"strings"

	"github.com/emirpasic/gods/sets/linkedhashset"
	"github.com/scylladb/go-set/strset"
)

type StrategyType int

const (
	StrategyNone StrategyType = iota
	StrategyStandard
	StrategyComplex
	StrategyHint
)

func (t StrategyType) String() string {
	switch t {
	case StrategyStandard:
		return "standard"
	case StrategyComplex:
		return "complex"
	case StrategyHint:
		return "hint"
	}
	return "none"
}

// ShardingStrategy picks the targets (data sources or actual tables) a statement must reach.
// values are the constraints of one AndCondition on the table, hint is the externally supplied hint values.
type ShardingStrategy interface {
	GetType() StrategyType
	GetShardingColumns() []string
	Shard(availableTargets []string, values []ShardingValue, hint []interface{}) ([]string, error)
}

var NoneShardingStrategy ShardingStrategy = &noneShardingStrategy{}

type noneShardingStrategy struct {
}

func (n *noneShardingStrategy) GetType() StrategyType {
	return StrategyNone
}

func (n *noneShardingStrategy) GetShardingColumns() []string {
	return nil
}

func (n *noneShardingStrategy) Shard(availableTargets []string, _ []ShardingValue, _ []interface{}) ([]string, error) {
	return copyTargets(availableTargets), nil
}

type StandardShardingStrategy struct {
	Column    string
	precise   PreciseShardingAlgorithm
	rangeAlgo RangeShardingAlgorithm
}

func NewStandardShardingStrategy(column string, algorithm ShardingAlgorithm) (*StandardShardingStrategy, error) {
	col := TrimAndLower(column)
	if col == "" {
		return nil, NewConfigurationError("sharding column is required for standard sharding strategy")
	}
	precise, ok := algorithm.(PreciseShardingAlgorithm)
	if !ok {
		return nil, NewConfigurationError("algorithm '%s' can not be used by standard sharding strategy, precise sharding is not supported", algorithmType(algorithm))
	}
	s := &StandardShardingStrategy{Column: col, precise: precise}
	if r, ok := algorithm.(RangeShardingAlgorithm); ok {
		s.rangeAlgo = r
	}
	return s, nil
}

func (s *StandardShardingStrategy) GetType() StrategyType {
	return StrategyStandard
}

func (s *StandardShardingStrategy) GetShardingColumns() []string {
	return []string{s.Column}
}

func (s *StandardShardingStrategy) IsRangeValueSupported() bool {
	return s.rangeAlgo != nil
}

func (s *StandardShardingStrategy) Shard(availableTargets []string, values []ShardingValue, _ []interface{}) ([]string, error) {
	switch v := FindShardingValue(values, s.Column).(type) {
	case *ShardingScalarValue:
		set := linkedhashset.New()
		for _, item := range v.Values {
			target, err := s.precise.DoPreciseSharding(availableTargets, &PreciseShardingValue{
				LogicTable: v.Table,
				Column:     s.Column,
				Value:      item,
			})
			if err != nil {
				return nil, WrapRoutingError(err, "precise sharding fault, table: %s, column: %s, value: %v", v.Table, s.Column, item)
			}
			set.Add(target)
		}
		return checkTargets(availableTargets, toStrings(set.Values()))
	case *ShardingRangeValue:
		if s.rangeAlgo == nil {
			return copyTargets(availableTargets), nil
		}
		targets, err := s.rangeAlgo.DoRangeSharding(availableTargets, &RangeShardingValue{
			LogicTable: v.Table,
			Column:     s.Column,
			Value:      v.Value,
		})
		if err != nil {
			return nil, WrapRoutingError(err, "range sharding fault, table: %s, column: %s, range: %s", v.Table, s.Column, v.Value)
		}
		return checkTargets(availableTargets, targets)
	}
	return copyTargets(availableTargets), nil
}

type ComplexShardingStrategy struct {
	Columns   []string
	algorithm ComplexKeysShardingAlgorithm
}

func NewComplexShardingStrategy(columns []string, algorithm ShardingAlgorithm) (*ComplexShardingStrategy, error) {
	cols := DistinctSliceAndTrim(columns)
	if len(cols) == 0 {
		return nil, NewConfigurationError("sharding columns are required for complex sharding strategy")
	}
	for i, c := range cols {
		cols[i] = strings.ToLower(c)
	}
	a, ok := algorithm.(ComplexKeysShardingAlgorithm)
	if !ok {
		return nil, NewConfigurationError("algorithm '%s' can not be used by complex sharding strategy", algorithmType(algorithm))
	}
	return &ComplexShardingStrategy{Columns: cols, algorithm: a}, nil
}

func (s *ComplexShardingStrategy) GetType() StrategyType {
	return StrategyComplex
}

func (s *ComplexShardingStrategy) GetShardingColumns() []string {
	return s.Columns
}

func (s *ComplexShardingStrategy) Shard(availableTargets []string, values []ShardingValue, _ []interface{}) ([]string, error) {
	sv := &ComplexKeysShardingValue{
		ColumnValues: make(map[string][]interface{}),
		ColumnRanges: make(map[string]Range),
	}
	for _, column := range s.Columns {
		switch v := FindShardingValue(values, column).(type) {
		case *ShardingScalarValue:
			sv.LogicTable = v.Table
			sv.ColumnValues[column] = v.Values
		case *ShardingRangeValue:
			sv.LogicTable = v.Table
			sv.ColumnRanges[column] = v.Value
		}
	}
	if len(sv.ColumnValues) == 0 && len(sv.ColumnRanges) == 0 {
		return copyTargets(availableTargets), nil
	}
	targets, err := s.algorithm.DoComplexSharding(availableTargets, sv)
	if err != nil {
		return nil, WrapRoutingError(err, "complex sharding fault, table: %s", sv.LogicTable)
	}
	return checkTargets(availableTargets, targets)
}

type HintShardingStrategy struct {
	algorithm HintShardingAlgorithm
}

func NewHintShardingStrategy(algorithm ShardingAlgorithm) (*HintShardingStrategy, error) {
	a, ok := algorithm.(HintShardingAlgorithm)
	if !ok {
		return nil, NewConfigurationError("algorithm '%s' can not be used by hint sharding strategy", algorithmType(algorithm))
	}
	return &HintShardingStrategy{algorithm: a}, nil
}

func (s *HintShardingStrategy) GetType() StrategyType {
	return StrategyHint
}

func (s *HintShardingStrategy) GetShardingColumns() []string {
	return nil
}

// Shard ignores predicate values, without hint values every target is returned.
func (s *HintShardingStrategy) Shard(availableTargets []string, _ []ShardingValue, hint []interface{}) ([]string, error) {
	if len(hint) == 0 {
		return copyTargets(availableTargets), nil
	}
	targets, err := s.algorithm.DoHintSharding(availableTargets, &HintShardingValue{Values: hint})
	if err != nil {
		return nil, WrapRoutingError(err, "hint sharding fault")
	}
	return checkTargets(availableTargets, targets)
}

func checkTargets(availableTargets []string, targets []string) ([]string, error) {
	set := strset.New(availableTargets...)
	for _, t := range targets {
		if !set.Has(t) {
			return nil, NewRoutingError("sharding algorithm returned target '%s' which is not one of %v", t, availableTargets)
		}
	}
	return DistinctStrings(targets), nil
}

func copyTargets(availableTargets []string) []string {
	r := make([]string, len(availableTargets))
	copy(r, availableTargets)
	return r
}

func algorithmType(algorithm ShardingAlgorithm) string {
	if algorithm == nil {
		return "<nil>"
	}
	return algorithm.GetType()
}
