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
	"testing"

	"github.com/stretchr/testify/assert"
)

var targets = []string{"t_order_0", "t_order_1", "t_order_2", "t_order_3"}

func TestStandardStrategyPrecise(t *testing.T) {
	s := standard(t, "Order_ID", 4)
	assert.Equal(t, []string{"order_id"}, s.GetShardingColumns())

	r, err := s.Shard(targets, []ShardingValue{
		&ShardingScalarValue{Table: "t_order", Column: "order_id", Values: []interface{}{3, 1, 7, 5}},
	}, nil)
	assert.Nil(t, err)
	assert.Equal(t, []string{"t_order_3", "t_order_1"}, r)
}

func TestStandardStrategyWithoutValue(t *testing.T) {
	s := standard(t, "order_id", 4)
	r, err := s.Shard(targets, []ShardingValue{
		&ShardingScalarValue{Table: "t_order", Column: "user_id", Values: []interface{}{1}},
	}, nil)
	assert.Nil(t, err)
	assert.Equal(t, targets, r)

	r, err = s.Shard(targets, []ShardingValue{
		&ShardingScalarValue{Table: "t_order", Column: "order_id", Values: []interface{}{}},
	}, nil)
	assert.Nil(t, err)
	assert.Empty(t, r)
}

func TestStandardStrategyRangeFallback(t *testing.T) {
	s := standard(t, "order_id", 4)
	rg, _ := NewRange(1, 2)
	r, err := s.Shard(targets, []ShardingValue{
		&ShardingRangeValue{Table: "t_order", Column: "order_id", Value: rg},
	}, nil)
	assert.Nil(t, err)
	assert.Equal(t, targets, r)
}

func TestStandardStrategyRejectsNonPrecise(t *testing.T) {
	_, err := NewStandardShardingStrategy("order_id", &fixedAlgorithm{})
	assert.True(t, IsConfigurationError(err))

	_, err = NewStandardShardingStrategy(" ", &suffixAlgorithm{count: 2})
	assert.True(t, IsConfigurationError(err))
}

func TestStandardStrategyAlgorithmError(t *testing.T) {
	s := standard(t, "order_id", 4)
	_, err := s.Shard(targets, []ShardingValue{
		&ShardingScalarValue{Table: "t_order", Column: "order_id", Values: []interface{}{"x"}},
	}, nil)
	assert.True(t, IsRoutingError(err))
}

func TestComplexStrategy(t *testing.T) {
	s, err := NewComplexShardingStrategy([]string{"user_id", " order_id"}, &fixedAlgorithm{targets: []string{"t_order_2"}})
	assert.Nil(t, err)

	r, err := s.Shard(targets, nil, nil)
	assert.Nil(t, err)
	assert.Equal(t, targets, r)

	r, err = s.Shard(targets, []ShardingValue{
		&ShardingScalarValue{Table: "t_order", Column: "order_id", Values: []interface{}{1}},
	}, nil)
	assert.Nil(t, err)
	assert.Equal(t, []string{"t_order_2"}, r)
}

func TestAlgorithmTargetOutOfRange(t *testing.T) {
	s, err := NewComplexShardingStrategy([]string{"order_id"}, &fixedAlgorithm{targets: []string{"t_order_9"}})
	assert.Nil(t, err)
	_, err = s.Shard(targets, []ShardingValue{
		&ShardingScalarValue{Table: "t_order", Column: "order_id", Values: []interface{}{1}},
	}, nil)
	assert.True(t, IsRoutingError(err))
}

func TestHintStrategy(t *testing.T) {
	s, err := NewHintShardingStrategy(&fixedAlgorithm{targets: []string{"t_order_1"}})
	assert.Nil(t, err)

	r, err := s.Shard(targets, []ShardingValue{
		&ShardingScalarValue{Table: "t_order", Column: "order_id", Values: []interface{}{2}},
	}, nil)
	assert.Nil(t, err)
	assert.Equal(t, targets, r, "predicates are ignored by hint strategy")

	r, err = s.Shard(targets, nil, []interface{}{1})
	assert.Nil(t, err)
	assert.Equal(t, []string{"t_order_1"}, r)
}

func TestNoneStrategy(t *testing.T) {
	r, err := NoneShardingStrategy.Shard(targets, nil, []interface{}{1})
	assert.Nil(t, err)
	assert.Equal(t, targets, r)
	assert.Equal(t, "none", NoneShardingStrategy.GetType().String())
}
