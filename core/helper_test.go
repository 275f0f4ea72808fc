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
	"testing"

	"github.com/stretchr/testify/assert"
)

// suffixAlgorithm routes integers to the target ending with "_<value % count>".
type suffixAlgorithm struct {
	count int64
}

func (a *suffixAlgorithm) GetType() string {
	return "TEST_SUFFIX"
}

func (a *suffixAlgorithm) DoPreciseSharding(availableTargets []string, value *PreciseShardingValue) (string, error) {
	v, ok := value.Value.(int)
	if !ok {
		return "", fmt.Errorf("int value expected, got %T", value.Value)
	}
	suffix := fmt.Sprintf("_%d", int64(v)%a.count)
	for _, t := range availableTargets {
		if len(t) >= len(suffix) && t[len(t)-len(suffix):] == suffix {
			return t, nil
		}
	}
	return "", fmt.Errorf("no target for %d", v)
}

type fixedAlgorithm struct {
	targets []string
}

func (a *fixedAlgorithm) GetType() string {
	return "TEST_FIXED"
}

func (a *fixedAlgorithm) DoRangeSharding(_ []string, _ *RangeShardingValue) ([]string, error) {
	return a.targets, nil
}

func (a *fixedAlgorithm) DoComplexSharding(_ []string, _ *ComplexKeysShardingValue) ([]string, error) {
	return a.targets, nil
}

func (a *fixedAlgorithm) DoHintSharding(_ []string, _ *HintShardingValue) ([]string, error) {
	return a.targets, nil
}

func nodes(t *testing.T, texts ...string) []*DataNode {
	list := make([]*DataNode, len(texts))
	for i, text := range texts {
		n, err := ParseDataNode(text)
		assert.Nil(t, err)
		list[i] = n
	}
	return list
}

func standard(t *testing.T, column string, count int64) ShardingStrategy {
	s, err := NewStandardShardingStrategy(column, &suffixAlgorithm{count: count})
	assert.Nil(t, err)
	return s
}
