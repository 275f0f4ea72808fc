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

package algorithm

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/core/comparison"
)

const (
	TypeMod     = "MOD"
	TypeHashMod = "HASH_MOD"

	ShardingCountPropertyName = "sharding-count"
)

// Mod routes an integer value to the target whose trailing number is value % sharding-count.
type Mod struct {
	count int64
}

func NewMod(props core.Properties) (interface{}, error) {
	count, err := requiredInt64(props, ShardingCountPropertyName, TypeMod)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, fmt.Errorf("'%s' of %s algorithm must be greater than 0", ShardingCountPropertyName, TypeMod)
	}
	return &Mod{count: count}, nil
}

func (m *Mod) GetType() string {
	return TypeMod
}

func (m *Mod) DoPreciseSharding(availableTargets []string, value *core.PreciseShardingValue) (string, error) {
	v, err := shardingValueToInt64(value.Value)
	if err != nil {
		return "", err
	}
	suffix := mod(v, m.count)
	if t, ok := findTargetBySuffix(availableTargets, suffix); ok {
		return t, nil
	}
	return "", fmt.Errorf("no target ends with '%d' in %v", suffix, availableTargets)
}

// DoRangeSharding enumerates the range when it is shorter than sharding-count, otherwise every target matches.
func (m *Mod) DoRangeSharding(availableTargets []string, value *core.RangeShardingValue) ([]string, error) {
	r := value.Value
	if !r.HasLower() || !r.HasUpper() {
		return availableTargets, nil
	}
	lower, err := shardingValueToInt64(r.LowerBound())
	if err != nil {
		return availableTargets, nil
	}
	upper, err := shardingValueToInt64(r.UpperBound())
	if err != nil {
		return availableTargets, nil
	}
	suffixes := make(map[int64]struct{})
	if upper < lower {
		return findTargetsBySuffixes(availableTargets, suffixes), nil
	}
	// the width is computed unsigned, upper-lower does not fit an int64 for wide ranges
	if uint64(upper)-uint64(lower) >= uint64(m.count-1) {
		return availableTargets, nil
	}
	for k := int64(0); k <= upper-lower; k++ {
		suffixes[mod(lower+k, m.count)] = core.Nothing
	}
	return findTargetsBySuffixes(availableTargets, suffixes), nil
}

// HashMod routes xxhash(value text) % sharding-count, so it accepts values of any type.
type HashMod struct {
	count uint64
}

func NewHashMod(props core.Properties) (interface{}, error) {
	count, err := requiredInt64(props, ShardingCountPropertyName, TypeHashMod)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, fmt.Errorf("'%s' of %s algorithm must be greater than 0", ShardingCountPropertyName, TypeHashMod)
	}
	return &HashMod{count: uint64(count)}, nil
}

func (h *HashMod) GetType() string {
	return TypeHashMod
}

func (h *HashMod) DoPreciseSharding(availableTargets []string, value *core.PreciseShardingValue) (string, error) {
	suffix := int64(xxhash.Sum64String(fmt.Sprint(comparison.Normalize(value.Value))) % h.count)
	if t, ok := findTargetBySuffix(availableTargets, suffix); ok {
		return t, nil
	}
	return "", fmt.Errorf("no target ends with '%d' in %v", suffix, availableTargets)
}
