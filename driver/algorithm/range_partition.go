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
	"sort"

	"github.com/endink/sharding-rewrite/core"
)

const (
	TypeVolumeRange   = "VOLUME_RANGE"
	TypeBoundaryRange = "BOUNDARY_RANGE"

	RangeLowerPropertyName     = "range-lower"
	RangeUpperPropertyName     = "range-upper"
	ShardingVolumePropertyName = "sharding-volume"
	ShardingRangesPropertyName = "sharding-ranges"
)

// partitionRange splits integers by ascending boundaries:
// partition 0 is (-∞, b0), partition i is [b(i-1), b(i)), the last one is [b(n-1), +∞).
type partitionRange struct {
	tp         string
	boundaries []int64
}

func NewVolumeRange(props core.Properties) (interface{}, error) {
	lower, err := requiredInt64(props, RangeLowerPropertyName, TypeVolumeRange)
	if err != nil {
		return nil, err
	}
	upper, err := requiredInt64(props, RangeUpperPropertyName, TypeVolumeRange)
	if err != nil {
		return nil, err
	}
	volume, err := requiredInt64(props, ShardingVolumePropertyName, TypeVolumeRange)
	if err != nil {
		return nil, err
	}
	if volume <= 0 || upper <= lower {
		return nil, fmt.Errorf("%s algorithm requires '%s' > 0 and '%s' > '%s'", TypeVolumeRange, ShardingVolumePropertyName, RangeUpperPropertyName, RangeLowerPropertyName)
	}
	var boundaries []int64
	for b := lower; ; b += volume {
		boundaries = append(boundaries, b)
		if uint64(upper)-uint64(b) <= uint64(volume) {
			break
		}
	}
	boundaries = append(boundaries, upper)
	return &partitionRange{tp: TypeVolumeRange, boundaries: boundaries}, nil
}

func NewBoundaryRange(props core.Properties) (interface{}, error) {
	text, ok := props.GetString(ShardingRangesPropertyName)
	if !ok {
		return nil, fmt.Errorf("configuration property '%s' missed for %s algorithm", ShardingRangesPropertyName, TypeBoundaryRange)
	}
	boundaries, err := parseInt64List(text)
	if err != nil {
		return nil, fmt.Errorf("invalid '%s' for %s algorithm: %s", ShardingRangesPropertyName, TypeBoundaryRange, err)
	}
	if !sort.SliceIsSorted(boundaries, func(i, j int) bool { return boundaries[i] < boundaries[j] }) {
		return nil, fmt.Errorf("'%s' of %s algorithm must be ascending", ShardingRangesPropertyName, TypeBoundaryRange)
	}
	return &partitionRange{tp: TypeBoundaryRange, boundaries: boundaries}, nil
}

func (p *partitionRange) GetType() string {
	return p.tp
}

func (p *partitionRange) partition(v int64) int64 {
	return int64(sort.Search(len(p.boundaries), func(i int) bool {
		return p.boundaries[i] > v
	}))
}

func (p *partitionRange) DoPreciseSharding(availableTargets []string, value *core.PreciseShardingValue) (string, error) {
	v, err := shardingValueToInt64(value.Value)
	if err != nil {
		return "", err
	}
	index := p.partition(v)
	if t, ok := findTargetBySuffix(availableTargets, index); ok {
		return t, nil
	}
	return "", fmt.Errorf("no target for partition %d of value %d in %v", index, v, availableTargets)
}

func (p *partitionRange) DoRangeSharding(availableTargets []string, value *core.RangeShardingValue) ([]string, error) {
	first, last := int64(0), int64(len(p.boundaries))
	r := value.Value
	if r.HasLower() {
		v, err := shardingValueToInt64(r.LowerBound())
		if err != nil {
			return nil, err
		}
		first = p.partition(v)
	}
	if r.HasUpper() {
		v, err := shardingValueToInt64(r.UpperBound())
		if err != nil {
			return nil, err
		}
		last = p.partition(v)
	}
	suffixes := make(map[int64]struct{})
	for i := first; i <= last; i++ {
		suffixes[i] = core.Nothing
	}
	return findTargetsBySuffixes(availableTargets, suffixes), nil
}
