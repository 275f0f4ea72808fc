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

// ShardingAlgorithm implementations must be stateless and deterministic, they may be shared by goroutines.
type ShardingAlgorithm interface {
	GetType() string
}

type PreciseShardingAlgorithm interface {
	ShardingAlgorithm
	DoPreciseSharding(availableTargets []string, value *PreciseShardingValue) (string, error)
}

type RangeShardingAlgorithm interface {
	ShardingAlgorithm
	DoRangeSharding(availableTargets []string, value *RangeShardingValue) ([]string, error)
}

type ComplexKeysShardingAlgorithm interface {
	ShardingAlgorithm
	DoComplexSharding(availableTargets []string, value *ComplexKeysShardingValue) ([]string, error)
}

type HintShardingAlgorithm interface {
	ShardingAlgorithm
	DoHintSharding(availableTargets []string, value *HintShardingValue) ([]string, error)
}
