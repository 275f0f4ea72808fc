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
	"strconv"
	"strings"

	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/core/comparison"
)

// trailingNumber parses the digits at the end of a target name, t_order_12 -> 12.
func trailingNumber(target string) (int64, bool) {
	end := len(target)
	start := end
	for start > 0 && target[start-1] >= '0' && target[start-1] <= '9' {
		start--
	}
	if start == end {
		return 0, false
	}
	n, err := strconv.ParseInt(target[start:end], 10, 64)
	return n, err == nil
}

func findTargetBySuffix(targets []string, suffix int64) (string, bool) {
	for _, t := range targets {
		if n, ok := trailingNumber(t); ok && n == suffix {
			return t, true
		}
	}
	return "", false
}

func findTargetsBySuffixes(targets []string, suffixes map[int64]struct{}) []string {
	var r []string
	for _, t := range targets {
		if n, ok := trailingNumber(t); ok {
			if _, found := suffixes[n]; found {
				r = append(r, t)
			}
		}
	}
	return r
}

func shardingValueToInt64(value interface{}) (int64, error) {
	v, ok := comparison.ToInt64(value)
	if !ok {
		return 0, fmt.Errorf("integer sharding value expected, given value: %v(%T)", value, value)
	}
	return v, nil
}

func requiredInt64(props core.Properties, name string, algorithm string) (int64, error) {
	text, ok := props.GetString(name)
	if !ok {
		return 0, fmt.Errorf("configuration property '%s' missed for %s algorithm", name, algorithm)
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("configuration property '%s' of %s algorithm must be an integer, given value: %s", name, algorithm, text)
	}
	return v, nil
}

func parseInt64List(text string) ([]int64, error) {
	items := core.DistinctSliceAndTrim(strings.Split(text, ","))
	list := make([]int64, len(items))
	for i, item := range items {
		v, err := strconv.ParseInt(item, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer '%s'", item)
		}
		list[i] = v
	}
	return list, nil
}

func mod(value int64, count int64) int64 {
	r := value % count
	if r < 0 {
		r = -r
	}
	return r
}
