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

package telemetry

import (
	"errors"
	"strings"
	"sync"
	"unicode"
)

var meterMap = make(map[string]*NamedMeter)
var meterMutex sync.Mutex

// GetMeter returns the shared meter of the namespace, collectors go to the default registerer.
func GetMeter(namespace string) *NamedMeter {
	meterMutex.Lock()
	defer meterMutex.Unlock()
	if m, ok := meterMap[namespace]; ok {
		return m
	}
	m := NewNamedMeter(DefaultRegisterer(), namespace)
	meterMap[namespace] = m
	return m
}

// BuildMetricName joins the parts into a snake case prometheus name,
// camel case is split and '.', '-', '_' or spaces at the edges are dropped.
func BuildMetricName(statement ...string) string {
	if len(statement) == 0 {
		panic(errors.New("name for 'BuildMetricName' can not be nil or empty"))
	}

	sb := &strings.Builder{}
	array := make([]string, 0, len(statement))
	for _, s := range statement {
		sb.Reset()
		separator := false
		prevLower := false
		for _, current := range s {
			switch {
			case current == '.' || current == '-' || current == '_' || unicode.IsSpace(current):
				separator = true
				prevLower = false
				continue
			case unicode.IsUpper(current):
				if prevLower {
					separator = true
				}
				prevLower = false
				current = unicode.ToLower(current)
			default:
				prevLower = true
			}
			if separator && sb.Len() > 0 {
				sb.WriteByte('_')
			}
			separator = false
			sb.WriteRune(current)
		}
		if sb.Len() > 0 {
			array = append(array, sb.String())
		}
	}
	return strings.Join(array, "_")
}
