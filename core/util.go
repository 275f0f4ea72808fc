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
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/emirpasic/gods/sets/linkedhashset"
)

var LineSeparator = "\n"

var Nothing = struct{}{}

func FileExists(name string) bool {
	info, err := os.Stat(name)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func IfBlank(value string, blankValue string) string {
	if strings.TrimSpace(value) == "" {
		return blankValue
	}
	return value
}

func IfBlankAndTrim(value string, blankValue string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return blankValue
	}
	return v
}

func StringSliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i, v := range a {
		if v != b[i] {
			return false
		}
	}
	return true
}

func ContainsIgnoreCase(slice []string, value string) bool {
	for _, s := range slice {
		if strings.EqualFold(s, value) {
			return true
		}
	}
	return false
}

func DistinctSliceAndTrim(slice []string) []string {
	result := make([]string, 0, len(slice))
	temp := map[string]struct{}{}
	for _, item := range slice {
		trim := strings.TrimSpace(item)
		if trim != "" {
			if _, ok := temp[trim]; !ok {
				temp[trim] = Nothing
				result = append(result, trim)
			}
		}
	}
	return result
}

// DistinctStrings keeps the first occurrence of every item.
func DistinctStrings(slices ...[]string) []string {
	set := linkedhashset.New()
	for _, slice := range slices {
		for _, s := range slice {
			set.Add(s)
		}
	}
	return toStrings(set.Values())
}

func toStrings(values []interface{}) []string {
	r := make([]string, len(values))
	for i, v := range values {
		r[i] = v.(string)
	}
	return r
}

// Permute returns the cartesian product of the given lists, the first list varies slowest.
func Permute(lists [][]interface{}) [][]interface{} {
	result := [][]interface{}{{}}
	for _, list := range lists {
		next := make([][]interface{}, 0, len(result)*len(list))
		for _, prefix := range result {
			for _, item := range list {
				row := make([]interface{}, len(prefix), len(prefix)+1)
				copy(row, prefix)
				next = append(next, append(row, item))
			}
		}
		result = next
	}
	if len(lists) == 0 {
		return nil
	}
	return result
}

var identityRegex *regexp.Regexp
var identityRegexOnce sync.Once

//验证由字母数字下划线组成的标识符，且必须以字母开头
func ValidateIdentifier(identifier string) error {
	identityRegexOnce.Do(func() {
		identityRegex = regexp.MustCompile(`^[A-Za-z]+[A-Za-z0-9_-]*$`)
	})
	if !identityRegex.MatchString(identifier) {
		return fmt.Errorf("identifier must starts with a letter and letters, numbers, underline(_), minus(-) are allowed, given value: %s", identifier)
	}
	return nil
}

func TrimAndLower(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
