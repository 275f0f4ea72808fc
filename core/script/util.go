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

package script

import (
	"regexp"
)

var (
	dotRangeRegex    = regexp.MustCompile(`^\s*(-?\d+)\s*\.\.\s*(-?\d+)\s*$`)
	singleQuoteRegex = regexp.MustCompile(`'([^'\\]*)'`)
	rangeCallRegex   = regexp.MustCompile(`\brange\s*\(`)
)

// normalizeScript rewrites "0..3" and range(0,3) into the inclusive inline_range(0,3) and 'text' into "text".
// The tengo builtin range excludes its upper bound, so it is never called from inline expressions.
func normalizeScript(script string) string {
	if m := dotRangeRegex.FindStringSubmatch(script); m != nil {
		return rangeFunctionName + "(" + m[1] + "," + m[2] + ")"
	}
	script = rangeCallRegex.ReplaceAllString(script, rangeFunctionName+"(")
	return singleQuoteRegex.ReplaceAllString(script, `"$1"`)
}

// product concatenates every prefix with every suffix, keeping the order of both.
func product(prefixes []string, suffixes []string) []string {
	r := make([]string, 0, len(prefixes)*len(suffixes))
	for _, p := range prefixes {
		for _, s := range suffixes {
			r = append(r, p+s)
		}
	}
	return r
}
