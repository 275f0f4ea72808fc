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

package testkit

import (
	"fmt"

	"github.com/emirpasic/gods/utils"
	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/core/comparison"
	"github.com/stretchr/testify/assert"
)

type equatable interface {
	Equals(v interface{}) bool
}

func errorDifferent(excepted []interface{}, actual []interface{}) string {
	sb := core.NewStringBuilder()
	sb.WriteLine("array not same")

	sb.Write("excepted: ")
	writeSorted(sb, excepted)
	sb.WriteLine()

	sb.Write("actual: ")
	writeSorted(sb, actual)
	sb.WriteLine()

	return sb.String()
}

func writeSorted(sb *core.StringBuilder, values []interface{}) {
	if len(values) == 0 {
		sb.Write("<empty array>")
		return
	}
	sorted := make([]interface{}, len(values))
	copy(sorted, values)
	utils.Sort(sorted, func(a, b interface{}) int {
		i, err := comparison.Compare(a, b)
		if err != nil {
			return utils.StringComparator(fmt.Sprint(a), fmt.Sprint(b))
		}
		return i
	})
	sb.WriteJoin(", ", sorted...)
}

// AssertStrArrayEquals compares two string slices ignoring the order.
func AssertStrArrayEquals(t assert.TestingT, excepted []string, actual []string, msgAndArgs ...interface{}) bool {
	return AssertArrayEquals(t, convertStrArray(excepted), convertStrArray(actual), msgAndArgs...)
}

// AssertArrayEquals compares two slices ignoring the order, items implementing Equals are compared with it.
func AssertArrayEquals(t assert.TestingT, excepted []interface{}, actual []interface{}, msgAndArgs ...interface{}) bool {
	if len(excepted) == 0 && len(actual) == 0 {
		return true
	}
	if len(excepted) != len(actual) {
		return assert.Fail(t, errorDifferent(excepted, actual), msgAndArgs...)
	}
	for _, r := range excepted {
		if !arrayContains(actual, r) {
			return assert.Fail(t, errorDifferent(excepted, actual), msgAndArgs...)
		}
	}
	return true
}

// AssertDataNodes compares data nodes with "ds.table" texts, the order matters.
func AssertDataNodes(t assert.TestingT, excepted []string, actual []*core.DataNode, msgAndArgs ...interface{}) bool {
	texts := make([]string, len(actual))
	for i, n := range actual {
		texts[i] = n.String()
	}
	if len(excepted) == 0 && len(texts) == 0 {
		return true
	}
	return assert.Equal(t, excepted, texts, msgAndArgs...)
}

func convertStrArray(values []string) []interface{} {
	r := make([]interface{}, len(values))
	for i, value := range values {
		r[i] = value
	}
	return r
}

func arrayContains(values []interface{}, value interface{}) bool {
	for _, r := range values {
		if r == value {
			return true
		}
		if eq, ok := value.(equatable); ok && eq.Equals(r) {
			return true
		}
	}
	return false
}
