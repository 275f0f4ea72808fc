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
	"strings"

	"github.com/stretchr/testify/assert"
)

// NormalizeSql collapses white spaces outside of quoted text.
func NormalizeSql(sql string) string {
	var sb strings.Builder
	quote := rune(0)
	space := false
	for _, r := range strings.TrimSpace(sql) {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"' || r == '`':
			quote = r
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			space = true
			continue
		}
		if space {
			sb.WriteRune(' ')
			space = false
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func AssertEqualSql(t assert.TestingT, excepted string, actual string, msgAndArgs ...interface{}) bool {
	return assert.Equal(t, NormalizeSql(excepted), NormalizeSql(actual), msgAndArgs...)
}
