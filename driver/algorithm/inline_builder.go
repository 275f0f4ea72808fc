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
	"regexp"
	"strings"

	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/core/script"
)

const (
	ShardingColumnsPropertyName = "sharding-columns"
	ExpressionPropertyName      = "algorithm-expression"
)

var (
	scriptBodyRegex  = regexp.MustCompile(`\$\{([^}]*)\}`)
	identifierRegex  = regexp.MustCompile(`(^|[^.\w])([A-Za-z_][A-Za-z0-9_]*)`)
	stringLitRegex   = regexp.MustCompile(`"[^"]*"|'[^']*'`)
	reservedIdents   = map[string]struct{}{}
	reservedIdentSrc = "range len copy append delete splice string int bool float char bytes time error format type_name " +
		"is_int is_float is_string is_bool is_char is_bytes is_array is_immutable_array is_map is_immutable_map " +
		"is_iterable is_time is_error is_undefined is_function is_callable true false undefined if else for in " +
		"func return export import immutable break continue"
)

func init() {
	for _, s := range strings.Fields(reservedIdentSrc) {
		reservedIdents[s] = core.Nothing
	}
}

// InlineBuilder reads the properties shared by the inline algorithms.
type InlineBuilder struct {
	ShardingColumns string `yaml:"sharding-columns"`
	Expression      string `yaml:"algorithm-expression"`
}

func newInlineBuilder(props core.Properties) (*InlineBuilder, error) {
	b := &InlineBuilder{}
	if err := props.PopulateValue(b); err != nil {
		return nil, err
	}
	b.Expression = strings.TrimSpace(b.Expression)
	return b, nil
}

// Build compiles the expression, the variables are the configured sharding columns or, when they are absent, the
// identifiers used by the expression scripts.
func (i *InlineBuilder) Build(fixedVariables ...string) (script.InlineExpression, []string, error) {
	if i.Expression == "" {
		return nil, nil, fmt.Errorf("configuration property '%s' missed for inline algorithm", ExpressionPropertyName)
	}

	var columns []string
	var err error
	switch {
	case len(fixedVariables) > 0:
		columns = fixedVariables
	case strings.TrimSpace(i.ShardingColumns) != "":
		if columns, err = i.parseColumnsExpression(i.ShardingColumns); err != nil {
			return nil, nil, err
		}
	default:
		columns = extractVariables(i.Expression)
	}

	expr, err := script.NewInlineExpression(i.Expression, columns...)
	if err != nil {
		mainInfo := fmt.Sprintf("invalid configuration property '%s' for inline algorithm", ExpressionPropertyName)
		return nil, nil, fmt.Errorf("%s%s%s", mainInfo, core.LineSeparator, err)
	}
	return expr, columns, nil
}

func (i *InlineBuilder) parseColumnsExpression(columnsExpr string) ([]string, error) {
	columns := core.DistinctSliceAndTrim(strings.Split(columnsExpr, ","))
	if len(columns) == 0 {
		return nil, fmt.Errorf("invalid configuration property '%s' for inline algorithm, have no columns can be parsed", ShardingColumnsPropertyName)
	}

	for _, col := range columns {
		if err := core.ValidateIdentifier(col); err != nil {
			return nil, fmt.Errorf("invalid configuration property '%s' for inline algorithm, invalid column name '%s'", ShardingColumnsPropertyName, col)
		}
	}
	return columns, nil
}

func extractVariables(expression string) []string {
	var names []string
	for _, body := range scriptBodyRegex.FindAllStringSubmatch(expression, -1) {
		code := stringLitRegex.ReplaceAllString(body[1], "")
		for _, m := range identifierRegex.FindAllStringSubmatch(code, -1) {
			if _, reserved := reservedIdents[m[2]]; !reserved {
				names = append(names, m[2])
			}
		}
	}
	return core.DistinctStrings(names)
}
