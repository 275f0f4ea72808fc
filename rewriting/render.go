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

package rewriting

import (
	"strconv"
	"strings"

	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/explain"
	"github.com/endink/sharding-rewrite/routing"
)

// RenderContext is what rendering needs besides the route unit.
type RenderContext struct {
	Route *routing.RouteContext
	Rule  *core.ShardingRule
}

// Render returns the text of the token for the route unit and the placeholder indexes the text no longer contains.
func Render(token *SQLToken, unit *routing.RouteUnit, rc *RenderContext) (string, []int, error) {
	if token.Payload == nil || token.Payload.tokenKind() != token.Kind {
		return "", nil, core.NewRenderError("payload of %s token does not match its kind", token)
	}
	switch p := token.Payload.(type) {
	case *AggregationDistinctPayload:
		if p.Alias == "" {
			return p.InnerExpression, nil, nil
		}
		return p.InnerExpression + " AS " + p.Alias, nil, nil
	case *DistinctProjectionPrefixPayload:
		return "DISTINCT ", nil, nil
	case *ConstraintPayload:
		actual, err := actualTable(unit, rc, p.LogicTable)
		if err != nil {
			return "", nil, err
		}
		return p.Name.Quote.Wrap(p.Name.Value + "_" + actual), nil, nil
	case *CursorPayload:
		if len(unit.TableMappers) == 0 {
			return "", nil, core.NewRenderError("cursor '%s' can not be rendered for '%s', it has no table", p.Name.Value, unit)
		}
		return p.Name.Quote.Wrap(p.Name.Value + "_" + unit.TableMappers[0].ActualName), nil, nil
	case *IndexPayload:
		actual, err := actualTable(unit, rc, p.LogicTable)
		if err != nil {
			return "", nil, err
		}
		return p.Name.Quote.Wrap(p.Name.Value + "_" + actual), nil, nil
	case *TablePayload:
		actual, err := actualTable(unit, rc, p.LogicTable)
		if err != nil {
			return "", nil, err
		}
		return p.Name.Quote.Wrap(actual), nil, nil
	case *InPredicatePayload:
		kept, removed := filterEntries(p.Values, unit, true)
		return p.Prefix + joinEntries(kept) + p.Suffix, removed, nil
	case *InValuesPayload:
		kept, removed := filterEntries(p.Rows, unit, true)
		return "(" + joinEntries(kept) + ")", removed, nil
	case *InsertValuesPayload:
		kept, removed := filterEntries(p.Rows, unit, false)
		if len(kept) == 0 {
			return "", nil, core.NewRenderError("no insert values row is routed to '%s'", unit)
		}
		return joinEntries(kept), removed, nil
	case *OrderByPayload:
		return renderOrderBy(p.Items), nil, nil
	case *ProjectionsPayload:
		sb := core.NewStringBuilder()
		for _, item := range p.Items {
			sb.Write(", ", derivedExpression(item, unit), " AS ", item.Alias)
		}
		return sb.String(), nil, nil
	case *RemovePayload:
		return "", nil, nil
	case *RowCountPayload:
		return strconv.FormatInt(p.Value, 10), nil, nil
	case *OffsetPayload:
		return strconv.FormatInt(p.Value, 10), nil, nil
	}
	return "", nil, core.NewRenderError("unknown token kind %s", token.Kind)
}

// actualTable finds the actual table of the logic table in the unit, binding tables are derived from a routed member.
func actualTable(unit *routing.RouteUnit, rc *RenderContext, logicTable string) (string, error) {
	if actual, ok := unit.FindActualTable(logicTable); ok {
		return actual, nil
	}
	if rc != nil && rc.Rule != nil {
		for _, m := range unit.TableMappers {
			if !rc.Rule.IsAllBindingTables([]string{logicTable, m.LogicName}) {
				continue
			}
			if actual, ok := rc.Rule.FindBindingActualTable(unit.DataSource(), logicTable, m.LogicName, m.ActualName); ok {
				return actual, nil
			}
		}
	}
	return "", core.NewRenderError("actual table of '%s' can not be found in route unit '%s'", logicTable, unit)
}

// filterEntries keeps the entries routed to the unit, with keepAll the whole list is kept when nothing matches.
func filterEntries(entries []*ValueEntry, unit *routing.RouteUnit, keepAll bool) ([]*ValueEntry, []int) {
	kept := make([]*ValueEntry, 0, len(entries))
	var dropped []*ValueEntry
	for _, e := range entries {
		if len(e.DataNodes) == 0 || unit.ContainsNode(e.DataNodes) {
			kept = append(kept, e)
		} else {
			dropped = append(dropped, e)
		}
	}
	if len(kept) == 0 && keepAll {
		return entries, nil
	}
	var removed []int
	for _, e := range dropped {
		removed = append(removed, e.Parameters...)
	}
	return kept, removed
}

func joinEntries(entries []*ValueEntry) string {
	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Text
	}
	return strings.Join(texts, ", ")
}

func renderOrderBy(items []*explain.OrderByItem) string {
	sb := core.NewStringBuilder()
	sb.Write(" ORDER BY ")
	for i, item := range items {
		if i > 0 {
			sb.Write(", ")
		}
		if item.Kind == explain.OrderByIndex {
			sb.Write(strconv.Itoa(item.Index))
		} else {
			sb.Write(item.Text)
		}
		direction := item.Direction
		if direction == "" {
			direction = explain.OrderAsc
		}
		sb.Write(" ", string(direction))
	}
	return sb.String()
}

func derivedExpression(item *DerivedEntry, unit *routing.RouteUnit) string {
	if item.Owner != "" && item.Column != "" {
		if actual, ok := unit.FindActualTable(item.Owner); ok {
			return actual + "." + item.Column
		}
	}
	return item.Expression
}
