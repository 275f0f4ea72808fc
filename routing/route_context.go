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

package routing

import (
	"strings"

	"github.com/endink/sharding-rewrite/core"
	"github.com/scylladb/go-set/strset"
)

// RouteMapper maps a logic name to an actual name.
type RouteMapper struct {
	LogicName  string `json:"logicName"`
	ActualName string `json:"actualName"`
}

func (m RouteMapper) String() string {
	if m.LogicName == m.ActualName {
		return m.ActualName
	}
	return m.LogicName + "->" + m.ActualName
}

// RouteUnit is one physical target of a statement, one data source with the actual table of each logic table.
type RouteUnit struct {
	DataSourceMapper RouteMapper   `json:"dataSource"`
	TableMappers     []RouteMapper `json:"tables"`
}

func NewRouteUnit(dataSource string, tables ...RouteMapper) *RouteUnit {
	return &RouteUnit{
		DataSourceMapper: RouteMapper{LogicName: dataSource, ActualName: dataSource},
		TableMappers:     tables,
	}
}

func (u *RouteUnit) DataSource() string {
	return u.DataSourceMapper.ActualName
}

// FindActualTable returns the actual table mapped for the logic table.
func (u *RouteUnit) FindActualTable(logicTable string) (string, bool) {
	for _, m := range u.TableMappers {
		if strings.EqualFold(m.LogicName, logicTable) {
			return m.ActualName, true
		}
	}
	return "", false
}

// FindLogicTable returns the logic table of an actual table.
func (u *RouteUnit) FindLogicTable(actualTable string) (string, bool) {
	for _, m := range u.TableMappers {
		if strings.EqualFold(m.ActualName, actualTable) {
			return m.LogicName, true
		}
	}
	return "", false
}

func (u *RouteUnit) LogicTableNames() []string {
	names := make([]string, len(u.TableMappers))
	for i, m := range u.TableMappers {
		names[i] = m.LogicName
	}
	return names
}

// DataNodes returns the data node of every mapped table.
func (u *RouteUnit) DataNodes() []*core.DataNode {
	nodes := make([]*core.DataNode, len(u.TableMappers))
	for i, m := range u.TableMappers {
		nodes[i] = core.NewDataNode(u.DataSource(), m.ActualName)
	}
	return nodes
}

// ContainsNode reports whether any of the nodes is targeted by this unit.
func (u *RouteUnit) ContainsNode(nodes []*core.DataNode) bool {
	for _, n := range nodes {
		if !strings.EqualFold(n.DataSource, u.DataSource()) {
			continue
		}
		if _, ok := u.FindLogicTable(n.Table); ok {
			return true
		}
	}
	return false
}

func (u *RouteUnit) String() string {
	sb := core.NewStringBuilder()
	sb.Write(u.DataSource(), ": ")
	for i, m := range u.TableMappers {
		if i > 0 {
			sb.Write(", ")
		}
		sb.Write(m.String())
	}
	return sb.String()
}

// RouteContext is the read only routing result of one statement.
// OriginalDataNodes is aligned to the statement rows: INSERT VALUES rows or row value IN list rows.
type RouteContext struct {
	Units             []*RouteUnit       `json:"units"`
	OriginalDataNodes [][]*core.DataNode `json:"originalDataNodes,omitempty"`
}

// ContainsTableSharding reports whether any unit maps a logic table to a different actual table.
func (r *RouteContext) ContainsTableSharding() bool {
	for _, u := range r.Units {
		for _, m := range u.TableMappers {
			if !strings.EqualFold(m.LogicName, m.ActualName) {
				return true
			}
		}
	}
	return false
}

func (r *RouteContext) IsSingleRouting() bool {
	return len(r.Units) == 1
}

// Impossible reports a statement whose conditions can not match any data node.
func (r *RouteContext) Impossible() bool {
	return len(r.Units) == 0
}

// DataSourceNames returns distinct data sources in route order.
func (r *RouteContext) DataSourceNames() []string {
	names := make([]string, 0, len(r.Units))
	for _, u := range r.Units {
		names = append(names, u.DataSource())
	}
	return core.DistinctStrings(names)
}

// ActualTableNames returns the distinct actual tables of a logic table in route order.
func (r *RouteContext) ActualTableNames(logicTable string) []string {
	var names []string
	for _, u := range r.Units {
		if t, ok := u.FindActualTable(logicTable); ok {
			names = append(names, t)
		}
	}
	return core.DistinctStrings(names)
}

func (r *RouteContext) IsMultiDataSource() bool {
	set := strset.New()
	for _, u := range r.Units {
		set.Add(strings.ToLower(u.DataSource()))
	}
	return set.Size() > 1
}

func (r *RouteContext) String() string {
	sb := core.NewStringBuilder()
	for _, u := range r.Units {
		sb.WriteLine(u.String())
	}
	return sb.String()
}
