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

//配置参考：https://shardingsphere.apache.org/document/current/cn/user-manual/shardingsphere-jdbc/yaml-config/rules/sharding/

package core

import (
	"strings"

	"github.com/scylladb/go-set/strset"
)

type KeyGenerateStrategy struct {
	Column        string
	GeneratorName string
}

type AuditStrategy struct {
	AuditorNames     []string
	AllowHintDisable bool
}

// ShardingTable is read only after NewShardingTable returned.
type ShardingTable struct {
	LogicTable          string
	ActualDataNodes     []*DataNode
	DatabaseStrategy    ShardingStrategy
	TableStrategy       ShardingStrategy
	KeyGenerateStrategy *KeyGenerateStrategy
	AuditStrategy       *AuditStrategy

	dataSources    []string
	tablesOfSource map[string][]string
	nodeIndexes    map[string]int
}

func NewShardingTable(logicTable string, nodes []*DataNode, dbStrategy ShardingStrategy, tableStrategy ShardingStrategy) (*ShardingTable, error) {
	name := TrimAndLower(logicTable)
	if name == "" {
		return nil, NewConfigurationError("logic table name can not be empty")
	}
	if len(nodes) == 0 {
		return nil, NewConfigurationError("actual data nodes of table '%s' can not be empty", name)
	}
	if dbStrategy == nil {
		dbStrategy = NoneShardingStrategy
	}
	if tableStrategy == nil {
		tableStrategy = NoneShardingStrategy
	}

	t := &ShardingTable{
		LogicTable:       name,
		ActualDataNodes:  nodes,
		DatabaseStrategy: dbStrategy,
		TableStrategy:    tableStrategy,
		tablesOfSource:   make(map[string][]string),
		nodeIndexes:      make(map[string]int, len(nodes)),
	}

	for i, n := range nodes {
		key := n.Key()
		if _, exists := t.nodeIndexes[key]; exists {
			return nil, NewConfigurationError("duplicate data node '%s' for table '%s'", n, name)
		}
		t.nodeIndexes[key] = i
		if _, ok := t.tablesOfSource[n.DataSource]; !ok {
			t.dataSources = append(t.dataSources, n.DataSource)
		}
		t.tablesOfSource[n.DataSource] = append(t.tablesOfSource[n.DataSource], n.Table)
	}
	return t, nil
}

// GetDataSources returns the data sources in the order they first appear in the actual data nodes.
func (t *ShardingTable) GetDataSources() []string {
	return t.dataSources
}

func (t *ShardingTable) GetActualTables(dataSource string) []string {
	return t.tablesOfSource[dataSource]
}

func (t *ShardingTable) GetAllActualTables() []string {
	tables := make([]string, 0, len(t.ActualDataNodes))
	for _, n := range t.ActualDataNodes {
		tables = append(tables, n.Table)
	}
	return DistinctStrings(tables)
}

func (t *ShardingTable) ContainsDataNode(dataSource string, table string) bool {
	_, ok := t.nodeIndexes[strings.ToLower(dataSource+"."+table)]
	return ok
}

// FindActualTableIndex returns the index of an actual table inside its data source, -1 if absent.
func (t *ShardingTable) FindActualTableIndex(dataSource string, actualTable string) int {
	for i, table := range t.tablesOfSource[dataSource] {
		if strings.EqualFold(table, actualTable) {
			return i
		}
	}
	return -1
}

func (t *ShardingTable) HasDbShardingColumn(column string) bool {
	return t.IsDbSharding() && t.containsColumn(t.DatabaseStrategy.GetShardingColumns(), column)
}

func (t *ShardingTable) HasTableShardingColumn(column string) bool {
	return t.IsTableSharding() && t.containsColumn(t.TableStrategy.GetShardingColumns(), column)
}

func (t *ShardingTable) HasShardingColumn(column string) bool {
	return t.HasDbShardingColumn(column) || t.HasTableShardingColumn(column)
}

// GetShardingColumns returns the columns of both strategies without duplication.
func (t *ShardingTable) GetShardingColumns() []string {
	return DistinctStrings(t.DatabaseStrategy.GetShardingColumns(), t.TableStrategy.GetShardingColumns())
}

func (t *ShardingTable) containsColumn(columns []string, column string) bool {
	c := TrimAndLower(column)
	for _, s := range columns {
		if s == c {
			return true
		}
	}
	return false
}

func (t *ShardingTable) IsDbSharding() bool {
	return t.DatabaseStrategy.GetType() != StrategyNone
}

func (t *ShardingTable) IsTableSharding() bool {
	return t.TableStrategy.GetType() != StrategyNone
}

func (t *ShardingTable) IsSharding() bool {
	return t.IsDbSharding() || t.IsTableSharding()
}

func dataSourceSet(t *ShardingTable) *strset.Set {
	return strset.New(t.dataSources...)
}
