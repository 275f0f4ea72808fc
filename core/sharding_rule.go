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
	"sort"
	"strings"

	"github.com/scylladb/go-set/strset"
	"go.uber.org/multierr"
)

// ShardingRule is an immutable configuration snapshot.
type ShardingRule struct {
	Schema             string
	DataSources        []string
	DefaultDataSource  string
	BindingTableGroups [][]string
	Version            uint64

	tables          map[string]*ShardingTable
	bindingGroupOf  map[string]int
	broadcastTables *strset.Set
}

type ShardingRuleOption func(rule *ShardingRule)

func WithDefaultDataSource(dataSource string) ShardingRuleOption {
	return func(rule *ShardingRule) {
		rule.DefaultDataSource = strings.TrimSpace(dataSource)
	}
}

func WithBindingTables(groups ...[]string) ShardingRuleOption {
	return func(rule *ShardingRule) {
		for _, g := range groups {
			names := make([]string, 0, len(g))
			for _, n := range g {
				names = append(names, TrimAndLower(n))
			}
			rule.BindingTableGroups = append(rule.BindingTableGroups, DistinctSliceAndTrim(names))
		}
	}
}

func WithBroadcastTables(tables ...string) ShardingRuleOption {
	return func(rule *ShardingRule) {
		for _, t := range tables {
			if n := TrimAndLower(t); n != "" {
				rule.broadcastTables.Add(n)
			}
		}
	}
}

func WithVersion(version uint64) ShardingRuleOption {
	return func(rule *ShardingRule) {
		rule.Version = version
	}
}

// NewShardingRule validates the whole rule and reports every problem at once.
func NewShardingRule(schema string, dataSources []string, tables []*ShardingTable, options ...ShardingRuleOption) (*ShardingRule, error) {
	rule := &ShardingRule{
		Schema:          TrimAndLower(schema),
		DataSources:     DistinctSliceAndTrim(dataSources),
		tables:          make(map[string]*ShardingTable, len(tables)),
		bindingGroupOf:  make(map[string]int),
		broadcastTables: strset.New(),
	}
	for _, option := range options {
		option(rule)
	}

	var errs error
	if len(rule.DataSources) == 0 {
		errs = multierr.Append(errs, NewConfigurationError("at least one data source is required"))
	}
	sources := strset.New(rule.DataSources...)
	if rule.DefaultDataSource == "" && len(rule.DataSources) > 0 {
		rule.DefaultDataSource = rule.DataSources[0]
	} else if rule.DefaultDataSource != "" && !sources.Has(rule.DefaultDataSource) {
		errs = multierr.Append(errs, NewConfigurationError("default data source '%s' is not configured", rule.DefaultDataSource))
	}

	for _, t := range tables {
		if _, exists := rule.tables[t.LogicTable]; exists {
			errs = multierr.Append(errs, NewConfigurationError("duplicate sharding table '%s'", t.LogicTable))
			continue
		}
		if diff := strset.Difference(dataSourceSet(t), sources); !diff.IsEmpty() {
			errs = multierr.Append(errs, NewConfigurationError("table '%s' references unknown data sources %v", t.LogicTable, sortedList(diff)))
		}
		if rule.broadcastTables.Has(t.LogicTable) {
			errs = multierr.Append(errs, NewConfigurationError("table '%s' can not be both sharding table and broadcast table", t.LogicTable))
		}
		rule.tables[t.LogicTable] = t
	}

	for i, g := range rule.BindingTableGroups {
		errs = multierr.Append(errs, rule.checkBindingGroup(i, g))
	}

	if errs != nil {
		return nil, WrapConfigurationError(errs, "invalid sharding rule for schema '%s'", rule.Schema)
	}
	return rule, nil
}

func (r *ShardingRule) checkBindingGroup(index int, group []string) error {
	var errs error
	var first *ShardingTable
	for _, name := range group {
		t, ok := r.tables[name]
		if !ok {
			errs = multierr.Append(errs, NewConfigurationError("binding table '%s' is not a sharding table", name))
			continue
		}
		if g, exists := r.bindingGroupOf[name]; exists && g != index {
			errs = multierr.Append(errs, NewConfigurationError("table '%s' belongs to more than one binding group", name))
			continue
		}
		r.bindingGroupOf[name] = index
		if first == nil {
			first = t
			continue
		}
		if !StringSliceEqual(first.GetDataSources(), t.GetDataSources()) {
			errs = multierr.Append(errs, NewConfigurationError("binding tables '%s' and '%s' must have the same data sources", first.LogicTable, name))
			continue
		}
		for _, ds := range first.GetDataSources() {
			if len(first.GetActualTables(ds)) != len(t.GetActualTables(ds)) {
				errs = multierr.Append(errs, NewConfigurationError("binding tables '%s' and '%s' must have the same actual table count in '%s'", first.LogicTable, name, ds))
				break
			}
		}
	}
	return errs
}

func (r *ShardingRule) FindShardingTable(logicTable string) (*ShardingTable, bool) {
	t, ok := r.tables[TrimAndLower(logicTable)]
	return t, ok
}

func (r *ShardingRule) IsShardingTable(logicTable string) bool {
	_, ok := r.FindShardingTable(logicTable)
	return ok
}

func (r *ShardingRule) IsBroadcastTable(logicTable string) bool {
	return r.broadcastTables.Has(TrimAndLower(logicTable))
}

func (r *ShardingRule) GetBroadcastTables() []string {
	return sortedList(r.broadcastTables)
}

// GetShardingTables returns tables sorted by name.
func (r *ShardingRule) GetShardingTables() []*ShardingTable {
	list := make([]*ShardingTable, 0, len(r.tables))
	for _, t := range r.tables {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].LogicTable < list[j].LogicTable
	})
	return list
}

func (r *ShardingRule) FindBindingGroup(logicTable string) ([]string, bool) {
	i, ok := r.bindingGroupOf[TrimAndLower(logicTable)]
	if !ok {
		return nil, false
	}
	return r.BindingTableGroups[i], true
}

func (r *ShardingRule) IsBindingTable(logicTable string) bool {
	_, ok := r.bindingGroupOf[TrimAndLower(logicTable)]
	return ok
}

// IsAllBindingTables reports whether every table belongs to one binding group.
func (r *ShardingRule) IsAllBindingTables(logicTables []string) bool {
	if len(logicTables) == 0 {
		return false
	}
	group := -1
	for _, t := range logicTables {
		g, ok := r.bindingGroupOf[TrimAndLower(t)]
		if !ok || (group >= 0 && g != group) {
			return false
		}
		group = g
	}
	return true
}

// FindBindingActualTable resolves the actual table of logicTable which is bound to otherActualTable of
// otherLogicTable inside the same data source.
func (r *ShardingRule) FindBindingActualTable(dataSource string, logicTable string, otherLogicTable string, otherActualTable string) (string, bool) {
	g1, ok1 := r.bindingGroupOf[TrimAndLower(logicTable)]
	g2, ok2 := r.bindingGroupOf[TrimAndLower(otherLogicTable)]
	if !ok1 || !ok2 || g1 != g2 {
		return "", false
	}
	table := r.tables[TrimAndLower(logicTable)]
	other := r.tables[TrimAndLower(otherLogicTable)]
	index := other.FindActualTableIndex(dataSource, otherActualTable)
	tables := table.GetActualTables(dataSource)
	if index < 0 || index >= len(tables) {
		return "", false
	}
	return tables[index], true
}

// FindTablesByShardingColumn returns the tables (from the given candidates) using the column for sharding.
func (r *ShardingRule) FindTablesByShardingColumn(column string, candidates []string) []string {
	var result []string
	for _, c := range candidates {
		if t, ok := r.FindShardingTable(c); ok && t.HasShardingColumn(column) {
			result = append(result, t.LogicTable)
		}
	}
	return result
}

func sortedList(set *strset.Set) []string {
	list := set.List()
	sort.Strings(list)
	return list
}
