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

package config

import (
	"io"
	"os"
	"sort"
	"strings"

	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/core/provider"
	"github.com/endink/sharding-rewrite/core/script"
	"github.com/pingcap/errors"
	"go.uber.org/config"
	"go.uber.org/multierr"
)

const ruleKey = "rule"

// Loader builds sharding rules from yaml, algorithms are created through the registry.
type Loader struct {
	registry provider.Registry
}

func NewLoader(registry provider.Registry) *Loader {
	return &Loader{registry: registry}
}

func (l *Loader) LoadFile(file string, version uint64) (*core.ShardingRule, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, core.WrapConfigurationError(err, "open rule file '%s' fault", file)
	}
	defer f.Close()
	return l.Load(f, version)
}

func (l *Loader) LoadString(content string, version uint64) (*core.ShardingRule, error) {
	return l.Load(strings.NewReader(content), version)
}

func (l *Loader) Load(reader io.Reader, version uint64) (*core.ShardingRule, error) {
	yaml, err := config.NewYAML(config.Source(reader), config.Permissive())
	if err != nil {
		return nil, core.WrapConfigurationError(err, "bad rule yaml")
	}
	return l.LoadYAML(yaml, version)
}

// LoadYAML reads the 'rule' key of the provider, every table error is reported at once.
func (l *Loader) LoadYAML(yaml config.Provider, version uint64) (*core.ShardingRule, error) {
	value := yaml.Get(ruleKey)
	if !value.HasValue() {
		return nil, core.NewConfigurationError("'%s' key is missing from the configuration", ruleKey)
	}
	cnf := &RuleConfig{}
	if err := value.Populate(cnf); err != nil {
		return nil, core.WrapConfigurationError(err, "bad rule configuration")
	}

	algorithms, errs := l.createAlgorithms(value.Get("algorithms"), cnf.Algorithms)

	names := make([]string, 0, len(cnf.Tables))
	for name := range cnf.Tables {
		names = append(names, name)
	}
	sort.Strings(names)

	tables := make([]*core.ShardingTable, 0, len(names))
	for _, name := range names {
		t, err := l.buildTable(name, cnf.Tables[name], cnf, algorithms)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		tables = append(tables, t)
	}
	if errs != nil {
		return nil, core.WrapConfigurationError(errs, "load sharding rule fault")
	}

	var groups [][]string
	for _, b := range cnf.BindingTables {
		groups = append(groups, strings.Split(b, ","))
	}
	return core.NewShardingRule(cnf.Schema, cnf.DataSources, tables,
		core.WithDefaultDataSource(cnf.DefaultDataSource),
		core.WithBindingTables(groups...),
		core.WithBroadcastTables(cnf.BroadcastTables...),
		core.WithVersion(version),
	)
}

func (l *Loader) createAlgorithms(value config.Value, configs map[string]*AlgorithmConfig) (map[string]core.ShardingAlgorithm, error) {
	var errs error
	algorithms := make(map[string]core.ShardingAlgorithm, len(configs))
	for name, c := range configs {
		if c == nil || strings.TrimSpace(c.Type) == "" {
			errs = multierr.Append(errs, core.NewConfigurationError("type of algorithm '%s' is required", name))
			continue
		}
		props, err := core.NewProperties(value.Get(name).Get("props"))
		if err != nil {
			errs = multierr.Append(errs, core.WrapConfigurationError(err, "bad props of algorithm '%s'", name))
			continue
		}
		v, err := l.registry.Create(provider.ShardingAlgorithm, c.Type, props)
		if err != nil {
			errs = multierr.Append(errs, errors.Annotatef(err, "algorithm '%s'", name))
			continue
		}
		a, ok := v.(core.ShardingAlgorithm)
		if !ok {
			errs = multierr.Append(errs, core.NewConfigurationError("'%s' is not a sharding algorithm", c.Type))
			continue
		}
		algorithms[name] = a
	}
	return algorithms, errs
}

func (l *Loader) buildTable(name string, cnf *TableConfig, rule *RuleConfig, algorithms map[string]core.ShardingAlgorithm) (*core.ShardingTable, error) {
	if cnf == nil {
		cnf = &TableConfig{}
	}
	nodes, err := ParseDataNodes(cnf.ActualDataNodes, name, rule.DataSources)
	if err != nil {
		return nil, core.WrapConfigurationError(err, "bad actual data nodes of table '%s'", name)
	}

	dbConfig := cnf.DatabaseStrategy
	if dbConfig == nil {
		dbConfig = rule.DefaultDatabaseStrategy
	}
	tableConfig := cnf.TableStrategy
	if tableConfig == nil {
		tableConfig = rule.DefaultTableStrategy
	}

	var errs error
	dbStrategy, err := buildStrategy(dbConfig, algorithms)
	errs = multierr.Append(errs, errors.Annotatef(err, "database strategy of table '%s'", name))
	tableStrategy, err := buildStrategy(tableConfig, algorithms)
	errs = multierr.Append(errs, errors.Annotatef(err, "table strategy of table '%s'", name))
	if errs != nil {
		return nil, errs
	}

	t, err := core.NewShardingTable(name, nodes, dbStrategy, tableStrategy)
	if err != nil {
		return nil, err
	}
	if k := cnf.KeyGenerateStrategy; k != nil {
		t.KeyGenerateStrategy = &core.KeyGenerateStrategy{Column: core.TrimAndLower(k.Column), GeneratorName: k.GeneratorName}
	}
	if a := cnf.AuditStrategy; a != nil {
		t.AuditStrategy = &core.AuditStrategy{AuditorNames: a.AuditorNames, AllowHintDisable: a.AllowHintDisable}
	}
	return t, nil
}

func buildStrategy(cnf *StrategyConfig, algorithms map[string]core.ShardingAlgorithm) (core.ShardingStrategy, error) {
	if cnf == nil {
		return core.NoneShardingStrategy, nil
	}
	find := func(name string) (core.ShardingAlgorithm, error) {
		a, ok := algorithms[strings.TrimSpace(name)]
		if !ok {
			return nil, core.NewConfigurationError("sharding algorithm '%s' is not defined", name)
		}
		return a, nil
	}
	switch {
	case cnf.Standard != nil:
		a, err := find(cnf.Standard.Algorithm)
		if err != nil {
			return nil, err
		}
		return core.NewStandardShardingStrategy(cnf.Standard.ShardingColumn, a)
	case cnf.Complex != nil:
		a, err := find(cnf.Complex.Algorithm)
		if err != nil {
			return nil, err
		}
		return core.NewComplexShardingStrategy(strings.Split(cnf.Complex.ShardingColumns, ","), a)
	case cnf.Hint != nil:
		a, err := find(cnf.Hint.Algorithm)
		if err != nil {
			return nil, err
		}
		return core.NewHintShardingStrategy(a)
	}
	return core.NoneShardingStrategy, nil
}

// ParseDataNodes expands an inline expression such as "ds_${0..1}.t_order_${0..3}".
// Without expression the table lives in every data source under its logic name.
func ParseDataNodes(expression string, logicTable string, dataSources []string) ([]*core.DataNode, error) {
	if strings.TrimSpace(expression) == "" {
		nodes := make([]*core.DataNode, 0, len(dataSources))
		for _, ds := range dataSources {
			nodes = append(nodes, core.NewDataNode(strings.TrimSpace(ds), core.TrimAndLower(logicTable)))
		}
		return nodes, nil
	}
	expr, err := script.NewInlineExpression(expression)
	if err != nil {
		return nil, err
	}
	list, err := expr.Flat()
	if err != nil {
		return nil, err
	}
	nodes := make([]*core.DataNode, 0, len(list))
	for _, item := range list {
		n, err := core.ParseDataNode(item)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}
