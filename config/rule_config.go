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

package config

// RuleConfig is the yaml document under the 'rule' key.
type RuleConfig struct {
	Schema                  string                      `yaml:"schema"`
	DataSources             []string                    `yaml:"data-sources"`
	DefaultDataSource       string                      `yaml:"default-data-source"`
	Tables                  map[string]*TableConfig     `yaml:"tables"`
	BindingTables           []string                    `yaml:"binding-tables"`
	BroadcastTables         []string                    `yaml:"broadcast-tables"`
	DefaultDatabaseStrategy *StrategyConfig             `yaml:"default-database-strategy"`
	DefaultTableStrategy    *StrategyConfig             `yaml:"default-table-strategy"`
	Algorithms              map[string]*AlgorithmConfig `yaml:"algorithms"`
}

type TableConfig struct {
	ActualDataNodes     string                     `yaml:"actual-data-nodes"`
	DatabaseStrategy    *StrategyConfig            `yaml:"database-strategy"`
	TableStrategy       *StrategyConfig            `yaml:"table-strategy"`
	KeyGenerateStrategy *KeyGenerateStrategyConfig `yaml:"key-generate-strategy"`
	AuditStrategy       *AuditStrategyConfig       `yaml:"audit-strategy"`
}

// StrategyConfig sets at most one of its variants, nothing set means no sharding.
type StrategyConfig struct {
	Standard *StandardStrategyConfig `yaml:"standard"`
	Complex  *ComplexStrategyConfig  `yaml:"complex"`
	Hint     *HintStrategyConfig     `yaml:"hint"`
}

type StandardStrategyConfig struct {
	ShardingColumn string `yaml:"sharding-column"`
	Algorithm      string `yaml:"sharding-algorithm-name"`
}

type ComplexStrategyConfig struct {
	// comma separated column names
	ShardingColumns string `yaml:"sharding-columns"`
	Algorithm       string `yaml:"sharding-algorithm-name"`
}

type HintStrategyConfig struct {
	Algorithm string `yaml:"sharding-algorithm-name"`
}

type KeyGenerateStrategyConfig struct {
	Column        string `yaml:"column"`
	GeneratorName string `yaml:"key-generator-name"`
}

type AuditStrategyConfig struct {
	AuditorNames     []string `yaml:"auditor-names"`
	AllowHintDisable bool     `yaml:"allow-hint-disable"`
}

// AlgorithmConfig names an algorithm type, props are read separately as core.Properties.
type AlgorithmConfig struct {
	Type string `yaml:"type"`
}
