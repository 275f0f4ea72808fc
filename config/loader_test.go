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

package config_test

import (
	"testing"

	"github.com/endink/sharding-rewrite/config"
	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/driver/algorithm"
	"github.com/endink/sharding-rewrite/testkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrderRule(t *testing.T) {
	rule := testkit.OrderRule(t)
	assert.Equal(t, "logic_db", rule.Schema)
	assert.Equal(t, []string{"ds_0", "ds_1"}, rule.DataSources)
	assert.Equal(t, "ds_0", rule.DefaultDataSource)
	assert.EqualValues(t, 1, rule.Version)

	order, ok := rule.FindShardingTable("T_ORDER")
	require.True(t, ok)
	assert.Equal(t, core.StrategyStandard, order.DatabaseStrategy.GetType())
	assert.Equal(t, core.StrategyStandard, order.TableStrategy.GetType())
	assert.Equal(t, []string{"t_order_0", "t_order_1"}, order.GetActualTables("ds_1"))
	require.NotNil(t, order.KeyGenerateStrategy)
	assert.Equal(t, "order_id", order.KeyGenerateStrategy.Column)

	user, ok := rule.FindShardingTable("t_user")
	require.True(t, ok)
	assert.Equal(t, core.StrategyNone, user.TableStrategy.GetType())
	assert.True(t, user.IsDbSharding())
	assert.False(t, user.IsTableSharding())

	hint, _ := rule.FindShardingTable("t_hint")
	assert.Equal(t, core.StrategyHint, hint.DatabaseStrategy.GetType())

	complexTable, _ := rule.FindShardingTable("t_complex")
	assert.Equal(t, core.StrategyComplex, complexTable.TableStrategy.GetType())
	assert.Equal(t, []string{"user_id", "order_id"}, complexTable.TableStrategy.GetShardingColumns())

	assert.True(t, rule.IsAllBindingTables([]string{"t_order", "t_order_item"}))
	assert.False(t, rule.IsAllBindingTables([]string{"t_order", "t_account"}))
	assert.True(t, rule.IsBroadcastTable("T_CONFIG"))
}

func TestLoadReportsAllErrors(t *testing.T) {
	content := `
rule:
  data-sources: [ds_0, ds_1]
  tables:
    t_a:
      actual-data-nodes: ds_${0..1}.t_a_${0..1}
      table-strategy:
        standard:
          sharding-column: id
          sharding-algorithm-name: missing_a
    t_b:
      actual-data-nodes: ds_${0..1}.t_b_${0..1}
      table-strategy:
        standard:
          sharding-column: id
          sharding-algorithm-name: missing_b
  algorithms:
    unknown:
      type: NOT_EXISTED
`
	_, err := config.NewLoader(algorithm.NewRegistry()).LoadString(content, 1)
	require.Error(t, err)
	assert.True(t, core.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "missing_a")
	assert.Contains(t, err.Error(), "missing_b")
	assert.Contains(t, err.Error(), "unknown")
}

func TestLoadBadContent(t *testing.T) {
	loader := config.NewLoader(algorithm.NewRegistry())

	_, err := loader.LoadString("other: 1", 1)
	assert.True(t, core.IsConfigurationError(err))

	_, err = loader.LoadString("rule: [", 1)
	assert.True(t, core.IsConfigurationError(err))

	_, err = loader.LoadFile("not_existed_rule.yaml", 1)
	assert.True(t, core.IsConfigurationError(err))

	content := `
rule:
  data-sources: [ds_0]
  tables:
    t_a:
      actual-data-nodes: ds_0.t_a_${0..1}
  binding-tables:
    - t_a,t_missing
`
	_, err = loader.LoadString(content, 1)
	assert.True(t, core.IsConfigurationError(err))
}

func TestParseDataNodes(t *testing.T) {
	nodes, err := config.ParseDataNodes("ds_${0..1}.t_order_${0..1}", "t_order", nil)
	require.NoError(t, err)
	testkit.AssertDataNodes(t, []string{"ds_0.t_order_0", "ds_0.t_order_1", "ds_1.t_order_0", "ds_1.t_order_1"}, nodes)

	nodes, err = config.ParseDataNodes(" ", "T_User", []string{"ds_0", "ds_1"})
	require.NoError(t, err)
	testkit.AssertDataNodes(t, []string{"ds_0.t_user", "ds_1.t_user"}, nodes)

	_, err = config.ParseDataNodes("t_order_${0..1}", "t_order", nil)
	assert.Error(t, err)
}
