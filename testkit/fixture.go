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
	"testing"

	"github.com/endink/sharding-rewrite/config"
	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/driver/algorithm"
	"github.com/stretchr/testify/require"
)

// OrderRuleYAML is the rule shared by package tests:
// t_order and t_order_item are binding tables sharded by user_id (database) and order_id (table),
// t_user is sharded by database only, t_account is a non binding table, t_hint uses hint strategies,
// t_complex uses a complex table strategy and t_config is a broadcast table.
const OrderRuleYAML = `
rule:
  schema: logic_db
  data-sources: [ds_0, ds_1]
  default-data-source: ds_0
  binding-tables:
    - t_order,t_order_item
  broadcast-tables: [t_config]
  default-database-strategy:
    standard:
      sharding-column: user_id
      sharding-algorithm-name: database_mod
  tables:
    t_order:
      actual-data-nodes: ds_${0..1}.t_order_${0..1}
      table-strategy:
        standard:
          sharding-column: order_id
          sharding-algorithm-name: t_order_inline
      key-generate-strategy:
        column: order_id
        key-generator-name: snowflake
    t_order_item:
      actual-data-nodes: ds_${0..1}.t_order_item_${0..1}
      table-strategy:
        standard:
          sharding-column: order_id
          sharding-algorithm-name: t_order_item_inline
    t_user:
      actual-data-nodes: ds_${0..1}.t_user
    t_account:
      actual-data-nodes: ds_${0..1}.t_account_${0..1}
      table-strategy:
        standard:
          sharding-column: account_id
          sharding-algorithm-name: account_mod
    t_hint:
      actual-data-nodes: ds_${0..1}.t_hint_${0..1}
      database-strategy:
        hint:
          sharding-algorithm-name: hint_database
      table-strategy:
        hint:
          sharding-algorithm-name: hint_table
    t_complex:
      actual-data-nodes: ds_${0..1}.t_complex_${0..3}
      table-strategy:
        complex:
          sharding-columns: user_id,order_id
          sharding-algorithm-name: complex_inline
  algorithms:
    database_mod:
      type: MOD
      props:
        sharding-count: 2
    t_order_inline:
      type: INLINE
      props:
        algorithm-expression: t_order_${order_id % 2}
    t_order_item_inline:
      type: INLINE
      props:
        algorithm-expression: t_order_item_${order_id % 2}
    account_mod:
      type: HASH_MOD
      props:
        sharding-count: 2
    hint_database:
      type: HINT_INLINE
      props:
        algorithm-expression: ds_${value % 2}
    hint_table:
      type: HINT_INLINE
      props:
        algorithm-expression: t_hint_${value % 2}
    complex_inline:
      type: COMPLEX_INLINE
      props:
        sharding-columns: user_id,order_id
        algorithm-expression: t_complex_${(user_id + order_id) % 4}
`

// OrderRule loads OrderRuleYAML with the built-in algorithms.
func OrderRule(t testing.TB) *core.ShardingRule {
	t.Helper()
	rule, err := config.NewLoader(algorithm.NewRegistry()).LoadString(OrderRuleYAML, 1)
	require.NoError(t, err, "load order rule fault")
	return rule
}
