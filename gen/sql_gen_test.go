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

package gen

import (
	"strings"
	"sync"
	"testing"

	"github.com/endink/sharding-rewrite/config"
	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/driver/algorithm"
	"github.com/endink/sharding-rewrite/explain"
	"github.com/endink/sharding-rewrite/telemetry"
	"github.com/endink/sharding-rewrite/testkit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, meter *telemetry.NamedMeter, name string, labels ...string) float64 {
	t.Helper()
	return testutil.ToFloat64(meter.NewInt64Counter(name, "", "kind").WithLabelValues(labels...))
}

func orderStatement(t *testing.T) *explain.StatementContext {
	sql := "SELECT * FROM t_order WHERE user_id = 1 AND order_id = 2"
	b := testkit.NewStatement(t, explain.StatementSelect, sql).Tables("t_order")
	return b.Where(b.And(b.Pred("user_id = 1"), b.Pred("order_id = 2"))).Build()
}

func TestPipelineLoadsCurrentSnapshot(t *testing.T) {
	holder := config.NewRuleHolder(testkit.OrderRule(t))
	pipeline := NewPipeline(holder, WithMeter(newTestMeter()))

	result, err := pipeline.Generate(orderStatement(t))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.RuleVersion)
	assert.Equal(t, "SELECT * FROM t_order_0 WHERE user_id = 1 AND order_id = 2", result.Commands[0].SqlCommand)

	yaml := strings.Replace(testkit.OrderRuleYAML, "t_order_${order_id % 2}", "t_order_${(order_id + 1) % 2}", 1)
	err = holder.Reload(func(version uint64) (*core.ShardingRule, error) {
		return config.NewLoader(algorithm.NewRegistry()).LoadString(yaml, version)
	})
	require.NoError(t, err)

	result, err = pipeline.Generate(orderStatement(t))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.RuleVersion)
	assert.Equal(t, "SELECT * FROM t_order_1 WHERE user_id = 1 AND order_id = 2", result.Commands[0].SqlCommand)
}

func TestPipelineMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	meter := telemetry.NewNamedMeter(registry, "sharding")
	pipeline := NewPipeline(StaticRule(testkit.OrderRule(t)), WithMeter(meter))

	_, err := pipeline.Generate(orderStatement(t))
	require.NoError(t, err)
	stmt := testkit.NewStatement(t, explain.StatementSelect, "SELECT * FROM t_order, no_shard").Tables("t_order", "no_shard").Build()
	_, err = pipeline.Generate(stmt)
	require.Error(t, err)

	assert.Equal(t, float64(1), counterValue(t, meter, "errors_total", "routing"))

	families, err := registry.Gather()
	require.NoError(t, err)
	counts := make(map[string]uint64)
	for _, f := range families {
		for _, m := range f.GetMetric() {
			if h := m.GetHistogram(); h != nil {
				counts[f.GetName()] += h.GetSampleCount()
			}
		}
	}
	assert.Equal(t, map[string]uint64{
		"sharding_route_duration_ms":   1,
		"sharding_rewrite_duration_ms": 1,
		"sharding_route_units":         1,
	}, counts)
}

func TestPipelineConcurrently(t *testing.T) {
	pipeline := newTestPipeline(t)
	expected, err := pipeline.Generate(orderStatement(t))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := pipeline.Generate(orderStatement(t))
			if assert.NoError(t, err) {
				assertSqlGenResult(t, expected, result)
			}
		}()
	}
	wg.Wait()
}

func TestGenerateSql(t *testing.T) {
	result, err := GenerateSql(testkit.OrderRule(t), orderStatement(t))
	require.NoError(t, err)
	assert.Equal(t, UsageShard, result.Usage)
	assert.Equal(t, []string{"ds_1"}, result.DataSources())
}

func TestScatterCommand(t *testing.T) {
	cmd := &ScatterCommand{DataSource: "ds_0", SqlCommand: "SELECT ?", Vars: []interface{}{int64(1), "a"}}
	assert.True(t, cmd.Equals(&ScatterCommand{DataSource: "ds_0", SqlCommand: "SELECT ?", Vars: []interface{}{1, "a"}}))
	assert.False(t, cmd.Equals(&ScatterCommand{DataSource: "ds_0", SqlCommand: "SELECT ?", Vars: []interface{}{2, "a"}}))
	assert.False(t, cmd.Equals(&ScatterCommand{DataSource: "ds_1", SqlCommand: "SELECT ?", Vars: []interface{}{1, "a"}}))
	assert.False(t, cmd.Equals("ds_0: SELECT ?"))
	assert.False(t, cmd.Equals(nil))
	assert.True(t, (&ScatterCommand{Vars: []interface{}{nil}}).Equals(&ScatterCommand{Vars: []interface{}{nil}}))

	assert.Equal(t, "ds_0: SELECT ?", (&ScatterCommand{DataSource: "ds_0", SqlCommand: "SELECT ?"}).String())
	assert.Contains(t, cmd.String(), "2 vars: p0=1, p1=a")

	result := &SqlGenResult{Usage: UsageRaw, Commands: []*ScatterCommand{cmd}}
	assert.True(t, strings.HasPrefix(result.String(), "Usage: Raw"))
	assert.Equal(t, "Impossible", UsageImpossible.String())
}
