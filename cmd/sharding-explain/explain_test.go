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

package main

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/explain"
	"github.com/endink/sharding-rewrite/testkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRule(t *testing.T) string {
	dir, err := ioutil.TempDir("", "sharding-explain")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	file := filepath.Join(dir, "sharding.yaml")
	require.NoError(t, ioutil.WriteFile(file, []byte(testkit.OrderRuleYAML), 0644))
	return file
}

func statementJSON(t *testing.T) []byte {
	sql := "SELECT * FROM t_order WHERE user_id IN (1, 2) AND order_id = 3"
	b := testkit.NewStatement(t, explain.StatementSelect, sql).Tables("t_order")
	stmt := b.Where(b.And(b.Pred("user_id IN (1, 2)"), b.Pred("order_id = 3"))).Build()
	data, err := json.Marshal(stmt)
	require.NoError(t, err)
	return data
}

func execute(t *testing.T, stdin []byte, args ...string) (string, error) {
	cmd := newRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(bytes.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestExplainTable(t *testing.T) {
	out, err := execute(t, statementJSON(t), "--rule", writeRule(t), "--tokens")
	require.NoError(t, err)
	assert.Contains(t, out, "SELECT * FROM t_order_1 WHERE user_id IN (1) AND order_id = 3")
	assert.Contains(t, out, "SELECT * FROM t_order_1 WHERE user_id IN (2) AND order_id = 3")
	assert.Contains(t, out, "t_order->t_order_1")
	assert.Contains(t, out, "InPredicate")
}

func TestExplainJSON(t *testing.T) {
	out, err := execute(t, statementJSON(t), "-r", writeRule(t), "-f", "json")
	require.NoError(t, err)

	var result struct {
		Commands []struct {
			DataSource string
			SqlCommand string
		}
		Usage       int
		RuleVersion uint64
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Commands, 2)
	assert.Equal(t, "ds_1", result.Commands[0].DataSource)
	assert.Equal(t, "ds_0", result.Commands[1].DataSource)
	assert.Equal(t, uint64(1), result.RuleVersion)
}

func TestExplainStatementFile(t *testing.T) {
	rule := writeRule(t)
	file := filepath.Join(filepath.Dir(rule), "stmt.json")
	require.NoError(t, ioutil.WriteFile(file, statementJSON(t), 0644))

	out, err := execute(t, nil, "-r", rule, "-s", file, "--metrics")
	require.NoError(t, err)
	assert.Contains(t, out, "ds_1")
	assert.Contains(t, out, "sharding_route_units")
}

func TestExplainErrors(t *testing.T) {
	rule := writeRule(t)

	_, err := execute(t, []byte("{"), "-r", rule)
	assert.Error(t, err)

	_, err = execute(t, statementJSON(t), "-r", rule, "-f", "xml")
	assert.Error(t, err)

	_, err = execute(t, statementJSON(t), "-r", filepath.Join(filepath.Dir(rule), "missing.yaml"))
	assert.Error(t, err)

	_, err = execute(t, statementJSON(t), "-r", rule, "--log-level", "loud")
	assert.Error(t, err)

	insert := testkit.NewStatement(t, explain.StatementInsert, "INSERT INTO t_order (status) VALUES (1)").
		Tables("t_order").Insert([]string{"status"}, "(1)").Build()
	data, err := json.Marshal(insert)
	require.NoError(t, err)
	_, err = execute(t, data, "-r", rule)
	assert.True(t, core.IsRoutingError(err))
}

func TestRulesCommand(t *testing.T) {
	out, err := execute(t, nil, "rules", "-r", writeRule(t))
	require.NoError(t, err)
	assert.Contains(t, out, "t_order_item")
	assert.Contains(t, out, "t_order, t_order_item")
	assert.Contains(t, out, "t_config")
}
