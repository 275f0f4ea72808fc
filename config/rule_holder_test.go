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
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/endink/sharding-rewrite/config"
	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/driver/algorithm"
	"github.com/endink/sharding-rewrite/testkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleHolderReload(t *testing.T) {
	holder := config.NewRuleHolder(testkit.OrderRule(t))
	assert.EqualValues(t, 1, holder.Load().Version)

	loader := config.NewLoader(algorithm.NewRegistry())
	err := holder.Reload(func(version uint64) (*core.ShardingRule, error) {
		return loader.LoadString(testkit.OrderRuleYAML, version)
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, holder.Load().Version)

	err = holder.Reload(func(version uint64) (*core.ShardingRule, error) {
		return loader.LoadString("rule: {}", version)
	})
	assert.True(t, core.IsConfigurationError(err))
	assert.EqualValues(t, 2, holder.Load().Version)
}

func TestRuleHolderEmpty(t *testing.T) {
	holder := config.NewRuleHolder(nil)
	assert.Nil(t, holder.Load())
	assert.EqualValues(t, 1, holder.NextVersion())
}

func TestRuleHolderKeepsNewestSnapshot(t *testing.T) {
	holder := config.NewRuleHolder(testkit.OrderRule(t))
	loader := config.NewLoader(algorithm.NewRegistry())
	load := func(version uint64) *core.ShardingRule {
		rule, err := loader.LoadString(testkit.OrderRuleYAML, version)
		require.NoError(t, err)
		return rule
	}

	assert.True(t, holder.Store(load(5)))
	assert.False(t, holder.Store(load(3)))
	assert.EqualValues(t, 5, holder.Load().Version)
	assert.EqualValues(t, 6, holder.NextVersion())

	// a reload started first but finished last does not replace the newer snapshot
	slow := holder.NextVersion()
	require.NoError(t, holder.Reload(func(version uint64) (*core.ShardingRule, error) {
		return load(version), nil
	}))
	assert.False(t, holder.Store(load(slow)))
	assert.EqualValues(t, 8, holder.Load().Version)
}

func TestRuleHolderConcurrentReloads(t *testing.T) {
	holder := config.NewRuleHolder(testkit.OrderRule(t))
	loader := config.NewLoader(algorithm.NewRegistry())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				assert.NoError(t, holder.Reload(func(version uint64) (*core.ShardingRule, error) {
					return loader.LoadString(testkit.OrderRuleYAML, version)
				}))
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 41, holder.Load().Version)
	assert.EqualValues(t, 42, holder.NextVersion())
}

func TestRuleHolderConcurrentReaders(t *testing.T) {
	holder := config.NewRuleHolder(testkit.OrderRule(t))
	loader := config.NewLoader(algorithm.NewRegistry())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				rule := holder.Load()
				_, ok := rule.FindShardingTable("t_order")
				assert.True(t, ok)
			}
		}()
	}
	for i := 0; i < 5; i++ {
		require.NoError(t, holder.Reload(func(version uint64) (*core.ShardingRule, error) {
			return loader.LoadString(testkit.OrderRuleYAML, version)
		}))
	}
	wg.Wait()
	assert.EqualValues(t, 6, holder.Load().Version)
}

func TestWatch(t *testing.T) {
	dir, err := ioutil.TempDir("", "sharding-rule")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	file := filepath.Join(dir, "sharding.yaml")
	require.NoError(t, ioutil.WriteFile(file, []byte(testkit.OrderRuleYAML), 0644))

	loader := config.NewLoader(algorithm.NewRegistry())
	rule, err := loader.LoadFile(file, 1)
	require.NoError(t, err)
	holder := config.NewRuleHolder(rule)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- config.Watch(ctx, file, loader, holder)
	}()
	// give the watcher a moment to register the directory
	time.Sleep(100 * time.Millisecond)

	broken := strings.Replace(testkit.OrderRuleYAML, "type: MOD", "type: NOT_EXISTED", 1)
	require.NoError(t, ioutil.WriteFile(file, []byte(broken), 0644))
	time.Sleep(200 * time.Millisecond)
	assert.EqualValues(t, 1, holder.Load().Version)

	withoutUser := strings.Replace(testkit.OrderRuleYAML, "    t_user:\n      actual-data-nodes: ds_${0..1}.t_user\n", "", 1)
	require.NoError(t, ioutil.WriteFile(file, []byte(withoutUser), 0644))
	require.Eventually(t, func() bool {
		return !holder.Load().IsShardingTable("t_user")
	}, 5*time.Second, 50*time.Millisecond)
	assert.Greater(t, holder.Load().Version, uint64(1))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
