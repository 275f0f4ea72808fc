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
	"sync"
	"sync/atomic"

	"github.com/endink/sharding-rewrite/core"
)

// RuleHolder publishes immutable rule snapshots, readers never observe a partially applied reload.
// Versions only grow: a snapshot older than the published one is never stored.
type RuleHolder struct {
	value atomic.Value
	mu    sync.Mutex
	// the highest version handed out or published, guarded by mu
	version uint64
}

func NewRuleHolder(rule *core.ShardingRule) *RuleHolder {
	h := &RuleHolder{}
	if rule != nil {
		h.value.Store(rule)
		h.version = rule.Version
	}
	return h
}

// Load returns the current snapshot, nil before the first rule is stored.
func (h *RuleHolder) Load() *core.ShardingRule {
	r, _ := h.value.Load().(*core.ShardingRule)
	return r
}

// Store publishes the rule unless a snapshot with a higher version is already published.
func (h *RuleHolder) Store(rule *core.ShardingRule) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if current := h.Load(); current != nil && rule.Version < current.Version {
		return false
	}
	h.value.Store(rule)
	if rule.Version > h.version {
		h.version = rule.Version
	}
	return true
}

// NextVersion returns the version a new snapshot should carry.
func (h *RuleHolder) NextVersion() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.version++
	return h.version
}

// Reload builds a new snapshot and publishes it, the current snapshot is kept when build fails.
// A build finishing after a newer concurrent reload is dropped.
func (h *RuleHolder) Reload(build func(version uint64) (*core.ShardingRule, error)) error {
	rule, err := build(h.NextVersion())
	if err != nil {
		return err
	}
	if !h.Store(rule) {
		logger.Debugf("rule version %d is dropped, version %d is already published", rule.Version, h.Load().Version)
	}
	return nil
}
