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

// Package cache keeps generated commands keyed by statement fingerprint and rule version,
// a rule reload changes the version so stale plans are never returned.
package cache

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/endink/sharding-rewrite/explain"
	"github.com/endink/sharding-rewrite/gen"
	"github.com/endink/sharding-rewrite/logging"
	"github.com/endink/sharding-rewrite/telemetry"
	gocache "github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"
)

var logger = logging.GetLogger("cache")

const (
	DefaultExpiration      = 10 * time.Minute
	DefaultCleanupInterval = time.Minute
	// NoExpiration keeps plans until the cache is flushed.
	NoExpiration = gocache.NoExpiration
)

type Config struct {
	DefaultExpiration time.Duration `yaml:"default-expiration"`
	CleanupInterval   time.Duration `yaml:"cleanup-interval"`
}

// PlanCache is safe for concurrent use, concurrent misses of one key generate once.
// Cached results are shared and must not be modified.
type PlanCache struct {
	cache    *gocache.Cache
	group    singleflight.Group
	requests *prometheus.CounterVec
}

func NewPlanCache(cfg Config, meter *telemetry.NamedMeter) *PlanCache {
	if cfg.DefaultExpiration == 0 {
		cfg.DefaultExpiration = DefaultExpiration
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultCleanupInterval
	}
	if meter == nil {
		meter = telemetry.GetMeter("sharding")
	}
	c := &PlanCache{
		cache:    gocache.New(cfg.DefaultExpiration, cfg.CleanupInterval),
		requests: meter.NewInt64Counter("plan_cache_requests_total", "plan cache lookups by result", "result"),
	}
	meter.NewInt64ValueObserver("plan_cache_items", "plans in the cache", func() int64 {
		return int64(c.cache.ItemCount())
	})
	return c
}

// Key combines the fingerprint with the rule version.
func Key(fingerprint string, version uint64) string {
	return strconv.FormatUint(version, 10) + ":" + fingerprint
}

// Fingerprint hashes the sql, the parameters and the hint values of the statement.
func Fingerprint(stmt *explain.StatementContext) string {
	h := xxhash.New()
	_, _ = h.Write([]byte(string(stmt.Kind)))
	_, _ = h.Write([]byte("\x00"))
	_, _ = h.Write([]byte(stmt.SQL))
	for _, p := range stmt.Parameters {
		_, _ = fmt.Fprintf(h, "\x00%T:%v", p, p)
	}
	if stmt.Hint != nil {
		writeHintValues(h, "db", stmt.Hint.DatabaseValues)
		writeHintValues(h, "tb", stmt.Hint.TableValues)
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

func writeHintValues(h *xxhash.Digest, prefix string, values map[string][]interface{}) {
	tables := make([]string, 0, len(values))
	for t := range values {
		tables = append(tables, t)
	}
	sort.Strings(tables)
	for _, t := range tables {
		_, _ = fmt.Fprintf(h, "\x00%s.%s=%v", prefix, t, values[t])
	}
}

func (c *PlanCache) Get(fingerprint string, version uint64) (*gen.SqlGenResult, bool) {
	v, ok := c.cache.Get(Key(fingerprint, version))
	if !ok {
		return nil, false
	}
	return v.(*gen.SqlGenResult), true
}

func (c *PlanCache) Set(fingerprint string, result *gen.SqlGenResult) {
	c.cache.SetDefault(Key(fingerprint, result.RuleVersion), result)
}

// Generate returns the cached plan of the statement for the current rule, or generates and caches it.
// Failures are not cached.
func (c *PlanCache) Generate(pipeline *gen.Pipeline, stmt *explain.StatementContext) (*gen.SqlGenResult, error) {
	rule, err := pipeline.Rule()
	if err != nil {
		return nil, err
	}
	fingerprint := Fingerprint(stmt)
	if result, ok := c.Get(fingerprint, rule.Version); ok {
		c.requests.WithLabelValues("hit").Inc()
		return result, nil
	}
	c.requests.WithLabelValues("miss").Inc()

	key := Key(fingerprint, rule.Version)
	v, err, shared := c.group.Do(key, func() (interface{}, error) {
		result, err := pipeline.GenerateWith(rule, stmt)
		if err != nil {
			return nil, err
		}
		c.cache.SetDefault(key, result)
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Debugf("plan %s was generated by a concurrent caller", key)
	}
	return v.(*gen.SqlGenResult), nil
}

func (c *PlanCache) Count() int {
	return c.cache.ItemCount()
}

// Flush drops every plan, e.g. after the metadata changed.
func (c *PlanCache) Flush() {
	c.cache.Flush()
}
