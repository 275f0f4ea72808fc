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
	"time"

	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/explain"
	"github.com/endink/sharding-rewrite/logging"
	"github.com/endink/sharding-rewrite/rewriting"
	"github.com/endink/sharding-rewrite/routing"
	"github.com/endink/sharding-rewrite/telemetry"
	"github.com/prometheus/client_golang/prometheus"
)

var logger = logging.GetLogger("gen")

// RuleSource supplies the current rule snapshot, config.RuleHolder is the usual implementation.
type RuleSource interface {
	Load() *core.ShardingRule
}

type staticRule struct {
	rule *core.ShardingRule
}

func (s staticRule) Load() *core.ShardingRule {
	return s.rule
}

// StaticRule is a RuleSource that never changes.
func StaticRule(rule *core.ShardingRule) RuleSource {
	return staticRule{rule: rule}
}

type pipelineMetrics struct {
	stages *telemetry.MultiDurationValueRecorder
	units  *prometheus.HistogramVec
	errors *prometheus.CounterVec
	busy   telemetry.DurationCounter
}

func newPipelineMetrics(meter *telemetry.NamedMeter) *pipelineMetrics {
	return &pipelineMetrics{
		stages: meter.NewMultiDurationValueRecorder("duration_ms", "latency in milliseconds by statement kind", "kind"),
		units:  meter.NewInt64ValueRecorder("route_units", "route units of a statement", prometheus.ExponentialBuckets(1, 2, 10), "kind"),
		errors: meter.NewInt64Counter("errors_total", "failed statements by error kind", "kind"),
		busy:   meter.NewDurationCounter("generate_ms_total", "time spent generating commands in milliseconds"),
	}
}

// Pipeline routes and rewrites statements against the current rule snapshot, it is safe for concurrent use.
type Pipeline struct {
	rules    RuleSource
	router   *routing.Engine
	rewriter *rewriting.Engine
	metadata *explain.Metadata
	meter    *telemetry.NamedMeter
	metrics  *pipelineMetrics
	failLog  *logging.ThrottledLogger
}

type Option func(p *Pipeline)

func WithRouter(router *routing.Engine) Option {
	return func(p *Pipeline) {
		p.router = router
	}
}

func WithRewriter(rewriter *rewriting.Engine) Option {
	return func(p *Pipeline) {
		p.rewriter = rewriter
	}
}

// WithMetadata sets the schema metadata used to resolve index names.
func WithMetadata(metadata *explain.Metadata) Option {
	return func(p *Pipeline) {
		p.metadata = metadata
	}
}

func WithMeter(meter *telemetry.NamedMeter) Option {
	return func(p *Pipeline) {
		p.meter = meter
	}
}

func NewPipeline(rules RuleSource, options ...Option) *Pipeline {
	p := &Pipeline{rules: rules}
	for _, option := range options {
		option(p)
	}
	if p.router == nil {
		p.router = routing.NewEngine()
	}
	if p.rewriter == nil {
		p.rewriter = rewriting.NewEngine()
	}
	if p.meter == nil {
		p.meter = telemetry.GetMeter("sharding")
	}
	p.metrics = newPipelineMetrics(p.meter)
	p.failLog = logging.NewThrottledLogger("gen", logger, time.Minute)
	return p
}

func (p *Pipeline) Meter() *telemetry.NamedMeter {
	return p.meter
}

// Rule returns the current rule snapshot.
func (p *Pipeline) Rule() (*core.ShardingRule, error) {
	rule := p.rules.Load()
	if rule == nil {
		return nil, core.NewConfigurationError("no sharding rule is loaded")
	}
	return rule, nil
}

// Generate loads the rule snapshot once and generates the commands of the statement with it.
func (p *Pipeline) Generate(stmt *explain.StatementContext) (*SqlGenResult, error) {
	rule, err := p.Rule()
	if err != nil {
		p.fail(stmt, err)
		return nil, err
	}
	return p.GenerateWith(rule, stmt)
}

// GenerateWith generates the commands of the statement with the given rule snapshot.
func (p *Pipeline) GenerateWith(rule *core.ShardingRule, stmt *explain.StatementContext) (*SqlGenResult, error) {
	started := time.Now()
	defer func() {
		p.metrics.busy.Add(time.Since(started))
	}()
	kind := string(stmt.Kind)

	route, err := p.router.Route(stmt, rule, p.metadata)
	if err != nil {
		p.fail(stmt, err)
		return nil, err
	}
	p.metrics.stages.RecordLatency("route", started, kind)
	p.metrics.units.WithLabelValues(kind).Observe(float64(len(route.Units)))

	result := &SqlGenResult{RuleVersion: rule.Version, Route: route}
	if route.Impossible() {
		result.Usage = UsageImpossible
		logger.Debugf("no data node satisfies the conditions of: %s", stmt.SQL)
		return result, nil
	}

	rewriteStarted := time.Now()
	rewritten, err := p.rewriter.Rewrite(&rewriting.GenerateContext{
		Statement: stmt,
		Route:     route,
		Rule:      rule,
		Metadata:  p.metadata,
	})
	if err != nil {
		p.fail(stmt, err)
		return nil, err
	}
	p.metrics.stages.RecordLatency("rewrite", rewriteStarted, kind)

	result.Tokens = rewritten.Tokens
	result.Usage = UsageRaw
	result.Commands = make([]*ScatterCommand, 0, len(rewritten.Units))
	for _, u := range rewritten.Units {
		if u.SQL != stmt.SQL {
			result.Usage = UsageShard
		}
		result.Commands = append(result.Commands, &ScatterCommand{
			DataSource: u.Unit.DataSource(),
			SqlCommand: u.SQL,
			Vars:       u.Parameters,
		})
	}
	logger.Debugf("%s generated %d commands with rule version %d", kind, len(result.Commands), rule.Version)
	return result, nil
}

func (p *Pipeline) fail(stmt *explain.StatementContext, err error) {
	p.metrics.errors.WithLabelValues(core.ErrorKind(err)).Inc()
	p.failLog.Warnf("generate commands fault, sql: %s, error: %v", stmt.SQL, err)
}

// GenerateSql generates the commands of the statement with a fixed rule.
func GenerateSql(rule *core.ShardingRule, stmt *explain.StatementContext) (*SqlGenResult, error) {
	return NewPipeline(StaticRule(rule)).Generate(stmt)
}
