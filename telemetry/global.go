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

package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var registerer prometheus.Registerer = prometheus.DefaultRegisterer
var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
var registererMutex sync.RWMutex

// SetDefaultRegistry replaces the registry used by GetMeter, meters created before keep their registry.
func SetDefaultRegistry(registry *prometheus.Registry) {
	meterMutex.Lock()
	defer meterMutex.Unlock()
	registererMutex.Lock()
	registerer = registry
	gatherer = registry
	registererMutex.Unlock()
	meterMap = make(map[string]*NamedMeter)
}

func DefaultRegisterer() prometheus.Registerer {
	registererMutex.RLock()
	defer registererMutex.RUnlock()
	return registerer
}

// Gather collects every metric of the default registry.
func Gather() ([]*MetricFamily, error) {
	registererMutex.RLock()
	g := gatherer
	registererMutex.RUnlock()
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}
	result := make([]*MetricFamily, 0, len(families))
	for _, f := range families {
		family := &MetricFamily{Name: f.GetName(), Help: f.GetHelp()}
		for _, m := range f.GetMetric() {
			sample := &MetricSample{Labels: make(map[string]string, len(m.GetLabel()))}
			for _, l := range m.GetLabel() {
				sample.Labels[l.GetName()] = l.GetValue()
			}
			switch {
			case m.GetCounter() != nil:
				sample.Value = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				sample.Value = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				sample.Value = m.GetHistogram().GetSampleSum()
				sample.Count = m.GetHistogram().GetSampleCount()
			}
			family.Samples = append(family.Samples, sample)
		}
		result = append(result, family)
	}
	return result, nil
}

// MetricFamily is a flattened view of a gathered metric, histograms report their sum and count.
type MetricFamily struct {
	Name    string
	Help    string
	Samples []*MetricSample
}

type MetricSample struct {
	Labels map[string]string
	Value  float64
	Count  uint64
}
