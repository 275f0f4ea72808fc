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

// NamedMeter creates collectors under one namespace, a collector is created once per name.
type NamedMeter struct {
	namespace     string
	registerer    prometheus.Registerer
	recorderMutex sync.Mutex
	recorders     map[string]interface{}
}

func NewNamedMeter(registerer prometheus.Registerer, namespace string) *NamedMeter {
	return &NamedMeter{
		namespace:  namespace,
		registerer: registerer,
		recorders:  make(map[string]interface{}),
	}
}

func (m *NamedMeter) Namespace() string {
	return m.namespace
}

func (m *NamedMeter) getOrPutRecorder(name string, factory func() interface{}) interface{} {
	m.recorderMutex.Lock()
	defer m.recorderMutex.Unlock()
	r, ok := m.recorders[name]
	if !ok {
		r = factory()
		m.recorders[name] = r
	}
	return r
}

// register returns the collector already registered under the same descriptor, if any.
func (m *NamedMeter) register(c prometheus.Collector) prometheus.Collector {
	if err := m.registerer.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector
		}
		panic(err)
	}
	return c
}

func (m *NamedMeter) fullName(name string) string {
	if m.namespace == "" {
		return BuildMetricName(name)
	}
	return BuildMetricName(m.namespace, name)
}

func (m *NamedMeter) NewInt64Counter(name, desc string, labels ...string) *prometheus.CounterVec {
	fac := func() interface{} {
		c := prometheus.NewCounterVec(prometheus.CounterOpts{Name: m.fullName(name), Help: desc}, labels)
		return m.register(c)
	}
	r := m.getOrPutRecorder(name, fac)
	return r.(*prometheus.CounterVec)
}

func (m *NamedMeter) NewInt64ValueRecorder(name, desc string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	fac := func() interface{} {
		h := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: m.fullName(name), Help: desc, Buckets: buckets}, labels)
		return m.register(h)
	}
	r := m.getOrPutRecorder(name, fac)
	return r.(*prometheus.HistogramVec)
}

// NewInt64ValueObserver registers a gauge read from the callback at collection time.
func (m *NamedMeter) NewInt64ValueObserver(name, desc string, callback func() int64) {
	m.getOrPutRecorder(name, func() interface{} {
		g := prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: m.fullName(name), Help: desc}, func() float64 {
			return float64(callback())
		})
		return m.register(g)
	})
}

func (m *NamedMeter) NewDurationValueRecorder(name, desc string, labels ...string) DurationValueRecorder {
	fac := func() interface{} {
		h := prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    m.fullName(name),
			Help:    desc,
			Buckets: DurationBuckets,
		}, labels)
		return NewDurationValueRecorder(m.register(h).(*prometheus.HistogramVec))
	}
	r := m.getOrPutRecorder(name, fac)
	return r.(DurationValueRecorder)
}

func (m *NamedMeter) NewDurationCounter(name, desc string, labels ...string) DurationCounter {
	fac := func() interface{} {
		c := prometheus.NewCounterVec(prometheus.CounterOpts{Name: m.fullName(name), Help: desc}, labels)
		return NewDurationCounter(m.register(c).(*prometheus.CounterVec))
	}
	r := m.getOrPutRecorder(name, fac)
	return r.(DurationCounter)
}

func (m *NamedMeter) NewMultiDurationValueRecorder(name, desc string, labels ...string) *MultiDurationValueRecorder {
	fac := func() interface{} {
		return NewMultiDurationValueRecorder(m, name, desc, labels...)
	}
	r := m.getOrPutRecorder(name, fac)
	return r.(*MultiDurationValueRecorder)
}
