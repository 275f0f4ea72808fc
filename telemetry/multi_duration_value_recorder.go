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
	"time"
)

// MultiDurationValueRecorder keeps one duration histogram per name, e.g. per pipeline stage.
// The histogram of name "route" is named "<namespace>_route_<recorder name>".
type MultiDurationValueRecorder struct {
	name           string
	desc           string
	labels         []string
	meter          *NamedMeter
	recorders      map[string]DurationValueRecorder
	recordersMutex sync.Mutex
}

func NewMultiDurationValueRecorder(meter *NamedMeter, name string, desc string, labels ...string) *MultiDurationValueRecorder {
	return &MultiDurationValueRecorder{
		name:      name,
		desc:      desc,
		labels:    labels,
		meter:     meter,
		recorders: make(map[string]DurationValueRecorder),
	}
}

func (d *MultiDurationValueRecorder) getOrPut(name string) DurationValueRecorder {
	d.recordersMutex.Lock()
	defer d.recordersMutex.Unlock()
	v, ok := d.recorders[name]
	if !ok {
		v = d.meter.NewDurationValueRecorder(BuildMetricName(name, d.name), name+" "+d.desc, d.labels...)
		d.recorders[name] = v
	}
	return v
}

func (d *MultiDurationValueRecorder) Record(name string, duration time.Duration, labels ...string) {
	d.getOrPut(BuildMetricName(name)).Record(duration, labels...)
}

func (d *MultiDurationValueRecorder) RecordLatency(name string, startTime time.Time, labels ...string) {
	d.getOrPut(BuildMetricName(name)).RecordLatency(startTime, labels...)
}
