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
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DurationBuckets are millisecond buckets from 0.05ms to about 1.6s.
var DurationBuckets = prometheus.ExponentialBuckets(0.05, 2, 16)

// DurationValueRecorder observes durations in milliseconds.
type DurationValueRecorder struct {
	valueRecorder *prometheus.HistogramVec
}

func NewDurationValueRecorder(histogram *prometheus.HistogramVec) DurationValueRecorder {
	return DurationValueRecorder{valueRecorder: histogram}
}

func (d DurationValueRecorder) Record(duration time.Duration, labels ...string) {
	d.valueRecorder.WithLabelValues(labels...).Observe(milliseconds(duration))
}

func (d DurationValueRecorder) RecordLatency(startTime time.Time, labels ...string) {
	d.Record(time.Since(startTime), labels...)
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
