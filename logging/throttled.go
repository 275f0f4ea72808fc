/*
Copyright 2019 The Vitess Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package logging

import (
	"fmt"
	"sync"
	"time"
)

// ThrottledLogger logs at most one message per interval, skipped messages are counted and reported later.
type ThrottledLogger struct {
	name        string
	maxInterval time.Duration
	logger      StandardLogger

	mu           sync.Mutex
	lastLogTime  time.Time
	skippedCount int
}

func NewThrottledLogger(name string, logger StandardLogger, maxInterval time.Duration) *ThrottledLogger {
	var log = logger
	if logger == nil {
		log = GetLogger("throttled")
	}
	return &ThrottledLogger{
		name:        name,
		maxInterval: maxInterval,
		logger:      log,
	}
}

type logFunc func(args ...interface{})

func (tl *ThrottledLogger) log(logFunc logFunc, format string, v ...interface{}) {
	now := time.Now()

	tl.mu.Lock()
	defer tl.mu.Unlock()
	logWaitTime := tl.maxInterval - now.Sub(tl.lastLogTime)
	if logWaitTime < 0 {
		tl.lastLogTime = now
		logFunc(fmt.Sprintf(tl.name+": "+format, v...))
		return
	}
	// the first skipped message schedules the summary
	if tl.skippedCount == 0 {
		time.AfterFunc(logWaitTime, func() {
			tl.mu.Lock()
			defer tl.mu.Unlock()
			logFunc(fmt.Sprintf("%v: skipped %v log messages", tl.name, tl.skippedCount))
			tl.skippedCount = 0
		})
	}
	tl.skippedCount++
}

func (tl *ThrottledLogger) Infof(format string, v ...interface{}) {
	tl.log(tl.logger.Info, format, v...)
}

func (tl *ThrottledLogger) Warnf(format string, v ...interface{}) {
	tl.log(tl.logger.Warn, format, v...)
}

func (tl *ThrottledLogger) Errorf(format string, v ...interface{}) {
	tl.log(tl.logger.Error, format, v...)
}
