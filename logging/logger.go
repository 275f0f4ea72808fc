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

package logging

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var loggerMutex sync.RWMutex // guards access to global logger state

// loggers is the set of loggers in the system
var loggers = make(map[string]*zap.SugaredLogger)

var levels = make(map[string]zap.AtomicLevel)
var defaultLevel = zapcore.InfoLevel
var output = zapcore.AddSync(os.Stdout)

// the core enables every level, the per logger atomic level does the filtering.
var logCore = newCore(ColorizedOutput, output, zapcore.DebugLevel)

var DefaultLogger = GetLogger("sharding")

// StandardLogger is the logging surface used across packages, *zap.SugaredLogger satisfies it.
type StandardLogger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Panic(args ...interface{})
	Fatal(args ...interface{})
	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})
	Panicf(template string, args ...interface{})
	Fatalf(template string, args ...interface{})
}

var _ StandardLogger = (*zap.SugaredLogger)(nil)

func GetLogger(name string) *zap.SugaredLogger {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	log, ok := loggers[name]
	if !ok {
		levels[name] = zap.NewAtomicLevelAt(defaultLevel)
		log = newSugared(name)
		loggers[name] = log
	}

	return log
}

func newSugared(name string) *zap.SugaredLogger {
	return zap.New(logCore, zap.AddCaller()).
		WithOptions(zap.IncreaseLevel(levels[name])).
		Named(name).
		Sugar()
}

// SetLevel changes the level of one named logger, an empty name changes every logger and the default.
func SetLevel(name string, level zapcore.Level) {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	if name == "" {
		defaultLevel = level
		for _, l := range levels {
			l.SetLevel(level)
		}
		return
	}
	if l, ok := levels[name]; ok {
		l.SetLevel(level)
		return
	}
	levels[name] = zap.NewAtomicLevelAt(level)
}

// Configure replaces the output format and writer, loggers created before keep working with the new core.
func Configure(format LogFormat, ws zapcore.WriteSyncer) {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	if ws == nil {
		ws = output
	}
	logCore = newCore(format, ws, zapcore.DebugLevel)
	for name, log := range loggers {
		*log = *newSugared(name)
	}
}
