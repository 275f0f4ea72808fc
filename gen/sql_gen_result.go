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
	"reflect"

	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/core/comparison"
	"github.com/endink/sharding-rewrite/rewriting"
	"github.com/endink/sharding-rewrite/routing"
)

type Usage byte

const (
	// the commands are rewritten for sharding tables
	UsageShard Usage = iota
	// the original sql runs unchanged on every data source of the commands
	UsageRaw
	// the conditions can not be satisfied, e.g. conflicting sharding values
	UsageImpossible
)

func (u Usage) String() string {
	switch u {
	case UsageShard:
		return "Shard"
	case UsageRaw:
		return "Raw"
	case UsageImpossible:
		return "Impossible"
	}
	return "Unknown"
}

// ScatterCommand is the sql and its parameters sent to one data source.
type ScatterCommand struct {
	DataSource string
	SqlCommand string
	Vars       []interface{}
}

func (s *ScatterCommand) Equals(v interface{}) bool {
	if v == nil {
		return false
	}
	switch cmd := v.(type) {
	case *ScatterCommand:
		return s.DataSource == cmd.DataSource && s.SqlCommand == cmd.SqlCommand && varsEquals(s.Vars, cmd.Vars)
	default:
		return false
	}
}

func varsEquals(a []interface{}, b []interface{}) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !comparison.Equals(a[i], b[i]) && !reflect.DeepEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func (s *ScatterCommand) String() string {
	sb := core.NewStringBuilder()
	sb.Write(s.DataSource, ": ", s.SqlCommand)
	vLen := len(s.Vars)
	if vLen > 0 {
		sb.WriteLine()
		sb.Write(vLen, " vars: ")
		for n, v := range s.Vars {
			sb.Write("p", n, "=", v)
			if (n + 1) < vLen {
				sb.Write(", ")
			}
		}
	}
	return sb.String()
}

type SqlGenResult struct {
	Commands []*ScatterCommand
	// Raw means the original sql can be executed on the data sources as it is
	Usage Usage
	// RuleVersion is the version of the rule snapshot the commands were generated with.
	RuleVersion uint64
	Route       *routing.RouteContext
	Tokens      []*rewriting.SQLToken
}

func (r *SqlGenResult) String() string {
	sb := core.NewStringBuilder()
	sb.WriteLine("Usage: ", r.Usage.String())
	for _, command := range r.Commands {
		sb.WriteLine(command.String())
	}
	return sb.String()
}

// DataSources returns the distinct data sources of the commands in order.
func (r *SqlGenResult) DataSources() []string {
	if r.Route == nil {
		return nil
	}
	return r.Route.DataSourceNames()
}
