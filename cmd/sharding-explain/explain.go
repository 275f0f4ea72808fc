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

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/endink/sharding-rewrite/config"
	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/driver/algorithm"
	"github.com/endink/sharding-rewrite/explain"
	"github.com/endink/sharding-rewrite/gen"
	"github.com/endink/sharding-rewrite/logging"
	"github.com/endink/sharding-rewrite/rewriting"
	"github.com/endink/sharding-rewrite/routing"
	"github.com/endink/sharding-rewrite/telemetry"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pingcap/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

type options struct {
	ruleFile  string
	logLevel  string
	logFormat string
	// explain only
	statementFile string
	format        string
	tokens        bool
	metrics       bool
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "sharding-explain",
		Short: "Route and rewrite a bound statement against a sharding rule",
		Long: `Reads a sharding rule (YAML) and a bound statement context (JSON), then prints
the route units and the sql rewritten for each of them.

The rule file defaults to sharding.yaml in the working directory.`,
		Example: `  # explain a statement read from a file
  sharding-explain --rule sharding.yaml --statement stmt.json

  # read the statement from stdin and print json
  cat stmt.json | sharding-explain --statement - --format json

  # show the generated tokens too
  sharding-explain -s stmt.json --tokens`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return configureLogging(opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ruleFile, "rule", "r", "", "sharding rule file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "console", "log format: console, json, colorized")
	cmd.Flags().StringVarP(&opts.statementFile, "statement", "s", "-", "statement context json file, '-' reads stdin")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "table", "output format: table, json")
	cmd.Flags().BoolVarP(&opts.tokens, "tokens", "t", false, "print the generated sql tokens")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "print the collected metrics")

	cmd.AddCommand(newRulesCommand(opts))
	return cmd
}

func newRulesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the tables of the sharding rule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rule, err := loadRule(opts.ruleFile)
			if err != nil {
				return err
			}
			renderRule(cmd.OutOrStdout(), rule)
			return nil
		},
	}
}

func configureLogging(opts *options) error {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(opts.logLevel)); err != nil {
		return errors.Annotatef(err, "bad log level '%s'", opts.logLevel)
	}
	logging.Configure(logging.ParseLogFormat(opts.logFormat), zapcore.AddSync(os.Stderr))
	logging.SetLevel("", level)
	return nil
}

func loadRule(file string) (*core.ShardingRule, error) {
	if file == "" {
		found, ok := config.FindConfigFile()
		if !ok {
			return nil, core.NewConfigurationError("no rule file is given and none is found in: %s",
				strings.Join(config.DefaultConfigFileLocations(), ", "))
		}
		file = found
	}
	return config.NewLoader(algorithm.NewRegistry()).LoadFile(file, 1)
}

func readStatement(cmd *cobra.Command, file string) (*explain.StatementContext, error) {
	if file == "-" {
		return explain.ReadStatementContext(cmd.InOrStdin())
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, errors.Annotatef(err, "open statement file '%s' fault", file)
	}
	defer f.Close()
	return explain.ReadStatementContext(f)
}

func runExplain(cmd *cobra.Command, opts *options) error {
	rule, err := loadRule(opts.ruleFile)
	if err != nil {
		return err
	}
	stmt, err := readStatement(cmd, opts.statementFile)
	if err != nil {
		return err
	}
	result, err := gen.NewPipeline(gen.StaticRule(rule)).Generate(stmt)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch opts.format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return errors.Trace(err)
		}
	case "table", "":
		renderResult(out, stmt, result)
		if opts.tokens {
			renderTokens(out, stmt, result.Tokens)
		}
	default:
		return errors.Errorf("unknown output format '%s'", opts.format)
	}
	if opts.metrics {
		return renderMetrics(out)
	}
	return nil
}

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	return t
}

func renderResult(w io.Writer, stmt *explain.StatementContext, result *gen.SqlGenResult) {
	t := newTable(w, fmt.Sprintf("%s (%s, rule version %d)", stmt.Kind, result.Usage, result.RuleVersion))
	t.AppendHeader(table.Row{"#", "Data Source", "Tables", "SQL", "Parameters"})
	units := result.Route.Units
	for i, c := range result.Commands {
		t.AppendRow(table.Row{i, c.DataSource, unitTables(units[i]), c.SqlCommand, formatVars(c.Vars)})
	}
	t.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d commands", len(result.Commands)), ""})
	t.Render()
}

func unitTables(unit *routing.RouteUnit) string {
	names := make([]string, len(unit.TableMappers))
	for i, m := range unit.TableMappers {
		names[i] = m.String()
	}
	return strings.Join(names, ", ")
}

func formatVars(vars []interface{}) string {
	texts := make([]string, len(vars))
	for i, v := range vars {
		texts[i] = fmt.Sprintf("%v", v)
	}
	return strings.Join(texts, ", ")
}

func renderTokens(w io.Writer, stmt *explain.StatementContext, tokens []*rewriting.SQLToken) {
	t := newTable(w, "Tokens")
	t.AppendHeader(table.Row{"Kind", "Span", "Original"})
	for _, token := range tokens {
		t.AppendRow(table.Row{token.Kind, token.Segment, stmt.Text(token.Segment)})
	}
	t.Render()
}

func renderRule(w io.Writer, rule *core.ShardingRule) {
	t := newTable(w, fmt.Sprintf("%s (default data source %s)", rule.Schema, rule.DefaultDataSource))
	t.AppendHeader(table.Row{"Logic Table", "Data Nodes", "Sharding Columns", "Binding", "Broadcast"})
	for _, st := range rule.GetShardingTables() {
		group, _ := rule.FindBindingGroup(st.LogicTable)
		t.AppendRow(table.Row{
			st.LogicTable,
			len(st.ActualDataNodes),
			strings.Join(st.GetShardingColumns(), ", "),
			strings.Join(group, ", "),
			"",
		})
	}
	for _, name := range rule.GetBroadcastTables() {
		t.AppendRow(table.Row{name, len(rule.DataSources), "", "", "yes"})
	}
	t.Render()
}

func renderMetrics(w io.Writer) error {
	families, err := telemetry.Gather()
	if err != nil {
		return errors.Trace(err)
	}
	t := newTable(w, "Metrics")
	t.AppendHeader(table.Row{"Name", "Labels", "Value", "Count"})
	for _, f := range families {
		if !strings.HasPrefix(f.Name, "sharding_") {
			continue
		}
		for _, s := range f.Samples {
			labels := make([]string, 0, len(s.Labels))
			for k, v := range s.Labels {
				labels = append(labels, k+"="+v)
			}
			sort.Strings(labels)
			t.AppendRow(table.Row{f.Name, strings.Join(labels, ","), s.Value, s.Count})
		}
	}
	t.Render()
	return nil
}
