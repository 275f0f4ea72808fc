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

package rewriting

import (
	"github.com/endink/sharding-rewrite/routing"
)

// firstShardingTable returns the first referenced logic table that is a sharding table.
func firstShardingTable(ctx *GenerateContext) (string, bool) {
	for _, name := range ctx.Statement.TableNames() {
		if ctx.Rule.IsShardingTable(name) {
			return name, true
		}
	}
	return "", false
}

type constraintGenerator struct{}

func (g *constraintGenerator) Name() string {
	return TokenConstraint.String()
}

func (g *constraintGenerator) Applies(ctx *GenerateContext) bool {
	if len(ctx.Statement.Constraints) == 0 {
		return false
	}
	_, ok := firstShardingTable(ctx)
	return ok
}

func (g *constraintGenerator) Generate(ctx *GenerateContext) ([]*SQLToken, error) {
	table, _ := firstShardingTable(ctx)
	tokens := make([]*SQLToken, 0, len(ctx.Statement.Constraints))
	for _, c := range ctx.Statement.Constraints {
		tokens = append(tokens, newToken(c.Segment, &ConstraintPayload{Name: c.Name, LogicTable: table}))
	}
	return tokens, nil
}

type cursorGenerator struct{}

func (g *cursorGenerator) Name() string {
	return TokenCursor.String()
}

func (g *cursorGenerator) Applies(ctx *GenerateContext) bool {
	if ctx.Statement.Cursor == nil {
		return false
	}
	_, ok := firstShardingTable(ctx)
	return ok
}

func (g *cursorGenerator) Generate(ctx *GenerateContext) ([]*SQLToken, error) {
	c := ctx.Statement.Cursor
	return []*SQLToken{newToken(c.Segment, &CursorPayload{Name: c.Name})}, nil
}

type indexGenerator struct{}

func (g *indexGenerator) Name() string {
	return TokenIndex.String()
}

func (g *indexGenerator) Applies(ctx *GenerateContext) bool {
	return len(ctx.Statement.Indexes) > 0
}

// Generate emits a token for every index whose table is a sharding table, the schema is resolved the same way routing does.
func (g *indexGenerator) Generate(ctx *GenerateContext) ([]*SQLToken, error) {
	var tokens []*SQLToken
	for _, index := range ctx.Statement.Indexes {
		schema, table, ok := routing.ResolveIndexTable(ctx.Statement, index, ctx.Metadata)
		if !ok || !ctx.Rule.IsShardingTable(table) {
			continue
		}
		tokens = append(tokens, newToken(index.Segment, &IndexPayload{Name: index.Name, Schema: schema, LogicTable: table}))
	}
	return tokens, nil
}

type tableGenerator struct{}

func (g *tableGenerator) Name() string {
	return TokenTable.String()
}

func (g *tableGenerator) Applies(ctx *GenerateContext) bool {
	if ctx.Statement.IsCursorHeld() || len(ctx.Statement.Tables) == 0 {
		return false
	}
	if ctx.Route.ContainsTableSharding() {
		return true
	}
	for _, t := range ctx.Statement.Tables {
		if ctx.Rule.IsBindingTable(t.LogicName()) {
			return true
		}
	}
	return false
}

func (g *tableGenerator) Generate(ctx *GenerateContext) ([]*SQLToken, error) {
	var tokens []*SQLToken
	for _, t := range ctx.Statement.Tables {
		if !ctx.Rule.IsShardingTable(t.LogicName()) {
			continue
		}
		tokens = append(tokens, newToken(t.Segment, &TablePayload{Name: t.Name, LogicTable: t.LogicName()}))
	}
	return tokens, nil
}
