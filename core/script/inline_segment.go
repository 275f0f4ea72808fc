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

package script

import (
	"errors"
	"strings"

	"github.com/endink/sharding-rewrite/core"
)

type inlineSegmentGroup struct {
	segments []*inlineSegment
}

// inlineSegment is either literal text or a script.
type inlineSegment struct {
	literal string
	script  CompiledScript
}

type splitContext struct {
	expression string
	variables  []string
	text       strings.Builder
	segments   []*inlineSegment
	groups     []*inlineSegmentGroup
	dotCount   int
}

func splitSegments(exp string, variables ...string) ([]*inlineSegmentGroup, error) {
	ctx := &splitContext{expression: exp, variables: variables}
	depth := 0
	runes := []rune(exp)

	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if depth > 0 {
			switch c {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					if err := ctx.flushScript(); err != nil {
						return nil, ctx.syntaxError(err.Error(), i)
					}
					continue
				}
			}
			ctx.text.WriteRune(c)
			continue
		}

		switch c {
		case '$':
			if i == len(runes)-1 || runes[i+1] != '{' {
				return nil, ctx.syntaxError("'{' symbol is missing after the symbol '$'", i)
			}
			ctx.flushLiteral()
			depth = 1
			i++
		case ',':
			ctx.flushGroup()
		case '.':
			ctx.dotCount++
			if ctx.dotCount > 1 {
				return nil, ctx.syntaxError("should not appear symbol '.' more than once in one item", i)
			}
			ctx.text.WriteRune(c)
		default:
			ctx.text.WriteRune(c)
		}
	}

	if depth > 0 {
		return nil, ctx.syntaxError("symbol '}' used to end the script are missing", -1)
	}
	ctx.flushGroup()
	return ctx.groups, nil
}

func (ctx *splitContext) syntaxError(message string, index int) error {
	var sb = core.NewStringBuilder()
	sb.WriteLine("inline expression syntax error")
	sb.WriteLine(message)
	sb.WriteFormat("expression: %s", ctx.expression)
	if index >= 0 {
		sb.WriteLine()
		sb.WriteFormat("char index: %d", index)
	}
	return errors.New(sb.String())
}

func (ctx *splitContext) flushLiteral() {
	text := ctx.text.String()
	if len(ctx.segments) == 0 {
		text = strings.TrimLeft(text, " \t\r\n")
	}
	if text != "" {
		ctx.segments = append(ctx.segments, &inlineSegment{literal: text})
	}
	ctx.text.Reset()
}

func (ctx *splitContext) flushScript() error {
	raw := strings.TrimSpace(ctx.text.String())
	ctx.text.Reset()
	if raw == "" {
		return errors.New("script in '${}' can not be empty")
	}
	s, err := CompileScript(raw, ctx.variables...)
	if err != nil {
		return err
	}
	ctx.segments = append(ctx.segments, &inlineSegment{script: s})
	return nil
}

func (ctx *splitContext) flushGroup() {
	text := strings.TrimRight(ctx.text.String(), " \t\r\n")
	ctx.text.Reset()
	ctx.text.WriteString(text)
	ctx.flushLiteral()
	if len(ctx.segments) > 0 {
		ctx.groups = append(ctx.groups, &inlineSegmentGroup{segments: ctx.segments})
	}
	ctx.segments = nil
	ctx.dotCount = 0
}

func (group *inlineSegmentGroup) flat(variables ...*Variable) ([]string, error) {
	current := []string{""}
	for _, s := range group.segments {
		if s.script == nil {
			current = product(current, []string{s.literal})
			continue
		}
		values, err := s.script.Execute(variables...)
		if err != nil {
			return nil, err
		}
		current = product(current, values)
	}
	return current, nil
}
