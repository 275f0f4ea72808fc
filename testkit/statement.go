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

package testkit

import (
	"strconv"
	"strings"
	"testing"
	"unicode"

	"github.com/endink/sharding-rewrite/explain"
	"github.com/stretchr/testify/require"
)

// StatementBuilder builds explain.StatementContext for tests, segments are located by searching the sql text.
// It stands in for the parser, so it understands only the simple predicate shapes tests use.
type StatementBuilder struct {
	t    testing.TB
	stmt *explain.StatementContext
}

func NewStatement(t testing.TB, kind explain.StatementKind, sql string, parameters ...interface{}) *StatementBuilder {
	return &StatementBuilder{
		t: t,
		stmt: &explain.StatementContext{
			Kind:       kind,
			SQL:        sql,
			Parameters: parameters,
			Schema:     "logic_db",
		},
	}
}

func (b *StatementBuilder) SQL() string {
	return b.stmt.SQL
}

// Seg locates the nth occurrence of a fragment, identifiers only match whole words.
func (b *StatementBuilder) Seg(fragment string, nth ...int) explain.Segment {
	b.t.Helper()
	n := 0
	if len(nth) > 0 {
		n = nth[0]
	}
	s, ok := locateWord(b.stmt.SQL, fragment, n)
	require.True(b.t, ok, "fragment '%s' (%d) was not found in: %s", fragment, n, b.stmt.SQL)
	return s
}

// After returns the zero width segment right after the fragment.
func (b *StatementBuilder) After(fragment string, nth ...int) explain.Segment {
	s := b.Seg(fragment, nth...)
	return explain.NewSegment(s.Stop+1, s.Stop)
}

// Table adds a table reference at the nth occurrence of its name.
func (b *StatementBuilder) Table(name string, nth int, alias string) *StatementBuilder {
	b.t.Helper()
	ts := &explain.TableSegment{Segment: b.Seg(name, nth), Name: explain.IdentifierValue{Value: strings.Trim(name, "`\"")}, Alias: alias}
	if strings.HasPrefix(name, "`") {
		ts.Name.Quote = explain.QuoteBackTick
	}
	b.stmt.Tables = append(b.stmt.Tables, ts)
	return b
}

// Tables adds one reference for the first occurrence of every name.
func (b *StatementBuilder) Tables(names ...string) *StatementBuilder {
	for _, n := range names {
		b.Table(n, 0, "")
	}
	return b
}

func (b *StatementBuilder) Where(e *explain.Expr) *StatementBuilder {
	b.stmt.Where = e
	return b
}

func (b *StatementBuilder) Join(e *explain.Expr) *StatementBuilder {
	b.stmt.JoinConditions = append(b.stmt.JoinConditions, e)
	return b
}

func (b *StatementBuilder) Hint(hint *explain.HintContext) *StatementBuilder {
	b.stmt.Hint = hint
	return b
}

func (b *StatementBuilder) Select(sel *explain.SelectContext) *StatementBuilder {
	b.stmt.Select = sel
	return b
}

func (b *StatementBuilder) Modify(fn func(stmt *explain.StatementContext)) *StatementBuilder {
	fn(b.stmt)
	return b
}

// Insert adds the column list and one row per row fragment, values of a row are split on top level commas.
func (b *StatementBuilder) Insert(columns []string, rows ...string) *StatementBuilder {
	b.t.Helper()
	insert := &explain.InsertContext{Columns: columns}
	for i, r := range rows {
		insert.Rows = append(insert.Rows, b.Row(r, countBefore(rows[:i], r)))
	}
	b.stmt.Insert = insert
	return b
}

func countBefore(list []string, value string) int {
	n := 0
	for _, v := range list {
		if v == value {
			n++
		}
	}
	return n
}

// Row parses a parenthesized value row.
func (b *StatementBuilder) Row(fragment string, nth int) *explain.RowSegment {
	b.t.Helper()
	s := b.Seg(fragment, nth)
	row := &explain.RowSegment{Segment: s}
	for _, item := range splitTopLevel(b.stmt.SQL, s.Start+1, s.Stop-1) {
		row.Values = append(row.Values, b.valueAt(item))
	}
	return row
}

// Value parses the literal or placeholder at the nth occurrence of text.
func (b *StatementBuilder) Value(text string, nth ...int) *explain.ValueSegment {
	b.t.Helper()
	v := b.valueAt(b.Seg(text, nth...))
	require.NotNil(b.t, v, "'%s' is not a value", text)
	return v
}

// Column returns the column segment at the nth occurrence of an "owner.name" or "name" reference.
func (b *StatementBuilder) Column(text string, nth ...int) *explain.ColumnSegment {
	return b.columnAt(b.Seg(text, nth...))
}

// Pred parses the predicate at the nth occurrence of the fragment, supported shapes:
// "col = v" (and other comparison operators), "col [NOT] IN (v, ...)", "col [NOT] BETWEEN a AND b",
// "(a, b) IN ((v, v), ...)", anything else becomes an OTHER predicate.
func (b *StatementBuilder) Pred(fragment string, nth ...int) *explain.Expr {
	b.t.Helper()
	s := b.Seg(fragment, nth...)
	sql := []rune(b.stmt.SQL)
	text := string(sql[s.Start : s.Stop+1])

	if strings.HasPrefix(text, "(") {
		if i := strings.Index(text, ") IN ("); i > 0 {
			open := s.Start + runeLen(text[:i]) + len(") IN ")
			list := explain.NewSegment(open, s.Stop)
			var columns []*explain.ColumnSegment
			for _, c := range splitTopLevel(b.stmt.SQL, s.Start+1, s.Start+runeLen(text[:i])-1) {
				columns = append(columns, b.columnAt(c))
			}
			var rows []*explain.RowSegment
			for _, r := range splitTopLevel(b.stmt.SQL, list.Start+1, list.Stop-1) {
				row := &explain.RowSegment{Segment: r}
				for _, item := range splitTopLevel(b.stmt.SQL, r.Start+1, r.Stop-1) {
					row.Values = append(row.Values, b.valueAt(item))
				}
				rows = append(rows, row)
			}
			return explain.RowIn(s, list, columns, rows...)
		}
		return explain.Other(s)
	}

	for _, kw := range []string{" NOT IN (", " IN ("} {
		if i := strings.Index(text, kw); i > 0 {
			column := b.columnAt(trimmed(sql, s.Start, s.Start+runeLen(text[:i])-1))
			open := s.Start + runeLen(text[:i]) + runeLen(kw) - 1
			e := explain.In(s, column)
			e.Not = strings.HasPrefix(kw, " NOT")
			for _, item := range splitTopLevel(b.stmt.SQL, open+1, s.Stop-1) {
				e.Values = append(e.Values, b.valueAt(item))
			}
			return e
		}
	}
	for _, kw := range []string{" NOT BETWEEN ", " BETWEEN "} {
		if i := strings.Index(text, kw); i > 0 {
			column := b.columnAt(trimmed(sql, s.Start, s.Start+runeLen(text[:i])-1))
			rest := text[i+len(kw):]
			j := strings.Index(rest, " AND ")
			require.True(b.t, j > 0, "bad between predicate: %s", text)
			lowStart := s.Start + runeLen(text[:i+len(kw)])
			low := b.valueAt(trimmed(sql, lowStart, lowStart+runeLen(rest[:j])-1))
			highStart := lowStart + runeLen(rest[:j]) + len(" AND ")
			high := b.valueAt(trimmed(sql, highStart, s.Stop))
			e := explain.Between(s, column, low, high)
			e.Not = strings.HasPrefix(kw, " NOT")
			return e
		}
	}
	for _, op := range []string{">=", "<=", "!=", "<>", "=", ">", "<"} {
		if i := strings.Index(text, op); i > 0 {
			column := b.columnAt(trimmed(sql, s.Start, s.Start+runeLen(text[:i])-1))
			valueStart := s.Start + runeLen(text[:i]) + len(op)
			value := b.valueAt(trimmed(sql, valueStart, s.Stop))
			operator := op
			if op == "<>" {
				operator = explain.OpNE
			}
			return explain.Compare(s, column, operator, value)
		}
	}
	return explain.Other(s)
}

func (b *StatementBuilder) And(left *explain.Expr, right *explain.Expr) *explain.Expr {
	return explain.And(explain.NewSegment(left.Start, right.Stop), left, right)
}

func (b *StatementBuilder) Or(left *explain.Expr, right *explain.Expr) *explain.Expr {
	return explain.Or(explain.NewSegment(left.Start, right.Stop), left, right)
}

// Build validates and returns the statement.
func (b *StatementBuilder) Build() *explain.StatementContext {
	b.t.Helper()
	require.NoError(b.t, b.stmt.Validate())
	return b.stmt
}

func (b *StatementBuilder) columnAt(s explain.Segment) *explain.ColumnSegment {
	text := explain.Text(b.stmt.SQL, s)
	c := &explain.ColumnSegment{Segment: s, Name: text}
	if i := strings.LastIndex(text, "."); i > 0 {
		c.Owner = text[:i]
		c.Name = text[i+1:]
	}
	return c
}

// valueAt returns nil when the text is not a value, e.g. a column reference.
func (b *StatementBuilder) valueAt(s explain.Segment) *explain.ValueSegment {
	text := explain.Text(b.stmt.SQL, s)
	switch {
	case text == "?":
		return explain.NewPlaceholder(s, strings.Count(string([]rune(b.stmt.SQL)[:s.Start]), "?"))
	case strings.EqualFold(text, "NULL"):
		return explain.NewLiteral(s, nil)
	case len(text) >= 2 && text[0] == '\'' && text[len(text)-1] == '\'':
		return explain.NewLiteral(s, text[1:len(text)-1])
	}
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return explain.NewLiteral(s, i)
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return explain.NewLiteral(s, f)
	}
	return nil
}

func runeLen(s string) int {
	return len([]rune(s))
}

// trimmed narrows [start, stop] to exclude surrounding spaces.
func trimmed(sql []rune, start int, stop int) explain.Segment {
	for start <= stop && unicode.IsSpace(sql[start]) {
		start++
	}
	for stop >= start && unicode.IsSpace(sql[stop]) {
		stop--
	}
	return explain.NewSegment(start, stop)
}

// splitTopLevel splits [start, stop] on commas outside of parentheses and quotes, items are trimmed.
func splitTopLevel(sql string, start int, stop int) []explain.Segment {
	runes := []rune(sql)
	var result []explain.Segment
	depth := 0
	quoted := false
	itemStart := start
	for i := start; i <= stop+1; i++ {
		if i <= stop {
			switch r := runes[i]; {
			case r == '\'':
				quoted = !quoted
				continue
			case quoted:
				continue
			case r == '(':
				depth++
				continue
			case r == ')':
				depth--
				continue
			case r != ',' || depth > 0:
				continue
			}
		}
		item := trimmed(runes, itemStart, i-1)
		if !item.IsEmpty() {
			result = append(result, item)
		}
		itemStart = i + 1
	}
	return result
}

// locateWord finds the nth occurrence of the fragment, a fragment starting or ending with an identifier character
// must not touch other identifier characters.
func locateWord(sql string, fragment string, nth int) (explain.Segment, bool) {
	runes := []rune(sql)
	target := []rune(fragment)
	if len(target) == 0 {
		return explain.Segment{}, false
	}
	for i := 0; i+len(target) <= len(runes); i++ {
		if string(runes[i:i+len(target)]) != fragment {
			continue
		}
		if isIdent(target[0]) && i > 0 && isIdent(runes[i-1]) {
			continue
		}
		end := i + len(target)
		if isIdent(target[len(target)-1]) && end < len(runes) && isIdent(runes[end]) {
			continue
		}
		if nth == 0 {
			return explain.NewSegment(i, end-1), true
		}
		nth--
	}
	return explain.Segment{}, false
}

func isIdent(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
