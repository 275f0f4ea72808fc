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

package explain

import (
	"sort"

	"github.com/endink/sharding-rewrite/core"
)

// Metadata is the schema information the parser collaborator knows about, index names are mapped to their tables.
type Metadata struct {
	DefaultSchema string                       `json:"defaultSchema" yaml:"default-schema"`
	Indexes       map[string]map[string]string `json:"indexes" yaml:"indexes"`
}

func NewMetadata(defaultSchema string) *Metadata {
	return &Metadata{
		DefaultSchema: core.TrimAndLower(defaultSchema),
		Indexes:       make(map[string]map[string]string),
	}
}

func (m *Metadata) AddIndex(schema string, index string, table string) {
	s := core.TrimAndLower(schema)
	if m.Indexes == nil {
		m.Indexes = make(map[string]map[string]string)
	}
	if _, ok := m.Indexes[s]; !ok {
		m.Indexes[s] = make(map[string]string)
	}
	m.Indexes[s][core.TrimAndLower(index)] = core.TrimAndLower(table)
}

// FindIndexTable returns the table owning the index in the schema.
func (m *Metadata) FindIndexTable(schema string, index string) (string, bool) {
	if m == nil {
		return "", false
	}
	t, ok := m.Indexes[core.TrimAndLower(schema)][core.TrimAndLower(index)]
	return t, ok
}

// FindIndexSchema searches every schema for the index, the default schema is checked first.
func (m *Metadata) FindIndexSchema(index string) (string, bool) {
	if m == nil {
		return "", false
	}
	if _, ok := m.FindIndexTable(m.DefaultSchema, index); ok {
		return m.DefaultSchema, true
	}
	i := core.TrimAndLower(index)
	schemas := make([]string, 0, len(m.Indexes))
	for schema := range m.Indexes {
		schemas = append(schemas, schema)
	}
	sort.Strings(schemas)
	for _, schema := range schemas {
		if _, ok := m.Indexes[schema][i]; ok {
			return schema, true
		}
	}
	return "", false
}
