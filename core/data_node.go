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

package core

import (
	"fmt"
	"strings"
)

// DataNode is a concrete physical table inside a data source.
type DataNode struct {
	DataSource string `json:"dataSource" yaml:"data-source"`
	Table      string `json:"table" yaml:"table"`
}

func NewDataNode(dataSource string, table string) *DataNode {
	return &DataNode{DataSource: dataSource, Table: table}
}

// ParseDataNode parses a "data_source.table" text.
func ParseDataNode(text string) (*DataNode, error) {
	t := strings.TrimSpace(text)
	parts := strings.Split(t, ".")
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return nil, fmt.Errorf("invalid data node format '%s', expected 'data_source.table'", text)
	}
	return NewDataNode(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])), nil
}

func (n *DataNode) String() string {
	return n.DataSource + "." + n.Table
}

func (n *DataNode) Equals(v interface{}) bool {
	other, ok := v.(*DataNode)
	return ok && other != nil && strings.EqualFold(n.DataSource, other.DataSource) && strings.EqualFold(n.Table, other.Table)
}

func (n *DataNode) Key() string {
	return strings.ToLower(n.String())
}
