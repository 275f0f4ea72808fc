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

type StatementKind string

const (
	StatementSelect        StatementKind = "SELECT"
	StatementInsert        StatementKind = "INSERT"
	StatementUpdate        StatementKind = "UPDATE"
	StatementDelete        StatementKind = "DELETE"
	StatementCreateTable   StatementKind = "CREATE_TABLE"
	StatementAlterTable    StatementKind = "ALTER_TABLE"
	StatementDropTable     StatementKind = "DROP_TABLE"
	StatementTruncateTable StatementKind = "TRUNCATE_TABLE"
	StatementCreateIndex   StatementKind = "CREATE_INDEX"
	StatementAlterIndex    StatementKind = "ALTER_INDEX"
	StatementDropIndex     StatementKind = "DROP_INDEX"
	StatementDeclareCursor StatementKind = "DECLARE_CURSOR"
	StatementFetch         StatementKind = "FETCH"
	StatementMove          StatementKind = "MOVE"
	StatementCloseCursor   StatementKind = "CLOSE_CURSOR"
)

func (k StatementKind) IsDML() bool {
	switch k {
	case StatementSelect, StatementInsert, StatementUpdate, StatementDelete:
		return true
	}
	return false
}

func (k StatementKind) IsDDL() bool {
	switch k {
	case StatementCreateTable, StatementAlterTable, StatementDropTable, StatementTruncateTable,
		StatementCreateIndex, StatementAlterIndex, StatementDropIndex:
		return true
	}
	return false
}

func (k StatementKind) IsIndexDDL() bool {
	return k == StatementCreateIndex || k == StatementAlterIndex || k == StatementDropIndex
}

// IsCursorHeld reports statements which operate on a cursor declared before.
func (k StatementKind) IsCursorHeld() bool {
	return k == StatementFetch || k == StatementMove || k == StatementCloseCursor
}

// IsQuery reports statements that read rows, DECLARE CURSOR carries a query too.
func (k StatementKind) IsQuery() bool {
	return k == StatementSelect || k == StatementDeclareCursor
}

func (k StatementKind) IsValid() bool {
	return k.IsDML() || k.IsDDL() || k.IsCursorHeld() || k == StatementDeclareCursor
}
