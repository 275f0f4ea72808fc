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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDataNode(t *testing.T) {
	n, err := ParseDataNode(" ds_0.t_order_1 ")
	assert.Nil(t, err)
	assert.Equal(t, "ds_0", n.DataSource)
	assert.Equal(t, "t_order_1", n.Table)
	assert.Equal(t, "ds_0.t_order_1", n.String())
	assert.True(t, n.Equals(NewDataNode("DS_0", "t_order_1")))

	for _, invalid := range []string{"ds_0", "ds.a.b", ".t", "ds."} {
		_, err = ParseDataNode(invalid)
		assert.NotNil(t, err, invalid)
	}
}
