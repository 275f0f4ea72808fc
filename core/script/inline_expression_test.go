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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlatNoScript(t *testing.T) {
	list := flatInlineExpression(t, "ds_1,ds_2, ds_3")
	assert.Equal(t, []string{"ds_1", "ds_2", "ds_3"}, list)
}

func TestFlatOneDepth(t *testing.T) {
	list := flatInlineExpression(t, "ds_${range(1,3)}")
	assert.Equal(t, []string{"ds_1", "ds_2", "ds_3"}, list)
}

func TestFlatDotRange(t *testing.T) {
	list := flatInlineExpression(t, "ds_${0..1}.t_order_${0..1}")
	assert.Equal(t, []string{"ds_0.t_order_0", "ds_0.t_order_1", "ds_1.t_order_0", "ds_1.t_order_1"}, list)
}

func TestFlatQuotedArray(t *testing.T) {
	list := flatInlineExpression(t, "ds_0.${['t_order', 't_item']}")
	assert.Equal(t, []string{"ds_0.t_order", "ds_0.t_item"}, list)
}

func TestFlatTwoDepth(t *testing.T) {
	list := flatInlineExpression(t, "ds_${range(1,3)}_t${range(2,3)}")
	assert.Equal(t, 6, len(list))
	assert.Equal(t, "ds_1_t2", list[0])
	assert.Equal(t, "ds_3_t3", list[5])
}

func TestFlatThirdDepth(t *testing.T) {
	list := flatInlineExpression(t, "ds_${range(1,3)}_t${range(2,3)}_b${[5,6,7,8]}")
	assert.Equal(t, 24, len(list))
}

func TestMultiFlatThirdDepth(t *testing.T) {
	expr := "ds_${range(1,3)}_t${range(2,3)}_b${[5,6,7,8]},es_${range(2,4)}_t${range(2,3)}_b${[5,6,7,8]}, ts_${range(3,5)}_t${range(2,3)}_b${[5,6,7,8]}"
	list := flatInlineExpression(t, expr)
	assert.Equal(t, 72, len(list))
}

func TestDuplexMultiFlatThirdDepth(t *testing.T) {
	expr := "ds_${range(1,3)}_t${range(2,3)}_b${[5,6,7,8]}, ds_${range(3,4)}_t${range(2,3)}_b${[5,6,7,8]}"
	list := flatInlineExpression(t, expr)
	assert.Equal(t, 32, len(list))
}

func TestFlatWithVariable(t *testing.T) {
	expr, err := NewInlineExpression("t_order_${order_id % 4}", "order_id")
	assert.Nil(t, err)

	v, err := expr.FlatScalar(NewVariable("order_id", 7))
	assert.Nil(t, err)
	assert.Equal(t, "t_order_3", v)

	v, err = expr.FlatScalar(NewVariable("order_id", int64(8)))
	assert.Nil(t, err)
	assert.Equal(t, "t_order_0", v)
}

func TestFlatConcurrently(t *testing.T) {
	expr, err := NewInlineExpression("ds_${user_id % 2}", "user_id")
	assert.Nil(t, err)

	wg := sync.WaitGroup{}
	results := make([]string, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = expr.FlatScalar(NewVariable("user_id", i))
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		if i%2 == 0 {
			assert.Equal(t, "ds_0", r)
		} else {
			assert.Equal(t, "ds_1", r)
		}
	}
}

func TestInlineSyntaxError(t *testing.T) {
	for _, expr := range []string{"ds_$", "ds_${1", "ds.t.x", "ds_${}", "ds_${unknown}"} {
		_, err := NewInlineExpression(expr)
		assert.NotNil(t, err, "expression should be invalid: %s", expr)
	}
}

func TestFlatScalarRequiresOneValue(t *testing.T) {
	expr, err := NewInlineExpression("ds_${[1,2]}")
	assert.Nil(t, err)
	_, err = expr.FlatScalar()
	assert.NotNil(t, err)
}

func flatInlineExpression(t *testing.T, expression string) []string {
	expr, err := NewInlineExpression(expression)
	assert.Nil(t, err, "create inline expression fault: %s", expression)
	list, err := expr.Flat()
	assert.Nil(t, err, "flat inline expression fault: %s", expression)
	return list
}
