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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/config"
)

type modProps struct {
	Count string `yaml:"sharding-count"`
}

func TestPropertiesFromYaml(t *testing.T) {
	yaml := `
props:
  sharding-count: 4
  algorithm-expression: t_order_${order_id % 4}
`
	provider, err := config.NewYAML(config.Source(strings.NewReader(yaml)), config.Permissive())
	assert.Nil(t, err)

	props, err := NewProperties(provider.Get("props"))
	assert.Nil(t, err)

	v, ok := props.GetString("sharding-count")
	assert.True(t, ok)
	assert.Equal(t, "4", v)

	v, ok = props.GetString("algorithm-expression")
	assert.True(t, ok)
	assert.Equal(t, "t_order_${order_id % 4}", v)

	p := &modProps{}
	assert.Nil(t, props.PopulateValue(p))
	assert.Equal(t, "4", p.Count)
}

func TestPropertiesFromMap(t *testing.T) {
	props := NewPropertiesFromMap(map[string]string{"sharding-count": "8", "blank": " ", "other": "x"})
	p := &modProps{}
	assert.Nil(t, props.PopulateValue(p))
	assert.Equal(t, "8", p.Count)

	_, ok := props.GetString("blank")
	assert.False(t, ok)
	_, ok = EmptyProperties.GetString("any")
	assert.False(t, ok)
}
