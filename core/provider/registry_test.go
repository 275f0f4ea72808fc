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

package provider

import (
	"errors"
	"testing"

	"github.com/endink/sharding-rewrite/core"
	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Register(ShardingAlgorithm, "mod", func(props core.Properties) (interface{}, error) {
		v, _ := props.GetString("sharding-count")
		return v, nil
	}))
	assert.NotNil(t, r.Register(ShardingAlgorithm, "MOD", func(props core.Properties) (interface{}, error) {
		return nil, nil
	}), "names are case insensitive")
	assert.NotNil(t, r.Register(ShardingAlgorithm, " ", nil))

	v, err := r.Create(ShardingAlgorithm, "Mod", core.NewPropertiesFromMap(map[string]string{"sharding-count": "4"}))
	assert.Nil(t, err)
	assert.Equal(t, "4", v)

	assert.Equal(t, []string{"MOD"}, r.Names(ShardingAlgorithm))
}

func TestRegistryCreateErrors(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Register(ShardingAlgorithm, "broken", func(props core.Properties) (interface{}, error) {
		return nil, errors.New("missing property")
	}))

	_, err := r.Create(ShardingAlgorithm, "unknown", nil)
	assert.True(t, core.IsConfigurationError(err))

	_, err = r.Create(ShardingAlgorithm, "broken", nil)
	assert.True(t, core.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "missing property")
}
