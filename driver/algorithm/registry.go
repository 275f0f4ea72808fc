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

package algorithm

import (
	"github.com/endink/sharding-rewrite/core/provider"
)

var builtins = map[string]provider.Factory{
	TypeInline:        NewInline,
	TypeMod:           NewMod,
	TypeHashMod:       NewHashMod,
	TypeVolumeRange:   NewVolumeRange,
	TypeBoundaryRange: NewBoundaryRange,
	TypeComplexInline: NewComplexInline,
	TypeHintInline:    NewHintInline,
	TypeExpression:    NewExpression,
}

// RegisterBuiltins adds the algorithms shipped with this module to the registry.
func RegisterBuiltins(registry provider.Registry) error {
	for name, factory := range builtins {
		if err := registry.Register(provider.ShardingAlgorithm, name, factory); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding the built-in algorithms.
func NewRegistry() provider.Registry {
	r := provider.NewRegistry()
	if err := RegisterBuiltins(r); err != nil {
		panic(err)
	}
	return r
}
