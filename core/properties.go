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

	"go.uber.org/config"
)

// Properties are the key/value settings of an algorithm.
type Properties interface {
	GetValues() map[string]string
	GetString(name string) (string, bool)
	PopulateValue(instance interface{}) error
}

var EmptyProperties Properties = &properties{values: map[string]string{}}

func NewProperties(value config.Value) (Properties, error) {
	values := make(map[string]string)
	if value.HasValue() {
		if err := value.Populate(&values); err != nil {
			return nil, err
		}
	}
	return &properties{
		values:   values,
		rawValue: &value,
	}, nil
}

func NewPropertiesFromMap(values map[string]string) Properties {
	v := make(map[string]string, len(values))
	for key, value := range values {
		v[key] = value
	}
	return &properties{values: v}
}

type properties struct {
	values   map[string]string
	rawValue *config.Value
}

func (props *properties) GetValues() map[string]string {
	return props.values
}

func (props *properties) GetString(name string) (string, bool) {
	v, ok := props.values[name]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (props *properties) PopulateValue(instance interface{}) error {
	if props.rawValue != nil {
		return props.rawValue.Populate(instance)
	}
	provider, err := config.NewYAML(config.Static(props.values), config.Permissive())
	if err != nil {
		return err
	}
	return provider.Get(config.Root).Populate(instance)
}
