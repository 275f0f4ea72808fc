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
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/endink/sharding-rewrite/core"
)

type Type int

const (
	ShardingAlgorithm Type = iota
)

func (t Type) String() string {
	switch t {
	case ShardingAlgorithm:
		return "sharding algorithm"
	}
	return fmt.Sprintf("provider(%d)", int(t))
}

// Factory creates a provider instance from its properties.
type Factory func(props core.Properties) (interface{}, error)

// Registry maps a provider type name to its factory. A registry is built explicitly at startup and passed to the
// components which need it, there is no process wide instance.
type Registry interface {
	Register(tp Type, name string, factory Factory) error
	TryLoad(tp Type, name string) (Factory, bool)
	Create(tp Type, name string, props core.Properties) (interface{}, error)
	Names(tp Type) []string
}

func NewRegistry() Registry {
	return &registry{factories: make(map[string]Factory)}
}

type registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func getFullName(tp Type, name string) string {
	return fmt.Sprintf("%d:%s", int(tp), strings.ToUpper(strings.TrimSpace(name)))
}

func (r *registry) Register(tp Type, name string, factory Factory) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("provider name can not be empty")
	}
	if factory == nil {
		return errors.New("provider factory can not be null")
	}
	fullName := getFullName(tp, name)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[fullName]; exists {
		return fmt.Errorf("%s '%s' has already been registered", tp, name)
	}
	r.factories[fullName] = factory
	return nil
}

func (r *registry) TryLoad(tp Type, name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[getFullName(tp, name)]
	return f, ok
}

// Create returns a ConfigurationError when the name is unknown or the factory fails.
func (r *registry) Create(tp Type, name string, props core.Properties) (interface{}, error) {
	f, ok := r.TryLoad(tp, name)
	if !ok {
		return nil, core.NewConfigurationError("unknown %s type '%s', supported types: %v", tp, name, r.Names(tp))
	}
	if props == nil {
		props = core.EmptyProperties
	}
	v, err := f(props)
	if err != nil {
		if core.IsConfigurationError(err) {
			return nil, err
		}
		return nil, core.WrapConfigurationError(err, "create %s '%s' fault", tp, name)
	}
	return v, nil
}

func (r *registry) Names(tp Type) []string {
	prefix := fmt.Sprintf("%d:", int(tp))
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for key := range r.factories {
		if strings.HasPrefix(key, prefix) {
			names = append(names, strings.TrimPrefix(key, prefix))
		}
	}
	sort.Strings(names)
	return names
}
