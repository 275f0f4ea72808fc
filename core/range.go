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
	"errors"
	"fmt"

	"github.com/endink/sharding-rewrite/core/comparison"
)

// Range is a closed interval, a missing bound is unbounded.
type Range interface {
	fmt.Stringer
	LowerBound() interface{}
	UpperBound() interface{}
	HasLower() bool
	HasUpper() bool
	Contains(value interface{}) (bool, error)
	Intersect(value Range) (Range, error)
	HasIntersection(v Range) (bool, error)
}

var (
	ErrRangeInvalidBound         = errors.New("the lower bound of the range cannot be greater than the upper bound")
	ErrRangeBoundTypeUnsupported = errors.New("boundary value types for the range are not supported")
)

type defaultRange struct {
	lower interface{}
	upper interface{}
	hasL  bool
	hasU  bool
}

var UnboundedRange Range = &defaultRange{}

func NewRange(min interface{}, max interface{}) (Range, error) {
	r := &defaultRange{}

	if min != nil {
		if !comparison.IsCompareSupported(min) {
			return nil, ErrRangeBoundTypeUnsupported
		}
		r.hasL = true
		r.lower = comparison.Normalize(min)
	}

	if max != nil {
		if !comparison.IsCompareSupported(max) {
			return nil, ErrRangeBoundTypeUnsupported
		}
		r.hasU = true
		r.upper = comparison.Normalize(max)
	}

	if r.hasL && r.hasU {
		c, err := comparison.Compare(r.lower, r.upper)
		if err != nil {
			return nil, err
		}
		if c > 0 {
			return nil, ErrRangeInvalidBound
		}
	}
	return r, nil
}

func (d *defaultRange) LowerBound() interface{} {
	return d.lower
}

func (d *defaultRange) UpperBound() interface{} {
	return d.upper
}

func (d *defaultRange) HasLower() bool {
	return d.hasL
}

func (d *defaultRange) HasUpper() bool {
	return d.hasU
}

func (d *defaultRange) Contains(value interface{}) (bool, error) {
	if d.hasL {
		r, err := comparison.Compare(d.lower, value)
		if err != nil {
			return false, err
		}
		if r > 0 {
			return false, nil
		}
	}

	if d.hasU {
		r, err := comparison.Compare(d.upper, value)
		if err != nil {
			return false, err
		}
		if r < 0 {
			return false, nil
		}
	}
	return true, nil
}

func (d *defaultRange) HasIntersection(v Range) (bool, error) {
	if v == nil {
		return false, errors.New("the range used to intersect cannot be nil")
	}
	if d.hasL && v.HasUpper() {
		if r, err := comparison.Compare(d.lower, v.UpperBound()); err != nil || r > 0 {
			return false, err
		}
	}
	if d.hasU && v.HasLower() {
		if r, err := comparison.Compare(d.upper, v.LowerBound()); err != nil || r < 0 {
			return false, err
		}
	}
	return true, nil
}

// Intersect returns nil when two ranges have no intersection.
func (d *defaultRange) Intersect(v Range) (Range, error) {
	if has, err := d.HasIntersection(v); err != nil || !has {
		return nil, err
	}

	newRange := &defaultRange{}
	switch {
	case d.hasL && v.HasLower():
		r, err := comparison.Max(d.lower, v.LowerBound())
		if err != nil {
			return nil, err
		}
		newRange.lower, newRange.hasL = r, true
	case d.hasL:
		newRange.lower, newRange.hasL = d.lower, true
	case v.HasLower():
		newRange.lower, newRange.hasL = v.LowerBound(), true
	}

	switch {
	case d.hasU && v.HasUpper():
		r, err := comparison.Min(d.upper, v.UpperBound())
		if err != nil {
			return nil, err
		}
		newRange.upper, newRange.hasU = r, true
	case d.hasU:
		newRange.upper, newRange.hasU = d.upper, true
	case v.HasUpper():
		newRange.upper, newRange.hasU = v.UpperBound(), true
	}
	return newRange, nil
}

func (d *defaultRange) String() string {
	var min, max string
	if d.hasL {
		min = fmt.Sprint(d.lower)
	}
	if d.hasU {
		max = fmt.Sprint(d.upper)
	}
	return fmt.Sprintf("%s..%s", min, max)
}
