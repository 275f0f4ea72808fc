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

package comparison

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Normalize folds every integer kind into int64 (uint64 above MaxInt64 stays uint64), floats into float64 and
// []byte into string.
func Normalize(value interface{}) interface{} {
	switch v := value.(type) {
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case uint:
		return normalizeUint(uint64(v))
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return normalizeUint(v)
	case float32:
		return float64(v)
	case []byte:
		return string(v)
	}
	return value
}

func normalizeUint(v uint64) interface{} {
	if v <= math.MaxInt64 {
		return int64(v)
	}
	return v
}

func IsCompareSupported(value interface{}) bool {
	switch Normalize(value).(type) {
	case int64, uint64, float64, string:
		return true
	}
	return false
}

// Compare returns -1, 0, 1. Numbers of different kinds are compared by value, a numeric string is compared as a
// number against a number.
func Compare(a, b interface{}) (int, error) {
	na, nb := Normalize(a), Normalize(b)
	if sa, ok := na.(string); ok {
		if sb, ok := nb.(string); ok {
			return strings.Compare(sa, sb), nil
		}
		if p, ok := parseNumber(sa); ok {
			na = p
		}
	} else if sb, ok := nb.(string); ok {
		if p, ok := parseNumber(sb); ok {
			nb = p
		}
	}

	switch x := na.(type) {
	case int64:
		switch y := nb.(type) {
		case int64:
			return CompareInt64(x, y), nil
		case uint64:
			return -1, nil
		case float64:
			return CompareFloat64(float64(x), y), nil
		}
	case uint64:
		switch y := nb.(type) {
		case int64:
			return 1, nil
		case uint64:
			return CompareUInt64(x, y), nil
		case float64:
			return CompareFloat64(float64(x), y), nil
		}
	case float64:
		switch y := nb.(type) {
		case int64:
			return CompareFloat64(x, float64(y)), nil
		case uint64:
			return CompareFloat64(x, float64(y)), nil
		case float64:
			return CompareFloat64(x, y), nil
		}
	}
	return 0, fmt.Errorf("values have different types cannot be compared, a: %#v, b: %#v", a, b)
}

func Equals(a, b interface{}) bool {
	r, err := Compare(a, b)
	return err == nil && r == 0
}

func Min(a, b interface{}) (interface{}, error) {
	r, err := Compare(a, b)
	if err != nil {
		return nil, err
	}
	if r <= 0 {
		return a, nil
	}
	return b, nil
}

func Max(a, b interface{}) (interface{}, error) {
	r, err := Compare(a, b)
	if err != nil {
		return nil, err
	}
	if r >= 0 {
		return a, nil
	}
	return b, nil
}

// ToInt64 converts integer values (or numeric strings) to int64.
func ToInt64(value interface{}) (int64, bool) {
	switch v := Normalize(value).(type) {
	case int64:
		return v, true
	case float64:
		if v == math.Trunc(v) && v >= math.MinInt64 && v <= math.MaxInt64 {
			return int64(v), true
		}
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}

func parseNumber(s string) (interface{}, bool) {
	t := strings.TrimSpace(s)
	if i, err := strconv.ParseInt(t, 10, 64); err == nil {
		return i, true
	}
	if f, err := strconv.ParseFloat(t, 64); err == nil {
		return f, true
	}
	return nil, false
}
