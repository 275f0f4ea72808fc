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
	stderrors "errors"
	"fmt"

	"github.com/pingcap/errors"
)

// ConfigurationError is raised while a rule is loaded, never at statement time.
type ConfigurationError struct {
	msg   string
	cause error
}

// RoutingError means a statement can not be routed with the current rule.
type RoutingError struct {
	msg   string
	cause error
}

// UnsupportedStatementError means a token generator met a construct it can not rewrite.
type UnsupportedStatementError struct {
	msg   string
	cause error
}

// RenderError means a token can not be rendered for a route unit.
type RenderError struct {
	msg   string
	cause error
}

func NewConfigurationError(format string, args ...interface{}) error {
	return &ConfigurationError{msg: fmt.Sprintf(format, args...)}
}

func WrapConfigurationError(cause error, format string, args ...interface{}) error {
	return &ConfigurationError{msg: fmt.Sprintf(format, args...), cause: errors.WithStack(cause)}
}

func NewRoutingError(format string, args ...interface{}) error {
	return &RoutingError{msg: fmt.Sprintf(format, args...)}
}

// WrapRoutingError keeps an existing RoutingError as it is.
func WrapRoutingError(cause error, format string, args ...interface{}) error {
	if IsRoutingError(cause) {
		return cause
	}
	return &RoutingError{msg: fmt.Sprintf(format, args...), cause: errors.WithStack(cause)}
}

func NewUnsupportedStatementError(format string, args ...interface{}) error {
	return &UnsupportedStatementError{msg: fmt.Sprintf(format, args...)}
}

func NewRenderError(format string, args ...interface{}) error {
	return &RenderError{msg: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string {
	return formatError("configuration error", e.msg, e.cause)
}

func (e *ConfigurationError) Unwrap() error {
	return e.cause
}

func (e *RoutingError) Error() string {
	return formatError("routing error", e.msg, e.cause)
}

func (e *RoutingError) Unwrap() error {
	return e.cause
}

func (e *UnsupportedStatementError) Error() string {
	return formatError("unsupported statement", e.msg, e.cause)
}

func (e *UnsupportedStatementError) Unwrap() error {
	return e.cause
}

func (e *RenderError) Error() string {
	return formatError("render error", e.msg, e.cause)
}

func (e *RenderError) Unwrap() error {
	return e.cause
}

func formatError(kind string, msg string, cause error) string {
	if cause == nil {
		return kind + ": " + msg
	}
	return kind + ": " + msg + ": " + cause.Error()
}

func IsConfigurationError(err error) bool {
	var e *ConfigurationError
	return stderrors.As(err, &e)
}

func IsRoutingError(err error) bool {
	var e *RoutingError
	return stderrors.As(err, &e)
}

func IsUnsupportedStatementError(err error) bool {
	var e *UnsupportedStatementError
	return stderrors.As(err, &e)
}

func IsRenderError(err error) bool {
	var e *RenderError
	return stderrors.As(err, &e)
}

// ErrorKind returns a short label of the error taxonomy, "internal" for anything else.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsConfigurationError(err):
		return "configuration"
	case IsRoutingError(err):
		return "routing"
	case IsUnsupportedStatementError(err):
		return "unsupported"
	case IsRenderError(err):
		return "render"
	}
	return "internal"
}
