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

package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/logging"
)

var logger = logging.GetLogger("config")

// DefaultConfigFileLocations returns the rule file candidates, the working directory comes first.
func DefaultConfigFileLocations() []string {
	var files []string
	if dir, err := os.Getwd(); err == nil {
		files = append(files, filepath.Join(dir, "sharding.yaml"), filepath.Join(dir, "sharding.yml"))
	} else {
		files = append(files, "sharding.yaml")
	}
	if runtime.GOOS != "windows" {
		files = append(files, "/etc/go-sharding/sharding.yaml", "/etc/go-sharding/sharding.yml")
	}
	return files
}

// FindConfigFile returns the first existing default location.
func FindConfigFile() (string, bool) {
	var sb = core.NewStringBuilder()
	sb.WriteLine("Search configuration locations:")
	for _, f := range DefaultConfigFileLocations() {
		if core.FileExists(f) {
			sb.WriteLine("[Found]:", f)
			logger.Debug(sb.String())
			return f, true
		}
		sb.WriteLine("[Not Found]:", f)
	}
	logger.Debug(sb.String())
	return "", false
}
