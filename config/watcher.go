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
	"context"
	"path/filepath"

	"github.com/endink/sharding-rewrite/core"
	"github.com/fsnotify/fsnotify"
	"github.com/pingcap/errors"
)

// Watch reloads the rule file into the holder whenever it changes, it blocks until the context is done.
// The parent directory is watched so that editors replacing the file are noticed too.
func Watch(ctx context.Context, file string, loader *Loader, holder *RuleHolder) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Trace(err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(file)
	if err != nil {
		return errors.Trace(err)
	}
	if err = watcher.Add(filepath.Dir(abs)); err != nil {
		return errors.Annotatef(err, "watch rule file '%s' fault", abs)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			err := holder.Reload(func(version uint64) (*core.ShardingRule, error) {
				return loader.LoadFile(abs, version)
			})
			if err != nil {
				logger.Warn("reload sharding rule fault, the previous rule is kept.", core.LineSeparator, err)
				continue
			}
			logger.Infof("sharding rule reloaded from %s, version %d", abs, holder.Load().Version)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("rule file watcher error: ", err)
		}
	}
}
