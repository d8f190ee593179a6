// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// Watch the directories holding files matched by some patterns, and recheck
// any matching file which changes.  Directories created later are watched as
// they appear, provided they lie beneath the fixed prefix of some pattern.
// Changes are batched until no further change has been seen for the debounce
// period.  This returns when the context is cancelled.
func watch(ctx context.Context, patterns []string, jobs int, debounce time.Duration, notify func([]report)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()
	//
	files, err := expandPatterns(patterns)
	if err != nil {
		return err
	}
	//
	for _, dir := range directories(files) {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		//
		log.Debugf("watching %s", dir)
	}
	//
	var (
		pending = make(map[string]bool)
		timer   = time.NewTimer(debounce)
	)
	// Nothing pending yet
	timer.Stop()
	//
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			} else if event.Has(fsnotify.Create) && isDirectory(event.Name) {
				files, err := watchCreated(watcher, patterns, event.Name)
				if err != nil {
					log.Warnf("watching %s: %v", event.Name, err)
				}
				//
				for _, file := range files {
					pending[file] = true
				}
				//
				if len(files) > 0 {
					timer.Reset(debounce)
				}
				//
				continue
			} else if !isChange(event) || !matchesAny(patterns, event.Name) {
				continue
			}
			//
			log.Debugf("%s changed (%s)", event.Name, event.Op)
			pending[filepath.Clean(event.Name)] = true
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			//
			log.Warnf("watch error: %v", err)
		case <-timer.C:
			changed := make([]string, 0, len(pending))
			//
			for file := range pending {
				changed = append(changed, file)
			}
			//
			clear(pending)
			slices.Sort(changed)
			notify(checkFiles(ctx, changed, jobs))
		}
	}
}

// Adds a directory to the set being watched.  This is satisfied by
// fsnotify.Watcher.
type directoryWatcher interface {
	Add(name string) error
}

// Start watching a newly created directory, along with any directories beneath
// it, returning the files already inside which match some pattern.
// Directories outside the fixed prefix of every pattern are ignored.
func watchCreated(watcher directoryWatcher, patterns []string, dir string) ([]string, error) {
	var matched []string
	//
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		} else if !entry.IsDir() {
			if matchesAny(patterns, path) {
				matched = append(matched, filepath.Clean(path))
			}
			//
			return nil
		} else if !beneathAny(patterns, path) {
			return filepath.SkipDir
		}
		//
		log.Debugf("watching %s", path)
		//
		return watcher.Add(path)
	})
	//
	return matched, err
}

// Check whether a directory lies beneath the fixed prefix of any pattern.
func beneathAny(patterns []string, dir string) bool {
	for _, pattern := range patterns {
		base, _ := doublestar.SplitPattern(filepath.ToSlash(filepath.Clean(pattern)))
		//
		if rel, err := filepath.Rel(filepath.FromSlash(base), dir); err == nil && !strings.HasPrefix(rel, "..") {
			return true
		}
	}
	//
	return false
}

func isDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isChange(event fsnotify.Event) bool {
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

// Check whether a given file is matched by any of a set of patterns.
func matchesAny(patterns []string, filename string) bool {
	filename = filepath.Clean(filename)
	//
	for _, pattern := range patterns {
		if ok, err := doublestar.PathMatch(filepath.Clean(pattern), filename); err == nil && ok {
			return true
		}
	}
	//
	return false
}
