// layouts.go
//
// This source file is part of the FoundationDB open source project
//
// Copyright 2026 Apple Inc. and the FoundationDB project authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//


package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/apple/foundationdb/plotsync/api"
	"github.com/apple/foundationdb/plotsync/internal/store"
	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/api/equality"
)

// layoutFile is the content of the layout overrides file.
type layoutFile struct {
	// Fullscreen sets the display flag of the full-screen plot if present.
	Fullscreen *bool `json:"fullscreen,omitempty"`

	// Plots lists the layouts to apply.
	Plots []layoutEntry `json:"plots,omitempty"`
}

// layoutEntry is a single layout override.
type layoutEntry struct {
	// ID of the plot.
	ID int `json:"id"`

	// Layout replaces the layout of the plot.
	Layout api.Layout `json:"layout"`
}

// layoutWatcher applies the layout overrides file to the store and reapplies
// it whenever the file changes.
type layoutWatcher struct {
	// path of the layout overrides file.
	path string

	// store receives the overrides.
	store *store.Store

	// active is the last applied file content.
	active *layoutFile

	// logger is the logger for this watcher.
	logger logr.Logger
}

// newLayoutWatcher creates a new layoutWatcher.
func newLayoutWatcher(logger logr.Logger, path string, sessionStore *store.Store) *layoutWatcher {
	return &layoutWatcher{
		path:   path,
		store:  sessionStore,
		logger: logger.WithValues("area", "layoutWatcher", "layoutFile", path),
	}
}

// load reads the layout file and applies it if the content changed since the
// last call. Errors are logged and the previous content stays active.
func (watcher *layoutWatcher) load() {
	contentBytes, err := os.ReadFile(watcher.path)
	if err != nil {
		watcher.logger.Error(err, "Error reading layout file")
		return
	}

	content := &layoutFile{}
	err = json.Unmarshal(contentBytes, content)
	if err != nil {
		watcher.logger.Error(err, "Error parsing layout file", "rawLayouts", string(contentBytes))
		return
	}

	// If the content hasn't changed ignore those events to prevent noisy logging.
	if equality.Semantic.DeepEqual(watcher.active, content) {
		return
	}

	watcher.logger.Info("Received new layout file", "plots", len(content.Plots))
	watcher.active = content

	if content.Fullscreen != nil {
		watcher.store.ShowFullscreen(*content.Fullscreen)
	}

	for _, entry := range content.Plots {
		err = watcher.store.UpdateLayout(entry.ID, entry.Layout)
		if errors.Is(err, store.ErrPlotNotFound) {
			watcher.logger.Info("Layout file references unknown plot", "plotID", entry.ID)
		}
	}
}

// watch reloads the layout file on changes until the context is cancelled.
// The parent directory is watched so that atomic replacements are picked up.
func (watcher *layoutWatcher) watch(ctx context.Context) error {
	fileWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() {
		err := fileWatcher.Close()
		if err != nil {
			watcher.logger.Error(err, "could not close watcher")
		}
	}()

	watcher.logger.Info("adding watch for file", "path", filepath.Base(watcher.path))
	err = fileWatcher.Add(filepath.Dir(watcher.path))
	if err != nil {
		return err
	}

	watcher.load()
	target := filepath.Clean(watcher.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fileWatcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != target {
				continue
			}

			watcher.logger.V(1).Info("Detected event on layout file", "event", event.String())
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				watcher.load()
			}
		case err, ok := <-fileWatcher.Errors:
			if !ok {
				return nil
			}
			watcher.logger.Error(err, "Error watching for file system events")
		}
	}
}
