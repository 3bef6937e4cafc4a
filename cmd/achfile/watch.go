// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/moov-io/achfile/pkg/nacha"

	"github.com/alecthomas/kong"
	"github.com/fsnotify/fsnotify"
	"github.com/go-kit/kit/log"
)

// Editors and uploads often write a file in several steps.
const debounceDelay = 250 * time.Millisecond

type WatchCmd struct {
	Dir string `help:"Directory to watch." arg:"" type:"existingdir"`
}

func (cmd *WatchCmd) Run(ctx *kong.Context, globals *Globals) error {
	logger := globals.logger(ctx.Stdout)

	watcher, err := newWatcher(cmd.Dir)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Log("watch", fmt.Sprintf("watching %s for NACHA files", cmd.Dir))
	runWatcher(runCtx, logger, watcher, func(path string, file *nacha.File, err error) {
		if err != nil {
			logger.Log("file", path, "error", err)
			return
		}
		logger.Log("file", path, "batches", len(file.Batches()), "entries", file.EntryCount(),
			"debits", file.TotalDebit().StringFixed(2), "credits", file.TotalCredit().StringFixed(2))
	})
	return nil
}

func newWatcher(dir string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %v", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %v", dir, err)
	}
	return watcher, nil
}

type watchHandler func(path string, file *nacha.File, err error)

// runWatcher parses each file created or written under the watched directory
// once its events settle. It returns when ctx is done or the watcher closes.
func runWatcher(ctx context.Context, logger log.Logger, watcher *fsnotify.Watcher, handle watchHandler) {
	var mu sync.Mutex
	timers := make(map[string]*time.Timer)
	defer func() {
		mu.Lock()
		for _, t := range timers {
			t.Stop()
		}
		mu.Unlock()
		watcher.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}
			path := event.Name

			mu.Lock()
			if t, exists := timers[path]; exists {
				t.Stop()
			}
			timers[path] = time.AfterFunc(debounceDelay, func() {
				mu.Lock()
				delete(timers, path)
				mu.Unlock()

				file, err := readWatched(path)
				if file == nil && err == nil {
					return
				}
				handle(path, file, err)
			})
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Log("watch", "error", "error", err)
		}
	}
}

// readWatched returns nil for both values when path is not a regular file.
func readWatched(path string) (*nacha.File, error) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, nil
	}
	bs, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return nacha.ReadFile(bytes.NewReader(bs))
}
