// Mgmt
// Copyright (C) James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.
//
// Additional permission under GNU GPL version 3 section 7
//
// If you modify this program, or any covered work, by linking or combining it
// with embedded mcl code and modules (and that the embedded mcl code and
// modules which link with this program, contain a copy of their source code in
// the authoritative form) containing parts covered by the terms of any other
// license, the licensors of this program grant you additional permission to
// convey the resulting work. Furthermore, the licensors of this program grant
// the original author, James Shubin, additional permission to update this
// additional permission if he deems it necessary to achieve the goals of this
// additional permission.

// Package recwatch watches a single program file for changes via fsnotify. The
// watch is placed on the parent directory, so that editors which replace the
// file with a rename are still seen.
package recwatch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/fsnotify/fsnotify"
)

// Event represents a watcher event. These can include errors.
type Event struct {
	Error error
	Body  *fsnotify.Event
}

// RecWatcher watches one file. Run Init() on it, read from Events, and Close it
// when done. Events is closed once Close has been called.
type RecWatcher struct {
	// Path is the file that we're watching.
	Path string

	Debug bool
	Logf  func(format string, v ...interface{})

	abs     string // cleaned absolute path
	watcher *fsnotify.Watcher
	events  chan Event
	wg      *sync.WaitGroup
	exit    chan struct{}
}

// NewRecWatcher creates and initializes a new watcher.
func NewRecWatcher(path string) (*RecWatcher, error) {
	obj := &RecWatcher{
		Path: path,
	}
	return obj, obj.Init()
}

// Init adds the watch and starts the goroutine that filters its events.
func (obj *RecWatcher) Init() error {
	if obj.Logf == nil {
		obj.Logf = func(format string, v ...interface{}) {}
	}
	if obj.Path == "" {
		return fmt.Errorf("recwatch: path is empty")
	}
	abs, err := filepath.Abs(obj.Path)
	if err != nil {
		return err
	}
	obj.abs = filepath.Clean(abs)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	dir := filepath.Dir(obj.abs)
	if obj.Debug {
		obj.Logf("watching: %s", dir)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		switch {
		case err == syscall.ENOSPC:
			return fmt.Errorf("out of inotify watches: %v", err)
		case os.IsPermission(err):
			return fmt.Errorf("permission denied adding a watch: %v", err)
		}
		return err
	}

	obj.watcher = watcher
	obj.events = make(chan Event)
	obj.exit = make(chan struct{})
	obj.wg = &sync.WaitGroup{}
	obj.wg.Add(1)
	go func() {
		defer obj.wg.Done()
		if err := obj.watch(); err != nil {
			obj.send(Event{Error: err})
		}
	}()
	return nil
}

// Close stops the watcher and closes the events channel.
func (obj *RecWatcher) Close() error {
	close(obj.exit)
	obj.wg.Wait() // nothing can send after this
	close(obj.events)
	return obj.watcher.Close()
}

// Events returns a channel of events. These include events for errors.
func (obj *RecWatcher) Events() <-chan Event { return obj.events }

// send delivers an event unless we're exiting. It returns false on exit.
func (obj *RecWatcher) send(event Event) bool {
	select {
	case obj.events <- event:
		return true
	case <-obj.exit:
		return false
	}
}

// watch forwards the events that are about our file.
func (obj *RecWatcher) watch() error {
	for {
		select {
		case event, ok := <-obj.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != obj.abs {
				continue // a neighbour in the same dir
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			if obj.Debug {
				obj.Logf("event(%s): %v", event.Name, event.Op)
			}
			if !obj.send(Event{Body: &event}) {
				return nil
			}

		case err, ok := <-obj.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %v", err)

		case <-obj.exit:
			return nil
		}
	}
}
