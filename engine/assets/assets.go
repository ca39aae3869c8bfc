package assets

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/archview/engine/core"
)

// DirectorySource serves the files of an extracted archive directory. Lookups
// are case insensitive; the index is kept current by an fsnotify watcher when
// watching is enabled.
type DirectorySource struct {
	root string
	// normalized relative path -> path on disk
	files map[string]string

	mutex sync.RWMutex

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
}

func NewDirectorySource(root string, watch bool) (*DirectorySource, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New("asset root is not a directory: " + root)
	}

	ds := &DirectorySource{
		root:  root,
		files: make(map[string]string),
	}

	if watch {
		fsWatch, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, err
		}
		ds.fsnotify = fsWatch
		ds.done = make(chan struct{})
		ds.stopped = make(chan struct{})
	}

	if err := ds.watchRecursive(root); err != nil {
		if ds.fsnotify != nil {
			ds.fsnotify.Close()
		}
		return nil, err
	}
	if ds.fsnotify != nil {
		go ds.start()
	}
	core.LogInfo("indexed %d files under '%s'", ds.Len(), root)
	return ds, nil
}

func (ds *DirectorySource) TryExtract(path string) ([]byte, bool) {
	ds.mutex.RLock()
	full, ok := ds.files[NormalizePath(path)]
	ds.mutex.RUnlock()
	if !ok {
		return nil, false
	}
	data, err := os.ReadFile(full)
	if err != nil {
		core.LogWarn("could not read '%s': %s", full, err.Error())
		return nil, false
	}
	return data, true
}

// Len is the number of indexed files.
func (ds *DirectorySource) Len() int {
	ds.mutex.RLock()
	defer ds.mutex.RUnlock()
	return len(ds.files)
}

// Close stops watching. The index stays usable.
func (ds *DirectorySource) Close() error {
	if ds.fsnotify == nil || ds.isClosed {
		return nil
	}
	ds.isClosed = true
	close(ds.done)
	<-ds.stopped
	return nil
}

func (ds *DirectorySource) start() {
	defer close(ds.stopped)
	for {
		select {
		case e, ok := <-ds.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := ds.watchRecursive(e.Name); err != nil {
						core.LogError(err.Error())
					}
				}
				continue
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				ds.addFile(e.Name)
			}
			// Can't stat a deleted path, drop it from the index and the watch list
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				ds.removeFile(e.Name)
				ds.fsnotify.Remove(e.Name)
			}

		case err, ok := <-ds.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())

		case <-ds.done:
			ds.fsnotify.Close()
			return
		}
	}
}

// watchRecursive indexes every file under path and, when watching, adds each
// directory to the watch list.
func (ds *DirectorySource) watchRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if ds.fsnotify != nil {
				return ds.fsnotify.Add(walkPath)
			}
			return nil
		}
		ds.addFile(walkPath)
		return nil
	})
}

func (ds *DirectorySource) key(fullPath string) (string, bool) {
	rel, err := filepath.Rel(ds.root, fullPath)
	if err != nil {
		return "", false
	}
	return NormalizePath(filepath.ToSlash(rel)), true
}

func (ds *DirectorySource) addFile(fullPath string) {
	key, ok := ds.key(fullPath)
	if !ok {
		return
	}
	ds.mutex.Lock()
	defer ds.mutex.Unlock()
	ds.files[key] = fullPath
}

func (ds *DirectorySource) removeFile(fullPath string) {
	key, ok := ds.key(fullPath)
	if !ok {
		return
	}
	ds.mutex.Lock()
	defer ds.mutex.Unlock()
	delete(ds.files, key)
}
