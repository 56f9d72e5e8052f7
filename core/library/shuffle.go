package library

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"sync"

	"motionfm/logger"

	"github.com/fsnotify/fsnotify"
)

// ShuffleSelector plays every file of a folder once, in random order,
// before any file repeats. Files added to or removed from the folder
// while a round is in progress join or leave the current round.
type ShuffleSelector struct {
	lib    *Library
	folder string

	mu  sync.Mutex
	rng *rand.Rand
	bag []string // remaining names of the current round, popped from the end

	watcher *fsnotify.Watcher
	wg      sync.WaitGroup
}

// NewShuffleSelector starts watching lib/folder for changes.
func NewShuffleSelector(lib *Library, folder string, rng *rand.Rand) (*ShuffleSelector, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	dir := lib.Dir(folder)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch folder %s: %w", dir, err)
	}

	s := &ShuffleSelector{
		lib:     lib,
		folder:  folder,
		rng:     rng,
		watcher: watcher,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.watch()
	}()

	return s, nil
}

// Next pops the next track of the round, starting a new round when empty.
func (s *ShuffleSelector) Next() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.bag) == 0 {
		if err := s.refill(); err != nil {
			return "", err
		}
	}

	last := len(s.bag) - 1
	name := s.bag[last]
	s.bag = s.bag[:last]
	return s.lib.Path(s.folder, name), nil
}

// Remaining reports how many tracks are left in the current round.
func (s *ShuffleSelector) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bag)
}

// Close stops the folder watcher.
func (s *ShuffleSelector) Close() error {
	err := s.watcher.Close()
	s.wg.Wait()
	return err
}

// refill must be called with mu held.
func (s *ShuffleSelector) refill() error {
	names, err := s.lib.Tracks(s.folder)
	if err != nil {
		return err
	}
	s.rng.Shuffle(len(names), func(i, j int) {
		names[i], names[j] = names[j], names[i]
	})
	s.bag = names
	logger.Debug("shuffle round started",
		logger.String("folder", s.folder),
		logger.Int("tracks", len(names)))
	return nil
}

func (s *ShuffleSelector) watch() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			s.handle(event)

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("library watcher error", logger.ErrorField(err))
		}
	}
}

// handle applies one file system event to the current round.
func (s *ShuffleSelector) handle(event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if hidden(name) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case event.Op&fsnotify.Create != 0:
		// an empty bag is rebuilt from disk on the next call anyway
		if len(s.bag) == 0 || s.contains(name) {
			return
		}
		if isDir(filepath.Join(s.lib.Dir(s.folder), name)) {
			return
		}
		i := s.rng.Intn(len(s.bag) + 1)
		s.bag = append(s.bag, "")
		copy(s.bag[i+1:], s.bag[i:])
		s.bag[i] = name
		logger.Debug("track joined shuffle round", logger.String("track", name))

	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		for i, n := range s.bag {
			if n == name {
				s.bag = append(s.bag[:i], s.bag[i+1:]...)
				logger.Debug("track left shuffle round", logger.String("track", name))
				return
			}
		}
	}
}

func (s *ShuffleSelector) contains(name string) bool {
	for _, n := range s.bag {
		if n == name {
			return true
		}
	}
	return false
}
