package library

import (
	"fmt"
	"math/rand"

	"motionfm/config"
)

// Selector picks the next track to play.
type Selector interface {
	Next() (string, error)
}

// FolderSelector picks uniformly among the files of one folder.
type FolderSelector struct {
	lib    *Library
	folder string
	rng    *rand.Rand
}

// NewFolderSelector returns a selector bound to lib/folder.
func NewFolderSelector(lib *Library, folder string, rng *rand.Rand) *FolderSelector {
	return &FolderSelector{lib: lib, folder: folder, rng: rng}
}

// Next lists the folder and returns one of its files at random.
func (s *FolderSelector) Next() (string, error) {
	tracks, err := s.lib.Tracks(s.folder)
	if err != nil {
		return "", err
	}
	return s.lib.Path(s.folder, choose(s.rng, tracks)), nil
}

// LibrarySelector picks an album folder uniformly, then a file inside it.
type LibrarySelector struct {
	lib *Library
	rng *rand.Rand
}

// NewLibrarySelector returns a whole-library selector.
func NewLibrarySelector(lib *Library, rng *rand.Rand) *LibrarySelector {
	return &LibrarySelector{lib: lib, rng: rng}
}

// Next picks a random album, then a random file from it. An empty album
// is an error even if other albums have files.
func (s *LibrarySelector) Next() (string, error) {
	albums, err := s.lib.Albums()
	if err != nil {
		return "", err
	}
	album := choose(s.rng, albums)

	tracks, err := s.lib.Tracks(album)
	if err != nil {
		return "", err
	}
	return s.lib.Path(album, choose(s.rng, tracks)), nil
}

// NewSelector builds the selector for a configured mode. The shuffle
// selector holds a file watcher and must be closed by the caller.
func NewSelector(lib *Library, mode, folder string, rng *rand.Rand) (Selector, error) {
	switch mode {
	case config.ModeFolder:
		return NewFolderSelector(lib, folder, rng), nil
	case config.ModeLibrary:
		return NewLibrarySelector(lib, rng), nil
	case config.ModeShuffle:
		return NewShuffleSelector(lib, folder, rng)
	default:
		return nil, fmt.Errorf("unknown selection mode %q", mode)
	}
}

func choose(rng *rand.Rand, items []string) string {
	return items[rng.Intn(len(items))]
}
