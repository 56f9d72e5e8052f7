package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoTracks is returned when a folder that should hold tracks has none.
var ErrNoTracks = errors.New("no tracks found")

// Library is a music directory laid out as <root>/<album>/<track>.
type Library struct {
	Root string
}

// New returns a library rooted at root.
func New(root string) *Library {
	return &Library{Root: root}
}

// Dir returns the absolute folder for an album.
func (l *Library) Dir(album string) string {
	return filepath.Join(l.Root, album)
}

// Path joins root, album and file name into the track path.
func (l *Library) Path(album, name string) string {
	return filepath.Join(l.Root, album, name)
}

// Albums lists the album folders under the root, sorted by name.
func (l *Library) Albums() ([]string, error) {
	entries, err := os.ReadDir(l.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to list library %s: %w", l.Root, err)
	}

	var albums []string
	for _, entry := range entries {
		if !entry.IsDir() || hidden(entry.Name()) {
			continue
		}
		albums = append(albums, entry.Name())
	}
	if len(albums) == 0 {
		return nil, fmt.Errorf("%w: no album folders in %s", ErrNoTracks, l.Root)
	}

	sort.Strings(albums)
	return albums, nil
}

// Tracks lists the files of an album folder, sorted by name.
// No format check is done: every regular entry is assumed playable.
func (l *Library) Tracks(album string) ([]string, error) {
	dir := l.Dir(album)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list folder %s: %w", dir, err)
	}

	var tracks []string
	for _, entry := range entries {
		if entry.IsDir() || hidden(entry.Name()) {
			continue
		}
		tracks = append(tracks, entry.Name())
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoTracks, dir)
	}

	sort.Strings(tracks)
	return tracks, nil
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
