package library

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"motionfm/model"

	"github.com/dhowden/tag"
)

// ReadTrack describes the file at path. Fields missing from the file's
// tags fall back to the file name and the containing folder, so the
// returned track is usable even when err is non-nil.
func ReadTrack(path string) (model.Track, error) {
	base := filepath.Base(path)
	track := model.Track{
		Path:  path,
		Album: filepath.Base(filepath.Dir(path)),
		Title: strings.TrimSuffix(base, filepath.Ext(base)),
	}

	f, err := os.Open(path)
	if err != nil {
		return track, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return track, fmt.Errorf("failed to read tags of %s: %w", path, err)
	}

	if title := strings.TrimSpace(m.Title()); title != "" {
		track.Title = title
	}
	if album := strings.TrimSpace(m.Album()); album != "" {
		track.Album = album
	}
	track.Artist = strings.TrimSpace(m.Artist())
	if track.Artist == "" {
		track.Artist = strings.TrimSpace(m.AlbumArtist())
	}
	return track, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
