package library

import (
	"errors"
	"math/rand"
	"path/filepath"
	"sort"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/google/go-cmp/cmp"
)

func newShuffle(t *testing.T, files []string) (*ShuffleSelector, string) {
	t.Helper()
	root := makeLibrary(t, map[string][]string{"lofi": files})
	s, err := NewShuffleSelector(New(root), "lofi", rand.New(rand.NewSource(5)))
	if err != nil {
		t.Fatalf("NewShuffleSelector: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, root
}

func drain(t *testing.T, s *ShuffleSelector, n int) []string {
	t.Helper()
	var names []string
	for i := 0; i < n; i++ {
		p, err := s.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		names = append(names, filepath.Base(p))
	}
	return names
}

func TestShuffleEveryTrackOncePerRound(t *testing.T) {
	files := []string{"a.mp3", "b.mp3", "c.mp3", "d.mp3", "e.mp3"}
	s, _ := newShuffle(t, files)

	for round := 0; round < 3; round++ {
		got := drain(t, s, len(files))
		sort.Strings(got)
		if diff := cmp.Diff(files, got); diff != "" {
			t.Errorf("round %d mismatch (-want +got):\n%s", round, diff)
		}
		if s.Remaining() != 0 {
			t.Errorf("round %d left %d tracks", round, s.Remaining())
		}
	}
}

func TestShuffleHandleCreateAndRemove(t *testing.T) {
	s, root := newShuffle(t, []string{"a.mp3", "b.mp3", "c.mp3"})
	played := drain(t, s, 1)[0]

	dir := filepath.Join(root, "lofi")
	s.handle(fsnotify.Event{Name: filepath.Join(dir, "new.mp3"), Op: fsnotify.Create})
	if got := s.Remaining(); got != 3 {
		t.Fatalf("Remaining after create = %d, want 3", got)
	}
	// duplicate events do not grow the round
	s.handle(fsnotify.Event{Name: filepath.Join(dir, "new.mp3"), Op: fsnotify.Create})
	if got := s.Remaining(); got != 3 {
		t.Fatalf("Remaining after duplicate create = %d, want 3", got)
	}
	s.handle(fsnotify.Event{Name: filepath.Join(dir, ".partial"), Op: fsnotify.Create})
	if got := s.Remaining(); got != 3 {
		t.Fatalf("hidden file joined the round")
	}

	var gone string
	for _, f := range []string{"a.mp3", "b.mp3", "c.mp3"} {
		if f != played {
			gone = f
			break
		}
	}
	s.handle(fsnotify.Event{Name: filepath.Join(dir, gone), Op: fsnotify.Remove})
	if got := s.Remaining(); got != 2 {
		t.Fatalf("Remaining after remove = %d, want 2", got)
	}

	rest := drain(t, s, 2)
	for _, name := range rest {
		if name == gone || name == played {
			t.Errorf("round returned %q again", name)
		}
	}
}

func TestShuffleMissingFolder(t *testing.T) {
	_, err := NewShuffleSelector(New(t.TempDir()), "lofi", rand.New(rand.NewSource(1)))
	if err == nil {
		t.Fatal("expected an error when the folder does not exist")
	}
}

func TestShuffleEmptyFolder(t *testing.T) {
	s, _ := newShuffle(t, nil)
	if _, err := s.Next(); !errors.Is(err, ErrNoTracks) {
		t.Fatalf("Next error = %v, want ErrNoTracks", err)
	}
}
