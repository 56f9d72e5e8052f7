package library

import (
	"errors"
	"math"
	"math/rand"
	"path/filepath"
	"sort"
	"testing"

	"motionfm/config"

	"github.com/google/go-cmp/cmp"
)

func TestFolderSelectorUniform(t *testing.T) {
	files := []string{"a.mp3", "b.mp3", "c.mp3", "d.mp3"}
	root := makeLibrary(t, map[string][]string{"lofi": files})
	sel := NewFolderSelector(New(root), "lofi", rand.New(rand.NewSource(42)))

	const draws = 20000
	counts := make(map[string]int)
	for i := 0; i < draws; i++ {
		path, err := sel.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if filepath.Dir(path) != filepath.Join(root, "lofi") {
			t.Fatalf("path %q outside the lofi folder", path)
		}
		counts[filepath.Base(path)]++
	}

	want := 1.0 / float64(len(files))
	for _, f := range files {
		got := float64(counts[f]) / draws
		if math.Abs(got-want) > 0.03 {
			t.Errorf("%s selected with frequency %.3f, want about %.3f", f, got, want)
		}
	}
}

func TestFolderSelectorEmptyFails(t *testing.T) {
	root := makeLibrary(t, map[string][]string{"lofi": nil})
	sel := NewFolderSelector(New(root), "lofi", rand.New(rand.NewSource(1)))

	path, err := sel.Next()
	if !errors.Is(err, ErrNoTracks) {
		t.Fatalf("Next error = %v, want ErrNoTracks", err)
	}
	if path != "" {
		t.Errorf("Next returned %q alongside an error", path)
	}
}

func TestFolderSelectorMissingFolder(t *testing.T) {
	sel := NewFolderSelector(New(t.TempDir()), "lofi", rand.New(rand.NewSource(1)))
	if _, err := sel.Next(); err == nil {
		t.Fatal("expected an error for a missing folder")
	}
}

func TestLibrarySelectorCoversAllAlbums(t *testing.T) {
	root := makeLibrary(t, map[string][]string{
		"lofi": {"a.mp3"},
		"jazz": {"b.mp3", "c.mp3"},
		"rock": {"d.mp3"},
	})
	sel := NewLibrarySelector(New(root), rand.New(rand.NewSource(7)))

	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		path, err := sel.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			t.Fatal(err)
		}
		seen[rel] = true
	}

	var got []string
	for rel := range seen {
		got = append(got, rel)
	}
	sort.Strings(got)
	want := []string{"jazz/b.mp3", "jazz/c.mp3", "lofi/a.mp3", "rock/d.mp3"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("selected paths mismatch (-want +got):\n%s", diff)
	}
}

func TestLibrarySelectorEmptyAlbumFails(t *testing.T) {
	root := makeLibrary(t, map[string][]string{"empty": nil})
	sel := NewLibrarySelector(New(root), rand.New(rand.NewSource(3)))
	if _, err := sel.Next(); !errors.Is(err, ErrNoTracks) {
		t.Fatalf("Next error = %v, want ErrNoTracks", err)
	}
}

func TestSameSeedSameSequence(t *testing.T) {
	root := makeLibrary(t, map[string][]string{"lofi": {"a", "b", "c", "d", "e"}})
	lib := New(root)

	run := func() []string {
		sel := NewFolderSelector(lib, "lofi", rand.New(rand.NewSource(99)))
		var out []string
		for i := 0; i < 10; i++ {
			p, err := sel.Next()
			if err != nil {
				t.Fatal(err)
			}
			out = append(out, p)
		}
		return out
	}

	if diff := cmp.Diff(run(), run()); diff != "" {
		t.Errorf("sequences differ for the same seed:\n%s", diff)
	}
}

func TestNewSelectorModes(t *testing.T) {
	root := makeLibrary(t, map[string][]string{"lofi": {"a.mp3"}})
	lib := New(root)
	rng := rand.New(rand.NewSource(1))

	for _, mode := range []string{config.ModeFolder, config.ModeLibrary, config.ModeShuffle} {
		sel, err := NewSelector(lib, mode, "lofi", rng)
		if err != nil {
			t.Fatalf("NewSelector(%s): %v", mode, err)
		}
		path, err := sel.Next()
		if err != nil {
			t.Fatalf("%s Next: %v", mode, err)
		}
		if path != filepath.Join(root, "lofi", "a.mp3") {
			t.Errorf("%s Next = %q", mode, path)
		}
		if c, ok := sel.(interface{ Close() error }); ok {
			c.Close()
		}
	}

	if _, err := NewSelector(lib, "bogus", "lofi", rng); err == nil {
		t.Error("expected an error for an unknown mode")
	}
}
