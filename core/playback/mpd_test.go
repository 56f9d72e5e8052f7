package playback

import (
	"context"
	"errors"
	"testing"

	"github.com/fhs/gompd/v2/mpd"
	"github.com/google/go-cmp/cmp"
)

type fakeMPD struct {
	calls   []string
	state   string
	pingErr error
	addErr  error
	playErr error
	closed  bool
}

func (m *fakeMPD) Ping() error                { return m.pingErr }
func (m *fakeMPD) Clear() error               { m.calls = append(m.calls, "clear"); return nil }
func (m *fakeMPD) Add(uri string) error       { m.calls = append(m.calls, "add "+uri); return m.addErr }
func (m *fakeMPD) Play(pos int) error         { m.calls = append(m.calls, "play"); m.state = "play"; return m.playErr }
func (m *fakeMPD) Stop() error                { m.calls = append(m.calls, "stop"); m.state = "stop"; return nil }
func (m *fakeMPD) Status() (mpd.Attrs, error) { return mpd.Attrs{"state": m.state}, nil }
func (m *fakeMPD) Close() error               { m.closed = true; return nil }

func TestMPDPlayerURI(t *testing.T) {
	p := &MPDPlayer{musicDir: "/home/pi/music"}
	tests := map[string]string{
		"/home/pi/music/lofi/a.mp3": "lofi/a.mp3",
		"/srv/other/b.mp3":          "file:///srv/other/b.mp3",
	}
	for path, want := range tests {
		if got := p.URI(path); got != want {
			t.Errorf("URI(%q) = %q, want %q", path, got, want)
		}
	}

	if got := (&MPDPlayer{}).URI("/music/lofi/a.mp3"); got != "file:///music/lofi/a.mp3" {
		t.Errorf("URI without music dir = %q", got)
	}
}

func TestMPDPlayerCycle(t *testing.T) {
	client := &fakeMPD{state: "stop"}
	p, err := newMPDPlayer(func() (mpdClient, error) { return client, nil }, "/music")
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := p.Play(ctx); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("Play before Load error = %v", err)
	}
	if err := p.Load(ctx, "/music/lofi/a.mp3"); err != nil {
		t.Fatal(err)
	}
	if err := p.Play(ctx); err != nil {
		t.Fatal(err)
	}
	if playing, _ := p.IsPlaying(ctx); !playing {
		t.Error("IsPlaying = false while MPD state is play")
	}
	client.state = "stop"
	if playing, _ := p.IsPlaying(ctx); playing {
		t.Error("IsPlaying = true while MPD state is stop")
	}

	want := []string{"clear", "add lofi/a.mp3", "play"}
	if diff := cmp.Diff(want, client.calls); diff != "" {
		t.Errorf("MPD calls mismatch (-want +got):\n%s", diff)
	}
}

func TestMPDPlayerReconnects(t *testing.T) {
	stale := &fakeMPD{pingErr: errors.New("broken pipe")}
	fresh := &fakeMPD{state: "stop"}
	dials := 0
	dial := func() (mpdClient, error) {
		dials++
		if dials == 1 {
			return stale, nil
		}
		return fresh, nil
	}

	p, err := newMPDPlayer(dial, "")
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Load(context.Background(), "/music/lofi/a.mp3"); err != nil {
		t.Fatal(err)
	}
	if !stale.closed || dials != 2 {
		t.Errorf("stale connection not replaced (closed=%v dials=%d)", stale.closed, dials)
	}
	if len(fresh.calls) != 2 {
		t.Errorf("fresh connection calls = %v", fresh.calls)
	}
}

func TestMPDPlayerTrackErrors(t *testing.T) {
	notIndexed := mpd.Error{Code: mpd.ErrorNoExist, CommandName: "add", Message: "No such directory"}
	badPassword := mpd.Error{Code: mpd.ErrorPassword, CommandName: "add", Message: "incorrect password"}
	brokenPipe := errors.New("write: broken pipe")

	tests := []struct {
		name       string
		addErr     error
		playErr    error
		unplayable bool
	}{
		{"add not in database", notIndexed, nil, true},
		{"play rejected", nil, mpd.Error{Code: mpd.ErrorSystem, CommandName: "play", Message: "decoder failed"}, true},
		{"password", badPassword, nil, false},
		{"connection", brokenPipe, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeMPD{state: "stop", addErr: tt.addErr, playErr: tt.playErr}
			p, err := newMPDPlayer(func() (mpdClient, error) { return client, nil }, "/music")
			if err != nil {
				t.Fatal(err)
			}
			ctx := context.Background()

			err = p.Load(ctx, "/music/lofi/new.mp3")
			if err == nil {
				err = p.Play(ctx)
			}
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := errors.Is(err, ErrUnplayable); got != tt.unplayable {
				t.Errorf("errors.Is(%v, ErrUnplayable) = %v, want %v", err, got, tt.unplayable)
			}
			if tt.addErr != nil && !errors.Is(err, tt.addErr) {
				t.Errorf("error %v does not wrap the MPD error", err)
			}
		})
	}
}
