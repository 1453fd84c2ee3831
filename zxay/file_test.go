package zxay

import (
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"

	"chipplay/hw/hwdefs"
	"chipplay/tests"
)

func TestParse(t *testing.T) {
	data := tests.AY{
		Author: "Some Author",
		Misc:   "Some comment",
		First:  1,
		Tracks: []tests.AYTrack{
			{Name: "One", Length: 100, Fade: 50, Driver: tests.SilentZ80},
			{Name: "Two", Driver: tests.SilentZ80},
		},
	}.Bytes()

	f, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Warnings) != 0 {
		t.Errorf("unexpected warnings: %q", f.Warnings)
	}

	want := hwdefs.TrackSet{
		System:  hwdefs.Spectrum,
		Count:   2,
		First:   1,
		Author:  "Some Author",
		Comment: "Some comment",
		Tracks: []hwdefs.Track{
			{Name: "One", Length: 2000, Intro: -1, Loop: -1, Fade: 1000},
			{Name: "Two", Length: -1, Intro: -1, Loop: -1, Fade: -1},
		},
	}
	if diff := cmp.Diff(want, f.TrackSet()); diff != "" {
		t.Errorf("TrackSet() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	good := tests.AY{Tracks: []tests.AYTrack{{Driver: tests.SilentZ80}}}.Bytes()
	noTracks := append([]byte(nil), good...)
	noTracks[18], noTracks[19] = 0, 0

	tcs := []struct {
		name string
		data []byte
		want error
	}{
		{"truncated", good[:10], io.ErrUnexpectedEOF},
		{"magic", append([]byte("ZXAYEMUX"), good[8:]...), ErrFormat},
		{"track table", noTracks, ErrFormat},
	}
	for _, tt := range tcs {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.data); !errors.Is(err, tt.want) {
				t.Errorf("Parse() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestVersionWarning(t *testing.T) {
	for _, vers := range []uint8{0, 1, 2, 3} {
		f, err := Parse(tests.AY{
			Version: vers,
			Tracks:  []tests.AYTrack{{Driver: tests.SilentZ80}},
		}.Bytes())
		if err != nil {
			t.Fatal(err)
		}

		var want []string
		if vers > 2 {
			want = []string{"Unknown file version"}
		}
		if diff := cmp.Diff(want, f.Warnings); diff != "" {
			t.Errorf("version %d: Warnings mismatch (-want +got):\n%s", vers, diff)
		}
	}
}
