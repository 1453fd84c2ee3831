package nsf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"

	"chipplay/hw/hwdefs"
	"chipplay/tests"
)

func TestParseHeader(t *testing.T) {
	data := tests.NSF{
		Tracks:    5,
		First:     2,
		Game:      "Some Game",
		Author:    "Some Author",
		Copyright: "1987 Somebody",
		Driver:    tests.SilentDriver,
	}.Bytes()

	f := new(File)
	n, err := f.ReadFrom(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if n != int64(len(data)) {
		t.Errorf("ReadFrom() = %d, want %d", n, len(data))
	}
	if len(f.Warnings) != 0 {
		t.Errorf("unexpected warnings: %q", f.Warnings)
	}

	want := hwdefs.TrackSet{
		System:    hwdefs.NES,
		Count:     5,
		First:     1,
		Game:      "Some Game",
		Author:    "Some Author",
		Copyright: "1987 Somebody",
	}
	if diff := cmp.Diff(want, f.TrackSet()); diff != "" {
		t.Errorf("TrackSet() mismatch (-want +got):\n%s", diff)
	}
	if f.PlayAddr != tests.LoadAddr+tests.PlayOffset {
		t.Errorf("PlayAddr = $%04X", f.PlayAddr)
	}
	if f.BankSwitched() {
		t.Errorf("BankSwitched() = true")
	}
}

func TestParseErrors(t *testing.T) {
	good := tests.NSF{Driver: tests.SilentDriver}.Bytes()

	tcs := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, io.ErrUnexpectedEOF},
		{"truncated", good[:0x40], io.ErrUnexpectedEOF},
		{"magic", append([]byte("NESX"), good[4:]...), ErrFormat},
	}
	for _, tt := range tcs {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestWarnings(t *testing.T) {
	lowInit := tests.NSF{Driver: tests.SilentDriver}.Bytes()
	binary.LittleEndian.PutUint16(lowInit[10:], 0x7000)

	tcs := []struct {
		name string
		data []byte
		want []string
	}{
		{
			name: "version",
			data: tests.NSF{Version: 2, Driver: tests.SilentDriver}.Bytes(),
			want: []string{"Unknown file version"},
		},
		{
			name: "load",
			data: tests.NSF{LoadAddr: 0x6000, Driver: tests.SilentDriver}.Bytes(),
			want: []string{"Load address is too low"},
		},
		{
			name: "init",
			data: lowInit,
			want: []string{"Init address < load address"},
		},
		{
			name: "expansion",
			data: tests.NSF{ChipFlags: 0x01, Driver: tests.SilentDriver}.Bytes(),
			want: []string{"Uses unsupported audio expansion hardware"},
		},
	}
	for _, tt := range tcs {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse(tt.data)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, f.Warnings); diff != "" {
				t.Errorf("Warnings mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPlayPeriod(t *testing.T) {
	tcs := []struct {
		name string
		hdr  Header
		want int
	}{
		{"ntsc", Header{NTSCSpeed: 0x411A}, 29780},
		{"ntsc default", Header{}, 29780},
		{"pal", Header{SpeedFlags: 1, PALSpeed: 0x4E20}, 33247},
		{"custom", Header{NTSCSpeed: 10000}, 17897},
		{"dual", Header{SpeedFlags: 2, NTSCSpeed: 0x411A}, 29780},
	}
	for _, tt := range tcs {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.hdr.PlayPeriod(); got != tt.want {
				t.Errorf("PlayPeriod() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNSFE(t *testing.T) {
	data := tests.NSFE{
		Tracks:   3,
		First:    1,
		Driver:   tests.SilentDriver,
		Auth:     []string{"Game", "Author", "Copyright", "Ripper"},
		Times:    []int32{1000, -1, 3000},
		Fades:    []int32{500, 600, -1},
		Labels:   []string{"One", "Two", "Three"},
		Playlist: []uint8{2, 0},
		Extra:    []tests.Chunk{{ID: "xtra", Data: []byte{1, 2, 3}}},
	}.Bytes()

	f, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if !f.IsNSFE {
		t.Fatalf("IsNSFE = false")
	}
	if len(f.Warnings) != 0 {
		t.Errorf("unexpected warnings: %q", f.Warnings)
	}

	want := hwdefs.TrackSet{
		System:    hwdefs.NES,
		Count:     2,
		First:     1,
		Game:      "Game",
		Author:    "Author",
		Copyright: "Copyright",
		Dumper:    "Ripper",
		Tracks: []hwdefs.Track{
			{Name: "Three", Length: 3000, Intro: -1, Loop: -1, Fade: -1},
			{Name: "One", Length: 1000, Intro: -1, Loop: -1, Fade: 500},
		},
	}
	if diff := cmp.Diff(want, f.TrackSet()); diff != "" {
		t.Errorf("TrackSet() mismatch (-want +got):\n%s", diff)
	}
	if got := f.RemapTrack(0); got != 2 {
		t.Errorf("RemapTrack(0) = %d, want 2", got)
	}
}

func TestNSFEErrors(t *testing.T) {
	tcs := []struct {
		name string
		data []byte
	}{
		{
			name: "unknown chunk",
			data: tests.NSFE{
				Driver: tests.SilentDriver,
				Extra:  []tests.Chunk{{ID: "ABCD"}},
			}.Bytes(),
		},
		{
			name: "no data",
			data: []byte("NSFE\x00\x00\x00\x00NEND"),
		},
		{
			name: "small info",
			data: []byte("NSFE\x02\x00\x00\x00INFO\x00\x80"),
		},
	}
	for _, tt := range tcs {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.data); !errors.Is(err, ErrFormat) {
				t.Errorf("Parse() error = %v, want %v", err, ErrFormat)
			}
		})
	}

	// Missing NEND.
	data := tests.NSFE{Driver: tests.SilentDriver}.Bytes()
	if _, err := Parse(data[:len(data)-8]); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("Parse() error = %v, want %v", err, io.ErrUnexpectedEOF)
	}
}
