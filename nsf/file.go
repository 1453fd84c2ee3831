// Package nsf implements a reader and a player for music files in the NSF and
// NSFE formats, ripped from NES games.
package nsf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"chipplay/hw/hwdefs"
)

const (
	Magic     = "NESM\x1a"
	MagicNSFE = "NSFE"

	headerSize = 0x80
)

var ErrFormat = errors.New("nsf: invalid format")

// Header is the 128-byte header of an NSF file.
type Header struct {
	Version    uint8
	TrackCount uint8
	FirstTrack uint8 // 1-based
	LoadAddr   uint16
	InitAddr   uint16
	PlayAddr   uint16
	Game       string
	Author     string
	Copyright  string
	NTSCSpeed  uint16 // play period, in µs
	Banks      [8]uint8
	PALSpeed   uint16
	SpeedFlags uint8
	ChipFlags  uint8
}

// PAL reports whether the music runs on a PAL system. Dual files play in
// NTSC.
func (hdr *Header) PAL() bool {
	return hdr.SpeedFlags&0x03 == 0x01
}

// BankSwitched reports whether the file uses the bank table.
func (hdr *Header) BankSwitched() bool {
	return hdr.Banks != [8]uint8{}
}

func (hdr *Header) decode(p []byte) error {
	if len(p) < headerSize {
		return fmt.Errorf("header: %w", io.ErrUnexpectedEOF)
	}
	if string(p[:5]) != Magic {
		return fmt.Errorf("%w: invalid magic number", ErrFormat)
	}
	le := binary.LittleEndian
	hdr.Version = p[5]
	hdr.TrackCount = p[6]
	hdr.FirstTrack = p[7]
	hdr.LoadAddr = le.Uint16(p[8:])
	hdr.InitAddr = le.Uint16(p[10:])
	hdr.PlayAddr = le.Uint16(p[12:])
	hdr.Game = hwdefs.CleanText(p[0x0E:0x2E])
	hdr.Author = hwdefs.CleanText(p[0x2E:0x4E])
	hdr.Copyright = hwdefs.CleanText(p[0x4E:0x6E])
	hdr.NTSCSpeed = le.Uint16(p[0x6E:])
	copy(hdr.Banks[:], p[0x70:0x78])
	hdr.PALSpeed = le.Uint16(p[0x78:])
	hdr.SpeedFlags = p[0x7A]
	hdr.ChipFlags = p[0x7B]
	return nil
}

// File is a parsed NSF or NSFE file.
type File struct {
	Header

	Data []byte // ROM image, loaded at LoadAddr

	// Set by NSFE files only.
	IsNSFE   bool
	Ripper   string
	Labels   []string
	Times    []int // ms, per track
	Fades    []int // ms, per track
	Playlist []int

	// Structural problems found while parsing. None of them prevent
	// playback.
	Warnings []string
}

// Open loads a music file from disk.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	file := new(File)
	if _, err := file.ReadFrom(f); err != nil {
		return nil, err
	}
	return file, nil
}

// ReadFrom implements io.ReaderFrom interface.
func (f *File) ReadFrom(r io.Reader) (int64, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	if err := f.decode(buf); err != nil {
		return 0, err
	}
	return int64(len(buf)), nil
}

// Parse parses an NSF or NSFE file held in memory.
func Parse(data []byte) (*File, error) {
	f := new(File)
	if err := f.decode(data); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) decode(buf []byte) error {
	switch {
	case bytes.HasPrefix(buf, []byte(MagicNSFE)):
		if err := f.decodeNSFE(buf[4:]); err != nil {
			return fmt.Errorf("nsfe: %w", err)
		}
	default:
		if err := f.Header.decode(buf); err != nil {
			return fmt.Errorf("failed to decode header: %w", err)
		}
		f.Data = buf[headerSize:]
	}
	f.check()
	return nil
}

func (f *File) warn(msg string) {
	f.Warnings = append(f.Warnings, msg)
}

func (f *File) check() {
	if f.Version != 1 {
		f.warn("Unknown file version")
	}
	if f.LoadAddr == 0 {
		f.LoadAddr = romAddr
	}
	if f.InitAddr == 0 {
		f.InitAddr = romAddr
	}
	if f.PlayAddr == 0 {
		f.PlayAddr = romAddr
	}
	if f.LoadAddr < romAddr {
		f.warn("Load address is too low")
	}
	if f.InitAddr < f.LoadAddr {
		f.warn("Init address < load address")
	}
	if f.ChipFlags != 0 {
		f.warn("Uses unsupported audio expansion hardware")
	}
	if f.TrackCount == 0 {
		f.TrackCount = 1
	}
}

// Tracks returns the number of playable tracks.
func (f *File) Tracks() int {
	if len(f.Playlist) > 0 {
		return len(f.Playlist)
	}
	return int(f.TrackCount)
}

// RemapTrack returns the track of the file played for the n-th playable
// track.
func (f *File) RemapTrack(n int) int {
	if n >= 0 && n < len(f.Playlist) {
		return f.Playlist[n]
	}
	return n
}

// TrackSet returns the header information.
func (f *File) TrackSet() hwdefs.TrackSet {
	ts := hwdefs.TrackSet{
		System:    hwdefs.NES,
		Count:     f.Tracks(),
		Game:      f.Game,
		Author:    f.Author,
		Copyright: f.Copyright,
		Dumper:    f.Ripper,
	}
	if first := int(f.FirstTrack) - 1; first > 0 && first < ts.Count {
		ts.First = first
	}
	if f.IsNSFE {
		ts.Tracks = make([]hwdefs.Track, ts.Count)
		for i := range ts.Tracks {
			ts.Tracks[i] = f.track(f.RemapTrack(i))
		}
	}
	return ts
}

func (f *File) track(n int) hwdefs.Track {
	t := hwdefs.Unknown()
	if n < len(f.Labels) {
		t.Name = f.Labels[n]
	}
	if n < len(f.Times) && f.Times[n] > 0 {
		t.Length = f.Times[n]
	}
	if n < len(f.Fades) && f.Fades[n] >= 0 {
		t.Fade = f.Fades[n]
	}
	return t
}
