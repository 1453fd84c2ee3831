// Package zxay implements a reader and a player for the AY music files of
// the ZX Spectrum, which embed the Z80 code driving the AY-3-8910.
package zxay

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
	Magic      = "ZXAYEMUL"
	headerSize = 0x14

	frameMsec = 1000 / 50
)

var (
	ErrFormat = errors.New("zxay: invalid format")

	// ErrMissingData is returned when a track points outside of the file.
	ErrMissingData = errors.New("zxay: file data missing")
)

var be = binary.BigEndian

// Header is the header of an AY file. Pointers are resolved on demand.
type Header struct {
	FileVersion   uint8
	PlayerVersion uint8
	MaxTrack      uint8 // number of tracks - 1
	FirstTrack    uint8 // 0-based
}

// File is a parsed AY file. All pointers of the file are 16-bit big-endian
// offsets, relative to the position of the pointer itself.
type File struct {
	Header

	Author string
	Misc   string

	data   []byte
	tracks int // offset of the track table

	Warnings []string
}

// Open loads an AY file from disk.
func Open(path string) (*File, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(buf)
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

// Parse parses an AY file held in memory.
func Parse(data []byte) (*File, error) {
	f := new(File)
	if err := f.decode(data); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) decode(buf []byte) error {
	if len(buf) < headerSize {
		return fmt.Errorf("header: %w", io.ErrUnexpectedEOF)
	}
	if string(buf[:8]) != Magic {
		return fmt.Errorf("%w: invalid magic number", ErrFormat)
	}

	f.data = buf
	f.FileVersion = buf[8]
	f.PlayerVersion = buf[9]
	f.MaxTrack = buf[16]
	f.FirstTrack = buf[17]

	tracks, ok := f.ptr(18, (int(f.MaxTrack)+1)*4)
	if !ok {
		return fmt.Errorf("%w: missing track data", ErrFormat)
	}
	f.tracks = tracks
	f.Author = f.str(12)
	f.Misc = f.str(14)

	if f.FileVersion > 2 {
		f.Warnings = append(f.Warnings, "Unknown file version")
	}
	return nil
}

// ptr resolves the pointer at pos. It reports false if the pointer is null,
// or if less than minSize bytes follow its target.
func (f *File) ptr(pos, minSize int) (int, bool) {
	if pos < 0 || pos+2 > len(f.data) {
		return 0, false
	}
	off := int(int16(be.Uint16(f.data[pos:])))
	limit := len(f.data) - minSize
	if limit < 0 || off == 0 || pos+off < 0 || pos+off > limit {
		return 0, false
	}
	return pos + off, true
}

// str returns the NUL-terminated string pointed to by the pointer at pos.
func (f *File) str(pos int) string {
	p, ok := f.ptr(pos, 1)
	if !ok {
		return ""
	}
	s := f.data[p:]
	if i := bytes.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return hwdefs.CleanText(s)
}

// Tracks returns the number of tracks.
func (f *File) Tracks() int {
	return int(f.MaxTrack) + 1
}

// TrackSet returns the header information.
func (f *File) TrackSet() hwdefs.TrackSet {
	ts := hwdefs.TrackSet{
		System:  hwdefs.Spectrum,
		Count:   f.Tracks(),
		Author:  f.Author,
		Comment: f.Misc,
		Tracks:  make([]hwdefs.Track, f.Tracks()),
	}
	if int(f.FirstTrack) < ts.Count {
		ts.First = int(f.FirstTrack)
	}
	for i := range ts.Tracks {
		ts.Tracks[i] = f.track(i)
	}
	return ts
}

func (f *File) track(n int) hwdefs.Track {
	t := hwdefs.Unknown()
	t.Name = f.str(f.tracks + n*4)
	if data, ok := f.ptr(f.tracks+n*4+2, 8); ok {
		if frames := int(be.Uint16(f.data[data+4:])); frames > 0 {
			t.Length = frames * frameMsec
		}
		if frames := int(be.Uint16(f.data[data+6:])); frames > 0 {
			t.Fade = frames * frameMsec
		}
	}
	return t
}

// song is the data needed to start a track.
type song struct {
	hiReg, loReg uint8
	stack        uint16
	init         uint16
	play         uint16 // 0 if the init code installs its own handler
}

// load copies the memory blocks of track n into mem, and returns the entry
// points of the track. Recoverable problems are reported with warn.
func (f *File) load(n int, mem []byte, warn func(string)) (song, error) {
	var s song
	data, ok := f.ptr(f.tracks+n*4+2, 14)
	if !ok {
		return s, ErrMissingData
	}
	points, ok := f.ptr(data+10, 6)
	if !ok {
		return s, ErrMissingData
	}
	blocks, ok := f.ptr(data+12, 8)
	if !ok {
		return s, ErrMissingData
	}

	s.hiReg = f.data[data+8]
	s.loReg = f.data[data+9]
	s.stack = be.Uint16(f.data[points:])
	s.init = be.Uint16(f.data[points+2:])
	s.play = be.Uint16(f.data[points+4:])

	addr := int(be.Uint16(f.data[blocks:]))
	if addr == 0 {
		return s, ErrMissingData
	}
	if s.init == 0 {
		s.init = uint16(addr)
	}

	for addr != 0 {
		size := int(be.Uint16(f.data[blocks+2:]))
		if addr+size > len(mem) {
			warn("Bad data block size")
			size = len(mem) - addr
		}
		src, ok := f.ptr(blocks+4, 0)
		if !ok {
			warn("File data missing")
			break
		}
		if size > len(f.data)-src {
			warn("File data missing")
			size = len(f.data) - src
		}
		copy(mem[addr:addr+size], f.data[src:src+size])

		blocks += 6
		if len(f.data)-blocks < 8 {
			warn("File data missing")
			break
		}
		addr = int(be.Uint16(f.data[blocks:]))
	}
	return s, nil
}
