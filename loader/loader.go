// Package loader reads music files from disk, extracting them from ZIP, 7z,
// gzip, tar.gz and RAR archives.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"chipplay/emu/log"
)

// Magic bytes for format detection
var (
	magicZIP    = []byte{0x50, 0x4B, 0x03, 0x04}
	magicZIPEnd = []byte{0x50, 0x4B, 0x05, 0x06} // empty zip
	magic7z     = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicGzip   = []byte{0x1F, 0x8B}
	magicRAR    = []byte{0x52, 0x61, 0x72, 0x21} // "Rar!"
)

// MaxSize is the maximum size of a music file.
const MaxSize = 8 * 1024 * 1024

// Extensions lists the extensions of the music files looked for in
// archives.
var Extensions = []string{".nsf", ".nsfe", ".ay"}

var (
	ErrNoMusicFile  = errors.New("no music file found in archive")
	ErrFileTooLarge = errors.New("file exceeds maximum size limit")
)

type formatType int

const (
	formatRaw formatType = iota
	formatZIP
	format7z
	formatGzip
	formatRAR
)

var formatNames = [...]string{"raw", "zip", "7z", "gzip", "rar"}

func (f formatType) String() string { return formatNames[f] }

// Load reads the music file at path. Archives are detected by their magic
// bytes, or else by their extension, and the first music file they hold is
// extracted. Any other file is read as is.
//
// Load returns the file data and its name.
func Load(path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	header := make([]byte, 16)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, "", fmt.Errorf("failed to read file header: %w", err)
	}
	header = header[:n]

	format := detectFormat(header, path)
	log.ModLoader.DebugZ("load").
		String("path", path).
		Stringer("format", format).
		End()

	switch format {
	case formatZIP:
		return extractFromZIP(path)
	case format7z:
		return extractFrom7z(path)
	case formatGzip:
		return extractFromGzip(path)
	case formatRAR:
		return extractFromRAR(path)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, "", fmt.Errorf("failed to seek file: %w", err)
	}
	data, err := limitedRead(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, filepath.Base(path), nil
}

// detectFormat determines the file format from its magic bytes, then from
// its extension.
func detectFormat(header []byte, path string) formatType {
	switch {
	case bytes.HasPrefix(header, magicZIP), bytes.HasPrefix(header, magicZIPEnd):
		return formatZIP
	case bytes.HasPrefix(header, magicRAR):
		return formatRAR
	case bytes.HasPrefix(header, magic7z):
		return format7z
	case bytes.HasPrefix(header, magicGzip):
		return formatGzip
	}

	lower := strings.ToLower(path)
	switch filepath.Ext(lower) {
	case ".zip":
		return formatZIP
	case ".7z":
		return format7z
	case ".gz", ".tgz":
		return formatGzip
	case ".rar":
		return formatRAR
	}
	return formatRaw
}

// isMusicFile checks if a filename has one of the music file extensions
// (case-insensitive).
func isMusicFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range Extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// limitedRead reads from r up to MaxSize bytes, returning an error if
// exceeded.
func limitedRead(r io.Reader) ([]byte, error) {
	lr := io.LimitReader(r, MaxSize+1)
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if len(data) > MaxSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}

func extracted(data []byte, name, archive string) ([]byte, string, error) {
	log.ModLoader.InfoZ("extracted").
		String("archive", filepath.Base(archive)).
		String("file", name).
		Int("size", len(data)).
		End()
	return data, filepath.Base(name), nil
}
