// Package m3u parses the extended m3u playlists that come along game music
// files. Each entry names a track of the music file, with its title and
// timings. Comment lines carry information about the whole file.
package m3u

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"

	"chipplay/emu/log"
)

var ErrNotPlaylist = errors.New("m3u: not a playlist")

// Info holds the fields of the comment lines.
type Info struct {
	Title     string
	Artist    string
	Date      string
	Composer  string
	Sequencer string
	Engineer  string
	Ripping   string
	Tagging   string
	Copyright string
}

// Entry is a playlist line:
//
//	file::TYPE,track,name,time,loop,fade,repeat
//
// Times are in milliseconds, -1 when missing.
type Entry struct {
	File string
	Type string

	// Track is -1 when missing. Decimal track numbers count from 1, $hex
	// ones from 0.
	Track   int
	Decimal bool

	Name   string
	Length int
	Intro  int
	Loop   int
	Fade   int
	Repeat int
}

// Playlist is a parsed m3u file.
type Playlist struct {
	Info    Info
	Entries []Entry

	// FirstError is the number of the first line that could not be parsed,
	// 0 if there is none. Bad lines are skipped.
	FirstError int
}

// Load parses the playlist file at path.
func Load(path string) (*Playlist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse parses a playlist from r.
func Parse(r io.Reader) (*Playlist, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseBytes(data)
}

// ParseBytes parses a playlist held in memory.
func ParseBytes(data []byte) (*Playlist, error) {
	if bytes.IndexByte(data, 0) >= 0 {
		return nil, ErrNotPlaylist
	}

	pl := new(Playlist)
	first := true
	var last *string // info field continued by the next comment lines

	for n, line := range lines(string(data)) {
		switch {
		case strings.HasPrefix(line, "#"):
			last = pl.Info.comment(line[1:], last, first)
			first = false
		case line != "":
			var e Entry
			if e.parse(line) {
				pl.Entries = append(pl.Entries, e)
			} else if pl.FirstError == 0 {
				pl.FirstError = n + 1
				log.ModM3U.DebugZ("bad line").Int("line", n+1).String("text", line).End()
			}
			first = false
		default:
			last = nil
		}
	}
	if len(pl.Entries) == 0 {
		return nil, ErrNotPlaylist
	}

	// A lone comment isn't a title.
	in := &pl.Info
	if in.Artist == "" && in.Composer == "" && in.Date == "" && in.Engineer == "" &&
		in.Ripping == "" && in.Sequencer == "" && in.Tagging == "" && in.Copyright == "" {
		in.Title = ""
	}
	return pl, nil
}

// lines returns the lines of s, ended by CR, LF or CRLF.
func lines(s string) []string {
	var lines []string
	for s != "" {
		i := strings.IndexAny(s, "\r\n")
		if i < 0 {
			lines = append(lines, s)
			break
		}
		lines = append(lines, s[:i])
		if s[i] == '\r' && i+1 < len(s) && s[i+1] == '\n' {
			i++
		}
		s = s[i+1:]
	}
	return lines
}

// colonField returns the field set by a "# Key: text" comment.
func (in *Info) colonField(key string) *string {
	switch key {
	case "Composer":
		return &in.Composer
	case "Engineer":
		return &in.Engineer
	case "Ripping":
		return &in.Ripping
	case "Tagging":
		return &in.Tagging
	case "Game":
		return &in.Title
	case "Artist":
		return &in.Artist
	case "Copyright":
		return &in.Copyright
	}
	return nil
}

// atField returns the field set by a "# @KEY text" comment.
func (in *Info) atField(key string) *string {
	switch key {
	case "TITLE":
		return &in.Title
	case "ARTIST":
		return &in.Artist
	case "DATE":
		return &in.Date
	case "COMPOSER":
		return &in.Composer
	case "SEQUENCER":
		return &in.Sequencer
	case "ENGINEER":
		return &in.Engineer
	case "RIPPER":
		return &in.Ripping
	case "TAGGER":
		return &in.Tagging
	}
	return nil
}

// comment parses the text of a comment line. It returns the field that the
// following comment lines continue, if any.
func (in *Info) comment(text string, last *string, first bool) *string {
	text = trimWhite(text)

	if key, ok := strings.CutPrefix(text, "@"); ok {
		val := ""
		if i := strings.IndexFunc(key, isWhite); i >= 0 {
			key, val = key[:i], trimWhite(key[i:])
		}
		if p := in.atField(key); p != nil && val != "" {
			*p = val
			return p
		}
	} else if key, val, ok := strings.Cut(text, ":"); ok {
		val = trimWhite(val)
		if p := in.colonField(key); p != nil && val != "" {
			*p = val
			return last
		}
	} else if last != nil {
		*last += ", " + text
		return last
	}

	if first {
		in.Title = text
	}
	return last
}

// isWhite reports whether c is a space or a control character.
func isWhite(c rune) bool {
	return c >= 1 && c <= ' '
}

func trimWhite(s string) string {
	return strings.TrimLeftFunc(s, isWhite)
}
