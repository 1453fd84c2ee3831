package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-faster/jx"

	"chipplay/emu"
)

type fileInfo struct {
	file    string
	set     emu.TrackSet
	voices  []string
	warning string
	tracks  []emu.TrackInfo
}

func readInfo(path string, cfg *Config) (*fileInfo, error) {
	p, err := openPlayer(path, cfg)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	fi := &fileInfo{
		file:    filepath.Base(path),
		set:     p.Info(),
		voices:  p.VoiceNames(),
		warning: p.Warning(),
	}
	for i := range p.TrackCount() {
		ti, err := p.TrackInfo(i)
		if err != nil {
			return nil, err
		}
		fi.tracks = append(fi.tracks, ti)
	}
	return fi, nil
}

func runInfo(args Info, cfg Config, stdout io.Writer) error {
	w := stdout
	if args.Out != nil {
		defer args.Out.Close()
		w = args.Out
	}

	fi, err := readInfo(args.Path, &cfg)
	if err != nil {
		return err
	}
	if args.JSON {
		_, err = w.Write(fi.json())
		return err
	}
	return fi.print(w)
}

func (fi *fileInfo) print(w io.Writer) error {
	var sb strings.Builder
	field := func(name, val string) {
		if val != "" {
			fmt.Fprintf(&sb, "%-10s %s\n", name+":", val)
		}
	}

	field("File", fi.file)
	field("System", fi.set.System.String())
	field("Game", fi.set.Game)
	field("Author", fi.set.Author)
	field("Copyright", fi.set.Copyright)
	field("Comment", fi.set.Comment)
	field("Dumper", fi.set.Dumper)
	field("Voices", strings.Join(fi.voices, ", "))
	field("Warning", fi.warning)
	fmt.Fprintf(&sb, "%-10s %d (first: %d)\n\n", "Tracks:", len(fi.tracks), fi.set.First+1)

	for i, t := range fi.tracks {
		fmt.Fprintf(&sb, "%3d  %-32s %6s", i+1, t.Song, fmtTime(t.PlayLength))
		if t.Loop > 0 {
			fmt.Fprintf(&sb, "  loop %s", fmtTime(t.Loop))
		}
		if t.Fade >= 0 {
			fmt.Fprintf(&sb, "  fade %s", fmtTime(t.Fade))
		}
		sb.WriteByte('\n')
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func (fi *fileInfo) json() []byte {
	var e jx.Encoder
	e.SetIdent(2)

	str := func(name, val string) {
		e.FieldStart(name)
		e.Str(val)
	}
	num := func(name string, val int) {
		e.FieldStart(name)
		e.Int(val)
	}

	e.ObjStart()
	str("file", fi.file)
	str("system", fi.set.System.String())
	str("game", fi.set.Game)
	str("author", fi.set.Author)
	str("copyright", fi.set.Copyright)
	str("comment", fi.set.Comment)
	str("dumper", fi.set.Dumper)
	num("first", fi.set.First+1)
	if fi.warning != "" {
		str("warning", fi.warning)
	}

	e.FieldStart("voices")
	e.ArrStart()
	for _, v := range fi.voices {
		e.Str(v)
	}
	e.ArrEnd()

	e.FieldStart("tracks")
	e.ArrStart()
	for i, t := range fi.tracks {
		e.ObjStart()
		num("track", i+1)
		str("song", t.Song)
		num("length", t.Length)
		num("intro", t.Intro)
		num("loop", t.Loop)
		num("fade", t.Fade)
		num("play_length", t.PlayLength)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()

	return append(e.Bytes(), '\n')
}
