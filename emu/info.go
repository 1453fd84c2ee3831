package emu

import "chipplay/hw/hwdefs"

// DefaultLength is the play length of a track whose length is unknown, in
// ms.
const DefaultLength = 150000

// TrackInfo describes a track. Times are in ms, -1 when unknown.
type TrackInfo struct {
	TrackCount int

	Length int
	Intro  int
	Loop   int
	Fade   int

	// PlayLength is the time after which a host should fade the track out.
	PlayLength int

	System    System
	Game      string
	Song      string
	Author    string
	Copyright string
	Comment   string
	Dumper    string
}

// TrackInfo returns the information about track n, from the file and the
// playlist.
func (p *Player) TrackInfo(n int) (TrackInfo, error) {
	if p.closed {
		return TrackInfo{}, ErrClosed
	}
	raw, err := p.remapTrack(n)
	if err != nil {
		return TrackInfo{}, err
	}

	ts := &p.info
	t := ts.Track(raw)
	ti := TrackInfo{
		TrackCount: p.TrackCount(),
		Length:     t.Length,
		Intro:      t.Intro,
		Loop:       t.Loop,
		Fade:       t.Fade,
		System:     ts.System,
		Game:       ts.Game,
		Song:       t.Name,
		Author:     ts.Author,
		Copyright:  ts.Copyright,
		Comment:    ts.Comment,
		Dumper:     ts.Dumper,
	}

	if pl := p.playlist; pl != nil {
		overlay(&ti.Game, pl.Info.Title)
		overlay(&ti.Author, pl.Info.Artist)
		overlay(&ti.Copyright, pl.Info.Copyright)
		overlay(&ti.Dumper, pl.Info.Ripping)

		e := pl.Entries[n]
		overlay(&ti.Song, e.Name)
		overlayTime(&ti.Length, e.Length)
		overlayTime(&ti.Intro, e.Intro)
		overlayTime(&ti.Loop, e.Loop)
		overlayTime(&ti.Fade, e.Fade)
	}

	ti.PlayLength = playLength(ti.Length, ti.Intro, ti.Loop)
	return ti, nil
}

func overlay(dst *string, s string) {
	if s = hwdefs.CleanText([]byte(s)); s != "" {
		*dst = s
	}
}

func overlayTime(dst *int, ms int) {
	if ms >= 0 {
		*dst = ms
	}
}

// playLength returns the length, or twice the loop after the intro, or
// DefaultLength.
func playLength(length, intro, loop int) int {
	switch {
	case length > 0:
		return length
	case loop > 0:
		return max(intro, 0) + 2*loop
	}
	return DefaultLength
}
