// Package hwdefs holds the definitions shared by the emulated systems and the
// playback engine.
package hwdefs

import "strings"

//go:generate go tool stringer -type=System -linecomment

// System is the hardware a music file was made for.
type System uint8

const (
	NES      System = iota // Nintendo NES
	Spectrum               // ZX Spectrum
)

// IRQSource identifies the sound chip units that can raise an interrupt.
type IRQSource uint8

const (
	FrameCounter IRQSource = 1 << iota
	DMC

	numSources = 2
)

var irqSrcNames = [numSources]string{
	"fcnt",
	"dmc",
}

func (irq IRQSource) String() string {
	var names []string
	for i := range numSources {
		if irq&(1<<i) != 0 {
			names = append(names, irqSrcNames[i])
		}
	}
	return strings.Join(names, "|")
}

// TrackSet is the information found in the header of a music file.
type TrackSet struct {
	System System
	Count  int // number of tracks
	First  int // 0-based default track

	Game      string
	Author    string
	Copyright string
	Comment   string
	Dumper    string

	// Tracks holds per-track metadata, when the file has some. It may be
	// shorter than Count.
	Tracks []Track
}

// Track is the metadata of a single track. Times are in milliseconds, -1
// when unknown.
type Track struct {
	Name   string
	Length int
	Intro  int
	Loop   int
	Fade   int
}

// Unknown returns a Track with all times unknown.
func Unknown() Track {
	return Track{Length: -1, Intro: -1, Loop: -1, Fade: -1}
}

// Track returns the metadata of track n, or Unknown() if the file has none.
func (ts *TrackSet) Track(n int) Track {
	if n >= 0 && n < len(ts.Tracks) {
		return ts.Tracks[n]
	}
	return Unknown()
}
