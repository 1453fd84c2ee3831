package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"golang.org/x/sync/errgroup"

	"chipplay/emu/log"
)

const renderFrames = 4096

func runRender(args Render, cfg Config) error {
	if !args.All {
		return renderTrack(args.Path, args.Track-1, args.Out, args.Seconds, &cfg)
	}

	p, err := openPlayer(args.Path, &cfg)
	if err != nil {
		return err
	}
	count := p.TrackCount()
	p.Close()

	// One player per track.
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i := range count {
		g.Go(func() error {
			return renderTrack(args.Path, i, numberedPath(args.Out, i+1), args.Seconds, &cfg)
		})
	}
	return g.Wait()
}

// numberedPath inserts the track number n before the extension of path.
func numberedPath(path string, n int) string {
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s-%02d%s", strings.TrimSuffix(path, ext), n, ext)
}

// renderTrack renders a track into a 16-bit stereo WAV file, up to the end
// of its fade or for at most seconds.
func renderTrack(path string, track int, out string, seconds int, cfg *Config) error {
	p, err := openPlayer(path, cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	if _, err := startTrack(p, track, cfg); err != nil {
		return fmt.Errorf("track %d: %w", track+1, err)
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	rate := p.SampleRate()
	enc := wav.NewEncoder(f, rate, 16, AudioChannels, 1)

	limit := seconds * rate
	buf := make([]int16, renderFrames*2)
	ibuf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: AudioChannels, SampleRate: rate},
		SourceBitDepth: 16,
		Data:           make([]int, len(buf)),
	}

	total := 0
	for !p.TrackEnded() && (limit == 0 || total < limit) {
		n := renderFrames
		if limit > 0 {
			n = min(n, limit-total)
		}
		if err := p.Play(buf[:n*2]); err != nil {
			return err
		}
		ibuf.Data = ibuf.Data[:n*2]
		for i, s := range buf[:n*2] {
			ibuf.Data[i] = int(s)
		}
		if err := enc.Write(ibuf); err != nil {
			return fmt.Errorf("%s: %w", out, err)
		}
		total += n
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("%s: %w", out, err)
	}

	if w := p.Warning(); w != "" {
		log.ModEmu.WarnZ(w).String("file", out).End()
	}
	log.ModOutput.InfoZ("rendered").
		String("file", out).
		Int("track", track+1).
		Int("frames", total).
		End()
	return f.Close()
}
