package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"golang.org/x/term"

	"chipplay/emu"
	"chipplay/emu/log"
)

// A sink outputs interleaved stereo frames.
type sink interface {
	// Write outputs buf, blocking while the device buffer is full.
	Write(buf []int16) error
	io.Closer
}

func openSink(backend string, rate, bufferMsec int) (sink, error) {
	switch backend {
	case "sdl":
		return newSDLSink(rate, bufferMsec)
	case "oto":
		return newOtoSink(rate, bufferMsec)
	}
	return nil, fmt.Errorf("unknown audio backend %q", backend)
}

const playFrames = 1024

// A session plays the tracks of a file, reacting to the keys typed.
type session struct {
	p    *emu.Player
	out  sink
	cfg  *Config
	keys <-chan byte
	msg  io.Writer

	track int
	buf   []int16
}

func runPlay(ctx context.Context, args Play, cfg Config) error {
	if args.Tempo != 0 {
		cfg.Playback.Tempo = args.Tempo
	}
	if args.Backend != "" {
		cfg.Output.Backend = args.Backend
	}

	p, err := openPlayer(args.Path, &cfg)
	if err != nil {
		return err
	}
	defer p.Close()
	p.MuteVoices(args.Mute)

	out, err := openSink(cfg.Output.Backend, cfg.Playback.SampleRate, cfg.Output.BufferMsec)
	if err != nil {
		return err
	}
	defer out.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	keys, restore := readKeys()
	defer restore()

	s := &session{
		p:     p,
		out:   out,
		cfg:   &cfg,
		keys:  keys,
		msg:   os.Stderr,
		track: args.Track - 1,
		buf:   make([]int16, playFrames*2),
	}
	return s.run(ctx)
}

// readKeys puts the terminal in raw mode, and returns the keys typed on
// stdin. Without a terminal, the channel is nil.
func readKeys() (<-chan byte, func()) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, func() {}
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		log.ModOutput.WarnZ("can't set terminal raw mode").Error("err", err).End()
		return nil, func() {}
	}

	keys := make(chan byte)
	go func() {
		var b [1]byte
		for {
			if _, err := os.Stdin.Read(b[:]); err != nil {
				return
			}
			keys <- b[0]
		}
	}()
	return keys, func() { term.Restore(fd, state) }
}

func (s *session) printf(format string, args ...any) {
	// \r\n since the terminal may be in raw mode.
	fmt.Fprintf(s.msg, format+"\r\n", args...)
}

func (s *session) start() error {
	info, err := startTrack(s.p, s.track, s.cfg)
	if err != nil {
		return err
	}

	title := info.Song
	if title == "" {
		title = fmt.Sprintf("Track %d", s.track+1)
	}
	s.printf("%d/%d: %s (%s)", s.track+1, info.TrackCount, title, fmtTime(info.PlayLength))
	if w := s.p.Warning(); w != "" {
		s.printf("warning: %s", w)
	}
	return nil
}

func (s *session) run(ctx context.Context) error {
	if err := s.start(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case k := <-s.keys:
			quit, err := s.key(k)
			if quit || err != nil {
				return err
			}
		default:
		}

		if s.p.TrackEnded() {
			if s.track+1 >= s.p.TrackCount() {
				return nil
			}
			s.track++
			if err := s.start(); err != nil {
				return err
			}
		}

		if err := s.p.Play(s.buf); err != nil {
			return err
		}
		if err := s.out.Write(s.buf); err != nil {
			return err
		}
	}
}

// key handles key k. It reports whether playback must stop.
func (s *session) key(k byte) (bool, error) {
	switch k {
	case 'q', 0x03: // q, ctrl-c
		return true, nil
	case 'n':
		if s.track+1 < s.p.TrackCount() {
			s.track++
			return false, s.start()
		}
	case 'p':
		if s.track > 0 {
			s.track--
		}
		return false, s.start()
	case '+':
		s.p.SetTempo(s.p.Tempo() + 0.1)
		s.printf("tempo %.1f", s.p.Tempo())
	case '-':
		s.p.SetTempo(s.p.Tempo() - 0.1)
		s.printf("tempo %.1f", s.p.Tempo())
	case '1', '2', '3', '4', '5', '6', '7', '8':
		v := int(k - '1')
		if v < s.p.VoiceCount() {
			mute := s.p.MuteMask()&(1<<v) == 0
			s.p.MuteVoice(v, mute)
			state := "on"
			if mute {
				state = "muted"
			}
			s.printf("%s %s", s.p.VoiceNames()[v], state)
		}
	}
	return false, nil
}

// fmtTime formats ms as m:ss.
func fmtTime(ms int) string {
	if ms < 0 {
		return "?"
	}
	sec := ms / 1000
	return fmt.Sprintf("%d:%02d", sec/60, sec%60)
}
