package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/ebitengine/oto/v3"

	"chipplay/emu/log"
)

// otoSink feeds an oto player through a pipe: oto pulls the bytes written
// by Write from its own goroutine.
type otoSink struct {
	ctx    *oto.Context
	player *oto.Player
	pw     *io.PipeWriter
	bytes  []byte
}

func newOtoSink(rate, bufferMsec int) (*otoSink, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: AudioChannels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   time.Duration(bufferMsec) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("oto context: %w", err)
	}
	<-ready

	pr, pw := io.Pipe()
	player := ctx.NewPlayer(pr)
	player.Play()

	log.ModOutput.InfoZ("oto audio context").Int("rate", rate).End()
	return &otoSink{ctx: ctx, player: player, pw: pw}, nil
}

// Write blocks until oto has read buf.
func (s *otoSink) Write(buf []int16) error {
	s.bytes = s.bytes[:0]
	for _, v := range buf {
		s.bytes = binary.LittleEndian.AppendUint16(s.bytes, uint16(v))
	}
	_, err := s.pw.Write(s.bytes)
	return err
}

func (s *otoSink) Close() error {
	s.pw.Close()
	return s.player.Close()
}
