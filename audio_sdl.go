package main

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"chipplay/emu/log"
)

const (
	AudioFormat   = sdl.AUDIO_S16LSB
	AudioChannels = 2
)

// sdlSink queues audio to an SDL2 audio device.
type sdlSink struct {
	id       sdl.AudioDeviceID
	maxQueue uint32 // bytes
}

func newSDLSink(rate, bufferMsec int) (*sdlSink, error) {
	if err := sdl.InitSubSystem(sdl.INIT_AUDIO); err != nil {
		return nil, fmt.Errorf("sdl audio init: %w", err)
	}

	spec := &sdl.AudioSpec{
		Freq:     int32(rate),
		Format:   AudioFormat,
		Channels: AudioChannels,
		Samples:  2048,
	}
	var obtained sdl.AudioSpec
	id, err := sdl.OpenAudioDevice("", false, spec, &obtained, 0)
	if err != nil {
		sdl.QuitSubSystem(sdl.INIT_AUDIO)
		return nil, fmt.Errorf("sdl open audio device: %w", err)
	}

	log.ModOutput.InfoZ("sdl audio device").
		Int("rate", int(obtained.Freq)).
		Int("samples", int(obtained.Samples)).
		End()

	sdl.PauseAudioDevice(id, false)
	return &sdlSink{
		id:       id,
		maxQueue: uint32(rate * bufferMsec / 1000 * AudioChannels * 2),
	}, nil
}

// Write queues buf, then waits for the device queue to drain below the
// buffer size.
func (s *sdlSink) Write(buf []int16) error {
	if len(buf) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&buf[0])), len(buf)*2)
	if err := sdl.QueueAudio(s.id, b); err != nil {
		return fmt.Errorf("sdl queue audio: %w", err)
	}
	for sdl.GetQueuedAudioSize(s.id) > s.maxQueue {
		time.Sleep(5 * time.Millisecond)
	}
	return nil
}

func (s *sdlSink) Close() error {
	sdl.CloseAudioDevice(s.id)
	sdl.QuitSubSystem(sdl.INIT_AUDIO)
	return nil
}
