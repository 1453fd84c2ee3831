package emu

import "errors"

var (
	ErrFileType      = errors.New("emu: wrong file type")
	ErrNoTrack       = errors.New("emu: no track started")
	ErrSampleRateSet = errors.New("emu: sample rate already set")
	ErrNoSampleRate  = errors.New("emu: sample rate not set")
	ErrBadSampleRate = errors.New("emu: sample rate out of range")
	ErrBadTrack      = errors.New("emu: invalid track")
	ErrOddCount      = errors.New("emu: odd sample count")
	ErrClosed        = errors.New("emu: player closed")
)
