package apu

//go:generate go tool stringer -type=Voice -linecomment

// Voice identifies one of the APU sound generators.
type Voice uint8

const (
	Square1  Voice = iota // Square 1
	Square2               // Square 2
	Triangle              // Triangle
	Noise                 // Noise
	DMC                   // DMC
)

const NumVoices = 5

// Reader returns the byte at addr in CPU memory. The DMC fetches its samples
// through it.
type Reader func(addr uint16) uint8

type frameType uint8

const (
	noFrame frameType = iota
	quarterFrame
	halfFrame
)
