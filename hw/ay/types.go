package ay

//go:generate go tool stringer -type=Voice -linecomment

// Voice identifies one of the sound generators of a ZX Spectrum.
type Voice uint8

const (
	Wave1  Voice = iota // Wave 1
	Wave2               // Wave 2
	Wave3               // Wave 3
	Beeper              // Beeper
)

const NumVoices = 4
