package ay

// ampTable is the 4-bit logarithmic volume curve, about 1.5 dB per step,
// scaled to ampRange.
var ampTable = [16]uint8{0, 2, 3, 4, 6, 8, 11, 16, 23, 32, 45, 64, 90, 128, 180, 255}

const ampRange = 255

// Each of the 8 canonical envelope shapes is made of 3 segments of 16 steps.
// A segment is described by its start and end levels, 0 or 1. The last 2
// segments repeat for as long as the envelope runs.
var envShapes = [8][3][2]uint8{
	{{1, 0}, {1, 0}, {1, 0}}, // 8:  \\\\
	{{1, 0}, {0, 0}, {0, 0}}, // 9:  \___
	{{1, 0}, {0, 1}, {1, 0}}, // 10: \/\/
	{{1, 0}, {1, 1}, {1, 1}}, // 11: \~~~
	{{0, 1}, {0, 1}, {0, 1}}, // 12: ////
	{{0, 1}, {1, 1}, {1, 1}}, // 13: /~~~
	{{0, 1}, {1, 0}, {0, 1}}, // 14: /\/\
	{{0, 1}, {0, 0}, {0, 0}}, // 15: /___
}

const envLength = 48

// envWaves holds the amplitudes of each envelope shape.
var envWaves = func() (waves [8][envLength]uint8) {
	for m, segs := range envShapes {
		i := 0
		for _, seg := range segs {
			amp := int(seg[0]) * 15
			step := int(seg[1]) - int(seg[0])
			for range 16 {
				waves[m][i] = ampTable[amp]
				amp += step
				i++
			}
		}
	}
	return
}()

// envShape returns the wave index for a write of val to the shape register.
// Shapes 0-7 are equivalent to either 9 or 15.
func envShape(val uint8) int {
	val &= 0x0F
	if val&8 == 0 {
		if val&4 != 0 {
			val = 15
		} else {
			val = 9
		}
	}
	return int(val) - 8
}
