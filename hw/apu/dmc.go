package apu

import (
	"chipplay/emu/log"
	"chipplay/hw/snapshot"
)

// The dmcChannel (Delta Modulation Channel) outputs samples composed of 1-bit
// deltas, its DAC can also be directly changed. It contains the following:
// memory reader, interrupt flag, sample buffer, Timer, output unit, 7-bit
// counter tied to 7-bit DAC.
//
//	+----------+    +---------+
//	|  Reader  |    |  Timer  |
//	+----------+    +---------+
//	     |               |
//	     |               v
//	+----------+    +---------+     +---------+     +---------+
//	|  Buffer  |----| Output  |---->| Counter |---->|   DAC   |
//	+----------+    +---------+     +---------+     +---------+
type dmcChannel struct {
	timer   timer
	read    Reader
	periods *[16]uint16

	sampleAddr uint16
	sampleLen  uint16
	outlvl     uint8
	irqEnabled bool
	loop       bool
	irqFlag    bool

	curaddr   uint16
	remaining uint16
	readbuf   uint8
	bufEmpty  bool

	shiftReg uint8
	bitsLeft uint8
	silence  bool
}

var dmcPeriodLUT = [2][16]uint16{
	{428, 380, 340, 320, 286, 254, 226, 214, 190, 160, 142, 128, 106, 84, 72, 54},
	{398, 354, 316, 298, 276, 236, 210, 198, 176, 148, 132, 118, 98, 78, 66, 50},
}

// dmcDAC maps the 7-bit counter to the output level of the real DAC, which
// compresses at high levels.
var dmcDAC = [128]int{
	0, 24, 48, 71, 94, 118, 141, 163, 186, 209, 231, 253, 275, 297, 319, 340,
	361, 383, 404, 425, 445, 466, 486, 507, 527, 547, 567, 587, 606, 626, 645, 664,
	683, 702, 721, 740, 758, 777, 795, 813, 832, 850, 867, 885, 903, 920, 938, 955,
	972, 989, 1006, 1023, 1040, 1056, 1073, 1089, 1105, 1122, 1138, 1154, 1170, 1185, 1201, 1217,
	1232, 1248, 1263, 1278, 1293, 1308, 1323, 1338, 1353, 1368, 1382, 1397, 1411, 1425, 1440, 1454,
	1468, 1482, 1496, 1510, 1523, 1537, 1551, 1564, 1578, 1591, 1604, 1618, 1631, 1644, 1657, 1670,
	1683, 1695, 1708, 1721, 1733, 1746, 1758, 1771, 1783, 1795, 1807, 1819, 1831, 1843, 1855, 1867,
	1879, 1890, 1902, 1914, 1925, 1937, 1948, 1959, 1971, 1982, 1993, 2004, 2015, 2026, 2037, 2048,
}

func (dc *dmcChannel) write(reg uint16, val uint8) {
	switch reg {
	case 0:
		// IRQ can only be enabled if loop is disabled.
		dc.irqEnabled = val&0xC0 == 0x80
		dc.loop = val&0x40 == 0x40
		dc.timer.period = int(dc.periods[val&0x0F]) - 1
		if !dc.irqEnabled {
			dc.irqFlag = false
		}

		log.ModSound.DebugZ("write dmc flags").
			Hex8("val", val).
			Bool("irq", dc.irqEnabled).
			Bool("loop", dc.loop).
			End()

	case 1:
		// $4011 applies new output right away, not on the timer's reload.
		dc.outlvl = val & 0x7F
		dc.timer.addOutput(dmcDAC[dc.outlvl])

		log.ModSound.DebugZ("write dmc load").
			Uint8("lvl", dc.outlvl).
			End()

	case 2:
		// Sample starts at address $C000 + $40*$xx
		dc.sampleAddr = 0xC000 | uint16(val)<<6

	case 3:
		// Sample length is $10*$xx + 1 bytes
		dc.sampleLen = uint16(val)<<4 | 0x1
	}
}

func (dc *dmcChannel) initSample() {
	dc.curaddr = dc.sampleAddr
	dc.remaining = dc.sampleLen
}

// fillBuffer fetches the next sample byte, if the buffer is empty and bytes
// remain.
func (dc *dmcChannel) fillBuffer() {
	if !dc.bufEmpty || dc.remaining == 0 {
		return
	}
	dc.readbuf = 0
	if dc.read != nil {
		dc.readbuf = dc.read(dc.curaddr)
	}
	dc.bufEmpty = false

	// Address wraps around to $8000, not $0000.
	dc.curaddr++
	if dc.curaddr == 0 {
		dc.curaddr = 0x8000
	}

	dc.remaining--
	if dc.remaining == 0 {
		if dc.loop {
			dc.initSample()
		} else if dc.irqEnabled {
			dc.irqFlag = true
		}
	}
}

func (dc *dmcChannel) run(targetCycle int) {
	for dc.timer.run(targetCycle) {
		if !dc.silence {
			if dc.shiftReg&0x01 != 0 {
				if dc.outlvl <= 125 {
					dc.outlvl += 2
				}
			} else if dc.outlvl >= 2 {
				dc.outlvl -= 2
			}
			dc.shiftReg >>= 1
		}

		dc.bitsLeft--
		if dc.bitsLeft == 0 {
			dc.bitsLeft = 8
			if dc.bufEmpty {
				dc.silence = true
			} else {
				dc.silence = false
				dc.shiftReg = dc.readbuf
				dc.bufEmpty = true
				dc.fillBuffer()
			}
		}

		dc.timer.addOutput(dmcDAC[dc.outlvl])
	}
}

func (dc *dmcChannel) status() bool {
	return dc.remaining > 0
}

func (dc *dmcChannel) setEnabled(enabled bool) {
	if !enabled {
		dc.remaining = 0
		return
	}
	if dc.remaining == 0 {
		dc.initSample()
		dc.fillBuffer()
	}
}

func (dc *dmcChannel) reset(pal bool, initialDMC int) {
	dc.timer.reset()
	dc.periods = &dmcPeriodLUT[0]
	if pal {
		dc.periods = &dmcPeriodLUT[1]
	}

	dc.sampleAddr = 0xC000
	dc.sampleLen = 1
	dc.irqEnabled = false
	dc.loop = false
	dc.irqFlag = false

	dc.curaddr = 0
	dc.remaining = 0
	dc.readbuf = 0
	dc.bufEmpty = true

	dc.shiftReg = 0
	dc.bitsLeft = 8
	dc.silence = true

	dc.timer.period = int(dc.periods[0]) - 1
	dc.outlvl = uint8(initialDMC) & 0x7F

	// The initial level is where the output starts, not a step.
	dc.timer.lastOutput = dmcDAC[dc.outlvl]
}

func (dc *dmcChannel) saveState(state *snapshot.APUDMC) {
	dc.timer.saveState(&state.Timer)
	state.SampleAddr = dc.sampleAddr
	state.SampleLen = dc.sampleLen
	state.CurrentAddr = dc.curaddr
	state.Remaining = dc.remaining
	state.OutputLevel = dc.outlvl
	state.ReadBuf = dc.readbuf
	state.BitsLeft = dc.bitsLeft
	state.ShiftReg = dc.shiftReg
	state.IRQEnabled = dc.irqEnabled
	state.Loop = dc.loop
	state.BufEmpty = dc.bufEmpty
	state.Silence = dc.silence
	state.IRQFlag = dc.irqFlag
}
