package ay

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"chipplay/hw/audio"
)

const spectrumClock = 3546900

func TestEnvShape(t *testing.T) {
	tests := []struct {
		val  uint8
		want int
	}{
		{0x00, 1}, {0x03, 1}, // \___
		{0x04, 7}, {0x07, 7}, // /___
		{0x08, 0}, {0x0A, 2}, {0x0C, 4}, {0x0F, 7},
		{0xF9, 1},
	}
	for _, tt := range tests {
		if got := envShape(tt.val); got != tt.want {
			t.Errorf("envShape(%#02x) = %d, want %d", tt.val, got, tt.want)
		}
	}
}

func TestEnvWaves(t *testing.T) {
	tests := []struct {
		shape int
		pos   int
		want  uint8
	}{
		{0, 0, 255}, {0, 15, 0}, {0, 16, 255}, {0, 47, 0},
		{1, 0, 255}, {1, 15, 0}, {1, 16, 0}, {1, 47, 0},
		{2, 16, 0}, {2, 31, 255}, {2, 32, 255},
		{5, 0, 0}, {5, 15, 255}, {5, 40, 255},
		{7, 15, 255}, {7, 16, 0},
	}
	for _, tt := range tests {
		if got := envWaves[tt.shape][tt.pos]; got != tt.want {
			t.Errorf("envWaves[%d][%d] = %d, want %d", tt.shape, tt.pos, got, tt.want)
		}
	}
}

func TestReset(t *testing.T) {
	a := New(spectrumClock)
	a.WriteReg(0, 7, 0x00)
	a.WriteReg(0, 8, 0x0F)
	a.EndFrame(1000)
	a.Reset()

	a.SelectReg(7)
	if got := a.Read(); got != 0x3F {
		t.Errorf("reg 7 = %#02x after reset, want 0x3f", got)
	}
	if a.noiseLFSR != 1 {
		t.Errorf("noise LFSR = %#x, want 1", a.noiseLFSR)
	}
	if a.inaudible != 108 {
		t.Errorf("inaudible period = %d, want 108", a.inaudible)
	}
}

func TestReadMasks(t *testing.T) {
	a := New(spectrumClock)
	for reg := uint8(0); reg < NumRegs; reg++ {
		a.SelectReg(reg)
		a.Write(0, 0xFF)
		if got := a.Read(); got != readMasks[reg] {
			t.Errorf("reg %d = %#02x, want %#02x", reg, got, readMasks[reg])
		}
	}
}

func newTestMixer() *audio.Mixer {
	m := audio.NewMixer(44100, 100, 1.0)
	m.SetClockRate(spectrumClock)
	return m
}

func peak(m *audio.Mixer, frames int) int {
	out := make([]int16, 2*frames)
	m.ReadSamples(out)
	p := 0
	for _, s := range out {
		p = max(p, int(s), -int(s))
	}
	return p
}

func TestToneOutput(t *testing.T) {
	m := newTestMixer()
	o := m.NewOutput()
	o.SetVolume(VoiceVolume)

	a := New(spectrumClock)
	a.SetOutput(Wave1, o)
	a.WriteReg(0, 7, 0xFE)
	a.WriteReg(0, 8, 0x0F)
	a.WriteReg(0, 0, 0xFE)
	a.WriteReg(0, 1, 0x00)

	clocks := m.ClocksNeeded(2000)
	a.EndFrame(clocks)
	m.EndFrame(clocks)

	if p := peak(m, 2000); p == 0 {
		t.Fatalf("output is silent")
	}
	if amp := a.tones[0].lastAmp; amp != 0 && amp != 127 {
		t.Errorf("tone amplitude = %d, want 0 or 127", amp)
	}
	if a.tones[1].lastAmp != 0 || a.tones[2].lastAmp != 0 {
		t.Errorf("disabled tones are not silent")
	}
}

func TestInaudibleTone(t *testing.T) {
	a := New(spectrumClock)
	a.WriteReg(0, 7, 0xFE)
	a.WriteReg(0, 8, 0x0F)
	a.WriteReg(0, 0, 0x01)

	for _, until := range []int{100, 1000, 10000} {
		a.run(until)
		if got := a.tones[0].lastAmp; got != 63 {
			t.Fatalf("time %d: amplitude = %d, want a constant 63", until, got)
		}
	}
}

func TestNoiseLFSR(t *testing.T) {
	a := New(spectrumClock)
	a.run(noisePeriodFactor)
	if a.noiseLFSR != 0x12000 {
		t.Errorf("noise LFSR = %#x, want 0x12000", a.noiseLFSR)
	}
	a.run(2 * noisePeriodFactor)
	if a.noiseLFSR != 0x9000 {
		t.Errorf("noise LFSR = %#x, want 0x9000", a.noiseLFSR)
	}
}

func TestEnvelopeStep(t *testing.T) {
	a := New(spectrumClock)
	a.WriteReg(0, 11, 0x01)
	a.WriteReg(0, 12, 0x00)
	a.WriteReg(0, 13, 0x0C)

	tests := []struct {
		time int
		want int
	}{
		{0, 0},
		{32, 2},
		{64, 3},
		{15 * 32, 255},
		{16 * 32, 0},
	}
	for _, tt := range tests {
		a.run(tt.time)
		if got := a.envLevel(); got != tt.want {
			t.Errorf("time %d: envelope level = %d, want %d", tt.time, got, tt.want)
		}
	}
}

func TestBeeper(t *testing.T) {
	m := newTestMixer()
	o := m.NewOutput()
	o.SetVolume(VoiceVolume)

	a := New(spectrumClock)
	a.SetOutput(Beeper, o)

	clocks := m.ClocksNeeded(1000)
	for time := 0; time < clocks; time += 2000 {
		a.SetBeeper(time, time/2000%2 == 0)
	}
	a.EndFrame(clocks)
	m.EndFrame(clocks)

	if p := peak(m, 1000); p == 0 {
		t.Errorf("beeper is silent")
	}
}

func playSequence(a *AY) {
	a.WriteReg(0, 7, 0xF0)
	a.WriteReg(10, 0, 0x40)
	a.WriteReg(20, 2, 0x80)
	a.WriteReg(30, 4, 0x23)
	a.WriteReg(40, 6, 0x05)
	a.WriteReg(50, 8, 0x0F)
	a.WriteReg(60, 9, 0x10)
	a.WriteReg(70, 11, 0x20)
	a.WriteReg(80, 13, 0x0E)
	a.SetBeeper(90, true)
	a.EndFrame(70908)
}

func TestResetReplay(t *testing.T) {
	a := New(spectrumClock)
	playSequence(a)
	saved := a.State()

	a.WriteReg(100, 10, 0x0C)
	a.EndFrame(70908)
	if cmp.Diff(saved, a.State()) == "" {
		t.Fatal("state did not change")
	}

	a.Reset()
	playSequence(a)
	if diff := cmp.Diff(saved, a.State()); diff != "" {
		t.Errorf("state mismatch after reset and replay (-want +got):\n%s", diff)
	}
}

func TestVoiceString(t *testing.T) {
	want := []string{"Wave 1", "Wave 2", "Wave 3", "Beeper"}
	for v := Voice(0); v < NumVoices; v++ {
		if got := v.String(); got != want[v] {
			t.Errorf("Voice(%d).String() = %q, want %q", v, got, want[v])
		}
	}
}
