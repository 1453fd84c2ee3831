package emu

import "testing"

func TestIntLog(t *testing.T) {
	tcs := []struct {
		x, step, want int
	}{
		{0, 4, gainUnit},
		{2, 4, gainUnit * 3 / 4},
		{4, 4, gainUnit / 2},
		{8, 4, gainUnit / 4},
		{21 * 8, 21, gainUnit >> 8},
	}
	for _, tc := range tcs {
		if got := intLog(tc.x, tc.step, gainUnit); got != tc.want {
			t.Errorf("intLog(%d, %d) = %d, want %d", tc.x, tc.step, got, tc.want)
		}
	}
}

func TestCountSilence(t *testing.T) {
	tcs := []struct {
		buf  []int16
		want int
	}{
		{nil, 0},
		{[]int16{0, 0, 0, 0}, 2},
		{[]int16{100, 0, 7, -7}, 1},
		{[]int16{0, 0, 8, 0}, 0},
		{[]int16{-8, 0, 1, 1, 0, 0}, 2},
	}
	for _, tc := range tcs {
		if got := countSilence(tc.buf); got != tc.want {
			t.Errorf("countSilence(%v) = %d, want %d", tc.buf, got, tc.want)
		}
	}
}

func TestPlayLength(t *testing.T) {
	tcs := []struct {
		length, intro, loop int
		want                int
	}{
		{60000, -1, -1, 60000},
		{60000, 1000, 2000, 60000},
		{-1, 5000, 10000, 25000},
		{-1, -1, 10000, 20000},
		{0, -1, -1, DefaultLength},
		{-1, -1, -1, DefaultLength},
	}
	for _, tc := range tcs {
		if got := playLength(tc.length, tc.intro, tc.loop); got != tc.want {
			t.Errorf("playLength(%d, %d, %d) = %d, want %d", tc.length, tc.intro, tc.loop, got, tc.want)
		}
	}
}

// toneSource produces a constant level from frame start to frame end.
type toneSource struct {
	start, end int
	pos        int
	skipped    int
}

func (s *toneSource) play(out []int16) error {
	for i := 0; i < len(out); i += 2 {
		var v int16
		if s.pos >= s.start && s.pos < s.end {
			v = 1000
		}
		out[i], out[i+1] = v, v
		s.pos++
	}
	return nil
}

func (s *toneSource) skip(n int) error {
	s.skipped += n
	s.pos += n
	return nil
}

func TestFilterTrailingSilence(t *testing.T) {
	src := &toneSource{end: 10000}
	tf := newTrackFilter(src, filterSetup{maxInitial: 50000, maxSilence: 20000, lookahead: 1})
	if err := tf.startTrack(); err != nil {
		t.Fatal(err)
	}

	buf := make([]int16, 1000*2)
	for range 100 {
		if err := tf.play(buf); err != nil {
			t.Fatal(err)
		}
		if tf.ended() {
			break
		}
	}
	if !tf.ended() {
		t.Fatalf("track not ended after %d frames", tf.outTime)
	}
	if tf.outTime <= src.end {
		t.Errorf("track ended at frame %d, during the tone", tf.outTime)
	}
}

func TestFilterInitialSilence(t *testing.T) {
	src := &toneSource{start: 30000, end: 1 << 30}
	tf := newTrackFilter(src, filterSetup{maxInitial: 100000, maxSilence: 100000, lookahead: 1})
	if err := tf.startTrack(); err != nil {
		t.Fatal(err)
	}

	// The source is run up to the buffer holding the tone.
	if src.pos < src.start {
		t.Errorf("source at %d after startTrack, want past %d", src.pos, src.start)
	}
	if tf.outTime != 0 || tf.bufRemain != bufFrames {
		t.Errorf("outTime = %d, buffered %d; want 0, %d", tf.outTime, tf.bufRemain, bufFrames)
	}

	buf := make([]int16, bufFrames*2)
	if err := tf.play(buf); err != nil {
		t.Fatal(err)
	}
	if i := firstSound(buf); i < 0 {
		t.Errorf("tone not found in the first buffer")
	}
}

func TestFilterSkip(t *testing.T) {
	src := &toneSource{end: 1 << 30}
	tf := newTrackFilter(src, filterSetup{maxInitial: 1000, maxSilence: 1000, lookahead: 1})
	if err := tf.startTrack(); err != nil {
		t.Fatal(err)
	}

	// The buffered frames are consumed first.
	if err := tf.skip(100); err != nil {
		t.Fatal(err)
	}
	if src.skipped != 0 || tf.bufRemain != bufFrames-100 {
		t.Errorf("skipped %d, buffered %d; want 0, %d", src.skipped, tf.bufRemain, bufFrames-100)
	}

	if err := tf.skip(bufFrames); err != nil {
		t.Fatal(err)
	}
	if src.skipped != 100 || tf.outTime != bufFrames+100 {
		t.Errorf("skipped %d, outTime %d; want 100, %d", src.skipped, tf.outTime, bufFrames+100)
	}
}

func TestEqualizer(t *testing.T) {
	const rate = 44100

	t.Run("disabled", func(t *testing.T) {
		var f eqFilter
		f.setup(Equalizer{}, rate)
		buf := []int16{1000, -1000, 5, 32767}
		f.apply(buf)
		if buf[0] != 1000 || buf[1] != -1000 || buf[2] != 5 || buf[3] != 32767 {
			t.Errorf("disabled equalizer changed the samples: %v", buf)
		}
	})

	t.Run("bass", func(t *testing.T) {
		var f eqFilter
		f.setup(Equalizer{Bass: 80}, rate)
		buf := make([]int16, rate*2)
		for i := range buf {
			buf[i] = 10000
		}
		f.apply(buf)
		if buf[0] < 9000 {
			t.Errorf("first sample = %d, want about 10000", buf[0])
		}
		if got := peak(buf[len(buf)-100:]); got >= silenceThreshold {
			t.Errorf("DC not removed: %d", got)
		}
	})

	t.Run("treble", func(t *testing.T) {
		var f eqFilter
		f.setup(Equalizer{Treble: -20, TrebleFreq: DefaultTrebleFreq}, rate)

		// Nyquist frequency, on both channels.
		buf := make([]int16, 2000)
		for i := range buf {
			buf[i] = 10000
			if i/2%2 == 1 {
				buf[i] = -10000
			}
		}
		f.apply(buf)
		if got := peak(buf[len(buf)-100:]); got > 5000 {
			t.Errorf("high frequencies not cut: peak %d", got)
		}

		// DC goes through.
		f.reset()
		for i := range buf {
			buf[i] = 10000
		}
		f.apply(buf)
		if got := buf[len(buf)-1]; got < 9990 {
			t.Errorf("DC level = %d, want 10000", got)
		}
	})
}
