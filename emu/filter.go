package emu

import "chipplay/emu/log"

// Times and counts are in stereo frames.
const (
	bufFrames        = 2048
	fadeBlock        = 512
	fadeShift        = 8 // fade ends with gain at 1/(1<<fadeShift)
	gainShift        = 14
	gainUnit         = 1 << gainShift
	silenceThreshold = 8

	// The fade never ends the track.
	indefinite = int(^uint(0) >> 1)
)

// source produces the frames the filter works on.
type source interface {
	// play fills out with len(out)/2 fresh frames.
	play(out []int16) error

	// skip advances the source by n frames. It calls back skipBlocks.
	skip(n int) error
}

type filterSetup struct {
	maxInitial int // frames of initial silence skipped by startTrack
	maxSilence int // frames of trailing silence ending the track
	lookahead  int
}

// trackFilter removes the silence at the start of a track, ends the track
// after a long silence, and fades the track out.
type trackFilter struct {
	src   source
	setup filterSetup
	buf   []int16

	ignoreSilence bool

	emuTime      int // frames produced by the source
	outTime      int // frames handed to the host
	silenceTime  int // emuTime at the end of the last non-silent frame
	silenceCount int // silent frames pending output
	bufRemain    int // frames of buf pending output

	fadeStart int
	fadeStep  int

	emuTrackEnded bool
	trackEnded    bool
	emuErr        error
}

func newTrackFilter(src source, setup filterSetup) *trackFilter {
	tf := &trackFilter{
		src:   src,
		setup: setup,
		buf:   make([]int16, bufFrames*2),
	}
	tf.stop()
	return tf
}

func (tf *trackFilter) clearTimeVars() {
	tf.emuTime = tf.bufRemain
	tf.outTime = 0
	tf.silenceTime = 0
	tf.silenceCount = 0
}

func (tf *trackFilter) stop() {
	tf.emuTrackEnded = true
	tf.trackEnded = true
	tf.fadeStart = indefinite
	tf.fadeStep = 1
	tf.bufRemain = 0
	tf.emuErr = nil
	tf.clearTimeVars()
}

// startTrack is called once the source is at the start of a track. Unless
// silence is ignored, it runs the source up to the first non-silent block.
func (tf *trackFilter) startTrack() error {
	tf.stop()
	tf.emuTrackEnded = false
	tf.trackEnded = false

	if !tf.ignoreSilence {
		for tf.emuTime < tf.setup.maxInitial {
			tf.fillBuf()
			if tf.bufRemain > 0 || tf.emuTrackEnded {
				break
			}
		}
		if tf.bufRemain == 0 && !tf.emuTrackEnded {
			log.ModTrack.DebugZ("initial silence").Int("frames", tf.emuTime).End()
		}
	}

	tf.clearTimeVars()
	return tf.emuErr
}

func (tf *trackFilter) endTrackIfError(err error) {
	if err != nil {
		tf.emuErr = err
		tf.emuTrackEnded = true
	}
}

func (tf *trackFilter) ended() bool { return tf.trackEnded }

func (tf *trackFilter) setFade(start, length int) {
	tf.fadeStart = start
	tf.fadeStep = max(1, length/(fadeBlock*fadeShift))
}

func (tf *trackFilter) fading() bool {
	return tf.fadeStart != indefinite && tf.outTime >= tf.fadeStart
}

// skip advances the output by count frames.
func (tf *trackFilter) skip(count int) error {
	tf.emuErr = nil
	tf.outTime += count

	// Consume pending silence and buffered frames first.
	n := min(count, tf.silenceCount)
	tf.silenceCount -= n
	count -= n

	n = min(count, tf.bufRemain)
	tf.bufRemain -= n
	count -= n

	if count > 0 && !tf.emuTrackEnded {
		tf.emuTime += count
		tf.silenceTime = tf.emuTime
		tf.endTrackIfError(tf.src.skip(count))
	}

	if tf.silenceCount == 0 && tf.bufRemain == 0 {
		// Caught up with the source.
		tf.trackEnded = tf.trackEnded || tf.emuTrackEnded
	}
	return tf.emuErr
}

// skipBlocks plays and discards count frames, a buffer at a time.
func (tf *trackFilter) skipBlocks(count int) error {
	for count > 0 && !tf.emuTrackEnded {
		n := min(count, bufFrames)
		count -= n
		if err := tf.src.play(tf.buf[:n*2]); err != nil {
			return err
		}
	}
	return nil
}

// intLog approximates unit / 2^(x/step).
func intLog(x, step, unit int) int {
	shift := x / step
	frac := (x - shift*step) * unit / step
	return ((unit - frac) + (frac >> 1)) >> shift
}

func (tf *trackFilter) handleFade(out []int16) {
	frames := len(out) / 2
	for i := 0; i < frames; i += fadeBlock {
		gain := intLog((tf.outTime+i-tf.fadeStart)/fadeBlock, tf.fadeStep, gainUnit)
		if gain < gainUnit>>fadeShift {
			tf.trackEnded = true
			tf.emuTrackEnded = true
		}

		end := min(i+fadeBlock, frames)
		for j := i * 2; j < end*2; j++ {
			out[j] = int16((int(out[j]) * gain) >> gainShift)
		}
	}
}

func (tf *trackFilter) emuPlay(out []int16) {
	tf.emuTime += len(out) / 2
	if !tf.emuTrackEnded {
		tf.endTrackIfError(tf.src.play(out))
	} else {
		clear(out)
	}
}

func silent(s int16) bool {
	return s > -silenceThreshold && s < silenceThreshold
}

// countSilence returns the number of silent frames at the end of buf.
func countSilence(buf []int16) int {
	i := len(buf)
	for i >= 2 && silent(buf[i-1]) && silent(buf[i-2]) {
		i -= 2
	}
	return (len(buf) - i) / 2
}

// fillBuf runs the source for a buffer, and keeps it unless it's silent.
func (tf *trackFilter) fillBuf() {
	if !tf.emuTrackEnded {
		tf.emuPlay(tf.buf)
		silence := countSilence(tf.buf)
		if silence < bufFrames {
			tf.silenceTime = tf.emuTime - silence
			tf.bufRemain = bufFrames
			return
		}
	}
	tf.silenceCount += bufFrames
}

// play fills out with len(out)/2 frames.
func (tf *trackFilter) play(out []int16) error {
	tf.emuErr = nil
	count := len(out) / 2
	if tf.trackEnded {
		clear(out)
		tf.outTime += count
		return nil
	}

	pos := 0
	if tf.silenceCount > 0 {
		if !tf.ignoreSilence {
			// During a run of silence, run the source ahead, looking for
			// the end of the silence.
			ahead := tf.setup.lookahead*(tf.outTime+count-tf.silenceTime) + tf.silenceTime
			for tf.emuTime < ahead && tf.bufRemain == 0 && !tf.emuTrackEnded {
				tf.fillBuf()
			}

			if tf.emuTime-tf.silenceTime > tf.setup.maxSilence {
				log.ModTrack.DebugZ("track ended by silence").
					Int("at", tf.silenceTime).
					End()
				tf.trackEnded = true
				tf.emuTrackEnded = true
				tf.silenceCount = count
				tf.bufRemain = 0
			}
		}

		pos = min(tf.silenceCount, count)
		clear(out[:pos*2])
		tf.silenceCount -= pos
	}

	if tf.bufRemain > 0 {
		n := min(tf.bufRemain, count-pos)
		start := bufFrames - tf.bufRemain
		copy(out[pos*2:(pos+n)*2], tf.buf[start*2:])
		tf.bufRemain -= n
		pos += n
	}

	if remain := count - pos; remain > 0 {
		fresh := out[pos*2:]
		tf.emuPlay(fresh)
		tf.trackEnded = tf.trackEnded || tf.emuTrackEnded

		if tf.ignoreSilence && !tf.fading() {
			tf.silenceTime = tf.emuTime
		} else {
			// Look for a new run of silence at the end.
			if silence := countSilence(fresh); silence < remain {
				tf.silenceTime = tf.emuTime - silence
			}
			if tf.emuTime-tf.silenceTime >= bufFrames {
				tf.fillBuf()
			}
		}
	}

	if tf.fading() {
		tf.handleFade(out)
	}
	tf.outTime += count
	return tf.emuErr
}
