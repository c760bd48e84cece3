// Package beep plays short confirmation tones around recording events.
package beep

import "math"

var disabled bool

// Disable silences all cues; used by headless test mode.
func Disable() { disabled = true }

// Init pre-warms the output path so the first cue plays without the
// connect latency. Safe to skip; cues degrade to a late first beep.
func Init() {
	if disabled {
		return
	}
	play(make([]int16, sampleRate/100))
}

const (
	sampleRate = 44100

	startFreq   = 1100.0
	startVolume = 0.4
	startDecay  = 55.0

	stopFreq   = 850.0
	stopVolume = 0.4
	stopDecay  = 40.0

	errorFreq   = 330.0
	errorVolume = 0.5
	errorDecay  = 30.0
)

func tone(freq, duration, volume, decay float64) []int16 {
	n := int(sampleRate * duration)
	samples := make([]int16, n)
	for i := range samples {
		t := float64(i) / sampleRate
		envelope := math.Exp(-t * decay)
		samples[i] = int16(math.Sin(2*math.Pi*freq*t) * 32767 * volume * envelope)
	}
	return samples
}

func doubleTone(freq, beepDur, gapDur, volume, decay float64) []int16 {
	b := tone(freq, beepDur, volume, decay)
	gap := make([]int16, int(sampleRate*gapDur))
	out := make([]int16, 0, len(b)*2+len(gap))
	out = append(out, b...)
	out = append(out, gap...)
	out = append(out, b...)
	return out
}

func PlayStart() {
	if disabled {
		return
	}
	go play(tone(startFreq, 0.12, startVolume, startDecay))
}

func PlayStop() {
	if disabled {
		return
	}
	go play(tone(stopFreq, 0.15, stopVolume, stopDecay))
}

func PlayError() {
	if disabled {
		return
	}
	go play(doubleTone(errorFreq, 0.08, 0.05, errorVolume, errorDecay))
}
