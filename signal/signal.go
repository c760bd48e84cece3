// Package signal turns raw microphone amplitude samples into a smoothed,
// noise-gated volume suitable for driving the waveform display.
package signal

import "time"

const (
	floorAdaptKeep = 0.98
	floorAdaptGain = 0.02
	floorCeiling   = 1.5 // samples above floor*1.5 don't pull the floor up
	gateRatio      = 1.3
	gateBias       = 0.0025
	signalGain     = 4.0
	smoothFactor   = 0.2
)

// Processor tracks an adaptive noise floor and produces a gated,
// exponentially smoothed volume in [0,1]. It is not goroutine-safe;
// the owner feeds samples and ticks from a single loop.
type Processor struct {
	current      float64
	target       float64
	noiseFloor   float64
	seeded       bool
	lastSampleAt time.Time
}

func New() *Processor {
	return &Processor{}
}

// Reset clears all state. Called whenever a recording starts so the
// floor re-seeds from the new session's ambient level.
func (p *Processor) Reset() {
	*p = Processor{}
}

// Ingest updates the gated target volume from a raw RMS sample.
func (p *Processor) Ingest(rms float64) {
	if !p.seeded {
		p.noiseFloor = rms
		p.seeded = true
	} else if rms < p.noiseFloor*floorCeiling {
		// Only adapt when near the floor, so loud speech can't drag it up.
		p.noiseFloor = p.noiseFloor*floorAdaptKeep + rms*floorAdaptGain
	}

	gate := p.noiseFloor*gateRatio + gateBias
	sig := rms - gate
	if sig < 0 {
		sig = 0
	}
	p.target = sig * signalGain
	if p.target > 1 {
		p.target = 1
	}
	p.lastSampleAt = time.Now()
}

// Tick advances the smoothed volume one render frame toward the target
// and returns the new value.
func (p *Processor) Tick() float64 {
	p.current += (p.target - p.current) * smoothFactor
	return p.current
}

// Current returns the smoothed volume without advancing it.
func (p *Processor) Current() float64 { return p.current }

// Target returns the latest gated input, mainly for the silence monitor:
// a non-zero target means the sample cleared the noise gate.
func (p *Processor) Target() float64 { return p.target }

// NoiseFloor reports the tracked ambient level.
func (p *Processor) NoiseFloor() float64 { return p.noiseFloor }
