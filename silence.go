package main

import "time"

const (
	silenceTickInterval = 100 * time.Millisecond
	silenceWarnAfter    = 8 * time.Second
	silenceRewarnAfter  = 15 * time.Second
)

type silenceEvent int

const (
	silenceNone silenceEvent = iota
	silenceWarn
	silenceClear
)

// silenceMonitor nags when a recording runs on without any gated voice
// activity. First warning fires after silenceWarnAfter of continuous
// silence, repeats every silenceRewarnAfter, and clears as soon as
// voice is heard again.
type silenceMonitor struct {
	silentFor time.Duration
	warned    bool
}

func newSilenceMonitor() *silenceMonitor {
	return &silenceMonitor{}
}

func (s *silenceMonitor) Reset() {
	s.silentFor = 0
	s.warned = false
}

// Tick advances the monitor by one tick interval. voice reports whether
// the current level clears the noise gate.
func (s *silenceMonitor) Tick(voice bool) silenceEvent {
	if voice {
		s.silentFor = 0
		if s.warned {
			s.warned = false
			return silenceClear
		}
		return silenceNone
	}

	s.silentFor += silenceTickInterval
	threshold := silenceWarnAfter
	if s.warned {
		threshold = silenceWarnAfter + silenceRewarnAfter
	}
	if s.silentFor >= threshold {
		s.silentFor = 0
		s.warned = true
		return silenceWarn
	}
	return silenceNone
}
