package main

import (
	"testing"
	"time"
)

func ticks(d time.Duration) int {
	return int(d / silenceTickInterval)
}

func TestSilenceWarnsAfterThreshold(t *testing.T) {
	m := newSilenceMonitor()
	n := ticks(silenceWarnAfter)
	for i := 0; i < n-1; i++ {
		if ev := m.Tick(false); ev != silenceNone {
			t.Fatalf("tick %d: got %v before threshold", i, ev)
		}
	}
	if ev := m.Tick(false); ev != silenceWarn {
		t.Fatalf("expected warn at threshold, got %v", ev)
	}
}

func TestSilenceVoiceResetsCounter(t *testing.T) {
	m := newSilenceMonitor()
	for i := 0; i < ticks(silenceWarnAfter)-1; i++ {
		m.Tick(false)
	}
	m.Tick(true) // voice just before the threshold
	for i := 0; i < ticks(silenceWarnAfter)-1; i++ {
		if ev := m.Tick(false); ev != silenceNone {
			t.Fatalf("counter not reset: got %v", ev)
		}
	}
}

func TestSilenceClearsOnVoiceAfterWarning(t *testing.T) {
	m := newSilenceMonitor()
	for i := 0; i < ticks(silenceWarnAfter); i++ {
		m.Tick(false)
	}
	if ev := m.Tick(true); ev != silenceClear {
		t.Fatalf("expected clear on voice, got %v", ev)
	}
	if ev := m.Tick(true); ev != silenceNone {
		t.Fatalf("clear should fire once, got %v", ev)
	}
}

func TestSilenceRewarnsLater(t *testing.T) {
	m := newSilenceMonitor()
	for i := 0; i < ticks(silenceWarnAfter); i++ {
		m.Tick(false)
	}
	// After the first warning the next one takes longer.
	rewarn := ticks(silenceWarnAfter + silenceRewarnAfter)
	for i := 0; i < rewarn-1; i++ {
		if ev := m.Tick(false); ev != silenceNone {
			t.Fatalf("tick %d: premature rewarn %v", i, ev)
		}
	}
	if ev := m.Tick(false); ev != silenceWarn {
		t.Fatalf("expected second warn, got %v", ev)
	}
}

func TestSilenceResetClearsState(t *testing.T) {
	m := newSilenceMonitor()
	for i := 0; i < ticks(silenceWarnAfter); i++ {
		m.Tick(false)
	}
	m.Reset()
	if ev := m.Tick(true); ev != silenceNone {
		t.Fatalf("reset monitor should not emit clear, got %v", ev)
	}
}
