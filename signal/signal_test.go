package signal

import (
	"math"
	"testing"
)

func TestFirstSampleSeedsFloor(t *testing.T) {
	p := New()
	p.Ingest(0.04)
	if got := p.NoiseFloor(); got != 0.04 {
		t.Fatalf("NoiseFloor = %v, want 0.04", got)
	}
}

func TestConstantInputConvergence(t *testing.T) {
	// With a constant rms the floor converges to rms and the target to
	// clamp(0, 1, (rms - (rms*1.3+0.0025)) * 4), which is always 0 since
	// the gate sits above the floor.
	for _, r := range []float64{0.0, 0.01, 0.05, 0.5} {
		p := New()
		for i := 0; i < 2000; i++ {
			p.Ingest(r)
		}
		if math.Abs(p.NoiseFloor()-r) > 1e-6 {
			t.Errorf("rms=%v: NoiseFloor = %v, want ~%v", r, p.NoiseFloor(), r)
		}
		want := (r - (r*1.3 + 0.0025)) * 4
		if want < 0 {
			want = 0
		}
		if want > 1 {
			want = 1
		}
		if math.Abs(p.Target()-want) > 1e-6 {
			t.Errorf("rms=%v: Target = %v, want %v", r, p.Target(), want)
		}
	}
}

func TestLoudSampleDoesNotChaseFloor(t *testing.T) {
	p := New()
	p.Ingest(0.01)
	for i := 0; i < 100; i++ {
		p.Ingest(0.8) // well above floor*1.5
	}
	if p.NoiseFloor() != 0.01 {
		t.Fatalf("NoiseFloor = %v, want 0.01 (must not adapt to loud signal)", p.NoiseFloor())
	}
	if p.Target() != 1 {
		t.Fatalf("Target = %v, want 1 (clamped)", p.Target())
	}
}

func TestGateSuppressesQuietSignal(t *testing.T) {
	p := New()
	p.Ingest(0.02)
	p.Ingest(0.025) // above floor but below gate = floor*1.3 + 0.0025
	if p.Target() != 0 {
		t.Fatalf("Target = %v, want 0 for sub-gate sample", p.Target())
	}
}

func TestTickSmoothing(t *testing.T) {
	p := New()
	p.Ingest(0.001)
	p.Ingest(0.9) // loud: target clamps to 1
	if got := p.Tick(); math.Abs(got-0.2) > 1e-9 {
		t.Fatalf("first Tick = %v, want 0.2", got)
	}
	if got := p.Tick(); math.Abs(got-0.36) > 1e-9 {
		t.Fatalf("second Tick = %v, want 0.36", got)
	}
	for i := 0; i < 100; i++ {
		p.Tick()
	}
	if math.Abs(p.Current()-1) > 1e-6 {
		t.Fatalf("Current = %v, want ~1 after many ticks", p.Current())
	}
}

func TestResetClearsState(t *testing.T) {
	p := New()
	p.Ingest(0.5)
	p.Tick()
	p.Reset()
	if p.Current() != 0 || p.Target() != 0 || p.NoiseFloor() != 0 {
		t.Fatal("Reset should zero all state")
	}
	// Next sample re-seeds the floor.
	p.Ingest(0.07)
	if p.NoiseFloor() != 0.07 {
		t.Fatalf("NoiseFloor = %v, want re-seeded 0.07", p.NoiseFloor())
	}
}
