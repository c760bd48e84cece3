package recorder

import (
	"math"
	"os"
	"testing"
	"time"

	"scout/audio"
	"scout/encoder"
)

func sinePCM(seconds float64, freq float64) []byte {
	n := int(seconds * encoder.SampleRate)
	pcm := make([]byte, n*2)
	for i := 0; i < n; i++ {
		t := float64(i) / encoder.SampleRate
		s := int16(math.Sin(2*math.Pi*freq*t) * 12000)
		pcm[i*2] = byte(s)
		pcm[i*2+1] = byte(s >> 8)
	}
	return pcm
}

func newTestRecorder(t *testing.T, pcm []byte, format string) *FileRecorder {
	t.Helper()
	ctx := audio.NewFakeContextPCM(pcm)
	capture, err := ctx.NewCapture(nil, audio.CaptureConfig{
		SampleRate: encoder.SampleRate, Channels: encoder.Channels,
	})
	if err != nil {
		t.Fatalf("NewCapture: %v", err)
	}
	r := New(capture, format)
	r.dir = t.TempDir()
	return r
}

func waitFrames(t *testing.T, r *FileRecorder, want uint64) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		r.mu.Lock()
		frames := r.frames + uint64(len(r.pending))
		r.mu.Unlock()
		if frames >= want {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %d frames (have %d)", want, frames)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestRecordStopProducesFile(t *testing.T) {
	r := newTestRecorder(t, sinePCM(0.5, 440), "flac")
	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitFrames(t, r, encoder.SampleRate/4)

	path, err := r.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if path == "" {
		t.Fatal("expected a file path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading recording: %v", err)
	}
	if len(data) < 4 || string(data[:4]) != "fLaC" {
		t.Fatal("recording is not a FLAC file")
	}
}

func TestShortRecordingDiscarded(t *testing.T) {
	// Feed almost nothing, stop immediately: under the 100ms floor.
	r := newTestRecorder(t, sinePCM(0.01, 440), "flac")
	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	path, err := r.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if path != "" {
		t.Fatalf("path = %q, want empty for too-short recording", path)
	}
}

func TestCancelRemovesFile(t *testing.T) {
	dir := t.TempDir()
	r := newTestRecorder(t, sinePCM(0.5, 440), "wav")
	r.dir = dir
	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitFrames(t, r, encoder.SampleRate/10)
	if err := r.Cancel(); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("temp dir not empty after cancel: %v", entries)
	}
}

func TestLevelsPublished(t *testing.T) {
	r := newTestRecorder(t, sinePCM(0.5, 440), "flac")
	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer r.Stop()

	select {
	case lvl := <-r.Levels():
		if lvl.RMS <= 0 || lvl.Peak <= 0 {
			t.Errorf("level = %+v, want positive rms/peak for a sine", lvl)
		}
		if lvl.Peak < lvl.RMS {
			t.Errorf("peak %v < rms %v", lvl.Peak, lvl.RMS)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no level published")
	}
}

func TestDoubleStartRejected(t *testing.T) {
	r := newTestRecorder(t, sinePCM(0.3, 440), "flac")
	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer r.Stop()
	if err := r.Start(); err == nil {
		t.Fatal("second Start should fail while capture is active")
	}
}

func TestStopWithoutStart(t *testing.T) {
	r := newTestRecorder(t, nil, "flac")
	if _, err := r.Stop(); err == nil {
		t.Fatal("Stop without Start should fail")
	}
}

func TestCancelWithoutStartIsNoop(t *testing.T) {
	r := newTestRecorder(t, nil, "flac")
	if err := r.Cancel(); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
}
