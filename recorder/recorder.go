// Package recorder owns a microphone capture session: it encodes incoming
// PCM to a file on disk and publishes amplitude levels for the waveform.
package recorder

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"scout/audio"
	"scout/encoder"
)

// Level is one amplitude sample computed from a capture buffer.
type Level struct {
	RMS  float64
	Peak float64
}

// Recorder is the capture surface the state machine drives. Stop returns
// the path of the finished recording, or "" when nothing usable was
// captured. Levels delivers amplitude samples while capture is active;
// the channel is owned by the recorder and never closed.
type Recorder interface {
	Start() error
	Stop() (string, error)
	Cancel() error
	Levels() <-chan Level
}

// minFrames discards accidental taps: recordings shorter than 100ms
// produce no file.
const minFrames = encoder.SampleRate / 10

type FileRecorder struct {
	capture audio.CaptureDevice
	dir     string
	format  string // "flac" or "wav"
	levels  chan Level

	mu        sync.Mutex
	recording bool
	file      *os.File
	enc       encoder.Encoder
	pending   []int16
	frames    uint64
}

func New(capture audio.CaptureDevice, format string) *FileRecorder {
	return &FileRecorder{
		capture: capture,
		dir:     os.TempDir(),
		format:  format,
		levels:  make(chan Level, 64),
	}
}

func (r *FileRecorder) Levels() <-chan Level { return r.levels }

func (r *FileRecorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recording {
		return fmt.Errorf("capture already active")
	}

	name := fmt.Sprintf("scout-%s.%s", uuid.NewString(), r.format)
	file, err := os.Create(filepath.Join(r.dir, name))
	if err != nil {
		return fmt.Errorf("creating recording file: %w", err)
	}

	var enc encoder.Encoder
	switch r.format {
	case "wav":
		enc = encoder.NewWav(file)
	default:
		enc, err = encoder.NewFlac(file)
		if err != nil {
			file.Close()
			os.Remove(file.Name())
			return err
		}
	}

	r.file = file
	r.enc = enc
	r.pending = r.pending[:0]
	r.frames = 0

	r.capture.SetCallback(r.onData)
	if err := r.capture.Start(); err != nil {
		r.capture.ClearCallback()
		r.discardLocked()
		return fmt.Errorf("starting capture: %w", err)
	}
	r.recording = true
	return nil
}

func (r *FileRecorder) onData(data []byte, _ uint32) {
	if len(data) < 2 {
		return
	}
	samples := encoder.SamplesFromPCM(data)

	var sumSquares, peak float64
	for _, s := range samples {
		n := float64(s) / 32768.0
		if a := math.Abs(n); a > peak {
			peak = a
		}
		sumSquares += n * n
	}
	rms := math.Sqrt(sumSquares / float64(len(samples)))
	select {
	case r.levels <- Level{RMS: rms, Peak: peak}:
	default:
		// Display is behind; dropping a level sample is harmless.
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording {
		return
	}
	r.pending = append(r.pending, samples...)
	for len(r.pending) >= encoder.BlockSize {
		if err := r.enc.EncodeBlock(r.pending[:encoder.BlockSize]); err != nil {
			return
		}
		r.pending = r.pending[encoder.BlockSize:]
		r.frames += encoder.BlockSize
	}
}

func (r *FileRecorder) Stop() (string, error) {
	r.capture.Stop()
	r.capture.ClearCallback()

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording {
		return "", fmt.Errorf("no capture active")
	}
	r.recording = false

	if len(r.pending) > 0 {
		r.enc.EncodeBlock(r.pending)
		r.frames += uint64(len(r.pending))
		r.pending = r.pending[:0]
	}

	path := r.file.Name()
	frames := r.frames
	if err := r.finishLocked(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("finalizing recording: %w", err)
	}
	if frames < minFrames {
		os.Remove(path)
		return "", nil
	}
	return path, nil
}

func (r *FileRecorder) Cancel() error {
	r.capture.Stop()
	r.capture.ClearCallback()

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording {
		return nil
	}
	r.recording = false
	r.discardLocked()
	return nil
}

func (r *FileRecorder) finishLocked() error {
	encErr := r.enc.Close()
	fileErr := r.file.Close()
	r.enc = nil
	r.file = nil
	if encErr != nil {
		return encErr
	}
	return fileErr
}

func (r *FileRecorder) discardLocked() {
	if r.file != nil {
		path := r.file.Name()
		if r.enc != nil {
			r.enc.Close()
		}
		r.file.Close()
		os.Remove(path)
		r.enc = nil
		r.file = nil
	}
	r.pending = r.pending[:0]
}
