package encoder

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

func sineBlock(n int, freq float64) []int16 {
	block := make([]int16, n)
	for i := range block {
		t := float64(i) / float64(SampleRate)
		block[i] = int16(math.Sin(2*math.Pi*freq*t) * 12000)
	}
	return block
}

func TestFlacEncoder(t *testing.T) {
	var buf bytes.Buffer
	enc, err := NewFlac(&buf)
	if err != nil {
		t.Fatalf("NewFlac: %v", err)
	}

	var fed uint64
	for i := 0; i < 4; i++ {
		block := sineBlock(BlockSize, 440)
		if err := enc.EncodeBlock(block); err != nil {
			t.Fatalf("EncodeBlock %d: %v", i, err)
		}
		fed += uint64(len(block))
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if enc.TotalFrames() != fed {
		t.Errorf("TotalFrames = %d, want %d", enc.TotalFrames(), fed)
	}
	out := buf.Bytes()
	if len(out) < 4 || string(out[:4]) != "fLaC" {
		t.Fatal("output does not start with FLAC magic")
	}
}

func TestFlacEncoderPartialBlock(t *testing.T) {
	var buf bytes.Buffer
	enc, err := NewFlac(&buf)
	if err != nil {
		t.Fatalf("NewFlac: %v", err)
	}
	if err := enc.EncodeBlock(sineBlock(BlockSize/4, 440)); err != nil {
		t.Fatalf("EncodeBlock partial: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if enc.TotalFrames() != BlockSize/4 {
		t.Errorf("TotalFrames = %d, want %d", enc.TotalFrames(), BlockSize/4)
	}
}

func TestWavEncoder(t *testing.T) {
	var buf bytes.Buffer
	enc := NewWav(&buf)
	block := sineBlock(1000, 440)
	if err := enc.EncodeBlock(block); err != nil {
		t.Fatalf("EncodeBlock: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	out := buf.Bytes()
	if len(out) != WAVHeaderSize+len(block)*2 {
		t.Fatalf("len = %d, want %d", len(out), WAVHeaderSize+len(block)*2)
	}
	if string(out[:4]) != "RIFF" || string(out[8:12]) != "WAVE" {
		t.Fatal("bad RIFF header")
	}
	if got := binary.LittleEndian.Uint32(out[24:28]); got != SampleRate {
		t.Errorf("sample rate = %d, want %d", got, SampleRate)
	}
	if got := binary.LittleEndian.Uint32(out[40:44]); got != uint32(len(block)*2) {
		t.Errorf("data length = %d, want %d", got, len(block)*2)
	}
}

func TestSamplesFromPCM(t *testing.T) {
	pcm := []byte{0x01, 0x00, 0xFF, 0xFF, 0x00, 0x80, 0x42}
	samples := SamplesFromPCM(pcm)
	want := []int16{1, -1, -32768}
	if len(samples) != len(want) {
		t.Fatalf("len = %d, want %d (odd byte dropped)", len(samples), len(want))
	}
	for i := range want {
		if samples[i] != want[i] {
			t.Errorf("samples[%d] = %d, want %d", i, samples[i], want[i])
		}
	}
}
