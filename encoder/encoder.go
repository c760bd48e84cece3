// Package encoder writes captured PCM audio to disk. Recordings are
// FLAC by default; WAV is kept as an uncompressed fallback.
package encoder

import "encoding/binary"

const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
	BlockSize     = 4096
)

// Encoder consumes blocks of mono 16-bit samples and writes an audio
// container to its underlying writer. Close finalizes headers.
type Encoder interface {
	EncodeBlock(block []int16) error
	Close() error
	TotalFrames() uint64
}

// SamplesFromPCM converts little-endian 16-bit PCM bytes to samples.
// A trailing odd byte is dropped.
func SamplesFromPCM(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return samples
}
