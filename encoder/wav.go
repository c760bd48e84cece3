package encoder

import (
	"encoding/binary"
	"fmt"
	"io"
)

const WAVHeaderSize = 44

// WavEncoder buffers samples and writes a complete RIFF/WAVE file on
// Close, since the header needs the final data length.
type WavEncoder struct {
	w           io.Writer
	pcm         []byte
	totalFrames uint64
}

func NewWav(w io.Writer) *WavEncoder {
	return &WavEncoder{w: w}
}

func (e *WavEncoder) EncodeBlock(block []int16) error {
	for _, s := range block {
		e.pcm = binary.LittleEndian.AppendUint16(e.pcm, uint16(s))
	}
	e.totalFrames += uint64(len(block))
	return nil
}

func (e *WavEncoder) Close() error {
	header := make([]byte, WAVHeaderSize)
	dataLen := uint32(len(e.pcm))
	byteRate := uint32(SampleRate * Channels * BitsPerSample / 8)
	blockAlign := uint16(Channels * BitsPerSample / 8)

	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 36+dataLen)
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], Channels)
	binary.LittleEndian.PutUint32(header[24:28], SampleRate)
	binary.LittleEndian.PutUint32(header[28:32], byteRate)
	binary.LittleEndian.PutUint16(header[32:34], blockAlign)
	binary.LittleEndian.PutUint16(header[34:36], BitsPerSample)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataLen)

	if _, err := e.w.Write(header); err != nil {
		return fmt.Errorf("writing wav header: %w", err)
	}
	if _, err := e.w.Write(e.pcm); err != nil {
		return fmt.Errorf("writing wav data: %w", err)
	}
	return nil
}

func (e *WavEncoder) TotalFrames() uint64 {
	return e.totalFrames
}
