package main

import (
	"encoding/binary"
	"io"

	"github.com/nesgo/core"
)

// sampleStream adapts the System's float32 APU samples to the 16-bit
// stereo PCM stream ebiten's audio.Player expects, duplicating the mono
// NES output to both channels.
type sampleStream struct {
	sys *nes.System
}

func newSampleStream(sys *nes.System) *sampleStream {
	return &sampleStream{sys: sys}
}

func (s *sampleStream) Read(buf []byte) (int, error) {
	n := 0
	for n+4 <= len(buf) {
		sample, ok := s.sys.AudioSample()
		if !ok {
			break
		}
		pcm := int16(sample * 32767)
		binary.LittleEndian.PutUint16(buf[n:], uint16(pcm))
		binary.LittleEndian.PutUint16(buf[n+2:], uint16(pcm))
		n += 4
	}
	if n == 0 {
		// No samples ready yet; emit silence rather than blocking the
		// audio callback.
		for i := range buf {
			buf[i] = 0
		}
		return len(buf), nil
	}
	return n, nil
}

var _ io.Reader = (*sampleStream)(nil)
