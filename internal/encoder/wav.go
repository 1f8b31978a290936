package encoder

import (
	"bytes"
	"encoding/binary"
	"math"
)

// WAV streams a canonical PCM16 RIFF/WAVE container: a header (with
// stream-length fields left maxed out, since total length is unknown
// ahead of time for a live radio stream) followed by raw little-endian
// int16 samples. Soft-limits before the final int16 clamp, matching the
// additive-mix safety margin used throughout the corpus (e.g.
// internal/streaming/audio.go's soft-limiter).
type WAV struct {
	sampleRate float64
	channels   int
	wroteHead  bool
}

// NewWAV constructs a WAV encoder for the given rate/channel count.
func NewWAV(sampleRate float64, channels int) *WAV {
	return &WAV{sampleRate: sampleRate, channels: channels}
}

func (w *WAV) SampleRate() float64 { return w.sampleRate }
func (w *WAV) Channels() int       { return w.channels }

func (w *WAV) Encode(buf []float32) []byte {
	var out bytes.Buffer
	if !w.wroteHead {
		w.writeHeader(&out)
		w.wroteHead = true
	}
	for _, s := range buf {
		binary.Write(&out, binary.LittleEndian, floatToPCM16(s))
	}
	return out.Bytes()
}

func floatToPCM16(s float32) int16 {
	v := s * 32767.0
	const limit = 30000.0
	if v > limit {
		v = limit + (v-limit)/4
	} else if v < -limit {
		v = -limit + (v+limit)/4
	}
	if v > 32767 {
		v = 32767
	}
	if v < -32768 {
		v = -32768
	}
	return int16(math.Round(float64(v)))
}

func (w *WAV) writeHeader(out *bytes.Buffer) {
	byteRate := uint32(w.sampleRate) * uint32(w.channels) * 2
	blockAlign := uint16(w.channels * 2)

	out.WriteString("RIFF")
	binary.Write(out, binary.LittleEndian, uint32(0xFFFFFFFF))
	out.WriteString("WAVE")

	out.WriteString("fmt ")
	binary.Write(out, binary.LittleEndian, uint32(16))
	binary.Write(out, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(out, binary.LittleEndian, uint16(w.channels))
	binary.Write(out, binary.LittleEndian, uint32(w.sampleRate))
	binary.Write(out, binary.LittleEndian, byteRate)
	binary.Write(out, binary.LittleEndian, blockAlign)
	binary.Write(out, binary.LittleEndian, uint16(16))

	out.WriteString("data")
	binary.Write(out, binary.LittleEndian, uint32(0xFFFFFFFF))
}
