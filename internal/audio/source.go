// Package audio implements the pull-based DSP source chain: leaf
// generators and decoders, channel remixing, rate conversion, and gain
// control, all built around the Source contract.
package audio

import "errors"

// ErrNotSeekable is returned by Seek implementations that cannot
// reposition their underlying stream.
var ErrNotSeekable = errors.New("audio: source is not seekable")

// ErrUnsupportedFormat is returned when Media cannot identify a decodable
// container/codec for the given reader.
var ErrUnsupportedFormat = errors.New("audio: unsupported media format")

// ErrNormalizationFailed is returned by the LUFS measurement worker when
// it cannot produce a loudness estimate; the owning Volume source then
// reports permanent silence.
var ErrNormalizationFailed = errors.New("audio: loudness normalization failed")

// Source is the pull-based audio contract every node in the DSP graph
// implements. Frames are interleaved float32 samples, Channels() per
// frame.
type Source interface {
	// SampleRate is the source's native rate in Hz.
	SampleRate() float64
	// Channels is the number of interleaved channels per frame.
	Channels() int
	// Len reports the source's length in frames, if known.
	Len() (frames int64, known bool)
	// Fill writes up to len(buf) interleaved samples and returns how many
	// were written. A return of 0 means the stream is exhausted. A
	// partial fill does not by itself mean exhaustion: producers may
	// underfill transient gaps and expect to be called again.
	Fill(buf []float32) int
	// Seek repositions the stream to the given frame. Sources that
	// cannot reposition return ErrNotSeekable.
	Seek(frame int64) error
}

// ForceFill wraps Fill in a retry loop that only stops at true
// end-of-stream (a 0-length Fill) or once buf is completely filled.
func ForceFill(s Source, buf []float32) int {
	total := 0
	for total < len(buf) {
		n := s.Fill(buf[total:])
		if n == 0 {
			break
		}
		total += n
	}
	return total
}

// Reformat adapts src to the given sample rate and channel count,
// inserting a Remix and/or Resample stage only where needed.
func Reformat(src Source, sampleRate float64, channels int) Source {
	out := src
	if out.Channels() != channels {
		out = NewRemix(out, channels, nil)
	}
	if out.SampleRate() != sampleRate {
		out = NewResample(out, sampleRate)
	}
	return out
}
