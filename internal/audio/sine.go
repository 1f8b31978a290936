package audio

import "math"

// Sine generates sin(2*pi*freq*n/sampleRate), duplicated across every
// channel, and never ends: Len reports unknown.
type Sine struct {
	sampleRate float64
	channels   int
	freq       float64
	sample     uint64
}

// NewSine constructs an infinite sine wave source at freq Hz.
func NewSine(sampleRate float64, channels int, freq float64) *Sine {
	return &Sine{sampleRate: sampleRate, channels: channels, freq: freq}
}

func (s *Sine) SampleRate() float64 { return s.sampleRate }
func (s *Sine) Channels() int       { return s.channels }

func (s *Sine) Len() (int64, bool) { return 0, false }

func (s *Sine) Fill(buf []float32) int {
	frames := len(buf) / s.channels
	for i := 0; i < frames; i++ {
		v := float32(math.Sin(2 * math.Pi * s.freq * float64(s.sample) / s.sampleRate))
		for c := 0; c < s.channels; c++ {
			buf[i*s.channels+c] = v
		}
		s.sample++
	}
	return frames * s.channels
}

func (s *Sine) Seek(frame int64) error {
	if frame < 0 {
		frame = 0
	}
	s.sample = uint64(frame)
	return nil
}
