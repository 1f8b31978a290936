package sink

import (
	"fmt"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// System plays to the host's default audio device via gopxl/beep/speaker,
// matching the teacher's use of beep for playback
// (internal/streaming/music_player.go) generalized from a fixed-format
// music bed to an arbitrary sample rate/channel count. beep/speaker
// negotiates the device's native sample format itself, so this package
// does not enumerate formats. The device is opened at the caller's
// sampleRate; its maximum supported rate is not queried.
type System struct {
	sampleRate float64
	channels   int
	streamer   *pushStreamer
}

// NewSystem opens the host default audio device at sampleRate with the
// given channel count.
func NewSystem(sampleRate float64, channels int) (*System, error) {
	sr := beep.SampleRate(int(sampleRate))
	bufferSize := sr.N(0.05) // ~50ms device buffer
	if err := speaker.Init(sr, bufferSize); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	st := &pushStreamer{channels: channels, pending: make(chan []float32)}
	speaker.Play(st)
	return &System{sampleRate: sampleRate, channels: channels, streamer: st}, nil
}

func (s *System) SampleRate() float64 { return s.sampleRate }
func (s *System) Channels() int       { return s.channels }

func (s *System) Write(buf []float32) error {
	s.streamer.push(buf)
	return nil
}

// pushStreamer adapts a push-style Write into beep's pull-style Streamer
// interface via a small blocking channel handoff.
type pushStreamer struct {
	channels int
	pending  chan []float32
}

func (p *pushStreamer) push(buf []float32) {
	cp := make([]float32, len(buf))
	copy(cp, buf)
	p.pending <- cp
}

func (p *pushStreamer) Stream(samples [][2]float64) (int, bool) {
	buf := <-p.pending
	frames := len(buf) / p.channels
	if frames > len(samples) {
		frames = len(samples)
	}
	for i := 0; i < frames; i++ {
		l := float64(buf[i*p.channels])
		r := l
		if p.channels > 1 {
			r = float64(buf[i*p.channels+1])
		}
		samples[i] = [2]float64{l, r}
	}
	return frames, true
}

func (p *pushStreamer) Err() error { return nil }
