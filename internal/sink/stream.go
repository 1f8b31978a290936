package sink

import (
	"io"

	"github.com/sprunkfm/sprunk/internal/encoder"
)

// Stream encodes frames and writes them to an arbitrary io.Writer (the
// station's output file). HTTP stream listeners are served by
// internal/api's own listener type, not by Stream.
type Stream struct {
	w   io.Writer
	enc encoder.Encoder
}

// NewStream wraps w, encoding every write with enc.
func NewStream(w io.Writer, enc encoder.Encoder) *Stream {
	return &Stream{w: w, enc: enc}
}

func (s *Stream) SampleRate() float64 { return s.enc.SampleRate() }
func (s *Stream) Channels() int       { return s.enc.Channels() }

func (s *Stream) Write(buf []float32) error {
	encoded := s.enc.Encode(buf)
	if len(encoded) == 0 {
		return nil
	}
	_, err := s.w.Write(encoded)
	if err != nil {
		return ErrBrokenPipe
	}
	return nil
}
