package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
)

// Media adapts a decoded beep.StreamSeekCloser to the Source contract.
// Grounded on internal/streaming/music_player.go's decode-and-resample
// pipeline (gopxl/beep + jfreymuth/vorbis), generalized from "one looping
// music bed" to a generic finite-or-unknown-length Source.
type Media struct {
	streamer beep.StreamSeekCloser
	format   beep.Format
	scratch  [][2]float64
	log      *log.Logger
}

// NewMedia probes rc for a supported container (MP3, FLAC, OGG/Vorbis,
// WAV, tried in that order, matching "first track whose codec is
// non-null") and returns a Source over the decoded PCM.
func NewMedia(rc io.ReadCloser) (*Media, error) {
	type decodeFunc func(io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error)
	decoders := []decodeFunc{mp3.Decode, flac.Decode, vorbis.Decode, wav.Decode}

	seeker, ok := rc.(io.ReadSeeker)
	if !ok {
		return nil, fmt.Errorf("audio: media source must support seeking to probe format: %w", ErrUnsupportedFormat)
	}

	var lastErr error
	for _, decode := range decoders {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		streamer, format, err := decode(rc)
		if err == nil {
			return &Media{streamer: streamer, format: format, log: log.With("component", "media")}, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, lastErr)
}

func (m *Media) SampleRate() float64 { return float64(m.format.SampleRate) }
func (m *Media) Channels() int       { return 2 }

func (m *Media) Len() (int64, bool) {
	if l, ok := m.streamer.(interface{ Len() int }); ok {
		return int64(l.Len()), true
	}
	return 0, false
}

func (m *Media) Fill(buf []float32) int {
	frames := len(buf) / 2
	if frames == 0 {
		return 0
	}
	if cap(m.scratch) < frames {
		m.scratch = make([][2]float64, frames)
	}
	scratch := m.scratch[:frames]

	total := 0
	for total < frames {
		n, ok := m.streamer.Stream(scratch[total:])
		if n > 0 {
			for i := 0; i < n; i++ {
				buf[(total+i)*2] = float32(scratch[total+i][0])
				buf[(total+i)*2+1] = float32(scratch[total+i][1])
			}
			total += n
		}
		if !ok {
			// The decoder stops at EOF or at its first error; a non-EOF
			// error is logged and also ends the stream. Bad packets are
			// not skipped.
			if err := m.streamer.Err(); err != nil && !errors.Is(err, io.EOF) {
				m.log.Warn("decode error, treating as end of stream", "err", err)
			}
			break
		}
		if n == 0 {
			break
		}
	}
	return total * 2
}

func (m *Media) Seek(frame int64) error {
	if frame < 0 {
		frame = 0
	}
	return m.streamer.Seek(int(frame))
}

// Close releases the underlying decoder and its reader.
func (m *Media) Close() error {
	return m.streamer.Close()
}
