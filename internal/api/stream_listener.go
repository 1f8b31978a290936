package api

import (
	"context"
	"net/http"

	"github.com/sprunkfm/sprunk/internal/encoder"
	"github.com/sprunkfm/sprunk/internal/sink"
)

// streamListener adapts one HTTP /stations/{mount}/stream client into a
// sink.Sink that a Multi fan-out can write to. Encoding happens on the
// render goroutine; the actual socket write happens on a dedicated
// goroutine reading buffered chunks, so one slow client stalls only
// itself. A full buffer drops the connection rather than blocking the
// station's render loop, matching Multi's "detach on error" contract.
type streamListener struct {
	enc    encoder.Encoder
	chunks chan []byte
	closed chan struct{}
}

func newStreamListener(enc encoder.Encoder) *streamListener {
	return &streamListener{
		enc:    enc,
		chunks: make(chan []byte, 64),
		closed: make(chan struct{}),
	}
}

func (l *streamListener) SampleRate() float64 { return l.enc.SampleRate() }
func (l *streamListener) Channels() int       { return l.enc.Channels() }

func (l *streamListener) Write(buf []float32) error {
	encoded := l.enc.Encode(buf)
	if len(encoded) == 0 {
		return nil
	}
	select {
	case <-l.closed:
		return sink.ErrBrokenPipe
	default:
	}
	select {
	case l.chunks <- encoded:
		return nil
	default:
		// Client can't keep up; evict it rather than backpressure the
		// whole station.
		l.evict()
		return sink.ErrBrokenPipe
	}
}

func (l *streamListener) evict() {
	select {
	case <-l.closed:
	default:
		close(l.closed)
	}
}

// serve drains chunks to w until the request context ends or the
// listener is evicted by a failed Write.
func (l *streamListener) serve(ctx context.Context, w http.ResponseWriter) {
	flusher, _ := w.(http.Flusher)
	for {
		select {
		case <-ctx.Done():
			l.evict()
			return
		case <-l.closed:
			return
		case chunk := <-l.chunks:
			if _, err := w.Write(chunk); err != nil {
				l.evict()
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}
