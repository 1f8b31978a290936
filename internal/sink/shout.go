package sink

import (
	"fmt"
	"io"
	"net/http"

	"github.com/sprunkfm/sprunk/internal/encoder"
)

// Shout uploads an encoded stream to an Icecast mount point via chunked
// HTTP PUT, the way libshout does but over net/http instead of a cgo
// binding (no libshout/Icecast client appears anywhere in the retrieved
// corpus; net/http's chunked transfer encoding is a faithful, idiomatic
// stdlib substitute for a "keep pushing bytes to an open HTTP request"
// client).
type Shout struct {
	enc    encoder.Encoder
	pipeW  *io.PipeWriter
	doneCh chan error
}

// ShoutConfig names an Icecast mount.
type ShoutConfig struct {
	Host     string
	Mount    string
	User     string
	Password string
}

// NewShout opens a streaming PUT request to the configured Icecast mount
// and returns a Sink that writes encoded frames into its body.
func NewShout(cfg ShoutConfig, enc encoder.Encoder) (*Shout, error) {
	pr, pw := io.Pipe()
	url := fmt.Sprintf("http://%s/%s", cfg.Host, cfg.Mount)
	req, err := http.NewRequest(http.MethodPut, url, pr)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(cfg.User, cfg.Password)
	req.Header.Set("Content-Type", "audio/x-wav")
	req.ContentLength = -1

	done := make(chan error, 1)
	go func() {
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			done <- err
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			done <- fmt.Errorf("%w: icecast returned %s", ErrDeviceUnavailable, resp.Status)
			return
		}
		done <- nil
	}()

	return &Shout{enc: enc, pipeW: pw, doneCh: done}, nil
}

func (s *Shout) SampleRate() float64 { return s.enc.SampleRate() }
func (s *Shout) Channels() int       { return s.enc.Channels() }

func (s *Shout) Write(buf []float32) error {
	encoded := s.enc.Encode(buf)
	if len(encoded) == 0 {
		return nil
	}
	if _, err := s.pipeW.Write(encoded); err != nil {
		return ErrBrokenPipe
	}
	select {
	case err := <-s.doneCh:
		if err != nil {
			return err
		}
		return ErrBrokenPipe
	default:
		return nil
	}
}

// Close ends the upload.
func (s *Shout) Close() error {
	return s.pipeW.Close()
}
