package api

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sprunkfm/sprunk/internal/config"
	"github.com/sprunkfm/sprunk/internal/encoder"
	"github.com/sprunkfm/sprunk/internal/manager"
	"github.com/sprunkfm/sprunk/internal/radio"
	"github.com/sprunkfm/sprunk/internal/scheduler"
	"github.com/sprunkfm/sprunk/internal/sink"
	"github.com/sprunkfm/sprunk/internal/station"
)

// bufferSeconds is the Manager's render window: every station runs at
// the configured sample rate regardless of its source media's native
// rate, since Manager mixes one SchedulerSource per station and the
// sink only ever sees the mixed result.
const bufferSeconds = 0.05

// StationRunner owns one station's full pipeline: its merged
// Definitions, the Radio director, the Manager pumping frames, and the
// fan-out Multi sink feeding both the configured persistent output and
// any HTTP listeners attached via /stations/{mount}/stream.
type StationRunner struct {
	mount string
	mgr   *manager.Manager
	multi *sink.Multi
	enc   func() encoder.Encoder

	mu     sync.RWMutex
	status radio.NowPlaying
	since  time.Time

	stopCh chan struct{}
}

// NewStationRunner loads info's definitions, builds the station's
// scheduler/radio/manager stack, and opens its configured persistent
// output at audioCfg's rate/channel count. The runner does not start
// producing audio until Start is called.
func NewStationRunner(mount string, info station.StationInfo, audioCfg config.AudioConfig) (*StationRunner, error) {
	if len(info.Files) == 0 {
		return nil, fmt.Errorf("station %q: no definition files configured", mount)
	}

	root, err := openPersistentOutput(mount, info, audioCfg)
	if err != nil {
		return nil, err
	}

	enc := func() encoder.Encoder {
		return encoder.NewWAV(float64(audioCfg.SampleRate), audioCfg.Channels)
	}
	multi := sink.NewMulti(root)
	paced := sink.NewRealtime(multi)

	sr := &StationRunner{
		mount:  mount,
		multi:  multi,
		enc:    enc,
		stopCh: make(chan struct{}),
	}

	director := func(sched *scheduler.Scheduler) error {
		r, err := radio.New(sched, info.Files)
		if err != nil {
			return err
		}
		r.OnNowPlaying(sr.setStatus)
		return r.Run(sched)
	}

	bufferFrames := int64(float64(audioCfg.SampleRate) * bufferSeconds)
	sr.mgr = manager.New(paced, bufferFrames, director)
	return sr, nil
}

func openPersistentOutput(mount string, info station.StationInfo, audioCfg config.AudioConfig) (sink.Sink, error) {
	sampleRate := float64(audioCfg.SampleRate)
	enc := encoder.NewWAV(sampleRate, audioCfg.Channels)
	switch info.Output.Kind {
	case station.OutputFile:
		f, err := os.Create(info.Output.Path)
		if err != nil {
			return nil, fmt.Errorf("station %q: opening output file: %w", mount, err)
		}
		return sink.NewStream(f, enc), nil
	case station.OutputIcecast:
		if info.Icecast == nil {
			return nil, fmt.Errorf("station %q: output is icecast but no icecast config was given", mount)
		}
		return sink.NewShout(sink.ShoutConfig{
			Host:     info.Icecast.Host,
			Mount:    info.Icecast.Mount,
			User:     info.Icecast.User,
			Password: info.Icecast.Password,
		}, encoder.NewWAV(sampleRate, audioCfg.Channels))
	default:
		sys, err := sink.NewSystem(sampleRate, audioCfg.Channels)
		if err != nil {
			return nil, fmt.Errorf("station %q: opening system output: %w", mount, err)
		}
		return sys, nil
	}
}

func (sr *StationRunner) setStatus(np radio.NowPlaying) {
	sr.mu.Lock()
	sr.status = np
	sr.since = time.Now()
	sr.mu.Unlock()
}

// Status returns the most recently scheduled clip and when it started.
func (sr *StationRunner) Status() (radio.NowPlaying, time.Time) {
	sr.mu.RLock()
	defer sr.mu.RUnlock()
	return sr.status, sr.since
}

// Attach opens a new HTTP listener fed from this station's fan-out and
// returns it so the caller can serve it on an HTTP connection.
func (sr *StationRunner) Attach() *streamListener {
	l := newStreamListener(sr.enc())
	sr.multi.Add(l)
	return l
}

// Start begins the station's real-time render loop on a background
// goroutine; it runs until Stop is called.
func (sr *StationRunner) Start() {
	go func() {
		tick := scheduler.Seconds(1)
		for {
			select {
			case <-sr.stopCh:
				return
			default:
			}
			if err := sr.mgr.Advance(tick); err != nil {
				log.With("component", "station", "mount", sr.mount).Error("render loop stopped", "err", err)
				return
			}
		}
	}()
}

// Stop ends the render loop and releases the director task.
func (sr *StationRunner) Stop() {
	close(sr.stopCh)
	sr.mgr.Close()
}
