package audio

import "math"

// volumeResult carries the outcome of a background LUFS measurement pass
// back to the owning Volume.
type volumeResult struct {
	gain float32
	err  error
}

// Volume wraps a source with either an immediate scalar gain or a
// deferred LUFS-normalized gain computed on a background goroutine. The
// background goroutine never touches scheduler state, matching the
// concurrency model's separation between the single-threaded executor
// and off-thread measurement work.
type Volume struct {
	source Source

	gain    float32
	pending <-chan volumeResult
	failed  bool
	ready   bool
}

// NewVolumeImmediate applies a constant scalar gain to every sample.
func NewVolumeImmediate(src Source, gain float32) *Volume {
	return &Volume{source: src, gain: gain, ready: true}
}

// NewVolumeLUFS spawns a measurement worker that drains src once,
// computes integrated LUFS, seeks src back to 0, and derives a gain that
// brings it to targetLUFS. The first Fill or Seek blocks until the worker
// completes; if the measurement failed, Fill then reports exhaustion.
func NewVolumeLUFS(src Source, targetLUFS float64) *Volume {
	ch := make(chan volumeResult, 1)
	v := &Volume{source: src, pending: ch}

	go func() {
		meter := newLoudnessMeter(src.SampleRate(), src.Channels())
		buf := make([]float32, 4096*src.Channels())
		for {
			n := src.Fill(buf)
			if n == 0 {
				break
			}
			meter.add(buf[:n], n/src.Channels())
		}
		measured := meter.integratedLUFS()
		if math.IsInf(measured, -1) || math.IsNaN(measured) {
			ch <- volumeResult{err: ErrNormalizationFailed}
			return
		}
		if err := src.Seek(0); err != nil {
			ch <- volumeResult{err: err}
			return
		}
		gain := math.Pow(10, (targetLUFS-measured)/20.0)
		ch <- volumeResult{gain: float32(gain)}
	}()

	return v
}

// join blocks on the measurement worker the first time it is needed.
func (v *Volume) join() {
	if v.ready || v.failed {
		return
	}
	result := <-v.pending
	if result.err != nil {
		v.failed = true
		return
	}
	v.gain = result.gain
	v.ready = true
}

func (v *Volume) SampleRate() float64 { return v.source.SampleRate() }
func (v *Volume) Channels() int       { return v.source.Channels() }
func (v *Volume) Len() (int64, bool)  { return v.source.Len() }

func (v *Volume) Fill(buf []float32) int {
	v.join()
	if v.failed {
		return 0
	}
	n := v.source.Fill(buf)
	for i := 0; i < n; i++ {
		buf[i] *= v.gain
	}
	return n
}

func (v *Volume) Seek(frame int64) error {
	v.join()
	return v.source.Seek(frame)
}
