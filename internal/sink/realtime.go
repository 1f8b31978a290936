package sink

import (
	"time"
)

// nowFunc and sleepFunc are indirections over the standard library clock
// so tests can drive Realtime without actually sleeping.
var (
	nowFunc   = time.Now
	sleepFunc = time.Sleep
)

// Realtime wraps a Sink and paces writes to wall-clock time: it tracks a
// runout deadline (when the previously written chunk finishes playing),
// sleeps before each write to keep exactly one buffer ahead of real
// time, then advances the deadline by the new chunk's duration.
// Grounded on the original engine's sink/realtime.rs. Per the design
// notes' resolved open question, underrun never inserts silence; a slow
// producer simply stalls the pacing clock forward on its next write.
type Realtime struct {
	inner  Sink
	runout *time.Time
}

// NewRealtime wraps inner with real-time pacing.
func NewRealtime(inner Sink) *Realtime {
	return &Realtime{inner: inner}
}

func (r *Realtime) SampleRate() float64 { return r.inner.SampleRate() }
func (r *Realtime) Channels() int       { return r.inner.Channels() }

func (r *Realtime) Write(buf []float32) error {
	frames := len(buf) / r.Channels()
	duration := time.Duration(float64(frames) / r.SampleRate() * float64(time.Second))

	now := nowFunc()
	if r.runout == nil {
		t := now
		r.runout = &t
	}

	sleepUntil := r.runout.Add(-duration)
	if wait := sleepUntil.Sub(now); wait > 0 {
		sleepFunc(wait)
	}

	if err := r.inner.Write(buf); err != nil {
		return err
	}
	*r.runout = r.runout.Add(duration)
	return nil
}
