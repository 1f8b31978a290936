package scheduler

import (
	"errors"

	"github.com/sprunkfm/sprunk/internal/audio"
)

// ErrCannotSeek is returned by SchedulerSource.Seek: a live mixer cannot
// reposition itself.
var ErrCannotSeek = errors.New("scheduler: cannot seek a scheduler source")

// ErrSourceDropped is the error every pending Wait future resolves with
// once its owning SchedulerSource is closed.
var ErrSourceDropped = errors.New("scheduler: scheduler source dropped")

type scheduledEntry struct {
	start  int64
	source audio.Source
}

type timerEntry struct {
	frame int64
	task  *execTask
}

type rampPoint struct {
	frame  int64
	target float32
}

// data is the single shared, single-owner state behind both a
// Scheduler handle and its SchedulerSource render adapter.
type data struct {
	sampleRate float64
	channels   int
	offset     int64

	scheduled []scheduledEntry
	active    []audio.Source

	timers []timerEntry
	ramps  []rampPoint
	volume float32

	executor *executor
	closed   bool

	scratch []float32
}

// Scheduler is the handle a director task uses to add sources, schedule
// volume ramps, wait for a given output frame, and spawn further tasks.
type Scheduler struct {
	d *data
}

// SchedulerSource is the audio.Source adapter that renders a Scheduler's
// timeline into its parent (or into the Manager, at the root).
type SchedulerSource struct {
	d *data
}

// New constructs a paired Scheduler/SchedulerSource at the given rate and
// channel count, with full initial volume.
func New(sampleRate float64, channels int) (*Scheduler, *SchedulerSource) {
	d := &data{
		sampleRate: sampleRate,
		channels:   channels,
		volume:     1.0,
		executor:   newExecutor(),
	}
	return &Scheduler{d: d}, &SchedulerSource{d: d}
}

// SampleRate is the scheduler's native output rate.
func (s *Scheduler) SampleRate() float64 { return s.d.sampleRate }

// Channels is the scheduler's output channel count.
func (s *Scheduler) Channels() int { return s.d.channels }

// Offset is the scheduler's current render position, in frames.
func (s *Scheduler) Offset() int64 { return s.d.offset }

// Subscheduler allocates a new Scheduler/SchedulerSource pair at the same
// rate and channel count, pushes the adapter into this scheduler's active
// list at full volume, and returns the handle. The child inherits this
// scheduler's current offset, per the "inherit parent offset" resolution
// of the open question in the design notes.
func (s *Scheduler) Subscheduler() *Scheduler {
	return s.SubschedulerWithVolume(1.0)
}

// SubschedulerWithVolume is Subscheduler but the child starts at the
// given initial volume (used for ducked ambience beds that fade in).
func (s *Scheduler) SubschedulerWithVolume(volume float32) *Scheduler {
	child, childSource := New(s.d.sampleRate, s.d.channels)
	child.d.offset = s.d.offset
	child.d.volume = volume
	s.d.active = append(s.d.active, childSource)
	return child
}

// Add reformats source to the scheduler's rate/channels and schedules it
// to activate at start. It returns the predicted end time and true if
// source reports a known length, else a zero Time and false.
func (s *Scheduler) Add(start Time, source audio.Source) (Time, bool) {
	reformatted := audio.Reformat(source, s.d.sampleRate, s.d.channels)
	startFrames := start.ToFrames(s.d.sampleRate)
	s.d.scheduled = append(s.d.scheduled, scheduledEntry{start: startFrames, source: reformatted})

	length, known := reformatted.Len()
	if !known {
		return Time{}, false
	}
	return Frames(startFrames+length, s.d.sampleRate), true
}

// SetVolume inserts a piecewise-linear ramp from the scheduler's current
// interpolated value at start to target, over duration (floored at
// 5ms), and returns start+duration.
func (s *Scheduler) SetVolume(start Time, target float32, duration Time) Time {
	sr := s.d.sampleRate
	if duration.ToSeconds(sr) < 0.005 {
		duration = Seconds(0.005)
	}
	startFrames := start.ToFrames(sr)
	current := s.valueAt(startFrames)

	s.d.ramps = append(s.d.ramps, rampPoint{frame: startFrames, target: current})
	endFrames := start.Add(duration).ToFrames(sr)
	s.d.ramps = append(s.d.ramps, rampPoint{frame: endFrames, target: target})
	sortRamps(s.d.ramps)

	return start.Add(duration)
}

// valueAt computes the interpolated ramp value at the given frame,
// without mutating any state, by walking the pending ramp list starting
// from the current left-edge volume.
func (s *Scheduler) valueAt(frame int64) float32 {
	value := s.d.volume
	last := s.d.offset
	for _, rp := range s.d.ramps {
		if rp.frame <= last {
			value = rp.target
			continue
		}
		if rp.frame >= frame {
			if rp.frame == last {
				return rp.target
			}
			frac := float32(frame-last) / float32(rp.frame-last)
			return value + (rp.target-value)*frac
		}
		value = rp.target
		last = rp.frame
	}
	return value
}

func sortRamps(r []rampPoint) {
	// insertion sort: ramps are appended a couple at a time and the list
	// stays small relative to a single schedule call, so this is cheap
	// and keeps the "stable across equal frames" ordering.
	for i := 1; i < len(r); i++ {
		for j := i; j > 0 && r[j].frame < r[j-1].frame; j-- {
			r[j], r[j-1] = r[j-1], r[j]
		}
	}
}

// Run spawns f on the scheduler's internal cooperative executor and
// returns a handle to its eventual result. f may call Wait on s to
// suspend until a given output frame is reached.
func (s *Scheduler) Run(f func(*Scheduler) error) *TaskHandle {
	var et *execTask
	et = s.d.executor.spawn(func() {
		err := f(s)
		et.err = err
	})
	return &TaskHandle{task: et}
}

// Wait registers a one-shot timer at t and suspends the calling director
// task until the SchedulerSource's offset reaches that frame during a
// Fill call. It must only be called from within a function passed to
// Run on the same scheduler.
func (s *Scheduler) Wait(t Time) (Time, error) {
	if s.d.executor.current == nil {
		return Time{}, errors.New("scheduler: Wait called outside a running task")
	}
	et := s.d.executor.current
	frame := t.ToFrames(s.d.sampleRate)
	s.d.timers = append(s.d.timers, timerEntry{frame: frame, task: et})
	et.yield <- struct{}{}
	<-et.resume
	if et.dropped {
		return Time{}, ErrSourceDropped
	}
	return t, nil
}

// --- SchedulerSource: the audio.Source adapter ---

func (ss *SchedulerSource) SampleRate() float64 { return ss.d.sampleRate }
func (ss *SchedulerSource) Channels() int       { return ss.d.channels }
func (ss *SchedulerSource) Len() (int64, bool)  { return 0, false }

// Seek on a live mixer is always an error.
func (ss *SchedulerSource) Seek(int64) error { return ErrCannotSeek }

// Close marks the source dropped: any task currently suspended in Wait
// resumes immediately with ErrSourceDropped, matching "dropping the
// source while waiters exist causes their futures to resolve with
// scheduler source dropped". It does not stop audio that is already
// mixed; it only affects pending waiters.
func (ss *SchedulerSource) Close() {
	d := ss.d
	d.closed = true
	pending := d.timers
	d.timers = nil
	for _, te := range pending {
		if te.task.done {
			continue
		}
		te.task.dropped = true
		d.executor.current = te.task
		te.task.resume <- struct{}{}
		<-te.task.yield
		d.executor.current = nil
	}
}

// Fill implements the SchedulerSource.fill algorithm: a fixed-point
// timer/executor pump, then an additive render of active sources, then
// activation of due scheduled sources, then application of the volume
// ramp envelope.
func (ss *SchedulerSource) Fill(buf []float32) int {
	d := ss.d
	channels := d.channels
	frames := len(buf) / channels
	if frames == 0 {
		return 0
	}

	for i := range buf {
		buf[i] = 0
	}

	offset := d.offset
	end := offset + int64(frames)

	// Step 2: fixed-point pump of the executor and due timers.
	for {
		progressed := d.executor.tick()
		fired := fireTimers(d, end)
		if !progressed && !fired {
			break
		}
	}

	// Step 3: true end of stream.
	if len(d.active) == 0 && len(d.scheduled) == 0 && len(d.timers) == 0 {
		return 0
	}

	// Step 4: mix active sources.
	if cap(d.scratch) < len(buf) {
		d.scratch = make([]float32, len(buf))
	}
	scratch := d.scratch[:len(buf)]
	stillActive := d.active[:0]
	for _, src := range d.active {
		for i := range scratch {
			scratch[i] = 0
		}
		n := audio.ForceFill(src, scratch)
		for i := 0; i < n; i++ {
			buf[i] += scratch[i]
		}
		if n >= len(scratch) {
			stillActive = append(stillActive, src)
		}
	}
	d.active = stillActive

	// Step 5: activate/render due scheduled entries.
	remaining := d.scheduled[:0]
	for _, sch := range d.scheduled {
		if sch.start < offset {
			continue // stale, drop
		}
		if sch.start >= end {
			remaining = append(remaining, sch)
			continue
		}
		winFrames := end - sch.start
		need := int(winFrames) * channels
		if cap(d.scratch) < need {
			// unreachable in practice: need <= len(buf)
		}
		seg := make([]float32, need)
		n := audio.ForceFill(sch.source, seg)
		base := int(sch.start-offset) * channels
		copy(buf[base:base+n], seg[:n])
		if n >= need {
			d.active = append(d.active, sch.source)
		}
		// else: ended in-window, discard.
	}
	d.scheduled = remaining

	// Step 6: apply the volume ramp envelope.
	applyRamps(d, buf, offset, end, channels)

	// Step 7: advance offset.
	d.offset = end
	return len(buf)
}

func fireTimers(d *data, end int64) bool {
	fired := false
	remaining := d.timers[:0]
	for _, te := range d.timers {
		if te.frame < end {
			d.executor.current = te.task
			te.task.resume <- struct{}{}
			<-te.task.yield
			d.executor.current = nil
			fired = true
		} else {
			remaining = append(remaining, te)
		}
	}
	d.timers = remaining
	return fired
}

func applyRamps(d *data, buf []float32, offset, end int64, channels int) {
	last := offset
	value := d.volume

	for len(d.ramps) > 0 {
		rp := d.ramps[0]
		if rp.frame <= last {
			value = rp.target
			d.ramps = d.ramps[1:]
			continue
		}
		if rp.frame > end {
			break
		}
		applySegment(buf, last, rp.frame, value, rp.target, offset, channels)
		value = rp.target
		last = rp.frame
		d.ramps = d.ramps[1:]
	}

	if last < end {
		if len(d.ramps) > 0 {
			rp := d.ramps[0]
			span := float32(rp.frame - last)
			endValue := value
			if span > 0 {
				endValue = value + (rp.target-value)*float32(end-last)/span
			}
			applySegment(buf, last, end, value, endValue, offset, channels)
			value = endValue
		} else {
			applyConstant(buf, last, end, value, offset, channels)
		}
	}

	d.volume = value
}

func applySegment(buf []float32, from, to int64, startValue, endValue float32, windowOffset int64, channels int) {
	span := to - from
	if span <= 0 {
		return
	}
	for frame := from; frame < to; frame++ {
		frac := float32(frame-from) / float32(span)
		gain := startValue + (endValue-startValue)*frac
		base := int(frame-windowOffset) * channels
		for c := 0; c < channels; c++ {
			buf[base+c] *= gain
		}
	}
}

func applyConstant(buf []float32, from, to int64, value float32, windowOffset int64, channels int) {
	for frame := from; frame < to; frame++ {
		base := int(frame-windowOffset) * channels
		for c := 0; c < channels; c++ {
			buf[base+c] *= value
		}
	}
}
