// Package scheduler implements the hierarchical, time-indexed mixer that
// composes sources on a shared timeline and the cooperative task executor
// that drives a program director against it.
package scheduler

import "math"

// Time is a dual (frames, seconds) quantity: an integer frame count plus a
// signed seconds offset, summed componentwise by Add/Sub. ToFrames adds
// the frame count as-is, at any rate. The constructors here (Seconds and
// Frames) only set the seconds component, so in practice every value is
// held in floating-point seconds and rounded on conversion.
type Time struct {
	frames  int64
	seconds float64
}

// Zero is the origin of every timeline.
var Zero = Time{}

// Seconds builds a Time from a plain floating-point second count.
func Seconds(s float64) Time {
	return Time{seconds: s}
}

// Frames builds a Time from a frame count at the given rate, stored as
// n/sampleRate seconds; ToFrames at the same rate rounds back to n.
func Frames(n int64, sampleRate float64) Time {
	return Time{seconds: float64(n) / sampleRate}
}

// ToFrames converts to an integer frame count at sampleRate, rounding the
// fractional remainder half-to-even.
func (t Time) ToFrames(sampleRate float64) int64 {
	return roundHalfToEven(t.seconds*sampleRate) + t.frames
}

// ToSeconds converts to a plain floating-point second count at sampleRate.
func (t Time) ToSeconds(sampleRate float64) float64 {
	return t.seconds + float64(t.frames)/sampleRate
}

// Add returns t + d, where d is itself a Time (seconds + frames both sum).
func (t Time) Add(d Time) Time {
	return Time{frames: t.frames + d.frames, seconds: t.seconds + d.seconds}
}

// Sub returns t - d.
func (t Time) Sub(d Time) Time {
	return Time{frames: t.frames - d.frames, seconds: t.seconds - d.seconds}
}

// AddSeconds returns t advanced by s plain seconds.
func (t Time) AddSeconds(s float64) Time {
	return Time{frames: t.frames, seconds: t.seconds + s}
}

// Less reports whether t occurs strictly before o at the given sample rate.
func (t Time) Less(o Time, sampleRate float64) bool {
	return t.ToFrames(sampleRate) < o.ToFrames(sampleRate)
}

func roundHalfToEven(f float64) int64 {
	r := math.RoundToEven(f)
	return int64(r)
}
