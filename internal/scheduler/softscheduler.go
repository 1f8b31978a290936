package scheduler

import (
	"errors"
	"fmt"

	"github.com/sprunkfm/sprunk/internal/audio"
)

// ErrUnknownLength is returned by SoftScheduler.Add when the main piece's
// length cannot be determined, since a soft/hard window cannot be
// computed without it.
var ErrUnknownLength = errors.New("scheduler: unknown sound file length")

// SoftScheduler composes two sub-schedulers (music, voice) to place
// voice-overs against a music bed with automatic ducking: it fits the
// voice inside a "soft" window when possible and extends it when forced.
// Grounded on the original engine's soft_scheduler.rs.
type SoftScheduler struct {
	root  *Scheduler
	music *Scheduler
	voice *Scheduler

	padding    float64 // seconds
	overVolume float32

	soft Time
	hard Time
}

// NewSoftScheduler builds a SoftScheduler over two fresh sub-schedulers
// of root, starting at root's current offset.
func NewSoftScheduler(root *Scheduler, padding float64, overVolume float32) *SoftScheduler {
	return &SoftScheduler{
		root:       root,
		music:      root.Subscheduler(),
		voice:      root.Subscheduler(),
		padding:    padding,
		overVolume: overVolume,
	}
}

// Add places main on the music bed at the current hard time and,
// optionally, over as a ducked voice-over inside the preceding soft
// window (extending it by force if requested).
func (s *SoftScheduler) Add(main audio.Source, over audio.Source, pre float64, post *float64, force bool) (Time, error) {
	sr := s.root.SampleRate()
	padding := Seconds(s.padding)

	start := s.hard

	if over != nil {
		if overLen, ok := over.Len(); ok {
			overSeconds := float64(overLen) / over.SampleRate()
			softEnd := start.AddSeconds(pre)
			softAmt := softEnd.Sub(s.soft).ToSeconds(sr)
			overAmt := overSeconds + 2*s.padding

			if overAmt < softAmt || force {
				bonus := overAmt - softAmt
				if bonus > 0 {
					start = start.AddSeconds(bonus)
					softEnd = softEnd.AddSeconds(bonus)
				}

				overStart := softEnd.AddSeconds(-overAmt)

				s.music.SetVolume(overStart, s.overVolume, padding)
				s.music.SetVolume(softEnd.Sub(padding), 1.0, padding)

				s.voice.Add(overStart.Add(padding), over)
			}
			// else: does not fit and not forced: silently skip.
		}
		// else: unknown over length: silently skip.
	}

	end, ok := s.music.Add(start, main)
	if !ok {
		return Time{}, fmt.Errorf("softscheduler add: %w", ErrUnknownLength)
	}

	if _, err := s.root.Wait(start); err != nil {
		return Time{}, err
	}

	if post != nil {
		s.soft = start.AddSeconds(*post)
	} else {
		s.soft = end
	}
	s.hard = end.Add(padding)

	return end, nil
}

// Music returns the music sub-scheduler handle, for callers that need to
// schedule bare music pieces outside the duck-fit algorithm (e.g. a
// simplified director loop).
func (s *SoftScheduler) Music() *Scheduler { return s.music }

// Voice returns the voice sub-scheduler handle.
func (s *SoftScheduler) Voice() *Scheduler { return s.voice }

// SoftTime is the current end of the previous soft window.
func (s *SoftScheduler) SoftTime() Time { return s.soft }

// HardTime is the frame at which the next main piece must begin.
func (s *SoftScheduler) HardTime() Time { return s.hard }
