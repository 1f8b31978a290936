// Package manager drives a scheduler's top SchedulerSource into a sink at
// the correct rate, and runs the director task that builds its program.
package manager

import (
	"github.com/sprunkfm/sprunk/internal/scheduler"
	"github.com/sprunkfm/sprunk/internal/sink"
)

// Manager owns a Sink and the top-level Scheduler/SchedulerSource pair,
// and pumps frames between them at buffer granularity. Grounded on the
// original engine's manager.rs.
type Manager struct {
	*scheduler.Scheduler

	sink       sink.Sink
	source     *scheduler.SchedulerSource
	buffer     []float32
	bufferSize int64
	pending    int64
	task       *scheduler.TaskHandle
}

// New constructs a Manager with bufferFrames-sized render windows,
// running director on a fresh root scheduler sized to s's rate/channels.
func New(s sink.Sink, bufferFrames int64, director func(*scheduler.Scheduler) error) *Manager {
	root, source := scheduler.New(s.SampleRate(), s.Channels())
	task := root.Run(director)
	return &Manager{
		Scheduler:  root,
		sink:       s,
		source:     source,
		buffer:     make([]float32, bufferFrames*int64(s.Channels())),
		bufferSize: bufferFrames,
		task:       task,
	}
}

// Advance adds dt to the pending-frames counter and, while it exceeds the
// buffer size, force-fills one buffer from the source (zero-padding any
// short fill) and writes it to the sink.
func (m *Manager) Advance(dt scheduler.Time) error {
	m.pending += dt.ToFrames(m.sink.SampleRate())
	for m.pending > m.bufferSize {
		n := forceFill(m.source, m.buffer)
		for i := n; i < len(m.buffer); i++ {
			m.buffer[i] = 0
		}
		if err := m.sink.Write(m.buffer); err != nil {
			return err
		}
		m.pending -= m.bufferSize
	}
	return nil
}

// Skip is Advance but discards the rendered audio instead of writing it,
// for a silent advance such as a hot-start.
func (m *Manager) Skip(dt scheduler.Time) {
	m.pending += dt.ToFrames(m.source.SampleRate())
	for m.pending > m.bufferSize {
		forceFill(m.source, m.buffer)
		m.pending -= m.bufferSize
	}
}

// AdvanceToEnd repeatedly fills the source until it reports exhaustion,
// writing each (possibly short, unpadded) chunk to the sink, then blocks
// on the director task's result.
func (m *Manager) AdvanceToEnd() error {
	for {
		n := m.source.Fill(m.buffer)
		if n == 0 {
			break
		}
		if err := m.sink.Write(m.buffer[:n]); err != nil {
			return err
		}
	}
	return m.task.Wait()
}

// Close drops the top SchedulerSource, resolving any pending waiters
// with a failure, per the cancellation model.
func (m *Manager) Close() {
	m.source.Close()
}

func forceFill(s *scheduler.SchedulerSource, buf []float32) int {
	total := 0
	for total < len(buf) {
		n := s.Fill(buf[total:])
		if n == 0 {
			break
		}
		total += n
	}
	return total
}
