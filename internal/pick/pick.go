// Package pick implements the random mixer: an unbiased selector that
// avoids repeating an item it chose recently when alternatives exist.
//
// The original engine's random_mixer.rs is a non-functional stub (it
// wraps an empty map that no method ever touches and just delegates to
// rand::seq::IteratorRandom::choose with no recency tracking at all), so
// the recency-avoidance behavior itself is authored fresh here against
// spec.md §3/§8, in the math/rand/v2 idiom grounded on
// other_examples/satindergrewal-InfiniteRadio's autodj scheduler.
package pick

import "math/rand/v2"

// Mixer picks among candidate keys of type K, avoiding the last
// historySize picks when at least one alternative is available.
type Mixer[K comparable] struct {
	historySize int
	history     []K
}

// New constructs a Mixer that avoids repeating any of the last
// historySize picks. historySize == 0 disables avoidance entirely.
func New[K comparable](historySize int) *Mixer[K] {
	return &Mixer[K]{historySize: historySize}
}

// Choose returns a uniformly random element of candidates, preferring one
// not present in recent history when such an alternative exists, and
// records the result into history.
func (m *Mixer[K]) Choose(candidates []K) (K, bool) {
	var zero K
	if len(candidates) == 0 {
		return zero, false
	}

	filtered := m.filterRecent(candidates)
	pool := candidates
	if len(filtered) > 0 {
		pool = filtered
	}

	choice := pool[rand.IntN(len(pool))]
	m.record(choice)
	return choice, true
}

func (m *Mixer[K]) filterRecent(candidates []K) []K {
	if m.historySize == 0 || len(m.history) == 0 {
		return nil
	}
	recent := m.recentSet()
	out := make([]K, 0, len(candidates))
	for _, c := range candidates {
		if !recent[c] {
			out = append(out, c)
		}
	}
	return out
}

func (m *Mixer[K]) recentSet() map[K]bool {
	n := m.historySize
	if n > len(m.history) {
		n = len(m.history)
	}
	set := make(map[K]bool, n)
	for _, k := range m.history[len(m.history)-n:] {
		set[k] = true
	}
	return set
}

func (m *Mixer[K]) record(k K) {
	if m.historySize == 0 {
		return
	}
	m.history = append(m.history, k)
	if len(m.history) > m.historySize {
		m.history = m.history[len(m.history)-m.historySize:]
	}
}
