package audio

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

func TestFindMixShape(t *testing.T) {
	for outCh := 1; outCh <= 6; outCh++ {
		for inCh := 1; inCh <= 6; inCh++ {
			m := FindMix(outCh, inCh)
			if len(m) != outCh {
				t.Errorf("FindMix(%d,%d): got %d rows, want %d", outCh, inCh, len(m), outCh)
			}
			for i, row := range m {
				if len(row) != inCh {
					t.Errorf("FindMix(%d,%d): row %d has %d cols, want %d", outCh, inCh, i, len(row), inCh)
				}
			}
		}
	}
}

func TestFindMixIdentity(t *testing.T) {
	m := FindMix(2, 2)
	for i, row := range m {
		for j, v := range row {
			want := float32(0)
			if i == j {
				want = 1
			}
			if v != want {
				t.Errorf("identity FindMix(2,2)[%d][%d] = %v, want %v", i, j, v, want)
			}
		}
	}
}

func TestRemixPassesFrameCount(t *testing.T) {
	src := NewSine(44100, 2, 440)
	r := NewRemix(src, 1, nil)
	buf := make([]float32, 100)
	n := r.Fill(buf)
	if n != 100 {
		t.Errorf("Remix 2->1 Fill(100) returned %d, want 100", n)
	}
}

// TestRemixOutputShapeMatchesRequestedChannels checks, for every
// (outCh, inCh) FindMix knows a coefficient table for, that Remix always
// emits exactly outCh*frames samples for a frames-sized scratch request.
func TestRemixOutputShapeMatchesRequestedChannels(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		outCh := rapid.IntRange(1, 6).Draw(t, "outCh")
		inCh := rapid.IntRange(1, 6).Draw(t, "inCh")
		frames := rapid.IntRange(1, 64).Draw(t, "frames")

		src := NewSine(44100, inCh, 220)
		r := NewRemix(src, outCh, nil)
		buf := make([]float32, frames*outCh)
		n := r.Fill(buf)
		if n != frames*outCh {
			t.Fatalf("Remix(%d->%d).Fill: got %d samples, want %d", inCh, outCh, n, frames*outCh)
		}
		for _, v := range buf {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				t.Fatalf("Remix(%d->%d) produced non-finite sample %v", inCh, outCh, v)
			}
		}
	})
}
