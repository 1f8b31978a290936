package audio

import "math"

// measureLUFS computes an ITU-R BS.1770 integrated loudness estimate in
// LUFS for mono/stereo-or-more interleaved frames at sampleRate.
//
// DESIGN.md: no pure-Go (or cgo-via-the-retrieved-corpus) EBU R128/LUFS
// library exists anywhere in the retrieved example set; the only hit is
// ffmpeg's loudnorm filter behind a cgo wrapper, which is disproportionate
// to pull in for a single measurement pass. This is a from-scratch
// implementation of the BS.1770 K-weighting + channel-summed mean square
// stage (pre-filter + RLB high-pass, no relative gating) against the
// standard library only.
type loudnessMeter struct {
	sampleRate float64
	channels   int

	// per-channel biquad state for the two K-weighting stages.
	stage1 []biquadState
	stage2 []biquadState

	sumSquares float64
	count      int64
}

type biquadState struct {
	x1, x2, y1, y2 float64
}

func newLoudnessMeter(sampleRate float64, channels int) *loudnessMeter {
	return &loudnessMeter{
		sampleRate: sampleRate,
		channels:   channels,
		stage1:     make([]biquadState, channels),
		stage2:     make([]biquadState, channels),
	}
}

// BS.1770 pre-filter (high shelf, ~4 dB boost above ~1.5kHz) and RLB
// high-pass (~38 Hz), coefficients as specified at 48 kHz and scaled by
// the usual bilinear-transform frequency warp for other rates.
func (m *loudnessMeter) coefficients() (b1 [3]float64, a1 [3]float64, b2 [3]float64, a2 [3]float64) {
	fs := m.sampleRate
	// Stage 1: high shelf.
	db := 3.999843853973347
	f0 := 1681.9744509555319
	q := 0.7071752369554196
	k := math.Tan(math.Pi * f0 / fs)
	vh := math.Pow(10.0, db/20.0)
	vb := math.Pow(vh, 0.4996667741545416)
	a0 := 1.0 + k/q + k*k
	b1 = [3]float64{
		(vh + vb*k/q + k*k) / a0,
		2.0 * (k*k - vh) / a0,
		(vh - vb*k/q + k*k) / a0,
	}
	a1 = [3]float64{1.0, 2.0 * (k*k - 1.0) / a0, (1.0 - k/q + k*k) / a0}

	// Stage 2: RLB high-pass.
	f0b := 38.13547087613982
	qb := 0.5003270373238773
	kb := math.Tan(math.Pi * f0b / fs)
	a0b := 1.0 + kb/qb + kb*kb
	b2 = [3]float64{1.0, -2.0, 1.0}
	for i := range b2 {
		b2[i] /= a0b
	}
	a2 = [3]float64{1.0, 2.0 * (kb*kb - 1.0) / a0b, (1.0 - kb/qb + kb*kb) / a0b}
	return
}

func (m *loudnessMeter) add(buf []float32, frames int) {
	b1, a1, b2, a2 := m.coefficients()
	for i := 0; i < frames; i++ {
		for c := 0; c < m.channels; c++ {
			x := float64(buf[i*m.channels+c])

			s1 := &m.stage1[c]
			y1 := b1[0]*x + b1[1]*s1.x1 + b1[2]*s1.x2 - a1[1]*s1.y1 - a1[2]*s1.y2
			s1.x2, s1.x1 = s1.x1, x
			s1.y2, s1.y1 = s1.y1, y1

			s2 := &m.stage2[c]
			y2 := b2[0]*y1 + b2[1]*s2.x1 + b2[2]*s2.x2 - a2[1]*s2.y1 - a2[2]*s2.y2
			s2.x2, s2.x1 = s2.x1, y1
			s2.y2, s2.y1 = s2.y1, y2

			weight := channelWeight(c, m.channels)
			m.sumSquares += weight * y2 * y2
		}
		m.count++
	}
}

func channelWeight(channel, channels int) float64 {
	// Surround channels (index 4,5 in a 5.1 layout) get the +1.5 dB
	// weighting BS.1770 specifies for Ls/Rs; everything else is 1.0.
	if channels >= 6 && (channel == 4 || channel == 5) {
		return 1.4125375446227544 // 10^(1.5/10)
	}
	return 1.0
}

// integratedLUFS returns the (ungated) mean-square loudness in LUFS.
func (m *loudnessMeter) integratedLUFS() float64 {
	if m.count == 0 {
		return math.Inf(-1)
	}
	meanSquare := m.sumSquares / float64(m.count)
	if meanSquare <= 0 {
		return math.Inf(-1)
	}
	return -0.691 + 10.0*math.Log10(meanSquare)
}
