package audio

// Remix applies a fixed M×N mix matrix to reshape a source's channel
// layout: y[i] = sum_j matrix[i][j] * x[j].
type Remix struct {
	source  Source
	matrix  [][]float32 // len(matrix) == out channels, len(matrix[i]) == in channels
	scratch []float32
}

// NewRemix wraps src to produce `channels` output channels. If matrix is
// nil, the canonical table (FindMix) supplies one for (channels,
// src.Channels()).
func NewRemix(src Source, channels int, matrix [][]float32) *Remix {
	if matrix == nil {
		matrix = FindMix(channels, src.Channels())
	}
	return &Remix{source: src, matrix: matrix}
}

func (r *Remix) SampleRate() float64 { return r.source.SampleRate() }
func (r *Remix) Channels() int       { return len(r.matrix) }

func (r *Remix) Len() (int64, bool) { return r.source.Len() }

func (r *Remix) Fill(buf []float32) int {
	outCh := len(r.matrix)
	if outCh == 0 {
		return 0
	}
	inCh := r.source.Channels()
	frames := len(buf) / outCh
	need := frames * inCh
	if cap(r.scratch) < need {
		r.scratch = make([]float32, need)
	}
	scratch := r.scratch[:need]
	n := r.source.Fill(scratch)
	gotFrames := n / inCh
	for i := 0; i < gotFrames; i++ {
		inBase := i * inCh
		outBase := i * outCh
		for o := 0; o < outCh; o++ {
			var acc float32
			row := r.matrix[o]
			for j := 0; j < inCh && j < len(row); j++ {
				acc += row[j] * scratch[inBase+j]
			}
			buf[outBase+o] = acc
		}
	}
	return gotFrames * outCh
}

func (r *Remix) Seek(frame int64) error { return r.source.Seek(frame) }

// FindMix returns the canonical mix matrix for converting inCh input
// channels to outCh output channels. Grounded on the literal coefficient
// table from the original engine: ATSC 5.1<->stereo down/up-mix, mono<->
// stereo halving/duplication, 5.1<->mono as their composition, and a
// pseudo-identity fallback for any other shape.
func FindMix(outCh, inCh int) [][]float32 {
	switch {
	case outCh == 1 && inCh == 2:
		return [][]float32{{0.5, 0.5}}
	case outCh == 2 && inCh == 1:
		return [][]float32{{1.0}, {1.0}}
	case outCh == 2 && inCh == 6:
		return [][]float32{
			{1.0, 0.0, 0.707, 0.0, 0.707, 0.0},
			{0.0, 1.0, 0.707, 0.0, 0.0, 0.707},
		}
	case outCh == 6 && inCh == 2:
		return [][]float32{
			{0.53340314, -0.13333065},
			{-0.13333065, 0.53340314},
			{0.28285125, 0.28285125},
			{0.0, 0.0},
			{0.37711602, -0.09426477},
			{-0.09426477, 0.37711602},
		}
	case outCh == 1 && inCh == 6:
		return [][]float32{{0.5, 0.5, 0.707, 0.0, 0.3535, 0.3535}}
	case outCh == 6 && inCh == 1:
		return [][]float32{
			{0.40007249},
			{0.40007249},
			{0.56570251},
			{0.0},
			{0.28285125},
			{0.28285125},
		}
	default:
		m := make([][]float32, outCh)
		n := inCh
		if outCh < n {
			n = outCh
		}
		for i := range m {
			m[i] = make([]float32, inCh)
			if i < n {
				m[i][i] = 1.0
			}
		}
		return m
	}
}
