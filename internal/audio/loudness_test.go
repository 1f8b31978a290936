package audio

import (
	"math"
	"testing"
)

func TestLoudnessMeterSilenceIsNegativeInfinity(t *testing.T) {
	m := newLoudnessMeter(44100, 1)
	buf := make([]float32, 4410)
	m.add(buf, len(buf))
	if got := m.integratedLUFS(); !math.IsInf(got, -1) {
		t.Errorf("integratedLUFS on silence = %v, want -Inf", got)
	}
}

func TestLoudnessMeterLouderSignalScoresHigher(t *testing.T) {
	quiet := newLoudnessMeter(44100, 1)
	loud := newLoudnessMeter(44100, 1)

	sr := 44100.0
	frames := 4410
	quietBuf := make([]float32, frames)
	loudBuf := make([]float32, frames)
	for i := 0; i < frames; i++ {
		v := float32(math.Sin(2 * math.Pi * 440 * float64(i) / sr))
		quietBuf[i] = v * 0.1
		loudBuf[i] = v * 0.9
	}
	quiet.add(quietBuf, frames)
	loud.add(loudBuf, frames)

	if loud.integratedLUFS() <= quiet.integratedLUFS() {
		t.Errorf("louder signal should score a higher LUFS value: loud=%v quiet=%v", loud.integratedLUFS(), quiet.integratedLUFS())
	}
}

func TestLoudnessMeterNoCountsIsNegativeInfinity(t *testing.T) {
	m := newLoudnessMeter(44100, 2)
	if got := m.integratedLUFS(); !math.IsInf(got, -1) {
		t.Errorf("integratedLUFS with zero samples = %v, want -Inf", got)
	}
}

func TestChannelWeightAppliesSurroundBoostOnlyAt5Point1(t *testing.T) {
	if w := channelWeight(4, 2); w != 1.0 {
		t.Errorf("channelWeight(4, 2ch) = %v, want 1.0 (no surround channels below 6ch)", w)
	}
	if w := channelWeight(4, 6); w == 1.0 {
		t.Error("channelWeight(4, 6ch) should apply the surround boost")
	}
}
