package audio

import "testing"

func TestResampleIdentityRateIsPassthroughCount(t *testing.T) {
	src := NewSine(44100, 1, 440)
	r := NewResample(src, 44100)
	buf := make([]float32, 256)
	n := ForceFill(r, buf)
	if n != 256 {
		t.Errorf("identity-rate resample ForceFill(256) returned %d, want 256", n)
	}
}

func TestResampleUpsampleProducesMoreFrames(t *testing.T) {
	src := NewSine(22050, 1, 440)
	r := NewResample(src, 44100)
	buf := make([]float32, 2000)
	n := ForceFill(r, buf)
	if n == 0 {
		t.Fatal("upsample produced no output")
	}
}

func TestResampleSeekResetsState(t *testing.T) {
	src := NewSine(44100, 1, 440)
	r := NewResample(src, 44100)
	buf := make([]float32, 100)
	ForceFill(r, buf)
	if err := r.Seek(0); err != nil {
		t.Fatalf("Seek(0) returned error: %v", err)
	}
	if len(r.outCarry) != 0 || r.done {
		t.Errorf("Seek did not reset carry state: outCarry=%d done=%v", len(r.outCarry), r.done)
	}
}

func TestResampleDefaultQualityIsSincFastest(t *testing.T) {
	src := NewSine(44100, 1, 440)
	r := NewResample(src, 48000)
	if r.quality != QualitySincFastest {
		t.Errorf("NewResample default quality = %v, want QualitySincFastest", r.quality)
	}
}

func TestResampleAcceptsExplicitQuality(t *testing.T) {
	src := NewSine(44100, 1, 440)
	r := NewResample(src, 48000, QualitySincBest)
	if r.quality != QualitySincBest {
		t.Errorf("NewResample quality = %v, want QualitySincBest", r.quality)
	}
}

func TestReformatNoOpWhenAlreadyMatching(t *testing.T) {
	src := NewSine(44100, 2, 440)
	out := Reformat(src, 44100, 2)
	if out != Source(src) {
		t.Error("Reformat should return the source unchanged when rate/channels already match")
	}
}

func TestReformatAppliesBothStages(t *testing.T) {
	src := NewSine(22050, 1, 440)
	out := Reformat(src, 44100, 2)
	if out.SampleRate() != 44100 || out.Channels() != 2 {
		t.Errorf("Reformat result is %vHz/%dch, want 44100Hz/2ch", out.SampleRate(), out.Channels())
	}
	buf := make([]float32, 200)
	if n := ForceFill(out, buf); n == 0 {
		t.Error("Reformat chain produced no output")
	}
}
