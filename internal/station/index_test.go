package station

import (
	"path/filepath"
	"testing"
)

func TestParseOutputVariants(t *testing.T) {
	tests := []struct {
		in   string
		kind OutputKind
		path string
	}{
		{"system", OutputSystem, ""},
		{"play", OutputSystem, ""},
		{"file:/tmp/out.wav", OutputFile, "/tmp/out.wav"},
		{"/tmp/bare-path.wav", OutputFile, "/tmp/bare-path.wav"},
	}
	for _, tt := range tests {
		got := ParseOutput(tt.in)
		if got.Kind != tt.kind || got.Path != tt.path {
			t.Errorf("ParseOutput(%q) = %+v, want Kind=%v Path=%q", tt.in, got, tt.kind, tt.path)
		}
	}
}

func TestLoadIndexResolvesFilesRelativeToIndexDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "station.yaml", "solo: []\n")
	idxPath := writeFile(t, dir, "index.yaml", `
stations:
  main:
    files:
      - station.yaml
`)
	idx, err := LoadIndex(idxPath)
	if err != nil {
		t.Fatalf("LoadIndex returned error: %v", err)
	}
	info, ok := idx.Stations["main"]
	if !ok {
		t.Fatal("expected a \"main\" station entry")
	}
	if len(info.Files) != 1 || filepath.Dir(info.Files[0]) != dir {
		t.Errorf("Files = %v, want a single path resolved under %s", info.Files, dir)
	}
}

func TestLoadIndexTopLevelOutputIsInheritedUnlessOverridden(t *testing.T) {
	dir := t.TempDir()
	idxPath := writeFile(t, dir, "index.yaml", `
output: system
stations:
  inherits:
    files: []
  overrides:
    files: []
    output: file:/tmp/custom.wav
`)
	idx, err := LoadIndex(idxPath)
	if err != nil {
		t.Fatalf("LoadIndex returned error: %v", err)
	}
	if idx.Stations["inherits"].Output.Kind != OutputSystem {
		t.Errorf("inherits station Output.Kind = %v, want OutputSystem", idx.Stations["inherits"].Output.Kind)
	}
	ov := idx.Stations["overrides"].Output
	if ov.Kind != OutputFile || ov.Path != "/tmp/custom.wav" {
		t.Errorf("overrides station Output = %+v, want file:/tmp/custom.wav", ov)
	}
}

func TestLoadIndexIcecastImpliesIcecastOutput(t *testing.T) {
	dir := t.TempDir()
	idxPath := writeFile(t, dir, "index.yaml", `
stations:
  radio:
    files: []
    icecast:
      mount: /radio.ogg
      host: localhost
      schema: http
      user: source
      password: hunter2
`)
	idx, err := LoadIndex(idxPath)
	if err != nil {
		t.Fatalf("LoadIndex returned error: %v", err)
	}
	info := idx.Stations["radio"]
	if info.Output.Kind != OutputIcecast {
		t.Errorf("Output.Kind = %v, want OutputIcecast when icecast config is present with no explicit output", info.Output.Kind)
	}
	if info.Output.Icecast == nil || info.Output.Icecast.Mount != "/radio.ogg" {
		t.Errorf("Output.Icecast = %+v, want mount /radio.ogg", info.Output.Icecast)
	}
}

func TestLoadIndexStationIcecastOverridesInheritedTopLevelOutput(t *testing.T) {
	dir := t.TempDir()
	idxPath := writeFile(t, dir, "index.yaml", `
output: file:/tmp/top.wav
stations:
  radio:
    files: []
    icecast:
      mount: /radio.ogg
      host: localhost
      schema: http
      user: source
`)
	idx, err := LoadIndex(idxPath)
	if err != nil {
		t.Fatalf("LoadIndex returned error: %v", err)
	}
	info := idx.Stations["radio"]
	if info.Output.Kind != OutputIcecast {
		t.Errorf("Output.Kind = %v, want OutputIcecast: a station-level icecast with no station-level output must win over an inherited top-level output string", info.Output.Kind)
	}
	if info.Output.Icecast == nil || info.Output.Icecast.Mount != "/radio.ogg" {
		t.Errorf("Output.Icecast = %+v, want mount /radio.ogg", info.Output.Icecast)
	}
}

func TestIndexKeysAndContains(t *testing.T) {
	dir := t.TempDir()
	idxPath := writeFile(t, dir, "index.yaml", `
stations:
  a:
    files: []
  b:
    files: []
`)
	idx, err := LoadIndex(idxPath)
	if err != nil {
		t.Fatalf("LoadIndex returned error: %v", err)
	}
	if !idx.Contains("a") || !idx.Contains("b") {
		t.Error("Contains should report true for both configured mounts")
	}
	if idx.Contains("c") {
		t.Error("Contains should report false for an unconfigured mount")
	}
	keys := idx.Keys()
	if len(keys) != 2 {
		t.Errorf("Keys() = %v, want 2 entries", keys)
	}
}

func TestHotStartSecondsIsWithinWindow(t *testing.T) {
	for i := 0; i < 100; i++ {
		v := HotStartSeconds()
		if v < 0 || v >= HotStartWindow {
			t.Fatalf("HotStartSeconds() = %v, want in [0, %v)", v, HotStartWindow)
		}
	}
}
