package station

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// HotStartWindow is the upper bound (exclusive) in seconds of the random
// silent advance a newly joined listener may receive.
const HotStartWindow = 120.0

// Icecast names the mount and credentials for an Icecast output.
type Icecast struct {
	Mount    string `yaml:"mount"`
	Host     string `yaml:"host"`
	Schema   string `yaml:"schema"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// OutputKind distinguishes the supported output sink shapes.
type OutputKind int

const (
	OutputSystem OutputKind = iota
	OutputFile
	OutputIcecast
)

// Output is the parsed form of a station's `output` YAML field.
type Output struct {
	Kind    OutputKind
	Path    string   // OutputFile
	Icecast *Icecast // OutputIcecast
}

// ParseOutput parses "system", "play" (alias for system), "file:PATH",
// or a bare path (treated as file:).
func ParseOutput(s string) Output {
	switch {
	case s == "system" || s == "play":
		return Output{Kind: OutputSystem}
	case strings.HasPrefix(s, "file:"):
		return Output{Kind: OutputFile, Path: strings.TrimPrefix(s, "file:")}
	default:
		return Output{Kind: OutputFile, Path: s}
	}
}

// StationInfo is one entry under the index's `stations` map.
type StationInfo struct {
	Files   []string
	Output  Output
	Icecast *Icecast
}

// Index is the top-level radio index YAML: mount -> station info, with
// an optional top-level output/icecast inherited by every station that
// doesn't override it.
type Index struct {
	Stations map[string]StationInfo
}

type rawIndex struct {
	Output   string              `yaml:"output"`
	Icecast  *Icecast            `yaml:"icecast"`
	Stations map[string]rawEntry `yaml:"stations"`
}

type rawEntry struct {
	Files   []string `yaml:"files"`
	Output  string   `yaml:"output"`
	Icecast *Icecast `yaml:"icecast"`
}

// applyOutput resolves one level (top-level or station) of output
// configuration onto out: icecast first, then the output string, each
// only if present, each unconditionally overwriting whatever was there.
func applyOutput(out *Output, icecast *Icecast, outputStr string) {
	if icecast != nil {
		*out = Output{Kind: OutputIcecast, Icecast: icecast}
	}
	if outputStr != "" {
		*out = ParseOutput(outputStr)
	}
}

// LoadIndex reads the index at path, resolving each station's files
// relative to the index's own directory and applying top-level
// output/icecast inheritance.
func LoadIndex(path string) (*Index, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("station: reading index %s: %w", path, err)
	}
	var doc rawIndex
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("station: parsing index %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	idx := &Index{Stations: make(map[string]StationInfo, len(doc.Stations))}

	for mount, entry := range doc.Stations {
		files := make([]string, len(entry.Files))
		for i, f := range entry.Files {
			files[i] = filepath.Join(dir, f)
		}

		// Mirrors the ground truth's RadioInfo::update, applied once with
		// top-level data and once with station data: each application
		// independently resolves icecast-then-output, so a station-level
		// icecast with no station-level output still wins over an
		// inherited top-level output string.
		output := Output{Kind: OutputSystem}
		applyOutput(&output, doc.Icecast, doc.Output)
		applyOutput(&output, entry.Icecast, entry.Output)

		idx.Stations[mount] = StationInfo{Files: files, Output: output, Icecast: output.Icecast}
	}

	return idx, nil
}

// Keys returns the configured mount names.
func (idx *Index) Keys() []string {
	keys := make([]string, 0, len(idx.Stations))
	for k := range idx.Stations {
		keys = append(keys, k)
	}
	return keys
}

// Contains reports whether mount is configured.
func (idx *Index) Contains(mount string) bool {
	_, ok := idx.Stations[mount]
	return ok
}

// HotStartSeconds draws a uniform random amount in [0, HotStartWindow)
// for phase-diversifying a newly joined listener.
func HotStartSeconds() float64 {
	return rand.Float64() * HotStartWindow
}
