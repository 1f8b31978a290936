// Package station loads and merges the YAML station-definition documents
// and the top-level radio index, grounded on the original engine's
// definitions.rs and radio_index.rs.
package station

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Errors surfaced while loading configuration.
var (
	ErrUnknownKey     = errors.New("station: unknown key")
	ErrFileNotFound   = errors.New("station: media file not found")
	ErrIntroMismatch  = errors.New("station: intro has no matching song")
	ErrBadTimeLiteral = errors.New("station: bad time literal")
)

var mediaExtensions = []string{"flac", "wav", "ogg"}

// Intro is a station ID/intro clip that must match a song by title and
// artist (and album, when both specify one).
type Intro struct {
	Path   string
	Title  string
	Artist string
	Album  string
}

// Song is one entry in a station's music rotation.
type Song struct {
	Path   string
	Title  string
	Artist string
	Album  string
	Pre    float64 // seconds from the track's start that a voice-over may still run into
	Post   float64 // seconds from the track's start at which the next soft window opens
}

// Definitions is one merged station configuration: the semantic play
// lists plus the id/intro/music catalogs.
type Definitions struct {
	Name string

	Solo        []string
	General     []string
	ToAd        []string
	ToNews      []string
	TimeEvening []string
	TimeMorning []string
	ID          []string
	Ad          []string
	News        []string

	Intro []Intro
	Music []Song
}

// rawDoc mirrors the on-disk YAML shape exactly, so unknown keys can be
// detected via yaml.Node decoding.
type rawDoc struct {
	Name        string     `yaml:"name"`
	Prefix      string     `yaml:"prefix"`
	Include     []string   `yaml:"include"`
	Solo        []string   `yaml:"solo"`
	General     []string   `yaml:"general"`
	ToAd        []string   `yaml:"to-ad"`
	ToNews      []string   `yaml:"to-news"`
	TimeEvening []string   `yaml:"time-evening"`
	TimeMorning []string   `yaml:"time-morning"`
	ID          []string   `yaml:"id"`
	Ad          []string   `yaml:"ad"`
	News        []string   `yaml:"news"`
	Intro       []rawIntro `yaml:"intro"`
	Music       []rawSong  `yaml:"music"`
}

type rawIntro struct {
	Path   string `yaml:"path"`
	Title  string `yaml:"title"`
	Artist string `yaml:"artist"`
	Album  string `yaml:"album"`
}

type rawSong struct {
	Path   string `yaml:"path"`
	Title  string `yaml:"title"`
	Artist string `yaml:"artist"`
	Album  string `yaml:"album"`
	Pre    string `yaml:"pre"`
	Post   string `yaml:"post"`
}

var allowedKeys = map[string]bool{
	"name": true, "prefix": true, "include": true,
	"solo": true, "general": true, "to-ad": true, "to-news": true,
	"time-evening": true, "time-morning": true,
	"id": true, "ad": true, "news": true, "intro": true, "music": true,
}

var allowedIntroKeys = map[string]bool{
	"path": true, "title": true, "artist": true, "album": true,
}

var allowedSongKeys = map[string]bool{
	"path": true, "title": true, "artist": true, "album": true,
	"pre": true, "post": true,
}

// Load reads and merges path and every file it (transitively) includes,
// then verifies every intro matches a song.
func Load(path string) (*Definitions, error) {
	d := &Definitions{}
	if err := loadOne(d, path); err != nil {
		return nil, err
	}
	if err := d.verify(); err != nil {
		return nil, err
	}
	return d, nil
}

func loadOne(d *Definitions, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("station: reading %s: %w", path, err)
	}

	if err := checkKeys(raw, path); err != nil {
		return err
	}

	var doc rawDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("station: parsing %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	prefix := dir
	if doc.Prefix != "" {
		prefix = filepath.Join(dir, doc.Prefix)
	}

	// include is processed first, so later (including this file's own)
	// entries take precedence when merged.
	for _, inc := range doc.Include {
		if err := loadOne(d, filepath.Join(dir, inc)); err != nil {
			return err
		}
	}

	if doc.Name != "" {
		d.Name = doc.Name
	}

	list, err := resolvePaths(prefix, doc.Solo)
	if err != nil {
		return err
	}
	d.Solo = append(d.Solo, list...)

	if list, err = resolvePaths(prefix, doc.General); err != nil {
		return err
	}
	d.General = append(d.General, list...)

	if list, err = resolvePaths(prefix, doc.ToAd); err != nil {
		return err
	}
	d.ToAd = append(d.ToAd, list...)

	if list, err = resolvePaths(prefix, doc.ToNews); err != nil {
		return err
	}
	d.ToNews = append(d.ToNews, list...)

	if list, err = resolvePaths(prefix, doc.TimeEvening); err != nil {
		return err
	}
	d.TimeEvening = append(d.TimeEvening, list...)

	if list, err = resolvePaths(prefix, doc.TimeMorning); err != nil {
		return err
	}
	d.TimeMorning = append(d.TimeMorning, list...)

	if list, err = resolvePaths(prefix, doc.ID); err != nil {
		return err
	}
	d.ID = append(d.ID, list...)

	if list, err = resolvePaths(prefix, doc.Ad); err != nil {
		return err
	}
	d.Ad = append(d.Ad, list...)

	if list, err = resolvePaths(prefix, doc.News); err != nil {
		return err
	}
	d.News = append(d.News, list...)

	for _, in := range doc.Intro {
		resolved, err := verifyMedia(prefix, in.Path)
		if err != nil {
			return err
		}
		d.Intro = append(d.Intro, Intro{Path: resolved, Title: in.Title, Artist: in.Artist, Album: in.Album})
	}

	for _, song := range doc.Music {
		resolved, err := verifyMedia(prefix, song.Path)
		if err != nil {
			return err
		}
		pre, err := parseTime(song.Pre)
		if err != nil {
			return err
		}
		post, err := parseTime(song.Post)
		if err != nil {
			return err
		}
		d.Music = append(d.Music, Song{
			Path: resolved, Title: song.Title, Artist: song.Artist, Album: song.Album,
			Pre: pre, Post: post,
		})
	}

	return nil
}

func resolvePaths(prefix string, paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		resolved, err := verifyMedia(prefix, p)
		if err != nil {
			return nil, err
		}
		out = append(out, resolved)
	}
	return out, nil
}

// verifyMedia resolves path against prefix, probing each supported
// extension in turn if path has none, and errors if nothing exists.
func verifyMedia(prefix, path string) (string, error) {
	full := filepath.Join(prefix, path)
	if _, err := os.Stat(full); err == nil {
		return full, nil
	}
	if filepath.Ext(path) != "" {
		return "", fmt.Errorf("%w: %s", ErrFileNotFound, full)
	}
	for _, ext := range mediaExtensions {
		candidate := full + "." + ext
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s (tried .flac/.wav/.ogg)", ErrFileNotFound, full)
}

// parseTime parses a colon-separated time literal as sum_i(60^i*part_i),
// right to left: "1:30" -> 1*60 + 30 = 90.
func parseTime(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	parts := strings.Split(s, ":")
	var total float64
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrBadTimeLiteral, s)
		}
		total = total*60 + v
	}
	return total, nil
}

// checkKeys decodes raw as a generic mapping node and rejects any
// top-level key not in allowedKeys, matching the original's strict-YAML
// behavior. It also descends into each intro/music entry and rejects
// unknown keys there, since the original applies check_keys per-entry
// too (definitions.rs), not just at the document root.
func checkKeys(raw []byte, path string) error {
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return fmt.Errorf("station: parsing %s: %w", path, err)
	}
	if len(node.Content) == 0 {
		return nil
	}
	mapping := node.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i < len(mapping.Content); i += 2 {
		key := mapping.Content[i].Value
		if !allowedKeys[key] {
			return fmt.Errorf("%w: %q in %s", ErrUnknownKey, key, path)
		}
		value := mapping.Content[i+1]
		switch key {
		case "intro":
			if err := checkEntryKeys(value, allowedIntroKeys, path); err != nil {
				return err
			}
		case "music":
			if err := checkEntryKeys(value, allowedSongKeys, path); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkEntryKeys rejects any key not in allowed within each mapping of
// the sequence node seq.
func checkEntryKeys(seq *yaml.Node, allowed map[string]bool, path string) error {
	if seq.Kind != yaml.SequenceNode {
		return nil
	}
	for _, entry := range seq.Content {
		if entry.Kind != yaml.MappingNode {
			continue
		}
		for i := 0; i < len(entry.Content); i += 2 {
			key := entry.Content[i].Value
			if !allowed[key] {
				return fmt.Errorf("%w: %q in %s", ErrUnknownKey, key, path)
			}
		}
	}
	return nil
}

// verify ensures every intro matches a song by title+artist (and album,
// when both specify one).
func (d *Definitions) verify() error {
	for _, in := range d.Intro {
		matched := false
		for _, song := range d.Music {
			if metaMatch(in, song) {
				matched = true
				break
			}
		}
		if !matched {
			return fmt.Errorf("%w: %q by %q", ErrIntroMismatch, in.Title, in.Artist)
		}
	}
	return nil
}

func metaMatch(in Intro, song Song) bool {
	if in.Title != song.Title || in.Artist != song.Artist {
		return false
	}
	if in.Album != "" && song.Album != "" && in.Album != song.Album {
		return false
	}
	return true
}
