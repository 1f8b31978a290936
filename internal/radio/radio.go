// Package radio implements the reference program director: a task that
// walks a station's Definitions and schedules solo/general/ad/news/id
// clips in rotation against the SoftScheduler's ducking music bed.
// Grounded on the original engine's radio.rs, generalized from its fixed
// alternation into a director that consults time-of-day lists and the
// recent-avoid random mixer.
package radio

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sprunkfm/sprunk/internal/audio"
	"github.com/sprunkfm/sprunk/internal/pick"
	"github.com/sprunkfm/sprunk/internal/scheduler"
	"github.com/sprunkfm/sprunk/internal/station"
)

const (
	padding    = 0.5
	overVolume = 0.25
)

// Clock abstracts wall-clock time-of-day selection so tests can pin it.
type Clock func() time.Time

// NowPlaying describes the clip a director task just scheduled, for
// status reporting by whatever is hosting the Radio.
type NowPlaying struct {
	Kind   string // "music", "to-ad", "ad", "to-news", "news", "id", "solo"
	Path   string
	Title  string
	Artist string
	Album  string
}

// Radio drives one station's SoftScheduler from its merged Definitions.
type Radio struct {
	defs  *station.Definitions
	soft  *scheduler.SoftScheduler
	clock Clock

	musicMixer *pick.Mixer[string]
	idMixer    *pick.Mixer[string]
	log        *log.Logger
	notify     func(NowPlaying)
}

// OnNowPlaying registers fn to be called whenever the director schedules
// a new clip. fn runs on the director's own goroutine and must not
// block.
func (r *Radio) OnNowPlaying(fn func(NowPlaying)) {
	r.notify = fn
}

func (r *Radio) announce(np NowPlaying) {
	if r.notify != nil {
		r.notify(np)
	}
}

// New builds a Radio for root, loading and merging every definition file
// in paths.
func New(root *scheduler.Scheduler, paths []string) (*Radio, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("radio: at least one definition file is required")
	}
	defs := &station.Definitions{}
	for _, p := range paths {
		loaded, err := station.Load(p)
		if err != nil {
			return nil, err
		}
		mergeInto(defs, loaded)
	}

	return &Radio{
		defs:       defs,
		soft:       scheduler.NewSoftScheduler(root, padding, overVolume),
		clock:      time.Now,
		musicMixer: pick.New[string](4),
		idMixer:    pick.New[string](2),
		log:        log.With("component", "radio", "station", defs.Name),
	}, nil
}

func mergeInto(dst, src *station.Definitions) {
	if src.Name != "" {
		dst.Name = src.Name
	}
	dst.Solo = append(dst.Solo, src.Solo...)
	dst.General = append(dst.General, src.General...)
	dst.ToAd = append(dst.ToAd, src.ToAd...)
	dst.ToNews = append(dst.ToNews, src.ToNews...)
	dst.TimeEvening = append(dst.TimeEvening, src.TimeEvening...)
	dst.TimeMorning = append(dst.TimeMorning, src.TimeMorning...)
	dst.ID = append(dst.ID, src.ID...)
	dst.Ad = append(dst.Ad, src.Ad...)
	dst.News = append(dst.News, src.News...)
	dst.Intro = append(dst.Intro, src.Intro...)
	dst.Music = append(dst.Music, src.Music...)
}

// Run is the director entry point: pass it directly to Scheduler.Run (or
// to manager.New's director parameter).
func (r *Radio) Run(sched *scheduler.Scheduler) error {
	adNext := true
	for {
		if err := r.playMusic(); err != nil {
			return err
		}
		if adNext {
			if err := r.playOne("to-ad", r.defs.ToAd, false); err != nil {
				return err
			}
			if err := r.playOne("ad", r.defs.Ad, true); err != nil {
				return err
			}
		} else {
			if err := r.playOne("to-news", r.defs.ToNews, false); err != nil {
				return err
			}
			if err := r.playOne("news", r.defs.News, true); err != nil {
				return err
			}
		}
		adNext = !adNext
		if err := r.playOne("id", r.idPool(), false); err != nil {
			return err
		}
		if err := r.playOne("solo", r.defs.Solo, false); err != nil {
			return err
		}
	}
}

// idPool folds the general catalog in as extra filler alongside the
// dedicated id clips, so a station that only defines "general" still
// gets an id-slot rotation.
func (r *Radio) idPool() []string {
	if len(r.defs.General) == 0 {
		return r.defs.ID
	}
	pool := make([]string, 0, len(r.defs.ID)+len(r.defs.General))
	pool = append(pool, r.defs.ID...)
	pool = append(pool, r.defs.General...)
	return pool
}

func (r *Radio) musicList() []station.Song {
	hour := r.clock().Hour()
	var list []string
	switch {
	case hour >= 18 || hour < 5:
		list = r.defs.TimeEvening
	case hour >= 5 && hour < 11:
		list = r.defs.TimeMorning
	}
	if len(list) == 0 {
		return r.defs.Music
	}
	set := make(map[string]bool, len(list))
	for _, p := range list {
		set[p] = true
	}
	out := make([]station.Song, 0, len(list))
	for _, s := range r.defs.Music {
		if set[s.Path] {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return r.defs.Music
	}
	return out
}

func (r *Radio) playMusic() error {
	list := r.musicList()
	if len(list) == 0 {
		return fmt.Errorf("radio: station %q has no music", r.defs.Name)
	}
	paths := make([]string, len(list))
	byPath := make(map[string]station.Song, len(list))
	for i, s := range list {
		paths[i] = s.Path
		byPath[s.Path] = s
	}
	choice, _ := r.musicMixer.Choose(paths)
	song := byPath[choice]

	main, err := openMedia(song.Path)
	if err != nil {
		return err
	}

	var over audio.Source
	// A voice-over candidate (a solo clip) is opportunistically picked
	// to ride over the soft window leading into this track (the previous
	// piece's tail up to pre seconds into this one) when the station
	// defines any.
	if len(r.defs.Solo) > 0 {
		overPath, _ := r.idMixer.Choose(r.defs.Solo)
		if overSrc, err := openMedia(overPath); err == nil {
			over = overSrc
		}
	}

	r.log.Info("scheduling music", "path", song.Path)
	_, err = r.soft.Add(main, over, song.Pre, &song.Post, false)
	if err != nil {
		return err
	}
	r.announce(NowPlaying{Kind: "music", Path: song.Path, Title: song.Title, Artist: song.Artist, Album: song.Album})
	return nil
}

func (r *Radio) playOne(kind string, paths []string, force bool) error {
	if len(paths) == 0 {
		return nil
	}
	path := paths[0]
	if len(paths) > 1 {
		choice, _ := r.idMixer.Choose(paths)
		path = choice
	}
	src, err := openMedia(path)
	if err != nil {
		return err
	}
	r.log.Info("scheduling clip", "path", path, "forced", force)
	if _, err := r.soft.Add(src, nil, 0, nil, force); err != nil {
		return err
	}
	r.announce(NowPlaying{Kind: kind, Path: path})
	return nil
}

func openMedia(path string) (*audio.Media, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	m, err := audio.NewMedia(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return m, nil
}
