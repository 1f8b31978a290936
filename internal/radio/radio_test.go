package radio

import (
	"testing"
	"time"

	"github.com/sprunkfm/sprunk/internal/pick"
	"github.com/sprunkfm/sprunk/internal/station"
)

func newTestRadio(defs *station.Definitions, hour int) *Radio {
	return &Radio{
		defs:       defs,
		clock:      func() time.Time { return time.Date(2024, 1, 1, hour, 0, 0, 0, time.UTC) },
		musicMixer: pick.New[string](4),
		idMixer:    pick.New[string](2),
	}
}

func TestMusicListSelectsEveningList(t *testing.T) {
	defs := &station.Definitions{
		Music:       []station.Song{{Path: "a"}, {Path: "b"}},
		TimeEvening: []string{"b"},
	}
	r := newTestRadio(defs, 20) // 8pm: evening window
	list := r.musicList()
	if len(list) != 1 || list[0].Path != "b" {
		t.Errorf("musicList() = %v, want only the evening-list song", list)
	}
}

func TestMusicListSelectsMorningList(t *testing.T) {
	defs := &station.Definitions{
		Music:       []station.Song{{Path: "a"}, {Path: "b"}},
		TimeMorning: []string{"a"},
	}
	r := newTestRadio(defs, 7) // 7am: morning window
	list := r.musicList()
	if len(list) != 1 || list[0].Path != "a" {
		t.Errorf("musicList() = %v, want only the morning-list song", list)
	}
}

func TestMusicListFallsBackToFullCatalogOutsideNamedWindows(t *testing.T) {
	defs := &station.Definitions{
		Music:       []station.Song{{Path: "a"}, {Path: "b"}},
		TimeEvening: []string{"a"},
		TimeMorning: []string{"b"},
	}
	r := newTestRadio(defs, 13) // 1pm: neither window
	list := r.musicList()
	if len(list) != 2 {
		t.Errorf("musicList() outside both named windows = %v, want the full catalog", list)
	}
}

func TestMusicListFallsBackWhenNamedListHasNoCatalogMatch(t *testing.T) {
	defs := &station.Definitions{
		Music:       []station.Song{{Path: "a"}},
		TimeEvening: []string{"nonexistent-path"},
	}
	r := newTestRadio(defs, 20)
	list := r.musicList()
	if len(list) != 1 || list[0].Path != "a" {
		t.Errorf("musicList() = %v, want fallback to the full catalog when the named list matches nothing", list)
	}
}

func TestIdPoolFallsBackToIDWhenNoGeneral(t *testing.T) {
	defs := &station.Definitions{ID: []string{"id-a", "id-b"}}
	r := newTestRadio(defs, 12)
	pool := r.idPool()
	if len(pool) != 2 || pool[0] != "id-a" || pool[1] != "id-b" {
		t.Errorf("idPool() = %v, want exactly the ID catalog", pool)
	}
}

func TestIdPoolFoldsGeneralInAlongsideID(t *testing.T) {
	defs := &station.Definitions{ID: []string{"id-a"}, General: []string{"gen-a", "gen-b"}}
	r := newTestRadio(defs, 12)
	pool := r.idPool()
	if len(pool) != 3 {
		t.Errorf("idPool() = %v, want id + general catalogs folded together", pool)
	}
}

func TestMergeIntoLaterDefinitionsWinAndListsAppend(t *testing.T) {
	dst := &station.Definitions{
		Name: "Base",
		Solo: []string{"a"},
	}
	mergeInto(dst, &station.Definitions{
		Name: "Override",
		Solo: []string{"b"},
	})
	if dst.Name != "Override" {
		t.Errorf("Name = %q, want the later definitions' name to win", dst.Name)
	}
	if len(dst.Solo) != 2 || dst.Solo[0] != "a" || dst.Solo[1] != "b" {
		t.Errorf("Solo = %v, want appended [a b]", dst.Solo)
	}
}

func TestMergeIntoEmptyNameDoesNotOverwrite(t *testing.T) {
	dst := &station.Definitions{Name: "Keep Me"}
	mergeInto(dst, &station.Definitions{})
	if dst.Name != "Keep Me" {
		t.Errorf("Name = %q, an empty incoming Name should not overwrite the existing one", dst.Name)
	}
}
