package pick

import "testing"

func TestChooseEmpty(t *testing.T) {
	m := New[string](2)
	if _, ok := m.Choose(nil); ok {
		t.Error("Choose on empty candidates should report false")
	}
}

func TestChooseSingleCandidate(t *testing.T) {
	m := New[string](2)
	got, ok := m.Choose([]string{"only"})
	if !ok || got != "only" {
		t.Errorf("Choose([only]) = %q, %v; want \"only\", true", got, ok)
	}
}

// TestChooseAvoidsRecentHistory draws repeatedly from a 3-key pool and
// checks that, whenever an alternative exists, the immediately preceding
// pick is never repeated.
func TestChooseAvoidsRecentHistory(t *testing.T) {
	m := New[string](1)
	candidates := []string{"a", "b", "c"}

	prev, _ := m.Choose(candidates)
	for i := 0; i < 1000; i++ {
		got, ok := m.Choose(candidates)
		if !ok {
			t.Fatal("Choose returned false with non-empty candidates")
		}
		if got == prev {
			t.Fatalf("pick %d repeated the immediately preceding choice %q", i, prev)
		}
		prev = got
	}
}

func TestChooseDisabledHistory(t *testing.T) {
	m := New[string](0)
	candidates := []string{"only"}
	for i := 0; i < 10; i++ {
		got, ok := m.Choose(candidates)
		if !ok || got != "only" {
			t.Fatalf("Choose with historySize 0 should still return the only candidate, got %q, %v", got, ok)
		}
	}
}

func TestChooseFallsBackWhenAllCandidatesAreRecent(t *testing.T) {
	m := New[string](5)
	candidates := []string{"a", "b"}
	// Exhaust both candidates into history; subsequent choices must still
	// succeed by falling back to the full candidate set.
	for i := 0; i < 5; i++ {
		if _, ok := m.Choose(candidates); !ok {
			t.Fatal("Choose unexpectedly reported false")
		}
	}
	if _, ok := m.Choose(candidates); !ok {
		t.Fatal("Choose should fall back to the full pool rather than fail")
	}
}
