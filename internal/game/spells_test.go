package game

import (
	"strings"
	"testing"
)

func TestBuildSpellQueueLength(t *testing.T) {
	for _, rounds := range []int{3, 5, 7, 25} {
		queue := BuildSpellQueue(rounds, DifficultyEasy, nil)
		if len(queue) != rounds {
			t.Fatalf("expected %d spells, got %d", rounds, len(queue))
		}
	}
}

func TestBuildSpellQueueUniqueIDs(t *testing.T) {
	// 25 rounds forces a wrap-around of the 20-entry pool
	queue := BuildSpellQueue(25, DifficultyHard, nil)
	seen := make(map[string]bool)
	for _, spell := range queue {
		if seen[spell.ID] {
			t.Fatalf("duplicate spell id %q in queue", spell.ID)
		}
		seen[spell.ID] = true
	}
}

func TestBuildSpellQueueDrawsFromPool(t *testing.T) {
	pool := make(map[string]bool)
	for _, spell := range GetSpellPool(DifficultyMedium) {
		pool[spell.Text] = true
	}
	for _, spell := range BuildSpellQueue(7, DifficultyMedium, nil) {
		if !pool[spell.Text] {
			t.Fatalf("spell %q not in medium pool", spell.Text)
		}
	}
}

func TestBuildSpellQueueCustomWords(t *testing.T) {
	queue := BuildSpellQueue(5, DifficultyCustom, []string{"abra", "kadabra"})
	for _, spell := range queue {
		if spell.Text != "ABRA" && spell.Text != "KADABRA" {
			t.Fatalf("unexpected custom spell %q", spell.Text)
		}
		if spell.Difficulty != DifficultyCustom {
			t.Fatalf("expected custom difficulty, got %s", spell.Difficulty)
		}
	}
}

func TestBuildSpellQueueEmptyCustomFallsBack(t *testing.T) {
	easy := make(map[string]bool)
	for _, spell := range GetSpellPool(DifficultyEasy) {
		easy[spell.Text] = true
	}
	for _, spell := range BuildSpellQueue(3, DifficultyCustom, nil) {
		if !easy[spell.Text] {
			t.Fatalf("empty custom list should fall back to easy pool, got %q", spell.Text)
		}
	}
}

func TestUnknownDifficultyFallsBack(t *testing.T) {
	if len(GetSpellPool(Difficulty("nightmare"))) == 0 {
		t.Fatal("unknown difficulty should fall back to a non-empty pool")
	}
}

func TestSanitizeCustomWords(t *testing.T) {
	words := SanitizeCustomWords([]string{"  lumos  ", "", "   ", "nox"})
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(words))
	}
	if words[0] != "LUMOS" || words[1] != "NOX" {
		t.Fatalf("unexpected words %v", words)
	}

	long := strings.Repeat("A", 200)
	words = SanitizeCustomWords([]string{long})
	if len(words[0]) != maxSpellTextLen {
		t.Fatalf("expected word capped at %d chars, got %d", maxSpellTextLen, len(words[0]))
	}

	many := make([]string, 100)
	for i := range many {
		many[i] = "WORD"
	}
	if got := len(SanitizeCustomWords(many)); got != maxCustomWords {
		t.Fatalf("expected list capped at %d, got %d", maxCustomWords, got)
	}
}
