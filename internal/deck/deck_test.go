package deck

import (
	"testing"

	"memoryarena/internal/domain"
)

func TestGenerateBoardShape(t *testing.T) {
	cases := []struct {
		difficulty domain.Difficulty
		wantPairs  int
	}{
		{domain.Difficulty4x4, 8},
		{domain.Difficulty6x6, 18},
		{domain.Difficulty8x8, 32},
	}

	for _, tc := range cases {
		t.Run(string(tc.difficulty), func(t *testing.T) {
			cards, err := Generate(tc.difficulty, domain.ThemeEmojis)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if len(cards) != tc.wantPairs*2 {
				t.Fatalf("got %d cards, want %d", len(cards), tc.wantPairs*2)
			}

			byPair := make(map[string][]domain.Card)
			ids := make(map[string]bool)
			for _, c := range cards {
				if c.IsFlipped || c.IsMatched {
					t.Fatalf("card %s not face-down: %+v", c.ID, c)
				}
				if ids[c.ID] {
					t.Fatalf("duplicate card id %s", c.ID)
				}
				ids[c.ID] = true
				byPair[c.PairID] = append(byPair[c.PairID], c)
			}
			if len(byPair) != tc.wantPairs {
				t.Fatalf("got %d pairs, want %d", len(byPair), tc.wantPairs)
			}
			for pairID, pair := range byPair {
				if len(pair) != 2 {
					t.Fatalf("pair %s has %d cards", pairID, len(pair))
				}
				if pair[0].Value != pair[1].Value {
					t.Fatalf("pair %s values differ: %q vs %q", pairID, pair[0].Value, pair[1].Value)
				}
			}
		})
	}
}

func TestGenerateThemes(t *testing.T) {
	for _, theme := range []domain.Theme{
		domain.ThemeColors, domain.ThemeEmojis, domain.ThemeNumbers,
		domain.ThemeAnimals, domain.ThemeSymbols,
	} {
		if _, err := Generate(domain.Difficulty8x8, theme); err != nil {
			t.Errorf("theme %s on 8x8: %v", theme, err)
		}
	}

	colors, err := Generate(domain.Difficulty4x4, domain.ThemeColors)
	if err != nil {
		t.Fatalf("Generate colors: %v", err)
	}
	for _, c := range colors {
		if c.Color == "" {
			t.Fatalf("color card %s has no color", c.ID)
		}
	}
}

func TestGenerateUnknownTheme(t *testing.T) {
	if _, err := Generate(domain.Difficulty4x4, domain.Theme("geometry")); err == nil {
		t.Fatal("expected error for unknown theme")
	}
}

func TestSoloScore(t *testing.T) {
	cases := []struct {
		name        string
		moves       int
		timeSeconds int
		difficulty  domain.Difficulty
		want        int
	}{
		{"perfect 4x4", 8, 0, domain.Difficulty4x4, 784},
		{"typical 4x4", 20, 60, domain.Difficulty4x4, 730},
		{"typical 6x6", 50, 120, domain.Difficulty6x6, 1640},
		{"floor", 1000, 1000, domain.Difficulty4x4, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SoloScore(tc.moves, tc.timeSeconds, tc.difficulty); got != tc.want {
				t.Fatalf("SoloScore(%d, %d, %s) = %d, want %d", tc.moves, tc.timeSeconds, tc.difficulty, got, tc.want)
			}
		})
	}
}
