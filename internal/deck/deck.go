// Package deck generates the shuffled card sets a match is played on.
package deck

import (
	"fmt"
	"math/rand/v2"

	"memoryarena/internal/domain"

	"github.com/samber/lo"
)

type pairValue struct {
	value string
	color string
}

var emojiValues = []string{
	"🐶", "🐱", "🐭", "🐹", "🐰", "🦊", "🐻", "🐼",
	"🐨", "🐯", "🦁", "🐮", "🐷", "🐸", "🐵", "🐔",
	"🦆", "🦅", "🦉", "🦋", "🐛", "🐝", "🦄", "🐲",
	"🌸", "🌻", "🍀", "🍁", "🍄", "🌈", "⭐", "🌙",
}

var animalValues = []string{
	"🐅", "🐆", "🦓", "🦍", "🦧", "🦣", "🦏", "🦛",
	"🦒", "🐘", "🦘", "🦬", "🐃", "🐂", "🐄", "🐎",
	"🐖", "🐏", "🐑", "🦙", "🐐", "🦌", "🐕", "🐩",
	"🦮", "🐈", "🐓", "🦃", "🦤", "🦚", "🦜", "🦢",
}

var symbolValues = []string{
	"♠", "♥", "♦", "♣", "★", "☆", "◆", "◇",
	"●", "○", "■", "□", "▲", "△", "▼", "▽",
	"⬟", "⬠", "⬡", "⬢", "⬣", "⬤", "⬥", "⬦",
	"♈", "♉", "♊", "♋", "♌", "♍", "♎", "♏",
}

var colorValues = []pairValue{
	{"Red", "#ef4444"}, {"Blue", "#3b82f6"}, {"Green", "#22c55e"}, {"Yellow", "#eab308"},
	{"Purple", "#a855f7"}, {"Orange", "#f97316"}, {"Pink", "#ec4899"}, {"Cyan", "#06b6d4"},
	{"Teal", "#14b8a6"}, {"Indigo", "#6366f1"}, {"Lime", "#84cc16"}, {"Amber", "#f59e0b"},
	{"Rose", "#f43f5e"}, {"Sky", "#0ea5e9"}, {"Violet", "#8b5cf6"}, {"Emerald", "#10b981"},
	{"Fuchsia", "#d946ef"}, {"Slate", "#64748b"}, {"Stone", "#78716c"}, {"Zinc", "#71717a"},
	{"Gold", "#d97706"}, {"Coral", "#f87171"}, {"Mint", "#6ee7b7"}, {"Lavender", "#c4b5fd"},
	{"Navy", "#1e3a8a"}, {"Maroon", "#991b1b"}, {"Olive", "#4d7c0f"}, {"Salmon", "#fb923c"},
	{"Crimson", "#dc2626"}, {"Turquoise", "#2dd4bf"}, {"Periwinkle", "#818cf8"}, {"Charcoal", "#374151"},
}

// PairsCount maps a board size to its number of pairs.
func PairsCount(d domain.Difficulty) int {
	switch d {
	case domain.Difficulty6x6:
		return 18
	case domain.Difficulty8x8:
		return 32
	default:
		return 8
	}
}

// GridCols is the board width for a difficulty, for clients that lay
// the cards out themselves.
func GridCols(d domain.Difficulty) int {
	switch d {
	case domain.Difficulty6x6:
		return 6
	case domain.Difficulty8x8:
		return 8
	default:
		return 4
	}
}

func themeValues(theme domain.Theme, count int) ([]pairValue, error) {
	var values []pairValue
	switch theme {
	case domain.ThemeColors:
		values = colorValues
	case domain.ThemeEmojis:
		values = lo.Map(emojiValues, func(v string, _ int) pairValue { return pairValue{value: v} })
	case domain.ThemeAnimals:
		values = lo.Map(animalValues, func(v string, _ int) pairValue { return pairValue{value: v} })
	case domain.ThemeSymbols:
		values = lo.Map(symbolValues, func(v string, _ int) pairValue { return pairValue{value: v} })
	case domain.ThemeNumbers:
		values = lo.Map(lo.Range(count), func(i, _ int) pairValue {
			return pairValue{value: fmt.Sprintf("%d", i+1)}
		})
	default:
		return nil, fmt.Errorf("unknown theme %q", theme)
	}
	if len(values) < count {
		return nil, fmt.Errorf("theme %q has %d values, need %d", theme, len(values), count)
	}
	return values[:count], nil
}

// Generate builds a freshly shuffled deck of 2*pairs cards: two cards
// per pair id, all face-down and unmatched.
func Generate(difficulty domain.Difficulty, theme domain.Theme) ([]domain.Card, error) {
	count := PairsCount(difficulty)
	values, err := themeValues(theme, count)
	if err != nil {
		return nil, err
	}

	cards := make([]domain.Card, 0, count*2)
	for i, pv := range values {
		pairID := fmt.Sprintf("pair-%d", i)
		for _, suffix := range []string{"a", "b"} {
			cards = append(cards, domain.Card{
				ID:     pairID + "-" + suffix,
				PairID: pairID,
				Value:  pv.value,
				Color:  pv.color,
			})
		}
	}

	rand.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return cards, nil
}

// SoloScore is the score formula for single-player results: a base per
// pair, minus move and time penalties, never below 10.
func SoloScore(moves, timeSeconds int, difficulty domain.Difficulty) int {
	base := PairsCount(difficulty) * 100
	penalty := moves*2 + timeSeconds/2
	if s := base - penalty; s > 10 {
		return s
	}
	return 10
}
